package cli

import (
	"github.com/averin/marque/pkg/bookmark"
	"github.com/spf13/cobra"
)

var (
	addTitle     string
	addTags      []string
	addDesc      string
	addPrivate   bool
	addImmutable bool
	addNoFetch   bool
)

var addCmd = &cobra.Command{
	Use:   "add URL",
	Short: "Add a bookmark",
	Long: `Add a bookmark to the catalogue. When the title or description is
missing, marque fetches them from the page unless fetching is disabled
or the bookmark is marked immutable.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringVar(&addTitle, "title", "", "bookmark title")
	addCmd.Flags().StringSliceVar(&addTags, "tags", nil, "comma separated tags")
	addCmd.Flags().StringVar(&addDesc, "desc", "", "bookmark description")
	addCmd.Flags().BoolVar(&addPrivate, "private", false, "hide from search results")
	addCmd.Flags().BoolVar(&addImmutable, "immutable", false, "never refresh metadata from the page")
	addCmd.Flags().BoolVar(&addNoFetch, "no-fetch", false, "do not fetch page metadata")
}

func runAdd(cmd *cobra.Command, args []string) error {
	b := bookmark.Bookmark{
		URL:         args[0],
		Title:       addTitle,
		Tags:        bookmark.CanonicalTags(addTags),
		Description: addDesc,
	}
	if addPrivate {
		b.Flags |= bookmark.FlagPrivate
	}
	if addImmutable {
		b.Flags |= bookmark.FlagImmutable
	}

	if shouldFetch(b) {
		meta, err := newFetcher().Fetch(cmd.Context(), b.URL)
		if err != nil {
			appLogger.Warn().Err(err).Str("url", b.URL).Msg("could not fetch page metadata")
		} else {
			if b.Title == "" {
				b.Title = meta.Title
			}
			if b.Description == "" {
				b.Description = meta.Description
			}
		}
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := s.Add(cmd.Context(), b)
	if err != nil {
		return err
	}

	added, err := s.Get(cmd.Context(), id)
	if err != nil {
		return err
	}
	writeRecord(cmd.OutOrStdout(), added)
	return nil
}

// shouldFetch reports whether the page should be scraped for missing
// metadata. Immutable bookmarks keep exactly what the user typed.
func shouldFetch(b bookmark.Bookmark) bool {
	if !cfg.Fetch.Enabled || addNoFetch || b.Immutable() {
		return false
	}
	return b.Title == "" || b.Description == ""
}

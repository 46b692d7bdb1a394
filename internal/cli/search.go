package cli

import (
	"errors"

	"github.com/averin/marque/pkg/query"
	"github.com/spf13/cobra"
)

var (
	searchMatchAll bool
	searchDeep     bool
	searchRegex    bool
	searchByTags   bool
	searchPrivate  bool
)

var searchCmd = &cobra.Command{
	Use:   "search KEYWORD...",
	Short: "Search the catalogue",
	Long: `Search bookmarks. The default mode matches whole words through the
full-text index; --deep matches substrings, --regex treats each keyword
as a regular expression, and --tags matches whole tags only.

Keywords combine with OR unless --all is given. Private bookmarks stay
hidden unless --private is set.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().BoolVar(&searchMatchAll, "all", false, "require every keyword to match")
	searchCmd.Flags().BoolVar(&searchDeep, "deep", false, "substring search")
	searchCmd.Flags().BoolVar(&searchRegex, "regex", false, "regular expression search")
	searchCmd.Flags().BoolVar(&searchByTags, "tags", false, "match keywords against whole tags")
	searchCmd.Flags().BoolVar(&searchPrivate, "private", false, "include private bookmarks")
}

func runSearch(cmd *cobra.Command, args []string) error {
	mode, err := searchMode()
	if err != nil {
		return err
	}

	plan, err := query.Build(args, mode, searchMatchAll)
	if err != nil {
		return err
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	results, err := s.Search(cmd.Context(), plan, searchPrivate)
	if err != nil {
		return err
	}

	writeRecords(cmd.OutOrStdout(), results)
	return nil
}

func searchMode() (query.Mode, error) {
	picked := 0
	mode := query.ModeNormal
	if searchDeep {
		picked++
		mode = query.ModeDeep
	}
	if searchRegex {
		picked++
		mode = query.ModeRegex
	}
	if searchByTags {
		picked++
		mode = query.ModeTags
	}
	if picked > 1 {
		return "", errors.New("choose at most one of --deep, --regex, --tags")
	}
	return mode, nil
}

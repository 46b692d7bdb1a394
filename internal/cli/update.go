package cli

import (
	"errors"
	"fmt"

	"github.com/averin/marque/pkg/store"
	"github.com/spf13/cobra"
)

var (
	updURL       string
	updTitle     string
	updDesc      string
	updTagExpr   string
	updPrivate   bool
	updImmutable bool
	updRefresh   bool
)

var updateCmd = &cobra.Command{
	Use:     "update SELECTOR",
	Aliases: []string{"edit"},
	Short:   "Update bookmarks in place",
	Long: `Update fields of the selected bookmarks. The selector is an id, an
inclusive range like 3-9, or "all".

The --tags value is a tag expression applied left to right: +name adds
a tag, -name removes one, ~old:new replaces, and a bare list replaces
the whole tag set.

--refresh re-fetches title and description from each selected page
instead; immutable bookmarks are left alone.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().StringVar(&updURL, "url", "", "new url (single bookmark only)")
	updateCmd.Flags().StringVar(&updTitle, "title", "", "new title")
	updateCmd.Flags().StringVar(&updDesc, "desc", "", "new description")
	updateCmd.Flags().StringVar(&updTagExpr, "tags", "", "tag expression, e.g. +urgent,-old,~draft:final")
	updateCmd.Flags().BoolVar(&updPrivate, "private", false, "set or clear the private flag")
	updateCmd.Flags().BoolVar(&updImmutable, "immutable", false, "set or clear the immutable flag")
	updateCmd.Flags().BoolVar(&updRefresh, "refresh", false, "re-fetch metadata instead of applying field changes")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	sel, err := store.ParseSelector(args[0])
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if updRefresh {
		for _, name := range []string{"url", "title", "desc", "tags", "private", "immutable"} {
			if flags.Changed(name) {
				return errors.New("--refresh cannot be combined with field changes")
			}
		}
		return runRefresh(cmd, sel)
	}

	// Only flags the user actually passed become field changes, so
	// --title "" clears the title while omitting it leaves it alone.
	var changes store.FieldChanges
	if flags.Changed("url") {
		changes.URL = &updURL
	}
	if flags.Changed("title") {
		changes.Title = &updTitle
	}
	if flags.Changed("desc") {
		changes.Description = &updDesc
	}
	if flags.Changed("private") {
		changes.Private = &updPrivate
	}
	if flags.Changed("immutable") {
		changes.Immutable = &updImmutable
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	report, err := s.Update(cmd.Context(), sel, changes, updTagExpr)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d updated\n", report.Updated)
	return nil
}

// runRefresh re-fetches metadata row by row, so every touched bookmark
// is its own undo unit.
func runRefresh(cmd *cobra.Command, sel store.Selector) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	rows, err := s.List(cmd.Context(), sel)
	if err != nil {
		return err
	}

	fetcher := newFetcher()
	refreshed := 0
	for _, b := range rows {
		if b.Immutable() {
			continue
		}

		meta, err := fetcher.Fetch(cmd.Context(), b.URL)
		if err != nil {
			appLogger.Warn().Err(err).Str("url", b.URL).Msg("metadata refresh failed")
			continue
		}

		var changes store.FieldChanges
		if meta.Title != "" {
			changes.Title = &meta.Title
		}
		if meta.Description != "" {
			changes.Description = &meta.Description
		}
		if changes.Title == nil && changes.Description == nil {
			continue
		}

		if _, err := s.Update(cmd.Context(), store.One(b.ID), changes, ""); err != nil {
			return err
		}
		refreshed++
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d refreshed\n", refreshed)
	return nil
}

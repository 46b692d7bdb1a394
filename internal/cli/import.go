package cli

import (
	"fmt"
	"strings"

	"github.com/averin/marque/pkg/bookmark"
	"github.com/averin/marque/pkg/exchange"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import bookmarks from a file",
	Long: `Import bookmarks from a JSON, Netscape HTML or Markdown file; the
format is picked from the file extension. URLs already in the catalogue
are skipped, and the whole import undoes as a single operation.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	records, err := exchange.ImportFile(args[0])
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "nothing to import")
		return nil
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	existing, err := s.All(cmd.Context(), true)
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(existing))
	for _, b := range existing {
		seen[b.URL] = true
	}

	// Skip known URLs, and duplicates within the file itself.
	fresh := make([]bookmark.Bookmark, 0, len(records))
	skipped := 0
	for _, b := range records {
		b.URL = strings.TrimSpace(b.URL)
		if b.URL == "" || seen[b.URL] {
			skipped++
			continue
		}
		seen[b.URL] = true
		fresh = append(fresh, b)
	}

	ids, err := s.AddMany(cmd.Context(), fresh)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d imported, %d skipped\n", len(ids), skipped)
	return nil
}

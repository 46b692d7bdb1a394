package cli

import (
	"fmt"

	"github.com/averin/marque/pkg/exchange"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Export the catalogue to a file",
	Long: `Export every bookmark, private ones included, to a JSON, Netscape
HTML, Markdown or Org file; the format is picked from the file
extension.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	records, err := s.All(cmd.Context(), true)
	if err != nil {
		return err
	}

	if err := exchange.ExportFile(args[0], records); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d exported to %s\n", len(records), args[0])
	return nil
}

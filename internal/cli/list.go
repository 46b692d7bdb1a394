package cli

import (
	"github.com/averin/marque/pkg/store"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list [SELECTOR]",
	Aliases: []string{"ls"},
	Short:   "List bookmarks",
	Long: `List bookmarks by id, range or all of them. Unlike search, listing
shows private bookmarks too.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	sel := store.All()
	if len(args) == 1 {
		var err error
		sel, err = store.ParseSelector(args[0])
		if err != nil {
			return err
		}
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	records, err := s.List(cmd.Context(), sel)
	if err != nil {
		return err
	}

	writeRecords(cmd.OutOrStdout(), records)
	return nil
}

package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var undoCmd = &cobra.Command{
	Use:   "undo [N]",
	Short: "Undo the most recent operations",
	Long: `Undo the last N operations (default 1). A bulk command counts as one
operation, except tag edits, which undo row by row so a shared tag
change can be peeled off one bookmark at a time.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUndo,
}

func init() {
	rootCmd.AddCommand(undoCmd)
}

func runUndo(cmd *cobra.Command, args []string) error {
	n := 1
	if len(args) == 1 {
		parsed, err := strconv.Atoi(args[0])
		if err != nil || parsed <= 0 {
			return fmt.Errorf("undo count must be a positive number, got %q", args[0])
		}
		n = parsed
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	report, err := s.Undo(cmd.Context(), n)
	if err != nil {
		return err
	}

	writeUndoReport(cmd.OutOrStdout(), report)
	return nil
}

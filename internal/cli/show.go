package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one bookmark",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid bookmark id %q", args[0])
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	b, err := s.Get(cmd.Context(), id)
	if err != nil {
		return err
	}

	writeRecord(cmd.OutOrStdout(), b)
	return nil
}

package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/averin/marque/pkg/store"
	"github.com/spf13/cobra"
)

var (
	delRetainOrder bool
	delForce       bool
)

var deleteCmd = &cobra.Command{
	Use:     "delete SELECTOR",
	Aliases: []string{"rm"},
	Short:   "Delete bookmarks",
	Long: `Delete the selected bookmarks. Unless --retain-order is set (or
configured), remaining ids are compacted so they stay contiguous.
Deleting everything asks for confirmation first.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().BoolVar(&delRetainOrder, "retain-order", false, "keep id gaps instead of compacting")
	deleteCmd.Flags().BoolVar(&delForce, "force", false, "do not ask before deleting everything")
}

func runDelete(cmd *cobra.Command, args []string) error {
	sel, err := store.ParseSelector(args[0])
	if err != nil {
		return err
	}

	if sel.Kind == store.SelectorAll && !delForce {
		if !confirm(cmd, "delete ALL bookmarks?") {
			fmt.Fprintln(cmd.OutOrStdout(), "aborted")
			return nil
		}
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	report, err := s.Delete(cmd.Context(), sel, delRetainOrder || cfg.DB.RetainOrder)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d deleted\n", report.Deleted)
	return nil
}

func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s (y/n): ", prompt)

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil {
		return false
	}
	line = strings.TrimSpace(line)
	return strings.EqualFold(line, "y") || strings.EqualFold(line, "yes")
}

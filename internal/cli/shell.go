package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/averin/marque/pkg/query"
	"github.com/averin/marque/pkg/shell"
	"github.com/averin/marque/pkg/store"
	"github.com/spf13/cobra"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive prompt",
	Long: `Open the interactive prompt. Search, print, open and undo without
reopening the database for every command; ? lists the prompt keys.`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func runShell(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	session := &shellSession{store: s}
	sh, err := shell.New(shell.Config{
		Prompt:      cfg.Shell.Prompt,
		HistoryFile: cfg.Shell.HistoryFile,
		Handler:     session.handle,
		Out:         cmd.OutOrStdout(),
		Logger:      appLogger.GetZerolog(),
	})
	if err != nil {
		return err
	}

	return sh.Run(cmd.Context())
}

// shellSession dispatches prompt lines against one open store.
type shellSession struct {
	store *store.Store
}

func (ss *shellSession) handle(ctx context.Context, line string, out io.Writer) error {
	fields := strings.Fields(line)
	word, rest := fields[0], fields[1:]

	// A bare number opens that bookmark in the browser.
	if id, err := strconv.ParseInt(word, 10, 64); err == nil && len(rest) == 0 {
		return ss.open(ctx, id, out)
	}

	switch word {
	case "s":
		return ss.search(ctx, rest, query.ModeNormal, false, out)
	case "S":
		return ss.search(ctx, rest, query.ModeNormal, true, out)
	case "d":
		return ss.search(ctx, rest, query.ModeDeep, false, out)
	case "r":
		return ss.search(ctx, rest, query.ModeRegex, false, out)
	case "t":
		return ss.search(ctx, rest, query.ModeTags, false, out)
	case "p":
		return ss.print(ctx, rest, out)
	case "o":
		if len(rest) != 1 {
			return fmt.Errorf("usage: o ID")
		}
		id, err := strconv.ParseInt(rest[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid bookmark id %q", rest[0])
		}
		return ss.open(ctx, id, out)
	case "u":
		return ss.undo(ctx, rest, out)
	default:
		return fmt.Errorf("unknown command %q (? for help)", word)
	}
}

func (ss *shellSession) search(ctx context.Context, keywords []string, mode query.Mode, matchAll bool, out io.Writer) error {
	plan, err := query.Build(keywords, mode, matchAll)
	if err != nil {
		return err
	}

	results, err := ss.store.Search(ctx, plan, false)
	if err != nil {
		return err
	}

	writeRecords(out, results)
	return nil
}

func (ss *shellSession) print(ctx context.Context, args []string, out io.Writer) error {
	sel := store.All()
	if len(args) > 1 {
		return fmt.Errorf("usage: p [id|lo-hi|all]")
	}
	if len(args) == 1 {
		var err error
		sel, err = store.ParseSelector(args[0])
		if err != nil {
			return err
		}
	}

	records, err := ss.store.List(ctx, sel)
	if err != nil {
		return err
	}

	writeRecords(out, records)
	return nil
}

func (ss *shellSession) open(ctx context.Context, id int64, out io.Writer) error {
	b, err := ss.store.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := openURL(b.URL); err != nil {
		return err
	}
	fmt.Fprintf(out, "opening %s\n", b.URL)
	return nil
}

func (ss *shellSession) undo(ctx context.Context, args []string, out io.Writer) error {
	n := 1
	if len(args) > 1 {
		return fmt.Errorf("usage: u [count]")
	}
	if len(args) == 1 {
		parsed, err := strconv.Atoi(args[0])
		if err != nil || parsed <= 0 {
			return fmt.Errorf("undo count must be a positive number, got %q", args[0])
		}
		n = parsed
	}

	report, err := ss.store.Undo(ctx, n)
	if err != nil {
		return err
	}

	writeUndoReport(out, report)
	return nil
}

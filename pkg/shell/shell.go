// Package shell runs the interactive prompt: a readline loop that
// feeds catalogue commands to a handler, with history and completion.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog"
)

// Handler executes one prompt line. Output meant for the user goes to
// out; a returned error is printed and the prompt continues.
type Handler func(ctx context.Context, line string, out io.Writer) error

// Config configures a Shell.
type Config struct {
	// Prompt is shown before each line.
	Prompt string
	// HistoryFile persists prompt history between sessions; empty
	// disables persistence.
	HistoryFile string
	// Handler receives every line that is not a shell builtin.
	Handler Handler
	// Out is where results and errors are printed.
	Out    io.Writer
	Logger zerolog.Logger
}

// Shell is the interactive prompt.
type Shell struct {
	prompt      string
	historyFile string
	handler     Handler
	out         io.Writer
	logger      zerolog.Logger
}

// New creates a Shell.
func New(cfg Config) (*Shell, error) {
	if cfg.Handler == nil {
		return nil, errors.New("shell handler is required")
	}
	if cfg.Prompt == "" {
		cfg.Prompt = "marque (? for help) "
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}

	return &Shell{
		prompt:      cfg.Prompt,
		historyFile: cfg.HistoryFile,
		handler:     cfg.Handler,
		out:         cfg.Out,
		logger:      cfg.Logger.With().Str("component", "shell").Logger(),
	}, nil
}

// Run reads prompt lines until the user quits. Interrupt and EOF both
// end the session.
func (s *Shell) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          s.prompt,
		HistoryFile:     s.historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    completer(),
	})
	if err != nil {
		return fmt.Errorf("failed to start prompt: %w", err)
	}
	defer rl.Close()

	s.logger.Debug().Msg("interactive shell started")
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt || err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("prompt failed: %w", err)
		}

		quit, err := s.handleLine(ctx, line)
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
		if quit {
			break
		}
	}
	s.logger.Debug().Msg("interactive shell closed")
	return nil
}

// handleLine runs one line and reports whether the session should end.
func (s *Shell) handleLine(ctx context.Context, line string) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}

	switch line {
	case "q", "quit", "exit":
		return true, nil
	case "?", "help":
		s.printHelp()
		return false, nil
	}

	return false, s.handler(ctx, line, s.out)
}

func (s *Shell) printHelp() {
	fmt.Fprint(s.out, `
PROMPT KEYS:
    s keyword [...]        search for records with ANY keyword
    S keyword [...]        search for records with ALL keywords
    d keyword [...]        deep (substring) search
    r expression           regex search
    t tag [...]            search by exact tags
    p [id|range|all]       print bookmarks by id, range or all
    o id                   open bookmark in the browser
    u [n]                  undo the last n operations (default 1)
    q, ^D                  quit
    ?                      show this help
`)
}

func completer() readline.AutoCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("s"),
		readline.PcItem("S"),
		readline.PcItem("d"),
		readline.PcItem("r"),
		readline.PcItem("t"),
		readline.PcItem("p"),
		readline.PcItem("o"),
		readline.PcItem("u"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)
}

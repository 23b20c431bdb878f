package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/scrapsync/internal/models"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. The real App
// runs each line through the command tree; tests can provide a stub.
type execIface interface {
	Exec(ctx context.Context, args []string) error
}

// runREPL reads lines from scanner and hands each one, split on blanks, to
// a. "help" lists the commands and "exit" or "quit" leave the loop, as does
// EOF. Command errors are printed and the loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("scraps %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "help":
			printlnFn("Available commands: add, (l)ist, show, note, enrich, archive, unarchive, delete, tags, sync, push, pull, export, import, remote, templates, exit")

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			if err := a.Exec(ctx, parts); err != nil {
				printlnFn("error:", err)
			}
		}

		if ctx.Err() != nil {
			return
		}
	}
}

// Exec runs one shell line against the already open store.
func (a *App) Exec(ctx context.Context, args []string) error {
	root := &cobra.Command{
		Use:           "scraps",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	a.addCommands(root)
	root.SetArgs(args)
	root.SetOut(a.out)
	return root.ExecuteContext(ctx)
}

// status is shown in the prompt: the remote provider, or "local" when no
// remote is configured.
func (a *App) status(ctx context.Context) string {
	s, err := a.settings.Get(ctx)
	if err != nil {
		return "(?)"
	}
	configured := s.URL != ""
	if s.Provider() == models.ProviderS3 {
		configured = s.Bucket != ""
	}
	if !configured {
		return "(local)"
	}
	return fmt.Sprintf("(%s)", s.Provider())
}

func (a *App) newShellCmd() *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Run commands interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			a.inShell = true
			if interval > 0 {
				go a.StartAutoSync(ctx, interval)
			}

			printlnFn("Welcome to scraps (type 'help' for commands)")
			runREPL(ctx, a, func() string { return a.status(ctx) }, bufio.NewScanner(a.in))
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "auto-sync", 0, "sync in the background at this interval (0 disables)")
	return cmd
}

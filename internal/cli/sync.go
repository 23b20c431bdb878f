package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/scrapsync/internal/filex"
	"github.com/dmitrijs2005/scrapsync/internal/syncer"
)

// statusError carries the one-line status of a failed run while keeping
// the cause matchable with errors.Is.
type statusError struct {
	msg string
	err error
}

func (e *statusError) Error() string { return e.msg }
func (e *statusError) Unwrap() error { return e.err }

func (a *App) runEngine(ctx context.Context, run func(context.Context) (syncer.Result, error)) error {
	res, err := run(ctx)
	msg := syncer.Describe(res, err)
	if err != nil {
		return &statusError{msg: msg, err: err}
	}
	a.println(msg)
	return nil
}

func (a *App) newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Upload or download the snapshot, whichever side is newer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runEngine(cmd.Context(), a.engine.Sync)
		},
	}
}

func (a *App) newPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Overwrite the remote snapshot with the local state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runEngine(cmd.Context(), a.engine.Push)
		},
	}
}

func (a *App) newPullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Merge the remote snapshot into the local state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runEngine(cmd.Context(), a.engine.Pull)
		},
	}
}

func (a *App) newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write a backup snapshot to a file, or to stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.engine.Export(cmd.Context())
			if err != nil {
				return err
			}
			if len(args) == 0 || args[0] == "-" {
				_, err := a.out.Write(append(data, '\n'))
				return err
			}
			if err := filex.WriteFileAtomic(args[0], data, 0o600); err != nil {
				return err
			}
			a.printf("Exported to %s\n", args[0])
			return nil
		},
	}
}

func (a *App) newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Merge a backup snapshot; use - to read stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				var s string
				s, err = readAll(a.in)
				data = []byte(s)
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read backup: %w", err)
			}

			rep, err := a.engine.Import(cmd.Context(), data)
			if err != nil {
				return err
			}
			a.println(rep.String())
			return nil
		},
	}
}

package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/scrapsync/internal/filex"
	"github.com/dmitrijs2005/scrapsync/internal/watch"
)

func (a *App) newWatchCmd() *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Capture every .txt or .md file dropped into a folder",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			dir := a.cfg.WatchDir
			if len(args) == 1 {
				dir = args[0]
			}
			if err := filex.EnsureDir(dir); err != nil {
				return err
			}

			capture := func(ctx context.Context, raw, note string) error {
				_, err := a.scraps.Capture(ctx, raw, note)
				return err
			}
			w := watch.New(dir, capture, a.cfg.WatchDebounce, a.log)

			if once {
				n, err := w.ScanOnce(ctx)
				if err != nil {
					return err
				}
				a.printf("Captured %d files from %s\n", n, dir)
				return nil
			}

			a.printf("Watching %s (Ctrl+C to stop)\n", dir)
			return w.Run(ctx)
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "capture the files already present and exit")
	return cmd
}

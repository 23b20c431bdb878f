package cli

import (
	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/scrapsync/internal/models"
)

func (a *App) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "scraps",
		Short:         "Capture text scraps locally and sync them through WebDAV or S3",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			return a.open(cmd.Context())
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	// The config file was consumed before parsing; the flag is declared so
	// cobra accepts it.
	pf := root.PersistentFlags()
	pf.StringP("config", "c", "", "config file (.json, .yaml or .yml)")
	pf.StringVarP(&a.cfg.DBPath, "db", "d", a.cfg.DBPath, "database file")
	pf.StringVar(&a.cfg.LogFile, "log-file", a.cfg.LogFile, "write logs to this file instead of stderr")
	pf.StringVar(&a.cfg.LogLevel, "log-level", a.cfg.LogLevel, "debug, info, warn or error")
	pf.StringVar(&a.cfg.LogFormat, "log-format", a.cfg.LogFormat, "text or json")
	pf.DurationVar(&a.cfg.RequestTimeout, "timeout", a.cfg.RequestTimeout, "timeout of every remote request")

	a.addCommands(root)
	root.AddCommand(a.newShellCmd())
	return root
}

// addCommands registers the commands that are also available in the shell.
func (a *App) addCommands(root *cobra.Command) {
	root.AddCommand(
		a.newAddCmd(),
		a.newListCmd(),
		a.newShowCmd(),
		a.newNoteCmd(),
		a.newEnrichCmd(),
		a.newStatusCmd("archive", "Move a scrap to the archive", models.StatusArchived),
		a.newStatusCmd("unarchive", "Move a scrap back to the inbox", models.StatusInbox),
		a.newDeleteCmd(),
		a.newTagsCmd(),
		a.newSyncCmd(),
		a.newPushCmd(),
		a.newPullCmd(),
		a.newExportCmd(),
		a.newImportCmd(),
		a.newRemoteCmd(),
		a.newTemplatesCmd(),
		a.newWatchCmd(),
	)
}

package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/scrapsync/internal/models"
	"github.com/dmitrijs2005/scrapsync/internal/services"
)

const timeLayout = "2006-01-02 15:04"

func formatTime(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(ms).Format(timeLayout)
}

func formatTags(tags []string) string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = "#" + t
	}
	return strings.Join(out, " ")
}

func (a *App) newAddCmd() *cobra.Command {
	var note string
	cmd := &cobra.Command{
		Use:   "add [text...]",
		Short: "Capture a scrap; the text is read from stdin when not given",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := a.textArg(args)
			if err != nil {
				return err
			}
			item, err := a.scraps.Capture(cmd.Context(), raw, note)
			if err != nil {
				return err
			}
			a.printf("Captured %s\n", item.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&note, "note", "n", "", "note to attach to the scrap")
	return cmd
}

func (a *App) newListCmd() *cobra.Command {
	var archived, all bool
	cmd := &cobra.Command{
		Use:     "list [query...]",
		Aliases: []string{"l", "ls"},
		Short:   "List scraps; a query starting with # matches tags only",
		RunE: func(cmd *cobra.Command, args []string) error {
			view := services.ViewInbox
			switch {
			case archived:
				view = services.ViewArchived
			case all:
				view = services.ViewAll
			}

			entries, err := a.scraps.List(cmd.Context(), services.ListFilter{
				Query: strings.Join(args, " "),
				View:  view,
			})
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				a.println("No scraps")
				return nil
			}

			tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			for _, e := range entries {
				if view == services.ViewAll {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.ID, formatTime(e.CreatedAt), e.Status, e.Preview, formatTags(e.Tags))
					continue
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.ID, formatTime(e.CreatedAt), e.Preview, formatTags(e.Tags))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&archived, "archived", false, "list archived scraps")
	cmd.Flags().BoolVar(&all, "all", false, "list inbox and archive")
	cmd.MarkFlagsMutuallyExclusive("archived", "all")
	return cmd
}

func (a *App) newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a scrap",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := a.scraps.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.printItem(item)
			return nil
		},
	}
}

func (a *App) printItem(item *models.Item) {
	a.printf("ID:       %s\n", item.ID)
	a.printf("Created:  %s\n", formatTime(item.CreatedAt))
	a.printf("Updated:  %s\n", formatTime(item.UpdatedAt))
	if e := item.Enrichment; e != nil {
		a.printf("Title:    %s\n", e.Title)
		a.printf("Summary:  %s\n", e.Summary)
		if len(e.Tags) > 0 {
			a.printf("Tags:     %s\n", formatTags(e.Tags))
		}
		if e.Source != "" {
			a.printf("Source:   %s\n", e.Source)
		}
		if e.Link != "" {
			a.printf("Link:     %s\n", e.Link)
		}
	}
	if item.Note != "" {
		a.printf("Note:     %s\n", item.Note)
	}
	a.println()
	a.println(item.RawContent)
}

func (a *App) newNoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "note <id> [text...]",
		Short: "Replace the note of a scrap; the text is read from stdin when not given",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			note, err := a.textArg(args[1:])
			if err != nil {
				return err
			}
			if err := a.scraps.UpdateNote(cmd.Context(), args[0], note); err != nil {
				return err
			}
			a.println("Note saved")
			return nil
		},
	}
}

func (a *App) newEnrichCmd() *cobra.Command {
	var (
		templateID string
		manual     models.Enrichment
	)
	cmd := &cobra.Command{
		Use:   "enrich <id>",
		Short: "Attach a title, summary and tags, by hand or through the analyzer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f := cmd.Flags()
			if f.Changed("title") || f.Changed("summary") || f.Changed("tags") || f.Changed("source") || f.Changed("link") {
				if err := a.scraps.SetEnrichment(ctx, args[0], manual); err != nil {
					return err
				}
				a.println("Enrichment saved")
				return nil
			}

			item, err := a.scraps.Enrich(ctx, args[0], templateID)
			if err != nil {
				return err
			}
			a.printItem(item)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&templateID, "template", "t", "", "prompt template id (default: the first one)")
	f.StringVar(&manual.Title, "title", "", "title to set")
	f.StringVar(&manual.Summary, "summary", "", "summary to set")
	f.StringSliceVar(&manual.Tags, "tags", nil, "comma separated tags to set")
	f.StringVar(&manual.Source, "source", "", "source label to set")
	f.StringVar(&manual.Link, "link", "", "link to set")
	return cmd
}

func (a *App) newStatusCmd(name, short string, status models.Status) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := a.scraps.Get(ctx, args[0]); err != nil {
				return err
			}
			if err := a.scraps.SetStatus(ctx, args[0], status); err != nil {
				return err
			}
			a.printf("Moved %s to %s\n", args[0], status)
			return nil
		},
	}
}

func (a *App) newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a scrap",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.scraps.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.printf("Deleted %s\n", args[0])
			return nil
		},
	}
}

func (a *App) newTagsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Show the most recent tags of archived scraps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tags, err := a.scraps.RecentTags(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(tags) == 0 {
				a.println("No tags")
				return nil
			}
			a.println(formatTags(tags))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", services.DefaultRecentTags, "maximum number of tags")
	return cmd
}

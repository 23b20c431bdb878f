package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/scrapsync/internal/models"
)

const templatePreviewRunes = 60

func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func (a *App) newTemplatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List the prompt templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.settings.Templates(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			for _, t := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", t.ID, t.Name, shorten(t.Content, templatePreviewRunes))
			}
			return tw.Flush()
		},
	}
	cmd.AddCommand(a.newTemplateSaveCmd(), a.newTemplateDeleteCmd())
	return cmd
}

func (a *App) newTemplateSaveCmd() *cobra.Command {
	var t models.PromptTemplate
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Add a template, or replace the one with the given id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			saved, err := a.settings.SaveTemplate(cmd.Context(), t)
			if err != nil {
				return err
			}
			a.printf("Saved template %s\n", saved.ID)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&t.ID, "id", "", "id of the template to replace")
	f.StringVar(&t.Name, "name", "", "display name")
	f.StringVar(&t.Content, "content", "", "instruction text")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("content")
	return cmd
}

func (a *App) newTemplateDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.settings.DeleteTemplate(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.printf("Deleted template %s\n", args[0])
			return nil
		},
	}
}

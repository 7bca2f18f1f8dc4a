package main

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-styleguide/pkg/interfaces"
)

const defaultPreviewWidth = 100

func newPreviewCmd(s *session) *cobra.Command {
	var (
		style string
		width int
		html  bool
	)

	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Render a document in the terminal",
		Long: `Render a document of the docs tree, given relative to the docs directory,
in the terminal. --html prints the HTML the site generator would receive.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := s.container.MarkdownService()
			if err != nil {
				return err
			}
			doc, err := svc.Load(cmd.Context(), args[0], interfaces.LoadOptions{})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if html {
				rendered, err := svc.RenderDocument(cmd.Context(), doc, interfaces.ParseOptions{})
				if err != nil {
					return err
				}
				_, err = out.Write(rendered)
				return err
			}

			styleOpt := glamour.WithStandardStyle(style)
			if style == "auto" {
				styleOpt = glamour.WithAutoStyle()
			}
			renderer, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
			if err != nil {
				return fmt.Errorf("preview: %w", err)
			}
			rendered, err := renderer.Render(string(doc.Body))
			if err != nil {
				return fmt.Errorf("preview: render %s: %w", doc.FilePath, err)
			}

			if fm := doc.FrontMatter; fm.Title != "" {
				fmt.Fprintf(out, "%s  [%s]\n", fm.Title, fm.Status)
			}
			_, err = fmt.Fprint(out, rendered)
			return err
		},
	}
	cmd.Flags().StringVar(&style, "style", "auto", "glamour style: auto, dark, light, notty, ascii, dracula")
	cmd.Flags().IntVar(&width, "width", defaultPreviewWidth, "word wrap width")
	cmd.Flags().BoolVar(&html, "html", false, "print rendered HTML instead")
	return cmd
}

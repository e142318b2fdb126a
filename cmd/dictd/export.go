package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tranvm/dictd/internal/dictionary"
	"github.com/tranvm/dictd/internal/report"
)

func newExportCommand() *cobra.Command {
	var output string
	var toPDF bool

	command := &cobra.Command{
		Use:   "export",
		Short: "Export the dictionary and pending requests as a markdown report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("loadConfig: %w", err)
			}

			snapshotter, err := newSnapshotter(cfg)
			if err != nil {
				return err
			}
			store, err := dictionary.NewStore(snapshotter)
			if err != nil {
				return fmt.Errorf("dictionary.NewStore: %w", err)
			}

			if err := report.WriteMarkdown(output, store.ListAll(), store.ListPending()); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", output)

			if toPDF {
				pdfPath, err := report.ConvertMarkdownToPDF(output)
				if err != nil {
					return fmt.Errorf("report.ConvertMarkdownToPDF: %w", err)
				}
				fmt.Printf("Wrote %s\n", pdfPath)
			}
			return nil
		},
	}
	command.Flags().StringVar(&output, "output", "dictionary-report.md", "output markdown file")
	command.Flags().BoolVar(&toPDF, "pdf", false, "also convert the report to PDF")
	return command
}

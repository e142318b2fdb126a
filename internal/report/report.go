// Package report renders the dictionary and pending queue as a markdown
// document and optionally converts it to PDF.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mandolyte/mdtopdf"

	"github.com/tranvm/dictd/internal/dictionary"
)

// RenderMarkdown builds a markdown report of all entries and pending
// proposals.
func RenderMarkdown(entries []dictionary.Entry, proposals []dictionary.Proposal) string {
	var b strings.Builder

	b.WriteString("# Dictionary Report\n\n")
	fmt.Fprintf(&b, "%d words, %d pending requests\n\n", len(entries), len(proposals))

	b.WriteString("## Words\n\n")
	if len(entries) == 0 {
		b.WriteString("The dictionary is empty.\n\n")
	}
	for _, entry := range entries {
		fmt.Fprintf(&b, "- **%s**: %s\n", entry.Word, entry.Meaning)
	}
	b.WriteString("\n")

	b.WriteString("## Pending Requests\n\n")
	if len(proposals) == 0 {
		b.WriteString("No pending requests.\n")
	}
	for _, proposal := range proposals {
		switch proposal.Kind {
		case dictionary.ProposalUpdate:
			fmt.Fprintf(&b, "- `%s` UPDATE **%s**: %s (was: %s), by %s\n",
				proposal.ID, proposal.Word, proposal.NewMeaning, proposal.OldMeaning, proposal.Username)
		default:
			fmt.Fprintf(&b, "- `%s` ADD **%s**: %s, by %s\n",
				proposal.ID, proposal.Word, proposal.Meaning, proposal.Username)
		}
	}

	return b.String()
}

// WriteMarkdown writes the report to a .md file.
func WriteMarkdown(path string, entries []dictionary.Entry, proposals []dictionary.Proposal) error {
	if err := os.WriteFile(path, []byte(RenderMarkdown(entries, proposals)), 0o644); err != nil {
		return fmt.Errorf("os.WriteFile(%s): %w", path, err)
	}
	return nil
}

// ConvertMarkdownToPDF converts a markdown report to PDF next to the input
// file and returns the PDF path.
func ConvertMarkdownToPDF(markdownPath string) (string, error) {
	if !strings.HasSuffix(markdownPath, ".md") {
		return "", fmt.Errorf("input file must have .md extension: %s", markdownPath)
	}

	content, err := os.ReadFile(markdownPath)
	if err != nil {
		return "", fmt.Errorf("os.ReadFile(%s): %w", markdownPath, err)
	}

	pdfPath := strings.TrimSuffix(markdownPath, ".md") + ".pdf"

	renderer := mdtopdf.NewPdfRenderer("P", "A4", pdfPath, "", nil, mdtopdf.LIGHT)
	if err := renderer.Process(content); err != nil {
		return "", fmt.Errorf("renderer.Process: %w", err)
	}

	absPath, err := filepath.Abs(pdfPath)
	if err != nil {
		return pdfPath, nil
	}
	return absPath, nil
}

// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/contactlens/internal/store"
	"github.com/jonathan/contactlens/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintDraft outputs a human-readable summary of an extracted contact draft.
func (p *Printer) PrintDraft(draft *types.ContactDraft) {
	if draft == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Name:     %s\n", draft.FullName))
	if draft.JobTitle != "" {
		sb.WriteString(fmt.Sprintf("Title:    %s\n", draft.JobTitle))
	}
	if draft.Company != "" {
		sb.WriteString(fmt.Sprintf("Company:  %s\n", draft.Company))
	}
	if draft.Email != "" {
		sb.WriteString(fmt.Sprintf("Email:    %s\n", draft.Email))
	}
	if draft.Phone != "" {
		sb.WriteString(fmt.Sprintf("Phone:    %s\n", draft.Phone))
	}
	if draft.Address != "" {
		sb.WriteString(fmt.Sprintf("Address:  %s\n", draft.Address))
	}
	sb.WriteString(fmt.Sprintf("Score:    %d%%\n", int(draft.ConfidenceScore*100)))

	if len(draft.Tags) > 0 {
		sb.WriteString(fmt.Sprintf("Tags:     %s\n", strings.Join(draft.Tags, ", ")))
	}

	if len(draft.Skills) > 0 {
		sb.WriteString("\nInferred Skills:\n")
		count := min(len(draft.Skills), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", draft.Skills[i]))
		}
		if len(draft.Skills) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(draft.Skills)-maxItemsToShow))
		}
	}

	if len(draft.SocialMedia) > 0 {
		sb.WriteString("\nSocials:\n")
		for platform, handle := range draft.SocialMedia {
			sb.WriteString(fmt.Sprintf("  • %s: %s\n", platform, handle))
		}
	}

	if draft.Summary != "" {
		sb.WriteString(fmt.Sprintf("\nSummary: %s\n", draft.Summary))
	}

	p.printBox("EXTRACTED CONTACT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintVerdict outputs the result of a duplicate check.
func (p *Printer) PrintVerdict(verdict *types.DuplicateVerdict) {
	if verdict == nil {
		return
	}

	var sb strings.Builder
	if verdict.IsDuplicate {
		sb.WriteString("Duplicate: YES\n")
		if verdict.MatchedID != "" {
			sb.WriteString(fmt.Sprintf("Matches:   %s\n", verdict.MatchedID))
		}
	} else {
		sb.WriteString("Duplicate: no\n")
	}
	sb.WriteString(fmt.Sprintf("Reason:    %s", verdict.Reason))

	p.printBox("DUPLICATE CHECK", sb.String())
}

// PrintContactTable outputs the contact list projection, one line per contact.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintContactTable(rows []store.Row) {
	if len(rows) == 0 {
		fmt.Fprintln(p.out, "No contacts yet.")
		return
	}

	var sb strings.Builder
	for i, row := range rows {
		flag := " "
		if row.IsDuplicate {
			flag = "!"
		}
		sb.WriteString(fmt.Sprintf("%s %d. %s", flag, i+1, row.FullName))
		if row.Company != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", row.Company))
		}
		if row.Email != "" {
			sb.WriteString(fmt.Sprintf(" <%s>", row.Email))
		}
		if i < len(rows)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox(fmt.Sprintf("CONTACT LIST (%d)", len(rows)), sb.String())
}

package observability

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/contactlens/internal/store"
	"github.com/jonathan/contactlens/internal/types"
)

func TestPrintDraft(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintDraft(&types.ContactDraft{
		FullName:        "Jane Doe",
		JobTitle:        "CTO",
		Company:         "Acme Corp",
		Email:           "jane@acme.com",
		Tags:            []string{"Tech"},
		Skills:          []string{"Leadership", "Hiring"},
		ConfidenceScore: 0.95,
	})

	out := buf.String()
	assert.Contains(t, out, "EXTRACTED CONTACT")
	assert.Contains(t, out, "Jane Doe")
	assert.Contains(t, out, "Acme Corp")
	assert.Contains(t, out, "95%")
	assert.Contains(t, out, "Leadership")
}

func TestPrintDraftNil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintDraft(nil)
	assert.Empty(t, buf.String())
}

func TestPrintVerdict(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintVerdict(&types.DuplicateVerdict{IsDuplicate: true, MatchedID: "id-1", Reason: "Same email"})

	out := buf.String()
	assert.Contains(t, out, "DUPLICATE CHECK")
	assert.Contains(t, out, "YES")
	assert.Contains(t, out, "id-1")
	assert.Contains(t, out, "Same email")
}

func TestPrintContactTable(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintContactTable([]store.Row{
		{ID: "id-1", FullName: "Jane Doe", Company: "Acme Corp", Email: "jane@acme.com"},
		{ID: "id-2", FullName: "Bob Smith", IsDuplicate: true},
	})

	out := buf.String()
	assert.Contains(t, out, "CONTACT LIST (2)")
	assert.Contains(t, out, "Jane Doe")
	assert.Contains(t, out, "! 2. Bob Smith")
}

func TestPrintContactTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintContactTable(nil)
	assert.Contains(t, buf.String(), "No contacts yet")
}

package store

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/contactlens/internal/types"
)

func confirmed(id, name, email, phone string, dup bool) types.ConfirmedContact {
	return types.ConfirmedContact{
		ContactDraft: types.ContactDraft{
			FullName:        name,
			Email:           email,
			Phone:           phone,
			Company:         "Acme Corp",
			Tags:            []string{"Tech"},
			ConfidenceScore: 0.9,
		},
		ID:          id,
		IsDuplicate: dup,
	}
}

func TestAppendPreservesOrder(t *testing.T) {
	s := New()
	for i := 0; i < 5; i++ {
		s.Append(confirmed(fmt.Sprintf("id-%d", i), fmt.Sprintf("Contact %d", i), "", "", false))
	}

	all := s.All()
	require.Len(t, all, 5)
	for i, c := range all {
		assert.Equal(t, fmt.Sprintf("id-%d", i), c.ID)
	}
	assert.Equal(t, 5, s.Len())
}

func TestAppendNeverRejectsDuplicates(t *testing.T) {
	s := New()
	s.Append(confirmed("id-1", "Bob Smith", "bob@corp.com", "", false))
	s.Append(confirmed("id-2", "Robert Smith", "bob@corp.com", "", true))

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 1, s.DuplicateCount())
}

func TestAllReturnsSnapshot(t *testing.T) {
	s := New()
	s.Append(confirmed("id-1", "Jane Doe", "jane@acme.com", "", false))

	all := s.All()
	all[0].FullName = "Mutated"

	assert.Equal(t, "Jane Doe", s.All()[0].FullName)
}

func TestRefsProjection(t *testing.T) {
	s := New()
	s.Append(confirmed("id-1", "Jane Doe", "jane@acme.com", "+14155551234", false))

	refs := s.Refs()
	require.Len(t, refs, 1)
	assert.Equal(t, "id-1", refs[0].ID)
	assert.Equal(t, "Jane Doe", refs[0].Name)
	assert.Equal(t, "jane@acme.com", refs[0].Email)
	assert.Equal(t, "Acme Corp", refs[0].Company)
}

func TestRefsEmptyStore(t *testing.T) {
	s := New()
	assert.Empty(t, s.Refs())
}

func TestProjectionMasking(t *testing.T) {
	s := New()
	s.Append(confirmed("id-1", "Jane Doe", "jonathan@example.com", "+14155551234", false))

	masked := s.Projection(true)
	require.Len(t, masked, 1)
	assert.Equal(t, "jo****@example.com", masked[0].Email)
	assert.Equal(t, "*******1234", masked[0].Phone)
	assert.Equal(t, "Jane Doe", masked[0].FullName)
	assert.Equal(t, "Tech", masked[0].Tags)

	// Masking is display-only: a subsequent unmasked projection returns the
	// original values.
	unmasked := s.Projection(false)
	require.Len(t, unmasked, 1)
	assert.Equal(t, "jonathan@example.com", unmasked[0].Email)
	assert.Equal(t, "+14155551234", unmasked[0].Phone)

	// And the stored record itself is untouched.
	assert.Equal(t, "jonathan@example.com", s.All()[0].Email)
}

func TestProjectionCarriesDuplicateMetadata(t *testing.T) {
	s := New()
	c := confirmed("id-1", "Bob Smith", "", "", true)
	c.DuplicateReason = "Same email"
	s.Append(c)

	rows := s.Projection(false)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].IsDuplicate)
	assert.Equal(t, "Same email", rows[0].DuplicateReason)
}

// Package store provides the session-scoped, in-memory contact list. The
// store owns all confirmed contacts exclusively; callers get copies. Nothing
// is persisted beyond the life of the process.
package store

import (
	"strings"
	"sync"

	"github.com/jonathan/contactlens/internal/masking"
	"github.com/jonathan/contactlens/internal/types"
)

// Store is an append-only ordered collection of confirmed contacts.
// Append never deduplicates or rejects: the duplicate flag is advisory
// metadata, not a constraint.
type Store struct {
	mu       sync.RWMutex
	contacts []types.ConfirmedContact
}

// New creates an empty contact store. One store is constructed per session
// and passed by reference to the components that need it.
func New() *Store {
	return &Store{}
}

// Append adds a contact to the end of the list.
func (s *Store) Append(contact types.ConfirmedContact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts = append(s.contacts, contact)
}

// All returns a snapshot of the contacts in append order.
func (s *Store) All() []types.ConfirmedContact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.ConfirmedContact, len(s.contacts))
	copy(out, s.contacts)
	return out
}

// Len returns the number of stored contacts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.contacts)
}

// DuplicateCount returns how many stored contacts carry the duplicate flag.
func (s *Store) DuplicateCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, c := range s.contacts {
		if c.IsDuplicate {
			count++
		}
	}
	return count
}

// Refs returns the minimal projection of every contact for the duplicate
// check, in append order.
func (s *Store) Refs() []types.ExistingContactRef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	refs := make([]types.ExistingContactRef, 0, len(s.contacts))
	for i := range s.contacts {
		refs = append(refs, s.contacts[i].Ref())
	}
	return refs
}

// Row is one row of the tabular contact projection.
type Row struct {
	ID              string  `json:"id"`
	FullName        string  `json:"full_name"`
	JobTitle        string  `json:"job_title,omitempty"`
	Company         string  `json:"company,omitempty"`
	Email           string  `json:"email,omitempty"`
	Phone           string  `json:"phone,omitempty"`
	Tags            string  `json:"tags,omitempty"`
	Skills          string  `json:"skills,omitempty"`
	ConfidenceScore float64 `json:"confidence_score"`
	IsDuplicate     bool    `json:"is_duplicate"`
	DuplicateReason string  `json:"duplicate_reason,omitempty"`
}

// Projection returns a row-per-contact view of the store. When maskPII is
// true the email and phone columns are redacted for display; all other
// columns and the stored records themselves are untouched.
func (s *Store) Projection(maskPII bool) []Row {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]Row, 0, len(s.contacts))
	for _, c := range s.contacts {
		row := Row{
			ID:              c.ID,
			FullName:        c.FullName,
			JobTitle:        c.JobTitle,
			Company:         c.Company,
			Email:           c.Email,
			Phone:           c.Phone,
			Tags:            strings.Join(c.Tags, ", "),
			Skills:          strings.Join(c.Skills, ", "),
			ConfidenceScore: c.ConfidenceScore,
			IsDuplicate:     c.IsDuplicate,
			DuplicateReason: c.DuplicateReason,
		}
		if maskPII {
			row.Email = masking.MaskEmail(row.Email)
			row.Phone = masking.MaskPhone(row.Phone)
		}
		rows = append(rows, row)
	}
	return rows
}

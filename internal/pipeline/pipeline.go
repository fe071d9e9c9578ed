// Package pipeline orchestrates the contact record lifecycle: a draft is
// created by vision extraction, optionally refreshed by the improve step or
// edited by the user, and consumed exactly once by confirmation, which is the
// only path that creates a confirmed contact.
package pipeline

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/jonathan/contactlens/internal/store"
	"github.com/jonathan/contactlens/internal/types"
)

// Sentinel errors surfaced to the UI boundary.
var (
	// ErrBusy is returned when a model operation is already in flight. The
	// session allows a single in-flight operation at a time.
	ErrBusy = errors.New("another operation is in progress")
	// ErrNoDraft is returned when improve or confirm run without a current draft.
	ErrNoDraft = errors.New("no extraction in progress")
)

// Service is the model-facing contract the pipeline drives. It is satisfied
// by extraction.Extractor and by fakes in tests.
type Service interface {
	ExtractFromImage(ctx context.Context, image []byte, format string) (*types.ContactDraft, error)
	Normalize(ctx context.Context, draft *types.ContactDraft) (*types.ContactDraft, error)
	CheckDuplicate(ctx context.Context, candidate *types.ContactDraft, existing []types.ExistingContactRef) (*types.DuplicateVerdict, error)
}

// Pipeline holds the session's draft state and the confirmed contact store.
type Pipeline struct {
	extractor Service
	contacts  *store.Store

	// inFlight serializes model operations: overlapping extract, improve and
	// confirm calls on the same draft are rejected rather than raced.
	inFlight *semaphore.Weighted

	// mu guards the draft state. Writers already hold the semaphore; the
	// mutex covers readers polling the draft while a model call is in flight.
	mu         sync.RWMutex
	draft      *types.ContactDraft
	lastUpload string
}

// New creates a pipeline over the given extractor and contact store.
func New(extractor Service, contacts *store.Store) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		contacts:  contacts,
		inFlight:  semaphore.NewWeighted(1),
	}
}

// Draft returns a copy of the current draft, or nil when no extraction is in
// progress.
func (p *Pipeline) Draft() *types.ContactDraft {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.draft.Clone()
}

// Store returns the session's contact store.
func (p *Pipeline) Store() *store.Store {
	return p.contacts
}

// Extract runs vision extraction on an uploaded card image and installs the
// result as the current draft. Uploading a different file first clears any
// stale draft from the previous image. On failure the draft state is left
// exactly as it was.
func (p *Pipeline) Extract(ctx context.Context, filename string, image []byte, format string) (*types.ContactDraft, error) {
	if !p.inFlight.TryAcquire(1) {
		return nil, ErrBusy
	}
	defer p.inFlight.Release(1)

	p.mu.Lock()
	if filename != p.lastUpload {
		p.draft = nil
		p.lastUpload = filename
	}
	p.mu.Unlock()

	draft, err := p.extractor.ExtractFromImage(ctx, image, format)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.draft = draft
	p.mu.Unlock()
	return draft.Clone(), nil
}

// Improve merges the given user edits into the current draft, re-runs
// normalization, and replaces the draft wholesale with the result. This is a
// destructive refresh, not a merge with the previous draft.
func (p *Pipeline) Improve(ctx context.Context, edits map[string]string) (*types.ContactDraft, error) {
	if !p.inFlight.TryAcquire(1) {
		return nil, ErrBusy
	}
	defer p.inFlight.Release(1)

	p.mu.RLock()
	merged := p.draft.Clone()
	p.mu.RUnlock()
	if merged == nil {
		return nil, ErrNoDraft
	}

	applyEdits(merged, edits)

	improved, err := p.extractor.Normalize(ctx, merged)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.draft = improved
	p.mu.Unlock()
	return improved.Clone(), nil
}

// Confirm merges the final user edits into the draft, assigns a fresh
// identifier, runs the duplicate check against all confirmed contacts, and
// appends the result to the store with the advisory duplicate flag. The draft
// is consumed: on success it is discarded.
func (p *Pipeline) Confirm(ctx context.Context, edits map[string]string, skills []string) (*types.ConfirmedContact, error) {
	if !p.inFlight.TryAcquire(1) {
		return nil, ErrBusy
	}
	defer p.inFlight.Release(1)

	p.mu.RLock()
	final := p.draft.Clone()
	p.mu.RUnlock()
	if final == nil {
		return nil, ErrNoDraft
	}

	applyEdits(final, edits)
	if skills != nil {
		final.Skills = skills
	}

	// Catch contract violations before any model call.
	if err := final.Validate(); err != nil {
		return nil, err
	}

	verdict, err := p.extractor.CheckDuplicate(ctx, final, p.contacts.Refs())
	if err != nil {
		return nil, err
	}

	confirmed := types.ConfirmedContact{
		ContactDraft:    *final,
		ID:              uuid.New().String(),
		IsDuplicate:     verdict.IsDuplicate,
		DuplicateReason: verdict.Reason,
	}

	p.contacts.Append(confirmed)
	p.mu.Lock()
	p.draft = nil
	p.mu.Unlock()
	return &confirmed, nil
}

// applyEdits writes user-edited field values onto a draft. Only the fields
// exposed on the review form are editable.
func applyEdits(draft *types.ContactDraft, edits map[string]string) {
	for field, value := range edits {
		switch field {
		case "full_name":
			draft.FullName = value
		case "job_title":
			draft.JobTitle = value
		case "company":
			draft.Company = value
		case "email":
			draft.Email = value
		case "phone":
			draft.Phone = value
		case "address":
			draft.Address = value
		case "summary":
			draft.Summary = value
		}
	}
}

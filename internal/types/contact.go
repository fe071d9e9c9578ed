// Package types provides type definitions for structured contact data used throughout the contactlens system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"github.com/go-playground/validator/v10"
)

// ContactDraft represents an unconfirmed, editable contact record produced by
// vision extraction or normalization. A draft is mutated in place by user
// edits and the improve step until it is confirmed.
type ContactDraft struct {
	FullName        string            `json:"full_name" validate:"required,min=1"`
	JobTitle        string            `json:"job_title,omitempty"`
	Company         string            `json:"company,omitempty"`
	Email           string            `json:"email,omitempty"`
	Phone           string            `json:"phone,omitempty"`
	Address         string            `json:"address,omitempty"`
	Tags            []string          `json:"tags"`
	Skills          []string          `json:"skills"`
	SocialMedia     map[string]string `json:"social_media"`
	ConfidenceScore float64           `json:"confidence_score" validate:"gte=0,lte=1"`
	Summary         string            `json:"summary,omitempty"`
}

// ConfirmedContact is a ContactDraft that has been saved to the contact list.
// The ID is assigned exactly once at confirmation and the duplicate flag is
// advisory metadata, never re-evaluated afterward.
type ConfirmedContact struct {
	ContactDraft
	ID              string `json:"id"`
	IsDuplicate     bool   `json:"is_duplicate"`
	DuplicateReason string `json:"duplicate_reason,omitempty"`
}

// ExistingContactRef is the minimal projection of a confirmed contact sent to
// the duplicate-check step. Skills, summary and other fields are deliberately
// excluded from the payload.
type ExistingContactRef struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Company string `json:"company,omitempty"`
}

// Validate validates the ContactDraft using the validator.
func (d *ContactDraft) Validate() error {
	validate := validator.New()
	return validate.Struct(d)
}

// Clone returns a deep copy of the draft. Slices and the social media map are
// copied so edits to the clone never leak into the original.
func (d *ContactDraft) Clone() *ContactDraft {
	if d == nil {
		return nil
	}
	out := *d
	if d.Tags != nil {
		out.Tags = append([]string(nil), d.Tags...)
	}
	if d.Skills != nil {
		out.Skills = append([]string(nil), d.Skills...)
	}
	if d.SocialMedia != nil {
		out.SocialMedia = make(map[string]string, len(d.SocialMedia))
		for k, v := range d.SocialMedia {
			out.SocialMedia[k] = v
		}
	}
	return &out
}

// Ref returns the deduplication projection for a confirmed contact.
func (c *ConfirmedContact) Ref() ExistingContactRef {
	return ExistingContactRef{
		ID:      c.ID,
		Name:    c.FullName,
		Email:   c.Email,
		Company: c.Company,
	}
}

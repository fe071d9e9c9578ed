package types

import (
	"github.com/go-playground/validator/v10"
)

// EmptyListReason is the deterministic reason returned when the duplicate
// check runs against an empty contact list. No model call is made in that
// case.
const EmptyListReason = "List is empty"

// DuplicateVerdict is the result of comparing a candidate contact against the
// existing contact list. Reason is required even for non-duplicates.
type DuplicateVerdict struct {
	IsDuplicate bool   `json:"is_duplicate"`
	MatchedID   string `json:"matched_id,omitempty"`
	Reason      string `json:"reason" validate:"required,min=1"`
}

// Validate validates the DuplicateVerdict using the validator.
func (v *DuplicateVerdict) Validate() error {
	validate := validator.New()
	return validate.Struct(v)
}

// NoDuplicate returns the short-circuit verdict for an empty existing list.
func NoDuplicate() *DuplicateVerdict {
	return &DuplicateVerdict{IsDuplicate: false, Reason: EmptyListReason}
}

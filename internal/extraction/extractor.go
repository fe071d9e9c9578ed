// Package extraction provides the model-facing contact operations: vision
// extraction from a card image, normalization of an edited draft, and the
// semantic duplicate check. The matching and OCR logic is delegated entirely
// to the model; this package only shapes requests and validates responses.
package extraction

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonathan/contactlens/internal/llm"
	"github.com/jonathan/contactlens/internal/prompts"
	"github.com/jonathan/contactlens/internal/schemas"
	"github.com/jonathan/contactlens/internal/types"
)

// promptFile is the embedded prompt template file for contact operations.
const promptFile = "contact.json"

// Extractor runs the contact model operations against an injected LLM client.
// Injecting the client keeps pipeline and store logic testable without live
// calls.
type Extractor struct {
	client llm.Client
}

// NewExtractor creates an Extractor backed by the given client.
func NewExtractor(client llm.Client) *Extractor {
	return &Extractor{client: client}
}

// ExtractFromImage extracts a ContactDraft from raw business-card image bytes.
// The format is the image subtype (e.g. "jpeg", "png").
func (e *Extractor) ExtractFromImage(ctx context.Context, image []byte, format string) (*types.ContactDraft, error) {
	if len(image) == 0 {
		return nil, &APICallError{Message: "image data is empty"}
	}
	if format == "" {
		format = "jpeg"
	}

	prompt := prompts.MustGet(promptFile, "extract-card")

	responseText, err := e.client.GenerateVisionJSON(ctx, prompt, image, format, llm.TierPro)
	if err != nil {
		return nil, &APICallError{
			Message: "failed to extract contact from image",
			Cause:   err,
		}
	}

	return decodeDraft(responseText)
}

// Normalize re-formats and enriches a draft, returning a new draft. The
// prompt instructs the model to improve fields without deleting any; the
// wrapper itself replaces nothing.
func (e *Extractor) Normalize(ctx context.Context, draft *types.ContactDraft) (*types.ContactDraft, error) {
	if draft == nil {
		return nil, &APICallError{Message: "no draft to normalize"}
	}

	serialized, err := json.Marshal(draft)
	if err != nil {
		return nil, &ParseError{Message: "failed to serialize draft", Cause: err}
	}

	template := prompts.MustGet(promptFile, "improve-contact")
	prompt := prompts.Format(template, map[string]string{
		"JSONData": string(serialized),
	})

	responseText, err := e.client.GenerateJSON(ctx, prompt, llm.TierPro)
	if err != nil {
		return nil, &APICallError{
			Message: "failed to normalize contact data",
			Cause:   err,
		}
	}

	return decodeDraft(responseText)
}

// CheckDuplicate compares a candidate draft against the existing contact
// list. An empty list short-circuits to a deterministic non-duplicate verdict
// without any model call.
func (e *Extractor) CheckDuplicate(ctx context.Context, candidate *types.ContactDraft, existing []types.ExistingContactRef) (*types.DuplicateVerdict, error) {
	if candidate == nil {
		return nil, &APICallError{Message: "no candidate to check"}
	}

	if len(existing) == 0 {
		return types.NoDuplicate(), nil
	}

	existingJSON, err := json.Marshal(existing)
	if err != nil {
		return nil, &ParseError{Message: "failed to serialize existing contacts", Cause: err}
	}
	candidateJSON, err := json.Marshal(candidate)
	if err != nil {
		return nil, &ParseError{Message: "failed to serialize candidate", Cause: err}
	}

	template := prompts.MustGet(promptFile, "check-duplicate")
	prompt := prompts.Format(template, map[string]string{
		"ExistingData": string(existingJSON),
		"NewData":      string(candidateJSON),
	})

	responseText, err := e.client.GenerateJSON(ctx, prompt, llm.TierPro)
	if err != nil {
		return nil, &APICallError{
			Message: "failed to check for duplicates",
			Cause:   err,
		}
	}

	verdict, err := decodeVerdict(responseText)
	if err != nil {
		return nil, err
	}

	// A duplicate verdict must point at a contact we actually sent.
	if verdict.IsDuplicate && !refsContain(existing, verdict.MatchedID) {
		return nil, &ParseError{
			Message: fmt.Sprintf("matched_id %q does not reference an existing contact", verdict.MatchedID),
		}
	}

	return verdict, nil
}

// decodeDraft validates response text against the draft schema and decodes it.
func decodeDraft(responseText string) (*types.ContactDraft, error) {
	responseText = llm.CleanJSONBlock(responseText)

	if err := schemas.ValidateDraftJSON(responseText); err != nil {
		return nil, &ParseError{Message: "response failed schema validation", Cause: err}
	}

	var draft types.ContactDraft
	if err := json.Unmarshal([]byte(responseText), &draft); err != nil {
		return nil, &ParseError{Message: "failed to decode draft JSON", Cause: err}
	}

	if err := draft.Validate(); err != nil {
		return nil, &ParseError{Message: "decoded draft failed validation", Cause: err}
	}

	return &draft, nil
}

// decodeVerdict validates response text against the verdict schema and decodes it.
func decodeVerdict(responseText string) (*types.DuplicateVerdict, error) {
	responseText = llm.CleanJSONBlock(responseText)

	if err := schemas.ValidateVerdictJSON(responseText); err != nil {
		return nil, &ParseError{Message: "response failed schema validation", Cause: err}
	}

	var verdict types.DuplicateVerdict
	if err := json.Unmarshal([]byte(responseText), &verdict); err != nil {
		return nil, &ParseError{Message: "failed to decode verdict JSON", Cause: err}
	}

	if err := verdict.Validate(); err != nil {
		return nil, &ParseError{Message: "decoded verdict failed validation", Cause: err}
	}

	return &verdict, nil
}

func refsContain(refs []types.ExistingContactRef, id string) bool {
	for _, ref := range refs {
		if ref.ID == id {
			return true
		}
	}
	return false
}

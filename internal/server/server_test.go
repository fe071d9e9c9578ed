package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/contactlens/internal/pipeline"
	"github.com/jonathan/contactlens/internal/store"
	"github.com/jonathan/contactlens/internal/types"
)

// fakeService stubs the model operations behind the pipeline.
type fakeService struct {
	draft      *types.ContactDraft
	extractErr error
	verdict    *types.DuplicateVerdict
}

func (f *fakeService) ExtractFromImage(_ context.Context, _ []byte, _ string) (*types.ContactDraft, error) {
	if f.extractErr != nil {
		return nil, f.extractErr
	}
	return f.draft.Clone(), nil
}

func (f *fakeService) Normalize(_ context.Context, draft *types.ContactDraft) (*types.ContactDraft, error) {
	out := draft.Clone()
	out.Phone = "+1 415 555 1234"
	return out, nil
}

func (f *fakeService) CheckDuplicate(_ context.Context, _ *types.ContactDraft, existing []types.ExistingContactRef) (*types.DuplicateVerdict, error) {
	if len(existing) == 0 {
		return types.NoDuplicate(), nil
	}
	return f.verdict, nil
}

func sampleDraft() *types.ContactDraft {
	return &types.ContactDraft{
		FullName:        "Jane Doe",
		Company:         "Acme Corp",
		Email:           "jane@acme.com",
		Phone:           "+14155551234",
		ConfidenceScore: 0.95,
	}
}

func newTestServer(svc pipeline.Service) *Server {
	return NewWithPipeline(0, pipeline.New(svc, store.New()))
}

// uploadRequest builds a multipart POST with an image file field.
func uploadRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/extract", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func doJSON(t *testing.T, s *Server, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleExtract(t *testing.T) {
	s := newTestServer(&fakeService{draft: sampleDraft()})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, uploadRequest(t, "card.jpg", []byte{0xFF, 0xD8, 0xFF}))

	require.Equal(t, http.StatusOK, rec.Code)

	var draft types.ContactDraft
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &draft))
	assert.Equal(t, "Jane Doe", draft.FullName)
}

func TestHandleExtractRejectsMissingFile(t *testing.T) {
	s := newTestServer(&fakeService{draft: sampleDraft()})

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/extract", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleExtractRejectsUnsupportedType(t *testing.T) {
	s := newTestServer(&fakeService{draft: sampleDraft()})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, uploadRequest(t, "card.gif", []byte{0x47}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleExtractRejectsOversizedImage(t *testing.T) {
	s := newTestServer(&fakeService{draft: sampleDraft()})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, uploadRequest(t, "card.jpg", make([]byte, maxUploadBytes+1)))

	// Rejected outright, never truncated and passed on.
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "upload limit")
}

func TestHandleExtractModelFailure(t *testing.T) {
	s := newTestServer(&fakeService{extractErr: errors.New("model unreachable")})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, uploadRequest(t, "card.jpg", []byte{0x01}))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Extraction error")
}

func TestHandleImproveWithoutDraft(t *testing.T) {
	s := newTestServer(&fakeService{draft: sampleDraft()})

	rec := doJSON(t, s, http.MethodPost, "/improve", EditRequest{})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestExtractImproveConfirmFlow(t *testing.T) {
	s := newTestServer(&fakeService{draft: sampleDraft()})

	// Extract
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, uploadRequest(t, "card.jpg", []byte{0x01}))
	require.Equal(t, http.StatusOK, rec.Code)

	// Draft is visible
	rec = doJSON(t, s, http.MethodGet, "/draft", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Improve refreshes the draft
	rec = doJSON(t, s, http.MethodPost, "/improve", EditRequest{Edits: map[string]string{"company": "ACME"}})
	require.Equal(t, http.StatusOK, rec.Code)
	var improved types.ContactDraft
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &improved))
	assert.Equal(t, "+1 415 555 1234", improved.Phone)

	// Confirm appends to the list and consumes the draft
	rec = doJSON(t, s, http.MethodPost, "/confirm", EditRequest{Edits: map[string]string{"full_name": "Jane A. Doe"}})
	require.Equal(t, http.StatusCreated, rec.Code)
	var contact types.ConfirmedContact
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &contact))
	assert.NotEmpty(t, contact.ID)
	assert.Equal(t, "Jane A. Doe", contact.FullName)
	assert.False(t, contact.IsDuplicate)

	rec = doJSON(t, s, http.MethodGet, "/draft", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Stats reflect the append
	rec = doJSON(t, s, http.MethodGet, "/contacts/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 0, stats.Duplicates)
}

func TestHandleListContactsMasksPII(t *testing.T) {
	s := newTestServer(&fakeService{draft: sampleDraft()})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, uploadRequest(t, "card.jpg", []byte{0x01}))
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, s, http.MethodPost, "/confirm", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/contacts?mask_pii=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []store.Row
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "ja****@acme.com", rows[0].Email)
	assert.Equal(t, "*******1234", rows[0].Phone)

	// Unmasked view returns the stored values
	rec = doJSON(t, s, http.MethodGet, "/contacts", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	assert.Equal(t, "jane@acme.com", rows[0].Email)
}

func TestHandleGraph(t *testing.T) {
	s := newTestServer(&fakeService{draft: sampleDraft()})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, uploadRequest(t, "card.jpg", []byte{0x01}))
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, s, http.MethodPost, "/confirm", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/graph", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Acme Corp")
	assert.Contains(t, rec.Body.String(), "Jane Doe")
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(&fakeService{})

	rec := doJSON(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestModelEndpointRateLimit(t *testing.T) {
	t.Setenv("RATE_LIMIT_MODEL", "1")

	s := newTestServer(&fakeService{draft: sampleDraft()})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, uploadRequest(t, "card.jpg", []byte{0x01}))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, uploadRequest(t, "card.jpg", []byte{0x01}))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestCORSPreflightAllowed(t *testing.T) {
	s := newTestServer(&fakeService{})

	req := httptest.NewRequest(http.MethodOptions, "/contacts", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

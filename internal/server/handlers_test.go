package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lease-backend/internal/common/config"
	stderrors "lease-backend/internal/common/errors"
	"lease-backend/internal/common/logger"
	"lease-backend/internal/common/observability"
	"lease-backend/internal/models"
	"lease-backend/internal/search"
)

// ==========================
// Test Fakes
// ==========================

type fakePipeline struct {
	app *models.Application
	err error
}

func (f *fakePipeline) Submit(ctx context.Context, payload map[string]interface{}) (*models.Application, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.app, nil
}

type fakeLease struct {
	details *models.LeaseDetails
	err     error
}

func (f *fakeLease) Process(ctx context.Context, path string) (*models.LeaseDetails, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.details, nil
}

type fakeGetter struct {
	app *models.Application
	err error
}

func (f *fakeGetter) GetByID(ctx context.Context, id string) (*models.Application, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.app, nil
}

type fakeSearcher struct {
	result *search.Result
	err    error
	gotQ   search.Query
}

func (f *fakeSearcher) Search(ctx context.Context, q search.Query) (*search.Result, error) {
	f.gotQ = q
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type testDeps struct {
	pipeline *fakePipeline
	lease    *fakeLease
	getter   *fakeGetter
	searcher *fakeSearcher
}

func newTestApp(t *testing.T) (*fiber.App, *testDeps) {
	deps := &testDeps{
		pipeline: &fakePipeline{app: &models.Application{ID: "app-001", Priority: models.PriorityHigh}},
		lease:    &fakeLease{details: &models.LeaseDetails{RentAmount: "$1,200.00", Confidence: 0.75}},
		getter:   &fakeGetter{app: &models.Application{ID: "app-001"}},
		searcher: &fakeSearcher{result: &search.Result{Hits: []map[string]interface{}{}, TotalHits: 0}},
	}

	log := logger.NewTestLogger(t)
	handlers := NewHandlers(deps.pipeline, deps.lease, deps.getter, deps.searcher, log)
	cfg := &config.Config{}
	cfg.App.Name = "lease-backend-test"

	return SetupApp(cfg, handlers, &observability.Observability{}, log), deps
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// ==========================
// Route Tests
// ==========================

func TestHandleHealth(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decodeBody(t, resp)["status"])
}

func TestHandleSubmitApplication_Created(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/applications", map[string]interface{}{
		"applicantId": "applicant-001",
		"listingId":   "listing-001",
	})

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "app-001", decodeBody(t, resp)["id"])
}

func TestHandleSubmitApplication_ValidationError(t *testing.T) {
	app, deps := newTestApp(t)
	deps.pipeline.err = stderrors.NewApplicationValidationFailedError("applicantId: is required")

	resp := doJSON(t, app, http.MethodPost, "/api/applications", map[string]interface{}{})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	errBody := body["error"].(map[string]interface{})
	assert.Equal(t, string(stderrors.ErrCodeApplicationValidationFailed), errBody["code"])
}

func TestHandleSubmitApplication_Duplicate(t *testing.T) {
	app, deps := newTestApp(t)
	deps.pipeline.err = stderrors.NewDuplicateApplicationError("applicant-001/listing-001")

	resp := doJSON(t, app, http.MethodPost, "/api/applications", map[string]interface{}{
		"applicantId": "applicant-001",
	})

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestHandleSubmitApplication_MalformedJSON(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/applications", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleGetApplication_NotFound(t *testing.T) {
	app, deps := newTestApp(t)
	deps.getter.err = stderrors.NewApplicationNotFoundError("missing")

	resp := doJSON(t, app, http.MethodGet, "/api/applications/missing", nil)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandleGetApplication_Found(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/api/applications/app-001", nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "app-001", decodeBody(t, resp)["id"])
}

func TestHandleSearchApplications_ParsesQuery(t *testing.T) {
	app, deps := newTestApp(t)

	resp := doJSON(t, app, http.MethodGet,
		"/api/applications/search?q=smith&listingId=listing-001&priority=high&minScore=60&size=5", nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "smith", deps.searcher.gotQ.Keywords)
	assert.Equal(t, "listing-001", deps.searcher.gotQ.ListingID)
	assert.Equal(t, "high", deps.searcher.gotQ.Priority)
	assert.Equal(t, 60, deps.searcher.gotQ.MinScore)
	assert.Equal(t, 5, deps.searcher.gotQ.Size)
}

func TestHandleProcessLease_Success(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/ai/process-lease", map[string]interface{}{
		"filePath": "/data/leases/lease-001.pdf",
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "$1,200.00", decodeBody(t, resp)["rentAmount"])
}

func TestHandleProcessLease_MissingPath(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/ai/process-lease", map[string]interface{}{})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleProcessLease_FileNotFound(t *testing.T) {
	app, deps := newTestApp(t)
	deps.lease.err = stderrors.NewLeaseFileNotFoundError("/missing.pdf")

	resp := doJSON(t, app, http.MethodPost, "/api/ai/process-lease", map[string]interface{}{
		"filePath": "/missing.pdf",
	})

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPITokenAuth(t *testing.T) {
	deps := &testDeps{
		getter: &fakeGetter{app: &models.Application{ID: "app-001"}},
	}
	log := logger.NewTestLogger(t)
	handlers := NewHandlers(deps.pipeline, deps.lease, deps.getter, deps.searcher, log)
	cfg := &config.Config{}
	cfg.App.Name = "lease-backend-test"
	cfg.Server.APIToken = "secret-token"
	app := SetupApp(cfg, handlers, &observability.Observability{}, log)

	t.Run("missing token rejected", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/applications/app-001", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("wrong token rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/applications/app-001", nil)
		req.Header.Set("Authorization", "Bearer wrong-token")

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("valid token accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/applications/app-001", nil)
		req.Header.Set("Authorization", "Bearer secret-token")

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("health endpoint bypasses auth", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/healthz", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestUnknownRouteReturnsJSON404(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/nope", nil)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.NotNil(t, body["error"])
}

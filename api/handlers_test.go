/*
handlers_test.go - HTTP-level tests for the itinerary service

Tests drive the full router (auth middleware included) against an
in-memory store, covering:
- Login and token-guarded access
- The wizard session lifecycle over HTTP
- Dashboard listing, withdraw and the approval workflow
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/travel-desk/store/sqlite"
)

type testServer struct {
	t       *testing.T
	router  http.Handler
	handler *Handler
	store   *sqlite.Store
	token   string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	hash, err := HashPassword("Asha@123")
	require.NoError(t, err)
	require.NoError(t, store.SaveEmployee(context.Background(), sqlite.Employee{
		EmployeeID: "EMP-001", FirstName: "Asha", LastName: "Rao",
		Email: "asha.rao@example.com", Band: "B2",
		Department: "Platform", Location: "Mumbai",
		Username: "asharao", PasswordHash: hash,
	}))

	handler := NewHandler(store, []byte("test-secret"))
	return &testServer{
		t:       t,
		router:  NewRouter(handler),
		handler: handler,
		store:   store,
	}
}

// login authenticates EMP-001 and stores the bearer token for later calls.
func (ts *testServer) login() {
	ts.t.Helper()
	rec := ts.do("POST", "/api/auth/login", LoginRequest{Username: "asharao", Password: "Asha@123"})
	require.Equal(ts.t, http.StatusOK, rec.Code, rec.Body.String())

	var resp LoginResponse
	require.NoError(ts.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	ts.token = resp.Token
}

func (ts *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	ts.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(ts.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if ts.token != "" {
		req.Header.Set("Authorization", "Bearer "+ts.token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) session(method, path string, body any, wantStatus int) SessionDTO {
	ts.t.Helper()
	rec := ts.do(method, path, body)
	require.Equal(ts.t, wantStatus, rec.Code, "%s %s: %s", method, path, rec.Body.String())

	var dto SessionDTO
	require.NoError(ts.t, json.Unmarshal(rec.Body.Bytes(), &dto))
	return dto
}

// =============================================================================
// AUTH
// =============================================================================

func TestLogin_RejectsBadCredentials(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do("POST", "/api/auth/login", LoginRequest{Username: "asharao", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do("POST", "/api/auth/login", LoginRequest{Username: "nobody", Password: "Asha@123"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_GuardsProtectedRoutes(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do("GET", "/api/auth/profile", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	ts.token = "Bearer-not-a-token"
	rec = ts.do("GET", "/api/auth/profile", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	ts.token = ""
	ts.login()
	rec = ts.do("GET", "/api/auth/profile", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var emp EmployeeDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &emp))
	assert.Equal(t, "EMP-001", emp.EmployeeID)
	assert.Equal(t, "Asha", emp.FirstName)
}

// =============================================================================
// WIZARD SESSION OVER HTTP
// =============================================================================

func TestSession_FullWizardFlow(t *testing.T) {
	ts := newTestServer(t)
	ts.login()

	// Step 1: the session opens with the stored profile.
	dto := ts.session("POST", "/api/session", nil, http.StatusCreated)
	assert.Equal(t, 1, dto.Step)
	assert.Equal(t, "EMP-001", dto.Employee.EmployeeID)

	dto = ts.session("POST", "/api/session/advance", nil, http.StatusOK)
	assert.Equal(t, 2, dto.Step)

	// Step 2 gate: travel and trip type required before advancing.
	rec := ts.do("POST", "/api/session/advance", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	purpose := "Client workshop"
	dto = ts.session("PUT", "/api/session/travel", SetTravelRequest{
		TravelType: "Domestic", TripType: "Round-trip", Purpose: &purpose,
	}, http.StatusOK)
	assert.Equal(t, "Domestic", dto.TravelType)

	dto = ts.session("POST", "/api/session/advance", nil, http.StatusOK)
	require.Equal(t, 3, dto.Step)

	// Step 3: select a flight and fill its details through the editor.
	dto = ts.session("POST", "/api/session/modes/toggle", ModeRequest{Mode: "flight"}, http.StatusOK)
	assert.Equal(t, []string{"flight"}, dto.SelectedModes)
	assert.Empty(t, dto.Details, "selection alone must not create a detail")

	ts.session("POST", "/api/session/modes/open", ModeRequest{Mode: "flight"}, http.StatusOK)
	ts.session("PUT", "/api/session/modes/field", SetFieldRequest{Field: "from_airport", Value: "Mumbai (BOM)"}, http.StatusOK)
	ts.session("PUT", "/api/session/modes/field", SetFieldRequest{Field: "to_airport", Value: "Delhi (DEL)"}, http.StatusOK)
	ts.session("PUT", "/api/session/modes/field", SetFieldRequest{Field: "travel_date", Value: "2030-06-10"}, http.StatusOK)
	ts.session("PUT", "/api/session/modes/field", SetFieldRequest{Field: "return_date", Value: "2030-06-13"}, http.StatusOK)

	dto = ts.session("POST", "/api/session/modes/commit", nil, http.StatusOK)
	require.Len(t, dto.Details, 1)
	assert.Nil(t, dto.Editor, "commit closes the editor")

	dto = ts.session("POST", "/api/session/advance", nil, http.StatusOK)
	require.Equal(t, 4, dto.Step)
	assert.NotEqual(t, "0.00", dto.AdvanceEstimate, "review shows a travel advance")

	// Submit persists a pending record and ends the session.
	rec = ts.do("POST", "/api/session/submit", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp SubmitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Pending", resp.Status)

	it, err := ts.store.GetItinerary(context.Background(), resp.ID)
	require.NoError(t, err)
	require.NotNil(t, it)
	assert.Equal(t, "EMP-001", it.EmployeeID)
	assert.Equal(t, "Mumbai (BOM)", it.FromCity)
	assert.Equal(t, "2030-06-13", it.EndDate)

	rec = ts.do("GET", "/api/session", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "submitted session is gone")
}

func TestSession_ValidationErrorsSurfaceAs400(t *testing.T) {
	ts := newTestServer(t)
	ts.login()
	ts.session("POST", "/api/session", nil, http.StatusCreated)

	// Unknown mode
	rec := ts.do("POST", "/api/session/modes/toggle", ModeRequest{Mode: "car"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Editing without an open buffer
	rec = ts.do("PUT", "/api/session/modes/field", SetFieldRequest{Field: "from_airport", Value: "BOM"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Jump out of range
	rec = ts.do("POST", "/api/session/jump", JumpRequest{Step: 7})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSession_RequiresActiveSession(t *testing.T) {
	ts := newTestServer(t)
	ts.login()

	rec := ts.do("GET", "/api/session", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	ts.session("POST", "/api/session", nil, http.StatusCreated)
	rec = ts.do("DELETE", "/api/session", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do("POST", "/api/session/advance", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// DASHBOARD AND APPROVAL WORKFLOW
// =============================================================================

func seedItinerary(t *testing.T, store *sqlite.Store, id, employeeID string, status sqlite.Status) {
	t.Helper()
	require.NoError(t, store.InsertItinerary(context.Background(), sqlite.Itinerary{
		ID: id, EmployeeID: employeeID,
		FromCity: "Mumbai (BOM)", ToCity: "Delhi (DEL)",
		StartDate: "2030-06-10", EndDate: "2030-06-13",
		Status: status, Type: "Domestic", Mode: "Flight",
		Purpose: "Client workshop", RequestDate: "2030-05-01",
	}))
}

func TestDashboard_ListIsOwnerScoped(t *testing.T) {
	ts := newTestServer(t)
	ts.login()
	seedItinerary(t, ts.store, "itn-1", "EMP-001", sqlite.StatusPending)
	seedItinerary(t, ts.store, "itn-2", "EMP-002", sqlite.StatusPending)

	rec := ts.do("GET", "/api/itineraries", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ItineraryListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "itn-1", resp.Items[0].ID)

	// Foreign records read as not-found.
	rec = ts.do("GET", "/api/itineraries/itn-2", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDashboard_WithdrawLifecycle(t *testing.T) {
	ts := newTestServer(t)
	ts.login()
	seedItinerary(t, ts.store, "itn-1", "EMP-001", sqlite.StatusPending)

	rec := ts.do("PATCH", "/api/itineraries/itn-1/withdraw", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var dto ItineraryDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, "Withdrawn", dto.Status)

	// Terminal states cannot be withdrawn again.
	rec = ts.do("PATCH", "/api/itineraries/itn-1/withdraw", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAdmin_ApproveRejectOnlyPending(t *testing.T) {
	ts := newTestServer(t)
	ts.login()
	seedItinerary(t, ts.store, "itn-1", "EMP-002", sqlite.StatusPending)
	seedItinerary(t, ts.store, "itn-2", "EMP-002", sqlite.StatusPending)

	rec := ts.do("POST", "/api/admin/itineraries/itn-1/approve", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var dto ItineraryDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, "Approved", dto.Status)

	// A decided itinerary cannot be decided again.
	rec = ts.do("POST", "/api/admin/itineraries/itn-1/reject", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do("POST", "/api/admin/itineraries/itn-2/reject", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, "Rejected", dto.Status)
}

func TestDashboard_DeleteOwnRecord(t *testing.T) {
	ts := newTestServer(t)
	ts.login()
	seedItinerary(t, ts.store, "itn-1", "EMP-001", sqlite.StatusWithdrawn)

	rec := ts.do("DELETE", "/api/itineraries/itn-1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	it, err := ts.store.GetItinerary(context.Background(), "itn-1")
	require.NoError(t, err)
	assert.Nil(t, it)
}

// =============================================================================
// SWEEPER
// =============================================================================

func TestCompletionSweeper_RunNow(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	// An approved trip that ended long ago, and one still ahead.
	require.NoError(t, ts.store.InsertItinerary(ctx, sqlite.Itinerary{
		ID: "itn-old", EmployeeID: "EMP-001",
		FromCity: "Mumbai (BOM)", ToCity: "Delhi (DEL)",
		StartDate: "2020-01-01", EndDate: "2020-01-04",
		Status: sqlite.StatusApproved, RequestDate: "2019-12-01",
	}))
	seedItinerary(t, ts.store, "itn-future", "EMP-001", sqlite.StatusApproved)

	sweeper := NewCompletionSweeper(ts.store)
	sweeper.RunNow()

	it, err := ts.store.GetItinerary(ctx, "itn-old")
	require.NoError(t, err)
	assert.Equal(t, sqlite.StatusCompleted, it.Status)

	it, err = ts.store.GetItinerary(ctx, "itn-future")
	require.NoError(t, err)
	assert.Equal(t, sqlite.StatusApproved, it.Status, "future trips are untouched")
}

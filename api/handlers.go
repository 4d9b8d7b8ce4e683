/*
handlers.go - HTTP API handlers for the travel itinerary service

PURPOSE:
  Exposes the itinerary wizard and dashboard via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the wizard
  engine and the store.

ENDPOINTS:
  Auth:
    POST   /api/auth/login               Credential login (see auth.go)
    GET    /api/auth/profile             Signed-in employee profile

  Wizard session (one per employee):
    POST   /api/session                  Start a wizard session
    GET    /api/session                  Current wizard state
    DELETE /api/session                  Discard the session
    PUT    /api/session/travel           Set travel/trip type and purpose
    POST   /api/session/modes/toggle     Select or deselect a mode
    POST   /api/session/modes/open       Open a mode's detail editor
    PUT    /api/session/modes/field      Write one editor field
    POST   /api/session/modes/cancel     Discard the open editor
    POST   /api/session/modes/commit     Validate and save the editor
    POST   /api/session/advance          Next step (validated)
    POST   /api/session/retreat          Previous step (always allowed)
    POST   /api/session/jump             Jump to a step
    POST   /api/session/submit           Assemble and persist the itinerary

  Dashboard:
    GET    /api/itineraries              List own itineraries (filter/search/page)
    GET    /api/itineraries/{id}         Get one itinerary
    PATCH  /api/itineraries/{id}/withdraw  Withdraw a pending/approved request
    DELETE /api/itineraries/{id}         Delete own record

  Admin:
    GET    /api/admin/itineraries        List all itineraries
    POST   /api/admin/itineraries/{id}/approve
    POST   /api/admin/itineraries/{id}/reject

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 401: Missing/invalid token
  - 404: Resource not found
  - 409: Conflict (status transition not allowed)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - auth.go: Login and token middleware
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/warp/travel-desk/itinerary"
	"github.com/warp/travel-desk/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     *sqlite.Store
	JWTSecret []byte

	// One live wizard session per employee. The outer mutex guards the map;
	// each entry serializes calls into its session.
	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	mu      sync.Mutex
	session *itinerary.Session
}

// NewHandler creates a new handler with the given store and token secret.
func NewHandler(store *sqlite.Store, jwtSecret []byte) *Handler {
	return &Handler{
		Store:     store,
		JWTSecret: jwtSecret,
		sessions:  make(map[string]*sessionEntry),
	}
}

// =============================================================================
// STORE-BACKED WIZARD COLLABORATORS
// =============================================================================

// storeProfiles feeds the wizard's one-time profile fetch from the store.
type storeProfiles struct {
	store      *sqlite.Store
	employeeID string
}

func (p *storeProfiles) FetchEmployeeProfile(ctx context.Context) (itinerary.EmployeeInfo, error) {
	emp, err := p.store.GetEmployee(ctx, p.employeeID)
	if err != nil {
		return itinerary.EmployeeInfo{}, err
	}
	if emp == nil {
		return itinerary.EmployeeInfo{}, errors.New("employee not found")
	}
	return itinerary.EmployeeInfo{
		EmployeeID:  emp.EmployeeID,
		FirstName:   emp.FirstName,
		LastName:    emp.LastName,
		Email:       emp.Email,
		Contact:     emp.Contact,
		Designation: emp.Designation,
		Band:        emp.Band,
		Department:  emp.Department,
		Location:    emp.Location,
	}, nil
}

// storeSubmitter persists an assembled payload as a pending itinerary.
type storeSubmitter struct {
	store      *sqlite.Store
	employeeID string
}

func (s *storeSubmitter) SubmitItinerary(ctx context.Context, p itinerary.Payload) (itinerary.ItineraryID, error) {
	id := "itn-" + uuid.NewString()
	record := sqlite.Itinerary{
		ID:          id,
		EmployeeID:  s.employeeID,
		FromCity:    p.FromCity,
		ToCity:      p.ToCity,
		StartDate:   p.StartDate.String(),
		EndDate:     p.EndDate.String(),
		Status:      sqlite.StatusPending,
		Type:        string(p.Type),
		Mode:        p.Mode,
		Purpose:     p.Purpose,
		RequestDate: itinerary.Today().String(),
	}
	if err := s.store.InsertItinerary(ctx, record); err != nil {
		return "", err
	}
	return itinerary.ItineraryID(id), nil
}

// =============================================================================
// WIZARD SESSION ENDPOINTS
// =============================================================================

// CreateSession starts a fresh wizard run for the caller, replacing any
// previous unfinished one.
// POST /api/session
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	employeeID := EmployeeID(r.Context())

	session := itinerary.NewSession(
		&storeProfiles{store: h.Store, employeeID: employeeID},
		&storeSubmitter{store: h.Store, employeeID: employeeID},
	)
	if err := session.Start(r.Context()); err != nil {
		// Non-blocking: the wizard proceeds with an empty profile.
		log.Printf("[api] profile fetch failed for %s: %v", employeeID, err)
	}

	h.mu.Lock()
	h.sessions[employeeID] = &sessionEntry{session: session}
	h.mu.Unlock()

	writeJSON(w, http.StatusCreated, toSessionDTO(session))
}

// GetSession returns the caller's current wizard state.
// GET /api/session
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *itinerary.Session) error { return nil })
}

// DiscardSession drops the caller's wizard session.
// DELETE /api/session
func (h *Handler) DiscardSession(w http.ResponseWriter, r *http.Request) {
	employeeID := EmployeeID(r.Context())
	h.mu.Lock()
	delete(h.sessions, employeeID)
	h.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

// SetTravel updates step-2 selections. Omitted fields stay unchanged.
// PUT /api/session/travel
func (h *Handler) SetTravel(w http.ResponseWriter, r *http.Request) {
	var req SetTravelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	h.withSession(w, r, func(s *itinerary.Session) error {
		if req.TravelType != "" {
			s.SetTravelType(itinerary.TravelType(req.TravelType))
		}
		if req.TravelSubType != "" {
			s.SetTravelSubType(itinerary.TravelSubType(req.TravelSubType))
		}
		if req.TripType != "" {
			s.SetTripType(itinerary.TripType(req.TripType))
		}
		if req.Purpose != nil {
			s.SetPurpose(*req.Purpose)
		}
		return nil
	})
}

// ToggleMode selects or deselects a travel mode.
// POST /api/session/modes/toggle
func (h *Handler) ToggleMode(w http.ResponseWriter, r *http.Request) {
	var req ModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	h.withSession(w, r, func(s *itinerary.Session) error {
		return s.ToggleMode(itinerary.ModeKind(req.Mode))
	})
}

// OpenMode opens the detail editor for a selected mode.
// POST /api/session/modes/open
func (h *Handler) OpenMode(w http.ResponseWriter, r *http.Request) {
	var req ModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	h.withSession(w, r, func(s *itinerary.Session) error {
		return s.OpenMode(itinerary.ModeKind(req.Mode))
	})
}

// SetEditorField writes one field into the open scratch buffer.
// PUT /api/session/modes/field
func (h *Handler) SetEditorField(w http.ResponseWriter, r *http.Request) {
	var req SetFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	h.withSession(w, r, func(s *itinerary.Session) error {
		return s.SetField(itinerary.Field(req.Field), req.Value)
	})
}

// CancelEdit discards the open scratch buffer.
// POST /api/session/modes/cancel
func (h *Handler) CancelEdit(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *itinerary.Session) error {
		s.CancelEdit()
		return nil
	})
}

// CommitMode validates the scratch buffer and saves it into the draft.
// POST /api/session/modes/commit
func (h *Handler) CommitMode(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *itinerary.Session) error {
		return s.CommitMode()
	})
}

// Advance moves the wizard forward one step.
// POST /api/session/advance
func (h *Handler) Advance(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *itinerary.Session) error {
		return s.Advance()
	})
}

// Retreat moves the wizard back one step.
// POST /api/session/retreat
func (h *Handler) Retreat(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *itinerary.Session) error {
		s.Retreat()
		return nil
	})
}

// Jump moves the wizard directly to a step.
// POST /api/session/jump
func (h *Handler) Jump(w http.ResponseWriter, r *http.Request) {
	var req JumpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	h.withSession(w, r, func(s *itinerary.Session) error {
		return s.JumpTo(req.Step)
	})
}

// Submit assembles the draft and persists it as a pending itinerary. On
// success the session is removed; on failure the draft survives for retry.
// POST /api/session/submit
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	employeeID := EmployeeID(r.Context())
	entry := h.session(employeeID)
	if entry == nil {
		writeError(w, http.StatusNotFound, "No active wizard session", nil)
		return
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	id, err := entry.session.Submit(r.Context())
	if err != nil {
		if itinerary.IsValidationError(err) {
			writeError(w, http.StatusBadRequest, "Itinerary is not ready to submit", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to submit itinerary", err)
		return
	}

	h.mu.Lock()
	delete(h.sessions, employeeID)
	h.mu.Unlock()

	writeJSON(w, http.StatusCreated, SubmitResponse{
		ID:     string(id),
		Status: string(sqlite.StatusPending),
	})
}

// session returns the caller's live entry, or nil.
func (h *Handler) session(employeeID string) *sessionEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sessions[employeeID]
}

// withSession runs fn against the caller's session and writes the refreshed
// wizard state, mapping engine validation failures to 400.
func (h *Handler) withSession(w http.ResponseWriter, r *http.Request, fn func(*itinerary.Session) error) {
	entry := h.session(EmployeeID(r.Context()))
	if entry == nil {
		writeError(w, http.StatusNotFound, "No active wizard session", nil)
		return
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	// Session operations never touch external state, so every failure is a
	// user-correctable one: malformed dates, gate violations, unknown modes.
	if err := fn(entry.session); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionDTO(entry.session))
}

// =============================================================================
// DASHBOARD ENDPOINTS
// =============================================================================

// ListItineraries returns the caller's itineraries, filtered and paged.
// GET /api/itineraries?status=&type=&q=&limit=&offset=
func (h *Handler) ListItineraries(w http.ResponseWriter, r *http.Request) {
	h.listItineraries(w, r, EmployeeID(r.Context()))
}

// ListAllItineraries returns every employee's itineraries.
// GET /api/admin/itineraries
func (h *Handler) ListAllItineraries(w http.ResponseWriter, r *http.Request) {
	h.listItineraries(w, r, "")
}

func (h *Handler) listItineraries(w http.ResponseWriter, r *http.Request, employeeID string) {
	q := r.URL.Query()
	filter := sqlite.ListFilter{
		EmployeeID: employeeID,
		Status:     q.Get("status"),
		Type:       q.Get("type"),
		Search:     q.Get("q"),
	}
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	filter.Offset, _ = strconv.Atoi(q.Get("offset"))
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}

	items, total, err := h.Store.ListItineraries(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list itineraries", err)
		return
	}

	dtos := make([]ItineraryDTO, 0, len(items))
	for _, it := range items {
		dtos = append(dtos, toItineraryDTO(it))
	}
	writeJSON(w, http.StatusOK, ItineraryListResponse{
		Items:  dtos,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

// GetItinerary returns one of the caller's itineraries.
// GET /api/itineraries/{id}
func (h *Handler) GetItinerary(w http.ResponseWriter, r *http.Request) {
	it, ok := h.ownItinerary(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toItineraryDTO(*it))
}

// WithdrawItinerary withdraws a pending or approved request. Completed,
// rejected and already-withdrawn records cannot be withdrawn.
// PATCH /api/itineraries/{id}/withdraw
func (h *Handler) WithdrawItinerary(w http.ResponseWriter, r *http.Request) {
	it, ok := h.ownItinerary(w, r)
	if !ok {
		return
	}
	if !it.Status.CanWithdraw() {
		writeError(w, http.StatusConflict, "Itinerary cannot be withdrawn in status "+string(it.Status), nil)
		return
	}

	if err := h.Store.UpdateItineraryStatus(r.Context(), it.ID, sqlite.StatusWithdrawn); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to withdraw itinerary", err)
		return
	}
	it.Status = sqlite.StatusWithdrawn
	writeJSON(w, http.StatusOK, toItineraryDTO(*it))
}

// DeleteItinerary removes one of the caller's records.
// DELETE /api/itineraries/{id}
func (h *Handler) DeleteItinerary(w http.ResponseWriter, r *http.Request) {
	it, ok := h.ownItinerary(w, r)
	if !ok {
		return
	}
	if err := h.Store.DeleteItinerary(r.Context(), it.ID, EmployeeID(r.Context())); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete itinerary", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ownItinerary loads {id} and enforces that the caller owns it.
func (h *Handler) ownItinerary(w http.ResponseWriter, r *http.Request) (*sqlite.Itinerary, bool) {
	id := chi.URLParam(r, "id")
	it, err := h.Store.GetItinerary(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get itinerary", err)
		return nil, false
	}
	// A foreign record reads as not-found rather than forbidden.
	if it == nil || it.EmployeeID != EmployeeID(r.Context()) {
		writeError(w, http.StatusNotFound, "Itinerary not found", nil)
		return nil, false
	}
	return it, true
}

// =============================================================================
// ADMIN ENDPOINTS
// =============================================================================

// ApproveItinerary moves a pending request to Approved.
// POST /api/admin/itineraries/{id}/approve
func (h *Handler) ApproveItinerary(w http.ResponseWriter, r *http.Request) {
	h.decideItinerary(w, r, sqlite.StatusApproved)
}

// RejectItinerary moves a pending request to Rejected.
// POST /api/admin/itineraries/{id}/reject
func (h *Handler) RejectItinerary(w http.ResponseWriter, r *http.Request) {
	h.decideItinerary(w, r, sqlite.StatusRejected)
}

func (h *Handler) decideItinerary(w http.ResponseWriter, r *http.Request, to sqlite.Status) {
	id := chi.URLParam(r, "id")
	it, err := h.Store.GetItinerary(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get itinerary", err)
		return
	}
	if it == nil {
		writeError(w, http.StatusNotFound, "Itinerary not found", nil)
		return
	}
	if it.Status != sqlite.StatusPending {
		writeError(w, http.StatusConflict, "Only pending itineraries can be decided", nil)
		return
	}

	if err := h.Store.UpdateItineraryStatus(r.Context(), id, to); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update itinerary", err)
		return
	}
	it.Status = to
	writeJSON(w, http.StatusOK, toItineraryDTO(*it))
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

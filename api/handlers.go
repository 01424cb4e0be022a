/*
handlers.go - HTTP handlers for the timecard API

PURPOSE:
  Exposes the store and the time-accounting engine over REST. Handlers
  parse and validate input, delegate to the store or engine, and map
  errors onto HTTP statuses.

REQUEST FLOW:
  1. Decode and validate the request
  2. Load snapshots from the store
  3. Call the engine (reports) or the store (CRUD, timer)
  4. Serialize the response

ERROR HANDLING:
  - 400: Malformed JSON, validation failures, bad query parameters
  - 404: Unknown client or entry
  - 409: Stopping an already-stopped timer
  - 500: Store failures

SEE ALSO:
  - dto.go: Request/response shapes
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tally/timecard-engine/engine"
	"github.com/tally/timecard-engine/rates"
	"github.com/tally/timecard-engine/store"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  store.Store
	Rates  *rates.Client
	Logger *zap.Logger

	// Now supplies the reference instant for reports and the timer.
	// Overridable so tests can pin it.
	Now func() time.Time

	validate *validator.Validate
}

// NewHandler creates a handler over the given store.
func NewHandler(st store.Store, rc *rates.Client, logger *zap.Logger) *Handler {
	return &Handler{
		Store:    st,
		Rates:    rc,
		Logger:   logger,
		Now:      time.Now,
		validate: validator.New(),
	}
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func (h *Handler) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Logger.Error("encode response", zap.Error(err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, msg string) {
	h.respondJSON(w, status, errorResponse{Error: msg})
}

// respondStoreError maps store sentinels onto HTTP statuses.
func (h *Handler) respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case store.IsNotFound(err):
		h.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrEntryAlreadyStopped):
		h.respondError(w, http.StatusConflict, err.Error())
	default:
		h.Logger.Error("store operation failed", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// =============================================================================
// CLIENT HANDLERS
// =============================================================================

func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.Store.ListClients(r.Context())
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	out := make([]ClientDTO, 0, len(clients))
	for _, c := range clients {
		out = append(out, clientToDTO(c))
	}
	h.respondJSON(w, http.StatusOK, out)
}

func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	c, err := h.Store.GetClient(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, clientToDTO(c))
}

// clientFromRequest converts a validated request into an engine.Client.
func (h *Handler) clientFromRequest(w http.ResponseWriter, req ClientRequest) (engine.Client, bool) {
	// Pay-cycle fields only make sense as a pair.
	if (req.PayCycleInterval == "") != (req.PayCycleStartDate == "") {
		h.respondError(w, http.StatusBadRequest,
			"pay_cycle_interval and pay_cycle_start_date must be set together")
		return engine.Client{}, false
	}
	if req.HourlyRate.IsNegative() {
		h.respondError(w, http.StatusBadRequest, "hourly_rate must not be negative")
		return engine.Client{}, false
	}

	c := engine.Client{
		Name:             req.Name,
		Email:            req.Email,
		HourlyRate:       req.HourlyRate,
		PayCycleInterval: engine.PayCycleInterval(req.PayCycleInterval),
	}
	if req.PayCycleStartDate != "" {
		anchor, err := time.ParseInLocation("2006-01-02", req.PayCycleStartDate, time.UTC)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "invalid pay_cycle_start_date")
			return engine.Client{}, false
		}
		c.PayCycleStartDate = &anchor
	}
	return c, true
}

func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req ClientRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	c, ok := h.clientFromRequest(w, req)
	if !ok {
		return
	}

	created, err := h.Store.CreateClient(r.Context(), c)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, clientToDTO(created))
}

func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	var req ClientRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	c, ok := h.clientFromRequest(w, req)
	if !ok {
		return
	}
	c.ID = chi.URLParam(r, "id")

	updated, err := h.Store.UpdateClient(r.Context(), c)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, clientToDTO(updated))
}

func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteClient(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// TIME ENTRY HANDLERS
// =============================================================================

func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Store.ListEntries(r.Context())
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	out := make([]EntryDTO, 0, len(entries))
	for _, ti := range entries {
		out = append(out, entryToDTO(ti))
	}
	h.respondJSON(w, http.StatusOK, out)
}

// entryFromRequest enforces the completion invariant: an entry has an
// end time iff it has a duration.
func (h *Handler) entryFromRequest(w http.ResponseWriter, req EntryRequest) (engine.TimeInterval, bool) {
	if (req.EndTime == nil) != (req.DurationMinutes == nil) {
		h.respondError(w, http.StatusBadRequest,
			"end_time and duration_minutes must be set together")
		return engine.TimeInterval{}, false
	}
	return engine.TimeInterval{
		ClientID:        req.ClientID,
		Description:     req.Description,
		StartTime:       req.StartTime.UTC(),
		EndTime:         req.EndTime,
		DurationMinutes: req.DurationMinutes,
	}, true
}

func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req EntryRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	ti, ok := h.entryFromRequest(w, req)
	if !ok {
		return
	}

	created, err := h.Store.CreateEntry(r.Context(), ti)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, entryToDTO(created))
}

func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	var req EntryRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	ti, ok := h.entryFromRequest(w, req)
	if !ok {
		return
	}
	ti.ID = chi.URLParam(r, "id")

	updated, err := h.Store.UpdateEntry(r.Context(), ti)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, entryToDTO(updated))
}

func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteEntry(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetActiveEntry(w http.ResponseWriter, r *http.Request) {
	active, err := h.Store.ActiveEntry(r.Context())
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	if active == nil {
		// No running timer; an explicit null keeps the contract simple.
		h.respondJSON(w, http.StatusOK, nil)
		return
	}
	h.respondJSON(w, http.StatusOK, entryToDTO(*active))
}

// =============================================================================
// TIMER HANDLERS
// =============================================================================

func (h *Handler) StartTimer(w http.ResponseWriter, r *http.Request) {
	var req StartTimerRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	entry, err := h.Store.StartTimer(r.Context(), req.ClientID, req.Description, h.Now())
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, entryToDTO(entry))
}

func (h *Handler) StopTimer(w http.ResponseWriter, r *http.Request) {
	var req StopTimerRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	entry, err := h.Store.StopTimer(r.Context(), req.ID, req.Description, h.Now())
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, entryToDTO(entry))
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// snapshot loads the immutable inputs every report needs.
func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) ([]engine.TimeInterval, []engine.Client, bool) {
	entries, err := h.Store.ListEntries(r.Context())
	if err != nil {
		h.respondStoreError(w, err)
		return nil, nil, false
	}
	clients, err := h.Store.ListClients(r.Context())
	if err != nil {
		h.respondStoreError(w, err)
		return nil, nil, false
	}
	return entries, clients, true
}

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	entries, clients, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	stats := engine.Dashboard(entries, clients, h.Now())
	h.respondJSON(w, http.StatusOK, DashboardDTO{
		CurrentShiftHours: stats.CurrentShiftHours,
		PayCycleEarnings:  stats.PayCycleEarnings,
		PayCycleLabel:     stats.PayCycleLabel,
		ThisMonthHours:    stats.ThisMonthHours,
		ThisMonthEarnings: stats.ThisMonthEarnings,
		ActiveClients:     stats.ActiveClients,
		CompletedEntries:  stats.CompletedEntries,
	})
}

func (h *Handler) GetShiftReport(w http.ResponseWriter, r *http.Request) {
	entries, clients, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	var start, end time.Time
	if v := r.URL.Query().Get("start"); v != "" {
		parsed, err := time.ParseInLocation("2006-01-02", v, time.UTC)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "invalid start date, want YYYY-MM-DD")
			return
		}
		start = parsed
	}
	if v := r.URL.Query().Get("end"); v != "" {
		parsed, err := time.ParseInLocation("2006-01-02", v, time.UTC)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "invalid end date, want YYYY-MM-DD")
			return
		}
		end = parsed
	}

	report := engine.BuildShiftReport(entries, clients, start, end, h.Now())
	h.respondJSON(w, http.StatusOK, shiftReportToDTO(report))
}

func (h *Handler) GetEarningsReport(w http.ResponseWriter, r *http.Request) {
	entries, clients, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	h.respondJSON(w, http.StatusOK, earningsReportToDTO(engine.BuildEarningsReport(entries, clients)))
}

// =============================================================================
// EXCHANGE RATE HANDLER
// =============================================================================

func (h *Handler) GetPHPRate(w http.ResponseWriter, r *http.Request) {
	if h.Rates == nil {
		h.respondError(w, http.StatusServiceUnavailable, "exchange rates not configured")
		return
	}
	q := h.Rates.PHPRate(r.Context(), h.Now())
	h.respondJSON(w, http.StatusOK, PHPRateDTO{
		Rate:      q.Rate,
		Fallback:  q.Fallback,
		FetchedAt: q.FetchedAt,
	})
}

package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"minhasfinancas/internal/domain/entry"
	"minhasfinancas/internal/shared/logging"
)

type EntryService interface {
	Save(ctx context.Context, e *entry.Entry) (*entry.Entry, error)
	Update(ctx context.Context, e *entry.Entry) (*entry.Entry, error)
	Delete(ctx context.Context, e *entry.Entry) error
	UpdateStatus(ctx context.Context, e *entry.Entry, status entry.Status) (*entry.Entry, error)
	GetByID(ctx context.Context, id int64) (*entry.Entry, error)
	Search(ctx context.Context, f entry.Filter) ([]*entry.Entry, error)
}

type EntryHandler struct {
	entries EntryService
	log     logging.Logger
}

func NewEntryHandler(entries EntryService, log logging.Logger) *EntryHandler {
	return &EntryHandler{entries: entries, log: log}
}

// Request/Response DTOs

type EntryRequest struct {
	Description string          `json:"descricao"`
	Month       int             `json:"mes"`
	Year        int             `json:"ano"`
	Amount      decimal.Decimal `json:"valor"`
	Type        string          `json:"tipo"`
	UserID      int64           `json:"usuario"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type EntryResponse struct {
	ID          int64           `json:"id"`
	Description string          `json:"descricao"`
	Month       int             `json:"mes"`
	Year        int             `json:"ano"`
	Amount      decimal.Decimal `json:"valor"`
	Type        entry.Type      `json:"tipo"`
	Status      entry.Status    `json:"status"`
	UserID      int64           `json:"usuario"`
	CreatedAt   time.Time       `json:"dataCadastro"`
}

func toEntryResponse(e *entry.Entry) EntryResponse {
	return EntryResponse{
		ID:          e.ID,
		Description: e.Description,
		Month:       e.Month,
		Year:        e.Year,
		Amount:      e.Amount,
		Type:        e.Type,
		Status:      e.Status,
		UserID:      e.UserID,
		CreatedAt:   e.CreatedAt,
	}
}

// toEntry converts the request body. An empty tipo is left for the service
// to reject; an unknown one fails here.
func (req EntryRequest) toEntry() (*entry.Entry, error) {
	e := &entry.Entry{
		UserID:      req.UserID,
		Description: req.Description,
		Month:       req.Month,
		Year:        req.Year,
		Amount:      req.Amount,
	}

	if strings.TrimSpace(req.Type) != "" {
		t, err := entry.ParseType(req.Type)
		if err != nil {
			return nil, err
		}
		e.Type = t
	}

	return e, nil
}

// HandleList searches the caller's entries. GET /api/lancamentos
func (h *EntryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	f, err := parseFilter(r, caller)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if f.UserID != caller {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	entries, err := h.entries.Search(r.Context(), f)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	response := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		response = append(response, toEntryResponse(e))
	}

	writeJSON(w, http.StatusOK, response)
}

type filterError string

func (e filterError) Error() string { return string(e) }

// parseFilter reads descricao, mes, ano, tipo, status and usuario from the
// query string. usuario defaults to the caller.
func parseFilter(r *http.Request, caller int64) (entry.Filter, error) {
	q := r.URL.Query()
	f := entry.Filter{
		UserID:      caller,
		Description: q.Get("descricao"),
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"mes", &f.Month},
		{"ano", &f.Year},
	}
	for _, p := range ints {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, filterError("Parametro invalido: " + p.name)
		}
		*p.dst = n
	}

	if v := q.Get("usuario"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, filterError("Parametro invalido: usuario")
		}
		f.UserID = id
	}

	if v := q.Get("tipo"); v != "" {
		t, err := entry.ParseType(v)
		if err != nil {
			return f, err
		}
		f.Type = t
	}

	if v := q.Get("status"); v != "" {
		s, err := entry.ParseStatus(v)
		if err != nil {
			return f, filterError("Parametro invalido: status")
		}
		f.Status = s
	}

	return f, nil
}

// HandleGet returns one entry. GET /api/lancamentos/{id}
func (h *EntryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	e, ok := h.ownedEntry(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toEntryResponse(e))
}

// HandleCreate stores a new entry for the caller. POST /api/lancamentos
func (h *EntryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == 0 {
		req.UserID = caller
	}
	if req.UserID != caller {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	e, err := req.toEntry()
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	saved, err := h.entries.Save(r.Context(), e)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, toEntryResponse(saved))
}

// HandleUpdate replaces an entry's fields. The stored status is kept; use
// HandleUpdateStatus to change it. PUT /api/lancamentos/{id}
func (h *EntryHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.ownedEntry(w, r)
	if !ok {
		return
	}

	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == 0 {
		req.UserID = existing.UserID
	}
	if req.UserID != existing.UserID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	e, err := req.toEntry()
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	e.ID = existing.ID
	e.Status = existing.Status
	e.CreatedAt = existing.CreatedAt

	updated, err := h.entries.Update(r.Context(), e)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toEntryResponse(updated))
}

// HandleUpdateStatus changes only the status. PUT /api/lancamentos/{id}/atualiza-status
func (h *EntryHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.ownedEntry(w, r)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	status, err := entry.ParseStatus(req.Status)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	updated, err := h.entries.UpdateStatus(r.Context(), existing, status)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toEntryResponse(updated))
}

// HandleDelete removes an entry. DELETE /api/lancamentos/{id}
func (h *EntryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.ownedEntry(w, r)
	if !ok {
		return
	}

	if err := h.entries.Delete(r.Context(), existing); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ownedEntry loads the {id} entry and checks it belongs to the caller,
// writing the error response itself when it does not.
func (h *EntryHandler) ownedEntry(w http.ResponseWriter, r *http.Request) (*entry.Entry, bool) {
	caller, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return nil, false
	}

	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Invalid entry ID", http.StatusBadRequest)
		return nil, false
	}

	e, err := h.entries.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return nil, false
	}
	if e.UserID != caller {
		writeError(w, r, h.log, entry.ErrForbidden)
		return nil, false
	}

	return e, true
}

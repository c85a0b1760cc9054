package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minhasfinancas/internal/domain/entry"
	"minhasfinancas/internal/shared/logging"
	"minhasfinancas/internal/shared/middleware"
)

// MockEntryService implements EntryService for testing
type MockEntryService struct {
	SaveFunc         func(ctx context.Context, e *entry.Entry) (*entry.Entry, error)
	UpdateFunc       func(ctx context.Context, e *entry.Entry) (*entry.Entry, error)
	DeleteFunc       func(ctx context.Context, e *entry.Entry) error
	UpdateStatusFunc func(ctx context.Context, e *entry.Entry, status entry.Status) (*entry.Entry, error)
	GetByIDFunc      func(ctx context.Context, id int64) (*entry.Entry, error)
	SearchFunc       func(ctx context.Context, f entry.Filter) ([]*entry.Entry, error)

	saveCalls   int
	deleteCalls int
}

func (m *MockEntryService) Save(ctx context.Context, e *entry.Entry) (*entry.Entry, error) {
	m.saveCalls++
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, e)
	}
	return e, nil
}

func (m *MockEntryService) Update(ctx context.Context, e *entry.Entry) (*entry.Entry, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, e)
	}
	return e, nil
}

func (m *MockEntryService) Delete(ctx context.Context, e *entry.Entry) error {
	m.deleteCalls++
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, e)
	}
	return nil
}

func (m *MockEntryService) UpdateStatus(ctx context.Context, e *entry.Entry, status entry.Status) (*entry.Entry, error) {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, e, status)
	}
	e.Status = status
	return e, nil
}

func (m *MockEntryService) GetByID(ctx context.Context, id int64) (*entry.Entry, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, entry.ErrEntryNotFound
}

func (m *MockEntryService) Search(ctx context.Context, f entry.Filter) ([]*entry.Entry, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, f)
	}
	return []*entry.Entry{}, nil
}

func storedEntry(id, userID int64) *entry.Entry {
	return &entry.Entry{
		ID:          id,
		UserID:      userID,
		Description: "Aluguel",
		Month:       3,
		Year:        2024,
		Amount:      decimal.RequireFromString("900"),
		Type:        entry.TypeExpense,
		Status:      entry.StatusSettled,
	}
}

func getByIDReturning(e *entry.Entry) func(ctx context.Context, id int64) (*entry.Entry, error) {
	return func(ctx context.Context, id int64) (*entry.Entry, error) {
		if e == nil || e.ID != id {
			return nil, entry.ErrEntryNotFound
		}
		cp := *e
		return &cp, nil
	}
}

// serveEntries routes through a mux so path values are populated.
func serveEntries(svc *MockEntryService, method, target, body string, callerID int64) *httptest.ResponseRecorder {
	handler := NewEntryHandler(svc, logging.Nop())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/lancamentos", handler.HandleList)
	mux.HandleFunc("POST /api/lancamentos", handler.HandleCreate)
	mux.HandleFunc("GET /api/lancamentos/{id}", handler.HandleGet)
	mux.HandleFunc("PUT /api/lancamentos/{id}", handler.HandleUpdate)
	mux.HandleFunc("PUT /api/lancamentos/{id}/atualiza-status", handler.HandleUpdateStatus)
	mux.HandleFunc("DELETE /api/lancamentos/{id}", handler.HandleDelete)

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if callerID != 0 {
		req = req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, callerID))
	}

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func TestHandleList(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		expectedStatus int
		expectedFilter entry.Filter
		expectedLen    int
	}{
		{
			name:           "Defaults To Caller",
			query:          "",
			expectedStatus: http.StatusOK,
			expectedFilter: entry.Filter{UserID: 1},
			expectedLen:    1,
		},
		{
			name:           "All Filters",
			query:          "?descricao=alu&mes=3&ano=2024&tipo=despesa&status=efetivado&usuario=1",
			expectedStatus: http.StatusOK,
			expectedFilter: entry.Filter{
				UserID: 1, Description: "alu", Month: 3, Year: 2024,
				Type: entry.TypeExpense, Status: entry.StatusSettled,
			},
			expectedLen: 1,
		},
		{
			name:           "Other User",
			query:          "?usuario=2",
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "Invalid Month",
			query:          "?mes=marco",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid Type",
			query:          "?tipo=INVESTIMENTO",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid Status",
			query:          "?status=PAGO",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got entry.Filter
			svc := &MockEntryService{
				SearchFunc: func(ctx context.Context, f entry.Filter) ([]*entry.Entry, error) {
					got = f
					return []*entry.Entry{storedEntry(1, 1)}, nil
				},
			}

			rr := serveEntries(svc, http.MethodGet, "/api/lancamentos"+tt.query, "", 1)

			require.Equal(t, tt.expectedStatus, rr.Code, rr.Body.String())
			if tt.expectedStatus != http.StatusOK {
				return
			}
			assert.Equal(t, tt.expectedFilter, got)

			var resp []EntryResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			assert.Len(t, resp, tt.expectedLen)
		})
	}
}

func TestHandleList_SearchUserError(t *testing.T) {
	svc := &MockEntryService{
		SearchFunc: func(ctx context.Context, f entry.Filter) ([]*entry.Entry, error) {
			return nil, entry.ErrSearchUser
		},
	}

	rr := serveEntries(svc, http.MethodGet, "/api/lancamentos", "", 1)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Nao foi possivel realizar a consulta.")
}

func TestHandleList_Unauthorized(t *testing.T) {
	rr := serveEntries(&MockEntryService{}, http.MethodGet, "/api/lancamentos", "", 0)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHandleGet(t *testing.T) {
	tests := []struct {
		name           string
		target         string
		stored         *entry.Entry
		expectedStatus int
	}{
		{"Success", "/api/lancamentos/5", storedEntry(5, 1), http.StatusOK},
		{"Not Found", "/api/lancamentos/6", storedEntry(5, 1), http.StatusNotFound},
		{"Other Owner", "/api/lancamentos/5", storedEntry(5, 2), http.StatusForbidden},
		{"Invalid ID", "/api/lancamentos/abc", nil, http.StatusBadRequest},
		{"Zero ID", "/api/lancamentos/0", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockEntryService{GetByIDFunc: getByIDReturning(tt.stored)}

			rr := serveEntries(svc, http.MethodGet, tt.target, "", 1)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedStatus == http.StatusOK {
				var resp EntryResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, int64(5), resp.ID)
				assert.Equal(t, entry.TypeExpense, resp.Type)
				assert.True(t, resp.Amount.Equal(decimal.NewFromInt(900)))
			}
		})
	}
}

func TestHandleCreate(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		saveFunc       func(ctx context.Context, e *entry.Entry) (*entry.Entry, error)
		expectedStatus int
		expectedBody   string
		expectSave     bool
	}{
		{
			name: "Success",
			body: `{"descricao":"Salario","mes":1,"ano":2024,"valor":1500.50,"tipo":"RECEITA","usuario":1}`,
			saveFunc: func(ctx context.Context, e *entry.Entry) (*entry.Entry, error) {
				out := *e
				out.ID = 10
				out.Status = entry.StatusPending
				return &out, nil
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"status":"PENDENTE"`,
			expectSave:     true,
		},
		{
			name:           "Defaults User To Caller",
			body:           `{"descricao":"Salario","mes":1,"ano":2024,"valor":"10","tipo":"receita"}`,
			expectedStatus: http.StatusCreated,
			expectedBody:   `"usuario":1`,
			expectSave:     true,
		},
		{
			name:           "Other User",
			body:           `{"descricao":"Salario","mes":1,"ano":2024,"valor":10,"tipo":"RECEITA","usuario":2}`,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "Unknown Type",
			body:           `{"descricao":"Salario","mes":1,"ano":2024,"valor":10,"tipo":"OUTRO","usuario":1}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Tipo de lancamento invalido.",
		},
		{
			name: "Validation Error",
			body: `{"descricao":"","mes":1,"ano":2024,"valor":10,"tipo":"RECEITA","usuario":1}`,
			saveFunc: func(ctx context.Context, e *entry.Entry) (*entry.Entry, error) {
				return nil, entry.ErrInvalidDescription
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Informe uma descriçao valida.",
			expectSave:     true,
		},
		{
			name:           "Invalid JSON",
			body:           `{"descricao":`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockEntryService{SaveFunc: tt.saveFunc}

			rr := serveEntries(svc, http.MethodPost, "/api/lancamentos", tt.body, 1)

			assert.Equal(t, tt.expectedStatus, rr.Code, rr.Body.String())
			if tt.expectedBody != "" {
				assert.Contains(t, rr.Body.String(), tt.expectedBody)
			}
			if tt.expectSave {
				assert.Equal(t, 1, svc.saveCalls)
			} else {
				assert.Equal(t, 0, svc.saveCalls)
			}
		})
	}
}

func TestHandleUpdate_KeepsStoredStatus(t *testing.T) {
	var updated *entry.Entry
	svc := &MockEntryService{
		GetByIDFunc: getByIDReturning(storedEntry(5, 1)),
		UpdateFunc: func(ctx context.Context, e *entry.Entry) (*entry.Entry, error) {
			updated = e
			return e, nil
		},
	}

	body := `{"descricao":"Aluguel novo","mes":4,"ano":2024,"valor":950,"tipo":"DESPESA","status":"CANCELADO"}`
	rr := serveEntries(svc, http.MethodPut, "/api/lancamentos/5", body, 1)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.NotNil(t, updated)
	assert.Equal(t, int64(5), updated.ID)
	assert.Equal(t, int64(1), updated.UserID)
	assert.Equal(t, "Aluguel novo", updated.Description)
	assert.Equal(t, entry.StatusSettled, updated.Status)
}

func TestHandleUpdate_Errors(t *testing.T) {
	tests := []struct {
		name           string
		target         string
		body           string
		stored         *entry.Entry
		updateFunc     func(ctx context.Context, e *entry.Entry) (*entry.Entry, error)
		expectedStatus int
	}{
		{
			name:           "Not Found",
			target:         "/api/lancamentos/9",
			body:           `{}`,
			stored:         storedEntry(5, 1),
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Other Owner",
			target:         "/api/lancamentos/5",
			body:           `{}`,
			stored:         storedEntry(5, 2),
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "Move To Other User",
			target:         "/api/lancamentos/5",
			body:           `{"descricao":"x","mes":1,"ano":2024,"valor":1,"tipo":"RECEITA","usuario":2}`,
			stored:         storedEntry(5, 1),
			expectedStatus: http.StatusForbidden,
		},
		{
			name:   "Validation Error",
			target: "/api/lancamentos/5",
			body:   `{"descricao":"x","mes":13,"ano":2024,"valor":1,"tipo":"RECEITA"}`,
			stored: storedEntry(5, 1),
			updateFunc: func(ctx context.Context, e *entry.Entry) (*entry.Entry, error) {
				return nil, entry.ErrInvalidMonth
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockEntryService{
				GetByIDFunc: getByIDReturning(tt.stored),
				UpdateFunc:  tt.updateFunc,
			}

			rr := serveEntries(svc, http.MethodPut, tt.target, tt.body, 1)

			assert.Equal(t, tt.expectedStatus, rr.Code, rr.Body.String())
		})
	}
}

func TestHandleUpdateStatus(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Success",
			body:           `{"status":"cancelado"}`,
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"CANCELADO"`,
		},
		{
			name:           "Invalid Status",
			body:           `{"status":"PAGO"}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Nao foi possivel atualizar o status do lancamento, envie um status valido.",
		},
		{
			name:           "Empty Status",
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockEntryService{GetByIDFunc: getByIDReturning(storedEntry(5, 1))}

			rr := serveEntries(svc, http.MethodPut, "/api/lancamentos/5/atualiza-status", tt.body, 1)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
		})
	}
}

func TestHandleUpdateStatus_NotFound(t *testing.T) {
	svc := &MockEntryService{}

	rr := serveEntries(svc, http.MethodPut, "/api/lancamentos/5/atualiza-status", `{"status":"EFETIVADO"}`, 1)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleDelete(t *testing.T) {
	tests := []struct {
		name           string
		stored         *entry.Entry
		deleteFunc     func(ctx context.Context, e *entry.Entry) error
		expectedStatus int
		expectDelete   bool
	}{
		{
			name:           "Success",
			stored:         storedEntry(5, 1),
			expectedStatus: http.StatusNoContent,
			expectDelete:   true,
		},
		{
			name:           "Not Found",
			stored:         nil,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Other Owner",
			stored:         storedEntry(5, 2),
			expectedStatus: http.StatusForbidden,
		},
		{
			name:   "Service Error",
			stored: storedEntry(5, 1),
			deleteFunc: func(ctx context.Context, e *entry.Entry) error {
				return errors.New("db down")
			},
			expectedStatus: http.StatusInternalServerError,
			expectDelete:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockEntryService{
				GetByIDFunc: getByIDReturning(tt.stored),
				DeleteFunc:  tt.deleteFunc,
			}

			rr := serveEntries(svc, http.MethodDelete, "/api/lancamentos/5", "", 1)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectDelete {
				assert.Equal(t, 1, svc.deleteCalls)
			} else {
				assert.Equal(t, 0, svc.deleteCalls)
			}
		})
	}
}

// Package api exposes the token table over HTTP.
package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rovshanmuradov/token-pulse/internal/domain"
	"github.com/rovshanmuradov/token-pulse/internal/engine"
	"github.com/rovshanmuradov/token-pulse/internal/export"
	"github.com/rovshanmuradov/token-pulse/internal/view"
	"github.com/rovshanmuradov/token-pulse/pkg/httputil"
	"go.uber.org/zap"
)

// Engine is what the handlers need from the state engine
type Engine interface {
	Rows(spec view.Spec) ([]engine.Row, error)
	Token(category domain.Category, id string) (domain.Token, error)
	Active() domain.Category
	SetActive(category domain.Category) error
	Loaded() bool
	Counts() map[domain.Category]int
	RequestQuickBuy(category domain.Category, id string, amount float64) (domain.QuickBuyIntent, error)
}

type API struct {
	log    *zap.Logger
	engine Engine
	// defaults for a request without sort parameters
	spec view.Spec
	// quick buy amount when the request has none
	amount   float64
	exporter *export.Exporter
}

func NewAPI(log *zap.Logger, eng Engine, defaults view.Spec) *API {
	if eng == nil {
		panic("engine cannot be nil")
	}
	return &API{
		log:      log.Named("api"),
		engine:   eng,
		spec:     defaults,
		amount:   domain.DefaultQuickBuyAmount,
		exporter: export.NewExporter(log, nil),
	}
}

// WithQuickBuyAmount overrides the amount used when a quick buy request
// omits one
func (a *API) WithQuickBuyAmount(amount float64) *API {
	if amount > 0 {
		a.amount = amount
	}
	return a
}

type rowResponse struct {
	domain.Token
	PreviousPriceChange24h *float64 `json:"previousPriceChange24h,omitempty"`
	Highlighted            bool     `json:"highlighted"`
	Trend                  string   `json:"trend"`
}

type tokensResponse struct {
	Category  domain.Category `json:"category"`
	Filter    string          `json:"filter,omitempty"`
	SortField string          `json:"sortField"`
	Direction view.Direction  `json:"direction"`
	Rows      []rowResponse   `json:"rows"`
}

type categoryRequest struct {
	Category string `json:"category"`
}

type quickBuyRequest struct {
	Category string   `json:"category"`
	ID       string   `json:"id"`
	Amount   *float64 `json:"amount"`
}

func (a *API) Healthz(w http.ResponseWriter, _ *http.Request) {
	if err := httputil.JSON(w, http.StatusOK, map[string]any{}, nil); err != nil {
		a.log.Error("Healthz handler error", zap.Error(err))
	}
}

// Readiness reports 503 until the initial load finished
func (a *API) Readiness(w http.ResponseWriter, r *http.Request) {
	if !a.engine.Loaded() {
		a.respondError(w, r, http.StatusServiceUnavailable, "not_loaded", "initial token load has not finished", nil)
		return
	}
	a.respond(w, http.StatusOK, map[string]any{"tokens": a.engine.Counts()})
}

// parseSpec reads the view parameters shared by the token listing and the
// export. It writes the error response itself and reports false on failure.
func (a *API) parseSpec(w http.ResponseWriter, r *http.Request) (view.Spec, bool) {
	q := r.URL.Query()

	spec := view.Spec{
		Category:  a.engine.Active(),
		Filter:    q.Get("q"),
		SortField: a.spec.SortField,
		Direction: a.spec.Direction,
	}
	if raw := q.Get("category"); raw != "" {
		category, err := domain.ParseCategory(raw)
		if err != nil {
			a.respondError(w, r, http.StatusBadRequest, "invalid_category", err.Error(), map[string]any{"category": raw})
			return spec, false
		}
		spec.Category = category
	}
	if raw := q.Get("sort"); raw != "" {
		spec.SortField = raw
	}
	if q.Has("dir") {
		dir, err := view.ParseDirection(q.Get("dir"))
		if err != nil {
			a.respondError(w, r, http.StatusBadRequest, "invalid_direction", err.Error(), nil)
			return spec, false
		}
		spec.Direction = dir
	}
	return spec, true
}

// rows projects spec, answering 400 for an unknown sort field
func (a *API) rows(w http.ResponseWriter, r *http.Request, spec view.Spec) ([]engine.Row, bool) {
	rows, err := a.engine.Rows(spec)
	if err != nil {
		var sortErr *domain.InvalidSortFieldError
		if errors.As(err, &sortErr) {
			a.respondError(w, r, http.StatusBadRequest, "invalid_sort_field", err.Error(), map[string]any{"field": sortErr.Field})
			return nil, false
		}
		a.respondError(w, r, http.StatusInternalServerError, "internal", err.Error(), nil)
		return nil, false
	}
	return rows, true
}

func (a *API) Tokens(w http.ResponseWriter, r *http.Request) {
	spec, ok := a.parseSpec(w, r)
	if !ok {
		return
	}
	rows, ok := a.rows(w, r, spec)
	if !ok {
		return
	}

	resp := tokensResponse{
		Category:  spec.Category,
		Filter:    spec.Filter,
		SortField: spec.SortField,
		Direction: spec.Direction,
		Rows:      make([]rowResponse, len(rows)),
	}
	for i, row := range rows {
		out := rowResponse{Token: row.Token, Highlighted: row.Highlighted, Trend: row.Trend.String()}
		if row.HasPrevious {
			prev := row.Previous
			out.PreviousPriceChange24h = &prev
		}
		resp.Rows[i] = out
	}
	a.respond(w, http.StatusOK, resp)
}

// Export streams the projected view as a CSV or JSON attachment
func (a *API) Export(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		a.respondError(w, r, http.StatusBadRequest, "invalid_format", err.Error(), nil)
		return
	}
	spec, ok := a.parseSpec(w, r)
	if !ok {
		return
	}
	rows, ok := a.rows(w, r, spec)
	if !ok {
		return
	}

	snap := export.Snapshot{Spec: spec, Rows: rows}
	snap.ExportTime = time.Now()
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(snap, format)))
	w.WriteHeader(http.StatusOK)
	if err := a.exporter.Write(w, format, snap); err != nil {
		a.log.Error("Export write failed", zap.Error(err))
	}
}

func (a *API) Token(w http.ResponseWriter, r *http.Request) {
	category, err := domain.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		a.respondError(w, r, http.StatusBadRequest, "invalid_category", err.Error(), nil)
		return
	}
	tok, err := a.engine.Token(category, chi.URLParam(r, "id"))
	if err != nil {
		a.respondDomainError(w, r, err)
		return
	}
	a.respond(w, http.StatusOK, tok)
}

func (a *API) Category(w http.ResponseWriter, _ *http.Request) {
	a.respond(w, http.StatusOK, map[string]any{"category": a.engine.Active()})
}

func (a *API) SetCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := httputil.Decode(r, &req); err != nil {
		a.respondError(w, r, http.StatusBadRequest, "bad_request", "invalid JSON body", nil)
		return
	}
	category, err := domain.ParseCategory(req.Category)
	if err != nil {
		a.respondError(w, r, http.StatusBadRequest, "invalid_category", err.Error(), map[string]any{"category": req.Category})
		return
	}
	if err := a.engine.SetActive(category); err != nil {
		a.respondDomainError(w, r, err)
		return
	}
	a.respond(w, http.StatusOK, map[string]any{"category": category})
}

// QuickBuy records an intent. Nothing is executed, hence 202.
func (a *API) QuickBuy(w http.ResponseWriter, r *http.Request) {
	var req quickBuyRequest
	if err := httputil.Decode(r, &req); err != nil {
		a.respondError(w, r, http.StatusBadRequest, "bad_request", "invalid JSON body", nil)
		return
	}
	category, err := domain.ParseCategory(req.Category)
	if err != nil {
		a.respondError(w, r, http.StatusBadRequest, "invalid_category", err.Error(), nil)
		return
	}
	amount := a.amount
	if req.Amount != nil {
		amount = *req.Amount
	}

	intent, err := a.engine.RequestQuickBuy(category, req.ID, amount)
	if err != nil {
		a.respondDomainError(w, r, err)
		return
	}
	a.respond(w, http.StatusAccepted, intent)
}

func (a *API) respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.respondError(w, r, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, engine.ErrInvalidAmount):
		a.respondError(w, r, http.StatusBadRequest, "invalid_amount", err.Error(), nil)
	case errors.Is(err, domain.ErrUnknownCategory):
		a.respondError(w, r, http.StatusBadRequest, "invalid_category", err.Error(), nil)
	default:
		a.respondError(w, r, http.StatusInternalServerError, "internal", err.Error(), nil)
	}
}

func (a *API) respond(w http.ResponseWriter, status int, body any) {
	if err := httputil.JSON(w, status, body, nil); err != nil {
		a.log.Error("Response write failed", zap.Error(err))
	}
}

func (a *API) respondError(w http.ResponseWriter, r *http.Request, status int, code, msg string, details any) {
	if err := httputil.Error(w, r, status, code, msg, details); err != nil {
		a.log.Error("Error response write failed", zap.Error(err))
	}
}

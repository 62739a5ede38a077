package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	ferrors "git.home.luguber.info/inful/blogsync/internal/foundation/errors"
	"git.home.luguber.info/inful/blogsync/internal/history"
	"git.home.luguber.info/inful/blogsync/internal/server/responses"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

// HistoryHandlers serve recorded deployments.
type HistoryHandlers struct {
	store        history.Store
	errorAdapter *ferrors.HTTPErrorAdapter
}

// NewHistoryHandlers returns handlers backed by store. A nil store answers 503.
func NewHistoryHandlers(store history.Store) *HistoryHandlers {
	return &HistoryHandlers{
		store:        store,
		errorAdapter: ferrors.NewHTTPErrorAdapter(slog.Default()),
	}
}

// HandleList lists recent runs. Query parameters: target, limit.
func (h *HistoryHandlers) HandleList(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, h.errorAdapter, http.MethodGet) || !h.available(w, r) {
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxHistoryLimit {
			verr := ferrors.ValidationError("limit must be between 1 and 200").
				WithContext("limit", raw).
				Build()
			h.errorAdapter.WriteErrorResponse(w, r, verr)
			return
		}
		limit = n
	}

	records, err := h.store.Recent(r.Context(), r.URL.Query().Get("target"), limit)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	if records == nil {
		records = []history.Record{}
	}
	body := responses.DeploymentsResponse{Deployments: records, Count: len(records)}
	if err := writeJSONPretty(w, r, http.StatusOK, body); err != nil {
		internalErr := ferrors.WrapError(err, ferrors.CategoryInternal, "failed to encode deployments").Build()
		h.errorAdapter.WriteErrorResponse(w, r, internalErr)
	}
}

// HandleGet returns the run named by the {id} path value.
func (h *HistoryHandlers) HandleGet(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, h.errorAdapter, http.MethodGet) || !h.available(w, r) {
		return
	}
	rec, err := h.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	if err := writeJSONPretty(w, r, http.StatusOK, rec); err != nil {
		internalErr := ferrors.WrapError(err, ferrors.CategoryInternal, "failed to encode deployment").Build()
		h.errorAdapter.WriteErrorResponse(w, r, internalErr)
	}
}

func (h *HistoryHandlers) available(w http.ResponseWriter, r *http.Request) bool {
	if h.store != nil {
		return true
	}
	err := ferrors.NewError(ferrors.CategoryRuntime, "deployment history is disabled").
		WithContext("hint", "set history.path in the configuration").
		Build()
	h.errorAdapter.WriteErrorResponse(w, r, err)
	return false
}

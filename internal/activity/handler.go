package activity

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/liuqy/experiment-management/internal/transport"
	"github.com/liuqy/experiment-management/pkg/logger"
)

type ServiceAPI interface {
	List(limit, offset int) ([]ActivityResponse, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// List handles GET /activities, newest entries first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	offset := 0

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 1000 {
			limit = l
		}
	}

	if offsetStr := r.URL.Query().Get("skip"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	entries, err := h.Service.List(limit, offset)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "failed to list activities")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"activities": entries,
		"limit":      limit,
		"skip":       offset,
	})
}

package fingerblood

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"

	"github.com/liuqy/experiment-management/internal/auth"
	"github.com/liuqy/experiment-management/internal/transport"
	"github.com/liuqy/experiment-management/pkg/logger"
)

type ServiceAPI interface {
	List(limit, offset int, batchID, personID *int64) ([]RecordResponse, error)
	Get(id int64) (*RecordResponse, error)
	Create(dto RecordDTO, actorID int64) (*RecordResponse, error)
	Update(id int64, dto RecordDTO, actorID int64) (*RecordResponse, error)
	Delete(id int64, actorID int64) error
	Export(actorID int64) ([]byte, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := transport.Pagination(r, 100)

	var batchID, personID *int64
	if batchStr := r.URL.Query().Get("batch_id"); batchStr != "" {
		if id, err := strconv.ParseInt(batchStr, 10, 64); err == nil {
			batchID = &id
		}
	}
	if personStr := r.URL.Query().Get("person_id"); personStr != "" {
		if id, err := strconv.ParseInt(personStr, 10, 64); err == nil {
			personID = &id
		}
	}

	records, err := h.Service.List(limit, offset, batchID, personID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, records)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid record ID")
		return
	}

	rec, err := h.Service.Get(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto RecordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := h.Service.Create(dto, user.ID)
	if err != nil {
		h.Logger.Error("Create: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, rec)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid record ID")
		return
	}

	var dto RecordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := h.Service.Update(id, dto, user.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid record ID")
		return
	}

	if err := h.Service.Delete(id, user.ID); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "finger blood record deleted"})
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	data, err := h.Service.Export(user.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	name := fmt.Sprintf("finger_blood_records_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if _, err := w.Write(data); err != nil {
		h.Logger.Error("Export: failed to stream workbook", "error", err)
	}
}

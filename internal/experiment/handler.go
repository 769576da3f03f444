package experiment

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/liuqy/experiment-management/internal/auth"
	"github.com/liuqy/experiment-management/internal/transport"
	"github.com/liuqy/experiment-management/pkg/logger"
)

type ServiceAPI interface {
	List(limit, offset int, batchID, personID *int64) ([]ExperimentResponse, error)
	Get(id int64) (*ExperimentResponse, error)
	Create(dto ExperimentDTO, actorID int64) (*ExperimentResponse, error)
	Update(id int64, dto ExperimentDTO, actorID int64) (*ExperimentResponse, error)
	Delete(id int64, actorID int64) error
	AddMember(experimentID int64, dto MemberDTO, actorID int64) (*ExperimentResponse, error)
	RemoveMember(experimentID, personID int64, actorID int64) (*ExperimentResponse, error)
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

	experiments, err := h.Service.List(limit, offset, batchID, personID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, experiments)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid experiment ID")
		return
	}

	e, err := h.Service.Get(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto ExperimentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	e, err := h.Service.Create(dto, user.ID)
	if err != nil {
		h.Logger.Error("Create: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, e)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid experiment ID")
		return
	}

	var dto ExperimentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	e, err := h.Service.Update(id, dto, user.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid experiment ID")
		return
	}

	if err := h.Service.Delete(id, user.ID); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "experiment deleted"})
}

func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid experiment ID")
		return
	}

	var dto MemberDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	e, err := h.Service.AddMember(id, dto, user.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, e)
}

func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid experiment ID")
		return
	}

	personID, err := strconv.ParseInt(chi.URLParam(r, "personID"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid person ID")
		return
	}

	e, err := h.Service.RemoveMember(id, personID, user.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, e)
}

package competitorfile

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"

	"github.com/liuqy/experiment-management/internal/auth"
	"github.com/liuqy/experiment-management/internal/transport"
	"github.com/liuqy/experiment-management/pkg/logger"
)

const maxUploadSize = 50 << 20 // 50 MiB

type ServiceAPI interface {
	List(limit, offset int, batchID, personID *int64) ([]FileResponse, error)
	Get(id int64) (*FileResponse, error)
	Upload(batchID, personID int64, fileName string, src io.Reader, actorID int64) (*FileResponse, error)
	Rename(id int64, dto RenameDTO, actorID int64) (*FileResponse, error)
	Delete(id int64, actorID int64) error
	Download(id int64) (string, io.ReadCloser, error)
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

	files, err := h.Service.List(limit, offset, batchID, personID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, files)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid file ID")
		return
	}

	f, err := h.Service.Get(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, f)
}

// Upload accepts a multipart form with batch_id, person_id and a file part.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	batchID, err := strconv.ParseInt(r.FormValue("batch_id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid batch_id")
		return
	}
	personID, err := strconv.ParseInt(r.FormValue("person_id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid person_id")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "missing file part")
		return
	}
	defer file.Close()

	resp, err := h.Service.Upload(batchID, personID, header.Filename, file, user.ID)
	if err != nil {
		h.Logger.Error("Upload: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, resp)
}

func (h *Handler) Rename(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid file ID")
		return
	}

	var dto RenameDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.Service.Rename(id, dto, user.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid file ID")
		return
	}

	if err := h.Service.Delete(id, user.ID); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "competitor file deleted"})
}

// Download streams the stored content with its original file name.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid file ID")
		return
	}

	name, reader, err := h.Service.Download(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if _, err := io.Copy(w, reader); err != nil {
		h.Logger.Error("Download: failed to stream file", "error", err, "file_id", id)
	}
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

	name := fmt.Sprintf("competitor_files_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if _, err := w.Write(data); err != nil {
		h.Logger.Error("Export: failed to stream workbook", "error", err)
	}
}

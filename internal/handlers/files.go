package handlers

import (
	"DataSentinel/internal/config"
	"DataSentinel/internal/service"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// FileHandler: загрузка, списки и выдача файлов.
type FileHandler struct {
	Files  *service.FileService
	Access *service.AccessService
	Logger *zap.SugaredLogger
	Config *config.Config
}

func NewFileHandler(files *service.FileService, access *service.AccessService, logger *zap.SugaredLogger, cfg *config.Config) *FileHandler {
	return &FileHandler{Files: files, Access: access, Logger: logger, Config: cfg}
}

// Upload загрузка файла (multipart: file, description)
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, _ := caller(r)

	// Лимит общего тела запроса
	maxBody := h.Config.MaxUploadBytes() + 1*1024*1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		h.Logger.Warnw("Upload: invalid multipart form", "error", err)
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.Logger.Warnw("Upload: missing file", "error", err)
		http.Error(w, "missing file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		h.Logger.Warnw("Upload: failed to read file", "error", err)
		http.Error(w, "failed to read file", http.StatusBadRequest)
		return
	}
	if int64(len(content)) > h.Config.MaxUploadBytes() {
		h.Logger.Warnw("Upload: payload too large", "size", len(content), "limit", h.Config.MaxUploadBytes())
		http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
		return
	}

	view, err := h.Files.Upload(r.Context(), service.UploadInput{
		OwnerID:     userID,
		Name:        header.Filename,
		Description: r.FormValue("description"),
		ContentType: header.Header.Get("Content-Type"),
		Content:     content,
	})
	if err != nil {
		writeError(w, h.Logger, "Upload", err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// List файлы пользователя и файлы, открытые ему
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := caller(r)
	files, err := h.Files.List(r.Context(), userID)
	if err != nil {
		writeError(w, h.Logger, "List files", err)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

// PartnerView чужие файлы с признаками доступа и ожидающего запроса
func (h *FileHandler) PartnerView(w http.ResponseWriter, r *http.Request) {
	userID, _ := caller(r)
	files, err := h.Files.PartnerView(r.Context(), userID)
	if err != nil {
		writeError(w, h.Logger, "Partner files", err)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

// AccessFile фиксирует обращение к файлу и возвращает его метаданные
func (h *FileHandler) AccessFile(w http.ResponseWriter, r *http.Request) {
	userID, _ := caller(r)
	f, err := h.Access.AccessFile(r.Context(), chi.URLParam(r, "fileID"), userID, remoteAddr(r))
	if err != nil {
		writeError(w, h.Logger, "Access file", err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// Download отдаёт содержимое файла
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	userID, _ := caller(r)
	f, content, err := h.Files.Download(r.Context(), chi.URLParam(r, "fileID"), userID, remoteAddr(r))
	if err != nil {
		writeError(w, h.Logger, "Download", err)
		return
	}

	contentType := mime.TypeByExtension("." + f.Type)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", f.Name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

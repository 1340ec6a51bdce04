package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/gradesheet/internal/export"
	"github.com/pavelanni/gradesheet/internal/grading"
	appI18n "github.com/pavelanni/gradesheet/internal/i18n"
	"github.com/pavelanni/gradesheet/internal/model"
	"github.com/pavelanni/gradesheet/internal/session"
	"github.com/pavelanni/gradesheet/internal/views"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	session *session.Session
	config  model.ServerConfig
}

// New creates a new Handler.
func New(s *session.Session, cfg model.ServerConfig) (*Handler, error) {
	if s == nil {
		return nil, errors.New("handler: nil session")
	}
	return &Handler{session: s, config: cfg}, nil
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.handleIndex)
	r.Post("/upload", h.handleUpload)
	r.Post("/key/fill", h.handleFillKey)
	r.Post("/key/clear", h.handleClearKey)
	r.Post("/evaluate", h.handleEvaluate)
	r.Get("/export/{format}", h.handleExport)
	r.Get("/healthz", h.handleHealthz)
}

func (h *Handler) redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.config.BasePath+"/", http.StatusSeeOther)
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, status int, notice string) {
	fileName, students := h.session.Source()
	data := views.PageData{
		BasePath: h.config.BasePath,
		Notice:   notice,
		FileName: fileName,
		Students: students,
		Loaded:   fileName != "",
		Key:      h.session.DraftKey(),
		Ready:    h.session.Ready(),
	}
	if run, err := h.session.Latest(); err == nil {
		data.Results = &run.View
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := views.Page(data).Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, http.StatusOK, "")
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.config.MaxUploadBytes); err != nil {
		h.renderPage(w, r, http.StatusBadRequest,
			appI18n.Td(r.Context(), "NoticeUploadFailed", map[string]any{"Error": err.Error()}))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.renderPage(w, r, http.StatusBadRequest, appI18n.T(r.Context(), "NoticeUploadFirst"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		slog.Error("failed to read upload", "file", header.Filename, "error", err)
		http.Error(w, "failed to read file", http.StatusInternalServerError)
		return
	}

	n, err := h.session.LoadFile(header.Filename, data)
	if err != nil {
		slog.Warn("rejected upload", "file", header.Filename, "error", err)
		h.renderPage(w, r, http.StatusBadRequest,
			appI18n.Td(r.Context(), "NoticeUploadFailed", map[string]any{"Error": err.Error()}))
		return
	}
	if n == 0 {
		h.renderPage(w, r, http.StatusBadRequest, appI18n.T(r.Context(), "NoticeNoStudents"))
		return
	}
	h.redirectHome(w, r)
}

func (h *Handler) handleFillKey(w http.ResponseWriter, r *http.Request) {
	h.session.FillKey(r.FormValue("answer"))
	h.redirectHome(w, r)
}

func (h *Handler) handleClearKey(w http.ResponseWriter, r *http.Request) {
	h.session.ClearKey()
	h.redirectHome(w, r)
}

func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	raw := make([]string, model.NumQuestions)
	for i := range raw {
		raw[i] = r.PostFormValue("correct" + strconv.Itoa(i+1))
	}

	_, err := h.session.Evaluate(r.Context(), raw)
	var keyErr *grading.KeyError
	switch {
	case err == nil:
		h.redirectHome(w, r)
	case errors.Is(err, model.ErrMissingInput):
		h.renderPage(w, r, http.StatusBadRequest, appI18n.T(r.Context(), "NoticeUploadFirst"))
	case errors.As(err, &keyErr):
		h.renderPage(w, r, http.StatusBadRequest,
			appI18n.Td(r.Context(), "NoticeInvalidKey", map[string]any{"Question": keyErr.Question}))
	default:
		slog.Error("evaluation failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	run, err := h.session.Latest()
	if errors.Is(err, model.ErrNoResults) {
		http.Error(w, appI18n.T(r.Context(), "NoticeNoResults"), http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(r.Context(), &buf, format, run.Export(), run.View); err != nil {
		slog.Error("export failed", "format", format, "run_id", run.ID, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	disposition := "attachment"
	if format == export.FormatHTML {
		disposition = "inline"
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("%s; filename=%q", disposition, export.Filename(format, run.EvaluatedAt)))
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("write export response", "error", err)
	}
	slog.Info("exported results", "format", format, "run_id", run.ID)
}

func (h *Handler) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok\n")
}

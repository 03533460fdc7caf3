package server

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/user/mediacms-timeline/chapters"
	"github.com/user/mediacms-timeline/db"
)

const Version = "0.1.0"

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type MediaResponse struct {
	MediaID   string `json:"mediaId"`
	Chapters  int    `json:"chapters"`
	UpdatedAt string `json:"updatedAt"`
}

type Handler struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewHandler(database *sql.DB, logger zerolog.Logger) *Handler {
	return &Handler{db: database, logger: logger.With().Str("component", "api").Logger()}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if err := h.db.PingContext(r.Context()); err != nil {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: status, Version: Version})
}

func (h *Handler) ListMedia(w http.ResponseWriter, r *http.Request) {
	media, err := db.SelectChapterMedia(h.db)
	if err != nil {
		h.logger.Error().Err(err).Msg("list media failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Failed to list media")
		return
	}
	out := make([]MediaResponse, 0, len(media))
	for _, m := range media {
		out = append(out, MediaResponse{MediaID: m.MediaID, Chapters: m.Chapters, UpdatedAt: m.UpdatedAt})
	}
	writeJSON(w, http.StatusOK, out)
}

// GetChapters returns the stored chapters and issues a CSRF cookie when the
// client has none.
func (h *Handler) GetChapters(w http.ResponseWriter, r *http.Request) {
	mediaID := chi.URLParam(r, "id")

	rows, err := db.SelectChapters(h.db, mediaID)
	if err != nil {
		h.logger.Error().Err(err).Str("media_id", mediaID).Msg("select chapters failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Failed to load chapters")
		return
	}

	if _, err := r.Cookie(chapters.CSRFCookie); err != nil {
		token := uuid.NewString()
		if err := db.InsertCSRFToken(h.db, token); err != nil {
			h.logger.Error().Err(err).Msg("issue csrf token failed")
		} else {
			http.SetCookie(w, &http.Cookie{
				Name:     chapters.CSRFCookie,
				Value:    token,
				Path:     "/",
				SameSite: http.SameSiteLaxMode,
			})
		}
	}

	writeJSON(w, http.StatusOK, chapters.PayloadFromRows(rows))
}

// SaveChapters replaces the stored chapters. An empty list clears them.
func (h *Handler) SaveChapters(w http.ResponseWriter, r *http.Request) {
	mediaID := chi.URLParam(r, "id")

	var p chapters.Payload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON body")
		return
	}
	if p.Chapters == nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "chapters is required")
		return
	}

	rows, err := p.Rows()
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	if err := db.ReplaceChapters(h.db, mediaID, rows); err != nil {
		h.logger.Error().Err(err).Str("media_id", mediaID).Msg("save chapters failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Failed to save chapters")
		return
	}

	h.logger.Info().Str("media_id", mediaID).Int("chapters", len(rows)).Msg("chapters stored")
	writeJSON(w, http.StatusOK, p)
}

// RequireCSRF rejects requests that carry a csrftoken cookie without a
// matching X-CSRFToken header, or with a token this server never issued.
// Requests without the cookie (scripts, the CLI) pass through.
func (h *Handler) RequireCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(chapters.CSRFCookie)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		if r.Header.Get(chapters.CSRFHeader) != cookie.Value {
			writeError(w, http.StatusForbidden, "CSRF_FAILED", "CSRF token missing or incorrect")
			return
		}
		ok, err := db.CSRFTokenExists(h.db, cookie.Value)
		if err != nil {
			h.logger.Error().Err(err).Msg("csrf lookup failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Failed to verify CSRF token")
			return
		}
		if !ok {
			writeError(w, http.StatusForbidden, "CSRF_FAILED", "Unknown CSRF token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

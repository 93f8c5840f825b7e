package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/portfolio-api/server/src/server/data"
)

// Portfolio is the read API the handlers serve from.
type Portfolio interface {
	Projects(ctx context.Context) ([]data.Project, error)
	Formations(ctx context.Context) ([]data.Formation, error)
	Certifications(ctx context.Context) ([]data.Certification, error)
	Experiences(ctx context.Context) ([]data.Experience, error)
	SocialMedia(ctx context.Context) ([]data.SocialMedia, error)
	CompanyDurations(ctx context.Context) ([]data.CompanyDuration, error)
	TotalExperience(ctx context.Context) (data.TotalDuration, error)
}

const internalErrorMessage = "An internal server error occurred"

type errorResponse struct {
	ErrorMessage string `json:"error_message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{ErrorMessage: message})
}

// writeInternalError logs err and answers with a generic 500.
func writeInternalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	slog.Error(msg, "error", err, "path", r.URL.Path)
	writeError(w, http.StatusInternalServerError, internalErrorMessage)
}

func queryFlag(r *http.Request, name string) bool {
	return strings.EqualFold(r.URL.Query().Get(name), "true")
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"quizforge-backend/internal/middleware"
	"quizforge-backend/internal/models"
)

type studentService interface {
	GetProfile(ctx context.Context, email string) (*models.StudentProfile, error)
	UpsertProfile(ctx context.Context, email string, f models.StudentProfileFields) error
}

type StudentHandler struct {
	studentService studentService
}

func NewStudentHandler(studentService studentService) *StudentHandler {
	return &StudentHandler{studentService: studentService}
}

// Get answers null when the caller has no profile yet.
func (h *StudentHandler) Get(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())
	if session == nil {
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "Not authenticated", r))
		return
	}

	profile, err := h.studentService.GetProfile(r.Context(), session.Email)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// Save upserts the caller's profile. Any email in the body is ignored.
func (h *StudentHandler) Save(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())
	if session == nil {
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "Not authenticated", r))
		return
	}

	var fields models.StudentProfileFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if err := h.studentService.UpsertProfile(r.Context(), session.Email, fields); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

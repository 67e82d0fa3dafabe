package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"quizforge-backend/internal/models"
)

type quizService interface {
	CreateQuiz(ctx context.Context, in models.QuizInput) (string, error)
	GetQuiz(ctx context.Context, id string) (*models.Quiz, error)
	UpdateQuiz(ctx context.Context, id string, in models.QuizInput) error
	SetPublished(ctx context.Context, id string, publish bool) (bool, error)
	ListQuizzes(ctx context.Context) ([]models.QuizSummary, error)
}

// QuizHandler serves the admin quiz routes. Access control is the guard's job.
type QuizHandler struct {
	quizService quizService
}

func NewQuizHandler(quizService quizService) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

func (h *QuizHandler) List(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.quizService.ListQuizzes(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"quizzes": quizzes})
}

func (h *QuizHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.QuizInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	id, err := h.quizService.CreateQuiz(r.Context(), in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.quizService.GetQuiz(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *QuizHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in models.QuizInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if err := h.quizService.UpdateQuiz(r.Context(), chi.URLParam(r, "id"), in); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *QuizHandler) Publish(w http.ResponseWriter, r *http.Request) {
	var req models.PublishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	published, err := h.quizService.SetPublished(r.Context(), req.ID, req.Publish)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.PublishResponse{ID: req.ID, Published: published})
}

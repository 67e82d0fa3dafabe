// Package apiclient talks to the quizforge HTTP API. It satisfies the gateway
// interfaces of the authoring, listing and profile workflows.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"quizforge-backend/internal/models"
)

var ErrServiceUnavailable = errors.New("quizforge service unavailable")

type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Fields     map[string]string
	RequestID  string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func New(baseURL, token string, httpClient *http.Client) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8080"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, token: strings.TrimSpace(token), httpClient: httpClient}
}

func (c *Client) Session(ctx context.Context) (*models.Session, error) {
	var s models.Session
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/auth/session", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) CreateQuiz(ctx context.Context, in models.QuizInput) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/admin/quizzes", in, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *Client) GetQuiz(ctx context.Context, id string) (*models.Quiz, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("quiz id is required")
	}
	var q models.Quiz
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/admin/quizzes/"+url.PathEscape(id), nil, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

func (c *Client) UpdateQuiz(ctx context.Context, id string, in models.QuizInput) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("quiz id is required")
	}
	return c.doJSON(ctx, http.MethodPut, "/api/v1/admin/quizzes/"+url.PathEscape(id), in, nil)
}

func (c *Client) SetPublished(ctx context.Context, id string, publish bool) (bool, error) {
	var out models.PublishResponse
	req := models.PublishRequest{ID: id, Publish: publish}
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/admin/quizzes/publish", req, &out); err != nil {
		return false, err
	}
	return out.Published, nil
}

func (c *Client) ListQuizzes(ctx context.Context) ([]models.QuizSummary, error) {
	var out struct {
		Quizzes []models.QuizSummary `json:"quizzes"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/admin/quizzes", nil, &out); err != nil {
		return nil, err
	}
	return out.Quizzes, nil
}

// GetStudentProfile returns nil when no record exists. The server scopes the
// lookup to the token's session, so email only guards against a mismatch.
func (c *Client) GetStudentProfile(ctx context.Context, email string) (*models.StudentProfile, error) {
	var p *models.StudentProfile
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/student", nil, &p); err != nil {
		return nil, err
	}
	if p != nil && email != "" && !strings.EqualFold(p.Email, email) {
		return nil, fmt.Errorf("profile belongs to %s, not %s", p.Email, email)
	}
	return p, nil
}

func (c *Client) UpsertStudentProfile(ctx context.Context, _ string, fields models.StudentProfileFields) error {
	return c.doJSON(ctx, http.MethodPost, "/api/v1/student", fields, nil)
}

func (c *Client) doJSON(ctx context.Context, method, path string, requestBody any, responseBody any) error {
	var body io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	request.Header.Set("Accept", "application/json")
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return decodeError(response)
	}

	if responseBody == nil {
		return nil
	}
	return json.NewDecoder(response.Body).Decode(responseBody)
}

func decodeError(response *http.Response) error {
	apiErr := &APIError{StatusCode: response.StatusCode}
	var payload models.ErrorResponse
	if err := json.NewDecoder(response.Body).Decode(&payload); err == nil {
		apiErr.Code = payload.Error.Code
		apiErr.Message = payload.Error.Message
		apiErr.Fields = payload.Error.Fields
		apiErr.RequestID = payload.Error.RequestID
	}
	if apiErr.Message == "" {
		apiErr.Message = response.Status
	}
	if response.StatusCode == http.StatusServiceUnavailable {
		return fmt.Errorf("%w: %w", ErrServiceUnavailable, apiErr)
	}
	return apiErr
}

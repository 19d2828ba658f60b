package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"edunexa-backend/internal/ai"
	"edunexa-backend/internal/config"
	"edunexa-backend/internal/database"
	"edunexa-backend/middleware"
	"edunexa-backend/models"
	"edunexa-backend/services"
	"edunexa-backend/utils"
)

type stubGeneration struct {
	summaryResult *services.SummaryResult
	summaryErr    error
	quizResult    *services.QuizResult
	quizErr       error
}

func (s *stubGeneration) GenerateSummary(ctx context.Context, fileID, requesterID string) (*services.SummaryResult, error) {
	return s.summaryResult, s.summaryErr
}

func (s *stubGeneration) GenerateQuiz(ctx context.Context, fileID, requesterID string) (*services.QuizResult, error) {
	return s.quizResult, s.quizErr
}

func setupAITestRouter(t *testing.T, stub *stubGeneration) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{JWTSecret: "test-secret"}
	authMW := middleware.NewAuthMiddleware(cfg)

	router := gin.New()
	SetupAIRoutes(router, stub, nil, authMW)

	token, err := utils.GenerateJWT("user-1", models.RoleStudent, cfg.JWTSecret, time.Hour)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return router, token
}

func doAIRequest(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSummaryEndpointSuccess(t *testing.T) {
	stub := &stubGeneration{
		summaryResult: &services.SummaryResult{
			Summary: &models.Summary{Title: "T", Overview: "O"},
			Cached:  false,
		},
	}
	router, token := setupAITestRouter(t, stub)

	w := doAIRequest(router, "/api/ai/summary/abc123", token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		Success bool           `json:"success"`
		Cached  bool           `json:"cached"`
		Summary models.Summary `json:"summary"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if !body.Success || body.Cached {
		t.Fatalf("unexpected flags: %+v", body)
	}
	if body.Summary.Overview != "O" {
		t.Fatalf("unexpected summary: %+v", body.Summary)
	}
}

func TestSummaryEndpointCachedFlag(t *testing.T) {
	stub := &stubGeneration{
		summaryResult: &services.SummaryResult{
			Summary: &models.Summary{Title: "T", Overview: "O"},
			Cached:  true,
		},
	}
	router, token := setupAITestRouter(t, stub)

	w := doAIRequest(router, "/api/ai/summary/abc123", token)
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if body["cached"] != true {
		t.Fatalf("expected cached=true, got %v", body["cached"])
	}
}

func TestSummaryEndpointFileNotFound(t *testing.T) {
	stub := &stubGeneration{summaryErr: database.ErrNotFound}
	router, token := setupAITestRouter(t, stub)

	w := doAIRequest(router, "/api/ai/summary/missing", token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	var body utils.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if body.Message != "File not found" {
		t.Fatalf("unexpected message: %q", body.Message)
	}
}

func TestSummaryEndpointInvalidModelOutput(t *testing.T) {
	stub := &stubGeneration{
		summaryErr: &ai.InvalidResponseError{RawText: "not json at all"},
	}
	router, token := setupAITestRouter(t, stub)

	w := doAIRequest(router, "/api/ai/summary/abc123", token)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		RawText string `json:"rawText"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if body.Success {
		t.Fatal("expected success=false")
	}
	if body.Message != "AI returned invalid JSON" {
		t.Fatalf("unexpected message: %q", body.Message)
	}
	if body.RawText != "not json at all" {
		t.Fatalf("raw text not relayed: %q", body.RawText)
	}
}

func TestSummaryEndpointOverloaded(t *testing.T) {
	stub := &stubGeneration{
		summaryErr: &ai.GenerationError{StatusCode: 503, Message: "model overloaded"},
	}
	router, token := setupAITestRouter(t, stub)

	w := doAIRequest(router, "/api/ai/summary/abc123", token)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestSummaryEndpointQuotaExceeded(t *testing.T) {
	stub := &stubGeneration{
		summaryErr: &ai.GenerationError{StatusCode: 429, Message: "quota exceeded"},
	}
	router, token := setupAITestRouter(t, stub)

	w := doAIRequest(router, "/api/ai/summary/abc123", token)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
}

func TestQuizEndpointSuccess(t *testing.T) {
	quiz := make([]models.QuizQuestion, models.QuizLength)
	for i := range quiz {
		quiz[i] = models.QuizQuestion{Question: "q", Options: []string{"a", "b", "c", "d"}, Answer: "A"}
	}
	stub := &stubGeneration{quizResult: &services.QuizResult{Quiz: quiz}}
	router, token := setupAITestRouter(t, stub)

	w := doAIRequest(router, "/api/ai/quiz/abc123", token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body struct {
		Success bool                  `json:"success"`
		Quiz    []models.QuizQuestion `json:"quiz"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if !body.Success {
		t.Fatal("expected success=true")
	}
	if len(body.Quiz) != models.QuizLength {
		t.Fatalf("expected %d questions, got %d", models.QuizLength, len(body.Quiz))
	}
}

func TestQuizEndpointQuotaSoftResponse(t *testing.T) {
	stub := &stubGeneration{
		quizResult: &services.QuizResult{Quiz: []models.QuizQuestion{}, QuotaExceeded: true},
	}
	router, token := setupAITestRouter(t, stub)

	// Quota exhaustion on the quiz path is a 200 with an in-band message
	w := doAIRequest(router, "/api/ai/quiz/abc123", token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body struct {
		Success bool                  `json:"success"`
		Quiz    []models.QuizQuestion `json:"quiz"`
		Message string                `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if body.Success {
		t.Fatal("expected success=false")
	}
	if len(body.Quiz) != 0 {
		t.Fatalf("expected empty quiz, got %d", len(body.Quiz))
	}
	if body.Message == "" {
		t.Fatal("expected quota message")
	}
}

func TestQuizEndpointFileNotFound(t *testing.T) {
	stub := &stubGeneration{quizErr: database.ErrNotFound}
	router, token := setupAITestRouter(t, stub)

	w := doAIRequest(router, "/api/ai/quiz/missing", token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestAIEndpointsRequireAuth(t *testing.T) {
	stub := &stubGeneration{}
	router, _ := setupAITestRouter(t, stub)

	w := doAIRequest(router, "/api/ai/summary/abc123", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

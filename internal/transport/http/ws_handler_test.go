package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"iq-quiz-service/internal/app"
	"iq-quiz-service/internal/domain"
	"iq-quiz-service/internal/infra/memory"
	"iq-quiz-service/internal/quiz"

	"github.com/gorilla/websocket"
)

func TestWebSocketSessionFlow(t *testing.T) {
	service, _ := newTestService()
	wsHandler := NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?name=Alice&policy=progressive"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Expect started then the first question.
	if typ, _ := readNext(conn, t, "started"); typ != "started" {
		t.Fatalf("expected started, got %s", typ)
	}
	typ, payload := readNext(conn, t, "question")
	if typ != "question" || payload == nil {
		t.Fatalf("expected question payload, got %s %v", typ, payload)
	}
	if payload["prompt"] == "" {
		t.Fatalf("question prompt missing: %v", payload)
	}
	if _, leaked := payload["correctOption"]; leaked {
		t.Fatalf("correct option leaked to client: %v", payload)
	}

	// Refetching the result before completion is an error.
	if err := conn.WriteJSON(map[string]any{"type": "result"}); err != nil {
		t.Fatalf("write result request: %v", err)
	}
	if typ, _ := readNext(conn, t, "error"); typ != "error" {
		t.Fatalf("expected error before completion, got %s", typ)
	}

	// Answer and advance.
	if err := conn.WriteJSON(map[string]any{"type": "select", "payload": map[string]any{"option": 1}}); err != nil {
		t.Fatalf("write select: %v", err)
	}
	if err := conn.WriteJSON(map[string]any{"type": "advance"}); err != nil {
		t.Fatalf("write advance: %v", err)
	}

	answerSeen := false
	completedSeen := false
	statusSeen := false
	for i := 0; i < 6 && !(answerSeen && completedSeen && statusSeen); i++ {
		typ, payload := readNext(conn, t, "")
		switch typ {
		case "answer":
			answerSeen = true
			if correct, _ := payload["isCorrect"].(bool); !correct {
				t.Fatalf("expected correct answer, got %v", payload)
			}
		case "completed":
			completedSeen = true
		case "submitStatus":
			if payload["status"] == string(domain.SubmitSuccess) {
				statusSeen = true
			}
		}
	}
	if !answerSeen || !completedSeen || !statusSeen {
		t.Fatalf("missing events: answer=%v completed=%v status=%v", answerSeen, completedSeen, statusSeen)
	}

	// A completed session serves its result, answers and submit status on demand.
	if err := conn.WriteJSON(map[string]any{"type": "result"}); err != nil {
		t.Fatalf("write result request: %v", err)
	}
	_, payload = readNext(conn, t, "result")
	result, ok := payload["result"].(map[string]any)
	if !ok || result["score"] != float64(1) {
		t.Fatalf("expected refetched 1/1 result, got %v", payload["result"])
	}
	answers, ok := payload["answers"].([]any)
	if !ok || len(answers) != 1 {
		t.Fatalf("expected one refetched answer, got %v", payload["answers"])
	}
	if payload["status"] != string(domain.SubmitSuccess) {
		t.Fatalf("expected success status, got %v", payload["status"])
	}
}

func TestWebSocketRequiresName(t *testing.T) {
	service, _ := newTestService()
	wsHandler := NewWSHandler(service)

	server := httptest.NewServer(http.HandlerFunc(wsHandler.ServeWS))
	defer server.Close()

	resp, err := http.Get(server.URL + "/ws")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without name, got %d", resp.StatusCode)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}

func newTestService() (*app.SessionService, *memory.ResultRepository) {
	bank := domain.QuestionBank{
		ID: "default",
		Questions: []domain.Question{
			{ID: 1, Prompt: "What is 2 + 2?", Options: []string{"3", "4"}, CorrectOption: 1, Difficulty: domain.DifficultyEasy},
			{ID: 2, Prompt: "What is 3 + 3?", Options: []string{"7", "6"}, CorrectOption: 1, Difficulty: domain.DifficultyEasy},
		},
	}
	banks := memory.NewBankRepository(memory.NewStaticBankLoader(map[string]domain.QuestionBank{"default": bank}), time.Minute)
	results := memory.NewResultRepository()
	service := app.NewSessionService(banks, memory.NewSessionStore(), results, app.SessionConfig{
		Quota:       quiz.Quota{Easy: 1},
		ManualTicks: true,
		Seed:        7,
	})
	return service, results
}

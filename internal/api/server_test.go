package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type fakeAsker struct {
	answer    string
	questions []string
}

func (f *fakeAsker) Ask(ctx context.Context, question string, trace io.Writer) string {
	f.questions = append(f.questions, question)
	return f.answer
}

func TestHealth(t *testing.T) {
	h := NewHandler(&fakeAsker{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); got != `{"status":"ok"}` {
		t.Errorf("body = %q", got)
	}
}

func TestAsk(t *testing.T) {
	asker := &fakeAsker{answer: "Hay 12 servicios registrados."}
	h := NewHandler(asker)

	body := strings.NewReader(`{"question": "¿Cuántos servicios hay?"}`)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/ask", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}

	var resp AskResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Answer != "Hay 12 servicios registrados." {
		t.Errorf("Answer = %q", resp.Answer)
	}
	if resp.Question != "¿Cuántos servicios hay?" {
		t.Errorf("Question = %q", resp.Question)
	}
	if resp.ID == "" {
		t.Error("ID is empty, want a conversation id")
	}

	if len(asker.questions) != 1 || asker.questions[0] != "¿Cuántos servicios hay?" {
		t.Errorf("asker received %v", asker.questions)
	}
}

func TestAskEmptyQuestion(t *testing.T) {
	h := NewHandler(&fakeAsker{})

	body := strings.NewReader(`{"question": "   "}`)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/ask", body))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "question is required") {
		t.Errorf("body = %q", rec.Body)
	}
}

func TestAskMalformedBody(t *testing.T) {
	h := NewHandler(&fakeAsker{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/ask", strings.NewReader("{not json")))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid_request_error") {
		t.Errorf("body = %q", rec.Body)
	}
}

func TestAskRejectsGet(t *testing.T) {
	h := NewHandler(&fakeAsker{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ask", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

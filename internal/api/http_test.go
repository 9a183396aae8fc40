package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/oxygen-anoxia/recommend-Agent/internal/agent"
	"github.com/oxygen-anoxia/recommend-Agent/internal/llm"
	"github.com/oxygen-anoxia/recommend-Agent/internal/match"
	"github.com/oxygen-anoxia/recommend-Agent/internal/profile"
	"github.com/oxygen-anoxia/recommend-Agent/internal/session"
)

type stubExtractor struct{ patch map[string]any }

func (s stubExtractor) Extract(ctx context.Context, input string) (map[string]any, error) {
	return s.patch, nil
}

type stubExecutor struct{ result match.Result }

func (s stubExecutor) Run(ctx context.Context, p *profile.Profile) (match.Result, error) {
	return s.result, nil
}

type stubNarrator struct{ reply string }

func (s stubNarrator) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	return s.reply, nil
}

func newTestHandler(t *testing.T, token string) http.Handler {
	t.Helper()
	a := agent.New(
		session.NewStore(0),
		stubExtractor{patch: map[string]any{"degree": "本科"}},
		stubExecutor{result: match.Success("精确匹配完成", nil)},
		stubExecutor{result: match.Success("猜测匹配完成", nil)},
		stubNarrator{reply: "这是顾问的建议"},
		nil,
	)
	return NewAppHandler(AppDeps{Agent: a, Token: token})
}

func TestHealthIsPublic(t *testing.T) {
	h := newTestHandler(t, "secret")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	json.NewDecoder(rec.Body).Decode(&body)
	if body["status"] != "ok" {
		t.Fatalf("body = %v", body)
	}
}

func TestBearerAuthGuardsAPI(t *testing.T) {
	h := newTestHandler(t, "secret")

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
		{"wrong scheme", "Basic secret", http.StatusUnauthorized},
		{"valid token", "Bearer secret", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/profile", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestAuthDisabledWithEmptyToken(t *testing.T) {
	h := newTestHandler(t, "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/profile", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestChatHappyPath(t *testing.T) {
	h := newTestHandler(t, "")

	req := httptest.NewRequest(http.MethodPost, "/chat",
		strings.NewReader(`{"input": "我是本科生", "user_id": "u1", "session_id": "s1"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var turn agent.TurnResult
	if err := json.NewDecoder(rec.Body).Decode(&turn); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if turn.Reply != "这是顾问的建议" {
		t.Fatalf("reply = %q", turn.Reply)
	}
	if turn.Profile.Status != match.StatusSuccess {
		t.Fatalf("profile status = %q", turn.Profile.Status)
	}
}

func TestChatRejectsMissingInput(t *testing.T) {
	h := newTestHandler(t, "")

	for name, body := range map[string]string{
		"empty input": `{"input": ""}`,
		"bad json":    `{"input": `,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d", rec.Code)
			}
			var errBody struct {
				Error struct {
					Type string `json:"type"`
				} `json:"error"`
			}
			json.NewDecoder(rec.Body).Decode(&errBody)
			if errBody.Error.Type != "invalid_request_error" {
				t.Fatalf("error type = %q", errBody.Error.Type)
			}
		})
	}
}

func TestPatchProfileThenGet(t *testing.T) {
	h := newTestHandler(t, "")

	req := httptest.NewRequest(http.MethodPatch, "/profile?user_id=u1&session_id=s1",
		strings.NewReader(`{"gpa": 88, "target_country": "美国"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var result match.Result
	json.NewDecoder(rec.Body).Decode(&result)
	if result.Status != match.StatusSuccess {
		t.Fatalf("status = %q, message = %q", result.Status, result.Message)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/profile?user_id=u1&session_id=s1", nil))

	var body struct {
		Profile           profile.Profile `json:"profile"`
		CompletionSummary profile.Summary `json:"completion_summary"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Profile.GPA == nil || *body.Profile.GPA != 88 {
		t.Fatalf("GPA = %v", body.Profile.GPA)
	}
	if body.Profile.TargetCountry == nil || *body.Profile.TargetCountry != "美国" {
		t.Fatalf("TargetCountry = %v", body.Profile.TargetCountry)
	}
}

func TestProfileSessionsAreIsolated(t *testing.T) {
	h := newTestHandler(t, "")

	req := httptest.NewRequest(http.MethodPatch, "/profile?user_id=u1&session_id=s1",
		strings.NewReader(`{"degree": "硕士"}`))
	h.ServeHTTP(httptest.NewRecorder(), req)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/profile?user_id=u1&session_id=s2", nil))

	var body struct {
		Profile profile.Profile `json:"profile"`
	}
	json.NewDecoder(rec.Body).Decode(&body)
	if body.Profile.Degree != nil {
		t.Fatalf("degree leaked across sessions: %v", *body.Profile.Degree)
	}
}

func TestHistoryEmptyIsJSONArray(t *testing.T) {
	h := newTestHandler(t, "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Fatalf("body = %q, want empty array", got)
	}
}

func TestHistoryRecordsTurn(t *testing.T) {
	h := newTestHandler(t, "")

	req := httptest.NewRequest(http.MethodPost, "/chat",
		strings.NewReader(`{"input": "你好", "user_id": "u1", "session_id": "s1"}`))
	h.ServeHTTP(httptest.NewRecorder(), req)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history?user_id=u1&session_id=s1", nil))

	var msgs []session.Message
	if err := json.NewDecoder(rec.Body).Decode(&msgs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Role != "user" || msgs[1].Role != "assistant" {
		t.Fatalf("history = %+v", msgs)
	}
}

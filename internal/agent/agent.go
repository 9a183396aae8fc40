// Package agent orchestrates a conversation turn: extract profile facts
// from the user's text, update the session profile, route to the matching
// executor the profile's completeness allows, and narrate the outcome.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oxygen-anoxia/recommend-Agent/internal/llm"
	"github.com/oxygen-anoxia/recommend-Agent/internal/match"
	"github.com/oxygen-anoxia/recommend-Agent/internal/profile"
	"github.com/oxygen-anoxia/recommend-Agent/internal/session"
	"github.com/oxygen-anoxia/recommend-Agent/internal/storage"
)

const narratorSystemPrompt = "你是一个专业的留学顾问，请根据用户画像和匹配结果，为用户提供个性化的留学建议。"

const fallbackReply = "系统繁忙，请稍后再试"

// Extractor pulls a flat profile patch out of a user turn.
type Extractor interface {
	Extract(ctx context.Context, input string) (map[string]any, error)
}

// Executor runs one matching strategy against a profile.
type Executor interface {
	Run(ctx context.Context, p *profile.Profile) (match.Result, error)
}

// Narrator turns a matching outcome into consultant prose.
type Narrator interface {
	Chat(ctx context.Context, messages []llm.Message) (string, error)
}

// Recorder persists the audit trail. Failures are logged, never surfaced.
type Recorder interface {
	SaveInteraction(i storage.Interaction) error
	SaveProfileSnapshot(snap storage.ProfileSnapshot) error
}

// Agent wires the conversation pieces together. A nil recorder disables
// persistence; everything else is required.
type Agent struct {
	sessions    *session.Store
	extractor   Extractor
	exact       Executor
	speculative Executor
	narrator    Narrator
	recorder    Recorder
}

// New assembles an Agent.
func New(sessions *session.Store, extractor Extractor, exact, speculative Executor, narrator Narrator, recorder Recorder) *Agent {
	return &Agent{
		sessions:    sessions,
		extractor:   extractor,
		exact:       exact,
		speculative: speculative,
		narrator:    narrator,
		recorder:    recorder,
	}
}

// TurnResult is one full conversation turn's outcome.
type TurnResult struct {
	Reply    string       `json:"reply"`
	Profile  match.Result `json:"profile_result"`
	Matching match.Result `json:"matching_result"`
}

// UpdateProfile extracts facts from the input and merges them into the
// session's profile. The envelope distinguishes "nothing mentioned" and
// "nothing new" (both no_change) from a real update.
func (a *Agent) UpdateProfile(ctx context.Context, key session.Key, input string) match.Result {
	if strings.TrimSpace(input) == "" {
		return match.ErrorResult(errors.New("用户输入不能为空"))
	}

	patch, err := a.extractor.Extract(ctx, input)
	if err != nil {
		return match.ErrorResult(err)
	}
	if len(patch) == 0 {
		return match.NoChange("用户的输入未涉及任何可用于更新画像的信息")
	}

	var result match.Result
	_ = a.sessions.Do(key, func(st *session.State) error {
		changed := st.Profile.Update(patch)
		if len(changed) == 0 {
			mentioned := make([]string, 0, len(patch))
			for k := range patch {
				mentioned = append(mentioned, k)
			}
			result = match.NoChange(fmt.Sprintf("提取到的信息与现有画像一致，无需更新。涉及字段: %v", mentioned))
			return nil
		}

		result = match.Success(
			fmt.Sprintf("用户画像已成功更新。更新字段: %v", changed),
			map[string]any{
				"updated_fields":     changed,
				"extracted_info":     patch,
				"completion_summary": st.Profile.CompletionSummary(),
				"profile":            st.Profile.Clone(),
			},
		)
		return nil
	})

	a.snapshot(key)
	return result
}

// RunExactMatch runs the exact executor against the session's profile.
func (a *Agent) RunExactMatch(ctx context.Context, key session.Key) match.Result {
	return a.runExecutor(ctx, key, a.exact)
}

// RunSpeculativeMatch runs the speculative executor against the session's
// profile.
func (a *Agent) RunSpeculativeMatch(ctx context.Context, key session.Key) match.Result {
	return a.runExecutor(ctx, key, a.speculative)
}

func (a *Agent) runExecutor(ctx context.Context, key session.Key, exec Executor) match.Result {
	p := a.sessions.Snapshot(key)
	if p == nil {
		return match.ErrorResult(match.ErrProfileMissing)
	}

	result, err := exec.Run(ctx, p)
	if err != nil {
		return match.ErrorResult(err)
	}
	return result
}

// Respond handles one full conversation turn.
func (a *Agent) Respond(ctx context.Context, key session.Key, input string) (TurnResult, error) {
	profileResult := a.UpdateProfile(ctx, key, input)
	if profileResult.Status == match.StatusError {
		// Extraction failure is not fatal: matching can still proceed on
		// what the profile already holds.
		slog.Warn("profile update failed, continuing with existing profile",
			"user_id", key.UserID, "session_id", key.SessionID,
			"message", profileResult.Message,
		)
	}

	matchingResult := a.route(ctx, key)

	reply := a.narrate(ctx, input, profileResult, matchingResult)

	a.sessions.Do(key, func(st *session.State) error {
		st.AppendMessage("user", input, a.sessions.MaxHistory())
		st.AppendMessage("assistant", reply, a.sessions.MaxHistory())
		return nil
	})

	a.record(key, input, matchingResult, reply)
	a.snapshot(key)

	return TurnResult{
		Reply:    reply,
		Profile:  profileResult,
		Matching: matchingResult,
	}, nil
}

// route picks the matching strategy the profile's completeness allows.
func (a *Agent) route(ctx context.Context, key session.Key) match.Result {
	p := a.sessions.Snapshot(key)
	if p == nil {
		p = &profile.Profile{}
	}

	state, missing := p.Classify()
	slog.Info("routing by profile completeness",
		"user_id", key.UserID, "session_id", key.SessionID,
		"completeness", state, "missing_fields", missing,
	)

	switch state {
	case profile.Complete:
		return a.runExecutor(ctx, key, a.exact)
	case profile.Minimal:
		return a.runExecutor(ctx, key, a.speculative)
	default:
		return match.Success(
			fmt.Sprintf("您还缺少一些必填信息：%s。请先补充这些信息，我才能为您推荐合适的学校。", strings.Join(missing, ", ")),
			map[string]any{
				"missing_essential_fields": missing,
				"completeness":             state,
			},
		)
	}
}

// narrate asks the LLM to phrase the outcome as consultant advice. Any
// failure falls back to a canned reply; raw result data never leaks into
// the fallback.
func (a *Agent) narrate(ctx context.Context, input string, profileResult, matchingResult match.Result) string {
	profileJSON, _ := json.Marshal(profileResult.Data)
	matchingJSON, _ := json.Marshal(matchingResult)

	messages := []llm.Message{
		{Role: "system", Content: narratorSystemPrompt},
		{Role: "user", Content: fmt.Sprintf(
			"用户问题: %s\n\n用户画像更新结果: %s\n\n院校匹配结果: %s",
			input, profileJSON, matchingJSON,
		)},
	}

	reply, err := a.narrator.Chat(ctx, messages)
	if err != nil {
		slog.Warn("narration failed, using fallback reply", "error", err)
		return fallbackReply
	}
	return reply
}

// Profile returns a copy of the session's current profile, or an empty
// profile if the session has never been touched.
func (a *Agent) Profile(key session.Key) *profile.Profile {
	if p := a.sessions.Snapshot(key); p != nil {
		return p
	}
	return &profile.Profile{}
}

// ApplyPatch merges a caller-supplied patch directly, bypassing extraction.
// Used by the profile editing surface where the caller already has
// structured data.
func (a *Agent) ApplyPatch(key session.Key, patch map[string]any) match.Result {
	if len(patch) == 0 {
		return match.NoChange("用户的输入未涉及任何可用于更新画像的信息")
	}

	var result match.Result
	_ = a.sessions.Do(key, func(st *session.State) error {
		changed := st.Profile.Update(patch)
		if len(changed) == 0 {
			result = match.NoChange("提取到的信息与现有画像一致，无需更新。")
			return nil
		}
		result = match.Success(
			fmt.Sprintf("用户画像已成功更新。更新字段: %v", changed),
			map[string]any{
				"updated_fields":     changed,
				"completion_summary": st.Profile.CompletionSummary(),
				"profile":            st.Profile.Clone(),
			},
		)
		return nil
	})

	a.snapshot(key)
	return result
}

// History returns the session transcript in chronological order.
func (a *Agent) History(key session.Key) []session.Message {
	var msgs []session.Message
	_ = a.sessions.Do(key, func(st *session.State) error {
		msgs = append(msgs, st.Messages...)
		return nil
	})
	return msgs
}

func (a *Agent) record(key session.Key, input string, result match.Result, reply string) {
	if a.recorder == nil {
		return
	}
	matchType := ""
	if mt, ok := result.Data["match_type"].(string); ok {
		matchType = mt
	}
	err := a.recorder.SaveInteraction(storage.Interaction{
		ID:              uuid.NewString(),
		CreatedAt:       time.Now(),
		UserID:          key.UserID,
		SessionID:       key.SessionID,
		UserQuery:       input,
		Status:          string(result.Status),
		MatchType:       matchType,
		ResponseMessage: reply,
	})
	if err != nil {
		slog.Warn("saving interaction failed", "error", err)
	}
}

func (a *Agent) snapshot(key session.Key) {
	if a.recorder == nil {
		return
	}
	p := a.sessions.Snapshot(key)
	if p == nil {
		return
	}
	data, err := json.Marshal(p)
	if err != nil {
		slog.Warn("marshaling profile snapshot failed", "error", err)
		return
	}
	if err := a.recorder.SaveProfileSnapshot(storage.ProfileSnapshot{
		UserID:      key.UserID,
		SessionID:   key.SessionID,
		ProfileJSON: string(data),
		UpdatedAt:   time.Now(),
	}); err != nil {
		slog.Warn("saving profile snapshot failed", "error", err)
	}
}

package match

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/oxygen-anoxia/recommend-Agent/internal/guess"
	"github.com/oxygen-anoxia/recommend-Agent/internal/profile"
	"github.com/oxygen-anoxia/recommend-Agent/internal/upstream"
)

const (
	defaultMaxParallel = 10
	defaultCallTimeout = 30 * time.Second

	// maxGuessableMissing caps the speculative search space. Beyond two
	// unknowns the fan-out cost outweighs the value of guessed answers and
	// the user is asked for more information instead.
	maxGuessableMissing = 2
)

// MatchType tags speculative result payloads.
const MatchType = "guessed_parallel"

// runState tracks one speculative run for logging. A run is single-use:
// a retry after the user supplies more information is a fresh run.
type runState string

const (
	statePending        runState = "pending"
	stateFannedOut      runState = "fanned_out"
	statePartialSuccess runState = "partial_success"
	stateAllFailed      runState = "all_failed"
	stateDone           runState = "done"
)

// GuessedResult is one successful combination's outcome, tagged with the
// guess that produced it.
type GuessedResult struct {
	Guess     map[string]any             `json:"guess"`
	Profile   *profile.Profile           `json:"profile"`
	Results   *upstream.SupplementResult `json:"results"`
	GuessInfo string                     `json:"guess_info"`
}

// SpeculativeExecutor fans one supplement-match query per guess combination
// out over a bounded worker pool. Failed calls are isolated and tallied;
// they never abort sibling calls. Output order is generation order,
// independent of network timing.
type SpeculativeExecutor struct {
	client      Matcher
	options     guess.Options
	maxParallel int
	callTimeout time.Duration
}

// NewSpeculativeExecutor creates an executor with the default concurrency
// cap (10) and per-call timeout (30s).
func NewSpeculativeExecutor(client Matcher, options guess.Options) *SpeculativeExecutor {
	return &SpeculativeExecutor{
		client:      client,
		options:     options,
		maxParallel: defaultMaxParallel,
		callTimeout: defaultCallTimeout,
	}
}

// NewSpeculativeExecutorWith creates an executor with explicit limits.
// Non-positive values fall back to the defaults.
func NewSpeculativeExecutorWith(client Matcher, options guess.Options, maxParallel int, callTimeout time.Duration) *SpeculativeExecutor {
	e := NewSpeculativeExecutor(client, options)
	if maxParallel > 0 {
		e.maxParallel = maxParallel
	}
	if callTimeout > 0 {
		e.callTimeout = callTimeout
	}
	return e
}

// outcome is one combination's slot, indexed by generation order.
type outcome struct {
	combo     guess.Combination
	candidate *profile.Profile
	result    *upstream.SupplementResult
	err       error
}

// Run executes one speculative matching run against a profile that
// classifies as Minimal. The base profile is never mutated: every worker
// operates on its own deep copy.
func (e *SpeculativeExecutor) Run(ctx context.Context, base *profile.Profile) (Result, error) {
	if base == nil {
		return Result{}, ErrProfileMissing
	}

	state, missing := base.Classify()
	switch state {
	case profile.Complete:
		return Result{}, ErrProfileAlreadyComplete
	case profile.Incomplete:
		return Result{}, &IncompleteError{Missing: missing}
	}

	// Refuse large search spaces before generating anything.
	if len(missing) > maxGuessableMissing {
		return Result{}, &TooManyUnknownsError{Missing: missing}
	}

	combos := e.options.Combinations(missing)
	if len(combos) == 0 {
		return Result{}, ErrNoGuessableFields
	}

	slog.Info("generated guess combinations",
		"state", statePending,
		"missing_fields", missing,
		"combinations", len(combos),
		"max_parallel", e.maxParallel,
	)

	outcomes := make([]outcome, len(combos))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxParallel)

	slog.Debug("fanning out", "state", stateFannedOut, "workers", min(e.maxParallel, len(combos)))

	start := time.Now()
	for i, combo := range combos {
		g.Go(func() error {
			outcomes[i] = e.runOne(gctx, base, combo, i)
			// Failures stay in their slot; returning them would cancel
			// sibling calls.
			return nil
		})
	}
	g.Wait()

	// Reduce in generation order.
	var results []GuessedResult
	failed := 0
	for i, out := range outcomes {
		if out.err != nil {
			slog.Warn("guess combination failed",
				"combination", i+1,
				"guess", out.combo.Label(),
				"error", out.err,
			)
			failed++
			continue
		}
		results = append(results, GuessedResult{
			Guess:     out.combo.Patch(),
			Profile:   out.candidate,
			Results:   out.result,
			GuessInfo: fmt.Sprintf("组合%d(%s)", i+1, out.combo.Label()),
		})
	}

	phase := statePartialSuccess
	if len(results) == 0 {
		phase = stateAllFailed
	}
	slog.Info("speculative fan-out finished",
		"state", phase,
		"elapsed", time.Since(start),
		"succeeded", len(results),
		"failed", failed,
	)

	if len(results) == 0 {
		return Result{}, ErrAllCombinationsFailed
	}

	message := e.buildDigest(results, len(combos))
	data := map[string]any{
		"guessed_results":         results,
		"missing_fields":          missing,
		"completeness":            state,
		"match_type":              MatchType,
		"total_combinations":      len(combos),
		"successful_combinations": len(results),
		"failed_combinations":     failed,
	}

	slog.Debug("speculative run complete", "state", stateDone)
	return Success(message, data), nil
}

// runOne executes a single combination's query with its own timeout.
func (e *SpeculativeExecutor) runOne(ctx context.Context, base *profile.Profile, combo guess.Combination, idx int) outcome {
	out := outcome{combo: combo}

	candidate := base.Clone()
	candidate.Update(combo.Patch())
	out.candidate = candidate

	query := BuildQuery(candidate)
	if query.IsZero() {
		out.err = ErrEmptyQuery
		return out
	}

	callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()

	slog.Debug("calling supplement match", "combination", idx+1, "guess", combo.Label())
	out.result, out.err = e.client.SupplementMatch(callCtx, query)
	return out
}

// buildDigest renders the user-facing per-combination summary in
// combination order.
func (e *SpeculativeExecutor) buildDigest(results []GuessedResult, total int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "您的信息尚不完整，我们并行处理了 %d 个猜测组合，成功获得 %d 个结果：\n", total, len(results))

	for _, r := range results {
		fmt.Fprintf(&sb, "\n--- \n**%s - 如果您的%s：**\n", r.GuessInfo, guessLabel(r))
		if r.Results != nil && r.Results.Summary != nil && r.Results.Summary.Text != "" {
			sb.WriteString(firstSentence(r.Results.Summary.Text))
			sb.WriteString("\n")
		} else {
			sb.WriteString("未能找到匹配的项目。\n")
		}
	}

	sb.WriteString("\n\n为了给您更精确的推荐，请告诉我您缺失的信息。")
	return sb.String()
}

func guessLabel(r GuessedResult) string {
	// GuessInfo is "组合N(label)" — reuse the label between the parens.
	open := strings.Index(r.GuessInfo, "(")
	if open >= 0 && strings.HasSuffix(r.GuessInfo, ")") {
		return r.GuessInfo[open+1 : len(r.GuessInfo)-1]
	}
	return r.GuessInfo
}

// firstSentence truncates prose to its first sentence, recognizing both
// CJK and ASCII terminators. The earliest terminator wins.
func firstSentence(text string) string {
	best := -1
	cut := 0
	for _, sep := range []string{"。", ". ", "！", "!"} {
		idx := strings.Index(text, sep)
		if idx < 0 {
			continue
		}
		if best < 0 || idx < best {
			best = idx
			cut = len(sep)
			if sep == ". " {
				cut = 1 // keep the period, drop the space
			}
		}
	}
	if best < 0 {
		return text
	}
	return text[:best+cut]
}

package orchestrator

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/local/nfsextract/internal/ai"
	"github.com/local/nfsextract/internal/metrics"
)

const (
	stageNormalize = "normalize"
	stageConvert   = "convert"

	previewChars = 500
)

// ErrEmptyCompletion is returned when a stage answers with only whitespace.
var ErrEmptyCompletion = errors.New("llm returned an empty completion")

// runStage sends one prompt and returns the trimmed completion. An empty
// completion fails the stage like any transport error.
func (o *Orchestrator) runStage(ctx context.Context, requestID, stage, prompt string) (string, error) {
	l := log.With().Str("request_id", requestID).Str("stage", stage).Logger()
	l.Info().Int("prompt_chars", len(prompt)).Msg("llm stage started")

	start := time.Now()
	resp, err := o.deps.LLM.Do(ctx, ai.Request{RequestID: requestID, Stage: stage, Prompt: prompt})
	dur := time.Since(start)
	metrics.ObserveStage(stage, dur)
	if err != nil {
		result := "transport"
		if ai.IsTimeout(err) {
			result = "timeout"
		}
		metrics.IncLLMCall(stage, result)
		l.Error().Err(err).Str("result", result).Dur("duration", dur).Msg("llm stage failed")
		return "", err
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		metrics.IncLLMCall(stage, "empty")
		l.Error().Dur("duration", dur).Msg("llm stage returned empty completion")
		return "", ErrEmptyCompletion
	}
	metrics.IncLLMCall(stage, "ok")
	l.Info().Int("chars", len(text)).Dur("duration", dur).Msg("llm stage finished")
	return text, nil
}

func preview(s string) string {
	if len(s) <= previewChars {
		return s
	}
	cut := previewChars
	// keep the cut on a rune boundary
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

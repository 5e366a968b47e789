package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hfakhoury/majalla-chat/internal/config"
	"github.com/hfakhoury/majalla-chat/internal/domain"
	"github.com/hfakhoury/majalla-chat/internal/llm"
	"github.com/hfakhoury/majalla-chat/internal/retrieval"
)

// recentTurnMessages is how many trailing history messages are replayed to
// the generation service as discrete turns (3 turns, user + assistant each).
const recentTurnMessages = 6

// maxSources caps how many attributions accompany an answer.
const maxSources = 4

// Citations never appear inline in prose; attribution travels only through
// the structured source list. These strip whatever the model emits anyway.
var (
	arabicSourceLabelRe = regexp.MustCompile(`المصدر\s*:?\s*[^\n]*`)
	latinSourceLabelRe  = regexp.MustCompile(`(?i)source\s*:?\s*[^\n]*`)
	urlRe               = regexp.MustCompile(`https?://[^\s\n]+`)
	refNumberRe         = regexp.MustCompile(`\[?\d+\]`)
	blankLinesRe        = regexp.MustCompile(`\n\s*\n\s*\n+`)
)

// Synthesizer turns retrieval context plus conversation history into a
// final answer via the generation service, with bounded retry on rate
// limits.
type Synthesizer struct {
	router *llm.Router
	gen    config.GenerationConfig
}

func NewSynthesizer(router *llm.Router, gen config.GenerationConfig) *Synthesizer {
	return &Synthesizer{router: router, gen: gen}
}

// Answer generates the assistant reply. It never returns an error: any
// generation failure degrades to a localized fallback answer.
func (s *Synthesizer) Answer(ctx context.Context, message, contextBlock string, history []domain.Message, turnCharLimit int) string {
	messages := s.buildMessages(message, contextBlock, history, turnCharLimit)

	provider, err := s.router.GetProvider(s.router.DefaultProvider())
	if err != nil {
		log.Error().Err(err).Msg("no generation provider available")
		return generationErrorFallback
	}

	req := llm.Request{
		Messages:         messages,
		Temperature:      s.gen.Temperature,
		MaxTokens:        s.gen.MaxTokens,
		PresencePenalty:  s.gen.PresencePenalty,
		FrequencyPenalty: s.gen.FrequencyPenalty,
	}

	for attempt := 0; attempt < s.gen.MaxRetries; attempt++ {
		resp, err := provider.Complete(ctx, req, provider.DefaultModel())
		if err == nil {
			return StripCitations(resp.Text)
		}

		if !llm.IsRateLimit(err) {
			log.Error().Err(err).Str("provider", provider.Name()).Msg("generation failed")
			return generationErrorFallback
		}

		if attempt == s.gen.MaxRetries-1 {
			log.Warn().Int("attempts", s.gen.MaxRetries).Msg("rate limit retries exhausted")
			return rateLimitFallback
		}

		wait := llm.Backoff(attempt)
		log.Warn().
			Dur("wait", wait).
			Int("attempt", attempt+1).
			Msg("rate limit hit, backing off")
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return rateLimitFallback
		}
	}
	return rateLimitFallback
}

// buildMessages assembles the generation request: a system prompt carrying
// the history block and retrieval context, the trailing conversation turns
// truncated per turn, then the current message.
func (s *Synthesizer) buildMessages(message, contextBlock string, history []domain.Message, turnCharLimit int) []llm.Message {
	prompt := fmt.Sprintf(systemPrompt, historyBlock(history), contextBlock, message)

	messages := []llm.Message{{Role: "system", Content: prompt}}

	recent := history
	if len(recent) > recentTurnMessages {
		recent = recent[len(recent)-recentTurnMessages:]
	}
	for _, m := range recent {
		messages = append(messages, llm.Message{
			Role:    string(m.Role),
			Content: truncateRunes(m.Text, turnCharLimit),
		})
	}

	messages = append(messages, llm.Message{Role: "user", Content: message})
	return messages
}

// historyBlock renders prior turns as a labeled transcript for the system
// prompt. Empty history yields an empty block.
func historyBlock(history []domain.Message) string {
	if len(history) == 0 {
		return ""
	}
	parts := make([]string, 0, len(history)+1)
	parts = append(parts, "Conversation History:")
	for _, m := range history {
		label := "User"
		if m.Role == domain.RoleAssistant {
			label = "Assistant"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", label, m.Text))
	}
	return strings.Join(parts, "\n") + "\n"
}

// StripCitations removes source labels, bare URLs and bracketed reference
// numbers from an answer, then collapses the blank lines left behind.
func StripCitations(answer string) string {
	answer = arabicSourceLabelRe.ReplaceAllString(answer, "")
	answer = latinSourceLabelRe.ReplaceAllString(answer, "")
	answer = urlRe.ReplaceAllString(answer, "")
	answer = refNumberRe.ReplaceAllString(answer, "")
	answer = blankLinesRe.ReplaceAllString(answer, "\n\n")
	return strings.TrimSpace(answer)
}

// ExtractSources converts the top retrieval candidates into attributions,
// deduplicated by url, at most maxSources entries. Candidates without a
// url are skipped.
func ExtractSources(results []retrieval.Document) []domain.Source {
	sources := make([]domain.Source, 0, maxSources)
	seen := make(map[string]struct{}, maxSources)
	for _, r := range results {
		if len(sources) == maxSources {
			break
		}
		if r.URL == "" {
			continue
		}
		if _, ok := seen[r.URL]; ok {
			continue
		}
		seen[r.URL] = struct{}{}
		sources = append(sources, domain.Source{
			Title: r.Title,
			URL:   r.URL,
			Score: r.Score,
		})
	}
	return sources
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

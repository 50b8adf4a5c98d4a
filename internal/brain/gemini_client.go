package brain

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"banyan/internal/core/domain"
	"banyan/internal/core/ports"

	"google.golang.org/genai"
)

const rephrasePrompt = `你是 Banyan 社群平台的「換句話說」助手。

任務：把使用者的貼文改寫成語氣較溫和、較理性的版本。

規則：
1. 保留原文的語言、立場與主要資訊，不要新增事實。
2. 把絕對化或煽動性的字眼改成中性、可討論的說法。
3. 驚嘆號改為句號。
4. 只輸出改寫後的文字，不要加引號、標題或任何說明。

[原文]
%s`

type modelConfig struct {
	Name string
	RPM  int
	RPD  int
}

// contentGenerator is the slice of *genai.Models the brain uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiBrain rephrases posts with Gemini, walking a list of models and
// skipping any that hit their per-minute or per-day budget.
type GeminiBrain struct {
	Models []modelConfig

	generator    contentGenerator
	now          func() time.Time
	dailyCount   map[string]int
	minuteCount  map[string]int
	lastResetDay time.Time
	lastResetMin time.Time
	mu           sync.Mutex
}

func NewGeminiBrain(ctx context.Context, apiKey string) (*GeminiBrain, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	return newBrain(client.Models, time.Now), nil
}

func newBrain(gen contentGenerator, now func() time.Time) *GeminiBrain {
	return &GeminiBrain{
		Models: []modelConfig{
			{Name: "gemini-2.5-flash", RPM: 10, RPD: 250},
			{Name: "gemini-2.5-flash-lite", RPM: 15, RPD: 1000},
		},
		generator:    gen,
		now:          now,
		dailyCount:   make(map[string]int),
		minuteCount:  make(map[string]int),
		lastResetDay: now(),
		lastResetMin: now(),
	}
}

var _ ports.Rephraser = (*GeminiBrain)(nil)

// Rephrase implements ports.Rephraser. Errors wrap domain.ErrRemoteUnavailable
// so callers treat Gemini like any other remote.
func (b *GeminiBrain) Rephrase(ctx context.Context, content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return content, nil
	}
	out, err := b.tryGenerateWithFallback(ctx, fmt.Sprintf(rephrasePrompt, content))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, err)
	}
	return out, nil
}

func (b *GeminiBrain) tryGenerateWithFallback(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for _, cfg := range b.Models {
		if !b.canUseModel(cfg) {
			continue
		}

		result, err := b.generator.GenerateContent(ctx, cfg.Name, genai.Text(prompt), nil)
		if err != nil {
			errStr := strings.ToLower(err.Error())
			if strings.Contains(errStr, "429") || strings.Contains(errStr, "rate limit") || strings.Contains(errStr, "exhausted") || strings.Contains(errStr, "404") || strings.Contains(errStr, "not found") {
				lastErr = err
				continue
			}
			return "", err
		}

		if text := firstText(result); text != "" {
			b.recordUsage(cfg)
			return text, nil
		}
		lastErr = fmt.Errorf("model %s returned no text", cfg.Name)
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("all models are over their request budget")
	}
	return "", fmt.Errorf("all models failed: %w", lastErr)
}

func firstText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 {
		return ""
	}
	c := result.Candidates[0].Content
	if c == nil || len(c.Parts) == 0 || c.Parts[0] == nil {
		return ""
	}
	return cleanText(c.Parts[0].Text)
}

func (b *GeminiBrain) canUseModel(cfg modelConfig) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()
	if now.YearDay() != b.lastResetDay.YearDay() || now.Year() != b.lastResetDay.Year() {
		b.dailyCount = make(map[string]int)
		b.lastResetDay = now
	}
	if now.Sub(b.lastResetMin) >= time.Minute {
		b.minuteCount = make(map[string]int)
		b.lastResetMin = now
	}
	if b.dailyCount[cfg.Name] >= cfg.RPD {
		return false
	}
	if b.minuteCount[cfg.Name] >= cfg.RPM {
		return false
	}
	return true
}

func (b *GeminiBrain) recordUsage(cfg modelConfig) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dailyCount[cfg.Name]++
	b.minuteCount[cfg.Name]++
}

// cleanText strips code fences and wrapping quotes models like to add.
func cleanText(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```text")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	input = strings.TrimSpace(input)
	for _, q := range [][2]string{{"\"", "\""}, {"「", "」"}} {
		if len(input) >= len(q[0])+len(q[1]) && strings.HasPrefix(input, q[0]) && strings.HasSuffix(input, q[1]) {
			input = strings.TrimSpace(input[len(q[0]) : len(input)-len(q[1])])
		}
	}
	return input
}

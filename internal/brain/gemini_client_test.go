package brain

import (
	"context"
	"errors"
	"testing"
	"time"

	"banyan/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeGenerator struct {
	errs   map[string]error
	text   string
	models []string
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.models = append(f.models, model)
	if err := f.errs[model]; err != nil {
		return nil, err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: f.text}}}},
		},
	}, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestRephrase(t *testing.T) {
	gen := &fakeGenerator{text: "```\n「建議重新評估這項政策。」\n```"}
	b := newBrain(gen, fixedClock(time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)))

	out, err := b.Rephrase(context.Background(), "立即停止這項政策！")
	require.NoError(t, err)
	assert.Equal(t, "建議重新評估這項政策。", out)
	assert.Equal(t, []string{"gemini-2.5-flash"}, gen.models)
}

func TestRephraseEmptyInputSkipsModel(t *testing.T) {
	gen := &fakeGenerator{text: "unused"}
	b := newBrain(gen, time.Now)

	out, err := b.Rephrase(context.Background(), "   ")
	require.NoError(t, err)
	assert.Equal(t, "   ", out)
	assert.Empty(t, gen.models)
}

func TestRateLimitedModelFallsThrough(t *testing.T) {
	gen := &fakeGenerator{
		text: "ok",
		errs: map[string]error{"gemini-2.5-flash": errors.New("Error 429: RESOURCE_EXHAUSTED")},
	}
	b := newBrain(gen, time.Now)

	out, err := b.Rephrase(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, []string{"gemini-2.5-flash", "gemini-2.5-flash-lite"}, gen.models)
}

func TestHardErrorIsRemoteUnavailable(t *testing.T) {
	gen := &fakeGenerator{errs: map[string]error{"gemini-2.5-flash": errors.New("permission denied")}}
	b := newBrain(gen, time.Now)

	_, err := b.Rephrase(context.Background(), "x")
	require.ErrorIs(t, err, domain.ErrRemoteUnavailable)
	assert.Len(t, gen.models, 1)
}

func TestEmptyCandidateIsAnError(t *testing.T) {
	gen := &fakeGenerator{text: "  "}
	b := newBrain(gen, time.Now)

	_, err := b.Rephrase(context.Background(), "x")
	require.ErrorIs(t, err, domain.ErrRemoteUnavailable)
}

func TestMinuteBudget(t *testing.T) {
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	gen := &fakeGenerator{text: "ok"}
	b := newBrain(gen, func() time.Time { return now })
	b.Models = []modelConfig{{Name: "only", RPM: 2, RPD: 100}}

	for i := 0; i < 2; i++ {
		_, err := b.Rephrase(context.Background(), "x")
		require.NoError(t, err)
	}
	_, err := b.Rephrase(context.Background(), "x")
	require.ErrorIs(t, err, domain.ErrRemoteUnavailable)

	now = now.Add(time.Minute)
	_, err = b.Rephrase(context.Background(), "x")
	assert.NoError(t, err)
}

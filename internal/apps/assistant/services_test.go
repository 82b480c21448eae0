package assistant

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/llm"
)

// fakeLLM replays queued text answers and records every prompt it sees.
type fakeLLM struct {
	mu       sync.Mutex
	texts    []string
	textErr  error
	images   []llm.Image
	imageErr error
	prompts  []string
	systems  []string
	imageN   int
}

func (f *fakeLLM) GenerateText(_ context.Context, system string, _ []llm.Message, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	f.systems = append(f.systems, system)
	if f.textErr != nil {
		return "", f.textErr
	}
	if len(f.texts) == 0 {
		return "", llm.ErrEmptyResponse
	}
	out := f.texts[0]
	f.texts = f.texts[1:]
	return out, nil
}

func (f *fakeLLM) GenerateImages(_ context.Context, _ string, n int) ([]llm.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imageN = n
	return f.images, f.imageErr
}

var longThemeAnswer = "A woodland theme works beautifully. " + strings.Repeat("Soft sage greens, cream linens and little fox centerpieces. ", 16)

func oneTurn() []llm.Message {
	return []llm.Message{{Role: llm.RoleUser, Content: "Any theme ideas?"}, {Role: llm.RoleModel, Content: "Sure!"}}
}

func TestThemeChatWithImages(t *testing.T) {
	fake := &fakeLLM{
		texts:  []string{longThemeAnswer, "sage and cream woodland table"},
		images: []llm.Image{{MIMEType: "image/jpeg", Data: []byte{0xff, 0xd8}}, {Data: []byte{1}}, {Data: nil}},
	}
	svc := NewAssistantService(fake)

	resp, err := svc.ThemeChat(context.Background(), ThemeChatRequest{Prompt: "Tell me more", History: oneTurn()})
	require.NoError(t, err)
	assert.Equal(t, longThemeAnswer, resp.Response)
	assert.Equal(t, "sage and cream woodland table", resp.ImagePrompt)
	require.Len(t, resp.ImageURLs, 2)
	assert.Equal(t, "data:image/jpeg;base64,/9g=", resp.ImageURLs[0])
	assert.Equal(t, imageCount, fake.imageN)

	require.Len(t, fake.prompts, 2)
	assert.Equal(t, themeSystemPrompt, fake.systems[0])
	assert.Contains(t, fake.prompts[1], longThemeAnswer[:imageSourceLength])
	assert.NotContains(t, fake.prompts[1], longThemeAnswer)
}

func TestVisualPromptTruncatesOnRunes(t *testing.T) {
	prompt := visualPromptRequest(strings.Repeat("é", imageSourceLength+100))

	assert.True(t, utf8.ValidString(prompt))
	assert.Contains(t, prompt, strings.Repeat("é", imageSourceLength))
	assert.NotContains(t, prompt, strings.Repeat("é", imageSourceLength+1))
}

func TestThemeChatImageFailureKeepsText(t *testing.T) {
	fake := &fakeLLM{
		texts:    []string{longThemeAnswer, "woodland"},
		imageErr: llm.ErrUnavailable,
	}
	resp, err := NewAssistantService(fake).ThemeChat(context.Background(), ThemeChatRequest{Prompt: "More", History: oneTurn()})
	require.NoError(t, err)
	assert.Equal(t, longThemeAnswer, resp.Response)
	assert.Equal(t, "woodland", resp.ImagePrompt)
	assert.Empty(t, resp.ImageURLs)
}

func TestShouldIllustrate(t *testing.T) {
	cases := map[string]struct {
		response string
		history  int
		want     bool
	}{
		"long theme answer":   {longThemeAnswer, 1, true},
		"first turn":          {longThemeAnswer, 0, false},
		"short answer":        {"A theme idea: ducks.", 2, false},
		"long without topics": {strings.Repeat("lovely ", 60), 2, false},
		"keyword any case":    {"DECOR " + strings.Repeat("x", 300), 1, true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, shouldIllustrate(tc.response, tc.history))
		})
	}
}

func TestThemeChatValidation(t *testing.T) {
	svc := NewAssistantService(&fakeLLM{})
	ctx := context.Background()

	_, err := svc.ThemeChat(ctx, ThemeChatRequest{Prompt: " "})
	assert.ErrorIs(t, err, ErrPromptRequired)

	_, err = svc.ThemeChat(ctx, ThemeChatRequest{Prompt: strings.Repeat("a", maxPromptSize+1)})
	assert.ErrorIs(t, err, ErrPromptTooLong)

	_, err = svc.ThemeChat(ctx, ThemeChatRequest{Prompt: "hi", History: []llm.Message{{Role: "system", Content: "x"}}})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestThankYouNote(t *testing.T) {
	fake := &fakeLLM{texts: []string{"  Dear Ana, thank you!  "}}
	svc := NewAssistantService(fake)

	resp, err := svc.ThankYouNote(context.Background(), ThankYouNoteRequest{GuestName: "Ana", GiftDescription: "a knitted blanket"})
	require.NoError(t, err)
	assert.Equal(t, "Dear Ana, thank you!", resp.ThankYouNote)
	assert.Contains(t, fake.prompts[0], "Tone: informal")
	assert.Contains(t, fake.prompts[0], "Personal Note: N/A")

	_, err = svc.ThankYouNote(context.Background(), ThankYouNoteRequest{GuestName: "Ana", GiftDescription: "x", Tone: "sarcastic"})
	assert.ErrorIs(t, err, ErrInvalidTone)

	_, err = svc.ThankYouNote(context.Background(), ThankYouNoteRequest{GuestName: "Ana"})
	assert.ErrorIs(t, err, ErrGuestRequired)
}

func TestSuggestGamesIsCached(t *testing.T) {
	fake := &fakeLLM{texts: []string{"1. Diaper relay", "1. Baby bingo"}}
	svc := NewAssistantService(fake)
	ctx := context.Background()
	req := GameSuggestionsRequest{GuestPreferences: "Mixed ages", Theme: "Woodland"}

	first, err := svc.SuggestGames(ctx, req)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := svc.SuggestGames(ctx, GameSuggestionsRequest{GuestPreferences: " mixed ages ", Theme: "woodland"})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.GameSuggestions, second.GameSuggestions)
	assert.Len(t, fake.prompts, 1)

	third, err := svc.SuggestGames(ctx, GameSuggestionsRequest{GuestPreferences: "Kids", Theme: "Woodland"})
	require.NoError(t, err)
	assert.Equal(t, "1. Baby bingo", third.GameSuggestions)

	_, err = svc.SuggestGames(ctx, GameSuggestionsRequest{Theme: "Woodland"})
	assert.ErrorIs(t, err, ErrGameInputNeeded)
}

func TestProviderErrorsPropagate(t *testing.T) {
	boom := errors.New("boom")
	svc := NewAssistantService(&fakeLLM{textErr: boom})
	_, err := svc.ThankYouNote(context.Background(), ThankYouNoteRequest{GuestName: "A", GiftDescription: "B"})
	assert.ErrorIs(t, err, boom)
}

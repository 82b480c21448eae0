package assistant

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/patrickmn/go-cache"

	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/llm"
)

var (
	ErrPromptRequired  = errors.New("prompt is required")
	ErrPromptTooLong   = errors.New("prompt is too long")
	ErrInvalidRole     = errors.New("history role must be user or model")
	ErrGuestRequired   = errors.New("guestName and giftDescription are required")
	ErrInvalidTone     = errors.New("tone must be formal, informal or humorous")
	ErrGameInputNeeded = errors.New("guestPreferences and theme are required")
)

const (
	themeSystemPrompt = "You are a friendly and creative baby shower theme planner. When discussing theme ideas, be descriptive and visual."

	imageTriggerLength = 300
	imageSourceLength  = 600
	imageCount         = 3
	gamesCacheTTL      = 24 * time.Hour
)

var themeKeywords = []string{"theme", "decor", "color", "centerpiece", "idea"}

type AssistantService struct {
	llm   llm.Client
	games *cache.Cache
}

func NewAssistantService(client llm.Client) *AssistantService {
	return &AssistantService{
		llm:   client,
		games: cache.New(gamesCacheTTL, time.Hour),
	}
}

// ThemeChat answers the next turn of a theme conversation. Detailed theme
// descriptions later in a conversation also get illustrative images; image
// failures leave the text answer intact.
func (s *AssistantService) ThemeChat(ctx context.Context, req ThemeChatRequest) (*ThemeChatResponse, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, ErrPromptRequired
	}
	if len(prompt) > maxPromptSize {
		return nil, ErrPromptTooLong
	}
	history := req.History
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}
	for _, m := range history {
		if m.Role != llm.RoleUser && m.Role != llm.RoleModel {
			return nil, ErrInvalidRole
		}
	}

	text, err := s.llm.GenerateText(ctx, themeSystemPrompt, history, prompt)
	if err != nil {
		return nil, err
	}
	resp := &ThemeChatResponse{Response: text}

	if !shouldIllustrate(text, len(history)) {
		return resp, nil
	}

	imagePrompt, err := s.llm.GenerateText(ctx, "", nil, visualPromptRequest(text))
	if err != nil {
		slog.Warn("theme image prompt failed", "error", err)
		return resp, nil
	}
	resp.ImagePrompt = strings.TrimSpace(imagePrompt)
	if resp.ImagePrompt == "" {
		return resp, nil
	}

	images, err := s.llm.GenerateImages(ctx, sceneFor(resp.ImagePrompt), imageCount)
	if err != nil {
		slog.Warn("theme image generation failed", "error", err)
		return resp, nil
	}
	for _, img := range images {
		if len(img.Data) == 0 {
			continue
		}
		resp.ImageURLs = append(resp.ImageURLs, dataURL(img))
	}
	return resp, nil
}

// shouldIllustrate reports whether a reply is a substantial theme description
// worth turning into pictures.
func shouldIllustrate(response string, historyLen int) bool {
	if historyLen < 1 || len(response) <= imageTriggerLength {
		return false
	}
	lower := strings.ToLower(response)
	return slices.ContainsFunc(themeKeywords, func(k string) bool {
		return strings.Contains(lower, k)
	})
}

func visualPromptRequest(response string) string {
	if utf8.RuneCountInString(response) > imageSourceLength {
		response = string([]rune(response)[:imageSourceLength])
	}
	return "Based on this baby shower theme conversation, create a single, concise visual description (max 80 words) for an AI image generator. " +
		"Focus only on the visual scene: colors, decorations, atmosphere, lighting, flowers, centerpieces.\n\n" + response
}

func sceneFor(visual string) string {
	return "Beautiful elegant baby shower party scene: " + visual +
		". Soft natural lighting, elegant table settings, pastel decorations, welcoming warm atmosphere. Professional event photography, high quality, detailed."
}

func dataURL(img llm.Image) string {
	mime := img.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

func (s *AssistantService) ThankYouNote(ctx context.Context, req ThankYouNoteRequest) (*ThankYouNoteResponse, error) {
	guest := strings.TrimSpace(req.GuestName)
	gift := strings.TrimSpace(req.GiftDescription)
	if guest == "" || gift == "" {
		return nil, ErrGuestRequired
	}
	tone := req.Tone
	if tone == "" {
		tone = ToneInformal
	}
	if !slices.Contains(Tones, tone) {
		return nil, ErrInvalidTone
	}
	personal := strings.TrimSpace(req.PersonalNote)
	if personal == "" {
		personal = "N/A"
	}

	prompt := fmt.Sprintf(`Write a thank you note for a baby shower gift.

Guest Name: %s
Gift Description: %s
Personal Note: %s
Tone: %s

The note should address the guest by name, mention the gift specifically, express genuine gratitude, include any personal touches above and match the requested tone (%s).`,
		guest, gift, personal, tone, tone)

	note, err := s.llm.GenerateText(ctx, "You are an expert at writing thank you notes.", nil, prompt)
	if err != nil {
		return nil, err
	}
	return &ThankYouNoteResponse{ThankYouNote: strings.TrimSpace(note)}, nil
}

// SuggestGames returns game ideas for the guests and theme. Identical inputs
// are answered from cache for a day.
func (s *AssistantService) SuggestGames(ctx context.Context, req GameSuggestionsRequest) (*GameSuggestionsResponse, error) {
	prefs := strings.TrimSpace(req.GuestPreferences)
	theme := strings.TrimSpace(req.Theme)
	if prefs == "" || theme == "" {
		return nil, ErrGameInputNeeded
	}

	key := strings.ToLower(prefs) + "\x00" + strings.ToLower(theme)
	if v, ok := s.games.Get(key); ok {
		return &GameSuggestionsResponse{GameSuggestions: v.(string), Cached: true}, nil
	}

	prompt := fmt.Sprintf(`Suggest 5-7 baby shower games based on the guest preferences and the chosen theme.

Guest Preferences: %s
Theme: %s

Each game should match the theme, suit the guests, be inclusive and come with brief instructions. Format the answer as a clear list.`,
		prefs, theme)

	text, err := s.llm.GenerateText(ctx, "You are a party planning expert specializing in baby showers.", nil, prompt)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	s.games.SetDefault(key, text)
	return &GameSuggestionsResponse{GameSuggestions: text}, nil
}

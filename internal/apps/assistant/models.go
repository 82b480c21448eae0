package assistant

import "github.com/ahmetcoskunkizilkaya/shower-planner/internal/llm"

const (
	ToneFormal    = "formal"
	ToneInformal  = "informal"
	ToneHumorous  = "humorous"
	maxPromptSize = 4000
	maxHistory    = 30
)

var Tones = []string{ToneFormal, ToneInformal, ToneHumorous}

// --- DTOs ---

type ThemeChatRequest struct {
	Prompt  string        `json:"prompt"`
	History []llm.Message `json:"history"`
}

type ThemeChatResponse struct {
	Response    string   `json:"response"`
	ImagePrompt string   `json:"imagePrompt,omitempty"`
	ImageURLs   []string `json:"imageUrls,omitempty"`
}

type ThankYouNoteRequest struct {
	GuestName       string `json:"guestName"`
	GiftDescription string `json:"giftDescription"`
	PersonalNote    string `json:"personalNote"`
	Tone            string `json:"tone"`
}

type ThankYouNoteResponse struct {
	ThankYouNote string `json:"thankYouNote"`
}

type GameSuggestionsRequest struct {
	GuestPreferences string `json:"guestPreferences"`
	Theme            string `json:"theme"`
}

type GameSuggestionsResponse struct {
	GameSuggestions string `json:"gameSuggestions"`
	Cached          bool   `json:"cached,omitempty"`
}

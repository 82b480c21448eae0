package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/config"
)

type mockModels struct {
	mock.Mock
}

func (m *mockModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	args := m.Called(ctx, model, contents, cfg)
	resp, _ := args.Get(0).(*genai.GenerateContentResponse)
	return resp, args.Error(1)
}

func (m *mockModels) GenerateImages(ctx context.Context, model, prompt string, cfg *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
	args := m.Called(ctx, model, prompt, cfg)
	resp, _ := args.Get(0).(*genai.GenerateImagesResponse)
	return resp, args.Error(1)
}

func testConfig() *config.Config {
	return &config.Config{
		GeminiModel:      "text-model",
		GeminiImageModel: "image-model",
		AITimeout:        time.Second,
		AIRatePerSecond:  0,
		AIBurst:          1,
	}
}

func textResponse(s string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{{Text: s}}},
		}},
	}
}

func TestNewGeminiClient_RequiresKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), testConfig())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestGenerateText_SendsHistoryInOrder(t *testing.T) {
	m := new(mockModels)
	c := newGeminiClient(m, testConfig())

	m.On("GenerateContent", mock.Anything, "text-model", mock.MatchedBy(func(contents []*genai.Content) bool {
		return len(contents) == 3 &&
			contents[0].Role == genai.RoleUser && contents[0].Parts[0].Text == "hi" &&
			contents[1].Role == genai.RoleModel && contents[1].Parts[0].Text == "hello" &&
			contents[2].Parts[0].Text == "ideas?"
	}), mock.Anything).Return(textResponse("  balloons  "), nil).Once()

	out, err := c.GenerateText(context.Background(), "be helpful", []Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleModel, Content: "hello"},
		{Role: RoleUser, Content: "   "},
	}, "ideas?")
	require.NoError(t, err)
	assert.Equal(t, "balloons", out)
	m.AssertExpectations(t)
}

func TestGenerateText_EmptyResponse(t *testing.T) {
	m := new(mockModels)
	c := newGeminiClient(m, testConfig())
	m.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&genai.GenerateContentResponse{}, nil).Once()

	_, err := c.GenerateText(context.Background(), "", nil, "x")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestGenerateText_BreakerOpensAfterFailures(t *testing.T) {
	m := new(mockModels)
	c := newGeminiClient(m, testConfig())
	m.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("quota")).Times(5)

	for i := 0; i < 5; i++ {
		_, err := c.GenerateText(context.Background(), "", nil, "x")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrUnavailable)
	}

	_, err := c.GenerateText(context.Background(), "", nil, "x")
	assert.ErrorIs(t, err, ErrUnavailable)
	m.AssertNumberOfCalls(t, "GenerateContent", 5)
}

func TestGenerateImages(t *testing.T) {
	m := new(mockModels)
	c := newGeminiClient(m, testConfig())

	m.On("GenerateImages", mock.Anything, "image-model", "pastel decor", mock.MatchedBy(func(cfg *genai.GenerateImagesConfig) bool {
		return cfg.NumberOfImages == 3 && cfg.AspectRatio == "16:9" && cfg.OutputMIMEType == "image/jpeg"
	})).Return(&genai.GenerateImagesResponse{
		GeneratedImages: []*genai.GeneratedImage{
			{Image: &genai.Image{ImageBytes: []byte{1, 2}}},
			{Image: nil},
			{Image: &genai.Image{ImageBytes: []byte{3}, MIMEType: "image/png"}},
		},
	}, nil).Once()

	images, err := c.GenerateImages(context.Background(), "pastel decor", 3)
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, "image/jpeg", images[0].MIMEType)
	assert.Equal(t, "image/png", images[1].MIMEType)
}

func TestLimiterHonoursCancelledContext(t *testing.T) {
	cfg := testConfig()
	cfg.AIRatePerSecond = 0.001
	m := new(mockModels)
	c := newGeminiClient(m, cfg)
	m.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(textResponse("ok"), nil).Once()

	_, err := c.GenerateText(context.Background(), "", nil, "first")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = c.GenerateText(ctx, "", nil, "second")
	assert.Error(t, err)
	m.AssertNumberOfCalls(t, "GenerateContent", 1)
}

package provider

import (
	"context"
	"net/http"
	"strings"

	"imagegate/config"
	"imagegate/internal/core"
	"imagegate/internal/telemetry"

	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(NewClient)

// TokenCounts 供應商回報的 token 用量
type TokenCounts struct {
	Prompt     int `json:"prompt"`
	Completion int `json:"completion"`
	Thinking   int `json:"thinking"`
	Total      int `json:"total"`
}

type ModerationResult struct {
	IsAppropriate   bool
	RejectionReason string
	Model           string
	Usage           TokenCounts
}

type ImageResult struct {
	Data   []byte
	Model  string
	Images int
	Usage  TokenCounts
}

type TextResult struct {
	Text  string
	Model string
	Usage TokenCounts
}

type SuggestionResult struct {
	Suggestions []string
	Model       string
	Usage       TokenCounts
}

// SuggestParams Image 為 nil 時產生提示詞建議，否則產生編輯建議
type SuggestParams struct {
	Image       []byte
	Description string
	Keyword     string
	Language    string
}

// Provider 生成式 AI 的能力；錯誤一律為 ExternalRequestError 或 ExternalResponseFormatError
// 供應商已回應但內容不可用時，結果與錯誤同時非 nil：結果只帶 Model 與 Usage。
type Provider interface {
	Moderate(ctx context.Context, text string, guidelines string) (*ModerationResult, error)
	GenerateImage(ctx context.Context, prompt string, backend core.ImageBackend) (*ImageResult, error)
	EditImage(ctx context.Context, image []byte, instruction string) (*ImageResult, error)
	Describe(ctx context.Context, image []byte) (*TextResult, error)
	Suggest(ctx context.Context, params SuggestParams) (*SuggestionResult, error)
}

// Client 依後端分派到 Gemini 或 OpenAI
type Client struct {
	gemini *GeminiClient
	openai *OpenAIClient
}

func NewClient(trace *telemetry.Trace, httpClient *http.Client, conf *config.Configuration) *Client {
	return &Client{
		gemini: NewGeminiClient(trace, httpClient, conf.Provider),
		openai: NewOpenAIClient(trace, httpClient, conf.Provider),
	}
}

func (c *Client) Moderate(ctx context.Context, text string, guidelines string) (*ModerationResult, error) {
	return c.gemini.Moderate(ctx, text, guidelines)
}

func (c *Client) GenerateImage(ctx context.Context, prompt string, backend core.ImageBackend) (*ImageResult, error) {
	if backend == core.ImageBackendAlternate {
		return c.openai.GenerateImage(ctx, prompt)
	}
	return c.gemini.GenerateImage(ctx, prompt)
}

func (c *Client) EditImage(ctx context.Context, image []byte, instruction string) (*ImageResult, error) {
	return c.gemini.EditImage(ctx, image, instruction)
}

func (c *Client) Describe(ctx context.Context, image []byte) (*TextResult, error) {
	return c.gemini.Describe(ctx, image)
}

func (c *Client) Suggest(ctx context.Context, params SuggestParams) (*SuggestionResult, error) {
	return c.gemini.Suggest(ctx, params)
}

// ==== prompts ====

func generateInstruction(prompt string) string {
	return "Generate a high-quality image based on this prompt: " + prompt +
		"\n\nPlease create a visually appealing and detailed image that matches this description.\n        Return the generated image."
}

func editInstruction(instruction string) string {
	return "Edit this image according to the following instruction: " + instruction +
		"\n\nPlease modify the image as requested and return the edited image."
}

const describeInstruction = "Describe this image in 5-7 words maximum. Be very brief and simple."

func moderationInstruction(text string, guidelines string) string {
	return "You are a content moderator for an image generation service. " +
		"Judge whether the following user request is appropriate according to these guidelines:\n\n" +
		guidelines +
		"\n\nUser request:\n\"\"\"\n" + text + "\n\"\"\"\n\n" +
		"Respond with is_appropriate set to true or false. When false, give a short rejection_reason the user can understand."
}

func languageInstruction(language string) string {
	switch strings.ToLower(language) {
	case "fi":
		return " Respond in Finnish."
	case "en":
		return " Respond in English."
	default:
		return ""
	}
}

func suggestInstruction(params SuggestParams) string {
	lang := languageInstruction(params.Language)
	if params.Image == nil {
		if params.Keyword != "" {
			return "Generate 3 creative and descriptive image prompts based on '" + params.Keyword + "'. Each prompt should be around 6-8 words, providing enough detail to create a vivid mental image. Keep them engaging and inspiring. Format: just list them, one per line." + lang
		}
		return "Generate 3 creative and descriptive random image prompts. Each should be around 6-8 words, providing enough detail to create a vivid mental image. Keep them engaging and inspiring. Format: just list them, one per line." + lang
	}
	if params.Keyword != "" {
		return "This image is described as: " + params.Description + ". Generate 3 creative and descriptive edit suggestions based on the keyword '" + params.Keyword + "'. Each suggestion should be around 6-8 words, providing clear direction for the edit. Keep them inspiring and actionable. Format: just list them, one per line." + lang
	}
	return "This image is described as: " + params.Description + ". Generate 3 creative and descriptive edit suggestions. Each should be around 6-8 words, providing clear direction for the edit. Keep them inspiring and actionable. Format: just list them, one per line." + lang
}

// ParseSuggestions 逐行切分，去掉清單符號與編號，最多取 3 筆
func ParseSuggestions(text string) []string {
	suggestions := []string{}
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cleaned := strings.Trim(line, "- ")
		cleaned = strings.Trim(cleaned, "1234567890. ")
		suggestions = append(suggestions, strings.TrimSpace(cleaned))
		if len(suggestions) == 3 {
			break
		}
	}
	return suggestions
}

func normalizeUsage(u TokenCounts) TokenCounts {
	if u.Total == 0 {
		u.Total = u.Prompt + u.Completion + u.Thinking
	}
	return u
}

func trimBody(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 1000 {
		return s[:1000] + "..."
	}
	return s
}

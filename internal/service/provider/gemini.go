package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"imagegate/config"
	"imagegate/internal/core"
	cErr "imagegate/internal/pkg/error"
	"imagegate/internal/telemetry"

	"go.opentelemetry.io/otel/attribute"
)

// ==== Gemini generateContent wire format ====

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	ResponseMimeType   string         `json:"responseMimeType,omitempty"`
	ResponseSchema     map[string]any `json:"responseSchema,omitempty"`
	ResponseModalities []string       `json:"responseModalities,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiUsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	ThoughtsTokenCount   int `json:"thoughtsTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata geminiUsageMetadata `json:"usageMetadata"`
	ModelVersion  string              `json:"modelVersion"`
}

func (r *geminiResponse) usage() TokenCounts {
	return normalizeUsage(TokenCounts{
		Prompt:     r.UsageMetadata.PromptTokenCount,
		Completion: r.UsageMetadata.CandidatesTokenCount,
		Thinking:   r.UsageMetadata.ThoughtsTokenCount,
		Total:      r.UsageMetadata.TotalTokenCount,
	})
}

func (r *geminiResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

func (r *geminiResponse) image() ([]byte, error) {
	for _, c := range r.Candidates {
		for _, p := range c.Content.Parts {
			if p.InlineData != nil && p.InlineData.Data != "" {
				return base64.StdEncoding.DecodeString(p.InlineData.Data)
			}
		}
	}
	return nil, fmt.Errorf("no inline image in response")
}

var moderationSchema = map[string]any{
	"type": "OBJECT",
	"properties": map[string]any{
		"is_appropriate":   map[string]any{"type": "BOOLEAN"},
		"rejection_reason": map[string]any{"type": "STRING"},
	},
	"required": []string{"is_appropriate", "rejection_reason"},
}

type GeminiClient struct {
	HTTPClient *http.Client
	trace      *telemetry.Trace
	apiKey     string
	baseURL    string
	imageModel string
	textModel  string
}

func NewGeminiClient(trace *telemetry.Trace, client *http.Client, conf config.Provider) *GeminiClient {
	return &GeminiClient{
		HTTPClient: client,
		trace:      trace,
		apiKey:     conf.GeminiAPIKey,
		baseURL:    strings.TrimRight(conf.GeminiBaseURL, "/"),
		imageModel: conf.ImageModel,
		textModel:  conf.TextModel,
	}
}

func (s *GeminiClient) Moderate(ctx context.Context, text string, guidelines string) (*ModerationResult, error) {
	req := &geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: moderationInstruction(text, guidelines)}}}},
		GenerationConfig: &geminiGenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   moderationSchema,
		},
	}
	resp, err := s.generateContent(ctx, "gemini.moderate", s.textModel, req)
	if resp == nil {
		return nil, err
	}
	// 已計費的回應即使判讀失敗也帶回 Model/Usage
	result := &ModerationResult{Model: s.textModel, Usage: resp.usage()}
	if err != nil {
		return result, err
	}
	var verdict struct {
		IsAppropriate   *bool  `json:"is_appropriate"`
		RejectionReason string `json:"rejection_reason"`
	}
	if err := json.Unmarshal([]byte(resp.text()), &verdict); err != nil || verdict.IsAppropriate == nil {
		return result, cErr.ExternalResponseFormatError("gemini moderation returned malformed verdict")
	}
	result.IsAppropriate = *verdict.IsAppropriate
	result.RejectionReason = verdict.RejectionReason
	return result, nil
}

func (s *GeminiClient) GenerateImage(ctx context.Context, prompt string) (*ImageResult, error) {
	req := &geminiRequest{
		Contents:         []geminiContent{{Role: "user", Parts: []geminiPart{{Text: generateInstruction(prompt)}}}},
		GenerationConfig: &geminiGenerationConfig{ResponseModalities: []string{"TEXT", "IMAGE"}},
	}
	return s.imageCall(ctx, "gemini.images.generate", req)
}

func (s *GeminiClient) EditImage(ctx context.Context, image []byte, instruction string) (*ImageResult, error) {
	req := &geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{
			{Text: editInstruction(instruction)},
			{InlineData: pngPart(image)},
		}}},
		GenerationConfig: &geminiGenerationConfig{ResponseModalities: []string{"TEXT", "IMAGE"}},
	}
	return s.imageCall(ctx, "gemini.images.edit", req)
}

func (s *GeminiClient) Describe(ctx context.Context, image []byte) (*TextResult, error) {
	req := &geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{
			{InlineData: pngPart(image)},
			{Text: describeInstruction},
		}}},
	}
	resp, err := s.generateContent(ctx, "gemini.describe", s.textModel, req)
	if resp == nil {
		return nil, err
	}
	result := &TextResult{Model: s.textModel, Usage: resp.usage()}
	if err != nil {
		return result, err
	}
	result.Text = strings.TrimSpace(resp.text())
	if result.Text == "" {
		return result, cErr.ExternalResponseFormatError("gemini describe returned empty text")
	}
	return result, nil
}

func (s *GeminiClient) Suggest(ctx context.Context, params SuggestParams) (*SuggestionResult, error) {
	parts := []geminiPart{}
	if params.Image != nil {
		parts = append(parts, geminiPart{InlineData: pngPart(params.Image)})
	}
	parts = append(parts, geminiPart{Text: suggestInstruction(params)})

	resp, err := s.generateContent(ctx, "gemini.suggest", s.textModel, &geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: parts}},
	})
	if resp == nil {
		return nil, err
	}
	result := &SuggestionResult{Model: s.textModel, Usage: resp.usage()}
	if err != nil {
		return result, err
	}
	result.Suggestions = ParseSuggestions(resp.text())
	if len(result.Suggestions) == 0 {
		return result, cErr.ExternalResponseFormatError("gemini suggest returned no suggestions")
	}
	return result, nil
}

func (s *GeminiClient) imageCall(ctx context.Context, spanName string, req *geminiRequest) (*ImageResult, error) {
	resp, err := s.generateContent(ctx, spanName, s.imageModel, req)
	if resp == nil {
		return nil, err
	}
	result := &ImageResult{Model: s.imageModel, Usage: resp.usage()}
	if err != nil {
		return result, err
	}
	data, err := resp.image()
	if err != nil {
		return result, cErr.ExternalResponseFormatError("gemini image response has no image: " + err.Error())
	}
	result.Data, result.Images = data, 1
	return result, nil
}

// generateContent 呼叫 models/{model}:generateContent。
// 失敗分類：
//   - 本地序列化/建請失敗：InternalServer
//   - 對外請求/非 2xx：ExternalRequestError（504 為 GatewayTimeout）
//   - 回應解析失敗：ExternalResponseFormatError
//
// 回應已解析但內容不可用時，同時回傳 response 與錯誤，呼叫端仍可取得 usage。
func (s *GeminiClient) generateContent(ctx context.Context, spanName string, model string, req *geminiRequest) (*geminiResponse, error) {
	url := fmt.Sprintf("%s/%s/models/%s:generateContent", s.baseURL, core.GeminiAPIVersion, model)
	ctx, span, end := s.trace.WithSpan(ctx, spanName)
	defer end(nil)

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", model),
	)

	// 1) 序列化
	payload, err := json.Marshal(req)
	if err != nil {
		end(err)
		return nil, cErr.InternalServer("marshal gemini payload failed")
	}

	// 2) 建請
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		end(err)
		return nil, cErr.InternalServer("create http request failed")
	}
	httpReq.Header.Set("x-goog-api-key", s.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept-Encoding", acceptEncoding)

	// 3) 請求
	resp, err := s.HTTPClient.Do(httpReq)
	if err != nil {
		end(err)
		return nil, cErr.ExternalRequestError("gemini api request failed")
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	// 4) 讀取（依 Content-Encoding 解壓）與狀態碼
	body, readErr := readBody(resp)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		end(fmt.Errorf("gemini non-2xx: %s %s", resp.Status, trimBody(body)))
		return nil, cErr.MapHttpStatusToError(resp.StatusCode, "gemini api error: "+trimBody(body))
	}
	if readErr != nil {
		end(readErr)
		return nil, cErr.ExternalResponseFormatError("read gemini response failed")
	}

	// 5) 解析
	var result geminiResponse
	if err := json.Unmarshal(body, &result); err != nil {
		end(err)
		return nil, cErr.ExternalResponseFormatError("decode gemini response failed")
	}
	if len(result.Candidates) == 0 {
		err := fmt.Errorf("gemini response has no candidates")
		end(err)
		return &result, cErr.ExternalResponseFormatError(err.Error())
	}
	span.SetAttributes(attribute.Int("ai.tokens.total", result.UsageMetadata.TotalTokenCount))
	return &result, nil
}

func pngPart(image []byte) *geminiInlineData {
	return &geminiInlineData{MimeType: "image/png", Data: base64.StdEncoding.EncodeToString(image)}
}

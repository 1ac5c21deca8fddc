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

type openAIImageRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

type openAIImageResponse struct {
	Created int64 `json:"created"`
	Data    []struct {
		B64Json string `json:"b64_json,omitempty"`
	} `json:"data"`
	Usage *struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage,omitempty"`
}

// OpenAIClient 替代生圖後端（images/generations，b64_json）
type OpenAIClient struct {
	HTTPClient *http.Client
	trace      *telemetry.Trace
	apiKey     string
	baseURL    string
	model      string
}

func NewOpenAIClient(trace *telemetry.Trace, client *http.Client, conf config.Provider) *OpenAIClient {
	return &OpenAIClient{
		HTTPClient: client,
		trace:      trace,
		apiKey:     conf.OpenAIAPIKey,
		baseURL:    strings.TrimRight(conf.OpenAIBaseURL, "/"),
		model:      conf.AlternateImageModel,
	}
}

// GenerateImage 呼叫 OpenAI /images/generations（JSON）。
// 失敗分類：
//   - 本地序列化/建請失敗：InternalServer
//   - 對外請求/非 2xx：ExternalRequestError
//   - 回應解析失敗：ExternalResponseFormatError（已解析時仍帶回 Model/Usage）
func (s *OpenAIClient) GenerateImage(ctx context.Context, prompt string) (*ImageResult, error) {
	url := s.baseURL + "/" + core.OpenAIAPIVersion + string(core.OpenAIImageGenerateEndpoint)
	ctx, span, end := s.trace.WithSpan(ctx, "openai.images.generate")
	defer end(nil)

	span.SetAttributes(
		attribute.String("ai.provider", "openai"),
		attribute.String("ai.model", s.model),
		attribute.String("http.url", url),
	)

	// 1) 序列化
	payload, err := json.Marshal(&openAIImageRequest{
		Model:  s.model,
		Prompt: generateInstruction(prompt),
		N:      1,
		Size:   "1024x1024",
	})
	if err != nil {
		end(err)
		return nil, cErr.InternalServer("marshal image payload failed")
	}

	// 2) 建請
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		end(err)
		return nil, cErr.InternalServer("create http request failed")
	}
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept-Encoding", acceptEncoding)

	// 3) 請求
	resp, err := s.HTTPClient.Do(httpReq)
	if err != nil {
		end(err)
		return nil, cErr.ExternalRequestError("openai image api request failed")
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	// 4) 讀取（依 Content-Encoding 解壓）與狀態碼
	body, readErr := readBody(resp)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		end(fmt.Errorf("openai non-2xx: %s (%d) %s", resp.Status, resp.StatusCode, trimBody(body)))
		return nil, cErr.MapHttpStatusToError(resp.StatusCode, "openai image api error: "+trimBody(body))
	}
	if readErr != nil {
		end(readErr)
		return nil, cErr.ExternalResponseFormatError("read openai image response failed")
	}

	// 5) 解析
	var result openAIImageResponse
	if err := json.Unmarshal(body, &result); err != nil {
		end(err)
		return nil, cErr.ExternalResponseFormatError("decode openai image response failed")
	}
	image := &ImageResult{Model: s.model, Usage: result.usage()}
	if len(result.Data) == 0 || result.Data[0].B64Json == "" {
		err := fmt.Errorf("openai image response has no b64_json")
		end(err)
		return image, cErr.ExternalResponseFormatError(err.Error())
	}
	data, err := base64.StdEncoding.DecodeString(result.Data[0].B64Json)
	if err != nil {
		end(err)
		return image, cErr.ExternalResponseFormatError("decode openai b64_json failed")
	}
	image.Data, image.Images = data, len(result.Data)
	return image, nil
}

func (r *openAIImageResponse) usage() TokenCounts {
	if r.Usage == nil {
		return TokenCounts{}
	}
	return normalizeUsage(TokenCounts{
		Prompt:     r.Usage.InputTokens,
		Completion: r.Usage.OutputTokens,
		Total:      r.Usage.TotalTokens,
	})
}

package provider

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"imagegate/config"
	"imagegate/internal/core"
	cErr "imagegate/internal/pkg/error"
	"imagegate/internal/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSuggestions(t *testing.T) {
	text := "1. Sunset over a quiet lake\n\n- Neon city in the rain\n2. Foggy forest path at dawn\n3. One too many"
	assert.Equal(t, []string{
		"Sunset over a quiet lake",
		"Neon city in the rain",
		"Foggy forest path at dawn",
	}, ParseSuggestions(text))

	assert.Empty(t, ParseSuggestions("  \n \n"))
	assert.Equal(t, []string{"Only one"}, ParseSuggestions("Only one"))
}

func TestSuggestInstruction(t *testing.T) {
	prompt := suggestInstruction(SuggestParams{Keyword: "ocean", Language: "FI"})
	assert.Contains(t, prompt, "'ocean'")
	assert.True(t, strings.HasSuffix(prompt, "Respond in Finnish."))

	edit := suggestInstruction(SuggestParams{Image: []byte{1}, Description: "a red fox"})
	assert.Contains(t, edit, "This image is described as: a red fox.")
	assert.Contains(t, edit, "edit suggestions")
	assert.NotContains(t, edit, "Respond in")
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	conf := &config.Configuration{Provider: config.Provider{
		GeminiAPIKey:        "gemini-key",
		GeminiBaseURL:       server.URL,
		OpenAIAPIKey:        "openai-key",
		OpenAIBaseURL:       server.URL,
		ImageModel:          "gemini-2.5-flash-image-preview",
		TextModel:           "gemini-2.5-flash-lite",
		AlternateImageModel: "gpt-image-1",
	}}
	return NewClient(&telemetry.Trace{}, server.Client(), conf)
}

func writeGeminiParts(w http.ResponseWriter, parts ...map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"candidates": []any{map[string]any{
			"content": map[string]any{"role": "model", "parts": parts},
		}},
		"usageMetadata": map[string]any{
			"promptTokenCount":     120,
			"candidatesTokenCount": 30,
			"thoughtsTokenCount":   10,
		},
	})
}

func TestGeminiModerate(t *testing.T) {
	var gotPath, gotKey string
	var body geminiRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotKey = r.URL.Path, r.Header.Get("x-goog-api-key")
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeGeminiParts(w, map[string]any{"text": `{"is_appropriate": false, "rejection_reason": "violent"}`})
	})

	result, err := client.Moderate(context.Background(), "a fight", "No violence.")
	require.NoError(t, err)
	assert.Equal(t, "/v1beta/models/gemini-2.5-flash-lite:generateContent", gotPath)
	assert.Equal(t, "gemini-key", gotKey)
	assert.False(t, result.IsAppropriate)
	assert.Equal(t, "violent", result.RejectionReason)
	assert.Equal(t, "gemini-2.5-flash-lite", result.Model)
	assert.Equal(t, TokenCounts{Prompt: 120, Completion: 30, Thinking: 10, Total: 160}, result.Usage)

	require.NotNil(t, body.GenerationConfig)
	assert.Equal(t, "application/json", body.GenerationConfig.ResponseMimeType)
	assert.Contains(t, body.Contents[0].Parts[0].Text, "No violence.")
	assert.Contains(t, body.Contents[0].Parts[0].Text, "a fight")
}

func TestGeminiModerateMalformedVerdict(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeGeminiParts(w, map[string]any{"text": "sure, looks fine"})
	})

	result, err := client.Moderate(context.Background(), "a cat", "rules")
	assert.True(t, cErr.Is(err, cErr.EXTERNAL_RESPONSE_FORMAT_ERROR))
	require.NotNil(t, result)
	assert.Equal(t, "gemini-2.5-flash-lite", result.Model)
	assert.Equal(t, TokenCounts{Prompt: 120, Completion: 30, Thinking: 10, Total: 160}, result.Usage)
	assert.False(t, result.IsAppropriate)
}

func TestGeminiGenerateImage(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-2.5-flash-image-preview:generateContent", r.URL.Path)
		writeGeminiParts(w,
			map[string]any{"text": "Here is your image"},
			map[string]any{"inlineData": map[string]any{"mimeType": "image/png", "data": base64.StdEncoding.EncodeToString(png)}},
		)
	})

	result, err := client.GenerateImage(context.Background(), "a red fox", core.ImageBackendDefault)
	require.NoError(t, err)
	assert.Equal(t, png, result.Data)
	assert.Equal(t, 1, result.Images)
	assert.Equal(t, "gemini-2.5-flash-image-preview", result.Model)
}

func TestGeminiImageMissing(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeGeminiParts(w, map[string]any{"text": "I cannot draw that"})
	})

	result, err := client.EditImage(context.Background(), []byte{1, 2, 3}, "make it blue")
	assert.True(t, cErr.Is(err, cErr.EXTERNAL_RESPONSE_FORMAT_ERROR))
	require.NotNil(t, result)
	assert.Nil(t, result.Data)
	assert.Equal(t, 0, result.Images)
	assert.Equal(t, "gemini-2.5-flash-image-preview", result.Model)
	assert.Equal(t, TokenCounts{Prompt: 120, Completion: 30, Thinking: 10, Total: 160}, result.Usage)

	generated, err := client.GenerateImage(context.Background(), "a red fox", core.ImageBackendDefault)
	assert.True(t, cErr.Is(err, cErr.EXTERNAL_RESPONSE_FORMAT_ERROR))
	require.NotNil(t, generated)
	assert.Equal(t, 160, generated.Usage.Total)
}

func TestGeminiEmptyResultsKeepUsage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeGeminiParts(w, map[string]any{"text": "  "})
	})

	suggested, err := client.Suggest(context.Background(), SuggestParams{Keyword: "ocean"})
	assert.True(t, cErr.Is(err, cErr.EXTERNAL_RESPONSE_FORMAT_ERROR))
	require.NotNil(t, suggested)
	assert.Empty(t, suggested.Suggestions)
	assert.Equal(t, 160, suggested.Usage.Total)

	described, err := client.Describe(context.Background(), []byte{1})
	assert.True(t, cErr.Is(err, cErr.EXTERNAL_RESPONSE_FORMAT_ERROR))
	require.NotNil(t, described)
	assert.Equal(t, 160, described.Usage.Total)

	noCandidates := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[],"usageMetadata":{"promptTokenCount":50}}`))
	})
	moderated, err := noCandidates.Moderate(context.Background(), "a cat", "rules")
	assert.True(t, cErr.Is(err, cErr.EXTERNAL_RESPONSE_FORMAT_ERROR))
	require.NotNil(t, moderated)
	assert.Equal(t, TokenCounts{Prompt: 50, Total: 50}, moderated.Usage)
}

func TestGeminiNon2xx(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota"}`, http.StatusTooManyRequests)
	})

	_, err := client.Describe(context.Background(), []byte{1})
	assert.True(t, cErr.Is(err, cErr.EXTERNAL_REQUEST_ERROR))

	timeout := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGatewayTimeout)
	})
	_, err = timeout.Describe(context.Background(), []byte{1})
	assert.True(t, cErr.Is(err, cErr.GATEWAY_TIMEOUT))
}

func TestGeminiSuggest(t *testing.T) {
	var body geminiRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeGeminiParts(w, map[string]any{"text": "1. Add falling snow\n2. Warm golden light\n3. Paint it watercolor"})
	})

	result, err := client.Suggest(context.Background(), SuggestParams{Image: []byte{9}, Description: "a fox", Language: "en"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Add falling snow", "Warm golden light", "Paint it watercolor"}, result.Suggestions)
	require.Len(t, body.Contents[0].Parts, 2)
	require.NotNil(t, body.Contents[0].Parts[0].InlineData)
	assert.Equal(t, "image/png", body.Contents[0].Parts[0].InlineData.MimeType)
}

func TestOpenAIGenerateImage(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', 1}
	var body openAIImageRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/images/generations", r.URL.Path)
		assert.Equal(t, "Bearer openai-key", r.Header.Get("Authorization"))
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"created": 1,
			"data":    []any{map[string]any{"b64_json": base64.StdEncoding.EncodeToString(png)}},
			"usage":   map[string]any{"input_tokens": 50, "output_tokens": 4000},
		})
	})

	result, err := client.GenerateImage(context.Background(), "a red fox", core.ImageBackendAlternate)
	require.NoError(t, err)
	assert.Equal(t, png, result.Data)
	assert.Equal(t, "gpt-image-1", result.Model)
	assert.Equal(t, TokenCounts{Prompt: 50, Completion: 4000, Total: 4050}, result.Usage)
	assert.Equal(t, "gpt-image-1", body.Model)
	assert.Equal(t, 1, body.N)
}

func TestOpenAIGenerateImageEmptyData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"created":1,"data":[],"usage":{"input_tokens":50,"output_tokens":0}}`))
	})

	result, err := client.GenerateImage(context.Background(), "a red fox", core.ImageBackendAlternate)
	assert.True(t, cErr.Is(err, cErr.EXTERNAL_RESPONSE_FORMAT_ERROR))
	require.NotNil(t, result)
	assert.Equal(t, "gpt-image-1", result.Model)
	assert.Equal(t, TokenCounts{Prompt: 50, Total: 50}, result.Usage)
}

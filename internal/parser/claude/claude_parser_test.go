package claude_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finextract/internal/config"
	"finextract/internal/parser"
	"finextract/internal/parser/claude"
	"finextract/internal/port"
)

func newTestParser(serverURL string) *claude.Parser {
	return claude.NewParserWithEndpoint(&config.ParserProviderConfig{
		Provider:    "claude",
		APIKey:      "test-claude-key",
		TimeoutSecs: 30,
	}, serverURL)
}

func TestParser_Extract_Success(t *testing.T) {
	llmJSON := `{"f":[{"dt":"12/01/2024","id":"7","r":10,"c":1,"v":0.2,"n":8.8}],"t":[]}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-claude-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var reqBody map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "claude-sonnet-4-20250514", reqBody["model"])
		assert.Equal(t, parser.SystemInstruction, reqBody["system"])

		messages := reqBody["messages"].([]interface{})
		content := messages[0].(map[string]interface{})["content"].([]interface{})
		assert.Len(t, content, 2)
		doc := content[0].(map[string]interface{})
		assert.Equal(t, "document", doc["type"])
		source := doc["source"].(map[string]interface{})
		assert.Equal(t, "application/pdf", source["media_type"])
		assert.Equal(t, parser.BuildExtractionPrompt(), content[1].(map[string]interface{})["text"])

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content":     []map[string]interface{}{{"type": "text", "text": llmJSON}},
			"stop_reason": "end_turn",
		})
	}))
	defer server.Close()

	res, err := newTestParser(server.URL).Extract(context.Background(), port.ExtractInput{PDFBytes: []byte("%PDF")})

	require.NoError(t, err)
	require.Len(t, res.Batches, 1)
	assert.Equal(t, 8.8, res.Batches[0].SoldeNetRemise)
	assert.Empty(t, res.Transactions)
}

func TestParser_Extract_MaxTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content":     []map[string]interface{}{{"type": "text", "text": `{"f":[`}},
			"stop_reason": "max_tokens",
		})
	}))
	defer server.Close()

	_, err := newTestParser(server.URL).Extract(context.Background(), port.ExtractInput{PDFBytes: []byte("%PDF")})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_tokens")
}

func TestParser_Extract_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestParser(server.URL).Extract(context.Background(), port.ExtractInput{PDFBytes: []byte("%PDF")})

	assert.True(t, parser.IsRateLimited(err))
}

func TestParser_Extract_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content":[],"stop_reason":"end_turn"}`))
	}))
	defer server.Close()

	_, err := newTestParser(server.URL).Extract(context.Background(), port.ExtractInput{PDFBytes: []byte("%PDF")})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")
}

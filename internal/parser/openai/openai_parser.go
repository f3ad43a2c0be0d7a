package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"finextract/internal/config"
	"finextract/internal/domain"
	"finextract/internal/parser"
	"finextract/internal/port"
)

const (
	apiURL       = "https://api.openai.com/v1/chat/completions"
	defaultModel = "gpt-4o"
)

func init() {
	parser.RegisterProvider("openai", func(cfg *config.ParserProviderConfig) (port.StatementExtractor, error) {
		return NewParser(cfg), nil
	})
}

// Parser implements port.StatementExtractor using the OpenAI Chat Completions API.
type Parser struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewParser creates an OpenAI-based statement extractor from a provider config.
func NewParser(cfg *config.ParserProviderConfig) *Parser {
	return newParser(cfg, apiURL)
}

// NewParserWithEndpoint creates a parser pointing at a custom API endpoint (for testing).
func NewParserWithEndpoint(cfg *config.ParserProviderConfig, endpoint string) *Parser {
	return newParser(cfg, endpoint)
}

func newParser(cfg *config.ParserProviderConfig, endpoint string) *Parser {
	model := cfg.DefaultModel
	if model == "" {
		model = defaultModel
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 180 * time.Second
	}
	return &Parser{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (p *Parser) Extract(ctx context.Context, input port.ExtractInput) (*domain.ExtractionResult, error) {
	reqBody := map[string]interface{}{
		"model":                 p.model,
		"max_completion_tokens": 32000,
		"messages": []map[string]interface{}{
			{
				"role":    "system",
				"content": parser.SystemInstruction,
			},
			{
				"role":    "user",
				"content": buildContentBlocks(input),
			},
		},
		"response_format": map[string]interface{}{
			"type": "json_object",
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling openai API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parser.StatusError("openai", resp, respBody)
	}

	return parseResponse(respBody)
}

func buildContentBlocks(input port.ExtractInput) []map[string]interface{} {
	fileName := input.FileName
	if fileName == "" {
		fileName = "statement.pdf"
	}
	dataURI := fmt.Sprintf("data:%s;base64,%s", domain.ContentTypePDF, base64.StdEncoding.EncodeToString(input.PDFBytes))
	return []map[string]interface{}{
		{
			"type": "file",
			"file": map[string]interface{}{
				"filename":  fileName,
				"file_data": dataURI,
			},
		},
		{
			"type": "text",
			"text": parser.BuildExtractionPrompt(),
		},
	}
}

// apiResponse models the OpenAI Chat Completions API response.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func parseResponse(body []byte) (*domain.ExtractionResult, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API: no choices")
	}

	if resp.Choices[0].FinishReason == "length" {
		return nil, fmt.Errorf("output truncated (finish_reason: length): response exceeded output token limit")
	}

	return parser.DecodeCompactResult(resp.Choices[0].Message.Content)
}

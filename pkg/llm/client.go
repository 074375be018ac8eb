// Package llm talks to the hosted text-generation API that rewrites raw page
// text as clean Markdown.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/amosWeiskopf/sitescribe/internal/logger"
	"github.com/amosWeiskopf/sitescribe/pkg/utils"
)

const (
	DefaultEndpoint = "https://generativelanguage.googleapis.com/"
	DefaultModel    = "gemini-2.0-flash"
	apiVersion      = "v1beta"
	defaultTimeout  = 120 * time.Second

	// maxLoggedBody bounds the error message copied into logs.
	maxLoggedBody = 2048
)

// ErrEmptyResponse is returned when a successful response carries no text.
var ErrEmptyResponse = errors.New("response contained no candidates")

const promptTemplate = `
You are a helpful assistant. Take the input text and convert it into clean, structured Markdown format.

Input:
"""
%s
"""

Output only the Markdown version, no explanations.
`

// Prompt wraps text in the Markdown conversion instructions.
func Prompt(text string) string {
	return fmt.Sprintf(promptTemplate, text)
}

// Config configures a Client.
type Config struct {
	APIKey string
	// Endpoint is the API base URL; the version path is appended by the SDK.
	Endpoint string
	Model    string
	Timeout  time.Duration
}

// Client calls generateContent through the Gemini SDK.
type Client struct {
	cfg    Config
	genai  *genai.Client
	logger logger.Logger
}

// New creates a Client, filling unset endpoint, model and timeout.
func New(ctx context.Context, cfg Config, log logger.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if log == nil {
		log = logger.NewNop()
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    cfg.Endpoint,
			APIVersion: apiVersion,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Client{
		cfg:    cfg,
		genai:  gc,
		logger: log,
	}, nil
}

// Reformat asks the model to rewrite text as Markdown.
//
// An API error status is logged and reported as an empty result with a nil
// error. Transport failures and malformed successful responses are errors.
func (c *Client) Reformat(ctx context.Context, text string) (string, error) {
	resp, err := c.genai.Models.GenerateContent(ctx, c.cfg.Model, genai.Text(Prompt(text)), nil)
	if err != nil {
		if apiErr, ok := asAPIError(err); ok {
			c.logger.Warn("Error from LLM API",
				logger.String("model", c.cfg.Model),
				logger.Int("status", apiErr.Code),
				logger.String("body", utils.TruncateText(strings.TrimSpace(apiErr.Message), maxLoggedBody)),
			)
			return "", nil
		}
		return "", fmt.Errorf("call %s: %w", c.cfg.Model, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Text(), nil
}

func asAPIError(err error) (genai.APIError, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return *apiErrPtr, true
	}
	return genai.APIError{}, false
}

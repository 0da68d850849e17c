// Package insight asks a Gemini model for a structured summary of an article.
package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/pders01/wikinsight/internal/config"
	"github.com/pders01/wikinsight/internal/debuglog"
	"github.com/pders01/wikinsight/internal/markup"
)

const systemInstruction = "You are a research assistant. Provide high-level insights about the given article in JSON format."

type Summary struct {
	TLDR      string   `json:"tldr"`
	KeyPoints []string `json:"keyPoints"`
	Context   string   `json:"context"`
	FunFact   string   `json:"funFact"`
}

// Generator is the part of *genai.Models the client needs.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Client struct {
	gen      Generator
	model    string
	maxChars int
	timeout  time.Duration
}

// New builds a client against the Gemini API.
func New(ctx context.Context, cfg config.InsightConfig) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNoAPIKey
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return NewWithGenerator(gc.Models, cfg), nil
}

func NewWithGenerator(gen Generator, cfg config.InsightConfig) *Client {
	return &Client{
		gen:      gen,
		model:    cfg.Model,
		maxChars: cfg.MaxContentChars,
		timeout:  cfg.Timeout,
	}
}

// Summarize strips and truncates content before sending it. A response
// missing any of the four fields is an *Error, never a partial Summary.
func (c *Client) Summarize(ctx context.Context, title, content string) (*Summary, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	text := markup.PromptText(content, c.maxChars)
	prompt := fmt.Sprintf("Analyze this Wikipedia article about %q. Content: %s", title, text)

	debuglog.WithFields(map[string]any{
		"title": title,
		"model": c.model,
		"chars": len([]rune(text)),
	}).Debugf("requesting insight")

	resp, err := c.gen.GenerateContent(ctx, c.model, genai.Text(prompt), generateConfig())
	if err != nil {
		return nil, &Error{Title: title, Reason: transportReason(err), Err: err}
	}
	if resp == nil {
		return nil, &Error{Title: title, Reason: reasonEmpty}
	}

	return parseSummary(title, resp.Text())
}

func generateConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		},
		ResponseMIMEType: "application/json",
		ResponseSchema:   summarySchema(),
	}
}

func summarySchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"tldr": {
				Type:        genai.TypeString,
				Description: "A one-sentence summary of the article.",
			},
			"keyPoints": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "3 to 5 key takeaways.",
			},
			"context": {
				Type:        genai.TypeString,
				Description: "Historical or cultural context of the topic.",
			},
			"funFact": {
				Type:        genai.TypeString,
				Description: "One surprising or interesting fact from the content.",
			},
		},
		Required: []string{"tldr", "keyPoints", "context", "funFact"},
	}
}

// wireSummary uses pointers so absent keys can be told apart from empty ones.
type wireSummary struct {
	TLDR      *string  `json:"tldr"`
	KeyPoints []string `json:"keyPoints"`
	Context   *string  `json:"context"`
	FunFact   *string  `json:"funFact"`
}

func parseSummary(title, raw string) (*Summary, error) {
	raw = stripFence(raw)
	if raw == "" {
		return nil, &Error{Title: title, Reason: reasonEmpty}
	}

	var w wireSummary
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return nil, &Error{Title: title, Reason: reasonMalformed, Err: err}
	}

	var missing []string
	if blank(w.TLDR) {
		missing = append(missing, "tldr")
	}
	points := make([]string, 0, len(w.KeyPoints))
	for _, p := range w.KeyPoints {
		if p = strings.TrimSpace(p); p != "" {
			points = append(points, p)
		}
	}
	if len(points) == 0 {
		missing = append(missing, "keyPoints")
	}
	if blank(w.Context) {
		missing = append(missing, "context")
	}
	if blank(w.FunFact) {
		missing = append(missing, "funFact")
	}
	if len(missing) > 0 {
		return nil, &Error{Title: title, Reason: reasonIncomplete + strings.Join(missing, ", ")}
	}

	return &Summary{
		TLDR:      strings.TrimSpace(*w.TLDR),
		KeyPoints: points,
		Context:   strings.TrimSpace(*w.Context),
		FunFact:   strings.TrimSpace(*w.FunFact),
	}, nil
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

// stripFence tolerates models that wrap JSON in a markdown code fence.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

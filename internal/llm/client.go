// Package llm is the LLM-assisted translation collaborator. It grounds a
// chat-completion call on the glosses carried by detected spans, parses
// the structured response, and degrades to a deterministic character
// substitution when the model call fails or returns garbage.
package llm

import (
	"context"
	"crypto/rand"
	"fmt"
	"sort"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/oklog/ulid/v2"
	"github.com/sashabaranov/go-openai"

	"github.com/lexiglot/lexiglot/pkg/lexiglot/internalerr"
	"github.com/lexiglot/lexiglot/pkg/lexiglot/span"
)

// fallbackConfidence is attached to degraded substitution results.
const fallbackConfidence = 0.3

const systemPrompt = "You translate slang-heavy text into plain English. " +
	"Prefer the provided term meanings over your own guesses. " +
	"Respond with strict JSON only: " +
	`{"translation": string, "applied_terms": [string], "confidence": number between 0 and 1}`

// Translator calls a chat-completion model to translate detected slang.
type Translator struct {
	client  *openai.Client
	model   string
	entropy *ulid.MonotonicEntropy
}

// New creates a translator for the given API key and model.
func New(apiKey, model string) *Translator {
	return &Translator{
		client:  openai.NewClient(apiKey),
		model:   model,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Result is one translation outcome. Degraded marks results produced by
// the deterministic fallback instead of the model.
type Result struct {
	ID           string   `json:"id"`
	Text         string   `json:"text"`
	AppliedTerms []string `json:"applied_terms"`
	Confidence   float64  `json:"confidence"`
	Degraded     bool     `json:"degraded"`
}

type modelResponse struct {
	Translation  string   `json:"translation"`
	AppliedTerms []string `json:"applied_terms"`
	Confidence   float64  `json:"confidence"`
}

// Translate asks the model for a grounded translation. Any call or parse
// failure degrades to Fallback rather than surfacing an error: the caller
// always gets usable output.
func (t *Translator) Translate(ctx context.Context, text string, spans []span.Span) (Result, error) {
	resp, err := t.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       t.model,
		Temperature: 0.2,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(text, spans)},
		},
	})
	if err != nil {
		return t.Fallback(text, spans), nil
	}
	if len(resp.Choices) == 0 {
		return t.Fallback(text, spans), nil
	}

	parsed, err := parseResponse(resp.Choices[0].Message.Content)
	if err != nil {
		return t.Fallback(text, spans), nil
	}

	return Result{
		ID:           t.newID(),
		Text:         parsed.Translation,
		AppliedTerms: parsed.AppliedTerms,
		Confidence:   parsed.Confidence,
	}, nil
}

// Fallback substitutes each span's surface with its gloss, processing
// spans in reverse start order so earlier offsets stay valid after each
// replacement. Spans without a usable gloss are left in place.
func (t *Translator) Fallback(text string, spans []span.Span) Result {
	ordered := make([]span.Span, 0, len(spans))
	for _, s := range spans {
		if s.Gloss != "" {
			ordered = append(ordered, s)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start > ordered[j].Start
	})

	runes := []rune(text)
	applied := make([]string, 0, len(ordered))
	for _, s := range ordered {
		if !s.InBounds(len(runes)) {
			continue
		}
		var out []rune
		out = append(out, runes[:s.Start]...)
		out = append(out, []rune(s.Gloss)...)
		out = append(out, runes[s.End:]...)
		runes = out
		applied = append(applied, s.Canonical)
	}

	// Applied terms read left to right.
	for i, j := 0, len(applied)-1; i < j; i, j = i+1, j-1 {
		applied[i], applied[j] = applied[j], applied[i]
	}

	return Result{
		ID:           t.newID(),
		Text:         string(runes),
		AppliedTerms: applied,
		Confidence:   fallbackConfidence,
		Degraded:     true,
	}
}

// buildPrompt assembles the user message: the raw text plus a term->gloss
// mapping from spans that carry a real gloss. Masked and sense-pending
// spans contribute nothing the model could lean on.
func buildPrompt(text string, spans []span.Span) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Text: %s\n", text)

	seen := make(map[string]bool)
	var wrote bool
	for _, s := range spans {
		if s.Gloss == "" || s.Meta.Filtered || seen[s.Canonical] {
			continue
		}
		if !wrote {
			b.WriteString("Detected slang terms:\n")
			wrote = true
		}
		seen[s.Canonical] = true
		fmt.Fprintf(&b, "- %q (as %q): %s\n", s.Canonical, s.Surface, s.Gloss)
	}
	if !wrote {
		b.WriteString("No known slang terms were detected; translate conservatively.\n")
	}
	return b.String()
}

// parseResponse decodes the model's JSON, tolerating markdown code fences.
func parseResponse(content string) (modelResponse, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}

	var parsed modelResponse
	if err := sonic.Unmarshal([]byte(content), &parsed); err != nil {
		return modelResponse{}, fmt.Errorf("%w: %v", internalerr.ErrUnparsableResponse, err)
	}
	if parsed.Translation == "" {
		return modelResponse{}, fmt.Errorf("%w: empty translation", internalerr.ErrUnparsableResponse)
	}
	if parsed.Confidence < 0 || parsed.Confidence > 1 {
		parsed.Confidence = fallbackConfidence
	}
	return parsed, nil
}

func (t *Translator) newID() string {
	return ulid.MustNew(ulid.Now(), t.entropy).String()
}

package llm

import (
	"errors"
	"strings"
	"testing"

	"github.com/lexiglot/lexiglot/pkg/lexiglot/internalerr"
	"github.com/lexiglot/lexiglot/pkg/lexiglot/span"
)

func TestFallbackSubstitution(t *testing.T) {
	tr := New("", "test-model")
	text := "no cap this is bussin"
	spans := []span.Span{
		{Start: 0, End: 6, Surface: "no cap", Canonical: "no cap", Gloss: "no lie", Confidence: 0.85},
		{Start: 15, End: 21, Surface: "bussin", Canonical: "bussin", Gloss: "really good", Confidence: 0.9},
	}

	got := tr.Fallback(text, spans)
	if got.Text != "no lie this is really good" {
		t.Errorf("text = %q", got.Text)
	}
	if !got.Degraded {
		t.Error("fallback result must be marked degraded")
	}
	if got.Confidence != fallbackConfidence {
		t.Errorf("confidence = %v, want %v", got.Confidence, fallbackConfidence)
	}
	want := []string{"no cap", "bussin"}
	if len(got.AppliedTerms) != 2 || got.AppliedTerms[0] != want[0] || got.AppliedTerms[1] != want[1] {
		t.Errorf("applied terms = %v, want %v", got.AppliedTerms, want)
	}
	if got.ID == "" {
		t.Error("result should carry an ID")
	}
}

func TestFallbackSkipsEmptyGloss(t *testing.T) {
	tr := New("", "test-model")
	spans := []span.Span{
		{Start: 0, End: 5, Surface: "sussy", Canonical: "sussy", Gloss: ""},
	}

	got := tr.Fallback("sussy vibes", spans)
	if got.Text != "sussy vibes" {
		t.Errorf("glossless span must not be substituted, got %q", got.Text)
	}
	if len(got.AppliedTerms) != 0 {
		t.Errorf("applied terms = %v, want none", got.AppliedTerms)
	}
}

func TestFallbackUnicodeOffsets(t *testing.T) {
	tr := New("", "test-model")
	text := "café is bussin"
	start := len([]rune("café is "))
	spans := []span.Span{
		{Start: start, End: start + 6, Surface: "bussin", Canonical: "bussin", Gloss: "really good"},
	}

	got := tr.Fallback(text, spans)
	if got.Text != "café is really good" {
		t.Errorf("text = %q", got.Text)
	}
}

func TestParseResponse(t *testing.T) {
	raw := `{"translation": "this food is really good", "applied_terms": ["bussin"], "confidence": 0.9}`

	got, err := parseResponse(raw)
	if err != nil {
		t.Fatalf("parseResponse: %v", err)
	}
	if got.Translation != "this food is really good" || got.Confidence != 0.9 {
		t.Errorf("parsed = %+v", got)
	}
	if len(got.AppliedTerms) != 1 || got.AppliedTerms[0] != "bussin" {
		t.Errorf("applied terms = %v", got.AppliedTerms)
	}
}

func TestParseResponseFenced(t *testing.T) {
	raw := "```json\n{\"translation\": \"plain text\", \"applied_terms\": [], \"confidence\": 0.7}\n```"

	got, err := parseResponse(raw)
	if err != nil {
		t.Fatalf("parseResponse: %v", err)
	}
	if got.Translation != "plain text" {
		t.Errorf("translation = %q", got.Translation)
	}
}

func TestParseResponseGarbage(t *testing.T) {
	for _, raw := range []string{"not json at all", `{"applied_terms": []}`, ""} {
		if _, err := parseResponse(raw); !errors.Is(err, internalerr.ErrUnparsableResponse) {
			t.Errorf("parseResponse(%q) err = %v, want ErrUnparsableResponse", raw, err)
		}
	}
}

func TestParseResponseClampsConfidence(t *testing.T) {
	got, err := parseResponse(`{"translation": "x", "confidence": 3.5}`)
	if err != nil {
		t.Fatal(err)
	}
	if got.Confidence != fallbackConfidence {
		t.Errorf("out-of-range confidence = %v, want %v", got.Confidence, fallbackConfidence)
	}
}

func TestBuildPrompt(t *testing.T) {
	spans := []span.Span{
		{Surface: "bussin", Canonical: "bussin", Gloss: "really good"},
		{Surface: "su55y", Canonical: "sussy", Gloss: "[filtered by age]", Meta: span.Meta{Filtered: true}},
		{Surface: "bussing", Canonical: "bussin", Gloss: "really good"},
	}

	prompt := buildPrompt("this is bussin", spans)
	if !strings.Contains(prompt, "Text: this is bussin") {
		t.Errorf("prompt missing text: %q", prompt)
	}
	if !strings.Contains(prompt, "really good") {
		t.Errorf("prompt missing gloss: %q", prompt)
	}
	if strings.Contains(prompt, "sussy") {
		t.Errorf("filtered span leaked into prompt: %q", prompt)
	}
	if strings.Count(prompt, `"bussin"`) != 1 {
		t.Errorf("duplicate canonical should appear once: %q", prompt)
	}
}

func TestBuildPromptNoTerms(t *testing.T) {
	prompt := buildPrompt("hello there", nil)
	if !strings.Contains(prompt, "No known slang terms") {
		t.Errorf("prompt = %q", prompt)
	}
}

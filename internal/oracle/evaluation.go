package oracle

import (
	"encoding/json"
	"strconv"
	"strings"
)

// CompletionSentinel is the next question the model returns when it
// judges the interview finished.
const CompletionSentinel = "INTERVIEW_COMPLETE"

// how an evaluation was obtained from the raw model text
const (
	ParseOK         = "parsed"
	ParseNoObject   = "fallback_generic"
	ParseBadContent = "fallback_raw"
)

const rawFeedbackLimit = 200

// Evaluation is the decoded evaluate-and-next result. Raw holds the object
// exactly as the model produced it; the accessors read it leniently.
type Evaluation struct {
	Raw    map[string]any
	Result string
}

// ParseEvaluation extracts the evaluation object from model text. The text
// between the first '{' and the last '}' is decoded as is. Text without such
// a span yields a generic result; a span that does not decode yields a
// result whose feedback is the head of the raw text.
func ParseEvaluation(text string) *Evaluation {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end < start {
		return genericFallback()
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return rawTextFallback(text)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return &Evaluation{Raw: raw, Result: ParseOK}
}

func genericFallback() *Evaluation {
	return &Evaluation{
		Result: ParseNoObject,
		Raw: map[string]any{
			"score":        float64(70),
			"feedback":     "Good attempt. Continue practicing.",
			"modelAnswer":  "A comprehensive answer would cover...",
			"strengths":    []any{"Clear communication"},
			"improvements": []any{"Add more specific examples"},
			"nextQuestion": "Can you elaborate on your experience with...",
		},
	}
}

func rawTextFallback(text string) *Evaluation {
	feedback := text
	if runes := []rune(text); len(runes) > rawFeedbackLimit {
		feedback = string(runes[:rawFeedbackLimit])
	}
	return &Evaluation{
		Result: ParseBadContent,
		Raw: map[string]any{
			"score":        float64(70),
			"feedback":     feedback,
			"modelAnswer":  "See feedback for improvement areas.",
			"strengths":    []any{"Effort shown"},
			"improvements": []any{"More detail needed"},
			"nextQuestion": "Let's move to the next topic...",
		},
	}
}

// Score returns the numeric score, accepting numbers and numeric strings.
func (e *Evaluation) Score() *float64 {
	switch v := e.Raw["score"].(type) {
	case float64:
		return &v
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return &f
		}
	}
	return nil
}

func (e *Evaluation) Feedback() string     { return e.str("feedback") }
func (e *Evaluation) ModelAnswer() string  { return e.str("modelAnswer") }
func (e *Evaluation) NextQuestion() string { return e.str("nextQuestion") }
func (e *Evaluation) Strengths() []string  { return e.list("strengths") }
func (e *Evaluation) Improvements() []string {
	return e.list("improvements")
}

// Complete reports whether the model asked to end the interview.
func (e *Evaluation) Complete() bool {
	return e.NextQuestion() == CompletionSentinel
}

func (e *Evaluation) str(key string) string {
	s, _ := e.Raw[key].(string)
	return s
}

func (e *Evaluation) list(key string) []string {
	items, ok := e.Raw[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

package pipeline

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultSuggestModel is the Gemini model used for account suggestions.
const DefaultSuggestModel = "gemini-2.5-flash"

// GeminiSuggester asks Gemini for a journal account when the keyword table
// could not settle a description. Used only for entries already flagged
// NeedsReview; the output is stored as an advisory suggestion.
type GeminiSuggester struct {
	model    string
	accounts []string
}

// NewGeminiSuggester creates a suggester. accounts is the full chart of
// journal accounts the model may pick from (typically the rule table's
// account names plus the fixed fallbacks).
func NewGeminiSuggester(model string, accounts []string) *GeminiSuggester {
	if model == "" {
		model = DefaultSuggestModel
	}
	return &GeminiSuggester{model: model, accounts: accounts}
}

// SuggestAccount returns one account name for the description. candidates,
// when non-empty, narrows the choice to the ambiguous rule matches.
func (s *GeminiSuggester) SuggestAccount(ctx context.Context, description string, candidates []string) (string, error) {
	choices := candidates
	if len(choices) == 0 {
		choices = s.accounts
	}
	if len(choices) == 0 {
		return "", fmt.Errorf("SuggestAccount: no accounts to choose from")
	}

	prompt := "You map Indonesian bank notification descriptions to bookkeeping accounts.\n" +
		"Pick EXACTLY ONE account name from this list and output it verbatim, nothing else:\n- " +
		strings.Join(choices, "\n- ") +
		"\n\nDescription:\n" + description + "\n"

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return "", fmt.Errorf("SuggestAccount: create genai client: %w", err)
	}

	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: prompt}}},
	}
	resp, err := client.Models.GenerateContent(ctx, s.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("SuggestAccount: generate content: %w", err)
	}

	answer := strings.TrimSpace(resp.Text())
	if answer == "" {
		return "", fmt.Errorf("SuggestAccount: empty response from model")
	}

	// Only accept an exact account name; the model occasionally pads its
	// answer despite the instructions.
	for _, a := range choices {
		if strings.EqualFold(answer, a) || strings.Contains(answer, a) {
			return a, nil
		}
	}
	return "", fmt.Errorf("SuggestAccount: model returned unknown account %q", answer)
}

var _ Suggester = (*GeminiSuggester)(nil)

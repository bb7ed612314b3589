// Package suggest generates new-entry ideas for a user's dashboard sections
// by prompting a chat-completion model with the entries they already have.
package suggest

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/lifedash/internal/common"
)

// Kind is the entry type suggestions are generated for.
type Kind string

const (
	KindTodo  Kind = "todo"
	KindPlan  Kind = "plan"
	KindStory Kind = "story"
)

// Valid reports whether the kind is one the flow accepts.
func (k Kind) Valid() bool {
	switch k {
	case KindTodo, KindPlan, KindStory:
		return true
	}
	return false
}

// Completer produces a free-form completion for a prompt. The production
// implementation talks to an OpenAI-compatible endpoint; tests substitute a
// fake.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Service struct {
	completer Completer
}

func NewService(completer Completer) *Service {
	return &Service{completer: completer}
}

// Suggest returns three new-entry candidates of the given kind. An empty
// corpus is turned into a seed request so first-time users get starter ideas
// instead of an error.
func (s *Service) Suggest(ctx context.Context, existingEntries string, kind Kind) ([]string, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: type must be one of todo, plan, story", common.ErrorValidation)
	}
	if strings.TrimSpace(existingEntries) == "" {
		existingEntries = fmt.Sprintf("No existing %ss yet. Suggest some initial %ss.", kind, kind)
	}

	completion, err := s.completer.Complete(ctx, buildPrompt(existingEntries, kind))
	if err != nil {
		return nil, fmt.Errorf("completion failed: %w", err)
	}

	suggestions := parseSuggestions(completion)
	if len(suggestions) == 0 {
		return nil, fmt.Errorf("%w: no suggestions in completion", common.ErrorInternal)
	}
	return suggestions, nil
}

func buildPrompt(existingEntries string, kind Kind) string {
	var b strings.Builder
	b.WriteString("You are an AI assistant helping a user expand their life management system.\n\n")
	fmt.Fprintf(&b, "The user has provided their existing entries of type %q.\n", kind)
	b.WriteString("Based on these entries, suggest 3 new entries of the same type that the user might find useful or interesting.\n")
	b.WriteString("Be creative and diverse in your suggestions.\n")
	b.WriteString("Reply with one suggestion per line and no other text.\n\n")
	b.WriteString("Existing Entries:\n")
	b.WriteString(existingEntries)
	b.WriteString("\n\nSuggestions:\n")
	return b.String()
}

// parseSuggestions splits a completion into suggestion lines, stripping the
// list markers and numbering models tend to add.
func parseSuggestions(completion string) []string {
	var suggestions []string
	for _, line := range strings.Split(completion, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*• \t")
		for i := 1; i <= 9; i++ {
			line = strings.TrimPrefix(line, fmt.Sprintf("%d.", i))
			line = strings.TrimPrefix(line, fmt.Sprintf("%d)", i))
		}
		line = strings.TrimSpace(line)
		if line != "" {
			suggestions = append(suggestions, line)
		}
	}
	return suggestions
}

package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/lifedash/internal/client/corpus"
)

// Suggest asks the backend for new-entry ideas seeded from what the user
// already has. The kind selects both the corpus source and the flavor of the
// suggestions: todos and plans come from the server, story ideas from the
// local slot.
func (a *App) Suggest(ctx context.Context) error {
	if !a.guard("/suggest") {
		return nil
	}
	kind, err := getSimpleText(a.reader, "Suggest what? (todo/plan/story)", os.Stdout)
	if err != nil {
		return err
	}

	var records []corpus.Record
	switch kind {
	case "todo":
		docs, err := a.api.ListDocuments(ctx, "todos", a.gate.OwnerID())
		if err != nil {
			fmt.Println("Failed to load todos:", err.Error())
			return err
		}
		for _, d := range docs {
			records = append(records, corpus.Todo{Task: docString(d, "task"), Completed: docBool(d, "completed")})
		}
	case "plan":
		docs, err := a.api.ListDocuments(ctx, "plans", a.gate.OwnerID())
		if err != nil {
			fmt.Println("Failed to load plans:", err.Error())
			return err
		}
		for _, d := range docs {
			records = append(records, corpus.Plan{
				Title:       docString(d, "title"),
				Description: docString(d, "description"),
				Status:      docString(d, "status"),
			})
		}
	case "story":
		for _, s := range a.stories.Get() {
			records = append(records, corpus.Story{Title: s.Title, Genre: s.Genre})
		}
	default:
		fmt.Println("Expected one of: todo, plan, story")
		return nil
	}

	suggestions, err := a.api.Suggest(ctx, corpus.Build(records), kind)
	if err != nil {
		fmt.Println("Suggestion request failed:", err.Error())
		return err
	}
	if len(suggestions) == 0 {
		fmt.Println("No suggestions this time")
		return nil
	}
	fmt.Println("How about:")
	for _, s := range suggestions {
		fmt.Println("  - " + s)
	}
	return nil
}

package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/lifedash/internal/client/api"
)

func docString(d api.Document, field string) string {
	if v, ok := d.Fields[field].(string); ok {
		return v
	}
	return ""
}

func docBool(d api.Document, field string) bool {
	v, _ := d.Fields[field].(bool)
	return v
}

// Todos lists the signed-in owner's todos, most recent first.
func (a *App) Todos(ctx context.Context) error {
	if !a.guard("/todos") {
		return nil
	}
	docs, err := a.api.ListDocuments(ctx, "todos", a.gate.OwnerID())
	if err != nil {
		fmt.Println("Failed to load todos:", err.Error())
		return err
	}
	if len(docs) == 0 {
		fmt.Println("No todos yet")
		return nil
	}
	for _, d := range docs {
		mark := " "
		if docBool(d, "completed") {
			mark = "x"
		}
		fmt.Printf("[%s] %s  (id %s)\n", mark, docString(d, "task"), d.ID)
	}
	return nil
}

// AddTodo prompts for a task and stores it for the signed-in owner.
func (a *App) AddTodo(ctx context.Context) error {
	if !a.guard("/todos") {
		return nil
	}
	task, err := getSimpleText(a.reader, "Enter task", os.Stdout)
	if err != nil {
		return err
	}
	if task == "" {
		fmt.Println("Task cannot be empty")
		return nil
	}
	doc, err := a.api.CreateDocument(ctx, "todos", a.gate.OwnerID(),
		map[string]any{"task": task, "completed": false})
	if err != nil {
		fmt.Println("Failed to add todo:", err.Error())
		return err
	}
	fmt.Printf("Added (id %s)\n", doc.ID)
	return nil
}

// ToggleTodo flips a todo's completed flag by id.
func (a *App) ToggleTodo(ctx context.Context) error {
	if !a.guard("/todos") {
		return nil
	}
	id, err := getSimpleText(a.reader, "Enter todo id", os.Stdout)
	if err != nil {
		return err
	}
	owner := a.gate.OwnerID()
	docs, err := a.api.ListDocuments(ctx, "todos", owner)
	if err != nil {
		fmt.Println("Failed to load todos:", err.Error())
		return err
	}
	for _, d := range docs {
		if d.ID != id {
			continue
		}
		fields := d.Fields
		fields["completed"] = !docBool(d, "completed")
		if _, err := a.api.UpdateDocument(ctx, "todos", id, owner, fields); err != nil {
			fmt.Println("Failed to update todo:", err.Error())
			return err
		}
		fmt.Println("Updated")
		return nil
	}
	fmt.Println("No todo with that id")
	return nil
}

// DeleteTodo removes a todo by id.
func (a *App) DeleteTodo(ctx context.Context) error {
	if !a.guard("/todos") {
		return nil
	}
	id, err := getSimpleText(a.reader, "Enter todo id", os.Stdout)
	if err != nil {
		return err
	}
	if err := a.api.DeleteDocument(ctx, "todos", id, a.gate.OwnerID()); err != nil {
		fmt.Println("Failed to delete todo:", err.Error())
		return err
	}
	fmt.Println("Deleted")
	return nil
}

// Plans lists the signed-in owner's plans.
func (a *App) Plans(ctx context.Context) error {
	if !a.guard("/plans") {
		return nil
	}
	docs, err := a.api.ListDocuments(ctx, "plans", a.gate.OwnerID())
	if err != nil {
		fmt.Println("Failed to load plans:", err.Error())
		return err
	}
	if len(docs) == 0 {
		fmt.Println("No plans yet")
		return nil
	}
	for _, d := range docs {
		fmt.Printf("%s [%s]  (id %s)\n", docString(d, "title"), docString(d, "status"), d.ID)
		if desc := docString(d, "description"); desc != "" {
			fmt.Println("    " + desc)
		}
	}
	return nil
}

// AddPlan prompts for a title and description and stores a new plan.
func (a *App) AddPlan(ctx context.Context) error {
	if !a.guard("/plans") {
		return nil
	}
	title, err := getSimpleText(a.reader, "Enter plan title", os.Stdout)
	if err != nil {
		return err
	}
	if title == "" {
		fmt.Println("Title cannot be empty")
		return nil
	}
	description, err := GetMultiline(a.reader, "Enter description", os.Stdout)
	if err != nil {
		return err
	}
	doc, err := a.api.CreateDocument(ctx, "plans", a.gate.OwnerID(),
		map[string]any{"title": title, "description": description, "status": "Not Started"})
	if err != nil {
		fmt.Println("Failed to add plan:", err.Error())
		return err
	}
	fmt.Printf("Added (id %s)\n", doc.ID)
	return nil
}

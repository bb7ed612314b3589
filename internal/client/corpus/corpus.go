// Package corpus renders a user's existing entries into the plain-text
// corpus the suggestion service consumes. Each resource kind formats its own
// line; the set of kinds is closed.
package corpus

import "strings"

// Record is one formattable entry. The interface is sealed: the only
// implementations are Todo, Plan and Story, mirroring the entry types the
// suggestion flow accepts.
type Record interface {
	corpusLine() string
}

// Todo is a task entry.
type Todo struct {
	Task      string
	Completed bool
}

func (t Todo) corpusLine() string {
	status := "pending"
	if t.Completed {
		status = "done"
	}
	return "- " + t.Task + " (" + status + ")"
}

// Plan is a goal entry with a lifecycle status.
type Plan struct {
	Title       string
	Description string
	Status      string
}

func (p Plan) corpusLine() string {
	var b strings.Builder
	b.WriteString("- ")
	b.WriteString(p.Title)
	if p.Status != "" {
		b.WriteString(" [")
		b.WriteString(p.Status)
		b.WriteString("]")
	}
	if p.Description != "" {
		b.WriteString(": ")
		b.WriteString(p.Description)
	}
	return b.String()
}

// Story is a writing-idea entry.
type Story struct {
	Title string
	Genre string
}

func (s Story) corpusLine() string {
	if s.Genre != "" {
		return "- " + s.Title + " (" + s.Genre + ")"
	}
	return "- " + s.Title
}

// Build joins records into the newline-separated corpus string. An empty
// set yields an empty string.
func Build(records []Record) string {
	lines := make([]string, 0, len(records))
	for _, r := range records {
		lines = append(lines, r.corpusLine())
	}
	return strings.Join(lines, "\n")
}

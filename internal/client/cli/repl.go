package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Todos(ctx context.Context) error
	AddTodo(ctx context.Context) error
	ToggleTodo(ctx context.Context) error
	DeleteTodo(ctx context.Context) error
	Plans(ctx context.Context) error
	AddPlan(ctx context.Context) error
	Links(ctx context.Context) error
	AddLink(ctx context.Context) error
	DeleteLink(ctx context.Context) error
	Stories(ctx context.Context) error
	AddStory(ctx context.Context) error
	Suggest(ctx context.Context) error
	Upload(ctx context.Context) error
	ShowPicture(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the lifedash CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help           — show available commands
//	  - register       — create an account (signs you in)
//	  - login          — authenticate
//	  - exit | quit    — leave the program
//
//	Logged in:
//	  - help           — show available commands
//	  - todos | addtodo | toggletodo | deltodo
//	  - plans | addplan
//	  - links | addlink | dellink
//	  - stories | addstory
//	  - suggest        — AI suggestions from existing entries
//	  - upload | pic   — gallery presigned URLs
//	  - logout
//	  - exit | quit    — leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("lifedash %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: todos, addtodo, toggletodo, deltodo, plans, addplan, links, addlink, dellink, stories, addstory, suggest, upload, pic, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "t", "todos":
			_ = a.Todos(ctx)

		case "addtodo":
			_ = a.AddTodo(ctx)

		case "toggletodo":
			_ = a.ToggleTodo(ctx)

		case "deltodo":
			_ = a.DeleteTodo(ctx)

		case "plans":
			_ = a.Plans(ctx)

		case "addplan":
			_ = a.AddPlan(ctx)

		case "links":
			_ = a.Links(ctx)

		case "addlink":
			_ = a.AddLink(ctx)

		case "dellink":
			_ = a.DeleteLink(ctx)

		case "stories":
			_ = a.Stories(ctx)

		case "addstory":
			_ = a.AddStory(ctx)

		case "suggest":
			_ = a.Suggest(ctx)

		case "upload":
			_ = a.Upload(ctx)

		case "pic":
			_ = a.ShowPicture(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL dispatches to.
// The real App type satisfies this interface; tests can provide a stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context, args []string) error
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context, args []string) error

	List(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	AddNote(ctx context.Context, args []string) error
	EditNote(ctx context.Context, args []string) error
	DeleteNote(ctx context.Context, args []string) error
	ToggleFavorite(ctx context.Context, args []string) error
	ToggleArchive(ctx context.Context, args []string) error

	ListTags(ctx context.Context, args []string) error
	Tag(ctx context.Context, args []string) error
	Attach(ctx context.Context, args []string) error
	Detach(ctx context.Context, args []string) error

	Sync(ctx context.Context, args []string) error
	Status(ctx context.Context, args []string) error
	Queue(ctx context.Context, args []string) error
	Retry(ctx context.Context, args []string) error
	Export(ctx context.Context, args []string) error
	Decrypt(ctx context.Context, args []string) error
}

const (
	helpLoggedOut = "Available commands: register, login, status, decrypt, exit"
	helpLoggedIn  = "Available commands: notes [fav|archived|all], show, add, edit, delete, fav, archive,\n" +
		"  tags [tag], tag add|rename|delete, attach, detach,\n" +
		"  sync, status, queue, retry, export [path] [--encrypt], decrypt <in> <out>,\n" +
		"  logout [--discard], exit"
)

// runREPL reads a line at a time, takes the first token as the command and
// dispatches it to a. Errors are printed and the loop continues. The loop
// exits on EOF or on "exit"/"quit".
//
// Commands that prompt for more input read from the same reader, so the
// loop must not buffer ahead of them.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("nk %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}
		if cmd == "help" {
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}
			continue
		}

		var handler func(context.Context, []string) error
		switch cmd {
		case "register":
			handler = a.Register
		case "login":
			handler = a.Login
		case "logout":
			handler = a.Logout
		case "status":
			handler = a.Status
		case "l", "notes", "list":
			handler = a.List
		case "show":
			handler = a.Show
		case "add":
			handler = a.AddNote
		case "edit":
			handler = a.EditNote
		case "delete", "rm":
			handler = a.DeleteNote
		case "fav":
			handler = a.ToggleFavorite
		case "archive":
			handler = a.ToggleArchive
		case "tags":
			handler = a.ListTags
		case "tag":
			handler = a.Tag
		case "attach":
			handler = a.Attach
		case "detach":
			handler = a.Detach
		case "sync":
			handler = a.Sync
		case "queue":
			handler = a.Queue
		case "retry":
			handler = a.Retry
		case "export":
			handler = a.Export
		case "decrypt":
			handler = a.Decrypt
		default:
			printlnFn("Unknown command:", cmd)
			continue
		}

		if needsLogin(cmd) && !a.isLoggedIn() {
			printlnFn("Please log in first")
			continue
		}
		if err := handler(ctx, args); err != nil && !errors.Is(err, errUsage) {
			printlnFn("Error:", err)
		}
	}
}

func needsLogin(cmd string) bool {
	switch cmd {
	case "register", "login", "status", "decrypt":
		return false
	default:
		return true
	}
}

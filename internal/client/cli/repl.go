package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Token(ctx context.Context, args []string) error
	Sync(ctx context.Context, args []string) error
	Deployments(ctx context.Context, args []string) error
	Select(ctx context.Context, args []string) error
	SwitchMode(ctx context.Context, args []string) error
	Advance(ctx context.Context, args []string) error
	Rollback(ctx context.Context, args []string) error
	Move(ctx context.Context, args []string) error
	TapeEvent(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Tapes(ctx context.Context, args []string) error
	TapeEdit(ctx context.Context, args []string) error
	Timeline(ctx context.Context, args []string) error
	Upload(ctx context.Context, args []string) error
	Download(ctx context.Context, args []string) error
	Status(ctx context.Context, args []string) error
}

const helpText = `Available commands:
  sync [deployment-id]     refresh the session
  deployments | ls         list deployments
  select <id | #>          activate a deployment
  mode <diving | rov>      switch mode
  advance | next           log the next movement phase
  rollback | back          undo the last movement
  move <code> [remark]     log a specific movement code
  tape <verb> [remark]     start, pause, resume, stop or mark the tape
  edit <event-id> k=v...   change timecode, verb or time of a tape event
  delete <event-id>        delete a movement or tape event
  tapes                    list tapes
  tape-edit <tape-id> k=v  change number, chapter, status or remark
  timeline | log           show the merged timeline
  upload <tape-id> <file>  upload tape footage
  download <tape-id> [dir] download tape footage
  status                   show connection and session summary
  token                    enter a new access token
  exit | quit              leave the program`

// runREPL starts the read–eval–print loop of the operator console.
//
// It reads a line from the scanner, parses the first token as the command,
// and dispatches the remaining tokens to the matching method on a. The loop
// exits on scanner EOF or when the operator types "exit" or "quit".
//
// Errors returned by command handlers are ignored here; handlers print
// their own messages. This keeps the loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("fieldlog %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		switch cmd {
		case "help", "?":
			printlnFn(helpText)
		case "token":
			_ = a.Token(ctx, args)
		case "sync":
			_ = a.Sync(ctx, args)
		case "deployments", "ls":
			_ = a.Deployments(ctx, args)
		case "select":
			_ = a.Select(ctx, args)
		case "mode":
			_ = a.SwitchMode(ctx, args)
		case "advance", "next":
			_ = a.Advance(ctx, args)
		case "rollback", "back":
			_ = a.Rollback(ctx, args)
		case "move":
			_ = a.Move(ctx, args)
		case "tape":
			_ = a.TapeEvent(ctx, args)
		case "edit":
			_ = a.Edit(ctx, args)
		case "delete", "rm":
			_ = a.Delete(ctx, args)
		case "tapes":
			_ = a.Tapes(ctx, args)
		case "tape-edit":
			_ = a.TapeEdit(ctx, args)
		case "timeline", "log":
			_ = a.Timeline(ctx, args)
		case "upload":
			_ = a.Upload(ctx, args)
		case "download":
			_ = a.Download(ctx, args)
		case "status":
			_ = a.Status(ctx, args)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	isConnected() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Connect(ctx context.Context, args []string) error
	Disconnect(ctx context.Context) error
	Say(ctx context.Context, args []string) error
	Reply(ctx context.Context, args []string) error
	Upload(ctx context.Context, args []string) error
	React(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error
	Sync(ctx context.Context, args []string) error
	History(ctx context.Context) error
	Fetch(ctx context.Context, args []string) error
	Bookmarks(ctx context.Context, args []string) error
	PublicIP(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the Matthias CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches the rest as arguments to methods on 'a'. The loop exits on EOF
// or when the user types "exit" or "quit".
//
// Prompt & Commands
//
//	Not logged in:
//	  - help                      : show available commands
//	  - register                  : create a local account
//	  - login                     : open a local account
//	  - ip                        : show this host's public addresses
//	  - exit | quit               : leave the program
//
//	Logged in:
//	  - connect [addr|n]          : join a server or bookmark n
//	  - disconnect                : leave the server
//	  - say [text]                : post a message
//	  - reply <i> <text>          : post an answer to message i
//	  - upload <path>             : send a file
//	  - react <i> <char>          : react to message i
//	  - edit <i> [text]           : change or clear one of your messages
//	  - sync [full]               : pull new messages
//	  - history                   : print all known messages
//	  - fetch <i> [dir]           : download the attachment of message i
//	  - bookmarks [add|rm ...]    : manage saved servers
//	  - logout                    : close the account
//
// Errors returned by command handlers are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("mt %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			switch {
			case a.isConnected():
				printlnFn("Available commands: say, reply, upload, react, edit, sync, history, fetch, bookmarks, disconnect, logout, ip, exit")
			case a.isLoggedIn():
				printlnFn("Available commands: connect, bookmarks, logout, ip, exit")
			default:
				printlnFn("Available commands: register, login, ip, exit")
			}

		case "register":
			cmdErr = a.Register(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "connect":
			cmdErr = a.Connect(ctx, args)
		case "disconnect":
			cmdErr = a.Disconnect(ctx)
		case "say":
			cmdErr = a.Say(ctx, args)
		case "reply":
			cmdErr = a.Reply(ctx, args)
		case "upload":
			cmdErr = a.Upload(ctx, args)
		case "react":
			cmdErr = a.React(ctx, args)
		case "edit":
			cmdErr = a.Edit(ctx, args)
		case "sync":
			cmdErr = a.Sync(ctx, args)
		case "history":
			cmdErr = a.History(ctx)
		case "fetch":
			cmdErr = a.Fetch(ctx, args)
		case "bookmarks":
			cmdErr = a.Bookmarks(ctx, args)
		case "ip":
			cmdErr = a.PublicIP(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr)
		}

		if err != nil {
			return
		}
	}
}

package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL drives. App satisfies it; tests
// use a recording stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context) error
	Load(ctx context.Context) error
	Scan(ctx context.Context, args []string) error
	List(ctx context.Context, args []string) error
	Buy(ctx context.Context, args []string) error
	Sell(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Stats(ctx context.Context) error
	Chart(ctx context.Context) error
}

// runREPL reads commands line by line from r and dispatches them to a. It
// returns on end of input or when the user types "exit" or "quit".
//
// Command errors are printed by the handlers themselves, so the loop
// ignores them.
func runREPL(ctx context.Context, a execIface, statusFn func() string, r *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintf(w, "qf %s> ", statusFn())

		line, err := r.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(w)
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if !a.isLoggedIn() {
			switch cmd {
			case "help":
				fmt.Fprintln(w, "Available commands: login, exit")
			case "login":
				_ = a.Login(ctx, args)
			case "exit", "quit":
				fmt.Fprintln(w, "Bye!")
				return
			default:
				fmt.Fprintln(w, "Please log in first (type 'login')")
			}
			continue
		}

		switch cmd {
		case "help":
			fmt.Fprintln(w, "Available commands: load, scan, (l)ist, buy, sell, edit, delete, stats, chart, logout, exit")
		case "login":
			_ = a.Login(ctx, args)
		case "logout":
			_ = a.Logout(ctx)
		case "load":
			_ = a.Load(ctx)
		case "scan":
			_ = a.Scan(ctx, args)
		case "l", "list":
			_ = a.List(ctx, args)
		case "buy":
			_ = a.Buy(ctx, args)
		case "sell":
			_ = a.Sell(ctx, args)
		case "edit":
			_ = a.Edit(ctx, args)
		case "delete", "rm":
			_ = a.Delete(ctx, args)
		case "stats":
			_ = a.Stats(ctx)
		case "chart":
			_ = a.Chart(ctx)
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}
	}
}

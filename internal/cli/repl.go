package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL dispatches to. App satisfies it;
// tests use a recording stub.
type execIface interface {
	SetPassword(ctx context.Context, args []string) error
	VerifyPassword(ctx context.Context, args []string) error
	ListServers(ctx context.Context, args []string) error
	AddServer(ctx context.Context, args []string) error
	EditServer(ctx context.Context, args []string) error
	DeleteServer(ctx context.Context, args []string) error
	UseServer(ctx context.Context, args []string) error
	ShowActive(ctx context.Context, args []string) error
	ShowDefaults(ctx context.Context, args []string) error
	Settings(ctx context.Context, args []string) error
}

const helpText = `Available commands:
  passwd                                  set or change the application password
  verify                                  check a password against the stored one
  servers                                 list registered servers
  add <address> <protocol> <port>         register a server
  edit <address> <protocol> <new-address> <port>
                                          change a server
  delete <address>                        remove a server
  use <address>                           make a server active
  active                                  show the active server
  defaults                                list the bundled default servers in the registry
  settings [set <key> <value>]            show or change settings
  exit | quit                             leave the program`

// runREPL reads commands line by line from reader and dispatches them to a
// until EOF or "exit". Handler errors are printed and the loop continues.
// Handlers may prompt on the same reader.
func runREPL(ctx context.Context, a execIface, reader *bufio.Reader, w io.Writer) {
	commands := map[string]func(context.Context, []string) error{
		"passwd":   a.SetPassword,
		"verify":   a.VerifyPassword,
		"servers":  a.ListServers,
		"ls":       a.ListServers,
		"add":      a.AddServer,
		"edit":     a.EditServer,
		"delete":   a.DeleteServer,
		"rm":       a.DeleteServer,
		"use":      a.UseServer,
		"active":   a.ShowActive,
		"defaults": a.ShowDefaults,
		"settings": a.Settings,
	}

	for {
		fmt.Fprint(w, "nk> ")
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(w)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			fmt.Fprintln(w, helpText)
			continue
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		}

		fn, ok := commands[cmd]
		if !ok {
			fmt.Fprintln(w, "Unknown command:", cmd)
			continue
		}
		if err := fn(ctx, args); err != nil {
			fmt.Fprintln(w, "Error:", err)
		}
	}
}

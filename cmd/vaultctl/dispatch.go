package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"vaultctl/gate"
	"vaultctl/users"
)

func (a *app) dispatch(command []string) error {
	ctx := context.Background()
	name, args := command[0], command[1:]

	switch name {
	case "login":
		return a.cmdLogin(ctx, args)
	case "register":
		return a.cmdRegister(ctx, args)
	case "oauth-login":
		return a.cmdOAuthLogin(ctx, args)
	case "logout":
		return a.cmdLogout(ctx)
	case "logout-all":
		return a.cmdLogoutAll(ctx)
	case "whoami":
		return a.cmdWhoami(ctx)
	case "sessions":
		return a.cmdSessions(ctx)
	case "check-leak":
		return a.cmdCheckLeak(ctx)
	case "vault":
		return a.cmdVault(ctx, args)
	case "encrypt":
		return a.cmdEncrypt(ctx, args)
	case "decrypt":
		return a.cmdDecrypt(ctx, args)
	case "secrets":
		return a.cmdSecrets(ctx, args)
	case "records":
		return a.cmdRecords(ctx, args)
	case "projects":
		return a.cmdProjects(ctx, args)
	case "admin":
		return a.cmdAdmin(ctx, args)
	case "audit":
		return a.cmdAudit(ctx, args)
	case "help":
		usage()
		return nil
	default:
		usage()
		return errors.Errorf("unknown command %q", name)
	}
}

// requireRole gates a command the same way a protected view is gated.
func (a *app) requireRole(role users.Role) error {
	switch a.guard.Check(role) {
	case gate.Allow:
		return nil
	case gate.DenyToLogin:
		return errors.New("not signed in, run 'vaultctl login' first")
	case gate.DenyToDefault:
		return errors.New("this command requires admin privileges")
	default:
		return errors.New("session is still resolving, try again")
	}
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func promptLine(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", errors.Wrap(err, "[promptLine] read")
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads without echo when stdin is a terminal and falls back
// to a plain line read when it is not (pipes, tests).
func promptPassword(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return promptLine(label)
	}
	fmt.Fprintf(os.Stderr, "%s: ", label)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", errors.Wrap(err, "[promptPassword] read")
	}
	return string(raw), nil
}

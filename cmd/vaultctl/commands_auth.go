package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	apperrors "vaultctl/internal/errors"
	"vaultctl/token"
)

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("login", flag.ContinueOnError)
	email := flags.String("email", "", "account email")
	if err := flags.Parse(args); err != nil {
		return err
	}

	address := *email
	if address == "" {
		var err error
		if address, err = promptLine("Email"); err != nil {
			return err
		}
	}
	password, err := promptPassword("Password")
	if err != nil {
		return err
	}

	user, err := a.auth.Login(ctx, address, password)
	if err != nil {
		return err
	}
	fmt.Printf("Signed in as %s (%s)\n", user.DisplayName(), user.Role)
	return nil
}

func (a *app) cmdRegister(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("register", flag.ContinueOnError)
	email := flags.String("email", "", "account email")
	name := flags.String("name", "", "display name")
	if err := flags.Parse(args); err != nil {
		return err
	}

	address := *email
	if address == "" {
		var err error
		if address, err = promptLine("Email"); err != nil {
			return err
		}
	}
	password, err := promptPassword("Password")
	if err != nil {
		return err
	}
	confirm, err := promptPassword("Confirm password")
	if err != nil {
		return err
	}
	if password != confirm {
		return apperrors.New(apperrors.CodeValidationFailed, "passwords do not match", 0)
	}

	user, err := a.auth.Register(ctx, *name, address, password)
	if err != nil {
		return err
	}
	fmt.Printf("Account created, signed in as %s\n", user.DisplayName())
	return nil
}

// cmdOAuthLogin drives the redirect handoff from a terminal: it prints the
// authorization URL, catches the provider's redirect on a loopback listener,
// and resumes the login from the callback query.
func (a *app) cmdOAuthLogin(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("oauth-login", flag.ContinueOnError)
	provider := flags.String("provider", a.cfg.OAuth.DefaultProvider, "oauth provider")
	if err := flags.Parse(args); err != nil {
		return err
	}

	handoff, err := a.auth.OAuthLogin(*provider)
	if err != nil {
		return err
	}

	redirectURI := fmt.Sprintf("http://%s/callback", a.cfg.OAuth.CallbackAddr)
	authorizeURL := fmt.Sprintf("%s?redirect_uri=%s", handoff.AuthorizeURL, url.QueryEscape(redirectURI))

	queryCh := make(chan url.Values, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		select {
		case queryCh <- r.URL.Query():
		default:
		}
		fmt.Fprintln(w, "You can close this window and return to the terminal.")
	})
	server := &http.Server{Addr: a.cfg.OAuth.CallbackAddr, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("callback listener failed")
		}
	}()
	defer server.Close()

	fmt.Printf("Open this URL in your browser to sign in with %s:\n\n  %s\n\nWaiting for the callback...\n", handoff.Provider, authorizeURL)

	var query url.Values
	select {
	case query = <-queryCh:
	case <-time.After(5 * time.Minute):
		return errors.New("timed out waiting for the authorization callback")
	case <-ctx.Done():
		return ctx.Err()
	}

	user, err := a.auth.ResumeCallback(ctx, query)
	if err != nil {
		return err
	}
	fmt.Printf("Signed in as %s (%s)\n", user.DisplayName(), user.Role)
	return nil
}

func (a *app) cmdLogout(ctx context.Context) error {
	result, err := a.auth.Logout(ctx)
	if err != nil {
		return err
	}
	if result.Err != nil {
		fmt.Println("Signed out locally; the server-side revoke did not complete.")
		return nil
	}
	fmt.Println("Signed out.")
	return nil
}

func (a *app) cmdLogoutAll(ctx context.Context) error {
	result, err := a.auth.LogoutAll(ctx)
	if err != nil {
		return err
	}
	if result.Err != nil {
		fmt.Println("Signed out locally; the server-side revoke did not complete.")
		return nil
	}
	fmt.Printf("Signed out everywhere, %d sessions revoked.\n", result.RevokedTokens)
	return nil
}

func (a *app) cmdWhoami(ctx context.Context) error {
	if err := a.requireRole(""); err != nil {
		return err
	}
	user, err := a.auth.CheckAuthStatus(ctx)
	if err != nil {
		return err
	}
	if err := printJSON(user); err != nil {
		return err
	}

	// expiry hint from the token claims, display only
	if introspection, err := token.Introspect(a.store.Session().AccessToken); err == nil && introspection.Active {
		if expiresAt := introspection.ExpiresAt(); !expiresAt.IsZero() {
			fmt.Printf("Access token expires %s\n", expiresAt.Local().Format(time.RFC1123))
		}
	}
	return nil
}

func (a *app) cmdSessions(ctx context.Context) error {
	if err := a.requireRole(""); err != nil {
		return err
	}
	sessions, err := a.auth.Sessions(ctx)
	if err != nil {
		return err
	}
	return printJSON(sessions)
}

func (a *app) cmdCheckLeak(ctx context.Context) error {
	password, err := promptPassword("Password to check")
	if err != nil {
		return err
	}
	result, err := a.security.CheckLeak(ctx, password)
	if err != nil {
		return err
	}
	if result.IsLeaked {
		fmt.Printf("This password appears in %d known breaches. Do not use it.\n", result.Count)
	} else {
		fmt.Println("This password does not appear in known breaches.")
	}
	return nil
}

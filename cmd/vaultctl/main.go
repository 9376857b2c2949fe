// vaultctl is the command-line console for the vault secrets-management
// service. All cryptography and persistence happen server-side; this binary
// manages the authenticated session and moves payloads.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/common-nighthawk/go-figure"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"vaultctl/admin"
	"vaultctl/audit"
	"vaultctl/auth"
	"vaultctl/gate"
	"vaultctl/internal/config"
	"vaultctl/projects"
	"vaultctl/records"
	"vaultctl/secrets"
	"vaultctl/security"
	"vaultctl/session"
	"vaultctl/transport"
	"vaultctl/vault"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Error().Msg(err.Error())
		os.Exit(1)
	}
}

func run(args []string) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	flags := flag.NewFlagSet("vaultctl", flag.ContinueOnError)
	configPath := flags.String("config", "", "path to config.yaml")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return errors.Wrap(err, "loading config")
	}
	setupLogging(cfg)

	command := flags.Args()
	if len(command) == 0 {
		displayAppname("vaultctl")
		usage()
		return nil
	}

	app, err := newApp(cfg)
	if err != nil {
		return errors.Wrap(err, "wiring client")
	}
	return app.dispatch(command)
}

// app holds the wired client stack.
type app struct {
	cfg      *config.Config
	store    *session.Store
	guard    *gate.Guard
	auth     *auth.Client
	vault    *vault.Client
	secrets  *secrets.Client
	records  *records.Client
	projects *projects.Client
	admin    *admin.Client
	audit    *audit.Client
	security *security.Client
}

func newApp(cfg *config.Config) (*app, error) {
	keystore, err := session.NewFileKeystore(cfg.Credentials.Path)
	if err != nil {
		return nil, err
	}
	store, err := session.NewStore(keystore)
	if err != nil {
		return nil, err
	}
	// Hydrate the session from disk before the first network round trip.
	if err := store.Load(); err != nil {
		return nil, err
	}

	dispatcher, err := transport.New(cfg.Server.BaseURL, store,
		transport.WithTimeout(cfg.Server.Timeout),
		transport.WithLogger(log.Logger),
	)
	if err != nil {
		return nil, err
	}

	authClient, err := auth.New(dispatcher, store, auth.WithLogger(log.Logger))
	if err != nil {
		return nil, err
	}
	vaultClient, err := vault.New(dispatcher)
	if err != nil {
		return nil, err
	}
	secretsClient, err := secrets.New(dispatcher)
	if err != nil {
		return nil, err
	}
	recordsClient, err := records.New(dispatcher)
	if err != nil {
		return nil, err
	}
	projectsClient, err := projects.New(dispatcher)
	if err != nil {
		return nil, err
	}
	adminClient, err := admin.New(dispatcher)
	if err != nil {
		return nil, err
	}
	auditClient, err := audit.New(dispatcher)
	if err != nil {
		return nil, err
	}
	securityClient, err := security.New(dispatcher)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		store:    store,
		guard:    gate.NewGuard(store, nil),
		auth:     authClient,
		vault:    vaultClient,
		secrets:  secretsClient,
		records:  recordsClient,
		projects: projectsClient,
		admin:    adminClient,
		audit:    auditClient,
		security: securityClient,
	}, nil
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Log.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}

func usage() {
	fmt.Print(`Usage: vaultctl [-config path] <command> [args]

Session:
  login | register | oauth-login | logout | logout-all | whoami | sessions

Vault (admin):
  vault status|init|unseal|seal
  encrypt | decrypt

Data:
  secrets  list|get|create|update|delete
  records  list|get|create|update|delete|rotate
  projects list|get|create|rename|delete|members|add-member|remove-member

Administration (admin):
  admin users list|get|set-role|delete
  admin data  list|list-user|delete
  audit

Security:
  check-leak
`)
}

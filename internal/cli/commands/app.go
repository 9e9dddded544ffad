// Package commands implements the estatly CLI commands.
package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/estatly/estatly/internal/api"
	"github.com/estatly/estatly/internal/cli/output"
	"github.com/estatly/estatly/internal/cli/prompt"
	"github.com/estatly/estatly/internal/client"
	"github.com/estatly/estatly/internal/config"
	"github.com/estatly/estatly/internal/session"
)

// StoreFactory opens the credential store for a backend origin
type StoreFactory func(origin string) (session.Store, error)

// App carries everything a command needs. Fields are exported so tests can
// swap the prompter, output and store.
type App struct {
	Config    *config.Config
	APIURL    string
	Output    string
	Out       io.Writer
	Prompter  prompt.Prompter
	Logger    zerolog.Logger
	OpenStore StoreFactory

	validate *validator.Validate
	portal   *api.Portal
}

// NewApp builds an App from configuration with terminal defaults
func NewApp(cfg *config.Config, log zerolog.Logger) *App {
	return &App{
		Config:    cfg,
		APIURL:    cfg.API.URL,
		Output:    string(output.FormatTable),
		Out:       os.Stdout,
		Prompter:  prompt.Terminal{},
		Logger:    log,
		OpenStore: storeFor(cfg.Session.Store),
	}
}

func storeFor(kind string) StoreFactory {
	return func(origin string) (session.Store, error) {
		switch kind {
		case "memory":
			return session.NewMemoryStore(), nil
		case "keyring", "":
			return session.NewKeyringStore(origin, "")
		default:
			return nil, fmt.Errorf("unknown session store %q (expected keyring or memory)", kind)
		}
	}
}

// Portal returns the API surface, opening the persisted session on first use
func (a *App) Portal() (*api.Portal, error) {
	if a.portal != nil {
		return a.portal, nil
	}

	origin := strings.TrimRight(a.APIURL, "/")
	if origin == "" {
		return nil, errors.New("API URL is empty. Set ESTATLY_API_URL or pass --api-url")
	}

	store, err := a.OpenStore(origin)
	if err != nil {
		return nil, err
	}

	sess, err := session.Open(store)
	if err != nil {
		return nil, err
	}

	c := client.New(origin,
		client.WithSession(sess),
		client.WithLogger(a.Logger),
	)
	a.portal = api.New(c)
	return a.portal, nil
}

// Session returns the session of the current backend
func (a *App) Session() (*session.Session, error) {
	portal, err := a.Portal()
	if err != nil {
		return nil, err
	}
	return portal.Client.Session(), nil
}

// Printer returns a printer for the --output format
func (a *App) Printer() (*output.Printer, error) {
	format, err := output.ParseFormat(a.Output)
	if err != nil {
		return nil, err
	}
	return output.New(a.Out, format), nil
}

// Validate checks struct tags before anything is sent
func (a *App) Validate(v any) error {
	if a.validate == nil {
		a.validate = validator.New(validator.WithRequiredStructEnabled())
	}

	err := a.validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "e164":
		return field + " must be in international format (+2348012345678)"
	case "url":
		return field + " must be a URL"
	case "gte":
		return fmt.Sprintf("%s must be %s or more", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}

// password returns value, then envKey, then prompts
func (a *App) password(value, envKey, label string) (string, error) {
	if value != "" {
		return value, nil
	}
	if v := os.Getenv(envKey); v != "" {
		return v, nil
	}

	pw, err := a.Prompter.Password(label)
	if err != nil {
		if errors.Is(err, prompt.ErrNotInteractive) {
			return "", fmt.Errorf("password is required in non-interactive mode (use --password flag or %s env var)", envKey)
		}
		return "", err
	}
	return pw, nil
}

// confirm asks before a destructive action unless yes is set
func (a *App) confirm(yes bool, label string) (bool, error) {
	if yes {
		return true, nil
	}
	ok, err := a.Prompter.Confirm(label)
	if errors.Is(err, prompt.ErrNotInteractive) {
		return false, errors.New("confirmation required in non-interactive mode (use --yes)")
	}
	return ok, err
}

// rawError turns an auth call failure into a display error
func rawError(err error, fallback string) error {
	return errors.New(client.UserMessage(err, fallback))
}

func envOr(value, key string) string {
	if value != "" {
		return value
	}
	return os.Getenv(key)
}

package cmd

import (
	"io"

	"github.com/orienta-za/orienta/internal/api"
	"github.com/orienta-za/orienta/internal/authstate"
	"github.com/orienta-za/orienta/internal/config"
	"github.com/orienta-za/orienta/internal/errors"
	"github.com/orienta-za/orienta/internal/log"
)

// app bundles the runtime wiring every command needs: configuration,
// logging, the auth context restored from disk, and the backend client.
type app struct {
	cfg    config.Config
	logger *log.Logger
	auth   *authstate.Context
	client *api.Client
}

// newApp loads config and restores stored credentials
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := log.New(log.Config{
		Level:  log.ParseLevel(cfg.Log.Level),
		Format: log.ParseFormat(cfg.Log.Format),
		Output: log.OutputStderr(),
	})
	log.SetDefaultLogger(logger)

	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}

	auth := authstate.New(authstate.NewFileStore(dir))
	if err := auth.RestoreFromStorage(); err != nil {
		// a corrupt credentials file means logged out, not broken
		logger.Warn("could not restore stored credentials", "error", err)
	}

	client := api.NewClient(cfg.APIURL,
		api.WithTokenSource(auth),
		api.WithRequestTimeout(cfg.RequestTimeout),
		api.WithLogger(logger))

	return &app{cfg: cfg, logger: logger, auth: auth, client: client}, nil
}

// requireLogin fails fast when no credentials are stored
func (a *app) requireLogin() error {
	if !a.auth.LoggedIn() {
		return errors.NewNotLoggedInError()
	}
	return nil
}

// handleAuthFailure clears stored credentials when the backend rejects
// the token, so the next command starts from a clean logged-out state.
func (a *app) handleAuthFailure(out io.Writer, err error) error {
	cleared, herr := a.auth.HandleAuthFailure(err)
	if herr != nil {
		a.logger.Warn("could not clear rejected credentials", "error", herr)
	}
	if cleared {
		writeLine(out, "Your session has expired and you have been logged out.")
	}
	return err
}

func writeLine(out io.Writer, s string) {
	io.WriteString(out, s+"\n")
}

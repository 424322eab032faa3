package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/facets/internal/config"
	"github.com/roach88/facets/internal/criterion"
	"github.com/roach88/facets/internal/model"
	"github.com/roach88/facets/internal/store"
)

// environment is the loaded configuration a command works against.
type environment struct {
	cfg     *config.Config
	catalog *model.Catalog
	lists   *model.ListCache
	store   *store.Store
}

// loadEnvironment loads and validates the configuration named by --config
// and reconfigures logging from it.
func loadEnvironment(opts *RootOptions, cmd *cobra.Command) (*environment, error) {
	if len(opts.Config) == 0 {
		return nil, NewExitError(ExitCommandError, "no configuration: pass --config")
	}

	cfg, err := config.LoadAll(opts.Config...)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	configureLogging(cmd.ErrOrStderr(), opts.Verbose, cfg.Log)

	if errs := cfg.Validate(nil); len(errs) > 0 {
		return nil, WrapExitError(ExitFailure, "invalid configuration", errors.Join(errs...))
	}

	catalog, err := cfg.Catalog()
	if err != nil {
		return nil, WrapExitError(ExitFailure, "invalid configuration", err)
	}

	return &environment{
		cfg:     cfg,
		catalog: catalog,
		lists:   model.NewListCache(catalog, nil),
	}, nil
}

// openStore connects to the configured database. --db replaces the DSN.
func (e *environment) openStore(opts *RootOptions) error {
	dbCfg := e.cfg.Database
	if opts.DB != "" {
		dbCfg.DSN = opts.DB
	}

	st, err := store.Open(dbCfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	e.store = st
	return nil
}

// model resolves a model and its criterion list.
func (e *environment) model(id string) (*model.Model, *criterion.List, error) {
	m, err := e.catalog.Model(id)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, fmt.Sprintf("unknown model %q", id), err)
	}
	list, err := e.lists.For(m)
	if err != nil {
		return nil, nil, WrapExitError(ExitFailure, fmt.Sprintf("criteria of %q", id), err)
	}
	return m, list, nil
}

func (e *environment) close() {
	if e.store != nil {
		e.store.Close()
	}
}

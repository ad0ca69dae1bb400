package cliutil

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/nonibytes/pgfulltext/internal/cliopt"
	"github.com/nonibytes/pgfulltext/pgfulltext"
)

// OpenFunc opens a Service for the given settings.
type OpenFunc func(ctx context.Context, s cliopt.Settings, opts pgfulltext.Options) (*pgfulltext.Service, error)

// Env is shared by all commands. Settings and Log are filled in by the root
// command before any subcommand runs.
type Env struct {
	Settings cliopt.Settings
	Log      *logrus.Logger
	Out      io.Writer
	Err      io.Writer
	Open     OpenFunc
}

func NewEnv(out, errOut io.Writer) *Env {
	return &Env{
		Settings: cliopt.DefaultSettings(),
		Log:      logrus.New(),
		Out:      out,
		Err:      errOut,
		Open:     OpenService,
	}
}

// Options returns library options derived from the current settings.
func (e *Env) Options() pgfulltext.Options {
	return ServiceOptions(e.Settings, e.Log)
}

func (e *Env) OpenService(ctx context.Context, opts pgfulltext.Options) (*pgfulltext.Service, error) {
	return e.Open(ctx, e.Settings, opts)
}

// Package app wires the loader, executor, materializer and comparator into
// one regression run.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tuannm99/sqlab/internal"
	"github.com/tuannm99/sqlab/internal/compare"
	"github.com/tuannm99/sqlab/internal/loader"
	"github.com/tuannm99/sqlab/internal/policy"
	"github.com/tuannm99/sqlab/internal/resultset"
	"github.com/tuannm99/sqlab/internal/sql/executor"
)

// Exit codes are part of the CLI contract.
const (
	ExitMatch     = 0
	ExitMismatch  = 1
	ExitNotFound  = 2
	ExitExecution = 6
	ExitBadArgs   = 0xA0
)

var ErrBadArguments = errors.New("sqlab: bad arguments")

// ScriptError ties a failure to script "A" or "B".
type ScriptError struct {
	Label string
	Ref   string
	Err   error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("script %s (%s): %v", e.Label, e.Ref, e.Err)
}

func (e *ScriptError) Unwrap() error { return e.Err }

type ScriptLoader interface {
	Load(ctx context.Context, ref string) (loader.Script, error)
}

// Executor is a resultset.Executor that owns a pool.
type Executor interface {
	resultset.Executor
	Close() error
}

type Opener func(conn internal.Connection, log *slog.Logger) (Executor, error)

type ConfigLoader func(path string) (*internal.SqlabConfig, error)

// OpenSQL opens a database/sql backed executor.
func OpenSQL(conn internal.Connection, log *slog.Logger) (Executor, error) {
	ex, err := executor.Open(conn, log)
	if err != nil {
		return nil, err
	}
	return ex, nil
}

// Options are resolved once per invocation and never change afterwards.
type Options struct {
	ScriptA    string
	ScriptB    string
	Policy     policy.Policy
	ConfigPath string
	Connection string
}

type App struct {
	Loader     ScriptLoader
	LoadConfig ConfigLoader
	Open       Opener
	Log        *slog.Logger

	// Level, when set, follows the log.level of the loaded config.
	Level *slog.LevelVar
}

func New(l ScriptLoader, log *slog.Logger) *App {
	if log == nil {
		log = slog.Default()
	}
	return &App{
		Loader:     l,
		LoadConfig: internal.LoadConfig,
		Open:       OpenSQL,
		Log:        log,
	}
}

// Run loads both scripts, then executes and materializes A fully before B.
// Any load or execution error aborts before comparing.
func (a *App) Run(ctx context.Context, opts Options) (compare.Outcome, error) {
	if opts.ScriptA == "" || opts.ScriptB == "" {
		return compare.Outcome{}, fmt.Errorf("%w: two scripts are required", ErrBadArguments)
	}

	scriptA, err := a.load(ctx, "A", opts.ScriptA)
	if err != nil {
		return compare.Outcome{}, err
	}
	scriptB, err := a.load(ctx, "B", opts.ScriptB)
	if err != nil {
		return compare.Outcome{}, err
	}

	ex, err := a.open(opts)
	if err != nil {
		return compare.Outcome{}, err
	}
	defer func() {
		if cerr := ex.Close(); cerr != nil {
			a.Log.Warn("close executor", "err", cerr)
		}
	}()

	seqA, err := a.materialize(ctx, ex, "A", scriptA, opts.Policy)
	if err != nil {
		return compare.Outcome{}, err
	}
	seqB, err := a.materialize(ctx, ex, "B", scriptB, opts.Policy)
	if err != nil {
		return compare.Outcome{}, err
	}

	out := compare.Compare(seqA.Rows, seqB.Rows, opts.Policy)
	a.Log.Info("compared",
		"rows", out.RowsCompared,
		"mismatches", len(out.Mismatches),
		"length_mismatch", out.LengthMismatch,
	)
	return out, nil
}

func (a *App) load(ctx context.Context, label, ref string) (loader.Script, error) {
	s, err := a.Loader.Load(ctx, ref)
	if err != nil {
		return loader.Script{}, &ScriptError{Label: label, Ref: ref, Err: err}
	}
	a.Log.Debug("loaded script", "script", label, "source", s.Kind, "path", s.Path, "bytes", len(s.Text))
	return s, nil
}

func (a *App) open(opts Options) (Executor, error) {
	cfg, err := a.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", resultset.ErrExecutionFailed, err)
	}
	if a.Level != nil && cfg.Log.Level != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
			a.Log.Warn("ignoring log level", "level", cfg.Log.Level, "err", err)
		} else {
			a.Level.Set(lvl)
		}
	}

	conn, err := cfg.Connection(opts.Connection)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", resultset.ErrExecutionFailed, err)
	}
	a.Log.Debug("using connection", "name", conn.Name, "driver", conn.Driver, "config", cfg.File)

	ex, err := a.Open(conn, a.Log)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", resultset.ErrExecutionFailed, err)
	}
	return ex, nil
}

func (a *App) materialize(ctx context.Context, ex Executor, label string, s loader.Script, p policy.Policy) (resultset.Sequence, error) {
	start := time.Now()
	seq, err := resultset.Materialize(ctx, ex, s.Text, p)
	if err != nil {
		return resultset.Sequence{}, &ScriptError{Label: label, Ref: s.Ref, Err: err}
	}
	a.Log.Info("materialized",
		"script", label,
		"batches", seq.Batches,
		"rows", seq.Len(),
		"elapsed", time.Since(start),
	)
	return seq, nil
}

// ExitCode maps a run result onto the CLI contract.
func ExitCode(out compare.Outcome, err error) int {
	switch {
	case err == nil && out.Success():
		return ExitMatch
	case err == nil:
		return ExitMismatch
	case errors.Is(err, ErrBadArguments), errors.Is(err, policy.ErrInvalidLimit):
		return ExitBadArgs
	case errors.Is(err, resultset.ErrColumnWidthExceeded), errors.Is(err, resultset.ErrExecutionFailed):
		return ExitExecution
	default:
		var se *ScriptError
		if errors.As(err, &se) {
			// failure while fetching a script: it could not be found
			return ExitNotFound
		}
		return ExitExecution
	}
}

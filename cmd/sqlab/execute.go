package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/tuannm99/sqlab/internal/app"
	"github.com/tuannm99/sqlab/internal/loader"
	"github.com/tuannm99/sqlab/internal/report"
)

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	inv, err := parseArgs(args)

	rep := report.New(stdout, !inv.noColor)
	if err != nil {
		rep.Usage(usageReason(err))
		return exitBadArgs
	}
	if inv.help {
		rep.Usage("")
		return app.ExitMatch
	}
	if inv.version {
		_, _ = fmt.Fprintf(stdout, "sqlab %s\n", Version)
		return app.ExitMatch
	}

	level := new(slog.LevelVar)
	level.Set(slog.LevelWarn)
	if inv.verbose {
		level.Set(slog.LevelDebug)
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})).
		With("run", uuid.NewString())

	if inv.warning != "" {
		rep.Warning(inv.warning)
		log.Debug("column limit ignored", "reason", inv.warning)
	}

	l, err := loader.New()
	if err != nil {
		rep.Error("", err)
		return app.ExitNotFound
	}

	a := app.New(l, log)
	if !inv.verbose {
		a.Level = level
	}

	out, err := a.Run(ctx, inv.opts)
	code := app.ExitCode(out, err)
	if err == nil {
		rep.Outcome(out)
		return code
	}

	var se *app.ScriptError
	switch {
	case code == app.ExitNotFound && errors.As(err, &se):
		rep.NotFound(se.Ref, se.Err)
	case errors.As(err, &se):
		rep.Error(se.Label, se.Err)
	default:
		rep.Error("", err)
	}
	log.Debug("run failed", "exit", code, "err", err)
	return code
}

func usageReason(err error) string {
	return strings.TrimPrefix(err.Error(), app.ErrBadArguments.Error()+": ")
}

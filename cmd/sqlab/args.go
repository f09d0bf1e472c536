package main

import (
	"fmt"
	"strings"

	"github.com/tuannm99/sqlab/internal/app"
	"github.com/tuannm99/sqlab/internal/policy"
)

const exitBadArgs = app.ExitBadArgs

type invocation struct {
	opts    app.Options
	scripts []string
	verbose bool
	noColor bool
	help    bool
	version bool
	warning string
}

func parseArgs(raw []string) (invocation, error) {
	res, err := policy.Resolve(raw)
	if err != nil {
		return invocation{}, err
	}

	inv := invocation{warning: res.Warning}
	inv.opts.Policy = res.Policy

	rest := res.Rest
	for i := 0; i < len(rest); i++ {
		arg := rest[i]
		name, value, hasValue := strings.Cut(arg, "=")

		switch name {
		case "-h", "--help":
			inv.help = true
		case "--version":
			inv.version = true
		case "-v", "--verbose":
			inv.verbose = true
		case "--no-color":
			inv.noColor = true
		case "--config", "--connection":
			if !hasValue {
				if i+1 >= len(rest) || strings.HasPrefix(rest[i+1], "-") {
					return invocation{}, fmt.Errorf("%w: %s needs a value", app.ErrBadArguments, name)
				}
				value = rest[i+1]
				i++
			}
			if name == "--config" {
				inv.opts.ConfigPath = value
			} else {
				inv.opts.Connection = value
			}
		default:
			if strings.HasPrefix(arg, "-") && arg != "-" {
				return invocation{}, fmt.Errorf("%w: unknown flag %s", app.ErrBadArguments, arg)
			}
			inv.scripts = append(inv.scripts, arg)
		}
	}

	if inv.help || inv.version {
		return inv, nil
	}
	switch {
	case len(inv.scripts) < 2:
		return inv, fmt.Errorf("%w: Not enough args", app.ErrBadArguments)
	case len(inv.scripts) > 2:
		return inv, fmt.Errorf("%w: expected two scripts, got %d", app.ErrBadArguments, len(inv.scripts))
	}
	inv.opts.ScriptA, inv.opts.ScriptB = inv.scripts[0], inv.scripts[1]
	return inv, nil
}

// Copyright 2022 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Println("Error: ", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "aceei",
		Usage: "Allocate course seats with A-CEEI",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log every iteration",
			},
		},
		Commands: []*cli.Command{
			solveCmd,
			checkCmd,
		},
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}

var solveCmd = &cli.Command{
	Name:    "solve",
	Usage:   "Find an equilibrium allocation for a problem file",
	Aliases: []string{"s"},
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "problem",
			Required: true,
			Usage:    "specify the input problem (.json, .yaml)",
		},
		&cli.StringFlag{
			Name:     "out",
			Required: true,
			Usage:    "specify the output outcome (.json, .yaml)",
		},
		&cli.Float64Flag{
			Name:  "delta",
			Value: 0.5,
			Usage: "specify the price step",
		},
		&cli.Float64Flag{
			Name:  "epsilon",
			Value: 0.5,
			Usage: "specify the maximum budget perturbation",
		},
		&cli.StringFlag{
			Name:  "eftb",
			Value: "none",
			Usage: "specify the envy constraint (none, eftb, contested)",
		},
		&cli.IntFlag{
			Name:  "max-iter",
			Value: 1000,
			Usage: "specify the iteration limit",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "specify the time limit (0 for none)",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "specify the agents searched in parallel (0 for all)",
		},
		&cli.StringFlag{
			Name:  "solver",
			Value: "exhaustive",
			Usage: "specify the optimizer backend (exhaustive, simplex)",
		},
		&cli.IntFlag{
			Name:  "max-nodes",
			Usage: "specify the optimizer node limit per iteration (0 for none)",
		},
		&cli.StringFlag{
			Name:  "metrics",
			Usage: "specify a Prometheus textfile to write",
		},
	},
	Action: func(ctx *cli.Context) error {
		opts := solveOptions{
			problemFile: ctx.String("problem"),
			outFile:     ctx.String("out"),
			metricsFile: ctx.String("metrics"),
			delta:       ctx.Float64("delta"),
			epsilon:     ctx.Float64("epsilon"),
			eftb:        ctx.String("eftb"),
			maxIter:     ctx.Int("max-iter"),
			timeout:     ctx.Duration("timeout"),
			workers:     ctx.Int("workers"),
			solver:      ctx.String("solver"),
			maxNodes:    ctx.Int("max-nodes"),
		}
		if opts.delta <= 0 {
			return errors.New("invalid delta")
		}
		if opts.epsilon < 0 {
			return errors.New("invalid epsilon")
		}
		if opts.maxIter <= 0 {
			return errors.New("invalid max-iter")
		}

		logger, err := newLogger(ctx.Bool("verbose"))
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()

		return doSolve(ctx.Context, logger, opts)
	},
}

var checkCmd = &cli.Command{
	Name:    "check",
	Usage:   "Validate a problem file",
	Aliases: []string{"c"},
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "problem",
			Required: true,
			Usage:    "specify the input problem (.json, .yaml)",
		},
	},
	Action: func(ctx *cli.Context) error {
		return doCheck(ctx.App.Writer, ctx.String("problem"))
	},
}

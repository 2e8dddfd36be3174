// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/hiring/builtin/events"
	"github.com/vechain/hiring/log"
	"github.com/vechain/hiring/lvldb"
	"github.com/vechain/hiring/metrics"
	"github.com/vechain/hiring/runtime"
)

var (
	version   string
	gitCommit string
	gitTag    string
	logger    = log.WithContext("pkg", "hiringsim")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version: fullVersion(),
		Name:    "hiringsim",
		Usage:   "Run hiring scenarios against a local runtime",
		Flags: []cli.Flag{
			scenarioFlag,
			dataDirFlag,
			cacheSizeFlag,
			verbosityFlag,
			jsonLogsFlag,
			metricsAddrFlag,
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initLogger(ctx *cli.Context) error {
	level, ok := log.ParseLevel(ctx.String(verbosityFlag.Name))
	if !ok {
		return errors.Errorf("invalid verbosity %q", ctx.String(verbosityFlag.Name))
	}
	lvl := &slog.LevelVar{}
	lvl.Set(level)

	var handler slog.Handler
	if ctx.Bool(jsonLogsFlag.Name) {
		handler = log.JSONHandlerWithLevel(os.Stderr, lvl)
	} else {
		useColor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
		handler = log.NewTerminalHandlerWithLevel(os.Stderr, lvl, useColor)
	}
	log.SetDefault(handler)
	return nil
}

func openDB(ctx *cli.Context) (*lvldb.LevelDB, error) {
	dir := ctx.String(dataDirFlag.Name)
	if dir == "" {
		return lvldb.NewMem()
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.Wrapf(err, "create data dir [%v]", dir)
	}
	return lvldb.New(dir, lvldb.Options{CacheSize: 16, OpenFilesCacheCapacity: 64})
}

func handleExitSignal() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func run(ctx *cli.Context) error {
	if err := initLogger(ctx); err != nil {
		return err
	}
	path := ctx.String(scenarioFlag.Name)
	if path == "" {
		cli.ShowAppHelp(ctx)
		return errors.Errorf("flag -%s is required", scenarioFlag.Name)
	}
	sc, err := loadScenario(path)
	if err != nil {
		return err
	}

	db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	metricsAddr := ctx.String(metricsAddrFlag.Name)
	if metricsAddr != "" {
		metrics.InitializePrometheusMetrics()
	}

	cfg := sc.runtimeConfig()
	if ctx.IsSet(cacheSizeFlag.Name) {
		cfg.CacheSize = ctx.Int(cacheSizeFlag.Name)
	}
	rt, err := runtime.New(db, cfg, events.NewLogSink(logger))
	if err != nil {
		return err
	}

	exitCtx, stop := handleExitSignal()
	defer stop()

	sim := &simulator{rt: rt}
	g, gctx := errgroup.WithContext(exitCtx)

	if metricsAddr != "" {
		rt.RegisterCollectors()
		srv, listener, err := newMetricsServer(metricsAddr)
		if err != nil {
			return err
		}
		logger.Info("metrics server started", "url", "http://"+listener.Addr().String()+"/metrics")
		g.Go(func() error {
			if err := srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			return srv.Close()
		})
	}

	g.Go(func() error {
		return sim.run(gctx, sc)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if sim.failures > 0 {
		return errors.Errorf("%d expectation(s) failed", sim.failures)
	}
	return nil
}

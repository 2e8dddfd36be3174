// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/hiring/runtime"
)

var (
	scenarioFlag = cli.StringFlag{
		Name:  "scenario",
		Usage: "path to the scenario file",
	}
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Usage: "directory for the state database, in memory if empty",
	}
	cacheSizeFlag = cli.IntFlag{
		Name:  "cache",
		Value: runtime.DefaultCacheSize,
		Usage: "number of state entries kept in the cache",
	}
	verbosityFlag = cli.StringFlag{
		Name:  "verbosity",
		Value: "info",
		Usage: "log verbosity (0-5 or crit, error, warn, info, debug, trace)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Usage: "serve metrics on this address and keep running until interrupted",
	}
)

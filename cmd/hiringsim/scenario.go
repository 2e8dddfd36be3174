// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"cmp"
	"os"
	"slices"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/hiring/runtime"
	"github.com/vechain/hiring/thor"
)

// Scenario is a list of steps run block by block against a runtime.
type Scenario struct {
	Config runtime.Config `yaml:"config"`
	// Accounts are credited at genesis. Names are turned into addresses.
	Accounts map[string]thor.Balance `yaml:"accounts"`
	// Until is the last block to run. It defaults to the block of the last step.
	Until thor.BlockNumber `yaml:"until"`
	Steps []Step           `yaml:"steps"`
}

// Step is one action run in a block.
type Step struct {
	Block       thor.BlockNumber `yaml:"block"`
	Action      string           `yaml:"action"`
	Params      yaml.Node        `yaml:"params"`
	ExpectError string           `yaml:"expect_error"`
}

func loadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read scenario")
	}
	return parseScenario(data)
}

func parseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, errors.Wrap(err, "parse scenario")
	}
	for i, st := range sc.Steps {
		if _, ok := actions[st.Action]; !ok {
			return nil, errors.Errorf("step %d: unknown action %q", i, st.Action)
		}
	}
	slices.SortStableFunc(sc.Steps, func(a, b Step) int {
		return cmp.Compare(a.Block, b.Block)
	})
	if n := len(sc.Steps); n > 0 && sc.Until < sc.Steps[n-1].Block {
		sc.Until = sc.Steps[n-1].Block
	}
	return &sc, nil
}

// runtimeConfig returns the runtime config with the named accounts added to
// the genesis allocations, in name order.
func (sc *Scenario) runtimeConfig() runtime.Config {
	cfg := sc.Config
	cfg.Genesis = slices.Clone(cfg.Genesis)

	names := make([]string, 0, len(sc.Accounts))
	for name := range sc.Accounts {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		cfg.Genesis = append(cfg.Genesis, runtime.Allocation{Account: account(name), Balance: sc.Accounts[name]})
	}
	return cfg
}

// account resolves a hex address or an account name.
func account(name string) thor.Address {
	if addr, err := thor.ParseAddress(name); err == nil {
		return *addr
	}
	return thor.BytesToAddress([]byte(name))
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/hiring/thor"
)

// DefaultCacheSize is the number of committed entries kept in the read cache.
const DefaultCacheSize = 4096

// DefaultStakePool is the account holding staked funds unless configured.
var DefaultStakePool = thor.BytesToAddress([]byte("stake-pool"))

// Allocation credits an account at genesis.
type Allocation struct {
	Account thor.Address `yaml:"account"`
	Balance thor.Balance `yaml:"balance"`
}

// Config holds the runtime parameters. Genesis allocations and the minimum
// stake are only applied to an empty store.
type Config struct {
	ExistentialDeposit thor.Balance  `yaml:"existential-deposit"`
	MinimumStake       thor.Balance  `yaml:"minimum-stake"`
	StakePool          *thor.Address `yaml:"stake-pool"`
	CacheSize          int           `yaml:"cache-size"`
	Genesis            []Allocation  `yaml:"genesis"`
}

// ParseConfig decodes a YAML runtime config.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to parse runtime config")
	}
	return cfg, nil
}

func (c *Config) stakePool() thor.Address {
	if c.StakePool == nil {
		return DefaultStakePool
	}
	return *c.StakePool
}

func (c *Config) cacheSize() int {
	if c.CacheSize <= 0 {
		return DefaultCacheSize
	}
	return c.CacheSize
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"github.com/vechain/hiring/log"
)

const configNamespace = "config"

// ConfigVariable is an engine parameter with a compiled-in default which
// can be overridden from state.
type ConfigVariable struct {
	name         string
	defaultValue uint64
	value        uint64
}

func NewConfigVariable(name string, defaultValue uint64) *ConfigVariable {
	return &ConfigVariable{
		name:         name,
		defaultValue: defaultValue,
		value:        defaultValue,
	}
}

func (c *ConfigVariable) Get() uint64 {
	return c.value
}

func (c *ConfigVariable) Name() string {
	return c.name
}

func (c *ConfigVariable) slot(ctx *Context) *Raw[uint64] {
	return NewRaw[uint64](NewContext(configNamespace, ctx.state), c.name)
}

// Override loads the value stored in state, falling back to the default when nothing is stored.
func (c *ConfigVariable) Override(ctx *Context) {
	num, err := c.slot(ctx).Get()
	if err != nil {
		log.Warn("failed to read config value", "slot", c.Name(), "error", err)
		return
	}

	c.value = c.defaultValue
	if num != 0 {
		c.value = num
		log.Debug("override found new config value", "slot", c.Name(), "value", c.Get())
	} else {
		log.Debug("using default config value", "slot", c.Name(), "value", c.Get())
	}
}

// Store writes value into state so that later Override calls pick it up.
func (c *ConfigVariable) Store(ctx *Context, value uint64) error {
	return c.slot(ctx).Upsert(value)
}

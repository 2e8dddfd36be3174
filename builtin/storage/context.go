// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"github.com/vechain/hiring/state"
)

// Context scopes typed storage to a module namespace.
type Context struct {
	namespace string
	state     *state.State
}

func NewContext(namespace string, state *state.State) *Context {
	return &Context{
		namespace: namespace,
		state:     state,
	}
}

func (c *Context) State() *state.State {
	return c.state
}

func (c *Context) Namespace() string {
	return c.namespace
}

// prefix returns the key prefix of the named slot, "<namespace>/<name>/".
func (c *Context) prefix(name string) []byte {
	p := make([]byte, 0, len(c.namespace)+len(name)+2)
	p = append(p, c.namespace...)
	p = append(p, '/')
	p = append(p, name...)
	return append(p, '/')
}

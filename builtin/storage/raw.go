// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
)

// Raw is a single rlp encoded value, such as a counter.
type Raw[V any] struct {
	context *Context
	key     []byte
}

func NewRaw[V any](context *Context, name string) *Raw[V] {
	return &Raw[V]{context: context, key: context.prefix(name)}
}

// Get returns the stored value, or the zero value of V if never written.
func (r *Raw[V]) Get() (value V, err error) {
	raw, err := r.context.state.Get(r.key)
	if err != nil {
		return value, err
	}
	if len(raw) == 0 {
		return value, nil
	}
	if err := rlp.DecodeBytes(raw, &value); err != nil {
		return value, errors.Wrap(err, "decode")
	}
	return value, nil
}

func (r *Raw[V]) Upsert(value V) error {
	raw, err := rlp.EncodeToBytes(value)
	if err != nil {
		return errors.Wrap(err, "encode")
	}
	r.context.state.Put(r.key, raw)
	return nil
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
)

type Key interface {
	Bytes() []byte
}

var (
	errKeyExists   = errors.New("key already exists")
	errKeyNotFound = errors.New("key does not exist")
)

// Mapping is a key/value storage abstraction with rlp encoded values.
// Keys of the same mapping are iterated in byte order of Key.Bytes().
type Mapping[K Key, V any] struct {
	context *Context
	prefix  []byte
}

func NewMapping[K Key, V any](context *Context, name string) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, prefix: context.prefix(name)}
}

func (m *Mapping[K, V]) key(key K) []byte {
	k := key.Bytes()
	out := make([]byte, 0, len(m.prefix)+len(k))
	return append(append(out, m.prefix...), k...)
}

// Get returns the value stored under key, or the zero value of V (nil for pointers) if absent.
func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	raw, err := m.context.state.Get(m.key(key))
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

func (m *Mapping[K, V]) Exists(key K) (bool, error) {
	return m.context.state.Has(m.key(key))
}

// Insert stores a new value. It fails if the key is already present.
func (m *Mapping[K, V]) Insert(key K, value V) error {
	exists, err := m.Exists(key)
	if err != nil {
		return err
	}
	if exists {
		return errKeyExists
	}
	return m.Set(key, value)
}

// Update replaces an existing value. It fails if the key is absent.
func (m *Mapping[K, V]) Update(key K, value V) error {
	exists, err := m.Exists(key)
	if err != nil {
		return err
	}
	if !exists {
		return errKeyNotFound
	}
	return m.Set(key, value)
}

// Set stores value regardless of a previous one.
func (m *Mapping[K, V]) Set(key K, value V) error {
	raw, err := rlp.EncodeToBytes(value)
	if err != nil {
		return errors.Wrap(err, "encode")
	}
	m.context.state.Put(m.key(key), raw)
	return nil
}

func (m *Mapping[K, V]) Delete(key K) {
	m.context.state.Delete(m.key(key))
}

// Iterate visits all entries in key order until fn returns false or an error.
// The key passed to fn is Key.Bytes() of the entry.
func (m *Mapping[K, V]) Iterate(fn func(key []byte, value V) (bool, error)) error {
	var cbErr error
	err := m.context.state.Iterate(m.prefix, func(k, raw []byte) bool {
		var value V
		if err := rlp.DecodeBytes(raw, &value); err != nil {
			cbErr = errors.Wrap(err, "decode")
			return false
		}
		next, err := fn(k[len(m.prefix):], value)
		if err != nil {
			cbErr = err
			return false
		}
		return next
	})
	if err != nil {
		return err
	}
	return cbErr
}

// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state provides a revertible key/value overlay on top of a kv.Store.
// Writes are kept in memory until staged and committed, checkpoints allow
// partial rollback of a failed operation.
package state

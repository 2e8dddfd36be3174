// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
)

// Kind classifies a revert error.
type Kind uint8

const (
	NotFound Kind = iota + 1
	InvalidState
	InvalidAmount
	PolicyViolation
	Timing
	Internal
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not-found"
	case InvalidState:
		return "invalid-state"
	case InvalidAmount:
		return "invalid-amount"
	case PolicyViolation:
		return "policy-violation"
	case Timing:
		return "timing"
	case Internal:
		return "internal"
	default:
		return "unknown"
	}
}

// ErrRevert is a user error: the operation is rejected and the enclosing
// extrinsic must be rolled back.
type ErrRevert struct {
	kind    Kind
	message string
}

func New(kind Kind, message string) *ErrRevert {
	return &ErrRevert{
		kind:    kind,
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

func (e *ErrRevert) Kind() Kind {
	return e.kind
}

func IsRevertErr(err any) bool {
	_, ok := asRevert(err)
	return ok
}

// KindOf returns the kind of the revert error wrapped in err.
func KindOf(err error) (Kind, bool) {
	e, ok := asRevert(err)
	if !ok {
		return 0, false
	}
	return e.kind, true
}

func asRevert(err any) (*ErrRevert, bool) {
	if err == nil {
		return nil, false
	}
	e, ok := err.(error)
	if !ok {
		return nil, false
	}
	var ve *ErrRevert
	if errors.As(e, &ve) {
		return ve, true
	}
	return nil, false
}

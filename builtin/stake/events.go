// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"github.com/vechain/hiring/thor"
)

const moduleName = "stake"

type (
	StakeCreated struct {
		ID StakeID
	}
	StakeAdded struct {
		ID     StakeID
		Amount thor.Balance
	}
	StakeIncreased struct {
		ID     StakeID
		Amount thor.Balance
		Total  thor.Balance
	}
	StakeDecreased struct {
		ID        StakeID
		Amount    thor.Balance
		Remaining thor.Balance
	}
	StakeRemoved struct {
		ID StakeID
	}
	SlashInitiated struct {
		ID      StakeID
		SlashID SlashID
		Amount  thor.Balance
		Period  thor.BlockNumber
	}
	SlashPaused struct {
		ID      StakeID
		SlashID SlashID
	}
	SlashResumed struct {
		ID      StakeID
		SlashID SlashID
	}
	SlashCancelled struct {
		ID      StakeID
		SlashID SlashID
	}
	// Slashed is emitted when funds are taken. SlashID is nil for immediate slashes.
	Slashed struct {
		ID        StakeID
		SlashID   *SlashID
		Amount    thor.Balance
		Remaining thor.Balance
	}
	UnstakingInitiated struct {
		ID        StakeID
		Period    thor.BlockNumber
		ExpiresAt thor.BlockNumber
	}
	UnstakingPaused struct {
		ID StakeID
	}
	UnstakingResumed struct {
		ID StakeID
	}
	Unstaked struct {
		ID     StakeID
		Amount thor.Balance
	}
)

func (StakeCreated) Module() string       { return moduleName }
func (StakeCreated) Name() string         { return "StakeCreated" }
func (StakeAdded) Module() string         { return moduleName }
func (StakeAdded) Name() string           { return "StakeAdded" }
func (StakeIncreased) Module() string     { return moduleName }
func (StakeIncreased) Name() string       { return "StakeIncreased" }
func (StakeDecreased) Module() string     { return moduleName }
func (StakeDecreased) Name() string       { return "StakeDecreased" }
func (StakeRemoved) Module() string       { return moduleName }
func (StakeRemoved) Name() string         { return "StakeRemoved" }
func (SlashInitiated) Module() string     { return moduleName }
func (SlashInitiated) Name() string       { return "SlashInitiated" }
func (SlashPaused) Module() string        { return moduleName }
func (SlashPaused) Name() string          { return "SlashPaused" }
func (SlashResumed) Module() string       { return moduleName }
func (SlashResumed) Name() string         { return "SlashResumed" }
func (SlashCancelled) Module() string     { return moduleName }
func (SlashCancelled) Name() string       { return "SlashCancelled" }
func (Slashed) Module() string            { return moduleName }
func (Slashed) Name() string              { return "Slashed" }
func (UnstakingInitiated) Module() string { return moduleName }
func (UnstakingInitiated) Name() string   { return "UnstakingInitiated" }
func (UnstakingPaused) Module() string    { return moduleName }
func (UnstakingPaused) Name() string      { return "UnstakingPaused" }
func (UnstakingResumed) Module() string   { return moduleName }
func (UnstakingResumed) Name() string     { return "UnstakingResumed" }
func (Unstaked) Module() string           { return moduleName }
func (Unstaked) Name() string             { return "Unstaked" }

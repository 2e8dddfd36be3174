// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"github.com/vechain/hiring/metrics"
)

var (
	metricStakeEvents      = metrics.LazyLoadCounterVec("stake_events_count", []string{"event"})
	metricSlashedAmount    = metrics.LazyLoadCounter("stake_slashed_amount")
	metricUnstakingPeriods = metrics.LazyLoadHistogram("stake_unstaking_period_blocks", metrics.BucketBlocks)
	metricFinalizeDuration = metrics.LazyLoadHistogram("stake_finalize_duration_us", metrics.BucketMicros)
)

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package hiring

import (
	"github.com/vechain/hiring/metrics"
)

var (
	metricHiringEvents      = metrics.LazyLoadCounterVec("hiring_events_count", []string{"event"})
	metricDeactivations     = metrics.LazyLoadCounterVec("application_deactivations_count", []string{"cause"})
	metricReviewDuration    = metrics.LazyLoadHistogram("opening_review_duration_blocks", metrics.BucketBlocks)
	metricHousekeepDuration = metrics.LazyLoadHistogram("hiring_housekeep_duration_us", metrics.BucketMicros)
)

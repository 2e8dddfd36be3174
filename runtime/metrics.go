// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"github.com/vechain/hiring/metrics"
)

var (
	metricExtrinsics        = metrics.LazyLoadCounterVec("runtime_extrinsics_count", []string{"result", "kind"})
	metricExtrinsicDuration = metrics.LazyLoadHistogram("runtime_extrinsic_duration_us", metrics.BucketMicros)
	metricCommittedKeys     = metrics.LazyLoadCounter("runtime_committed_keys_count")
	metricCacheLookups      = metrics.LazyLoadGaugeVec("runtime_state_cache_lookups", []string{"event"})
)

// RegisterCollectors exposes the number of openings, applications and
// stakes per stage. Values are read at scrape time.
func (rt *Runtime) RegisterCollectors() {
	metrics.Register(&metrics.FuncCollector{
		MetricName: "hiring_openings",
		MetricHelp: "Number of openings per stage",
		LabelName:  "stage",
		Fn:         rt.snapshot(func() (map[string]int64, error) { return rt.hiring.CountOpeningsByStage() }),
	})
	metrics.Register(&metrics.FuncCollector{
		MetricName: "hiring_applications",
		MetricHelp: "Number of applications per stage",
		LabelName:  "stage",
		Fn:         rt.snapshot(func() (map[string]int64, error) { return rt.hiring.CountApplicationsByStage() }),
	})
	metrics.Register(&metrics.FuncCollector{
		MetricName: "stake_stakes",
		MetricHelp: "Number of stakes per status",
		LabelName:  "status",
		Fn:         rt.snapshot(func() (map[string]int64, error) { return rt.stakes.CountByStatus() }),
	})
}

func (rt *Runtime) snapshot(fn func() (map[string]int64, error)) func() map[string]int64 {
	return func() map[string]int64 {
		rt.mu.Lock()
		defer rt.mu.Unlock()

		counts, err := fn()
		if err != nil {
			logger.Warn("failed to collect metrics", "error", err)
			return nil
		}
		return counts
	}
}

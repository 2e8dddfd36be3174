// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"sort"

	"github.com/prometheus/client_golang/prometheus"
)

// SnapshotCollector reports point-in-time values computed at scrape time,
// such as the number of stakes per state.
type SnapshotCollector interface {
	// Name is the metric name, without namespace.
	Name() string
	Help() string
	// Label is the single label the samples are partitioned by.
	Label() string
	// Snapshot returns the current value per label value.
	Snapshot() map[string]int64
}

// snapshotAdapter exposes a SnapshotCollector as a prometheus.Collector.
type snapshotAdapter struct {
	source SnapshotCollector
	desc   *prometheus.Desc
}

func newSnapshotAdapter(c SnapshotCollector) *snapshotAdapter {
	return &snapshotAdapter{
		source: c,
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", c.Name()),
			c.Help(),
			[]string{c.Label()}, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (a *snapshotAdapter) Describe(ch chan<- *prometheus.Desc) {
	ch <- a.desc
}

// Collect implements prometheus.Collector.
func (a *snapshotAdapter) Collect(ch chan<- prometheus.Metric) {
	values := a.source.Snapshot()
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ch <- prometheus.MustNewConstMetric(a.desc, prometheus.GaugeValue, float64(values[k]), k)
	}
}

// FuncCollector is a SnapshotCollector backed by a function.
type FuncCollector struct {
	MetricName string
	MetricHelp string
	LabelName  string
	Fn         func() map[string]int64
}

func (f *FuncCollector) Name() string               { return f.MetricName }
func (f *FuncCollector) Help() string               { return f.MetricHelp }
func (f *FuncCollector) Label() string              { return f.LabelName }
func (f *FuncCollector) Snapshot() map[string]int64 { return f.Fn() }

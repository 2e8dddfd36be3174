// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"sync"

	"github.com/vechain/hiring/log"
	"github.com/vechain/hiring/metrics"
)

var metricEvents = metrics.LazyLoadCounterVec("events_count", []string{"module", "event"})

// Event is a domain event emitted by an engine.
type Event interface {
	Module() string
	Name() string
}

// Sink receives events. Delivery is fire-and-forget.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(Event)

func (f SinkFunc) Emit(ev Event) { f(ev) }

// Noop drops every event.
var Noop Sink = SinkFunc(func(Event) {})

// Fanout delivers every event to all sinks, in order.
func Fanout(sinks ...Sink) Sink {
	return SinkFunc(func(ev Event) {
		for _, s := range sinks {
			s.Emit(ev)
		}
	})
}

// Recorder keeps emitted events in memory.
type Recorder struct {
	lock   sync.Mutex
	events []Event
}

func (r *Recorder) Emit(ev Event) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]Event(nil), r.events...)
}

// Drain returns the recorded events and clears the recorder.
func (r *Recorder) Drain() []Event {
	r.lock.Lock()
	defer r.lock.Unlock()
	evs := r.events
	r.events = nil
	return evs
}

// Names returns the names of the recorded events.
func (r *Recorder) Names() []string {
	evs := r.Events()
	names := make([]string, 0, len(evs))
	for _, ev := range evs {
		names = append(names, ev.Name())
	}
	return names
}

// LogSink logs events at debug level and counts them.
type LogSink struct {
	logger log.Logger
}

func NewLogSink(logger log.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Emit(ev Event) {
	metricEvents().AddWithLabel(1, map[string]string{"module": ev.Module(), "event": ev.Name()})
	s.logger.Debug("event", "module", ev.Module(), "name", ev.Name(), "data", ev)
}

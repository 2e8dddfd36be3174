// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"github.com/vechain/hiring/builtin/events"
)

// eventBuffer holds the events of the running extrinsic until it succeeds.
type eventBuffer struct {
	events []events.Event
}

func (b *eventBuffer) Emit(ev events.Event) {
	b.events = append(b.events, ev)
}

func (b *eventBuffer) mark() int {
	return len(b.events)
}

func (b *eventBuffer) truncate(mark int) {
	clear(b.events[mark:])
	b.events = b.events[:mark]
}

func (b *eventBuffer) flush(sink events.Sink) {
	for _, ev := range b.events {
		sink.Emit(ev)
	}
	clear(b.events)
	b.events = b.events[:0]
}

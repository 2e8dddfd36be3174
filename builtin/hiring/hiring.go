// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package hiring

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/vechain/hiring/builtin/events"
	"github.com/vechain/hiring/builtin/stake"
	"github.com/vechain/hiring/builtin/storage"
	"github.com/vechain/hiring/log"
	"github.com/vechain/hiring/thor"
)

var logger = log.WithContext("pkg", "hiring")

func SetLogger(l log.Logger) {
	logger = l
}

// ApplicationDeactivatedHandler is called once an application becomes inactive.
type ApplicationDeactivatedHandler func(block thor.BlockNumber, id ApplicationID, app *Application)

// Module keeps openings and applications.
type Module struct {
	openings            *storage.Mapping[OpeningID, *Opening]
	openingsCreated     *storage.Raw[uint64]
	applications        *storage.Mapping[ApplicationID, *Application]
	applicationsCreated *storage.Raw[uint64]
	applicationByStake  *storage.Mapping[stake.StakeID, ApplicationID]
	lastFinalized       *storage.Raw[uint64] // block+1, zero until the first finalize

	stakes        StakeHandler
	sink          events.Sink
	onDeactivated ApplicationDeactivatedHandler
}

// New creates the module. Stakes are created and released through stakes.
func New(sctx *storage.Context, stakes StakeHandler, sink events.Sink) *Module {
	if sink == nil {
		sink = events.Noop
	}
	return &Module{
		openings:            storage.NewMapping[OpeningID, *Opening](sctx, "openings"),
		openingsCreated:     storage.NewRaw[uint64](sctx, "openings-created"),
		applications:        storage.NewMapping[ApplicationID, *Application](sctx, "applications"),
		applicationsCreated: storage.NewRaw[uint64](sctx, "applications-created"),
		applicationByStake:  storage.NewMapping[stake.StakeID, ApplicationID](sctx, "application-by-stake"),
		lastFinalized:       storage.NewRaw[uint64](sctx, "last-finalized"),
		stakes:              stakes,
		sink:                sink,
	}
}

func (m *Module) SetApplicationDeactivatedHandler(h ApplicationDeactivatedHandler) {
	m.onDeactivated = h
}

//
// Getters - no state change
//

// OpeningByID returns the opening, or ErrOpeningDoesNotExist.
func (m *Module) OpeningByID(id OpeningID) (*Opening, error) {
	o, err := m.openings.Get(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get opening")
	}
	if o == nil {
		return nil, ErrOpeningDoesNotExist
	}
	return o, nil
}

func (m *Module) OpeningExists(id OpeningID) (bool, error) {
	return m.openings.Exists(id)
}

// ApplicationByID returns the application, or ErrApplicationDoesNotExist.
func (m *Module) ApplicationByID(id ApplicationID) (*Application, error) {
	a, err := m.applications.Get(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get application")
	}
	if a == nil {
		return nil, ErrApplicationDoesNotExist
	}
	return a, nil
}

func (m *Module) ApplicationExists(id ApplicationID) (bool, error) {
	return m.applications.Exists(id)
}

// ApplicationIDByStakingID returns the application owning the stake.
func (m *Module) ApplicationIDByStakingID(id stake.StakeID) (ApplicationID, bool, error) {
	exists, err := m.applicationByStake.Exists(id)
	if err != nil || !exists {
		return 0, false, err
	}
	appID, err := m.applicationByStake.Get(id)
	if err != nil {
		return 0, false, errors.Wrap(err, "failed to get application by stake")
	}
	return appID, true, nil
}

// CountOpeningsByStage counts the openings per stage.
func (m *Module) CountOpeningsByStage() (map[string]int64, error) {
	counts := map[string]int64{
		"waiting-to-begin":             0,
		AcceptingApplications.String(): 0,
		ReviewPeriod.String():          0,
		Deactivated.String():           0,
	}
	err := m.openings.Iterate(func(_ []byte, o *Opening) (bool, error) {
		counts[o.Stage.String()]++
		return true, nil
	})
	return counts, err
}

// CountApplicationsByStage counts the applications per stage.
func (m *Module) CountApplicationsByStage() (map[string]int64, error) {
	counts := map[string]int64{
		ApplicationActive.String():    0,
		ApplicationUnstaking.String(): 0,
		ApplicationInactive.String():  0,
	}
	err := m.applications.Iterate(func(_ []byte, a *Application) (bool, error) {
		counts[a.Stage.Kind.String()]++
		return true, nil
	})
	return counts, err
}

func (m *Module) setOpening(id OpeningID, o *Opening) error {
	if err := m.openings.Set(id, o); err != nil {
		return errors.Wrap(err, "failed to set opening")
	}
	return nil
}

func (m *Module) setApplication(id ApplicationID, a *Application) error {
	if a.Stage.Kind == ApplicationInactive && a.HasStakes() {
		panic(fmt.Sprintf("application %d is inactive but still references stakes", id))
	}
	if err := m.applications.Set(id, a); err != nil {
		return errors.Wrap(err, "failed to set application")
	}
	return nil
}

func (m *Module) emit(ev events.Event) {
	metricHiringEvents().AddWithLabel(1, map[string]string{"event": ev.Name()})
	m.sink.Emit(ev)
}

func nextID(counter *storage.Raw[uint64]) (uint64, error) {
	next, err := counter.Get()
	if err != nil {
		return 0, err
	}
	return next, counter.Upsert(next + 1)
}

//
// Application counters of an opening. An underflow is a bookkeeping bug.
//

func (s *OpeningStage) checkCounters(id OpeningID) {
	total := uint64(s.ActiveApplicationCount) + uint64(s.UnstakingApplicationCount) + uint64(s.DeactivatedApplicationCount)
	if total != uint64(len(s.ApplicationsAdded)) {
		panic(fmt.Sprintf("opening %d: application counters sum to %d, %d added", id, total, len(s.ApplicationsAdded)))
	}
}

func decrement(counter *uint32, name string) {
	if *counter == 0 {
		panic(fmt.Sprintf("%s application count underflow", name))
	}
	*counter--
}

func (s *OpeningStage) activeToUnstaking() {
	decrement(&s.ActiveApplicationCount, "active")
	s.UnstakingApplicationCount++
}

func (s *OpeningStage) activeToDeactivated() {
	decrement(&s.ActiveApplicationCount, "active")
	s.DeactivatedApplicationCount++
}

func (s *OpeningStage) unstakingToDeactivated() {
	decrement(&s.UnstakingApplicationCount, "unstaking")
	s.DeactivatedApplicationCount++
}

// Package match holds the match lifecycle and the history of submitted
// result sheets. Like the ledger, a Machine relies on its owner for
// serialization.
package match

import (
	"fmt"
	"slices"
	"time"

	"esports-scoreboard/internal/domain"
	"esports-scoreboard/internal/ledger"
	"esports-scoreboard/internal/scoring"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

type Machine struct {
	state   domain.MatchState
	history []domain.MatchRecord
	now     func() time.Time
}

func NewMachine(clock func() time.Time) *Machine {
	if clock == nil {
		clock = time.Now
	}
	m := &Machine{now: clock}
	m.Reset()
	return m
}

func (m *Machine) State() domain.MatchState {
	return copyState(m.state)
}

// Start begins the next match from any state.
func (m *Machine) Start() domain.MatchState {
	now := m.now()
	m.state.MatchNumber++
	m.state.State = domain.MatchLive
	m.state.StartTime = &now
	m.state.EndTime = nil
	return m.State()
}

// SetState moves to target without transition checks. Entering LIVE stamps
// the start time and entering COMPLETED stamps the end time.
func (m *Machine) SetState(target domain.MatchStatus) (domain.MatchState, error) {
	if !target.Valid() {
		return domain.MatchState{}, domain.NewValidationError(domain.ErrCodeInvalidState,
			fmt.Sprintf("unknown match state %q", target))
	}
	m.transition(target)
	return m.State(), nil
}

func (m *Machine) transition(target domain.MatchStatus) {
	now := m.now()
	m.state.State = target
	switch target {
	case domain.MatchLive:
		m.state.StartTime = &now
	case domain.MatchCompleted:
		m.state.EndTime = &now
	}
}

// Submit validates the sheet, applies every entry to the ledger, records the
// match under the current match number and completes the match. Nothing is
// changed when validation fails.
func (m *Machine) Submit(l *ledger.Ledger, results []domain.ResultEntry) (domain.MatchRecord, error) {
	if err := scoring.ValidateResultSet(results); err != nil {
		return domain.MatchRecord{}, err
	}

	points := make([]domain.MatchPoints, len(results))
	for i, r := range results {
		p, err := scoring.MatchPoints(r.Placement, r.Kills)
		if err != nil {
			return domain.MatchRecord{}, err
		}
		points[i] = p
	}

	id, err := gonanoid.New()
	if err != nil {
		return domain.MatchRecord{}, fmt.Errorf("failed to generate match id: %w", err)
	}

	record := domain.MatchRecord{
		ID:          id,
		MatchNumber: m.state.MatchNumber,
		Timestamp:   m.now(),
		Results:     make([]domain.ScoredResult, 0, len(results)),
	}
	for i, r := range results {
		team, _ := l.ResolveOrCreate(r.TeamName)
		if _, err := l.Apply(team.ID, r.Kills, points[i].PlacementPoints, points[i].KillPoints, r.Placement); err != nil {
			return domain.MatchRecord{}, fmt.Errorf("failed to apply result for %s: %w", team.Name, err)
		}
		record.Results = append(record.Results, domain.ScoredResult{
			TeamID:      team.ID,
			TeamName:    team.Name,
			Kills:       r.Kills,
			Placement:   r.Placement,
			MatchPoints: points[i],
		})
	}

	m.history = append(m.history, record)
	m.transition(domain.MatchCompleted)
	return copyRecord(record), nil
}

// UndoLast pops the latest record. Ledger totals are left as they are.
func (m *Machine) UndoLast() (domain.MatchRecord, bool) {
	if len(m.history) == 0 {
		return domain.MatchRecord{}, false
	}
	last := m.history[len(m.history)-1]
	m.history = m.history[:len(m.history)-1]
	return last, true
}

func (m *Machine) History() []domain.MatchRecord {
	out := make([]domain.MatchRecord, len(m.history))
	for i, r := range m.history {
		out[i] = copyRecord(r)
	}
	return out
}

// Reset returns to UPCOMING with match number 0 and clears history. The
// ledger is reset separately by the caller.
func (m *Machine) Reset() {
	m.state = domain.MatchState{State: domain.MatchUpcoming}
	m.history = nil
}

func copyState(s domain.MatchState) domain.MatchState {
	if s.StartTime != nil {
		t := *s.StartTime
		s.StartTime = &t
	}
	if s.EndTime != nil {
		t := *s.EndTime
		s.EndTime = &t
	}
	return s
}

func copyRecord(r domain.MatchRecord) domain.MatchRecord {
	r.Results = slices.Clone(r.Results)
	return r
}

// Package ledger keeps the tournament roster and each team's cumulative
// statistics. A Ledger is not safe for concurrent use; the owning service
// serializes access.
package ledger

import (
	"slices"
	"strings"

	"esports-scoreboard/internal/domain"
)

type Ledger struct {
	teams  []*domain.Team
	byKey  map[string]*domain.Team
	byID   map[int]*domain.Team
	nextID int
}

func New() *Ledger {
	l := &Ledger{}
	l.Reset()
	return l
}

// ResolveOrCreate returns the team whose name matches case-insensitively,
// creating it with the next id when absent. The name is trimmed first.
func (l *Ledger) ResolveOrCreate(name string) (domain.Team, bool) {
	key := domain.NameKey(name)
	if t, ok := l.byKey[key]; ok {
		return *t, false
	}

	t := &domain.Team{
		ID:                  l.nextID,
		Name:                strings.TrimSpace(name),
		QualificationStatus: domain.QualificationPending,
	}
	l.nextID++
	l.teams = append(l.teams, t)
	l.byKey[key] = t
	l.byID[t.ID] = t
	return *t, true
}

// Register is manual team registration; it rejects blank names.
func (l *Ledger) Register(name string) (domain.Team, bool, error) {
	if strings.TrimSpace(name) == "" {
		return domain.Team{}, false, domain.NewValidationError(domain.ErrCodeMissingTeamName, "team name is required")
	}
	t, created := l.ResolveOrCreate(name)
	return t, created, nil
}

// Apply adds one match result to a team's counters. It is the only path
// that changes cumulative statistics.
func (l *Ledger) Apply(teamID, kills, placementPoints, killPoints, placement int) (domain.Team, error) {
	t, ok := l.byID[teamID]
	if !ok {
		return domain.Team{}, &domain.NotFoundError{Resource: "team", ID: teamID}
	}

	t.MatchesPlayed++
	t.TotalKills += kills
	t.TotalPlacementPoints += placementPoints
	t.TotalKillPoints += killPoints
	t.TotalPoints = t.TotalPlacementPoints + t.TotalKillPoints
	if placement == 1 {
		t.FirstPlaceFinishes++
	}
	return *t, nil
}

// SetQualification re-derives every team's status: ids in qualified become
// QUALIFIED, ids in eliminated become ELIMINATED, all others PENDING.
func (l *Ledger) SetQualification(qualified, eliminated []int) {
	for _, t := range l.teams {
		switch {
		case slices.Contains(qualified, t.ID):
			t.QualificationStatus = domain.QualificationQualified
		case slices.Contains(eliminated, t.ID):
			t.QualificationStatus = domain.QualificationEliminated
		default:
			t.QualificationStatus = domain.QualificationPending
		}
	}
}

func (l *Ledger) Team(id int) (domain.Team, error) {
	t, ok := l.byID[id]
	if !ok {
		return domain.Team{}, &domain.NotFoundError{Resource: "team", ID: id}
	}
	return *t, nil
}

func (l *Ledger) TeamByName(name string) (domain.Team, bool) {
	t, ok := l.byKey[domain.NameKey(name)]
	if !ok {
		return domain.Team{}, false
	}
	return *t, true
}

// Teams returns copies of all teams in insertion order.
func (l *Ledger) Teams() []domain.Team {
	out := make([]domain.Team, len(l.teams))
	for i, t := range l.teams {
		out[i] = *t
	}
	return out
}

func (l *Ledger) Len() int {
	return len(l.teams)
}

// Reset clears the roster and restarts ids at 1.
func (l *Ledger) Reset() {
	l.teams = nil
	l.byKey = make(map[string]*domain.Team)
	l.byID = make(map[int]*domain.Team)
	l.nextID = 1
}

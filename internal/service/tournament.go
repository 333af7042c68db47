package service

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"esports-scoreboard/internal/config"
	"esports-scoreboard/internal/constants"
	"esports-scoreboard/internal/domain"
	"esports-scoreboard/internal/ledger"
	"esports-scoreboard/internal/match"
	"esports-scoreboard/internal/ranking"

	"github.com/rs/zerolog"
)

// Publisher receives the events produced by each committed command. It must
// not block; delivery happens elsewhere.
type Publisher interface {
	Publish(events ...domain.Event)
}

// UndoResult describes an undo. Record is nil when history was empty.
type UndoResult struct {
	Record  *domain.MatchRecord `json:"record"`
	Undone  bool                `json:"undone"`
	Warning string              `json:"warning"`
}

// TournamentService is the single owner of the ledger and match machine.
// Commands hold the write lock for validation, commit and publishing, so
// events leave in commit order and readers never see a half-applied sheet.
type TournamentService struct {
	mu                 sync.RWMutex
	ledger             *ledger.Ledger
	machine            *match.Machine
	publisher          Publisher
	qualificationLimit int
	now                func() time.Time
	logger             zerolog.Logger
}

func NewTournamentService(publisher Publisher, cfg *config.Config, logger zerolog.Logger) *TournamentService {
	return newTournamentService(publisher, cfg.QualificationLimit, time.Now, logger)
}

func newTournamentService(publisher Publisher, qualificationLimit int, now func() time.Time, logger zerolog.Logger) *TournamentService {
	return &TournamentService{
		ledger:             ledger.New(),
		machine:            match.NewMachine(now),
		publisher:          publisher,
		qualificationLimit: qualificationLimit,
		now:                now,
		logger:             logger,
	}
}

func (s *TournamentService) StartMatch() (domain.MatchState, []domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.machine.Start()
	events := s.publish(s.statusEvent())

	s.logger.Info().Int("match_number", state.MatchNumber).Msg("match started")
	return state, events
}

func (s *TournamentService) SetMatchState(target domain.MatchStatus) (domain.MatchState, []domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.machine.SetState(target)
	if err != nil {
		s.logger.Warn().Err(err).Str("target", string(target)).Msg("rejected match state change")
		return domain.MatchState{}, nil, err
	}
	events := s.publish(s.statusEvent())

	s.logger.Info().
		Str("state", string(state.State)).
		Int("match_number", state.MatchNumber).
		Msg("match state changed")
	return state, events, nil
}

// SubmitResults scores a result sheet against the current match. Rejected
// sheets change nothing and emit nothing.
func (s *TournamentService) SubmitResults(results []domain.ResultEntry) (domain.MatchRecord, []domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.machine.Submit(s.ledger, results)
	if err != nil {
		s.logger.Warn().Err(err).Int("entries", len(results)).Msg("rejected match results")
		return domain.MatchRecord{}, nil, err
	}

	submitted := record
	events := s.publish(
		domain.Event{Type: domain.EventMatchSubmitted, Timestamp: s.now(), Submission: &submitted},
		s.leaderboardEvent(),
		s.statusEvent(),
	)

	s.logger.Info().
		Str("match_id", record.ID).
		Int("match_number", record.MatchNumber).
		Int("entries", len(record.Results)).
		Int("teams", s.ledger.Len()).
		Msg("match results submitted")
	return record, events, nil
}

// UndoLastMatch drops the latest history record only; team totals stay as
// they are, which is why the result always carries a warning.
func (s *TournamentService) UndoLastMatch() UndoResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.machine.UndoLast()
	if !ok {
		s.logger.Info().Msg("undo requested with empty history")
		return UndoResult{Warning: constants.UndoWarning}
	}

	s.logger.Warn().
		Str("match_id", record.ID).
		Int("match_number", record.MatchNumber).
		Msg("last match removed from history, team totals unchanged")
	return UndoResult{Record: &record, Undone: true, Warning: constants.UndoWarning}
}

// UpdateQualification marks the top limit teams qualified and the rest
// eliminated. A nil limit uses the configured default.
func (s *TournamentService) UpdateQualification(limit *int) (domain.Qualification, []domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.qualificationLimit
	if limit != nil {
		l = *limit
	}

	q, err := ranking.Qualify(s.ledger.Teams(), l)
	if err != nil {
		s.logger.Warn().Err(err).Int("limit", l).Msg("rejected qualification update")
		return domain.Qualification{}, nil, err
	}
	s.ledger.SetQualification(refIDs(q.Qualified), refIDs(q.Eliminated))

	events := s.publish(
		domain.Event{Type: domain.EventQualificationChanged, Timestamp: s.now(), Qualification: &q},
		s.leaderboardEvent(),
	)

	s.logger.Info().
		Int("limit", l).
		Int("qualified", len(q.Qualified)).
		Int("eliminated", len(q.Eliminated)).
		Msg("qualification updated")
	return q, events, nil
}

func (s *TournamentService) ResetTournament() []domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.machine.Reset()
	s.ledger.Reset()
	events := s.publish(s.statusEvent(), s.leaderboardEvent())

	s.logger.Warn().Msg("tournament reset")
	return events
}

// RegisterTeam adds a team with zero totals. Registering a name that
// already exists returns that team and emits nothing.
func (s *TournamentService) RegisterTeam(name string) (domain.Team, []domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	team, created, err := s.ledger.Register(name)
	if err != nil {
		return domain.Team{}, nil, err
	}
	if !created {
		s.logger.Debug().Int("team_id", team.ID).Str("team", team.Name).Msg("team already registered")
		return team, nil, nil
	}
	events := s.publish(s.leaderboardEvent())

	s.logger.Info().Int("team_id", team.ID).Str("team", team.Name).Msg("team registered")
	return team, events, nil
}

// BroadcastAudio relays an overlay audio cue. It touches no tournament
// state.
func (s *TournamentService) BroadcastAudio(action domain.AudioAction) ([]domain.Event, error) {
	action.Action = strings.TrimSpace(action.Action)
	if action.Action == "" {
		return nil, domain.NewValidationError(domain.ErrCodeInvalidAudio, "audio action is required")
	}
	if action.Volume < 0 || action.Volume > 1 {
		return nil, domain.NewValidationError(domain.ErrCodeInvalidAudio,
			fmt.Sprintf("volume must be between 0 and 1, got %g", action.Volume))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	events := s.publish(domain.Event{Type: domain.EventAudioAction, Timestamp: s.now(), Audio: &action})

	s.logger.Debug().Str("action", action.Action).Float64("volume", action.Volume).Msg("audio action broadcast")
	return events, nil
}

func (s *TournamentService) MatchState() domain.MatchState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.machine.State()
}

func (s *TournamentService) Leaderboard() []domain.RankedTeam {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ranking.Rank(s.ledger.Teams())
}

func (s *TournamentService) History() []domain.MatchRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.machine.History()
}

func (s *TournamentService) Stats() domain.StatsSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ranking.Summarize(s.ledger.Teams())
}

func (s *TournamentService) Teams() []domain.Team {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Teams()
}

func (s *TournamentService) Team(id int) (domain.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Team(id)
}

// Snapshot reads the leaderboard, match state and stats under one lock.
func (s *TournamentService) Snapshot() domain.Snapshot {
	return s.SnapshotTop(0)
}

// SnapshotTop is Snapshot with the leaderboard cut to the first n teams.
// n <= 0 keeps every team. Stats always cover the whole field.
func (s *TournamentService) SnapshotTop(n int) domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	teams := s.ledger.Teams()
	board := ranking.Rank(teams)
	if n > 0 {
		board = ranking.Top(teams, n)
	}
	return domain.Snapshot{
		Leaderboard: board,
		MatchState:  s.machine.State(),
		Stats:       ranking.Summarize(teams),
		TakenAt:     s.now(),
	}
}

// Watch registers a viewer through subscribe and returns the initial-data
// frame it should receive first. Both happen under the read lock, so no
// command can commit between the snapshot and the subscription.
func (s *TournamentService) Watch(subscribe func() (string, <-chan domain.Event)) (domain.Event, string, <-chan domain.Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := s.machine.State()
	initial := domain.Event{
		Type:        domain.EventInitialData,
		Timestamp:   s.now(),
		Leaderboard: ranking.Rank(s.ledger.Teams()),
		MatchState:  &state,
	}
	id, ch := subscribe()
	return initial, id, ch
}

// publish must be called with the write lock held.
func (s *TournamentService) publish(events ...domain.Event) []domain.Event {
	if s.publisher != nil {
		s.publisher.Publish(events...)
	}
	return events
}

func (s *TournamentService) statusEvent() domain.Event {
	state := s.machine.State()
	return domain.Event{Type: domain.EventMatchStatusChanged, Timestamp: s.now(), MatchState: &state}
}

func (s *TournamentService) leaderboardEvent() domain.Event {
	return domain.Event{
		Type:        domain.EventLeaderboardChanged,
		Timestamp:   s.now(),
		Leaderboard: ranking.Rank(s.ledger.Teams()),
	}
}

func refIDs(refs []domain.TeamRef) []int {
	ids := make([]int, len(refs))
	for i, r := range refs {
		ids[i] = r.ID
	}
	return ids
}

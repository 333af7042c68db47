package service

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"esports-scoreboard/internal/constants"
	"esports-scoreboard/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (p *recordingPublisher) Publish(events ...domain.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
}

func (p *recordingPublisher) Types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

func (p *recordingPublisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

func newTestService() (*TournamentService, *recordingPublisher) {
	pub := &recordingPublisher{}
	return newTournamentService(pub, constants.DefaultQualificationLimit, func() time.Time { return fixedTime }, zerolog.Nop()), pub
}

func types(events []domain.Event) []domain.EventType {
	out := make([]domain.EventType, len(events))
	for i, e := range events {
		out[i] = e.Type
	}
	return out
}

func TestStartMatch(t *testing.T) {
	svc, pub := newTestService()

	state, events := svc.StartMatch()
	assert.Equal(t, domain.MatchLive, state.State)
	assert.Equal(t, 1, state.MatchNumber)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventMatchStatusChanged, events[0].Type)
	assert.Equal(t, 1, events[0].MatchState.MatchNumber)
	assert.Equal(t, fixedTime, events[0].Timestamp)
	assert.Equal(t, []domain.EventType{domain.EventMatchStatusChanged}, pub.Types())
}

func TestSetMatchState(t *testing.T) {
	svc, pub := newTestService()

	state, events, err := svc.SetMatchState(domain.MatchUpdating)
	require.NoError(t, err)
	assert.Equal(t, domain.MatchUpdating, state.State)
	assert.Len(t, events, 1)

	pub.Reset()
	for _, target := range []domain.MatchStatus{"PAUSED", "live", "updating", " LIVE", ""} {
		_, events, err = svc.SetMatchState(target)
		require.Error(t, err, target)
		assert.True(t, domain.HasCode(err, domain.ErrCodeInvalidState), target)
		assert.Nil(t, events)
	}
	assert.Empty(t, pub.Types())
	assert.Equal(t, domain.MatchUpdating, svc.MatchState().State)
}

func TestSubmitResults(t *testing.T) {
	svc, pub := newTestService()
	svc.StartMatch()
	pub.Reset()

	record, events, err := svc.SubmitResults([]domain.ResultEntry{
		{TeamName: "Alpha", Kills: 3, Placement: 1},
		{TeamName: "Bravo", Kills: 8, Placement: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, record.MatchNumber)

	want := []domain.EventType{domain.EventMatchSubmitted, domain.EventLeaderboardChanged, domain.EventMatchStatusChanged}
	assert.Equal(t, want, types(events))
	assert.Equal(t, want, pub.Types())

	require.NotNil(t, events[0].Submission)
	assert.Equal(t, record.ID, events[0].Submission.ID)
	require.Len(t, events[1].Leaderboard, 2)
	assert.Equal(t, "Bravo", events[1].Leaderboard[0].Name)
	assert.Equal(t, 14, events[1].Leaderboard[0].TotalPoints)
	assert.Equal(t, domain.MatchCompleted, events[2].MatchState.State)

	board := svc.Leaderboard()
	require.Len(t, board, 2)
	assert.Equal(t, 1, board[0].Rank)
	assert.Equal(t, "Alpha", board[1].Name)
	assert.Equal(t, 13, board[1].TotalPoints)
	assert.Len(t, svc.History(), 1)
}

func TestSubmitResults_RejectedSheetChangesNothing(t *testing.T) {
	svc, pub := newTestService()
	svc.StartMatch()
	pub.Reset()

	_, events, err := svc.SubmitResults([]domain.ResultEntry{
		{TeamName: "Alpha", Kills: 3, Placement: 1},
		{TeamName: "alpha", Kills: 1, Placement: 2},
	})
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	assert.True(t, domain.HasCode(err, domain.ErrCodeDuplicateTeamName))
	assert.Nil(t, events)
	assert.Empty(t, pub.Types())
	assert.Empty(t, svc.Teams())
	assert.Empty(t, svc.History())
	assert.Equal(t, domain.MatchLive, svc.MatchState().State)
}

func TestUndoLastMatch(t *testing.T) {
	svc, pub := newTestService()

	res := svc.UndoLastMatch()
	assert.False(t, res.Undone)
	assert.Nil(t, res.Record)
	assert.Equal(t, constants.UndoWarning, res.Warning)

	svc.StartMatch()
	record, _, err := svc.SubmitResults([]domain.ResultEntry{{TeamName: "Alpha", Kills: 3, Placement: 1}})
	require.NoError(t, err)
	pub.Reset()

	res = svc.UndoLastMatch()
	require.True(t, res.Undone)
	assert.Equal(t, record.ID, res.Record.ID)
	assert.Equal(t, constants.UndoWarning, res.Warning)
	assert.Empty(t, pub.Types())
	assert.Empty(t, svc.History())

	board := svc.Leaderboard()
	require.Len(t, board, 1)
	assert.Equal(t, 13, board[0].TotalPoints)
}

func TestUpdateQualification(t *testing.T) {
	svc, pub := newTestService()
	svc.StartMatch()
	results := make([]domain.ResultEntry, 10)
	for i := range results {
		results[i] = domain.ResultEntry{TeamName: string(rune('A' + i)), Kills: 0, Placement: i + 1}
	}
	_, _, err := svc.SubmitResults(results)
	require.NoError(t, err)
	pub.Reset()

	q, events, err := svc.UpdateQualification(nil)
	require.NoError(t, err)
	assert.Len(t, q.Qualified, 8)
	assert.Len(t, q.Eliminated, 2)
	assert.Equal(t, 8, q.QualificationLimit)
	assert.Equal(t, []domain.EventType{domain.EventQualificationChanged, domain.EventLeaderboardChanged}, types(events))

	board := svc.Leaderboard()
	assert.Equal(t, domain.QualificationQualified, board[0].QualificationStatus)
	assert.Equal(t, domain.QualificationEliminated, board[9].QualificationStatus)

	zero := 0
	q, _, err = svc.UpdateQualification(&zero)
	require.NoError(t, err)
	assert.Empty(t, q.Qualified)
	for _, rt := range svc.Leaderboard() {
		assert.Equal(t, domain.QualificationEliminated, rt.QualificationStatus)
	}

	negative := -1
	_, events, err = svc.UpdateQualification(&negative)
	assert.True(t, domain.HasCode(err, domain.ErrCodeInvalidLimit))
	assert.Nil(t, events)
}

func TestResetTournament(t *testing.T) {
	svc, pub := newTestService()
	svc.StartMatch()
	_, _, err := svc.SubmitResults([]domain.ResultEntry{{TeamName: "Alpha", Kills: 1, Placement: 1}})
	require.NoError(t, err)
	pub.Reset()

	events := svc.ResetTournament()
	assert.Equal(t, []domain.EventType{domain.EventMatchStatusChanged, domain.EventLeaderboardChanged}, types(events))
	assert.Empty(t, events[1].Leaderboard)
	data, err := json.Marshal(events[1])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"leaderboard":[]`)

	assert.Equal(t, domain.MatchState{State: domain.MatchUpcoming}, svc.MatchState())
	assert.Empty(t, svc.Teams())
	assert.Empty(t, svc.History())
	assert.Equal(t, domain.StatsSummary{}, svc.Stats())

	team, _, err := svc.RegisterTeam("Charlie")
	require.NoError(t, err)
	assert.Equal(t, 1, team.ID)
}

func TestRegisterTeam(t *testing.T) {
	svc, pub := newTestService()

	team, events, err := svc.RegisterTeam("  Delta ")
	require.NoError(t, err)
	assert.Equal(t, "Delta", team.Name)
	assert.Equal(t, []domain.EventType{domain.EventLeaderboardChanged}, types(events))

	again, events, err := svc.RegisterTeam("DELTA")
	require.NoError(t, err)
	assert.Equal(t, team.ID, again.ID)
	assert.Empty(t, events)
	assert.Len(t, pub.Types(), 1)

	_, _, err = svc.RegisterTeam("")
	assert.True(t, domain.HasCode(err, domain.ErrCodeMissingTeamName))

	got, err := svc.Team(team.ID)
	require.NoError(t, err)
	assert.Equal(t, "Delta", got.Name)

	_, err = svc.Team(42)
	assert.True(t, domain.IsNotFound(err))
}

func TestBroadcastAudio(t *testing.T) {
	svc, _ := newTestService()

	events, err := svc.BroadcastAudio(domain.AudioAction{Action: "play", Volume: 0.5, Loop: true})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventAudioAction, events[0].Type)
	assert.Equal(t, "play", events[0].Audio.Action)

	_, err = svc.BroadcastAudio(domain.AudioAction{Action: " "})
	assert.True(t, domain.HasCode(err, domain.ErrCodeInvalidAudio))

	_, err = svc.BroadcastAudio(domain.AudioAction{Action: "play", Volume: 1.5})
	assert.True(t, domain.HasCode(err, domain.ErrCodeInvalidAudio))
}

func TestQueriesAndSnapshot(t *testing.T) {
	svc, _ := newTestService()
	svc.StartMatch()
	_, _, err := svc.SubmitResults([]domain.ResultEntry{
		{TeamName: "Alpha", Kills: 2, Placement: 3},
		{TeamName: "Bravo", Kills: 4, Placement: 1},
		{TeamName: "Charlie", Kills: 0, Placement: 16},
	})
	require.NoError(t, err)

	stats := svc.Stats()
	assert.Equal(t, 3, stats.TotalTeams)
	assert.Equal(t, 1, stats.TotalMatches)
	assert.Equal(t, 6, stats.TotalKills)
	assert.InDelta(t, 7.0, stats.AvgPointsPerTeam, 0.001)

	top := svc.SnapshotTop(2)
	require.Len(t, top.Leaderboard, 2)
	assert.Equal(t, "Bravo", top.Leaderboard[0].Name)
	assert.Equal(t, 2, top.Leaderboard[1].Rank)
	assert.Equal(t, stats, top.Stats)
	assert.Len(t, svc.SnapshotTop(10).Leaderboard, 3)
	assert.Len(t, svc.SnapshotTop(-1).Leaderboard, 3)

	snap := svc.Snapshot()
	assert.Equal(t, fixedTime, snap.TakenAt)
	assert.Len(t, snap.Leaderboard, 3)
	assert.Equal(t, 1, snap.MatchState.MatchNumber)
	assert.Equal(t, stats, snap.Stats)
}

func TestWatch_InitialFrame(t *testing.T) {
	svc, _ := newTestService()
	svc.StartMatch()
	_, _, err := svc.RegisterTeam("Alpha")
	require.NoError(t, err)

	ch := make(chan domain.Event)
	initial, id, got := svc.Watch(func() (string, <-chan domain.Event) { return "viewer-1", ch })
	assert.Equal(t, "viewer-1", id)
	assert.Equal(t, (<-chan domain.Event)(ch), got)
	assert.Equal(t, domain.EventInitialData, initial.Type)
	require.NotNil(t, initial.MatchState)
	assert.Equal(t, 1, initial.MatchState.MatchNumber)
	assert.Len(t, initial.Leaderboard, 1)
}

func TestConcurrentReadersSeeWholeSubmissions(t *testing.T) {
	svc, _ := newTestService()
	svc.StartMatch()

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			board := svc.Leaderboard()
			if len(board) == 0 {
				continue
			}
			played := board[0].MatchesPlayed
			for _, rt := range board {
				assert.Equal(t, played, rt.MatchesPlayed)
			}
		}
	}()

	for range 20 {
		_, _, err := svc.SubmitResults([]domain.ResultEntry{
			{TeamName: "Alpha", Kills: 1, Placement: 1},
			{TeamName: "Bravo", Kills: 1, Placement: 2},
			{TeamName: "Charlie", Kills: 1, Placement: 3},
		})
		require.NoError(t, err)
	}
	close(stop)
	wg.Wait()
}

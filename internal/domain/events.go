package domain

import (
	"encoding/json"
	"time"
)

type EventType string

const (
	EventInitialData          EventType = "initial-data"
	EventLeaderboardChanged   EventType = "leaderboard-changed"
	EventMatchStatusChanged   EventType = "match-status-changed"
	EventQualificationChanged EventType = "qualification-changed"
	EventMatchSubmitted       EventType = "match-submitted"
	EventAudioAction          EventType = "audio-action"
)

// Event is a state change relayed to viewers. Each event carries a full
// snapshot of the part of the state it describes, never a delta; only the
// field matching Type is set, except initial-data which carries both the
// leaderboard and the match state.
type Event struct {
	Type          EventType      `json:"type"`
	Timestamp     time.Time      `json:"timestamp"`
	Leaderboard   []RankedTeam   `json:"leaderboard,omitempty"`
	MatchState    *MatchState    `json:"matchState,omitempty"`
	Qualification *Qualification `json:"qualification,omitempty"`
	Submission    *MatchRecord   `json:"submission,omitempty"`
	Audio         *AudioAction   `json:"audio,omitempty"`
}

// MatchNumber returns the match number the event refers to, or 0.
func (e Event) MatchNumber() int {
	switch {
	case e.Submission != nil:
		return e.Submission.MatchNumber
	case e.MatchState != nil:
		return e.MatchState.MatchNumber
	}
	return 0
}

// MarshalJSON always writes the leaderboard for leaderboard-changed and
// initial-data, as [] when no teams exist.
func (e Event) MarshalJSON() ([]byte, error) {
	type plain Event
	if e.Type != EventLeaderboardChanged && e.Type != EventInitialData {
		return json.Marshal(plain(e))
	}

	board := e.Leaderboard
	if board == nil {
		board = []RankedTeam{}
	}
	return json.Marshal(struct {
		plain
		Leaderboard []RankedTeam `json:"leaderboard"`
	}{plain(e), board})
}

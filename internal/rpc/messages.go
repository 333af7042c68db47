package rpc

import "esports-scoreboard/internal/domain"

type Empty struct{}

type GetMatchStateResponse struct {
	MatchState domain.MatchState `json:"matchState"`
}

// GetLeaderboardRequest.Top limits the rows returned; zero means all.
type GetLeaderboardRequest struct {
	Top int `json:"top,omitempty"`
}

type GetLeaderboardResponse struct {
	Leaderboard []domain.RankedTeam `json:"leaderboard"`
	Stats       domain.StatsSummary `json:"stats"`
	MatchState  domain.MatchState   `json:"matchState"`
}

type GetHistoryResponse struct {
	History []domain.MatchRecord `json:"history"`
}

type GetStatsResponse struct {
	Stats domain.StatsSummary `json:"stats"`
}

type ListTeamsResponse struct {
	Teams []domain.Team `json:"teams"`
}

type GetTeamRequest struct {
	ID int `json:"id"`
}

type GetTeamResponse struct {
	Team domain.Team `json:"team"`
}

type StartMatchResponse struct {
	MatchState domain.MatchState `json:"matchState"`
}

type SetMatchStateRequest struct {
	State domain.MatchStatus `json:"state"`
}

type SetMatchStateResponse struct {
	MatchState domain.MatchState `json:"matchState"`
}

type SubmitResultsRequest struct {
	Results []domain.ResultEntry `json:"results"`
}

type SubmitResultsResponse struct {
	Record      domain.MatchRecord  `json:"record"`
	Leaderboard []domain.RankedTeam `json:"leaderboard"`
	MatchState  domain.MatchState   `json:"matchState"`
}

type UndoLastMatchResponse struct {
	Record  *domain.MatchRecord `json:"record"`
	Undone  bool                `json:"undone"`
	Warning string              `json:"warning"`
}

// UpdateQualificationRequest.Limit falls back to the server default when nil.
type UpdateQualificationRequest struct {
	Limit *int `json:"limit,omitempty"`
}

type UpdateQualificationResponse struct {
	Qualification domain.Qualification `json:"qualification"`
}

type ResetTournamentResponse struct {
	MatchState domain.MatchState `json:"matchState"`
}

type RegisterTeamRequest struct {
	Name string `json:"name"`
}

type RegisterTeamResponse struct {
	Team    domain.Team `json:"team"`
	Created bool        `json:"created"`
}

type BroadcastAudioRequest struct {
	Audio domain.AudioAction `json:"audio"`
}

type ListEventsRequest struct {
	Type  domain.EventType `json:"type,omitempty"`
	Limit int              `json:"limit,omitempty"`
}

type ListEventsResponse struct {
	Events []domain.ArchivedEvent `json:"events"`
}

type WatchRequest struct{}

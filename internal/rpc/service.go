// Package rpc defines the scoreboard connect service: procedure names,
// request and response messages and the handler mount.
package rpc

import (
	"context"
	"net/http"

	"esports-scoreboard/internal/domain"

	"connectrpc.com/connect"
)

const ServiceName = "scoreboard.v1.ScoreboardService"

const ServicePath = "/" + ServiceName + "/"

const (
	GetMatchStateProcedure       = ServicePath + "GetMatchState"
	GetLeaderboardProcedure      = ServicePath + "GetLeaderboard"
	GetHistoryProcedure          = ServicePath + "GetHistory"
	GetStatsProcedure            = ServicePath + "GetStats"
	ListTeamsProcedure           = ServicePath + "ListTeams"
	GetTeamProcedure             = ServicePath + "GetTeam"
	StartMatchProcedure          = ServicePath + "StartMatch"
	SetMatchStateProcedure       = ServicePath + "SetMatchState"
	SubmitResultsProcedure       = ServicePath + "SubmitResults"
	UndoLastMatchProcedure       = ServicePath + "UndoLastMatch"
	UpdateQualificationProcedure = ServicePath + "UpdateQualification"
	ResetTournamentProcedure     = ServicePath + "ResetTournament"
	RegisterTeamProcedure        = ServicePath + "RegisterTeam"
	BroadcastAudioProcedure      = ServicePath + "BroadcastAudio"
	ListEventsProcedure          = ServicePath + "ListEvents"
	WatchProcedure               = ServicePath + "Watch"
)

// ErrorCodeHeader carries the domain error code on failed calls.
const ErrorCodeHeader = "X-Error-Code"

type ScoreboardServiceHandler interface {
	GetMatchState(context.Context, *connect.Request[Empty]) (*connect.Response[GetMatchStateResponse], error)
	GetLeaderboard(context.Context, *connect.Request[GetLeaderboardRequest]) (*connect.Response[GetLeaderboardResponse], error)
	GetHistory(context.Context, *connect.Request[Empty]) (*connect.Response[GetHistoryResponse], error)
	GetStats(context.Context, *connect.Request[Empty]) (*connect.Response[GetStatsResponse], error)
	ListTeams(context.Context, *connect.Request[Empty]) (*connect.Response[ListTeamsResponse], error)
	GetTeam(context.Context, *connect.Request[GetTeamRequest]) (*connect.Response[GetTeamResponse], error)
	StartMatch(context.Context, *connect.Request[Empty]) (*connect.Response[StartMatchResponse], error)
	SetMatchState(context.Context, *connect.Request[SetMatchStateRequest]) (*connect.Response[SetMatchStateResponse], error)
	SubmitResults(context.Context, *connect.Request[SubmitResultsRequest]) (*connect.Response[SubmitResultsResponse], error)
	UndoLastMatch(context.Context, *connect.Request[Empty]) (*connect.Response[UndoLastMatchResponse], error)
	UpdateQualification(context.Context, *connect.Request[UpdateQualificationRequest]) (*connect.Response[UpdateQualificationResponse], error)
	ResetTournament(context.Context, *connect.Request[Empty]) (*connect.Response[ResetTournamentResponse], error)
	RegisterTeam(context.Context, *connect.Request[RegisterTeamRequest]) (*connect.Response[RegisterTeamResponse], error)
	BroadcastAudio(context.Context, *connect.Request[BroadcastAudioRequest]) (*connect.Response[Empty], error)
	ListEvents(context.Context, *connect.Request[ListEventsRequest]) (*connect.Response[ListEventsResponse], error)
	Watch(context.Context, *connect.Request[WatchRequest], *connect.ServerStream[domain.Event]) error
}

// NewScoreboardServiceHandler mounts every procedure and returns the path
// prefix to register it under.
func NewScoreboardServiceHandler(svc ScoreboardServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(GetMatchStateProcedure, connect.NewUnaryHandler(GetMatchStateProcedure, svc.GetMatchState, opts...))
	mux.Handle(GetLeaderboardProcedure, connect.NewUnaryHandler(GetLeaderboardProcedure, svc.GetLeaderboard, opts...))
	mux.Handle(GetHistoryProcedure, connect.NewUnaryHandler(GetHistoryProcedure, svc.GetHistory, opts...))
	mux.Handle(GetStatsProcedure, connect.NewUnaryHandler(GetStatsProcedure, svc.GetStats, opts...))
	mux.Handle(ListTeamsProcedure, connect.NewUnaryHandler(ListTeamsProcedure, svc.ListTeams, opts...))
	mux.Handle(GetTeamProcedure, connect.NewUnaryHandler(GetTeamProcedure, svc.GetTeam, opts...))
	mux.Handle(StartMatchProcedure, connect.NewUnaryHandler(StartMatchProcedure, svc.StartMatch, opts...))
	mux.Handle(SetMatchStateProcedure, connect.NewUnaryHandler(SetMatchStateProcedure, svc.SetMatchState, opts...))
	mux.Handle(SubmitResultsProcedure, connect.NewUnaryHandler(SubmitResultsProcedure, svc.SubmitResults, opts...))
	mux.Handle(UndoLastMatchProcedure, connect.NewUnaryHandler(UndoLastMatchProcedure, svc.UndoLastMatch, opts...))
	mux.Handle(UpdateQualificationProcedure, connect.NewUnaryHandler(UpdateQualificationProcedure, svc.UpdateQualification, opts...))
	mux.Handle(ResetTournamentProcedure, connect.NewUnaryHandler(ResetTournamentProcedure, svc.ResetTournament, opts...))
	mux.Handle(RegisterTeamProcedure, connect.NewUnaryHandler(RegisterTeamProcedure, svc.RegisterTeam, opts...))
	mux.Handle(BroadcastAudioProcedure, connect.NewUnaryHandler(BroadcastAudioProcedure, svc.BroadcastAudio, opts...))
	mux.Handle(ListEventsProcedure, connect.NewUnaryHandler(ListEventsProcedure, svc.ListEvents, opts...))
	mux.Handle(WatchProcedure, connect.NewServerStreamHandler(WatchProcedure, svc.Watch, opts...))

	return ServicePath, mux
}

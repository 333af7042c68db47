package server

import (
	"context"

	"esports-scoreboard/internal/domain"
	"esports-scoreboard/internal/notify"
	"esports-scoreboard/internal/repository"
	"esports-scoreboard/internal/rpc"
	"esports-scoreboard/internal/service"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
)

type ScoreboardServer struct {
	tournament *service.TournamentService
	hub        *notify.Hub
	events     *repository.EventRepository
	logger     zerolog.Logger
}

func NewScoreboardServer(tournament *service.TournamentService, hub *notify.Hub, events *repository.EventRepository, logger zerolog.Logger) *ScoreboardServer {
	return &ScoreboardServer{tournament: tournament, hub: hub, events: events, logger: logger}
}

var _ rpc.ScoreboardServiceHandler = (*ScoreboardServer)(nil)

func (s *ScoreboardServer) GetMatchState(ctx context.Context, req *connect.Request[rpc.Empty]) (*connect.Response[rpc.GetMatchStateResponse], error) {
	return connect.NewResponse(&rpc.GetMatchStateResponse{MatchState: s.tournament.MatchState()}), nil
}

func (s *ScoreboardServer) GetLeaderboard(ctx context.Context, req *connect.Request[rpc.GetLeaderboardRequest]) (*connect.Response[rpc.GetLeaderboardResponse], error) {
	snap := s.tournament.SnapshotTop(req.Msg.Top)
	return connect.NewResponse(&rpc.GetLeaderboardResponse{
		Leaderboard: snap.Leaderboard,
		Stats:       snap.Stats,
		MatchState:  snap.MatchState,
	}), nil
}

func (s *ScoreboardServer) GetHistory(ctx context.Context, req *connect.Request[rpc.Empty]) (*connect.Response[rpc.GetHistoryResponse], error) {
	return connect.NewResponse(&rpc.GetHistoryResponse{History: s.tournament.History()}), nil
}

func (s *ScoreboardServer) GetStats(ctx context.Context, req *connect.Request[rpc.Empty]) (*connect.Response[rpc.GetStatsResponse], error) {
	return connect.NewResponse(&rpc.GetStatsResponse{Stats: s.tournament.Stats()}), nil
}

func (s *ScoreboardServer) ListTeams(ctx context.Context, req *connect.Request[rpc.Empty]) (*connect.Response[rpc.ListTeamsResponse], error) {
	return connect.NewResponse(&rpc.ListTeamsResponse{Teams: s.tournament.Teams()}), nil
}

func (s *ScoreboardServer) GetTeam(ctx context.Context, req *connect.Request[rpc.GetTeamRequest]) (*connect.Response[rpc.GetTeamResponse], error) {
	team, err := s.tournament.Team(req.Msg.ID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&rpc.GetTeamResponse{Team: team}), nil
}

func (s *ScoreboardServer) StartMatch(ctx context.Context, req *connect.Request[rpc.Empty]) (*connect.Response[rpc.StartMatchResponse], error) {
	state, _ := s.tournament.StartMatch()
	return connect.NewResponse(&rpc.StartMatchResponse{MatchState: state}), nil
}

func (s *ScoreboardServer) SetMatchState(ctx context.Context, req *connect.Request[rpc.SetMatchStateRequest]) (*connect.Response[rpc.SetMatchStateResponse], error) {
	state, _, err := s.tournament.SetMatchState(req.Msg.State)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&rpc.SetMatchStateResponse{MatchState: state}), nil
}

func (s *ScoreboardServer) SubmitResults(ctx context.Context, req *connect.Request[rpc.SubmitResultsRequest]) (*connect.Response[rpc.SubmitResultsResponse], error) {
	record, events, err := s.tournament.SubmitResults(req.Msg.Results)
	if err != nil {
		return nil, toConnectError(err)
	}

	resp := &rpc.SubmitResultsResponse{Record: record}
	for _, e := range events {
		switch e.Type {
		case domain.EventLeaderboardChanged:
			resp.Leaderboard = e.Leaderboard
		case domain.EventMatchStatusChanged:
			resp.MatchState = *e.MatchState
		}
	}
	return connect.NewResponse(resp), nil
}

func (s *ScoreboardServer) UndoLastMatch(ctx context.Context, req *connect.Request[rpc.Empty]) (*connect.Response[rpc.UndoLastMatchResponse], error) {
	res := s.tournament.UndoLastMatch()
	return connect.NewResponse(&rpc.UndoLastMatchResponse{
		Record:  res.Record,
		Undone:  res.Undone,
		Warning: res.Warning,
	}), nil
}

func (s *ScoreboardServer) UpdateQualification(ctx context.Context, req *connect.Request[rpc.UpdateQualificationRequest]) (*connect.Response[rpc.UpdateQualificationResponse], error) {
	q, _, err := s.tournament.UpdateQualification(req.Msg.Limit)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&rpc.UpdateQualificationResponse{Qualification: q}), nil
}

func (s *ScoreboardServer) ResetTournament(ctx context.Context, req *connect.Request[rpc.Empty]) (*connect.Response[rpc.ResetTournamentResponse], error) {
	s.tournament.ResetTournament()
	return connect.NewResponse(&rpc.ResetTournamentResponse{MatchState: s.tournament.MatchState()}), nil
}

func (s *ScoreboardServer) RegisterTeam(ctx context.Context, req *connect.Request[rpc.RegisterTeamRequest]) (*connect.Response[rpc.RegisterTeamResponse], error) {
	team, events, err := s.tournament.RegisterTeam(req.Msg.Name)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&rpc.RegisterTeamResponse{Team: team, Created: len(events) > 0}), nil
}

func (s *ScoreboardServer) BroadcastAudio(ctx context.Context, req *connect.Request[rpc.BroadcastAudioRequest]) (*connect.Response[rpc.Empty], error) {
	if _, err := s.tournament.BroadcastAudio(req.Msg.Audio); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&rpc.Empty{}), nil
}

func (s *ScoreboardServer) ListEvents(ctx context.Context, req *connect.Request[rpc.ListEventsRequest]) (*connect.Response[rpc.ListEventsResponse], error) {
	events, err := s.events.List(ctx, req.Msg.Type, req.Msg.Limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list archived events")
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&rpc.ListEventsResponse{Events: events}), nil
}

// Watch streams the initial-data frame followed by every relayed event
// until the client disconnects or the hub shuts down.
func (s *ScoreboardServer) Watch(ctx context.Context, req *connect.Request[rpc.WatchRequest], stream *connect.ServerStream[domain.Event]) error {
	initial, id, events := s.tournament.Watch(s.hub.Subscribe)
	defer s.hub.Unsubscribe(id)

	logger := s.logger.With().Str("subscriber_id", id).Logger()
	logger.Info().Str("peer", req.Peer().Addr).Msg("viewer connected")
	defer logger.Info().Msg("viewer disconnected")

	if err := stream.Send(&initial); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-events:
			if !ok {
				return nil
			}
			if err := stream.Send(&e); err != nil {
				logger.Debug().Err(err).Msg("failed to send event")
				return err
			}
		}
	}
}

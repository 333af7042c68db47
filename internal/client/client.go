// Package client is a typed connect client for the scoreboard service.
package client

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"esports-scoreboard/internal/domain"
	"esports-scoreboard/internal/rpc"

	"connectrpc.com/connect"
)

type Client struct {
	baseURL    string
	httpClient connect.HTTPClient
	opts       []connect.ClientOption
}

func New(baseURL string, httpClient connect.HTTPClient, opts ...connect.ClientOption) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		opts:       append([]connect.ClientOption{connect.WithCodec(rpc.Codec{})}, opts...),
	}
}

func doRequest[Req, Res any](ctx context.Context, c *Client, procedure string, msg *Req) (*Res, error) {
	cl := connect.NewClient[Req, Res](c.httpClient, c.baseURL+procedure, c.opts...)
	resp, err := cl.CallUnary(ctx, connect.NewRequest(msg))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

// ErrorCode returns the domain error code a failed call carried, if any.
func ErrorCode(err error) string {
	var cerr *connect.Error
	if errors.As(err, &cerr) {
		return cerr.Meta().Get(rpc.ErrorCodeHeader)
	}
	return ""
}

func (c *Client) MatchState(ctx context.Context) (domain.MatchState, error) {
	resp, err := doRequest[rpc.Empty, rpc.GetMatchStateResponse](ctx, c, rpc.GetMatchStateProcedure, &rpc.Empty{})
	if err != nil {
		return domain.MatchState{}, err
	}
	return resp.MatchState, nil
}

func (c *Client) Leaderboard(ctx context.Context, top int) (*rpc.GetLeaderboardResponse, error) {
	return doRequest[rpc.GetLeaderboardRequest, rpc.GetLeaderboardResponse](ctx, c, rpc.GetLeaderboardProcedure, &rpc.GetLeaderboardRequest{Top: top})
}

func (c *Client) History(ctx context.Context) ([]domain.MatchRecord, error) {
	resp, err := doRequest[rpc.Empty, rpc.GetHistoryResponse](ctx, c, rpc.GetHistoryProcedure, &rpc.Empty{})
	if err != nil {
		return nil, err
	}
	return resp.History, nil
}

func (c *Client) Stats(ctx context.Context) (domain.StatsSummary, error) {
	resp, err := doRequest[rpc.Empty, rpc.GetStatsResponse](ctx, c, rpc.GetStatsProcedure, &rpc.Empty{})
	if err != nil {
		return domain.StatsSummary{}, err
	}
	return resp.Stats, nil
}

func (c *Client) Teams(ctx context.Context) ([]domain.Team, error) {
	resp, err := doRequest[rpc.Empty, rpc.ListTeamsResponse](ctx, c, rpc.ListTeamsProcedure, &rpc.Empty{})
	if err != nil {
		return nil, err
	}
	return resp.Teams, nil
}

func (c *Client) Team(ctx context.Context, id int) (domain.Team, error) {
	resp, err := doRequest[rpc.GetTeamRequest, rpc.GetTeamResponse](ctx, c, rpc.GetTeamProcedure, &rpc.GetTeamRequest{ID: id})
	if err != nil {
		return domain.Team{}, err
	}
	return resp.Team, nil
}

func (c *Client) StartMatch(ctx context.Context) (domain.MatchState, error) {
	resp, err := doRequest[rpc.Empty, rpc.StartMatchResponse](ctx, c, rpc.StartMatchProcedure, &rpc.Empty{})
	if err != nil {
		return domain.MatchState{}, err
	}
	return resp.MatchState, nil
}

func (c *Client) SetMatchState(ctx context.Context, state domain.MatchStatus) (domain.MatchState, error) {
	resp, err := doRequest[rpc.SetMatchStateRequest, rpc.SetMatchStateResponse](ctx, c, rpc.SetMatchStateProcedure, &rpc.SetMatchStateRequest{State: state})
	if err != nil {
		return domain.MatchState{}, err
	}
	return resp.MatchState, nil
}

func (c *Client) SubmitResults(ctx context.Context, results []domain.ResultEntry) (*rpc.SubmitResultsResponse, error) {
	return doRequest[rpc.SubmitResultsRequest, rpc.SubmitResultsResponse](ctx, c, rpc.SubmitResultsProcedure, &rpc.SubmitResultsRequest{Results: results})
}

func (c *Client) UndoLastMatch(ctx context.Context) (*rpc.UndoLastMatchResponse, error) {
	return doRequest[rpc.Empty, rpc.UndoLastMatchResponse](ctx, c, rpc.UndoLastMatchProcedure, &rpc.Empty{})
}

// UpdateQualification uses the server's default limit when limit is nil.
func (c *Client) UpdateQualification(ctx context.Context, limit *int) (domain.Qualification, error) {
	resp, err := doRequest[rpc.UpdateQualificationRequest, rpc.UpdateQualificationResponse](ctx, c, rpc.UpdateQualificationProcedure, &rpc.UpdateQualificationRequest{Limit: limit})
	if err != nil {
		return domain.Qualification{}, err
	}
	return resp.Qualification, nil
}

func (c *Client) ResetTournament(ctx context.Context) (domain.MatchState, error) {
	resp, err := doRequest[rpc.Empty, rpc.ResetTournamentResponse](ctx, c, rpc.ResetTournamentProcedure, &rpc.Empty{})
	if err != nil {
		return domain.MatchState{}, err
	}
	return resp.MatchState, nil
}

func (c *Client) RegisterTeam(ctx context.Context, name string) (*rpc.RegisterTeamResponse, error) {
	return doRequest[rpc.RegisterTeamRequest, rpc.RegisterTeamResponse](ctx, c, rpc.RegisterTeamProcedure, &rpc.RegisterTeamRequest{Name: name})
}

func (c *Client) BroadcastAudio(ctx context.Context, audio domain.AudioAction) error {
	_, err := doRequest[rpc.BroadcastAudioRequest, rpc.Empty](ctx, c, rpc.BroadcastAudioProcedure, &rpc.BroadcastAudioRequest{Audio: audio})
	return err
}

func (c *Client) ListEvents(ctx context.Context, eventType domain.EventType, limit int) ([]domain.ArchivedEvent, error) {
	resp, err := doRequest[rpc.ListEventsRequest, rpc.ListEventsResponse](ctx, c, rpc.ListEventsProcedure, &rpc.ListEventsRequest{Type: eventType, Limit: limit})
	if err != nil {
		return nil, err
	}
	return resp.Events, nil
}

// Watch calls fn for every streamed event, starting with the initial-data
// frame, until ctx is cancelled, the stream ends or fn returns an error.
func (c *Client) Watch(ctx context.Context, fn func(domain.Event) error) error {
	cl := connect.NewClient[rpc.WatchRequest, domain.Event](c.httpClient, c.baseURL+rpc.WatchProcedure, c.opts...)
	stream, err := cl.CallServerStream(ctx, connect.NewRequest(&rpc.WatchRequest{}))
	if err != nil {
		return err
	}
	defer stream.Close()

	for stream.Receive() {
		if err := fn(*stream.Msg()); err != nil {
			return err
		}
	}
	if err := stream.Err(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

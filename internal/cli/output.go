package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"esports-scoreboard/internal/client"
	"esports-scoreboard/internal/domain"

	"connectrpc.com/connect"
)

const (
	ExitSuccess      = 0
	ExitFailure      = 1 // server rejected the call
	ExitCommandError = 2 // bad flags, unreadable input, unreachable server
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns ExitFailure for errors that are not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// callError classifies a failed RPC: server verdicts exit with ExitFailure,
// transport problems with ExitCommandError.
func callError(message string, err error) *ExitError {
	switch connect.CodeOf(err) {
	case connect.CodeInvalidArgument, connect.CodeNotFound, connect.CodeFailedPrecondition:
		if code := client.ErrorCode(err); code != "" {
			message = fmt.Sprintf("%s [%s]", message, code)
		}
		return WrapExitError(ExitFailure, message, err)
	}
	return WrapExitError(ExitCommandError, message, err)
}

// CLIResponse is the JSON envelope written in json mode.
type CLIResponse struct {
	Status string    `json:"status"`
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type OutputFormatter struct {
	Format string
	Writer io.Writer
}

func newFormatter(opts *RootOptions, w io.Writer) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: w}
}

// Success writes data as a JSON envelope, or calls text to render it.
func (f *OutputFormatter) Success(data any, text func(w io.Writer)) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	text(f.Writer)
	return nil
}

func (f *OutputFormatter) Error(code, message string) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message},
		})
	}
	_, err := fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	return err
}

func printMatchState(w io.Writer, s domain.MatchState) {
	fmt.Fprintf(w, "Match %d: %s\n", s.MatchNumber, s.State)
	if s.StartTime != nil {
		fmt.Fprintf(w, "  started  %s\n", s.StartTime.Format("2006-01-02 15:04:05"))
	}
	if s.EndTime != nil {
		fmt.Fprintf(w, "  finished %s\n", s.EndTime.Format("2006-01-02 15:04:05"))
	}
}

func printLeaderboard(w io.Writer, rows []domain.RankedTeam) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No teams yet.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tTEAM\tMP\tKILLS\tPLACE PTS\tKILL PTS\tTOTAL\tWWCD\tSTATUS")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%s\n",
			r.Rank, r.Name, r.MatchesPlayed, r.TotalKills, r.TotalPlacementPoints,
			r.TotalKillPoints, r.TotalPoints, r.FirstPlaceFinishes, r.QualificationStatus)
	}
	tw.Flush()
}

func printStats(w io.Writer, s domain.StatsSummary) {
	fmt.Fprintf(w, "%d teams, %d matches, %d kills, %.2f avg points\n",
		s.TotalTeams, s.TotalMatches, s.TotalKills, s.AvgPointsPerTeam)
}

func printRecord(w io.Writer, rec domain.MatchRecord) {
	fmt.Fprintf(w, "Match %d (%s) at %s\n", rec.MatchNumber, rec.ID, rec.Timestamp.Format("2006-01-02 15:04:05"))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  PLACE\tTEAM\tKILLS\tPLACE PTS\tKILL PTS\tTOTAL")
	for _, r := range rec.Results {
		fmt.Fprintf(tw, "  #%d\t%s\t%d\t%d\t%d\t%d\n",
			r.Placement, r.TeamName, r.Kills, r.PlacementPoints, r.KillPoints, r.Total)
	}
	tw.Flush()
}

func printQualification(w io.Writer, q domain.Qualification) {
	fmt.Fprintf(w, "Top %d qualify\n", q.QualificationLimit)
	for _, t := range q.Qualified {
		fmt.Fprintf(w, "  QUALIFIED   #%d %s\n", t.Rank, t.Name)
	}
	for _, t := range q.Eliminated {
		fmt.Fprintf(w, "  ELIMINATED  #%d %s\n", t.Rank, t.Name)
	}
}

func printEvent(w io.Writer, e domain.Event) {
	fmt.Fprintf(w, "[%s] %s", e.Timestamp.Format("15:04:05"), e.Type)
	switch {
	case e.Audio != nil:
		fmt.Fprintf(w, " action=%s volume=%.2f loop=%t\n", e.Audio.Action, e.Audio.Volume, e.Audio.Loop)
	case e.Submission != nil:
		fmt.Fprintf(w, " match=%d teams=%d\n", e.Submission.MatchNumber, len(e.Submission.Results))
	case e.Qualification != nil:
		fmt.Fprintf(w, " qualified=%d eliminated=%d\n", len(e.Qualification.Qualified), len(e.Qualification.Eliminated))
	case e.Type == domain.EventLeaderboardChanged || e.Type == domain.EventInitialData:
		fmt.Fprintln(w)
		printLeaderboard(w, e.Leaderboard)
		if e.MatchState != nil {
			printMatchState(w, *e.MatchState)
		}
	case e.MatchState != nil:
		fmt.Fprintf(w, " match=%d state=%s\n", e.MatchState.MatchNumber, e.MatchState.State)
	default:
		fmt.Fprintln(w)
	}
}

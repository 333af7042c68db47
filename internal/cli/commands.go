package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"esports-scoreboard/internal/client"
	"esports-scoreboard/internal/domain"

	"github.com/spf13/cobra"
)

// unary runs fn against the server with the global call timeout applied.
func unary(opts *RootOptions, cmd *cobra.Command, fn func(ctx context.Context, c *client.Client) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
	defer cancel()
	return fn(ctx, opts.client())
}

func NewStatusCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current match state and tournament stats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return unary(opts, cmd, func(ctx context.Context, c *client.Client) error {
				resp, err := c.Leaderboard(ctx, 0)
				if err != nil {
					return callError("fetch status", err)
				}
				data := map[string]any{"matchState": resp.MatchState, "stats": resp.Stats}
				return newFormatter(opts, cmd.OutOrStdout()).Success(data, func(w io.Writer) {
					printMatchState(w, resp.MatchState)
					printStats(w, resp.Stats)
				})
			})
		},
	}
}

func NewLeaderboardCommand(opts *RootOptions) *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:     "leaderboard",
		Aliases: []string{"lb"},
		Short:   "Show the ranked leaderboard",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if top < 0 {
				return NewExitError(ExitCommandError, "--top must be zero or greater")
			}
			return unary(opts, cmd, func(ctx context.Context, c *client.Client) error {
				resp, err := c.Leaderboard(ctx, top)
				if err != nil {
					return callError("fetch leaderboard", err)
				}
				return newFormatter(opts, cmd.OutOrStdout()).Success(resp.Leaderboard, func(w io.Writer) {
					printLeaderboard(w, resp.Leaderboard)
				})
			})
		},
	}
	cmd.Flags().IntVar(&top, "top", 0, "only show the first N teams (0 for all)")
	return cmd
}

func NewHistoryCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List submitted matches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return unary(opts, cmd, func(ctx context.Context, c *client.Client) error {
				history, err := c.History(ctx)
				if err != nil {
					return callError("fetch history", err)
				}
				return newFormatter(opts, cmd.OutOrStdout()).Success(history, func(w io.Writer) {
					if len(history) == 0 {
						fmt.Fprintln(w, "No matches submitted.")
					}
					for _, rec := range history {
						printRecord(w, rec)
					}
				})
			})
		},
	}
}

func NewTeamsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "teams",
		Short: "List registered teams in registration order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return unary(opts, cmd, func(ctx context.Context, c *client.Client) error {
				teams, err := c.Teams(ctx)
				if err != nil {
					return callError("list teams", err)
				}
				return newFormatter(opts, cmd.OutOrStdout()).Success(teams, func(w io.Writer) {
					for _, t := range teams {
						fmt.Fprintf(w, "%3d  %-24s %4d pts  %s\n", t.ID, t.Name, t.TotalPoints, t.QualificationStatus)
					}
				})
			})
		},
	}
}

func NewStartCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the next match",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return unary(opts, cmd, func(ctx context.Context, c *client.Client) error {
				state, err := c.StartMatch(ctx)
				if err != nil {
					return callError("start match", err)
				}
				return newFormatter(opts, cmd.OutOrStdout()).Success(state, func(w io.Writer) {
					printMatchState(w, state)
				})
			})
		},
	}
}

func NewStateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "state <UPCOMING|LIVE|UPDATING|COMPLETED>",
		Short: "Force the match state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return unary(opts, cmd, func(ctx context.Context, c *client.Client) error {
				state, err := c.SetMatchState(ctx, domain.MatchStatus(strings.TrimSpace(args[0])))
				if err != nil {
					return callError("set match state", err)
				}
				return newFormatter(opts, cmd.OutOrStdout()).Success(state, func(w io.Writer) {
					printMatchState(w, state)
				})
			})
		},
	}
}

func NewSubmitCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "submit <file|->",
		Short: "Submit a match result sheet",
		Long: `Submit a match result sheet written in YAML or JSON.

Example sheet:
  results:
    - teamName: Alpha
      kills: 7
      placement: 1
    - teamName: Bravo
      kills: 3
      placement: 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := LoadResultSheet(args[0], cmd.InOrStdin())
			if err != nil {
				return WrapExitError(ExitCommandError, "load results", err)
			}
			return unary(opts, cmd, func(ctx context.Context, c *client.Client) error {
				resp, err := c.SubmitResults(ctx, results)
				if err != nil {
					return callError("submit results", err)
				}
				return newFormatter(opts, cmd.OutOrStdout()).Success(resp, func(w io.Writer) {
					printRecord(w, resp.Record)
					fmt.Fprintln(w)
					printLeaderboard(w, resp.Leaderboard)
				})
			})
		},
	}
}

func NewUndoCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Remove the last match from history",
		Long:  "Remove the last match from history. Team totals are not reverted; reset the tournament when accurate totals matter.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return unary(opts, cmd, func(ctx context.Context, c *client.Client) error {
				resp, err := c.UndoLastMatch(ctx)
				if err != nil {
					return callError("undo last match", err)
				}
				return newFormatter(opts, cmd.OutOrStdout()).Success(resp, func(w io.Writer) {
					if !resp.Undone {
						fmt.Fprintln(w, "Nothing to undo.")
						return
					}
					fmt.Fprintf(w, "Removed match %d.\n", resp.Record.MatchNumber)
					fmt.Fprintf(w, "Warning: %s\n", resp.Warning)
				})
			})
		},
	}
}

func NewQualifyCommand(opts *RootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "qualify",
		Short: "Mark the top teams qualified and the rest eliminated",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var lp *int
			if cmd.Flags().Changed("limit") {
				lp = &limit
			}
			return unary(opts, cmd, func(ctx context.Context, c *client.Client) error {
				q, err := c.UpdateQualification(ctx, lp)
				if err != nil {
					return callError("update qualification", err)
				}
				return newFormatter(opts, cmd.OutOrStdout()).Success(q, func(w io.Writer) {
					printQualification(w, q)
				})
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "number of teams that qualify (server default when unset)")
	return cmd
}

func NewResetCommand(opts *RootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear all teams, history and match state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return NewExitError(ExitCommandError, "reset discards every team and match; pass --yes to confirm")
			}
			return unary(opts, cmd, func(ctx context.Context, c *client.Client) error {
				state, err := c.ResetTournament(ctx)
				if err != nil {
					return callError("reset tournament", err)
				}
				return newFormatter(opts, cmd.OutOrStdout()).Success(state, func(w io.Writer) {
					fmt.Fprintln(w, "Tournament reset.")
					printMatchState(w, state)
				})
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}

func NewRegisterCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "register <team name>",
		Short: "Register a team before its first match",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			return unary(opts, cmd, func(ctx context.Context, c *client.Client) error {
				resp, err := c.RegisterTeam(ctx, name)
				if err != nil {
					return callError("register team", err)
				}
				return newFormatter(opts, cmd.OutOrStdout()).Success(resp, func(w io.Writer) {
					if resp.Created {
						fmt.Fprintf(w, "Registered %s (id %d).\n", resp.Team.Name, resp.Team.ID)
						return
					}
					fmt.Fprintf(w, "%s is already registered (id %d).\n", resp.Team.Name, resp.Team.ID)
				})
			})
		},
	}
}

func NewAudioCommand(opts *RootOptions) *cobra.Command {
	var volume float64
	var loop bool
	cmd := &cobra.Command{
		Use:   "audio <action>",
		Short: "Broadcast an audio cue to connected viewers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			audio := domain.AudioAction{Action: args[0], Volume: volume, Loop: loop}
			return unary(opts, cmd, func(ctx context.Context, c *client.Client) error {
				if err := c.BroadcastAudio(ctx, audio); err != nil {
					return callError("broadcast audio", err)
				}
				return newFormatter(opts, cmd.OutOrStdout()).Success(audio, func(w io.Writer) {
					fmt.Fprintf(w, "Broadcast %s.\n", audio.Action)
				})
			})
		},
	}
	cmd.Flags().Float64Var(&volume, "volume", 1, "playback volume between 0 and 1")
	cmd.Flags().BoolVar(&loop, "loop", false, "loop the cue")
	return cmd
}

func NewEventsCommand(opts *RootOptions) *cobra.Command {
	var eventType string
	var limit int
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List archived events, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return unary(opts, cmd, func(ctx context.Context, c *client.Client) error {
				events, err := c.ListEvents(ctx, domain.EventType(eventType), limit)
				if err != nil {
					return callError("list events", err)
				}
				return newFormatter(opts, cmd.OutOrStdout()).Success(events, func(w io.Writer) {
					for _, e := range events {
						fmt.Fprintf(w, "%s  %-22s match=%d  %s\n", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Type, e.MatchNumber, e.ID)
					}
				})
			})
		},
	}
	cmd.Flags().StringVar(&eventType, "type", "", "only list events of this type")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of events (server default when 0)")
	return cmd
}

func NewWatchCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow live scoreboard events until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(opts, cmd.OutOrStdout())
			err := opts.client().Watch(cmd.Context(), func(e domain.Event) error {
				return f.Success(e, func(w io.Writer) { printEvent(w, e) })
			})
			if err != nil {
				return callError("watch", err)
			}
			return nil
		},
	}
}

// Package ranking orders teams for the leaderboard, splits them into
// qualified and eliminated groups and summarizes tournament totals.
package ranking

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"esports-scoreboard/internal/domain"
)

// compareTeams orders by total points, first place finishes, placement
// points and kill points, all descending. Teams equal on every key compare
// as equal so the stable sort keeps their insertion order.
func compareTeams(a, b domain.Team) int {
	if c := cmp.Compare(b.TotalPoints, a.TotalPoints); c != 0 {
		return c
	}
	if c := cmp.Compare(b.FirstPlaceFinishes, a.FirstPlaceFinishes); c != 0 {
		return c
	}
	if c := cmp.Compare(b.TotalPlacementPoints, a.TotalPlacementPoints); c != 0 {
		return c
	}
	return cmp.Compare(b.TotalKillPoints, a.TotalKillPoints)
}

// Rank returns the teams in leaderboard order with consecutive 1-based
// ranks. The input slice is not modified.
func Rank(teams []domain.Team) []domain.RankedTeam {
	sorted := slices.Clone(teams)
	slices.SortStableFunc(sorted, compareTeams)

	ranked := make([]domain.RankedTeam, len(sorted))
	for i, t := range sorted {
		ranked[i] = domain.RankedTeam{Team: t, Rank: i + 1}
	}
	return ranked
}

// Qualify splits the ranked teams at limit.
func Qualify(teams []domain.Team, limit int) (domain.Qualification, error) {
	if limit < 0 {
		return domain.Qualification{}, domain.NewValidationError(domain.ErrCodeInvalidLimit,
			fmt.Sprintf("qualification limit must be zero or greater, got %d", limit))
	}

	ranked := Rank(teams)
	cut := min(limit, len(ranked))

	q := domain.Qualification{
		Qualified:          make([]domain.TeamRef, 0, cut),
		Eliminated:         make([]domain.TeamRef, 0, len(ranked)-cut),
		QualificationLimit: limit,
	}
	for i, rt := range ranked {
		ref := domain.TeamRef{ID: rt.ID, Name: rt.Name, Rank: rt.Rank}
		if i < cut {
			q.Qualified = append(q.Qualified, ref)
		} else {
			q.Eliminated = append(q.Eliminated, ref)
		}
	}
	return q, nil
}

// Summarize computes the aggregate stats. The match count is the highest
// matchesPlayed of any team, which tracks submissions only while every team
// plays every match.
func Summarize(teams []domain.Team) domain.StatsSummary {
	s := domain.StatsSummary{TotalTeams: len(teams)}
	if len(teams) == 0 {
		return s
	}

	points := 0
	for _, t := range teams {
		s.TotalMatches = max(s.TotalMatches, t.MatchesPlayed)
		s.TotalKills += t.TotalKills
		points += t.TotalPoints
	}
	s.AvgPointsPerTeam = math.Round(float64(points)/float64(len(teams))*100) / 100
	return s
}

// Top returns the first n ranked teams, or all of them when n is larger.
func Top(teams []domain.Team, n int) []domain.RankedTeam {
	ranked := Rank(teams)
	if n < 0 {
		n = 0
	}
	return ranked[:min(n, len(ranked))]
}

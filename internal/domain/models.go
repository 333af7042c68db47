package domain

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

type QualificationStatus string

const (
	QualificationPending    QualificationStatus = "PENDING"
	QualificationQualified  QualificationStatus = "QUALIFIED"
	QualificationEliminated QualificationStatus = "ELIMINATED"
)

type MatchStatus string

const (
	MatchUpcoming  MatchStatus = "UPCOMING"
	MatchLive      MatchStatus = "LIVE"
	MatchUpdating  MatchStatus = "UPDATING"
	MatchCompleted MatchStatus = "COMPLETED"
)

func (s MatchStatus) Valid() bool {
	switch s {
	case MatchUpcoming, MatchLive, MatchUpdating, MatchCompleted:
		return true
	}
	return false
}

// Team holds cumulative statistics. TotalPoints always equals
// TotalPlacementPoints + TotalKillPoints.
type Team struct {
	ID                   int                 `json:"id"`
	Name                 string              `json:"name"`
	MatchesPlayed        int                 `json:"matchesPlayed"`
	TotalKills           int                 `json:"totalKills"`
	TotalPlacementPoints int                 `json:"totalPlacementPoints"`
	TotalKillPoints      int                 `json:"totalKillPoints"`
	TotalPoints          int                 `json:"totalPoints"`
	FirstPlaceFinishes   int                 `json:"firstPlaceFinishes"`
	QualificationStatus  QualificationStatus `json:"qualificationStatus"`
}

type RankedTeam struct {
	Team
	Rank int `json:"rank"`
}

type MatchState struct {
	State       MatchStatus `json:"state"`
	MatchNumber int         `json:"matchNumber"`
	StartTime   *time.Time  `json:"startTime"`
	EndTime     *time.Time  `json:"endTime"`
}

// ResultEntry is one team's line in a submitted result sheet.
type ResultEntry struct {
	TeamName  string `json:"teamName" yaml:"teamName"`
	Kills     int    `json:"kills" yaml:"kills"`
	Placement int    `json:"placement" yaml:"placement"`
}

type MatchPoints struct {
	PlacementPoints int `json:"placementPoints"`
	KillPoints      int `json:"killPoints"`
	Total           int `json:"totalPoints"`
}

type ScoredResult struct {
	TeamID    int    `json:"teamId"`
	TeamName  string `json:"teamName"`
	Kills     int    `json:"kills"`
	Placement int    `json:"placement"`
	MatchPoints
}

type MatchRecord struct {
	ID          string         `json:"id"`
	MatchNumber int            `json:"matchNumber"`
	Timestamp   time.Time      `json:"timestamp"`
	Results     []ScoredResult `json:"results"`
}

type TeamRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Rank int    `json:"rank"`
}

type Qualification struct {
	Qualified          []TeamRef `json:"qualified"`
	Eliminated         []TeamRef `json:"eliminated"`
	QualificationLimit int       `json:"qualificationLimit"`
}

type StatsSummary struct {
	TotalTeams       int     `json:"totalTeams"`
	TotalMatches     int     `json:"totalMatches"`
	TotalKills       int     `json:"totalKills"`
	AvgPointsPerTeam float64 `json:"avgPointsPerTeam"`
}

// Snapshot is a consistent view of the leaderboard and match state taken
// under a single read lock.
type Snapshot struct {
	Leaderboard []RankedTeam `json:"leaderboard"`
	MatchState  MatchState   `json:"matchState"`
	Stats       StatsSummary `json:"stats"`
	TakenAt     time.Time    `json:"takenAt"`
}

type AudioAction struct {
	Action string  `json:"action"`
	Volume float64 `json:"volume"`
	Loop   bool    `json:"loop"`
}

// NameKey is the identity key for a team name: trimmed and Unicode case folded.
func NameKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

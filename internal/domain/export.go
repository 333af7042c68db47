package domain

import "time"

type ExportFormat string

const (
	ExportJSON  ExportFormat = "json"
	ExportExcel ExportFormat = "xlsx"
)

type ExportDocument struct {
	ExportTimestamp time.Time      `json:"exportTimestamp"`
	TournamentInfo  TournamentInfo `json:"tournamentInfo"`
	Leaderboard     []ExportRow    `json:"leaderboard"`
}

// TournamentInfo.TotalMatches is the current match number.
type TournamentInfo struct {
	TotalMatches int         `json:"totalMatches"`
	CurrentState MatchStatus `json:"currentState"`
	TotalTeams   int         `json:"totalTeams"`
}

type ExportRow struct {
	Rank                 int                 `json:"rank"`
	TeamName             string              `json:"teamName"`
	MatchesPlayed        int                 `json:"matchesPlayed"`
	TotalKills           int                 `json:"totalKills"`
	TotalPlacementPoints int                 `json:"totalPlacementPoints"`
	TotalKillPoints      int                 `json:"totalKillPoints"`
	TotalPoints          int                 `json:"totalPoints"`
	FirstPlaceFinishes   int                 `json:"firstPlaceFinishes"`
	QualificationStatus  QualificationStatus `json:"qualificationStatus"`
}

// ExportFile is a saved export registered in the archive.
type ExportFile struct {
	ID          string       `json:"id"`
	Filename    string       `json:"filename"`
	Path        string       `json:"path"`
	Format      ExportFormat `json:"format"`
	MatchNumber int          `json:"matchNumber"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// ArchivedEvent is a relayed event as stored in the event log.
type ArchivedEvent struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	MatchNumber int       `json:"matchNumber"`
	Payload     string    `json:"payload"`
	CreatedAt   time.Time `json:"createdAt"`
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"esports-scoreboard/internal/config"
	"esports-scoreboard/internal/constants"
	"esports-scoreboard/internal/domain"
	"esports-scoreboard/internal/repository"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const (
	leaderboardSheet = "Leaderboard"
	// ISO 8601 in UTC with millisecond precision; ':' is already swapped for '-'
	// and exportFilename swaps the fraction separator too.
	exportTimestampLayout = "2006-01-02T15-04-05.000Z"
)

// exportFilename names a saved export so that files written in the same
// second still sort and differ by millisecond.
func exportFilename(matches int, at time.Time, format domain.ExportFormat) string {
	stamp := strings.ReplaceAll(at.UTC().Format(exportTimestampLayout), ".", "-")
	return fmt.Sprintf("leaderboard_match%d_%s.%s", matches, stamp, format)
}

// SnapshotSource is the read-only view exports are built from.
type SnapshotSource interface {
	Snapshot() domain.Snapshot
}

type ExportService struct {
	source SnapshotSource
	files  *repository.ExportRepository
	dir    string
	now    func() time.Time
	logger zerolog.Logger
}

func NewExportService(tournament *TournamentService, files *repository.ExportRepository, cfg *config.Config, logger zerolog.Logger) *ExportService {
	return newExportService(tournament, files, cfg.ExportDir, time.Now, logger)
}

func newExportService(source SnapshotSource, files *repository.ExportRepository, dir string, now func() time.Time, logger zerolog.Logger) *ExportService {
	return &ExportService{source: source, files: files, dir: dir, now: now, logger: logger}
}

// Document builds the export document from the current leaderboard and
// match state.
func (s *ExportService) Document() domain.ExportDocument {
	snap := s.source.Snapshot()

	rows := make([]domain.ExportRow, len(snap.Leaderboard))
	for i, rt := range snap.Leaderboard {
		rows[i] = domain.ExportRow{
			Rank:                 rt.Rank,
			TeamName:             rt.Name,
			MatchesPlayed:        rt.MatchesPlayed,
			TotalKills:           rt.TotalKills,
			TotalPlacementPoints: rt.TotalPlacementPoints,
			TotalKillPoints:      rt.TotalKillPoints,
			TotalPoints:          rt.TotalPoints,
			FirstPlaceFinishes:   rt.FirstPlaceFinishes,
			QualificationStatus:  rt.QualificationStatus,
		}
	}

	return domain.ExportDocument{
		ExportTimestamp: s.now().UTC(),
		TournamentInfo: domain.TournamentInfo{
			TotalMatches: snap.MatchState.MatchNumber,
			CurrentState: snap.MatchState.State,
			TotalTeams:   len(snap.Leaderboard),
		},
		Leaderboard: rows,
	}
}

// EncodeJSON renders the document with two-space indentation.
func EncodeJSON(doc domain.ExportDocument) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}
	return append(data, '\n'), nil
}

func (s *ExportService) SaveJSON(ctx context.Context) (domain.ExportFile, error) {
	doc := s.Document()
	data, err := EncodeJSON(doc)
	if err != nil {
		return domain.ExportFile{}, err
	}

	return s.save(ctx, doc, domain.ExportJSON, func(path string) error {
		return os.WriteFile(path, data, 0o644)
	})
}

func (s *ExportService) SaveExcel(ctx context.Context) (domain.ExportFile, error) {
	doc := s.Document()
	f, err := BuildWorkbook(doc)
	if err != nil {
		return domain.ExportFile{}, err
	}
	defer f.Close()

	return s.save(ctx, doc, domain.ExportExcel, func(path string) error {
		return f.SaveAs(path)
	})
}

func (s *ExportService) save(ctx context.Context, doc domain.ExportDocument, format domain.ExportFormat, write func(path string) error) (domain.ExportFile, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.ExportTimeout)
	defer cancel()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return domain.ExportFile{}, fmt.Errorf("failed to create export directory: %w", err)
	}

	filename := exportFilename(doc.TournamentInfo.TotalMatches, doc.ExportTimestamp, format)
	path := filepath.Join(s.dir, filename)

	if err := write(path); err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("failed to write export")
		return domain.ExportFile{}, fmt.Errorf("failed to write %s export: %w", format, err)
	}

	file, err := s.files.Save(ctx, domain.ExportFile{
		Filename:    filename,
		Path:        path,
		Format:      format,
		MatchNumber: doc.TournamentInfo.TotalMatches,
		CreatedAt:   doc.ExportTimestamp,
	})
	if err != nil {
		return domain.ExportFile{}, err
	}

	s.logger.Info().
		Str("filename", filename).
		Str("format", string(format)).
		Int("teams", len(doc.Leaderboard)).
		Msg("export created")
	return file, nil
}

func (s *ExportService) ListFiles(ctx context.Context) ([]domain.ExportFile, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.files.List(ctx)
}

// Open resolves a registered export by file name. Only files registered in
// the archive and still present on disk are served.
func (s *ExportService) Open(ctx context.Context, filename string) (domain.ExportFile, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if filename != filepath.Base(filename) {
		return domain.ExportFile{}, &domain.NotFoundError{Resource: "export file", ID: filename}
	}

	file, err := s.files.GetByFilename(ctx, filename)
	if err != nil {
		return domain.ExportFile{}, err
	}
	if _, err := os.Stat(file.Path); err != nil {
		if os.IsNotExist(err) {
			return domain.ExportFile{}, &domain.NotFoundError{Resource: "export file", ID: filename}
		}
		return domain.ExportFile{}, fmt.Errorf("failed to stat export file: %w", err)
	}
	return file, nil
}

var exportColumns = []struct {
	header string
	width  float64
}{
	{"Rank", 8},
	{"Team Name", 25},
	{"Matches Played", 15},
	{"Total Kills", 12},
	{"Placement Points", 18},
	{"Kill Points", 12},
	{"Total Points", 15},
	{"1st Place Wins", 15},
	{"Status", 12},
}

func thinBorder() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
}

type workbookStyles struct {
	header, row, stripe, qualified, eliminated, title int
}

func newWorkbookStyles(f *excelize.File) (workbookStyles, error) {
	center := &excelize.Alignment{Horizontal: "center", Vertical: "center"}
	defs := []*excelize.Style{
		{
			Font:      &excelize.Font{Bold: true, Color: "FFFFFF", Size: 12},
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
			Alignment: center,
			Border:    thinBorder(),
		},
		{Alignment: center, Border: thinBorder()},
		{
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E7E6E6"}},
			Alignment: center,
			Border:    thinBorder(),
		},
		{
			Font:      &excelize.Font{Bold: true},
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"92D050"}},
			Alignment: center,
			Border:    thinBorder(),
		},
		{
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FF6B6B"}},
			Alignment: center,
			Border:    thinBorder(),
		},
		{Font: &excelize.Font{Bold: true}},
	}

	var st workbookStyles
	targets := []*int{&st.header, &st.row, &st.stripe, &st.qualified, &st.eliminated, &st.title}
	for i, d := range defs {
		id, err := f.NewStyle(d)
		if err != nil {
			return workbookStyles{}, fmt.Errorf("failed to create workbook style: %w", err)
		}
		*targets[i] = id
	}
	return st, nil
}

// BuildWorkbook renders the document as a single-sheet workbook: a styled
// header, one bordered row per team with the status cell coloured by
// qualification, and a summary block beneath the table.
func BuildWorkbook(doc domain.ExportDocument) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := buildWorkbook(f, doc); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func buildWorkbook(f *excelize.File, doc domain.ExportDocument) error {
	if err := f.SetSheetName("Sheet1", leaderboardSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	st, err := newWorkbookStyles(f)
	if err != nil {
		return err
	}

	header := make([]any, len(exportColumns))
	for i, c := range exportColumns {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(leaderboardSheet, col, col, c.width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
		header[i] = c.header
	}
	lastCol, _ := excelize.ColumnNumberToName(len(exportColumns))

	if err := f.SetSheetRow(leaderboardSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.SetCellStyle(leaderboardSheet, "A1", lastCol+"1", st.header); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, r := range doc.Leaderboard {
		row := i + 2
		values := []any{
			r.Rank, r.TeamName, r.MatchesPlayed, r.TotalKills, r.TotalPlacementPoints,
			r.TotalKillPoints, r.TotalPoints, r.FirstPlaceFinishes, string(r.QualificationStatus),
		}
		start := fmt.Sprintf("A%d", row)
		if err := f.SetSheetRow(leaderboardSheet, start, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row, err)
		}

		style := st.row
		if i%2 == 0 {
			style = st.stripe
		}
		if err := f.SetCellStyle(leaderboardSheet, start, fmt.Sprintf("%s%d", lastCol, row), style); err != nil {
			return fmt.Errorf("failed to style row %d: %w", row, err)
		}

		status := fmt.Sprintf("%s%d", lastCol, row)
		switch r.QualificationStatus {
		case domain.QualificationQualified:
			err = f.SetCellStyle(leaderboardSheet, status, status, st.qualified)
		case domain.QualificationEliminated:
			err = f.SetCellStyle(leaderboardSheet, status, status, st.eliminated)
		}
		if err != nil {
			return fmt.Errorf("failed to style status cell: %w", err)
		}
	}

	summary := len(doc.Leaderboard) + 3
	lines := [][]any{
		{"Tournament Summary"},
		{"Total Matches:", doc.TournamentInfo.TotalMatches},
		{"Total Teams:", doc.TournamentInfo.TotalTeams},
		{"Current State:", string(doc.TournamentInfo.CurrentState)},
		{"Export Date:", doc.ExportTimestamp.Format(time.RFC3339)},
	}
	for i, line := range lines {
		if err := f.SetSheetRow(leaderboardSheet, fmt.Sprintf("A%d", summary+i), &line); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}
	title := fmt.Sprintf("A%d", summary)
	if err := f.SetCellStyle(leaderboardSheet, title, title, st.title); err != nil {
		return fmt.Errorf("failed to style summary: %w", err)
	}
	return nil
}

package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"esports-scoreboard/internal/config"
	"esports-scoreboard/internal/database"
	"esports-scoreboard/internal/domain"
	"esports-scoreboard/internal/repository"

	"github.com/rs/zerolog"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newExportFixture(t *testing.T) (*ExportService, *TournamentService, string) {
	t.Helper()

	dir := t.TempDir()
	db, err := database.New(&config.Config{DBPath: filepath.Join(dir, "archive.db")}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc, _ := newTestService()
	exportDir := filepath.Join(dir, "exports")
	exports := newExportService(svc, repository.NewExportRepository(db, zerolog.Nop()), exportDir,
		func() time.Time { return fixedTime }, zerolog.Nop())
	return exports, svc, exportDir
}

func seedTournament(t *testing.T, svc *TournamentService) {
	t.Helper()

	svc.StartMatch()
	_, _, err := svc.SubmitResults([]domain.ResultEntry{
		{TeamName: "Alpha", Kills: 3, Placement: 1},
		{TeamName: "Bravo", Kills: 5, Placement: 2},
		{TeamName: "Charlie", Kills: 0, Placement: 3},
	})
	require.NoError(t, err)

	limit := 2
	_, _, err = svc.UpdateQualification(&limit)
	require.NoError(t, err)
}

func TestExportDocument_Golden(t *testing.T) {
	exports, svc, _ := newExportFixture(t)
	seedTournament(t, svc)

	data, err := EncodeJSON(exports.Document())
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "export_document", data)
}

func TestExportDocument_Empty(t *testing.T) {
	exports, _, _ := newExportFixture(t)

	doc := exports.Document()
	assert.Equal(t, 0, doc.TournamentInfo.TotalMatches)
	assert.Equal(t, domain.MatchUpcoming, doc.TournamentInfo.CurrentState)
	assert.Equal(t, 0, doc.TournamentInfo.TotalTeams)
	assert.NotNil(t, doc.Leaderboard)
	assert.Empty(t, doc.Leaderboard)
}

func TestSaveJSON_WritesAndRegisters(t *testing.T) {
	exports, svc, exportDir := newExportFixture(t)
	seedTournament(t, svc)
	ctx := context.Background()

	file, err := exports.SaveJSON(ctx)
	require.NoError(t, err)
	assert.Equal(t, "leaderboard_match1_2026-01-02T15-04-05-000Z.json", file.Filename)
	assert.Equal(t, filepath.Join(exportDir, file.Filename), file.Path)
	assert.Equal(t, domain.ExportJSON, file.Format)
	assert.NotEmpty(t, file.ID)

	written, err := os.ReadFile(file.Path)
	require.NoError(t, err)
	golden, err := os.ReadFile(filepath.Join("testdata", "golden", "export_document.golden"))
	require.NoError(t, err)
	assert.Equal(t, string(golden), string(written))

	files, err := exports.ListFiles(ctx)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, file.Filename, files[0].Filename)
	assert.Equal(t, 1, files[0].MatchNumber)

	opened, err := exports.Open(ctx, file.Filename)
	require.NoError(t, err)
	assert.Equal(t, file.Path, opened.Path)
}

func TestExportFilename_Milliseconds(t *testing.T) {
	at := time.Date(2026, 3, 4, 18, 7, 9, 789_000_000, time.UTC)
	assert.Equal(t, "leaderboard_match2_2026-03-04T18-07-09-789Z.json", exportFilename(2, at, domain.ExportJSON))
	assert.Equal(t, "leaderboard_match0_2026-03-04T18-07-09-000Z.xlsx",
		exportFilename(0, at.Truncate(time.Second), domain.ExportExcel))

	ist := time.FixedZone("IST", 5*60*60+30*60)
	assert.Equal(t, "leaderboard_match2_2026-03-04T18-07-09-789Z.json", exportFilename(2, at.In(ist), domain.ExportJSON))
}

func TestSaveJSON_SameSecondExportsDiffer(t *testing.T) {
	dir := t.TempDir()
	db, err := database.New(&config.Config{DBPath: filepath.Join(dir, "archive.db")}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	now := time.Date(2026, 1, 2, 15, 4, 5, 789_000_000, time.UTC)
	svc, _ := newTestService()
	exports := newExportService(svc, repository.NewExportRepository(db, zerolog.Nop()), filepath.Join(dir, "exports"),
		func() time.Time { return now }, zerolog.Nop())
	ctx := context.Background()

	first, err := exports.SaveJSON(ctx)
	require.NoError(t, err)
	now = now.Add(time.Millisecond)
	second, err := exports.SaveJSON(ctx)
	require.NoError(t, err)

	assert.Equal(t, "leaderboard_match0_2026-01-02T15-04-05-789Z.json", first.Filename)
	assert.Equal(t, "leaderboard_match0_2026-01-02T15-04-05-790Z.json", second.Filename)

	files, err := exports.ListFiles(ctx)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestSaveExcel_Workbook(t *testing.T) {
	exports, svc, _ := newExportFixture(t)
	seedTournament(t, svc)

	file, err := exports.SaveExcel(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "leaderboard_match1_2026-01-02T15-04-05-000Z.xlsx", file.Filename)

	f, err := excelize.OpenFile(file.Path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Leaderboard")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 4)
	assert.Equal(t, []string{
		"Rank", "Team Name", "Matches Played", "Total Kills", "Placement Points",
		"Kill Points", "Total Points", "1st Place Wins", "Status",
	}, rows[0])
	assert.Equal(t, []string{"1", "Alpha", "1", "3", "10", "3", "13", "1", "QUALIFIED"}, rows[1])
	assert.Equal(t, "Charlie", rows[3][1])
	assert.Equal(t, "ELIMINATED", rows[3][8])

	title, err := f.GetCellValue("Leaderboard", "A6")
	require.NoError(t, err)
	assert.Equal(t, "Tournament Summary", title)
	teams, err := f.GetCellValue("Leaderboard", "B8")
	require.NoError(t, err)
	assert.Equal(t, "3", teams)
}

func TestOpen_RejectsUnknownAndTraversal(t *testing.T) {
	exports, _, _ := newExportFixture(t)
	ctx := context.Background()

	_, err := exports.Open(ctx, "missing.json")
	assert.True(t, domain.IsNotFound(err))

	_, err = exports.Open(ctx, "../archive.db")
	assert.True(t, domain.IsNotFound(err))
}

func TestOpen_FileRemovedFromDisk(t *testing.T) {
	exports, svc, _ := newExportFixture(t)
	seedTournament(t, svc)
	ctx := context.Background()

	file, err := exports.SaveJSON(ctx)
	require.NoError(t, err)
	require.NoError(t, os.Remove(file.Path))

	_, err = exports.Open(ctx, file.Filename)
	assert.True(t, domain.IsNotFound(err))
}

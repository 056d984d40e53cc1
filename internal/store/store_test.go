package store

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const standardCSV = `league,season,team,player,nation,pos,age,minutes,goals,assists,goals_per_90
ENG-Premier League,2425,Arsenal,Bukayo Saka,eng ENG,"FW,MF",23-150,"2,450",12,10,0.44
ENG-Premier League,2425,Man City,Rodri,es ESP,MF,28-050,300,1,0,0.30
ESP-La Liga,2425,Barcelona,Pedri,es ESP,MF,22-100,1900,4,6,0.19
`

const passingCSV = `league,season,team,player,progressive_passes,goals
ENG-Premier League,2425,Arsenal,Bukayo Saka,150,99
ESP-La Liga,2425,Barcelona,Pedri,210,n/a
ITA-Serie A,2425,Inter,Nicolo Barella,180,3
`

const defenseCSV = `league,season,team,player,tackles,interceptions
ENG-Premier League,2425,Arsenal,Bukayo Saka,20,5
`

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write csv: %v", err)
	}
	return path
}

func fixtureSources(t *testing.T) []Source {
	t.Helper()
	dir := t.TempDir()
	return []Source{
		{Name: "standard", Path: writeCSV(t, dir, "standard.csv", standardCSV)},
		{Name: "passing", Path: writeCSV(t, dir, "passing.csv", passingCSV)},
		{Name: "defense", Path: writeCSV(t, dir, "defense.csv", defenseCSV)},
		{Name: "shooting", Path: filepath.Join(dir, "missing.csv")},
	}
}

func TestLoad_PartialSourcesAndOuterJoin(t *testing.T) {
	var buf bytes.Buffer
	s, err := Load(context.Background(), fixtureSources(t), zerolog.New(&buf))
	require.NoError(t, err)

	assert.Equal(t, []string{"standard", "passing", "defense"}, s.Sources())
	assert.Contains(t, buf.String(), "source skipped")
	assert.Contains(t, buf.String(), "missing.csv")

	// Barella only exists in passing; outer join keeps him with nulls elsewhere.
	assert.Equal(t, 4, s.Len())
	barella := s.Get("barella", Filter{})
	require.Len(t, barella, 1)
	_, hasMinutes := barella[0].Metric("minutes")
	assert.False(t, hasMinutes)
	assert.Equal(t, 0.0, barella[0].Minutes())
}

func TestLoad_CoercionAndCollisions(t *testing.T) {
	s, err := Load(context.Background(), fixtureSources(t), zerolog.Nop())
	require.NoError(t, err)

	saka := s.Get("saka", Filter{})
	require.Len(t, saka, 1)
	r := saka[0]

	age, ok := r.Age()
	assert.True(t, ok)
	assert.Equal(t, 23, age)
	assert.Equal(t, 2450.0, r.Minutes())
	assert.Equal(t, "Forward,Midfielder", r.Position)
	assert.Equal(t, "eng ENG", r.Nationality)

	// goals is claimed by standard; passing's copy is prefixed.
	assert.Equal(t, 12.0, r.Value("goals"))
	assert.Equal(t, 99.0, r.Value("passing_goals"))
	assert.True(t, s.HasMetric("passing_goals"))

	pedri := s.Get("pedri", Filter{})
	require.Len(t, pedri, 1)
	_, ok = pedri[0].Metric("passing_goals")
	assert.False(t, ok, "unparseable cell must stay null")
}

func TestLoad_RepeatedColumnInOneSource(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "shooting.csv", "league,season,team,player,gls,gls,minutes\nENG-Premier League,2425,Liverpool,Mohamed Salah,29,0.95,2750\n")
	s, err := Load(context.Background(), []Source{{Name: "shooting", Path: path}}, zerolog.Nop())
	require.NoError(t, err)

	got := s.Get("salah", Filter{})
	require.Len(t, got, 1)
	assert.Equal(t, 29.0, got[0].Value("gls"))
	assert.Equal(t, 0.95, got[0].Value("gls_2"))
	assert.True(t, s.HasMetric("gls_2"))
}

func TestLoad_NoSources(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(context.Background(), []Source{
		{Name: "standard", Path: filepath.Join(dir, "a.csv")},
		{Name: "passing", Path: filepath.Join(dir, "b.csv")},
	}, zerolog.Nop())
	assert.True(t, errors.Is(err, ErrDataUnavailable))
}

func TestLoad_HeaderlessKeyFallsBackToFirstColumns(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "x.csv", "a,b,c,d,minutes\nENG,2425,Arsenal,Declan Rice,2800\n")
	s, err := Load(context.Background(), []Source{{Name: "standard", Path: path}}, zerolog.Nop())
	require.NoError(t, err)
	got := s.Get("rice", Filter{})
	require.Len(t, got, 1)
	assert.Equal(t, "Arsenal", got[0].Key.Team)
	assert.Equal(t, 2800.0, got[0].Minutes())
}

func TestGet_Filters(t *testing.T) {
	s, err := Load(context.Background(), fixtureSources(t), zerolog.Nop())
	require.NoError(t, err)

	tests := []struct {
		name    string
		pattern string
		filter  Filter
		want    []string
	}{
		{name: "all", filter: Filter{}, want: []string{"Bukayo Saka", "Rodri", "Pedri", "Nicolo Barella"}},
		{name: "min minutes", filter: Filter{MinMinutes: 500}, want: []string{"Bukayo Saka", "Pedri"}},
		{name: "position substring", filter: Filter{Position: "midfield"}, want: []string{"Bukayo Saka", "Rodri", "Pedri"}},
		{name: "league equality", filter: Filter{League: "esp-la liga"}, want: []string{"Pedri"}},
		{name: "name and filter", pattern: "RO", filter: Filter{MinMinutes: 100}, want: []string{"Rodri"}},
		{name: "no match", pattern: "messi", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Get(tt.pattern, tt.filter)
			names := make([]string, 0, len(got))
			for _, r := range got {
				names = append(names, r.Key.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestStatusAndPing(t *testing.T) {
	s, err := Load(context.Background(), fixtureSources(t), zerolog.Nop())
	require.NoError(t, err)
	assert.NoError(t, s.Ping(context.Background()))

	st := s.Status()
	assert.Equal(t, 4, st.TotalPlayers)
	assert.Equal(t, []string{"ENG-Premier League", "ESP-La Liga", "ITA-Serie A"}, st.Leagues)

	var empty *Store
	assert.ErrorIs(t, empty.Ping(context.Background()), ErrDataUnavailable)
}

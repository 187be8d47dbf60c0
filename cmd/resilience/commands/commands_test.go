package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-resilience/pkg/algorithms"
	"github.com/dd0wney/cluso-resilience/pkg/attack"
	"github.com/dd0wney/cluso-resilience/pkg/precomputed"
)

const airportsDat = `1,"Singapore Changi Airport","Singapore","Singapore","SIN","WSSS",1.35019,103.994003,22,8,"N","Asia/Singapore","airport","OurAirports"
2,"Kuala Lumpur International Airport","Kuala Lumpur","Malaysia","KUL","WMKK",2.745579,101.709999,69,8,"N","Asia/Kuala_Lumpur","airport","OurAirports"
3,"Suvarnabhumi Airport","Bangkok","Thailand","BKK","VTBS",13.681108,100.747283,5,7,"U","Asia/Bangkok","airport","OurAirports"
4,"Tan Son Nhat International Airport","Ho Chi Minh City","Vietnam","SGN","VVTS",10.8188,106.652,33,7,"U","Asia/Saigon","airport","OurAirports"
5,"Noi Bai International Airport","Hanoi","Vietnam","HAN","VVNB",21.2212,105.807,39,7,"U","Asia/Saigon","airport","OurAirports"
6,"London Heathrow Airport","London","United Kingdom","LHR","EGLL",51.4706,-0.461941,83,0,"E","Europe/London","airport","OurAirports"
`

const routesDat = `SQ,1,SIN,1,KUL,2,,0,320
SQ,1,SIN,1,BKK,3,,0,320
SQ,1,SIN,1,SGN,4,,0,320
MH,2,KUL,2,BKK,3,,0,738
VN,3,SGN,4,HAN,5,,0,321
TG,4,BKK,3,HAN,5,,0,320
BA,5,LHR,6,SIN,1,,0,777
`

func dataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "airports.dat"), []byte(airportsDat), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "routes.dat"), []byte(routesDat), 0o644))
	return dir
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestStats(t *testing.T) {
	dir := dataDir(t)

	out, _, err := execute(t, "stats", "--data", dir, "-o", "json")
	require.NoError(t, err)
	var stats algorithms.GraphStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 6, stats.Nodes)
	assert.Equal(t, 7, stats.Edges)

	out, _, err = execute(t, "stats", "--data", dir, "-o", "json", "--region", "southeast-asia")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 5, stats.Nodes)
	assert.Equal(t, 6, stats.Edges)

	out, _, err = execute(t, "stats", "--data", dir, "--min-lat", "40")
	require.NoError(t, err)
	assert.Contains(t, out, "Network")
}

func TestStats_DataDirFromEnvironment(t *testing.T) {
	t.Setenv("RESILIENCE_DATA_DIR", dataDir(t))

	out, _, err := execute(t, "stats", "-o", "json")
	require.NoError(t, err)
	var stats algorithms.GraphStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 6, stats.Nodes)
}

func TestWindowErrors(t *testing.T) {
	dir := dataDir(t)

	_, _, err := execute(t, "stats", "--data", dir, "--region", "atlantis")
	assert.ErrorContains(t, err, "unknown region")

	_, _, err = execute(t, "stats", "--data", dir, "--min-lat", "20", "--max-lat", "10")
	assert.ErrorContains(t, err, "minLat")

	_, _, err = execute(t, "stats", "--data", t.TempDir())
	assert.ErrorContains(t, err, "load network")
}

func TestAttack(t *testing.T) {
	dir := dataDir(t)

	out, logs, err := execute(t, "attack", "--data", dir, "-o", "json", "--strategy", "degree_targeted_attack", "--fractions", "0,0.5,1")
	require.NoError(t, err)
	var report attack.SimulateReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, attack.Degree, report.Strategy)
	require.Len(t, report.Curve, 3)
	assert.InDelta(t, 1.0, report.Curve[0].LCCNorm, 1e-9)
	assert.InDelta(t, 0.0, report.Curve[2].LCCNorm, 1e-9)
	assert.Contains(t, logs, "attack simulated")

	out, _, err = execute(t, "attack", "--data", dir, "-s", "random", "--runs", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "random_attack")
	assert.Contains(t, out, "lcc_norm")

	_, _, err = execute(t, "attack", "--data", dir, "--strategy", "closeness")
	assert.ErrorIs(t, err, attack.ErrUnknownStrategy)

	_, _, err = execute(t, "attack", "--data", dir, "--fractions", "0.5,0.2")
	assert.ErrorIs(t, err, errInvalidFractions)
}

func TestReinforceSwapSuggest(t *testing.T) {
	dir := dataDir(t)

	out, _, err := execute(t, "reinforce", "--data", dir, "--region", "southeast-asia", "-k", "2", "--max-candidates", "50")
	require.NoError(t, err)
	assert.Contains(t, out, "R reinforced")

	out, _, err = execute(t, "swap", "--data", dir, "--max-trials", "40", "--patience", "10", "-o", "json")
	require.NoError(t, err)
	var swap map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &swap))
	assert.Equal(t, swap["original_edges"], swap["optimized_edges"])

	out, _, err = execute(t, "suggest", "--data", dir, "-m", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Backup routes")
}

func TestPrecompute(t *testing.T) {
	dir := dataDir(t)
	out := filepath.Join(t.TempDir(), "cache", "precomputed.json.sz")

	stdout, _, err := execute(t, "precompute", "southeast-asia", "--data", dir, "--out", out, "-o", "json")
	require.NoError(t, err)
	var summary PrecomputeSummary
	require.NoError(t, json.Unmarshal([]byte(stdout), &summary))
	assert.Equal(t, out, summary.Path)
	assert.Equal(t, []string{"southeast-asia"}, summary.Regions)
	assert.Empty(t, summary.Uploaded)

	store := precomputed.NewStore(out)
	require.NoError(t, store.Load())
	result, ok := store.Get("southeast-asia")
	require.True(t, ok)
	assert.Equal(t, 5, result.Baseline.Nodes)
	assert.NotEmpty(t, result.RunID)

	// a second run merges into the existing file
	_, _, err = execute(t, "precompute", "europe", "--data", dir, "--out", out)
	require.NoError(t, err)
	require.NoError(t, store.Load())
	assert.Equal(t, []string{"europe", "southeast-asia"}, store.Keys())

	_, _, err = execute(t, "precompute", "mars", "--data", dir, "--out", out)
	assert.ErrorContains(t, err, "unknown region")

	_, _, err = execute(t, "precompute", "north-america", "--data", dir, "--out", out)
	assert.ErrorIs(t, err, errNoRegions)

	_, _, err = execute(t, "precompute", "europe", "--data", dir, "--out", out, "--upload")
	assert.ErrorContains(t, err, "s3-bucket")
}

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/profiler.report/internal/db"
	"github.com/banshee-data/profiler.report/internal/profiler"
)

type fixture struct {
	srv      *httptest.Server
	staticID string
	arcID    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	d, err := db.OpenDB(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })

	staticID, err := d.RecordStaticRun("/data/static.txt", "/refs/VERSA_ref6MV.txt", profiler.Photon,
		&profiler.StaticResult{Error: profiler.ErrorResult{MaxAB: 1.2}})
	require.NoError(t, err)

	rep := &profiler.ArcReport{
		Modality: profiler.Photon,
		Options:  profiler.DefaultArcOptions(),
		Summary:  profiler.ArcSummary{MaxAB: 0.8, MaxABFrame: 21, MaxABAngle: 72, NumFrames: 30, AcceptedFrames: 2},
		Frames: []profiler.FrameRecord{
			{Frame: 20, Status: profiler.FrameAccepted, Result: profiler.ErrorResult{AverageAB: 0.4}},
			{Frame: 21, Status: profiler.FrameAccepted, Result: profiler.ErrorResult{AverageAB: 0.8}},
		},
	}
	arcID, err := d.RecordArcRun("/data/arc.txt", "/refs/VERSA_ref6MV.txt", rep)
	require.NoError(t, err)

	srv := httptest.NewServer(LoggingMiddleware(NewServer(d).ServeMux()))
	t.Cleanup(srv.Close)
	return &fixture{srv: srv, staticID: staticID, arcID: arcID}
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestListRuns(t *testing.T) {
	f := newFixture(t)

	var runs []db.Run
	require.Equal(t, http.StatusOK, getJSON(t, f.srv.URL+"/api/runs", &runs))
	assert.Len(t, runs, 2)

	runs = nil
	require.Equal(t, http.StatusOK, getJSON(t, f.srv.URL+"/api/runs?limit=1", &runs))
	assert.Len(t, runs, 1)

	assert.Equal(t, http.StatusBadRequest, getJSON(t, f.srv.URL+"/api/runs?limit=zero", nil))

	resp, err := http.Post(f.srv.URL+"/api/runs", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestShowRun(t *testing.T) {
	f := newFixture(t)

	var detail struct {
		ID      string             `json:"run_id"`
		Kind    string             `json:"kind"`
		Metrics map[string]float64 `json:"metrics"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, f.srv.URL+"/api/runs/"+f.staticID, &detail))
	assert.Equal(t, f.staticID, detail.ID)
	assert.Equal(t, "static", detail.Kind)
	assert.Equal(t, 1.2, detail.Metrics["maxAB"])

	assert.Equal(t, http.StatusNotFound, getJSON(t, f.srv.URL+"/api/runs/nope", nil))
}

func TestListFrames(t *testing.T) {
	f := newFixture(t)

	var frames []frameJSON
	require.Equal(t, http.StatusOK, getJSON(t, f.srv.URL+"/api/runs/"+f.arcID+"/frames", &frames))
	require.Len(t, frames, 2)
	assert.Equal(t, 21, frames[1].Frame)
	assert.Equal(t, "accepted", frames[1].Status)
	assert.Equal(t, 0.8, frames[1].AverageAB)

	assert.Equal(t, http.StatusNotFound, getJSON(t, f.srv.URL+"/api/runs/nope/frames", nil))
}

func TestArcChart(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Get(f.srv.URL + "/runs/" + f.arcID + "/chart")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	resp2, err := http.Get(f.srv.URL + "/runs/" + f.staticID + "/chart")
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)

	resp3, err := http.Get(f.srv.URL + "/runs/nope/chart")
	require.NoError(t, err)
	resp3.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp3.StatusCode)
}

func TestStatusCodeColor(t *testing.T) {
	assert.Contains(t, statusCodeColor(200), "200")
	assert.Contains(t, statusCodeColor(404), colorBoldRed)
	assert.Contains(t, statusCodeColor(302), colorYellow)
	assert.Equal(t, "100", statusCodeColor(100))
}

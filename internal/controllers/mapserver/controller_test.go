package mapserver

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/mholden/osmaps/internal/postcode"
	"github.com/mholden/osmaps/pkg/config"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

// writeTileZip drops a Terrain 50 style zip for one tile under the
// distribution layout NewSource expects.
func writeTileZip(t *testing.T, baseDir, tile, asc string) {
	t.Helper()
	square := strings.ToLower(tile[:2])
	dir := filepath.Join(baseDir, "data", square)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	zipPath := filepath.Join(dir, strings.ToLower(tile)+"_OST50GRID_20230608.zip")
	f, err := os.Create(zipPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	zw := zip.NewWriter(f)
	w, err := zw.Create(strings.ToUpper(tile) + ".asc")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(asc)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
}

// ny12ASC is a 4x4 tile with a climb from 10 m to 25 m.
const ny12ASC = `ncols 4
nrows 4
xllcorner 310000
yllcorner 520000
cellsize 50
22 23 24 25
18 19 20 21
14 15 16 17
10 11 12 13
`

func testStore(t *testing.T) postcode.Store {
	t.Helper()
	store, err := postcode.OpenStore(config.PostcodeData{
		Backend:    "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "postcodes.db"),
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.Reset(); err != nil {
		t.Fatal(err)
	}
	err = store.Insert([]postcode.Record{
		{Postcode: "CA11 7HX", Area: "CA", Quality: 10, Easting: 311500, Northing: 521500, CountryCode: "E92000001"},
		{Postcode: "CA11 8PT", Area: "CA", Quality: 10, Easting: 312000, Northing: 522500, CountryCode: "E92000001"},
		{Postcode: "NG2 6AG", Area: "NG", Quality: 10, Easting: 457000, Northing: 338000, CountryCode: "E92000001"},
		// Quality 90 records carry no position.
		{Postcode: "GY1 1AA", Area: "GY", Quality: 90, CountryCode: "E92000001"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func testConfig(t *testing.T) *config.ConfigData {
	t.Helper()
	terrainDir := t.TempDir()
	writeTileZip(t, terrainDir, "NY12", ny12ASC)
	return &config.ConfigData{
		Terrain: config.TerrainData{
			DataDir:  terrainDir,
			CacheDir: t.TempDir(),
		},
		Server: &config.ServerData{ListenAddr: "127.0.0.1", Port: 0},
	}
}

func testController(t *testing.T, store postcode.Store) *Controller {
	t.Helper()
	return testControllerWithConfig(t, testConfig(t), store)
}

func testControllerWithConfig(t *testing.T, cfg *config.ConfigData, store postcode.Store) *Controller {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	wg := &sync.WaitGroup{}

	ctrl, err := NewController(ctx, wg, cfg, store, zap.NewNop().Sugar())
	if err != nil {
		t.Fatal(err)
	}
	return ctrl
}

func doRequest(t *testing.T, ctrl *Controller, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	ctrl.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func wantPNG(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), pngMagic) {
		t.Error("body does not start with the PNG signature")
	}
}

func TestGetAltitudeMap(t *testing.T) {
	ctrl := testController(t, nil)
	wantPNG(t, doRequest(t, ctrl, "/altitude/NY12"))
}

func TestGetAltitudeMapErrors(t *testing.T) {
	ctrl := testController(t, nil)
	tests := []struct {
		path string
		want int
	}{
		{"/altitude/XX99", http.StatusBadRequest},      // no such square
		{"/altitude/NY12?dims=0x2", http.StatusBadRequest},
		{"/altitude/NY12?scheme=sepia", http.StatusBadRequest},
		{"/altitude/JM55", http.StatusNotFound},        // open sea
	}
	for _, tc := range tests {
		if rec := doRequest(t, ctrl, tc.path); rec.Code != tc.want {
			t.Errorf("GET %s: status = %d, want %d", tc.path, rec.Code, tc.want)
		}
	}
}

func TestGetAltitudeStats(t *testing.T) {
	ctrl := testController(t, nil)
	rec := doRequest(t, ctrl, "/stats/NY12")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var analysis struct {
		Area   string  `json:"area"`
		Cells  int     `json:"cells"`
		MinAlt float64 `json:"min_alt"`
		MaxAlt float64 `json:"max_alt"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&analysis); err != nil {
		t.Fatal(err)
	}
	if analysis.Area != "NY12" {
		t.Errorf("area = %q, want NY12", analysis.Area)
	}
	if analysis.Cells != 16 {
		t.Errorf("cells = %d, want 16", analysis.Cells)
	}
	if analysis.MinAlt != 10 || analysis.MaxAlt != 25 {
		t.Errorf("altitude range = [%v, %v], want [10, 25]", analysis.MinAlt, analysis.MaxAlt)
	}
}

func TestGetAltitudeStatsMsgpack(t *testing.T) {
	ctrl := testController(t, nil)
	rec := doRequest(t, ctrl, "/stats/NY12?format=msgpack")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/x-msgpack" {
		t.Errorf("Content-Type = %q, want application/x-msgpack", ct)
	}
}

func TestGetGridOverview(t *testing.T) {
	ctrl := testController(t, nil)
	wantPNG(t, doRequest(t, ctrl, "/grid"))
}

func TestPostcodeEndpoints(t *testing.T) {
	ctrl := testController(t, testStore(t))
	for _, path := range []string{
		"/postcode/CA117HX",
		"/area/ca",
		"/gridsquare/NY",
		"/postcodes",
	} {
		t.Run(path, func(t *testing.T) {
			wantPNG(t, doRequest(t, ctrl, path))
		})
	}
}

func TestPostcodeNotFound(t *testing.T) {
	ctrl := testController(t, testStore(t))
	if rec := doRequest(t, ctrl, "/postcode/ZZ999ZZ"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown postcode: status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if rec := doRequest(t, ctrl, "/area/ZZ"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown area: status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	// GY exists in the store but none of its records are positioned.
	if rec := doRequest(t, ctrl, "/area/GY"); rec.Code != http.StatusNotFound {
		t.Errorf("unpositioned area: status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestPostcodeEndpointsWithoutStore(t *testing.T) {
	ctrl := testController(t, nil)
	for _, path := range []string{"/postcode/CA117HX", "/area/CA", "/gridsquare/NY", "/postcodes"} {
		if rec := doRequest(t, ctrl, path); rec.Code != http.StatusServiceUnavailable {
			t.Errorf("GET %s: status = %d, want %d", path, rec.Code, http.StatusServiceUnavailable)
		}
	}
}

func TestRequestIDHeader(t *testing.T) {
	ctrl := testController(t, nil)
	rec := doRequest(t, ctrl, "/grid")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("no X-Request-ID header on response")
	}
}

func TestNewControllerWithoutServerSection(t *testing.T) {
	cfg := &config.ConfigData{Terrain: config.TerrainData{DataDir: t.TempDir()}}
	_, err := NewController(context.Background(), &sync.WaitGroup{}, cfg, nil, zap.NewNop().Sugar())
	if err == nil {
		t.Fatal("expected an error for a config with no server section")
	}
	if !strings.Contains(err.Error(), "server") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestMosaicCacheHit(t *testing.T) {
	cfg := testConfig(t)
	ctrl := testControllerWithConfig(t, cfg, nil)
	first := doRequest(t, ctrl, "/altitude/NY12")
	second := doRequest(t, ctrl, "/altitude/NY12")
	wantPNG(t, first)
	wantPNG(t, second)
	if !bytes.Equal(first.Body.Bytes(), second.Body.Bytes()) {
		t.Error("cached render differs from the first render")
	}
	entries, err := os.ReadDir(cfg.Terrain.CacheDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("cache holds %d entries, want 1", len(entries))
	}
}

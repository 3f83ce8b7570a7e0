package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	binaryName  = "wallhaven-rotator"
	binaryPath  string
	projectRoot string
)

// TestMain builds the binary once before running the tests.
func TestMain(m *testing.M) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		fmt.Println("Could not get caller information")
		os.Exit(1)
	}
	projectRoot = filepath.Join(filepath.Dir(filename), "..", "..")

	buildDir, err := os.MkdirTemp("", "wallhaven-rotator-bin")
	if err != nil {
		fmt.Printf("Failed to create build dir: %v\n", err)
		os.Exit(1)
	}
	if runtime.GOOS == "windows" {
		binaryName += ".exe"
	}
	binaryPath = filepath.Join(buildDir, binaryName)

	buildCmd := exec.Command("go", "build", "-o", binaryPath, ".")
	buildCmd.Dir = filepath.Join(projectRoot, "cmd", "wallhaven-rotator")
	if out, err := buildCmd.CombinedOutput(); err != nil {
		fmt.Printf("Failed to build binary: %v\nOutput:\n%s\n", err, string(out))
		os.Exit(1)
	}

	exitCode := m.Run()
	os.RemoveAll(buildDir)
	os.Exit(exitCode)
}

// runCommand executes the binary with the given arguments.
func runCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		t.Logf("Command failed with error: %v\nStderr:\n%s", err, stderr.String())
	}
	return stdout.String(), stderr.String(), err
}

// createTempConfig writes a config whose state lives in a fresh temp dir.
func createTempConfig(t *testing.T, dir, extra string) string {
	t.Helper()
	content := fmt.Sprintf("DatabasePath = %q\nCacheDir = %q\n%s", filepath.Join(dir, "state.db"), filepath.Join(dir, "cache"), extra)
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// newCatalogServer serves one search result and the image it points to.
func newCatalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	mux.HandleFunc("/api/v1/search", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"data":[{"id":"ab12cd","path":"%[1]s/full/ab/wallhaven-ab12cd.jpg","resolution":"1920x1080","thumbs":{"large":"%[1]s/lg/ab12cd.jpg"}}],"meta":{"total":1}}`, srv.URL)
	})
	mux.HandleFunc("/full/ab/wallhaven-ab12cd.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("fake-jpeg-bytes"))
	})
	t.Cleanup(srv.Close)
	return srv
}

func TestSaveWithoutWallpaperFails(t *testing.T) {
	dir := t.TempDir()
	cfgPath := createTempConfig(t, dir, "")

	_, stderr, err := runCommand(t, "--config", cfgPath, "save")
	require.Error(t, err)
	assert.Contains(t, stderr, "No valid wallpaper to save")
}

func TestSavedListEmpty(t *testing.T) {
	dir := t.TempDir()
	cfgPath := createTempConfig(t, dir, "")

	stdout, _, err := runCommand(t, "--config", cfgPath, "saved", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "0 listed, 0 saved, 0 shown this cycle")
}

func TestFetchSaveAndRotate(t *testing.T) {
	srv := newCatalogServer(t)
	dir := t.TempDir()
	shownFile := filepath.Join(dir, "shown.txt")
	cfgPath := createTempConfig(t, dir, fmt.Sprintf(`
SearchUrl = %q
Query = "mountains"
SetWallpaperCommand = "echo %%s > %s"
UseSavedWallpapers = true
`, srv.URL+"/api/v1/search", shownFile))

	_, _, err := runCommand(t, "--config", cfgPath, "fetch")
	require.NoError(t, err)
	shown, err := os.ReadFile(shownFile)
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/full/ab/wallhaven-ab12cd.jpg\n", string(shown))

	_, stderr, err := runCommand(t, "--config", cfgPath, "save")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Wallpaper downloaded and saved! Total: 1")

	cached := filepath.Join(dir, "cache", "ab12cd.jpg")
	data, err := os.ReadFile(cached)
	require.NoError(t, err)
	assert.Equal(t, "fake-jpeg-bytes", string(data))

	_, stderr, err = runCommand(t, "--config", cfgPath, "save")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Wallpaper already saved")

	stdout, _, err := runCommand(t, "--config", cfgPath, "saved", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "local")
	assert.Contains(t, stdout, cached)

	_, _, err = runCommand(t, "--config", cfgPath, "next")
	require.NoError(t, err)
	shown, err = os.ReadFile(shownFile)
	require.NoError(t, err)
	assert.Equal(t, cached+"\n", string(shown))

	stdout, _, err = runCommand(t, "--config", cfgPath, "search", "-q", "+source:local")
	require.NoError(t, err)
	assert.Contains(t, stdout, "ID: ab12cd")
}

func TestClean(t *testing.T) {
	dir := t.TempDir()
	cfgPath := createTempConfig(t, dir, "")
	cache := filepath.Join(dir, "cache")
	require.NoError(t, os.MkdirAll(cache, 0755))
	tmp := filepath.Join(cache, "ab12cd.jpg.123.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("partial"), 0644))
	keep := filepath.Join(cache, "zz99yy.jpg")
	require.NoError(t, os.WriteFile(keep, []byte("done"), 0644))

	_, _, err := runCommand(t, "--config", cfgPath, "clean")
	require.NoError(t, err)
	assert.NoFileExists(t, tmp)
	assert.FileExists(t, keep)
}

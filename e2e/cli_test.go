package e2e_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/blazeboard/internal/api"
	"github.com/mcoot/blazeboard/internal/api/response"
	"github.com/mcoot/blazeboard/internal/factory"
	"github.com/mcoot/blazeboard/internal/metrics"
	filestorage "github.com/mcoot/blazeboard/internal/storage/file"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(t.TempDir(), "blazectl")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/blazectl")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	addr     string
	shutdown func()
}

// startTestServer runs the full router over file storage in dataDir
func startTestServer(t *testing.T, dataDir string) *testServer {
	t.Helper()

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	recorder := metrics.NewRecorder()

	app, err := factory.New(context.Background(), factory.Config{
		Logger:      logger,
		StorageType: factory.StorageTypeFile,
		FileConfig: &filestorage.Config{
			StatsPath:   filepath.Join(dataDir, "game_stats.json"),
			CounterPath: filepath.Join(dataDir, "external_counter.json"),
		},
		Metrics: recorder,
	})
	require.NoError(t, err)

	server := &http.Server{
		Addr: addr,
		Handler: api.NewRouter(api.RouterConfig{
			Logger:      logger,
			MatchStore:  app.MatchStore,
			Metrics:     recorder,
			MetricsPath: "/metrics",
		}),
	}

	// Start server
	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + addr
	waitForServer(t, serverURL+"/api/health")

	return &testServer{
		addr: serverURL,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
			_ = app.Close()
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

func TestCLI_HealthCheck(t *testing.T) {
	server := startTestServer(t, t.TempDir())
	defer server.shutdown()

	cli := newCLIRunner(t, server.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp response.Health
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_FullMatchFlow(t *testing.T) {
	server := startTestServer(t, t.TempDir())
	defer server.shutdown()

	cli := newCLIRunner(t, server.addr)

	for _, args := range [][]string{
		{"register", "A1", "--name", "Alice", "--team", "team1"},
		{"register", "A2", "--name", "Ann", "--team", "team1"},
		{"register", "B1", "--name", "Bob", "--team", "team2"},
		{"kill", "A1", "--count", "3"},
		{"kill", "B1", "--count", "2"},
		{"death", "B1"},
		{"end"},
	} {
		output, err := cli.run(args...)
		require.NoError(t, err, "%v: %s", args, output)
	}

	output, err := cli.run("victory")
	require.NoError(t, err, "output: %s", output)

	var victory response.Victory
	require.NoError(t, json.Unmarshal([]byte(output), &victory))
	assert.Equal(t, "team1", victory.WinningTeam)
	assert.Equal(t, 3, victory.Team1Score)
	assert.Equal(t, 2, victory.Team2Score)
	assert.Equal(t, "A1", victory.MVP.RFID)

	output, err = cli.run("reset")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("leaderboard")
	require.NoError(t, err, "output: %s", output)

	var lb response.Leaderboard
	require.NoError(t, json.Unmarshal([]byte(output), &lb))
	assert.Len(t, lb.Team1, 2)
	assert.Len(t, lb.Team2, 1)
	for _, p := range append(lb.Team1, lb.Team2...) {
		assert.Zero(t, p.Kills, p.RFID)
		assert.Zero(t, p.Deaths, p.RFID)
	}
}

func TestCLI_StateSurvivesRestart(t *testing.T) {
	dataDir := t.TempDir()

	server := startTestServer(t, dataDir)
	cli := newCLIRunner(t, server.addr)

	for _, args := range [][]string{
		{"register", "A1", "--name", "Alice", "--team", "team1"},
		{"kill", "A1"},
		{"register-external", "--name", "Eve", "--email", "eve@example.com", "--mobile", "9876543210", "--team", "team2"},
	} {
		output, err := cli.run(args...)
		require.NoError(t, err, "%v: %s", args, output)
	}
	server.shutdown()

	server = startTestServer(t, dataDir)
	defer server.shutdown()
	cli.serverURL = server.addr

	output, err := cli.run("player", "A1")
	require.NoError(t, err, "output: %s", output)

	var detail response.PlayerDetail
	require.NoError(t, json.Unmarshal([]byte(output), &detail))
	assert.Equal(t, 1, detail.Kills)
	assert.Len(t, detail.KillTimestamps, 1)

	output, err = cli.run("register-external", "--name", "Zed", "--email", "zed@example.com", "--mobile", "9876543211", "--team", "team1")
	require.NoError(t, err, "output: %s", output)

	var ext response.ExternalRegistered
	require.NoError(t, json.Unmarshal([]byte(output), &ext))
	assert.Equal(t, "EXT0002", ext.RFID)
}

func TestCLI_ErrorHandling(t *testing.T) {
	server := startTestServer(t, t.TempDir())
	defer server.shutdown()

	cli := newCLIRunner(t, server.addr)

	t.Run("unknown player", func(t *testing.T) {
		output, err := cli.run("kill", "ghost")
		assert.Error(t, err)
		assert.Contains(t, output, "PLAYER_NOT_FOUND")
	})

	t.Run("victory before end", func(t *testing.T) {
		output, err := cli.run("victory")
		assert.Error(t, err)
		assert.Contains(t, output, "VICTORY_NOT_AVAILABLE")
	})

	t.Run("invalid team", func(t *testing.T) {
		output, err := cli.run("register", "A1", "--name", "Alice", "--team", "team7")
		assert.Error(t, err)
		assert.Contains(t, output, "INVALID_REQUEST")
	})
}

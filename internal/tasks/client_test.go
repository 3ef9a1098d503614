package tasks

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/services"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := NewClient(filepath.Join(t.TempDir(), "tasks.db"), DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestNewClient_CreatesDatabaseDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "tasks.db")

	client, err := NewClient(dbPath, DefaultConfig())
	require.NoError(t, err)

	_, err = os.Stat(dbPath)
	assert.NoError(t, err, "tasks database should be created")
	assert.NoError(t, client.Ping())
	assert.NoError(t, client.Close())
}

func TestClient_StopWithoutStart(t *testing.T) {
	client := newTestClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.True(t, client.Stop(ctx))
}

func TestClient_ConsistencyCheckRoundTrip(t *testing.T) {
	client := newTestClient(t)

	observed := make(chan string, 1)
	checker := &mockChecker{report: services.ConsistencyReport{CheckedBooks: 3}}
	client.Register(NewConsistencyCheckQueue(checker, func(action string, report services.ConsistencyReport, err error) {
		observed <- action
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	ids, err := client.Add(ConsistencyCheckTask{Repair: true}).Save()
	require.NoError(t, err)
	require.Len(t, ids, 1)

	select {
	case action := <-observed:
		assert.Equal(t, "repair", action)
	case <-time.After(5 * time.Second):
		t.Fatal("consistency task was not executed within timeout")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	assert.True(t, client.Stop(stopCtx), "stop should succeed gracefully")
}

func TestClient_StatusOfPendingTask(t *testing.T) {
	client := newTestClient(t)
	client.Register(NewConsistencyCheckQueue(&mockChecker{}, nil))

	ids, err := client.Add(ConsistencyCheckTask{}).Save()
	require.NoError(t, err)

	status, err := client.Status(context.Background(), ids[0])
	require.NoError(t, err)
	assert.Equal(t, backlite.TaskStatusPending, status)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.RetryDelay)
	assert.Equal(t, time.Minute, cfg.TaskTimeout)
	assert.Equal(t, 5*time.Minute, cfg.ReleaseAfter)
	assert.Equal(t, time.Hour, cfg.CleanupInterval)
	assert.Equal(t, 24*time.Hour, cfg.RetentionDuration)
}

func TestConfigFromSettings(t *testing.T) {
	cfg := ConfigFromSettings(config.Tasks{Workers: 4, ReleaseAfter: time.Minute})

	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, time.Minute, cfg.ReleaseAfter)
	assert.Equal(t, DefaultConfig().TaskTimeout, cfg.TaskTimeout, "zero values keep defaults")
}

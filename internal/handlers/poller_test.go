package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillflow/internal/config"
	"skillflow/internal/executor"
	"skillflow/internal/workflow"
)

func waitStep(cond workflow.Condition, target string) workflow.Step {
	return workflow.Step{ID: "w1", Label: "wait", Action: workflow.Wait{Condition: cond, Target: target, TimeoutSeconds: 5}}
}

func newTestPoller(sessions *SessionLog) *Poller {
	return NewPoller(sessions, "default", NewHTTPClient(config.HTTPConfig{Timeout: time.Second}, nil), 10*time.Millisecond, nil)
}

func TestPoller_LogContains(t *testing.T) {
	sessions := NewSessionLog()
	poller := newTestPoller(sessions)

	go func() {
		time.Sleep(30 * time.Millisecond)
		sessions.Append("default", []byte("Server ready on :3000\n"))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	out, err := poller.Handle(ctx, waitStep(workflow.ConditionLogContains, "Server ready"))

	require.NoError(t, err)
	result := out.(ConditionResult)
	assert.Greater(t, result.Checks, 1)
}

func TestPoller_FileExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "done.flag")
	poller := newTestPoller(nil)

	go func() {
		time.Sleep(30 * time.Millisecond)
		_ = os.WriteFile(path, []byte("ok"), 0644)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := poller.Handle(ctx, waitStep(workflow.ConditionFileExists, path))

	assert.NoError(t, err)
}

func TestPoller_APIStatus(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	}))
	defer srv.Close()

	poller := newTestPoller(nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	out, err := poller.Handle(ctx, waitStep(workflow.ConditionAPIStatus, srv.URL+"/health"))

	require.NoError(t, err)
	assert.Equal(t, 3, out.(ConditionResult).Checks)
}

func TestPoller_APIStatusExpression(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 2 {
			_, _ = w.Write([]byte(`{"status":"starting"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	}))
	defer srv.Close()

	poller := newTestPoller(nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	out, err := poller.Handle(ctx, waitStep(workflow.ConditionAPIStatus, srv.URL+"#status == 'ready'"))

	require.NoError(t, err)
	assert.Equal(t, 2, out.(ConditionResult).Checks)
}

func TestPoller_InvalidExpression(t *testing.T) {
	poller := newTestPoller(nil)

	_, err := poller.Handle(context.Background(), waitStep(workflow.ConditionAPIStatus, "http://127.0.0.1:1#[[["))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid expression")
	assert.False(t, errors.Is(err, executor.ErrConditionNotMet))
}

func TestPoller_NotMet(t *testing.T) {
	poller := newTestPoller(NewSessionLog())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := poller.Handle(ctx, waitStep(workflow.ConditionLogContains, "never printed"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, executor.ErrConditionNotMet))
}

func TestPoller_TimeCondition(t *testing.T) {
	poller := newTestPoller(nil)

	_, err := poller.Handle(context.Background(), waitStep(workflow.ConditionTime, "1"))

	assert.Error(t, err)
}

func TestTruthy(t *testing.T) {
	assert.False(t, truthy(nil))
	assert.False(t, truthy(false))
	assert.False(t, truthy(""))
	assert.False(t, truthy(float64(0)))
	assert.False(t, truthy([]any{}))
	assert.False(t, truthy(map[string]any{}))
	assert.True(t, truthy(true))
	assert.True(t, truthy("x"))
	assert.True(t, truthy(float64(2)))
	assert.True(t, truthy([]any{1}))
}

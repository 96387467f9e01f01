package process

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowkaihon/toolcore/output"
	"github.com/lowkaihon/toolcore/runtime"
)

func discardLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestRun_echoExitsZero(t *testing.T) {
	sup := New(runtime.NewLocal(discardLog()), discardLog())
	res := sup.Run(context.Background(), "echo hello", runtime.ExecOptions{Cwd: t.TempDir()}, output.PolicyTmpfile, nil)

	require.Nil(t, res.PrecheckErr)
	assert.Equal(t, StateExited, res.State)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, []string{"hello"}, res.Output.Snapshot().Lines)
}

func TestRun_rejectsEmptyScript(t *testing.T) {
	sup := New(runtime.NewLocal(discardLog()), discardLog())
	res := sup.Run(context.Background(), "   ", runtime.ExecOptions{Cwd: t.TempDir()}, output.PolicyTmpfile, nil, RejectEmpty)

	require.Error(t, res.PrecheckErr)
	assert.Contains(t, res.PrecheckErr.Error(), "malformed")
}

func TestRun_rejectsLeadingSleep(t *testing.T) {
	sup := New(runtime.NewLocal(discardLog()), discardLog())
	res := sup.Run(context.Background(), "sleep 5 && echo done", runtime.ExecOptions{Cwd: t.TempDir()}, output.PolicyTmpfile, nil, RejectLeadingSleep)

	require.Error(t, res.PrecheckErr)
	assert.Contains(t, res.PrecheckErr.Error(), "sleep")
}

func TestRun_timeoutKillsProcessGroup(t *testing.T) {
	sup := New(runtime.NewLocal(discardLog()), discardLog())
	opts := runtime.ExecOptions{Cwd: t.TempDir(), Timeout: 50 * time.Millisecond}
	res := sup.Run(context.Background(), "sleep 5; echo should-not-print", opts, output.PolicyTmpfile, nil)

	assert.Equal(t, StateTimedOut, res.State)
	assert.Equal(t, runtime.ExitCodeTimeout, res.ExitCode)
	assert.NotContains(t, res.Output.Snapshot().Lines, "should-not-print")
}

func TestRun_abortSignalKillsProcessGroup(t *testing.T) {
	sup := New(runtime.NewLocal(discardLog()), discardLog())
	cancel := make(chan struct{})
	go func() {
		time.Sleep(20 * time.Millisecond)
		close(cancel)
	}()
	res := sup.Run(context.Background(), "sleep 5", runtime.ExecOptions{Cwd: t.TempDir()}, output.PolicyTmpfile, cancel)

	assert.Equal(t, StateAborted, res.State)
	assert.Equal(t, runtime.ExitCodeAborted, res.ExitCode)
}

func TestRejectRedundantCd(t *testing.T) {
	pc := RejectRedundantCd(runtime.NormalizeLocal, "/workspace")
	err := pc("cd /workspace && echo x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redundant cd")

	assert.NoError(t, pc("cd /workspace/sub && echo x"))
}

package workers

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type flakyWorker struct {
	runs    atomic.Int32
	succeed int32
}

func (w *flakyWorker) Run(ctx context.Context) error {
	if w.runs.Add(1) < w.succeed {
		panic("boom")
	}
	return nil
}

func Test_Supervisor_Restarts_Panicking_Worker(t *testing.T) {
	req := require.New(t)
	supervisor := NewSupervisor(slog.Default(), time.Millisecond)
	worker := &flakyWorker{succeed: 3}
	supervisor.Add(worker)

	done := make(chan struct{})
	go func() {
		supervisor.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor never finished")
	}
	req.EqualValues(3, worker.runs.Load())
}

func Test_Supervisor_Stops_On_Context_Cancel(t *testing.T) {
	req := require.New(t)
	supervisor := NewSupervisor(slog.Default(), time.Millisecond)

	blocked := blockingWorker{}
	supervisor.Add(&blocked)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		supervisor.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor ignored cancellation")
	}
	req.True(true)
}

type blockingWorker struct{}

func (w *blockingWorker) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"eventsScraper/internal/config"
	"eventsScraper/internal/metrics"
	"eventsScraper/internal/models/domain"
	"eventsScraper/internal/utils/logger/handlers/slogdiscard"
)

var errUnsupported = errors.New("unsupported platform")

func supportedOnly(_ context.Context, url string) error {
	if !strings.Contains(url, "quicket.co.za") && !strings.Contains(url, "howler.co.za") {
		return errUnsupported
	}
	return nil
}

func collect(events *[]domain.Progress) EmitFunc {
	return func(p domain.Progress) { *events = append(*events, p) }
}

func TestRunBatch_FailingItemDoesNotAbort(t *testing.T) {
	urls := []string{
		"https://www.quicket.co.za/events/296038-jazz/",
		"https://example.com/not-a-ticket-site",
		"https://www.howler.co.za/events/sunset",
	}

	var events []domain.Progress
	res := RunBatch(context.Background(), urls, supportedOnly, collect(&events))

	want := []domain.Progress{
		{Index: 1, Total: 3, URL: urls[0], Status: domain.ProgressProcessing},
		{Index: 1, Total: 3, URL: urls[0], Status: domain.ProgressDone},
		{Index: 2, Total: 3, URL: urls[1], Status: domain.ProgressProcessing},
		{Index: 2, Total: 3, URL: urls[1], Status: domain.ProgressDone, Error: true, Reason: "unsupported platform"},
		{Index: 3, Total: 3, URL: urls[2], Status: domain.ProgressProcessing},
		{Index: 3, Total: 3, URL: urls[2], Status: domain.ProgressDone},
		{Done: true},
	}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Errorf("progress mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, Result{Total: 3, Succeeded: 2, Failed: 1}, res)
}

func TestRunBatch_PanickingItem(t *testing.T) {
	var events []domain.Progress
	res := RunBatch(context.Background(), []string{"a", "b"}, func(_ context.Context, url string) error {
		if url == "a" {
			panic("boom")
		}
		return nil
	}, collect(&events))

	require.Equal(t, Result{Total: 2, Succeeded: 1, Failed: 1}, res)
	require.True(t, events[1].Error)
	require.Contains(t, events[1].Reason, "boom")
	require.True(t, events[len(events)-1].IsTerminal())
}

func TestRunBatch_CancelBetweenURLs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var events []domain.Progress
	res := RunBatch(ctx, []string{"a", "b", "c"}, func(context.Context, string) error {
		cancel()
		return nil
	}, collect(&events))

	require.Equal(t, Result{Total: 3, Succeeded: 1, Skipped: 2, Cancelled: true}, res)
	require.Len(t, events, 3)
	require.Equal(t, domain.Progress{Done: true}, events[2])
}

func TestRunBatch_EmptyBatchStillTerminates(t *testing.T) {
	var events []domain.Progress
	RunBatch(context.Background(), nil, supportedOnly, collect(&events))
	require.Equal(t, []domain.Progress{{Done: true}}, events)
}

func testConfig(workers, buffer int) *config.Config {
	cfg := &config.Config{}
	cfg.PipelineConfig.WorkersCount = workers
	cfg.PipelineConfig.JobBufferSize = buffer
	return cfg
}

func drain(t *testing.T, task *Task) []domain.Progress {
	t.Helper()
	var events []domain.Progress
	timeout := time.After(5 * time.Second)
	for {
		select {
		case p, ok := <-task.Progress():
			if !ok {
				return events
			}
			events = append(events, p)
		case <-timeout:
			t.Fatal("progress channel was not closed")
		}
	}
}

func TestOrchestrator_SubmitAndWait(t *testing.T) {
	m := metrics.New()
	o := New(slogdiscard.NewDiscardLogger(), testConfig(2, 4), supportedOnly, m)
	go o.Start()
	t.Cleanup(func() { _ = o.Shutdown(context.Background()) })

	task, err := o.Submit([]string{
		"https://www.quicket.co.za/events/296038-jazz/",
		"https://example.com/x",
	})
	require.NoError(t, err)

	got, ok := o.Lookup(task.ID)
	require.True(t, ok)
	require.Same(t, task, got)

	events := drain(t, task)
	require.Len(t, events, 5)
	require.True(t, events[4].IsTerminal())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := task.Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, Result{Total: 2, Succeeded: 1, Failed: 1}, res)

	o.Forget(task.ID)
	_, ok = o.Lookup(task.ID)
	require.False(t, ok)
}

func TestOrchestrator_SubmitErrors(t *testing.T) {
	o := New(slogdiscard.NewDiscardLogger(), testConfig(1, 1), supportedOnly, nil)

	_, err := o.Submit(nil)
	require.ErrorIs(t, err, ErrEmptyBatch)

	queued, err := o.Submit([]string{"https://www.quicket.co.za/events/1"})
	require.NoError(t, err)

	_, err = o.Submit([]string{"https://www.quicket.co.za/events/2"})
	require.ErrorIs(t, err, ErrBufferFull)

	require.NoError(t, o.Shutdown(context.Background()))

	events := drain(t, queued)
	require.Equal(t, []domain.Progress{{Done: true}}, events)
	res, err := queued.Wait(context.Background())
	require.NoError(t, err)
	require.True(t, res.Cancelled)
	require.Equal(t, 1, res.Skipped)

	_, err = o.Submit([]string{"https://www.quicket.co.za/events/3"})
	require.ErrorIs(t, err, ErrShuttingDown)
}

func TestOrchestrator_ForgetsUnclaimedTaskAfterRetention(t *testing.T) {
	cfg := testConfig(1, 1)
	cfg.PipelineConfig.TaskRetention = 20 * time.Millisecond
	o := New(slogdiscard.NewDiscardLogger(), cfg, supportedOnly, nil)
	go o.Start()
	t.Cleanup(func() { _ = o.Shutdown(context.Background()) })

	task, err := o.Submit([]string{"https://www.quicket.co.za/events/1"})
	require.NoError(t, err)

	<-task.Done()
	require.Eventually(t, func() bool {
		_, ok := o.Lookup(task.ID)
		return !ok
	}, 5*time.Second, 10*time.Millisecond)
}

func TestOrchestrator_ForcedShutdownTerminatesQueued(t *testing.T) {
	release := make(chan struct{})
	o := New(slogdiscard.NewDiscardLogger(), testConfig(1, 1), func(context.Context, string) error {
		<-release
		return nil
	}, nil)
	go o.Start()
	defer close(release)

	busy, err := o.Submit([]string{"https://www.quicket.co.za/events/1"})
	require.NoError(t, err)
	select {
	case p := <-busy.Progress():
		require.Equal(t, domain.ProgressProcessing, p.Status)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not pick up the batch")
	}

	queued, err := o.Submit([]string{
		"https://www.quicket.co.za/events/2",
		"https://www.quicket.co.za/events/3",
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, o.Shutdown(ctx), context.Canceled)

	require.Equal(t, []domain.Progress{{Done: true}}, drain(t, queued))
	res, err := queued.Wait(context.Background())
	require.NoError(t, err)
	require.Equal(t, Result{Total: 2, Skipped: 2, Cancelled: true}, res)
}

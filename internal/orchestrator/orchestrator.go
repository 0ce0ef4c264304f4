package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"eventsScraper/internal/config"
	"eventsScraper/internal/metrics"
	"eventsScraper/internal/models/domain"
)

var (
	ErrEmptyBatch   = errors.New("empty batch")
	ErrBufferFull   = errors.New("job buffer is full")
	ErrShuttingDown = errors.New("service is shutting down")
)

// Task — дескриптор пакета: канал прогресса, отмена и ожидание результата.
type Task struct {
	ID   uuid.UUID
	URLs []string

	progress chan domain.Progress
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	result   Result
}

// Progress возвращает канал прогресса. Канал закрывается после завершающего события.
func (t *Task) Progress() <-chan domain.Progress {
	return t.progress
}

// Cancel просит остановить пакет. Текущая ссылка дорабатывается.
func (t *Task) Cancel() {
	t.cancel()
}

func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait ждёт завершения пакета или отмены ctx.
func (t *Task) Wait(ctx context.Context) (Result, error) {
	select {
	case <-t.done:
		return t.result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func (t *Task) emit(p domain.Progress) {
	// буфер канала рассчитан на весь пакет
	t.progress <- p
}

// Orchestrator запускает пакеты ссылок на ограниченном пуле воркеров.
// Каждый пакет выполняется одним воркером последовательно.
type Orchestrator struct {
	logger          *slog.Logger
	cfg             *config.Config
	process         ProcessFunc
	metrics         *metrics.Metrics
	jobs            chan *Task
	shutdownChannel chan struct{}
	baseCtx         context.Context
	cancelAll       context.CancelFunc
	wg              *sync.WaitGroup

	mu     sync.Mutex
	closed bool
	tasks  map[uuid.UUID]*Task
}

// New создаёт оркестратор. process вызывается для каждой ссылки пакета.
func New(logger *slog.Logger, cfg *config.Config, process ProcessFunc, m *metrics.Metrics) *Orchestrator {
	op := "Orchestrator.New()"
	log := logger.With(slog.String("op", op))
	log.Info("creating orchestrator",
		slog.Int("workers", cfg.PipelineConfig.WorkersCount),
		slog.Int("buffer", cfg.PipelineConfig.JobBufferSize),
	)

	ctx, cancel := context.WithCancel(context.Background())

	return &Orchestrator{
		logger:          logger,
		cfg:             cfg,
		process:         process,
		metrics:         m,
		jobs:            make(chan *Task, cfg.PipelineConfig.JobBufferSize),
		shutdownChannel: make(chan struct{}),
		baseCtx:         ctx,
		cancelAll:       cancel,
		wg:              &sync.WaitGroup{},
		tasks:           make(map[uuid.UUID]*Task),
	}
}

// Start запускает воркеры и блокируется до их остановки.
func (o *Orchestrator) Start() {
	op := "Orchestrator.Start()"
	log := o.logger.With(slog.String("op", op))

	for i := 0; i < o.cfg.PipelineConfig.WorkersCount; i++ {
		o.wg.Add(1)
		go o.handleJob(i)
	}
	log.Info("orchestrator started", slog.Int("workers", o.cfg.PipelineConfig.WorkersCount))

	o.wg.Wait()
}

// Submit ставит пакет в очередь и сразу возвращает его дескриптор.
func (o *Orchestrator) Submit(urls []string) (*Task, error) {
	op := "Orchestrator.Submit()"

	if len(urls) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyBatch)
	}

	ctx, cancel := context.WithCancel(o.baseCtx)
	task := &Task{
		ID:       uuid.New(),
		URLs:     append([]string(nil), urls...),
		progress: make(chan domain.Progress, 2*len(urls)+1),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		cancel()
		return nil, fmt.Errorf("%s: %w", op, ErrShuttingDown)
	}

	select {
	case o.jobs <- task:
	default:
		cancel()
		return nil, fmt.Errorf("%s: %w", op, ErrBufferFull)
	}
	o.tasks[task.ID] = task

	o.logger.Debug("batch queued",
		slog.String("op", op),
		slog.String("batchId", task.ID.String()),
		slog.Int("urls", len(urls)),
	)

	return task, nil
}

func (o *Orchestrator) Lookup(id uuid.UUID) (*Task, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	t, ok := o.tasks[id]
	return t, ok
}

// Forget убирает пакет из реестра. Незавершённый пакет отменяется.
func (o *Orchestrator) Forget(id uuid.UUID) {
	o.mu.Lock()
	t, ok := o.tasks[id]
	delete(o.tasks, id)
	o.mu.Unlock()

	if ok {
		select {
		case <-t.done:
		default:
			t.Cancel()
		}
	}
}

func (o *Orchestrator) handleJob(id int) {
	defer o.wg.Done()
	op := "Orchestrator.handleJob()"
	log := o.logger.With(
		slog.String("op", op),
		slog.Int("workerId", id),
	)

	log.Info("start batch handler")

	for {
		select {
		case <-o.shutdownChannel:
			return
		case task := <-o.jobs:
			o.run(task)
		}
	}
}

func (o *Orchestrator) run(task *Task) {
	op := "Orchestrator.run()"
	log := o.logger.With(
		slog.String("op", op),
		slog.String("batchId", task.ID.String()),
	)

	log.Info("batch started", slog.Int("urls", len(task.URLs)))

	res := RunBatch(task.ctx, task.URLs, o.processItem, task.emit)

	task.result = res
	close(task.progress)
	close(task.done)
	task.cancel()

	if retention := o.cfg.PipelineConfig.TaskRetention; retention > 0 {
		time.AfterFunc(retention, func() { o.Forget(task.ID) })
	}

	batchResult := metrics.ResultSuccess
	switch {
	case res.Cancelled:
		batchResult = metrics.ResultCancelled
	case res.Failed > 0 && res.Succeeded == 0:
		batchResult = metrics.ResultFailed
	}
	o.metrics.IncBatch(batchResult)

	log.Info("batch finished",
		slog.Int("succeeded", res.Succeeded),
		slog.Int("failed", res.Failed),
		slog.Int("skipped", res.Skipped),
		slog.Bool("cancelled", res.Cancelled),
	)
}

func (o *Orchestrator) processItem(ctx context.Context, url string) error {
	err := o.process(ctx, url)
	if err != nil {
		o.metrics.IncItem(metrics.ResultFailed)
		return err
	}
	o.metrics.IncItem(metrics.ResultSuccess)
	return nil
}

// Shutdown перестаёт принимать пакеты, отменяет выполняемые и ждёт воркеры.
// Пакеты, оставшиеся в очереди, завершаются как отменённые, чтобы слушатели получили {done: true}.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	close(o.shutdownChannel)
	o.mu.Unlock()

	o.cancelAll()

	stopped := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(stopped)
	}()

	select {
	case <-ctx.Done():
		// воркеры ещё заняты, но очередь всё равно закрывается
		o.drainQueue()
		return fmt.Errorf("force exit orchestrator: %w", ctx.Err())
	case <-stopped:
	}

	o.drainQueue()
	return nil
}

// drainQueue завершает оставшиеся в очереди пакеты. Их контексты уже отменены,
// поэтому ссылки пропускаются, а слушатели получают {done: true}.
func (o *Orchestrator) drainQueue() {
	for {
		select {
		case task := <-o.jobs:
			o.run(task)
		default:
			return
		}
	}
}

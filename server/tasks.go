package server

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/tributary/backfill"
)

// defaultPoolSize bounds concurrent jobs when no size is configured.
const defaultPoolSize = 4

// JobRunner executes one backfill job. The orchestrator's Run method
// satisfies it.
type JobRunner func(ctx context.Context, job backfill.Job) (*backfill.Result, error)

// TaskStatus is the lifecycle state of a submitted job.
type TaskStatus string

const (
	TaskRunning   TaskStatus = "RUNNING"
	TaskCompleted TaskStatus = "COMPLETED"
	TaskFailed    TaskStatus = "FAILED"
)

// Task is one submitted job and its outcome. Result is set on
// completion, Error on failure.
type Task struct {
	ID         string           `json:"task_id"`
	Status     TaskStatus       `json:"status"`
	Job        backfill.Job     `json:"job"`
	Result     *backfill.Result `json:"result,omitempty"`
	Error      string           `json:"error,omitempty"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
}

// TaskRegistry runs jobs on a bounded worker pool and tracks their
// state by task id. Submission never waits for a worker; a saturated
// pool rejects immediately so the API can answer with backpressure.
type TaskRegistry struct {
	runner JobRunner
	pool   *ants.Pool

	mu    sync.RWMutex
	tasks map[string]*Task
}

// NewTaskRegistry creates a registry backed by a pool of poolSize
// workers. Sizes below 1 fall back to the default.
func NewTaskRegistry(runner JobRunner, poolSize int) (*TaskRegistry, error) {
	if runner == nil {
		return nil, ErrRunnerRequired
	}
	if poolSize < 1 {
		poolSize = defaultPoolSize
	}

	pool, err := ants.NewPool(poolSize, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}

	return &TaskRegistry{
		runner: runner,
		pool:   pool,
		tasks:  make(map[string]*Task),
	}, nil
}

// Submit queues the job and returns its task id. The job runs
// asynchronously; failures land on the task record, never here.
// Returns ants.ErrPoolOverload when every worker is busy.
func (t *TaskRegistry) Submit(job backfill.Job) (string, error) {
	id := uuid.NewString()

	t.mu.Lock()
	t.tasks[id] = &Task{
		ID:        id,
		Status:    TaskRunning,
		Job:       job,
		StartedAt: time.Now().UTC(),
	}
	t.mu.Unlock()

	err := t.pool.Submit(func() {
		// Detached from the submitting request; the job outlives it.
		result, runErr := t.runner(context.Background(), job)

		t.mu.Lock()
		defer t.mu.Unlock()
		task := t.tasks[id]
		task.FinishedAt = time.Now().UTC()
		if runErr != nil {
			task.Status = TaskFailed
			task.Error = runErr.Error()
			return
		}
		task.Status = TaskCompleted
		task.Result = result
	})
	if err != nil {
		t.mu.Lock()
		delete(t.tasks, id)
		t.mu.Unlock()
		return "", err
	}
	return id, nil
}

// Get returns a snapshot of the task's current state.
func (t *TaskRegistry) Get(id string) (Task, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	task, ok := t.tasks[id]
	if !ok {
		return Task{}, false
	}
	return *task, true
}

// Running reports how many submitted jobs are still executing.
func (t *TaskRegistry) Running() int {
	return t.pool.Running()
}

// Release stops the worker pool. The registry should not be used
// after calling Release.
func (t *TaskRegistry) Release() {
	t.pool.Release()
}

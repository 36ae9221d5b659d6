package task

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/reusedev/prompt-hub/internal/consts"
	"github.com/reusedev/prompt-hub/internal/modules/genapi"
	"github.com/reusedev/prompt-hub/internal/modules/kvstore"
	"github.com/reusedev/prompt-hub/internal/modules/logs"
	"github.com/reusedev/prompt-hub/tools"
)

// TimeoutMessage marks a forced failure, distinct from a provider-reported
// one.
const TimeoutMessage = "generation timed out before the provider returned a result"

// Provider is the outbound side of the engine: submit one generation, query
// one remote job.
type Provider interface {
	Submit(ctx context.Context, prompt string) (genapi.SubmitResult, error)
	QueryTask(ctx context.Context, jobID string) (genapi.PollResult, error)
}

// Engine drives tasks from submission to a terminal state. One background
// poll cycle at a time examines the eligible tasks sequentially and applies
// its findings as a single batched update.
type Engine struct {
	ctx   context.Context
	store *Store
	kv    kvstore.Store
	clock Clock
	sched *Scheduler

	inFlight atomic.Bool

	// NewProvider builds the outbound client for a config. Swapped in tests.
	NewProvider func(cfg genapi.ApiConfig) Provider
	// OnCompleted runs after a task reaches completed, off the cycle path.
	OnCompleted func(t *Task)
}

func NewEngine(ctx context.Context, store *Store, kv kvstore.Store) *Engine {
	return NewEngineWithClock(ctx, store, kv, NewRealClock())
}

func NewEngineWithClock(ctx context.Context, store *Store, kv kvstore.Store, clock Clock) *Engine {
	e := &Engine{
		ctx:   ctx,
		store: store,
		kv:    kv,
		clock: clock,
		NewProvider: func(cfg genapi.ApiConfig) Provider {
			return genapi.NewClient(cfg)
		},
	}
	e.sched = NewScheduler(clock, consts.PollInterval, e.RunCycle)
	return e
}

func (e *Engine) Store() *Store {
	return e.store
}

func (e *Engine) Scheduler() *Scheduler {
	return e.sched
}

// ApiConfig loads the provider configuration from the persisted store.
func (e *Engine) ApiConfig() (genapi.ApiConfig, bool, error) {
	var cfg genapi.ApiConfig
	found, err := e.kv.Get(consts.KeyApiConfig, &cfg)
	return cfg, found, err
}

func (e *Engine) SaveApiConfig(cfg genapi.ApiConfig) error {
	return e.kv.Set(consts.KeyApiConfig, cfg)
}

func (e *Engine) provider() (Provider, error) {
	cfg, found, err := e.ApiConfig()
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("image generation is not configured")
	}
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	return e.NewProvider(cfg), nil
}

// Submit creates a task for the prompt and classifies the provider's
// response. A missing or invalid config is returned as an error and no task
// is constructed; every other failure is captured into the task itself.
func (e *Engine) Submit(prompt string) (*Task, error) {
	cfg, found, err := e.ApiConfig()
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("image generation is not configured")
	}
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	provider := e.NewProvider(cfg)

	now := e.clock.Now()
	t := &Task{
		ID:        uuid.NewString(),
		Prompt:    prompt,
		Model:     cfg.Model,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	ret, err := provider.Submit(e.ctx, prompt)
	if err != nil {
		ret = genapi.SubmitResult{Failed: true, Message: tools.Truncate(err.Error(), consts.ErrorBodyLimit)}
	}
	now = e.clock.Now()
	switch {
	case ret.Failed:
		t.Status = StatusFailed
		t.ErrorMessage = ret.Message
	case ret.JobID != "":
		t.Status = StatusProcessing
		t.RemoteJobID = ret.JobID
	default:
		// Synchronous result. The remote job id falls back to the local id
		// so eligibility checks stay uniform downstream.
		t.Status = StatusCompleted
		t.ResultImageURL = ret.URL
		t.ResultImageB64 = ret.B64
		t.RemoteJobID = ret.ResultID
		if t.RemoteJobID == "" {
			t.RemoteJobID = t.ID
		}
	}
	t.UpdatedAt = now

	if err := e.store.Prepend(t); err != nil {
		return nil, err
	}
	logs.Logger.Info().
		Str("task_id", t.ID).
		Str("remote_job_id", t.RemoteJobID).
		Str("status", t.Status.String()).
		Msg("task submitted")

	if t.Status == StatusCompleted {
		e.notifyCompleted(t)
	}
	if t.Status == StatusProcessing {
		e.sched.Arm()
	}
	return t.DeepCopy(), nil
}

// RunCycle executes one poll pass. A second call while one is active is a
// no-op; the gate bounds outbound concurrency and keeps batched writes from
// racing each other. Re-arms the scheduler only while something is still
// processing.
func (e *Engine) RunCycle() {
	if !e.inFlight.CompareAndSwap(false, true) {
		return
	}
	defer e.inFlight.Store(false)

	eligible := e.store.EligibleSnapshot()
	if len(eligible) == 0 {
		return
	}

	provider, err := e.provider()
	if err != nil {
		logs.Logger.Warn().Err(err).Msg("poll cycle without provider, timeout checks only")
	}

	updates := make([]*Task, 0)
	for _, t := range eligible {
		now := e.clock.Now()
		if now.Sub(t.CreatedAt) > consts.TaskTimeout {
			t.failTimeout(now)
			updates = append(updates, t)
			continue
		}
		if provider == nil {
			continue
		}
		ret, err := provider.QueryTask(e.ctx, t.RemoteJobID)
		if err != nil {
			// Transient poll errors never fail a task; next cycle retries.
			logs.Logger.Warn().Err(err).Str("task_id", t.ID).Msg("poll skipped")
			continue
		}
		if t.applyPoll(ret, e.clock.Now()) {
			updates = append(updates, t)
		}
	}

	if err := e.store.ApplyBatch(updates); err != nil {
		logs.Logger.Error().Err(err).Msg("persist poll updates")
	}
	for _, t := range updates {
		if t.Status == StatusCompleted {
			e.notifyCompleted(t)
		}
	}

	if e.store.HasProcessing() {
		e.sched.Arm()
	} else {
		e.sched.Disarm()
	}
}

// Refresh polls a single task immediately, bypassing the cycle gate. It works
// on any task with a remote job id, including ones the automatic loop no
// longer tracks.
func (e *Engine) Refresh(id string) (*Task, error) {
	t, ok := e.store.Get(id)
	if !ok {
		return nil, fmt.Errorf("task %s not found", id)
	}
	if t.RemoteJobID == "" {
		return nil, fmt.Errorf("task %s has no remote job id", id)
	}
	provider, err := e.provider()
	if err != nil {
		return nil, err
	}
	ret, err := provider.QueryTask(e.ctx, t.RemoteJobID)
	if err != nil {
		return nil, err
	}
	if t.applyPoll(ret, e.clock.Now()) {
		if err := e.store.ApplyBatch([]*Task{t}); err != nil {
			return nil, err
		}
		if t.Status == StatusCompleted {
			e.notifyCompleted(t)
		}
		if !e.store.HasProcessing() {
			e.sched.Disarm()
		}
	}
	return t, nil
}

func (e *Engine) Delete(id string) error {
	if err := e.store.Delete(id); err != nil {
		return err
	}
	if !e.store.HasProcessing() {
		e.sched.Disarm()
	}
	return nil
}

func (e *Engine) ClearFinished() (int, error) {
	return e.store.ClearFinished()
}

// Resume re-arms polling for tasks that were still processing when the last
// session ended.
func (e *Engine) Resume() {
	if e.store.HasProcessing() {
		e.sched.Arm()
	}
}

func (e *Engine) Stop() {
	e.sched.Disarm()
}

func (e *Engine) notifyCompleted(t *Task) {
	if e.OnCompleted == nil {
		return
	}
	c := t.DeepCopy()
	go e.OnCompleted(c)
}

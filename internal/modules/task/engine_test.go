package task

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/reusedev/prompt-hub/internal/consts"
	"github.com/reusedev/prompt-hub/internal/modules/genapi"
	"github.com/reusedev/prompt-hub/internal/modules/kvstore"
)

type fakeProvider struct {
	mu        sync.Mutex
	submit    genapi.SubmitResult
	submitErr error
	results   map[string][]genapi.PollResult
	queryErr  error
	calls     []string
	entered   chan struct{}
	release   chan struct{}
}

func (f *fakeProvider) Submit(_ context.Context, _ string) (genapi.SubmitResult, error) {
	return f.submit, f.submitErr
}

func (f *fakeProvider) QueryTask(_ context.Context, jobID string) (genapi.PollResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, jobID)
	var ret genapi.PollResult
	if queue := f.results[jobID]; len(queue) > 0 {
		ret = queue[0]
		f.results[jobID] = queue[1:]
	}
	f.mu.Unlock()
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	if f.queryErr != nil {
		return genapi.PollResult{}, f.queryErr
	}
	return ret, nil
}

func (f *fakeProvider) queryCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// countingKV counts Set calls per key so tests can assert one batched
// persistence write per cycle.
type countingKV struct {
	kvstore.Store
	mu   sync.Mutex
	sets map[string]int
}

func newCountingKV() *countingKV {
	return &countingKV{Store: kvstore.NewMemoryStore(), sets: make(map[string]int)}
}

func (c *countingKV) Set(key string, value any) error {
	c.mu.Lock()
	c.sets[key]++
	c.mu.Unlock()
	return c.Store.Set(key, value)
}

func (c *countingKV) setCount(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sets[key]
}

func validConfig() genapi.ApiConfig {
	return genapi.ApiConfig{
		BaseURL: "https://provider.test",
		APIKey:  "sk-test",
		Model:   "img-model",
		Enabled: true,
	}
}

func newTestEngine(t *testing.T) (*Engine, *fakeProvider, *countingKV, *fakeClock) {
	t.Helper()
	kv := newCountingKV()
	require.NoError(t, kv.Set(consts.KeyApiConfig, validConfig()))
	store, err := NewStore(kv)
	require.NoError(t, err)
	clock := newFakeClock()
	e := NewEngineWithClock(context.Background(), store, kv, clock)
	fp := &fakeProvider{results: make(map[string][]genapi.PollResult)}
	e.NewProvider = func(genapi.ApiConfig) Provider { return fp }
	return e, fp, kv, clock
}

func TestSubmitWithoutConfigIsRejected(t *testing.T) {
	kv := newCountingKV()
	store, err := NewStore(kv)
	require.NoError(t, err)
	e := NewEngineWithClock(context.Background(), store, kv, newFakeClock())

	_, err = e.Submit("a red fox")
	require.Error(t, err)
	// No dangling task for a configuration problem.
	require.Empty(t, store.Snapshot())
}

func TestSubmitAsyncJob(t *testing.T) {
	e, fp, _, _ := newTestEngine(t)
	fp.submit = genapi.SubmitResult{JobID: "abc"}

	got, err := e.Submit("a red fox")
	require.NoError(t, err)
	require.Equal(t, StatusProcessing, got.Status)
	require.Equal(t, "abc", got.RemoteJobID)
	require.Equal(t, "img-model", got.Model)
	require.True(t, e.Scheduler().Armed())
}

func TestSubmitSyncResultFallsBackToLocalID(t *testing.T) {
	e, fp, _, _ := newTestEngine(t)
	fp.submit = genapi.SubmitResult{URL: "https://x/img.png"}

	got, err := e.Submit("a red fox")
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, got.Status)
	require.Equal(t, "https://x/img.png", got.ResultImageURL)
	require.NotEmpty(t, got.RemoteJobID)
	require.Equal(t, got.ID, got.RemoteJobID)
	require.False(t, e.Scheduler().Armed())
}

func TestSubmitSyncResultKeepsProviderID(t *testing.T) {
	e, fp, _, _ := newTestEngine(t)
	fp.submit = genapi.SubmitResult{URL: "https://x/img.png", ResultID: "r-9"}

	got, err := e.Submit("a red fox")
	require.NoError(t, err)
	require.Equal(t, "r-9", got.RemoteJobID)
}

func TestSubmitFailureIsCapturedIntoTask(t *testing.T) {
	e, fp, _, _ := newTestEngine(t)
	fp.submit = genapi.SubmitResult{Failed: true, Message: "502 Bad Gateway: upstream down"}

	got, err := e.Submit("a red fox")
	require.NoError(t, err)
	require.Equal(t, StatusFailed, got.Status)
	require.Equal(t, "502 Bad Gateway: upstream down", got.ErrorMessage)
	require.False(t, e.Scheduler().Armed())
}

func TestCycleRunningThenSucceeded(t *testing.T) {
	e, fp, _, _ := newTestEngine(t)
	fp.submit = genapi.SubmitResult{JobID: "abc"}
	got, err := e.Submit("a red fox")
	require.NoError(t, err)

	fp.results["abc"] = []genapi.PollResult{
		{Status: genapi.StatusRunning},
		{Status: genapi.StatusSucceeded, URL: "https://x/img.png"},
	}

	e.RunCycle()
	cur, ok := e.Store().Get(got.ID)
	require.True(t, ok)
	require.Equal(t, StatusProcessing, cur.Status)
	require.True(t, e.Scheduler().Armed())

	e.RunCycle()
	cur, ok = e.Store().Get(got.ID)
	require.True(t, ok)
	require.Equal(t, StatusCompleted, cur.Status)
	require.Equal(t, "https://x/img.png", cur.ResultImageURL)
	require.Empty(t, cur.ErrorMessage)
	require.False(t, e.Scheduler().Armed())
}

func TestCycleProviderFailure(t *testing.T) {
	e, fp, _, _ := newTestEngine(t)
	fp.submit = genapi.SubmitResult{JobID: "abc"}
	got, err := e.Submit("a red fox")
	require.NoError(t, err)

	fp.results["abc"] = []genapi.PollResult{
		{Status: genapi.StatusFailed, Message: "nsfw"},
	}
	e.RunCycle()

	cur, _ := e.Store().Get(got.ID)
	require.Equal(t, StatusFailed, cur.Status)
	require.Equal(t, "nsfw", cur.ErrorMessage)
}

func TestCycleTimeoutPreemptsNetworkCall(t *testing.T) {
	e, fp, _, clock := newTestEngine(t)
	fp.submit = genapi.SubmitResult{JobID: "abc"}
	got, err := e.Submit("a red fox")
	require.NoError(t, err)

	clock.Advance(consts.TaskTimeout + time.Second)
	e.RunCycle()

	cur, _ := e.Store().Get(got.ID)
	require.Equal(t, StatusFailed, cur.Status)
	require.Equal(t, TimeoutMessage, cur.ErrorMessage)
	require.Empty(t, fp.queryCalls())
}

func TestCyclePersistsOnceForManyTasks(t *testing.T) {
	e, fp, kv, _ := newTestEngine(t)
	fp.submit = genapi.SubmitResult{JobID: "job-1"}
	_, err := e.Submit("first")
	require.NoError(t, err)
	fp.submit = genapi.SubmitResult{JobID: "job-2"}
	_, err = e.Submit("second")
	require.NoError(t, err)

	fp.results["job-1"] = []genapi.PollResult{{Status: genapi.StatusSucceeded, URL: "https://x/1.png"}}
	fp.results["job-2"] = []genapi.PollResult{{Status: genapi.StatusSucceeded, URL: "https://x/2.png"}}

	before := kv.setCount(consts.KeyTasks)
	e.RunCycle()
	require.Equal(t, before+1, kv.setCount(consts.KeyTasks))

	// Both were queried, in snapshot order (newest first).
	require.Equal(t, []string{"job-2", "job-1"}, fp.queryCalls())
}

func TestConcurrentCyclesAreMutuallyExclusive(t *testing.T) {
	e, fp, _, _ := newTestEngine(t)
	fp.submit = genapi.SubmitResult{JobID: "abc"}
	_, err := e.Submit("a red fox")
	require.NoError(t, err)

	fp.results["abc"] = []genapi.PollResult{{Status: genapi.StatusRunning}}
	fp.entered = make(chan struct{}, 1)
	fp.release = make(chan struct{})

	done := make(chan struct{})
	go func() {
		e.RunCycle()
		close(done)
	}()
	<-fp.entered

	// Second cycle while the first is in flight must be a no-op.
	e.RunCycle()
	close(fp.release)
	<-done

	require.Len(t, fp.queryCalls(), 1)
}

func TestPollTransportErrorLeavesTaskProcessing(t *testing.T) {
	e, fp, _, _ := newTestEngine(t)
	fp.submit = genapi.SubmitResult{JobID: "abc"}
	got, err := e.Submit("a red fox")
	require.NoError(t, err)

	fp.queryErr = context.DeadlineExceeded
	e.RunCycle()

	cur, _ := e.Store().Get(got.ID)
	require.Equal(t, StatusProcessing, cur.Status)
	// The loop stays armed so the next cycle retries.
	require.True(t, e.Scheduler().Armed())
}

func TestUnrecognizedStatusLeavesTaskUnchanged(t *testing.T) {
	e, fp, _, _ := newTestEngine(t)
	fp.submit = genapi.SubmitResult{JobID: "abc"}
	got, err := e.Submit("a red fox")
	require.NoError(t, err)

	fp.results["abc"] = []genapi.PollResult{{Status: genapi.StatusUnknown}}
	e.RunCycle()

	cur, _ := e.Store().Get(got.ID)
	require.Equal(t, StatusProcessing, cur.Status)
}

func TestDeletedTaskNeverEntersNextSnapshot(t *testing.T) {
	e, fp, _, _ := newTestEngine(t)
	fp.submit = genapi.SubmitResult{JobID: "abc"}
	got, err := e.Submit("a red fox")
	require.NoError(t, err)

	require.NoError(t, e.Delete(got.ID))
	require.False(t, e.Scheduler().Armed())

	e.RunCycle()
	require.Empty(t, fp.queryCalls())
	_, ok := e.Store().Get(got.ID)
	require.False(t, ok)
}

func TestClearFinishedKeepsActiveTasks(t *testing.T) {
	e, fp, _, _ := newTestEngine(t)
	fp.submit = genapi.SubmitResult{JobID: "run"}
	running, err := e.Submit("still running")
	require.NoError(t, err)
	fp.submit = genapi.SubmitResult{URL: "https://x/done.png"}
	_, err = e.Submit("done")
	require.NoError(t, err)
	fp.submit = genapi.SubmitResult{Failed: true, Message: "boom"}
	_, err = e.Submit("broken")
	require.NoError(t, err)

	removed, err := e.ClearFinished()
	require.NoError(t, err)
	require.Equal(t, 2, removed)

	left := e.Store().Snapshot()
	require.Len(t, left, 1)
	require.Equal(t, running.ID, left[0].ID)
	require.Equal(t, StatusProcessing, left[0].Status)
}

func TestManualRefreshBypassesCycleGate(t *testing.T) {
	e, fp, _, _ := newTestEngine(t)
	fp.submit = genapi.SubmitResult{JobID: "abc"}
	got, err := e.Submit("a red fox")
	require.NoError(t, err)

	fp.results["abc"] = []genapi.PollResult{{Status: genapi.StatusSucceeded, URL: "https://x/img.png"}}

	// Simulate an automatic cycle holding the gate.
	require.True(t, e.inFlight.CompareAndSwap(false, true))
	cur, err := e.Refresh(got.ID)
	e.inFlight.Store(false)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, cur.Status)
	require.Equal(t, "https://x/img.png", cur.ResultImageURL)
}

func TestRefreshDoesNotClearEarlierResultFields(t *testing.T) {
	e, fp, _, _ := newTestEngine(t)
	fp.submit = genapi.SubmitResult{JobID: "abc"}
	got, err := e.Submit("a red fox")
	require.NoError(t, err)

	fp.results["abc"] = []genapi.PollResult{
		{Status: genapi.StatusSucceeded, URL: "https://x/img.png"},
		{Status: genapi.StatusSucceeded, B64: "aW1hZ2U="},
	}
	_, err = e.Refresh(got.ID)
	require.NoError(t, err)
	cur, err := e.Refresh(got.ID)
	require.NoError(t, err)

	// Last non-empty wins: the URL from the first response survives the
	// second response that carried only inline data.
	require.Equal(t, "https://x/img.png", cur.ResultImageURL)
	require.Equal(t, "aW1hZ2U=", cur.ResultImageB64)
}

func TestResumeRearmsForPersistedProcessingTasks(t *testing.T) {
	kv := newCountingKV()
	require.NoError(t, kv.Set(consts.KeyApiConfig, validConfig()))
	now := time.Now()
	require.NoError(t, kv.Set(consts.KeyTasks, []*Task{{
		ID:          "t-1",
		RemoteJobID: "abc",
		Status:      StatusProcessing,
		CreatedAt:   now,
		UpdatedAt:   now,
	}}))

	store, err := NewStore(kv)
	require.NoError(t, err)
	e := NewEngineWithClock(context.Background(), store, kv, newFakeClock())
	e.Resume()
	require.True(t, e.Scheduler().Armed())
}

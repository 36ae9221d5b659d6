package task

import (
	"sync"

	"github.com/reusedev/prompt-hub/internal/consts"
	"github.com/reusedev/prompt-hub/internal/modules/kvstore"
)

// Store owns the task collection. All mutations funnel through it and each
// mutation persists the whole list to the KV sink; readers get deep-copied
// snapshots so a poll cycle never shares memory with the live list.
type Store struct {
	lock  sync.Mutex
	tasks []*Task
	kv    kvstore.Store
}

func NewStore(kv kvstore.Store) (*Store, error) {
	s := &Store{kv: kv}
	var loaded []*Task
	if _, err := kv.Get(consts.KeyTasks, &loaded); err != nil {
		return nil, err
	}
	s.tasks = loaded
	return s, nil
}

func (s *Store) persistLocked() error {
	return s.kv.Set(consts.KeyTasks, s.tasks)
}

// Snapshot returns deep copies of every task, newest first.
func (s *Store) Snapshot() []*Task {
	s.lock.Lock()
	defer s.lock.Unlock()
	ret := make([]*Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		ret = append(ret, t.DeepCopy())
	}
	return ret
}

// EligibleSnapshot copies the tasks a poll cycle may touch: processing with
// a non-empty remote job id.
func (s *Store) EligibleSnapshot() []*Task {
	s.lock.Lock()
	defer s.lock.Unlock()
	ret := make([]*Task, 0)
	for _, t := range s.tasks {
		if t.Status == StatusProcessing && t.RemoteJobID != "" {
			ret = append(ret, t.DeepCopy())
		}
	}
	return ret
}

func (s *Store) Get(id string) (*Task, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t.DeepCopy(), true
		}
	}
	return nil, false
}

// Prepend puts a new task at the head of the list and persists.
func (s *Store) Prepend(t *Task) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.tasks = append([]*Task{t.DeepCopy()}, s.tasks...)
	return s.persistLocked()
}

// ApplyBatch replaces tasks by id and persists once. Updates whose task has
// been deleted in the meantime are dropped silently.
func (s *Store) ApplyBatch(updates []*Task) error {
	if len(updates) == 0 {
		return nil
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	byID := make(map[string]*Task, len(updates))
	for _, u := range updates {
		byID[u.ID] = u
	}
	for i, t := range s.tasks {
		if u, ok := byID[t.ID]; ok {
			s.tasks[i] = u.DeepCopy()
		}
	}
	return s.persistLocked()
}

func (s *Store) Delete(id string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	for i, t := range s.tasks {
		if t.ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			break
		}
	}
	return s.persistLocked()
}

// ClearFinished removes every completed or failed task and reports how many
// were dropped.
func (s *Store) ClearFinished() (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	kept := s.tasks[:0]
	removed := 0
	for _, t := range s.tasks {
		if t.Status.Terminal() {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	s.tasks = kept
	return removed, s.persistLocked()
}

func (s *Store) HasProcessing() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	for _, t := range s.tasks {
		if t.Status == StatusProcessing {
			return true
		}
	}
	return false
}

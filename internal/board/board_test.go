package board

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/calculator"
	"taskboard/internal/parser"
	"taskboard/internal/types"
)

type memStore struct {
	mu    sync.Mutex
	tasks []types.Task
	seq   int
	loads int
}

func (s *memStore) ListTasks(_ context.Context, workspaceID string) ([]types.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	out := []types.Task{}
	for _, t := range s.tasks {
		if t.WorkspaceID == workspaceID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *memStore) CreateTask(_ context.Context, task *types.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	task.ID = string(rune('a' + s.seq - 1))
	if task.Status == "" {
		task.Status = types.StatusTodo
	}
	s.tasks = append(s.tasks, *task)
	return nil
}

func (s *memStore) UpdateTask(_ context.Context, task types.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tasks {
		if t.ID == task.ID && t.WorkspaceID == task.WorkspaceID {
			s.tasks[i] = task
			return nil
		}
	}
	return errNotFound
}

func (s *memStore) DeleteTask(_ context.Context, workspaceID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tasks {
		if t.ID == id && t.WorkspaceID == workspaceID {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return nil
		}
	}
	return errNotFound
}

var errNotFound = errors.New("not found")

type notification struct {
	workspaceID string
	revision    int64
}

type recorder struct {
	mu        sync.Mutex
	notified  []notification
	enriched  int
	memoHits  int
	hits      int
	misses    int
	mutations []string
}

func (r *recorder) Notify(_ context.Context, workspaceID string, revision int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notified = append(r.notified, notification{workspaceID, revision})
}

func (r *recorder) MemoHit()               { r.memoHits++ }
func (r *recorder) Enriched(int, float64)  { r.enriched++ }
func (r *recorder) CacheHit()              { r.hits++ }
func (r *recorder) CacheMiss()             { r.misses++ }
func (r *recorder) TaskMutation(op string) { r.mutations = append(r.mutations, op) }

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestManager(t *testing.T) (*Manager, *memStore, *recorder) {
	t.Helper()
	store := &memStore{}
	rec := &recorder{}
	m, err := NewManager(store,
		WithNotifier(rec),
		WithMetrics(rec),
		WithCalculator(calculator.NewCalculatorWithClock(func() time.Time { return fixedNow })),
	)
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m, store, rec
}

func TestManager_SnapshotReuse(t *testing.T) {
	ctx := context.Background()
	m, store, rec := newTestManager(t)

	first, err := m.Snapshot(ctx, "ws")
	require.NoError(t, err)
	assert.NotNil(t, first.Tasks)
	assert.Equal(t, int64(1), first.Revision)

	second, err := m.Snapshot(ctx, "ws")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, store.loads)
	assert.Equal(t, 1, rec.misses)
	assert.Equal(t, 1, rec.hits)
}

func TestManager_EnrichedMemo(t *testing.T) {
	ctx := context.Background()
	m, _, rec := newTestManager(t)

	_, err := m.AddTask(ctx, "ws", types.CreateTaskRequest{Name: "a", DueDate: "2024-05-01T13:00:00Z"})
	require.NoError(t, err)
	_, err = m.AddTask(ctx, "ws", types.CreateTaskRequest{Name: "b", DueDate: "2024-05-01T15:00:00Z"})
	require.NoError(t, err)

	res1, err := m.Enriched(ctx, "ws")
	require.NoError(t, err)
	res2, err := m.Enriched(ctx, "ws")
	require.NoError(t, err)

	out1, out2 := res1.Tasks, res2.Tasks
	assert.Same(t, res1.List, res2.List)
	assert.True(t, res1.CalculatedAt.Equal(fixedNow))
	assert.Equal(t, 1, rec.enriched)
	assert.Equal(t, 1, rec.memoHits)
	require.Len(t, out1, 2)
	assert.Same(t, &out1[0], &out2[0])

	assert.Equal(t, "a", out1[0].Name)
	assert.Equal(t, 1, out1[0].Priority)
	assert.Equal(t, "1.00", out1[0].TurnaroundTime.Format())
	assert.Equal(t, "1.00", out1[1].WaitingTime.Format())
	assert.Equal(t, "4.00", out1[1].TurnaroundTime.Format())
}

func TestManager_MutationInvalidates(t *testing.T) {
	ctx := context.Background()
	m, _, rec := newTestManager(t)

	task, err := m.AddTask(ctx, "ws", types.CreateTaskRequest{Name: "a", DueDate: "2024-05-02"})
	require.NoError(t, err)
	assert.Equal(t, "2024-05-02T00:00:00Z", task.DueDate)
	assert.Equal(t, types.StatusTodo, task.Status)

	before, err := m.Enriched(ctx, "ws")
	require.NoError(t, err)
	assert.Equal(t, int64(2), before.List.Revision)

	task.Name = "renamed"
	_, err = m.UpdateTask(ctx, *task)
	require.NoError(t, err)

	after, err := m.Enriched(ctx, "ws")
	require.NoError(t, err)
	assert.NotSame(t, before.List, after.List)
	assert.Equal(t, int64(3), after.List.Revision)
	assert.Equal(t, "renamed", after.Tasks[0].Name)
	assert.Equal(t, 2, rec.enriched)

	require.NoError(t, m.RemoveTask(ctx, "ws", task.ID))
	empty, err := m.Enriched(ctx, "ws")
	require.NoError(t, err)
	assert.Empty(t, empty.List.Tasks)
	assert.NotNil(t, empty.Tasks)
	assert.Empty(t, empty.Tasks)

	assert.Equal(t, []notification{{"ws", 2}, {"ws", 3}, {"ws", 4}}, rec.notified)
	assert.Equal(t, []string{"create", "update", "delete"}, rec.mutations)
	assert.Equal(t, int64(4), m.Revision("ws"))
}

func TestManager_Validation(t *testing.T) {
	ctx := context.Background()
	m, store, rec := newTestManager(t)

	tests := []struct {
		name    string
		req     types.CreateTaskRequest
		wantErr error
	}{
		{name: "пустое имя", req: types.CreateTaskRequest{Name: "  ", DueDate: "2024-05-02"}, wantErr: ErrEmptyName},
		{name: "неверный срок", req: types.CreateTaskRequest{Name: "a", DueDate: "tomorrow"}, wantErr: parser.ErrInvalidDueDate},
		{name: "пустой срок", req: types.CreateTaskRequest{Name: "a"}, wantErr: parser.ErrInvalidDueDate},
		{name: "неверный статус", req: types.CreateTaskRequest{Name: "a", DueDate: "2024-05-02", Status: "later"}, wantErr: ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.AddTask(ctx, "ws", tt.req)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}

	assert.Empty(t, store.tasks)
	assert.Empty(t, rec.notified)
	assert.Equal(t, int64(1), m.Revision("ws"))
}

func TestManager_RemoveMissing(t *testing.T) {
	m, _, rec := newTestManager(t)

	err := m.RemoveTask(context.Background(), "ws", "nope")
	assert.True(t, errors.Is(err, errNotFound))
	assert.Empty(t, rec.notified)
}

func TestManager_WorkspacesIsolated(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager(t)

	_, err := m.AddTask(ctx, "one", types.CreateTaskRequest{Name: "a", DueDate: "2024-05-02"})
	require.NoError(t, err)

	other, err := m.Snapshot(ctx, "two")
	require.NoError(t, err)
	assert.Empty(t, other.Tasks)
	assert.Equal(t, int64(1), other.Revision)
	assert.Equal(t, int64(2), m.Revision("one"))
}

package board

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"taskboard/internal/calculator"
	"taskboard/internal/parser"
	"taskboard/internal/types"
)

const DefaultCacheMaxCost = 1 << 16

var (
	ErrEmptyName     = errors.New("task name is required")
	ErrInvalidStatus = errors.New("invalid task status")
)

// Store - постоянное хранилище задач
type Store interface {
	ListTasks(ctx context.Context, workspaceID string) ([]types.Task, error)
	CreateTask(ctx context.Context, task *types.Task) error
	UpdateTask(ctx context.Context, task types.Task) error
	DeleteTask(ctx context.Context, workspaceID, id string) error
}

// Notifier оповещает подписчиков об изменении задач рабочего пространства
type Notifier interface {
	Notify(ctx context.Context, workspaceID string, revision int64)
}

type Metrics interface {
	calculator.Observer
	CacheHit()
	CacheMiss()
	TaskMutation(op string)
}

type Option func(*Manager)

func WithNotifier(n Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

func WithMetrics(mt Metrics) Option {
	return func(m *Manager) { m.metrics = mt }
}

func WithCalculator(c *calculator.Calculator) Option {
	return func(m *Manager) { m.calc = c }
}

// WithCacheMaxCost задает емкость кеша снимков в задачах
func WithCacheMaxCost(cost int64) Option {
	return func(m *Manager) {
		if cost > 0 {
			m.maxCost = cost
		}
	}
}

// Result - снимок задач и рассчитанные для него метрики
type Result struct {
	List         *types.TaskList
	Tasks        []types.EnrichedTask
	CalculatedAt time.Time
}

type boardState struct {
	revision int64
	memo     *calculator.Memo
}

// Manager выдает неизменяемые снимки задач рабочих пространств
// и мемоизированные метрики планирования для них.
// Каждое изменение задач создает новую ревизию и новый снимок.
type Manager struct {
	store    Store
	calc     *calculator.Calculator
	notifier Notifier
	metrics  Metrics
	maxCost  int64

	cache *ristretto.Cache[string, *types.TaskList]

	mu     sync.Mutex
	boards map[string]*boardState
}

func NewManager(store Store, opts ...Option) (*Manager, error) {
	m := &Manager{
		store:   store,
		maxCost: DefaultCacheMaxCost,
		boards:  make(map[string]*boardState),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.calc == nil {
		m.calc = calculator.NewCalculator()
	}

	cache, err := ristretto.NewCache(&ristretto.Config[string, *types.TaskList]{
		NumCounters: m.maxCost * 10,
		MaxCost:     m.maxCost,
		BufferItems: 64,
		// стоимость снимка считается в задачах
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания кеша снимков: %w", err)
	}
	m.cache = cache

	return m, nil
}

func (m *Manager) Close() {
	m.cache.Close()
}

// state возвращает состояние доски; вызывается под m.mu
func (m *Manager) state(workspaceID string) *boardState {
	st, ok := m.boards[workspaceID]
	if !ok {
		var observer calculator.Observer
		if m.metrics != nil {
			observer = m.metrics
		}
		st = &boardState{revision: 1, memo: calculator.NewMemo(m.calc, observer)}
		m.boards[workspaceID] = st
	}
	return st
}

// Revision возвращает текущую ревизию задач рабочего пространства
func (m *Manager) Revision(workspaceID string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state(workspaceID).revision
}

// Snapshot возвращает текущий снимок задач. Пока задачи не менялись,
// возвращается тот же указатель.
func (m *Manager) Snapshot(ctx context.Context, workspaceID string) (*types.TaskList, error) {
	if list, ok := m.cache.Get(workspaceID); ok {
		m.cacheHit()
		return list, nil
	}
	m.cacheMiss()

	m.mu.Lock()
	revision := m.state(workspaceID).revision
	m.mu.Unlock()

	tasks, err := m.store.ListTasks(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки задач: %w", err)
	}

	list := &types.TaskList{WorkspaceID: workspaceID, Revision: revision, Tasks: tasks}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Пока шла загрузка, задачи могли измениться
	if m.state(workspaceID).revision != revision {
		return list, nil
	}
	if cached, ok := m.cache.Get(workspaceID); ok && cached.Revision == revision {
		return cached, nil
	}
	m.cache.Set(workspaceID, list, int64(len(tasks)+1))
	m.cache.Wait()

	return list, nil
}

// Enriched возвращает снимок и рассчитанные для него метрики.
// Для неизменного снимка пересчет не выполняется.
func (m *Manager) Enriched(ctx context.Context, workspaceID string) (*Result, error) {
	list, err := m.Snapshot(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	memo := m.state(workspaceID).memo
	m.mu.Unlock()

	tasks, at := memo.EnrichedAt(list)
	return &Result{List: list, Tasks: tasks, CalculatedAt: at}, nil
}

// AddTask проверяет и сохраняет новую задачу
func (m *Manager) AddTask(ctx context.Context, workspaceID string, req types.CreateTaskRequest) (*types.Task, error) {
	task := types.Task{
		WorkspaceID: workspaceID,
		Name:        req.Name,
		DueDate:     req.DueDate,
		Status:      req.Status,
	}
	if err := normalize(&task); err != nil {
		return nil, err
	}

	if err := m.store.CreateTask(ctx, &task); err != nil {
		return nil, err
	}

	m.changed(ctx, workspaceID, "create")
	return &task, nil
}

// UpdateTask проверяет и сохраняет измененную задачу
func (m *Manager) UpdateTask(ctx context.Context, task types.Task) (*types.Task, error) {
	if err := normalize(&task); err != nil {
		return nil, err
	}
	if task.Status == "" {
		task.Status = types.StatusTodo
	}

	if err := m.store.UpdateTask(ctx, task); err != nil {
		return nil, err
	}

	m.changed(ctx, task.WorkspaceID, "update")
	return &task, nil
}

func (m *Manager) RemoveTask(ctx context.Context, workspaceID, taskID string) error {
	if err := m.store.DeleteTask(ctx, workspaceID, taskID); err != nil {
		return err
	}

	m.changed(ctx, workspaceID, "delete")
	return nil
}

// changed создает новую ревизию, сбрасывает снимок и оповещает подписчиков
func (m *Manager) changed(ctx context.Context, workspaceID, op string) {
	m.mu.Lock()
	st := m.state(workspaceID)
	st.revision++
	revision := st.revision
	m.cache.Del(workspaceID)
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.TaskMutation(op)
	}

	log.Printf("Задачи пространства %s изменены (%s), ревизия %d", workspaceID, op, revision)

	if m.notifier != nil {
		m.notifier.Notify(ctx, workspaceID, revision)
	}
}

func (m *Manager) cacheHit() {
	if m.metrics != nil {
		m.metrics.CacheHit()
	}
}

func (m *Manager) cacheMiss() {
	if m.metrics != nil {
		m.metrics.CacheMiss()
	}
}

// normalize проверяет имя, срок и статус задачи. Срок приводится к RFC 3339 в UTC.
func normalize(task *types.Task) error {
	task.Name = strings.TrimSpace(task.Name)
	if task.Name == "" {
		return ErrEmptyName
	}

	due, err := parser.ParseDueDate(task.DueDate)
	if err != nil {
		return err
	}
	task.DueDate = parser.FormatDueDate(due)

	switch task.Status {
	case "", types.StatusTodo, types.StatusInProgress, types.StatusDone:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStatus, task.Status)
	}

	return nil
}

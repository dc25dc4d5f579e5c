package calculator

import (
	"sync"
	"time"

	"taskboard/internal/types"
)

// Observer получает сведения о попаданиях в мемо и пересчетах
type Observer interface {
	MemoHit()
	Enriched(tasks int, seconds float64)
}

// Memo хранит результат последнего пересчета и повторяет его,
// пока на вход приходит тот же снимок (по указателю).
// Изменение задач на месте пересчета не вызывает: нужен новый снимок.
type Memo struct {
	mu       sync.Mutex
	calc     *Calculator
	observer Observer
	src      *types.TaskList
	out      []types.EnrichedTask
	at       time.Time
	runs     int
}

func NewMemo(calc *Calculator, observer Observer) *Memo {
	if calc == nil {
		calc = NewCalculator()
	}
	return &Memo{calc: calc, observer: observer}
}

// Enriched возвращает обогащенные задачи снимка list.
// Возвращаемый срез общий для всех вызывающих и не должен изменяться.
func (m *Memo) Enriched(list *types.TaskList) []types.EnrichedTask {
	out, _ := m.EnrichedAt(list)
	return out
}

// EnrichedAt дополнительно возвращает момент, относительно которого выполнен расчет
func (m *Memo) EnrichedAt(list *types.TaskList) ([]types.EnrichedTask, time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.runs > 0 && list == m.src {
		if m.observer != nil {
			m.observer.MemoHit()
		}
		return m.out, m.at
	}

	var tasks []types.Task
	if list != nil {
		tasks = list.Tasks
	}

	// длительность меряем по настенным часам: часы калькулятора могут быть заморожены
	started := time.Now()
	at := m.calc.now()
	m.out = EnrichAt(tasks, at)
	m.src = list
	m.at = at
	m.runs++

	if m.observer != nil {
		m.observer.Enriched(len(m.out), time.Since(started).Seconds())
	}

	return m.out, m.at
}

// Runs возвращает число фактических пересчетов
func (m *Memo) Runs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runs
}

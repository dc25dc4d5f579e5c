package calculator

import (
	"sort"
	"time"

	"taskboard/internal/parser"
	"taskboard/internal/types"
)

const millisPerHour = 1000 * 60 * 60

// Calculator рассчитывает порядок задач по кратчайшему оставшемуся времени (SRTF)
// и производные метрики: приоритет, время ожидания и время оборота.
type Calculator struct {
	now func() time.Time
}

func NewCalculator() *Calculator {
	return &Calculator{now: time.Now}
}

// NewCalculatorWithClock создает калькулятор с заданным источником времени
func NewCalculatorWithClock(now func() time.Time) *Calculator {
	if now == nil {
		now = time.Now
	}
	return &Calculator{now: now}
}

// Enrich обогащает задачи относительно текущего момента
func Enrich(tasks []types.Task) []types.EnrichedTask {
	return NewCalculator().Enrich(tasks)
}

func (c *Calculator) Enrich(tasks []types.Task) []types.EnrichedTask {
	// Один снимок времени на весь проход
	return EnrichAt(tasks, c.now())
}

// EnrichAt обогащает задачи относительно момента now.
//
// Задачи с неразбираемым сроком получают ранг после всех корректных задач,
// не имеют времени ожидания и оборота и не увеличивают накопленное ожидание.
func EnrichAt(tasks []types.Task, now time.Time) []types.EnrichedTask {
	nowMs := now.UnixMilli()

	enriched := make([]types.EnrichedTask, len(tasks))
	for i, task := range tasks {
		e := types.EnrichedTask{Task: task}
		due, err := parser.ParseDueDate(task.DueDate)
		if err != nil {
			e.InvalidDueDate = true
		} else {
			e.RemainingTime = due.UnixMilli() - nowMs
		}
		enriched[i] = e
	}

	sort.SliceStable(enriched, func(i, j int) bool {
		a, b := enriched[i], enriched[j]
		if a.InvalidDueDate != b.InvalidDueDate {
			return !a.InvalidDueDate
		}
		if a.InvalidDueDate {
			return false
		}
		return a.RemainingTime < b.RemainingTime
	})

	var totalWaitingTime int64
	for i := range enriched {
		task := &enriched[i]
		task.Priority = i + 1

		if task.InvalidDueDate {
			task.WaitingTime = types.Hours{}
			task.TurnaroundTime = types.Hours{}
			continue
		}

		waitingTime := totalWaitingTime
		turnaroundTime := waitingTime + task.RemainingTime

		task.WaitingTime = types.SomeHours(toHours(waitingTime))
		task.TurnaroundTime = types.SomeHours(toHours(turnaroundTime))

		// Просроченные задачи не уменьшают ожидание следующих
		if task.RemainingTime > 0 {
			totalWaitingTime += task.RemainingTime
		}
	}

	return enriched
}

func toHours(ms int64) float64 {
	return float64(ms) / millisPerHour
}

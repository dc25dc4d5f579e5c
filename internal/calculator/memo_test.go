package calculator_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/calculator"
	"taskboard/internal/types"
)

type countingObserver struct {
	hits     int
	enriched int
	seconds  float64
}

func (o *countingObserver) MemoHit() { o.hits++ }

func (o *countingObserver) Enriched(_ int, seconds float64) {
	o.enriched++
	o.seconds = seconds
}

func TestMemo_RecomputesOnlyOnNewSnapshot(t *testing.T) {
	obs := &countingObserver{}
	memo := calculator.NewMemo(calculator.NewCalculatorWithClock(func() time.Time { return now }), obs)

	list := &types.TaskList{Tasks: []types.Task{task("b", 2*time.Hour), task("a", time.Hour)}}

	first := memo.Enriched(list)
	second := memo.Enriched(list)

	require.Equal(t, []string{"a", "b"}, ids(first))
	assert.Equal(t, 1, memo.Runs())
	assert.Equal(t, 1, obs.hits)
	assert.Equal(t, 1, obs.enriched)
	assert.Same(t, &first[0], &second[0])

	// Тот же состав задач, но новый снимок - пересчет
	copied := &types.TaskList{Tasks: append([]types.Task(nil), list.Tasks...)}
	memo.Enriched(copied)
	assert.Equal(t, 2, memo.Runs())

	// Изменение на месте без нового снимка пересчета не вызывает
	copied.Tasks[0].DueDate = due(10 * time.Minute)
	stale := memo.Enriched(copied)
	assert.Equal(t, 2, memo.Runs())
	assert.Equal(t, []string{"a", "b"}, ids(stale))
}

func TestMemo_NilList(t *testing.T) {
	memo := calculator.NewMemo(nil, nil)

	got := memo.Enriched(nil)
	assert.Empty(t, got)
	assert.Equal(t, 1, memo.Runs())

	memo.Enriched(nil)
	assert.Equal(t, 1, memo.Runs())
}

func TestMemo_EnrichedAt(t *testing.T) {
	clock := now
	memo := calculator.NewMemo(calculator.NewCalculatorWithClock(func() time.Time { return clock }), nil)
	list := &types.TaskList{Tasks: []types.Task{task("a", time.Hour)}}

	_, at := memo.EnrichedAt(list)
	assert.True(t, at.Equal(now))

	// Повторный вызов возвращает момент исходного расчета
	clock = now.Add(time.Minute)
	_, at = memo.EnrichedAt(list)
	assert.True(t, at.Equal(now))

	_, at = memo.EnrichedAt(&types.TaskList{})
	assert.True(t, at.Equal(now.Add(time.Minute)))
}

func TestMemo_DurationIgnoresFrozenClock(t *testing.T) {
	obs := &countingObserver{}
	// часы калькулятора заморожены в 2024 году
	memo := calculator.NewMemo(calculator.NewCalculatorWithClock(func() time.Time { return now }), obs)

	memo.Enriched(&types.TaskList{Tasks: []types.Task{task("a", time.Hour), task("b", 2*time.Hour)}})

	require.Equal(t, 1, obs.enriched)
	assert.GreaterOrEqual(t, obs.seconds, 0.0)
	assert.Less(t, obs.seconds, 10.0)
}

// Package table строит табличное представление обогащенных задач:
// к колонкам вызывающей стороны добавляются приоритет, время ожидания
// и время оборота, строки фильтруются, сортируются и разбиваются на страницы.
package table

import (
	"sort"
	"strings"

	"taskboard/internal/parser"
	"taskboard/internal/types"
)

const (
	EmptyText       = "No results."
	DefaultPageSize = 10
)

type (
	State    = parser.State
	SortSpec = parser.SortSpec
)

// Enricher возвращает обогащенные задачи снимка. Его реализует calculator.Memo.
type Enricher interface {
	Enriched(list *types.TaskList) []types.EnrichedTask
}

// Column описывает колонку: ключ, заголовок и форматирование ячейки.
// Compare задает порядок сортировки, без него сравниваются тексты ячеек.
type Column struct {
	Key     string
	Header  string
	Cell    func(types.EnrichedTask) string
	Compare func(a, b types.EnrichedTask) int
}

type Header struct {
	Key    string
	Label  string
	Sorted string // "asc", "desc" или пусто
	Filter string
}

type Row struct {
	ID    string
	Cells []string
	Task  types.EnrichedTask
}

type Page struct {
	Index   int
	Size    int
	Count   int
	Total   int
	HasPrev bool
	HasNext bool
}

// View - готовая к выводу таблица
type View struct {
	Headers   []Header
	Rows      []Row
	Empty     bool
	EmptyText string
	ColSpan   int
	Page      Page
	State     State
}

type Table struct {
	enricher Enricher
	columns  []Column
	state    State
}

func New(columns []Column, enricher Enricher) *Table {
	t := &Table{
		enricher: enricher,
		state: State{
			Filters:  make(map[string]string),
			PageSize: DefaultPageSize,
		},
	}
	t.SetColumns(columns)
	return t
}

// SetColumns заменяет колонки вызывающей стороны и пересобирает полный набор
func (t *Table) SetColumns(columns []Column) {
	t.columns = append(append([]Column(nil), columns...), metricColumns()...)
}

func (t *Table) Columns() []Column {
	return t.columns
}

func (t *Table) State() State {
	return t.state
}

// SetState меняет сортировку, фильтры и страницу. Калькулятор при этом не вызывается.
func (t *Table) SetState(st State) {
	if st.Filters == nil {
		st.Filters = make(map[string]string)
	}
	if st.PageSize <= 0 {
		st.PageSize = DefaultPageSize
	}
	if st.PageIndex < 0 {
		st.PageIndex = 0
	}
	t.state = st
}

func (t *Table) SetSorting(sorting []SortSpec) {
	st := t.state
	st.Sorting = sorting
	t.SetState(st)
}

func (t *Table) SetFilter(column, value string) {
	st := t.state
	filters := make(map[string]string, len(st.Filters)+1)
	for k, v := range st.Filters {
		filters[k] = v
	}
	if value = strings.TrimSpace(value); value == "" {
		delete(filters, column)
	} else {
		filters[column] = value
	}
	st.Filters = filters
	st.PageIndex = 0
	t.SetState(st)
}

func (t *Table) SetPage(index, size int) {
	st := t.state
	st.PageIndex = index
	st.PageSize = size
	t.SetState(st)
}

// Render обогащает снимок (с мемоизацией) и строит представление
func (t *Table) Render(list *types.TaskList) View {
	var rows []types.EnrichedTask
	if t.enricher != nil {
		rows = t.enricher.Enriched(list)
	}
	return t.RenderRows(rows)
}

// RenderRows строит представление по уже обогащенным задачам
func (t *Table) RenderRows(rows []types.EnrichedTask) View {
	filtered := t.filter(rows)
	t.sort(filtered)

	page, visible := t.paginate(filtered)

	view := View{
		Headers:   t.headers(),
		Rows:      make([]Row, 0, len(visible)),
		EmptyText: EmptyText,
		ColSpan:   len(t.columns),
		Page:      page,
		State:     t.state,
	}

	for _, task := range visible {
		row := Row{ID: task.ID, Task: task, Cells: make([]string, len(t.columns))}
		for i, col := range t.columns {
			row.Cells[i] = cellText(col, task)
		}
		view.Rows = append(view.Rows, row)
	}

	view.Empty = len(view.Rows) == 0
	return view
}

func (t *Table) headers() []Header {
	headers := make([]Header, len(t.columns))
	for i, col := range t.columns {
		h := Header{Key: col.Key, Label: col.Header, Filter: t.state.Filters[col.Key]}
		for _, s := range t.state.Sorting {
			if s.Column == col.Key {
				h.Sorted = "asc"
				if s.Desc {
					h.Sorted = "desc"
				}
				break
			}
		}
		headers[i] = h
	}
	return headers
}

func (t *Table) column(key string) (Column, bool) {
	for _, col := range t.columns {
		if col.Key == key {
			return col, true
		}
	}
	return Column{}, false
}

// filter оставляет строки, в тексте ячеек которых есть все значения фильтров
func (t *Table) filter(rows []types.EnrichedTask) []types.EnrichedTask {
	type filter struct {
		col   Column
		value string
	}

	var filters []filter
	for key, value := range t.state.Filters {
		col, ok := t.column(key)
		if !ok || value == "" {
			continue
		}
		filters = append(filters, filter{col: col, value: strings.ToLower(value)})
	}

	out := make([]types.EnrichedTask, 0, len(rows))
	for _, task := range rows {
		keep := true
		for _, f := range filters {
			if !strings.Contains(strings.ToLower(cellText(f.col, task)), f.value) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, task)
		}
	}
	return out
}

func (t *Table) sort(rows []types.EnrichedTask) {
	type key struct {
		col  Column
		desc bool
	}

	var keys []key
	for _, s := range t.state.Sorting {
		if col, ok := t.column(s.Column); ok {
			keys = append(keys, key{col: col, desc: s.Desc})
		}
	}
	if len(keys) == 0 {
		return
	}

	sort.SliceStable(rows, func(i, j int) bool {
		for _, k := range keys {
			c := compare(k.col, rows[i], rows[j])
			if c == 0 {
				continue
			}
			if k.desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func (t *Table) paginate(rows []types.EnrichedTask) (Page, []types.EnrichedTask) {
	size := t.state.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}

	page := Page{
		Index: t.state.PageIndex,
		Size:  size,
		Total: len(rows),
		Count: (len(rows) + size - 1) / size,
	}
	page.HasPrev = page.Index > 0
	page.HasNext = page.Index < page.Count-1

	start := page.Index * size
	if start >= len(rows) {
		return page, nil
	}
	end := start + size
	if end > len(rows) {
		end = len(rows)
	}
	return page, rows[start:end]
}

func cellText(col Column, task types.EnrichedTask) string {
	if col.Cell == nil {
		return ""
	}
	return col.Cell(task)
}

func compare(col Column, a, b types.EnrichedTask) int {
	if col.Compare != nil {
		return col.Compare(a, b)
	}
	return strings.Compare(cellText(col, a), cellText(col, b))
}

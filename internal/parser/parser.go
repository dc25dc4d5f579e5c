package parser

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidDueDate = errors.New("invalid due date")

// Форматы без смещения трактуются так же, как их читает Date в браузере:
// дата со временем - в локальной зоне, одна дата - в UTC.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseDueDate разбирает срок выполнения в формате ISO-8601
func ParseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidDueDate)
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}

	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}

	if t, err := time.ParseInLocation(time.DateOnly, s, time.UTC); err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDueDate, s)
}

// FormatDueDate приводит срок к каноническому виду RFC 3339 в UTC
func FormatDueDate(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// SortSpec - одна колонка в спецификации сортировки
type SortSpec struct {
	Column string
	Desc   bool
}

// State - состояние таблицы, переносимое через строку запроса
type State struct {
	Sorting   []SortSpec
	Filters   map[string]string
	PageIndex int // с нуля
	PageSize  int
}

const filterPrefix = "filter."

// ParseState читает состояние таблицы из параметров запроса:
// sort=priority:desc,name  filter.<колонка>=<значение>  page=1  size=10
func ParseState(q url.Values, defaultPageSize int) State {
	st := State{
		Filters:  make(map[string]string),
		PageSize: defaultPageSize,
	}

	for _, part := range strings.Split(q.Get("sort"), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		col, dir, _ := strings.Cut(part, ":")
		col = strings.TrimSpace(col)
		if col == "" || hasSort(st.Sorting, col) {
			continue
		}
		st.Sorting = append(st.Sorting, SortSpec{
			Column: col,
			Desc:   strings.EqualFold(strings.TrimSpace(dir), "desc"),
		})
	}

	for key, values := range q {
		if !strings.HasPrefix(key, filterPrefix) || len(values) == 0 {
			continue
		}
		col := strings.TrimPrefix(key, filterPrefix)
		value := strings.TrimSpace(values[0])
		if col != "" && value != "" {
			st.Filters[col] = value
		}
	}

	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 1 {
		st.PageIndex = page - 1
	}

	if size, err := strconv.Atoi(q.Get("size")); err == nil && size > 0 && size <= 500 {
		st.PageSize = size
	}

	return st
}

// EncodeState записывает состояние обратно в параметры запроса
func EncodeState(st State) url.Values {
	q := url.Values{}

	if len(st.Sorting) > 0 {
		parts := make([]string, 0, len(st.Sorting))
		for _, s := range st.Sorting {
			dir := "asc"
			if s.Desc {
				dir = "desc"
			}
			parts = append(parts, s.Column+":"+dir)
		}
		q.Set("sort", strings.Join(parts, ","))
	}

	for col, value := range st.Filters {
		if value != "" {
			q.Set(filterPrefix+col, value)
		}
	}

	if st.PageIndex > 0 {
		q.Set("page", strconv.Itoa(st.PageIndex+1))
	}
	if st.PageSize > 0 {
		q.Set("size", strconv.Itoa(st.PageSize))
	}

	return q
}

// ToggleSort переключает сортировку колонки по кругу: asc -> desc -> без сортировки.
// Переключенная колонка становится единственной, как при клике по заголовку.
func ToggleSort(st State, column string) State {
	next := st
	next.PageIndex = 0

	for _, s := range st.Sorting {
		if s.Column != column {
			continue
		}
		if s.Desc {
			next.Sorting = nil
		} else {
			next.Sorting = []SortSpec{{Column: column, Desc: true}}
		}
		return next
	}

	next.Sorting = []SortSpec{{Column: column}}
	return next
}

// WithPage возвращает копию состояния с другой страницей
func WithPage(st State, pageIndex int) State {
	next := st
	if pageIndex < 0 {
		pageIndex = 0
	}
	next.PageIndex = pageIndex
	return next
}

func hasSort(specs []SortSpec, column string) bool {
	for _, s := range specs {
		if s.Column == column {
			return true
		}
	}
	return false
}

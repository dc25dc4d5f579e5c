package table

import (
	"strconv"
	"strings"
	"time"

	"taskboard/internal/parser"
	"taskboard/internal/types"
)

// Ключи синтезируемых колонок
const (
	KeyPriority       = "priority"
	KeyWaitingTime    = "waitingTime"
	KeyTurnaroundTime = "turnaroundTime"
)

func metricColumns() []Column {
	return []Column{
		{
			Key:    KeyPriority,
			Header: "Priority",
			Cell: func(t types.EnrichedTask) string {
				return strconv.Itoa(t.Priority)
			},
			Compare: func(a, b types.EnrichedTask) int {
				return compareInt(int64(a.Priority), int64(b.Priority))
			},
		},
		{
			Key:    KeyWaitingTime,
			Header: "Waiting Time (hrs)",
			Cell: func(t types.EnrichedTask) string {
				return t.WaitingTime.Format()
			},
			Compare: func(a, b types.EnrichedTask) int {
				return compareHours(a.WaitingTime, b.WaitingTime)
			},
		},
		{
			Key:    KeyTurnaroundTime,
			Header: "Turnaround Time (hrs)",
			Cell: func(t types.EnrichedTask) string {
				return t.TurnaroundTime.Format()
			},
			Compare: func(a, b types.EnrichedTask) int {
				return compareHours(a.TurnaroundTime, b.TurnaroundTime)
			},
		},
	}
}

func NameColumn() Column {
	return Column{
		Key:    "name",
		Header: "Name",
		Cell:   func(t types.EnrichedTask) string { return t.Name },
		Compare: func(a, b types.EnrichedTask) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		},
	}
}

// DueDateColumn выводит срок в зоне loc; неразбираемый срок выводится как есть
func DueDateColumn(loc *time.Location) Column {
	if loc == nil {
		loc = time.Local
	}
	return Column{
		Key:    "dueDate",
		Header: "Due Date",
		Cell: func(t types.EnrichedTask) string {
			due, err := parser.ParseDueDate(t.DueDate)
			if err != nil {
				return t.DueDate
			}
			return due.In(loc).Format("2006-01-02 15:04")
		},
		Compare: func(a, b types.EnrichedTask) int {
			if a.InvalidDueDate != b.InvalidDueDate {
				if a.InvalidDueDate {
					return 1
				}
				return -1
			}
			return compareInt(a.RemainingTime, b.RemainingTime)
		},
	}
}

func StatusColumn() Column {
	return Column{
		Key:    "status",
		Header: "Status",
		Cell: func(t types.EnrichedTask) string {
			if t.Status == "" {
				return types.StatusTodo
			}
			return t.Status
		},
	}
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// compareHours ставит отсутствующие значения после присутствующих
func compareHours(a, b types.Hours) int {
	switch {
	case a.Valid && !b.Valid:
		return -1
	case !a.Valid && b.Valid:
		return 1
	case !a.Valid && !b.Valid:
		return 0
	case a.Value < b.Value:
		return -1
	case a.Value > b.Value:
		return 1
	}
	return 0
}

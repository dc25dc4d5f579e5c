package types

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Статусы задачи
const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

// Роли участников рабочего пространства
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// HoursPlaceholder выводится вместо отсутствующего значения в часах
const HoursPlaceholder = "N/A"

// Hours - необязательное значение в часах: либо число, либо отсутствие.
type Hours struct {
	Value float64
	Valid bool
}

// SomeHours возвращает присутствующее значение
func SomeHours(v float64) Hours {
	return Hours{Value: v, Valid: true}
}

// Format форматирует значение с двумя знаками после запятой,
// для отсутствующего или нечислового значения возвращает HoursPlaceholder.
func (h Hours) Format() string {
	if !h.Valid || math.IsNaN(h.Value) || math.IsInf(h.Value, 0) {
		return HoursPlaceholder
	}
	return strconv.FormatFloat(h.Value, 'f', 2, 64)
}

func (h Hours) MarshalJSON() ([]byte, error) {
	if !h.Valid || math.IsNaN(h.Value) || math.IsInf(h.Value, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(h.Value)
}

func (h *Hours) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*h = Hours{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*h = SomeHours(v)
	return nil
}

// Task - задача, которую передает вызывающая сторона.
// Priority, WaitingTime и TurnaroundTime всегда перезаписываются калькулятором.
type Task struct {
	ID             string `json:"id" yaml:"id"`
	WorkspaceID    string `json:"workspaceId,omitempty" yaml:"workspaceId,omitempty"`
	Name           string `json:"name" yaml:"name"`
	DueDate        string `json:"dueDate" yaml:"dueDate"` // ISO-8601
	Status         string `json:"status,omitempty" yaml:"status,omitempty"`
	CreatedAt      string `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	Priority       int    `json:"priority,omitempty" yaml:"-"`
	WaitingTime    Hours  `json:"waitingTime" yaml:"-"`    // в часах
	TurnaroundTime Hours  `json:"turnaroundTime" yaml:"-"` // в часах
}

// EnrichedTask - задача с рассчитанными метриками планирования
type EnrichedTask struct {
	Task
	RemainingTime  int64 `json:"remainingTime"` // мс, может быть отрицательным
	InvalidDueDate bool  `json:"invalidDueDate,omitempty"`
}

// TaskList - неизменяемый снимок задач рабочего пространства.
// Указатель на снимок служит ключом мемоизации: любое изменение задач
// порождает новый снимок.
type TaskList struct {
	WorkspaceID string
	Revision    int64
	Tasks       []Task
}

// Len возвращает количество задач в снимке
func (l *TaskList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Tasks)
}

type Workspace struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	OwnerID   int    `json:"ownerId"`
	CreatedAt string `json:"createdAt"`
}

type Member struct {
	WorkspaceID string `json:"workspaceId"`
	UserID      int    `json:"userId"`
	Login       string `json:"login"`
	Role        string `json:"role"`
	JoinedAt    string `json:"joinedAt"`
}

type CreateTaskRequest struct {
	Name    string `json:"name"`
	DueDate string `json:"dueDate"`
	Status  string `json:"status,omitempty"`
}

type TaskListResponse struct {
	Revision int64  `json:"revision"`
	Tasks    []Task `json:"tasks"`
}

type EnrichedTaskListResponse struct {
	Revision     int64          `json:"revision"`
	CalculatedAt string         `json:"calculatedAt"`
	Tasks        []EnrichedTask `json:"tasks"`
}

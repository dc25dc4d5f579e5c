package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"taskboard/internal/calculator"
	"taskboard/internal/grpc"
	"taskboard/internal/parser"
	"taskboard/internal/table"
	"taskboard/internal/types"
)

type options struct {
	Remote  string
	Sort    string
	Filters []string
	Page    int
	Size    int
	NoColor bool
	Timeout time.Duration
	Loc     *time.Location
	Now     time.Time // нулевое значение - текущее время
}

// taskFile - файл задач: либо список, либо объект с ключом tasks
type taskFile struct {
	Tasks []types.Task `yaml:"tasks"`
}

// loadTasks читает задачи из YAML или JSON; путь "-" означает stdin
func loadTasks(path string, stdin io.Reader) ([]types.Task, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read tasks: %w", err)
	}

	return parseTasks(data)
}

// parseTasks различает список задач и объект с ключом tasks по корню документа
func parseTasks(data []byte) ([]types.Task, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse tasks: %w", err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return []types.Task{}, nil
		}
		root = root.Content[0]
	}

	var tasks []types.Task
	switch {
	case root.Kind == 0, root.Kind == yaml.ScalarNode && root.ShortTag() == "!!null":
		return []types.Task{}, nil
	case root.Kind == yaml.SequenceNode:
		if err := root.Decode(&tasks); err != nil {
			return nil, fmt.Errorf("parse tasks: %w", err)
		}
	case root.Kind == yaml.MappingNode:
		var f taskFile
		if err := root.Decode(&f); err != nil {
			return nil, fmt.Errorf("parse tasks: %w", err)
		}
		tasks = f.Tasks
	default:
		return nil, fmt.Errorf("parse tasks: want a list of tasks or an object with tasks, got line %d", root.Line)
	}
	if tasks == nil {
		tasks = []types.Task{}
	}

	for i := range tasks {
		if tasks[i].ID == "" {
			tasks[i].ID = strconv.Itoa(i + 1)
		}
	}
	return tasks, nil
}

// state переводит флаги в состояние таблицы тем же разбором, что и строку запроса страницы
func (o options) state() (parser.State, error) {
	q := url.Values{}
	if o.Sort != "" {
		q.Set("sort", o.Sort)
	}
	for _, f := range o.Filters {
		col, value, ok := strings.Cut(f, "=")
		if !ok || strings.TrimSpace(col) == "" {
			return parser.State{}, fmt.Errorf("invalid --filter %q, want column=value", f)
		}
		q.Set("filter."+strings.TrimSpace(col), value)
	}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.Size > 0 {
		q.Set("size", strconv.Itoa(o.Size))
	}
	return parser.ParseState(q, table.DefaultPageSize), nil
}

func run(ctx context.Context, out io.Writer, tasks []types.Task, opts options) error {
	if opts.Remote != "" && !opts.Now.IsZero() {
		return errors.New("--now cannot be used with --remote: the server computes metrics with its own clock")
	}

	st, err := opts.state()
	if err != nil {
		return err
	}

	cols := []table.Column{
		table.NameColumn(),
		table.DueDateColumn(opts.Loc),
		table.StatusColumn(),
	}

	var view table.View
	if opts.Remote != "" {
		client, err := grpc.NewScheduleClient(opts.Remote)
		if err != nil {
			return fmt.Errorf("connect %s: %w", opts.Remote, err)
		}
		defer client.Close()
		client.SetTimeout(opts.Timeout)

		resp, err := client.Enrich(ctx, tasks)
		if err != nil {
			return fmt.Errorf("remote enrich: %w", err)
		}

		tbl := table.New(cols, nil)
		tbl.SetState(st)
		view = tbl.RenderRows(resp.Tasks)
	} else {
		calc := calculator.NewCalculator()
		if !opts.Now.IsZero() {
			now := opts.Now
			calc = calculator.NewCalculatorWithClock(func() time.Time { return now })
		}

		tbl := table.New(cols, calculator.NewMemo(calc, nil))
		tbl.SetState(st)
		view = tbl.Render(&types.TaskList{Tasks: tasks})
	}

	var decorate table.Decorator
	if !opts.NoColor {
		decorate = decorator(view)
	}
	return table.WriteText(out, view, decorate)
}

// decorator выделяет заголовок, просроченные задачи и задачи с неверным сроком
func decorator(v table.View) table.Decorator {
	header := color.New(color.Bold)
	overdue := color.New(color.FgRed)
	invalid := color.New(color.Faint)
	priority := color.New(color.FgCyan)

	return func(row, col int, text string) string {
		if row < 0 {
			return header.Sprint(text)
		}
		task := v.Rows[row].Task
		switch {
		case task.InvalidDueDate:
			return invalid.Sprint(text)
		case task.RemainingTime < 0:
			return overdue.Sprint(text)
		case v.Headers[col].Key == table.KeyPriority:
			return priority.Sprint(text)
		}
		return text
	}
}

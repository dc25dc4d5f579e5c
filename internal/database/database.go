package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"golang.org/x/crypto/bcrypt"

	"taskboard/internal/models"
	"taskboard/internal/types"
)

//go:embed migrations/*.sql
var migrations embed.FS

const timeLayout = time.RFC3339

var (
	ErrNotFound      = errors.New("not found")
	ErrUserExists    = errors.New("user already exists")
	ErrAlreadyMember = errors.New("user is already a member")
)

// DB - хранилище пользователей, рабочих пространств и задач в SQLite
type DB struct {
	*sql.DB
}

// Open открывает базу по пути path и применяет миграции
func Open(ctx context.Context, path string) (*DB, error) {
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к базе данных: %w", err)
	}

	// SQLite не любит параллельную запись
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("база данных недоступна: %w", err)
	}

	if err := migrate(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}

	log.Printf("База данных открыта: %s", path)
	return &DB{DB: conn}, nil
}

func migrate(ctx context.Context, conn *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, conn, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func now() string {
	return time.Now().UTC().Format(timeLayout)
}

// CreateUser создает нового пользователя в базе данных
func (d *DB) CreateUser(ctx context.Context, login, password string) (int, error) {
	var count int
	err := d.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE login = ?", login).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка проверки существования пользователя: %w", err)
	}

	if count > 0 {
		return 0, fmt.Errorf("%w: %s", ErrUserExists, login)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("ошибка хеширования пароля: %w", err)
	}

	result, err := d.ExecContext(ctx, "INSERT INTO users (login, password) VALUES (?, ?)", login, string(hashedPassword))
	if err != nil {
		return 0, fmt.Errorf("ошибка создания пользователя: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("ошибка получения ID пользователя: %w", err)
	}

	return int(id), nil
}

// GetUser возвращает пользователя по логину или nil, если его нет
func (d *DB) GetUser(ctx context.Context, login string) (*models.User, error) {
	var user models.User
	err := d.QueryRowContext(ctx, "SELECT id, login, password FROM users WHERE login = ?", login).
		Scan(&user.ID, &user.Login, &user.Password)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка получения пользователя: %w", err)
	}

	return &user, nil
}

func (d *DB) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	var user models.User
	err := d.QueryRowContext(ctx, "SELECT id, login, password FROM users WHERE id = ?", id).
		Scan(&user.ID, &user.Login, &user.Password)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения пользователя: %w", err)
	}

	return &user, nil
}

// CheckPasswordHash сравнивает пароль и хеш пароля
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// CreateWorkspace создает рабочее пространство, владелец становится администратором
func (d *DB) CreateWorkspace(ctx context.Context, name string, ownerID int) (*types.Workspace, error) {
	ws := &types.Workspace{
		ID:        uuid.New().String(),
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: now(),
	}

	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO workspaces (id, name, owner_id, created_at) VALUES (?, ?, ?, ?)",
		ws.ID, ws.Name, ws.OwnerID, ws.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания рабочего пространства: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO members (workspace_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)",
		ws.ID, ownerID, types.RoleAdmin, ws.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка добавления владельца: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}

	return ws, nil
}

func (d *DB) GetWorkspace(ctx context.Context, id string) (*types.Workspace, error) {
	var ws types.Workspace
	err := d.QueryRowContext(ctx, "SELECT id, name, owner_id, created_at FROM workspaces WHERE id = ?", id).
		Scan(&ws.ID, &ws.Name, &ws.OwnerID, &ws.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения рабочего пространства: %w", err)
	}
	return &ws, nil
}

// ListWorkspaces возвращает рабочие пространства, в которых состоит пользователь
func (d *DB) ListWorkspaces(ctx context.Context, userID int) ([]types.Workspace, error) {
	rows, err := d.QueryContext(ctx, `
		SELECT w.id, w.name, w.owner_id, w.created_at
		FROM workspaces w
		JOIN members m ON m.workspace_id = w.id
		WHERE m.user_id = ?
		ORDER BY w.created_at, w.name`, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения рабочих пространств: %w", err)
	}
	defer rows.Close()

	workspaces := []types.Workspace{}
	for rows.Next() {
		var ws types.Workspace
		if err := rows.Scan(&ws.ID, &ws.Name, &ws.OwnerID, &ws.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка чтения рабочего пространства: %w", err)
		}
		workspaces = append(workspaces, ws)
	}

	return workspaces, rows.Err()
}

func (d *DB) AddMember(ctx context.Context, workspaceID string, userID int, role string) error {
	ok, err := d.IsMember(ctx, workspaceID, userID)
	if err != nil {
		return err
	}
	if ok {
		return ErrAlreadyMember
	}

	_, err = d.ExecContext(ctx,
		"INSERT INTO members (workspace_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)",
		workspaceID, userID, role, now(),
	)
	if err != nil {
		return fmt.Errorf("ошибка добавления участника: %w", err)
	}
	return nil
}

func (d *DB) IsMember(ctx context.Context, workspaceID string, userID int) (bool, error) {
	var count int
	err := d.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM members WHERE workspace_id = ? AND user_id = ?", workspaceID, userID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки участника: %w", err)
	}
	return count > 0, nil
}

// ListMembers возвращает участников в порядке вступления
func (d *DB) ListMembers(ctx context.Context, workspaceID string) ([]types.Member, error) {
	rows, err := d.QueryContext(ctx, `
		SELECT m.workspace_id, m.user_id, u.login, m.role, m.joined_at
		FROM members m
		JOIN users u ON u.id = m.user_id
		WHERE m.workspace_id = ?
		ORDER BY m.joined_at, m.rowid`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения участников: %w", err)
	}
	defer rows.Close()

	members := []types.Member{}
	for rows.Next() {
		var m types.Member
		if err := rows.Scan(&m.WorkspaceID, &m.UserID, &m.Login, &m.Role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("ошибка чтения участника: %w", err)
		}
		members = append(members, m)
	}

	return members, rows.Err()
}

// CreateTask сохраняет задачу; пустые ID, статус и дата создания заполняются
func (d *DB) CreateTask(ctx context.Context, task *types.Task) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if task.Status == "" {
		task.Status = types.StatusTodo
	}
	if task.CreatedAt == "" {
		task.CreatedAt = now()
	}

	_, err := d.ExecContext(ctx,
		"INSERT INTO tasks (id, workspace_id, name, due_date, status, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		task.ID, task.WorkspaceID, task.Name, task.DueDate, task.Status, task.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("ошибка сохранения задачи: %w", err)
	}
	return nil
}

func (d *DB) UpdateTask(ctx context.Context, task types.Task) error {
	res, err := d.ExecContext(ctx,
		"UPDATE tasks SET name = ?, due_date = ?, status = ? WHERE id = ? AND workspace_id = ?",
		task.Name, task.DueDate, task.Status, task.ID, task.WorkspaceID,
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления задачи: %w", err)
	}
	return expectAffected(res)
}

func (d *DB) DeleteTask(ctx context.Context, workspaceID, id string) error {
	res, err := d.ExecContext(ctx, "DELETE FROM tasks WHERE id = ? AND workspace_id = ?", id, workspaceID)
	if err != nil {
		return fmt.Errorf("ошибка удаления задачи: %w", err)
	}
	return expectAffected(res)
}

// ListTasks возвращает задачи рабочего пространства в порядке создания
func (d *DB) ListTasks(ctx context.Context, workspaceID string) ([]types.Task, error) {
	rows, err := d.QueryContext(ctx, `
		SELECT id, workspace_id, name, due_date, status, created_at
		FROM tasks
		WHERE workspace_id = ?
		ORDER BY created_at, rowid`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения задач: %w", err)
	}
	defer rows.Close()

	tasks := []types.Task{}
	for rows.Next() {
		var t types.Task
		if err := rows.Scan(&t.ID, &t.WorkspaceID, &t.Name, &t.DueDate, &t.Status, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка чтения задачи: %w", err)
		}
		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка получения числа строк: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

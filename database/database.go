package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"daily_planner/models"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	time TEXT NOT NULL,
	date TEXT NOT NULL,
	priority TEXT NOT NULL,
	status TEXT NOT NULL,
	owner TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS indexdate ON tasks (owner, date);
`

const taskColumns = "id, title, time, date, priority, status, owner"

// OpenSQLite открывает (и при необходимости создаёт) файл базы и таблицы.
func OpenSQLite(path string) (*sqlx.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return nil, fmt.Errorf("не удалось создать каталог базы данных: %w", err)
	}

	db, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть базу данных: %w", err)
	}
	// Одно соединение: SQLite всё равно сериализует запись.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось создать таблицы: %w", err)
	}
	return db, nil
}

// SQLUserStore хранит пользователей в таблице users.
type SQLUserStore struct {
	db *sqlx.DB
}

func NewSQLUserStore(db *sqlx.DB) *SQLUserStore {
	return &SQLUserStore{db: db}
}

func (s *SQLUserStore) Register(ctx context.Context, name, password string) (models.User, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.User{}, fmt.Errorf("не удалось начать транзакцию: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.GetContext(ctx, &exists, "SELECT COUNT(*) FROM users WHERE name = :name", sql.Named("name", name)); err != nil {
		return models.User{}, fmt.Errorf("не удалось проверить пользователя: %w", err)
	}
	if exists > 0 {
		return models.User{}, ErrUserExists
	}

	var count int
	if err := tx.GetContext(ctx, &count, "SELECT COUNT(*) FROM users"); err != nil {
		return models.User{}, fmt.Errorf("не удалось посчитать пользователей: %w", err)
	}

	user := models.User{ID: strconv.Itoa(count + 1), Name: name, Password: password}
	if _, err := tx.NamedExecContext(ctx, "INSERT INTO users (id, name, password) VALUES (:id, :name, :password)", user); err != nil {
		return models.User{}, fmt.Errorf("не удалось добавить пользователя: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.User{}, fmt.Errorf("не удалось сохранить пользователя: %w", err)
	}
	return user, nil
}

func (s *SQLUserStore) Authenticate(ctx context.Context, name, password string) (models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT id, name, password FROM users WHERE name = :name AND password = :password",
		sql.Named("name", name),
		sql.Named("password", password))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, fmt.Errorf("не удалось получить пользователя: %w", err)
	}
	return user, nil
}

func (s *SQLUserStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM users"); err != nil {
		return 0, fmt.Errorf("не удалось посчитать пользователей: %w", err)
	}
	return count, nil
}

// SQLTaskStore хранит задачи в таблице tasks; порядок добавления задаёт seq.
type SQLTaskStore struct {
	db *sqlx.DB
}

func NewSQLTaskStore(db *sqlx.DB) *SQLTaskStore {
	return &SQLTaskStore{db: db}
}

func (s *SQLTaskStore) Create(ctx context.Context, task *models.Task) error {
	prepareTask(task)
	_, err := s.db.NamedExecContext(ctx,
		"INSERT INTO tasks ("+taskColumns+") VALUES (:id, :title, :time, :date, :priority, :status, :owner)", task)
	if err != nil {
		return fmt.Errorf("не удалось добавить задачу: %w", err)
	}
	return nil
}

func (s *SQLTaskStore) ListAll(ctx context.Context, user string) ([]models.Task, error) {
	tasks := []models.Task{}
	err := s.db.SelectContext(ctx, &tasks, "SELECT "+taskColumns+" FROM tasks WHERE owner = :owner ORDER BY seq",
		sql.Named("owner", user))
	if err != nil {
		return nil, fmt.Errorf("не удалось получить задачи: %w", err)
	}
	return tasks, nil
}

func (s *SQLTaskStore) ListForDate(ctx context.Context, user, date string) ([]models.Task, error) {
	tasks := []models.Task{}
	err := s.db.SelectContext(ctx, &tasks, "SELECT "+taskColumns+" FROM tasks WHERE owner = :owner AND date = :date ORDER BY seq",
		sql.Named("owner", user),
		sql.Named("date", date))
	if err != nil {
		return nil, fmt.Errorf("не удалось получить задачи: %w", err)
	}
	return tasks, nil
}

func (s *SQLTaskStore) CompleteAt(ctx context.Context, user string, index int) (bool, error) {
	return s.atIndex(ctx, user, index, "UPDATE tasks SET status = :status WHERE id = :id",
		sql.Named("status", models.StatusCompleted))
}

func (s *SQLTaskStore) DeleteAt(ctx context.Context, user string, index int) (bool, error) {
	return s.atIndex(ctx, user, index, "DELETE FROM tasks WHERE id = :id")
}

func (s *SQLTaskStore) Complete(ctx context.Context, user, id string) error {
	return s.byID(ctx, "UPDATE tasks SET status = :status WHERE id = :id AND owner = :owner",
		sql.Named("status", models.StatusCompleted),
		sql.Named("id", id),
		sql.Named("owner", user))
}

func (s *SQLTaskStore) Delete(ctx context.Context, user, id string) error {
	return s.byID(ctx, "DELETE FROM tasks WHERE id = :id AND owner = :owner",
		sql.Named("id", id),
		sql.Named("owner", user))
}

// atIndex находит id задачи по позиции в списке пользователя и выполняет query
// в той же транзакции.
func (s *SQLTaskStore) atIndex(ctx context.Context, user string, index int, query string, args ...any) (bool, error) {
	if index < 0 {
		return false, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("не удалось начать транзакцию: %w", err)
	}
	defer tx.Rollback()

	var id string
	err = tx.GetContext(ctx, &id, "SELECT id FROM tasks WHERE owner = :owner ORDER BY seq LIMIT 1 OFFSET :offset",
		sql.Named("owner", user),
		sql.Named("offset", index))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("не удалось найти задачу: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, append(args, sql.Named("id", id))...); err != nil {
		return false, fmt.Errorf("не удалось изменить задачу: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("не удалось сохранить задачу: %w", err)
	}
	return true, nil
}

func (s *SQLTaskStore) byID(ctx context.Context, query string, args ...any) error {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("не удалось изменить задачу: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

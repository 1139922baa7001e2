package database

import (
	"context"
	"errors"

	"daily_planner/models"

	"github.com/google/uuid"
)

var (
	ErrUserExists         = errors.New("пользователь уже существует")
	ErrInvalidCredentials = errors.New("неверное имя пользователя или пароль")
	ErrTaskNotFound       = errors.New("задача не найдена")
	ErrDiaryNotFound      = errors.New("запись дневника не найдена")
)

// UserStore хранит учётные записи. Имена уникальны, ID = количество пользователей + 1.
type UserStore interface {
	Register(ctx context.Context, name, password string) (models.User, error)
	Authenticate(ctx context.Context, name, password string) (models.User, error)
	Count(ctx context.Context) (int, error)
}

// TaskStore хранит задачи всех пользователей в порядке добавления.
//
// Методы *At принимают позицию задачи в списке задач пользователя. Позиция вне
// диапазона не ошибка: метод возвращает false и ничего не записывает.
type TaskStore interface {
	Create(ctx context.Context, task *models.Task) error
	ListAll(ctx context.Context, user string) ([]models.Task, error)
	ListForDate(ctx context.Context, user, date string) ([]models.Task, error)
	CompleteAt(ctx context.Context, user string, index int) (bool, error)
	DeleteAt(ctx context.Context, user string, index int) (bool, error)
	Complete(ctx context.Context, user, id string) error
	Delete(ctx context.Context, user, id string) error
}

// DiaryStore хранит по одной записи дневника на пару (пользователь, дата).
type DiaryStore interface {
	Write(ctx context.Context, user, date, content string) error
	List(ctx context.Context, user string) ([]models.DiaryEntry, error)
	Read(ctx context.Context, user, filename string) (string, error)
}

// prepareTask заполняет поля, которые задаёт хранилище, а не пользователь.
func prepareTask(task *models.Task) {
	if task.ID == "" {
		task.ID = newTaskID()
	}
	task.Status = models.StatusPending
}

func newTaskID() string {
	return uuid.NewString()
}

// userIndexes возвращает позиции задач пользователя в общем списке.
func userIndexes(tasks []models.Task, user string) []int {
	var idx []int
	for i, t := range tasks {
		if t.User == user {
			idx = append(idx, i)
		}
	}
	return idx
}

func filterTasks(tasks []models.Task, keep func(models.Task) bool) []models.Task {
	result := []models.Task{}
	for _, t := range tasks {
		if keep(t) {
			result = append(result, t)
		}
	}
	return result
}

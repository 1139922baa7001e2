package models

import (
	"fmt"
	"time"
)

const (
	DatePattern     string = "2006-01-02" // дата задачи и дневника, YYYY-MM-DD
	TimeInputLayout string = "15:04"      // время из формы, 24-часовой формат
	TimeLayout      string = "03:04 PM"   // время задачи для отображения
)

const (
	StatusPending   = "Pending"
	StatusCompleted = "Completed"
)

// User хранится в users.json под ключом ID, поэтому сам ID в JSON не пишется.
type User struct {
	ID       string `json:"-" db:"id"`
	Name     string `json:"name" db:"name"`
	Password string `json:"password" db:"password"`
}

// Task - задача пользователя; ID пуст у записей из старых файлов.
type Task struct {
	ID       string `json:"id,omitempty" db:"id"`   // UUID, назначается при создании
	Title    string `json:"title" db:"title"`       // заголовок задачи;
	Time     string `json:"time" db:"time"`         // время в формате 03:04 PM;
	Date     string `json:"date" db:"date"`         // дата в формате YYYY-MM-DD;
	Priority string `json:"priority" db:"priority"` // приоритет как ввёл пользователь;
	Status   string `json:"status" db:"status"`     // Pending или Completed
	User     string `json:"user" db:"owner"`        // имя владельца
}

// DiaryEntry описывает запись дневника в списке /diaries.
type DiaryEntry struct {
	Filename string
	Date     string
	Title    string
	Preview  string
	Modified time.Time
}

type ResponseError struct {
	Error string `json:"error"`
}

type Tasks struct {
	Tasks []Task `json:"tasks"`
}

// FormatTaskTime переводит время из формы (15:04) в формат отображения (03:04 PM).
func FormatTaskTime(value string) (string, error) {
	parsed, err := time.Parse(TimeInputLayout, value)
	if err != nil {
		return "", fmt.Errorf("неверное время %q: %w", value, err)
	}
	return parsed.Format(TimeLayout), nil
}

// Progress возвращает строку прогресса для списка задач на день.
func Progress(tasks []Task) string {
	if len(tasks) == 0 {
		return "No tasks yet"
	}
	completed := 0
	for _, t := range tasks {
		if t.Status == StatusCompleted {
			completed++
		}
	}
	return fmt.Sprintf("%d/%d completed", completed, len(tasks))
}

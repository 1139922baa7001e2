package database

import (
	"context"

	"daily_planner/models"
)

// JSONTaskStore хранит все задачи массивом в tasks.json в порядке добавления.
type JSONTaskStore struct {
	file *jsonFile
}

func NewJSONTaskStore(path string) (*JSONTaskStore, error) {
	file, err := newJSONFile(path)
	if err != nil {
		return nil, err
	}
	return &JSONTaskStore{file: file}, nil
}

func (s *JSONTaskStore) Create(ctx context.Context, task *models.Task) error {
	prepareTask(task)
	var tasks []models.Task
	return s.file.update(ctx, &tasks, func() (bool, error) {
		tasks = append(tasks, *task)
		return true, nil
	})
}

func (s *JSONTaskStore) ListAll(ctx context.Context, user string) ([]models.Task, error) {
	tasks, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return filterTasks(tasks, func(t models.Task) bool { return t.User == user }), nil
}

func (s *JSONTaskStore) ListForDate(ctx context.Context, user, date string) ([]models.Task, error) {
	tasks, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return filterTasks(tasks, func(t models.Task) bool { return t.User == user && t.Date == date }), nil
}

func (s *JSONTaskStore) CompleteAt(ctx context.Context, user string, index int) (bool, error) {
	found := false
	var tasks []models.Task
	err := s.file.update(ctx, &tasks, func() (bool, error) {
		idx := userIndexes(tasks, user)
		if index < 0 || index >= len(idx) {
			return false, nil
		}
		found = true
		pos := idx[index]
		// Задача из старого файла получает id при первом изменении, остальные не трогаем.
		if tasks[pos].ID == "" {
			tasks[pos].ID = newTaskID()
		}
		tasks[pos].Status = models.StatusCompleted
		return true, nil
	})
	return found, err
}

func (s *JSONTaskStore) DeleteAt(ctx context.Context, user string, index int) (bool, error) {
	found := false
	var tasks []models.Task
	err := s.file.update(ctx, &tasks, func() (bool, error) {
		idx := userIndexes(tasks, user)
		if index < 0 || index >= len(idx) {
			return false, nil
		}
		found = true
		pos := idx[index]
		tasks = append(tasks[:pos], tasks[pos+1:]...)
		return true, nil
	})
	return found, err
}

func (s *JSONTaskStore) Complete(ctx context.Context, user, id string) error {
	var tasks []models.Task
	return s.file.update(ctx, &tasks, func() (bool, error) {
		pos := findTask(tasks, user, id)
		if pos < 0 {
			return false, ErrTaskNotFound
		}
		tasks[pos].Status = models.StatusCompleted
		return true, nil
	})
}

func (s *JSONTaskStore) Delete(ctx context.Context, user, id string) error {
	var tasks []models.Task
	return s.file.update(ctx, &tasks, func() (bool, error) {
		pos := findTask(tasks, user, id)
		if pos < 0 {
			return false, ErrTaskNotFound
		}
		tasks = append(tasks[:pos], tasks[pos+1:]...)
		return true, nil
	})
}

func (s *JSONTaskStore) load(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	if err := s.file.view(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func findTask(tasks []models.Task, user, id string) int {
	if id == "" {
		return -1
	}
	for i, t := range tasks {
		if t.ID == id && t.User == user {
			return i
		}
	}
	return -1
}

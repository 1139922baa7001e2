package database

import (
	"context"
	"strconv"

	"daily_planner/models"
)

// JSONUserStore хранит пользователей в users.json: объект {"<id>": {"name", "password"}}.
type JSONUserStore struct {
	file *jsonFile
}

func NewJSONUserStore(path string) (*JSONUserStore, error) {
	file, err := newJSONFile(path)
	if err != nil {
		return nil, err
	}
	return &JSONUserStore{file: file}, nil
}

func (s *JSONUserStore) Register(ctx context.Context, name, password string) (models.User, error) {
	var created models.User
	users := map[string]models.User{}

	err := s.file.update(ctx, &users, func() (bool, error) {
		for _, u := range users {
			if u.Name == name {
				return false, ErrUserExists
			}
		}
		created = models.User{ID: strconv.Itoa(len(users) + 1), Name: name, Password: password}
		users[created.ID] = created
		return true, nil
	})
	if err != nil {
		return models.User{}, err
	}
	return created, nil
}

func (s *JSONUserStore) Authenticate(ctx context.Context, name, password string) (models.User, error) {
	users := map[string]models.User{}
	if err := s.file.view(ctx, &users); err != nil {
		return models.User{}, err
	}
	for id, u := range users {
		if u.Name == name && u.Password == password {
			u.ID = id
			return u, nil
		}
	}
	return models.User{}, ErrInvalidCredentials
}

func (s *JSONUserStore) Count(ctx context.Context) (int, error) {
	users := map[string]models.User{}
	if err := s.file.view(ctx, &users); err != nil {
		return 0, err
	}
	return len(users), nil
}

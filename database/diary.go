package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"daily_planner/models"
)

const (
	diaryPrefix   = "diary_"
	diarySuffix   = ".txt"
	previewLength = 100
	untitled      = "Untitled"
)

// FileDiaryStore хранит записи дневника файлами diary_{user}_{date}.txt в одном каталоге.
type FileDiaryStore struct {
	dir string
}

func NewFileDiaryStore(dir string) *FileDiaryStore {
	return &FileDiaryStore{dir: dir}
}

// DiaryFilename возвращает имя файла записи пользователя за дату.
func DiaryFilename(user, date string) string {
	return diaryPrefix + user + "_" + date + diarySuffix
}

func (s *FileDiaryStore) Write(ctx context.Context, user, date, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name := DiaryFilename(user, date)
	if name != filepath.Base(name) {
		return fmt.Errorf("недопустимое имя файла дневника %q", name)
	}
	if err := os.MkdirAll(s.dir, dirPerm); err != nil {
		return fmt.Errorf("не удалось создать каталог дневника: %w", err)
	}
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, []byte(content), filePerm); err != nil {
		return fmt.Errorf("не удалось записать дневник %s: %w", path, err)
	}
	return nil
}

// List возвращает записи пользователя, новые первыми.
func (s *FileDiaryStore) List(ctx context.Context, user string) ([]models.DiaryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []models.DiaryEntry{}, nil
		}
		return nil, fmt.Errorf("не удалось прочитать каталог дневника: %w", err)
	}

	entries := []models.DiaryEntry{}
	for _, de := range dirEntries {
		name := de.Name()
		date, ok := diaryDate(user, name)
		if de.IsDir() || !ok {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			return nil, fmt.Errorf("не удалось прочитать %s: %w", name, err)
		}
		info, err := de.Info()
		if err != nil {
			return nil, fmt.Errorf("не удалось прочитать %s: %w", name, err)
		}

		content := string(data)
		entries = append(entries, models.DiaryEntry{
			Filename: name,
			Date:     date,
			Title:    diaryTitle(content),
			Preview:  diaryPreview(content),
			Modified: info.ModTime(),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Date > entries[j].Date })
	return entries, nil
}

// Read возвращает содержимое записи. Чужие и некорректные имена файлов считаются
// несуществующими.
func (s *FileDiaryStore) Read(ctx context.Context, user, filename string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, ok := diaryDate(user, filename); !ok || filename != filepath.Base(filename) {
		return "", ErrDiaryNotFound
	}
	data, err := os.ReadFile(filepath.Join(s.dir, filename))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrDiaryNotFound
		}
		return "", fmt.Errorf("не удалось прочитать %s: %w", filename, err)
	}
	return string(data), nil
}

// diaryDate извлекает дату из имени файла пользователя. Остаток имени должен быть
// датой, иначе diary_bob_x_... попал бы в записи пользователя bob.
func diaryDate(user, filename string) (string, bool) {
	rest, ok := strings.CutPrefix(filename, diaryPrefix+user+"_")
	if !ok {
		return "", false
	}
	date, ok := strings.CutSuffix(rest, diarySuffix)
	if !ok {
		return "", false
	}
	if _, err := time.Parse(models.DatePattern, date); err != nil {
		return "", false
	}
	return date, true
}

func diaryTitle(content string) string {
	if content == "" {
		return untitled
	}
	first, _, _ := strings.Cut(content, "\n")
	return strings.TrimSpace(strings.TrimSuffix(first, "\r"))
}

// diaryPreview обрезает текст до previewLength символов (не байт).
func diaryPreview(content string) string {
	if utf8.RuneCountInString(content) <= previewLength {
		return strings.TrimSpace(content)
	}
	runes := []rune(content)
	return strings.TrimSpace(string(runes[:previewLength]) + "...")
}

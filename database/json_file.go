package database

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

const (
	lockRetryDelay = 10 * time.Millisecond
	dirPerm        = 0o755
	filePerm       = 0o644
)

// jsonFile - JSON-документ на диске, который читается и перезаписывается целиком.
// Запись идёт под эксклюзивной блокировкой <path>.lock, чтение под разделяемой.
// flock не различает горутины одного процесса, поэтому рядом стоит sync.RWMutex.
type jsonFile struct {
	path string
	mu   sync.RWMutex
	lock *flock.Flock
}

func newJSONFile(path string) (*jsonFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return nil, fmt.Errorf("не удалось создать каталог для %s: %w", path, err)
	}
	return &jsonFile{path: path, lock: flock.New(path + ".lock")}, nil
}

// view читает файл в v. Отсутствующий или пустой файл оставляет v без изменений.
func (f *jsonFile) view(ctx context.Context, v any) error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if _, err := f.lock.TryRLockContext(ctx, lockRetryDelay); err != nil {
		return fmt.Errorf("не удалось заблокировать %s: %w", f.path, err)
	}
	defer func() { _ = f.lock.Unlock() }()

	return f.read(v)
}

// update читает файл в v, вызывает mutate и, если mutate сообщил об изменении,
// атомарно перезаписывает файл.
func (f *jsonFile) update(ctx context.Context, v any, mutate func() (bool, error)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.lock.TryLockContext(ctx, lockRetryDelay); err != nil {
		return fmt.Errorf("не удалось заблокировать %s: %w", f.path, err)
	}
	defer func() { _ = f.lock.Unlock() }()

	if err := f.read(v); err != nil {
		return err
	}
	changed, err := mutate()
	if err != nil || !changed {
		return err
	}
	return f.write(v)
}

func (f *jsonFile) read(v any) error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("не удалось прочитать %s: %w", f.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("не удалось разобрать %s: %w", f.path, err)
	}
	return nil
}

// write пишет во временный файл и переименовывает его поверх исходного.
func (f *jsonFile) write(v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("ошибка кодирования %s: %w", f.path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("не удалось создать временный файл: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("не удалось записать %s: %w", f.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("не удалось записать %s: %w", f.path, err)
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		return fmt.Errorf("не удалось записать %s: %w", f.path, err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("не удалось заменить %s: %w", f.path, err)
	}
	return nil
}

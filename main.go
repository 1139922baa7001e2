package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"daily_planner/config"
	"daily_planner/database"
	"daily_planner/handlers"
	"daily_planner/session"
)

// stores - выбранные хранилища и функция их закрытия.
type stores struct {
	users   database.UserStore
	tasks   database.TaskStore
	diaries database.DiaryStore
	close   func() error
}

func openStores(cfg config.Config) (stores, error) {
	diaries := database.NewFileDiaryStore(cfg.DiaryDir())

	if cfg.Storage == config.StorageSQLite {
		db, err := database.OpenSQLite(cfg.SQLiteFile())
		if err != nil {
			return stores{}, err
		}
		return stores{
			users:   database.NewSQLUserStore(db),
			tasks:   database.NewSQLTaskStore(db),
			diaries: diaries,
			close:   db.Close,
		}, nil
	}

	users, err := database.NewJSONUserStore(cfg.UsersFile())
	if err != nil {
		return stores{}, err
	}
	tasks, err := database.NewJSONTaskStore(cfg.TasksFile())
	if err != nil {
		return stores{}, err
	}
	return stores{users: users, tasks: tasks, diaries: diaries, close: func() error { return nil }}, nil
}

// В main - загружаем конфигурацию, открываем хранилища и запускаем HTTP-сервер.
func main() {
	configPath := flag.String("config", "", "путь к YAML-файлу конфигурации")
	flag.Parse()

	logger := log.New(os.Stderr, "", log.LstdFlags)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal(err)
	}
	if cfg.DefaultSecret() {
		logger.Println("PLANNER_SESSION_SECRET не задан, используется ключ по умолчанию")
	}

	st, err := openStores(cfg)
	if err != nil {
		logger.Fatal(err)
	}
	defer st.close()

	h, err := handlers.New(st.users, st.tasks, st.diaries,
		session.NewManager(cfg.SessionSecret, cfg.SessionTTL, cfg.SecureCookies), logger)
	if err != nil {
		logger.Fatal(err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Printf("ошибка остановки сервера: %v", err)
		}
	}()

	logger.Printf("Запускаем сервер на %s (хранилище %s, данные в %s)", cfg.Addr, cfg.Storage, cfg.DataDir)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal(err)
	}
}

// Package handlers содержит HTTP-обработчики: HTML-страницы задач и дневника,
// вход и регистрацию, а также JSON API задач.
package handlers

import (
	"embed"
	"fmt"
	"html/template"
	"log"
	"math/rand/v2"
	"net/http"
	"time"

	"daily_planner/database"
	"daily_planner/session"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"index", "all_tasks", "add_task", "diary", "diary_list", "view_diary", "login", "register",
}

// Quotes - мотивационные цитаты для главной страницы.
var Quotes = []string{
	"✨ Stay focused and never give up!",
	"💪 You’ve got this!",
	"🌟 One step at a time.",
	"🚀 Keep pushing forward!",
	"📌 Progress over perfection!",
	"🌈 Every day is a fresh start!",
}

// Handler обслуживает все маршруты приложения поверх хранилищ и менеджера сессий.
type Handler struct {
	Users    database.UserStore
	Tasks    database.TaskStore
	Diaries  database.DiaryStore
	Sessions *session.Manager
	Log      *log.Logger

	// Now и Quote подменяются в тестах.
	Now   func() time.Time
	Quote func() string

	pages map[string]*template.Template
}

// New разбирает шаблоны страниц и собирает Handler.
func New(users database.UserStore, tasks database.TaskStore, diaries database.DiaryStore, sessions *session.Manager, logger *log.Logger) (*Handler, error) {
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	return &Handler{
		Users:    users,
		Tasks:    tasks,
		Diaries:  diaries,
		Sessions: sessions,
		Log:      logger,
		Now:      time.Now,
		Quote:    randomQuote,
		pages:    pages,
	}, nil
}

func randomQuote() string {
	return Quotes[rand.IntN(len(Quotes))]
}

func parsePages() (map[string]*template.Template, error) {
	funcs := template.FuncMap{"ago": humanize.Time}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("не удалось разобрать шаблон %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return pages, nil
}

// Routes собирает маршрутизатор приложения.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: h.Log, NoColor: true}))
	r.Use(middleware.Recoverer)

	r.Get("/login", h.LoginForm)
	r.Post("/login", h.Login)
	r.Get("/register", h.RegisterForm)
	r.Post("/register", h.Register)
	r.Get("/logout", h.Logout)

	r.Group(func(r chi.Router) {
		r.Use(h.Sessions.RequireUser)

		r.Get("/", h.Index)
		r.Get("/all_tasks", h.AllTasks)
		r.Get("/add", h.AddTaskForm)
		r.Post("/add", h.AddTask)
		r.Get("/complete/{index:[0-9]+}", h.CompleteTask)
		r.Get("/delete/{index:[0-9]+}", h.DeleteTask)

		r.Get("/diary", h.DiaryForm)
		r.Post("/diary", h.WriteDiary)
		r.Get("/diaries", h.ListDiaries)
		r.Get("/diary/{filename}", h.ViewDiary)

		r.Route("/api", func(r chi.Router) {
			r.Get("/tasks", h.TasksRead)
			r.Post("/task/done", h.TaskDonePOST)
			r.Delete("/task", h.TaskDELETE)
		})
	})

	return r
}

// page - данные, общие для всех HTML-страниц.
type page struct {
	User    string
	Flashes []string
	Data    any
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	p := page{Flashes: h.Sessions.Flashes(w, r), Data: data}
	p.User, _ = session.UserFrom(r.Context())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.pages[name].Execute(w, p); err != nil {
		h.Log.Printf("error: шаблон %s: %v", name, err)
	}
}

func (h *Handler) serverError(w http.ResponseWriter, err error) {
	h.Log.Printf("error: %v", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *Handler) flashRedirect(w http.ResponseWriter, r *http.Request, msg, to string) {
	h.Sessions.AddFlash(w, r, msg)
	http.Redirect(w, r, to, http.StatusFound)
}

// formValues возвращает обязательные поля формы; отсутствие поля - ошибка запроса.
func formValues(r *http.Request, keys ...string) (map[string]string, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	values := make(map[string]string, len(keys))
	for _, key := range keys {
		if _, ok := r.PostForm[key]; !ok {
			return nil, fmt.Errorf("нет поля %q", key)
		}
		values[key] = r.PostForm.Get(key)
	}
	return values, nil
}

// currentUser достаёт пользователя, которого положил в контекст RequireUser.
func currentUser(r *http.Request) string {
	user, _ := session.UserFrom(r.Context())
	return user
}

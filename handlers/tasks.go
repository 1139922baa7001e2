package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"daily_planner/models"

	"github.com/go-chi/chi/v5"
)

// taskRow - задача вместе с её позицией в общем списке задач пользователя;
// по этой позиции работают ссылки /complete и /delete.
type taskRow struct {
	Index int
	Task  models.Task
}

type indexData struct {
	Tasks    []taskRow
	Quote    string
	Progress string
}

func (h *Handler) today() string {
	return h.Now().Format(models.DatePattern)
}

// Index показывает задачи на сегодня, цитату и прогресс.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	today := h.today()

	all, err := h.Tasks.ListAll(r.Context(), user)
	if err != nil {
		h.serverError(w, err)
		return
	}

	var rows []taskRow
	var todays []models.Task
	for i, t := range all {
		if t.Date == today {
			rows = append(rows, taskRow{Index: i, Task: t})
			todays = append(todays, t)
		}
	}

	h.render(w, r, "index", indexData{Tasks: rows, Quote: h.Quote(), Progress: models.Progress(todays)})
}

// AllTasks показывает все задачи пользователя вместе с их позициями.
func (h *Handler) AllTasks(w http.ResponseWriter, r *http.Request) {
	all, err := h.Tasks.ListAll(r.Context(), currentUser(r))
	if err != nil {
		h.serverError(w, err)
		return
	}

	rows := make([]taskRow, 0, len(all))
	for i, t := range all {
		rows = append(rows, taskRow{Index: i, Task: t})
	}
	h.render(w, r, "all_tasks", rows)
}

// AddTaskForm отдаёт форму новой задачи; дата по умолчанию сегодняшняя.
func (h *Handler) AddTaskForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "add_task", h.today())
}

// AddTask создаёт задачу из формы. Время приходит в формате 15:04,
// дата в формате 2006-01-02; иначе отвечаем 400.
func (h *Handler) AddTask(w http.ResponseWriter, r *http.Request) {
	form, err := formValues(r, "title", "time", "date", "priority")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	taskTime, err := models.FormatTaskTime(form["time"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := time.Parse(models.DatePattern, form["date"]); err != nil {
		http.Error(w, fmt.Sprintf("неверная дата %q", form["date"]), http.StatusBadRequest)
		return
	}

	task := models.Task{
		Title:    form["title"],
		Time:     taskTime,
		Date:     form["date"],
		Priority: form["priority"],
		User:     currentUser(r),
	}
	if err := h.Tasks.Create(r.Context(), &task); err != nil {
		h.serverError(w, err)
		return
	}

	h.Log.Printf("добавлена задача id=%s пользователя %s", task.ID, task.User)
	http.Redirect(w, r, "/", http.StatusFound)
}

// CompleteTask отмечает задачу по позиции; неверная позиция молча игнорируется.
func (h *Handler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	h.atIndex(w, r, h.Tasks.CompleteAt)
}

// DeleteTask удаляет задачу по позиции; неверная позиция молча игнорируется.
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	h.atIndex(w, r, h.Tasks.DeleteAt)
}

func (h *Handler) atIndex(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, user string, index int) (bool, error)) {
	// Слишком большое число тоже вне диапазона.
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err == nil {
		if _, err := op(r.Context(), currentUser(r), index); err != nil {
			h.serverError(w, err)
			return
		}
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

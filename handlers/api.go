package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"daily_planner/database"
	"daily_planner/models"
)

// responseWithError отвечает JSON-объектом {"error": "..."} с кодом status.
func (h *Handler) responseWithError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		h.Log.Printf("error: %v", err)
	}

	body, _ := json.Marshal(models.ResponseError{Error: err.Error()})
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (h *Handler) responseWithJSON(w http.ResponseWriter, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		h.responseWithError(w, http.StatusInternalServerError, errors.New("ошибка кодирования JSON"))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// TasksRead возвращает задачи пользователя.
// С параметром «date» (YYYY-MM-DD) возвращаются только задачи на эту дату.
func (h *Handler) TasksRead(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	var tasks []models.Task
	var err error
	if date := r.URL.Query().Get("date"); date != "" {
		tasks, err = h.Tasks.ListForDate(r.Context(), user, date)
	} else {
		tasks, err = h.Tasks.ListAll(r.Context(), user)
	}
	if err != nil {
		h.responseWithError(w, http.StatusInternalServerError, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	h.responseWithJSON(w, models.Tasks{Tasks: tasks})
}

// TaskDonePOST отмечает выполненной задачу с идентификатором «id».
func (h *Handler) TaskDonePOST(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, h.Tasks.Complete)
}

// TaskDELETE удаляет задачу с идентификатором «id».
func (h *Handler) TaskDELETE(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, h.Tasks.Delete)
}

func (h *Handler) byID(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, user, id string) error) {
	id := r.URL.Query().Get("id")
	if id == "" {
		h.responseWithError(w, http.StatusBadRequest, errors.New("пустой идентификатор задачи"))
		return
	}

	if err := op(r.Context(), currentUser(r), id); err != nil {
		if errors.Is(err, database.ErrTaskNotFound) {
			h.responseWithError(w, http.StatusNotFound, err)
			return
		}
		h.responseWithError(w, http.StatusInternalServerError, err)
		return
	}

	h.Log.Printf("изменена задача id=%s", id)
	h.responseWithJSON(w, struct{}{})
}

package handlers

import (
	"errors"
	"net/http"

	"daily_planner/database"

	"github.com/go-chi/chi/v5"
)

// diaryView - одна запись дневника для страницы просмотра.
type diaryView struct {
	Filename string
	Content  string
}

// DiaryForm отдаёт форму записи за сегодня.
func (h *Handler) DiaryForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "diary", h.today())
}

// WriteDiary сохраняет запись за сегодня, перезаписывая прежнюю.
func (h *Handler) WriteDiary(w http.ResponseWriter, r *http.Request) {
	form, err := formValues(r, "entry")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Diaries.Write(r.Context(), currentUser(r), h.today(), form["entry"]); err != nil {
		h.serverError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// ListDiaries показывает записи пользователя, новые сверху.
func (h *Handler) ListDiaries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Diaries.List(r.Context(), currentUser(r))
	if err != nil {
		h.serverError(w, err)
		return
	}
	h.render(w, r, "diary_list", entries)
}

// ViewDiary показывает запись по имени файла.
// Чужая или несуществующая запись - сообщение и переход на /diaries.
func (h *Handler) ViewDiary(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	content, err := h.Diaries.Read(r.Context(), currentUser(r), filename)
	if err != nil {
		if errors.Is(err, database.ErrDiaryNotFound) {
			h.flashRedirect(w, r, "Diary entry not found", "/diaries")
			return
		}
		h.serverError(w, err)
		return
	}
	h.render(w, r, "view_diary", diaryView{Filename: filename, Content: content})
}

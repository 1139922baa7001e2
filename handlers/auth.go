package handlers

import (
	"errors"
	"net/http"

	"daily_planner/database"
)

// LoginForm отдаёт страницу входа.
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "login", nil)
}

// Login проверяет имя и пароль и открывает сессию.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	form, err := formValues(r, "username", "password")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.Users.Authenticate(r.Context(), form["username"], form["password"])
	if err != nil {
		if errors.Is(err, database.ErrInvalidCredentials) {
			h.flashRedirect(w, r, "Invalid username or password", "/login")
			return
		}
		h.serverError(w, err)
		return
	}

	if err := h.Sessions.Issue(w, user.Name); err != nil {
		h.serverError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// RegisterForm отдаёт страницу регистрации.
func (h *Handler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "register", nil)
}

// Register создаёт пользователя и отправляет его на страницу входа.
// Занятое имя возвращает на /register с сообщением.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	form, err := formValues(r, "username", "password")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.Users.Register(r.Context(), form["username"], form["password"])
	if err != nil {
		if errors.Is(err, database.ErrUserExists) {
			h.flashRedirect(w, r, "⚠️ Username already exists!", "/register")
			return
		}
		h.serverError(w, err)
		return
	}

	h.Log.Printf("зарегистрирован пользователь id=%s", user.ID)
	h.flashRedirect(w, r, "✅ Registered successfully! Please login.", "/login")
}

// Logout закрывает сессию.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.Clear(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"daily_planner/database"
	"daily_planner/models"
	"daily_planner/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	srv    *httptest.Server
	client *http.Client
	users  database.UserStore
	dir    string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	dir := t.TempDir()

	users, err := database.NewJSONUserStore(filepath.Join(dir, "users.json"))
	require.NoError(t, err)
	tasks, err := database.NewJSONTaskStore(filepath.Join(dir, "tasks.json"))
	require.NoError(t, err)
	diaries := database.NewFileDiaryStore(filepath.Join(dir, "diaries"))

	h, err := New(users, tasks, diaries, session.NewManager("test-secret", time.Hour, false), log.New(io.Discard, "", 0))
	require.NoError(t, err)
	h.Now = func() time.Time { return time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC) }
	h.Quote = func() string { return Quotes[0] }

	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)

	return &testApp{srv: srv, client: newClient(t, srv), users: users, dir: dir}
}

func newClient(t *testing.T, srv *httptest.Server) *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := srv.Client()
	client.Jar = jar
	return client
}

func (a *testApp) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := a.client.Get(a.srv.URL + path)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func (a *testApp) post(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := a.client.PostForm(a.srv.URL+path, form)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func (a *testApp) apiTasks(t *testing.T, query string) []models.Task {
	t.Helper()
	resp, body := a.get(t, "/api/tasks"+query)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	var out models.Tasks
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	return out.Tasks
}

func (a *testApp) login(t *testing.T, name, password string) {
	t.Helper()
	_, _ = a.post(t, "/register", url.Values{"username": {name}, "password": {password}})
	resp, _ := a.post(t, "/login", url.Values{"username": {name}, "password": {password}})
	require.Equal(t, "/", resp.Request.URL.Path)
}

func (a *testApp) addTask(t *testing.T, title, clock, date string) {
	t.Helper()
	resp, body := a.post(t, "/add", url.Values{
		"title": {title}, "time": {clock}, "date": {date}, "priority": {"High"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func TestRedirectsToLoginWithoutSession(t *testing.T) {
	app := newTestApp(t)
	for _, path := range []string{"/", "/all_tasks", "/add", "/diary", "/diaries", "/complete/0", "/api/tasks"} {
		resp, _ := app.get(t, path)
		assert.Equal(t, "/login", resp.Request.URL.Path, path)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	app := newTestApp(t)

	resp, body := app.post(t, "/register", url.Values{"username": {"alice"}, "password": {"pw1"}})
	assert.Equal(t, "/login", resp.Request.URL.Path)
	assert.Contains(t, body, "Registered successfully! Please login.")

	resp, body = app.post(t, "/register", url.Values{"username": {"alice"}, "password": {"other"}})
	assert.Equal(t, "/register", resp.Request.URL.Path)
	assert.Contains(t, body, "Username already exists!")

	count, err := app.users.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	resp, body = app.post(t, "/login", url.Values{"username": {"alice"}, "password": {"wrong"}})
	assert.Equal(t, "/login", resp.Request.URL.Path)
	assert.Contains(t, body, "Invalid username or password")

	resp, body = app.post(t, "/login", url.Values{"username": {"alice"}, "password": {"pw1"}})
	assert.Equal(t, "/", resp.Request.URL.Path)
	assert.Contains(t, body, "No tasks yet")
	assert.Contains(t, body, Quotes[0])

	resp, _ = app.get(t, "/logout")
	assert.Equal(t, "/login", resp.Request.URL.Path)
	resp, _ = app.get(t, "/")
	assert.Equal(t, "/login", resp.Request.URL.Path)
}

func TestAddTaskScenario(t *testing.T) {
	app := newTestApp(t)
	app.login(t, "alice", "pw1")
	app.addTask(t, "Walk dog", "14:30", "2024-01-01")

	tasks := app.apiTasks(t, "")
	require.Len(t, tasks, 1)
	assert.Equal(t, "Walk dog", tasks[0].Title)
	assert.Equal(t, "02:30 PM", tasks[0].Time)
	assert.Equal(t, "2024-01-01", tasks[0].Date)
	assert.Equal(t, "High", tasks[0].Priority)
	assert.Equal(t, models.StatusPending, tasks[0].Status)
	assert.Equal(t, "alice", tasks[0].User)

	_, body := app.get(t, "/")
	assert.Contains(t, body, "Walk dog")
	assert.Contains(t, body, "0/1 completed")

	other := &testApp{srv: app.srv, client: newClient(t, app.srv), users: app.users}
	other.login(t, "bob", "pw2")
	assert.Empty(t, other.apiTasks(t, ""))
	_, body = other.get(t, "/")
	assert.NotContains(t, body, "Walk dog")
}

func TestAddTaskRejectsMalformedInput(t *testing.T) {
	app := newTestApp(t)
	app.login(t, "alice", "pw1")

	resp, _ := app.post(t, "/add", url.Values{
		"title": {"Walk dog"}, "time": {"half past two"}, "date": {"2024-01-01"}, "priority": {"High"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	for _, date := range []string{"not-a-date", "2024-13-01", "01/01/2024", ""} {
		resp, _ = app.post(t, "/add", url.Values{
			"title": {"Walk dog"}, "time": {"14:30"}, "date": {date}, "priority": {"High"},
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, date)
		assert.Equal(t, "/add", resp.Request.URL.Path, date)
	}

	resp, _ = app.post(t, "/add", url.Values{"title": {"Walk dog"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	assert.Empty(t, app.apiTasks(t, ""))
}

func TestCompleteAndDeleteByIndex(t *testing.T) {
	app := newTestApp(t)
	app.login(t, "alice", "pw1")
	app.addTask(t, "Yesterday", "08:00", "2023-12-31")
	app.addTask(t, "Walk dog", "14:30", "2024-01-01")
	app.addTask(t, "Cook", "18:00", "2024-01-01")

	_, body := app.get(t, "/")
	assert.Contains(t, body, `href="/complete/1"`)
	assert.Contains(t, body, `href="/complete/2"`)
	assert.NotContains(t, body, "Yesterday")

	resp, body := app.get(t, "/complete/1")
	assert.Equal(t, "/", resp.Request.URL.Path)
	assert.Contains(t, body, "1/2 completed")

	tasks := app.apiTasks(t, "")
	assert.Equal(t, models.StatusPending, tasks[0].Status)
	assert.Equal(t, models.StatusCompleted, tasks[1].Status)
	assert.Equal(t, models.StatusPending, tasks[2].Status)

	resp, _ = app.get(t, "/complete/99")
	assert.Equal(t, "/", resp.Request.URL.Path)
	resp, _ = app.get(t, "/delete/99999999999999999999999")
	assert.Equal(t, "/", resp.Request.URL.Path)
	resp, _ = app.get(t, "/delete/-1")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Len(t, app.apiTasks(t, ""), 3)

	_, _ = app.get(t, "/delete/0")
	tasks = app.apiTasks(t, "")
	require.Len(t, tasks, 2)
	assert.Equal(t, "Walk dog", tasks[0].Title)

	today := app.apiTasks(t, "?date=2024-01-01")
	assert.Len(t, today, 2)
}

func TestTaskAPIByID(t *testing.T) {
	app := newTestApp(t)
	app.login(t, "alice", "pw1")
	app.addTask(t, "Same", "10:00", "2024-01-01")
	app.addTask(t, "Same", "10:00", "2024-01-01")
	tasks := app.apiTasks(t, "")
	require.Len(t, tasks, 2)

	resp, err := app.client.Post(app.srv.URL+"/api/task/done?id="+tasks[1].ID, "", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{}`, readBody(t, resp))

	resp, err = app.client.Post(app.srv.URL+"/api/task/done?id=nope", "", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `"error"`)

	resp, err = app.client.Post(app.srv.URL+"/api/task/done", "", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	req, err := http.NewRequest(http.MethodDelete, app.srv.URL+"/api/task?id="+tasks[0].ID, nil)
	require.NoError(t, err)
	resp, err = app.client.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	left := app.apiTasks(t, "")
	require.Len(t, left, 1)
	assert.Equal(t, tasks[1].ID, left[0].ID)
	assert.Equal(t, models.StatusCompleted, left[0].Status)
}

func TestDiaryFlow(t *testing.T) {
	app := newTestApp(t)
	app.login(t, "alice", "pw1")

	resp, _ := app.post(t, "/diary", url.Values{"entry": {"Good day\nwalked the dog"}})
	assert.Equal(t, "/", resp.Request.URL.Path)
	_, _ = app.post(t, "/diary", url.Values{"entry": {"Better day\nrewritten"}})

	_, body := app.get(t, "/diaries")
	assert.Contains(t, body, "2024-01-01 · Better day")
	assert.Contains(t, body, "/diary/diary_alice_2024-01-01.txt")
	assert.Equal(t, 1, strings.Count(body, "<article>"))

	resp, body = app.get(t, "/diary/diary_alice_2024-01-01.txt")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Better day\nrewritten")
	assert.NotContains(t, body, "walked the dog")

	other := &testApp{srv: app.srv, client: newClient(t, app.srv), users: app.users}
	other.login(t, "bob", "pw2")
	resp, body = other.get(t, "/diary/diary_alice_2024-01-01.txt")
	assert.Equal(t, "/diaries", resp.Request.URL.Path)
	assert.Contains(t, body, "Diary entry not found")
	assert.NotContains(t, body, "Better day")
}

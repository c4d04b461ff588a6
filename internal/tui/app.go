// Package tui renders the course client in the terminal. Views follow the
// navigator; actions run as tea.Cmds against the service coordinator.
package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jask/coursedesk/internal/model"
	"github.com/jask/coursedesk/internal/navigator"
	"github.com/jask/coursedesk/internal/prefs"
	"github.com/jask/coursedesk/internal/service"
)

// App ties together views.
type App struct {
	ctx     context.Context
	coord   *service.Coordinator
	notices *NoticeQueue
	keys    *KeyRegistry
	log     *zap.SugaredLogger
	spinner spinner.Model

	loginForm    *form
	registerForm *form
	courseForm   *form

	modal     modalState
	alerts    []service.Notice
	status    string
	cursor    int
	searching bool
	search    textinput.Model
	query     string
	roster    rosterView
	prefsPath string
	width     int
	height    int
}

type modalState string

const (
	modalNone          modalState = ""
	modalConfirmEnroll modalState = "confirmEnroll"
	modalCreateCourse  modalState = "createCourse"
)

type rosterView struct {
	courseID int
	entries  []model.RosterEntry
	loaded   bool
	failed   bool
}

// New builds the app. notices must be the Reporter the coordinator was built with.
func New(ctx context.Context, coord *service.Coordinator, notices *NoticeQueue, log *zap.SugaredLogger) *App {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "title or teacher"
	search.Cursor.SetMode(cursor.CursorStatic)
	return &App{
		ctx:     ctx,
		coord:   coord,
		notices: notices,
		keys:    NewKeyRegistry(),
		log:     log,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		loginForm: newForm(
			formField{Key: "username", Label: "Username", Limit: 64},
			formField{Key: "password", Label: "Password", Secret: true},
		),
		registerForm: newForm(
			formField{Key: "username", Label: "Username", Limit: 64},
			formField{Key: "password", Label: "Password", Secret: true},
			formField{Key: "role", Label: "Role", Placeholder: "student or teacher", Default: string(model.RoleStudent)},
		),
		courseForm: newForm(
			formField{Key: "title", Label: "Title", Limit: 120},
			formField{Key: "description", Label: "Description", Limit: 2000},
		),
		search: search,
	}
}

// WithPrefs prefills the login form with the last username stored at path
// and records it again after each successful login.
func (a *App) WithPrefs(path string) *App {
	a.prefsPath = path
	p, err := prefs.Load(path)
	if err != nil {
		a.log.Warnw("load prefs", "path", path, "error", err)
		return a
	}
	a.loginForm.fields[0].Default = p.LastUsername
	a.loginForm.reset()
	return a
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.startCmd())
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(m)
		return a, cmd
	case tea.KeyMsg:
		return a.handleKey(m)
	case doneMsg:
		a.finish(m)
	case rosterMsg:
		if sel, ok := a.coord.Nav.Selected(); ok && sel.ID == m.courseID {
			a.roster = rosterView{courseID: m.courseID, entries: m.entries, loaded: m.err == nil, failed: m.err != nil}
		}
	}
	a.drainNotices()
	a.clampCursor()
	return a, nil
}

func (a *App) drainNotices() {
	if a.notices == nil {
		return
	}
	for _, n := range a.notices.drain() {
		if n.Level == service.Blocking {
			a.alerts = append(a.alerts, n)
			continue
		}
		a.status = n.Message
	}
}

// finish applies the view-local effects of a completed action. Notices the
// action reported are drained afterwards so they win over cleared status.
func (a *App) finish(m doneMsg) {
	if m.err != nil {
		a.log.Debugw("action finished", "action", m.action, "error", m.err)
	}
	switch m.action {
	case actLogin:
		a.status = ""
		if m.err == nil {
			if id, ok := a.coord.Session.Identity(); ok && a.prefsPath != "" {
				a.loginForm.fields[0].Default = id.Username
			}
			a.loginForm.reset()
		}
	case actRegister:
		a.status = ""
		if m.err == nil {
			a.registerForm.reset()
		}
	case actLogout:
		a.loginForm.reset()
		a.registerForm.reset()
		a.courseForm.reset()
		a.modal = modalNone
		a.cursor = 0
		a.clearSearch()
		a.roster = rosterView{}
		a.status = ""
		if m.err != nil {
			a.status = "error: " + m.err.Error()
		}
	case actCreateCourse:
		if m.err == nil {
			a.courseForm.reset()
			a.modal = modalNone
		}
	case actEnroll:
		a.status = ""
		if _, ok := a.coord.PendingEnroll(); !ok && a.modal == modalConfirmEnroll {
			a.modal = modalNone
		}
	}
}

func (a *App) scope() string {
	if len(a.alerts) > 0 {
		return scopeAlert
	}
	switch a.modal {
	case modalConfirmEnroll:
		return scopeConfirmEnroll
	case modalCreateCourse:
		return scopeCreateCourse
	}
	switch a.coord.Nav.View() {
	case navigator.ViewLogin:
		return scopeLogin
	case navigator.ViewRegister:
		return scopeRegister
	case navigator.ViewStudentCourse:
		return scopeStudentCourse
	case navigator.ViewTeacherCourse:
		return scopeTeacherCourse
	}
	if a.searching {
		return scopeSearch
	}
	return scopeDashboard
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	scope := a.scope()
	b := a.keys.Lookup(m.String(), scope)
	if b != nil && b.Action == actionQuit {
		return a, tea.Quit
	}
	var action Action
	if b != nil {
		action = b.Action
	}

	switch scope {
	case scopeAlert:
		if action == actionDismiss {
			a.alerts = a.alerts[1:]
		}
		return a, nil
	case scopeConfirmEnroll:
		return a, a.handleConfirmEnroll(action)
	case scopeCreateCourse:
		return a, a.handleForm(a.courseForm, action, m, a.submitCourse, func() {
			a.modal = modalNone
			a.courseForm.reset()
		})
	case scopeLogin:
		return a, a.handleForm(a.loginForm, action, m, a.submitLogin, nil)
	case scopeRegister:
		return a, a.handleForm(a.registerForm, action, m, a.submitRegister, nil)
	case scopeSearch:
		return a, a.handleSearch(action, m)
	case scopeDashboard:
		return a, a.handleDashboard(action)
	case scopeStudentCourse:
		return a, a.handleStudentCourse(action)
	case scopeTeacherCourse:
		return a, a.handleTeacherCourse(action)
	}
	return a, nil
}

func (a *App) handleForm(f *form, action Action, m tea.KeyMsg, submit func() tea.Cmd, cancel func()) tea.Cmd {
	switch action {
	case actionSubmit:
		return submit()
	case actionNextField:
		f.move(1)
	case actionPrevField:
		f.move(-1)
	case actionCancel:
		if cancel != nil {
			cancel()
		}
	case actionShowRegister:
		a.status = ""
		a.transition("show register", a.coord.Nav.ShowRegister())
	case actionShowLogin:
		a.status = ""
		a.transition("show login", a.coord.Nav.ShowLogin())
	default:
		return f.update(m)
	}
	return nil
}

func (a *App) submitLogin() tea.Cmd {
	creds := model.Credentials{
		Username: a.loginForm.value("username"),
		Password: a.loginForm.value("password"),
	}
	a.status = "Logging in..."
	return a.loginCmd(creds)
}

func (a *App) submitRegister() tea.Cmd {
	reg := model.Registration{
		Username: a.registerForm.value("username"),
		Password: a.registerForm.value("password"),
		Role:     model.Role(strings.ToLower(a.registerForm.value("role"))),
	}
	a.status = "Registering..."
	return a.registerCmd(reg)
}

func (a *App) submitCourse() tea.Cmd {
	nc := model.NewCourse{
		Title:       a.courseForm.value("title"),
		Description: a.courseForm.value("description"),
	}
	return a.createCourseCmd(nc)
}

func (a *App) handleSearch(action Action, m tea.KeyMsg) tea.Cmd {
	switch action {
	case actionSubmit:
		a.searching = false
		a.search.Blur()
	case actionCancel:
		a.clearSearch()
	default:
		var cmd tea.Cmd
		a.search, cmd = a.search.Update(m)
		a.query = a.search.Value()
		a.cursor = 0
		return cmd
	}
	return nil
}

func (a *App) clearSearch() {
	a.searching = false
	a.query = ""
	a.search.Reset()
	a.search.Blur()
}

func (a *App) handleDashboard(action Action) tea.Cmd {
	courses := a.visibleCourses()
	switch action {
	case actionUp:
		if a.cursor > 0 {
			a.cursor--
		}
	case actionDown:
		if a.cursor < len(courses)-1 {
			a.cursor++
		}
	case actionSelect:
		if len(courses) == 0 {
			return nil
		}
		return a.openCourse(courses[a.cursor].ID)
	case actionSearch:
		a.searching = true
		a.search.Focus()
	case actionClearSearch:
		a.clearSearch()
	case actionRefresh:
		return a.refreshCmd()
	case actionNewCourse:
		if id, ok := a.coord.Session.Identity(); ok && id.IsTeacher() {
			a.courseForm.reset()
			a.modal = modalCreateCourse
		}
	case actionLogout:
		return a.logoutCmd()
	}
	return nil
}

func (a *App) openCourse(courseID int) tea.Cmd {
	if err := a.coord.SelectCourse(courseID); err != nil {
		a.log.Warnw("select course", "course_id", courseID, "error", err)
		return nil
	}
	a.status = ""
	if a.coord.Nav.View() == navigator.ViewTeacherCourse {
		a.roster = rosterView{courseID: courseID}
		return a.rosterCmd(courseID)
	}
	return nil
}

func (a *App) handleStudentCourse(action Action) tea.Cmd {
	switch action {
	case actionEnroll:
		course, ok := a.selectedCourse()
		if !ok || course.IsEnrolled() {
			return nil
		}
		if err := a.coord.RequestEnroll(course.ID); err != nil {
			if errors.Is(err, service.ErrEnrollInFlight) {
				a.status = "Enrollment in progress..."
			}
			return nil
		}
		a.modal = modalConfirmEnroll
	case actionRefresh:
		return a.refreshCmd()
	case actionBack:
		a.transition("back", a.coord.Back())
	case actionLogout:
		return a.logoutCmd()
	}
	return nil
}

func (a *App) handleConfirmEnroll(action Action) tea.Cmd {
	switch action {
	case actionConfirm:
		courseID, ok := a.coord.PendingEnroll()
		if !ok || a.coord.EnrollInFlight(courseID) {
			return nil
		}
		a.modal = modalNone
		a.status = "Enrolling..."
		return a.enrollCmd()
	case actionCancel:
		a.coord.CancelEnroll()
		a.modal = modalNone
	}
	return nil
}

func (a *App) handleTeacherCourse(action Action) tea.Cmd {
	switch action {
	case actionRefresh:
		if sel, ok := a.coord.Nav.Selected(); ok {
			a.roster = rosterView{courseID: sel.ID}
			return a.rosterCmd(sel.ID)
		}
	case actionBack:
		a.roster = rosterView{}
		a.transition("back", a.coord.Back())
	case actionLogout:
		return a.logoutCmd()
	}
	return nil
}

func (a *App) transition(what string, err error) {
	if err != nil {
		a.log.Warnw("view transition", "transition", what, "view", a.coord.Nav.View(), "error", err)
	}
}

// selectedCourse prefers the catalog entry so enrollment state stays current
// after a refresh.
func (a *App) selectedCourse() (model.Course, bool) {
	sel, ok := a.coord.Nav.Selected()
	if !ok {
		return model.Course{}, false
	}
	if c, ok := a.coord.Catalog.Course(sel.ID); ok {
		return c, true
	}
	return sel, true
}

func (a *App) visibleCourses() []model.Course {
	return rankCourses(a.coord.Catalog.State().Courses, a.query)
}

func (a *App) clampCursor() {
	n := len(a.visibleCourses())
	if a.cursor >= n {
		a.cursor = max(0, n-1)
	}
}

package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/coursedesk/internal/model"
	"github.com/jask/coursedesk/internal/prefs"
)

type actionKind string

const (
	actStart        actionKind = "start"
	actLogin        actionKind = "login"
	actRegister     actionKind = "register"
	actLogout       actionKind = "logout"
	actRefresh      actionKind = "refresh"
	actEnroll       actionKind = "enroll"
	actCreateCourse actionKind = "create_course"
)

// doneMsg reports a finished coordinator action. Notices travel separately
// through the NoticeQueue.
type doneMsg struct {
	action actionKind
	err    error
}

type rosterMsg struct {
	courseID int
	entries  []model.RosterEntry
	err      error
}

func (a *App) startCmd() tea.Cmd {
	return func() tea.Msg {
		a.coord.Start(a.ctx)
		return doneMsg{action: actStart}
	}
}

func (a *App) loginCmd(creds model.Credentials) tea.Cmd {
	return func() tea.Msg {
		err := a.coord.Login(a.ctx, creds)
		if err == nil && a.prefsPath != "" {
			if perr := prefs.Save(a.prefsPath, prefs.Prefs{LastUsername: creds.Username}); perr != nil {
				a.log.Warnw("save prefs", "error", perr)
			}
		}
		return doneMsg{action: actLogin, err: err}
	}
}

func (a *App) registerCmd(reg model.Registration) tea.Cmd {
	return func() tea.Msg {
		return doneMsg{action: actRegister, err: a.coord.Register(a.ctx, reg)}
	}
}

func (a *App) logoutCmd() tea.Cmd {
	return func() tea.Msg {
		return doneMsg{action: actLogout, err: a.coord.Logout(a.ctx)}
	}
}

func (a *App) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		a.coord.Refresh(a.ctx)
		return doneMsg{action: actRefresh}
	}
}

func (a *App) enrollCmd() tea.Cmd {
	return func() tea.Msg {
		return doneMsg{action: actEnroll, err: a.coord.ConfirmEnroll(a.ctx)}
	}
}

func (a *App) createCourseCmd(nc model.NewCourse) tea.Cmd {
	return func() tea.Msg {
		_, err := a.coord.CreateCourse(a.ctx, nc)
		return doneMsg{action: actCreateCourse, err: err}
	}
}

func (a *App) rosterCmd(courseID int) tea.Cmd {
	return func() tea.Msg {
		entries, err := a.coord.Roster(a.ctx, courseID)
		return rosterMsg{courseID: courseID, entries: entries, err: err}
	}
}

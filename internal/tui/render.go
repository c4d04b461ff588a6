package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jask/coursedesk/internal/model"
	"github.com/jask/coursedesk/internal/navigator"
)

func (a *App) View() string {
	var body string
	switch a.coord.Nav.View() {
	case navigator.ViewLogin:
		body = a.renderLogin()
	case navigator.ViewRegister:
		body = a.renderRegister()
	case navigator.ViewStudentCourse:
		body = a.renderStudentCourse()
	case navigator.ViewTeacherCourse:
		body = a.renderTeacherCourse()
	default:
		body = a.renderDashboard()
	}
	switch {
	case len(a.alerts) > 0:
		body += "\n\n" + a.renderAlert()
	case a.modal != modalNone:
		body += "\n\n" + a.renderModal()
	}
	if a.status != "" {
		body += "\n" + statusBarStyle.Render(a.status)
	}
	return body + "\n" + a.renderFooter()
}

func (a *App) renderLogin() string {
	return titleStyle.Render("Log in") + "\n" + a.loginForm.view()
}

func (a *App) renderRegister() string {
	return titleStyle.Render("Create an account") + "\n" + a.registerForm.view()
}

func (a *App) renderDashboard() string {
	id, _ := a.coord.Session.Identity()
	st := a.coord.Catalog.State()

	title := titleStyle.Render(fmt.Sprintf("Courses - %s (%s)", id.Username, id.Role))
	if st.IsLoading {
		title += " " + a.spinner.View()
	}
	lines := []string{title}
	if a.searching || a.query != "" {
		lines = append(lines, searchStyle.Render(a.search.View()))
	}
	if st.Error != "" {
		lines = append(lines, errorStyle.Render(st.Error))
	}

	courses := rankCourses(st.Courses, a.query)
	if len(courses) == 0 && !st.IsLoading {
		if a.query != "" {
			lines = append(lines, mutedStyle.Render("No courses match."))
		} else {
			lines = append(lines, mutedStyle.Render("No courses yet."))
		}
	}
	for i, c := range courses {
		marker := "  "
		if i == a.cursor {
			marker = cursorStyle.Render("▶ ")
		}
		lines = append(lines, marker+courseLine(c, id))
	}
	return strings.Join(lines, "\n")
}

func courseLine(c model.Course, viewer model.Identity) string {
	line := fmt.Sprintf("%-32s %s", c.Title, mutedStyle.Render(c.TeacherName))
	switch {
	case viewer.IsTeacher() && c.TeacherID == viewer.ID:
		line += " " + enrolledStyle.Render("[yours]")
	case !viewer.IsTeacher() && c.IsEnrolled():
		line += " " + enrolledStyle.Render("[enrolled]")
	}
	return line
}

func (a *App) renderStudentCourse() string {
	c, ok := a.selectedCourse()
	if !ok {
		return ""
	}
	lines := []string{
		titleStyle.Render(c.Title),
		mutedStyle.Render("Taught by " + c.TeacherName),
	}
	if c.Description != "" {
		lines = append(lines, "", c.Description)
	}
	lines = append(lines, "")
	switch {
	case c.IsEnrolled():
		lines = append(lines, enrolledStyle.Render("You are enrolled."))
	case a.coord.EnrollInFlight(c.ID):
		lines = append(lines, a.spinner.View()+" Enrolling...")
	default:
		lines = append(lines, "Not enrolled. Press e to enroll.")
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderTeacherCourse() string {
	sel, ok := a.coord.Nav.Selected()
	if !ok {
		return ""
	}
	c := sel
	if fresh, ok := a.coord.Catalog.Course(sel.ID); ok {
		c = fresh
	}
	lines := []string{titleStyle.Render(c.Title)}
	if c.Description != "" {
		lines = append(lines, c.Description)
	}
	lines = append(lines, "", titleStyle.Render("Roster"))
	switch {
	case a.roster.failed:
		lines = append(lines, errorStyle.Render("Roster unavailable. Press r to retry."))
	case !a.roster.loaded:
		lines = append(lines, a.spinner.View()+" Loading roster...")
	case len(a.roster.entries) == 0:
		lines = append(lines, mutedStyle.Render("No students enrolled."))
	default:
		for _, e := range a.roster.entries {
			grade := "-"
			if e.Grade != nil {
				grade = *e.Grade
			}
			lines = append(lines, fmt.Sprintf("  %-24s %s", e.Username, grade))
		}
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderModal() string {
	switch a.modal {
	case modalConfirmEnroll:
		courseID, _ := a.coord.PendingEnroll()
		name := fmt.Sprintf("course %d", courseID)
		if c, ok := a.coord.Catalog.Course(courseID); ok {
			name = c.Title
		}
		return modalStyle.Render(titleStyle.Render("Enroll?") + "\nEnroll in " + name + "?\n[y] Enroll  [n] Cancel")
	case modalCreateCourse:
		return modalStyle.Render(titleStyle.Render("New course") + "\n" + a.courseForm.view())
	}
	return ""
}

func (a *App) renderAlert() string {
	n := a.alerts[0]
	content := n.Message
	if len(a.alerts) > 1 {
		content += mutedStyle.Render(fmt.Sprintf("\n(+%d more)", len(a.alerts)-1))
	}
	width := 60
	if a.width > 0 {
		width = min(width, a.width-4)
	}
	return alertStyle.Render(lipgloss.NewStyle().Width(width).Render(content))
}

func (a *App) renderFooter() string {
	bindings := a.keys.HelpBindings(a.scope(), a.actionEnabled)
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return footerStyle.Render(strings.Join(parts, "  "))
}

func (a *App) actionEnabled(act Action) bool {
	switch act {
	case actionNewCourse:
		id, _ := a.coord.Session.Identity()
		return id.IsTeacher()
	case actionEnroll:
		c, ok := a.selectedCourse()
		return ok && !c.IsEnrolled() && !a.coord.EnrollInFlight(c.ID)
	}
	return true
}

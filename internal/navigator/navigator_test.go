package navigator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/coursedesk/internal/model"
)

var (
	course7 = model.Course{ID: 7, Title: "Intro"}
	course8 = model.Course{ID: 8, Title: "Advanced"}
)

func dashboard(t *testing.T) *Navigator {
	t.Helper()
	n := New()
	require.NoError(t, n.LoginSucceeded())
	return n
}

func TestInitialState(t *testing.T) {
	n := New()
	require.Equal(t, ViewLogin, n.View())
	_, ok := n.Selected()
	require.False(t, ok)

	require.NoError(t, n.Restored())
	require.Equal(t, ViewDashboard, n.View())
	require.ErrorIs(t, n.Restored(), ErrInvalidTransition)
}

func TestLoginRegisterToggle(t *testing.T) {
	n := New()
	require.NoError(t, n.ShowRegister())
	require.Equal(t, ViewRegister, n.View())
	require.ErrorIs(t, n.LoginSucceeded(), ErrInvalidTransition)
	require.ErrorIs(t, n.ShowRegister(), ErrInvalidTransition)
	require.NoError(t, n.ShowLogin())
	require.Equal(t, ViewLogin, n.View())
	require.ErrorIs(t, n.ShowLogin(), ErrInvalidTransition)
}

func TestSelectAndBack(t *testing.T) {
	tests := []struct {
		role model.Role
		want View
	}{
		{role: model.RoleTeacher, want: ViewTeacherCourse},
		{role: model.RoleStudent, want: ViewStudentCourse},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			n := dashboard(t)
			require.NoError(t, n.SelectCourse(course7, tt.role))
			require.Equal(t, tt.want, n.View())
			got, ok := n.Selected()
			require.True(t, ok)
			require.Equal(t, course7, got)

			// re-entry replaces the selection
			require.NoError(t, n.SelectCourse(course8, tt.role))
			got, _ = n.Selected()
			require.Equal(t, course8, got)

			require.NoError(t, n.Back())
			require.Equal(t, ViewDashboard, n.View())
			_, ok = n.Selected()
			require.False(t, ok)
		})
	}
}

func TestInvalidTransitionsLeaveStateAlone(t *testing.T) {
	n := New()
	require.ErrorIs(t, n.SelectCourse(course7, model.RoleStudent), ErrInvalidTransition)
	require.ErrorIs(t, n.Back(), ErrInvalidTransition)
	require.Equal(t, ViewLogin, n.View())

	n = dashboard(t)
	require.NoError(t, n.SelectCourse(course7, model.RoleStudent))
	require.ErrorIs(t, n.SelectCourse(course8, model.RoleTeacher), ErrInvalidTransition)
	require.ErrorIs(t, n.SelectCourse(course8, "admin"), ErrInvalidTransition)
	require.Equal(t, ViewStudentCourse, n.View())
	got, _ := n.Selected()
	require.Equal(t, course7, got)
}

func TestLogoutFromAnyView(t *testing.T) {
	setups := map[string]func(*Navigator){
		"login":    func(*Navigator) {},
		"register": func(n *Navigator) { _ = n.ShowRegister() },
		"dashboard": func(n *Navigator) {
			_ = n.LoginSucceeded()
		},
		"detail": func(n *Navigator) {
			_ = n.LoginSucceeded()
			_ = n.SelectCourse(course7, model.RoleTeacher)
		},
	}
	for name, setup := range setups {
		t.Run(name, func(t *testing.T) {
			n := New()
			setup(n)
			n.Logout()
			require.Equal(t, ViewLogin, n.View())
			_, ok := n.Selected()
			require.False(t, ok)
		})
	}
}

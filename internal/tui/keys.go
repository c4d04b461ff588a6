package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type Action string

type Binding struct {
	Action Action
	Keys   []string
	Help   string
	Scopes []string
}

// KeyRegistry maps keys to actions per scope. Lookups fall back to the
// global scope.
type KeyRegistry struct {
	bindingsByScope map[string][]*Binding
	indexByScope    map[string]map[string]*Binding
}

const (
	scopeGlobal        = "global"
	scopeLogin         = "login"
	scopeRegister      = "register"
	scopeDashboard     = "dashboard"
	scopeSearch        = "search"
	scopeStudentCourse = "student_course"
	scopeTeacherCourse = "teacher_course"
	scopeConfirmEnroll = "confirm_enroll"
	scopeCreateCourse  = "create_course"
	scopeAlert         = "alert"
)

const (
	actionQuit         Action = "quit"
	actionSubmit       Action = "submit"
	actionNextField    Action = "next_field"
	actionPrevField    Action = "prev_field"
	actionShowRegister Action = "show_register"
	actionShowLogin    Action = "show_login"
	actionUp           Action = "up"
	actionDown         Action = "down"
	actionSelect       Action = "select"
	actionSearch       Action = "search"
	actionClearSearch  Action = "clear_search"
	actionRefresh      Action = "refresh"
	actionNewCourse    Action = "new_course"
	actionLogout       Action = "logout"
	actionBack         Action = "back"
	actionEnroll       Action = "enroll"
	actionConfirm      Action = "confirm"
	actionCancel       Action = "cancel"
	actionDismiss      Action = "dismiss"
)

func NewKeyRegistry() *KeyRegistry {
	r := &KeyRegistry{
		bindingsByScope: make(map[string][]*Binding),
		indexByScope:    make(map[string]map[string]*Binding),
	}
	reg := func(scope string, action Action, keys []string, help string) {
		r.Register(Binding{Action: action, Keys: keys, Help: help, Scopes: []string{scope}})
	}

	reg(scopeGlobal, actionQuit, []string{"ctrl+c"}, "quit")

	// form scopes only bind non-printing keys; everything else is typed
	reg(scopeLogin, actionSubmit, []string{"enter"}, "log in")
	reg(scopeLogin, actionNextField, []string{"tab", "down"}, "next field")
	reg(scopeLogin, actionPrevField, []string{"shift+tab", "up"}, "prev field")
	reg(scopeLogin, actionShowRegister, []string{"ctrl+r"}, "register")

	reg(scopeRegister, actionSubmit, []string{"enter"}, "register")
	reg(scopeRegister, actionNextField, []string{"tab", "down"}, "next field")
	reg(scopeRegister, actionPrevField, []string{"shift+tab", "up"}, "prev field")
	reg(scopeRegister, actionShowLogin, []string{"esc"}, "back to login")

	reg(scopeDashboard, actionUp, []string{"k", "up"}, "up")
	reg(scopeDashboard, actionDown, []string{"j", "down"}, "down")
	reg(scopeDashboard, actionSelect, []string{"enter"}, "open")
	reg(scopeDashboard, actionSearch, []string{"/"}, "search")
	reg(scopeDashboard, actionClearSearch, []string{"esc"}, "clear search")
	reg(scopeDashboard, actionRefresh, []string{"r"}, "refresh")
	reg(scopeDashboard, actionNewCourse, []string{"n"}, "new course")
	reg(scopeDashboard, actionLogout, []string{"x"}, "log out")
	reg(scopeDashboard, actionQuit, []string{"q"}, "quit")

	reg(scopeSearch, actionSubmit, []string{"enter"}, "apply")
	reg(scopeSearch, actionCancel, []string{"esc"}, "clear")

	reg(scopeStudentCourse, actionEnroll, []string{"e"}, "enroll")
	reg(scopeStudentCourse, actionRefresh, []string{"r"}, "refresh")
	reg(scopeStudentCourse, actionBack, []string{"esc", "b"}, "back")
	reg(scopeStudentCourse, actionLogout, []string{"x"}, "log out")
	reg(scopeStudentCourse, actionQuit, []string{"q"}, "quit")

	reg(scopeTeacherCourse, actionRefresh, []string{"r"}, "reload roster")
	reg(scopeTeacherCourse, actionBack, []string{"esc", "b"}, "back")
	reg(scopeTeacherCourse, actionLogout, []string{"x"}, "log out")
	reg(scopeTeacherCourse, actionQuit, []string{"q"}, "quit")

	reg(scopeConfirmEnroll, actionConfirm, []string{"y", "enter"}, "enroll")
	reg(scopeConfirmEnroll, actionCancel, []string{"n", "esc"}, "cancel")

	reg(scopeCreateCourse, actionSubmit, []string{"enter"}, "create")
	reg(scopeCreateCourse, actionNextField, []string{"tab", "down"}, "next field")
	reg(scopeCreateCourse, actionPrevField, []string{"shift+tab", "up"}, "prev field")
	reg(scopeCreateCourse, actionCancel, []string{"esc"}, "cancel")

	reg(scopeAlert, actionDismiss, []string{"enter", "esc", "space"}, "ok")

	return r
}

func (r *KeyRegistry) Register(b Binding) {
	if r == nil {
		return
	}
	for _, scope := range b.Scopes {
		scope = strings.TrimSpace(scope)
		if scope == "" || len(b.Keys) == 0 {
			continue
		}
		if _, ok := r.indexByScope[scope]; !ok {
			r.indexByScope[scope] = make(map[string]*Binding)
		}
		normKeys := normalizeKeyList(b.Keys)
		if len(normKeys) == 0 || r.scopeHasAnyKey(scope, normKeys) {
			continue
		}

		copyBinding := b
		copyBinding.Keys = normKeys
		copyBinding.Scopes = []string{scope}
		r.bindingsByScope[scope] = append(r.bindingsByScope[scope], &copyBinding)
		for _, k := range copyBinding.Keys {
			r.indexByScope[scope][k] = &copyBinding
		}
	}
}

func (r *KeyRegistry) BindingsForScope(scope string) []Binding {
	if r == nil {
		return nil
	}
	items := r.bindingsByScope[scope]
	out := make([]Binding, 0, len(items))
	for _, b := range items {
		out = append(out, *b)
	}
	return out
}

func (r *KeyRegistry) Lookup(keyName, scope string) *Binding {
	if r == nil || keyName == "" {
		return nil
	}
	keyName = normalizeKeyName(keyName)
	if b := r.lookupInScope(keyName, scope); b != nil {
		return b
	}
	if scope != scopeGlobal {
		return r.lookupInScope(keyName, scopeGlobal)
	}
	return nil
}

// HelpBindings renders a scope's bindings for the footer. Actions for which
// enabled returns false come back disabled.
func (r *KeyRegistry) HelpBindings(scope string, enabled func(Action) bool) []key.Binding {
	items := r.BindingsForScope(scope)
	out := make([]key.Binding, 0, len(items))
	for _, b := range items {
		opts := []key.BindingOpt{key.WithKeys(b.Keys...), key.WithHelp(b.Keys[0], b.Help)}
		if enabled != nil && !enabled(b.Action) {
			opts = append(opts, key.WithDisabled())
		}
		out = append(out, key.NewBinding(opts...))
	}
	return out
}

func (r *KeyRegistry) lookupInScope(keyName, scope string) *Binding {
	lookup, ok := r.indexByScope[scope]
	if !ok {
		return nil
	}
	return lookup[keyName]
}

func (r *KeyRegistry) scopeHasAnyKey(scope string, keys []string) bool {
	lookup := r.indexByScope[scope]
	for _, k := range keys {
		if _, exists := lookup[k]; exists {
			return true
		}
	}
	return false
}

func normalizeKeyList(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]bool)
	for _, k := range keys {
		n := normalizeKeyName(k)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func normalizeKeyName(k string) string {
	if k == " " {
		return "space"
	}
	trimmed := strings.TrimSpace(k)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) == 1 {
		return trimmed
	}
	s := strings.ToLower(strings.ReplaceAll(trimmed, " ", ""))
	s = strings.ReplaceAll(s, "control+", "ctrl+")
	s = strings.ReplaceAll(s, "return", "enter")
	return s
}

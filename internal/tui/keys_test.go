package tui

import "testing"

func TestKeyRegistryLookupByScope(t *testing.T) {
	r := NewKeyRegistry()

	search := r.Lookup("/", scopeDashboard)
	if search == nil || search.Action != actionSearch {
		t.Fatalf("expected search binding in dashboard scope, got %+v", search)
	}
	if got := r.Lookup("/", scopeLogin); got != nil {
		t.Fatalf("did not expect / to be bound while typing, got %q", got.Action)
	}
	if got := r.Lookup("q", scopeLogin); got != nil {
		t.Fatalf("q must reach the login form, got %q", got.Action)
	}

	quit := r.Lookup("ctrl+c", scopeCreateCourse)
	if quit == nil || quit.Action != actionQuit {
		t.Fatalf("expected global quit fallback, got %+v", quit)
	}
	if got := r.Lookup(" ", scopeAlert); got == nil || got.Action != actionDismiss {
		t.Fatalf("space should dismiss alerts, got %+v", got)
	}
}

func TestKeyRegistryNoDuplicateInSameScope(t *testing.T) {
	r := &KeyRegistry{
		bindingsByScope: make(map[string][]*Binding),
		indexByScope:    make(map[string]map[string]*Binding),
	}

	r.Register(Binding{Action: actionRefresh, Keys: []string{"r"}, Help: "first", Scopes: []string{"a"}})
	r.Register(Binding{Action: actionLogout, Keys: []string{"r"}, Help: "duplicate", Scopes: []string{"a"}})
	r.Register(Binding{Action: actionLogout, Keys: []string{"r"}, Help: "other scope", Scopes: []string{"b"}})

	if a := r.BindingsForScope("a"); len(a) != 1 || a[0].Action != actionRefresh {
		t.Fatalf("scope a = %+v", a)
	}
	if b := r.BindingsForScope("b"); len(b) != 1 || b[0].Action != actionLogout {
		t.Fatalf("scope b = %+v", b)
	}
}

func TestKeyRegistryHelpBindingsDisable(t *testing.T) {
	r := NewKeyRegistry()
	bindings := r.HelpBindings(scopeDashboard, func(a Action) bool { return a != actionNewCourse })
	var sawNew bool
	for _, b := range bindings {
		if b.Help().Desc == "new course" {
			sawNew = true
			if b.Enabled() {
				t.Fatal("new course should be disabled")
			}
		}
	}
	if !sawNew {
		t.Fatal("expected new course binding")
	}
}

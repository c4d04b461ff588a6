package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type formField struct {
	Key         string
	Label       string
	Placeholder string
	Default     string
	Secret      bool
	Limit       int
}

// form is a vertical stack of text inputs with one focused at a time.
type form struct {
	fields []formField
	inputs []textinput.Model
	focus  int
}

func newForm(fields ...formField) *form {
	f := &form{fields: fields}
	for _, fld := range fields {
		inp := textinput.New()
		inp.Prompt = fld.Label + ": "
		inp.Placeholder = fld.Placeholder
		inp.SetValue(fld.Default)
		if fld.Limit > 0 {
			inp.CharLimit = fld.Limit
		}
		if fld.Secret {
			inp.EchoMode = textinput.EchoPassword
			inp.EchoCharacter = '•'
		}
		inp.Cursor.SetMode(cursor.CursorStatic)
		f.inputs = append(f.inputs, inp)
	}
	if len(f.inputs) > 0 {
		f.inputs[0].Focus()
	}
	return f
}

func (f *form) move(dir int) {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + dir + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focus].Focus()
}

func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *form) value(k string) string {
	for i, fld := range f.fields {
		if fld.Key != k {
			continue
		}
		if fld.Secret {
			return f.inputs[i].Value()
		}
		return strings.TrimSpace(f.inputs[i].Value())
	}
	return ""
}

// reset restores defaults and focuses the first empty field.
func (f *form) reset() {
	f.focus = 0
	for i := range f.inputs {
		f.inputs[i].SetValue(f.fields[i].Default)
		f.inputs[i].Blur()
	}
	for i := len(f.inputs) - 1; i >= 0; i-- {
		if f.inputs[i].Value() == "" {
			f.focus = i
		}
	}
	f.inputs[f.focus].Focus()
}

func (f *form) view() string {
	lines := make([]string, 0, len(f.inputs))
	for _, in := range f.inputs {
		lines = append(lines, in.View())
	}
	return strings.Join(lines, "\n")
}

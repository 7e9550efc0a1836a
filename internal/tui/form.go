package tui

import (
	"expo-admin/internal/app"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type formState struct {
	mode   app.FormMode
	fields []app.Field
	inputs []textinput.Model
	focus  int
}

func (f *formState) values() map[string]string {
	out := make(map[string]string, len(f.fields))
	for i, field := range f.fields {
		out[field.Key] = f.inputs[i].Value()
	}
	return out
}

func (f *formState) setFocus(i int) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	f.focus = (i + len(f.inputs)) % len(f.inputs)
	for j := range f.inputs {
		f.inputs[j].Blur()
	}
	return f.inputs[f.focus].Focus()
}

// openForm mirrors the screen's open form into text inputs.
func (m *Model) openForm() tea.Cmd {
	form, ok := m.screen().Form()
	if !ok {
		return nil
	}
	state := formState{mode: form.Mode, fields: form.Fields}
	for _, field := range form.Fields {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 256
		in.Placeholder = field.Kind.String()
		in.SetValue(form.Values[field.Key])
		state.inputs = append(state.inputs, in)
	}
	m.form = state
	m.mode = modeForm
	return m.form.setFocus(0)
}

func (m *Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	screen := m.screen()
	switch {
	case msg.String() == "esc":
		screen.CancelForm()
		m.form = formState{}
		m.mode = modeBrowse
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		idx, values := m.active, m.form.values()
		return m, func() tea.Msg {
			return doneMsg{screen: idx, op: "submit", err: screen.Submit(m.ctx, values)}
		}
	case key.Matches(msg, m.keys.NextItem):
		return m, m.form.setFocus(m.form.focus + 1)
	case key.Matches(msg, m.keys.PrevItem):
		return m, m.form.setFocus(m.form.focus - 1)
	}
	if len(m.form.inputs) == 0 {
		return m, nil
	}
	var cmd tea.Cmd
	m.form.inputs[m.form.focus], cmd = m.form.inputs[m.form.focus].Update(msg)
	return m, cmd
}

package tui

import (
	"expo-admin/internal/app"
	"expo-admin/internal/notify"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type loginState struct {
	email    textinput.Model
	password textinput.Model
	focus    int
	busy     bool
}

func newLoginState(tr app.Translator) loginState {
	label := func(key, fallback string) string {
		if tr == nil {
			return fallback
		}
		return tr.T(key)
	}
	email := textinput.New()
	email.Placeholder = "admin@example.com"
	email.Prompt = labelStyle.Render(label("auth.email", "Email"))
	email.Focus()

	password := textinput.New()
	password.Prompt = labelStyle.Render(label("auth.password", "Password"))
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	return loginState{email: email, password: password}
}

func (m *Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.login.busy {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "tab", "shift+tab", "up", "down":
		m.login.focus = 1 - m.login.focus
		if m.login.focus == 0 {
			m.login.password.Blur()
			return m, m.login.email.Focus()
		}
		m.login.email.Blur()
		return m, m.login.password.Focus()
	case "enter":
		if m.login.focus == 0 {
			m.login.focus = 1
			m.login.email.Blur()
			return m, m.login.password.Focus()
		}
		m.login.busy = true
		email, password := m.login.email.Value(), m.login.password.Value()
		return m, func() tea.Msg {
			if m.auth == nil {
				return loginMsg{err: errNoAuth}
			}
			ok, err := m.auth.Login(m.ctx, email, password)
			return loginMsg{ok: ok, err: err}
		}
	}

	var cmd tea.Cmd
	if m.login.focus == 0 {
		m.login.email, cmd = m.login.email.Update(msg)
	} else {
		m.login.password, cmd = m.login.password.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleLogin(msg loginMsg) (tea.Model, tea.Cmd) {
	m.login.busy = false
	if msg.err != nil || !msg.ok {
		n := notify.Notification{Title: m.t("auth.login_failed"), Severity: notify.Error}
		if msg.err != nil {
			n.Title = m.t("common.error")
			n.Description = msg.err.Error()
		}
		m.notify(n)
		m.login.password.SetValue("")
		return m, nil
	}
	m.notify(notify.Notification{
		Title:    m.tf("auth.logged_in", m.login.email.Value()),
		Severity: notify.Success,
	})
	m.mode = modeBrowse
	return m, m.mount(m.active)
}

func (m *Model) notify(n notify.Notification) {
	if m.toasts != nil {
		m.toasts.Notify(n)
	}
}

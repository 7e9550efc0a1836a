// Package tui is the interactive admin console: one tab per resource screen
// with search, sort, forms, delete confirmation and toasts.
package tui

import (
	"context"
	"errors"
	"time"

	"expo-admin/internal/app"
	"expo-admin/internal/listmanager"
	"expo-admin/internal/notify"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Authenticator is the part of the credential provider the console needs.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (bool, error)
	IsAuthenticated() bool
}

type Options struct {
	Screens    []*app.Screen
	Auth       Authenticator
	Toasts     *notify.Center
	Translator app.Translator
	// Initial selects the first tab by resource name.
	Initial string
}

type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modeForm
	modeConfirm
	modeLogin
)

// ExpiredMsg tells the console the session was rejected; it returns to the
// login form. Send it with tea.Program.Send from the expiry hook.
type ExpiredMsg struct{}

type loadedMsg struct {
	screen int
	err    error
}

type doneMsg struct {
	screen int
	op     string
	err    error
}

type loginMsg struct {
	ok  bool
	err error
}

type tickMsg time.Time

type Model struct {
	ctx     context.Context
	screens []*app.Screen
	auth    Authenticator
	toasts  *notify.Center
	tr      app.Translator
	keys    keyMap

	active  int
	mounted map[int]bool
	mode    mode
	table   table.Model
	search  textinput.Model
	form    formState
	login   loginState

	width  int
	height int
	// synced is the loading state last copied into the table.
	synced bool
	// deleting is set while a confirmed delete is in flight.
	deleting bool
}

func New(ctx context.Context, opts Options) *Model {
	search := textinput.New()
	search.Prompt = "/ "
	search.CharLimit = 120

	m := &Model{
		ctx:     ctx,
		screens: opts.Screens,
		auth:    opts.Auth,
		toasts:  opts.Toasts,
		tr:      opts.Translator,
		keys:    defaultKeyMap(),
		mounted: make(map[int]bool),
		table:   table.New(table.WithFocused(true), table.WithHeight(15)),
		search:  search,
		login:   newLoginState(opts.Translator),
	}
	for i, s := range opts.Screens {
		if s.Definition().Resource == opts.Initial {
			m.active = i
		}
	}
	if m.auth != nil && !m.auth.IsAuthenticated() {
		m.mode = modeLogin
	}
	m.syncTable()
	return m
}

func (m *Model) Init() tea.Cmd {
	if m.mode == modeLogin {
		return tea.Batch(textinput.Blink, tick())
	}
	return tea.Batch(m.mount(m.active), tick())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetHeight(max(5, msg.Height-12))
		return m, nil

	case tickMsg:
		if s := m.screen(); s != nil && s.Loading() != m.synced {
			m.syncTable()
		}
		return m, tick()

	case ExpiredMsg:
		m.mode = modeLogin
		m.login = newLoginState(m.tr)
		m.mounted = make(map[int]bool)
		return m, textinput.Blink

	case loadedMsg:
		m.mounted[msg.screen] = msg.err == nil || m.mounted[msg.screen]
		m.syncTable()
		return m, nil

	case doneMsg:
		return m.handleDone(msg)

	case loginMsg:
		return m.handleLogin(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.mode {
	case modeLogin:
		return m.updateLogin(msg)
	case modeSearch:
		return m.updateSearch(msg)
	case modeForm:
		return m.updateForm(msg)
	case modeConfirm:
		return m.updateConfirm(msg)
	}
	return m.updateBrowse(msg)
}

func (m *Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	screen := m.screen()
	if screen == nil {
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		m.search.SetValue(screen.Search())
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Sort):
		idx := int(msg.Runes[0] - '1')
		headers := screen.View().Headers
		if idx < len(headers) && screen.RequestSort(headers[idx].Key) {
			m.syncTable()
		}
		return m, nil
	case key.Matches(msg, m.keys.Add):
		if screen.Add() {
			return m, m.openForm()
		}
		return m, nil
	case key.Matches(msg, m.keys.Edit):
		if id, ok := m.selectedID(); ok && screen.Trigger(id, listmanager.ActionEdit) == nil {
			return m, m.openForm()
		}
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		if id, ok := m.selectedID(); ok && screen.Trigger(id, listmanager.ActionDelete) == nil {
			if _, pending := screen.Pending(); pending {
				m.mode = modeConfirm
			}
		}
		return m, nil
	case key.Matches(msg, m.keys.Action):
		return m, m.customAction()
	case key.Matches(msg, m.keys.Refresh):
		return m, m.refresh(m.active)
	case key.Matches(msg, m.keys.NextTab):
		return m, m.switchTab(1)
	case key.Matches(msg, m.keys.PrevTab):
		return m, m.switchTab(-1)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	screen := m.screen()
	switch msg.String() {
	case "enter":
		m.mode = modeBrowse
		m.search.Blur()
		return m, nil
	case "esc":
		m.mode = modeBrowse
		m.search.Blur()
		m.search.SetValue("")
		screen.SetSearch("")
		m.syncTable()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	screen.SetSearch(m.search.Value())
	m.table.SetCursor(0)
	m.syncTable()
	return m, cmd
}

func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	screen := m.screen()
	switch {
	case key.Matches(msg, m.keys.Confirm):
		if m.deleting {
			return m, nil
		}
		m.deleting = true
		idx := m.active
		return m, func() tea.Msg {
			return doneMsg{screen: idx, op: "delete", err: screen.ConfirmDelete(m.ctx)}
		}
	case key.Matches(msg, m.keys.Cancel):
		if m.deleting {
			return m, nil
		}
		screen.CancelDelete()
		m.mode = modeBrowse
	}
	return m, nil
}

func (m *Model) handleDone(msg doneMsg) (tea.Model, tea.Cmd) {
	if msg.op == "delete" {
		m.deleting = false
	}
	m.syncTable()
	if msg.screen != m.active {
		return m, nil
	}
	screen := m.screen()
	switch msg.op {
	case "delete":
		if _, pending := screen.Pending(); !pending {
			m.mode = modeBrowse
		}
	case "submit":
		if _, open := screen.Form(); !open {
			m.mode = modeBrowse
			m.form = formState{}
		}
	}
	return m, nil
}

func (m *Model) customAction() tea.Cmd {
	screen := m.screen()
	id, ok := m.selectedID()
	if !ok {
		return nil
	}
	r, ok := rowByID(screen.View(), id)
	if !ok {
		return nil
	}
	for _, a := range r.Actions {
		if a.ID == listmanager.ActionEdit || a.ID == listmanager.ActionDelete {
			continue
		}
		idx, actionID := m.active, a.ID
		return func() tea.Msg {
			return doneMsg{screen: idx, op: actionID, err: screen.Trigger(id, actionID)}
		}
	}
	return nil
}

func (m *Model) switchTab(delta int) tea.Cmd {
	if len(m.screens) == 0 {
		return nil
	}
	m.active = (m.active + delta + len(m.screens)) % len(m.screens)
	m.table.SetCursor(0)
	m.syncTable()
	if !m.mounted[m.active] {
		return m.mount(m.active)
	}
	return nil
}

func (m *Model) mount(idx int) tea.Cmd {
	if idx >= len(m.screens) {
		return nil
	}
	screen := m.screens[idx]
	m.beginLoading(screen)
	return func() tea.Msg {
		return loadedMsg{screen: idx, err: screen.Mount(m.ctx)}
	}
}

func (m *Model) refresh(idx int) tea.Cmd {
	screen := m.screens[idx]
	m.beginLoading(screen)
	return func() tea.Msg {
		return loadedMsg{screen: idx, err: screen.Refresh(m.ctx)}
	}
}

func (m *Model) beginLoading(screen *app.Screen) {
	screen.BeginLoading()
	if screen == m.screen() {
		m.syncTable()
	}
}

func (m *Model) screen() *app.Screen {
	if m.active >= len(m.screens) {
		return nil
	}
	return m.screens[m.active]
}

// selectedID returns the id of the highlighted data row.
func (m *Model) selectedID() (string, bool) {
	screen := m.screen()
	if screen == nil {
		return "", false
	}
	v := screen.View()
	i := m.table.Cursor()
	if v.Loading || i < 0 || i >= len(v.Rows) {
		return "", false
	}
	return v.Rows[i].Record.ID(), true
}

func rowByID(v listmanager.View, id string) (listmanager.Row, bool) {
	for _, r := range v.Rows {
		if !r.Placeholder && r.Record.ID() == id {
			return r, true
		}
	}
	return listmanager.Row{}, false
}

func (m *Model) t(key string) string {
	if m.tr == nil {
		return key
	}
	return m.tr.T(key)
}

func (m *Model) tf(key string, args ...any) string {
	if m.tr == nil {
		return key
	}
	return m.tr.Tf(key, args...)
}

func tick() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

var errNoAuth = errors.New("no authenticator configured")

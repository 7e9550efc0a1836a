package tui

import (
	"context"
	"testing"
	"time"

	"expo-admin/internal/app"
	"expo-admin/internal/auth"
	"expo-admin/internal/domain"
	"expo-admin/internal/i18n"
	"expo-admin/internal/infra/memory"
	"expo-admin/internal/listmanager"
	"expo-admin/internal/notify"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	model    *Model
	store    *memory.ResourceStore
	provider *auth.Provider
	center   *notify.Center
}

func newFixture(t *testing.T, loggedIn bool) fixture {
	t.Helper()
	store := memory.NewResourceStore(memory.Seed{
		Records: map[string][]listmanager.Record{
			domain.ResourceExpos: {
				{"id": "1", "name": "Tech Expo", "location": "Berlin"},
				{"id": "2", "name": "Art Fair", "location": "Vienna"},
				{"id": "3", "name": "Boat Show", "location": "Hamburg"},
			},
			domain.ResourceUsers: {
				{"id": "1", "email": "ops@example.com", "role": "admin", "active": true},
			},
		},
		Accounts: map[string]string{"admin@example.com": "secret"},
	})
	tr, err := i18n.New("en")
	require.NoError(t, err)
	center := notify.NewCenter(time.Minute, nil)

	var screens []*app.Screen
	for _, def := range app.Catalog(tr) {
		if def.Resource != domain.ResourceExpos && def.Resource != domain.ResourceUsers {
			continue
		}
		s, err := app.NewScreen(def, app.ScreenDeps{Backend: store, Notifier: center, Translator: tr})
		require.NoError(t, err)
		screens = append(screens, s)
	}

	provider := auth.NewProvider(auth.Options{Store: memory.NewTokenStore(), Authenticator: store})
	if loggedIn {
		ok, err := provider.Login(context.Background(), "admin@example.com", "secret")
		require.NoError(t, err)
		require.True(t, ok)
	}

	m := New(context.Background(), Options{Screens: screens, Auth: provider, Toasts: center, Translator: tr})
	return fixture{model: m, store: store, provider: provider, center: center}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send delivers msg and runs the returned command inline, feeding its message
// back once. Blink and tick commands are not run.
func (f fixture) send(t *testing.T, msg tea.Msg) {
	t.Helper()
	_, cmd := f.model.Update(msg)
	if cmd == nil {
		return
	}
	switch follow := runCmd(cmd).(type) {
	case loadedMsg, doneMsg, loginMsg:
		_, next := f.model.Update(follow)
		if next != nil {
			if again, ok := runCmd(next).(loadedMsg); ok {
				f.model.Update(again)
			}
		}
	}
}

func runCmd(cmd tea.Cmd) tea.Msg {
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	select {
	case msg := <-done:
		return msg
	case <-time.After(50 * time.Millisecond):
		// blink and tick commands wait on timers
		return nil
	}
}

func (f fixture) mount(t *testing.T) {
	t.Helper()
	f.model.Update(runCmd(f.model.mount(f.model.active)))
}

func TestStartsInLoginWhenUnauthenticated(t *testing.T) {
	f := newFixture(t, false)
	assert.Equal(t, modeLogin, f.model.mode)
	assert.Contains(t, f.model.View(), "Sign in")

	for _, r := range "admin@example.com" {
		f.model.Update(keyRunes(string(r)))
	}
	f.model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	for _, r := range "secret" {
		f.model.Update(keyRunes(string(r)))
	}
	f.send(t, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, modeBrowse, f.model.mode)
	assert.True(t, f.provider.IsAuthenticated())
	assert.Len(t, f.model.table.Rows(), 3)
}

func TestFailedLoginStaysOnForm(t *testing.T) {
	f := newFixture(t, false)
	f.model.login.email.SetValue("admin@example.com")
	f.model.login.password.SetValue("wrong")
	f.model.login.focus = 1
	f.send(t, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, modeLogin, f.model.mode)
	assert.Empty(t, f.model.login.password.Value())
	active := f.center.Active()
	require.NotEmpty(t, active)
	assert.Equal(t, "Invalid email or password", active[len(active)-1].Title)
}

func TestSearchAndSort(t *testing.T) {
	f := newFixture(t, true)
	f.mount(t)
	require.Len(t, f.model.table.Rows(), 3)

	f.model.Update(keyRunes("/"))
	assert.Equal(t, modeSearch, f.model.mode)
	for _, r := range "VIE" {
		f.model.Update(keyRunes(string(r)))
	}
	rows := f.model.table.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "Art Fair", rows[0][1])

	f.model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, modeBrowse, f.model.mode)
	assert.Len(t, f.model.table.Rows(), 3)

	// Column 2 is the name.
	f.model.Update(keyRunes("2"))
	assert.Equal(t, "Art Fair", f.model.table.Rows()[0][1])
	assert.Contains(t, f.model.table.Columns()[1].Title, "▲")
	f.model.Update(keyRunes("2"))
	assert.Equal(t, "Tech Expo", f.model.table.Rows()[0][1])
	assert.Contains(t, f.model.table.Columns()[1].Title, "▼")
}

func TestNoResultsMessage(t *testing.T) {
	f := newFixture(t, true)
	f.mount(t)
	f.model.Update(keyRunes("/"))
	for _, r := range "zzz" {
		f.model.Update(keyRunes(string(r)))
	}
	assert.Contains(t, f.model.View(), "No results for this search")
}

func TestDeleteConfirmation(t *testing.T) {
	f := newFixture(t, true)
	f.mount(t)

	f.model.Update(keyRunes("d"))
	require.Equal(t, modeConfirm, f.model.mode)
	assert.Contains(t, f.model.View(), "Delete Tech Expo?")

	f.model.Update(keyRunes("n"))
	assert.Equal(t, modeBrowse, f.model.mode)
	records, _ := f.store.List(context.Background(), domain.ResourceExpos)
	assert.Len(t, records, 3)

	f.model.Update(keyRunes("d"))
	f.send(t, keyRunes("y"))
	assert.Equal(t, modeBrowse, f.model.mode)
	records, _ = f.store.List(context.Background(), domain.ResourceExpos)
	assert.Len(t, records, 2)
	assert.Len(t, f.model.table.Rows(), 2)
}

func TestAddForm(t *testing.T) {
	f := newFixture(t, true)
	f.mount(t)

	f.model.Update(keyRunes("a"))
	require.Equal(t, modeForm, f.model.mode)
	require.Len(t, f.model.form.inputs, 4)

	f.model.form.inputs[0].SetValue("Food Expo")
	f.send(t, tea.KeyMsg{Type: tea.KeyEnter})
	// Start date is required; the form stays open.
	assert.Equal(t, modeForm, f.model.mode)

	f.model.form.inputs[2].SetValue("2026-10-01")
	f.send(t, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, modeBrowse, f.model.mode)
	assert.Len(t, f.model.table.Rows(), 4)
}

func TestEditFormPrefills(t *testing.T) {
	f := newFixture(t, true)
	f.mount(t)
	f.model.Update(keyRunes("e"))
	require.Equal(t, modeForm, f.model.mode)
	assert.Equal(t, "Tech Expo", f.model.form.inputs[0].Value())

	f.model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, modeBrowse, f.model.mode)
	_, open := f.model.screen().Form()
	assert.False(t, open)
}

func TestCustomActionOnUsersTab(t *testing.T) {
	f := newFixture(t, true)
	f.mount(t)

	f.send(t, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, domain.ResourceUsers, f.model.screen().Definition().Resource)
	require.Len(t, f.model.table.Rows(), 1)

	f.send(t, keyRunes("x"))
	assert.Equal(t, []string{"users/1/resend-invite"}, f.store.Actions())
	assert.Contains(t, f.model.View(), "Invitation sent")
}

func TestExpiredReturnsToLogin(t *testing.T) {
	f := newFixture(t, true)
	f.mount(t)
	f.model.Update(ExpiredMsg{})
	assert.Equal(t, modeLogin, f.model.mode)
}

// gatedStore holds List and Delete until the test releases them.
type gatedStore struct {
	*memory.ResourceStore
	listGate   chan struct{}
	deleteGate chan struct{}
	deletes    chan string
}

func (g *gatedStore) List(ctx context.Context, resource string) ([]listmanager.Record, error) {
	if g.listGate != nil {
		<-g.listGate
	}
	return g.ResourceStore.List(ctx, resource)
}

func (g *gatedStore) Delete(ctx context.Context, resource, id string) error {
	if g.deletes != nil {
		g.deletes <- id
	}
	if g.deleteGate != nil {
		<-g.deleteGate
	}
	return g.ResourceStore.Delete(ctx, resource, id)
}

func newGatedModel(t *testing.T, backend *gatedStore) *Model {
	t.Helper()
	tr, err := i18n.New("en")
	require.NoError(t, err)
	def, err := app.Find(app.Catalog(tr), domain.ResourceExpos)
	require.NoError(t, err)
	s, err := app.NewScreen(def, app.ScreenDeps{Backend: backend, Translator: tr, SkeletonRows: 3})
	require.NoError(t, err)
	return New(context.Background(), Options{Screens: []*app.Screen{s}, Translator: tr, Toasts: notify.NewCenter(time.Minute, nil)})
}

func expoSeed() memory.Seed {
	return memory.Seed{Records: map[string][]listmanager.Record{
		domain.ResourceExpos: {{"id": "1", "name": "Tech Expo"}, {"id": "2", "name": "Art Fair"}},
	}}
}

func TestMountShowsSkeletonUntilLoaded(t *testing.T) {
	backend := &gatedStore{ResourceStore: memory.NewResourceStore(expoSeed()), listGate: make(chan struct{})}
	m := newGatedModel(t, backend)

	cmd := m.mount(0)
	assert.Contains(t, m.View(), listmanager.SkeletonCell)
	assert.Len(t, m.table.Rows(), 3)

	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	close(backend.listGate)
	m.Update(<-done)

	assert.NotContains(t, m.View(), listmanager.SkeletonCell)
	assert.Len(t, m.table.Rows(), 2)
}

func TestTickPicksUpBackgroundRefresh(t *testing.T) {
	backend := &gatedStore{ResourceStore: memory.NewResourceStore(expoSeed())}
	m := newGatedModel(t, backend)
	m.Update(runCmd(m.mount(0)))
	require.Len(t, m.table.Rows(), 2)

	// A refresh started outside the model, e.g. after a mutation.
	backend.listGate = make(chan struct{})
	refreshed := make(chan error, 1)
	go func() { refreshed <- m.screen().Refresh(context.Background()) }()
	require.Eventually(t, m.screen().Loading, time.Second, 5*time.Millisecond)

	m.Update(tickMsg(time.Now()))
	assert.Contains(t, m.View(), listmanager.SkeletonCell)

	close(backend.listGate)
	require.NoError(t, <-refreshed)
	m.Update(tickMsg(time.Now()))
	assert.NotContains(t, m.View(), listmanager.SkeletonCell)
	assert.Len(t, m.table.Rows(), 2)
}

func TestRepeatedConfirmDeletesOnce(t *testing.T) {
	backend := &gatedStore{
		ResourceStore: memory.NewResourceStore(expoSeed()),
		deleteGate:    make(chan struct{}),
		deletes:       make(chan string, 2),
	}
	m := newGatedModel(t, backend)
	m.Update(runCmd(m.mount(0)))

	m.Update(keyRunes("d"))
	require.Equal(t, modeConfirm, m.mode)
	_, first := m.Update(keyRunes("y"))
	require.NotNil(t, first)
	_, second := m.Update(keyRunes("y"))
	assert.Nil(t, second)
	_, cancel := m.Update(keyRunes("n"))
	assert.Nil(t, cancel)
	assert.Equal(t, modeConfirm, m.mode)

	done := make(chan tea.Msg, 1)
	go func() { done <- first() }()
	assert.Equal(t, "1", <-backend.deletes)
	close(backend.deleteGate)
	m.Update(<-done)

	assert.Equal(t, modeBrowse, m.mode)
	assert.Len(t, backend.deletes, 0)
	records, _ := backend.ResourceStore.List(context.Background(), domain.ResourceExpos)
	assert.Len(t, records, 1)
}

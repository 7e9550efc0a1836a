// Package app wires list screens and the dashboard to the persistence API.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"expo-admin/internal/domain"
	"expo-admin/internal/listmanager"
	"expo-admin/internal/logger"
	"expo-admin/internal/notify"
	"github.com/sirupsen/logrus"
)

// Backend is the part of the persistence API a screen mutates through.
type Backend interface {
	List(ctx context.Context, resource string) ([]listmanager.Record, error)
	Create(ctx context.Context, resource string, fields listmanager.Record) (listmanager.Record, error)
	Update(ctx context.Context, resource, id string, fields listmanager.Record) (listmanager.Record, error)
	Delete(ctx context.Context, resource, id string) error
	Perform(ctx context.Context, resource, id, action string) error
}

// RecordLister serves lookup lists, usually from a cache.
type RecordLister interface {
	List(ctx context.Context, resource string) ([]listmanager.Record, error)
	Invalidate(ctx context.Context, resource string) error
}

type FormMode int

const (
	FormCreate FormMode = iota
	FormEdit
)

// Form is an open create or edit dialog.
type Form struct {
	Mode     FormMode
	RecordID string
	Fields   []Field
	// Values holds the raw text of each input, keyed by field.
	Values map[string]string
}

func (f Form) clone() *Form {
	f.Values = copyValues(f.Values)
	return &f
}

type ScreenDeps struct {
	Backend Backend
	// Lookups is optional; without it lookup lists come from Backend.
	Lookups      RecordLister
	Notifier     notify.Notifier
	Translator   Translator
	Log          *logrus.Entry
	SkeletonRows int
}

// Screen hosts one list manager. It owns the records, the loading flag and
// the form and delete-confirmation state. All methods are safe for concurrent
// use; calls to the API happen without holding the lock.
type Screen struct {
	def      Definition
	backend  Backend
	lookups  RecordLister
	notifier notify.Notifier
	tr       Translator
	log      *logrus.Entry

	mu      sync.Mutex
	manager *listmanager.Manager
	form    *Form
	pending listmanager.Record
	ctx     context.Context

	labelMu sync.RWMutex
	labels  map[string]map[string]string
}

func NewScreen(def Definition, deps ScreenDeps) (*Screen, error) {
	if deps.Backend == nil {
		return nil, errors.New("screen: backend is required")
	}
	s := &Screen{
		def:      def,
		backend:  deps.Backend,
		lookups:  deps.Lookups,
		notifier: deps.Notifier,
		tr:       deps.Translator,
		log:      deps.Log,
		ctx:      context.Background(),
		labels:   make(map[string]map[string]string),
	}
	if s.notifier == nil {
		s.notifier = notify.Func(func(notify.Notification) {})
	}
	if s.log == nil {
		s.log = logger.For("screen")
	}
	s.log = s.log.WithField("resource", def.Resource)

	cfg := listmanager.Config{
		Columns:           s.columns(),
		SearchPlaceholder: s.t("table.search"),
		AddButtonText:     def.AddLabel,
		Translate:         s.t,
		SkeletonRows:      deps.SkeletonRows,
	}
	if def.CanCreate {
		cfg.OnAdd = s.openCreate
	}
	if def.CanEdit {
		cfg.OnEdit = s.openEdit
	}
	if def.CanDelete {
		cfg.OnDelete = s.requestDelete
	}
	if len(def.Actions) > 0 {
		cfg.CustomActions = s.customActions
	}
	m, err := listmanager.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("screen %s: %w", def.Resource, err)
	}
	s.manager = m
	return s, nil
}

func (s *Screen) Definition() Definition { return s.def }

// Mount loads lookup labels and the first page of records. ctx also bounds
// custom row actions started later.
func (s *Screen) Mount(ctx context.Context) error {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
	s.loadLookups(ctx)
	return s.Refresh(ctx)
}

// Refresh refetches the records. On failure the previous records stay
// visible and an error toast is shown.
func (s *Screen) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.manager.SetLoading(true)
	s.mu.Unlock()

	records, err := s.backend.List(ctx, s.def.Resource)

	s.mu.Lock()
	if err == nil {
		s.manager.SetRecords(records)
	}
	s.manager.SetLoading(false)
	s.mu.Unlock()

	if err != nil {
		s.fail("refresh", err)
		return err
	}
	s.log.WithField("count", len(records)).Debug("records loaded")
	return nil
}

// BeginLoading shows the loading skeleton ahead of a Mount or Refresh that
// runs on another goroutine.
func (s *Screen) BeginLoading() {
	s.mu.Lock()
	s.manager.SetLoading(true)
	s.mu.Unlock()
}

func (s *Screen) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager.Loading()
}

func (s *Screen) View() listmanager.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager.View()
}

func (s *Screen) SetSearch(term string) {
	s.mu.Lock()
	s.manager.SetSearch(term)
	s.mu.Unlock()
}

func (s *Screen) Search() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager.Search()
}

func (s *Screen) RequestSort(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager.RequestSort(key)
}

func (s *Screen) Sort() listmanager.SortState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager.Sort()
}

// Add emits the add intent; it opens the create form when the screen allows
// creation.
func (s *Screen) Add() bool {
	// The manager hooks take s.mu themselves.
	return s.manager.Add()
}

// Trigger runs the row control actionID on the record rowID.
func (s *Screen) Trigger(rowID, actionID string) error {
	s.mu.Lock()
	r, ok := s.manager.Find(rowID)
	var actions []listmanager.Action
	if ok {
		actions = s.manager.RowActions(r)
	}
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%s %s: %w", s.def.Resource, rowID, domain.ErrNotFound)
	}
	for _, a := range actions {
		if a.ID == actionID {
			a.Invoke()
			return nil
		}
	}
	return fmt.Errorf("action %q on %s: %w", actionID, s.def.Resource, domain.ErrNotFound)
}

// Form returns a copy of the open form.
func (s *Screen) Form() (*Form, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form == nil {
		return nil, false
	}
	return s.form.clone(), true
}

func (s *Screen) CancelForm() {
	s.mu.Lock()
	s.form = nil
	s.mu.Unlock()
}

// Submit validates input against the open form and creates or updates the
// record. On failure the form stays open with the submitted input.
func (s *Screen) Submit(ctx context.Context, input map[string]string) error {
	s.mu.Lock()
	form := s.form
	if form != nil {
		form.Values = copyValues(input)
	}
	s.mu.Unlock()
	if form == nil {
		return domain.ErrNothingPending
	}

	fields, err := coerce(form.Fields, input, form.Mode == FormEdit)
	if err != nil {
		s.notifier.Notify(notify.Notification{
			Title:       s.t("common.invalid_input"),
			Description: err.Error(),
			Severity:    notify.Warning,
		})
		return err
	}

	if form.Mode == FormCreate {
		_, err = s.backend.Create(ctx, s.def.Resource, fields)
	} else {
		_, err = s.backend.Update(ctx, s.def.Resource, form.RecordID, fields)
	}
	if err != nil {
		s.fail("save", err)
		return err
	}

	s.mu.Lock()
	if s.form == form {
		s.form = nil
	}
	s.mu.Unlock()
	s.notifier.Notify(notify.Notification{Title: s.t("common.saved"), Severity: notify.Success})
	s.afterMutation(ctx)
	return nil
}

// Pending returns the record awaiting delete confirmation.
func (s *Screen) Pending() (listmanager.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending, s.pending != nil
}

// ConfirmPrompt is the question shown for the pending delete.
func (s *Screen) ConfirmPrompt() string {
	s.mu.Lock()
	r := s.pending
	s.mu.Unlock()
	if r == nil {
		return ""
	}
	if s.tr == nil {
		return s.def.Display(r)
	}
	return s.tr.Tf("common.confirm_delete", s.def.Display(r))
}

// ConfirmDelete deletes the pending record. On failure the confirmation
// stays open.
func (s *Screen) ConfirmDelete(ctx context.Context) error {
	s.mu.Lock()
	r := s.pending
	s.mu.Unlock()
	if r == nil {
		return domain.ErrNothingPending
	}

	if err := s.backend.Delete(ctx, s.def.Resource, r.ID()); err != nil {
		s.fail("delete", err)
		return err
	}

	s.mu.Lock()
	if s.pending != nil && s.pending.ID() == r.ID() {
		s.pending = nil
	}
	s.mu.Unlock()
	s.notifier.Notify(notify.Notification{Title: s.t("common.deleted"), Severity: notify.Success})
	s.afterMutation(ctx)
	return nil
}

func (s *Screen) CancelDelete() {
	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()
}

func (s *Screen) openCreate() {
	values := make(map[string]string, len(s.def.Fields))
	for _, f := range s.def.Fields {
		values[f.Key] = ""
	}
	s.mu.Lock()
	s.form = &Form{Mode: FormCreate, Fields: s.def.Fields, Values: values}
	s.mu.Unlock()
}

func (s *Screen) openEdit(r listmanager.Record) {
	values := make(map[string]string, len(s.def.Fields))
	for _, f := range s.def.Fields {
		values[f.Key] = inputText(f, r[f.Key])
	}
	s.mu.Lock()
	s.form = &Form{Mode: FormEdit, RecordID: r.ID(), Fields: s.def.Fields, Values: values}
	s.mu.Unlock()
}

func (s *Screen) requestDelete(r listmanager.Record) {
	s.mu.Lock()
	s.pending = r
	s.mu.Unlock()
}

// customActions runs inside Manager.RowActions, which callers invoke with
// s.mu held. It must not lock.
func (s *Screen) customActions(r listmanager.Record) []listmanager.Action {
	actions := make([]listmanager.Action, 0, len(s.def.Actions))
	for _, a := range s.def.Actions {
		a := a
		actions = append(actions, listmanager.Action{
			ID:     a.ID,
			Label:  a.Label,
			Invoke: func() { s.perform(r, a) },
		})
	}
	return actions
}

func (s *Screen) perform(r listmanager.Record, a RowAction) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	if err := s.backend.Perform(ctx, s.def.Resource, r.ID(), a.ID); err != nil {
		s.fail(a.ID, err)
		return
	}
	s.log.WithFields(logrus.Fields{"id": r.ID(), "action": a.ID}).Info("row action performed")
	s.notifier.Notify(notify.Notification{Title: a.Done, Description: s.def.Display(r), Severity: notify.Success})
}

func (s *Screen) afterMutation(ctx context.Context) {
	if s.lookups != nil {
		if err := s.lookups.Invalidate(ctx, s.def.Resource); err != nil {
			s.log.WithError(err).Warn("failed to invalidate lookup cache")
		}
	}
	_ = s.Refresh(ctx)
}

// fail reports err as a toast. A rejected session gets its own warning; the
// credential provider handles the return to login.
func (s *Screen) fail(op string, err error) {
	s.log.WithError(err).WithField("op", op).Warn("operation failed")
	if errors.Is(err, domain.ErrUnauthorized) {
		s.notifier.Notify(notify.Notification{Title: s.t("common.session_expired"), Severity: notify.Warning})
		return
	}
	s.notifier.Notify(notify.Notification{
		Title:       s.t("common.error"),
		Description: err.Error(),
		Severity:    notify.Error,
	})
}

func (s *Screen) t(key string) string {
	if s.tr == nil {
		return key
	}
	return s.tr.T(key)
}

func copyValues(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

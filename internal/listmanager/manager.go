package listmanager

import (
	"errors"
	"fmt"
)

var (
	// ErrNoColumns is returned when a manager is configured without columns.
	ErrNoColumns = errors.New("listmanager: at least one column is required")
	// ErrDuplicateColumn is returned when two columns share a key.
	ErrDuplicateColumn = errors.New("listmanager: duplicate column key")
)

// Message keys looked up through Config.Translate.
const (
	MsgNoData    = "table.no_data"
	MsgNoResults = "table.no_results"
	MsgEdit      = "table.edit"
	MsgDelete    = "table.delete"
)

var defaultMessages = map[string]string{
	MsgNoData:    "No data available",
	MsgNoResults: "No results for this search",
	MsgEdit:      "Edit",
	MsgDelete:    "Delete",
}

// Action IDs of the built-in row controls.
const (
	ActionEdit   = "edit"
	ActionDelete = "delete"
)

const defaultSkeletonRows = 5

// Column describes how one record field is labeled, sorted and rendered.
type Column struct {
	Key      string
	Label    string
	Sortable bool
	// Render maps the raw value and its record to display text. Nil uses
	// FormatValue.
	Render func(v Value, r Record) string
}

// Cell renders the column for r. Missing fields render from nil.
func (c Column) Cell(r Record) string {
	v, _ := r.Get(c.Key)
	if c.Render != nil {
		return c.Render(v, r)
	}
	return FormatValue(v)
}

// Action is a per-row control.
type Action struct {
	ID     string
	Label  string
	Invoke func()
}

// Config is supplied by the host screen. Hooks are optional; an absent hook
// removes the matching control.
type Config struct {
	Columns           []Column
	OnAdd             func()
	OnEdit            func(Record)
	OnDelete          func(Record)
	CustomActions     func(Record) []Action
	SearchPlaceholder string
	AddButtonText     string
	Translate         func(key string) string
	SkeletonRows      int
}

// Manager derives the visible table from host-owned records. It is owned by a
// single host and is not safe for concurrent use.
type Manager struct {
	cfg     Config
	records []Record
	loading bool
	search  string
	sort    SortState
}

// New validates cfg and returns a manager with no records, no search and no
// sort.
func New(cfg Config) (*Manager, error) {
	if len(cfg.Columns) == 0 {
		return nil, ErrNoColumns
	}
	seen := make(map[string]struct{}, len(cfg.Columns))
	for _, c := range cfg.Columns {
		if _, ok := seen[c.Key]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Key)
		}
		seen[c.Key] = struct{}{}
	}
	cfg.Columns = append([]Column(nil), cfg.Columns...)
	if cfg.SkeletonRows <= 0 {
		cfg.SkeletonRows = defaultSkeletonRows
	}
	return &Manager{cfg: cfg}, nil
}

// Columns returns the configured columns in display order.
func (m *Manager) Columns() []Column {
	return append([]Column(nil), m.cfg.Columns...)
}

// SetRecords replaces the source collection. The slice is read, never
// reordered or pruned.
func (m *Manager) SetRecords(records []Record) {
	m.records = records
}

// Records returns the source collection as last supplied.
func (m *Manager) Records() []Record {
	return m.records
}

func (m *Manager) SetLoading(loading bool) {
	m.loading = loading
}

func (m *Manager) Loading() bool {
	return m.loading
}

func (m *Manager) SetSearch(term string) {
	m.search = term
}

func (m *Manager) Search() string {
	return m.search
}

func (m *Manager) Sort() SortState {
	return m.sort
}

// RequestSort handles a click on the header of key. Unknown and non-sortable
// columns are ignored.
func (m *Manager) RequestSort(key string) bool {
	col, ok := m.column(key)
	if !ok || !col.Sortable {
		return false
	}
	m.sort = m.sort.Next(key)
	return true
}

// Visible returns sort(filter(records)).
func (m *Manager) Visible() []Record {
	return Project(m.records, m.search, m.sort)
}

func (m *Manager) CanAdd() bool    { return m.cfg.OnAdd != nil }
func (m *Manager) CanEdit() bool   { return m.cfg.OnEdit != nil }
func (m *Manager) CanDelete() bool { return m.cfg.OnDelete != nil }

// Add emits the add intent.
func (m *Manager) Add() bool {
	if m.cfg.OnAdd == nil {
		return false
	}
	m.cfg.OnAdd()
	return true
}

// Edit emits the edit intent for r.
func (m *Manager) Edit(r Record) bool {
	if m.cfg.OnEdit == nil {
		return false
	}
	m.cfg.OnEdit(r)
	return true
}

// Delete emits the delete intent for r. Confirmation is the host's job.
func (m *Manager) Delete(r Record) bool {
	if m.cfg.OnDelete == nil {
		return false
	}
	m.cfg.OnDelete(r)
	return true
}

// RowActions lists the controls for r: edit and delete when their hooks are
// present, then any custom actions.
func (m *Manager) RowActions(r Record) []Action {
	var actions []Action
	if m.cfg.OnEdit != nil {
		actions = append(actions, Action{ID: ActionEdit, Label: m.text(MsgEdit), Invoke: func() { m.cfg.OnEdit(r) }})
	}
	if m.cfg.OnDelete != nil {
		actions = append(actions, Action{ID: ActionDelete, Label: m.text(MsgDelete), Invoke: func() { m.cfg.OnDelete(r) }})
	}
	if m.cfg.CustomActions != nil {
		actions = append(actions, m.cfg.CustomActions(r)...)
	}
	return actions
}

// Find looks up a record in the source collection by id.
func (m *Manager) Find(id string) (Record, bool) {
	for _, r := range m.records {
		if r.ID() == id {
			return r, true
		}
	}
	return nil, false
}

func (m *Manager) column(key string) (Column, bool) {
	for _, c := range m.cfg.Columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}

func (m *Manager) text(key string) string {
	if m.cfg.Translate != nil {
		if s := m.cfg.Translate(key); s != "" && s != key {
			return s
		}
	}
	return defaultMessages[key]
}

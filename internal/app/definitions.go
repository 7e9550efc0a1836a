package app

import (
	"time"

	"expo-admin/internal/domain"
	"expo-admin/internal/listmanager"
)

// Translator resolves display strings.
type Translator interface {
	T(key string) string
	Tf(key string, args ...any) string
}

type FieldKind int

const (
	Text FieldKind = iota
	Number
	Bool
	Date
)

func (k FieldKind) String() string {
	switch k {
	case Number:
		return "number"
	case Bool:
		return "bool"
	case Date:
		return "date"
	default:
		return "text"
	}
}

// Field is one input of the create/edit form.
type Field struct {
	Key      string
	Label    string
	Kind     FieldKind
	Required bool
}

// Lookup renders a foreign-key column with a label taken from another
// resource, e.g. the expo name on a console row.
type Lookup struct {
	Column   string
	Resource string
	LabelKey string
}

// RowAction is a resource specific row control backed by the API's
// POST /{resource}/{id}/{action}.
type RowAction struct {
	ID    string
	Label string
	// Done is the success toast title.
	Done string
}

// Definition describes one admin screen.
type Definition struct {
	Resource string
	Title    string
	AddLabel string
	// DisplayKey names the field shown in confirmations.
	DisplayKey string
	Columns    []listmanager.Column
	Fields     []Field
	Lookups    []Lookup
	Actions    []RowAction

	CanCreate bool
	CanEdit   bool
	CanDelete bool
}

// Display returns the human label of r.
func (d Definition) Display(r listmanager.Record) string {
	if d.DisplayKey != "" {
		if s := r.Text(d.DisplayKey); s != "" {
			return s
		}
	}
	return r.ID()
}

// Catalog returns the screen definitions in navigation order.
func Catalog(tr Translator) []Definition {
	col := func(key, label string) listmanager.Column {
		return listmanager.Column{Key: key, Label: tr.T(label), Sortable: true}
	}
	boolCol := func(key, label string) listmanager.Column {
		c := col(key, label)
		c.Render = func(v listmanager.Value, _ listmanager.Record) string {
			b, ok := v.(bool)
			if !ok {
				return listmanager.FormatValue(v)
			}
			if b {
				return tr.T("common.yes")
			}
			return tr.T("common.no")
		}
		return c
	}
	dateCol := func(key, label string) listmanager.Column {
		c := col(key, label)
		c.Render = func(v listmanager.Value, _ listmanager.Record) string { return formatDate(v) }
		return c
	}
	field := func(key, label string, kind FieldKind, required bool) Field {
		return Field{Key: key, Label: tr.T(label), Kind: kind, Required: required}
	}
	editable := func(d Definition) Definition {
		d.CanCreate, d.CanEdit, d.CanDelete = true, true, true
		d.Title = tr.T(d.Resource + ".title")
		d.AddLabel = tr.T(d.Resource + ".add")
		return d
	}

	return []Definition{
		editable(Definition{
			Resource:   domain.ResourceConsoles,
			DisplayKey: "name",
			Columns: []listmanager.Column{
				col("id", "field.id"),
				col("name", "field.name"),
				col("location", "field.location"),
				col("expoId", "field.expo"),
				boolCol("active", "field.active"),
				dateCol("lastSeen", "field.last_seen"),
			},
			Fields: []Field{
				field("name", "field.name", Text, true),
				field("location", "field.location", Text, false),
				field("expoId", "field.expo", Text, false),
				field("active", "field.active", Bool, false),
			},
			Lookups: []Lookup{{Column: "expoId", Resource: domain.ResourceExpos, LabelKey: "name"}},
		}),
		editable(Definition{
			Resource:   domain.ResourceExpos,
			DisplayKey: "name",
			Columns: []listmanager.Column{
				col("id", "field.id"),
				col("name", "field.name"),
				col("location", "field.location"),
				dateCol("startDate", "field.start_date"),
				dateCol("endDate", "field.end_date"),
			},
			Fields: []Field{
				field("name", "field.name", Text, true),
				field("location", "field.location", Text, false),
				field("startDate", "field.start_date", Date, true),
				field("endDate", "field.end_date", Date, false),
			},
		}),
		editable(Definition{
			Resource:   domain.ResourceQuizzes,
			DisplayKey: "title",
			Columns: []listmanager.Column{
				col("id", "field.id"),
				col("title", "field.title"),
				col("expoId", "field.expo"),
				boolCol("active", "field.active"),
			},
			Fields: []Field{
				field("title", "field.title", Text, true),
				field("expoId", "field.expo", Text, false),
				field("active", "field.active", Bool, false),
			},
			Lookups: []Lookup{{Column: "expoId", Resource: domain.ResourceExpos, LabelKey: "name"}},
		}),
		editable(Definition{
			Resource:   domain.ResourceQuestions,
			DisplayKey: "text",
			Columns: []listmanager.Column{
				col("id", "field.id"),
				col("quizId", "field.quiz"),
				col("position", "field.position"),
				col("text", "field.text"),
				col("points", "field.points"),
			},
			Fields: []Field{
				field("quizId", "field.quiz", Text, true),
				field("position", "field.position", Number, false),
				field("text", "field.text", Text, true),
				field("answer", "field.answer", Text, true),
				field("points", "field.points", Number, false),
			},
			Lookups: []Lookup{{Column: "quizId", Resource: domain.ResourceQuizzes, LabelKey: "title"}},
		}),
		editable(Definition{
			Resource:   domain.ResourcePlayers,
			DisplayKey: "name",
			Columns: []listmanager.Column{
				col("id", "field.id"),
				col("name", "field.name"),
				col("email", "field.email"),
				dateCol("createdAt", "field.created_at"),
			},
			Fields: []Field{
				field("name", "field.name", Text, true),
				field("email", "field.email", Text, false),
			},
		}),
		editable(Definition{
			Resource:   domain.ResourceUsers,
			DisplayKey: "email",
			Columns: []listmanager.Column{
				col("id", "field.id"),
				col("email", "field.email"),
				col("role", "field.role"),
				boolCol("active", "field.active"),
			},
			Fields: []Field{
				field("email", "field.email", Text, true),
				field("role", "field.role", Text, true),
				field("active", "field.active", Bool, false),
			},
			Actions: []RowAction{{ID: "resend-invite", Label: tr.T("users.resend_invite"), Done: tr.T("users.invite_sent")}},
		}),
		{
			Resource: domain.ResourceResults,
			Title:    tr.T("results.title"),
			Columns: []listmanager.Column{
				col("id", "field.id"),
				col("quizId", "field.quiz"),
				col("playerId", "field.player"),
				col("score", "field.score"),
				col("maxScore", "field.max_score"),
				dateCol("finishedAt", "field.finished_at"),
			},
			Lookups: []Lookup{
				{Column: "quizId", Resource: domain.ResourceQuizzes, LabelKey: "title"},
				{Column: "playerId", Resource: domain.ResourcePlayers, LabelKey: "name"},
			},
		},
	}
}

// Find returns the definition of resource.
func Find(defs []Definition, resource string) (Definition, error) {
	for _, d := range defs {
		if d.Resource == resource {
			return d, nil
		}
	}
	return Definition{}, domain.ErrUnknownResource
}

const displayTime = "2006-01-02 15:04"

func formatDate(v listmanager.Value) string {
	s, ok := v.(string)
	if !ok {
		return listmanager.FormatValue(v)
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Local().Format(displayTime)
	}
	return s
}

package listmanager_test

import (
	"encoding/json"
	"strconv"
	"testing"

	"expo-admin/internal/listmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(records []listmanager.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID()
	}
	return out
}

func consoles() []listmanager.Record {
	return []listmanager.Record{
		{"id": "1", "name": "Konsole 1", "active": false},
		{"id": "2", "name": "Konsole 2", "active": true},
	}
}

func TestFilterMatchesAnyFieldCaseInsensitive(t *testing.T) {
	records := []listmanager.Record{
		{"id": 1, "name": "Alice", "city": "Berlin", "score": 42},
		{"id": 2, "name": "Bob", "city": "Hamburg", "score": 7.5},
		{"id": 3, "name": "Carol", "city": "MÜNCHEN", "active": true},
	}

	tests := []struct {
		term string
		want []string
	}{
		{"", []string{"1", "2", "3"}},
		{"ali", []string{"1"}},
		{"BERLIN", []string{"1"}},
		{"berlin", []string{"1"}},
		{"42", []string{"1"}},
		{"7.5", []string{"2"}},
		{"true", []string{"3"}},
		{"münchen", []string{"3"}},
		{"3", []string{"3"}},
		{"zzz", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			got := listmanager.Filter(records, tt.term)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFilterIsPureAndIdempotent(t *testing.T) {
	records := consoles()
	once := listmanager.Filter(records, "konsole")
	twice := listmanager.Filter(once, "konsole")
	require.Equal(t, ids(once), ids(twice))
	require.Equal(t, []string{"1", "2"}, ids(records))
	require.Equal(t, ids(listmanager.Filter(records, "konsole")), ids(once))
}

func TestSortRecordsStableAndDoesNotReorderSource(t *testing.T) {
	records := []listmanager.Record{
		{"id": 1, "name": "A"},
		{"id": 2, "name": "A"},
		{"id": 3, "name": "0"},
	}
	asc := listmanager.SortRecords(records, listmanager.SortState{Key: "name"})
	assert.Equal(t, []string{"3", "1", "2"}, ids(asc))

	desc := listmanager.SortRecords(records, listmanager.SortState{Key: "name", Direction: listmanager.Descending})
	assert.Equal(t, []string{"1", "2", "3"}, ids(desc))

	assert.Equal(t, []string{"1", "2", "3"}, ids(records))
}

func TestSortNumericAndMissing(t *testing.T) {
	records := []listmanager.Record{
		{"id": "a", "points": json.Number("10")},
		{"id": "b", "points": 9},
		{"id": "c"},
		{"id": "d", "points": 2.5},
	}
	got := listmanager.SortRecords(records, listmanager.SortState{Key: "points"})
	assert.Equal(t, []string{"c", "d", "b", "a"}, ids(got))
}

func TestCompare(t *testing.T) {
	assert.Equal(t, -1, listmanager.Compare("Alice", "Bob"))
	assert.Equal(t, -1, listmanager.Compare(2, 10))
	assert.Equal(t, 1, listmanager.Compare(true, false))
	assert.Equal(t, 0, listmanager.Compare(nil, nil))
	assert.Equal(t, -1, listmanager.Compare(nil, "x"))
	assert.Equal(t, 0, listmanager.Compare(int64(3), 3.0))
	assert.Equal(t, -1, listmanager.Compare(10, "5"))
	assert.Equal(t, -1, listmanager.Compare(false, 0))
}

func TestSortMixedKindsIgnoresInputOrder(t *testing.T) {
	orders := [][]listmanager.Value{
		{10, "5", 9, nil, true},
		{"5", 9, true, 10, nil},
		{true, nil, 10, 9, "5"},
	}
	state := listmanager.SortState{Key: "v", Direction: listmanager.Ascending}
	for _, values := range orders {
		records := make([]listmanager.Record, len(values))
		for i, v := range values {
			records[i] = listmanager.Record{"id": strconv.Itoa(i), "v": v}
		}
		sorted := listmanager.SortRecords(records, state)
		got := make([]listmanager.Value, len(sorted))
		for i, r := range sorted {
			got[i] = r["v"]
		}
		assert.Equal(t, []listmanager.Value{nil, true, 9, 10, "5"}, got)
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", listmanager.FormatValue(nil))
	assert.Equal(t, "1", listmanager.FormatValue(1.0))
	assert.Equal(t, "0.25", listmanager.FormatValue(0.25))
	assert.Equal(t, "false", listmanager.FormatValue(false))
	assert.Equal(t, "12", listmanager.FormatValue(json.Number("12")))
}

func TestRequestSortToggles(t *testing.T) {
	m, err := listmanager.New(listmanager.Config{Columns: []listmanager.Column{
		{Key: "name", Label: "Name", Sortable: true},
		{Key: "city", Label: "City", Sortable: true},
		{Key: "note", Label: "Note"},
	}})
	require.NoError(t, err)
	m.SetRecords([]listmanager.Record{
		{"id": "b", "name": "Bob", "city": "A"},
		{"id": "a", "name": "Alice", "city": "B"},
	})

	require.False(t, m.Sort().Active())
	assert.Equal(t, []string{"b", "a"}, ids(m.Visible()))

	require.True(t, m.RequestSort("name"))
	assert.Equal(t, []string{"a", "b"}, ids(m.Visible()))

	require.True(t, m.RequestSort("name"))
	assert.Equal(t, listmanager.Descending, m.Sort().Direction)
	assert.Equal(t, []string{"b", "a"}, ids(m.Visible()))

	require.True(t, m.RequestSort("name"))
	assert.Equal(t, listmanager.SortState{Key: "name", Direction: listmanager.Ascending}, m.Sort())

	require.True(t, m.RequestSort("name"))
	require.True(t, m.RequestSort("city"))
	assert.Equal(t, listmanager.SortState{Key: "city", Direction: listmanager.Ascending}, m.Sort())
	assert.Equal(t, []string{"b", "a"}, ids(m.Visible()))

	assert.False(t, m.RequestSort("note"))
	assert.False(t, m.RequestSort("missing"))
	assert.Equal(t, "city", m.Sort().Key)
}

func TestNewValidatesColumns(t *testing.T) {
	_, err := listmanager.New(listmanager.Config{})
	require.ErrorIs(t, err, listmanager.ErrNoColumns)

	_, err = listmanager.New(listmanager.Config{Columns: []listmanager.Column{{Key: "a"}, {Key: "a"}}})
	require.ErrorIs(t, err, listmanager.ErrDuplicateColumn)
}

func TestEmptyStatesDiffer(t *testing.T) {
	m, err := listmanager.New(listmanager.Config{Columns: []listmanager.Column{{Key: "name", Label: "Name"}}})
	require.NoError(t, err)

	m.SetRecords(nil)
	noData := m.View()
	assert.Equal(t, listmanager.EmptyNoData, noData.Empty)
	assert.Empty(t, noData.Rows)

	m.SetRecords([]listmanager.Record{{"id": 1, "name": "Alice"}})
	m.SetSearch("zzz")
	noResults := m.View()
	assert.Equal(t, listmanager.EmptyNoResults, noResults.Empty)
	assert.NotEqual(t, noData.EmptyMessage, noResults.EmptyMessage)

	m.SetSearch("")
	assert.Equal(t, listmanager.EmptyNone, m.View().Empty)
}

func TestEmptyMessagesAreTranslated(t *testing.T) {
	m, err := listmanager.New(listmanager.Config{
		Columns:   []listmanager.Column{{Key: "name"}},
		Translate: func(key string) string { return "t:" + key },
	})
	require.NoError(t, err)
	assert.Equal(t, "t:"+listmanager.MsgNoData, m.View().EmptyMessage)
}

func TestLoadingRendersSkeleton(t *testing.T) {
	m, err := listmanager.New(listmanager.Config{
		Columns:      []listmanager.Column{{Key: "name"}, {Key: "city"}},
		OnAdd:        func() {},
		SkeletonRows: 3,
	})
	require.NoError(t, err)
	m.SetRecords(consoles())
	m.SetLoading(true)
	m.SetSearch("konsole")

	v := m.View()
	require.True(t, v.Loading)
	require.Len(t, v.Rows, 3)
	for _, row := range v.Rows {
		assert.True(t, row.Placeholder)
		assert.Nil(t, row.Record)
		assert.Equal(t, []string{listmanager.SkeletonCell, listmanager.SkeletonCell}, row.Cells)
	}
	assert.Equal(t, listmanager.EmptyNone, v.Empty)
	assert.True(t, v.ShowAdd)
	assert.Equal(t, "konsole", v.Search)
}

func TestMissingColumnRendersEmpty(t *testing.T) {
	m, err := listmanager.New(listmanager.Config{Columns: []listmanager.Column{{Key: "name"}, {Key: "ghost", Sortable: true}}})
	require.NoError(t, err)
	m.SetRecords([]listmanager.Record{{"id": 1, "name": "Alice"}})
	require.True(t, m.RequestSort("ghost"))

	v := m.View()
	require.Len(t, v.Rows, 1)
	assert.Equal(t, []string{"Alice", ""}, v.Rows[0].Cells)
}

func TestRenderReceivesValueAndRecord(t *testing.T) {
	m, err := listmanager.New(listmanager.Config{Columns: []listmanager.Column{{
		Key: "active",
		Render: func(v listmanager.Value, r listmanager.Record) string {
			if v == true {
				return r.Text("name") + " on"
			}
			return r.Text("name") + " off"
		},
	}}})
	require.NoError(t, err)
	m.SetRecords(consoles())
	v := m.View()
	assert.Equal(t, "Konsole 1 off", v.Rows[0].Cells[0])
	assert.Equal(t, "Konsole 2 on", v.Rows[1].Cells[0])
}

func TestDeleteIntentFromSearchedRow(t *testing.T) {
	records := consoles()
	var deleted []listmanager.Record
	m, err := listmanager.New(listmanager.Config{
		Columns: []listmanager.Column{
			{Key: "name", Label: "Name", Sortable: true},
			{Key: "active", Label: "Active"},
		},
		OnDelete: func(r listmanager.Record) { deleted = append(deleted, r) },
	})
	require.NoError(t, err)
	m.SetRecords(records)
	m.SetSearch("konsole 2")

	v := m.View()
	require.Len(t, v.Rows, 1)
	require.Equal(t, "2", v.Rows[0].Record.ID())

	actions := v.Rows[0].Actions
	require.Len(t, actions, 1)
	require.Equal(t, listmanager.ActionDelete, actions[0].ID)
	actions[0].Invoke()

	require.Len(t, deleted, 1)
	assert.Equal(t, "2", deleted[0].ID())
	assert.Len(t, records, 2)
	assert.Equal(t, []string{"1", "2"}, ids(m.Records()))
	assert.False(t, m.CanEdit())
	assert.False(t, m.Edit(records[0]))
}

func TestAddControlFollowsHook(t *testing.T) {
	without, err := listmanager.New(listmanager.Config{Columns: []listmanager.Column{{Key: "name"}}})
	require.NoError(t, err)
	assert.False(t, without.View().ShowAdd)
	assert.False(t, without.Add())

	calls := 0
	with, err := listmanager.New(listmanager.Config{
		Columns:       []listmanager.Column{{Key: "name"}},
		OnAdd:         func() { calls++ },
		AddButtonText: "New console",
	})
	require.NoError(t, err)
	v := with.View()
	assert.True(t, v.ShowAdd)
	assert.Equal(t, "New console", v.AddLabel)
	assert.True(t, with.Add())
	assert.Equal(t, 1, calls)
}

func TestRowActionsOrderWithCustomActions(t *testing.T) {
	var invoked []string
	m, err := listmanager.New(listmanager.Config{
		Columns:  []listmanager.Column{{Key: "email"}},
		OnEdit:   func(listmanager.Record) { invoked = append(invoked, "edit") },
		OnDelete: func(listmanager.Record) { invoked = append(invoked, "delete") },
		CustomActions: func(r listmanager.Record) []listmanager.Action {
			return []listmanager.Action{{ID: "resend-invite", Label: "Resend", Invoke: func() {
				invoked = append(invoked, "resend:"+r.ID())
			}}}
		},
	})
	require.NoError(t, err)
	actions := m.RowActions(listmanager.Record{"id": 9, "email": "a@b.c"})
	require.Len(t, actions, 3)
	for _, a := range actions {
		a.Invoke()
	}
	assert.Equal(t, []string{"edit", "delete", "resend:9"}, invoked)
	assert.Equal(t, "Edit", actions[0].Label)
}

func TestHeadersReflectSort(t *testing.T) {
	m, err := listmanager.New(listmanager.Config{Columns: []listmanager.Column{
		{Key: "name", Label: "Name", Sortable: true},
		{Key: "city", Label: "City", Sortable: true},
	}})
	require.NoError(t, err)
	m.RequestSort("city")
	m.RequestSort("city")

	h := m.View().Headers
	require.Len(t, h, 2)
	assert.False(t, h[0].Sorted)
	assert.True(t, h[1].Sorted)
	assert.Equal(t, listmanager.Descending, h[1].Direction)
}

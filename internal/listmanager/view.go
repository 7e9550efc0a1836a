package listmanager

// EmptyState tells why a table has no rows.
type EmptyState int

const (
	EmptyNone EmptyState = iota
	// EmptyNoData means the source collection itself is empty.
	EmptyNoData
	// EmptyNoResults means the search excluded every record.
	EmptyNoResults
)

// SkeletonCell is the placeholder text of every cell in a loading row.
const SkeletonCell = "░░░░░░"

// Header is one rendered column header.
type Header struct {
	Key      string
	Label    string
	Sortable bool
	// Sorted is true when this column holds the active sort.
	Sorted    bool
	Direction Direction
}

// Row is one rendered table row.
type Row struct {
	Record      Record
	Cells       []string
	Actions     []Action
	Placeholder bool
}

// View is everything a renderer needs to draw the table.
type View struct {
	Headers           []Header
	Rows              []Row
	Loading           bool
	Empty             EmptyState
	EmptyMessage      string
	Search            string
	SearchPlaceholder string
	ShowAdd           bool
	AddLabel          string
}

// View renders the current state. While loading it yields deterministic
// placeholder rows and no data rows.
func (m *Manager) View() View {
	v := View{
		Headers:           m.headers(),
		Loading:           m.loading,
		Search:            m.search,
		SearchPlaceholder: m.cfg.SearchPlaceholder,
		ShowAdd:           m.cfg.OnAdd != nil,
		AddLabel:          m.cfg.AddButtonText,
	}
	if m.loading {
		v.Rows = m.skeleton()
		return v
	}

	visible := m.Visible()
	if len(visible) == 0 {
		if len(m.records) == 0 {
			v.Empty = EmptyNoData
			v.EmptyMessage = m.text(MsgNoData)
		} else {
			v.Empty = EmptyNoResults
			v.EmptyMessage = m.text(MsgNoResults)
		}
		return v
	}

	v.Rows = make([]Row, 0, len(visible))
	for _, r := range visible {
		cells := make([]string, len(m.cfg.Columns))
		for i, c := range m.cfg.Columns {
			cells[i] = c.Cell(r)
		}
		v.Rows = append(v.Rows, Row{Record: r, Cells: cells, Actions: m.RowActions(r)})
	}
	return v
}

func (m *Manager) headers() []Header {
	out := make([]Header, len(m.cfg.Columns))
	for i, c := range m.cfg.Columns {
		h := Header{Key: c.Key, Label: c.Label, Sortable: c.Sortable}
		if m.sort.Key == c.Key {
			h.Sorted = true
			h.Direction = m.sort.Direction
		}
		out[i] = h
	}
	return out
}

func (m *Manager) skeleton() []Row {
	rows := make([]Row, m.cfg.SkeletonRows)
	for i := range rows {
		cells := make([]string, len(m.cfg.Columns))
		for j := range cells {
			cells[j] = SkeletonCell
		}
		rows[i] = Row{Cells: cells, Placeholder: true}
	}
	return rows
}

package tui

import (
	"fmt"
	"strings"

	"expo-admin/internal/app"
	"expo-admin/internal/listmanager"
	"expo-admin/internal/notify"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

const maxColumnWidth = 32

// syncTable copies the active screen's rendered view into the table widget.
func (m *Model) syncTable() {
	screen := m.screen()
	if screen == nil {
		return
	}
	v := screen.View()
	m.synced = v.Loading

	cols := make([]table.Column, len(v.Headers))
	for i, h := range v.Headers {
		cols[i] = table.Column{Title: headerTitle(i, h), Width: lipgloss.Width(headerTitle(i, h))}
	}
	rows := make([]table.Row, len(v.Rows))
	for i, r := range v.Rows {
		rows[i] = table.Row(r.Cells)
		for j, c := range r.Cells {
			if w := lipgloss.Width(c); w > cols[j].Width {
				cols[j].Width = min(w, maxColumnWidth)
			}
		}
	}

	// Rows must be cleared before the column count changes.
	m.table.SetRows(nil)
	m.table.SetColumns(cols)
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

func headerTitle(i int, h listmanager.Header) string {
	title := h.Label
	if i < 9 && h.Sortable {
		title = fmt.Sprintf("%d %s", i+1, title)
	}
	if h.Sorted {
		if h.Direction == listmanager.Descending {
			title += " ▼"
		} else {
			title += " ▲"
		}
	}
	return title
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.tabs())
	b.WriteString("\n\n")

	switch m.mode {
	case modeLogin:
		b.WriteString(m.loginView())
	case modeForm:
		b.WriteString(m.formView())
	case modeConfirm:
		b.WriteString(m.confirmView())
	default:
		b.WriteString(m.tableView())
	}

	if toasts := m.toastView(); toasts != "" {
		b.WriteString("\n")
		b.WriteString(toasts)
	}
	return b.String()
}

func (m *Model) tabs() string {
	parts := make([]string, len(m.screens))
	for i, s := range m.screens {
		style := tabStyle
		if i == m.active {
			style = activeTabStyle
		}
		parts[i] = style.Render(s.Definition().Title)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) tableView() string {
	screen := m.screen()
	if screen == nil {
		return emptyStyle.Render(m.t(listmanager.MsgNoData))
	}
	v := screen.View()

	var b strings.Builder
	if m.mode == modeSearch {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	} else if v.Search != "" {
		b.WriteString(helpStyle.UnsetMarginTop().Render("/ " + v.Search))
		b.WriteString("\n")
	}
	b.WriteString(m.table.View())
	if v.Empty != listmanager.EmptyNone {
		b.WriteString("\n")
		b.WriteString(emptyStyle.Render(v.EmptyMessage))
	}
	if v.ShowAdd {
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("a: " + v.AddLabel))
	}
	b.WriteString("\n")
	b.WriteString(m.helpLine())
	return b.String()
}

func (m *Model) helpLine() string {
	bindings := m.keys.browseHelp()
	parts := make([]string, 0, len(bindings))
	for _, k := range bindings {
		h := k.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return helpStyle.Render(strings.Join(parts, " • "))
}

func (m *Model) formView() string {
	def := m.screen().Definition()
	title := m.t("form.create")
	if m.form.mode == app.FormEdit {
		title = m.t("form.edit")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(title + " · " + def.Title))
	b.WriteString("\n")
	for i, f := range m.form.fields {
		label := f.Label
		if f.Required {
			label += requiredStyle.Render("*")
		}
		b.WriteString(labelStyle.Render(label))
		b.WriteString(m.form.inputs[i].View())
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(m.t("form.hint")))
	return dialogStyle.Render(b.String())
}

func (m *Model) confirmView() string {
	prompt := m.screen().ConfirmPrompt()
	return dangerStyle.Render(prompt + "\n\n" + helpStyle.Render(m.t("confirm.hint")))
}

func (m *Model) loginView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.t("auth.title")))
	b.WriteString("\n")
	b.WriteString(m.login.email.View())
	b.WriteString("\n")
	b.WriteString(m.login.password.View())
	if m.login.busy {
		b.WriteString("\n")
		b.WriteString(helpStyle.Render(m.t("table.loading")))
	}
	return dialogStyle.Render(b.String())
}

func (m *Model) toastView() string {
	if m.toasts == nil {
		return ""
	}
	active := m.toasts.Active()
	lines := make([]string, 0, len(active))
	for _, n := range active {
		line := n.Title
		if n.Description != "" {
			line += ": " + n.Description
		}
		lines = append(lines, notify.Style(n.Severity).Render(line))
	}
	return strings.Join(lines, "\n")
}

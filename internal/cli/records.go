package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"expo-admin/internal/app"
	"expo-admin/internal/domain"
	"expo-admin/internal/listmanager"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	emptyStyle  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245"))
)

func newResourcesCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resources",
		Short: "List the managed resources",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, false, func(_ context.Context, e *env) error {
				t := table.New().
					Border(lipgloss.NormalBorder()).
					BorderStyle(borderStyle).
					Headers("RESOURCE", "TITLE", "OPERATIONS").
					StyleFunc(styleCell)
				for _, def := range app.Catalog(e.tr) {
					t.Row(def.Resource, def.Title, operations(def))
				}
				fmt.Fprintln(e.out, t.Render())
				return nil
			})
		},
	}
}

func operations(def app.Definition) string {
	ops := []string{"list"}
	if def.CanCreate {
		ops = append(ops, "create")
	}
	if def.CanEdit {
		ops = append(ops, "update")
	}
	if def.CanDelete {
		ops = append(ops, "delete")
	}
	for _, a := range def.Actions {
		ops = append(ops, a.ID)
	}
	return strings.Join(ops, ", ")
}

func newListCmd(opts *globalOptions) *cobra.Command {
	var (
		search string
		sortBy string
		desc   bool
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "list <resource>",
		Short: "Show a resource table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, true, func(ctx context.Context, e *env) error {
				screen, err := e.screen(ctx, args[0])
				if err != nil {
					return err
				}
				screen.SetSearch(search)
				if sortBy != "" {
					if !screen.RequestSort(sortBy) {
						return fmt.Errorf("column %q of %s is not sortable", sortBy, args[0])
					}
					if desc {
						screen.RequestSort(sortBy)
					}
				}
				view := screen.View()
				if asJSON {
					return writeJSON(e, view)
				}
				fmt.Fprintln(e.out, renderView(view))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "case-insensitive filter over all fields")
	cmd.Flags().StringVar(&sortBy, "sort", "", "column key to sort by")
	cmd.Flags().BoolVar(&desc, "desc", false, "sort descending")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the visible records as JSON")
	return cmd
}

func writeJSON(e *env, view listmanager.View) error {
	records := make([]listmanager.Record, 0, len(view.Rows))
	for _, row := range view.Rows {
		if !row.Placeholder {
			records = append(records, row.Record)
		}
	}
	enc := json.NewEncoder(e.out)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func renderView(view listmanager.View) string {
	if view.Empty != listmanager.EmptyNone {
		return emptyStyle.Render(view.EmptyMessage)
	}
	headers := make([]string, len(view.Headers))
	for i, h := range view.Headers {
		headers[i] = headerLabel(h)
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(styleCell)
	for _, row := range view.Rows {
		t.Row(row.Cells...)
	}
	return t.Render()
}

func styleCell(row, _ int) lipgloss.Style {
	if row == table.HeaderRow {
		return headerStyle
	}
	return cellStyle
}

func headerLabel(h listmanager.Header) string {
	if !h.Sorted {
		return h.Label
	}
	if h.Direction == listmanager.Descending {
		return h.Label + " ▼"
	}
	return h.Label + " ▲"
}

func newCreateCmd(opts *globalOptions) *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:   "create <resource> --set key=value...",
		Short: "Create a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, true, func(ctx context.Context, e *env) error {
				screen, err := e.screen(ctx, args[0])
				if err != nil {
					return err
				}
				if !screen.Add() {
					return fmt.Errorf("%s: records cannot be created", args[0])
				}
				return submit(ctx, screen, sets)
			})
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field value as key=value (repeatable)")
	return cmd
}

func newUpdateCmd(opts *globalOptions) *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:   "update <resource> <id> --set key=value...",
		Short: "Update a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, true, func(ctx context.Context, e *env) error {
				screen, err := e.screen(ctx, args[0])
				if err != nil {
					return err
				}
				if err := screen.Trigger(args[1], listmanager.ActionEdit); err != nil {
					return err
				}
				return submit(ctx, screen, sets)
			})
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field value as key=value (repeatable)")
	return cmd
}

// submit overlays the --set values on the open form and saves it.
func submit(ctx context.Context, screen *app.Screen, sets []string) error {
	form, ok := screen.Form()
	if !ok {
		return domain.ErrNothingPending
	}
	known := make(map[string]bool, len(form.Fields))
	for _, f := range form.Fields {
		known[f.Key] = true
	}
	values := form.Values
	for _, raw := range sets {
		k, v, found := strings.Cut(raw, "=")
		k = strings.TrimSpace(k)
		if !found || k == "" {
			return fmt.Errorf("--set %q: expected key=value", raw)
		}
		if !known[k] {
			return fmt.Errorf("--set %q: unknown field, expected one of %s", raw, fieldKeys(form.Fields))
		}
		values[k] = v
	}
	return screen.Submit(ctx, values)
}

func fieldKeys(fields []app.Field) string {
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.Key
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}

func newDeleteCmd(opts *globalOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <resource> <id>",
		Short: "Delete a record after confirmation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, true, func(ctx context.Context, e *env) error {
				screen, err := e.screen(ctx, args[0])
				if err != nil {
					return err
				}
				if err := screen.Trigger(args[1], listmanager.ActionDelete); err != nil {
					return err
				}
				if !yes {
					ok, err := confirm(cmd, screen.ConfirmPrompt())
					if err != nil {
						screen.CancelDelete()
						return err
					}
					if !ok {
						screen.CancelDelete()
						fmt.Fprintln(e.out, e.tr.T("cli.aborted"))
						return nil
					}
				}
				if err := screen.ConfirmDelete(ctx); err != nil {
					return err
				}
				fmt.Fprintln(e.out, e.tr.Tf("cli.deleted", args[0], args[1]))
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newActionCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "action <resource> <id> <action>",
		Short: "Run a custom row action, e.g. resend-invite on users",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, true, func(ctx context.Context, e *env) error {
				if args[2] == listmanager.ActionEdit || args[2] == listmanager.ActionDelete {
					return fmt.Errorf("%q is not a custom action, use update or delete", args[2])
				}
				screen, err := e.screen(ctx, args[0])
				if err != nil {
					return err
				}
				if err := screen.Trigger(args[1], args[2]); err != nil {
					return err
				}
				if e.failures > 0 {
					return errors.New(e.tr.T("common.error"))
				}
				return nil
			})
		},
	}
}

package cli

import (
	"context"
	"time"

	"expo-admin/internal/app"
	"expo-admin/internal/config"
	"expo-admin/internal/logger"
	"expo-admin/internal/notify"
	"expo-admin/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newTUICmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui [resource]",
		Short: "Open the interactive admin console",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, false, func(ctx context.Context, e *env) error {
				initial := ""
				if len(args) == 1 {
					if _, err := app.Find(app.Catalog(e.tr), args[0]); err != nil {
						return err
					}
					initial = args[0]
				}
				ctx, cancel := context.WithCancel(ctx)
				defer cancel()

				center := notify.NewCenter(config.TTLDuration(e.cfg.UI.ToastTTL, 4*time.Second), logger.For("notify"))
				var screens []*app.Screen
				for _, def := range app.Catalog(e.tr) {
					screen, err := app.NewScreen(def, app.ScreenDeps{
						Backend:      e.backend,
						Lookups:      e.lookups,
						Notifier:     center,
						Translator:   e.tr,
						Log:          logger.For("screen"),
						SkeletonRows: e.cfg.UI.SkeletonRows,
					})
					if err != nil {
						return err
					}
					screens = append(screens, screen)
				}

				model := tui.New(ctx, tui.Options{
					Screens:    screens,
					Auth:       e.provider,
					Toasts:     center,
					Translator: e.tr,
					Initial:    initial,
				})
				p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
				e.provider.OnExpired(func() { go p.Send(tui.ExpiredMsg{}) })
				_, err := p.Run()
				return err
			})
		},
	}
}

package cli

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"expo-admin/internal/domain"
	"expo-admin/internal/infra/memory"
	"expo-admin/internal/logger"
	transport "expo-admin/internal/transport/http"
	"github.com/spf13/cobra"
)

// newMockAPICmd serves the seeded demo store over the persistence API so the
// console can be tried against a real HTTP backend.
func newMockAPICmd(opts *globalOptions) *cobra.Command {
	var (
		addr     string
		simulate time.Duration
	)
	cmd := &cobra.Command{
		Use:   "mock-api",
		Short: "Serve an in-memory persistence API with demo data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := opts.loadConfig(); err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runMockAPI(ctx, addr, simulate)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().DurationVar(&simulate, "simulate", 0, "add a random quiz result at this interval (0 disables)")
	return cmd
}

func runMockAPI(ctx context.Context, addr string, simulate time.Duration) error {
	log := logger.For("mock-api")
	store := demoStore()

	server := &http.Server{
		Addr:              addr,
		Handler:           transport.Mount("/api", transport.NewHandler(store, log)),
		ReadHeaderTimeout: 15 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if simulate > 0 {
		go simulateResults(ctx, store, simulate)
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("starting mock persistence API")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-errCh:
		return err
	case <-stop:
		log.Info("shutting down mock persistence API")
	case <-ctx.Done():
		log.Info("context canceled, shutting down mock persistence API")
	}

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	return server.Shutdown(shutdownCtx)
}

func simulateResults(ctx context.Context, store *memory.ResourceStore, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			store.AddResult(randomResult(now))
		}
	}
}

func randomResult(at time.Time) domain.QuizResult {
	quiz := demoQuizzes[rand.IntN(len(demoQuizzes))]
	return domain.QuizResult{
		QuizID:     quiz,
		PlayerID:   demoPlayers[rand.IntN(len(demoPlayers))],
		Score:      rand.IntN(demoMaxScore + 1),
		MaxScore:   demoMaxScore,
		FinishedAt: at.UTC(),
	}
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newLoginCmd(opts *globalOptions) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, false, func(ctx context.Context, e *env) error {
				if email == "" || password == "" {
					if !interactive(cmd) {
						return errors.New("--email and --password are required when not on a terminal")
					}
					if err := promptCredentials(&email, &password, e.tr.T("auth.title"), e.tr.T("auth.email"), e.tr.T("auth.password")); err != nil {
						return err
					}
				}
				ok, err := e.provider.Login(ctx, strings.TrimSpace(email), password)
				if err != nil {
					return err
				}
				if !ok {
					return errors.New(e.tr.T("auth.login_failed"))
				}
				fmt.Fprintln(e.out, e.tr.Tf("auth.logged_in", strings.TrimSpace(email)))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}

func newLogoutCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, false, func(ctx context.Context, e *env) error {
				if err := e.provider.Logout(ctx); err != nil {
					return err
				}
				fmt.Fprintln(e.out, e.tr.T("auth.logged_out"))
				return nil
			})
		},
	}
}

func newStatusCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, false, func(_ context.Context, e *env) error {
				if !e.provider.IsAuthenticated() {
					fmt.Fprintln(e.out, e.tr.T("cli.not_logged_in"))
					return nil
				}
				session := e.provider.Session()
				fmt.Fprintln(e.out, e.tr.Tf("auth.logged_in", session.Email))
				if !session.ExpiresAt.IsZero() {
					fmt.Fprintf(e.out, "expires %s\n", session.ExpiresAt.Local().Format(time.RFC1123))
				}
				if !opts.demo {
					fmt.Fprintf(e.out, "api %s\n", e.cfg.API.BaseURL)
				}
				return nil
			})
		},
	}
}

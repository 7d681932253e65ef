package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func loginCmd(g *globalOptions) *cobra.Command {
	var (
		password string
		google   string
		remember bool
	)

	cmd := &cobra.Command{
		Use:   "login [username]",
		Short: "Sign in with username and password (read from stdin when --password is empty)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, g, true, func(ctx context.Context, a *app) error {
				if google != "" {
					st, err := a.session.LoginWithGoogle(ctx, google, remember)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Signed in (expires %s)\n", formatExpiry(st.ExpiresAt))
					return nil
				}

				if len(args) == 0 {
					return errors.New("username is required")
				}

				if password == "" {
					fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
					line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
					if err != nil && line == "" {
						return fmt.Errorf("read password: %w", err)
					}
					password = strings.TrimRight(line, "\r\n")
				}

				st, err := a.session.LoginWithCredentials(ctx, args[0], password, remember)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (expires %s)\n", args[0], formatExpiry(st.ExpiresAt))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	cmd.Flags().StringVar(&google, "google-credential", "", "sign in with a Google ID token instead")
	cmd.Flags().BoolVar(&remember, "remember", true, "keep tokens in the durable store")

	return cmd
}

func loginTokenCmd(g *globalOptions) *cobra.Command {
	var remember bool

	cmd := &cobra.Command{
		Use:   "login-token <access> [refresh]",
		Short: "Sign in with an already obtained token pair",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, g, true, func(ctx context.Context, a *app) error {
				var refresh string
				if len(args) == 2 {
					refresh = args[1]
				}

				st, err := a.session.LoginWithTokenPair(ctx, args[0], refresh, remember)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Signed in (expires %s)\n", formatExpiry(st.ExpiresAt))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&remember, "remember", true, "keep tokens in the durable store")

	return cmd
}

func logoutCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget stored tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, g, true, func(ctx context.Context, a *app) error {
				a.session.Logout(ctx)
				fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
				return nil
			})
		},
	}
}

func whoamiCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, g, true, func(ctx context.Context, a *app) error {
				st, err := a.session.RestoreUser(ctx)
				if err != nil {
					return err
				}
				if !st.IsAuthenticated {
					fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
					return nil
				}

				u := st.User
				if u == nil {
					return errors.New("profile is unavailable")
				}

				w := newTable(cmd.OutOrStdout())
				row(w, "User:", u.DisplayName())
				row(w, "Username:", u.Username)
				row(w, "Email:", u.Email)
				row(w, "Role:", u.Role)
				row(w, "Token expires:", formatExpiry(st.ExpiresAt))
				return w.Flush()
			})
		},
	}
}

func formatExpiry(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Local().Format(time.DateTime)
}

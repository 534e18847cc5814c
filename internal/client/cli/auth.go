package cli

import (
	"bufio"
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/gophauth/internal/client"
)

func newPingCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the server is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withClient(cmd, func(ctx context.Context, c *client.GRPCClient) error {
				if err := c.Ping(ctx); err != nil {
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "OK")
				return err
			})
		},
	}
}

func newRegisterCmd(o *options) *cobra.Command {
	var cr credentials
	var email string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := bufio.NewReader(cmd.InOrStdin())

			username, err := cr.readUsername(cmd, in)
			if err != nil {
				return err
			}
			if email == "" {
				if email, err = GetSimpleText(in, "Email", cmd.ErrOrStderr()); err != nil {
					return fmt.Errorf("read email: %w", err)
				}
			}
			password, err := cr.readPassword(cmd, in)
			if err != nil {
				return err
			}

			return o.withClient(cmd, func(ctx context.Context, c *client.GRPCClient) error {
				u, err := c.Register(ctx, username, email, password)
				if err != nil {
					return err
				}
				if o.jsonOutput {
					return o.printUsers(cmd.OutOrStdout(), u)
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "registered %s (%s)\n", u.Username, u.ID)
				return err
			})
		},
	}

	cr.bind(cmd)
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email (prompted when empty)")
	return cmd
}

func newLoginCmd(o *options) *cobra.Command {
	var cr credentials

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the token pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := bufio.NewReader(cmd.InOrStdin())

			username, err := cr.readUsername(cmd, in)
			if err != nil {
				return err
			}
			password, err := cr.readPassword(cmd, in)
			if err != nil {
				return err
			}

			return o.withClient(cmd, func(ctx context.Context, c *client.GRPCClient) error {
				resp, err := c.Login(ctx, username, password)
				if err != nil {
					return err
				}
				return o.printTokens(cmd.OutOrStdout(), "logged in as "+username, resp)
			})
		},
	}

	cr.bind(cmd)
	return cmd
}

func newRefreshCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the saved refresh token for a new pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withClient(cmd, func(ctx context.Context, c *client.GRPCClient) error {
				resp, err := c.Refresh(ctx)
				if err != nil {
					return err
				}
				return o.printTokens(cmd.OutOrStdout(), "tokens refreshed", resp)
			})
		},
	}
}

func newWhoamiCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withClient(cmd, func(ctx context.Context, c *client.GRPCClient) error {
				u, err := c.Me(ctx)
				if err != nil {
					return err
				}
				return o.printUsers(cmd.OutOrStdout(), u)
			})
		},
	}
}

// newLogoutCmd forgets the local token pair. Issued tokens stay valid on the
// server until they expire.
func newLogoutCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the saved token pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := ClearTokens(o.cfg.TokenFile); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return err
		},
	}
}

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/gophauth/internal/client"
)

func newUsersCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Look up and manage accounts",
	}

	cmd.AddCommand(newUsersListCmd(o))
	cmd.AddCommand(newUsersGetCmd(o))
	cmd.AddCommand(newUsersUpdateCmd(o))
	cmd.AddCommand(newUsersDeactivateCmd(o))
	cmd.AddCommand(newUsersDeleteCmd(o))

	return cmd
}

func newUsersListCmd(o *options) *cobra.Command {
	var (
		order         string
		offset, limit int32
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withClient(cmd, func(ctx context.Context, c *client.GRPCClient) error {
				users, err := c.ListUsers(ctx, order, offset, limit)
				if err != nil {
					return err
				}
				return o.printUsers(cmd.OutOrStdout(), users...)
			})
		},
	}

	cmd.Flags().StringVar(&order, "order", "", "sort column: id, username, email or created_at")
	cmd.Flags().Int32Var(&offset, "offset", 0, "number of accounts to skip")
	cmd.Flags().Int32Var(&limit, "limit", 0, "maximum number of accounts (server default when 0)")
	return cmd
}

func newUsersGetCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get <username>",
		Short: "Show one account by username",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withClient(cmd, func(ctx context.Context, c *client.GRPCClient) error {
				u, err := c.GetUser(ctx, args[0])
				if err != nil {
					return err
				}
				return o.printUsers(cmd.OutOrStdout(), u)
			})
		},
	}
}

func newUsersUpdateCmd(o *options) *cobra.Command {
	var username, email string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change your own username or email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var up, ep *string
			if cmd.Flags().Changed("username") {
				up = &username
			}
			if cmd.Flags().Changed("email") {
				ep = &email
			}
			if up == nil && ep == nil {
				return errors.New("nothing to update: set --username or --email")
			}

			return o.withClient(cmd, func(ctx context.Context, c *client.GRPCClient) error {
				u, err := c.UpdateUser(ctx, args[0], up, ep)
				if err != nil {
					return err
				}
				return o.printUsers(cmd.OutOrStdout(), u)
			})
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "new username")
	cmd.Flags().StringVar(&email, "email", "", "new email")
	return cmd
}

func newUsersDeactivateCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <id>",
		Short: "Deactivate your own account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withClient(cmd, func(ctx context.Context, c *client.GRPCClient) error {
				u, err := c.DeactivateUser(ctx, args[0])
				if err != nil {
					return err
				}
				return o.printUsers(cmd.OutOrStdout(), u)
			})
		},
	}
}

func newUsersDeleteCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete your own account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withClient(cmd, func(ctx context.Context, c *client.GRPCClient) error {
				if err := c.DeleteUser(ctx, args[0]); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return err
			})
		},
	}
}

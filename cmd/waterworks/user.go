package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/cockroachdb/errors"
	"github.com/railzwaylabs/waterworks/internal/auth"
	authdomain "github.com/railzwaylabs/waterworks/internal/auth/domain"
	"github.com/railzwaylabs/waterworks/internal/auth/password"
	authzdomain "github.com/railzwaylabs/waterworks/internal/authorization/domain"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(newUserCreateCmd(), newUserListCmd(), newUserPasswdCmd(), newUserHashCmd())
	return cmd
}

// withUsers runs fn against the user service of a short-lived application.
func withUsers(fn func(ctx context.Context, users authdomain.Service) error) error {
	var users authdomain.Service
	return runOnce(func(ctx context.Context) error {
		return fn(ctx, users)
	}, auth.Module, fx.Populate(&users))
}

func newUserCreateCmd() *cobra.Command {
	var req authdomain.CreateRequest
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			req.ConfirmPassword = req.Password
			req.Role = strings.ToUpper(strings.TrimSpace(req.Role))
			return withUsers(func(ctx context.Context, users authdomain.Service) error {
				user, err := users.CreateFromCLI(ctx, req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s %s <%s> as %s (id %s)\n",
					user.FirstName, user.LastName, user.Email, user.Role, user.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&req.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&req.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&req.Email, "email", "", "login email")
	cmd.Flags().StringVar(&req.Password, "password", "", "initial password (min 6 characters)")
	cmd.Flags().StringVar(&req.Role, "role", string(authzdomain.RoleReader), "ADMIN, READER, TREASURER or PRESIDENT")
	for _, name := range []string{"first-name", "last-name", "email", "password"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newUserListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUsers(func(ctx context.Context, users authdomain.Service) error {
				items, err := users.ListAll(ctx)
				if err != nil {
					return err
				}
				return printUsers(cmd.OutOrStdout(), items)
			})
		},
	}
}

func printUsers(out io.Writer, users []authdomain.Response) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE\tACTIVE")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s %s\t%s\t%s\t%t\n", u.ID, u.FirstName, u.LastName, u.Email, u.Role, u.Active)
	}
	return w.Flush()
}

func newUserPasswdCmd() *cobra.Command {
	var email, raw string
	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Set a user's password",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUsers(func(ctx context.Context, users authdomain.Service) error {
				err := users.ChangePasswordByEmail(ctx, email, authdomain.ChangePasswordRequest{
					Password:        raw,
					ConfirmPassword: raw,
				})
				if errors.Is(err, authdomain.ErrUserNotFound) {
					return errors.Newf("no user with email %s", email)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "password updated for %s\n", email)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&raw, "password", "", "new password (min 6 characters)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// newUserHashCmd prints a bcrypt hash for seeding users by hand.
func newUserHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash <password>",
		Short: "Print the bcrypt hash of a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := password.Hash(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/persistence/mysql"
)

func (e *env) users() (user.Service, error) {
	db, err := e.database()
	if err != nil {
		return nil, err
	}
	return user.NewService(mysql.NewUserRepository(db)), nil
}

func userCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "manage accounts",
	}
	cmd.AddCommand(userCreateCommand(e), userDeleteCommand(e))
	return cmd
}

func userCreateCommand(e *env) *cobra.Command {
	var in user.RegisterInput

	cmd := &cobra.Command{
		Use:   "create",
		Short: "create an account with an empty profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := e.users()
			if err != nil {
				return err
			}
			u, err := users.Register(cmd.Context(), in)
			if err != nil {
				return err
			}
			role := "reader"
			if u.IsStaff {
				role = "staff"
			}
			fmt.Fprintf(e.out, "created %s user %q (id %d)\n", role, u.Username, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Username, "username", "", "login name")
	cmd.Flags().StringVar(&in.Password, "password", "", "password, 8-64 characters with letters and digits")
	cmd.Flags().StringVar(&in.Email, "email", "", "email address")
	cmd.Flags().StringVar(&in.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&in.LastName, "last-name", "", "last name")
	cmd.Flags().BoolVar(&in.Staff, "staff", false, "grant staff access")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func userDeleteCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete USERNAME",
		Short: "delete an account; its loans and reviews are kept without it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := e.users()
			if err != nil {
				return err
			}
			u, err := users.GetByUsername(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := users.Delete(cmd.Context(), u.ID); err != nil {
				return err
			}
			fmt.Fprintf(e.out, "deleted user %q (id %d)\n", u.Username, u.ID)
			return nil
		},
	}
}

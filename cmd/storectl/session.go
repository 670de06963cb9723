package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"fake-store/go-client/pkg/models"
)

// readPassword prefers the flag, then FAKESTORE_PASSWORD, then one line of stdin.
func (a *app) readPassword(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if v := os.Getenv("FAKESTORE_PASSWORD"); v != "" {
		return v, nil
	}
	fmt.Fprint(os.Stderr, "Password: ")
	line, err := bufio.NewReader(a.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (a *app) printUser(user models.User) error {
	return a.emit(user, func(w io.Writer) {
		fmt.Fprintf(w, "id\t%s\n", user.ID)
		fmt.Fprintf(w, "name\t%s\n", user.Name)
		fmt.Fprintf(w, "email\t%s\n", user.Email)
	})
}

func signUpCmd(a *app) *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := a.readPassword(password)
			if err != nil {
				return err
			}
			user, err := a.rt.Session.SignUp(cmd.Context(), name, email, pw)
			if err != nil {
				return err
			}
			return a.printUser(user)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when empty)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func signInCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in and keep the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := a.readPassword(password)
			if err != nil {
				return err
			}
			user, err := a.rt.Session.SignIn(cmd.Context(), email, pw)
			if err != nil {
				return err
			}
			if _, err := a.rt.Cart.FetchRemote(cmd.Context()); err != nil {
				a.rt.Logger.Warn("cart not loaded after sign in", "error", err)
			}
			return a.printUser(user)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when empty)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func signOutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Forget the session on this machine",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.rt.SignOut()
			fmt.Fprintln(a.out, "signed out")
			return nil
		},
	}
}

func whoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			state := a.rt.Session.Snapshot()
			return a.emit(state, func(w io.Writer) {
				fmt.Fprintf(w, "status\t%s\n", state.Status)
				if state.User != nil {
					fmt.Fprintf(w, "name\t%s\n", state.User.Name)
					fmt.Fprintf(w, "email\t%s\n", state.User.Email)
				}
				if state.LastError != "" {
					fmt.Fprintf(w, "last error\t%s\n", state.LastError)
				}
			})
		},
	}
}

func profileCmd(a *app) *cobra.Command {
	var name, password string
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Change display name or password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := a.rt.Session.UpdateProfile(cmd.Context(), name, password)
			if err != nil {
				return err
			}
			return a.printUser(user)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New display name")
	cmd.Flags().StringVar(&password, "password", "", "New password")
	return cmd
}

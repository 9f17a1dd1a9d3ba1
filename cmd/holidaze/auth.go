package main

import (
	"errors"
	"fmt"
	"os"

	"holidaze/internal/auth"
	"holidaze/internal/holidazeapi"
	"holidaze/internal/models"

	"github.com/spf13/cobra"
)

func passwordFlag(pw string) (string, error) {
	if pw == "" {
		pw = os.Getenv("HOLIDAZE_PASSWORD")
	}
	if pw == "" {
		return "", errors.New("password is required (--password or HOLIDAZE_PASSWORD)")
	}
	return pw, nil
}

func newLoginCmd(get func() *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := passwordFlag(password)
			if err != nil {
				return err
			}
			profile, err := get().auth.Login(cmd.Context(), email, pw)
			if errors.Is(err, auth.ErrNoToken) {
				fmt.Fprintln(cmd.ErrOrStderr(), "Login succeeded but no access token was returned.")
				return err
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", profile.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newRegisterCmd(get func() *app) *cobra.Command {
	var (
		req    holidazeapi.RegisterRequest
		avatar string
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a Holidaze account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := passwordFlag(req.Password)
			if err != nil {
				return err
			}
			req.Password = pw
			if avatar != "" {
				req.Avatar = &models.Media{URL: avatar}
			}
			if err := auth.ValidateRegistration(req); err != nil {
				return err
			}
			profile, err := get().auth.Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s. You can now log in.\n", profile.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "profile name")
	cmd.Flags().StringVar(&req.Email, "email", "", "stud.noroff.no email")
	cmd.Flags().StringVar(&req.Password, "password", "", "password, at least 8 characters")
	cmd.Flags().StringVar(&avatar, "avatar", "", "avatar image URL")
	cmd.Flags().BoolVar(&req.VenueManager, "venue-manager", false, "register as a venue manager")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := get().auth.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"pasajes-cli/service"
	"pasajes-cli/store"
)

func newLoginCmd() *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the session token used to call the booking API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(token) == "" {
				prompt := promptui.Prompt{
					Label: "Token",
					Mask:  '*',
				}
				value, err := prompt.Run()
				if err != nil {
					return err
				}
				token = value
			}
			if _, err := service.CheckToken(token, time.Now()); err != nil {
				return err
			}
			sessions, err := store.NewSessionStore()
			if err != nil {
				return err
			}
			if err := sessions.Save(token); err != nil {
				return fmt.Errorf("save session: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged in.")
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "bearer token; prompted for when omitted")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := store.NewSessionStore()
			if err != nil {
				return err
			}
			if err := sessions.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

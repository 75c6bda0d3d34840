package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	usersCmd := &cobra.Command{Use: "users", Short: "User operations"}

	// create
	var email, displayName string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user (prints the one-time bearer token)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return fmt.Errorf("--email required")
			}
			payload := map[string]interface{}{"email": email}
			if displayName != "" {
				payload["displayName"] = displayName
			}
			data, err := doPostJSON(newClient(apiFlag, ""), "/api/users", payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	createCmd.Flags().StringVarP(&email, "email", "e", "", "User email (required)")
	createCmd.Flags().StringVarP(&displayName, "name", "n", "", "Display name")
	_ = createCmd.MarkFlagRequired("email")
	usersCmd.AddCommand(createCmd)

	// me
	meCmd := &cobra.Command{
		Use:   "me",
		Short: "Show the authenticated user",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(newClient(apiFlag, tokenFlag), "/api/users/me")
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	usersCmd.AddCommand(meCmd)

	rootCmd.AddCommand(usersCmd)
}

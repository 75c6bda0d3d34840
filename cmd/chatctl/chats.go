package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	chatsCmd := &cobra.Command{Use: "chats", Short: "Chat operations"}

	var title string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a chat",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{}
			if title != "" {
				payload["title"] = title
			}
			data, err := doPostJSON(newClient(apiFlag, tokenFlag), "/api/chats", payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	createCmd.Flags().StringVarP(&title, "title", "T", "", "Chat title")
	chatsCmd.AddCommand(createCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List chats, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(newClient(apiFlag, tokenFlag), "/api/chats")
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	chatsCmd.AddCommand(listCmd)

	messagesCmd := &cobra.Command{
		Use:   "messages CHAT_ID",
		Short: "List a chat's messages in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(newClient(apiFlag, tokenFlag), "/api/chats/"+args[0]+"/messages")
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	chatsCmd.AddCommand(messagesCmd)

	var newTitle string
	renameCmd := &cobra.Command{
		Use:   "rename CHAT_ID",
		Short: "Rename a chat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if newTitle == "" {
				return fmt.Errorf("--title required")
			}
			data, err := doPutJSON(newClient(apiFlag, tokenFlag), "/api/chats/"+args[0]+"/title", map[string]string{"title": newTitle})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	renameCmd.Flags().StringVarP(&newTitle, "title", "T", "", "New title (required)")
	_ = renameCmd.MarkFlagRequired("title")
	chatsCmd.AddCommand(renameCmd)

	rootCmd.AddCommand(chatsCmd)
}

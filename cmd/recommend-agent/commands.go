package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// --- chat ---

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive conversation with the agent",
	Long: `Interactive conversation with the agent.

Each turn updates the applicant profile from your message and, when the
profile allows, runs a program match. Type "quit" or "exit" to leave.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		userID, _ := cmd.Flags().GetString("user")
		sessionID, _ := cmd.Flags().GetString("session")

		fmt.Println("您好，我是留学推荐顾问。请介绍一下您的背景和申请目标。(输入 quit 退出)")

		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				break
			}
			input := strings.TrimSpace(scanner.Text())
			if input == "" {
				continue
			}
			if input == "quit" || input == "exit" {
				break
			}

			resp, err := client.post(cmd.Context(), "/chat", map[string]any{
				"input":      input,
				"user_id":    userID,
				"session_id": sessionID,
			})
			if err != nil {
				printError("%v", err)
				continue
			}

			var turn struct {
				Reply string `json:"reply"`
			}
			if err := decodeJSON(resp, &turn); err != nil {
				printError("%v", err)
				continue
			}

			fmt.Println(turn.Reply)
		}
		return scanner.Err()
	},
}

func init() {
	chatCmd.Flags().String("user", "", "user id (default: default_user)")
	chatCmd.Flags().String("session", "", "session id (default: default_session)")
}

// --- profile ---

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage the applicant profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current profile as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/profile")
		if err != nil {
			return err
		}

		var profile any
		if err := decodeJSON(resp, &profile); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(profile)
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a profile field",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		// Pass numbers through typed so gpa/rank_max/budget_max land as
		// numbers, not strings.
		var typed any = value
		var num json.Number
		if err := json.Unmarshal([]byte(value), &num); err == nil {
			if i, err := num.Int64(); err == nil {
				typed = i
			} else if f, err := num.Float64(); err == nil {
				typed = f
			}
		}

		resp, err := client.patch(cmd.Context(), "/profile", map[string]any{key: typed})
		if err != nil {
			return err
		}

		var result map[string]any
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSetCmd)
}

// --- history ---

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the session transcript",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/history")
		if err != nil {
			return err
		}

		var messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
			At      string `json:"at"`
		}
		if err := decodeJSON(resp, &messages); err != nil {
			return err
		}

		if len(messages) == 0 {
			fmt.Println("No messages yet.")
			return nil
		}

		for _, m := range messages {
			label := colorize(colorCyan, "["+m.Role+"]")
			if m.Role == "assistant" {
				label = colorize(colorGreen, "["+m.Role+"]")
			}
			fmt.Printf("%s %s\n", label, m.Content)
		}
		return nil
	},
}

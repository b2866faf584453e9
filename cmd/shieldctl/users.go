package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/cuemby/cybershield/pkg/storage"
	"github.com/spf13/cobra"
)

// Block list commands
var blockCmd = &cobra.Command{
	Use:   "block",
	Short: "Manage blocked users",
}

var blockListCmd = &cobra.Command{
	Use:   "list",
	Short: "List blocked users",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *storage.Store) error {
			for _, u := range s.BlockedUsers() {
				fmt.Fprintln(cmd.OutOrStdout(), u)
			}
			return nil
		})
	},
}

var blockAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Block a user from the quiz",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *storage.Store) error {
			if err := s.Block(args[0]); err != nil {
				return userError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s blocked\n", args[0])
			return nil
		})
	},
}

var blockRemoveCmd = &cobra.Command{
	Use:   "remove NAME",
	Short: "Unblock a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *storage.Store) error {
			if err := s.Unblock(args[0]); err != nil {
				return userError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s unblocked\n", args[0])
			return nil
		})
	},
}

var blockCheckCmd = &cobra.Command{
	Use:   "check NAME",
	Short: "Show whether a user may start the quiz",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *storage.Store) error {
			ok, denial := s.CanPlay(args[0])
			if ok {
				fmt.Fprintf(cmd.OutOrStdout(), "%s may play\n", args[0])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s may not play: %s\n", args[0], denial)
			return nil
		})
	},
}

func init() {
	blockCmd.AddCommand(blockListCmd)
	blockCmd.AddCommand(blockAddCmd)
	blockCmd.AddCommand(blockRemoveCmd)
	blockCmd.AddCommand(blockCheckCmd)
}

// Visitor commands
var visitorCmd = &cobra.Command{
	Use:   "visitor",
	Short: "Inspect visitor activity",
}

var visitorListCmd = &cobra.Command{
	Use:   "list",
	Short: "List visitors, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		window, _ := cmd.Flags().GetDuration("window")
		return withStore(cmd, func(s *storage.Store) error {
			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "USER\tLAST SEEN")
			for _, v := range s.RecentVisitors() {
				fmt.Fprintf(w, "%s\t%s\n", v.Username, v.LastSeen.Format(time.RFC3339))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\n%d active in the last %s\n", s.ActiveVisitorCount(window), window)
			return nil
		})
	},
}

var visitorTouchCmd = &cobra.Command{
	Use:   "touch NAME",
	Short: "Record activity for a visitor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *storage.Store) error {
			return userError(s.TouchVisitor(args[0]))
		})
	},
}

func init() {
	visitorCmd.AddCommand(visitorListCmd)
	visitorCmd.AddCommand(visitorTouchCmd)

	visitorListCmd.Flags().Duration("window", storage.DefaultActiveWindow, "Activity window for the online count")
}

// Global message commands
var messageCmd = &cobra.Command{
	Use:   "message [TEXT]",
	Short: "Show or set the broadcast message",
	Long: `Without arguments, prints the broadcast message. With TEXT, replaces it.
Use --clear to remove the message.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		clearMsg, _ := cmd.Flags().GetBool("clear")
		return withStore(cmd, func(s *storage.Store) error {
			out := cmd.OutOrStdout()
			switch {
			case clearMsg:
				if err := s.SetGlobalMessage(""); err != nil {
					return userError(err)
				}
				fmt.Fprintln(out, "✓ Message cleared")
			case len(args) == 1:
				if err := s.SetGlobalMessage(args[0]); err != nil {
					return userError(err)
				}
				fmt.Fprintln(out, "✓ Message set")
			default:
				msg, ok := s.GlobalMessage()
				if !ok {
					fmt.Fprintln(out, "No message")
					return nil
				}
				fmt.Fprintln(out, msg)
			}
			return nil
		})
	},
}

// Lockdown commands
var lockdownCmd = &cobra.Command{
	Use:       "lockdown [on|off]",
	Short:     "Show or switch quiz lockdown",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *storage.Store) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				state := "off"
				if s.Lockdown() {
					state = "on"
				}
				fmt.Fprintf(out, "Lockdown is %s\n", state)
				return nil
			}

			var on bool
			switch strings.ToLower(args[0]) {
			case "on":
				on = true
			case "off":
			default:
				return fmt.Errorf("lockdown must be 'on' or 'off'")
			}
			if err := s.SetLockdown(on); err != nil {
				return userError(err)
			}
			fmt.Fprintf(out, "✓ Lockdown %s\n", args[0])
			return nil
		})
	},
}

func init() {
	messageCmd.Flags().Bool("clear", false, "Remove the broadcast message")
}

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/cuemby/cybershield/pkg/storage"
	"github.com/spf13/cobra"
)

// Ticket commands
var ticketCmd = &cobra.Command{
	Use:   "ticket",
	Short: "Manage support tickets",
}

var ticketListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tickets, pending first",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		return withStore(cmd, func(s *storage.Store) error {
			tickets := s.TicketsForReview()
			if user != "" {
				tickets = s.TicketsByUser(user)
			}
			if len(tickets) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tickets")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tUSER\tSTATUS\tCREATED\tQUESTION")
			for _, t := range tickets {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					t.ID, t.UserName, t.Status, t.Timestamp.Format("2006-01-02 15:04"), t.Question)
			}
			return w.Flush()
		})
	},
}

var ticketCreateCmd = &cobra.Command{
	Use:   "create USER QUESTION",
	Short: "Open a ticket on behalf of a user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *storage.Store) error {
			t, err := s.CreateTicket(args[0], args[1])
			if err != nil {
				return userError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Ticket %s created\n", t.ID)
			return nil
		})
	},
}

var ticketResolveCmd = &cobra.Command{
	Use:   "resolve ID ANSWER",
	Short: "Answer a ticket",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *storage.Store) error {
			if err := s.ResolveTicket(args[0], args[1]); err != nil {
				return userError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Ticket %s resolved\n", args[0])
			return nil
		})
	},
}

var ticketDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a ticket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *storage.Store) error {
			if err := s.DeleteTicket(args[0]); err != nil {
				return userError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Ticket %s deleted\n", args[0])
			return nil
		})
	},
}

func init() {
	ticketCmd.AddCommand(ticketListCmd)
	ticketCmd.AddCommand(ticketCreateCmd)
	ticketCmd.AddCommand(ticketResolveCmd)
	ticketCmd.AddCommand(ticketDeleteCmd)

	ticketListCmd.Flags().String("user", "", "Only show tickets opened by this user")
}

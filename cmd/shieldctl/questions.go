package main

import (
	"fmt"

	"github.com/cuemby/cybershield/pkg/storage"
	"github.com/spf13/cobra"
)

// Custom question commands
var questionCmd = &cobra.Command{
	Use:   "question",
	Short: "Manage custom quiz questions",
}

var questionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List custom questions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *storage.Store) error {
			out := cmd.OutOrStdout()
			questions := s.ListQuestions()
			if len(questions) == 0 {
				fmt.Fprintln(out, "No custom questions")
				return nil
			}
			for _, q := range questions {
				fmt.Fprintf(out, "%s  %s\n", q.ID, q.Text)
				for _, opt := range q.Options {
					fmt.Fprintf(out, "    %s  %s\n", opt.ID, opt.Text)
				}
			}
			return nil
		})
	},
}

var questionAddCmd = &cobra.Command{
	Use:   "add TEXT OPTION OPTION [OPTION...]",
	Short: "Add a custom question",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *storage.Store) error {
			q, err := s.AddQuestion(args[0], args[1:])
			if err != nil {
				return userError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Question %s added with %d options\n", q.ID, len(q.Options))
			return nil
		})
	},
}

var questionDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a custom question",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *storage.Store) error {
			if err := s.DeleteQuestion(args[0]); err != nil {
				return userError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Question %s deleted\n", args[0])
			return nil
		})
	},
}

func init() {
	questionCmd.AddCommand(questionListCmd)
	questionCmd.AddCommand(questionAddCmd)
	questionCmd.AddCommand(questionDeleteCmd)
}

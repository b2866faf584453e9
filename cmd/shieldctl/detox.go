package main

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/cuemby/cybershield/pkg/storage"
	"github.com/spf13/cobra"
)

// Digital detox commands
var detoxCmd = &cobra.Command{
	Use:   "detox",
	Short: "Manage the digital detox leaderboard",
}

var detoxLoginCmd = &cobra.Command{
	Use:   "login EMAIL NAME",
	Short: "Create or refresh a detox profile",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *storage.Store) error {
			p, err := s.DetoxLogin(args[0], args[1])
			if err != nil {
				return userError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s): %d points\n", p.Name, p.Email, p.TotalPoints)
			return nil
		})
	},
}

var detoxSubmitCmd = &cobra.Command{
	Use:   "submit EMAIL HOURS",
	Short: "Record today's screen time",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		hours, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid hours %q: %w", args[1], err)
		}
		evidence := ""
		if path, _ := cmd.Flags().GetString("evidence"); path != "" {
			evidence, err = readEvidence(path)
			if err != nil {
				return err
			}
		}

		return withStore(cmd, func(s *storage.Store) error {
			res, err := s.Submit(args[0], hours, evidence)
			if err != nil {
				return userError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ +%d points, total %d\n", res.Points, res.NewTotal)
			return nil
		})
	},
}

var detoxCorrectCmd = &cobra.Command{
	Use:   "correct LOG_ID POINTS",
	Short: "Change the points of a log",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		points, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid points %q: %w", args[1], err)
		}
		return withStore(cmd, func(s *storage.Store) error {
			if err := s.Correct(args[0], points); err != nil {
				return userError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Log %s corrected\n", args[0])
			return nil
		})
	},
}

var detoxRetractCmd = &cobra.Command{
	Use:   "retract LOG_ID",
	Short: "Remove a log and take back its points",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *storage.Store) error {
			if err := s.Retract(args[0]); err != nil {
				return userError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Log %s retracted\n", args[0])
			return nil
		})
	},
}

var detoxSetPointsCmd = &cobra.Command{
	Use:   "set-points EMAIL TOTAL",
	Short: "Override a user's total without touching logs",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		total, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid total %q: %w", args[1], err)
		}
		return withStore(cmd, func(s *storage.Store) error {
			if err := s.SetAbsolute(args[0], total); err != nil {
				return userError(err)
			}
			stored, derived := s.LedgerDrift(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Total set to %d (logs add up to %d)\n", stored, derived)
			return nil
		})
	},
}

var detoxLeaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show profiles by points",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *storage.Store) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "RANK\tNAME\tEMAIL\tPOINTS\tDRIFT")
			for i, p := range s.Rank() {
				stored, derived := s.LedgerDrift(p.Email)
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\n", i+1, p.Name, p.Email, p.TotalPoints, stored-derived)
			}
			return w.Flush()
		})
	},
}

var detoxLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "List screen-time logs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		return withStore(cmd, func(s *storage.Store) error {
			logs := s.LogsForReview()
			if email != "" {
				logs = s.LogsByEmail(email)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tEMAIL\tDATE\tHOURS\tPOINTS\tEVIDENCE")
			for _, l := range logs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%.1f\t%d\t%t\n", l.ID, l.Email, l.DateStr, l.Hours, l.Points, l.HasEvidence())
			}
			return w.Flush()
		})
	},
}

// readEvidence loads a screenshot for submission. A file holding base64
// text is used as is, without surrounding whitespace; any other file is
// taken as the raw image and encoded.
func readEvidence(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read evidence: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("evidence file %s is empty", path)
	}

	text := strings.TrimSpace(string(data))
	if text != "" {
		if _, err := base64.StdEncoding.DecodeString(text); err == nil {
			return text, nil
		}
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func init() {
	detoxCmd.AddCommand(detoxLoginCmd)
	detoxCmd.AddCommand(detoxSubmitCmd)
	detoxCmd.AddCommand(detoxCorrectCmd)
	detoxCmd.AddCommand(detoxRetractCmd)
	detoxCmd.AddCommand(detoxSetPointsCmd)
	detoxCmd.AddCommand(detoxLeaderboardCmd)
	detoxCmd.AddCommand(detoxLogsCmd)

	detoxSubmitCmd.Flags().String("evidence", "", "Screenshot file, raw image or base64 text")
	detoxLogsCmd.Flags().String("email", "", "Only show logs of this user")
}

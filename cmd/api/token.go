package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/cardcycle/internal/auth"
)

var flagTokenTTL time.Duration

var issueTokenCmd = &cobra.Command{
	Use:   "issue-token <user-id>",
	Short: "Print a bearer token for a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runIssueToken,
}

func init() {
	issueTokenCmd.Flags().DurationVar(&flagTokenTTL, "ttl", 24*time.Hour, "Token lifetime")
	rootCmd.AddCommand(issueTokenCmd)
}

func runIssueToken(cmd *cobra.Command, args []string) error {
	userID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("parse user id: %w", err)
	}

	if flagTokenTTL <= 0 {
		return fmt.Errorf("--ttl must be positive")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	token, err := auth.New(cfg.Auth.Secret, cfg.Auth.Issuer).IssueToken(userID, flagTokenTTL)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)

	return nil
}

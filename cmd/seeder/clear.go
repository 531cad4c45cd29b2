package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete demo users (all users with --all)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		all, _ := cmd.Flags().GetBool("all")

		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		ctx := cmd.Context()
		c, err := connect(ctx, logger)
		if err != nil {
			return err
		}
		defer c.Close()

		users, err := c.ListUsers(ctx)
		if err != nil {
			return err
		}
		deleted := 0
		for i := range users {
			if !all && !strings.HasPrefix(users[i].ID, "demo-") {
				continue
			}
			if err := c.DeleteUser(ctx, users[i].ID); err != nil {
				return fmt.Errorf("clear %s: %w", users[i].ID, err)
			}
			deleted++
		}
		logger.Info("clear complete", zap.Int("deleted", deleted))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clearCmd)

	clearCmd.Flags().Bool("all", false, "delete every user, not only demo ones")
}

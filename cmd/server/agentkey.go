package main

import (
	"fmt"

	"hypoforum/internal/errs"
	"hypoforum/internal/middleware"
	"hypoforum/internal/models"

	"github.com/spf13/cobra"
)

func newAgentKeyCmd() *cobra.Command {
	var userID uint
	cmd := &cobra.Command{
		Use:   "agent-key",
		Short: "issue a new API key for a user, replacing the old one",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if userID == 0 {
				return fmt.Errorf("--user is required")
			}
			cfg, err := bootstrap()
			if err != nil {
				return err
			}
			gdb, err := openDB(cfg)
			if err != nil {
				return err
			}

			key, hash, err := middleware.GenerateAgentKey(userID)
			if err != nil {
				return err
			}
			res := gdb.WithContext(cmd.Context()).Model(&models.User{}).
				Where("id = ?", userID).
				Update("agent_key_hash", hash)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errs.ErrUserNotFound
			}

			// 只显示一次
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}
	cmd.Flags().UintVar(&userID, "user", 0, "user id the key belongs to")
	return cmd
}

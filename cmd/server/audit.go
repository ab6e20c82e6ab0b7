package main

import (
	"encoding/json"
	"fmt"
	"os"

	"hypoforum/internal/services"

	"github.com/spf13/cobra"
)

func newAuditCmd() *cobra.Command {
	var refreshHot bool
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "check every vote aggregate against the vote ledger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := bootstrap()
			if err != nil {
				return err
			}
			gdb, err := openDB(cfg)
			if err != nil {
				return err
			}

			auditor := services.NewAuditor(gdb, 0)
			report, err := auditor.AuditAll(cmd.Context())
			if err != nil {
				return err
			}
			if refreshHot {
				if _, err := auditor.RefreshRecentHotScores(cmd.Context()); err != nil {
					return err
				}
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
			if len(report.Drifts) > 0 {
				return fmt.Errorf("%d aggregates drifted from the vote ledger", len(report.Drifts))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&refreshHot, "refresh-hot", false, "also recompute hot scores of recently active threads")
	return cmd
}

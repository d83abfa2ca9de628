package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/michaelayoade/ontbridge/pkg/audit"
	"github.com/michaelayoade/ontbridge/pkg/cli"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "View audit logs",
	Long: `View audit logs of management actions.

Every management action is logged with:
  - Timestamp
  - Actor who requested the action
  - Action and target entity
  - Success/failure status

Examples:
  ontbridge audit list --entity ont:<id>
  ontbridge audit list --last 24h
  ontbridge audit list --failures`,
}

var (
	auditActor    string
	auditAction   string
	auditEntity   string
	auditLast     string
	auditLimit    int
	auditFailures bool
)

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List audit events",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := audit.Filter{
			Actor:       auditActor,
			Action:      auditAction,
			Entity:      auditEntity,
			Limit:       auditLimit,
			FailureOnly: auditFailures,
		}

		if auditLast != "" {
			duration, err := time.ParseDuration(auditLast)
			if err != nil {
				return fmt.Errorf("invalid duration: %s", auditLast)
			}
			filter.StartTime = time.Now().Add(-duration)
		}

		events, err := audit.Query(filter)
		if err != nil {
			return fmt.Errorf("querying audit log: %w", err)
		}

		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(events)
		}

		if len(events) == 0 {
			fmt.Println("No audit events found")
			return nil
		}

		t := cli.NewTable("TIMESTAMP", "ACTOR", "ACTION", "ENTITY", "STATUS")
		for _, event := range events {
			status := cli.Green("ok")
			if !event.Success {
				status = cli.Red("failed")
			}
			t.Row(
				event.Timestamp.Format("2006-01-02 15:04:05"),
				event.Actor,
				event.Action,
				event.Entity,
				status,
			)
		}
		t.Flush()
		return nil
	},
}

func init() {
	auditListCmd.Flags().StringVar(&auditActor, "actor", "", "Filter by actor")
	auditListCmd.Flags().StringVar(&auditAction, "action", "", "Filter by action")
	auditListCmd.Flags().StringVar(&auditEntity, "entity", "", "Filter by entity (e.g. ont:<id>, job:<id>)")
	auditListCmd.Flags().StringVar(&auditLast, "last", "", "Show events from last duration (e.g. 24h)")
	auditListCmd.Flags().IntVar(&auditLimit, "limit", 100, "Maximum events to show")
	auditListCmd.Flags().BoolVar(&auditFailures, "failures", false, "Show only failed actions")

	addOutputFlags(auditCmd)
	auditCmd.AddCommand(auditListCmd)
}

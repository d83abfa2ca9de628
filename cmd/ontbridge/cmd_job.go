package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/michaelayoade/ontbridge/pkg/cli"
	"github.com/michaelayoade/ontbridge/pkg/ledger"
	"github.com/michaelayoade/ontbridge/pkg/store"
)

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Manage durable management jobs",
	Long: `Manage the durable ledger of management commands.

A job records one command targeting a registered ONT. Creating a job queues
it; executing hands it to the ONT's ACS. Failed jobs may be executed again;
queued jobs may be canceled. Jobs are never deleted.

Lifecycle: queued -> running -> succeeded | failed, queued -> canceled

Examples:
  ontbridge job create <registration-id> reboot --label "nightly reboot"
  ontbridge job execute <job-id>
  ontbridge job list --device <registration-id>`,
}

var (
	jobLabel       string
	jobPayloadJSON string
	jobDevice      string
)

var jobCreateCmd = &cobra.Command{
	Use:   "create <registration-id> <command>",
	Short: "Queue a management job",
	Long: `Queue a management job for a registered ONT.

The command is a GenieACS task name (reboot, factoryReset, refreshObject,
setParameterValues, download, ...). Task arguments go in --payload as JSON.

Examples:
  ontbridge job create <id> reboot
  ontbridge job create <id> refreshObject --payload '{"objectName":"Device.WiFi."}'`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var payload map[string]interface{}
		if jobPayloadJSON != "" {
			if err := json.Unmarshal([]byte(jobPayloadJSON), &payload); err != nil {
				return fmt.Errorf("invalid --payload: %w", err)
			}
		}

		ctx := context.Background()
		st, closer, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closer()

		job, err := newLedger(st).Create(ctx, args[0], jobLabel, args[1], payload)
		if err != nil {
			return err
		}
		fmt.Printf("Job %s queued: %s\n", job.ID, ledger.Describe(job))
		return nil
	},
}

var jobListCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		st, closer, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closer()

		jobs, err := st.ListJobs(ctx, jobDevice)
		if err != nil {
			return err
		}
		if jsonOutput {
			return cli.PrintJSON(jobs)
		}
		if len(jobs) == 0 {
			fmt.Println("No jobs")
			return nil
		}

		t := cli.NewTable("ID", "DEVICE", "COMMAND", "LABEL", "STATUS", "CREATED")
		for _, job := range jobs {
			t.Row(job.ID, job.DeviceID, job.Command, job.Label,
				cli.Status(string(job.Status)),
				job.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		t.Flush()
		return nil
	},
}

var jobShowCmd = &cobra.Command{
	Use:   "show <job-id>",
	Short: "Show one job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		st, closer, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closer()

		job, err := st.GetJob(ctx, args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return cli.PrintJSON(job)
		}
		printJob(job)
		return nil
	},
}

var jobExecuteCmd = &cobra.Command{
	Use:   "execute <job-id>",
	Short: "Hand a job to the ONT's ACS",
	Long: `Hand a queued (or previously failed) job to the ONT's ACS.

The job moves to running before the remote call and lands in succeeded or
failed afterward. A remote failure is recorded on the job, not raised.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		st, closer, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closer()

		job, err := newLedger(st).Execute(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Println(ledger.Describe(job))
		if job.Status == store.JobFailed {
			return fmt.Errorf("job failed")
		}
		return nil
	},
}

var jobCancelCmd = &cobra.Command{
	Use:   "cancel <job-id>",
	Short: "Cancel a queued job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		st, closer, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closer()

		job, err := newLedger(st).Cancel(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Job %s canceled\n", job.ID)
		return nil
	},
}

func printJob(job *store.ManagementJob) {
	t := cli.NewTable("FIELD", "VALUE")
	t.Row("id", job.ID)
	t.Row("device", job.DeviceID)
	t.Row("command", job.Command)
	if job.Label != "" {
		t.Row("label", job.Label)
	}
	t.Row("status", cli.Status(string(job.Status)))
	if job.Error != "" {
		t.Row("error", cli.Red(job.Error))
	}
	t.Row("created", job.CreatedAt.Format("2006-01-02 15:04:05"))
	if job.StartedAt != nil {
		t.Row("started", job.StartedAt.Format("2006-01-02 15:04:05"))
	}
	if job.CompletedAt != nil {
		t.Row("completed", job.CompletedAt.Format("2006-01-02 15:04:05"))
	}
	t.Flush()

	if len(job.Payload) > 0 {
		fmt.Println()
		fmt.Println(cli.Bold("payload"))
		cli.PrintJSON(job.Payload)
	}
}

func init() {
	jobCreateCmd.Flags().StringVar(&jobLabel, "label", "", "Human-readable job label")
	jobCreateCmd.Flags().StringVar(&jobPayloadJSON, "payload", "", "Task payload (JSON)")
	jobListCmd.Flags().StringVar(&jobDevice, "device", "", "Filter by registration id")

	addOutputFlags(jobCmd)
	jobCmd.AddCommand(jobCreateCmd)
	jobCmd.AddCommand(jobListCmd)
	jobCmd.AddCommand(jobShowCmd)
	jobCmd.AddCommand(jobExecuteCmd)
	jobCmd.AddCommand(jobCancelCmd)
}

package main

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/Cavedragon13/ai-image-organizer/pkg/models"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status JOB_ID",
		Short: "Show a job's progress and results from a server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid job id %q: %w", args[0], err)
			}

			client := newAPIClient(ctx.serverURL, ctx.apiKey)
			var job models.Job
			if err := client.get(cmd.Context(), "/api/v1/jobs/"+id.String(), nil, &job, nil); err != nil {
				return err
			}
			printJob(cmd.OutOrStdout(), job)
			return nil
		},
	}
}

func newJobsCommand(ctx *commandContext) *cobra.Command {
	var status string
	var limit int

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List jobs known to a server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if status != "" {
				query.Set("status", status)
			}
			if limit > 0 {
				query.Set("limit", strconv.Itoa(limit))
			}

			client := newAPIClient(ctx.serverURL, ctx.apiKey)
			var list []models.Job
			var meta pageMeta
			if err := client.get(cmd.Context(), "/api/v1/jobs", query, &list, &meta); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No jobs")
				return nil
			}
			rows := make([][]string, 0, len(list))
			for _, j := range list {
				rows = append(rows, []string{
					j.ID.String(),
					string(j.Status),
					fmt.Sprintf("%.0f%%", j.Progress),
					strconv.Itoa(j.TotalImages),
					j.InputFolder,
					j.CreatedAt.Local().Format(time.DateTime),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Status", "Progress", "Images", "Input", "Created"},
				rows,
				2, 3,
			))
			if meta.HasNext {
				fmt.Fprintf(out, "Showing %d of %d jobs\n", len(list), meta.Total)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Only list jobs in this status (pending, running, completed, failed)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of jobs to list")

	return cmd
}

func printJob(out io.Writer, job models.Job) {
	fmt.Fprintf(out, "Job:      %s\n", job.ID)
	fmt.Fprintf(out, "Status:   %s\n", job.Status)
	fmt.Fprintf(out, "Progress: %.0f%% (%d/%d images)\n", job.Progress, job.ProcessedImages, job.TotalImages)
	if job.CurrentActivity != "" {
		fmt.Fprintf(out, "Activity: %s\n", job.CurrentActivity)
	}
	fmt.Fprintf(out, "Input:    %s\n", job.InputFolder)
	fmt.Fprintf(out, "Output:   %s\n", job.OutputFolder)
	if job.Error != "" {
		fmt.Fprintf(out, "Error:    %s (%s)\n", job.Error, job.ErrorKind)
	}
	if job.Results != nil {
		printResults(out, job)
	}
}

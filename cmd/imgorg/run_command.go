package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/Cavedragon13/ai-image-organizer/internal/ai"
	"github.com/Cavedragon13/ai-image-organizer/internal/cache"
	"github.com/Cavedragon13/ai-image-organizer/internal/config"
	"github.com/Cavedragon13/ai-image-organizer/internal/jobs"
	"github.com/Cavedragon13/ai-image-organizer/pkg/models"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const (
	pollInterval     = 250 * time.Millisecond
	localStopTimeout = 5 * time.Second
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		input        string
		output       string
		model        string
		threshold    float64
		minGroupSize int
		move         bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Describe, group and organize a folder of images in-process",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			stderr := &lockedWriter{w: cmd.ErrOrStderr()}
			slog.SetDefault(slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{
				Level: slog.LevelWarn,
			})))

			settings := cfg.Jobs.Defaults
			flags := cmd.Flags()
			if flags.Changed("model") {
				settings.Model = model
			}
			if flags.Changed("threshold") {
				settings.SimilarityThreshold = threshold
			}
			if flags.Changed("min-group-size") {
				settings.MinGroupSize = minGroupSize
			}
			if move {
				settings.CopyFiles = false
			}

			provider, err := ctx.newProvider(cfg.AI)
			if err != nil {
				return fmt.Errorf("create AI provider: %w", err)
			}
			svc := ai.NewService(provider, cache.NopCache{}, cfg.AI.InferenceTimeout, 0)

			manager := jobs.NewManager(jobs.NewPipeline(svc, svc, nil), config.JobsConfig{Workers: 1, QueueSize: 1})
			manager.Start()
			defer func() {
				stopCtx, cancel := context.WithTimeout(context.Background(), localStopTimeout)
				defer cancel()
				_ = manager.Shutdown(stopCtx)
			}()

			id, err := manager.Submit(cmd.Context(), input, output, settings)
			if err != nil {
				return err
			}

			job, err := waitForJob(cmd.Context(), manager, id, stderr)
			if err != nil {
				return err
			}
			if job.Status == models.JobStatusFailed {
				return fmt.Errorf("job %s failed (%s): %s", job.ID, job.ErrorKind, job.Error)
			}

			printResults(cmd.OutOrStdout(), job)
			return nil
		},
	}

	defaults := models.DefaultSettings()
	cmd.Flags().StringVarP(&input, "input", "i", "", "Folder containing the images to organize")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Folder that receives the group folders")
	cmd.Flags().StringVar(&model, "model", defaults.Model, "Vision model used to describe images")
	cmd.Flags().Float64Var(&threshold, "threshold", defaults.SimilarityThreshold, "Cosine similarity needed to join a group, in (0,1]")
	cmd.Flags().IntVar(&minGroupSize, "min-group-size", defaults.MinGroupSize, "Smallest cluster that gets its own folder")
	cmd.Flags().BoolVar(&move, "move", false, "Move files instead of copying them")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

type jobGetter interface {
	Get(id uuid.UUID) (models.Job, error)
}

// waitForJob polls until the job is terminal, printing each new activity to progress.
func waitForJob(ctx context.Context, getter jobGetter, id uuid.UUID, progress io.Writer) (models.Job, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	lastActivity := ""
	for {
		job, err := getter.Get(id)
		if err != nil {
			return models.Job{}, err
		}
		if job.CurrentActivity != "" && job.CurrentActivity != lastActivity {
			fmt.Fprintf(progress, "[%3.0f%%] %s\n", job.Progress, job.CurrentActivity)
			lastActivity = job.CurrentActivity
		}
		if job.Status.Terminal() {
			return job, nil
		}

		select {
		case <-ctx.Done():
			return job, ctx.Err()
		case <-ticker.C:
		}
	}
}

func printResults(out io.Writer, job models.Job) {
	if job.Results == nil {
		fmt.Fprintln(out, "No results")
		return
	}
	rows := make([][]string, 0, len(job.Results.Groups))
	for _, g := range job.Results.Groups {
		rows = append(rows, []string{g.Name, strconv.Itoa(g.Images)})
	}
	fmt.Fprintln(out, renderTable([]string{"Group", "Images"}, rows, 1))
	fmt.Fprintf(out, "Organized %d images into %d groups in %s\n",
		job.Results.TotalImages, job.Results.GroupsCreated, job.OutputFolder)
}

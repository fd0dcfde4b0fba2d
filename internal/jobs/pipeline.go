package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/Cavedragon13/ai-image-organizer/internal/analysis"
	"github.com/Cavedragon13/ai-image-organizer/internal/metrics"
	"github.com/Cavedragon13/ai-image-organizer/internal/naming"
	"github.com/Cavedragon13/ai-image-organizer/internal/organizer"
	"github.com/Cavedragon13/ai-image-organizer/internal/scan"
	"github.com/Cavedragon13/ai-image-organizer/pkg/models"
	"github.com/google/uuid"
)

const (
	activityGrouping   = "Grouping similar images..."
	activityOrganizing = "Organizing files..."
	activityComplete   = "Complete!"
)

// PlacementRecorder persists one row per file the organizer writes.
type PlacementRecorder interface {
	CreatePlacement(ctx context.Context, p *models.Placement) error
}

// Pipeline runs the phases of one job: discover, describe each image,
// group, organize.
type Pipeline struct {
	describer models.Describer
	grouper   *analysis.Grouper
	recorder  PlacementRecorder
}

// NewPipeline wires the capabilities a job needs. recorder may be nil.
func NewPipeline(describer models.Describer, embedder models.Embedder, recorder PlacementRecorder) *Pipeline {
	return &Pipeline{
		describer: describer,
		grouper:   analysis.NewGrouper(embedder),
		recorder:  recorder,
	}
}

// updateFunc applies a mutation to the job under the registry lock.
type updateFunc func(fn func(*models.Job))

// Run executes the phases strictly in order. Any returned error is a
// *PhaseError and is fatal to the job.
func (p *Pipeline) Run(ctx context.Context, job models.Job, update updateFunc) (*models.JobResults, error) {
	logger := slog.With("job_id", job.ID)

	paths, err := scan.Discover(job.InputFolder)
	if err != nil {
		return nil, phaseError(PhaseDiscover, KindInternal, err)
	}
	if len(paths) == 0 {
		return nil, phaseError(PhaseDiscover, KindNoImagesFound,
			fmt.Errorf("%w in %s", ErrNoImagesFound, job.InputFolder))
	}
	update(func(j *models.Job) { j.TotalImages = len(paths) })
	logger.Info("images discovered", "count", len(paths), "input_folder", job.InputFolder)

	records := p.describeAll(ctx, logger, paths, job.Settings.Model, update)
	if len(records) == 0 {
		return nil, phaseError(PhaseDescribe, KindNoImagesFound,
			fmt.Errorf("%w: none of %d files in %s could be read", ErrNoImagesFound, len(paths), job.InputFolder))
	}

	update(func(j *models.Job) {
		j.Progress = 50
		j.CurrentActivity = activityGrouping
	})
	groups, err := p.grouper.Group(ctx, records, job.Settings.SimilarityThreshold, job.Settings.MinGroupSize)
	if err != nil {
		kind := KindEmbeddingBackend
		if errors.Is(err, analysis.ErrDegenerateEmbedding) {
			kind = KindGrouping
		}
		return nil, phaseError(PhaseGroup, kind, err)
	}
	logger.Info("images grouped", "images", len(records), "groups", len(groups))

	update(func(j *models.Job) {
		j.Progress = 75
		j.CurrentActivity = activityOrganizing
	})
	org := organizer.New(organizer.WithPlacementFunc(p.placementFunc(job.ID, logger)))
	if err := org.Organize(ctx, groups, job.OutputFolder, job.Settings.CopyFiles); err != nil {
		return nil, phaseError(PhaseOrganize, KindOrganize, err)
	}

	return summarize(records, groups), nil
}

// describeAll builds one ImageRecord per readable image, in discovery order.
// Unreadable files are skipped; captioning failures fall back to
// naming.UnknownImage.
func (p *Pipeline) describeAll(ctx context.Context, logger *slog.Logger, paths []string, model string, update updateFunc) []models.ImageRecord {
	records := make([]models.ImageRecord, 0, len(paths))
	n := len(paths)

	for i, path := range paths {
		name := filepath.Base(path)
		if rec, ok := p.describeOne(ctx, logger, path, model); ok {
			records = append(records, rec)
		}

		done := i + 1
		update(func(j *models.Job) {
			j.ProcessedImages = done
			j.CurrentActivity = name
			j.Progress = 50 * float64(done) / float64(n)
		})
	}
	return records
}

func (p *Pipeline) describeOne(ctx context.Context, logger *slog.Logger, path, model string) (models.ImageRecord, bool) {
	meta, err := scan.Probe(path)
	if err != nil {
		logger.Warn("skipping unreadable image", "path", path, "error", err)
		return models.ImageRecord{}, false
	}

	desc, err := p.describer.Describe(ctx, path, model)
	if err != nil {
		logger.Warn("describe failed, using fallback", "path", path, "error", err)
		metrics.IncreaseImagesDescribed("fallback")
		desc = naming.UnknownImage
	} else {
		metrics.IncreaseImagesDescribed("ok")
	}
	desc = naming.NormalizeDescription(desc)

	return models.ImageRecord{
		SourcePath:        path,
		OriginalName:      filepath.Base(path),
		Description:       desc,
		CandidateFilename: naming.Sanitize(desc, filepath.Ext(path)),
		Width:             meta.Width,
		Height:            meta.Height,
		SizeBytes:         meta.SizeBytes,
	}, true
}

func (p *Pipeline) placementFunc(jobID uuid.UUID, logger *slog.Logger) organizer.PlacementFunc {
	return func(ctx context.Context, group string, rec models.ImageRecord, dest string, copied bool) {
		metrics.IncreaseImagesPlaced()
		if p.recorder == nil {
			return
		}
		err := p.recorder.CreatePlacement(ctx, &models.Placement{
			ID:              uuid.New(),
			JobID:           jobID,
			GroupName:       group,
			SourcePath:      rec.SourcePath,
			DestinationPath: dest,
			Description:     rec.Description,
			Copied:          copied,
			CreatedAt:       time.Now().UTC(),
		})
		if err != nil {
			logger.Warn("recording placement failed", "dest", dest, "error", err)
		}
	}
}

func summarize(records []models.ImageRecord, groups []models.Group) *models.JobResults {
	res := &models.JobResults{
		TotalImages:   len(records),
		GroupsCreated: len(groups),
		Groups:        make([]models.GroupSummary, 0, len(groups)),
	}
	for _, g := range groups {
		res.Groups = append(res.Groups, models.GroupSummary{Name: g.Name, Images: len(g.Members)})
	}
	return res
}

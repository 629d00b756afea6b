package server

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/cwbudde/imagefidelity/internal/butteraugli"
	"github.com/cwbudde/imagefidelity/internal/colorspace"
	"github.com/cwbudde/imagefidelity/internal/metrics"
	"github.com/cwbudde/imagefidelity/internal/packed"
	"github.com/cwbudde/imagefidelity/internal/report"
	"github.com/cwbudde/imagefidelity/internal/worker"
)

// runJob executes a comparison job: every candidate is scored against the
// reference with the perceptual distance and PSNR. Per-candidate failures
// become sentinel-scored records with the diagnostic attached; only a
// missing reference fails the whole job.
func runJob(ctx context.Context, jm *JobManager, store *report.FSStore, jobID string) {
	job, exists := jm.GetJob(jobID)
	if !exists {
		slog.Error("job disappeared before start", "jobID", jobID)
		return
	}
	config := job.Config

	if err := jm.UpdateJob(jobID, func(j *Job) { j.State = StateRunning }); err != nil {
		slog.Error("failed to mark job running", "jobID", jobID, "error", err)
		return
	}

	ref, err := packed.Load(config.RefPath)
	if err != nil {
		failJob(jm, jobID, err)
		return
	}

	var enc *colorspace.Encoding
	if config.Colorspace != "" {
		parsed, err := colorspace.ParseDescription(config.Colorspace)
		if err != nil {
			failJob(jm, jobID, err)
			return
		}
		enc = &parsed
		ref.Encoding = enc
	}

	params := butteraugli.DefaultParams()
	if config.Norm > 0 {
		params.Norm = config.Norm
	}
	if config.IntensityTarget > 0 {
		params.IntensityTarget = config.IntensityTarget
	}
	pool := worker.New(config.Workers)
	slog.Info("job running", "jobID", jobID, "candidates", len(config.Candidates), "workers", pool.Workers())

	records := make([]report.Record, 0, len(config.Candidates))
	for _, path := range config.Candidates {
		select {
		case <-ctx.Done():
			failJob(jm, jobID, ctx.Err())
			return
		default:
		}
		records = append(records, compareOne(ref, config.RefPath, path, enc, params, pool))
	}

	rep := &report.Report{
		JobID:     jobID,
		Reference: config.RefPath,
		Created:   time.Now(),
		Records:   records,
	}
	if store != nil {
		if err := store.Save(jobID, rep); err != nil {
			slog.Error("failed to persist report", "jobID", jobID, "error", err)
		}
	}

	now := time.Now()
	if err := jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.Records = records
		j.EndTime = &now
	}); err != nil {
		slog.Error("failed to mark job completed", "jobID", jobID, "error", err)
		return
	}
	slog.Info("job completed", "jobID", jobID, "candidates", len(records))
}

// compareOne scores a single candidate, degrading failures to sentinel
// scores so the batch keeps going. A non-nil enc overrides the candidate's
// assumed source encoding, matching the reference.
func compareOne(ref *packed.Image, refPath, candPath string, enc *colorspace.Encoding, params butteraugli.Params, pool *worker.Pool) report.Record {
	start := time.Now()
	rec := report.Record{Reference: refPath, Candidate: candPath}

	cand, err := packed.Load(candPath)
	if err != nil {
		rec.Error = err.Error()
		rec.Distance = math.MaxFloat64
		rec.ElapsedMS = float64(time.Since(start).Microseconds()) / 1000
		return rec
	}
	cand.Encoding = enc

	score, distmap, err := metrics.Distance(ref, cand, params, pool)
	if err != nil {
		rec.Error = err.Error()
		rec.Distance = math.MaxFloat64
	} else {
		rec.Distance = score
		rec.Norm3 = metrics.PoolNorm(distmap, params, 3)
	}
	rec.PSNR = metrics.Psnr(ref, cand, nil)
	rec.ElapsedMS = float64(time.Since(start).Microseconds()) / 1000
	return rec
}

func failJob(jm *JobManager, jobID string, err error) {
	slog.Error("job failed", "jobID", jobID, "error", err)
	now := time.Now()
	if uerr := jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &now
	}); uerr != nil {
		slog.Error("failed to mark job failed", "jobID", jobID, "error", uerr)
	}
}

package main

import (
	"fmt"
	"math"
	"time"

	"github.com/cwbudde/imagefidelity/internal/butteraugli"
	"github.com/cwbudde/imagefidelity/internal/colorspace"
	"github.com/cwbudde/imagefidelity/internal/metrics"
	"github.com/cwbudde/imagefidelity/internal/packed"
	"github.com/cwbudde/imagefidelity/internal/report"
	"github.com/cwbudde/imagefidelity/internal/worker"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	batchNorm       float64
	batchWorkers    int
	batchOut        string
	batchColorspace string
)

var batchCmd = &cobra.Command{
	Use:   "batch <reference> <candidate>...",
	Short: "Compare many candidates against one reference",
	Long: `Scores every candidate against the reference and writes a JSON report.
Individual failures are recorded with sentinel scores instead of aborting
the run.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().Float64Var(&batchNorm, "norm", 3, "Pooling exponent for the perceptual distance")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "Worker goroutines for conversion/transform (0 = all CPUs)")
	batchCmd.Flags().StringVar(&batchOut, "out", "./data", "Report store directory")
	batchCmd.Flags().StringVar(&batchColorspace, "colorspace", "", "Source encoding of all inputs, e.g. RGB_D65_SRG_Rel_Lin (default sRGB)")

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	refPath := args[0]
	candidates := args[1:]

	ref, err := packed.Load(refPath)
	if err != nil {
		return fmt.Errorf("failed to load reference: %w", err)
	}

	var enc *colorspace.Encoding
	if batchColorspace != "" {
		parsed, err := colorspace.ParseDescription(batchColorspace)
		if err != nil {
			return fmt.Errorf("invalid colorspace: %w", err)
		}
		enc = &parsed
		ref.Encoding = enc
	}

	params := butteraugli.DefaultParams()
	params.Norm = batchNorm
	pool := worker.New(batchWorkers)

	records := make([]report.Record, 0, len(candidates))
	for _, candPath := range candidates {
		start := time.Now()
		rec := report.Record{Reference: refPath, Candidate: candPath}

		cand, err := packed.Load(candPath)
		if err != nil {
			rec.Error = err.Error()
			rec.Distance = math.MaxFloat64
			records = append(records, rec)
			continue
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
		records = append(records, rec)

		fmt.Printf("%-40s distance=%.6f psnr=%.4f\n", candPath, rec.Distance, rec.PSNR)
	}

	store, err := report.NewFSStore(batchOut)
	if err != nil {
		return fmt.Errorf("failed to open report store: %w", err)
	}
	jobID := uuid.New().String()
	rep := &report.Report{
		JobID:     jobID,
		Reference: refPath,
		Created:   time.Now(),
		Records:   records,
	}
	if err := store.Save(jobID, rep); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	fmt.Printf("report: %s (job %s)\n", batchOut, jobID)
	return nil
}

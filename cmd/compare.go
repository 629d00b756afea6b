package main

import (
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"time"

	"github.com/cwbudde/imagefidelity/internal/butteraugli"
	"github.com/cwbudde/imagefidelity/internal/colorspace"
	"github.com/cwbudde/imagefidelity/internal/heatmap"
	"github.com/cwbudde/imagefidelity/internal/metrics"
	"github.com/cwbudde/imagefidelity/internal/packed"
	"github.com/cwbudde/imagefidelity/internal/worker"
	"github.com/spf13/cobra"
)

var (
	compareNorm       float64
	compareIntensity  float64
	compareAsymmetry  float64
	compareWorkers    int
	compareHeatmap    string
	compareLenient    bool
	compareColorspace string
)

var compareCmd = &cobra.Command{
	Use:   "compare <reference> <candidate>",
	Short: "Compare two images and print fidelity scores",
	Long: `Compares a candidate image against a reference and prints the perceptual
distance, its 3-norm pooling, and the weighted PSNR. Optionally writes the
per-pixel difference map as a false-color heatmap PNG.`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().Float64Var(&compareNorm, "norm", 3, "Pooling exponent for the perceptual distance")
	compareCmd.Flags().Float64Var(&compareIntensity, "intensity-target", 0, "Peak luminance in nits (0 = auto)")
	compareCmd.Flags().Float64Var(&compareAsymmetry, "hf-asymmetry", 1, "Extra weight for added high-frequency artifacts")
	compareCmd.Flags().IntVar(&compareWorkers, "workers", 0, "Worker goroutines for conversion/transform (0 = all CPUs)")
	compareCmd.Flags().StringVar(&compareHeatmap, "heatmap", "", "Write difference map heatmap to this PNG path")
	compareCmd.Flags().BoolVar(&compareLenient, "lenient", false, "Report sentinel scores instead of failing")
	compareCmd.Flags().StringVar(&compareColorspace, "colorspace", "", "Source encoding of both inputs, e.g. RGB_D65_SRG_Rel_Lin (default sRGB)")

	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	refPath, candPath := args[0], args[1]

	ref, err := packed.Load(refPath)
	if err != nil {
		return fmt.Errorf("failed to load reference: %w", err)
	}
	cand, err := packed.Load(candPath)
	if err != nil {
		return fmt.Errorf("failed to load candidate: %w", err)
	}
	if compareColorspace != "" {
		enc, err := colorspace.ParseDescription(compareColorspace)
		if err != nil {
			return fmt.Errorf("invalid colorspace: %w", err)
		}
		ref.Encoding = &enc
		cand.Encoding = &enc
	}

	params := butteraugli.DefaultParams()
	params.Norm = compareNorm
	if compareIntensity > 0 {
		params.IntensityTarget = compareIntensity
	}
	if compareAsymmetry > 0 {
		params.HFAsymmetry = compareAsymmetry
	}
	pool := worker.New(compareWorkers)

	start := time.Now()

	if compareLenient {
		score := metrics.DistanceOrSentinel(ref, cand, params, pool)
		psnr := metrics.Psnr(ref, cand, nil)
		fmt.Printf("distance: %.6f\npsnr:     %.4f\n", score, psnr)
		return nil
	}

	score, distmap, err := metrics.Distance(ref, cand, params, pool)
	if err != nil {
		return fmt.Errorf("comparison failed: %w", err)
	}
	norm3 := metrics.PoolNorm(distmap, params, 3)
	psnr := metrics.Psnr(ref, cand, nil)

	slog.Info("comparison complete",
		"reference", refPath,
		"candidate", candPath,
		"elapsed", time.Since(start),
		"backend", metrics.ActivePoolBackend.String(),
	)

	fmt.Printf("distance: %.6f\n3-norm:   %.6f\npsnr:     %.4f\n", score, norm3, psnr)

	if compareHeatmap != "" {
		f, err := os.Create(compareHeatmap)
		if err != nil {
			return fmt.Errorf("failed to create heatmap file: %w", err)
		}
		defer f.Close()
		if err := png.Encode(f, heatmap.Render(distmap, 0)); err != nil {
			return fmt.Errorf("failed to encode heatmap: %w", err)
		}
		fmt.Printf("heatmap:  %s\n", compareHeatmap)
	}

	return nil
}

package main

import (
	"fmt"

	"github.com/cwbudde/imagefidelity/internal/report"
	"github.com/cwbudde/imagefidelity/internal/server"
	"github.com/spf13/cobra"
)

var (
	serveAddr string
	serveData string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the comparison HTTP server",
	Long: `Starts an HTTP server that runs comparison jobs asynchronously and serves
their reports and difference-map heatmaps.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := report.NewFSStore(serveData)
		if err != nil {
			return fmt.Errorf("failed to open report store: %w", err)
		}
		return server.NewServer(serveAddr, store).Start()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().StringVar(&serveData, "data", "./data", "Report store directory")

	rootCmd.AddCommand(serveCmd)
}

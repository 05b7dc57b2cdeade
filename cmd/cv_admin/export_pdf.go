package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jonathan/cv-admin/internal/export"
	"github.com/spf13/cobra"
)

var (
	exportURL       string
	exportOut       string
	exportSelector  string
	exportSettle    time.Duration
	exportTimeout   time.Duration
	exportLandscape bool
	exportChrome    string
)

var exportPDFCmd = &cobra.Command{
	Use:   "export-pdf",
	Short: "Print the public CV page to PDF",
	Long:  "Loads the CV page in headless Chrome and saves the printed PDF. Requires Chrome or Chromium to be installed.",
	RunE:  runExportPDF,
}

func init() {
	exportPDFCmd.Flags().StringVar(&exportURL, "url", "", "URL of the CV page (required)")
	exportPDFCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Path to write the PDF to (required)")
	exportPDFCmd.Flags().StringVar(&exportSelector, "wait-for", "body", "CSS selector that must be visible before printing")
	exportPDFCmd.Flags().DurationVar(&exportSettle, "settle", time.Second, "Extra wait after the selector appears")
	exportPDFCmd.Flags().DurationVar(&exportTimeout, "timeout", export.DefaultTimeout, "Overall timeout")
	exportPDFCmd.Flags().BoolVar(&exportLandscape, "landscape", false, "Print in landscape orientation")
	exportPDFCmd.Flags().StringVar(&exportChrome, "chrome", "", "Path to the Chrome/Chromium binary")

	if err := exportPDFCmd.MarkFlagRequired("url"); err != nil {
		panic(fmt.Sprintf("failed to mark url flag as required: %v", err))
	}
	if err := exportPDFCmd.MarkFlagRequired("out"); err != nil {
		panic(fmt.Sprintf("failed to mark out flag as required: %v", err))
	}

	rootCmd.AddCommand(exportPDFCmd)
}

func runExportPDF(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	pdf, err := export.PrintPDF(cmd.Context(), export.Options{
		URL:             exportURL,
		WaitSelector:    exportSelector,
		Settle:          exportSettle,
		Timeout:         exportTimeout,
		Landscape:       exportLandscape,
		PrintBackground: true,
		ExecPath:        exportChrome,
		Logger:          logger,
	})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(exportOut), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(exportOut, pdf, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d bytes to %s\n", len(pdf), exportOut)
	return nil
}

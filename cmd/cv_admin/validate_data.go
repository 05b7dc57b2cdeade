package main

import (
	"context"
	"fmt"

	"github.com/jonathan/cv-admin/internal/store"
	"github.com/jonathan/cv-admin/internal/types"
	"github.com/spf13/cobra"
)

var validateDataDir string

var validateDataCmd = &cobra.Command{
	Use:   "validate-data",
	Short: "Check the data files against their schemas",
	Long:  "Loads the experiences, top-skills and profile files and validates each against its embedded JSON schema. Missing files are reported but are not an error.",
	RunE:  runValidateData,
}

func init() {
	validateDataCmd.Flags().StringVar(&validateDataDir, "data-dir", "", "Directory holding the data files (overrides DATA_DIR)")
	rootCmd.AddCommand(validateDataCmd)
}

func runValidateData(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if validateDataDir != "" {
		cfg.DataDir = validateDataDir
	}

	gw := store.NewGateway(store.Options{DataDir: cfg.DataDir, Development: true})
	out := cmd.OutOrStdout()
	failed := 0
	for _, r := range types.Resources() {
		summary, version, err := loadResource(cmd.Context(), gw, r)
		switch {
		case err != nil:
			failed++
			_, _ = fmt.Fprintf(out, "FAIL  %-18s %v\n", store.FileName(r), err)
		case version == "":
			_, _ = fmt.Fprintf(out, "MISS  %-18s not found, loads as empty\n", store.FileName(r))
		default:
			_, _ = fmt.Fprintf(out, "OK    %-18s %s (version %s)\n", store.FileName(r), summary, version[:12])
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d data files failed validation", failed, len(types.Resources()))
	}
	return nil
}

func loadResource(ctx context.Context, gw *store.Gateway, r types.Resource) (string, string, error) {
	switch r {
	case types.ResourceExperiences:
		exps, version, err := gw.LoadExperiences(ctx)
		return fmt.Sprintf("%d experiences", len(exps)), version, err
	case types.ResourceTopSkills:
		list, version, err := gw.LoadTopSkills(ctx)
		return fmt.Sprintf("%d skills", len(list)), version, err
	default:
		profile, version, err := gw.LoadProfile(ctx)
		if err == nil {
			err = types.ValidateProfile(&profile)
		}
		return fmt.Sprintf("profile %q", profile.Name), version, err
	}
}

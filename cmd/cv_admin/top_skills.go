package main

import (
	"fmt"

	"github.com/jonathan/cv-admin/internal/skills"
	"github.com/jonathan/cv-admin/internal/store"
	"github.com/jonathan/cv-admin/internal/types"
	"github.com/jonathan/cv-admin/internal/workspace"
	"github.com/spf13/cobra"
)

var (
	topSkillsDataDir string
	topSkillsWrite   bool
	topSkillsCount   int
)

var topSkillsCmd = &cobra.Command{
	Use:   "top-skills",
	Short: "Generate the top-skills list from experience tags",
	Long:  "Counts tags across all experiences and prints the most frequent ones. With --write the stored top-skills list is replaced, which requires APP_ENV=development.",
	RunE:  runTopSkills,
}

func init() {
	topSkillsCmd.Flags().StringVar(&topSkillsDataDir, "data-dir", "", "Directory holding the data files (overrides DATA_DIR)")
	topSkillsCmd.Flags().BoolVar(&topSkillsWrite, "write", false, "Replace the stored top-skills list with the generated one")
	topSkillsCmd.Flags().IntVarP(&topSkillsCount, "count", "n", skills.DefaultTopN, "Number of skills to keep")
	rootCmd.AddCommand(topSkillsCmd)
}

func runTopSkills(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if topSkillsDataDir != "" {
		cfg.DataDir = topSkillsDataDir
	}
	if topSkillsCount < 0 {
		return fmt.Errorf("count must not be negative")
	}

	reader := store.NewGateway(store.Options{DataDir: cfg.DataDir, Development: true})
	snap, err := reader.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load data: %w", err)
	}

	ws := workspace.New(snap.Bundle, snap.Versions).GenerateTopSkills(topSkillsCount)
	top := ws.TopSkills()
	out := cmd.OutOrStdout()
	for i, skill := range top {
		_, _ = fmt.Fprintf(out, "%2d. %s\n", i+1, skill)
	}

	if !topSkillsWrite {
		return nil
	}
	writer := store.NewGateway(store.Options{
		DataDir:     cfg.DataDir,
		Development: cfg.Development(),
		Mode:        cfg.Mode,
	})
	if _, err := writer.SaveTopSkills(cmd.Context(), top, ws.Version(types.ResourceTopSkills)); err != nil {
		return fmt.Errorf("failed to save top skills: %w", err)
	}
	_, _ = fmt.Fprintf(out, "Wrote %d skills to %s\n", len(top), writer.Path(types.ResourceTopSkills))
	return nil
}

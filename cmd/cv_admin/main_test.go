package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonathan/cv-admin/internal/export"
	"github.com/jonathan/cv-admin/internal/skills"
	"github.com/jonathan/cv-admin/internal/store"
	"github.com/jonathan/cv-admin/internal/types"
	"github.com/stretchr/testify/require"
)

var cliEnv = []string{
	"APP_ENV", "NODE_ENV", "PORT", "DATA_DIR", "PUBLIC_DIR", "UPLOADS_SUBDIR",
	"LLM_PROVIDER", "OPENROUTER_KEY", "GEMINI_API_KEY", "AI_API_KEY", "AI_ALLOWED_MODELS",
	"ADMIN_PASSWORD", "ADMIN_PASSWORD_HASH", "SESSION_SECRET", "PASSWORD_PEPPER",
	"BCRYPT_COST", "LOG_LEVEL", "LOG_FILE",
}

// setupEnv isolates a test from the caller's environment
func setupEnv(t *testing.T, mode string) {
	t.Helper()
	for _, key := range cliEnv {
		t.Setenv(key, "")
	}
	t.Setenv("APP_ENV", mode)
	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("LOG_LEVEL", "error")
}

// resetFlags restores every package-level flag value between in-process runs
func resetFlags() {
	configFile, logLevel = "", ""
	servePort = 0
	topSkillsDataDir, topSkillsWrite, topSkillsCount = "", false, skills.DefaultTopN
	validateDataDir = ""
	exportURL, exportOut, exportSelector, exportChrome = "", "", "body", ""
	exportSettle, exportTimeout, exportLandscape = time.Second, export.DefaultTimeout, false
}

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetIn(strings.NewReader(stdin))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func seedExperiences(t *testing.T, dir string, exps []types.ExperienceEntry) {
	t.Helper()
	gw := store.NewGateway(store.Options{DataDir: dir, Development: true})
	_, err := gw.SaveExperiences(context.Background(), exps, "")
	require.NoError(t, err)
}

func writeDataFile(t *testing.T, dir string, r types.Resource, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, store.FileName(r)), []byte(content), 0644))
}

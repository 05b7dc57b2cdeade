package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/jonathan/cv-admin/internal/schemas"
	"github.com/jonathan/cv-admin/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const filePerm fs.FileMode = 0o644

// Options configures a Gateway
type Options struct {
	DataDir     string
	Development bool
	// Mode is reported in ModeRestrictedError
	Mode   string
	FS     FileSystem
	Logger *zap.Logger
}

// Gateway is the only reader and writer of the CV data files
type Gateway struct {
	dataDir     string
	development bool
	mode        string
	fs          FileSystem
	logger      *zap.Logger

	// serializes read-compare-write within one process
	mu sync.Mutex
}

// Snapshot is the result of Load
type Snapshot struct {
	Bundle   types.Bundle
	Versions map[types.Resource]string
}

// NewGateway creates a gateway over opts.DataDir
func NewGateway(opts Options) *Gateway {
	fsys := opts.FS
	if fsys == nil {
		fsys = OSFileSystem{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		dataDir:     opts.DataDir,
		development: opts.Development,
		mode:        opts.Mode,
		fs:          fsys,
		logger:      logger,
	}
}

// Development reports whether the gateway allows access
func (g *Gateway) Development() bool {
	return g.development
}

// Path returns the full path of the file backing r
func (g *Gateway) Path(r types.Resource) string {
	return filepath.Join(g.dataDir, FileName(r))
}

func (g *Gateway) checkMode() error {
	if !g.development {
		return &ModeRestrictedError{Mode: g.mode}
	}
	return nil
}

// Load reads all three resources. A missing file loads as an empty resource with an empty version.
func (g *Gateway) Load(ctx context.Context) (*Snapshot, error) {
	if err := g.checkMode(); err != nil {
		return nil, err
	}

	var (
		exps    []types.ExperienceEntry
		skills  []string
		profile types.UserProfile
		vExp    string
		vSkills string
		vProf   string
	)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		exps, vExp, err = g.LoadExperiences(ctx)
		return err
	})
	eg.Go(func() error {
		var err error
		skills, vSkills, err = g.LoadTopSkills(ctx)
		return err
	})
	eg.Go(func() error {
		var err error
		profile, vProf, err = g.LoadProfile(ctx)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return &Snapshot{
		Bundle: types.Bundle{
			Experiences: exps,
			TopSkills:   skills,
			ProfileData: profile,
		},
		Versions: map[types.Resource]string{
			types.ResourceExperiences: vExp,
			types.ResourceTopSkills:   vSkills,
			types.ResourceProfile:     vProf,
		},
	}, nil
}

// LoadExperiences reads the experiences resource
func (g *Gateway) LoadExperiences(ctx context.Context) ([]types.ExperienceEntry, string, error) {
	exps := []types.ExperienceEntry{}
	version, err := g.loadInto(ctx, types.ResourceExperiences, &exps)
	if err != nil {
		return nil, "", err
	}
	for i := range exps {
		if exps[i].Tags == nil {
			exps[i].Tags = []string{}
		}
	}
	return exps, version, nil
}

// LoadTopSkills reads the top-skills resource
func (g *Gateway) LoadTopSkills(ctx context.Context) ([]string, string, error) {
	skills := []string{}
	version, err := g.loadInto(ctx, types.ResourceTopSkills, &skills)
	if err != nil {
		return nil, "", err
	}
	return skills, version, nil
}

// LoadProfile reads the profile resource
func (g *Gateway) LoadProfile(ctx context.Context) (types.UserProfile, string, error) {
	profile := types.NewUserProfile()
	version, err := g.loadInto(ctx, types.ResourceProfile, &profile)
	if err != nil {
		return types.UserProfile{}, "", err
	}
	return profile, version, nil
}

func (g *Gateway) loadInto(ctx context.Context, r types.Resource, v any) (string, error) {
	if err := g.checkMode(); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := g.Path(r)
	content, err := g.fs.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		g.logger.Debug("data file missing, using empty resource", zap.String("path", path))
		return "", nil
	}
	if err != nil {
		return "", &LoadError{Path: path, Message: "failed to read file", Cause: err}
	}

	literal, err := ExtractJSON(content)
	if err != nil {
		return "", &LoadError{Path: path, Message: "failed to parse declaration", Cause: err}
	}
	if err := schemas.Validate(targets[r].schema, literal); err != nil {
		return "", &LoadError{Path: path, Message: "stored data does not match schema", Cause: err}
	}
	if err := json.Unmarshal(literal, v); err != nil {
		return "", &LoadError{Path: path, Message: "failed to unmarshal JSON", Cause: err}
	}

	return Version(content), nil
}

// Save validates payload against target's schema and overwrites the backing file.
// A non-empty expectedVersion must match the current file's version. The
// returned version is that of the bytes written.
func (g *Gateway) Save(ctx context.Context, targetName string, payload []byte, expectedVersion string) (string, error) {
	if err := g.checkMode(); err != nil {
		return "", err
	}
	r, err := ResolveTarget(targetName)
	if err != nil {
		return "", err
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		return "", &PayloadError{Message: "missing payload"}
	}
	if err := schemas.Validate(targets[r].schema, payload); err != nil {
		return "", &PayloadError{Message: fmt.Sprintf("%s does not match schema", r), Cause: err}
	}

	var value any
	switch r {
	case types.ResourceExperiences:
		var exps []types.ExperienceEntry
		if err := decodeStrict(payload, &exps); err != nil {
			return "", err
		}
		value = exps
	case types.ResourceTopSkills:
		var skills []string
		if err := decodeStrict(payload, &skills); err != nil {
			return "", err
		}
		value = skills
	case types.ResourceProfile:
		var profile types.UserProfile
		if err := decodeStrict(payload, &profile); err != nil {
			return "", err
		}
		if err := profile.NormalizeProficiencies(); err != nil {
			return "", &PayloadError{Message: "unknown language proficiency", Cause: err}
		}
		if err := types.ValidateProfile(&profile); err != nil {
			return "", &PayloadError{Message: "profile failed validation", Cause: err}
		}
		value = profile
	}

	return g.write(ctx, r, value, expectedVersion)
}

// SaveRequest saves a decoded request body
func (g *Gateway) SaveRequest(ctx context.Context, req types.SaveRequest) (string, error) {
	return g.Save(ctx, req.TargetName(), req.Body(), req.ExpectedVersion)
}

// SaveExperiences overwrites the experiences resource
func (g *Gateway) SaveExperiences(ctx context.Context, exps []types.ExperienceEntry, expectedVersion string) (string, error) {
	return g.saveValue(ctx, types.ResourceExperiences, exps, expectedVersion)
}

// SaveTopSkills overwrites the top-skills resource
func (g *Gateway) SaveTopSkills(ctx context.Context, skills []string, expectedVersion string) (string, error) {
	return g.saveValue(ctx, types.ResourceTopSkills, skills, expectedVersion)
}

// SaveProfile overwrites the profile resource
func (g *Gateway) SaveProfile(ctx context.Context, profile types.UserProfile, expectedVersion string) (string, error) {
	return g.saveValue(ctx, types.ResourceProfile, profile, expectedVersion)
}

// saveValue routes typed values through the same validation as raw payloads
func (g *Gateway) saveValue(ctx context.Context, r types.Resource, v any, expectedVersion string) (string, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return "", &PayloadError{Message: "failed to marshal value", Cause: err}
	}
	return g.Save(ctx, string(r), payload, expectedVersion)
}

func (g *Gateway) write(ctx context.Context, r types.Resource, v any, expectedVersion string) (string, error) {
	content, err := Encode(r, v)
	if err != nil {
		return "", &PayloadError{Message: "failed to encode", Cause: err}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := g.Path(r)
	if expectedVersion != "" {
		current, err := g.fs.ReadFile(path)
		actual := ""
		switch {
		case err == nil:
			actual = Version(current)
		case !errors.Is(err, fs.ErrNotExist):
			return "", &WriteError{Path: path, Cause: fmt.Errorf("failed to read current version: %w", err)}
		}
		if actual != expectedVersion {
			return "", &ConflictError{Target: string(r), Expected: expectedVersion, Actual: actual}
		}
	}

	if err := g.fs.WriteFileAtomic(path, content, filePerm); err != nil {
		g.logger.Error("failed to write data file", zap.String("path", path), zap.Error(err))
		return "", &WriteError{Path: path, Cause: err}
	}

	g.logger.Info("saved data file",
		zap.String("resource", string(r)),
		zap.String("path", path),
		zap.Int("bytes", len(content)))
	return Version(content), nil
}

func decodeStrict(payload []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &PayloadError{Message: "failed to decode", Cause: err}
	}
	return nil
}

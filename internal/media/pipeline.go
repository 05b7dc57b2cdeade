package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	// register decoders imaging does not import itself
	_ "golang.org/x/image/webp"
)

// MaxUploadSize is the largest accepted upload in bytes
const MaxUploadSize = 5 << 20

// MaxPixels caps width*height of an upload. Compressed formats can declare
// dimensions far beyond what MaxUploadSize suggests.
const MaxPixels = 40_000_000

// allowedTypes are the sniffed formats accepted for upload
var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// Upload is one file received from a multipart form
type Upload struct {
	Filename    string
	ContentType string
	// Size is the declared size; -1 when unknown
	Size int64
	Body io.Reader
}

// Result holds the public locators of the two derivatives
type Result struct {
	WebURL string `json:"webUrl"`
	PDFURL string `json:"pdfUrl"`
}

// Options configures a Pipeline
type Options struct {
	PublicDir     string
	UploadsSubdir string
	MaxSize       int64
	Resizer       Resizer
	Now           func() time.Time
	Logger        *zap.Logger
}

// Pipeline validates uploads and writes their derivatives under PublicDir/UploadsSubdir
type Pipeline struct {
	uploadsDir string
	urlPrefix  string
	maxSize    int64
	resizer    Resizer
	now        func() time.Time
	logger     *zap.Logger
}

// NewPipeline creates a Pipeline
func NewPipeline(opts Options) *Pipeline {
	subdir := strings.Trim(opts.UploadsSubdir, "/")
	if subdir == "" {
		subdir = "uploads"
	}
	maxSize := opts.MaxSize
	if maxSize <= 0 {
		maxSize = MaxUploadSize
	}
	resizer := opts.Resizer
	if resizer == nil {
		resizer = ImagingResizer{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		uploadsDir: filepath.Join(opts.PublicDir, filepath.FromSlash(subdir)),
		urlPrefix:  "/" + subdir + "/",
		maxSize:    maxSize,
		resizer:    resizer,
		now:        now,
		logger:     logger,
	}
}

// URLPrefix returns the public path prefix of every derivative
func (p *Pipeline) URLPrefix() string {
	return p.urlPrefix
}

// Ingest validates up and writes its web and pdf derivatives
func (p *Pipeline) Ingest(ctx context.Context, up Upload) (*Result, error) {
	data, err := p.validate(up)
	if err != nil {
		return nil, err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &ValidationError{Message: "file could not be decoded as an image"}
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, &ValidationError{Message: fmt.Sprintf("image dimensions %dx%d exceed the %d megapixel limit", cfg.Width, cfg.Height, MaxPixels/1_000_000)}
	}

	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &ValidationError{Message: "file could not be decoded as an image"}
	}

	if err := os.MkdirAll(p.uploadsDir, 0o755); err != nil {
		return nil, &ProcessingError{Message: "failed to create uploads directory", Cause: err}
	}

	base := fmt.Sprintf("profile-%d-%s", p.now().UnixMilli(), strings.SplitN(uuid.NewString(), "-", 2)[0])
	variants := []Variant{WebVariant, PDFVariant}
	urls := make([]string, len(variants))

	eg, ctx := errgroup.WithContext(ctx)
	for i, v := range variants {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := p.resizer.Resize(src, v)
			if err != nil {
				return &ProcessingError{Message: fmt.Sprintf("failed to resize %s variant", v.Name), Cause: err}
			}
			name := fmt.Sprintf("%s-%s.jpg", base, v.Name)
			if err := os.WriteFile(filepath.Join(p.uploadsDir, name), out, 0o644); err != nil {
				return &ProcessingError{Message: fmt.Sprintf("failed to write %s variant", v.Name), Cause: err}
			}
			urls[i] = p.urlPrefix + name
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		p.Delete(urls...)
		return nil, err
	}

	p.logger.Info("image uploaded",
		zap.String("filename", up.Filename),
		zap.Int("bytes", len(data)),
		zap.String("web_url", urls[0]),
		zap.String("pdf_url", urls[1]))

	return &Result{WebURL: urls[0], PDFURL: urls[1]}, nil
}

// validate enforces the content type and size ceiling and returns the body.
// It never reads more than maxSize+1 bytes.
func (p *Pipeline) validate(up Upload) ([]byte, error) {
	if up.Body == nil {
		return nil, &ValidationError{Message: "no file provided"}
	}
	if !strings.HasPrefix(strings.ToLower(up.ContentType), "image/") {
		return nil, &ValidationError{Message: "file must be an image"}
	}
	if up.Size > p.maxSize {
		return nil, &ValidationError{Message: fmt.Sprintf("file size must be less than %dMB", p.maxSize>>20)}
	}

	data, err := io.ReadAll(io.LimitReader(up.Body, p.maxSize+1))
	if err != nil {
		return nil, &ValidationError{Message: "failed to read upload"}
	}
	if int64(len(data)) > p.maxSize {
		return nil, &ValidationError{Message: fmt.Sprintf("file size must be less than %dMB", p.maxSize>>20)}
	}
	if len(data) == 0 {
		return nil, &ValidationError{Message: "file is empty"}
	}

	detected := mimetype.Detect(data)
	if !allowedTypes[detected.String()] {
		return nil, &ValidationError{Message: fmt.Sprintf("unsupported image format %s", detected.String())}
	}
	return data, nil
}

// Delete removes derivatives by their public locators. Locators outside the
// uploads prefix are ignored. Failures are logged, never returned.
func (p *Pipeline) Delete(urls ...string) []string {
	var removed []string
	for _, u := range urls {
		if u == "" {
			continue
		}
		path, ok := p.localPath(u)
		if !ok {
			p.logger.Warn("refusing to delete asset outside uploads", zap.String("url", u))
			continue
		}
		if err := os.Remove(path); err != nil {
			if !os.IsNotExist(err) {
				p.logger.Warn("failed to delete asset", zap.String("url", u), zap.Error(err))
			}
			continue
		}
		removed = append(removed, u)
	}
	return removed
}

// localPath maps a locator to a file directly inside the uploads directory
func (p *Pipeline) localPath(u string) (string, bool) {
	if !strings.HasPrefix(u, p.urlPrefix) {
		return "", false
	}
	name := strings.TrimPrefix(u, p.urlPrefix)
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", false
	}
	return filepath.Join(p.uploadsDir, name), true
}

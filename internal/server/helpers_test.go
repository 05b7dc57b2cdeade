package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jonathan/cv-admin/internal/config"
	"github.com/jonathan/cv-admin/internal/enhance"
	"github.com/jonathan/cv-admin/internal/llm"
	"github.com/jonathan/cv-admin/internal/media"
	"github.com/jonathan/cv-admin/internal/store"
	"github.com/stretchr/testify/require"
)

// fakeClient replies with a canned answer or error
type fakeClient struct {
	mu    sync.Mutex
	calls int
	reply string
	err   error
}

func (f *fakeClient) Complete(_ context.Context, _ llm.CompletionRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.reply, f.err
}

func (f *fakeClient) Model() string { return "fake-model" }

func (f *fakeClient) Close() error { return nil }

type testServer struct {
	*Server
	handler   http.Handler
	client    *fakeClient
	dataDir   string
	uploadDir string
}

type testOption func(*config.Config)

func withMode(mode string) testOption {
	return func(c *config.Config) { c.Mode = mode }
}

func withAdminPassword(pw string) testOption {
	return func(c *config.Config) { c.AdminPassword = pw }
}

func withAIKey(key string) testOption {
	return func(c *config.Config) { c.LLM.APIKey = key }
}

func withoutRateLimit() testOption {
	return func(c *config.Config) { c.RateLimit.Enabled = false }
}

func newTestServer(t *testing.T, opts ...testOption) *testServer {
	t.Helper()
	root := t.TempDir()

	cfg := config.Default()
	cfg.Mode = config.ModeDevelopment
	cfg.DataDir = filepath.Join(root, "data")
	cfg.PublicDir = filepath.Join(root, "public")
	cfg.Session.Secret = testSecret
	cfg.Password.BcryptCost = 10
	for _, opt := range opts {
		opt(cfg)
	}

	client := &fakeClient{reply: "Improved text"}
	srv, err := New(Deps{
		Config: cfg,
		Store: store.NewGateway(store.Options{
			DataDir:     cfg.DataDir,
			Development: cfg.Development(),
			Mode:        cfg.Mode,
		}),
		Enhancer: enhance.NewService(client, enhance.Options{}),
		Media: media.NewPipeline(media.Options{
			PublicDir:     cfg.PublicDir,
			UploadsSubdir: cfg.UploadsSubdir,
		}),
	})
	require.NoError(t, err)
	t.Cleanup(srv.Close)

	return &testServer{
		Server:    srv,
		handler:   srv.Handler(),
		client:    client,
		dataDir:   cfg.DataDir,
		uploadDir: filepath.Join(cfg.PublicDir, cfg.UploadsSubdir),
	}
}

func (ts *testServer) do(t *testing.T, method, target string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	req.RemoteAddr = "192.0.2.1:1234"
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func multipartBody(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(map[string][]string)
	header["Content-Disposition"] = []string{`form-data; name="` + field + `"; filename="` + filename + `"`}
	header["Content-Type"] = []string{contentType}
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func jsonReader(t *testing.T, v any) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

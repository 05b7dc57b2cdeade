// Package export prints the public CV page to PDF through a headless browser.
package export

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// A4 paper in inches
const (
	A4Width  = 8.27
	A4Height = 11.69
)

// DefaultTimeout bounds the whole navigate-and-print run
const DefaultTimeout = 30 * time.Second

// Options configures a PDF export
type Options struct {
	URL string
	// WaitSelector must be visible before printing. Defaults to "body".
	WaitSelector string
	// Settle is an extra pause after WaitSelector for client-side rendering
	Settle          time.Duration
	Timeout         time.Duration
	Landscape       bool
	PrintBackground bool
	PaperWidth      float64
	PaperHeight     float64
	// ExecPath overrides the Chrome/Chromium binary chromedp looks up
	ExecPath string
	Logger   *zap.Logger
}

// Error is returned when the export cannot be produced
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("pdf export: %s: %v", e.Message, e.Cause)
	}
	return "pdf export: " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// withDefaults validates o and fills unset fields
func (o Options) withDefaults() (Options, error) {
	u, err := url.Parse(o.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return o, &Error{Message: fmt.Sprintf("url must be an absolute http(s) URL, got %q", o.URL)}
	}
	if o.WaitSelector == "" {
		o.WaitSelector = "body"
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Settle < 0 {
		return o, &Error{Message: "settle must not be negative"}
	}
	if o.PaperWidth == 0 && o.PaperHeight == 0 {
		o.PaperWidth, o.PaperHeight = A4Width, A4Height
	}
	if o.PaperWidth <= 0 || o.PaperHeight <= 0 {
		return o, &Error{Message: "paper size must be positive"}
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o, nil
}

// PrintPDF loads opts.URL in headless Chrome and returns the printed PDF bytes.
// Requires Chrome/Chromium to be installed.
func PrintPDF(ctx context.Context, opts Options) ([]byte, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	allocCtx, cancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, opts.Timeout)
	defer cancel()

	start := time.Now()
	opts.Logger.Info("printing page", zap.String("url", opts.URL))

	var pdf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate(opts.URL),
		chromedp.WaitVisible(opts.WaitSelector),
		chromedp.Sleep(opts.Settle),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithLandscape(opts.Landscape).
				WithPrintBackground(opts.PrintBackground).
				WithPaperWidth(opts.PaperWidth).
				WithPaperHeight(opts.PaperHeight).
				WithPreferCSSPageSize(true).
				Do(ctx)
			pdf = buf
			return err
		}),
	)
	if err != nil {
		return nil, &Error{Message: "browser rendering failed", Cause: err}
	}
	if len(pdf) == 0 {
		return nil, &Error{Message: "browser returned an empty document"}
	}

	opts.Logger.Info("printed page",
		zap.String("url", opts.URL),
		zap.Int("bytes", len(pdf)),
		zap.Duration("duration", time.Since(start)))
	return pdf, nil
}

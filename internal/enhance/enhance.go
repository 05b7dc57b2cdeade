package enhance

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/cv-admin/internal/llm"
	"github.com/jonathan/cv-admin/internal/prompts"
	"github.com/jonathan/cv-admin/internal/richtext"
	"github.com/jonathan/cv-admin/internal/types"
	"go.uber.org/zap"
)

// Limits and defaults
const (
	MaxTextLength        = 10000
	MaxInstructionLength = 20000
	DefaultCreativity    = 0.2
)

// Request is the body of an enhancement call. The admin UI historically sent
// "data" and "systemInput"; "text" and "instruction" are accepted as well.
type Request struct {
	Text        string   `json:"text,omitempty"`
	Data        string   `json:"data,omitempty"`
	FieldType   string   `json:"fieldType,omitempty"`
	Creativity  *float64 `json:"creativity,omitempty"`
	Instruction string   `json:"instruction,omitempty"`
	SystemInput string   `json:"systemInput,omitempty"`
	Model       string   `json:"model,omitempty"`
}

// Result carries the single suggestion. Response duplicates Suggestion for older clients.
type Result struct {
	Suggestion string `json:"suggestion"`
	Response   string `json:"response"`
	Model      string `json:"model,omitempty"`
}

// normalized is Request after legacy field folding
type normalized struct {
	Text        string  `validate:"max=10000"`
	Instruction string  `validate:"max=20000"`
	Creativity  float64 `validate:"gte=0,lte=1"`
	FieldType   string
	Model       string
}

func (r Request) normalize() normalized {
	n := normalized{
		Text:        r.Text,
		Instruction: r.Instruction,
		Creativity:  DefaultCreativity,
		FieldType:   r.FieldType,
		Model:       strings.TrimSpace(r.Model),
	}
	if n.Text == "" {
		n.Text = r.Data
	}
	if n.Instruction == "" {
		n.Instruction = r.SystemInput
	}
	if r.Creativity != nil {
		n.Creativity = *r.Creativity
	}
	return n
}

// Options configures a Service
type Options struct {
	Timeout time.Duration
	// AllowedModels lists the model overrides callers may request. Empty means no overrides.
	AllowedModels []string
	Logger        *zap.Logger
}

// Service forwards enhancement requests to an llm.Client
type Service struct {
	client        llm.Client
	timeout       time.Duration
	allowedModels map[string]bool
	logger        *zap.Logger
}

// NewService creates a Service. A nil client makes every valid request fail with UpstreamError.
func NewService(client llm.Client, opts Options) *Service {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = llm.DefaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	allowed := make(map[string]bool, len(opts.AllowedModels))
	for _, m := range opts.AllowedModels {
		if m = strings.TrimSpace(m); m != "" {
			allowed[m] = true
		}
	}
	return &Service{
		client:        client,
		timeout:       timeout,
		allowedModels: allowed,
		logger:        logger,
	}
}

// Validate checks req without calling upstream
func (s *Service) Validate(req Request) error {
	_, err := s.validate(req)
	return err
}

func (s *Service) validate(req Request) (normalized, error) {
	n := req.normalize()

	if richtext.IsBlank(n.Text) {
		return n, &InvalidParameterError{Field: "text", Message: "content cannot be empty"}
	}

	if err := types.Validator().Struct(n); err != nil {
		var ves validator.ValidationErrors
		if errors.As(err, &ves) && len(ves) > 0 {
			switch ves[0].Field() {
			case "Text":
				return n, &PayloadTooLargeError{Field: "text", Limit: MaxTextLength, Got: len([]rune(n.Text))}
			case "Instruction":
				return n, &PayloadTooLargeError{Field: "instruction", Limit: MaxInstructionLength, Got: len([]rune(n.Instruction))}
			case "Creativity":
				return n, &InvalidParameterError{Field: "creativity", Message: "must be between 0 and 1"}
			}
		}
		return n, &InvalidParameterError{Field: "request", Message: err.Error()}
	}

	if n.Model != "" && !s.allowedModels[n.Model] {
		return n, &InvalidParameterError{Field: "model", Message: "model override is not allowed"}
	}
	return n, nil
}

// Enhance returns one suggested replacement for req's text. It makes at most one upstream call.
func (s *Service) Enhance(ctx context.Context, req Request) (*Result, error) {
	n, err := s.validate(req)
	if err != nil {
		return nil, err
	}
	if s.client == nil {
		return nil, &UpstreamError{Message: "AI service is not configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	suggestion, err := s.client.Complete(ctx, llm.CompletionRequest{
		System:      s.systemPrompt(n),
		Prompt:      n.Text,
		Temperature: n.Creativity,
		Model:       n.Model,
	})
	duration := time.Since(start)
	if err != nil {
		mapped := s.mapError(ctx, err)
		s.logger.Warn("enhancement failed",
			zap.String("field", n.FieldType),
			zap.Duration("duration", duration),
			zap.Error(err))
		return nil, mapped
	}

	suggestion = strings.TrimSpace(suggestion)
	if suggestion == "" {
		return nil, &InvalidUpstreamResponseError{Message: "empty suggestion"}
	}

	model := n.Model
	if model == "" {
		model = s.client.Model()
	}
	s.logger.Info("enhancement completed",
		zap.String("field", n.FieldType),
		zap.String("model", model),
		zap.Int("input_chars", len([]rune(n.Text))),
		zap.Int("output_chars", len([]rune(suggestion))),
		zap.Duration("duration", duration))

	return &Result{Suggestion: suggestion, Response: suggestion, Model: model}, nil
}

func (s *Service) systemPrompt(n normalized) string {
	if strings.TrimSpace(n.Instruction) != "" {
		return n.Instruction
	}
	if strings.TrimSpace(n.FieldType) != "" {
		return prompts.FieldSystem(n.FieldType, richtext.IsHTML(n.Text))
	}
	return prompts.DefaultSystem()
}

func (s *Service) mapError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &UpstreamTimeoutError{Timeout: s.timeout.String()}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var respErr *llm.ResponseError
	if errors.As(err, &respErr) {
		return &InvalidUpstreamResponseError{Message: respErr.Message, Cause: err}
	}
	var statusErr *llm.StatusError
	if errors.As(err, &statusErr) {
		return &UpstreamError{StatusCode: statusErr.StatusCode, Message: statusErr.Message, Cause: err}
	}
	var notConfigured *llm.NotConfiguredError
	if errors.As(err, &notConfigured) {
		return &UpstreamError{Message: "AI service is not configured", Cause: err}
	}
	return &UpstreamError{Message: err.Error(), Cause: err}
}

package bedrock

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"

	"imagen/internal/infra"
)

// ErrMissingModel indicates that an invocation was attempted without a model id.
var ErrMissingModel = errors.New("bedrock: model id is required")

const contentTypeJSON = "application/json"

// InvokeModelAPI is the subset of the Bedrock runtime client used here.
type InvokeModelAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Options configures the Bedrock runtime client.
type Options struct {
	Runtime          InvokeModelAPI
	GuardrailID      string
	GuardrailVersion string
	Timeout          time.Duration
	Logger           *infra.Logger
}

// Client performs synchronous InvokeModel calls with JSON bodies.
type Client struct {
	runtime          InvokeModelAPI
	guardrailID      string
	guardrailVersion string
	timeout          time.Duration
	logger           *infra.Logger
}

// Invocation is a single model call. Guarded requests get the configured
// guardrail attached when one exists.
type Invocation struct {
	ModelID string
	Body    []byte
	Guarded bool
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	if opts.Runtime == nil {
		return nil, errors.New("bedrock: runtime client is required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	version := strings.TrimSpace(opts.GuardrailVersion)
	if version == "" {
		version = "DRAFT"
	}
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	return &Client{
		runtime:          opts.Runtime,
		guardrailID:      strings.TrimSpace(opts.GuardrailID),
		guardrailVersion: version,
		timeout:          timeout,
		logger:           logger,
	}, nil
}

// HasGuardrail reports whether guarded invocations carry a guardrail.
func (c *Client) HasGuardrail() bool {
	return c.guardrailID != ""
}

// Invoke calls the model and returns the raw response body.
func (c *Client) Invoke(ctx context.Context, inv Invocation) ([]byte, error) {
	modelID := strings.TrimSpace(inv.ModelID)
	if modelID == "" {
		return nil, ErrMissingModel
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	input := &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelID),
		Body:        inv.Body,
		ContentType: aws.String(contentTypeJSON),
		Accept:      aws.String(contentTypeJSON),
	}
	if inv.Guarded && c.HasGuardrail() {
		input.GuardrailIdentifier = aws.String(c.guardrailID)
		input.GuardrailVersion = aws.String(c.guardrailVersion)
	}

	start := time.Now()
	out, err := c.runtime.InvokeModel(ctx, input)
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			c.logger.Warn().
				Str("model", modelID).
				Str("code", apiErr.ErrorCode()).
				Str("fault", apiErr.ErrorFault().String()).
				Msg("bedrock: invoke model rejected")
		}
		return nil, fmt.Errorf("bedrock: invoke %s: %w", modelID, err)
	}
	c.logger.Debug().
		Str("model", modelID).
		Bool("guarded", input.GuardrailIdentifier != nil).
		Dur("elapsed", time.Since(start)).
		Int("bytes", len(out.Body)).
		Msg("bedrock: model invoked")
	return out.Body, nil
}

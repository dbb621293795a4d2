package imagegen

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"imagen/internal/i18n"
	"imagen/internal/infra"
	"imagen/internal/providers/bedrock"
	"imagen/internal/storage"
)

// maxSeed is the inclusive upper bound of random seeds.
const maxSeed = 9_999_999

const rawPayloadLogLimit = 2048

// Options configures a Pipeline.
type Options struct {
	Invoker       Invoker
	Store         Store
	Keys          *storage.KeyGenerator
	Seed          func() int64
	UploadTimeout time.Duration
	Logger        *infra.Logger
}

// Pipeline runs validate, build, invoke, parse, upload and assemble for any
// Provider. It holds no per-call state and is safe for concurrent use.
type Pipeline struct {
	invoker       Invoker
	store         Store
	keys          *storage.KeyGenerator
	seed          func() int64
	uploadTimeout time.Duration
	logger        *infra.Logger
}

// NewPipeline wires the shared provider and storage handles.
func NewPipeline(opts Options) (*Pipeline, error) {
	if opts.Invoker == nil {
		return nil, errors.New("imagegen: invoker is required")
	}
	if opts.Store == nil {
		return nil, errors.New("imagegen: store is required")
	}
	keys := opts.Keys
	if keys == nil {
		keys = storage.NewKeyGenerator()
	}
	seed := opts.Seed
	if seed == nil {
		seed = RandomSeed
	}
	uploadTimeout := opts.UploadTimeout
	if uploadTimeout <= 0 {
		uploadTimeout = 30 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	return &Pipeline{
		invoker:       opts.Invoker,
		store:         opts.Store,
		keys:          keys,
		seed:          seed,
		uploadTimeout: uploadTimeout,
		logger:        logger,
	}, nil
}

// RandomSeed returns a uniformly distributed seed in [0, 9999999].
func RandomSeed() int64 {
	return rand.Int64N(maxSeed + 1)
}

// Generate runs one request through prov. On success the result has status 201.
// Validation problems come back as *ValidationError, provider refusals as
// *RefusalError. An *UploadError is returned together with a result holding the
// URLs stored before the failure.
func (p *Pipeline) Generate(ctx context.Context, prov Provider, req Request) (*Result, error) {
	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		return nil, invalid(ctx, i18n.MsgPromptRequired)
	}
	if err := p.store.Validate(); err != nil {
		if errors.Is(err, storage.ErrMissingBucket) {
			return nil, invalid(ctx, i18n.MsgBucketMissing)
		}
		return nil, err
	}
	if prov.Normalize != nil {
		if err := prov.Normalize(ctx, &req); err != nil {
			return nil, err
		}
	}
	if prov.ModelID == "" {
		return nil, invalid(ctx, i18n.MsgModelMissing, prov.Name)
	}

	var seed int64
	if prov.RandomSeed {
		seed = p.seed()
	}
	body, err := json.Marshal(prov.Body(req, seed))
	if err != nil {
		return nil, fmt.Errorf("%s: encode request: %w", prov.Name, err)
	}

	log := p.logger.With().Str("provider", prov.Name).Str("model", prov.ModelID).Logger()
	raw, err := p.invoker.Invoke(ctx, bedrock.Invocation{
		ModelID: prov.ModelID,
		Body:    body,
		Guarded: prov.Guarded,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", prov.Name, err)
	}
	out, err := prov.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", prov.Name, err)
	}

	if out.Intervened && (prov.StrictModeration || len(out.Images) == 0) {
		log.Warn().Int("images", len(out.Images)).Msg("imagegen: guardrail intervened")
		return nil, &RefusalError{Message: i18n.T(ctx, i18n.MsgPromptRefused), Intervened: true}
	}
	if len(out.Images) == 0 {
		log.Warn().Str("payload", truncate(raw, rawPayloadLogLimit)).Msg("imagegen: provider returned no images")
		return nil, &RefusalError{Message: i18n.T(ctx, i18n.MsgNoImageReturned)}
	}

	images := out.Images
	if prov.Single {
		images = images[:1]
	}
	format := prov.Format(req)
	result := &Result{
		Single:   prov.Single,
		Metadata: prov.Metadata(req),
		URLs:     make([]string, 0, len(images)),
		Keys:     make([]string, 0, len(images)),
	}
	for i, encoded := range images {
		url, key, err := p.upload(ctx, prov.KeyPrefix, i+1, encoded, format)
		if err != nil {
			result.Status = http.StatusInternalServerError
			log.Error().Err(err).
				Int("index", i+1).
				Strs("stored", result.Keys).
				Msg("imagegen: upload loop aborted")
			return result, &UploadError{Index: i + 1, Stored: len(result.URLs), Err: err}
		}
		result.URLs = append(result.URLs, url)
		result.Keys = append(result.Keys, key)
	}

	result.Status = http.StatusCreated
	if prov.Single {
		result.Message = i18n.T(ctx, i18n.MsgGeneratedImage)
	} else {
		result.Message = i18n.T(ctx, i18n.MsgGeneratedImages, len(result.URLs))
	}
	log.Info().Int("images", len(result.URLs)).Strs("keys", result.Keys).Msg("imagegen: images stored")
	return result, nil
}

func (p *Pipeline) upload(ctx context.Context, prefix string, index int, encoded string, format ImageFormat) (string, string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", "", fmt.Errorf("decode image %d: %w", index, err)
	}
	key := p.keys.Key(prefix, index, format.Ext)
	ctx, cancel := context.WithTimeout(ctx, p.uploadTimeout)
	defer cancel()
	url, err := p.store.Put(ctx, storage.Object{Key: key, Body: data, ContentType: format.ContentType})
	if err != nil {
		return "", "", err
	}
	return url, key, nil
}

func invalid(ctx context.Context, key string, args ...any) error {
	return &ValidationError{Message: i18n.T(ctx, key, args...)}
}

func truncate(raw []byte, limit int) string {
	if len(raw) <= limit {
		return string(raw)
	}
	return string(raw[:limit]) + "..."
}

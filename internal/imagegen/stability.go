package imagegen

import (
	"context"
	"strings"

	"imagen/internal/i18n"
)

const (
	OutputFormatPNG  = "png"
	OutputFormatJPEG = "jpeg"

	stabilityAspectRatio = "3:2"
	stabilityKeyPrefix   = "stability_"
)

type stabilityRequest struct {
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negative_prompt,omitempty"`
	AspectRatio    string `json:"aspect_ratio"`
	OutputFormat   string `json:"output_format"`
	Seed           int64  `json:"seed"`
}

// Stability drives Stable Image models: one image per call, 3:2 aspect ratio,
// png or jpeg output. A guardrail flag only counts when no image came back.
func Stability(modelID string) Provider {
	return Provider{
		Name:       "stability",
		ModelID:    strings.TrimSpace(modelID),
		KeyPrefix:  stabilityKeyPrefix,
		Guarded:    true,
		Single:     true,
		RandomSeed: true,
		Normalize: func(ctx context.Context, req *Request) error {
			req.OutputFormat = strings.ToLower(strings.TrimSpace(req.OutputFormat))
			if req.OutputFormat == "" {
				req.OutputFormat = OutputFormatPNG
			}
			if req.OutputFormat != OutputFormatPNG && req.OutputFormat != OutputFormatJPEG {
				return invalid(ctx, i18n.MsgOutputFormatInvalid)
			}
			return nil
		},
		Body: func(req Request, seed int64) any {
			return stabilityRequest{
				Prompt:         req.Prompt,
				NegativePrompt: negativePromptDetailed,
				AspectRatio:    stabilityAspectRatio,
				OutputFormat:   req.OutputFormat,
				Seed:           seed,
			}
		},
		Parse: parseImagesResponse,
		Format: func(req Request) ImageFormat {
			if req.OutputFormat == OutputFormatJPEG {
				return formatFor("jpg")
			}
			return formatFor("png")
		},
		Metadata: func(req Request) Metadata {
			return Metadata{Prompt: req.Prompt, OutputFormat: req.OutputFormat}
		},
	}
}

package imagegen

import (
	"context"
	"strings"
)

// Generic drives the Titan wire format with fixed settings: a 1024x1024 square,
// standard quality and seed 0, so identical prompts give identical images.
// Batches above MaxImages are capped rather than rejected.
func Generic(modelID string) Provider {
	return Provider{
		Name:    "generic",
		ModelID: strings.TrimSpace(modelID),
		Normalize: func(ctx context.Context, req *Request) error {
			return validateCount(ctx, req.NumberOfImages)
		},
		Body: func(req Request, seed int64) any {
			return titanRequest{
				TaskType: titanTaskTextImage,
				TextToImageParams: titanTextParams{
					Text:         req.Prompt,
					NegativeText: negativePromptBasic,
				},
				ImageGenerationConfig: titanImageConfig{
					NumberOfImages: min(req.NumberOfImages, MaxImages),
					Quality:        "standard",
					Height:         1024,
					Width:          1024,
					CfgScale:       titanCfgScale,
					Seed:           seed,
				},
			}
		},
		Parse:    parseImagesResponse,
		Format:   pngFormat,
		Metadata: countMetadata,
	}
}

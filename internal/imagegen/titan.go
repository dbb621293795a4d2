package imagegen

import (
	"context"
	"strings"

	"imagen/internal/i18n"
)

const (
	titanTaskTextImage = "TEXT_IMAGE"
	titanCfgScale      = 8

	negativePromptBasic    = "low quality, bad quality, worst quality, blurry, out of focus, deformed, unrealistic, unreal, bad anatomy"
	negativePromptDetailed = "low quality, bad quality, worst quality, blurry, out of focus, deformed, bad anatomy, cross-eye, deformed eyes"
)

const (
	InputSizeLandscape = "landscape"
	InputSizePortrait  = "portrait"
)

type dimensions struct {
	Width  int
	Height int
}

var titanSizes = map[string]dimensions{
	InputSizeLandscape: {Width: 1152, Height: 768},
	InputSizePortrait:  {Width: 448, Height: 576},
}

type titanRequest struct {
	TaskType              string           `json:"taskType"`
	TextToImageParams     titanTextParams  `json:"textToImageParams"`
	ImageGenerationConfig titanImageConfig `json:"imageGenerationConfig"`
}

type titanTextParams struct {
	Text         string `json:"text"`
	NegativeText string `json:"negativeText,omitempty"`
}

type titanImageConfig struct {
	NumberOfImages int     `json:"numberOfImages"`
	Quality        string  `json:"quality"`
	Height         int     `json:"height"`
	Width          int     `json:"width"`
	CfgScale       float64 `json:"cfgScale"`
	Seed           int64   `json:"seed"`
}

// Titan drives the Titan Image Generator with size presets, premium quality,
// a random seed and guardrail handling. Batches above MaxImages are rejected.
func Titan(modelID string) Provider {
	return Provider{
		Name:             "titan",
		ModelID:          strings.TrimSpace(modelID),
		Guarded:          true,
		StrictModeration: true,
		RandomSeed:       true,
		Normalize: func(ctx context.Context, req *Request) error {
			if err := validateCount(ctx, req.NumberOfImages); err != nil {
				return err
			}
			if req.NumberOfImages > MaxImages {
				return invalid(ctx, i18n.MsgImageCountTooMany, MaxImages)
			}
			req.InputSize = strings.ToLower(strings.TrimSpace(req.InputSize))
			if req.InputSize == "" {
				req.InputSize = InputSizeLandscape
			}
			if _, ok := titanSizes[req.InputSize]; !ok {
				return invalid(ctx, i18n.MsgInputSizeInvalid)
			}
			return nil
		},
		Body: func(req Request, seed int64) any {
			size := titanSizes[req.InputSize]
			return titanRequest{
				TaskType: titanTaskTextImage,
				TextToImageParams: titanTextParams{
					Text:         req.Prompt,
					NegativeText: negativePromptDetailed,
				},
				ImageGenerationConfig: titanImageConfig{
					NumberOfImages: min(req.NumberOfImages, MaxImages),
					Quality:        "premium",
					Width:          size.Width,
					Height:         size.Height,
					CfgScale:       titanCfgScale,
					Seed:           seed,
				},
			}
		},
		Parse:  parseImagesResponse,
		Format: pngFormat,
		Metadata: func(req Request) Metadata {
			md := countMetadata(req)
			md.InputSize = req.InputSize
			return md
		},
	}
}

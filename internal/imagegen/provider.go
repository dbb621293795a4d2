package imagegen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"imagen/internal/i18n"
	"imagen/internal/storage"
)

// Provider describes how one Bedrock model family is driven. The pipeline owns
// the flow; a Provider only shapes requests and reads responses.
type Provider struct {
	Name      string
	ModelID   string
	KeyPrefix string
	// Guarded attaches the configured guardrail to the invocation.
	Guarded bool
	// Single keeps only the first image and answers with a single URL.
	Single bool
	// StrictModeration refuses on the guardrail flag even when images came back.
	StrictModeration bool
	// RandomSeed draws a fresh seed per call; otherwise seed 0 is sent.
	RandomSeed bool

	Normalize func(ctx context.Context, req *Request) error
	Body      func(req Request, seed int64) any
	Parse     func(raw []byte) (*Output, error)
	Format    func(req Request) ImageFormat
	Metadata  func(req Request) Metadata
}

const guardrailIntervened = "INTERVENED"

// imagesResponse is the response shape shared by Titan and Stability models.
type imagesResponse struct {
	Images          []string `json:"images"`
	GuardrailAction string   `json:"amazon-bedrock-guardrailAction"`
}

func parseImagesResponse(raw []byte) (*Output, error) {
	var resp imagesResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	images := make([]string, 0, len(resp.Images))
	for _, img := range resp.Images {
		if img = strings.TrimSpace(img); img != "" {
			images = append(images, img)
		}
	}
	return &Output{
		Images:     images,
		Intervened: strings.EqualFold(resp.GuardrailAction, guardrailIntervened),
	}, nil
}

func formatFor(ext string) ImageFormat {
	return ImageFormat{Ext: ext, ContentType: storage.ContentTypeForExt(ext)}
}

func pngFormat(Request) ImageFormat {
	return formatFor("png")
}

func countMetadata(req Request) Metadata {
	n := req.NumberOfImages
	return Metadata{Prompt: req.Prompt, NumberOfImages: &n}
}

func validateCount(ctx context.Context, n int) error {
	if n < 1 {
		return invalid(ctx, i18n.MsgImageCountInvalid)
	}
	return nil
}

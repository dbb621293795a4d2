package bedrock

import (
	"context"
	"fmt"

	bedrockapi "github.com/aws/aws-sdk-go-v2/service/bedrock"
)

// ListFoundationModelsAPI is the subset of the Bedrock control plane client used
// for connectivity checks.
type ListFoundationModelsAPI interface {
	ListFoundationModels(ctx context.Context, params *bedrockapi.ListFoundationModelsInput, optFns ...func(*bedrockapi.Options)) (*bedrockapi.ListFoundationModelsOutput, error)
}

// CountFoundationModels returns how many foundation models the credentials can see.
func CountFoundationModels(ctx context.Context, api ListFoundationModelsAPI) (int, error) {
	out, err := api.ListFoundationModels(ctx, &bedrockapi.ListFoundationModelsInput{})
	if err != nil {
		return 0, fmt.Errorf("bedrock: list foundation models: %w", err)
	}
	return len(out.ModelSummaries), nil
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"imagen/internal/infra"
	"imagen/internal/providers/bedrock"
)

func main() {
	var timeout time.Duration
	flag.DurationVar(&timeout, "timeout", 15*time.Second, "Deadline for the model listing call")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if !cfg.HasStaticCredentials() {
		fmt.Println("GAGAL menemukan credentials")
		os.Exit(1)
	}

	logger := infra.NewLogger("cli").With().Str("cmd", "bedrockcheck").Str("region", cfg.AWSRegion).Logger()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	awsCfg, err := infra.NewAWSConfig(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	count, err := bedrock.CountFoundationModels(ctx, infra.NewBedrockClient(awsCfg))
	if err != nil {
		logger.Debug().Err(err).Msg("list foundation models failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("SUKSES: %d model tersedia\n", count)
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"imagen/internal/imagegen"
	"imagen/internal/infra"
)

// Version is reported by the info route.
const Version = "1.0.0"

// Generator runs one request through a provider strategy.
type Generator interface {
	Generate(ctx context.Context, prov imagegen.Provider, req imagegen.Request) (*imagegen.Result, error)
}

// App holds the dependencies shared by every handler.
type App struct {
	Config    *infra.Config
	Logger    zerolog.Logger
	Generator Generator

	Generic   imagegen.Provider
	Titan     imagegen.Provider
	Stability imagegen.Provider
}

// NewApp binds the three provider strategies to the configured model ids.
func NewApp(cfg *infra.Config, logger zerolog.Logger, gen Generator) *App {
	return &App{
		Config:    cfg,
		Logger:    logger,
		Generator: gen,
		Generic:   imagegen.Generic(cfg.GenericModelID),
		Titan:     imagegen.Titan(cfg.TitanModelID),
		Stability: imagegen.Stability(cfg.StabilityModelID),
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (a *App) error(w http.ResponseWriter, code int, detail string) {
	a.json(w, code, errorResponse{Detail: detail})
}

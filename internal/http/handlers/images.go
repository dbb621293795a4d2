package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"imagen/internal/i18n"
	"imagen/internal/imagegen"
	"imagen/internal/middleware"
)

const maxBodyBytes = 1 << 20

type generateImageRequest struct {
	Prompt         string `json:"prompt"`
	NumberOfImages *int   `json:"number_of_images"`
}

type titanGenerateRequest struct {
	Prompt         string `json:"prompt"`
	NumberOfImages *int   `json:"number_of_images"`
	InputSize      string `json:"input_size"`
}

type stabilityGenerateRequest struct {
	Prompt       string `json:"prompt"`
	OutputFormat string `json:"output_format"`
}

type imageListResponse struct {
	Status   int               `json:"status"`
	Message  string            `json:"message"`
	Data     []string          `json:"data"`
	Metadata imagegen.Metadata `json:"metadata"`
}

type imageResponse struct {
	Status   int               `json:"status"`
	Message  string            `json:"message"`
	Data     string            `json:"data"`
	Metadata imagegen.Metadata `json:"metadata"`
}

// uploadFailureResponse reports the objects stored before the upload loop
// stopped. They are not rolled back.
type uploadFailureResponse struct {
	Detail string   `json:"detail"`
	Stored int      `json:"stored"`
	Data   []string `json:"data"`
}

// GenerateImage serves POST /generate/image.
func (a *App) GenerateImage(w http.ResponseWriter, r *http.Request) {
	var req generateImageRequest
	if !a.decode(w, r, &req) {
		return
	}
	a.generate(w, r, a.Generic, imagegen.Request{
		Prompt:         req.Prompt,
		NumberOfImages: countOrDefault(req.NumberOfImages),
	})
}

// TitanGenerateImage serves POST /titan-generate/image.
func (a *App) TitanGenerateImage(w http.ResponseWriter, r *http.Request) {
	var req titanGenerateRequest
	if !a.decode(w, r, &req) {
		return
	}
	a.generate(w, r, a.Titan, imagegen.Request{
		Prompt:         req.Prompt,
		NumberOfImages: countOrDefault(req.NumberOfImages),
		InputSize:      req.InputSize,
	})
}

// StabilityGenerateImage serves POST /stability-generate/image.
func (a *App) StabilityGenerateImage(w http.ResponseWriter, r *http.Request) {
	var req stabilityGenerateRequest
	if !a.decode(w, r, &req) {
		return
	}
	a.generate(w, r, a.Stability, imagegen.Request{
		Prompt:       req.Prompt,
		OutputFormat: req.OutputFormat,
	})
}

func (a *App) generate(w http.ResponseWriter, r *http.Request, prov imagegen.Provider, req imagegen.Request) {
	ctx := r.Context()
	res, err := a.Generator.Generate(ctx, prov, req)
	status := statusFor(err)
	if err != nil {
		log := a.Logger.With().
			Str("request_id", middleware.RequestIDFromContext(ctx)).
			Str("provider", prov.Name).
			Int("status", status).
			Logger()
		if status != http.StatusInternalServerError {
			log.Info().Str("reason", err.Error()).Msg("image generation rejected")
			a.error(w, status, err.Error())
			return
		}
		event := log.Error().Err(err)
		if res != nil {
			event = event.Strs("stored_urls", res.URLs)
		}
		event.Msg("image generation failed")
		var uerr *imagegen.UploadError
		if errors.As(err, &uerr) && res != nil {
			a.json(w, status, uploadFailureResponse{
				Detail: a.internalDetail(r, err),
				Stored: len(res.URLs),
				Data:   res.URLs,
			})
			return
		}
		a.error(w, status, a.internalDetail(r, err))
		return
	}

	if res.Single {
		url := ""
		if len(res.URLs) > 0 {
			url = res.URLs[0]
		}
		a.json(w, status, imageResponse{Status: res.Status, Message: res.Message, Data: url, Metadata: res.Metadata})
		return
	}
	a.json(w, status, imageListResponse{Status: res.Status, Message: res.Message, Data: res.URLs, Metadata: res.Metadata})
}

// statusFor is the single place where pipeline outcomes become HTTP statuses.
func statusFor(err error) int {
	var validation *imagegen.ValidationError
	var refusal *imagegen.RefusalError
	switch {
	case err == nil:
		return http.StatusCreated
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &refusal):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (a *App) internalDetail(r *http.Request, err error) string {
	detail := i18n.T(r.Context(), i18n.MsgInternalError)
	if a.Config.IsProduction() {
		return detail
	}
	return detail + ": " + err.Error()
}

func (a *App) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		a.error(w, http.StatusBadRequest, i18n.T(r.Context(), i18n.MsgInvalidBody))
		return false
	}
	return true
}

func countOrDefault(n *int) int {
	if n == nil {
		return 1
	}
	return *n
}

package handlers

import (
	"net/http"

	"imagen/internal/i18n"
)

type infoResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
}

// Info doubles as the liveness probe.
func (a *App) Info(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, infoResponse{
		Message: i18n.T(r.Context(), i18n.MsgServiceInfo),
		Version: Version,
	})
}

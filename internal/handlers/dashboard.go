package handlers

import (
	_ "embed"
	"net/http"

	"github.com/skip2/go-qrcode"
)

//go:embed static/index.html
var dashboardHTML []byte

func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(dashboardHTML)
}

// HandleQR renders the dashboard URL as a PNG so a phone on the same
// network can open it.
func (h *Handler) HandleQR(w http.ResponseWriter, r *http.Request) {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	png, err := qrcode.Encode(scheme+"://"+r.Host+"/", qrcode.Medium, 256)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

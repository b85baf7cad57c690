package handle

import (
	"net/http"
	"strings"
)

type DetectRequest struct {
	Image string `json:"image"`
}

func (h *Handle) Detect(w http.ResponseWriter, r *http.Request) {
	var req DetectRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Image) == "" {
		writeError(w, r, http.StatusBadRequest, "image is required")
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	out, err := h.hazards.Detect(ctx, req.Image)
	if err != nil {
		h.fail(w, r, "detect", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

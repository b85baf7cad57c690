package handle

import (
	"net/http"
	"strings"
)

type ReadRequest struct {
	Image string `json:"image"`
	Text  string `json:"text"`
}

func (h *Handle) Read(w http.ResponseWriter, r *http.Request) {
	var req ReadRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Image) == "" {
		writeError(w, r, http.StatusBadRequest, "image is required")
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	out, err := h.reader.Read(ctx, req.Image, req.Text)
	if err != nil {
		h.fail(w, r, "reader", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

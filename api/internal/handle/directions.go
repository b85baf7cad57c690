package handle

import (
	"net/http"

	"navbuddy/api/internal/directions"
)

func (h *Handle) Directions(w http.ResponseWriter, r *http.Request) {
	var req directions.Request
	if !decode(w, r, &req) {
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	route, err := h.directions.Get(ctx, req)
	if err != nil {
		h.fail(w, r, "directions", err)
		return
	}
	writeJSON(w, http.StatusOK, route)
}

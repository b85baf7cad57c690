package handle

import (
	"net/http"

	"navbuddy/api/internal/places"
)

type SearchPlacesRequest struct {
	TextQuery          string         `json:"textQuery"`
	CurrentCoordinates *places.LatLng `json:"currentCoordinates"`
	Radius             float64        `json:"radius,omitempty"`
	Fields             []string       `json:"fields,omitempty"`
	RankPreference     string         `json:"rankPreference,omitempty"`
	Mode               string         `json:"mode,omitempty"`
}

type SearchPlacesResponse struct {
	Places []places.Candidate `json:"places"`
}

func (h *Handle) SearchPlaces(w http.ResponseWriter, r *http.Request) {
	var req SearchPlacesRequest
	if !decode(w, r, &req) {
		return
	}
	if req.CurrentCoordinates == nil {
		writeError(w, r, http.StatusBadRequest, "currentCoordinates is required")
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	found, err := h.places.Search(ctx, places.Query{
		TextQuery:      req.TextQuery,
		Origin:         *req.CurrentCoordinates,
		Radius:         req.Radius,
		Fields:         req.Fields,
		RankPreference: req.RankPreference,
		Mode:           req.Mode,
	})
	if err != nil {
		h.fail(w, r, "places", err)
		return
	}
	writeJSON(w, http.StatusOK, SearchPlacesResponse{Places: found})
}

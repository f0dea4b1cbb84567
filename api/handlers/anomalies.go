package handlers

import (
	"net/http"
	"strconv"

	"github.com/agrostats/faostat-api/api/anomaly"
	"github.com/agrostats/faostat-api/api/query"
)

// Anomalies runs the successive-year anomaly scan over the producer price
// series and returns the run report without persisting it. The admin CLI
// runs the same scan and writes the JSON artifact.
func (a *API) Anomalies(w http.ResponseWriter, r *http.Request) {
	threshold := anomaly.DefaultThresholdPercent
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			writeError(w, a.Log, query.Validation("invalid_parameter",
				"threshold must be a positive number"))
			return
		}
		threshold = parsed
	}

	observations, err := anomaly.Fetch(r.Context(), a.Engine.Store())
	if err != nil {
		writeError(w, a.Log, err)
		return
	}

	detector := anomaly.NewDetector(threshold)
	detector.Clock = a.Clock
	writeJSON(w, http.StatusOK, detector.Scan(observations))
}

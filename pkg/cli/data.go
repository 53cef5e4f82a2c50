package cli

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/mchmarny/propensity/pkg/dashboard"
	"github.com/mchmarny/propensity/pkg/data"
	"github.com/mchmarny/propensity/pkg/faq"
	"github.com/mchmarny/propensity/pkg/score"
)

type askRequest struct {
	Query string `json:"query"`
}

type askResponse struct {
	Answer string `json:"answer" yaml:"answer"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, serverMaxBodyBytes)).Decode(v)
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": version})
}

func modelAPIHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, newModelResult())
}

func (a *api) scoreAPIHandler(w http.ResponseWriter, r *http.Request) {
	var c score.Customer
	if err := decodeBody(w, r, &c); err != nil {
		a.log.Debug("error binding json", "error", err)
		writeError(w, http.StatusBadRequest, "invalid customer json")
		return
	}

	if err := score.Validate(c); err != nil {
		a.metrics.rejected.Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	explain, _ := strconv.ParseBool(r.URL.Query().Get("explain"))
	res := newScoreResult(c, explain)
	a.metrics.observeScore(res.Band, res.Score)

	writeJSON(w, http.StatusOK, res)
}

func (a *api) batchAPIHandler(w http.ResponseWriter, r *http.Request) {
	var list []*score.Customer
	if err := decodeBody(w, r, &list); err != nil {
		a.log.Debug("error binding json", "error", err)
		writeError(w, http.StatusBadRequest, "invalid customer list json")
		return
	}

	res, err := data.ScoreAll(r.Context(), data.Name(list), a.workers)
	if err != nil {
		a.log.Error("failed to score batch", "error", err)
		writeError(w, http.StatusInternalServerError, "error scoring batch")
		return
	}

	for _, s := range res.Results {
		if s.Error != "" {
			a.metrics.rejected.Inc()
			continue
		}
		a.metrics.observeScore(s.Band, s.Score)
	}

	writeJSON(w, http.StatusOK, res)
}

func (a *api) dashboardAPIHandler(w http.ResponseWriter, _ *http.Request) {
	s, err := dashboard.Build(dashboard.SampleProfile())
	if err != nil {
		a.log.Error("failed to build dashboard", "error", err)
		writeError(w, http.StatusInternalServerError, "error building dashboard")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (a *api) askAPIHandler(w http.ResponseWriter, r *http.Request) {
	var q askRequest
	if err := decodeBody(w, r, &q); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "query too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid query json")
		return
	}

	if strings.TrimSpace(q.Query) == "" {
		writeError(w, http.StatusBadRequest, "query required")
		return
	}

	answer, topic := faq.Match(q.Query)
	a.metrics.observeTopic(topic)

	writeJSON(w, http.StatusOK, &askResponse{Answer: answer})
}

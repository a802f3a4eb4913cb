package api

import (
	"time"

	"github.com/pulseboard/pulseboard/internal/auth"
	"github.com/pulseboard/pulseboard/internal/model"
	"github.com/pulseboard/pulseboard/internal/service"
)

// TargetResponse is the serialized target resource. The URL is masked for
// unauthenticated readers.
type TargetResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Enabled   bool      `json:"enabled"`
	IntervalS int       `json:"interval_s"`
	TimeoutS  int       `json:"timeout_s"`
	VerifyTLS bool      `json:"verify_tls"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func targetResponse(t model.Target, exposeURL bool) TargetResponse {
	u := t.URL
	if !exposeURL {
		u = auth.MaskURL(u)
	}
	return TargetResponse{
		ID:        t.ID,
		Name:      t.Name,
		URL:       u,
		Enabled:   t.Enabled,
		IntervalS: t.IntervalS,
		TimeoutS:  t.TimeoutS,
		VerifyTLS: t.VerifyTLS,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// StatusResponse is one row of the latest-status view. Observation fields
// are null for targets that have never been probed.
type StatusResponse struct {
	TargetID     string     `json:"target_id"`
	Name         string     `json:"name"`
	URL          string     `json:"url"`
	Up           *bool      `json:"up"`
	LastChecked  *time.Time `json:"last_checked"`
	LatencyMS    *int64     `json:"latency_ms"`
	HTTPStatus   *int       `json:"http_status"`
	ErrorType    *string    `json:"error_type"`
	ErrorMessage *string    `json:"error_message"`
}

func statusResponse(row service.StatusRow, exposeURL bool) StatusResponse {
	u := row.Target.URL
	if !exposeURL {
		u = auth.MaskURL(u)
	}
	resp := StatusResponse{
		TargetID: row.Target.ID,
		Name:     row.Target.Name,
		URL:      u,
	}
	if c := row.Check; c != nil {
		up := c.Up
		checked := c.CheckedAt
		errType := string(c.ErrorType)
		resp.Up = &up
		resp.LastChecked = &checked
		resp.LatencyMS = c.LatencyMS
		resp.HTTPStatus = c.HTTPStatus
		resp.ErrorType = &errType
		resp.ErrorMessage = c.ErrorMessage
	}
	return resp
}

// checkResponses guarantees a non-nil slice so empty histories serialize as
// JSON arrays.
func checkResponses(checks []model.Check) []model.Check {
	if checks == nil {
		return []model.Check{}
	}
	return checks
}

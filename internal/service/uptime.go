// Package service composes store reads and writes into the operations the
// API exposes: target CRUD with validation, latest-status, history, and
// uptime aggregation.
package service

import (
	"errors"
	"fmt"
	"log"
	"math"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/pulseboard/pulseboard/internal/model"
	"github.com/pulseboard/pulseboard/internal/store"
)

const (
	maxNameLen = 255
	maxURLLen  = 2048

	minIntervalS = 10
	maxIntervalS = 3600
	minTimeoutS  = 1
	maxTimeoutS  = 30
)

// UptimeService implements target management and check aggregation on top of
// the store.
type UptimeService struct {
	store *store.Store
}

// NewUptimeService creates an UptimeService.
func NewUptimeService(st *store.Store) *UptimeService {
	return &UptimeService{store: st}
}

// --- target CRUD ---

// CreateTargetRequest is the payload for creating a target. Optional fields
// default to enabled=true, interval_s=60, timeout_s=10, verify_tls=true.
type CreateTargetRequest struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	Enabled   *bool  `json:"enabled"`
	IntervalS *int   `json:"interval_s"`
	TimeoutS  *int   `json:"timeout_s"`
	VerifyTLS *bool  `json:"verify_tls"`
}

// UpdateTargetRequest is the payload for partially updating a target.
// Nil fields are left unchanged.
type UpdateTargetRequest struct {
	Name      *string `json:"name"`
	URL       *string `json:"url"`
	Enabled   *bool   `json:"enabled"`
	IntervalS *int    `json:"interval_s"`
	TimeoutS  *int    `json:"timeout_s"`
	VerifyTLS *bool   `json:"verify_tls"`
}

// CreateTarget validates the request and persists a new target.
func (s *UptimeService) CreateTarget(req CreateTargetRequest) (*model.Target, error) {
	if err := validateName(req.Name); err != nil {
		return nil, err
	}
	if err := validateURL(req.URL); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	t := &model.Target{
		ID:        uuid.NewString(),
		Name:      req.Name,
		URL:       req.URL,
		Enabled:   true,
		IntervalS: 60,
		TimeoutS:  10,
		VerifyTLS: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Enabled != nil {
		t.Enabled = *req.Enabled
	}
	if req.IntervalS != nil {
		if err := validateRange("interval_s", *req.IntervalS, minIntervalS, maxIntervalS); err != nil {
			return nil, err
		}
		t.IntervalS = *req.IntervalS
	}
	if req.TimeoutS != nil {
		if err := validateRange("timeout_s", *req.TimeoutS, minTimeoutS, maxTimeoutS); err != nil {
			return nil, err
		}
		t.TimeoutS = *req.TimeoutS
	}
	if req.VerifyTLS != nil {
		t.VerifyTLS = *req.VerifyTLS
	}

	if err := s.store.CreateTarget(t); err != nil {
		log.Printf("[service] create target failed: %v", err)
		return nil, internal("failed to create target")
	}
	return t, nil
}

// GetTarget returns a target by ID.
func (s *UptimeService) GetTarget(id string) (*model.Target, error) {
	t, err := s.store.GetTarget(id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFound("Target not found")
	}
	if err != nil {
		log.Printf("[service] get target failed: %v", err)
		return nil, internal("failed to load target")
	}
	return t, nil
}

// ListTargets returns all targets.
func (s *UptimeService) ListTargets() ([]model.Target, error) {
	targets, err := s.store.ListTargets()
	if err != nil {
		log.Printf("[service] list targets failed: %v", err)
		return nil, internal("failed to list targets")
	}
	return targets, nil
}

// UpdateTarget applies a partial update to a target.
func (s *UptimeService) UpdateTarget(id string, req UpdateTargetRequest) (*model.Target, error) {
	t, err := s.GetTarget(id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := validateName(*req.Name); err != nil {
			return nil, err
		}
		t.Name = *req.Name
	}
	if req.URL != nil {
		if err := validateURL(*req.URL); err != nil {
			return nil, err
		}
		t.URL = *req.URL
	}
	if req.Enabled != nil {
		t.Enabled = *req.Enabled
	}
	if req.IntervalS != nil {
		if err := validateRange("interval_s", *req.IntervalS, minIntervalS, maxIntervalS); err != nil {
			return nil, err
		}
		t.IntervalS = *req.IntervalS
	}
	if req.TimeoutS != nil {
		if err := validateRange("timeout_s", *req.TimeoutS, minTimeoutS, maxTimeoutS); err != nil {
			return nil, err
		}
		t.TimeoutS = *req.TimeoutS
	}
	if req.VerifyTLS != nil {
		t.VerifyTLS = *req.VerifyTLS
	}

	t.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateTarget(t); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("Target not found")
		}
		log.Printf("[service] update target failed: %v", err)
		return nil, internal("failed to update target")
	}
	return t, nil
}

// DeleteTarget removes a target and all its checks.
func (s *UptimeService) DeleteTarget(id string) error {
	err := s.store.DeleteTarget(id)
	if errors.Is(err, store.ErrNotFound) {
		return notFound("Target not found")
	}
	if err != nil {
		log.Printf("[service] delete target failed: %v", err)
		return internal("failed to delete target")
	}
	return nil
}

// --- aggregation ---

// StatusRow pairs a target with its latest check; Check is nil when the
// target has never been probed.
type StatusRow struct {
	Target model.Target
	Check  *model.Check
}

// Status returns every target joined with its most recent check.
func (s *UptimeService) Status() ([]StatusRow, error) {
	latest, err := s.store.LatestChecksPerTarget()
	if err != nil {
		log.Printf("[service] latest checks failed: %v", err)
		return nil, internal("failed to load status")
	}
	targets, err := s.store.ListTargets()
	if err != nil {
		log.Printf("[service] list targets failed: %v", err)
		return nil, internal("failed to load status")
	}

	rows := make([]StatusRow, 0, len(targets))
	for _, t := range targets {
		row := StatusRow{Target: t}
		if c, ok := latest[t.ID]; ok {
			check := c
			row.Check = &check
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// TargetHistory returns a target's checks from the last N hours, newest
// first. Unknown targets yield NOT_FOUND.
func (s *UptimeService) TargetHistory(id string, hours int) ([]model.Check, error) {
	if _, err := s.GetTarget(id); err != nil {
		return nil, err
	}
	return s.history(store.HistoryFilter{
		TargetID: id,
		Since:    time.Now().UTC().Add(-time.Duration(hours) * time.Hour),
	})
}

// History returns checks across all targets from the last N hours, with
// optional target and up filters, newest first.
func (s *UptimeService) History(hours int, targetID string, up *bool) ([]model.Check, error) {
	return s.history(store.HistoryFilter{
		TargetID: targetID,
		Since:    time.Now().UTC().Add(-time.Duration(hours) * time.Hour),
		Up:       up,
	})
}

func (s *UptimeService) history(f store.HistoryFilter) ([]model.Check, error) {
	checks, err := s.store.History(f)
	if err != nil {
		log.Printf("[service] history failed: %v", err)
		return nil, internal("failed to load history")
	}
	return checks, nil
}

// UptimeStats is the rolling uptime aggregate for a target.
type UptimeStats struct {
	TargetID         string  `json:"target_id"`
	Name             string  `json:"name"`
	UptimePercentage float64 `json:"uptime_percentage"`
	TotalChecks      int     `json:"total_checks"`
	UpChecks         int     `json:"up_checks"`
	DownChecks       int     `json:"down_checks"`
}

// Uptime computes rolling uptime for a target over the last N days.
// Zero checks yields an uptime percentage of 0.
func (s *UptimeService) Uptime(id string, days int) (*UptimeStats, error) {
	t, err := s.GetTarget(id)
	if err != nil {
		return nil, err
	}

	since := time.Now().UTC().AddDate(0, 0, -days)
	total, up, err := s.store.AggregateUptime(id, since)
	if err != nil {
		log.Printf("[service] aggregate uptime failed: %v", err)
		return nil, internal("failed to aggregate uptime")
	}

	stats := &UptimeStats{
		TargetID:    t.ID,
		Name:        t.Name,
		TotalChecks: total,
		UpChecks:    up,
		DownChecks:  total - up,
	}
	if total > 0 {
		stats.UptimePercentage = round2(float64(up) / float64(total) * 100)
	}
	return stats, nil
}

// DailyUptime is one UTC calendar day's uptime aggregate.
type DailyUptime struct {
	Date             string  `json:"date"`
	UptimePercentage float64 `json:"uptime_percentage"`
	TotalChecks      int     `json:"total_checks"`
	UpChecks         int     `json:"up_checks"`
	DownChecks       int     `json:"down_checks"`
}

// DailyUptimes buckets a target's checks into the last N UTC calendar days,
// oldest first. A day with zero checks reports 100.0. Exactly days entries
// are returned.
func (s *UptimeService) DailyUptimes(id string, days int) ([]DailyUptime, error) {
	if _, err := s.GetTarget(id); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	since := now.AddDate(0, 0, -days)
	checks, err := s.store.ChecksForTargetSince(id, since)
	if err != nil {
		log.Printf("[service] daily uptime failed: %v", err)
		return nil, internal("failed to aggregate daily uptime")
	}

	type bucket struct{ total, up int }
	byDay := make(map[string]*bucket)
	for _, c := range checks {
		key := c.CheckedAt.Format(time.DateOnly)
		b := byDay[key]
		if b == nil {
			b = &bucket{}
			byDay[key] = b
		}
		b.total++
		if c.Up {
			b.up++
		}
	}

	result := make([]DailyUptime, 0, days)
	for i := days - 1; i >= 0; i-- {
		key := now.AddDate(0, 0, -i).Format(time.DateOnly)
		entry := DailyUptime{Date: key, UptimePercentage: 100.0}
		if b, ok := byDay[key]; ok && b.total > 0 {
			entry.TotalChecks = b.total
			entry.UpChecks = b.up
			entry.DownChecks = b.total - b.up
			entry.UptimePercentage = round2(float64(b.up) / float64(b.total) * 100)
		}
		result = append(result, entry)
	}
	return result, nil
}

// --- validation helpers ---

func validateName(name string) error {
	if name == "" {
		return invalidArgument("name: must not be empty")
	}
	if len(name) > maxNameLen {
		return invalidArgument(fmt.Sprintf("name: must be at most %d characters", maxNameLen))
	}
	return nil
}

func validateURL(raw string) error {
	if raw == "" {
		return invalidArgument("url: must not be empty")
	}
	if len(raw) > maxURLLen {
		return invalidArgument(fmt.Sprintf("url: must be at most %d characters", maxURLLen))
	}
	u, err := url.Parse(raw)
	if err != nil {
		return invalidArgument("url: invalid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return invalidArgument("url: scheme must be http or https")
	}
	if u.Hostname() == "" {
		return invalidArgument("url: must have a host")
	}
	return nil
}

func validateRange(field string, v, min, max int) error {
	if v < min || v > max {
		return invalidArgument(fmt.Sprintf("%s: must be between %d and %d", field, min, max))
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package service

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pulseboard/pulseboard/internal/model"
	"github.com/pulseboard/pulseboard/internal/store"
)

func newTestService(t *testing.T) (*UptimeService, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "uptime.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return NewUptimeService(st), st
}

func mustCreateTarget(t *testing.T, svc *UptimeService, name string) *model.Target {
	t.Helper()
	target, err := svc.CreateTarget(CreateTargetRequest{
		Name: name,
		URL:  "https://" + name + ".example.com/health",
	})
	if err != nil {
		t.Fatalf("create target: %v", err)
	}
	return target
}

func insertCheckAt(t *testing.T, st *store.Store, targetID string, at time.Time, up bool) {
	t.Helper()
	latency := int64(20)
	c := &model.Check{
		ID:        uuid.NewString(),
		TargetID:  targetID,
		CheckedAt: at,
		Up:        up,
		LatencyMS: &latency,
		ErrorType: model.ErrorKindUnknown,
	}
	if !up {
		msg := "HTTP 500"
		c.ErrorType = model.ErrorKindHTTP
		c.ErrorMessage = &msg
	}
	if err := st.InsertCheck(c); err != nil {
		t.Fatal(err)
	}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("err = %v, want *ServiceError", err)
	}
	if svcErr.Code != code {
		t.Fatalf("code = %s, want %s (message: %s)", svcErr.Code, code, svcErr.Message)
	}
}

func TestCreateTarget_Defaults(t *testing.T) {
	svc, _ := newTestService(t)

	target, err := svc.CreateTarget(CreateTargetRequest{Name: "api", URL: "https://example.com"})
	if err != nil {
		t.Fatal(err)
	}
	if !target.Enabled || target.IntervalS != 60 || target.TimeoutS != 10 || !target.VerifyTLS {
		t.Errorf("defaults not applied: %+v", target)
	}
	if target.ID == "" {
		t.Error("empty ID")
	}
	if target.CreatedAt.IsZero() || !target.CreatedAt.Equal(target.UpdatedAt) {
		t.Errorf("timestamps: created=%v updated=%v", target.CreatedAt, target.UpdatedAt)
	}
}

func TestCreateTarget_Overrides(t *testing.T) {
	svc, _ := newTestService(t)

	enabled := false
	interval := 300
	timeout := 5
	verify := false
	target, err := svc.CreateTarget(CreateTargetRequest{
		Name:      "api",
		URL:       "http://example.com",
		Enabled:   &enabled,
		IntervalS: &interval,
		TimeoutS:  &timeout,
		VerifyTLS: &verify,
	})
	if err != nil {
		t.Fatal(err)
	}
	if target.Enabled || target.IntervalS != 300 || target.TimeoutS != 5 || target.VerifyTLS {
		t.Errorf("overrides not applied: %+v", target)
	}
}

func TestCreateTarget_Validation(t *testing.T) {
	svc, _ := newTestService(t)

	bad := []CreateTargetRequest{
		{Name: "", URL: "https://example.com"},
		{Name: strings.Repeat("n", 256), URL: "https://example.com"},
		{Name: "api", URL: ""},
		{Name: "api", URL: "ftp://example.com"},
		{Name: "api", URL: "https://"},
		{Name: "api", URL: "https://" + strings.Repeat("x", 2048) + ".com"},
	}
	for _, req := range bad {
		if _, err := svc.CreateTarget(req); err == nil {
			t.Errorf("accepted invalid request: %+v", req)
		} else {
			assertCode(t, err, CodeInvalidArgument)
		}
	}
}

func TestCreateTarget_IntervalAndTimeoutBounds(t *testing.T) {
	svc, _ := newTestService(t)

	for _, v := range []int{10, 3600} {
		iv := v
		if _, err := svc.CreateTarget(CreateTargetRequest{
			Name: "ok-" + uuid.NewString()[:8], URL: "https://example.com", IntervalS: &iv,
		}); err != nil {
			t.Errorf("interval %d rejected: %v", v, err)
		}
	}
	for _, v := range []int{9, 3601} {
		iv := v
		_, err := svc.CreateTarget(CreateTargetRequest{
			Name: "bad", URL: "https://example.com", IntervalS: &iv,
		})
		if err == nil {
			t.Errorf("interval %d accepted", v)
		}
	}
	for _, v := range []int{0, 31} {
		tv := v
		_, err := svc.CreateTarget(CreateTargetRequest{
			Name: "bad", URL: "https://example.com", TimeoutS: &tv,
		})
		if err == nil {
			t.Errorf("timeout %d accepted", v)
		}
	}
}

func TestUpdateTarget_Partial(t *testing.T) {
	svc, _ := newTestService(t)
	target := mustCreateTarget(t, svc, "api")

	name := "renamed"
	updated, err := svc.UpdateTarget(target.ID, UpdateTargetRequest{Name: &name})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Name != "renamed" {
		t.Errorf("Name = %s", updated.Name)
	}
	// Untouched fields survive.
	if updated.URL != target.URL || updated.IntervalS != 60 {
		t.Errorf("partial update clobbered fields: %+v", updated)
	}
	if !updated.UpdatedAt.After(target.UpdatedAt) && !updated.UpdatedAt.Equal(target.UpdatedAt) {
		t.Errorf("UpdatedAt went backwards: %v -> %v", target.UpdatedAt, updated.UpdatedAt)
	}
}

func TestUpdateTarget_NotFound(t *testing.T) {
	svc, _ := newTestService(t)
	name := "x"
	_, err := svc.UpdateTarget("missing", UpdateTargetRequest{Name: &name})
	assertCode(t, err, CodeNotFound)
}

func TestDeleteTarget_NotFound(t *testing.T) {
	svc, _ := newTestService(t)
	assertCode(t, svc.DeleteTarget("missing"), CodeNotFound)
}

func TestStatus(t *testing.T) {
	svc, st := newTestService(t)
	checked := mustCreateTarget(t, svc, "checked")
	fresh := mustCreateTarget(t, svc, "fresh")

	now := time.Now().UTC()
	insertCheckAt(t, st, checked.ID, now.Add(-time.Minute), true)
	insertCheckAt(t, st, checked.ID, now, false)

	rows, err := svc.Status()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}

	byID := make(map[string]StatusRow)
	for _, r := range rows {
		byID[r.Target.ID] = r
	}
	if byID[fresh.ID].Check != nil {
		t.Error("never-checked target has a check")
	}
	got := byID[checked.ID]
	if got.Check == nil {
		t.Fatal("checked target has nil check")
	}
	if got.Check.Up {
		t.Error("latest check should be the down one")
	}
}

func TestTargetHistory_NotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.TargetHistory("missing", 24)
	assertCode(t, err, CodeNotFound)
}

func TestTargetHistory_WindowAndOrder(t *testing.T) {
	svc, st := newTestService(t)
	target := mustCreateTarget(t, svc, "api")

	now := time.Now().UTC()
	insertCheckAt(t, st, target.ID, now.Add(-30*time.Hour), true) // outside 24h
	insertCheckAt(t, st, target.ID, now.Add(-2*time.Hour), true)
	insertCheckAt(t, st, target.ID, now.Add(-time.Hour), false)

	checks, err := svc.TargetHistory(target.ID, 24)
	if err != nil {
		t.Fatal(err)
	}
	if len(checks) != 2 {
		t.Fatalf("len = %d, want 2", len(checks))
	}
	if checks[0].Up || !checks[1].Up {
		t.Error("history not newest-first")
	}
}

func TestUptime(t *testing.T) {
	svc, st := newTestService(t)
	target := mustCreateTarget(t, svc, "api")

	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		insertCheckAt(t, st, target.ID, now.Add(-time.Duration(i+1)*time.Minute), true)
	}
	insertCheckAt(t, st, target.ID, now, false)

	stats, err := svc.Uptime(target.ID, 30)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalChecks != 4 || stats.UpChecks != 3 || stats.DownChecks != 1 {
		t.Errorf("counts: %+v", stats)
	}
	if stats.UptimePercentage != 75.0 {
		t.Errorf("UptimePercentage = %v, want 75", stats.UptimePercentage)
	}
}

func TestUptime_NoChecksIsZero(t *testing.T) {
	svc, _ := newTestService(t)
	target := mustCreateTarget(t, svc, "api")

	stats, err := svc.Uptime(target.ID, 30)
	if err != nil {
		t.Fatal(err)
	}
	if stats.UptimePercentage != 0 || stats.TotalChecks != 0 {
		t.Errorf("stats = %+v, want zeros", stats)
	}
}

func TestUptime_NotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Uptime("missing", 30)
	assertCode(t, err, CodeNotFound)
}

func TestDailyUptimes(t *testing.T) {
	svc, st := newTestService(t)
	target := mustCreateTarget(t, svc, "api")

	now := time.Now().UTC()
	y := now.AddDate(0, 0, -1)
	// Anchor mid-day so adding minutes never crosses a day boundary.
	yesterday := time.Date(y.Year(), y.Month(), y.Day(), 12, 0, 0, 0, time.UTC)
	insertCheckAt(t, st, target.ID, yesterday, true)
	insertCheckAt(t, st, target.ID, yesterday.Add(time.Minute), true)
	insertCheckAt(t, st, target.ID, yesterday.Add(2*time.Minute), false)

	daily, err := svc.DailyUptimes(target.ID, 7)
	if err != nil {
		t.Fatal(err)
	}
	if len(daily) != 7 {
		t.Fatalf("len = %d, want exactly 7", len(daily))
	}

	// Oldest first, ending today.
	if daily[6].Date != now.Format(time.DateOnly) {
		t.Errorf("last date = %s, want today", daily[6].Date)
	}
	for i := 1; i < len(daily); i++ {
		if daily[i].Date <= daily[i-1].Date {
			t.Error("daily entries not in ascending date order")
		}
	}

	var found bool
	for _, d := range daily {
		if d.Date == yesterday.Format(time.DateOnly) {
			found = true
			if d.TotalChecks != 3 || d.UpChecks != 2 || d.DownChecks != 1 {
				t.Errorf("counts: %+v", d)
			}
			if d.UptimePercentage != 66.67 {
				t.Errorf("UptimePercentage = %v, want 66.67", d.UptimePercentage)
			}
			continue
		}
		// Empty days report 100% with zero counts.
		if d.UptimePercentage != 100.0 || d.TotalChecks != 0 {
			t.Errorf("empty day %s: %+v", d.Date, d)
		}
	}
	if !found {
		t.Error("yesterday's bucket missing")
	}
}

func TestDailyUptimes_NotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.DailyUptimes("missing", 7)
	assertCode(t, err, CodeNotFound)
}

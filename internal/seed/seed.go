// Package seed loads monitoring targets from a YAML file at startup.
package seed

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pulseboard/pulseboard/internal/model"
	"github.com/pulseboard/pulseboard/internal/service"
)

type seedTarget struct {
	Name      string `yaml:"name"`
	URL       string `yaml:"url"`
	Enabled   *bool  `yaml:"enabled"`
	IntervalS *int   `yaml:"interval_s"`
	TimeoutS  *int   `yaml:"timeout_s"`
	VerifyTLS *bool  `yaml:"verify_tls"`
}

// Apply reads the seed file and upserts each entry by name: existing targets
// are updated in place, new names are created. Missing file is an error;
// callers decide whether seeding is optional.
func Apply(path string, svc *service.UptimeService) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}

	var entries []seedTarget
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}

	existing, err := svc.ListTargets()
	if err != nil {
		return fmt.Errorf("list targets: %w", err)
	}
	byName := make(map[string]model.Target, len(existing))
	for _, t := range existing {
		byName[t.Name] = t
	}

	var created, updated int
	for i, e := range entries {
		if e.Name == "" {
			return fmt.Errorf("seed entry %d: name is required", i)
		}
		if t, ok := byName[e.Name]; ok {
			req := service.UpdateTargetRequest{
				Enabled:   e.Enabled,
				IntervalS: e.IntervalS,
				TimeoutS:  e.TimeoutS,
				VerifyTLS: e.VerifyTLS,
			}
			if e.URL != "" {
				u := e.URL
				req.URL = &u
			}
			if _, err := svc.UpdateTarget(t.ID, req); err != nil {
				return fmt.Errorf("seed entry %q: %w", e.Name, err)
			}
			updated++
			continue
		}
		if _, err := svc.CreateTarget(service.CreateTargetRequest{
			Name:      e.Name,
			URL:       e.URL,
			Enabled:   e.Enabled,
			IntervalS: e.IntervalS,
			TimeoutS:  e.TimeoutS,
			VerifyTLS: e.VerifyTLS,
		}); err != nil {
			return fmt.Errorf("seed entry %q: %w", e.Name, err)
		}
		created++
	}

	log.Printf("[seed] applied %s: %d created, %d updated", path, created, updated)
	return nil
}

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Plan describes a subscription plan tag and the seat allowance it grants.
type Plan struct {
	Name          string `yaml:"name"`
	SeatAllowance int    `yaml:"seat_allowance"`
	TrialDays     int    `yaml:"trial_days"`
}

// PlanCatalog maps plan tags to their allowances. The seat sync service
// consults it before an invitation is created.
type PlanCatalog struct {
	Plans map[string]Plan `yaml:"plans"`
}

// defaultCatalog is used when no plans file is deployed.
var defaultCatalog = PlanCatalog{
	Plans: map[string]Plan{
		"free":     {Name: "free", SeatAllowance: 3, TrialDays: 0},
		"team":     {Name: "team", SeatAllowance: 10, TrialDays: 14},
		"business": {Name: "business", SeatAllowance: 50, TrialDays: 14},
	},
}

// LoadPlans reads the plan catalog from a yaml file, falling back to the
// built-in defaults when the file is absent.
func LoadPlans(path string) (*PlanCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			catalog := defaultCatalog
			return &catalog, nil
		}
		return nil, fmt.Errorf("read plans file: %w", err)
	}

	var catalog PlanCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse plans file: %w", err)
	}
	if len(catalog.Plans) == 0 {
		return nil, fmt.Errorf("plans file %s defines no plans", path)
	}
	return &catalog, nil
}

// NewPlanCatalog builds a catalog from explicit plans; used by tests and
// by deployments that configure plans programmatically.
func NewPlanCatalog(plans ...Plan) *PlanCatalog {
	catalog := &PlanCatalog{Plans: make(map[string]Plan, len(plans))}
	for _, p := range plans {
		catalog.Plans[p.Name] = p
	}
	return catalog
}

// SeatAllowance returns the seat allowance for a plan tag. Unknown plans
// get the free allowance so a misconfigured tag narrows rather than
// widens access.
func (c *PlanCatalog) SeatAllowance(plan string) int {
	if p, ok := c.Plans[plan]; ok {
		return p.SeatAllowance
	}
	if p, ok := c.Plans["free"]; ok {
		return p.SeatAllowance
	}
	return 0
}

// TrialDays returns the trial length for a plan tag.
func (c *PlanCatalog) TrialDays(plan string) int {
	if p, ok := c.Plans[plan]; ok {
		return p.TrialDays
	}
	return 0
}

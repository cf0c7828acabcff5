package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Rhistel0475/Family-Planner-sub000/internal/models"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/scheduling"
)

// PolicyFile is the YAML layout of ASSIGNMENT_POLICY_FILE:
//
//	tie_break:
//	  leading: [parent]
//	  trailing: [kid]
type PolicyFile struct {
	TieBreak struct {
		Leading  []string `yaml:"leading"`
		Trailing []string `yaml:"trailing"`
	} `yaml:"tie_break"`
}

// LoadPolicy reads the tie-break policy from path. An empty path gives the
// default policy.
func LoadPolicy(path string) (scheduling.TieBreakPolicy, error) {
	if path == "" {
		return scheduling.DefaultTieBreakPolicy(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return scheduling.TieBreakPolicy{}, fmt.Errorf("reading policy file: %w", err)
	}
	return ParsePolicy(data)
}

func ParsePolicy(data []byte) (scheduling.TieBreakPolicy, error) {
	var file PolicyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return scheduling.TieBreakPolicy{}, fmt.Errorf("parsing policy file: %w", err)
	}

	leading, err := parseRoles(file.TieBreak.Leading)
	if err != nil {
		return scheduling.TieBreakPolicy{}, err
	}
	trailing, err := parseRoles(file.TieBreak.Trailing)
	if err != nil {
		return scheduling.TieBreakPolicy{}, err
	}

	seen := make(map[models.FamilyRole]bool)
	for _, role := range append(append([]models.FamilyRole(nil), leading...), trailing...) {
		if seen[role] {
			return scheduling.TieBreakPolicy{}, fmt.Errorf("role %q listed more than once in tie_break", role)
		}
		seen[role] = true
	}

	return scheduling.TieBreakPolicy{Leading: leading, Trailing: trailing}, nil
}

func parseRoles(values []string) ([]models.FamilyRole, error) {
	roles := make([]models.FamilyRole, 0, len(values))
	for _, value := range values {
		role := models.FamilyRole(value)
		if !role.Valid() {
			return nil, fmt.Errorf("unknown role %q in tie_break", value)
		}
		roles = append(roles, role)
	}
	return roles, nil
}

// Package identity resolves the screeners configured for each role from a
// static YAML document.
//
//	default:
//	  carrier:
//	    component: com.carrier/.Screener
//	    label: Carrier
//	    endpoint: https://screen.carrier.example/v1/screen
//	profiles:
//	  2f0c...:
//	    user_chosen:
//	      component: com.blocker/.Service
//	      endpoint: https://blocker.example/screen
//
// Profile entries override the default role by role.
package identity

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"callguard/internal/callfilter/models"
	id "callguard/pkg/domain"
)

type screener struct {
	Component string `yaml:"component"`
	Label     string `yaml:"label"`
	Endpoint  string `yaml:"endpoint"`
}

type roleSet struct {
	Carrier        *screener `yaml:"carrier"`
	DefaultHandler *screener `yaml:"default_handler"`
	SystemHandler  *screener `yaml:"system_handler"`
	UserChosen     *screener `yaml:"user_chosen"`
}

type document struct {
	Default  roleSet            `yaml:"default"`
	Profiles map[string]roleSet `yaml:"profiles"`
}

// Static implements ports.IdentityResolver. It is immutable after loading.
type Static struct {
	defaults map[models.Role]models.ScreeningIdentity
	profiles map[id.ProfileID]map[models.Role]models.ScreeningIdentity
}

// Empty resolves no screener for any role.
func Empty() *Static {
	return &Static{
		defaults: map[models.Role]models.ScreeningIdentity{},
		profiles: map[id.ProfileID]map[models.Role]models.ScreeningIdentity{},
	}
}

func Load(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read screener identities: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Static, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse screener identities: %w", err)
	}

	s := Empty()
	defaults, err := doc.Default.resolve()
	if err != nil {
		return nil, fmt.Errorf("default: %w", err)
	}
	s.defaults = defaults

	for raw, set := range doc.Profiles {
		profileID, err := id.ParseProfileID(raw)
		if err != nil {
			return nil, fmt.Errorf("profile %q: %w", raw, err)
		}
		roles, err := set.resolve()
		if err != nil {
			return nil, fmt.Errorf("profile %s: %w", raw, err)
		}
		s.profiles[profileID] = roles
	}
	return s, nil
}

func (rs roleSet) resolve() (map[models.Role]models.ScreeningIdentity, error) {
	out := make(map[models.Role]models.ScreeningIdentity, 4)
	for role, sc := range map[models.Role]*screener{
		models.RoleCarrier:        rs.Carrier,
		models.RoleDefaultHandler: rs.DefaultHandler,
		models.RoleSystemHandler:  rs.SystemHandler,
		models.RoleUserChosen:     rs.UserChosen,
	} {
		if sc == nil {
			continue
		}
		if sc.Component == "" {
			return nil, fmt.Errorf("%s: component is required", role)
		}
		label := sc.Label
		if label == "" {
			label = sc.Component
		}
		out[role] = models.ScreeningIdentity{
			Role:      role,
			Component: sc.Component,
			Label:     label,
			Endpoint:  sc.Endpoint,
		}
	}
	return out, nil
}

func (s *Static) resolve(profileID id.ProfileID, role models.Role) (models.ScreeningIdentity, bool) {
	if roles, ok := s.profiles[profileID]; ok {
		if identity, ok := roles[role]; ok {
			return identity, true
		}
	}
	identity, ok := s.defaults[role]
	return identity, ok
}

func (s *Static) ResolveCarrier(_ context.Context, profileID id.ProfileID) (models.ScreeningIdentity, bool) {
	return s.resolve(profileID, models.RoleCarrier)
}

func (s *Static) ResolveDefaultHandler(_ context.Context, profileID id.ProfileID) (models.ScreeningIdentity, bool) {
	return s.resolve(profileID, models.RoleDefaultHandler)
}

func (s *Static) ResolveSystemHandler(_ context.Context, profileID id.ProfileID) (models.ScreeningIdentity, bool) {
	return s.resolve(profileID, models.RoleSystemHandler)
}

func (s *Static) ResolveUserChosen(_ context.Context, profileID id.ProfileID) (models.ScreeningIdentity, bool) {
	return s.resolve(profileID, models.RoleUserChosen)
}

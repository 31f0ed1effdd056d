// Package settings holds the per-organization weight configuration for both
// scoring engines and the in-process cache in front of it.
package settings

import (
	"errors"
	"fmt"
)

// ErrInvalidSettings wraps every validation failure so transport layers can
// map it to a client error.
var ErrInvalidSettings = errors.New("invalid settings")

// Weight templates selectable from the admin UI. "custom" keeps whatever
// weights the organization saved; the others reset the weights to a preset
// split.
const (
	TemplateBalanced            = "balanced"
	TemplateEngagementFocused   = "engagement_focused"
	TemplateSatisfactionFocused = "satisfaction_focused"
	TemplateContractFocused     = "contract_focused"
	TemplateUsageFocused        = "usage_focused"
	TemplateCustom              = "custom"
)

// HealthSettings is the health-score weight configuration for one
// organization. Weights are applied as weight/100; the sum is not required to
// equal 100.
type HealthSettings struct {
	Template           string `json:"template"`
	EngagementWeight   int    `json:"engagement_weight"`
	SatisfactionWeight int    `json:"satisfaction_weight"`
	ActivityWeight     int    `json:"activity_weight"`
	GrowthWeight       int    `json:"growth_weight"`
	SupportWeight      int    `json:"support_weight"`
}

// ChurnSettings is the churn-risk weight configuration for one organization.
type ChurnSettings struct {
	Template           string `json:"template"`
	ContractWeight     int    `json:"contract_weight"`
	UsageWeight        int    `json:"usage_weight"`
	RelationshipWeight int    `json:"relationship_weight"`
	SatisfactionWeight int    `json:"satisfaction_weight"`
	RenewalWindowDays  int    `json:"renewal_window_days"`
}

// DefaultHealthSettings is the balanced split used whenever an organization
// has no saved row or the settings fetch fails.
func DefaultHealthSettings() HealthSettings {
	return HealthSettings{
		Template:           TemplateBalanced,
		EngagementWeight:   25,
		SatisfactionWeight: 20,
		ActivityWeight:     20,
		GrowthWeight:       20,
		SupportWeight:      15,
	}
}

// DefaultChurnSettings is the balanced churn split with the widest renewal
// window.
func DefaultChurnSettings() ChurnSettings {
	return ChurnSettings{
		Template:           TemplateBalanced,
		ContractWeight:     30,
		UsageWeight:        30,
		RelationshipWeight: 20,
		SatisfactionWeight: 20,
		RenewalWindowDays:  90,
	}
}

// HealthTemplate returns the preset weights for a health template. Custom is
// not a preset; callers keep the saved weights for it.
func HealthTemplate(name string) (HealthSettings, error) {
	switch name {
	case TemplateBalanced:
		return DefaultHealthSettings(), nil
	case TemplateEngagementFocused:
		return HealthSettings{
			Template:           name,
			EngagementWeight:   40,
			SatisfactionWeight: 15,
			ActivityWeight:     20,
			GrowthWeight:       15,
			SupportWeight:      10,
		}, nil
	case TemplateSatisfactionFocused:
		return HealthSettings{
			Template:           name,
			EngagementWeight:   15,
			SatisfactionWeight: 40,
			ActivityWeight:     15,
			GrowthWeight:       15,
			SupportWeight:      15,
		}, nil
	default:
		return HealthSettings{}, fmt.Errorf("%w: unknown health template %q", ErrInvalidSettings, name)
	}
}

// ChurnTemplate returns the preset weights for a churn template.
func ChurnTemplate(name string) (ChurnSettings, error) {
	switch name {
	case TemplateBalanced:
		return DefaultChurnSettings(), nil
	case TemplateContractFocused:
		return ChurnSettings{
			Template:           name,
			ContractWeight:     45,
			UsageWeight:        25,
			RelationshipWeight: 15,
			SatisfactionWeight: 15,
			RenewalWindowDays:  90,
		}, nil
	case TemplateUsageFocused:
		return ChurnSettings{
			Template:           name,
			ContractWeight:     25,
			UsageWeight:        45,
			RelationshipWeight: 15,
			SatisfactionWeight: 15,
			RenewalWindowDays:  90,
		}, nil
	default:
		return ChurnSettings{}, fmt.Errorf("%w: unknown churn template %q", ErrInvalidSettings, name)
	}
}

// Validate checks a health configuration submitted through the admin API.
func (s HealthSettings) Validate() error {
	switch s.Template {
	case TemplateBalanced, TemplateEngagementFocused, TemplateSatisfactionFocused, TemplateCustom:
	default:
		return fmt.Errorf("%w: unknown health template %q", ErrInvalidSettings, s.Template)
	}
	for _, w := range []int{s.EngagementWeight, s.SatisfactionWeight, s.ActivityWeight, s.GrowthWeight, s.SupportWeight} {
		if w < 0 || w > 100 {
			return fmt.Errorf("%w: weight %d out of range [0,100]", ErrInvalidSettings, w)
		}
	}
	return nil
}

// Validate checks a churn configuration submitted through the admin API.
func (s ChurnSettings) Validate() error {
	switch s.Template {
	case TemplateBalanced, TemplateContractFocused, TemplateUsageFocused, TemplateCustom:
	default:
		return fmt.Errorf("%w: unknown churn template %q", ErrInvalidSettings, s.Template)
	}
	for _, w := range []int{s.ContractWeight, s.UsageWeight, s.RelationshipWeight, s.SatisfactionWeight} {
		if w < 0 || w > 100 {
			return fmt.Errorf("%w: weight %d out of range [0,100]", ErrInvalidSettings, w)
		}
	}
	switch s.RenewalWindowDays {
	case 30, 60, 90:
	default:
		return fmt.Errorf("%w: renewal window must be 30, 60 or 90 days, got %d", ErrInvalidSettings, s.RenewalWindowDays)
	}
	return nil
}

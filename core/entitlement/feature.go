package entitlement

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/PeaceIshola/eduhub/core/subscription"
)

// Feature is a closed set of protected capabilities (pages/actions) in the app.
type Feature string

const (
	FeatureSubjectBrowsing  Feature = "subject-browsing"
	FeatureQuizzes          Feature = "quizzes"
	FeatureFlashcards       Feature = "flashcards"
	FeatureResources        Feature = "resources"
	FeatureSolutionBank     Feature = "solution-bank"
	FeatureForum            Feature = "forum"
	FeatureHomeworkHelp     Feature = "homework-help"
	FeatureQuickHelp        Feature = "quick-help"
	FeatureStudentDashboard Feature = "student-dashboard"
)

var AllFeatures = []Feature{
	FeatureSubjectBrowsing,
	FeatureQuizzes,
	FeatureFlashcards,
	FeatureResources,
	FeatureSolutionBank,
	FeatureForum,
	FeatureHomeworkHelp,
	FeatureQuickHelp,
	FeatureStudentDashboard,
}

var ErrUnknownFeature = errors.New("unknown feature")

// ParseFeature maps a feature name to its Feature, or ErrUnknownFeature.
func ParseFeature(s string) (Feature, error) {
	f := Feature(s)
	for _, known := range AllFeatures {
		if f == known {
			return f, nil
		}
	}
	return "", errors.Wrap(ErrUnknownFeature, s)
}

// Policy is the static feature-to-tier table: the minimum subscription tier
// required to use each feature. It is configuration, not derived data; keep it
// explicit so it can be audited and tested feature by feature.
type Policy map[Feature]subscription.Tier

// DefaultPolicy returns the built-in classification. Only subject browsing and
// the forum are free; everything else requires premium.
func DefaultPolicy() Policy {
	return Policy{
		FeatureSubjectBrowsing:  subscription.TierFree,
		FeatureForum:            subscription.TierFree,
		FeatureQuizzes:          subscription.TierPremium,
		FeatureFlashcards:       subscription.TierPremium,
		FeatureResources:        subscription.TierPremium,
		FeatureSolutionBank:     subscription.TierPremium,
		FeatureHomeworkHelp:     subscription.TierPremium,
		FeatureQuickHelp:        subscription.TierPremium,
		FeatureStudentDashboard: subscription.TierPremium,
	}
}

// RequiredTier returns the tier needed for a feature. A feature missing from
// the table requires premium: unknown features fail closed, never free.
func (p Policy) RequiredTier(f Feature) subscription.Tier {
	tier, ok := p[f]
	if !ok {
		return subscription.TierPremium
	}
	return tier
}

// IsFree reports whether a feature is on the free-tier allowlist.
func (p Policy) IsFree(f Feature) bool {
	return p.RequiredTier(f) == subscription.TierFree
}

// GrantFree returns a copy of the policy with the given features moved to the
// free tier. Unknown names are ignored; the closed feature set stays closed.
func (p Policy) GrantFree(names ...string) Policy {
	np := make(Policy, len(p))
	for f, tier := range p {
		np[f] = tier
	}
	for _, name := range names {
		if f, err := ParseFeature(name); err == nil {
			np[f] = subscription.TierFree
		}
	}
	return np
}

// FreeFeatures lists the allowlist in stable order, for audit output.
func (p Policy) FreeFeatures() []Feature {
	free := make([]Feature, 0, len(p))
	for f, tier := range p {
		if tier == subscription.TierFree {
			free = append(free, f)
		}
	}
	sort.Slice(free, func(i, j int) bool { return free[i] < free[j] })
	return free
}

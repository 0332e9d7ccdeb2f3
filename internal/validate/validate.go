// Package validate holds the stateless predicates every mutating operation
// checks before touching a ledger. Each predicate returns a coded error so
// services can fail fast without translating.
package validate

import (
	"strings"

	"repute/pkg/domain"
	dErrors "repute/pkg/domainerrors"
)

// Bounds shared by every domain.
const (
	MinEndorsementWeight = 1
	MaxEndorsementWeight = 10
	MinVerificationLevel = 1
	MaxVerificationLevel = 5
	MaxWeightSum         = 100
	MaxTags              = 5
	MaxProviderTypes     = 10
	MaxAuthorizedViewers = 10
)

// NonEmpty rejects empty or whitespace-only required strings.
func NonEmpty(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return dErrors.Newf(dErrors.CodeValidation, "%s is required", field)
	}
	return nil
}

// ContentHash rejects an empty opaque content hash. The engine stores and
// compares hashes, it never interprets them.
func ContentHash(field, value string) error {
	if value == "" {
		return dErrors.Newf(dErrors.CodeValidation, "%s is required", field)
	}
	return nil
}

// EndorsementWeight enforces the [1,10] endorsement weight range.
func EndorsementWeight(weight uint32) error {
	if weight < MinEndorsementWeight || weight > MaxEndorsementWeight {
		return dErrors.Newf(dErrors.CodeValidation,
			"endorsement weight must be between %d and %d", MinEndorsementWeight, MaxEndorsementWeight)
	}
	return nil
}

// VerificationLevel enforces the [1,5] verification level range.
func VerificationLevel(level uint32) error {
	if level < MinVerificationLevel || level > MaxVerificationLevel {
		return dErrors.Newf(dErrors.CodeValidation,
			"verification level must be between %d and %d", MinVerificationLevel, MaxVerificationLevel)
	}
	return nil
}

// WeightSum enforces that the three signal weights sum to at most 100. The
// sum is taken in uint64 so oversized weights cannot wrap back under the cap.
func WeightSum(endorsement, activity, verification uint32) error {
	if uint64(endorsement)+uint64(activity)+uint64(verification) > MaxWeightSum {
		return dErrors.Newf(dErrors.CodeValidation,
			"signal weights must sum to at most %d", MaxWeightSum)
	}
	return nil
}

// MinEndorsements rejects a zero minimum-endorsements threshold, which would
// divide by zero in the ramp portion of the endorsement score.
func MinEndorsements(min uint32) error {
	if min == 0 {
		return dErrors.New(dErrors.CodeValidation, "minimum endorsements must be greater than zero")
	}
	return nil
}

// Tags enforces the per-endorsement tag cap and rejects empty tags.
func Tags(tags []string) error {
	if len(tags) > MaxTags {
		return dErrors.Newf(dErrors.CodeValidation, "at most %d tags are allowed", MaxTags)
	}
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			return dErrors.New(dErrors.CodeValidation, "tags must be non-empty")
		}
	}
	return nil
}

// ProviderTypes enforces the per-provider verification-type cap.
func ProviderTypes(types []string) error {
	if len(types) > MaxProviderTypes {
		return dErrors.Newf(dErrors.CodeValidation, "at most %d verification types are allowed", MaxProviderTypes)
	}
	for _, t := range types {
		if strings.TrimSpace(t) == "" {
			return dErrors.New(dErrors.CodeValidation, "verification types must be non-empty")
		}
	}
	return nil
}

// Viewers enforces the authorized-viewer cap on privacy settings.
func Viewers(viewers []domain.Principal) error {
	if len(viewers) > MaxAuthorizedViewers {
		return dErrors.Newf(dErrors.CodeValidation, "at most %d authorized viewers are allowed", MaxAuthorizedViewers)
	}
	for _, v := range viewers {
		if v == "" {
			return dErrors.New(dErrors.CodeValidation, "authorized viewers must be non-empty")
		}
	}
	return nil
}

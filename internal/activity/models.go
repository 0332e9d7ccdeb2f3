package activity

import (
	"strings"

	"repute/internal/validate"
	"repute/pkg/domain"
)

// Activity is a recorded action contributing to a user's activity count.
// IDs are per-domain sequential counters starting at 0, strictly increasing,
// never reused. Verification marks provenance only; it changes no counter the
// score formula reads.
type Activity struct {
	Domain     domain.DomainID    `json:"domain_id"`
	ID         domain.ActivityID  `json:"id"`
	User       domain.Principal   `json:"user"`
	Type       string             `json:"activity_type"`
	CreatedAt  domain.LogicalTime `json:"created_at"`
	Value      uint64             `json:"value"`
	DataHash   string             `json:"data_hash"`
	Verified   bool               `json:"verified"`
	VerifiedBy domain.Principal   `json:"verified_by,omitempty"`
}

// NewActivity validates the payload and returns an unallocated activity
// (ID is assigned by the store).
func NewActivity(domainID domain.DomainID, user domain.Principal, activityType string,
	now domain.LogicalTime, value uint64, dataHash string) (*Activity, error) {

	activityType = strings.TrimSpace(activityType)
	if err := validate.NonEmpty("activity_type", activityType); err != nil {
		return nil, err
	}
	if err := validate.ContentHash("data_hash", dataHash); err != nil {
		return nil, err
	}

	return &Activity{
		Domain:    domainID,
		User:      user,
		Type:      activityType,
		CreatedAt: now,
		Value:     value,
		DataHash:  dataHash,
	}, nil
}

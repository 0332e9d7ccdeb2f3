package registry

import (
	"strings"

	"repute/internal/validate"
	"repute/pkg/domain"
)

// Domain is an isolated reputation namespace with its own weighting policy
// and admin.
//
// Invariants:
//   - Name and Description are non-empty
//   - WeightEndorsement + WeightActivity + WeightVerification <= 100
//   - MinEndorsements > 0
//   - Admin is set at creation and immutable thereafter; the admin is only a
//     capability holder and never appears in score records
//   - Domains are never deleted; Active gates endorse/record-activity only
type Domain struct {
	ID                 domain.DomainID    `json:"id"`
	Name               string             `json:"name"`
	Description        string             `json:"description"`
	Admin              domain.Principal   `json:"admin"`
	CreatedAt          domain.LogicalTime `json:"created_at"`
	Active             bool               `json:"active"`
	WeightEndorsement  uint32             `json:"weight_endorsement"`
	WeightActivity     uint32             `json:"weight_activity"`
	WeightVerification uint32             `json:"weight_verification"`
	MinEndorsements    uint32             `json:"min_endorsements"`
}

// NewDomain validates the configuration and returns an unallocated domain
// (ID is assigned by the store).
func NewDomain(name, description string, admin domain.Principal, now domain.LogicalTime,
	wEndorsement, wActivity, wVerification, minEndorsements uint32) (*Domain, error) {

	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if err := validate.NonEmpty("name", name); err != nil {
		return nil, err
	}
	if err := validate.NonEmpty("description", description); err != nil {
		return nil, err
	}
	if err := validate.WeightSum(wEndorsement, wActivity, wVerification); err != nil {
		return nil, err
	}
	if err := validate.MinEndorsements(minEndorsements); err != nil {
		return nil, err
	}

	return &Domain{
		Name:               name,
		Description:        description,
		Admin:              admin,
		CreatedAt:          now,
		Active:             true,
		WeightEndorsement:  wEndorsement,
		WeightActivity:     wActivity,
		WeightVerification: wVerification,
		MinEndorsements:    minEndorsements,
	}, nil
}

// IsAdmin reports whether the principal holds the domain's admin capability.
func (d *Domain) IsAdmin(p domain.Principal) bool {
	return d.Admin == p
}

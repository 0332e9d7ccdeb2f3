package endorsement

import (
	"strings"

	"repute/internal/validate"
	"repute/pkg/domain"
	dErrors "repute/pkg/domainerrors"
)

// Endorsement is one principal vouching for another within a domain. At most
// one active endorsement exists per (domain, endorser, endorsee); re-endorsing
// overwrites weight, message, and tags in place.
type Endorsement struct {
	Domain    domain.DomainID    `json:"domain_id"`
	Endorser  domain.Principal   `json:"endorser"`
	Endorsee  domain.Principal   `json:"endorsee"`
	Weight    uint32             `json:"weight"`
	Message   string             `json:"message,omitempty"`
	Tags      []string           `json:"tags,omitempty"`
	CreatedAt domain.LogicalTime `json:"created_at"`
	Active    bool               `json:"active"`
}

// NewEndorsement validates the payload. Self-endorsement is rejected here so
// both the service and the stores can rely on endorser != endorsee.
func NewEndorsement(domainID domain.DomainID, endorser, endorsee domain.Principal,
	weight uint32, message string, tags []string, now domain.LogicalTime) (*Endorsement, error) {

	if endorser == endorsee {
		return nil, dErrors.New(dErrors.CodeSelfReference, "cannot endorse yourself")
	}
	if err := validate.EndorsementWeight(weight); err != nil {
		return nil, err
	}
	if err := validate.Tags(tags); err != nil {
		return nil, err
	}

	return &Endorsement{
		Domain:    domainID,
		Endorser:  endorser,
		Endorsee:  endorsee,
		Weight:    weight,
		Message:   strings.TrimSpace(message),
		Tags:      tags,
		CreatedAt: now,
		Active:    true,
	}, nil
}

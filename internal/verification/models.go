package verification

import (
	"strings"

	"repute/internal/validate"
	"repute/pkg/domain"
)

// Provider is a non-admin identity granted the right to issue verifications
// within a domain, restricted to an allow-list of verification types.
type Provider struct {
	Domain       domain.DomainID    `json:"domain_id"`
	Provider     domain.Principal   `json:"provider"`
	Name         string             `json:"name"`
	AuthorizedBy domain.Principal   `json:"authorized_by"`
	AuthorizedAt domain.LogicalTime `json:"authorized_at"`
	AllowedTypes []string           `json:"allowed_types"`
	Active       bool               `json:"active"`
}

// NewProvider validates a provider grant.
func NewProvider(domainID domain.DomainID, provider domain.Principal, name string,
	authorizedBy domain.Principal, now domain.LogicalTime, allowedTypes []string) (*Provider, error) {

	name = strings.TrimSpace(name)
	if err := validate.NonEmpty("name", name); err != nil {
		return nil, err
	}
	if err := validate.ProviderTypes(allowedTypes); err != nil {
		return nil, err
	}

	return &Provider{
		Domain:       domainID,
		Provider:     provider,
		Name:         name,
		AuthorizedBy: authorizedBy,
		AuthorizedAt: now,
		AllowedTypes: allowedTypes,
		Active:       true,
	}, nil
}

// Allows reports whether the grant covers a verification type. An empty
// allow-list covers nothing.
func (p *Provider) Allows(verificationType string) bool {
	for _, t := range p.AllowedTypes {
		if t == verificationType {
			return true
		}
	}
	return false
}

// Verification is an attestation of identity or capability at a level 1-5.
// At most one live record exists per (domain, user, type); re-issuing a type
// overwrites the previous record.
type Verification struct {
	Domain       domain.DomainID     `json:"domain_id"`
	User         domain.Principal    `json:"user"`
	Type         string              `json:"verification_type"`
	Verifier     domain.Principal    `json:"verifier"`
	VerifiedAt   domain.LogicalTime  `json:"verified_at"`
	ExpiresAt    *domain.LogicalTime `json:"expires_at,omitempty"`
	EvidenceHash string              `json:"evidence_hash"`
	Level        uint32              `json:"level"`
	Active       bool                `json:"active"`
}

// NewVerification validates an attestation.
func NewVerification(domainID domain.DomainID, user domain.Principal, verificationType string,
	verifier domain.Principal, now domain.LogicalTime, expiresAt *domain.LogicalTime,
	evidenceHash string, level uint32) (*Verification, error) {

	verificationType = strings.TrimSpace(verificationType)
	if err := validate.NonEmpty("verification_type", verificationType); err != nil {
		return nil, err
	}
	if err := validate.ContentHash("evidence_hash", evidenceHash); err != nil {
		return nil, err
	}
	if err := validate.VerificationLevel(level); err != nil {
		return nil, err
	}

	return &Verification{
		Domain:       domainID,
		User:         user,
		Type:         verificationType,
		Verifier:     verifier,
		VerifiedAt:   now,
		ExpiresAt:    expiresAt,
		EvidenceHash: evidenceHash,
		Level:        level,
		Active:       true,
	}, nil
}

// IsLive reports whether the verification is active and unexpired at now.
func (v *Verification) IsLive(now domain.LogicalTime) bool {
	if !v.Active {
		return false
	}
	return v.ExpiresAt == nil || now < *v.ExpiresAt
}

package audit

import (
	"time"

	"github.com/google/uuid"

	"repute/pkg/domain"
)

// Category classifies audit events for retention and routing.
type Category string

const (
	// CategoryCompliance covers events with audit-trail significance:
	// domain creation, verification issuance and revocation, provider grants.
	CategoryCompliance Category = "compliance"
	// CategoryOperations covers routine mutations useful for debugging:
	// endorsements, activities, privacy updates.
	CategoryOperations Category = "operations"
)

// Event records one mutation against the reputation ledgers. Events are
// append-only and carry no privacy-gated field values, only identities and
// the action performed.
type Event struct {
	ID        uuid.UUID          `json:"id"`
	Category  Category           `json:"category"`
	Action    string             `json:"action"`
	Domain    domain.DomainID    `json:"domain_id"`
	Actor     domain.Principal   `json:"actor"`
	Subject   domain.Principal   `json:"subject,omitempty"`
	RequestID string             `json:"request_id,omitempty"`
	Tick      domain.LogicalTime `json:"tick"`
	Timestamp time.Time          `json:"timestamp"`
}

// Actions emitted by the engine.
const (
	ActionDomainCreated       = "domain_created"
	ActionUserEndorsed        = "user_endorsed"
	ActionEndorsementRemoved  = "endorsement_removed"
	ActionActivityRecorded    = "activity_recorded"
	ActionActivityVerified    = "activity_verified"
	ActionVerificationAdded   = "verification_added"
	ActionVerificationRevoked = "verification_revoked"
	ActionProviderAuthorized  = "provider_authorized"
	ActionProviderRevoked     = "provider_revoked"
	ActionDelegationCreated   = "delegation_created"
	ActionDelegationRemoved   = "delegation_removed"
	ActionPrivacyUpdated      = "privacy_updated"
)

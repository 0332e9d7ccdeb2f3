package privacy

import (
	"repute/pkg/domain"
)

// Settings are a user's visibility flags plus an explicit viewer allow-list,
// keyed by (domain, owner). Updates are full overwrites, never merges. An
// absent record means default-open for score and endorsements and
// default-closed for activities and verifications.
type Settings struct {
	Domain            domain.DomainID    `json:"domain_id"`
	Owner             domain.Principal   `json:"owner"`
	ShowScore         bool               `json:"show_score"`
	ShowEndorsements  bool               `json:"show_endorsements"`
	ShowActivities    bool               `json:"show_activities"`
	ShowVerifications bool               `json:"show_verifications"`
	AuthorizedViewers []domain.Principal `json:"authorized_viewers"`
	UpdatedAt         domain.LogicalTime `json:"updated_at"`
}

// DefaultSettings are what an absent record implies.
func DefaultSettings(domainID domain.DomainID, owner domain.Principal) *Settings {
	return &Settings{
		Domain:           domainID,
		Owner:            owner,
		ShowScore:        true,
		ShowEndorsements: true,
	}
}

// Allows reports whether the viewer is on the explicit allow-list.
func (s *Settings) Allows(viewer domain.Principal) bool {
	for _, v := range s.AuthorizedViewers {
		if v == viewer {
			return true
		}
	}
	return false
}

// Delegation lets a proxy act with the owner's rights: it passes the access
// gate for the owner's records and may overwrite the owner's privacy
// settings. At most one delegation is live per (domain, owner); re-delegating
// overwrites in place.
type Delegation struct {
	Domain      domain.DomainID     `json:"domain_id"`
	Owner       domain.Principal    `json:"owner"`
	Proxy       domain.Principal    `json:"proxy"`
	DelegatedAt domain.LogicalTime  `json:"delegated_at"`
	ExpiresAt   *domain.LogicalTime `json:"expires_at,omitempty"`
	Active      bool                `json:"active"`
}

// IsLive reports whether the delegation grants authority at the given
// logical time: it must be active (not soft-deleted) and unexpired.
func (d *Delegation) IsLive(now domain.LogicalTime) bool {
	if !d.Active {
		return false
	}
	if d.ExpiresAt != nil && now >= *d.ExpiresAt {
		return false
	}
	return true
}

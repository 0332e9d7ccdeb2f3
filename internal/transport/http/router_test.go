package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"repute/internal/activity"
	activityHandler "repute/internal/activity/handler"
	"repute/internal/audit"
	"repute/internal/endorsement"
	endorsementHandler "repute/internal/endorsement/handler"
	"repute/internal/platform/jwt"
	"repute/internal/privacy"
	privacyHandler "repute/internal/privacy/handler"
	"repute/internal/registry"
	registryHandler "repute/internal/registry/handler"
	"repute/internal/reputation"
	reputationHandler "repute/internal/reputation/handler"
	"repute/internal/verification"
	verificationHandler "repute/internal/verification/handler"
	"repute/pkg/clock"
	"repute/pkg/domain"
	"repute/pkg/tx"
)

// RouterSuite drives the whole engine through the HTTP surface: JWT auth,
// clock ticking, handler decoding, service semantics, and privacy gating.
type RouterSuite struct {
	suite.Suite
	server *httptest.Server
	tokens *jwt.Service
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	logger := slog.Default()
	clk := clock.NewLogical(0)
	runner := tx.NewSerial()
	publisher := audit.NewPublisher(audit.NewInMemoryStore())

	domains := registry.NewInMemory()
	records := reputation.NewInMemory()

	privacySvc := privacy.NewService(privacy.NewInMemorySettings(), privacy.NewInMemoryDelegations(),
		domains, clk, runner, publisher, logger)
	ledger := reputation.NewLedger(records, domains, privacySvc, logger)
	registrySvc := registry.NewService(domains, clk, runner, publisher, logger, nil)
	endorsementSvc := endorsement.NewService(endorsement.NewInMemory(), domains, ledger,
		privacySvc, clk, runner, publisher, logger, nil)
	verificationSvc := verification.NewService(verification.NewInMemory(), verification.NewInMemoryProviders(),
		domains, ledger, privacySvc, clk, runner, publisher, logger, nil)
	activitySvc := activity.NewService(activity.NewInMemory(), domains, ledger, verificationSvc,
		privacySvc, clk, runner, publisher, logger, nil)

	s.tokens = jwt.NewService("router-test-key", "repute-test")
	router := NewRouter(logger, nil, clk, s.tokens, nil,
		registryHandler.New(registrySvc, logger),
		endorsementHandler.New(endorsementSvc, logger),
		activityHandler.New(activitySvc, logger),
		verificationHandler.New(verificationSvc, logger),
		privacyHandler.New(privacySvc, logger),
		reputationHandler.New(ledger, logger),
	)
	s.server = httptest.NewServer(router)
}

func (s *RouterSuite) TearDownTest() {
	s.server.Close()
}

func (s *RouterSuite) do(caller domain.Principal, method, path string, body any) (*http.Response, []byte) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, s.server.URL+path, reader)
	s.Require().NoError(err)
	if caller != "" {
		token, err := s.tokens.Issue(caller, time.Minute)
		s.Require().NoError(err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return resp, raw
}

func (s *RouterSuite) createDomain() domain.DomainID {
	resp, raw := s.do("admin", http.MethodPost, "/domains", map[string]any{
		"name":                "open-source-guild",
		"description":         "contributor reputation",
		"weight_endorsement":  40,
		"weight_activity":     30,
		"weight_verification": 30,
		"min_endorsements":    5,
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode, string(raw))

	var created struct {
		DomainID domain.DomainID `json:"domain_id"`
	}
	s.Require().NoError(json.Unmarshal(raw, &created))
	return created.DomainID
}

func (s *RouterSuite) TestUnauthenticatedRequestRejected() {
	resp, _ := s.do("", http.MethodGet, "/domains/0", nil)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *RouterSuite) TestHealthAndMetricsOpen() {
	resp, _ := s.do("", http.MethodGet, "/healthz", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	resp, _ = s.do("", http.MethodGet, "/metrics", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *RouterSuite) TestFullScoringFlow() {
	id := s.createDomain()
	base := fmt.Sprintf("/domains/%d", id)

	for _, endorser := range []string{"e1", "e2", "e3", "e4", "e5"} {
		resp, raw := s.do(domain.Principal(endorser), http.MethodPost, base+"/endorsements", map[string]any{
			"endorsee": "alice",
			"weight":   5,
		})
		s.Require().Equal(http.StatusOK, resp.StatusCode, string(raw))
	}

	for i := 0; i < 3; i++ {
		resp, raw := s.do("alice", http.MethodPost, base+"/activities", map[string]any{
			"activity_type": "merge",
			"value":         1,
			"data_hash":     fmt.Sprintf("sha256:%d", i),
		})
		s.Require().Equal(http.StatusCreated, resp.StatusCode, string(raw))
	}

	resp, raw := s.do("admin", http.MethodPost, base+"/verifications", map[string]any{
		"user":              "alice",
		"verification_type": "identity",
		"evidence_hash":     "sha256:ev",
		"level":             2,
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode, string(raw))

	// 5 endorsements at minimum 5 score 500, 3 activities score 300,
	// tier 2 scores 400; weighted 40/30/30 that sums to 200+90+120.
	resp, raw = s.do("bob", http.MethodGet, base+"/users/alice/score", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode, string(raw))

	var view struct {
		Score            uint64 `json:"score"`
		EndorsementCount uint64 `json:"endorsement_count"`
		ActivityCount    uint64 `json:"activity_count"`
		VerificationTier uint32 `json:"verification_tier"`
	}
	s.Require().NoError(json.Unmarshal(raw, &view))
	s.Equal(uint64(410), view.Score)
	s.Equal(uint64(5), view.EndorsementCount)
	s.Equal(uint64(3), view.ActivityCount)
	s.Equal(uint32(2), view.VerificationTier)
}

func (s *RouterSuite) TestRemoveEndorsementReturnsScore() {
	id := s.createDomain()
	base := fmt.Sprintf("/domains/%d", id)

	for _, endorser := range []string{"e1", "e2", "e3", "e4", "e5"} {
		resp, raw := s.do(domain.Principal(endorser), http.MethodPost, base+"/endorsements", map[string]any{
			"endorsee": "alice",
			"weight":   5,
		})
		s.Require().Equal(http.StatusOK, resp.StatusCode, string(raw))
	}

	resp, raw := s.do("e5", http.MethodDelete, base+"/endorsements/alice", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode, string(raw))

	var removed struct {
		Score uint64 `json:"score"`
	}
	s.Require().NoError(json.Unmarshal(raw, &removed))
	// 4 of min 5 endorsements: 400 weighted 40% = 160.
	s.Equal(uint64(160), removed.Score)
}

func (s *RouterSuite) TestValidationErrorsSurfaceAsEnvelope() {
	id := s.createDomain()

	resp, raw := s.do("e1", http.MethodPost, fmt.Sprintf("/domains/%d/endorsements", id), map[string]any{
		"endorsee": "alice",
		"weight":   11,
	})
	s.Require().Equal(http.StatusBadRequest, resp.StatusCode)

	var envelope struct {
		Error       string `json:"error"`
		Description string `json:"error_description"`
	}
	s.Require().NoError(json.Unmarshal(raw, &envelope))
	s.Equal("validation", envelope.Error)
	s.NotEmpty(envelope.Description)
}

func (s *RouterSuite) TestSelfEndorsementRejected() {
	id := s.createDomain()

	resp, raw := s.do("alice", http.MethodPost, fmt.Sprintf("/domains/%d/endorsements", id), map[string]any{
		"endorsee": "alice",
		"weight":   5,
	})
	s.Equal(http.StatusBadRequest, resp.StatusCode, string(raw))
}

func (s *RouterSuite) TestUnknownDomainIs404() {
	resp, _ := s.do("alice", http.MethodGet, "/domains/999/users/alice/score", nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *RouterSuite) TestPrivacyGatingOverHTTP() {
	id := s.createDomain()
	base := fmt.Sprintf("/domains/%d", id)

	resp, raw := s.do("e1", http.MethodPost, base+"/endorsements", map[string]any{
		"endorsee": "alice",
		"weight":   7,
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode, string(raw))

	// Scores default open.
	resp, _ = s.do("bob", http.MethodGet, base+"/users/alice/score", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	// Alice closes her score to everyone but carol.
	resp, raw = s.do("alice", http.MethodPut, base+"/users/alice/privacy", map[string]any{
		"show_score":         false,
		"show_endorsements":  false,
		"authorized_viewers": []string{"carol"},
	})
	s.Require().Equal(http.StatusNoContent, resp.StatusCode, string(raw))

	resp, _ = s.do("bob", http.MethodGet, base+"/users/alice/score", nil)
	s.Equal(http.StatusForbidden, resp.StatusCode)

	resp, _ = s.do("carol", http.MethodGet, base+"/users/alice/score", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	resp, _ = s.do("alice", http.MethodGet, base+"/users/alice/score", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *RouterSuite) TestDelegationOverHTTP() {
	id := s.createDomain()
	base := fmt.Sprintf("/domains/%d", id)

	resp, raw := s.do("alice", http.MethodPost, base+"/delegation", map[string]any{"proxy": "bob"})
	s.Require().Equal(http.StatusNoContent, resp.StatusCode, string(raw))

	// The proxy may update the owner's privacy settings.
	resp, raw = s.do("bob", http.MethodPut, base+"/users/alice/privacy", map[string]any{
		"show_score": true,
	})
	s.Require().Equal(http.StatusNoContent, resp.StatusCode, string(raw))

	resp, _ = s.do("alice", http.MethodDelete, base+"/delegation", nil)
	s.Require().Equal(http.StatusNoContent, resp.StatusCode)

	resp, _ = s.do("bob", http.MethodPut, base+"/users/alice/privacy", map[string]any{
		"show_score": true,
	})
	s.Equal(http.StatusForbidden, resp.StatusCode)
}

func (s *RouterSuite) TestProviderVerificationFlow() {
	id := s.createDomain()
	base := fmt.Sprintf("/domains/%d", id)

	resp, raw := s.do("admin", http.MethodPost, base+"/providers", map[string]any{
		"provider":      "notary",
		"name":          "Notary Inc",
		"allowed_types": []string{"identity"},
	})
	s.Require().Equal(http.StatusNoContent, resp.StatusCode, string(raw))

	resp, raw = s.do("admin", http.MethodGet, base+"/providers/notary", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var status struct {
		Authorized bool `json:"authorized"`
	}
	s.Require().NoError(json.Unmarshal(raw, &status))
	s.True(status.Authorized)

	resp, raw = s.do("notary", http.MethodPost, base+"/verifications", map[string]any{
		"user":              "alice",
		"verification_type": "identity",
		"evidence_hash":     "sha256:ev",
		"level":             3,
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode, string(raw))

	// A verified activity can be confirmed by the provider too.
	resp, raw = s.do("alice", http.MethodPost, base+"/activities", map[string]any{
		"activity_type": "release",
		"value":         1,
		"data_hash":     "sha256:act",
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode, string(raw))
	var recorded struct {
		ActivityID domain.ActivityID `json:"activity_id"`
	}
	s.Require().NoError(json.Unmarshal(raw, &recorded))

	resp, raw = s.do("notary", http.MethodPost,
		fmt.Sprintf("%s/activities/%d/verify", base, recorded.ActivityID), nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode, string(raw))

	resp, _ = s.do("admin", http.MethodDelete, base+"/providers/notary", nil)
	s.Require().Equal(http.StatusNoContent, resp.StatusCode)

	resp, _ = s.do("notary", http.MethodPost, base+"/verifications", map[string]any{
		"user":              "dave",
		"verification_type": "identity",
		"evidence_hash":     "sha256:ev2",
		"level":             1,
	})
	s.Equal(http.StatusForbidden, resp.StatusCode)
}

package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repute/pkg/domain"
	dErrors "repute/pkg/domainerrors"
)

func TestIssueAndValidate(t *testing.T) {
	svc := NewService("test-signing-key", "repute-test")

	token, err := svc.Issue("alice", time.Minute)
	require.NoError(t, err)

	principal, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, domain.Principal("alice"), principal)
}

func TestValidateRejectsWrongKey(t *testing.T) {
	issuer := NewService("key-one", "repute-test")
	verifier := NewService("key-two", "repute-test")

	token, err := issuer.Issue("alice", time.Minute)
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateRejectsWrongIssuer(t *testing.T) {
	issuer := NewService("shared-key", "someone-else")
	verifier := NewService("shared-key", "repute-test")

	token, err := issuer.Issue("alice", time.Minute)
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateRejectsExpired(t *testing.T) {
	svc := NewService("test-signing-key", "repute-test")

	token, err := svc.Issue("alice", -time.Minute)
	require.NoError(t, err)

	_, err = svc.Validate(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := NewService("test-signing-key", "repute-test")

	_, err := svc.Validate("not.a.token")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

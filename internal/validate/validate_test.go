package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"repute/pkg/domain"
	dErrors "repute/pkg/domainerrors"
)

func TestNonEmpty(t *testing.T) {
	assert.NoError(t, NonEmpty("name", "community"))
	assert.True(t, dErrors.HasCode(NonEmpty("name", ""), dErrors.CodeValidation))
	assert.True(t, dErrors.HasCode(NonEmpty("name", "   "), dErrors.CodeValidation))
}

func TestEndorsementWeight(t *testing.T) {
	assert.True(t, dErrors.HasCode(EndorsementWeight(0), dErrors.CodeValidation))
	assert.NoError(t, EndorsementWeight(1))
	assert.NoError(t, EndorsementWeight(10))
	assert.True(t, dErrors.HasCode(EndorsementWeight(11), dErrors.CodeValidation))
}

func TestVerificationLevel(t *testing.T) {
	assert.True(t, dErrors.HasCode(VerificationLevel(0), dErrors.CodeValidation))
	assert.NoError(t, VerificationLevel(1))
	assert.NoError(t, VerificationLevel(5))
	assert.True(t, dErrors.HasCode(VerificationLevel(6), dErrors.CodeValidation))
}

func TestContentHash(t *testing.T) {
	assert.NoError(t, ContentHash("data_hash", "sha256:abc"))
	err := ContentHash("data_hash", "")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	assert.Contains(t, err.Error(), "data_hash")
}

func TestWeightSum(t *testing.T) {
	assert.NoError(t, WeightSum(40, 30, 30))
	assert.NoError(t, WeightSum(100, 0, 0))
	// Under-allocated weights are allowed; the remainder simply scores zero.
	assert.NoError(t, WeightSum(10, 10, 10))
	assert.True(t, dErrors.HasCode(WeightSum(50, 30, 21), dErrors.CodeValidation))
}

func TestWeightSumDoesNotWrap(t *testing.T) {
	// Three weights whose uint32 sum wraps to 2 must still be rejected.
	assert.True(t, dErrors.HasCode(WeightSum(1431655766, 1431655766, 1431655766), dErrors.CodeValidation))
	assert.True(t, dErrors.HasCode(WeightSum(4294967295, 1, 100), dErrors.CodeValidation))
}

func TestMinEndorsements(t *testing.T) {
	assert.True(t, dErrors.HasCode(MinEndorsements(0), dErrors.CodeValidation))
	assert.NoError(t, MinEndorsements(1))
}

func TestTags(t *testing.T) {
	assert.NoError(t, Tags(nil))
	assert.NoError(t, Tags([]string{"a", "b", "c", "d", "e"}))
	assert.True(t, dErrors.HasCode(Tags([]string{"a", "b", "c", "d", "e", "f"}), dErrors.CodeValidation))
}

func TestProviderTypes(t *testing.T) {
	assert.NoError(t, ProviderTypes(nil))
	types := make([]string, MaxProviderTypes+1)
	assert.True(t, dErrors.HasCode(ProviderTypes(types), dErrors.CodeValidation))
}

func TestViewers(t *testing.T) {
	assert.NoError(t, Viewers([]domain.Principal{"a", "b"}))
	viewers := make([]domain.Principal, MaxAuthorizedViewers+1)
	assert.True(t, dErrors.HasCode(Viewers(viewers), dErrors.CodeValidation))
}

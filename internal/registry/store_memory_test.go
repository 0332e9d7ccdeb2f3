package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repute/pkg/domain"
	"repute/pkg/sentinel"
)

func TestInMemoryFindByIDOutOfRange(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()

	d, err := NewDomain("community", "test", "admin", 1, 40, 30, 30, 5)
	require.NoError(t, err)
	id, err := store.Create(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, domain.DomainID(0), id)

	// IDs past the allocated range are not found, including ones so large
	// that a signed conversion would go negative.
	for _, missing := range []domain.DomainID{1, 100, 1 << 63, 1<<64 - 1} {
		_, err := store.FindByID(ctx, missing)
		assert.ErrorIs(t, err, sentinel.ErrNotFound, "id %d", missing)

		exists, err := store.Exists(ctx, missing)
		require.NoError(t, err)
		assert.False(t, exists, "id %d", missing)
	}

	found, err := store.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "community", found.Name)
}

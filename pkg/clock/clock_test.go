package clock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"repute/pkg/domain"
)

func TestLogicalTick(t *testing.T) {
	c := NewLogical(0)
	assert.Equal(t, domain.LogicalTime(0), c.Now())
	assert.Equal(t, domain.LogicalTime(1), c.Tick())
	assert.Equal(t, domain.LogicalTime(2), c.Tick())
	assert.Equal(t, domain.LogicalTime(2), c.Now())
}

func TestLogicalTickConcurrent(t *testing.T) {
	c := NewLogical(0)
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Tick()
		}()
	}
	wg.Wait()
	assert.Equal(t, domain.LogicalTime(100), c.Now())
}

func TestManual(t *testing.T) {
	c := NewManual(5)
	assert.Equal(t, domain.LogicalTime(5), c.Now())

	c.Advance(3)
	assert.Equal(t, domain.LogicalTime(8), c.Now())

	c.Set(1000)
	assert.Equal(t, domain.LogicalTime(1000), c.Now())
}

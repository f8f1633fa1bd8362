package mock

import (
	"github.com/marketd/marketd/kit/platform"
)

// IDGenerator is a mock implementation of platform.IDGenerator.
type IDGenerator struct {
	IDFn func() platform.ID
}

// NewIDGenerator returns a mock IDGenerator where it's ID method will return
// a mock ID.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{
		IDFn: func() platform.ID {
			return platform.ID(1)
		},
	}
}

// ID returns the next ID.
func (g *IDGenerator) ID() platform.ID {
	return g.IDFn()
}

// IncrementingIDGenerator hands out consecutive IDs starting at start,
// making create order deterministic in tests.
type IncrementingIDGenerator struct {
	id platform.ID
}

// NewIncrementingIDGenerator returns an ID generator which starts at the
// given value and increments on every call to ID.
func NewIncrementingIDGenerator(start platform.ID) *IncrementingIDGenerator {
	return &IncrementingIDGenerator{
		id: start,
	}
}

// ID returns the next ID in the sequence.
func (g *IncrementingIDGenerator) ID() platform.ID {
	id := g.id
	g.id++
	return id
}

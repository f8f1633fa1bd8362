// Package snowflake provides an implementation of platform.IDGenerator
// producing k-ordered unique IDs: 41 bits of millisecond timestamp,
// 10 bits of machine ID and 12 bits of per-millisecond sequence.
package snowflake

import (
	"math/rand"
	"sync"
	"time"

	"github.com/marketd/marketd/kit/platform"
)

const (
	epoch      = 1491696000000 // 2017-04-09T00:00:00Z in unix milliseconds
	serverBits = 10
	seqBits    = 12
	serverMax  = 1 << serverBits
	seqMask    = (1 << seqBits) - 1
	timeShift  = serverBits + seqBits
)

// Generator produces monotonically increasing uint64 values for a fixed
// machine ID.
type Generator struct {
	mu        sync.Mutex
	machineID int
	lastMilli int64
	sequence  int
}

// New returns a Generator for the given machine ID. The low 10 bits of
// machineID are used.
func New(machineID int) *Generator {
	return &Generator{
		machineID: machineID & (serverMax - 1),
	}
}

// MachineID returns the machine ID this generator stamps into every value.
func (g *Generator) MachineID() int {
	return g.machineID
}

// Next returns the next value in the sequence. Values produced by a single
// generator are strictly increasing.
func (g *Generator) Next() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now().UnixMilli()
	if now < g.lastMilli {
		// clock went backwards; hold at the last observed time so values
		// remain monotonic
		now = g.lastMilli
	}

	if now == g.lastMilli {
		g.sequence = (g.sequence + 1) & seqMask
		if g.sequence == 0 {
			for now <= g.lastMilli {
				now = time.Now().UnixMilli()
			}
		}
	} else {
		g.sequence = 0
	}
	g.lastMilli = now

	return uint64(now-epoch)<<timeShift | uint64(g.machineID)<<seqBits | uint64(g.sequence)
}

// IDGenerator wraps a Generator to satisfy platform.IDGenerator.
type IDGenerator struct {
	Generator *Generator
}

var _ platform.IDGenerator = (*IDGenerator)(nil)

// NewIDGenerator returns an IDGenerator with a randomized machine ID.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{
		Generator: New(rand.Intn(serverMax)),
	}
}

// WithMachineID returns an IDGenerator using the low 10 bits of machineID.
func WithMachineID(machineID int) *IDGenerator {
	return &IDGenerator{
		Generator: New(machineID),
	}
}

// ID returns the next ID in the sequence.
func (g *IDGenerator) ID() platform.ID {
	var id platform.ID
	for !id.Valid() {
		id = platform.ID(g.Generator.Next())
	}
	return id
}

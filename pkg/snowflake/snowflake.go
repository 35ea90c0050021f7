// Package snowflake generates globally-unique, monotonically increasing
// request IDs for correlating log lines across a request's lifetime.
package snowflake

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	mu   sync.Mutex
	node *snowflake.Node
)

// Init (re)configures the package-level node used by NextID. nodeID must be
// in [0, 1023]; callers normally invoke this once at startup.
func Init(nodeID int64) error {
	if nodeID < 0 || nodeID > 1023 {
		return fmt.Errorf("snowflake: node id %d out of range [0, 1023]", nodeID)
	}

	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return fmt.Errorf("snowflake: %w", err)
	}

	mu.Lock()
	node = n
	mu.Unlock()
	return nil
}

// NextID returns the next id from the package-level node, initializing node
// 0 lazily if Init was never called.
func NextID() int64 {
	mu.Lock()
	n := node
	mu.Unlock()

	if n == nil {
		if err := Init(0); err != nil {
			panic(err)
		}
		mu.Lock()
		n = node
		mu.Unlock()
	}

	return n.Generate().Int64()
}

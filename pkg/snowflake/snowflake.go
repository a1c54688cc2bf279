// Package snowflake hands out process-wide unique, time-ordered int64 ids.
package snowflake

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	mu   sync.RWMutex
	node *snowflake.Node
)

// Init configures the generator for the given node id (0-1023).
func Init(nodeID int64) error {
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return fmt.Errorf("init snowflake node %d: %w", nodeID, err)
	}
	mu.Lock()
	node = n
	mu.Unlock()
	return nil
}

// NextID returns a new id. Init must have been called.
func NextID() int64 {
	mu.RLock()
	n := node
	mu.RUnlock()
	if n == nil {
		panic("snowflake: NextID called before Init")
	}
	return n.Generate().Int64()
}

// NextIDString returns NextID formatted in base 10.
func NextIDString() string {
	return strconv.FormatInt(NextID(), 10)
}

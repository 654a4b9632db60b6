package utilities

import (
	"os"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
)

var (
	nodeOnce sync.Once
	node     *snowflake.Node
)

// NewUUID returns a random RFC 4122 identifier, used for accounts.
func NewUUID() string {
	return uuid.NewString()
}

// NewKSUID generates a new globally unique KSUID string. KSUIDs sort by
// creation second, which keeps conversation listings stable.
func NewKSUID() string {
	return ksuid.New().String()
}

// NewSnowflakeID returns a snowflake ID using the node from SNOWFLAKE_NODE
// (default 1). IDs from one node are strictly increasing, so they break ties
// between turns created within the same timestamp.
func NewSnowflakeID() int64 {
	nodeOnce.Do(func() {
		nodeID := int64(1)
		if v, err := strconv.ParseInt(os.Getenv("SNOWFLAKE_NODE"), 10, 64); err == nil {
			nodeID = v
		}
		n, err := snowflake.NewNode(nodeID)
		if err != nil {
			// out-of-range node; fall back to the default node
			n, _ = snowflake.NewNode(1)
		}
		node = n
	})
	return node.Generate().Int64()
}

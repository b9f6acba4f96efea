package uid

import (
	"hash/fnv"
	"os"

	"github.com/bwmarrin/snowflake"
)

// Snowflake generates time-ordered 63-bit IDs.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake returns a Snowflake generator whose node number is derived from
// the hostname, so replicas behind one database rarely collide.
func NewSnowflake() (*Snowflake, error) {
	return NewSnowflakeNode(hostNode())
}

// NewSnowflakeNode returns a Snowflake generator for an explicit node number (0..1023).
func NewSnowflakeNode(node int64) (*Snowflake, error) {
	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, err
	}
	return &Snowflake{node: n}, nil
}

// Generate returns a new ID.
func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}

func hostNode() int64 {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return 1
	}

	h := fnv.New32a()
	h.Write([]byte(host))
	return int64(h.Sum32() % 1024)
}

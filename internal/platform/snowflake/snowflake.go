// Package snowflake generates the 64-bit time-ordered identifiers used for
// matches and competitors, and converts them to and from the compact base-36
// keys users type in commands.
package snowflake

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// Generator produces unique, roughly creation-ordered identifiers.
type Generator struct {
	node *snowflake.Node
}

// NewGenerator creates a Generator for the given node. Processes sharing a
// database must use distinct node ids to keep identifiers collision-free.
func NewGenerator(nodeID int64) (*Generator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", nodeID, err)
	}
	return &Generator{node: node}, nil
}

// Next returns a new identifier. Identifiers from one Generator are strictly
// increasing; across generators they sort approximately by creation time.
func (g *Generator) Next() int64 {
	return g.node.Generate().Int64()
}

// Format renders an identifier as a lowercase base-36 key.
func Format(id int64) string {
	return strconv.FormatInt(id, 36)
}

// Parse converts a base-36 key back into an identifier. It rejects empty,
// negative, and malformed input.
func Parse(key string) (int64, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return 0, fmt.Errorf("empty id")
	}
	if strings.HasPrefix(key, "-") {
		return 0, fmt.Errorf("malformed id %q", key)
	}
	id, err := strconv.ParseInt(key, 36, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed id %q", key)
	}
	return id, nil
}

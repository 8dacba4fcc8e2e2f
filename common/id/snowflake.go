package id

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Init initializes the Snowflake node with the given node ID.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// New generates a time-ordered int64 request ID. Init must have been called.
func New() int64 {
	return node.Generate().Int64()
}

// Format renders an ID the way it travels in headers.
func Format(v int64) string {
	return snowflake.ParseInt64(v).String()
}

// Parse reads an ID previously produced by Format.
func Parse(s string) (int64, error) {
	parsed, err := snowflake.ParseString(s)
	if err != nil {
		return 0, err
	}
	return parsed.Int64(), nil
}

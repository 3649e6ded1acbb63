package id

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Init initializes the Snowflake node. The server and the worker must use
// different node IDs.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// New generates a new time-ordered int64 ID.
func New() int64 {
	return node.Generate().Int64()
}

// Parse decodes a decimal ID as carried in cookies and headers.
func Parse(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing id %q: %w", s, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("parsing id %q: must be positive", s)
	}
	return v, nil
}

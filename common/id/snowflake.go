// Package id mints the snowflake IDs used for accounts, sessions, and other
// locally created rows. Snowflakes keep IDs time-ordered, which makes session
// cookies and account rows sortable by creation without an extra column.
package id

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

// Node IDs per binary. The API server and the headless sync engine can run
// side by side against the same database, so each gets its own generator node.
const (
	NodeServer int64 = 1
	NodeEngine int64 = 2
)

var (
	node *snowflake.Node
	once sync.Once
)

// Init sets up the process-wide generator. Call once at startup with the
// binary's node constant.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// New returns the next time-ordered unique int64 ID.
func New() int64 {
	return node.Generate().Int64()
}

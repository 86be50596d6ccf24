// Package cmap provides a concurrent map sharded by key hash.
//
// Each shard has its own RWMutex, so receivers and journal records that
// hash to different shards never contend.
//
//	m := cmap.New[string, *Coordinator]()
//	m.Set("living-room", c)
//	c, ok := m.Get("living-room")
//
// Range visits shards one at a time and does not provide a consistent
// snapshot across shards.
package cmap

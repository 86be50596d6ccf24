// Package journal records playback session lifecycles for operators.
//
// A Record is a token-free summary of one ssm session: which receiver it
// belonged to, its state, how many renewals it went through and the last
// error seen. Records are written by the Observer as the coordinator
// reports events and expire after a retention period.
//
// Three stores are provided:
//
//   - MemoryStore: sharded in-process maps with a per-receiver index
//   - RedisStore: JSON blobs in Redis with a per-receiver set index,
//     shared by every proxy instance pointed at the same Redis
//   - BadgerStore: an embedded Badger database on local disk that
//     survives restarts of a single instance
package journal

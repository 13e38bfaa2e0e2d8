// Package cmap provides a generic, concurrency-safe sharded map.
//
// Keys are spread over a power-of-two number of shards with
// hash/maphash; each shard has its own RWMutex. The development
// server keeps its bearer sessions and issued tokens here.
package cmap

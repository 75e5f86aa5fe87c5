//go:build !tinygo

package gpt

import "sync"

// critical serialises the capture/compare state between the service path and
// the main context. Host builds use a mutex.
type critical struct{ mu sync.Mutex }

func (c *critical) enter() { c.mu.Lock() }
func (c *critical) exit()  { c.mu.Unlock() }

//go:build tinygo

package gpt

import "runtime/interrupt"

// critical masks interrupts on the single core. Nested use from the handler
// restores the state the handler entered with.
type critical struct{ st interrupt.State }

func (c *critical) enter() { c.st = interrupt.Disable() }
func (c *critical) exit()  { interrupt.Restore(c.st) }

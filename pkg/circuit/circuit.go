package circuit

import (
	"slices"

	"github.com/ThePyProgrammer/breadboards/pkg/device"
)

// Circuit is the ordered component registry together with the transient
// state of each component.
type Circuit struct {
	components []device.Descriptor
	states     map[string]*device.State
}

func New() *Circuit {
	return &Circuit{
		components: make([]device.Descriptor, 0),
		states:     make(map[string]*device.State),
	}
}

// Add appends a component. A component with the same ID is replaced in place
// and its state starts over. It reports whether a replacement happened.
func (c *Circuit) Add(desc device.Descriptor) bool {
	c.states[desc.ID] = &device.State{}

	idx := c.indexOf(desc.ID)
	if idx >= 0 {
		c.components[idx] = desc
		return true
	}
	c.components = append(c.components, desc)
	return false
}

// Remove deletes a component and its state.
func (c *Circuit) Remove(id string) bool {
	idx := c.indexOf(id)
	if idx < 0 {
		return false
	}
	c.components = slices.Delete(c.components, idx, idx+1)
	delete(c.states, id)
	return true
}

func (c *Circuit) Clear() {
	c.components = c.components[:0]
	clear(c.states)
}

// ResetStates zeroes the history of every component.
func (c *Circuit) ResetStates() {
	for id := range c.states {
		c.states[id] = &device.State{}
	}
}

// Components returns a copy of the registry in insertion order.
func (c *Circuit) Components() []device.Descriptor {
	return slices.Clone(c.components)
}

func (c *Circuit) Component(id string) (device.Descriptor, bool) {
	idx := c.indexOf(id)
	if idx < 0 {
		return device.Descriptor{}, false
	}
	return c.components[idx], true
}

func (c *Circuit) Len() int {
	return len(c.components)
}

// State returns the live state record of a component, or nil.
func (c *Circuit) State(id string) *device.State {
	return c.states[id]
}

// States returns the live state table. Devices bound from it write their
// history back into it.
func (c *Circuit) States() map[string]*device.State {
	return c.states
}

func (c *Circuit) indexOf(id string) int {
	return slices.IndexFunc(c.components, func(d device.Descriptor) bool {
		return d.ID == id
	})
}

package driver

import (
	"fmt"
	"sort"
)

// Key names a driver slot in a Container and knows how to build its driver.
type Key[D any] struct {
	name  string
	build func() Driver[D]
}

func NewKey[D any](name string, build func() Driver[D]) Key[D] {
	return Key[D]{name: name, build: build}
}

// FloatKey is a Key for a plain float driver starting at initial.
func FloatKey(name string, initial float64) Key[float64] {
	return NewKey(name, func() Driver[float64] { return NewFloat(initial) })
}

func BoolKey(name string, initial bool) Key[bool] {
	return NewKey(name, func() Driver[bool] { return NewBool(initial) })
}

func (k Key[D]) Name() string { return k.name }

// Container owns the per-animator drivers written during data extraction. Drivers
// are created on first access and ticked together in creation order.
type Container struct {
	drivers map[string]Ticker
	order   []string
}

func NewContainer() *Container {
	return &Container{drivers: make(map[string]Ticker)}
}

// Get returns the driver for key, creating it on first use. It panics if the name
// was already registered with a different value type.
func Get[D any](c *Container, key Key[D]) Driver[D] {
	if existing, ok := c.drivers[key.name]; ok {
		d, ok := existing.(Driver[D])
		if !ok {
			panic(fmt.Sprintf("driver: key %q registered with type %T", key.name, existing))
		}
		return d
	}
	d := key.build()
	c.drivers[key.name] = d
	c.order = append(c.order, key.name)
	return d
}

// Value returns the driver's current value.
func Value[D any](c *Container, key Key[D]) D {
	return Get(c, key).CurrentValue()
}

// Interpolated returns the driver's value blended at partialTicks.
func Interpolated[D any](c *Container, key Key[D], partialTicks float64) D {
	return Get(c, key).ValueInterpolated(partialTicks)
}

// Set writes the driver's value.
func Set[D any](c *Container, key Key[D], v D) {
	Get(c, key).SetValue(v)
}

func (c *Container) PushAll() {
	for _, name := range c.order {
		c.drivers[name].PushCurrentToPrevious()
	}
}

func (c *Container) TickAll() {
	for _, name := range c.order {
		c.drivers[name].Tick()
	}
}

func (c *Container) ResetAll() {
	for _, name := range c.order {
		c.drivers[name].Reset()
	}
}

func (c *Container) Len() int { return len(c.order) }

// Names returns the registered driver names sorted alphabetically.
func (c *Container) Names() []string {
	names := make([]string, len(c.order))
	copy(names, c.order)
	sort.Strings(names)
	return names
}

// Lookup returns the type-erased driver registered under name.
func (c *Container) Lookup(name string) (Ticker, bool) {
	d, ok := c.drivers[name]
	return d, ok
}

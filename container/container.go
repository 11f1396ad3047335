// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package container

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sync"

	gerrors "github.com/tochemey/extensions/errors"
)

// Container is a scoped component container. Registration only touches the
// local scope while lookups go local first and then delegate to the parent.
// A container never owns its parent; the parent must outlive its children.
//
// Constructors receive a view of the container that records the adapters
// being built on the way to them. A view shares the scope it was taken
// from, so registrations through it land in that scope.
type Container struct {
	*scope
	parent *Container
	path   *buildPath
}

type scope struct {
	mu       sync.RWMutex
	adapters map[any]ComponentAdapter
	keys     []any
}

// buildPath links the adapters whose construction led to a lookup, innermost first
type buildPath struct {
	adapter ComponentAdapter
	next    *buildPath
}

// New creates a container whose lookups fall back to parent.
// parent may be nil for a root container.
func New(parent *Container) *Container {
	return &Container{
		scope: &scope{
			adapters: make(map[any]ComponentAdapter),
			keys:     make([]any, 0, 8),
		},
		parent: parent,
	}
}

// Parent returns the parent container or nil for a root container
func (c *Container) Parent() *Container {
	return c.parent
}

// Building returns a view of c recording that adapter is being built.
// Adapters pass it to the constructor they run.
func (c *Container) Building(adapter ComponentAdapter) *Container {
	return &Container{
		scope:  c.scope,
		parent: c.parent,
		path:   &buildPath{adapter: adapter, next: c.path},
	}
}

// IsBuilding reports whether adapter is being built on the lookup path
// that produced c. Adapters must be comparable.
func (c *Container) IsBuilding(adapter ComponentAdapter) bool {
	if c == nil {
		return false
	}
	for step := c.path; step != nil; step = step.next {
		if step.adapter == adapter {
			return true
		}
	}
	return false
}

// Register adds the adapter to this scope. The key must be unique within
// the scope; the same key may still exist in ancestor scopes.
func (c *Container) Register(adapter ComponentAdapter) error {
	key := adapter.Key()
	if !validKey(key) {
		return fmt.Errorf("%w: %v", gerrors.ErrInvalidComponentKey, key)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.adapters[key]; ok {
		return fmt.Errorf("%w: %v", gerrors.ErrDuplicateComponent, key)
	}

	c.adapters[key] = adapter
	c.keys = append(c.keys, key)
	return nil
}

// RegisterInstance registers an already built instance under key
func (c *Container) RegisterInstance(key, instance any) error {
	return c.Register(InstanceAdapter(key, instance))
}

// Unregister removes the adapter registered under key in this scope only
func (c *Container) Unregister(key any) (ComponentAdapter, bool) {
	if !validKey(key) {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	adapter, ok := c.adapters[key]
	if !ok {
		return nil, false
	}

	delete(c.adapters, key)
	c.keys = slices.DeleteFunc(c.keys, func(k any) bool { return k == key })
	return adapter, true
}

// Adapter returns the adapter registered under key in the nearest scope
func (c *Container) Adapter(key any) (ComponentAdapter, bool) {
	if !validKey(key) {
		return nil, false
	}

	for owner := c; owner != nil; owner = owner.parent {
		if adapter, ok := owner.lookup(key); ok {
			return adapter, true
		}
	}
	return nil, false
}

// Component returns the instance registered under key in the nearest scope.
// A missing key yields (nil, nil).
func (c *Container) Component(key any) (any, error) {
	if !validKey(key) {
		return nil, nil
	}

	for owner := c; owner != nil; owner = owner.parent {
		if adapter, ok := owner.lookup(key); ok {
			return adapter.Instance(c.from(owner))
		}
	}
	return nil, nil
}

// Components returns every component visible from this scope: local ones
// first in registration order, then each ancestor in turn. Components that
// are being built on the current lookup path, and components whose type
// cannot be loaded, are left out.
func (c *Container) Components() ([]any, error) {
	return c.collect(nil)
}

// ComponentsOfType returns every visible component assignable to t, in the
// same order as Components. Adapters that only know their type once built
// are left out and stay unbuilt.
func (c *Container) ComponentsOfType(t reflect.Type) ([]any, error) {
	return c.collect(t)
}

// Keys returns the keys registered in this scope, in registration order
func (c *Container) Keys() []any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.keys)
}

// Len returns the number of components registered in this scope
func (c *Container) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.keys)
}

// MakeChildContainer is not supported: children are created with New.
func (c *Container) MakeChildContainer() (*Container, error) {
	return nil, gerrors.ErrNotSupported
}

// AddChildContainer is not supported: containers only form ancestor chains.
func (c *Container) AddChildContainer(*Container) error {
	return gerrors.ErrNotSupported
}

// RemoveChildContainer is not supported: containers only form ancestor chains.
func (c *Container) RemoveChildContainer(*Container) error {
	return gerrors.ErrNotSupported
}

func (c *Container) collect(t reflect.Type) ([]any, error) {
	out := make([]any, 0, c.Len())
	for owner := c; owner != nil; owner = owner.parent {
		for _, adapter := range owner.snapshot() {
			if t != nil {
				if typed, ok := adapter.(TypedAdapter); ok {
					if impl := typed.ImplementationType(); impl == nil || !impl.AssignableTo(t) {
						continue
					}
				}
			}

			instance, err := adapter.Instance(c.from(owner))
			if errors.Is(err, gerrors.ErrCyclicDependency) || errors.Is(err, gerrors.ErrContributionLoad) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("component %v: %w", adapter.Key(), err)
			}

			if t != nil && (instance == nil || !reflect.TypeOf(instance).AssignableTo(t)) {
				continue
			}
			out = append(out, instance)
		}
	}
	return out, nil
}

// from returns the container an adapter owned by owner is built with when
// it is found through c. The build path of c is carried over.
func (c *Container) from(owner *Container) *Container {
	if c.path == nil || (owner.scope == c.scope && owner.path == c.path) {
		return owner
	}
	return &Container{scope: owner.scope, parent: owner.parent, path: c.path}
}

func (c *Container) lookup(key any) (ComponentAdapter, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	adapter, ok := c.adapters[key]
	return adapter, ok
}

func (c *Container) snapshot() []ComponentAdapter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	adapters := make([]ComponentAdapter, 0, len(c.keys))
	for _, key := range c.keys {
		adapters = append(adapters, c.adapters[key])
	}
	return adapters
}

func validKey(key any) bool {
	return key != nil && reflect.TypeOf(key).Comparable()
}

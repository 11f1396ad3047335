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
	"reflect"
	"sync"

	gerrors "github.com/tochemey/extensions/errors"
)

// ComponentAdapter hands out the instance registered under a key.
// Instance receives the container that owns the adapter so that
// constructors can resolve their own dependencies from that scope upward.
type ComponentAdapter interface {
	// Key returns the identity the adapter is registered under
	Key() any
	// Instance returns the component instance, creating it when required
	Instance(c *Container) (any, error)
}

// TypedAdapter is implemented by adapters that know their implementation
// type before instantiation. Type queries use it to skip adapters without
// creating their instance. A nil type means it is only known once built.
type TypedAdapter interface {
	ImplementationType() reflect.Type
}

type instanceAdapter struct {
	key      any
	instance any
}

var (
	_ ComponentAdapter = (*instanceAdapter)(nil)
	_ TypedAdapter     = (*instanceAdapter)(nil)
)

// InstanceAdapter wraps an already built instance
func InstanceAdapter(key, instance any) ComponentAdapter {
	return &instanceAdapter{key: key, instance: instance}
}

func (x *instanceAdapter) Key() any { return x.key }

func (x *instanceAdapter) Instance(*Container) (any, error) { return x.instance, nil }

func (x *instanceAdapter) ImplementationType() reflect.Type { return reflect.TypeOf(x.instance) }

type constructorAdapter struct {
	key      any
	ctor     func(c *Container) (any, error)
	mu       sync.Mutex
	created  bool
	instance any
	// closed when the running construction returns
	running chan struct{}
}

var _ ComponentAdapter = (*constructorAdapter)(nil)

// ConstructorAdapter creates its instance with ctor on first demand and
// caches it. A failed construction is retried on the next demand.
// Concurrent demands wait for the running construction; asking for the
// instance from within ctor returns ErrCyclicDependency.
func ConstructorAdapter(key any, ctor func(c *Container) (any, error)) ComponentAdapter {
	return &constructorAdapter{key: key, ctor: ctor}
}

func (x *constructorAdapter) Key() any { return x.key }

func (x *constructorAdapter) Instance(c *Container) (any, error) {
	if c.IsBuilding(x) {
		return nil, gerrors.ErrCyclicDependency
	}

	for {
		x.mu.Lock()
		if x.created {
			x.mu.Unlock()
			return x.instance, nil
		}

		if running := x.running; running != nil {
			x.mu.Unlock()
			<-running
			continue
		}

		running := make(chan struct{})
		x.running = running
		x.mu.Unlock()

		instance, err := x.ctor(c.Building(x))

		x.mu.Lock()
		x.running = nil
		close(running)
		if err == nil {
			x.instance = instance
			x.created = true
		}
		x.mu.Unlock()

		if err != nil {
			return nil, err
		}
		return instance, nil
	}
}

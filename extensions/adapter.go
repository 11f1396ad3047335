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

package extensions

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"

	"github.com/tochemey/extensions/container"
	gerrors "github.com/tochemey/extensions/errors"
	"github.com/tochemey/extensions/internal/registry"
	"github.com/tochemey/extensions/order"
)

// Adapter is the lazy handle of a single contribution. It starts either
// realized, when an instance was registered directly, or unrealized, when a
// Descriptor was registered, and is realized at most once.
//
// Adapter is a container.ComponentAdapter: every contribution is reachable
// from the container of the area owning its extension point.
type Adapter struct {
	key        any
	order      order.Order
	orderID    string
	pluginID   PluginID
	descriptor *Descriptor
	point      *Point

	// guarded by point.mu
	seq      uint64
	notified bool
	tracked  bool

	mu       sync.Mutex
	realized bool
	instance any
	// closed when the running construction returns
	running chan struct{}
}

var (
	_ container.ComponentAdapter = (*Adapter)(nil)
	_ container.TypedAdapter     = (*Adapter)(nil)
	_ order.Orderable            = (*Adapter)(nil)
)

func newInstanceAdapter(point *Point, instance any, config *registerConfig) *Adapter {
	return &Adapter{
		key:      uuid.NewString(),
		order:    config.order,
		orderID:  config.orderID,
		pluginID: config.pluginID,
		point:    point,
		realized: true,
		instance: instance,
	}
}

func newDescriptorAdapter(point *Point, pluginID PluginID, descriptor *Descriptor, spec order.Order) *Adapter {
	key := descriptor.Key
	if key == "" {
		key = uuid.NewString()
	}

	return &Adapter{
		key:        key,
		order:      spec,
		orderID:    descriptor.OrderID,
		pluginID:   pluginID,
		descriptor: descriptor,
		point:      point,
	}
}

// Key returns the container key of the contribution
func (a *Adapter) Key() any {
	return a.key
}

// Order returns the ordering constraints of the contribution
func (a *Adapter) Order() order.Order {
	return a.order
}

// OrderID returns the id other contributions anchor to
func (a *Adapter) OrderID() string {
	return a.orderID
}

// PluginID returns the plugin that declared the contribution
func (a *Adapter) PluginID() PluginID {
	return a.pluginID
}

// Descriptor returns the descriptor the contribution was declared with, or
// nil when an instance was registered directly
func (a *Adapter) Descriptor() *Descriptor {
	return a.descriptor
}

// Point returns the extension point holding the contribution
func (a *Adapter) Point() *Point {
	return a.point
}

// IsRealized reports whether the instance has been built
func (a *Adapter) IsRealized() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.realized
}

// Instance implements container.ComponentAdapter
func (a *Adapter) Instance(c *container.Container) (any, error) {
	return a.Materialize(c)
}

// ImplementationType implements container.TypedAdapter. It returns nil when
// the type is only known once the instance is built.
func (a *Adapter) ImplementationType() reflect.Type {
	if instance, realized := a.realizedInstance(); realized {
		return reflect.TypeOf(instance)
	}

	entry, ok := a.point.area.registry.Lookup(a.implementation())
	switch {
	case ok && entry.Constructor == nil && entry.Type.Kind() != reflect.Interface:
		return reflect.PointerTo(entry.Type)
	case !ok && a.isDefaultBean():
		return a.point.typ
	default:
		return nil
	}
}

// Materialize returns the contribution instance, building it on the first
// call. Dependencies are resolved from c, or from the area container when c
// is nil. A type resolution failure of the contribution itself is returned
// as a ContributionLoadError.
//
// Concurrent callers wait for the running construction. Asking for the
// instance from within its own construction, through the container handed
// to the constructor, returns ErrCyclicDependency.
func (a *Adapter) Materialize(c *container.Container) (any, error) {
	if c == nil {
		c = a.point.area.container
	}

	if c.IsBuilding(a) {
		return nil, gerrors.ErrCyclicDependency
	}

	for {
		a.mu.Lock()
		if a.realized {
			defer a.mu.Unlock()
			return a.instance, nil
		}

		if running := a.running; running != nil {
			a.mu.Unlock()
			<-running
			continue
		}

		running := make(chan struct{})
		a.running = running
		a.mu.Unlock()

		instance, err := a.create(c.Building(a))

		a.mu.Lock()
		a.running = nil
		close(running)
		if err == nil {
			a.instance = instance
			a.realized = true
		}
		a.mu.Unlock()

		if err != nil {
			return nil, err
		}
		return instance, nil
	}
}

func (a *Adapter) create(c *container.Container) (any, error) {
	build, err := a.resolve()
	if err != nil {
		return nil, a.loadError(err)
	}

	instance, err := build(c)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s for %s: %w", a.implementation(), a.point.name, err)
	}

	if instance == nil {
		return nil, fmt.Errorf("%w: %s built a nil instance", gerrors.ErrInvalidContribution, a.implementation())
	}

	if rtype := reflect.TypeOf(instance); !rtype.AssignableTo(a.point.typ) {
		return nil, a.loadError(fmt.Errorf("%w: %s is not a %s", gerrors.ErrTypeMismatch, rtype, a.point.typ))
	}

	if payload := a.descriptor.Payload; payload != nil {
		if err := a.point.area.deserializer.Deserialize(payload, instance); err != nil {
			return nil, fmt.Errorf("failed to apply the payload of %s: %w", a.implementation(), err)
		}
	}

	if aware, ok := instance.(PluginAware); ok {
		aware.SetPluginID(a.pluginID)
	}

	if !reflect.TypeOf(instance).Comparable() {
		return nil, fmt.Errorf("%w: %T is not comparable", gerrors.ErrInvalidContribution, instance)
	}
	return instance, nil
}

// resolve finds how to build the instance. An explicit implementation name
// must be registered; without one a registered point type is used, then a
// zero value when the point type is a pointer to a struct.
func (a *Adapter) resolve() (registry.Constructor, error) {
	types := a.point.area.registry
	name := a.implementation()
	if _, ok := types.Lookup(name); ok {
		return func(c *container.Container) (any, error) {
			return types.New(name, c)
		}, nil
	}

	if !a.isDefaultBean() {
		return nil, fmt.Errorf("%w: %s", gerrors.ErrTypeNotRegistered, name)
	}

	rtype := a.point.typ
	return func(*container.Container) (any, error) {
		return reflect.New(rtype.Elem()).Interface(), nil
	}, nil
}

// isDefaultBean reports whether the contribution is a zero value of a
// pointer to struct point type
func (a *Adapter) isDefaultBean() bool {
	rtype := a.point.typ
	return a.descriptor != nil && a.descriptor.Implementation == "" &&
		rtype.Kind() == reflect.Pointer && rtype.Elem().Kind() == reflect.Struct
}

// ownsLoadError reports whether err is the load failure of this
// contribution. Load failures of dependencies come back wrapped by the
// constructor that asked for them.
func (a *Adapter) ownsLoadError(err error) bool {
	loadErr, ok := err.(*gerrors.ContributionLoadError)
	return ok &&
		loadErr.PluginID == a.pluginID.String() &&
		loadErr.Point == a.point.name &&
		loadErr.Implementation == a.implementation()
}

// implementation returns the registry name used to build the instance
func (a *Adapter) implementation() string {
	if a.descriptor == nil {
		return registry.TypeName(reflect.TypeOf(a.instance))
	}
	if a.descriptor.Implementation != "" {
		return a.descriptor.Implementation
	}
	return registry.Name(a.point.typ)
}

func (a *Adapter) loadError(err error) error {
	return &gerrors.ContributionLoadError{
		PluginID:       a.pluginID.String(),
		Point:          a.point.name,
		Implementation: a.implementation(),
		Err:            err,
	}
}

// describe names the contribution in error messages
func (a *Adapter) describe() string {
	if a.descriptor != nil {
		return a.implementation()
	}
	return fmt.Sprintf("%T", a.instance)
}

// realizedInstance returns the instance when it has been built
func (a *Adapter) realizedInstance() (any, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.instance, a.realized
}

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
	"cmp"
	"context"
	"fmt"
	"reflect"
	"slices"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	gerrors "github.com/tochemey/extensions/errors"
	"github.com/tochemey/extensions/log"
	"github.com/tochemey/extensions/order"
)

// Kind tells how contributions of an extension point are declared
type Kind int

const (
	// InterfaceKind points accept any implementation of an interface type
	InterfaceKind Kind = iota
	// BeanKind points accept values of a single concrete type
	BeanKind
)

// String returns the kind name
func (k Kind) String() string {
	if k == InterfaceKind {
		return "interface"
	}
	return "bean"
}

// Point is a named, typed slot of an Area that plugins contribute to.
// Contributions are kept in the order resolved from their constraints and
// built on first read. All methods are safe for concurrent use.
type Point struct {
	name     string
	typ      reflect.Type
	kind     Kind
	pluginID PluginID
	area     *Area
	logger   log.Logger

	mu        sync.Mutex
	adapters  []*Adapter
	pending   []*Adapter
	instances mapset.Set[any]
	listeners []Listener
	nextSeq   uint64
	// bumped on every registration or removal
	version uint64

	cache *atomic.Pointer[[]any]
}

func newPoint(area *Area, name string, typ reflect.Type, pluginID PluginID) *Point {
	kind := BeanKind
	if typ.Kind() == reflect.Interface {
		kind = InterfaceKind
	}

	return &Point{
		name:      name,
		typ:       typ,
		kind:      kind,
		pluginID:  pluginID,
		area:      area,
		logger:    area.logger.With("extensionPoint", name),
		instances: mapset.NewThreadUnsafeSet[any](),
		cache:     atomic.NewPointer[[]any](nil),
	}
}

// Name returns the qualified name of the extension point
func (p *Point) Name() string {
	return p.name
}

// Type returns the contribution type
func (p *Point) Type() reflect.Type {
	return p.typ
}

// Kind returns the kind of the extension point
func (p *Point) Kind() Kind {
	return p.kind
}

// PluginID returns the plugin that declared the extension point
func (p *Point) PluginID() PluginID {
	return p.pluginID
}

// Area returns the area owning the extension point
func (p *Point) Area() *Area {
	return p.area
}

// RegisterExtension adds an already built contribution. An Any ordered
// contribution is visible immediately and listeners are notified before the
// call returns; any other order is resolved on the next read.
func (p *Point) RegisterExtension(extension any, opts ...RegisterOption) error {
	if err := p.checkContribution(extension); err != nil {
		return err
	}

	config := newRegisterConfig(p.pluginID, opts...)
	adapter := newInstanceAdapter(p, extension, config)

	p.mu.Lock()
	if p.area.disposed.Load() {
		p.mu.Unlock()
		return gerrors.ErrAreaDisposed
	}

	if p.instances.Contains(extension) {
		p.mu.Unlock()
		return &gerrors.DuplicateContributionError{Point: p.name, Contribution: adapter.describe()}
	}

	if err := p.area.container.Register(adapter); err != nil {
		p.mu.Unlock()
		return err
	}

	p.instances.Add(extension)
	adapter.tracked = true
	events := p.addLocked(adapter)
	p.mu.Unlock()

	p.fire(events)
	return nil
}

// registerDescriptor adds a lazily built contribution. It is resolved on the next read.
func (p *Point) registerDescriptor(pluginID PluginID, descriptor *Descriptor) (*Adapter, error) {
	spec, err := order.Parse(descriptor.Order)
	if err != nil {
		return nil, err
	}

	adapter := newDescriptorAdapter(p, pluginID, descriptor, spec)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.area.container.Register(adapter); err != nil {
		return nil, err
	}

	// descriptors are always pending so no event is produced
	_ = p.addLocked(adapter)
	return adapter, nil
}

// addLocked records adapter. A realized, unconstrained adapter is appended in
// place, ahead of trailing last contributions, when nothing is pending.
func (p *Point) addLocked(adapter *Adapter) []event {
	adapter.seq = p.nextSeq
	p.nextSeq++
	p.invalidateLocked()

	if adapter.descriptor != nil || !adapter.order.IsAny() || len(p.pending) > 0 || p.isAnchorLocked(adapter.orderID) {
		p.pending = append(p.pending, adapter)
		return nil
	}

	index := len(p.adapters)
	for index > 0 && p.adapters[index-1].order.IsLast() {
		index--
	}
	p.adapters = slices.Insert(p.adapters, index, adapter)
	adapter.notified = true
	return []event{p.addedEventLocked(adapter)}
}

// isAnchorLocked reports whether a contribution is constrained relative to id
func (p *Point) isAnchorLocked(id string) bool {
	if id == "" {
		return false
	}
	return slices.ContainsFunc(p.adapters, func(adapter *Adapter) bool {
		return slices.Contains(adapter.order.Befores(), id) || slices.Contains(adapter.order.Afters(), id)
	})
}

// Extensions returns the contributions in resolved order. Pending
// contributions are ordered and built first and listeners are notified of
// every contribution that becomes visible.
//
// A contribution whose type cannot be resolved is dropped with a warning.
// A contribution failing to build is dropped and its error returned with the
// remaining contributions. Concurrent readers wait for contributions being
// built by another reader.
//
// Constructors resolve other contributions through the container they are
// given. Reading the point directly from one of its own constructors blocks.
func (p *Point) Extensions() ([]any, error) {
	if cached := p.cache.Load(); cached != nil {
		return slices.Clone(*cached), nil
	}

	failures := make(map[*Adapter]error)
	for {
		p.mu.Lock()
		if cached := p.cache.Load(); cached != nil {
			p.mu.Unlock()
			return slices.Clone(*cached), nil
		}

		if len(p.pending) == 0 {
			instances := p.snapshotLocked()
			p.cache.Store(&instances)
			p.mu.Unlock()
			return slices.Clone(instances), nil
		}

		version := p.version
		sorted := p.sortLocked()
		p.mu.Unlock()

		// contributions are built without holding the lock so that
		// constructors may read the area
		for _, adapter := range sorted {
			if _, failed := failures[adapter]; failed || adapter.IsRealized() {
				continue
			}
			if _, err := adapter.Materialize(p.area.container); err != nil {
				failures[adapter] = err
			}
		}

		p.mu.Lock()
		if p.version != version {
			p.mu.Unlock()
			continue
		}

		events, err := p.commitLocked(sorted, failures)
		instances := p.snapshotLocked()
		if len(p.pending) == 0 {
			p.cache.Store(&instances)
		}
		p.mu.Unlock()

		p.fire(events)
		return slices.Clone(instances), err
	}
}

// sortLocked orders materialized and pending adapters by registration then by constraints
func (p *Point) sortLocked() []*Adapter {
	all := make([]*Adapter, 0, len(p.adapters)+len(p.pending))
	all = append(all, p.adapters...)
	all = append(all, p.pending...)
	slices.SortStableFunc(all, func(x, y *Adapter) int {
		return cmp.Compare(x.seq, y.seq)
	})
	return order.Sort(all, order.WithCycleHandler(func(warning *gerrors.OrderCycleWarning) {
		p.logger.Warnf("%v", warning)
	}))
}

// commitLocked installs the outcome of a sort and materialization pass
func (p *Point) commitLocked(sorted []*Adapter, failures map[*Adapter]error) ([]event, error) {
	var (
		errs     error
		events   []event
		adapters = make([]*Adapter, 0, len(sorted))
	)

	for _, adapter := range sorted {
		if err, failed := failures[adapter]; failed {
			p.dropLocked(adapter)
			errs = multierr.Append(errs, p.materializationFailed(adapter, err))
			continue
		}

		if !adapter.tracked {
			instance, _ := adapter.realizedInstance()
			if p.instances.Contains(instance) {
				p.dropLocked(adapter)
				errs = multierr.Append(errs, &gerrors.DuplicateContributionError{Point: p.name, Contribution: adapter.describe()})
				continue
			}
			p.instances.Add(instance)
			adapter.tracked = true
			p.area.metric.Materialized(context.Background(), p.name)
		}

		adapters = append(adapters, adapter)
		if !adapter.notified {
			adapter.notified = true
			events = append(events, p.addedEventLocked(adapter))
		}
	}

	p.adapters = adapters
	p.pending = nil
	return events, errs
}

// materializationFailed reports err and returns what must reach the caller
func (p *Point) materializationFailed(adapter *Adapter, err error) error {
	if adapter.ownsLoadError(err) {
		p.logger.Warnf("dropping contribution of plugin %s: %v", adapter.pluginID, err)
		p.area.metric.LoadFailed(context.Background(), p.name)
		return nil
	}
	return err
}

// dropLocked forgets a failed adapter. Readers holding an older sort start over.
func (p *Point) dropLocked(adapter *Adapter) {
	p.area.container.Unregister(adapter.key)
	p.invalidateLocked()
}

// ExtensionsOf returns the contributions of point that are of type T, in resolved order
func ExtensionsOf[T any](point *Point) ([]T, error) {
	extensions, err := point.Extensions()
	out := make([]T, 0, len(extensions))
	for _, extension := range extensions {
		if typed, ok := extension.(T); ok {
			out = append(out, typed)
		}
	}
	return out, err
}

// Extension returns the first contribution or nil when there is none
func (p *Point) Extension() (any, error) {
	extensions, err := p.Extensions()
	if len(extensions) == 0 {
		return nil, err
	}
	return extensions[0], err
}

// HasExtensions reports whether at least one contribution is registered,
// built or not
func (p *Point) HasExtensions() bool {
	return p.Len() > 0
}

// Len returns the number of registered contributions, built or not
func (p *Point) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.adapters) + len(p.pending)
}

// UnregisterExtension removes a built contribution and notifies listeners
func (p *Point) UnregisterExtension(extension any) error {
	if extension == nil || !reflect.TypeOf(extension).Comparable() {
		return fmt.Errorf("%w: %T", gerrors.ErrInvalidContribution, extension)
	}

	p.mu.Lock()
	adapter := p.findLocked(func(adapter *Adapter) bool {
		instance, realized := adapter.realizedInstance()
		return realized && adapter.tracked && instance == extension
	})
	if adapter == nil {
		p.mu.Unlock()
		return &gerrors.ContributionNotFoundError{Point: p.name, Contribution: fmt.Sprintf("%T", extension)}
	}

	events := p.removeLocked(adapter)
	p.mu.Unlock()

	p.fire(events)
	return nil
}

// unregisterAdapter removes the contribution held by adapter
func (p *Point) unregisterAdapter(adapter *Adapter) error {
	p.mu.Lock()
	if p.findLocked(func(candidate *Adapter) bool { return candidate == adapter }) == nil {
		p.mu.Unlock()
		return &gerrors.ContributionNotFoundError{Point: p.name, Contribution: adapter.describe()}
	}

	events := p.removeLocked(adapter)
	p.mu.Unlock()

	p.fire(events)
	return nil
}

// Reset unregisters every contribution. Removal hooks and listeners run for
// every contribution that was visible.
func (p *Point) Reset() {
	p.mu.Lock()
	all := make([]*Adapter, 0, len(p.adapters)+len(p.pending))
	all = append(all, p.adapters...)
	all = append(all, p.pending...)

	var events []event
	for _, adapter := range all {
		events = append(events, p.removeLocked(adapter)...)
	}
	p.mu.Unlock()

	p.fire(events)
}

func (p *Point) findLocked(match func(*Adapter) bool) *Adapter {
	if index := slices.IndexFunc(p.adapters, match); index >= 0 {
		return p.adapters[index]
	}
	if index := slices.IndexFunc(p.pending, match); index >= 0 {
		return p.pending[index]
	}
	return nil
}

func (p *Point) removeLocked(adapter *Adapter) []event {
	same := func(candidate *Adapter) bool { return candidate == adapter }
	p.adapters = slices.DeleteFunc(p.adapters, same)
	p.pending = slices.DeleteFunc(p.pending, same)
	if adapter.tracked {
		instance, _ := adapter.realizedInstance()
		p.instances.Remove(instance)
		adapter.tracked = false
	}

	p.area.container.Unregister(adapter.key)
	p.invalidateLocked()

	if !adapter.notified {
		return nil
	}
	adapter.notified = false
	return []event{p.removedEventLocked(adapter)}
}

// AddListener adds l and immediately reports every current contribution to
// it, in order, before returning. Pending contributions are resolved first.
func (p *Point) AddListener(l Listener) error {
	if err := checkListener(l); err != nil {
		return err
	}

	_, err := p.Extensions()

	p.mu.Lock()
	if slices.Contains(p.listeners, l) {
		p.mu.Unlock()
		return err
	}
	p.listeners = append(p.listeners, l)
	replay := p.replayLocked(true, l)
	p.mu.Unlock()

	p.fire(replay)
	return err
}

// RemoveListener removes l and reports the removal of every current
// contribution to it
func (p *Point) RemoveListener(l Listener) error {
	if err := checkListener(l); err != nil {
		return err
	}

	p.mu.Lock()
	index := slices.Index(p.listeners, l)
	if index < 0 {
		p.mu.Unlock()
		return gerrors.ErrListenerNotFound
	}
	p.listeners = slices.Delete(p.listeners, index, index+1)
	replay := p.replayLocked(false, l)
	p.mu.Unlock()

	p.fire(replay)
	return nil
}

// replayLocked builds the events reporting every visible contribution to l only
func (p *Point) replayLocked(added bool, l Listener) []event {
	events := make([]event, 0, len(p.adapters))
	for _, adapter := range p.adapters {
		if !adapter.notified {
			continue
		}
		instance, _ := adapter.realizedInstance()
		events = append(events, event{
			added:     added,
			replay:    true,
			instance:  instance,
			pluginID:  adapter.pluginID,
			listeners: []Listener{l},
		})
	}
	return events
}

func (p *Point) snapshotLocked() []any {
	instances := make([]any, 0, len(p.adapters))
	for _, adapter := range p.adapters {
		instance, _ := adapter.realizedInstance()
		instances = append(instances, instance)
	}
	return instances
}

func (p *Point) invalidateLocked() {
	p.version++
	p.cache.Store(nil)
}

func (p *Point) checkContribution(extension any) error {
	if extension == nil {
		return fmt.Errorf("%w: nil contribution", gerrors.ErrInvalidContribution)
	}

	rtype := reflect.TypeOf(extension)
	if !rtype.Comparable() {
		return fmt.Errorf("%w: %s is not comparable", gerrors.ErrInvalidContribution, rtype)
	}

	if !rtype.AssignableTo(p.typ) {
		return fmt.Errorf("%w: %s is not a %s", gerrors.ErrTypeMismatch, rtype, p.typ)
	}
	return nil
}

func checkListener(l Listener) error {
	if l == nil {
		return fmt.Errorf("%w: nil listener", gerrors.ErrInvalidListener)
	}
	if !reflect.TypeOf(l).Comparable() {
		return fmt.Errorf("%w: %T is not comparable", gerrors.ErrInvalidListener, l)
	}
	return nil
}

// event is a notification collected under the lock and delivered after it is released
type event struct {
	added     bool
	replay    bool
	instance  any
	pluginID  PluginID
	listeners []Listener
}

func (p *Point) addedEventLocked(adapter *Adapter) event {
	instance, _ := adapter.realizedInstance()
	return event{added: true, instance: instance, pluginID: adapter.pluginID, listeners: slices.Clone(p.listeners)}
}

func (p *Point) removedEventLocked(adapter *Adapter) event {
	instance, _ := adapter.realizedInstance()
	return event{instance: instance, pluginID: adapter.pluginID, listeners: slices.Clone(p.listeners)}
}

// fire delivers events in order. Every callback is isolated: a failing one is
// logged and the others still run.
func (p *Point) fire(events []event) {
	for _, e := range events {
		if e.added {
			if hook, ok := e.instance.(AddedHook); ok && !e.replay {
				p.area.safely(p.name, "extension added hook", func() error { return hook.OnAdded(p) })
			}
			for _, l := range e.listeners {
				p.area.safely(p.name, "extension added listener", func() error {
					l.ExtensionAdded(e.instance, e.pluginID)
					return nil
				})
			}
			continue
		}

		for _, l := range e.listeners {
			p.area.safely(p.name, "extension removed listener", func() error {
				l.ExtensionRemoved(e.instance, e.pluginID)
				return nil
			})
		}
		if hook, ok := e.instance.(RemovedHook); ok && !e.replay {
			p.area.safely(p.name, "extension removed hook", func() error { return hook.OnRemoved(p) })
		}
	}
}

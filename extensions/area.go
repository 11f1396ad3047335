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
	"context"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"sync"

	gods "github.com/Workiva/go-datastructures/queue"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/atomic"

	"github.com/tochemey/extensions/container"
	gerrors "github.com/tochemey/extensions/errors"
	"github.com/tochemey/extensions/internal/errorschain"
	imetric "github.com/tochemey/extensions/internal/metric"
	"github.com/tochemey/extensions/internal/registry"
	"github.com/tochemey/extensions/internal/validation"
	"github.com/tochemey/extensions/internal/xsync"
	"github.com/tochemey/extensions/log"
)

var pointNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*(\.[A-Za-z_][A-Za-z0-9_-]*)+$`)

// Area is a scope, for instance application, project or module, owning a set
// of extension points and a container. A child area resolves components
// through its parent container.
type Area struct {
	class         string
	parent        *Area
	logger        log.Logger
	registry      registry.Registry
	deserializer  Deserializer
	meterProvider metric.MeterProvider
	metric        *imetric.ExtensionsMetric
	container     *container.Container
	builtins      bool
	types         []typeRegistration

	mu          sync.RWMutex
	points      map[string]*Point
	names       []string
	descriptors map[descriptorKey]*Adapter

	availability *xsync.Map[string, *xsync.List[AvailabilityListener]]

	// guards suspended transitions against queued interactions
	interactionsMu sync.Mutex
	interactions   *gods.Queue
	suspended      *atomic.Bool
	disposed       *atomic.Bool
	initialized    *atomic.Bool
}

type descriptorKey struct {
	pluginID   PluginID
	descriptor *Descriptor
}

// NewArea creates an area. Call Initialize to seed the built-in extension points.
func NewArea(opts ...Option) *Area {
	area := &Area{
		builtins:     true,
		points:       make(map[string]*Point),
		descriptors:  make(map[descriptorKey]*Adapter),
		availability: xsync.NewMap[string, *xsync.List[AvailabilityListener]](),
		interactions: gods.New(16),
		suspended:    atomic.NewBool(false),
		disposed:     atomic.NewBool(false),
		initialized:  atomic.NewBool(false),
	}

	for _, opt := range opts {
		opt.Apply(area)
	}

	var parentContainer *container.Container
	if parent := area.parent; parent != nil {
		parentContainer = parent.container
		area.registry = parent.registry
		area.logger = firstNonNil(area.logger, parent.logger)
		area.deserializer = firstNonNil(area.deserializer, parent.deserializer)
		area.meterProvider = firstNonNil(area.meterProvider, parent.meterProvider)
	}

	if area.registry == nil {
		area.registry = registry.NewRegistry()
	}
	area.logger = firstNonNil[log.Logger](area.logger, log.DefaultLogger)
	area.deserializer = firstNonNil(area.deserializer, JSONDeserializer)
	area.container = container.New(parentContainer)

	for _, registration := range area.types {
		area.registry.Register(registration.value, registration.ctor)
	}

	provider := imetric.New(imetric.WithMeterProvider(area.meterProvider))
	area.meterProvider = provider.MeterProvider()
	instruments, err := imetric.NewExtensionsMetric(provider.Meter(), area.class)
	if err != nil {
		area.logger.Warnf("falling back to noop metrics: %v", err)
		instruments, _ = imetric.NewExtensionsMetric(noop.NewMeterProvider().Meter(""), area.class)
	}
	area.metric = instruments
	return area
}

// Initialize registers the built-in extension points. It runs once; later
// calls are no-ops.
func (a *Area) Initialize() error {
	if a.disposed.Load() {
		return gerrors.ErrAreaDisposed
	}

	if !a.builtins || a.initialized.Swap(true) {
		return nil
	}

	chain := errorschain.New(errorschain.ReturnFirst())
	for _, builtin := range builtinPoints {
		chain.AddErrorFn(func() error {
			point, err := a.RegisterExtensionPoint(builtin.name, builtin.typ, CorePluginID)
			if err != nil {
				return err
			}
			if builtin.listener != nil {
				return point.AddListener(builtin.listener(a))
			}
			return nil
		})
	}
	return chain.Error()
}

// Class returns the scope discriminator of the area
func (a *Area) Class() string {
	return a.class
}

// Parent returns the parent area or nil
func (a *Area) Parent() *Area {
	return a.parent
}

// Container returns the area container
func (a *Area) Container() *container.Container {
	return a.container
}

// Logger returns the area logger
func (a *Area) Logger() log.Logger {
	return a.logger
}

// RegisterType records an implementation type descriptors can refer to by
// name and returns that name. Types are shared along the area hierarchy.
func (a *Area) RegisterType(v any, ctor Constructor) string {
	return a.registry.Register(v, ctor)
}

// RegisterExtensionPoint declares a new extension point. name must follow
// the <namespace>.<localName> format. typ is the type every contribution must
// be assignable to: an interface type, or a concrete type such as a pointer
// to a struct for bean points.
func (a *Area) RegisterExtensionPoint(name string, typ reflect.Type, pluginID PluginID) (*Point, error) {
	if a.disposed.Load() {
		return nil, gerrors.ErrAreaDisposed
	}

	if err := validatePointName(name); err != nil {
		return nil, err
	}

	if typ == nil {
		return nil, fmt.Errorf("%w: no contribution type for %s", gerrors.ErrTypeMismatch, name)
	}

	// declared availability listeners must be live before they are notified
	a.loadAvailabilityListeners()

	a.mu.Lock()
	if existing, ok := a.points[name]; ok {
		a.mu.Unlock()
		return nil, &gerrors.DuplicateExtensionPointError{
			Name:      name,
			Existing:  existing.pluginID.String(),
			Duplicate: pluginID.String(),
		}
	}

	point := newPoint(a, name, typ, pluginID)
	a.points[name] = point
	a.names = append(a.names, name)
	a.mu.Unlock()

	a.metric.PointRegistered(context.Background())
	a.logger.Debugf("extension point %s registered by plugin %s", name, pluginID)
	a.notifyAvailability(name, func(l AvailabilityListener) { l.ExtensionPointRegistered(point) })
	return point, nil
}

// UnregisterExtensionPoint resets and removes an extension point
func (a *Area) UnregisterExtensionPoint(name string) error {
	if a.disposed.Load() {
		return gerrors.ErrAreaDisposed
	}

	a.mu.Lock()
	point, ok := a.points[name]
	if !ok {
		a.mu.Unlock()
		return &gerrors.UnknownExtensionPointError{Name: name}
	}

	delete(a.points, name)
	a.names = slices.DeleteFunc(a.names, func(candidate string) bool { return candidate == name })
	for key, adapter := range a.descriptors {
		if adapter != nil && adapter.point == point {
			delete(a.descriptors, key)
		}
	}
	a.mu.Unlock()

	point.Reset()
	a.metric.PointUnregistered(context.Background())
	a.logger.Debugf("extension point %s unregistered", name)
	a.notifyAvailability(name, func(l AvailabilityListener) { l.ExtensionPointRemoved(point) })
	return nil
}

// ExtensionPoint returns the extension point registered under name
func (a *Area) ExtensionPoint(name string) (*Point, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	point, ok := a.points[name]
	if !ok {
		return nil, &gerrors.UnknownExtensionPointError{Name: name}
	}
	return point, nil
}

// HasExtensionPoint reports whether an extension point is registered under name
func (a *Area) HasExtensionPoint(name string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.points[name]
	return ok
}

// ExtensionPoints returns the extension points in registration order
func (a *Area) ExtensionPoints() []*Point {
	a.mu.RLock()
	defer a.mu.RUnlock()
	points := make([]*Point, 0, len(a.names))
	for _, name := range a.names {
		points = append(points, a.points[name])
	}
	return points
}

// Extensions returns the contributions of the extension point registered under name
func (a *Area) Extensions(name string) ([]any, error) {
	point, err := a.ExtensionPoint(name)
	if err != nil {
		return nil, err
	}
	return point.Extensions()
}

// RegisterExtension declares a lazily built contribution of pluginID
func (a *Area) RegisterExtension(pluginID PluginID, descriptor *Descriptor) error {
	if a.disposed.Load() {
		return gerrors.ErrAreaDisposed
	}

	if descriptor == nil {
		return fmt.Errorf("%w: nil descriptor", gerrors.ErrInvalidContribution)
	}

	point, err := a.ExtensionPoint(descriptor.PointName())
	if err != nil {
		return err
	}

	key := descriptorKey{pluginID: pluginID, descriptor: descriptor}
	a.mu.Lock()
	if _, ok := a.descriptors[key]; ok {
		a.mu.Unlock()
		return &gerrors.DuplicateContributionError{Point: point.name, Contribution: descriptor.Dump(pluginID)}
	}
	// reserved until the point accepts the descriptor
	a.descriptors[key] = nil
	a.mu.Unlock()

	adapter, err := point.registerDescriptor(pluginID, descriptor)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		delete(a.descriptors, key)
		return err
	}
	a.descriptors[key] = adapter
	return nil
}

// RegisterExtensions registers every descriptor and returns the combined
// errors. A failing descriptor never prevents the others from registering.
func (a *Area) RegisterExtensions(pluginID PluginID, descriptors ...*Descriptor) error {
	chain := errorschain.New(errorschain.ReturnAll())
	for _, descriptor := range descriptors {
		chain.AddError(a.RegisterExtension(pluginID, descriptor))
	}
	return chain.Error()
}

// UnregisterExtension removes a contribution registered with RegisterExtension.
// The descriptor must be the one passed at registration.
func (a *Area) UnregisterExtension(pluginID PluginID, descriptor *Descriptor) error {
	if descriptor == nil {
		return fmt.Errorf("%w: nil descriptor", gerrors.ErrInvalidContribution)
	}

	key := descriptorKey{pluginID: pluginID, descriptor: descriptor}
	a.mu.Lock()
	adapter, ok := a.descriptors[key]
	if !ok || adapter == nil {
		a.mu.Unlock()
		dump := descriptor.Dump(pluginID)
		a.logger.Errorf("unregistering an extension that was never registered: %s", dump)
		return &gerrors.UnregisteredExtensionError{PluginID: pluginID.String(), Dump: dump}
	}
	delete(a.descriptors, key)
	a.mu.Unlock()

	return adapter.point.unregisterAdapter(adapter)
}

// AddAvailabilityListener watches the extension point registered under name.
// When the point already exists the listener is told right away.
func (a *Area) AddAvailabilityListener(name string, l AvailabilityListener) error {
	if err := checkAvailabilityListener(l); err != nil {
		return err
	}

	listeners := a.availability.GetOrCreate(name, xsync.NewList[AvailabilityListener])
	if !listeners.Append(l) {
		return nil
	}

	a.mu.RLock()
	point, ok := a.points[name]
	a.mu.RUnlock()
	if ok {
		a.interact(func() {
			a.safely(name, "availability listener", func() error {
				l.ExtensionPointRegistered(point)
				return nil
			})
		})
	}
	return nil
}

// RemoveAvailabilityListener stops l from watching name
func (a *Area) RemoveAvailabilityListener(name string, l AvailabilityListener) error {
	if err := checkAvailabilityListener(l); err != nil {
		return err
	}

	listeners, ok := a.availability.Get(name)
	if !ok || !listeners.Remove(l) {
		return gerrors.ErrListenerNotFound
	}
	return nil
}

// loadAvailabilityListeners resolves the availability listener contributions
func (a *Area) loadAvailabilityListeners() {
	a.mu.RLock()
	point, ok := a.points[AvailabilityListenerPointName]
	a.mu.RUnlock()
	if !ok {
		return
	}

	if _, err := point.Extensions(); err != nil {
		a.logger.Errorf("failed to load availability listeners: %v", err)
	}
}

// availabilityListeners returns the listeners of name in registration order
func (a *Area) availabilityListeners(name string) []AvailabilityListener {
	listeners, ok := a.availability.Get(name)
	if !ok {
		return nil
	}
	return listeners.Items()
}

// SuspendInteractions defers availability notifications until ResumeInteractions
func (a *Area) SuspendInteractions() {
	a.interactionsMu.Lock()
	a.suspended.Store(true)
	a.interactionsMu.Unlock()
}

// IsSuspended reports whether availability notifications are deferred
func (a *Area) IsSuspended() bool {
	return a.suspended.Load()
}

// ResumeInteractions resolves every extension point, then delivers the
// deferred notifications in the order they were raised. The errors met while
// resolving are returned combined.
func (a *Area) ResumeInteractions() error {
	chain := errorschain.New(errorschain.ReturnAll())
	for _, point := range a.ExtensionPoints() {
		_, err := point.Extensions()
		chain.AddError(err)
	}

	a.interactionsMu.Lock()
	a.suspended.Store(false)
	a.interactionsMu.Unlock()

	for {
		items, err := a.interactions.TakeUntil(func(any) bool { return true })
		if err != nil || len(items) == 0 {
			break
		}
		for _, item := range items {
			if action, ok := item.(func()); ok {
				action()
			}
		}
	}
	return chain.Error()
}

// KillPendingInteractions drops every deferred notification
func (a *Area) KillPendingInteractions() {
	dropped, _ := a.interactions.TakeUntil(func(any) bool { return true })
	if len(dropped) > 0 {
		a.logger.Debugf("dropped %d pending interactions", len(dropped))
	}
}

// IsDisposed reports whether Dispose was called
func (a *Area) IsDisposed() bool {
	return a.disposed.Load()
}

// Dispose drops the deferred notifications and resets every extension point,
// last registered first. The area rejects changes afterwards.
func (a *Area) Dispose() error {
	if a.disposed.Swap(true) {
		return gerrors.ErrAreaDisposed
	}

	a.KillPendingInteractions()
	a.interactions.Dispose()

	points := a.ExtensionPoints()
	slices.Reverse(points)
	for _, point := range points {
		point.Reset()
	}

	a.mu.Lock()
	clear(a.descriptors)
	a.mu.Unlock()

	a.availability.Reset()
	a.logger.Infof("area %s disposed", a.class)
	return nil
}

// notifyAvailability reports an event on name to the availability listeners
// watching it when the event is raised
func (a *Area) notifyAvailability(name string, action func(AvailabilityListener)) {
	listeners := a.availabilityListeners(name)
	a.interact(func() {
		for _, l := range listeners {
			a.safely(name, "availability listener", func() error {
				action(l)
				return nil
			})
		}
	})
}

// interact runs action now or queues it while interactions are suspended
func (a *Area) interact(action func()) {
	a.interactionsMu.Lock()
	if a.suspended.Load() {
		err := a.interactions.Put(action)
		a.interactionsMu.Unlock()
		if err != nil {
			a.logger.Warnf("dropping interaction: %v", err)
		}
		return
	}
	a.interactionsMu.Unlock()
	action()
}

// safely runs a callback, logging its error or panic instead of propagating it
func (a *Area) safely(point, callback string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			a.callbackFailed(point, callback, fmt.Errorf("panic: %v", r))
		}
	}()

	if err := fn(); err != nil {
		a.callbackFailed(point, callback, err)
	}
}

func (a *Area) callbackFailed(point, callback string, err error) {
	a.logger.With("extensionPoint", point).Errorf("%s failed: %v", callback, err)
	a.metric.ListenerFailed(context.Background(), point)
}

func validatePointName(name string) error {
	err := validation.New(validation.FailFast()).
		AddValidator(validation.NewEmptyStringValidator("extension point name", name)).
		AddValidator(validation.NewPatternValidator(pointNamePattern, name, nil)).
		Validate()
	if err != nil {
		return fmt.Errorf("%w: %w", gerrors.ErrInvalidExtensionPointName, err)
	}
	return nil
}

func checkAvailabilityListener(l AvailabilityListener) error {
	if l == nil {
		return fmt.Errorf("%w: nil listener", gerrors.ErrInvalidListener)
	}
	if !reflect.TypeOf(l).Comparable() {
		return fmt.Errorf("%w: %T is not comparable", gerrors.ErrInvalidListener, l)
	}
	return nil
}

// firstNonNil returns value unless it is the zero value, fallback otherwise
func firstNonNil[T comparable](value, fallback T) T {
	var zero T
	if value == zero {
		return fallback
	}
	return value
}

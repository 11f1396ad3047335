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
	"go.opentelemetry.io/otel/metric"

	"github.com/tochemey/extensions/internal/registry"
	"github.com/tochemey/extensions/log"
	"github.com/tochemey/extensions/order"
)

// Constructor builds an instance of a registered implementation type from the
// components visible in the area container
type Constructor = registry.Constructor

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of an area.
	Apply(area *Area)
}

// enforce compilation error
var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*Area)

// Apply applies the option
func (f OptionFunc) Apply(area *Area) {
	f(area)
}

// WithParent nests the area under parent. Container lookups fall back to the
// parent container and implementation types are shared with the parent.
func WithParent(parent *Area) Option {
	return OptionFunc(func(area *Area) {
		area.parent = parent
	})
}

// WithClass sets the scope discriminator of the area, for instance "project"
func WithClass(class string) Option {
	return OptionFunc(func(area *Area) {
		area.class = class
	})
}

// WithLogger sets the area logger. Defaults to the parent logger, then to log.DefaultLogger.
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(area *Area) {
		area.logger = logger
	})
}

// WithType registers an implementation type descriptors can refer to by name.
// v is a value, a pointer or a reflect.Type. ctor may be nil, in which case a
// pointer to a zero value is built.
func WithType(v any, ctor Constructor) Option {
	return OptionFunc(func(area *Area) {
		area.types = append(area.types, typeRegistration{value: v, ctor: ctor})
	})
}

// WithDeserializer sets how descriptor payloads are applied to instances.
// Defaults to the parent deserializer, then to JSONDeserializer.
func WithDeserializer(deserializer Deserializer) Option {
	return OptionFunc(func(area *Area) {
		area.deserializer = deserializer
	})
}

// WithMeterProvider sets the OpenTelemetry meter provider of the area.
// Defaults to the parent provider, then to the global provider.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return OptionFunc(func(area *Area) {
		area.meterProvider = provider
	})
}

// WithBuiltins sets whether Initialize registers the built-in extension points.
// Enabled by default.
func WithBuiltins(enabled bool) Option {
	return OptionFunc(func(area *Area) {
		area.builtins = enabled
	})
}

type typeRegistration struct {
	value any
	ctor  Constructor
}

// RegisterOption configures the registration of a contribution instance
type RegisterOption func(*registerConfig)

type registerConfig struct {
	order    order.Order
	orderID  string
	pluginID PluginID
}

func newRegisterConfig(pluginID PluginID, opts ...RegisterOption) *registerConfig {
	config := &registerConfig{order: order.Any, pluginID: pluginID}
	for _, opt := range opts {
		opt(config)
	}
	return config
}

// WithOrder sets the ordering constraints of the contribution
func WithOrder(spec order.Order) RegisterOption {
	return func(config *registerConfig) {
		config.order = spec
	}
}

// WithOrderID sets the id other contributions anchor to
func WithOrderID(id string) RegisterOption {
	return func(config *registerConfig) {
		config.orderID = id
	}
}

// WithPluginID sets the plugin owning the contribution. Defaults to the
// plugin owning the extension point.
func WithPluginID(id PluginID) RegisterOption {
	return func(config *registerConfig) {
		config.pluginID = id
	}
}

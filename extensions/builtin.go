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

	gerrors "github.com/tochemey/extensions/errors"
)

// AvailabilityListenerPointName is the built-in extension point plugins use
// to declare availability listeners
const AvailabilityListenerPointName = "extensions.availabilityListener"

// AvailabilityListenerExtension declares an AvailabilityListener for the
// extension point named PointName. ListenerType is the registered type name
// of the listener implementation.
type AvailabilityListenerExtension struct {
	PointName    string `json:"pointName"`
	ListenerType string `json:"listenerType"`
}

// builtinPoint is an entry of the static table seeded by Area.Initialize
type builtinPoint struct {
	name     string
	typ      reflect.Type
	listener func(area *Area) Listener
}

var builtinPoints = []builtinPoint{
	{
		name: AvailabilityListenerPointName,
		typ:  reflect.TypeFor[*AvailabilityListenerExtension](),
		listener: func(area *Area) Listener {
			return &availabilityBridge{area: area, installed: make(map[*AvailabilityListenerExtension]AvailabilityListener)}
		},
	},
}

// availabilityBridge turns availability listener contributions into live
// availability listeners
type availabilityBridge struct {
	area      *Area
	mu        sync.Mutex
	installed map[*AvailabilityListenerExtension]AvailabilityListener
}

var _ Listener = (*availabilityBridge)(nil)

func (x *availabilityBridge) ExtensionAdded(extension any, pluginID PluginID) {
	bean, ok := extension.(*AvailabilityListenerExtension)
	if !ok {
		return
	}

	listener, err := x.build(bean)
	if err != nil {
		x.area.callbackFailed(AvailabilityListenerPointName, "availability listener of plugin "+pluginID.String(), err)
		return
	}

	for _, existing := range x.area.availabilityListeners(bean.PointName) {
		if reflect.TypeOf(existing) == reflect.TypeOf(listener) {
			x.area.logger.Debugf("availability listener %s already watches %s", bean.ListenerType, bean.PointName)
			return
		}
	}

	if err := x.area.AddAvailabilityListener(bean.PointName, listener); err != nil {
		x.area.callbackFailed(AvailabilityListenerPointName, "availability listener of plugin "+pluginID.String(), err)
		return
	}

	x.mu.Lock()
	x.installed[bean] = listener
	x.mu.Unlock()
}

func (x *availabilityBridge) ExtensionRemoved(extension any, _ PluginID) {
	bean, ok := extension.(*AvailabilityListenerExtension)
	if !ok {
		return
	}

	x.mu.Lock()
	listener, ok := x.installed[bean]
	delete(x.installed, bean)
	x.mu.Unlock()

	if ok {
		_ = x.area.RemoveAvailabilityListener(bean.PointName, listener)
	}
}

func (x *availabilityBridge) build(bean *AvailabilityListenerExtension) (AvailabilityListener, error) {
	if bean.PointName == "" || bean.ListenerType == "" {
		return nil, fmt.Errorf("%w: pointName and listenerType are required", gerrors.ErrInvalidListener)
	}

	instance, err := x.area.registry.New(bean.ListenerType, x.area.container)
	if err != nil {
		return nil, err
	}

	listener, ok := instance.(AvailabilityListener)
	if !ok {
		return nil, fmt.Errorf("%w: %T is not an availability listener", gerrors.ErrTypeMismatch, instance)
	}
	return listener, nil
}

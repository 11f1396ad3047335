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

// Listener observes the contributions of an extension point.
// Callbacks run on the goroutine that caused the change, after the point has
// released its lock, so they may read the point again.
type Listener interface {
	// ExtensionAdded is called once for every contribution that becomes visible
	ExtensionAdded(extension any, pluginID PluginID)
	// ExtensionRemoved is called once for every visible contribution that is removed
	ExtensionRemoved(extension any, pluginID PluginID)
}

// ListenerFuncs adapts plain functions to a Listener.
// Use it through a pointer: listeners are compared by identity.
type ListenerFuncs struct {
	Added   func(extension any, pluginID PluginID)
	Removed func(extension any, pluginID PluginID)
}

var _ Listener = (*ListenerFuncs)(nil)

// ExtensionAdded calls Added when set
func (x *ListenerFuncs) ExtensionAdded(extension any, pluginID PluginID) {
	if x.Added != nil {
		x.Added(extension, pluginID)
	}
}

// ExtensionRemoved calls Removed when set
func (x *ListenerFuncs) ExtensionRemoved(extension any, pluginID PluginID) {
	if x.Removed != nil {
		x.Removed(extension, pluginID)
	}
}

// AvailabilityListener observes extension points of a given name appearing
// and disappearing in an area
type AvailabilityListener interface {
	ExtensionPointRegistered(point *Point)
	ExtensionPointRemoved(point *Point)
}

// AvailabilityFuncs adapts plain functions to an AvailabilityListener.
// Use it through a pointer: listeners are compared by identity.
type AvailabilityFuncs struct {
	Registered func(point *Point)
	Removed    func(point *Point)
}

var _ AvailabilityListener = (*AvailabilityFuncs)(nil)

// ExtensionPointRegistered calls Registered when set
func (x *AvailabilityFuncs) ExtensionPointRegistered(point *Point) {
	if x.Registered != nil {
		x.Registered(point)
	}
}

// ExtensionPointRemoved calls Removed when set
func (x *AvailabilityFuncs) ExtensionPointRemoved(point *Point) {
	if x.Removed != nil {
		x.Removed(point)
	}
}

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

// PluginID identifies the plugin owning an extension point or a contribution
type PluginID string

// CorePluginID owns the built-in extension points
const CorePluginID PluginID = "core"

// String returns the plugin id
func (id PluginID) String() string {
	return string(id)
}

// PluginAware is implemented by contributions that want to know the plugin
// they were declared by. SetPluginID is called once, after the payload has
// been applied.
type PluginAware interface {
	SetPluginID(id PluginID)
}

// AddedHook is implemented by contributions that want to run logic once they
// are part of an extension point
type AddedHook interface {
	OnAdded(point *Point) error
}

// RemovedHook is implemented by contributions that want to run logic once they
// are removed from an extension point
type RemovedHook interface {
	OnRemoved(point *Point) error
}

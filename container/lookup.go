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

import "reflect"

// All returns every component visible from c whose instance is a T.
// Adapters known not to produce a T are not built.
func All[T any](c *Container) ([]T, error) {
	components, err := c.ComponentsOfType(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(components))
	for _, component := range components {
		if v, ok := component.(T); ok {
			out = append(out, v)
		}
	}
	return out, nil
}

// First returns the nearest component whose instance is a T.
// The boolean is false when no such component is visible.
func First[T any](c *Container) (T, bool, error) {
	var zero T
	components, err := c.ComponentsOfType(reflect.TypeFor[T]())
	if err != nil {
		return zero, false, err
	}

	for _, component := range components {
		if v, ok := component.(T); ok {
			return v, true, nil
		}
	}
	return zero, false, nil
}

// Lookup returns the component registered under key as a T. The boolean is
// false when the key is not visible or the instance is not a T.
func Lookup[T any](c *Container, key any) (T, bool, error) {
	var zero T
	component, err := c.Component(key)
	if err != nil || component == nil {
		return zero, false, err
	}

	v, ok := component.(T)
	return v, ok, nil
}

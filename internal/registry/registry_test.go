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

package registry

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tochemey/extensions/container"
	gerrors "github.com/tochemey/extensions/errors"
)

type widget struct {
	Label string
}

type greeter interface {
	Greet() string
}

func TestRegistry(t *testing.T) {
	t.Run("With names", func(t *testing.T) {
		assert.Equal(t, "registry.widget", Name(new(widget)))
		assert.Equal(t, "registry.widget", Name(widget{}))
		assert.Equal(t, "registry.widget", Name(reflect.TypeFor[*widget]()))
		assert.Equal(t, "registry.greeter", Name(reflect.TypeFor[greeter]()))
	})
	t.Run("With register and lookup", func(t *testing.T) {
		reg := NewRegistry()
		name := reg.Register(new(widget), nil)
		assert.Equal(t, "registry.widget", name)
		entry, ok := reg.Lookup("  Registry.Widget ")
		require.True(t, ok)
		assert.Equal(t, reflect.TypeFor[widget](), entry.Type)
		assert.Equal(t, name, entry.Name)
		assert.Nil(t, entry.Constructor)

		_, ok = reg.Lookup("registry.gadget")
		assert.False(t, ok)
	})
	t.Run("With zero value instantiation", func(t *testing.T) {
		reg := NewRegistry()
		reg.Register(new(widget), nil)

		instance, err := reg.New("registry.widget", container.New(nil))
		require.NoError(t, err)
		require.IsType(t, &widget{}, instance)
		assert.Empty(t, instance.(*widget).Label)
	})
	t.Run("With a constructor using the container", func(t *testing.T) {
		reg := NewRegistry()
		reg.Register(new(widget), func(c *container.Container) (any, error) {
			label, err := c.Component("label")
			if err != nil {
				return nil, err
			}
			return &widget{Label: label.(string)}, nil
		})

		scope := container.New(nil)
		require.NoError(t, scope.RegisterInstance("label", "ok"))

		instance, err := reg.New("registry.widget", scope)
		require.NoError(t, err)
		assert.Equal(t, "ok", instance.(*widget).Label)
	})
	t.Run("With a failing constructor", func(t *testing.T) {
		reg := NewRegistry()
		boom := errors.New("boom")
		reg.Register(new(widget), func(*container.Container) (any, error) { return nil, boom })

		_, err := reg.New("registry.widget", container.New(nil))
		assert.ErrorIs(t, err, boom)
	})
	t.Run("With an unknown name", func(t *testing.T) {
		_, err := NewRegistry().New("registry.missing", container.New(nil))
		assert.ErrorIs(t, err, gerrors.ErrTypeNotRegistered)
	})
	t.Run("With an interface and no constructor", func(t *testing.T) {
		reg := NewRegistry()
		reg.Register(reflect.TypeFor[greeter](), nil)
		_, err := reg.New("registry.greeter", container.New(nil))
		assert.ErrorIs(t, err, gerrors.ErrTypeMismatch)
	})
}

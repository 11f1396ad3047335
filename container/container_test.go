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
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	gerrors "github.com/tochemey/extensions/errors"
)

type greeter interface {
	Greet() string
}

type english struct{ name string }

func (x *english) Greet() string { return "hello " + x.name }

type service struct {
	greeter greeter
}

func TestContainer(t *testing.T) {
	t.Run("With local registration and lookup", func(t *testing.T) {
		root := New(nil)
		require.Nil(t, root.Parent())
		require.NoError(t, root.RegisterInstance("greeter", &english{name: "root"}))

		component, err := root.Component("greeter")
		require.NoError(t, err)
		require.IsType(t, new(english), component)
		assert.Equal(t, 1, root.Len())
		assert.Equal(t, []any{"greeter"}, root.Keys())
	})
	t.Run("With duplicate key in the same scope", func(t *testing.T) {
		root := New(nil)
		require.NoError(t, root.RegisterInstance("greeter", &english{}))
		err := root.RegisterInstance("greeter", &english{})
		require.ErrorIs(t, err, gerrors.ErrDuplicateComponent)
	})
	t.Run("With invalid key", func(t *testing.T) {
		root := New(nil)
		require.ErrorIs(t, root.RegisterInstance(nil, &english{}), gerrors.ErrInvalidComponentKey)
		require.ErrorIs(t, root.RegisterInstance([]string{"a"}, &english{}), gerrors.ErrInvalidComponentKey)
		component, err := root.Component([]string{"a"})
		require.NoError(t, err)
		require.Nil(t, component)
	})
	t.Run("With missing key", func(t *testing.T) {
		root := New(nil)
		component, err := root.Component("missing")
		require.NoError(t, err)
		require.Nil(t, component)
		_, ok := root.Adapter("missing")
		require.False(t, ok)
	})
	t.Run("With nearest scope winning", func(t *testing.T) {
		root := New(nil)
		project := New(root)
		module := New(project)

		rootGreeter := &english{name: "root"}
		projectGreeter := &english{name: "project"}
		require.NoError(t, root.RegisterInstance("greeter", rootGreeter))
		require.NoError(t, project.RegisterInstance("greeter", projectGreeter))

		component, err := module.Component("greeter")
		require.NoError(t, err)
		assert.Same(t, projectGreeter, component)

		component, err = root.Component("greeter")
		require.NoError(t, err)
		assert.Same(t, rootGreeter, component)

		adapter, ok := module.Adapter("greeter")
		require.True(t, ok)
		assert.Equal(t, "greeter", adapter.Key())
	})
	t.Run("With aggregation across the chain", func(t *testing.T) {
		root := New(nil)
		project := New(root)
		require.NoError(t, root.RegisterInstance("a", &english{name: "a"}))
		require.NoError(t, root.RegisterInstance("number", 42))
		require.NoError(t, project.RegisterInstance("a", &english{name: "b"}))
		require.NoError(t, project.RegisterInstance("c", &english{name: "c"}))

		components, err := project.Components()
		require.NoError(t, err)
		require.Len(t, components, 4)
		assert.Equal(t, "b", components[0].(*english).name)
		assert.Equal(t, "c", components[1].(*english).name)
		assert.Equal(t, "a", components[2].(*english).name)
		assert.Equal(t, 42, components[3])

		greeters, err := project.ComponentsOfType(reflect.TypeFor[greeter]())
		require.NoError(t, err)
		require.Len(t, greeters, 3)

		typed, err := All[greeter](project)
		require.NoError(t, err)
		require.Len(t, typed, 3)
		assert.Equal(t, "hello b", typed[0].Greet())
	})
	t.Run("With unregister only touching the local scope", func(t *testing.T) {
		root := New(nil)
		project := New(root)
		require.NoError(t, root.RegisterInstance("greeter", &english{name: "root"}))

		_, ok := project.Unregister("greeter")
		require.False(t, ok)

		adapter, ok := root.Unregister("greeter")
		require.True(t, ok)
		assert.Equal(t, "greeter", adapter.Key())
		assert.Zero(t, root.Len())
		assert.Empty(t, root.Keys())

		component, err := project.Component("greeter")
		require.NoError(t, err)
		require.Nil(t, component)
	})
	t.Run("With constructor dependency resolution", func(t *testing.T) {
		root := New(nil)
		project := New(root)
		require.NoError(t, root.RegisterInstance("greeter", &english{name: "root"}))

		calls := 0
		require.NoError(t, project.Register(ConstructorAdapter("service", func(c *Container) (any, error) {
			calls++
			dep, ok, err := First[greeter](c)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, errors.New("greeter not found")
			}
			return &service{greeter: dep}, nil
		})))

		first, err := project.Component("service")
		require.NoError(t, err)
		second, err := project.Component("service")
		require.NoError(t, err)
		assert.Same(t, first, second)
		assert.Equal(t, 1, calls)
		assert.Equal(t, "hello root", first.(*service).greeter.Greet())

		svc, ok, err := Lookup[*service](project, "service")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Same(t, first, svc)

		_, ok, err = Lookup[greeter](project, "service")
		require.NoError(t, err)
		require.False(t, ok)
	})
	t.Run("With a constructor asking for itself", func(t *testing.T) {
		root := New(nil)
		require.NoError(t, root.Register(ConstructorAdapter("self", func(c *Container) (any, error) {
			return c.Component("self")
		})))
		_, err := root.Component("self")
		require.ErrorIs(t, err, gerrors.ErrCyclicDependency)
	})
	t.Run("With constructor failure", func(t *testing.T) {
		root := New(nil)
		boom := errors.New("boom")
		require.NoError(t, root.Register(ConstructorAdapter("broken", func(*Container) (any, error) {
			return nil, boom
		})))

		_, err := root.Component("broken")
		require.ErrorIs(t, err, boom)

		_, err = root.Components()
		require.ErrorIs(t, err, boom)

		_, _, err = First[greeter](root)
		require.ErrorIs(t, err, boom)
	})
	t.Run("With typed adapters skipped without instantiation", func(t *testing.T) {
		root := New(nil)
		require.NoError(t, root.RegisterInstance("number", 1))
		for i := 0; i < 3; i++ {
			require.NoError(t, root.RegisterInstance(fmt.Sprintf("greeter-%d", i), &english{}))
		}
		greeters, err := root.ComponentsOfType(reflect.TypeFor[greeter]())
		require.NoError(t, err)
		assert.Len(t, greeters, 3)

		_, ok, err := First[*service](root)
		require.NoError(t, err)
		require.False(t, ok)
	})
	t.Run("With contributions failing to load skipped", func(t *testing.T) {
		root := New(nil)
		require.NoError(t, root.Register(ConstructorAdapter("broken", func(*Container) (any, error) {
			return nil, &gerrors.ContributionLoadError{PluginID: "p1", Point: "demo.ep", Err: gerrors.ErrTypeNotRegistered}
		})))
		require.NoError(t, root.RegisterInstance("greeter", &english{name: "ok"}))

		components, err := root.Components()
		require.NoError(t, err)
		require.Len(t, components, 1)

		greeters, err := All[greeter](root)
		require.NoError(t, err)
		require.Len(t, greeters, 1)
		assert.Equal(t, "hello ok", greeters[0].Greet())
	})
	t.Run("With adapters of unknown type skipped by type queries", func(t *testing.T) {
		root := New(nil)
		var built atomic.Int32
		require.NoError(t, root.Register(&lateAdapter{key: "late", build: func() any {
			built.Add(1)
			return &english{}
		}}))

		_, ok, err := First[greeter](root)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Zero(t, built.Load())

		components, err := root.Components()
		require.NoError(t, err)
		assert.Len(t, components, 1)
		assert.EqualValues(t, 1, built.Load())
	})
	t.Run("With branching not supported", func(t *testing.T) {
		root := New(nil)
		child, err := root.MakeChildContainer()
		require.ErrorIs(t, err, gerrors.ErrNotSupported)
		require.Nil(t, child)
		require.ErrorIs(t, root.AddChildContainer(New(nil)), gerrors.ErrNotSupported)
		require.ErrorIs(t, root.RemoveChildContainer(New(nil)), gerrors.ErrNotSupported)
	})
}

// lateAdapter only knows its implementation type once built
type lateAdapter struct {
	key   any
	build func() any
}

func (x *lateAdapter) Key() any { return x.key }

func (x *lateAdapter) Instance(*Container) (any, error) { return x.build(), nil }

func (x *lateAdapter) ImplementationType() reflect.Type { return nil }

func TestContainerConcurrency(t *testing.T) {
	t.Run("With concurrent demands waiting for the running construction", func(t *testing.T) {
		root := New(nil)
		started := make(chan struct{})
		release := make(chan struct{})
		var once sync.Once
		var calls atomic.Int32
		require.NoError(t, root.Register(ConstructorAdapter("slow", func(*Container) (any, error) {
			calls.Add(1)
			once.Do(func() { close(started) })
			<-release
			return &english{name: "slow"}, nil
		})))

		const readers = 4
		results := make([]any, readers)
		errs := make([]error, readers)
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[0], errs[0] = root.Component("slow")
		}()

		<-started
		for i := 1; i < readers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], errs[i] = root.Component("slow")
			}(i)
		}

		time.Sleep(50 * time.Millisecond)
		close(release)
		wg.Wait()

		assert.EqualValues(t, 1, calls.Load())
		for i := 0; i < readers; i++ {
			require.NoError(t, errs[i])
			assert.Same(t, results[0], results[i])
		}
		goleak.VerifyNone(t)
	})
	t.Run("With a failed construction retried by the next demand", func(t *testing.T) {
		root := New(nil)
		var calls atomic.Int32
		require.NoError(t, root.Register(ConstructorAdapter("flaky", func(*Container) (any, error) {
			if calls.Add(1) == 1 {
				return nil, errors.New("boom")
			}
			return &english{}, nil
		})))

		_, err := root.Component("flaky")
		require.Error(t, err)
		instance, err := root.Component("flaky")
		require.NoError(t, err)
		assert.NotNil(t, instance)
		assert.EqualValues(t, 2, calls.Load())
	})
}

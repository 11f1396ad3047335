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
	"fmt"
	"reflect"
	"strings"

	"github.com/tochemey/extensions/container"
	gerrors "github.com/tochemey/extensions/errors"
	"github.com/tochemey/extensions/internal/xsync"
)

// Constructor builds an instance of a registered type.
// The container gives access to the components visible from the calling scope.
type Constructor func(c *container.Container) (any, error)

// Entry is a registered implementation type
type Entry struct {
	// Name is the lowercased package qualified type name
	Name string
	// Type is the implementation type, never a pointer
	Type reflect.Type
	// Constructor builds the instance. When nil a pointer to a zero value is used.
	Constructor Constructor
}

// Registry resolves implementation names to types and builds them
type Registry interface {
	// Register records v, a value, pointer or reflect.Type, under its name and returns the name
	Register(v any, ctor Constructor) string
	// Lookup returns the entry registered under name
	Lookup(name string) (*Entry, bool)
	// New builds an instance of the type registered under name
	New(name string, c *container.Container) (any, error)
}

type registry struct {
	entries *xsync.Map[string, *Entry]
}

var _ Registry = (*registry)(nil)

// NewRegistry creates an empty types registry
func NewRegistry() Registry {
	return &registry{entries: xsync.NewMap[string, *Entry]()}
}

// Register records v under its name and returns the name
func (x *registry) Register(v any, ctor Constructor) string {
	rtype := reflectType(v)
	name := TypeName(rtype)
	x.entries.Set(name, &Entry{Name: name, Type: rtype, Constructor: ctor})
	return name
}

// Lookup returns the entry registered under name
func (x *registry) Lookup(name string) (*Entry, bool) {
	return x.entries.Get(lowTrim(name))
}

// New builds an instance of the type registered under name. It fails with
// ErrTypeNotRegistered when name is unknown and with ErrTypeMismatch when the
// type cannot be built without a constructor.
func (x *registry) New(name string, c *container.Container) (any, error) {
	entry, ok := x.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", gerrors.ErrTypeNotRegistered, name)
	}

	if entry.Constructor != nil {
		return entry.Constructor(c)
	}

	if entry.Type.Kind() == reflect.Interface {
		return nil, fmt.Errorf("%w: %s is an interface and has no constructor", gerrors.ErrTypeMismatch, entry.Name)
	}

	instance := reflect.New(entry.Type)
	if !instance.IsValid() {
		return nil, fmt.Errorf("%w: cannot build %s", gerrors.ErrTypeMismatch, entry.Name)
	}
	return instance.Interface(), nil
}

// Name returns the registry name of v, a value, pointer or reflect.Type
func Name(v any) string {
	return TypeName(reflectType(v))
}

// TypeName returns the registry name of rtype
func TypeName(rtype reflect.Type) string {
	return lowTrim(rtype.String())
}

// reflectType returns the implementation type of v, dereferencing pointers
func reflectType(v any) reflect.Type {
	var rtype reflect.Type
	switch _type := v.(type) {
	case reflect.Type:
		rtype = _type
	default:
		rtype = reflect.TypeOf(v)
	}

	for rtype.Kind() == reflect.Pointer {
		rtype = rtype.Elem()
	}
	return rtype
}

// lowTrim trims spaces and lowers the value
func lowTrim(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

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

package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicateExtensionPoint is returned when an extension point name is registered twice in the same area.
	ErrDuplicateExtensionPoint = errors.New("duplicate extension point")

	// ErrUnknownExtensionPoint is returned when an extension point cannot be found in an area.
	ErrUnknownExtensionPoint = errors.New("unknown extension point")

	// ErrUnregisteredExtension is returned when a descriptor is unregistered without having been registered.
	ErrUnregisteredExtension = errors.New("extension is not registered")

	// ErrDuplicateContribution is returned when the same contribution is registered twice on an extension point.
	ErrDuplicateContribution = errors.New("duplicate contribution")

	// ErrContributionNotFound is returned when a contribution to remove is not part of the extension point.
	ErrContributionNotFound = errors.New("contribution not found")

	// ErrContributionLoad is returned when the implementation of a contribution cannot be resolved.
	ErrContributionLoad = errors.New("failed to load contribution")

	// ErrOrderCycle marks a cycle found while ordering contributions. It is never fatal.
	ErrOrderCycle = errors.New("cyclic order constraints")

	// ErrNotSupported is returned when a branching container hierarchy is attempted.
	ErrNotSupported = errors.New("operation not supported")

	// ErrDuplicateComponent is returned when a component key is registered twice in the same container scope.
	ErrDuplicateComponent = errors.New("duplicate component key")

	// ErrInvalidComponentKey is returned when a component key is nil or not comparable.
	ErrInvalidComponentKey = errors.New("invalid component key")

	// ErrCyclicDependency is returned when a component is requested while it is being constructed.
	ErrCyclicDependency = errors.New("cyclic component dependency")

	// ErrInvalidOrder is returned when an order specification cannot be parsed.
	ErrInvalidOrder = errors.New("invalid order specification")

	// ErrTypeNotRegistered is returned when an implementation type name is unknown to the type registry.
	ErrTypeNotRegistered = errors.New("implementation type is not registered")

	// ErrTypeMismatch is returned when an implementation does not satisfy the extension point contribution type.
	ErrTypeMismatch = errors.New("implementation does not match the extension point type")

	// ErrInvalidContribution is returned when a contribution value cannot be tracked by identity.
	ErrInvalidContribution = errors.New("invalid contribution")

	// ErrInvalidListener is returned when a listener cannot be tracked by identity.
	ErrInvalidListener = errors.New("invalid listener")

	// ErrListenerNotFound is returned when removing a listener that was never added.
	ErrListenerNotFound = errors.New("listener not found")

	// ErrInvalidExtensionPointName is returned when a name does not follow the <namespace>.<localName> format.
	ErrInvalidExtensionPointName = errors.New("invalid extension point name, must be <namespace>.<localName>")

	// ErrAreaDisposed is returned when a disposed area is mutated.
	ErrAreaDisposed = errors.New("area is disposed")
)

// DuplicateExtensionPointError is returned when two plugins register the same extension point name.
type DuplicateExtensionPointError struct {
	Name      string
	Existing  string
	Duplicate string
}

func (e *DuplicateExtensionPointError) Error() string {
	return fmt.Sprintf("%s: name=%s, first in plugin=%s, second in plugin=%s",
		ErrDuplicateExtensionPoint, e.Name, e.Existing, e.Duplicate)
}

func (e *DuplicateExtensionPointError) Unwrap() error { return ErrDuplicateExtensionPoint }

// UnknownExtensionPointError is returned when an extension point name is not registered.
type UnknownExtensionPointError struct {
	Name string
}

func (e *UnknownExtensionPointError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnknownExtensionPoint, e.Name)
}

func (e *UnknownExtensionPointError) Unwrap() error { return ErrUnknownExtensionPoint }

// UnregisteredExtensionError is returned when a descriptor is unregistered before it was registered.
// Dump holds a human readable rendering of the offending descriptor.
type UnregisteredExtensionError struct {
	PluginID string
	Dump     string
}

func (e *UnregisteredExtensionError) Error() string {
	return fmt.Sprintf("%s: plugin=%s\n%s", ErrUnregisteredExtension, e.PluginID, e.Dump)
}

func (e *UnregisteredExtensionError) Unwrap() error { return ErrUnregisteredExtension }

// DuplicateContributionError is returned when a contribution is already present on an extension point.
type DuplicateContributionError struct {
	Point        string
	Contribution string
}

func (e *DuplicateContributionError) Error() string {
	return fmt.Sprintf("%s: %s already registered on %s", ErrDuplicateContribution, e.Contribution, e.Point)
}

func (e *DuplicateContributionError) Unwrap() error { return ErrDuplicateContribution }

// ContributionNotFoundError is returned when removing a contribution the extension point does not hold.
type ContributionNotFoundError struct {
	Point        string
	Contribution string
}

func (e *ContributionNotFoundError) Error() string {
	return fmt.Sprintf("%s: %s is not registered on %s", ErrContributionNotFound, e.Contribution, e.Point)
}

func (e *ContributionNotFoundError) Unwrap() error { return ErrContributionNotFound }

// ContributionLoadError is returned when the implementation of a contribution cannot be resolved.
// The extension point drops the contribution and keeps going.
type ContributionLoadError struct {
	PluginID       string
	Point          string
	Implementation string
	Err            error
}

func (e *ContributionLoadError) Error() string {
	return fmt.Sprintf("%s: plugin=%s, point=%s, implementation=%s: %v",
		ErrContributionLoad, e.PluginID, e.Point, e.Implementation, e.Err)
}

func (e *ContributionLoadError) Unwrap() []error {
	return []error{ErrContributionLoad, e.Err}
}

// OrderCycleWarning describes a cycle broken while ordering contributions.
// Forced is the item emitted to break it and Remaining lists the items of the
// cycle, in input order.
type OrderCycleWarning struct {
	Forced    string
	Remaining []string
}

func (e *OrderCycleWarning) Error() string {
	return fmt.Sprintf("%s: forced %s out of [%s]", ErrOrderCycle, e.Forced, strings.Join(e.Remaining, ", "))
}

func (e *OrderCycleWarning) Unwrap() error { return ErrOrderCycle }

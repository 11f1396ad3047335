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

package order

import (
	"fmt"
	"slices"
	"strings"

	gerrors "github.com/tochemey/extensions/errors"
)

// Kind identifies a single ordering constraint
type Kind int

const (
	// AnyKind places no constraint on the contribution
	AnyKind Kind = iota
	// FirstKind places the contribution before every non-first contribution
	FirstKind
	// LastKind places the contribution after every non-last contribution
	LastKind
	// BeforeKind places the contribution before the anchored one
	BeforeKind
	// AfterKind places the contribution after the anchored one
	AfterKind
)

const (
	anyToken    = "any"
	firstToken  = "first"
	lastToken   = "last"
	beforeToken = "before"
	afterToken  = "after"
	separator   = ","
)

// Constraint is a single ordering constraint. Anchor is only meaningful for
// BeforeKind and AfterKind and refers to the order id of another contribution.
type Constraint struct {
	Kind   Kind
	Anchor string
}

// Order is the ordered list of constraints attached to a contribution.
// The zero value is Any.
type Order struct {
	constraints []Constraint
}

var (
	// Any places no constraint on the contribution
	Any = Order{}
	// First places the contribution ahead of every non-first contribution
	First = Order{constraints: []Constraint{{Kind: FirstKind}}}
	// Last places the contribution behind every non-last contribution
	Last = Order{constraints: []Constraint{{Kind: LastKind}}}
)

// Before returns an order placing the contribution before every contribution
// whose order id is one of ids
func Before(ids ...string) Order {
	return Any.Before(ids...)
}

// After returns an order placing the contribution after every contribution
// whose order id is one of ids
func After(ids ...string) Order {
	return Any.After(ids...)
}

// Before returns a copy of o extended with before constraints
func (o Order) Before(ids ...string) Order {
	return o.with(BeforeKind, ids)
}

// After returns a copy of o extended with after constraints
func (o Order) After(ids ...string) Order {
	return o.with(AfterKind, ids)
}

// Constraints returns a copy of the constraints in declaration order
func (o Order) Constraints() []Constraint {
	return slices.Clone(o.constraints)
}

// IsAny reports whether o carries no constraint at all
func (o Order) IsAny() bool {
	return len(o.constraints) == 0
}

// IsFirst reports whether o carries the first constraint
func (o Order) IsFirst() bool {
	return o.has(FirstKind)
}

// IsLast reports whether o carries the last constraint
func (o Order) IsLast() bool {
	return o.has(LastKind)
}

// Befores returns the anchors of the before constraints
func (o Order) Befores() []string {
	return o.anchors(BeforeKind)
}

// Afters returns the anchors of the after constraints
func (o Order) Afters() []string {
	return o.anchors(AfterKind)
}

// Equal reports whether o and other carry the same constraints in the same order
func (o Order) Equal(other Order) bool {
	return slices.Equal(o.constraints, other.constraints)
}

// String renders o in the form accepted by Parse
func (o Order) String() string {
	if o.IsAny() {
		return anyToken
	}

	tokens := make([]string, 0, len(o.constraints))
	for _, constraint := range o.constraints {
		switch constraint.Kind {
		case FirstKind:
			tokens = append(tokens, firstToken)
		case LastKind:
			tokens = append(tokens, lastToken)
		case BeforeKind:
			tokens = append(tokens, beforeToken+" "+constraint.Anchor)
		case AfterKind:
			tokens = append(tokens, afterToken+" "+constraint.Anchor)
		}
	}
	return strings.Join(tokens, separator+" ")
}

// Parse reads a comma separated order specification such as
// "first, before other". Tokens are case-insensitive; an empty
// specification is Any.
func Parse(spec string) (Order, error) {
	var order Order
	if strings.TrimSpace(spec) == "" {
		return order, nil
	}

	for _, raw := range strings.Split(spec, separator) {
		fields := strings.Fields(raw)
		if len(fields) == 0 {
			return Any, fmt.Errorf("%w: empty token in %q", gerrors.ErrInvalidOrder, spec)
		}

		keyword := strings.ToLower(fields[0])
		switch keyword {
		case anyToken, firstToken, lastToken:
			if len(fields) != 1 {
				return Any, fmt.Errorf("%w: unexpected anchor after %q in %q", gerrors.ErrInvalidOrder, keyword, spec)
			}
		case beforeToken, afterToken:
			if len(fields) != 2 {
				return Any, fmt.Errorf("%w: %q expects exactly one anchor in %q", gerrors.ErrInvalidOrder, keyword, spec)
			}
		default:
			return Any, fmt.Errorf("%w: unknown token %q in %q", gerrors.ErrInvalidOrder, fields[0], spec)
		}

		switch keyword {
		case firstToken:
			order = order.with(FirstKind, nil)
		case lastToken:
			order = order.with(LastKind, nil)
		case beforeToken:
			order = order.Before(fields[1])
		case afterToken:
			order = order.After(fields[1])
		}
	}

	if order.IsFirst() && order.IsLast() {
		return Any, fmt.Errorf("%w: first and last are exclusive in %q", gerrors.ErrInvalidOrder, spec)
	}
	return order, nil
}

// MustParse is like Parse but panics when spec is invalid.
// It is meant for package level order values.
func MustParse(spec string) Order {
	order, err := Parse(spec)
	if err != nil {
		panic(err)
	}
	return order
}

func (o Order) with(kind Kind, ids []string) Order {
	constraints := slices.Clone(o.constraints)
	switch kind {
	case FirstKind, LastKind:
		if !o.has(kind) {
			constraints = append(constraints, Constraint{Kind: kind})
		}
	default:
		for _, id := range ids {
			constraint := Constraint{Kind: kind, Anchor: id}
			if id != "" && !slices.Contains(constraints, constraint) {
				constraints = append(constraints, constraint)
			}
		}
	}
	return Order{constraints: constraints}
}

func (o Order) has(kind Kind) bool {
	return slices.ContainsFunc(o.constraints, func(c Constraint) bool { return c.Kind == kind })
}

func (o Order) anchors(kind Kind) []string {
	var out []string
	for _, constraint := range o.constraints {
		if constraint.Kind == kind {
			out = append(out, constraint.Anchor)
		}
	}
	return out
}

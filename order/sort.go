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
	"container/heap"
	"fmt"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"

	gerrors "github.com/tochemey/extensions/errors"
)

// Orderable is implemented by anything Sort can arrange
type Orderable interface {
	// Order returns the ordering constraints of the item
	Order() Order
	// OrderID returns the identifier other items anchor to. It may be empty.
	OrderID() string
}

// SortOption configures Sort
type SortOption func(*sorter)

// WithCycleHandler sets the function called every time Sort has to break a
// cycle of contradictory constraints
func WithCycleHandler(handler func(*gerrors.OrderCycleWarning)) SortOption {
	return func(s *sorter) {
		s.onCycle = handler
	}
}

// Sort returns a new slice holding items arranged so that every satisfiable
// constraint holds. Items that are not constrained relative to each other keep
// their input order. Anchors that match no item are ignored. When constraints
// form a cycle the lowest indexed item of the cycle is emitted first and the
// cycle handler, if any, is notified. The input slice is never modified.
func Sort[T Orderable](items []T, opts ...SortOption) []T {
	if len(items) < 2 {
		return slices.Clone(items)
	}

	orders := make([]Order, len(items))
	ids := make([]string, len(items))
	for index, item := range items {
		orders[index] = item.Order()
		ids[index] = item.OrderID()
	}

	s := newSorter(orders, ids)
	for _, opt := range opts {
		opt(s)
	}

	output := make([]T, 0, len(items))
	for _, index := range s.sort() {
		output = append(output, items[index])
	}
	return output
}

// sorter runs Kahn's algorithm over the constraint graph. Nodes 0..n-1 are the
// items; two sentinel nodes split first items from the rest and the rest from
// last items.
type sorter struct {
	size         int
	first        int
	last         int
	labels       []string
	successors   []mapset.Set[int]
	predecessors []mapset.Set[int]
	inDegree     []int
	released     []bool
	onCycle      func(*gerrors.OrderCycleWarning)
}

func newSorter(orders []Order, ids []string) *sorter {
	size := len(orders)
	nodes := size + 2
	s := &sorter{
		size:         size,
		first:        size,
		last:         size + 1,
		labels:       make([]string, size),
		successors:   make([]mapset.Set[int], nodes),
		predecessors: make([]mapset.Set[int], nodes),
		inDegree:     make([]int, nodes),
		released:     make([]bool, nodes),
	}

	for node := range nodes {
		s.successors[node] = mapset.NewThreadUnsafeSet[int]()
		s.predecessors[node] = mapset.NewThreadUnsafeSet[int]()
	}

	anchors := make(map[string][]int, size)
	for index, id := range ids {
		s.labels[index] = id
		if id == "" {
			s.labels[index] = fmt.Sprintf("#%d", index)
			continue
		}
		anchors[id] = append(anchors[id], index)
	}

	for index, order := range orders {
		if order.IsFirst() {
			s.addEdge(index, s.first)
		} else {
			s.addEdge(s.first, index)
		}

		if order.IsLast() {
			s.addEdge(s.last, index)
		} else {
			s.addEdge(index, s.last)
		}

		for _, anchor := range order.Befores() {
			for _, target := range anchors[anchor] {
				if target != index {
					s.addEdge(index, target)
				}
			}
		}

		for _, anchor := range order.Afters() {
			for _, target := range anchors[anchor] {
				if target != index {
					s.addEdge(target, index)
				}
			}
		}
	}
	return s
}

func (s *sorter) addEdge(from, to int) {
	if s.successors[from].Add(to) {
		s.predecessors[to].Add(from)
		s.inDegree[to]++
	}
}

// priority keeps sentinels ahead of items so they never delay a ready item
func (s *sorter) priority(node int) int {
	if node >= s.size {
		return -1
	}
	return node
}

func (s *sorter) sort() []int {
	nodes := s.size + 2
	ready := &nodeHeap{priority: s.priority}
	for node := range nodes {
		if s.inDegree[node] == 0 {
			s.released[node] = true
			heap.Push(ready, node)
		}
	}

	output := make([]int, 0, s.size)
	for emitted := 0; emitted < nodes; emitted++ {
		if ready.Len() == 0 {
			forced := s.breakCycle()
			s.released[forced] = true
			heap.Push(ready, forced)
		}

		node := heap.Pop(ready).(int)
		if node < s.size {
			output = append(output, node)
		}

		for _, next := range s.successors[node].ToSlice() {
			if s.released[next] {
				continue
			}
			s.inDegree[next]--
			if s.inDegree[next] == 0 {
				s.released[next] = true
				heap.Push(ready, next)
			}
		}
	}
	return output
}

// breakCycle picks the node to force out when no node is ready. Only the
// strongly connected components no other pending node points into are
// considered, so constraints outside the cycle are left intact. Within them
// the item with the lowest input index is chosen.
func (s *sorter) breakCycle() int {
	components := s.pendingComponents()

	forced, forcedComponent := -1, -1
	for index, component := range components {
		if !s.isSource(component, components) {
			continue
		}
		for _, node := range component.nodes {
			if forced == -1 || s.priority(node) >= 0 && (s.priority(forced) < 0 || node < forced) {
				forced, forcedComponent = node, index
			}
		}
	}

	if s.onCycle != nil && forced < s.size {
		remaining := make([]int, 0, len(components[forcedComponent].nodes))
		for _, node := range components[forcedComponent].nodes {
			if node < s.size {
				remaining = append(remaining, node)
			}
		}
		slices.Sort(remaining)

		warning := &gerrors.OrderCycleWarning{Forced: s.labels[forced]}
		for _, node := range remaining {
			warning.Remaining = append(warning.Remaining, s.labels[node])
		}
		s.onCycle(warning)
	}
	return forced
}

func (s *sorter) isSource(component *component, components []*component) bool {
	for _, node := range component.nodes {
		for _, previous := range s.predecessors[node].ToSlice() {
			if !s.released[previous] && components[s.componentOf(previous, components)] != component {
				return false
			}
		}
	}
	return true
}

func (s *sorter) componentOf(node int, components []*component) int {
	for index, component := range components {
		if slices.Contains(component.nodes, node) {
			return index
		}
	}
	return -1
}

type component struct {
	nodes []int
}

// pendingComponents computes the strongly connected components of the graph
// restricted to unreleased nodes using Tarjan's algorithm
func (s *sorter) pendingComponents() []*component {
	nodes := s.size + 2
	var (
		counter    int
		stack      []int
		onStack    = make([]bool, nodes)
		indexes    = make([]int, nodes)
		lowLinks   = make([]int, nodes)
		visited    = make([]bool, nodes)
		components []*component
	)

	var connect func(node int)
	connect = func(node int) {
		visited[node] = true
		indexes[node], lowLinks[node] = counter, counter
		counter++
		stack = append(stack, node)
		onStack[node] = true

		for _, next := range s.successors[node].ToSlice() {
			if s.released[next] {
				continue
			}
			switch {
			case !visited[next]:
				connect(next)
				lowLinks[node] = min(lowLinks[node], lowLinks[next])
			case onStack[next]:
				lowLinks[node] = min(lowLinks[node], indexes[next])
			}
		}

		if lowLinks[node] == indexes[node] {
			current := &component{}
			for {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[top] = false
				current.nodes = append(current.nodes, top)
				if top == node {
					break
				}
			}
			slices.Sort(current.nodes)
			components = append(components, current)
		}
	}

	for node := range nodes {
		if !s.released[node] && !visited[node] {
			connect(node)
		}
	}
	return components
}

// nodeHeap is a min-heap of node indexes
type nodeHeap struct {
	nodes    []int
	priority func(int) int
}

var _ heap.Interface = (*nodeHeap)(nil)

func (h *nodeHeap) Len() int { return len(h.nodes) }

func (h *nodeHeap) Less(i, j int) bool {
	return h.priority(h.nodes[i]) < h.priority(h.nodes[j])
}

func (h *nodeHeap) Swap(i, j int) { h.nodes[i], h.nodes[j] = h.nodes[j], h.nodes[i] }

func (h *nodeHeap) Push(x any) { h.nodes = append(h.nodes, x.(int)) }

func (h *nodeHeap) Pop() any {
	old := h.nodes
	last := old[len(old)-1]
	h.nodes = old[:len(old)-1]
	return last
}

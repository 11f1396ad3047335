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
	"bufio"
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tochemey/extensions/log"
)

const (
	greeterPointName = "test.greeter"
	beanPointName    = "test.bean"
	testPlugin       = PluginID("test-plugin")
)

type greeter interface {
	Greet() string
}

type english struct {
	Name   string `json:"name"`
	Prefix string `json:"prefix"`
	plugin PluginID
}

func (e *english) Greet() string           { return strings.TrimSpace(e.Prefix + " " + e.Name) }
func (e *english) SetPluginID(id PluginID) { e.plugin = id }

type stranger struct{}

type many []string

func (m many) Greet() string { return strings.Join(m, ",") }

type hooked struct {
	name      string
	onAdded   func(*Point) error
	onRemoved func(*Point) error
}

func (h *hooked) Greet() string { return h.name }

func (h *hooked) OnAdded(p *Point) error {
	if h.onAdded == nil {
		return nil
	}
	return h.onAdded(p)
}

func (h *hooked) OnRemoved(p *Point) error {
	if h.onRemoved == nil {
		return nil
	}
	return h.onRemoved(p)
}

type watcher struct {
	record func(string)
}

func (w *watcher) ExtensionPointRegistered(p *Point) { w.record("+" + p.Name()) }
func (w *watcher) ExtensionPointRemoved(p *Point)    { w.record("-" + p.Name()) }

// recorder captures listener callbacks as "+name" and "-name"
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) listener() *ListenerFuncs {
	return &ListenerFuncs{
		Added:   func(extension any, _ PluginID) { r.add("+" + nameOf(extension)) },
		Removed: func(extension any, _ PluginID) { r.add("-" + nameOf(extension)) },
	}
}

func (r *recorder) add(event string) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func nameOf(extension any) string {
	switch v := extension.(type) {
	case *english:
		return v.Name
	case *hooked:
		return v.name
	case greeter:
		return v.Greet()
	default:
		return reflect.TypeOf(extension).String()
	}
}

func names(extensions []any) []string {
	out := make([]string, 0, len(extensions))
	for _, extension := range extensions {
		out = append(out, nameOf(extension))
	}
	return out
}

func newTestArea(t *testing.T, buffer *bytes.Buffer, opts ...Option) *Area {
	t.Helper()
	var logger log.Logger = log.DiscardLogger
	if buffer != nil {
		logger = log.New(log.DebugLevel, buffer)
	}

	defaults := []Option{
		WithClass("test"),
		WithLogger(logger),
		WithMeterProvider(noop.NewMeterProvider()),
	}
	return NewArea(append(defaults, opts...)...)
}

func greeterPoint(t *testing.T, area *Area) *Point {
	t.Helper()
	point, err := area.RegisterExtensionPoint(greeterPointName, reflect.TypeFor[greeter](), testPlugin)
	require.NoError(t, err)
	return point
}

func beanPoint(t *testing.T, area *Area) *Point {
	t.Helper()
	point, err := area.RegisterExtensionPoint(beanPointName, reflect.TypeFor[*english](), testPlugin)
	require.NoError(t, err)
	return point
}

func payload(t *testing.T, fields map[string]any) *structpb.Struct {
	t.Helper()
	value, err := structpb.NewStruct(fields)
	require.NoError(t, err)
	return value
}

type logEntry struct {
	Level string `json:"level"`
	Msg   string `json:"msg"`
}

// logged reports whether buffer holds an entry at level whose message contains text
func logged(t *testing.T, buffer *bytes.Buffer, level, text string) bool {
	t.Helper()
	scanner := bufio.NewScanner(bytes.NewReader(buffer.Bytes()))
	for scanner.Scan() {
		var entry logEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		if entry.Level == level && strings.Contains(entry.Msg, text) {
			return true
		}
	}
	return false
}

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

package log

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZap(t *testing.T) {
	t.Run("With level filtering", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := New(WarningLevel, buffer)

		logger.Debugf("debug %d", 1)
		logger.Infof("info %d", 2)
		logger.Warnf("contribution %s dropped", "x")
		logger.Errorf("listener %s failed", "y")

		entries := decode(t, buffer)
		require.Len(t, entries, 2)
		assert.Equal(t, "warn", entries[0]["level"])
		assert.Equal(t, "contribution x dropped", entries[0]["msg"])
		assert.Equal(t, "error", entries[1]["level"])
		assert.Equal(t, "listener y failed", entries[1]["msg"])
	})
	t.Run("With debug level", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		New(DebugLevel, buffer).Debugf("point %s registered", "demo.ep")

		entries := decode(t, buffer)
		require.Len(t, entries, 1)
		assert.Equal(t, "debug", entries[0]["level"])
		assert.Contains(t, entries[0], "caller")
	})
	t.Run("With an unknown level", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := New(Level(42), buffer)
		logger.Debugf("hidden")
		logger.Infof("shown")

		entries := decode(t, buffer)
		require.Len(t, entries, 1)
		assert.Equal(t, "shown", entries[0]["msg"])
	})
	t.Run("With several writers", func(t *testing.T) {
		first, second := new(bytes.Buffer), new(bytes.Buffer)
		New(InfoLevel, first, second).Infof("both")
		assert.Len(t, decode(t, first), 1)
		assert.Len(t, decode(t, second), 1)
	})
}

func TestZapWith(t *testing.T) {
	t.Run("With structured fields", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := New(InfoLevel, buffer)
		logger.With("extensionPoint", "demo.ep", "count", 2, "cause", errors.New("boom"), "level", InfoLevel).Infof("materialized")

		entries := decode(t, buffer)
		require.Len(t, entries, 1)
		assert.Equal(t, "demo.ep", entries[0]["extensionPoint"])
		assert.EqualValues(t, 2, entries[0]["count"])
		assert.Equal(t, "boom", entries[0]["cause"])
	})
	t.Run("With fields kept by derived loggers only", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := New(InfoLevel, buffer)
		logger.With("scope", "child").Infof("child")
		logger.Infof("parent")

		entries := decode(t, buffer)
		require.Len(t, entries, 2)
		assert.Equal(t, "child", entries[0]["scope"])
		assert.NotContains(t, entries[1], "scope")
	})
	t.Run("With nothing to attach", func(t *testing.T) {
		logger := New(InfoLevel, new(bytes.Buffer))
		assert.Same(t, logger, logger.With())
		assert.Same(t, logger, logger.With(42, "ignored"))
		assert.Same(t, logger, logger.With("orphan"))
	})
}

func decode(t *testing.T, buffer *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	scanner := bufio.NewScanner(bytes.NewReader(buffer.Bytes()))
	for scanner.Scan() {
		entry := make(map[string]any)
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		entries = append(entries, entry)
	}
	return entries
}

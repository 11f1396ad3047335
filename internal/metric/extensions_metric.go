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

package metric

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	areaClassKey      = "area.class"
	extensionPointKey = "extension.point"
)

// ExtensionsMetric holds the instruments of an extensions area
type ExtensionsMetric struct {
	class string
	// number of contributions materialized
	materialized metric.Int64Counter
	// number of contributions dropped because their type could not be resolved
	loadFailures metric.Int64Counter
	// number of listener or hook callbacks that failed
	listenerFailures metric.Int64Counter
	// number of extension points currently registered
	points metric.Int64UpDownCounter
}

// NewExtensionsMetric creates the instruments of an area of the given class
func NewExtensionsMetric(meter metric.Meter, class string) (*ExtensionsMetric, error) {
	m := &ExtensionsMetric{class: class}
	var err error
	if m.materialized, err = meter.Int64Counter(
		"extensions.materialized.count",
		metric.WithDescription("Total number of contributions materialized"),
	); err != nil {
		return nil, fmt.Errorf("failed to create materialized instrument, %w", err)
	}

	if m.loadFailures, err = meter.Int64Counter(
		"extensions.load_failures.count",
		metric.WithDescription("Total number of contributions dropped on load failure"),
	); err != nil {
		return nil, fmt.Errorf("failed to create loadFailures instrument, %w", err)
	}

	if m.listenerFailures, err = meter.Int64Counter(
		"extensions.listener_failures.count",
		metric.WithDescription("Total number of failed listener or hook callbacks"),
	); err != nil {
		return nil, fmt.Errorf("failed to create listenerFailures instrument, %w", err)
	}

	if m.points, err = meter.Int64UpDownCounter(
		"extensionpoints.registered",
		metric.WithDescription("Number of registered extension points"),
	); err != nil {
		return nil, fmt.Errorf("failed to create points instrument, %w", err)
	}
	return m, nil
}

// Materialized records a materialized contribution of point
func (m *ExtensionsMetric) Materialized(ctx context.Context, point string) {
	m.materialized.Add(ctx, 1, m.attributes(point))
}

// LoadFailed records a contribution of point dropped on load failure
func (m *ExtensionsMetric) LoadFailed(ctx context.Context, point string) {
	m.loadFailures.Add(ctx, 1, m.attributes(point))
}

// ListenerFailed records a failed callback on point
func (m *ExtensionsMetric) ListenerFailed(ctx context.Context, point string) {
	m.listenerFailures.Add(ctx, 1, m.attributes(point))
}

// PointRegistered records a new extension point
func (m *ExtensionsMetric) PointRegistered(ctx context.Context) {
	m.points.Add(ctx, 1, metric.WithAttributes(attribute.String(areaClassKey, m.class)))
}

// PointUnregistered records a removed extension point
func (m *ExtensionsMetric) PointUnregistered(ctx context.Context) {
	m.points.Add(ctx, -1, metric.WithAttributes(attribute.String(areaClassKey, m.class)))
}

func (m *ExtensionsMetric) attributes(point string) metric.AddOption {
	return metric.WithAttributes(
		attribute.String(areaClassKey, m.class),
		attribute.String(extensionPointKey, point),
	)
}

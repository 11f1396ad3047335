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
	"fmt"
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Descriptor declares a contribution without building it. The instance is
// created the first time the extension point is read.
type Descriptor struct {
	// Point is the qualified name of the target extension point.
	// When empty the target is Namespace and Tag joined by a dot.
	Point     string
	Namespace string
	Tag       string
	// Implementation is the registered type name to instantiate, for instance
	// "mypkg.myextension". When empty the point's own type is used.
	Implementation string
	// Payload holds the fields applied to the instance after construction
	Payload *structpb.Struct
	// Order is an order specification such as "first, before other"
	Order string
	// OrderID is the id other contributions anchor to
	OrderID string
	// Key overrides the container key of the contribution. A random key is
	// used when empty.
	Key string
}

// PointName returns the qualified name of the target extension point
func (d *Descriptor) PointName() string {
	if d.Point != "" {
		return d.Point
	}
	if d.Namespace == "" {
		return d.Tag
	}
	return d.Namespace + "." + d.Tag
}

// Fingerprint returns a stable hash of the descriptor content as declared by pluginID
func (d *Descriptor) Fingerprint(pluginID PluginID) uint64 {
	var payload []byte
	if d.Payload != nil {
		payload, _ = proto.MarshalOptions{Deterministic: true}.Marshal(d.Payload)
	}

	fields := []string{
		pluginID.String(),
		d.PointName(),
		d.Implementation,
		d.Order,
		d.OrderID,
		d.Key,
		string(payload),
	}
	return xxh3.HashString(strings.Join(fields, "\x00"))
}

// Dump renders the descriptor for diagnostics
func (d *Descriptor) Dump(pluginID PluginID) string {
	payload := "{}"
	if d.Payload != nil {
		if bytea, err := protojson.Marshal(d.Payload); err == nil {
			payload = string(bytea)
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "plugin=%s point=%s", pluginID, d.PointName())
	fmt.Fprintf(&sb, " implementation=%s order=%q orderId=%q", d.Implementation, d.Order, d.OrderID)
	fmt.Fprintf(&sb, " payload=%s fingerprint=%s", payload, strconv.FormatUint(d.Fingerprint(pluginID), 16))
	return sb.String()
}

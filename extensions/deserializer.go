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
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Deserializer applies a descriptor payload to a freshly built instance
type Deserializer interface {
	Deserialize(payload *structpb.Struct, target any) error
}

// DeserializerFunc adapts a function to a Deserializer
type DeserializerFunc func(payload *structpb.Struct, target any) error

// Deserialize calls f
func (f DeserializerFunc) Deserialize(payload *structpb.Struct, target any) error {
	return f(payload, target)
}

// JSONDeserializer is the default Deserializer. Protocol buffer targets are
// decoded with protojson and every other target with encoding/json, so plain
// structs map payload keys through their json tags.
var JSONDeserializer Deserializer = DeserializerFunc(deserializeJSON)

func deserializeJSON(payload *structpb.Struct, target any) error {
	if payload == nil || len(payload.GetFields()) == 0 {
		return nil
	}

	bytea, err := protojson.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	if message, ok := target.(proto.Message); ok {
		if err := (protojson.UnmarshalOptions{DiscardUnknown: true}).Unmarshal(bytea, message); err != nil {
			return fmt.Errorf("failed to decode payload into %T: %w", target, err)
		}
		return nil
	}

	if err := json.Unmarshal(bytea, target); err != nil {
		return fmt.Errorf("failed to decode payload into %T: %w", target, err)
	}
	return nil
}

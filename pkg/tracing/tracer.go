// Copyright 2025 The Sigstore Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package tracing wraps span creation behind a small interface. The default
// build uses a no-op tracer; building with -tags=otel exports spans over
// OTLP/HTTP when the OTEL_* environment variables ask for it.
package tracing

import "context"

// Span is a single timed operation.
type Span interface {
	SetAttribute(key string, value interface{})
	End()
}

// Tracer starts spans.
type Tracer interface {
	Start(ctx context.Context, name string) (context.Context, Span)
}

var globalTracer Tracer = NoopTracer{}

// SetTracer replaces the process tracer. Passing nil restores the no-op
// tracer. Call it once during startup.
func SetTracer(t Tracer) {
	if t == nil {
		globalTracer = NoopTracer{}
		return
	}
	globalTracer = t
}

// GetTracer returns the process tracer, never nil.
func GetTracer() Tracer {
	return globalTracer
}

// Start starts a span on the process tracer.
func Start(ctx context.Context, name string) (context.Context, Span) {
	return globalTracer.Start(ctx, name)
}

// Enabled reports whether a tracer other than the no-op one is installed.
func Enabled() bool {
	_, noop := globalTracer.(NoopTracer)
	return !noop
}

// Run calls fn inside a span named name carrying attrs. Errors returned by
// fn are recorded on the span under "error". Without a tracer fn is called
// directly.
func Run(ctx context.Context, name string, attrs map[string]interface{}, fn func(context.Context) error) error {
	if !Enabled() {
		return fn(ctx)
	}
	ctx, span := globalTracer.Start(ctx, name)
	defer span.End()
	for k, v := range attrs {
		span.SetAttribute(k, v)
	}
	err := fn(ctx)
	if err != nil {
		span.SetAttribute("error", err.Error())
	}
	return err
}

// Package hostapi exposes host functionality to WASM guests through a single
// JSON request/response entry point, with host-side iterators that guests
// advance one chunk at a time.
package hostapi

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-openapi/spec"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// API is implemented by every host API
type API interface {
	// Name returns the namespace for this API (e.g., "okra.strings")
	Name() string

	// Version returns the semantic version of this API
	Version() string

	// Execute handles a method call with JSON parameters
	Execute(ctx context.Context, method string, parameters json.RawMessage) (json.RawMessage, error)
}

// StreamingAPI extends API with methods that hand back an iterator
type StreamingAPI interface {
	API

	// ExecuteStreaming returns the response JSON and, for streaming methods, an iterator
	ExecuteStreaming(ctx context.Context, method string, parameters json.RawMessage) (json.RawMessage, Iterator, error)
}

// Factory creates per-guest instances of a host API
type Factory interface {
	Name() string
	Version() string

	// Create creates a new instance of the API for one guest
	Create(ctx context.Context, config Config) (API, error)

	// Methods describes the API's methods for stub generation and docs
	Methods() []MethodMetadata
}

// MethodMetadata describes a host API method
type MethodMetadata struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  *spec.Schema    `json:"parameters"`
	Returns     *spec.Schema    `json:"returns"`
	Errors      []ErrorMetadata `json:"errors"`
	Streaming   bool            `json:"streaming"`
}

// ErrorMetadata describes an error a method can return
type ErrorMetadata struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Config is handed to every API instance of a Set
type Config struct {
	ServiceName    string
	ServiceVersion string

	Tracer trace.Tracer
	Meter  metric.Meter
	Logger *zerolog.Logger

	// Resource limits, zero means the package default
	MaxIterators    int
	IteratorTimeout time.Duration
	MaxRequestSize  int
	MaxResponseSize int
	MaxSourceUnits  int
}

// withDefaults fills unset telemetry and limits
func (c Config) withDefaults() Config {
	if c.Tracer == nil {
		c.Tracer = tracenoop.NewTracerProvider().Tracer("striter/hostapi")
	}
	if c.Meter == nil {
		c.Meter = metricnoop.NewMeterProvider().Meter("striter/hostapi")
	}
	if c.Logger == nil {
		nop := zerolog.Nop()
		c.Logger = &nop
	}
	if c.MaxIterators == 0 {
		c.MaxIterators = DefaultMaxIterators
	}
	if c.IteratorTimeout == 0 {
		c.IteratorTimeout = DefaultIteratorTimeout
	}
	if c.MaxRequestSize == 0 {
		c.MaxRequestSize = DefaultMaxRequestSize
	}
	if c.MaxResponseSize == 0 {
		c.MaxResponseSize = DefaultMaxResponseSize
	}
	if c.MaxSourceUnits == 0 {
		c.MaxSourceUnits = DefaultMaxSourceUnits
	}
	return c
}

// Request is the envelope a guest sends to run_host_api
type Request struct {
	API        string          `json:"api"`
	Method     string          `json:"method"`
	Parameters json.RawMessage `json:"parameters"`
	Metadata   RequestMetadata `json:"metadata"`
}

// Response is the envelope returned from run_host_api
type Response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// RequestMetadata carries caller context
type RequestMetadata struct {
	TraceID     string      `json:"traceId,omitempty"`
	ServiceInfo ServiceInfo `json:"serviceInfo"`
}

// ServiceInfo identifies the calling guest
type ServiceInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// NextRequest asks for the next chunk of an iterator
type NextRequest struct {
	IteratorID string `json:"iteratorId"`
}

// NextResponse carries one iterator chunk
type NextResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	HasMore bool            `json:"hasMore,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// StreamingResponse is returned by streaming methods. IteratorID is empty
// when HasData is false.
type StreamingResponse struct {
	IteratorID string `json:"iteratorId,omitempty"`
	HasData    bool   `json:"hasData"`
}

// WithServiceInfo attaches the calling guest's identity to ctx
func WithServiceInfo(ctx context.Context, info ServiceInfo) context.Context {
	return context.WithValue(ctx, serviceInfoKey{}, info)
}

func serviceInfoFrom(ctx context.Context) (ServiceInfo, bool) {
	info, ok := ctx.Value(serviceInfoKey{}).(ServiceInfo)
	return info, ok
}

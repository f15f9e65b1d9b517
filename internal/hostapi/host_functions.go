package hostapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// HostModuleName is the import module guests link host functions from
const HostModuleName = "okra"

// WithSet attaches a Set to ctx for RunHostAPI and NextIterator
func WithSet(ctx context.Context, set Set) context.Context {
	return context.WithValue(ctx, setKey{}, set)
}

// RunHostAPI handles one JSON request from a guest. API failures are
// reported inside the JSON response; only a missing Set or a malformed
// request returns an error.
func RunHostAPI(ctx context.Context, requestJSON string) (string, error) {
	set, ok := ctx.Value(setKey{}).(Set)
	if !ok {
		return "", fmt.Errorf("host API set not found in context")
	}

	var req Request
	if err := json.Unmarshal([]byte(requestJSON), &req); err != nil {
		return "", fmt.Errorf("invalid request format: %w", err)
	}

	if req.Metadata.ServiceInfo.Name != "" {
		ctx = WithServiceInfo(ctx, req.Metadata.ServiceInfo)
	}

	result, err := set.Execute(ctx, req.API, req.Method, req.Parameters)
	if err != nil {
		return marshalResponse(Response{Success: false, Error: toError(err)}), nil
	}
	return marshalResponse(Response{Success: true, Data: result}), nil
}

// NextIterator handles a guest's request for the next iterator chunk
func NextIterator(ctx context.Context, requestJSON string) (string, error) {
	set, ok := ctx.Value(setKey{}).(Set)
	if !ok {
		return "", fmt.Errorf("host API set not found in context")
	}

	var req NextRequest
	if err := json.Unmarshal([]byte(requestJSON), &req); err != nil {
		return "", fmt.Errorf("invalid next request format: %w", err)
	}

	data, hasMore, err := set.NextIterator(ctx, req.IteratorID)
	if err != nil {
		return marshalResponse(NextResponse{Success: false, Error: toError(err)}), nil
	}
	return marshalResponse(NextResponse{Success: true, Data: data, HasMore: hasMore}), nil
}

// toError converts any error into the wire error shape
func toError(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &Error{
		Code:    ErrorCodeInternalError,
		Message: err.Error(),
	}
}

func marshalResponse(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		// Only reachable with a broken RawMessage from an API
		data, _ = json.Marshal(Response{Error: &Error{Code: ErrorCodeInternalError, Message: err.Error()}})
	}
	return string(data)
}

// RegisterHostAPI instantiates the "okra" host module exporting
// run_host_api and next, both (ptr, len) -> (ptr, len) over guest memory.
// The guest must export allocate(size) and deallocate(ptr).
func RegisterHostAPI(ctx context.Context, runtime wazero.Runtime, set Set) error {
	config := set.Config()
	maxRequestSize := config.MaxRequestSize
	if maxRequestSize == 0 {
		maxRequestSize = DefaultMaxRequestSize
	}
	maxResponseSize := config.MaxResponseSize
	if maxResponseSize == 0 {
		maxResponseSize = DefaultMaxResponseSize
	}

	fail := func(stack []uint64) {
		stack[0] = uint64(NullPointer)
		stack[1] = uint64(ZeroLength)
	}

	handleHostCall := func(ctx context.Context, module api.Module, stack []uint64, handler func(context.Context, string) (string, error)) {
		requestPtr := uint32(stack[0])
		requestLen := uint32(stack[1])

		if requestLen > uint32(maxRequestSize) {
			fail(stack)
			return
		}

		requestBytes, ok := module.Memory().Read(requestPtr, requestLen)
		if !ok {
			fail(stack)
			return
		}

		response, err := handler(WithSet(ctx, set), string(requestBytes))
		if err != nil {
			fail(stack)
			return
		}

		respBytes := []byte(response)
		if len(respBytes) > maxResponseSize {
			respBytes = []byte(marshalResponse(Response{
				Success: false,
				Error: &Error{
					Code:    ErrorCodeResponseTooLarge,
					Message: fmt.Sprintf("response size %d exceeds limit %d", len(respBytes), maxResponseSize),
				},
			}))
		}

		allocate := module.ExportedFunction("allocate")
		if allocate == nil {
			fail(stack)
			return
		}

		results, err := allocate.Call(ctx, uint64(len(respBytes)))
		if err != nil || len(results) == 0 {
			fail(stack)
			return
		}
		respPtr := uint32(results[0])

		if !module.Memory().Write(respPtr, respBytes) {
			if deallocate := module.ExportedFunction("deallocate"); deallocate != nil && respPtr != 0 {
				_, _ = deallocate.Call(ctx, uint64(respPtr))
			}
			fail(stack)
			return
		}

		stack[0] = uint64(respPtr)
		stack[1] = uint64(len(respBytes))
	}

	ptrLen := []api.ValueType{api.ValueTypeI32, api.ValueTypeI32}
	builder := runtime.NewHostModuleBuilder(HostModuleName)

	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, module api.Module, stack []uint64) {
			handleHostCall(ctx, module, stack, RunHostAPI)
		}), ptrLen, ptrLen).
		Export("run_host_api")

	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, module api.Module, stack []uint64) {
			handleHostCall(ctx, module, stack, NextIterator)
		}), ptrLen, ptrLen).
		Export("next")

	_, err := builder.Instantiate(ctx)
	return err
}

package hostapi

import (
	"context"
	"encoding/json"
	"fmt"
)

type mockAPI struct {
	name    string
	version string
	methods map[string]func(ctx context.Context, params json.RawMessage) (json.RawMessage, error)
	closed  bool
}

func (m *mockAPI) Name() string    { return m.name }
func (m *mockAPI) Version() string { return m.version }

func (m *mockAPI) Execute(ctx context.Context, method string, parameters json.RawMessage) (json.RawMessage, error) {
	handler, ok := m.methods[method]
	if !ok {
		return nil, &Error{
			Code:    ErrorCodeMethodNotFound,
			Message: fmt.Sprintf("method %s not found", method),
		}
	}
	return handler(ctx, parameters)
}

func (m *mockAPI) Close() error {
	m.closed = true
	return nil
}

type mockIterator struct {
	data      []json.RawMessage
	index     int
	closeFunc func() error
}

func (i *mockIterator) Next(ctx context.Context) (json.RawMessage, bool, error) {
	if i.index >= len(i.data) {
		return nil, false, nil
	}
	data := i.data[i.index]
	i.index++
	return data, i.index < len(i.data), nil
}

func (i *mockIterator) Close() error {
	if i.closeFunc != nil {
		return i.closeFunc()
	}
	return nil
}

type mockFactory struct {
	name      string
	version   string
	createErr error
	created   []*mockAPI
}

func (f *mockFactory) Name() string              { return f.name }
func (f *mockFactory) Version() string           { return f.version }
func (f *mockFactory) Methods() []MethodMetadata { return nil }

func (f *mockFactory) Create(ctx context.Context, config Config) (API, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	api := &mockAPI{name: f.name, version: f.version}
	f.created = append(f.created, api)
	return api, nil
}

type mockSet struct {
	executeFunc      func(ctx context.Context, apiName, method string, parameters json.RawMessage) (json.RawMessage, error)
	nextIteratorFunc func(ctx context.Context, iteratorID string) (json.RawMessage, bool, error)
}

func (m *mockSet) Get(name string) (API, bool) { return nil, false }

func (m *mockSet) Execute(ctx context.Context, apiName, method string, parameters json.RawMessage) (json.RawMessage, error) {
	return m.executeFunc(ctx, apiName, method, parameters)
}

func (m *mockSet) NextIterator(ctx context.Context, iteratorID string) (json.RawMessage, bool, error) {
	return m.nextIteratorFunc(ctx, iteratorID)
}

func (m *mockSet) CloseIterator(ctx context.Context, iteratorID string) error { return nil }
func (m *mockSet) CleanupStaleIterators() int                                { return 0 }
func (m *mockSet) Config() Config                                            { return Config{} }
func (m *mockSet) Close() error                                              { return nil }

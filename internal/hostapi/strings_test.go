package hostapi

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okra-platform/striter/internal/realm"
	"github.com/okra-platform/striter/internal/text"
)

// Test Plan:
// 1. iterate streams code points through the set, keeping pairs together
// 2. iterate of the empty string reports no data and holds no iterator
// 3. codePointAt and length answer from the decoder
// 4. Bad parameters, oversized texts and unknown methods are structured errors
// 5. Method metadata describes every method

func newStringsSet(t *testing.T, cfg Config) Set {
	t.Helper()
	r, err := realm.New(zerolog.Nop())
	require.NoError(t, err)

	registry := NewRegistry()
	require.NoError(t, InitializeHostAPIs(registry, r))

	set, err := registry.CreateSet(context.Background(), []string{StringsAPIName}, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = set.Close() })
	return set
}

func iterate(t *testing.T, set Set, params string) (StreamingResponse, []IterationChunk) {
	t.Helper()
	ctx := context.Background()

	result, err := set.Execute(ctx, StringsAPIName, MethodIterate, json.RawMessage(params))
	require.NoError(t, err)

	var resp StreamingResponse
	require.NoError(t, json.Unmarshal(result, &resp))

	var chunks []IterationChunk
	for i := 0; i < 100; i++ {
		data, hasMore, err := set.NextIterator(ctx, resp.IteratorID)
		require.NoError(t, err)

		var chunk IterationChunk
		require.NoError(t, json.Unmarshal(data, &chunk))
		chunks = append(chunks, chunk)
		if !hasMore {
			assert.True(t, chunk.Done)
			return resp, chunks
		}
	}
	t.Fatal("iterator never finished")
	return resp, nil
}

func TestStringsAPI_Iterate(t *testing.T) {
	set := newStringsSet(t, Config{})

	resp, chunks := iterate(t, set, `{"text":"aπ😀b"}`)
	assert.True(t, resp.HasData)

	var got []string
	for _, c := range chunks {
		if !c.Done {
			require.NotNil(t, c.Value)
			got = append(got, c.Value.String())
		}
	}
	assert.Equal(t, []string{"a", "π", "😀", "b"}, got)

	last := chunks[len(chunks)-1]
	assert.True(t, last.Done)
	assert.Nil(t, last.Value)

	// The set forgot the iterator after done
	_, _, err := set.NextIterator(context.Background(), resp.IteratorID)
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, ErrorCodeIteratorNotFound, apiErr.Code)
}

func TestStringsAPI_IterateLoneSurrogates(t *testing.T) {
	set := newStringsSet(t, Config{})

	_, chunks := iterate(t, set, `{"text":[56320, 97, 55357]}`)
	require.Len(t, chunks, 4)
	assert.Equal(t, []uint16{0xDC00}, chunks[0].Value.Units())
	assert.Equal(t, []uint16{'a'}, chunks[1].Value.Units())
	assert.Equal(t, []uint16{0xD83D}, chunks[2].Value.Units())
	assert.True(t, chunks[3].Done)
}

func TestStringsAPI_IterateEmpty(t *testing.T) {
	set := newStringsSet(t, Config{MaxIterators: 1})
	ctx := context.Background()

	result, err := set.Execute(ctx, StringsAPIName, MethodIterate, json.RawMessage(`{"text":""}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"hasData":false}`, string(result))
	assert.Empty(t, set.(*defaultSet).iterators)

	// The single slot is still free
	resp, chunks := iterate(t, set, `{"text":"a"}`)
	assert.True(t, resp.HasData)
	require.Len(t, chunks, 2)
	assert.True(t, chunks[1].Done)
}

func TestStringsAPI_CodePointAt(t *testing.T) {
	set := newStringsSet(t, Config{})

	tests := []struct {
		name   string
		params string
		want   CodePointResult
	}{
		{"pair", `{"text":"a😀","index":1}`, CodePointResult{CodePoint: 0x1F600, UnitCount: 2, Paired: true}},
		{"trail half", `{"text":"a😀","index":2}`, CodePointResult{CodePoint: 0xDE00, UnitCount: 1}},
		{"ascii", `{"text":"a😀","index":0}`, CodePointResult{CodePoint: 'a', UnitCount: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := set.Execute(context.Background(), StringsAPIName, MethodCodePointAt, json.RawMessage(tt.params))
			require.NoError(t, err)

			var got CodePointResult
			require.NoError(t, json.Unmarshal(result, &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStringsAPI_Length(t *testing.T) {
	set := newStringsSet(t, Config{})

	result, err := set.Execute(context.Background(), StringsAPIName, MethodLength, json.RawMessage(`{"text":"aπ😀b"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"length":5}`, string(result))
}

func TestStringsAPI_Errors(t *testing.T) {
	set := newStringsSet(t, Config{MaxSourceUnits: 4})

	tests := []struct {
		name   string
		method string
		params string
		code   string
	}{
		{"index past end", MethodCodePointAt, `{"text":"ab","index":2}`, ErrorCodeIndexOutOfRange},
		{"negative index", MethodCodePointAt, `{"text":"ab","index":-1}`, ErrorCodeIndexOutOfRange},
		{"empty text", MethodCodePointAt, `{"text":"","index":0}`, ErrorCodeIndexOutOfRange},
		{"bad json", MethodLength, `{"text":42}`, ErrorCodeInvalidParameters},
		{"missing parameters", MethodLength, ``, ErrorCodeInvalidParameters},
		{"too large", MethodIterate, `{"text":"abcde"}`, ErrorCodeSourceTooLarge},
		{"unknown method", "reverse", `{"text":"ab"}`, ErrorCodeMethodNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := set.Execute(context.Background(), StringsAPIName, tt.method, json.RawMessage(tt.params))
			require.Error(t, err)

			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.code, apiErr.Code)
		})
	}
}

func TestStringsAPI_IterateRequiresStreaming(t *testing.T) {
	r, err := realm.New(zerolog.Nop())
	require.NoError(t, err)

	api, err := NewStringsAPIFactory(r).Create(context.Background(), Config{})
	require.NoError(t, err)

	_, err = api.Execute(context.Background(), MethodIterate, json.RawMessage(`{"text":"a"}`))
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, ErrorCodeInvalidParameters, apiErr.Code)
}

func TestStringsAPIFactory_Methods(t *testing.T) {
	r, err := realm.New(zerolog.Nop())
	require.NoError(t, err)

	factory := NewStringsAPIFactory(r)
	assert.Equal(t, StringsAPIName, factory.Name())
	assert.Equal(t, StringsAPIVersion, factory.Version())

	methods := map[string]MethodMetadata{}
	for _, m := range factory.Methods() {
		methods[m.Name] = m
	}
	require.Len(t, methods, 3)

	assert.True(t, methods[MethodIterate].Streaming)
	assert.False(t, methods[MethodCodePointAt].Streaming)
	assert.Contains(t, methods[MethodCodePointAt].Parameters.Required, "index")
	assert.Contains(t, methods[MethodLength].Returns.Properties, "length")

	// Metadata is serializable for stub generation
	_, err = json.Marshal(factory.Methods())
	require.NoError(t, err)
}

func TestIterationChunk_JSON(t *testing.T) {
	s := text.FromUnits([]uint16{0xD83D})
	data, err := json.Marshal(IterationChunk{Value: &s})
	require.NoError(t, err)
	assert.Equal(t, `{"value":"\ud83d","done":false}`, string(data))

	data, err = json.Marshal(IterationChunk{Done: true})
	require.NoError(t, err)
	assert.Equal(t, `{"done":true}`, string(data))
}

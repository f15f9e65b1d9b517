package hostapi

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-openapi/spec"
	"github.com/rs/zerolog"

	"github.com/okra-platform/striter/internal/object"
	"github.com/okra-platform/striter/internal/realm"
	"github.com/okra-platform/striter/internal/text"
)

// Strings API identity
const (
	StringsAPIName    = "okra.strings"
	StringsAPIVersion = "v1.0.0"
)

// Strings API methods
const (
	MethodIterate     = "iterate"
	MethodCodePointAt = "codePointAt"
	MethodLength      = "length"
)

// TextParams is the parameter shape shared by all strings methods
type TextParams struct {
	Text  text.Text `json:"text"`
	Index int       `json:"index,omitempty"`
}

// CodePointResult is returned by codePointAt
type CodePointResult struct {
	CodePoint rune `json:"codePoint"`
	UnitCount int  `json:"unitCount"`
	Paired    bool `json:"paired"`
}

// LengthResult is returned by length
type LengthResult struct {
	Length int `json:"length"`
}

// IterationChunk is one step of a string iterator as seen by the guest.
// Value is omitted once Done is true.
type IterationChunk struct {
	Value *text.Text `json:"value,omitempty"`
	Done  bool       `json:"done"`
}

type stringsAPIFactory struct {
	realm *realm.Realm
}

// NewStringsAPIFactory returns the factory for okra.strings. Iterators are
// created from r's %StringIteratorPrototype%.
func NewStringsAPIFactory(r *realm.Realm) Factory {
	return &stringsAPIFactory{realm: r}
}

func (f *stringsAPIFactory) Name() string    { return StringsAPIName }
func (f *stringsAPIFactory) Version() string { return StringsAPIVersion }

func (f *stringsAPIFactory) Create(ctx context.Context, config Config) (API, error) {
	config = config.withDefaults()
	logger := config.Logger.With().Str("api", StringsAPIName).Str("service", config.ServiceName).Logger()
	return &stringsAPI{
		realm:          f.realm,
		maxSourceUnits: config.MaxSourceUnits,
		logger:         logger,
	}, nil
}

func (f *stringsAPIFactory) Methods() []MethodMetadata {
	textParam := spec.StringProperty().WithDescription("text to operate on; a JSON string or an array of UTF-16 code units")
	tooLarge := ErrorMetadata{Code: ErrorCodeSourceTooLarge, Description: "text exceeds the configured maximum length"}
	invalid := ErrorMetadata{Code: ErrorCodeInvalidParameters, Description: "parameters could not be parsed"}

	return []MethodMetadata{
		{
			Name:        MethodIterate,
			Description: "Iterates the text one code point at a time, keeping surrogate pairs together",
			Parameters:  objectSchema(map[string]*spec.Schema{"text": textParam}, "text"),
			Returns: objectSchema(map[string]*spec.Schema{
				"iteratorId": spec.StringProperty(),
				"hasData":    spec.BoolProperty(),
			}),
			Errors:    []ErrorMetadata{invalid, tooLarge},
			Streaming: true,
		},
		{
			Name:        MethodCodePointAt,
			Description: "Decodes the code point starting at a UTF-16 index",
			Parameters: objectSchema(map[string]*spec.Schema{
				"text":  textParam,
				"index": spec.Int64Property(),
			}, "text", "index"),
			Returns: objectSchema(map[string]*spec.Schema{
				"codePoint": spec.Int32Property(),
				"unitCount": spec.Int32Property(),
				"paired":    spec.BoolProperty(),
			}),
			Errors: []ErrorMetadata{
				invalid,
				tooLarge,
				{Code: ErrorCodeIndexOutOfRange, Description: "index does not address a code unit"},
			},
		},
		{
			Name:        MethodLength,
			Description: "Returns the length of the text in UTF-16 code units",
			Parameters:  objectSchema(map[string]*spec.Schema{"text": textParam}, "text"),
			Returns:     objectSchema(map[string]*spec.Schema{"length": spec.Int64Property()}),
			Errors:      []ErrorMetadata{invalid, tooLarge},
		},
	}
}

func objectSchema(props map[string]*spec.Schema, required ...string) *spec.Schema {
	schema := new(spec.Schema).Typed("object", "")
	for name, prop := range props {
		schema.SetProperty(name, *prop)
	}
	if len(required) > 0 {
		schema.WithRequired(required...)
	}
	return schema
}

type stringsAPI struct {
	realm          *realm.Realm
	maxSourceUnits int
	logger         zerolog.Logger
}

var _ StreamingAPI = (*stringsAPI)(nil)

func (a *stringsAPI) Name() string    { return StringsAPIName }
func (a *stringsAPI) Version() string { return StringsAPIVersion }

func (a *stringsAPI) Execute(ctx context.Context, method string, parameters json.RawMessage) (json.RawMessage, error) {
	switch method {
	case MethodCodePointAt:
		params, err := a.parse(parameters)
		if err != nil {
			return nil, err
		}
		if params.Index < 0 || params.Index >= params.Text.Len() {
			return nil, &Error{
				Code:    ErrorCodeIndexOutOfRange,
				Message: fmt.Sprintf("index %d out of range for length %d", params.Index, params.Text.Len()),
			}
		}
		cp, err := text.CodePointAt(params.Text.Units(), params.Index)
		if err != nil {
			return nil, err
		}
		return json.Marshal(CodePointResult{CodePoint: cp.Value, UnitCount: cp.UnitCount, Paired: cp.Paired})

	case MethodLength:
		params, err := a.parse(parameters)
		if err != nil {
			return nil, err
		}
		return json.Marshal(LengthResult{Length: params.Text.Len()})

	case MethodIterate:
		return nil, &Error{
			Code:    ErrorCodeInvalidParameters,
			Message: fmt.Sprintf("%s is a streaming method", MethodIterate),
		}

	default:
		return nil, &Error{
			Code:    ErrorCodeMethodNotFound,
			Message: fmt.Sprintf("method %s not found in %s", method, StringsAPIName),
		}
	}
}

func (a *stringsAPI) ExecuteStreaming(ctx context.Context, method string, parameters json.RawMessage) (json.RawMessage, Iterator, error) {
	if method != MethodIterate {
		result, err := a.Execute(ctx, method, parameters)
		return result, nil, err
	}

	params, err := a.parse(parameters)
	if err != nil {
		return nil, nil, err
	}

	// Nothing to iterate: no iterator is created, so none occupies a slot
	if params.Text.Len() == 0 {
		result, err := json.Marshal(StreamingResponse{HasData: false})
		return result, nil, err
	}

	iter := newTextIterator(a.realm, params.Text)
	resp := StreamingResponse{
		IteratorID: generateIteratorID(),
		HasData:    true,
	}
	result, err := json.Marshal(resp)
	if err != nil {
		return nil, nil, err
	}

	a.logger.Debug().
		Str("iterator_id", resp.IteratorID).
		Int("length", params.Text.Len()).
		Msg("string iterator created")

	return result, iter, nil
}

func (a *stringsAPI) parse(parameters json.RawMessage) (TextParams, error) {
	var params TextParams
	if len(parameters) == 0 {
		return params, &Error{Code: ErrorCodeInvalidParameters, Message: "missing parameters"}
	}
	if err := json.Unmarshal(parameters, &params); err != nil {
		return params, &Error{
			Code:    ErrorCodeInvalidParameters,
			Message: "invalid parameters",
			Details: err.Error(),
		}
	}
	if params.Text.Len() > a.maxSourceUnits {
		return params, &Error{
			Code:    ErrorCodeSourceTooLarge,
			Message: fmt.Sprintf("text length %d exceeds limit %d", params.Text.Len(), a.maxSourceUnits),
		}
	}
	return params, nil
}

// textIterator drives a String Iterator object through its next method,
// exactly as a guest-side for-of would
type textIterator struct {
	record *realm.IteratorRecord
}

func newTextIterator(r *realm.Realm, source text.Text) *textIterator {
	obj := r.CreateStringIterator(source)
	return &textIterator{
		record: &realm.IteratorRecord{
			Iterator:   obj,
			NextMethod: obj.Get(object.Key("next")),
		},
	}
}

func (it *textIterator) Next(ctx context.Context) (json.RawMessage, bool, error) {
	value, done, err := it.record.Step(ctx)
	if err != nil {
		if object.IsTypeError(err) {
			return nil, false, &Error{Code: ErrorCodeTypeError, Message: err.Error()}
		}
		return nil, false, err
	}

	if done {
		data, err := json.Marshal(IterationChunk{Done: true})
		return data, false, err
	}

	s, ok := value.(text.Text)
	if !ok {
		return nil, false, &Error{
			Code:    ErrorCodeInternalError,
			Message: fmt.Sprintf("string iterator yielded %s", object.TypeOf(value)),
		}
	}
	data, err := json.Marshal(IterationChunk{Value: &s})
	return data, true, err
}

func (it *textIterator) Close() error {
	it.record.Done = true
	return nil
}

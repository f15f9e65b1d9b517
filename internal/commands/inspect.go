package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/go-openapi/spec"

	"github.com/okra-platform/striter/internal/hostapi"
	"github.com/okra-platform/striter/internal/object"
	"github.com/okra-platform/striter/internal/text"
)

// Inspect creates a string iterator over the input and prints its prototype
// chain, one object per line with its tag and own keys. It then lists the
// host APIs a guest can call, with each method's schemas as JSON.
func (c *Controller) Inspect(ctx context.Context, input string) error {
	r := c.realm()
	it := r.CreateStringIterator(text.FromString(input))

	toString := r.ObjectPrototype().Get(object.Key("toString"))

	out := c.out()
	depth := 0
	for o := it; o != nil; o = o.Prototype() {
		tag, err := object.Call(ctx, toString, o)
		if err != nil {
			return fmt.Errorf("failed to tag object: %w", err)
		}

		keys := make([]string, 0)
		for _, key := range o.OwnKeys() {
			keys = append(keys, key.String())
		}

		fmt.Fprintf(out, "%s%v", strings.Repeat("  ", depth), tag)
		if len(keys) > 0 {
			fmt.Fprintf(out, " {%s}", strings.Join(keys, ", "))
		}
		fmt.Fprintln(out)
		depth++
	}

	registry, err := c.registry()
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "host APIs:")
	for _, factory := range registry.List() {
		fmt.Fprintf(out, "  %s %s\n", factory.Name(), factory.Version())
		for _, method := range factory.Methods() {
			if err := writeMethod(out, method); err != nil {
				return fmt.Errorf("failed to describe %s.%s: %w", factory.Name(), method.Name, err)
			}
		}
	}

	return nil
}

func writeMethod(out io.Writer, method hostapi.MethodMetadata) error {
	name := method.Name
	if method.Streaming {
		name += " (streaming)"
	}
	fmt.Fprintf(out, "    %s: %s\n", name, method.Description)

	for _, s := range []struct {
		label  string
		schema *spec.Schema
	}{
		{"params", method.Parameters},
		{"returns", method.Returns},
	} {
		if s.schema == nil {
			continue
		}
		data, err := json.Marshal(s.schema)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "      %s: %s\n", s.label, data)
	}

	if len(method.Errors) > 0 {
		codes := make([]string, 0, len(method.Errors))
		for _, e := range method.Errors {
			codes = append(codes, e.Code)
		}
		fmt.Fprintf(out, "      errors: %s\n", strings.Join(codes, ", "))
	}
	return nil
}

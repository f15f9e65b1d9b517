package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/okra-platform/striter/internal/hostapi"
	"github.com/okra-platform/striter/internal/object"
	"github.com/okra-platform/striter/internal/text"
)

type IterateOptions struct {
	Input string
	Units bool
	JSON  bool
}

// Iterate walks the input with a string iterator and prints one line per
// step. Plain output quotes each value so lone surrogates stay visible.
func (c *Controller) Iterate(ctx context.Context, opts IterateOptions) error {
	source, err := parseInput(opts.Input, opts.Units)
	if err != nil {
		return err
	}

	logger := zerolog.Ctx(ctx)
	logger.Debug().Int("units", source.Len()).Msg("iterating text")

	out := c.out()
	steps := 0
	err = c.realm().ForOf(ctx, source, func(v object.Value) error {
		value, ok := v.(text.Text)
		if !ok {
			return fmt.Errorf("unexpected iteration value %T", v)
		}
		steps++

		if opts.JSON {
			return writeChunk(out, hostapi.IterationChunk{Value: &value})
		}
		_, err := fmt.Fprintln(out, value.Quote())
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to iterate: %w", err)
	}

	logger.Debug().Int("steps", steps).Msg("iteration done")

	if opts.JSON {
		return writeChunk(out, hostapi.IterationChunk{Done: true})
	}
	return nil
}

func writeChunk(out io.Writer, chunk hostapi.IterationChunk) error {
	data, err := json.Marshal(chunk)
	if err != nil {
		return fmt.Errorf("failed to marshal chunk: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"golang.org/x/text/unicode/runenames"

	"github.com/okra-platform/striter/internal/text"
)

type DecodeOptions struct {
	Input string
	Units bool
}

// Decode prints every code point of the input: its code unit index, value,
// unit count, whether it came from a surrogate pair and its Unicode name.
func (c *Controller) Decode(ctx context.Context, opts DecodeOptions) error {
	source, err := parseInput(opts.Input, opts.Units)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(c.out(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "INDEX\tCODE POINT\tUNITS\tPAIRED\tNAME")

	units := source.Units()
	for i := 0; i < len(units); {
		cp, err := text.CodePointAt(units, i)
		if err != nil {
			return fmt.Errorf("failed to decode: %w", err)
		}

		fmt.Fprintf(w, "%d\tU+%04X\t%d\t%t\t%s\n", i, cp.Value, cp.UnitCount, cp.Paired, runeName(cp.Value))
		i += cp.UnitCount
	}

	return w.Flush()
}

func runeName(r rune) string {
	if r <= 0xFFFF {
		switch {
		case text.IsLeadSurrogate(uint16(r)):
			return "<lone lead surrogate>"
		case text.IsTrailSurrogate(uint16(r)):
			return "<lone trail surrogate>"
		}
	}
	if name := runenames.Name(r); name != "" {
		return name
	}
	return "<unnamed>"
}

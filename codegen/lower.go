// Package codegen lowers a validated feed-forward network and a feature
// binding into the straight-line conditional program text consumed by the
// gradient-based symbolic execution engine.
package codegen

import (
	"fmt"
	"strings"

	"github.com/Koukyosyumei/mlgymbo/nn"
)

// Options controls the textual shape of the emitted program.
type Options struct {
	// Precision is the number of fractional digits every numeric literal is
	// rendered with.
	Precision int
	// Indent prefixes every emitted statement line. Branch arms get one
	// additional space.
	Indent string
	// EOL terminates every line. Empty is treated as "\n".
	EOL string
}

// DefaultOptions returns the layout the downstream engine's parser expects:
// 8 fractional digits, no indent, LF line endings.
func DefaultOptions() Options {
	return Options{Precision: 8, Indent: "", EOL: "\n"}
}

// OutputVar returns the program variable carrying output unit j of the final
// layer. The epilogue builder compares these against each other.
func OutputVar(j int) string {
	return fmt.Sprintf("y_%d", j)
}

func rawVar(layer, unit int) string {
	return fmt.Sprintf("h_%d_%d_b", layer, unit)
}

func activeVar(layer, unit int) string {
	return fmt.Sprintf("h_%d_%d_a", layer, unit)
}

// Lower emits the program text that computes net's outputs as a function of
// the free variables in b. The text opens with one assignment per input
// feature, then per layer a blank line followed by the affine assignment for
// every unit in ascending order. Hidden relu units get a two-armed branch on
// the sign of the raw value, hidden identity units an alias assignment, and
// final-layer units are assigned directly to the y_{j} output variables.
//
// Lower is a pure function: identical inputs produce byte-identical text. On
// any error no partial text is returned.
func Lower(net nn.Network, b *Binding, opts Options) (string, error) {
	if opts.Precision < 0 {
		return "", fmt.Errorf("precision must be >= 0, got %d", opts.Precision)
	}
	if opts.EOL == "" {
		opts.EOL = "\n"
	}
	if err := net.Validate(); err != nil {
		return "", err
	}
	if b == nil {
		return "", fmt.Errorf("nil binding")
	}
	if err := b.Complete(); err != nil {
		return "", err
	}
	if b.Len() != net.InDim() {
		return "", fmt.Errorf("binding covers %d features, network expects %d", b.Len(), net.InDim())
	}
	last := len(net.Layers) - 1
	for l, layer := range net.Layers {
		switch layer.Act {
		case nn.ActIdentity:
		case nn.ActReLU:
			if l == last {
				return "", fmt.Errorf("output layer: %w %q", nn.ErrUnsupportedActivation, layer.Act)
			}
		default:
			return "", fmt.Errorf("layer %d: %w %q", l, nn.ErrUnsupportedActivation, layer.Act)
		}
	}

	var sb strings.Builder
	line := func(s string) {
		sb.WriteString(opts.Indent)
		sb.WriteString(s)
		sb.WriteString(opts.EOL)
	}

	for c := 0; c < b.Len(); c++ {
		rhs, ok := b.Name(c)
		if !ok {
			v, _ := b.Value(c)
			lit, err := FormatFloat(v, opts.Precision)
			if err != nil {
				return "", fmt.Errorf("feature %d: %w", c, err)
			}
			rhs = lit
		}
		line(activeVar(0, c) + " = " + rhs + ";")
	}

	for l, layer := range net.Layers {
		sb.WriteString(opts.EOL)
		for j := 0; j < layer.OutDim(); j++ {
			target := rawVar(l+1, j)
			if l == last {
				target = OutputVar(j)
			}
			sb.WriteString(opts.Indent)
			sb.WriteString(target)
			sb.WriteString(" = ")
			bias, err := FormatFloat(layer.B.At(j), opts.Precision)
			if err != nil {
				return "", fmt.Errorf("layer %d bias %d: %w", l, j, err)
			}
			sb.WriteString(bias)
			for c := 0; c < layer.InDim(); c++ {
				w, err := FormatFloat(layer.W.At(j, c), opts.Precision)
				if err != nil {
					return "", fmt.Errorf("layer %d weight (%d,%d): %w", l, j, c, err)
				}
				fmt.Fprintf(&sb, " + (%s * %s)", w, activeVar(l, c))
			}
			sb.WriteString(";")
			sb.WriteString(opts.EOL)
			if l == last {
				continue
			}
			switch layer.Act {
			case nn.ActReLU:
				line("if(" + rawVar(l+1, j) + " < 0)")
				line(" " + activeVar(l+1, j) + " = 0;")
				line("else")
				line(" " + activeVar(l+1, j) + " = " + rawVar(l+1, j) + ";")
			case nn.ActIdentity:
				line(activeVar(l+1, j) + " = " + rawVar(l+1, j) + ";")
			}
		}
	}
	return sb.String(), nil
}

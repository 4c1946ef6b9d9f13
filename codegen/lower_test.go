package codegen

import (
	"errors"
	"strings"
	"testing"

	"github.com/Koukyosyumei/mlgymbo/nn"
	"github.com/Koukyosyumei/mlgymbo/tensor"
)

func mustMatrix(t *testing.T, rows, cols int, data []float64) *tensor.Tensor {
	t.Helper()
	m, err := tensor.NewMatrix(rows, cols, data)
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}
	return m
}

func mustBind(t *testing.T, x []float64, symbolic []int) *Binding {
	t.Helper()
	b, err := BindVector(x, symbolic)
	if err != nil {
		t.Fatalf("BindVector: %v", err)
	}
	return b
}

// reluNet is a 2-2-1 network with a relu hidden layer and dyadic parameters,
// so every literal renders exactly.
func reluNet(t *testing.T) nn.Network {
	t.Helper()
	return nn.Network{Layers: []nn.Layer{
		{
			W:   mustMatrix(t, 2, 2, []float64{1, -1, 0.5, 0.25}),
			B:   tensor.NewWithData([]float64{0, -1}),
			Act: nn.ActReLU,
		},
		{
			W:   mustMatrix(t, 1, 2, []float64{1, 2}),
			B:   tensor.NewWithData([]float64{0.125}),
			Act: nn.ActIdentity,
		},
	}}
}

func TestLowerSingleAffineOutput(t *testing.T) {
	net := nn.Network{Layers: []nn.Layer{{
		W:   mustMatrix(t, 1, 1, []float64{2.0}),
		B:   tensor.NewWithData([]float64{0.5}),
		Act: nn.ActIdentity,
	}}}
	b := mustBind(t, []float64{0}, []int{0})
	got, err := Lower(net, b, DefaultOptions())
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	want := "h_0_0_a = sv_0;\n" +
		"\n" +
		"y_0 = 0.50000000 + (2.00000000 * h_0_0_a);\n"
	if got != want {
		t.Errorf("program text:\n%q\nwant:\n%q", got, want)
	}
}

func TestLowerReluNetwork(t *testing.T) {
	b := mustBind(t, []float64{0, 0.25}, []int{0})
	got, err := Lower(reluNet(t), b, DefaultOptions())
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	want := `h_0_0_a = sv_0;
h_0_1_a = 0.25000000;

h_1_0_b = 0.00000000 + (1.00000000 * h_0_0_a) + (-1.00000000 * h_0_1_a);
if(h_1_0_b < 0)
 h_1_0_a = 0;
else
 h_1_0_a = h_1_0_b;
h_1_1_b = -1.00000000 + (0.50000000 * h_0_0_a) + (0.25000000 * h_0_1_a);
if(h_1_1_b < 0)
 h_1_1_a = 0;
else
 h_1_1_a = h_1_1_b;

y_0 = 0.12500000 + (1.00000000 * h_1_0_a) + (2.00000000 * h_1_1_a);
`
	if got != want {
		t.Errorf("program text:\n%s\nwant:\n%s", got, want)
	}
}

func TestLowerDeterminism(t *testing.T) {
	b := mustBind(t, []float64{0, 0.25}, []int{0})
	first, err := Lower(reluNet(t), b, DefaultOptions())
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	second, err := Lower(reluNet(t), b, DefaultOptions())
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if first != second {
		t.Error("identical inputs produced different text")
	}
}

func TestLowerIdentityHiddenAlias(t *testing.T) {
	net := nn.Network{Layers: []nn.Layer{
		{
			W:   mustMatrix(t, 1, 1, []float64{1}),
			B:   tensor.NewWithData([]float64{0}),
			Act: nn.ActIdentity,
		},
		{
			W:   mustMatrix(t, 1, 1, []float64{1}),
			B:   tensor.NewWithData([]float64{0}),
			Act: nn.ActIdentity,
		},
	}}
	b := mustBind(t, []float64{0}, []int{0})
	got, err := Lower(net, b, DefaultOptions())
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if !strings.Contains(got, "h_1_0_a = h_1_0_b;\n") {
		t.Errorf("missing identity alias:\n%s", got)
	}
	if strings.Contains(got, "if(") {
		t.Errorf("identity layer emitted a branch:\n%s", got)
	}
}

func TestLowerCustomOptions(t *testing.T) {
	net := nn.Network{Layers: []nn.Layer{
		{
			W:   mustMatrix(t, 1, 1, []float64{1}),
			B:   tensor.NewWithData([]float64{-0.5}),
			Act: nn.ActReLU,
		},
		{
			W:   mustMatrix(t, 1, 1, []float64{2}),
			B:   tensor.NewWithData([]float64{0}),
			Act: nn.ActIdentity,
		},
	}}
	b := mustBind(t, []float64{0}, []int{0})
	got, err := Lower(net, b, Options{Precision: 2, Indent: "\t", EOL: "\r\n"})
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	want := "\th_0_0_a = sv_0;\r\n" +
		"\r\n" +
		"\th_1_0_b = -0.50 + (1.00 * h_0_0_a);\r\n" +
		"\tif(h_1_0_b < 0)\r\n" +
		"\t h_1_0_a = 0;\r\n" +
		"\telse\r\n" +
		"\t h_1_0_a = h_1_0_b;\r\n" +
		"\r\n" +
		"\ty_0 = 0.00 + (2.00 * h_1_0_a);\r\n"
	if got != want {
		t.Errorf("program text:\n%q\nwant:\n%q", got, want)
	}
}

func TestLowerUnsupportedActivation(t *testing.T) {
	net := reluNet(t)
	net.Layers[0].Act = nn.Activation(99)
	b := mustBind(t, []float64{0, 0.25}, []int{0})
	got, err := Lower(net, b, DefaultOptions())
	if !errors.Is(err, nn.ErrUnsupportedActivation) {
		t.Errorf("hidden layer: got %v, want ErrUnsupportedActivation", err)
	}
	if got != "" {
		t.Errorf("partial text returned on error: %q", got)
	}

	out := nn.Network{Layers: []nn.Layer{{
		W:   mustMatrix(t, 1, 1, []float64{1}),
		B:   tensor.NewWithData([]float64{0}),
		Act: nn.ActReLU,
	}}}
	ob := mustBind(t, []float64{0}, []int{0})
	if _, err := Lower(out, ob, DefaultOptions()); !errors.Is(err, nn.ErrUnsupportedActivation) {
		t.Errorf("output layer: got %v, want ErrUnsupportedActivation", err)
	}
}

func TestLowerRejectsBadInputs(t *testing.T) {
	net := reluNet(t)

	if _, err := Lower(net, nil, DefaultOptions()); err == nil {
		t.Error("expected error for nil binding")
	}

	incomplete := NewBinding(2)
	if err := incomplete.SetSymbolic(0, "sv_0"); err != nil {
		t.Fatalf("SetSymbolic: %v", err)
	}
	if _, err := Lower(net, incomplete, DefaultOptions()); err == nil {
		t.Error("expected error for incomplete binding")
	}

	short := mustBind(t, []float64{0}, []int{0})
	if _, err := Lower(net, short, DefaultOptions()); err == nil {
		t.Error("expected error for binding length mismatch")
	}

	b := mustBind(t, []float64{0, 0.25}, []int{0})
	if _, err := Lower(net, b, Options{Precision: -1, EOL: "\n"}); err == nil {
		t.Error("expected error for negative precision")
	}

	bad := reluNet(t)
	bad.Layers[1].B = tensor.NewWithData([]float64{0.125, 7})
	if _, err := Lower(bad, b, DefaultOptions()); !errors.Is(err, nn.ErrMalformedModel) {
		t.Errorf("got %v, want ErrMalformedModel", err)
	}
}

func identTokens(line string) []string {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		ident := r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
		return !ident
	})
	var toks []string
	for _, f := range fields {
		if f[0] >= '0' && f[0] <= '9' {
			continue
		}
		if f == "if" || f == "else" || f == "return" {
			continue
		}
		toks = append(toks, f)
	}
	return toks
}

// Every variable the program reads must have been assigned on an earlier
// line, so the downstream interpreter never hits an undefined name on any
// path.
func TestLowerDefinesBeforeUse(t *testing.T) {
	b := mustBind(t, []float64{0, 0.25}, []int{0})
	text, err := Lower(reluNet(t), b, DefaultOptions())
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	defined := map[string]bool{}
	for _, name := range b.SymbolicNames() {
		defined[name] = true
	}
	for i, ln := range strings.Split(text, "\n") {
		toks := identTokens(ln)
		if len(toks) == 0 {
			continue
		}
		if strings.Contains(ln, " = ") {
			for _, r := range toks[1:] {
				if !defined[r] {
					t.Errorf("line %d reads undefined %q: %s", i+1, r, ln)
				}
			}
			defined[toks[0]] = true
			continue
		}
		for _, r := range toks {
			if !defined[r] {
				t.Errorf("line %d reads undefined %q: %s", i+1, r, ln)
			}
		}
	}
	if !defined["y_0"] {
		t.Error("output variable y_0 never assigned")
	}
}

// Raw and output variables are written exactly once; hidden relu active
// variables once per branch arm (twice textually), feature bindings once.
func TestLowerSingleWriter(t *testing.T) {
	b := mustBind(t, []float64{0, 0.25}, []int{0})
	text, err := Lower(reluNet(t), b, DefaultOptions())
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	writes := map[string]int{}
	for _, ln := range strings.Split(text, "\n") {
		if !strings.Contains(ln, " = ") {
			continue
		}
		toks := identTokens(ln)
		if len(toks) == 0 {
			continue
		}
		writes[toks[0]]++
	}
	want := map[string]int{
		"h_0_0_a": 1,
		"h_0_1_a": 1,
		"h_1_0_b": 1,
		"h_1_1_b": 1,
		"h_1_0_a": 2,
		"h_1_1_a": 2,
		"y_0":     1,
	}
	if len(writes) != len(want) {
		t.Errorf("wrote %d variables, want %d: %v", len(writes), len(want), writes)
	}
	for name, n := range want {
		if writes[name] != n {
			t.Errorf("%s written %d times, want %d", name, writes[name], n)
		}
	}
}

package attack

import (
	"fmt"

	"github.com/Koukyosyumei/mlgymbo/codegen"
	"github.com/Koukyosyumei/mlgymbo/nn"
)

// SymbolicVar ties a free program variable to the input feature it stands
// for.
type SymbolicVar struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

// Plan is a fully assembled attack: the lowered program with its epilogue,
// the free variables, the base input, the class to flip away from, and the
// search configuration.
type Plan struct {
	Code         string
	SymbolicVars []SymbolicVar
	Base         []float64
	Predicted    int
	Config       SearchConfig
}

// NewPlan builds an attack plan for the base input x, predicting the
// original class with the reference forward pass. The listed feature
// indices become free variables; all other features are inlined as
// literals.
func NewPlan(net nn.Network, x []float64, symbolicIdx []int, cfg SearchConfig, opts codegen.Options) (*Plan, error) {
	predicted, err := net.Predict(x)
	if err != nil {
		return nil, err
	}
	return NewPlanForLabel(net, x, predicted, symbolicIdx, cfg, opts)
}

// NewPlanForLabel is NewPlan with a caller-supplied original label, for
// callers that already know the class the input is filed under.
func NewPlanForLabel(net nn.Network, x []float64, label int, symbolicIdx []int, cfg SearchConfig, opts codegen.Options) (*Plan, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("search config: %w", err)
	}
	b, err := codegen.BindVector(x, symbolicIdx)
	if err != nil {
		return nil, err
	}
	if b.SymbolicCount() == 0 {
		return nil, fmt.Errorf("no symbolic features selected")
	}
	code, err := codegen.Lower(net, b, opts)
	if err != nil {
		return nil, err
	}
	objective, err := FlipObjective(label, net.OutDim())
	if err != nil {
		return nil, err
	}
	box, err := BoxConstraint(b.SymbolicNames(), cfg.ParamLow, cfg.ParamHigh, opts.Precision)
	if err != nil {
		return nil, err
	}
	eol := opts.EOL
	if eol == "" {
		eol = "\n"
	}
	code += BuildEpilogue(objective, box, eol)

	indices := b.SymbolicIndices()
	names := b.SymbolicNames()
	vars := make([]SymbolicVar, len(indices))
	for i := range indices {
		vars[i] = SymbolicVar{Index: indices[i], Name: names[i]}
	}
	return &Plan{
		Code:         code,
		SymbolicVars: vars,
		Base:         append([]float64(nil), x...),
		Predicted:    label,
		Config:       cfg,
	}, nil
}

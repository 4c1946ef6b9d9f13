package nn

import (
	"fmt"

	"github.com/Koukyosyumei/mlgymbo/tensor"
)

// Module defines a single stage in a Sequential model.
type Module interface {
	Forward(x *tensor.Tensor) (*tensor.Tensor, error)
}

// Linear is a fully-connected stage. W is stored (outDim, inDim).
type Linear struct {
	W, B *tensor.Tensor
}

// NewLinear allocates a zero-initialized inDim→outDim linear stage.
func NewLinear(inDim, outDim int) *Linear {
	return &Linear{W: tensor.New(outDim, inDim), B: tensor.New(outDim)}
}

// Forward computes y = Wx + B for a 1-D input.
func (l *Linear) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	wx, err := tensor.MatVec(l.W, x)
	if err != nil {
		return nil, err
	}
	return tensor.Add(wx, l.B)
}

// ReLU maps negative inputs to zero.
type ReLU struct{}

func (ReLU) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	return tensor.Relu(x), nil
}

// Sequential chains multiple Modules in order.
type Sequential struct {
	Modules []Module
}

// NewSequential builds a Sequential from the given stages.
func NewSequential(mods ...Module) *Sequential {
	return &Sequential{Modules: mods}
}

// NewMLP builds the usual feed-forward shape: one linear per hidden size with
// the named activation between them, then a final linear to outputSize.
func NewMLP(inputSize int, hiddenSizes []int, outputSize int, activation string) (*Sequential, error) {
	act, err := ParseActivation(activation)
	if err != nil {
		return nil, err
	}
	if inputSize <= 0 || outputSize <= 0 {
		return nil, fmt.Errorf("%w: input %d, output %d", ErrMalformedModel, inputSize, outputSize)
	}
	s := &Sequential{}
	prev := inputSize
	for _, h := range hiddenSizes {
		if h <= 0 {
			return nil, fmt.Errorf("%w: hidden size %d", ErrMalformedModel, h)
		}
		s.Modules = append(s.Modules, NewLinear(prev, h))
		if act == ActReLU {
			s.Modules = append(s.Modules, ReLU{})
		}
		prev = h
	}
	s.Modules = append(s.Modules, NewLinear(prev, outputSize))
	return s, nil
}

// Forward applies each stage in sequence.
func (s *Sequential) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	var err error
	out := x
	for _, m := range s.Modules {
		out, err = m.Forward(out)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// FromSequential normalizes a module-list model into the Layer sequence.
// Each activation module marks the preceding linear; the final linear is
// resolved to identity regardless of any trailing activation. Parameters are
// copied so the Network stays stable if the model keeps training.
func FromSequential(s *Sequential) (Network, error) {
	if s == nil || len(s.Modules) == 0 {
		return Network{}, fmt.Errorf("%w: empty model", ErrMalformedModel)
	}
	var net Network
	for i, m := range s.Modules {
		switch mod := m.(type) {
		case *Linear:
			w := tensor.New(mod.W.Shape...)
			copy(w.Data, mod.W.Data)
			b := tensor.New(mod.B.Shape...)
			copy(b.Data, mod.B.Data)
			net.Layers = append(net.Layers, Layer{W: w, B: b, Act: ActIdentity})
		case ReLU, *ReLU:
			if len(net.Layers) == 0 {
				return Network{}, fmt.Errorf("%w: activation before any linear stage", ErrMalformedModel)
			}
			last := &net.Layers[len(net.Layers)-1]
			if last.Act != ActIdentity {
				return Network{}, fmt.Errorf("%w: doubled activation after stage %d", ErrMalformedModel, i)
			}
			last.Act = ActReLU
		default:
			return Network{}, fmt.Errorf("%w: stage %d has unknown module type %T", ErrUnsupportedActivation, i, m)
		}
	}
	// Output layer carries identity semantics whatever followed it.
	net.Layers[len(net.Layers)-1].Act = ActIdentity
	if err := net.Validate(); err != nil {
		return Network{}, err
	}
	return net, nil
}

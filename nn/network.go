package nn

import (
	"errors"
	"fmt"
	"math"

	"github.com/Koukyosyumei/mlgymbo/tensor"
)

// ErrMalformedModel is returned when layer shapes are inconsistent or a
// parameter cannot be rendered as a decimal literal.
var ErrMalformedModel = errors.New("malformed model")

// Layer is one affine stage of a network: y = Wx + b, W stored (outDim, inDim),
// followed by its activation. Immutable once extracted from a model.
type Layer struct {
	W   *tensor.Tensor
	B   *tensor.Tensor
	Act Activation
}

// InDim returns the number of inputs the layer consumes.
func (l Layer) InDim() int {
	if l.W == nil || len(l.W.Shape) != 2 {
		return 0
	}
	return l.W.Shape[1]
}

// OutDim returns the number of units in the layer.
func (l Layer) OutDim() int {
	if l.W == nil || len(l.W.Shape) != 2 {
		return 0
	}
	return l.W.Shape[0]
}

// Network is an ordered sequence of layers. Layer 0 consumes the input
// feature vector; the last layer is the output layer and always carries
// identity semantics.
type Network struct {
	Layers []Layer
}

// InDim returns the input feature count of the network.
func (n Network) InDim() int {
	if len(n.Layers) == 0 {
		return 0
	}
	return n.Layers[0].InDim()
}

// OutDim returns the output unit count of the network.
func (n Network) OutDim() int {
	if len(n.Layers) == 0 {
		return 0
	}
	return n.Layers[len(n.Layers)-1].OutDim()
}

// Validate checks the layer chain: weight/bias shapes, adjacent-layer width
// agreement, and parameter finiteness. All failures wrap ErrMalformedModel.
func (n Network) Validate() error {
	if len(n.Layers) == 0 {
		return fmt.Errorf("%w: no layers", ErrMalformedModel)
	}
	for i, l := range n.Layers {
		if l.W == nil || len(l.W.Shape) != 2 || l.W.Shape[0] == 0 || l.W.Shape[1] == 0 {
			return fmt.Errorf("%w: layer %d has no 2-D weight matrix", ErrMalformedModel, i)
		}
		if l.B == nil || len(l.B.Shape) != 1 {
			return fmt.Errorf("%w: layer %d has no bias vector", ErrMalformedModel, i)
		}
		if l.B.Shape[0] != l.OutDim() {
			return fmt.Errorf("%w: layer %d bias length %d, want %d", ErrMalformedModel, i, l.B.Shape[0], l.OutDim())
		}
		if i > 0 && n.Layers[i-1].OutDim() != l.InDim() {
			return fmt.Errorf("%w: layer %d consumes %d inputs but layer %d produces %d",
				ErrMalformedModel, i, l.InDim(), i-1, n.Layers[i-1].OutDim())
		}
		for _, v := range l.W.Data {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: layer %d has a non-finite weight", ErrMalformedModel, i)
			}
		}
		for _, v := range l.B.Data {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: layer %d has a non-finite bias", ErrMalformedModel, i)
			}
		}
	}
	return nil
}

// Forward evaluates the network in float64 arithmetic. Hidden layers apply
// their activation; the output layer reports its raw affine value.
func (n Network) Forward(x []float64) ([]float64, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}
	if len(x) != n.InDim() {
		return nil, fmt.Errorf("%w: input length %d, want %d", ErrMalformedModel, len(x), n.InDim())
	}
	h := tensor.NewWithData(x)
	last := len(n.Layers) - 1
	for i, l := range n.Layers {
		z, err := tensor.MatVec(l.W, h)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		z, err = tensor.Add(z, l.B)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		if i < last && l.Act == ActReLU {
			h = tensor.Relu(z)
		} else {
			h = z
		}
	}
	return h.Data, nil
}

// Predict returns the index of the largest output unit.
func (n Network) Predict(x []float64) (int, error) {
	y, err := n.Forward(x)
	if err != nil {
		return 0, err
	}
	best := 0
	for i, v := range y {
		if v > y[best] {
			best = i
		}
	}
	return best, nil
}

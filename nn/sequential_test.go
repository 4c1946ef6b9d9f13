package nn

import (
	"errors"
	"testing"

	"github.com/Koukyosyumei/mlgymbo/tensor"
)

func TestNewMLPShape(t *testing.T) {
	s, err := NewMLP(10, []int{4, 3}, 2, "relu")
	if err != nil {
		t.Fatal(err)
	}
	// linear, relu, linear, relu, linear
	if len(s.Modules) != 5 {
		t.Fatalf("expected 5 modules, got %d", len(s.Modules))
	}
	lin, ok := s.Modules[4].(*Linear)
	if !ok {
		t.Fatalf("last module is %T, want *Linear", s.Modules[4])
	}
	if lin.W.Shape[0] != 2 || lin.W.Shape[1] != 3 {
		t.Errorf("output linear shape %v, want [2 3]", lin.W.Shape)
	}
}

func TestNewMLPUnsupportedActivation(t *testing.T) {
	if _, err := NewMLP(4, []int{2}, 2, "tanh"); !errors.Is(err, ErrUnsupportedActivation) {
		t.Fatalf("expected ErrUnsupportedActivation, got %v", err)
	}
}

func TestSequentialForward(t *testing.T) {
	lin := NewLinear(2, 1)
	lin.W.Data[0], lin.W.Data[1] = 1, -1
	lin.B.Data[0] = -1
	s := NewSequential(lin, ReLU{})

	out, err := s.Forward(tensor.NewWithData([]float64{3, 1}))
	if err != nil {
		t.Fatal(err)
	}
	if out.Data[0] != 1 {
		t.Errorf("forward = %f, want 1", out.Data[0])
	}

	out, err = s.Forward(tensor.NewWithData([]float64{1, 3}))
	if err != nil {
		t.Fatal(err)
	}
	if out.Data[0] != 0 {
		t.Errorf("forward = %f, want 0 (clipped)", out.Data[0])
	}
}

func TestFromSequential(t *testing.T) {
	hidden := NewLinear(2, 3)
	out := NewLinear(3, 2)
	net, err := FromSequential(NewSequential(hidden, ReLU{}, out))
	if err != nil {
		t.Fatal(err)
	}
	if len(net.Layers) != 2 {
		t.Fatalf("expected 2 layers, got %d", len(net.Layers))
	}
	if net.Layers[0].Act != ActReLU {
		t.Errorf("hidden activation = %v, want relu", net.Layers[0].Act)
	}
	if net.Layers[1].Act != ActIdentity {
		t.Errorf("output activation = %v, want identity", net.Layers[1].Act)
	}
}

func TestFromSequentialCopiesParams(t *testing.T) {
	lin := NewLinear(1, 1)
	lin.W.Data[0] = 2
	net, err := FromSequential(NewSequential(lin))
	if err != nil {
		t.Fatal(err)
	}
	lin.W.Data[0] = 99
	if net.Layers[0].W.Data[0] != 2 {
		t.Errorf("layer weight changed with the source model: %f", net.Layers[0].W.Data[0])
	}
}

func TestFromSequentialTrailingActivation(t *testing.T) {
	// An activation after the output linear is overridden: the output layer
	// always carries identity semantics.
	net, err := FromSequential(NewSequential(NewLinear(2, 2), ReLU{}))
	if err != nil {
		t.Fatal(err)
	}
	if net.Layers[0].Act != ActIdentity {
		t.Errorf("output activation = %v, want identity", net.Layers[0].Act)
	}
}

func TestFromSequentialMalformed(t *testing.T) {
	if _, err := FromSequential(NewSequential(ReLU{}, NewLinear(2, 2))); !errors.Is(err, ErrMalformedModel) {
		t.Errorf("activation-first: expected ErrMalformedModel, got %v", err)
	}
	if _, err := FromSequential(NewSequential(NewLinear(2, 2), ReLU{}, ReLU{}, NewLinear(2, 1))); !errors.Is(err, ErrMalformedModel) {
		t.Errorf("doubled activation: expected ErrMalformedModel, got %v", err)
	}
	if _, err := FromSequential(NewSequential()); !errors.Is(err, ErrMalformedModel) {
		t.Errorf("empty model: expected ErrMalformedModel, got %v", err)
	}
	// Width mismatch between consecutive linears.
	if _, err := FromSequential(NewSequential(NewLinear(2, 3), ReLU{}, NewLinear(4, 1))); !errors.Is(err, ErrMalformedModel) {
		t.Errorf("width mismatch: expected ErrMalformedModel, got %v", err)
	}
}

type tanhModule struct{}

func (tanhModule) Forward(x *tensor.Tensor) (*tensor.Tensor, error) { return x, nil }

func TestFromSequentialUnknownModule(t *testing.T) {
	_, err := FromSequential(NewSequential(NewLinear(2, 2), tanhModule{}, NewLinear(2, 1)))
	if !errors.Is(err, ErrUnsupportedActivation) {
		t.Fatalf("expected ErrUnsupportedActivation, got %v", err)
	}
}

package utils

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Koukyosyumei/mlgymbo/nn"
	"github.com/Koukyosyumei/mlgymbo/tensor"
)

// WeightData represents serializable weight data for a layer
type WeightData struct {
	Name  string    `json:"name"`
	Shape []int     `json:"shape"`
	Data  []float64 `json:"data"`
}

// LayerWeight contains the weight matrix, bias and activation of one layer
type LayerWeight struct {
	Activation string      `json:"activation"`
	Weight     *WeightData `json:"weight"`
	Bias       *WeightData `json:"bias"`
}

// ModelWeights represents all weights in a model. Layers are stored in
// evaluation order; the order in the file is the order of the network.
type ModelWeights struct {
	Version string        `json:"version"`
	Layers  []LayerWeight `json:"layers"`
}

// SaveWeights saves model weights to a JSON file
func SaveWeights(filepath string, weights *ModelWeights) error {
	data, err := json.MarshalIndent(weights, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal weights: %w", err)
	}
	return os.WriteFile(filepath, data, 0644)
}

// LoadWeights loads model weights from a JSON file
func LoadWeights(filepath string) (*ModelWeights, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read weights file: %w", err)
	}
	var weights ModelWeights
	if err := json.Unmarshal(data, &weights); err != nil {
		return nil, fmt.Errorf("failed to unmarshal weights: %w", err)
	}
	return &weights, nil
}

// TensorToWeightData converts a tensor to serializable weight data
func TensorToWeightData(name string, t *tensor.Tensor) *WeightData {
	return &WeightData{
		Name:  name,
		Shape: append([]int{}, t.Shape...),
		Data:  append([]float64{}, t.Data...),
	}
}

// WeightDataToTensor converts weight data back to a tensor
func WeightDataToTensor(wd *WeightData) (*tensor.Tensor, error) {
	if wd == nil {
		return nil, fmt.Errorf("missing weight data")
	}
	if len(wd.Shape) == 0 {
		return nil, fmt.Errorf("weight %q has no shape", wd.Name)
	}
	size := 1
	for _, dim := range wd.Shape {
		if dim <= 0 {
			return nil, fmt.Errorf("weight %q has invalid shape %v", wd.Name, wd.Shape)
		}
		size *= dim
	}
	if size != len(wd.Data) {
		return nil, fmt.Errorf("weight %q shape %v wants %d values, file has %d",
			wd.Name, wd.Shape, size, len(wd.Data))
	}
	t := tensor.New(wd.Shape...)
	copy(t.Data, wd.Data)
	return t, nil
}

// NetworkWeights serializes a network into the weights schema.
func NetworkWeights(net nn.Network) *ModelWeights {
	w := &ModelWeights{Version: "1", Layers: make([]LayerWeight, len(net.Layers))}
	for i, l := range net.Layers {
		w.Layers[i] = LayerWeight{
			Activation: l.Act.String(),
			Weight:     TensorToWeightData(fmt.Sprintf("layer_%d.weight", i), l.W),
			Bias:       TensorToWeightData(fmt.Sprintf("layer_%d.bias", i), l.B),
		}
	}
	return w
}

// BuildNetwork assembles a network from loaded weights. Hidden activations
// are resolved by name; the final layer is identity regardless of the
// stated activation, matching the adapters.
func BuildNetwork(w *ModelWeights) (nn.Network, error) {
	if w == nil || len(w.Layers) == 0 {
		return nn.Network{}, fmt.Errorf("%w: no layers", nn.ErrMalformedModel)
	}
	net := nn.Network{Layers: make([]nn.Layer, len(w.Layers))}
	last := len(w.Layers) - 1
	for i, lw := range w.Layers {
		wt, err := WeightDataToTensor(lw.Weight)
		if err != nil {
			return nn.Network{}, fmt.Errorf("layer %d: %w", i, err)
		}
		bias, err := WeightDataToTensor(lw.Bias)
		if err != nil {
			return nn.Network{}, fmt.Errorf("layer %d: %w", i, err)
		}
		act := nn.ActIdentity
		if i < last {
			act, err = nn.ParseActivation(lw.Activation)
			if err != nil {
				return nn.Network{}, fmt.Errorf("layer %d: %w", i, err)
			}
		}
		net.Layers[i] = nn.Layer{W: wt, B: bias, Act: act}
	}
	if err := net.Validate(); err != nil {
		return nn.Network{}, err
	}
	return net, nil
}

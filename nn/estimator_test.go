package nn

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestFromEstimatorTransposes(t *testing.T) {
	// Two features, three hidden units: coefs stored (in, out) = (2, 3).
	est := &Estimator{
		Coefs: []*mat.Dense{
			mat.NewDense(2, 3, []float64{
				1, 2, 3,
				4, 5, 6,
			}),
			mat.NewDense(3, 1, []float64{7, 8, 9}),
		},
		Intercepts: [][]float64{{0.1, 0.2, 0.3}, {0.4}},
		Activation: "relu",
	}
	net, err := FromEstimator(est)
	require.NoError(t, err)
	require.Len(t, net.Layers, 2)

	l0 := net.Layers[0]
	require.Equal(t, []int{3, 2}, l0.W.Shape)
	// W[j][c] must equal coefs.At(c, j).
	require.Equal(t, 1.0, l0.W.At(0, 0))
	require.Equal(t, 4.0, l0.W.At(0, 1))
	require.Equal(t, 2.0, l0.W.At(1, 0))
	require.Equal(t, 6.0, l0.W.At(2, 1))
	require.Equal(t, ActReLU, l0.Act)

	l1 := net.Layers[1]
	require.Equal(t, []int{1, 3}, l1.W.Shape)
	require.Equal(t, ActIdentity, l1.Act)
	require.Equal(t, []float64{0.4}, l1.B.Data)
}

func TestFromEstimatorForwardAgreement(t *testing.T) {
	est := &Estimator{
		Coefs: []*mat.Dense{
			mat.NewDense(2, 2, []float64{
				0.5, -1,
				1, 0.25,
			}),
			mat.NewDense(2, 1, []float64{1, -1}),
		},
		Intercepts: [][]float64{{-0.5, 0.5}, {0.25}},
		Activation: "relu",
	}
	net, err := FromEstimator(est)
	require.NoError(t, err)

	x := []float64{1.5, -2}
	// Hand-computed: z0 = 0.5*1.5 + 1*(-2) - 0.5 = -1.75 -> 0
	//                z1 = -1*1.5 + 0.25*(-2) + 0.5 = -1.5 -> 0
	//                y  = 0.25
	y, err := net.Forward(x)
	require.NoError(t, err)
	require.InDelta(t, 0.25, y[0], 1e-12)
}

func TestFromEstimatorUnsupportedActivation(t *testing.T) {
	est := &Estimator{
		Coefs: []*mat.Dense{
			mat.NewDense(1, 2, []float64{1, 1}),
			mat.NewDense(2, 1, []float64{1, 1}),
		},
		Intercepts: [][]float64{{0, 0}, {0}},
		Activation: "tanh",
	}
	_, err := FromEstimator(est)
	require.ErrorIs(t, err, ErrUnsupportedActivation)
}

func TestFromEstimatorSingleLayerIgnoresActivation(t *testing.T) {
	// No hidden layers: the activation string never applies.
	est := &Estimator{
		Coefs:      []*mat.Dense{mat.NewDense(1, 1, []float64{2})},
		Intercepts: [][]float64{{0.5}},
		Activation: "tanh",
	}
	net, err := FromEstimator(est)
	require.NoError(t, err)
	require.Equal(t, ActIdentity, net.Layers[0].Act)
}

func TestFromEstimatorMalformed(t *testing.T) {
	_, err := FromEstimator(&Estimator{
		Coefs:      []*mat.Dense{mat.NewDense(1, 2, []float64{1, 1})},
		Intercepts: [][]float64{{0}},
		Activation: "relu",
	})
	if !errors.Is(err, ErrMalformedModel) {
		t.Fatalf("intercept count: expected ErrMalformedModel, got %v", err)
	}

	_, err = FromEstimator(&Estimator{
		Coefs:      []*mat.Dense{mat.NewDense(1, 2, []float64{1, 1}), mat.NewDense(3, 1, []float64{1, 1, 1})},
		Intercepts: [][]float64{{0, 0}, {0}},
		Activation: "relu",
	})
	if !errors.Is(err, ErrMalformedModel) {
		t.Fatalf("width mismatch: expected ErrMalformedModel, got %v", err)
	}

	if _, err := FromEstimator(nil); !errors.Is(err, ErrMalformedModel) {
		t.Fatalf("nil estimator: expected ErrMalformedModel, got %v", err)
	}
}

package nn

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/Koukyosyumei/mlgymbo/tensor"
)

// Estimator mirrors how fitted scikit-learn style models expose their
// parameters: one coefficient matrix per layer stored (inDim, outDim), one
// intercept vector per layer, and a single activation name applied to every
// hidden layer.
type Estimator struct {
	Coefs      []*mat.Dense
	Intercepts [][]float64
	Activation string
}

// FromEstimator normalizes an estimator into the Layer sequence, transposing
// each coefficient matrix to the (outDim, inDim) orientation. The activation
// name is resolved for hidden layers only; the final layer is identity.
func FromEstimator(est *Estimator) (Network, error) {
	if est == nil || len(est.Coefs) == 0 {
		return Network{}, fmt.Errorf("%w: estimator has no coefficient matrices", ErrMalformedModel)
	}
	if len(est.Coefs) != len(est.Intercepts) {
		return Network{}, fmt.Errorf("%w: %d coefficient matrices but %d intercept vectors",
			ErrMalformedModel, len(est.Coefs), len(est.Intercepts))
	}

	act := ActIdentity
	if len(est.Coefs) > 1 {
		var err error
		act, err = ParseActivation(est.Activation)
		if err != nil {
			return Network{}, err
		}
	}

	last := len(est.Coefs) - 1
	var net Network
	for l, coef := range est.Coefs {
		if coef == nil {
			return Network{}, fmt.Errorf("%w: layer %d has no coefficient matrix", ErrMalformedModel, l)
		}
		inDim, outDim := coef.Dims()
		if len(est.Intercepts[l]) != outDim {
			return Network{}, fmt.Errorf("%w: layer %d has %d intercepts for %d units",
				ErrMalformedModel, l, len(est.Intercepts[l]), outDim)
		}
		w := tensor.New(outDim, inDim)
		for j := 0; j < outDim; j++ {
			for c := 0; c < inDim; c++ {
				w.Data[j*inDim+c] = coef.At(c, j)
			}
		}
		layerAct := act
		if l == last {
			layerAct = ActIdentity
		}
		net.Layers = append(net.Layers, Layer{
			W:   w,
			B:   tensor.NewWithData(est.Intercepts[l]),
			Act: layerAct,
		})
	}
	if err := net.Validate(); err != nil {
		return Network{}, err
	}
	return net, nil
}

package nn

import (
	"errors"
	"fmt"
)

// ErrUnsupportedActivation is returned when a hidden layer declares an
// activation kind the lowering pipeline cannot express.
var ErrUnsupportedActivation = errors.New("unsupported activation")

// Activation is the activation kind of a layer.
type Activation int

const (
	ActIdentity Activation = iota
	ActReLU
)

// ParseActivation resolves an activation name ("identity", "relu").
func ParseActivation(name string) (Activation, error) {
	switch name {
	case "identity":
		return ActIdentity, nil
	case "relu":
		return ActReLU, nil
	default:
		return ActIdentity, fmt.Errorf("%w: %q", ErrUnsupportedActivation, name)
	}
}

func (a Activation) String() string {
	switch a {
	case ActIdentity:
		return "identity"
	case ActReLU:
		return "relu"
	default:
		return fmt.Sprintf("Activation(%d)", int(a))
	}
}

package codegen

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrIndexOutOfRange is returned when a feature index falls outside the
// input vector.
var ErrIndexOutOfRange = errors.New("feature index out of range")

// SymbolName is the default name for the symbolic variable of feature i.
func SymbolName(i int) string {
	return fmt.Sprintf("sv_%d", i)
}

type bindingEntry struct {
	bound    bool
	symbolic bool
	name     string
	value    float64
}

// Binding maps every input feature index to exactly one of: a symbolic
// variable name (free, to be solved for) or a fixed numeric value. A Binding
// is complete once all indices are bound; Lower refuses incomplete bindings.
type Binding struct {
	entries []bindingEntry
}

// NewBinding creates an empty binding for an n-feature input.
func NewBinding(n int) *Binding {
	return &Binding{entries: make([]bindingEntry, n)}
}

// BindVector binds every feature of x concretely except the listed symbolic
// indices, which get the default sv_{i} names.
func BindVector(x []float64, symbolic []int) (*Binding, error) {
	b := NewBinding(len(x))
	for _, i := range symbolic {
		if err := b.SetSymbolic(i, SymbolName(i)); err != nil {
			return nil, err
		}
	}
	for i, v := range x {
		if b.entries[i].bound {
			continue
		}
		if err := b.SetConcrete(i, v); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Len returns the number of input features the binding covers.
func (b *Binding) Len() int { return len(b.entries) }

// SetSymbolic binds feature i to a free variable with the given name. Names
// must be unique across the binding so every free variable stays independent.
func (b *Binding) SetSymbolic(i int, name string) error {
	if err := b.check(i); err != nil {
		return err
	}
	if err := checkSymbolName(name); err != nil {
		return err
	}
	for j, e := range b.entries {
		if e.symbolic && e.name == name {
			return fmt.Errorf("symbolic name %q already used by feature %d", name, j)
		}
	}
	b.entries[i] = bindingEntry{bound: true, symbolic: true, name: name}
	return nil
}

// SetConcrete binds feature i to a fixed value.
func (b *Binding) SetConcrete(i int, v float64) error {
	if err := b.check(i); err != nil {
		return err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("feature %d: non-finite value %v", i, v)
	}
	b.entries[i] = bindingEntry{bound: true, value: v}
	return nil
}

// Complete reports whether every feature index is bound.
func (b *Binding) Complete() error {
	if len(b.entries) == 0 {
		return errors.New("binding covers no features")
	}
	for i, e := range b.entries {
		if !e.bound {
			return fmt.Errorf("feature %d is unbound", i)
		}
	}
	return nil
}

// SymbolicCount returns the number of free variables in the binding.
func (b *Binding) SymbolicCount() int {
	k := 0
	for _, e := range b.entries {
		if e.symbolic {
			k++
		}
	}
	return k
}

// IsSymbolic reports whether feature i is bound to a free variable.
func (b *Binding) IsSymbolic(i int) bool {
	return i >= 0 && i < len(b.entries) && b.entries[i].symbolic
}

// Name returns the symbolic variable name of feature i, if it has one.
func (b *Binding) Name(i int) (string, bool) {
	if !b.IsSymbolic(i) {
		return "", false
	}
	return b.entries[i].name, true
}

// Value returns the concrete value of feature i, if it has one.
func (b *Binding) Value(i int) (float64, bool) {
	if i < 0 || i >= len(b.entries) || !b.entries[i].bound || b.entries[i].symbolic {
		return 0, false
	}
	return b.entries[i].value, true
}

// SymbolicNames returns the free variable names in ascending feature order.
func (b *Binding) SymbolicNames() []string {
	var names []string
	for _, e := range b.entries {
		if e.symbolic {
			names = append(names, e.name)
		}
	}
	return names
}

// SymbolicIndices returns the free feature indices in ascending order.
func (b *Binding) SymbolicIndices() []int {
	var idx []int
	for i, e := range b.entries {
		if e.symbolic {
			idx = append(idx, i)
		}
	}
	return idx
}

func (b *Binding) check(i int) error {
	if i < 0 || i >= len(b.entries) {
		return fmt.Errorf("%w: %d (have %d features)", ErrIndexOutOfRange, i, len(b.entries))
	}
	if b.entries[i].bound {
		return fmt.Errorf("feature %d already bound", i)
	}
	return nil
}

// checkSymbolName enforces that a symbolic name is a valid identifier in the
// emitted grammar and cannot collide with the h_/y_ variables the lowering
// introduces.
func checkSymbolName(name string) error {
	if name == "" {
		return errors.New("empty symbolic variable name")
	}
	for i, r := range name {
		letter := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		digit := r >= '0' && r <= '9'
		if i == 0 && !letter {
			return fmt.Errorf("symbolic name %q is not an identifier", name)
		}
		if !letter && !digit {
			return fmt.Errorf("symbolic name %q is not an identifier", name)
		}
	}
	switch name {
	case "if", "else", "return", "for":
		return fmt.Errorf("symbolic name %q is a reserved word", name)
	}
	if isReservedVar(name) {
		return fmt.Errorf("symbolic name %q collides with a generated variable", name)
	}
	return nil
}

// isReservedVar matches the generated h_{l}_{u}_a, h_{l}_{u}_b and y_{u}
// shapes exactly.
func isReservedVar(name string) bool {
	if rest, ok := strings.CutPrefix(name, "y_"); ok {
		return allDigits(rest)
	}
	rest, ok := strings.CutPrefix(name, "h_")
	if !ok {
		return false
	}
	rest, ok = cutDigits(rest)
	if !ok {
		return false
	}
	rest, ok = strings.CutPrefix(rest, "_")
	if !ok {
		return false
	}
	rest, ok = cutDigits(rest)
	if !ok {
		return false
	}
	return rest == "_a" || rest == "_b"
}

func cutDigits(s string) (rest string, ok bool) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[i:], i > 0
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

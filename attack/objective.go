// Package attack plans adversarial-input searches over lowered network
// programs: the class-flip objective, the perturbation box, the guarded
// return epilogue, and the mapping from engine search results back to
// concrete input vectors.
package attack

import (
	"fmt"
	"strings"

	"github.com/Koukyosyumei/mlgymbo/codegen"
)

// FlipObjective builds the disjunction that holds when any class output
// exceeds the predicted class output.
func FlipObjective(predicted, numClasses int) (string, error) {
	if numClasses < 2 {
		return "", fmt.Errorf("need at least 2 classes, got %d", numClasses)
	}
	if predicted < 0 || predicted >= numClasses {
		return "", fmt.Errorf("predicted class %d out of range [0, %d)", predicted, numClasses)
	}
	terms := make([]string, 0, numClasses-1)
	for c := 0; c < numClasses; c++ {
		if c == predicted {
			continue
		}
		terms = append(terms, fmt.Sprintf("(%s > %s)", codegen.OutputVar(c), codegen.OutputVar(predicted)))
	}
	return "(" + strings.Join(terms, " || ") + ")", nil
}

// BoxConstraint builds the conjunction keeping every free variable inside
// [low, high]. Bounds are rendered with the fixed-precision formatter so the
// downstream tokenizer never sees exponent notation.
func BoxConstraint(names []string, low, high float64, prec int) (string, error) {
	if len(names) == 0 {
		return "", fmt.Errorf("no symbolic variables to constrain")
	}
	if !(low <= high) {
		return "", fmt.Errorf("invalid bounds [%v, %v]", low, high)
	}
	lo, err := codegen.FormatFloat(low, prec)
	if err != nil {
		return "", fmt.Errorf("lower bound: %w", err)
	}
	hi, err := codegen.FormatFloat(high, prec)
	if err != nil {
		return "", fmt.Errorf("upper bound: %w", err)
	}
	terms := make([]string, len(names))
	for i, name := range names {
		terms[i] = fmt.Sprintf("(%s >= %s) && (%s <= %s)", name, lo, name, hi)
	}
	return "(" + strings.Join(terms, " && ") + ")", nil
}

// BuildEpilogue returns the guarded-return tail appended after the lowered
// program: return 1 when the objective holds inside the perturbation box,
// fall through to return 0 otherwise.
func BuildEpilogue(objective, constraint, eol string) string {
	if eol == "" {
		eol = "\n"
	}
	return eol + "if (" + objective + " && " + constraint + ")" + eol + " return 1;" + eol + "return 0;"
}

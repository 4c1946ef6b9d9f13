package attack

import (
	"fmt"
	"sort"

	"github.com/Koukyosyumei/mlgymbo/codegen"
)

// CompiledProgram is the engine's view of a compiled program: the mapping
// from variable names to memory indices, and the instruction mnemonics in
// order.
type CompiledProgram struct {
	Vars   map[string]int
	Instrs []string
}

// PathResult is the engine's verdict for one explored path.
type PathResult struct {
	SAT        bool
	Assignment map[int]float64
}

// Engine compiles lowered programs and searches them for inputs reaching
// the target program counters. Implementations wrap an external symbolic
// execution engine.
type Engine interface {
	Compile(src string) (*CompiledProgram, error)
	Run(prg *CompiledProgram, cfg SearchConfig, concrete map[int]float64, targetPCs map[int]bool) (map[int]PathResult, error)
}

// Candidate is one adversarial input reconstructed from a satisfiable path:
// the full input vector and the solved values per free variable.
type Candidate struct {
	Input  []float64          `json:"input"`
	Values map[string]float64 `json:"values"`
}

// TargetPC returns the instruction index immediately after the last jmp,
// the program point where the guarded return body starts; 0 when the
// program has no jmp.
func TargetPC(instrs []string) int {
	pc := 0
	for i := 1; i < len(instrs); i++ {
		if instrs[i-1] == "jmp" {
			pc = i
		}
	}
	return pc
}

// ConcreteState maps the engine memory index of every non-free feature
// variable to its base value. Features inlined as literals have no program
// variable and are skipped.
func ConcreteState(prg *CompiledProgram, plan *Plan) (map[int]float64, error) {
	if prg == nil || plan == nil {
		return nil, fmt.Errorf("nil program or plan")
	}
	free := make(map[int]bool, len(plan.SymbolicVars))
	for _, sv := range plan.SymbolicVars {
		free[sv.Index] = true
	}
	state := make(map[int]float64)
	for j, v := range plan.Base {
		if free[j] {
			continue
		}
		idx, ok := prg.Vars[codegen.SymbolName(j)]
		if !ok {
			continue
		}
		state[idx] = v
	}
	return state, nil
}

// Candidates reconstructs adversarial inputs from the engine's results: for
// every satisfiable path, copy the base vector and substitute each solved
// free variable. Paths whose assignment misses a free variable are dropped.
// Paths are visited in ascending id order so the output is deterministic.
func Candidates(prg *CompiledProgram, plan *Plan, results map[int]PathResult) []Candidate {
	if prg == nil || plan == nil {
		return nil
	}
	ids := make([]int, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var out []Candidate
	for _, id := range ids {
		res := results[id]
		if !res.SAT {
			continue
		}
		input := append([]float64(nil), plan.Base...)
		values := make(map[string]float64, len(plan.SymbolicVars))
		complete := true
		for _, sv := range plan.SymbolicVars {
			idx, ok := prg.Vars[sv.Name]
			if !ok {
				complete = false
				break
			}
			v, ok := res.Assignment[idx]
			if !ok {
				complete = false
				break
			}
			input[sv.Index] = v
			values[sv.Name] = v
		}
		if !complete {
			continue
		}
		out = append(out, Candidate{Input: input, Values: values})
	}
	return out
}

// Execute runs the whole search on eng: compile the plan's program, seed
// the concrete state, aim at the guarded return, and map satisfiable paths
// back to candidate inputs.
func Execute(eng Engine, plan *Plan) ([]Candidate, error) {
	if plan == nil {
		return nil, fmt.Errorf("nil plan")
	}
	prg, err := eng.Compile(plan.Code)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	concrete, err := ConcreteState(prg, plan)
	if err != nil {
		return nil, err
	}
	targets := map[int]bool{TargetPC(prg.Instrs): true}
	results, err := eng.Run(prg, plan.Config, concrete, targets)
	if err != nil {
		return nil, fmt.Errorf("run: %w", err)
	}
	return Candidates(prg, plan, results), nil
}

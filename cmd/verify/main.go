// mlgymbo-verify: Check lowered program text against the reference forward pass
//
// Lowers the network with every feature symbolic, evaluates the program with
// the reference interpreter on random (or supplied) inputs, and compares each
// output against Network.Forward.
//
// Usage:
//
//	mlgymbo-verify --weights=model.json --samples=500 --tol=1e-6
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"

	"github.com/Koukyosyumei/mlgymbo/codegen"
	"github.com/Koukyosyumei/mlgymbo/interp"
	"github.com/Koukyosyumei/mlgymbo/utils"
)

var (
	weightsFile = flag.String("weights", "", "Weights JSON file")
	inputFile   = flag.String("input", "", "Input JSON file (random inputs if empty)")
	samples     = flag.Int("samples", 100, "Number of random inputs")
	precision   = flag.Int("precision", 8, "Decimal digits for number literals")
	tol         = flag.Float64("tol", 1e-6, "Maximum tolerated absolute deviation")
	seed        = flag.Int64("seed", 42, "Random seed")
	low         = flag.Float64("low", 0, "Random input lower bound")
	high        = flag.Float64("high", 1, "Random input upper bound")
	verbose     = flag.Bool("verbose", true, "Verbose output")
)

func main() {
	flag.Parse()
	utils.Verbose = *verbose

	if *verbose {
		fmt.Println("╔══════════════════════════════════════════════════════════════╗")
		fmt.Println("║               MLGymbo Lowering Fidelity Check                ║")
		fmt.Println("╚══════════════════════════════════════════════════════════════╝")
	}

	if *weightsFile == "" {
		fmt.Fprintln(os.Stderr, "Error: -weights is required")
		os.Exit(1)
	}
	if *samples <= 0 {
		fmt.Fprintln(os.Stderr, "Error: -samples must be positive")
		os.Exit(1)
	}

	weights, err := utils.LoadWeights(*weightsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading weights: %v\n", err)
		os.Exit(1)
	}
	net, err := utils.BuildNetwork(weights)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building network: %v\n", err)
		os.Exit(1)
	}
	inDim, outDim := net.InDim(), net.OutDim()
	if *verbose {
		fmt.Printf("Network: %d layers, %d -> %d\n", len(net.Layers), inDim, outDim)
	}

	// Every feature is symbolic; concrete inputs arrive through the
	// interpreter environment, one program per output variable.
	allIdx := make([]int, inDim)
	for i := range allIdx {
		allIdx[i] = i
	}
	binding, err := codegen.BindVector(make([]float64, inDim), allIdx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error binding features: %v\n", err)
		os.Exit(1)
	}
	opts := codegen.DefaultOptions()
	opts.Precision = *precision
	code, err := codegen.Lower(net, binding, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error lowering network: %v\n", err)
		os.Exit(1)
	}
	progs := make([]*interp.Program, outDim)
	for j := range progs {
		progs[j], err = interp.Parse(code + fmt.Sprintf("return %s;\n", codegen.OutputVar(j)))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing lowered program: %v\n", err)
			os.Exit(1)
		}
	}

	inputs, err := buildInputs(*inputFile, inDim)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading inputs: %v\n", err)
		os.Exit(1)
	}

	maxDev := 0.0
	worst := -1
	agree := 0
	for i, x := range inputs {
		want, err := net.Forward(x)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error in forward pass: %v\n", err)
			os.Exit(1)
		}
		env := make(map[string]float64, inDim)
		for k, v := range x {
			env[codegen.SymbolName(k)] = v
		}
		got := make([]float64, outDim)
		for j, prog := range progs {
			got[j], err = prog.Run(env)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error interpreting program: %v\n", err)
				os.Exit(1)
			}
		}
		for j := range got {
			if d := math.Abs(got[j] - want[j]); d > maxDev {
				maxDev, worst = d, i
			}
		}
		if argmax(got) == argmax(want) {
			agree++
		}
	}

	fmt.Printf("Checked %d inputs at precision %d\n", len(inputs), *precision)
	fmt.Printf("Max |program - forward| deviation: %g\n", maxDev)
	fmt.Printf("Prediction agreement: %d/%d\n", agree, len(inputs))
	if worst >= 0 && *verbose {
		fmt.Printf("Worst input index: %d\n", worst)
	}

	if maxDev > *tol {
		fmt.Fprintf(os.Stderr, "Error: deviation %g exceeds tolerance %g\n", maxDev, *tol)
		os.Exit(1)
	}
	fmt.Println("OK")
}

func buildInputs(path string, dim int) ([][]float64, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var x []float64
		if err := json.Unmarshal(data, &x); err != nil {
			return nil, fmt.Errorf("failed to parse input vector: %w", err)
		}
		if len(x) != dim {
			return nil, fmt.Errorf("input has %d features, network expects %d", len(x), dim)
		}
		return [][]float64{x}, nil
	}

	rng := rand.New(rand.NewSource(*seed))
	inputs := make([][]float64, *samples)
	for i := range inputs {
		x := make([]float64, dim)
		for j := range x {
			x[j] = *low + rng.Float64()*(*high-*low)
		}
		inputs[i] = x
	}
	return inputs, nil
}

func argmax(vals []float64) int {
	best := 0
	for i, v := range vals {
		if v > vals[best] {
			best = i
		}
	}
	return best
}

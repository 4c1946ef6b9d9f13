// mlgymbo-lower: Lower a trained network into engine program text
//
// Usage:
//
//	mlgymbo-lower --weights=model.json --input=input.json --symbolic="0 1" --out=prog.txt
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Koukyosyumei/mlgymbo/codegen"
	"github.com/Koukyosyumei/mlgymbo/utils"
)

var (
	weightsFile = flag.String("weights", "", "Weights JSON file")
	inputFile   = flag.String("input", "", "Input JSON file (zero vector if empty)")
	inlineInput = flag.String("x", "", "Inline input vector, e.g. \"0.5 0.25\" (overrides -input)")
	symbolic    = flag.String("symbolic", "", "Whitespace-separated symbolic feature indices")
	precision   = flag.Int("precision", 8, "Decimal digits for number literals")
	outFile     = flag.String("out", "", "Output program file (stdout if empty)")
	verbose     = flag.Bool("verbose", true, "Verbose output")
)

// Progress and timing go to stderr; stdout carries only the program text.
func main() {
	flag.Parse()
	utils.Verbose = *verbose
	utils.Output = os.Stderr

	if *verbose {
		fmt.Fprintln(os.Stderr, "╔══════════════════════════════════════════════════════════════╗")
		fmt.Fprintln(os.Stderr, "║                   MLGymbo Program Lowering                   ║")
		fmt.Fprintln(os.Stderr, "╚══════════════════════════════════════════════════════════════╝")
	}

	if *weightsFile == "" {
		fmt.Fprintln(os.Stderr, "Error: -weights is required")
		os.Exit(1)
	}
	indices, err := utils.ParseIndexList(*symbolic)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing symbolic indices: %v\n", err)
		os.Exit(1)
	}

	stats := &utils.TimingStats{}
	totalStart := time.Now()

	start := time.Now()
	weights, err := utils.LoadWeights(*weightsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading weights: %v\n", err)
		os.Exit(1)
	}
	stats.ModelLoadTime = time.Since(start)

	start = time.Now()
	net, err := utils.BuildNetwork(weights)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building network: %v\n", err)
		os.Exit(1)
	}
	stats.BuildTime = time.Since(start)
	if *verbose {
		fmt.Fprintf(os.Stderr, "Network: %d layers, %d -> %d\n", len(net.Layers), net.InDim(), net.OutDim())
	}

	var x []float64
	switch {
	case *inlineInput != "":
		x, err = utils.ParseVector(*inlineInput)
	case *inputFile != "":
		x, err = loadInput(*inputFile)
	default:
		x = make([]float64, net.InDim())
		if *verbose {
			fmt.Fprintf(os.Stderr, "No input given, binding a zero vector of dim %d\n", net.InDim())
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading input: %v\n", err)
		os.Exit(1)
	}

	binding, err := codegen.BindVector(x, indices)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error binding input: %v\n", err)
		os.Exit(1)
	}

	start = time.Now()
	opts := codegen.DefaultOptions()
	opts.Precision = *precision
	code, err := codegen.Lower(net, binding, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error lowering network: %v\n", err)
		os.Exit(1)
	}
	stats.LoweringTime = time.Since(start)
	stats.TotalTime = time.Since(totalStart)

	if *outFile != "" {
		if err := os.WriteFile(*outFile, []byte(code), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing program: %v\n", err)
			os.Exit(1)
		}
		if *verbose {
			fmt.Fprintf(os.Stderr, "Wrote %d bytes to %s\n", len(code), *outFile)
		}
	} else {
		fmt.Print(code)
	}

	if *verbose {
		utils.PrintTimingStats(stats)
	}
}

func loadInput(path string) ([]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var x []float64
	if err := json.Unmarshal(data, &x); err != nil {
		return nil, fmt.Errorf("failed to parse input vector: %w", err)
	}
	return x, nil
}

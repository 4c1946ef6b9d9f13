// mlgymbo-attack: Build an adversarial-input search plan for a trained network
//
// Lowers the network around a base input, appends the misclassification
// guard, and writes the program text plus a JSON sidecar with everything the
// downstream engine needs. Optionally records the plan in a store and checks
// an engine-found candidate with the reference interpreter.
//
// Usage:
//
//	mlgymbo-attack --weights=model.json --input=input.json --symbolic="0 1" \
//	    --out=prog.txt --plan=plan.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Koukyosyumei/mlgymbo/attack"
	"github.com/Koukyosyumei/mlgymbo/codegen"
	"github.com/Koukyosyumei/mlgymbo/interp"
	"github.com/Koukyosyumei/mlgymbo/nn"
	"github.com/Koukyosyumei/mlgymbo/store"
	"github.com/Koukyosyumei/mlgymbo/utils"
)

var (
	weightsFile   = flag.String("weights", "", "Weights JSON file")
	inputFile     = flag.String("input", "", "Base input JSON file")
	symbolic      = flag.String("symbolic", "", "Whitespace-separated symbolic feature indices")
	label         = flag.Int("label", -1, "Original class label (-1 = predict with the network)")
	precision     = flag.Int("precision", 8, "Decimal digits for number literals")
	outFile       = flag.String("out", "", "Program text output file (stdout if empty)")
	planFile      = flag.String("plan", "", "Plan metadata JSON output file")
	storeKind     = flag.String("store", "", "Record store backend: memory or sqlite")
	dbPath        = flag.String("db", "", "SQLite database path")
	candidateFile = flag.String("candidate", "", "Candidate input JSON to check against the plan")
	numItrs       = flag.Int("itrs", 100, "Gradient-descent iterations per path")
	stepSize      = flag.Float64("step", 0.01, "Gradient-descent step size")
	eps           = flag.Float64("eps", 1e-9, "Constraint satisfaction tolerance")
	seed          = flag.Int("seed", 42, "Engine random seed")
	paramLow      = flag.Float64("low", 0, "Lower bound for symbolic features")
	paramHigh     = flag.Float64("high", 1, "Upper bound for symbolic features")
	verbose       = flag.Bool("verbose", true, "Verbose output")
)

// planMeta is the sidecar handed to the engine runner alongside the program.
type planMeta struct {
	Digest       string               `json:"digest"`
	Predicted    int                  `json:"predicted"`
	SymbolicVars []attack.SymbolicVar `json:"symbolic_vars"`
	Base         []float64            `json:"base"`
	Precision    int                  `json:"precision"`
	Config       attack.SearchConfig  `json:"config"`
}

func main() {
	flag.Parse()
	utils.Verbose = *verbose

	if *verbose {
		fmt.Println("╔══════════════════════════════════════════════════════════════╗")
		fmt.Println("║              MLGymbo Adversarial Attack Planner              ║")
		fmt.Println("╚══════════════════════════════════════════════════════════════╝")
	}

	indices, err := utils.ParseIndexList(*symbolic)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing symbolic indices: %v\n", err)
		os.Exit(1)
	}
	runCfg := &utils.Config{
		WeightsFile:     *weightsFile,
		InputFile:       *inputFile,
		SymbolicIndices: indices,
		Precision:       *precision,
		Eps:             *eps,
		Store:           *storeKind,
		DBPath:          *dbPath,
	}
	if err := utils.ValidateConfig(runCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *inputFile == "" {
		fmt.Fprintln(os.Stderr, "Error: -input is required")
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
		fmt.Printf("Network: %d layers, %d -> %d\n", len(net.Layers), net.InDim(), net.OutDim())
	}

	x, err := loadVector(*inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading input: %v\n", err)
		os.Exit(1)
	}

	searchCfg := attack.DefaultSearchConfig()
	searchCfg.NumItrs = *numItrs
	searchCfg.StepSize = *stepSize
	searchCfg.Eps = *eps
	searchCfg.Seed = *seed
	searchCfg.ParamLow = *paramLow
	searchCfg.ParamHigh = *paramHigh

	opts := codegen.DefaultOptions()
	opts.Precision = *precision

	start = time.Now()
	var plan *attack.Plan
	if *label >= 0 {
		plan, err = attack.NewPlanForLabel(net, x, *label, indices, searchCfg, opts)
	} else {
		plan, err = attack.NewPlan(net, x, indices, searchCfg, opts)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building plan: %v\n", err)
		os.Exit(1)
	}
	stats.LoweringTime = time.Since(start)

	digest := store.Digest(plan.Code)
	if *verbose {
		fmt.Printf("Original class: %d\n", plan.Predicted)
		fmt.Printf("Symbolic features: %d of %d\n", len(plan.SymbolicVars), net.InDim())
		fmt.Printf("Program digest: %s\n", digest)
	}

	if *outFile != "" {
		if err := os.WriteFile(*outFile, []byte(plan.Code), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing program: %v\n", err)
			os.Exit(1)
		}
		if *verbose {
			fmt.Printf("Wrote program to %s\n", *outFile)
		}
	} else {
		fmt.Println("\n--- program ---")
		fmt.Println(plan.Code)
	}

	if *planFile != "" {
		meta := planMeta{
			Digest:       digest,
			Predicted:    plan.Predicted,
			SymbolicVars: plan.SymbolicVars,
			Base:         plan.Base,
			Precision:    *precision,
			Config:       plan.Config,
		}
		if err := writeJSON(*planFile, &meta); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing plan metadata: %v\n", err)
			os.Exit(1)
		}
		if *verbose {
			fmt.Printf("Wrote plan metadata to %s\n", *planFile)
		}
	}

	candidateOK := true
	var results []attack.Candidate
	if *candidateFile != "" {
		cand, err := checkCandidate(*candidateFile, net, plan, stats)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error checking candidate: %v\n", err)
			os.Exit(1)
		}
		if cand != nil {
			results = append(results, *cand)
		} else {
			candidateOK = false
		}
	}

	if *storeKind != "" {
		start = time.Now()
		if err := record(plan, results); err != nil {
			fmt.Fprintf(os.Stderr, "Error recording plan: %v\n", err)
			os.Exit(1)
		}
		stats.StoreTime = time.Since(start)
		if *verbose {
			fmt.Printf("Recorded plan under digest %s\n", digest[:12])
		}
	}

	stats.TotalTime = time.Since(totalStart)
	if *verbose {
		utils.PrintTimingStats(stats)
	}
	if !candidateOK {
		os.Exit(1)
	}
}

// checkCandidate replays the plan program on a candidate input with the
// reference interpreter. Returns the candidate when it takes the
// adversarial branch, nil when it does not.
func checkCandidate(path string, net nn.Network, plan *attack.Plan, stats *utils.TimingStats) (*attack.Candidate, error) {
	x, err := loadVector(path)
	if err != nil {
		return nil, err
	}
	if len(x) != net.InDim() {
		return nil, fmt.Errorf("candidate has %d features, network expects %d", len(x), net.InDim())
	}

	start := time.Now()
	prog, err := interp.Parse(plan.Code)
	if err != nil {
		return nil, fmt.Errorf("plan program does not parse: %w", err)
	}
	env := make(map[string]float64, len(plan.SymbolicVars))
	for _, sv := range plan.SymbolicVars {
		env[sv.Name] = x[sv.Index]
	}
	verdict, err := prog.Run(env)
	stats.InterpTime = time.Since(start)
	if err != nil {
		return nil, err
	}

	flipped, err := net.Predict(x)
	if err != nil {
		return nil, err
	}
	fmt.Println("\nCandidate check:")
	if verdict != 0 {
		fmt.Println("  Program verdict: ADVERSARIAL (return 1)")
	} else {
		fmt.Println("  Program verdict: not adversarial (return 0)")
	}
	fmt.Printf("  Network prediction: %d (original %d)\n", flipped, plan.Predicted)

	if verdict == 0 {
		return nil, nil
	}
	return &attack.Candidate{Input: x, Values: env}, nil
}

func record(plan *attack.Plan, results []attack.Candidate) error {
	ctx := context.Background()
	st, err := store.NewStore(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer store.CloseIfSupported(st)
	if err := st.Init(ctx); err != nil {
		return err
	}
	if err := st.SaveProgram(ctx, store.NewProgramRecord(plan.Code, *precision)); err != nil {
		return err
	}
	return st.SaveRun(ctx, store.NewRunRecord(plan.Code, plan.Config, results))
}

func loadVector(path string) ([]float64, error) {
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

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

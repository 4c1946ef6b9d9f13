package attack

import "fmt"

// SearchConfig carries the gradient-descent and path-exploration parameters
// handed to the downstream engine.
type SearchConfig struct {
	NumItrs             int     `json:"num_itrs"`
	StepSize            float64 `json:"step_size"`
	Eps                 float64 `json:"eps"`
	ParamLow            float64 `json:"param_low"`
	ParamHigh           float64 `json:"param_high"`
	SignGrad            bool    `json:"sign_grad"`
	InitParamUniformInt bool    `json:"init_param_uniform_int"`
	Seed                int     `json:"seed"`
	MaxDepth            int     `json:"max_depth"`
	MaxSAT              int     `json:"max_sat"`
	MaxUNSAT            int     `json:"max_unsat"`
	MaxNumTrials        int     `json:"max_num_trials"`
	IgnoreMemory        bool    `json:"ignore_memory"`
	UseDPLL             bool    `json:"use_dpll"`
	VerboseLevel        int     `json:"verbose_level"`
}

// DefaultSearchConfig returns the settings the published attack scripts use.
// ParamLow and ParamHigh default to the unit interval and normally come from
// the dataset's value range.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		NumItrs:      100,
		StepSize:     0.01,
		Eps:          1e-9,
		ParamLow:     0,
		ParamHigh:    1,
		Seed:         42,
		MaxDepth:     65536,
		MaxSAT:       2,
		MaxUNSAT:     10,
		MaxNumTrials: 10,
		VerboseLevel: 1,
	}
}

// Validate rejects parameter combinations the engine cannot run with.
func (c SearchConfig) Validate() error {
	if c.NumItrs <= 0 {
		return fmt.Errorf("NumItrs must be positive, got %d", c.NumItrs)
	}
	if c.StepSize <= 0 {
		return fmt.Errorf("StepSize must be positive, got %v", c.StepSize)
	}
	if c.Eps <= 0 {
		return fmt.Errorf("Eps must be positive, got %v", c.Eps)
	}
	if !(c.ParamLow <= c.ParamHigh) {
		return fmt.Errorf("invalid parameter range [%v, %v]", c.ParamLow, c.ParamHigh)
	}
	if c.MaxDepth <= 0 {
		return fmt.Errorf("MaxDepth must be positive, got %d", c.MaxDepth)
	}
	if c.MaxSAT <= 0 {
		return fmt.Errorf("MaxSAT must be positive, got %d", c.MaxSAT)
	}
	if c.MaxUNSAT <= 0 {
		return fmt.Errorf("MaxUNSAT must be positive, got %d", c.MaxUNSAT)
	}
	if c.MaxNumTrials <= 0 {
		return fmt.Errorf("MaxNumTrials must be positive, got %d", c.MaxNumTrials)
	}
	if c.VerboseLevel < 0 {
		return fmt.Errorf("VerboseLevel must be non-negative, got %d", c.VerboseLevel)
	}
	return nil
}

package model

// RunStats 本批次新执行实验的结果计数
type RunStats struct {
	Solved  int `json:"solved"`
	Failed  int `json:"failed"`
	Timeout int `json:"timeout"`
	Skipped int `json:"skipped"`
}

// RunSummary run_summary.json
type RunSummary struct {
	RunUUID            string           `json:"run_uuid"`
	Timestamp          string           `json:"timestamp"`
	TotalPossible      int              `json:"total_possible"`
	Blacklisted        int              `json:"blacklisted"`
	ExistingSuccessful int              `json:"existing_successful"`
	ExperimentsRun     int              `json:"experiments_run"`
	Stats              RunStats         `json:"stats"`
	TotalSolved        int              `json:"total_solved"`
	SuccessRate        float64          `json:"success_rate"`
	Planners           []string         `json:"planners"`
	Domains            []string         `json:"domains"`
	ResultsDirectory   string           `json:"results_directory"`
	DebugDirectory     string           `json:"debug_directory"`
	Blacklist          []ExperimentKey  `json:"blacklist"`
	PlannerStats       map[string]Rate  `json:"planner_stats"`
	Tests              map[string]ZTest `json:"tests,omitempty"`
}

// ExperimentKey (planner, domain, problem) 唯一标识一个实验
type ExperimentKey struct {
	Planner string `json:"planner"`
	Domain  string `json:"domain"`
	Problem string `json:"problem"`
}

func (k ExperimentKey) String() string {
	return k.Planner + "_" + k.Domain + "_" + k.Problem
}

// Rate 某个 planner 的求解率及 Wilson 95% 置信区间（不含黑名单）
type Rate struct {
	N        int     `json:"n"`
	Solved   int     `json:"solved"`
	Rate     float64 `json:"rate"`
	CI95Low  float64 `json:"ci95_low"`
	CI95High float64 `json:"ci95_high"`
}

// ZTest 两个 planner 求解率的双比例 z 检验
type ZTest struct {
	PValue float64 `json:"p_value"`
	Z      float64 `json:"z"`
}

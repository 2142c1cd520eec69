package model

// ExperimentResult 单次实验的结果记录，字段名与历史产物保持一致
type ExperimentResult struct {
	Domain       string           `json:"domain"`
	Planner      string           `json:"planner"`
	Problem      string           `json:"problem"`
	Timestamp    string           `json:"timestamp"`
	TimeoutUsed  int              `json:"timeout_used"`
	Solved       bool             `json:"solved"`
	Time         float64          `json:"time"`
	Plan         []string         `json:"plan"`
	PlanLength   int              `json:"plan_length"`
	Raw          map[string]any   `json:"raw"`
	Error        string           `json:"error,omitempty"`
	ProgressInfo ProgressSnapshot `json:"progress_info"`
	Skipped      bool             `json:"skipped,omitempty"`
}

// Valid 成功产物必须满足 solved 且 plan_length == len(plan) > 0
func (r *ExperimentResult) Valid() bool {
	return r != nil && r.Solved && r.PlanLength > 0 && r.PlanLength == len(r.Plan)
}

// PollRecord 轮询历史中的一条，超时时落盘用于事后分析
type PollRecord struct {
	TimeElapsed float64 `json:"time_elapsed"`
	Status      string  `json:"status"`
	HasResult   bool    `json:"has_result"`
	Error       string  `json:"error,omitempty"`
}

// TimeoutReport TIMEOUT_* 产物
type TimeoutReport struct {
	Domain            string           `json:"domain"`
	Planner           string           `json:"planner"`
	Problem           string           `json:"problem"`
	Timestamp         string           `json:"timestamp"`
	TimeoutUsed       int              `json:"timeout_used"`
	TotalTime         float64          `json:"total_time"`
	Error             string           `json:"error"`
	LastPollResponses []PollRecord     `json:"last_poll_responses"`
	ResultURL         string           `json:"result_url"`
	FinalProgress     ProgressSnapshot `json:"final_progress"`
	Notes             string           `json:"notes"`
}

// DebugSnapshot DEBUG_* 产物：求解进行中的进度快照
type DebugSnapshot struct {
	Domain      string           `json:"domain"`
	Planner     string           `json:"planner"`
	Problem     string           `json:"problem"`
	Timestamp   string           `json:"timestamp"`
	ElapsedTime float64          `json:"elapsed_time"`
	Progress    ProgressSnapshot `json:"progress"`
}

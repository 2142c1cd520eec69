package model

// ProgressSnapshot 从求解器 stdout 中抽取的搜索进度，所有字段可缺省
type ProgressSnapshot struct {
	InitializationTime *float64 `json:"initialization_time,omitempty"`
	SelectedConfig     string   `json:"selected_config,omitempty"`
	GValue             *int     `json:"g_value,omitempty"`
	Evaluated          *int     `json:"evaluated,omitempty"`
	Expanded           *int     `json:"expanded,omitempty"`
	SearchTime         *float64 `json:"search_time,omitempty"`
	CurrentF           *int     `json:"current_f,omitempty"`
	FProgression       []int    `json:"f_progression,omitempty"`
	HProgression       []int    `json:"h_progression,omitempty"`
	// signal / timeout
	Terminated string `json:"terminated,omitempty"`
}

// IsEmpty 没有任何字段被观测到
func (p ProgressSnapshot) IsEmpty() bool {
	return p.InitializationTime == nil && p.SelectedConfig == "" && p.GValue == nil &&
		p.Evaluated == nil && p.Expanded == nil && p.SearchTime == nil && p.CurrentF == nil &&
		len(p.FProgression) == 0 && len(p.HProgression) == 0 && p.Terminated == ""
}

// MergeFrom 用 prev 补齐本快照缺失的字段；同一轮询会话内信息只增不减
func (p ProgressSnapshot) MergeFrom(prev ProgressSnapshot) ProgressSnapshot {
	if p.InitializationTime == nil {
		p.InitializationTime = prev.InitializationTime
	}
	if p.SelectedConfig == "" {
		p.SelectedConfig = prev.SelectedConfig
	}
	if p.Evaluated == nil {
		p.GValue, p.Evaluated, p.Expanded, p.SearchTime = prev.GValue, prev.Evaluated, prev.Expanded, prev.SearchTime
	}
	if p.CurrentF == nil {
		p.CurrentF = prev.CurrentF
		p.FProgression = prev.FProgression
	}
	if len(p.HProgression) == 0 {
		p.HProgression = prev.HProgression
	}
	if p.Terminated == "" {
		p.Terminated = prev.Terminated
	}
	return p
}

// EvaluatedOr 缺省时返回 def
func (p ProgressSnapshot) EvaluatedOr(def int) int {
	if p.Evaluated == nil {
		return def
	}
	return *p.Evaluated
}

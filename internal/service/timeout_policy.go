package service

import (
	"strings"

	"planbench/internal/config"
)

// DefaultTimeoutSeconds 未知 planner 且配置未给出全局默认值时的兜底
const DefaultTimeoutSeconds = 1800

// TimeoutPolicy 按 (planner, 文件名子串) 查超时。文件名里的 facil/medio/dificil、
// LOGISTICS-N、instance-N 粗略对应难度，不去解析 PDDL 本身
type TimeoutPolicy struct {
	table    config.PlannerTimeouts
	fallback int
}

func NewTimeoutPolicy(cfg config.TimeoutConfig) *TimeoutPolicy {
	fallback := cfg.Default
	if fallback <= 0 {
		fallback = DefaultTimeoutSeconds
	}
	return &TimeoutPolicy{table: cfg.Planners, fallback: fallback}
}

// GetTimeout 按书写顺序返回第一个命中子串的超时；否则 planner 的 default；再否则全局默认。
// 总是返回正数
func (p *TimeoutPolicy) GetTimeout(planner, problem string) int {
	pt, ok := p.table.Lookup(planner)
	if !ok {
		return p.fallback
	}
	for _, r := range pt.Rules {
		if r.Pattern != "" && r.Seconds > 0 && strings.Contains(problem, r.Pattern) {
			return r.Seconds
		}
	}
	if pt.Default > 0 {
		return pt.Default
	}
	return p.fallback
}

// Table 供状态接口展示
func (p *TimeoutPolicy) Table() config.PlannerTimeouts {
	return p.table
}

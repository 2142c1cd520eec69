package service

// PlannerStatus 单个 planner 的完成情况；有效总数不含黑名单
type PlannerStatus struct {
	Planner     string  `json:"planner"`
	Solved      int     `json:"solved"`
	Missing     int     `json:"missing"`
	Blacklisted int     `json:"blacklisted"`
	Effective   int     `json:"effective"`
	Rate        float64 `json:"rate"`
}

// StatusReport 整个矩阵的完成情况，只读结果缓存，不发起任何请求
type StatusReport struct {
	Total       int             `json:"total"`
	Blacklisted int             `json:"blacklisted"`
	Completed   int             `json:"completed"`
	Missing     int             `json:"missing"`
	ByPlanner   []PlannerStatus `json:"by_planner"`
}

func BuildStatus(planners []string, problems []ProblemRef, registry *SkipRegistry, cache *ResultCache) StatusReport {
	report := StatusReport{Total: len(planners) * len(problems)}
	for _, planner := range planners {
		ps := PlannerStatus{Planner: planner}
		for _, ref := range problems {
			if registry.IsBlacklisted(planner, ref.Domain, ref.Problem) {
				ps.Blacklisted++
				continue
			}
			if ok, _ := cache.CheckExisting(ref.Domain, planner, ref.Problem); ok {
				ps.Solved++
			} else {
				ps.Missing++
			}
		}
		ps.Effective = ps.Solved + ps.Missing
		if ps.Effective > 0 {
			ps.Rate = float64(ps.Solved) / float64(ps.Effective) * 100
		}
		report.Blacklisted += ps.Blacklisted
		report.Completed += ps.Solved
		report.Missing += ps.Missing
		report.ByPlanner = append(report.ByPlanner, ps)
	}
	return report
}

// Status 当前矩阵的完成情况
func (r *ExperimentRunner) Status() StatusReport {
	return BuildStatus(r.planners, r.catalog.Problems(), r.registry, r.cache)
}

package service

import (
	"fmt"
	"sort"

	"planbench/internal/model"
)

// 每个 planner 少于该有效样本数时不下结论
const minConclusionSamples = 10

// Conclusion 基于求解率与两两检验生成的自动结论（工程简化版）
type Conclusion struct {
	Verdict string   `json:"verdict"`
	Best    string   `json:"best,omitempty"`
	Claims  []string `json:"claims"`
	Caveats []string `json:"caveats"`
}

// GenerateConclusion 找出求解率最高的 planner，并检查它相对其余 planner 是否显著（p<0.05）
func GenerateConclusion(sum *model.RunSummary) Conclusion {
	out := Conclusion{Verdict: "insufficient_data", Claims: []string{}, Caveats: []string{}}

	var planners []string
	for _, p := range sum.Planners {
		r, ok := sum.PlannerStats[p]
		if !ok {
			continue
		}
		if r.N < minConclusionSamples {
			out.Caveats = append(out.Caveats, fmt.Sprintf("%s 有效样本仅 %d 个，不参与比较（建议 >= %d）。", p, r.N, minConclusionSamples))
			continue
		}
		planners = append(planners, p)
	}
	if len(planners) < 2 {
		out.Caveats = append(out.Caveats, "可比较的 planner 少于 2 个，无法做显著性对比。")
		return out
	}

	sort.SliceStable(planners, func(i, j int) bool {
		return sum.PlannerStats[planners[i]].Rate > sum.PlannerStats[planners[j]].Rate
	})
	best := planners[0]
	out.Best = best

	significant := true
	for _, other := range planners[1:] {
		p, z, ok := lookupZTest(sum.Tests, best, other)
		if !ok {
			significant = false
			continue
		}
		if p < 0.05 && z > 0 {
			out.Claims = append(out.Claims, fmt.Sprintf("%s 的求解率（%.1f%%）显著高于 %s（%.1f%%），p=%.4f。",
				best, sum.PlannerStats[best].Rate*100, other, sum.PlannerStats[other].Rate*100, p))
		} else {
			significant = false
			out.Claims = append(out.Claims, fmt.Sprintf("%s 与 %s 的求解率差异不显著（p=%.4f）。", best, other, p))
		}
	}
	if significant {
		out.Verdict = "best_planner_supported"
	} else {
		out.Verdict = "no_significant_difference"
	}

	if sum.Blacklisted > 0 {
		out.Caveats = append(out.Caveats, fmt.Sprintf("%d 个黑名单组合未计入求解率。", sum.Blacklisted))
	}
	if sum.Stats.Timeout > 0 {
		out.Caveats = append(out.Caveats, "超时按未求解计，结论依赖各 planner 的超时配置。")
	}
	return out
}

// lookupZTest 返回 “a 相对 b” 的 p 与 z（z > 0 表示 a 更高）
func lookupZTest(tests map[string]model.ZTest, a, b string) (float64, float64, bool) {
	if t, ok := tests[a+"_vs_"+b]; ok {
		return t.PValue, t.Z, true
	}
	if t, ok := tests[b+"_vs_"+a]; ok {
		return t.PValue, -t.Z, true
	}
	return 1, 0, false
}

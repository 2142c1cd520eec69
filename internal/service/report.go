package service

import (
	"fmt"
	"sort"
	"strings"

	"planbench/internal/model"
)

// RenderSummaryMarkdown run_summary.md：批次计数、各 planner 求解率和两两显著性
func RenderSummaryMarkdown(sum *model.RunSummary, errs []string) string {
	var b strings.Builder
	b.WriteString("# 实验运行汇总\n\n")
	b.WriteString(fmt.Sprintf("- run_uuid: %s\n", sum.RunUUID))
	b.WriteString(fmt.Sprintf("- timestamp: %s\n", sum.Timestamp))
	b.WriteString(fmt.Sprintf("- planners: %s\n", strings.Join(sum.Planners, ", ")))
	b.WriteString(fmt.Sprintf("- domains: %s\n\n", strings.Join(sum.Domains, ", ")))

	b.WriteString("## 本批次\n\n")
	b.WriteString("| 项 | 数量 |\n")
	b.WriteString("| --- | ---: |\n")
	b.WriteString(fmt.Sprintf("| total_possible | %d |\n", sum.TotalPossible))
	b.WriteString(fmt.Sprintf("| blacklisted | %d |\n", sum.Blacklisted))
	b.WriteString(fmt.Sprintf("| existing_successful | %d |\n", sum.ExistingSuccessful))
	b.WriteString(fmt.Sprintf("| experiments_run | %d |\n", sum.ExperimentsRun))
	b.WriteString(fmt.Sprintf("| solved | %d |\n", sum.Stats.Solved))
	b.WriteString(fmt.Sprintf("| failed | %d |\n", sum.Stats.Failed))
	b.WriteString(fmt.Sprintf("| timeout | %d |\n", sum.Stats.Timeout))
	b.WriteString(fmt.Sprintf("| total_solved | %d |\n", sum.TotalSolved))
	b.WriteString(fmt.Sprintf("| success_rate | %.1f%% |\n\n", sum.SuccessRate))

	b.WriteString("## 各 planner 求解率（不含黑名单）\n\n")
	b.WriteString("| planner | N | solved | rate | CI95 |\n")
	b.WriteString("| --- | ---: | ---: | ---: | --- |\n")
	for _, p := range sum.Planners {
		r, ok := sum.PlannerStats[p]
		if !ok {
			continue
		}
		b.WriteString(fmt.Sprintf("| %s | %d | %d | %.3f | [%.3f, %.3f] |\n",
			p, r.N, r.Solved, r.Rate, r.CI95Low, r.CI95High))
	}
	b.WriteString("\n")

	b.WriteString("## 显著性检验\n\n")
	if len(sum.Tests) == 0 {
		b.WriteString("- 无（样本不足）\n\n")
	} else {
		names := make([]string, 0, len(sum.Tests))
		for k := range sum.Tests {
			names = append(names, k)
		}
		sort.Strings(names)
		b.WriteString("| 对比 | z | p |\n")
		b.WriteString("| --- | ---: | ---: |\n")
		for _, k := range names {
			t := sum.Tests[k]
			b.WriteString(fmt.Sprintf("| %s | %.3f | %.4f |\n", k, t.Z, t.PValue))
		}
		b.WriteString("\n")
	}

	c := GenerateConclusion(sum)
	b.WriteString("## 自动结论\n\n")
	b.WriteString(fmt.Sprintf("- verdict: %s\n", c.Verdict))
	if len(c.Claims) > 0 {
		b.WriteString("\n### 主要论断\n\n")
		for _, claim := range c.Claims {
			b.WriteString(fmt.Sprintf("- %s\n", claim))
		}
	}
	if len(c.Caveats) > 0 {
		b.WriteString("\n### 注意事项/局限\n\n")
		for _, caveat := range c.Caveats {
			b.WriteString(fmt.Sprintf("- %s\n", caveat))
		}
	}
	b.WriteString("\n")

	if len(errs) > 0 {
		b.WriteString("## 执行错误\n\n")
		max := len(errs)
		if max > 20 {
			max = 20
		}
		for i := 0; i < max; i++ {
			b.WriteString(fmt.Sprintf("- %s\n", errs[i]))
		}
		if len(errs) > max {
			b.WriteString(fmt.Sprintf("- ...(剩余 %d 条省略)\n", len(errs)-max))
		}
	}
	return b.String()
}

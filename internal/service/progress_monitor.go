package service

import (
	"regexp"
	"strconv"
	"strings"

	"planbench/internal/model"
)

var (
	msInitRe   = regexp.MustCompile(`Done initializing merge-and-shrink heuristic \[(\d+\.\d+)s\]`)
	chosenRe   = regexp.MustCompile(`Chose ([^\n]+)`)
	searchRe   = regexp.MustCompile(`\[g=(\d+), (\d+) evaluated, (\d+) expanded, t=([\d.]+)s`)
	fValueRe   = regexp.MustCompile(`f = (\d+)`)
	hImproveRe = regexp.MustCompile(`New best heuristic value[^:]+: (\d+)`)
)

// evaluated 增量超过该值才算“有意义的进展”
const debugEvaluatedDelta = 1000

// MonitorProgress 从（可能不完整的）stdout 中抽取搜索进度。纯函数，同一文本结果相同
func MonitorProgress(stdout string) model.ProgressSnapshot {
	var p model.ProgressSnapshot

	if m := msInitRe.FindStringSubmatch(stdout); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			p.InitializationTime = &v
		}
	}

	if all := chosenRe.FindAllStringSubmatch(stdout, -1); len(all) > 0 {
		p.SelectedConfig = strings.TrimSpace(all[len(all)-1][1])
	}

	if all := searchRe.FindAllStringSubmatch(stdout, -1); len(all) > 0 {
		last := all[len(all)-1]
		g, _ := strconv.Atoi(last[1])
		evaluated, _ := strconv.Atoi(last[2])
		expanded, _ := strconv.Atoi(last[3])
		t, _ := strconv.ParseFloat(last[4], 64)
		p.GValue, p.Evaluated, p.Expanded, p.SearchTime = &g, &evaluated, &expanded, &t
	}

	if fs := atoiAll(fValueRe.FindAllStringSubmatch(stdout, -1)); len(fs) > 0 {
		cur := fs[len(fs)-1]
		p.CurrentF = &cur
		p.FProgression = fs
	}

	if hs := atoiAll(hImproveRe.FindAllStringSubmatch(stdout, -1)); len(hs) > 0 {
		p.HProgression = hs
	}

	switch {
	case strings.Contains(stdout, "caught signal"):
		p.Terminated = "signal"
	case strings.Contains(strings.ToLower(stdout), "timeout"):
		p.Terminated = "timeout"
	}
	return p
}

func atoiAll(matches [][]string) []int {
	out := make([]int, 0, len(matches))
	for _, m := range matches {
		if v, err := strconv.Atoi(m[1]); err == nil {
			out = append(out, v)
		}
	}
	return out
}

// DebugTracker 记录每个实验最近一次落盘的快照，用于节流 DEBUG 产物。
// 随进程存活，同一实验在进程内重跑时沿用上次的记录。只在执行控制器的单线程里使用
type DebugTracker struct {
	last map[model.ExperimentKey]model.ProgressSnapshot
}

func NewDebugTracker() *DebugTracker {
	return &DebugTracker{last: map[model.ExperimentKey]model.ProgressSnapshot{}}
}

// ShouldSaveDebug 首次总是保存；之后 evaluated 增量 > 1000 或 current_f 变化才保存。
// 返回 true 时同时更新记录
func (t *DebugTracker) ShouldSaveDebug(key model.ExperimentKey, snap model.ProgressSnapshot) bool {
	prev, seen := t.last[key]
	if !seen ||
		snap.EvaluatedOr(0)-prev.EvaluatedOr(0) > debugEvaluatedDelta ||
		!sameIntPtr(snap.CurrentF, prev.CurrentF) {
		t.last[key] = snap
		return true
	}
	return false
}

func sameIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

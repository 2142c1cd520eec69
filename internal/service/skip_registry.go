package service

import (
	"planbench/internal/config"
	"planbench/internal/model"
)

// SkipRegistry 已确认必然失败/不支持的组合。内容来自版本化的配置文件，人工维护
type SkipRegistry struct {
	entries []model.ExperimentKey
	set     map[model.ExperimentKey]struct{}
}

func NewSkipRegistry(entries []config.BlacklistEntry) *SkipRegistry {
	r := &SkipRegistry{set: make(map[model.ExperimentKey]struct{}, len(entries))}
	for _, e := range entries {
		k := model.ExperimentKey{Planner: e.Planner, Domain: e.Domain, Problem: e.Problem}
		if _, dup := r.set[k]; dup {
			continue
		}
		r.set[k] = struct{}{}
		r.entries = append(r.entries, k)
	}
	return r
}

func (r *SkipRegistry) IsBlacklisted(planner, domain, problem string) bool {
	_, ok := r.set[model.ExperimentKey{Planner: planner, Domain: domain, Problem: problem}]
	return ok
}

// Entries 按配置顺序返回
func (r *SkipRegistry) Entries() []model.ExperimentKey {
	out := make([]model.ExperimentKey, len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *SkipRegistry) Len() int {
	return len(r.entries)
}

package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// TimeoutRule 文件名子串 -> 超时秒数
type TimeoutRule struct {
	Pattern string `json:"pattern"`
	Seconds int    `json:"seconds"`
}

// PlannerTimeout 单个 planner 的超时表；Rules 保持配置文件中的书写顺序
type PlannerTimeout struct {
	Planner string        `json:"planner"`
	Rules   []TimeoutRule `json:"rules"`
	Default int           `json:"default,omitempty"`
}

// PlannerTimeouts 用 yaml.Node 解码，保留 mapping 的键顺序（先匹配先生效）
type PlannerTimeouts []PlannerTimeout

const defaultTimeoutKey = "default"

func (p *PlannerTimeouts) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("timeouts.planners 必须是 mapping（第 %d 行）", value.Line)
	}
	out := make(PlannerTimeouts, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		name := value.Content[i].Value
		table := value.Content[i+1]
		if table.Kind != yaml.MappingNode {
			return fmt.Errorf("planner %s 的超时表必须是 mapping（第 %d 行）", name, table.Line)
		}
		pt := PlannerTimeout{Planner: name}
		for j := 0; j+1 < len(table.Content); j += 2 {
			key := table.Content[j].Value
			var seconds int
			if err := table.Content[j+1].Decode(&seconds); err != nil {
				return fmt.Errorf("planner %s 的超时 %q 不是整数: %w", name, key, err)
			}
			if key == defaultTimeoutKey {
				pt.Default = seconds
				continue
			}
			pt.Rules = append(pt.Rules, TimeoutRule{Pattern: key, Seconds: seconds})
		}
		out = append(out, pt)
	}
	*p = out
	return nil
}

// Lookup 返回指定 planner 的超时表
func (p PlannerTimeouts) Lookup(planner string) (PlannerTimeout, bool) {
	for _, pt := range p {
		if pt.Planner == planner {
			return pt, true
		}
	}
	return PlannerTimeout{}, false
}

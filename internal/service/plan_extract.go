package service

import (
	"fmt"
	"regexp"
	"strings"

	"planbench/internal/config"
)

// Dialect 求解器输出的方言
type Dialect int

const (
	DialectGeneric Dialect = iota
	// DialectFastDownward 带 "Solution found!" / "Plan length:" 标记的日志
	DialectFastDownward
)

func ParseDialect(s string) Dialect {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fast-downward", "fastdownward", "fd":
		return DialectFastDownward
	default:
		return DialectGeneric
	}
}

func (d Dialect) String() string {
	if d == DialectFastDownward {
		return "fast-downward"
	}
	return "generic"
}

// 出现这些标记说明求解器被中断，此时不信任任何输出
var abortMarkers = []string{"caught signal", "exiting"}

var (
	fdGateMarkers   = []string{"Solution found!", "Plan length:"}
	fdRegionMarkers = []string{"Solution found!", "Plan length:", "Plan cost:", "Actual search time:"}
)

// LinePattern 通用方言下的一条逐行匹配规则，Re 恰好一个捕获组，捕获动作文本
type LinePattern struct {
	Name string
	Re   *regexp.Regexp
}

// DefaultLinePatterns 裸括号 / 时序 / 编号 / step 四种常见形状，大小写不敏感
func DefaultLinePatterns() []LinePattern {
	return []LinePattern{
		{Name: "bare", Re: regexp.MustCompile(`(?i)^\s*\(([^)]+)\)\s*$`)},
		{Name: "temporal", Re: regexp.MustCompile(`(?i)^\s*[\d.]+:\s*\(([^)]+)\)(?:\s*\[[\d.]+\])?`)},
		{Name: "numbered", Re: regexp.MustCompile(`(?i)^\s*\d+:\s*\(([^)]+)\)`)},
		{Name: "step", Re: regexp.MustCompile(`(?i)^\s*step\s+\d+:\s*([A-Z\-]+(?:\s+[A-Z0-9\-]+)*)`)},
	}
}

// PlanExtractor 从求解器返回的结果对象中抽取并校验动作序列。无状态，可重复调用
type PlanExtractor struct {
	vocab    Vocabulary
	dialects map[string]Dialect
	patterns []LinePattern
	salvage  bool
	// 动作名 -> `\b<action>\s+[^()]+`
	salvageRe map[string]*regexp.Regexp
}

// NewPlanExtractor 配置中的 generic_patterns 非空时整体替换默认规则
func NewPlanExtractor(vocab Vocabulary, dialects map[string]string, ex config.ExtractionConfig) (*PlanExtractor, error) {
	e := &PlanExtractor{
		vocab:     vocab,
		dialects:  make(map[string]Dialect, len(dialects)),
		patterns:  DefaultLinePatterns(),
		salvage:   !ex.DisableSalvage,
		salvageRe: map[string]*regexp.Regexp{},
	}
	for planner, d := range dialects {
		e.dialects[planner] = ParseDialect(d)
	}
	if len(ex.GenericPatterns) > 0 {
		e.patterns = e.patterns[:0]
		for _, p := range ex.GenericPatterns {
			re, err := regexp.Compile("(?i)" + p.Regex)
			if err != nil {
				return nil, fmt.Errorf("编译匹配规则 %s 失败: %w", p.Name, err)
			}
			if re.NumSubexp() != 1 {
				return nil, fmt.Errorf("匹配规则 %s 必须恰好包含一个捕获组", p.Name)
			}
			e.patterns = append(e.patterns, LinePattern{Name: p.Name, Re: re})
		}
	}
	for _, actions := range vocab {
		for _, a := range actions {
			if _, ok := e.salvageRe[a]; ok {
				continue
			}
			e.salvageRe[a] = regexp.MustCompile(`\b` + regexp.QuoteMeta(a) + `\s+[^()]+`)
		}
	}
	return e, nil
}

// DialectFor planner 未配置时为通用方言
func (e *PlanExtractor) DialectFor(planner string) Dialect {
	return e.dialects[planner]
}

// ExtractPlan 依次尝试 output.plan、output.sas_plan、stdout，返回第一个非空的解析结果
func (e *PlanExtractor) ExtractPlan(result map[string]any, planner, domain string) []string {
	if result == nil {
		return nil
	}
	var sources []any
	if output, ok := result["output"].(map[string]any); ok {
		sources = append(sources, output["plan"], output["sas_plan"])
	}
	sources = append(sources, result["stdout"])

	for _, src := range sources {
		text := toText(src)
		if strings.TrimSpace(text) == "" {
			continue
		}
		if plan := e.ParsePlanText(text, domain, planner); len(plan) > 0 {
			return plan
		}
	}
	return nil
}

// ParsePlanText 把一段文本解析为规范化的 "(action arg ...)" 列表。
// 首个 token 不在该域动作表里的行一律丢弃；含中断标记的文本直接返回空
func (e *PlanExtractor) ParsePlanText(text, domain, planner string) []string {
	if containsAny(text, abortMarkers...) {
		return nil
	}
	actions := e.vocab.Actions(domain)
	if e.DialectFor(planner) == DialectFastDownward && containsAny(text, fdGateMarkers...) {
		if plan := e.parseFastDownward(text, actions); len(plan) > 0 {
			return plan
		}
	}
	return e.parseGeneric(text, actions)
}

func (e *PlanExtractor) parseFastDownward(text string, actions []string) []string {
	var plan []string
	inPlan := false
	for _, raw := range strings.Split(text, "\n") {
		if containsAny(raw, fdRegionMarkers...) {
			inPlan = true
			continue
		}
		if !inPlan {
			continue
		}
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, ";") || strings.Contains(line, ":") {
			continue
		}

		if strings.HasPrefix(line, "(") && strings.HasSuffix(line, ")") {
			actionText := toLowerTrim(line[1 : len(line)-1])
			parts := strings.Fields(actionText)
			if len(parts) > 0 && containsString(actions, parts[0]) {
				plan = append(plan, "("+actionText+")")
			}
			continue
		}

		if !e.salvage {
			continue
		}
		lower := strings.ToLower(line)
		for _, a := range actions {
			if !strings.Contains(lower, a) {
				continue
			}
			re, ok := e.salvageRe[a]
			if !ok {
				continue
			}
			if m := re.FindString(lower); m != "" {
				plan = append(plan, "("+strings.TrimSpace(m)+")")
				break
			}
		}
	}
	return plan
}

// parseGeneric 每行只用第一个匹配上的规则；该规则的结果没通过动作表校验时这一行作废
func (e *PlanExtractor) parseGeneric(text string, actions []string) []string {
	var plan []string
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		for _, p := range e.patterns {
			m := p.Re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			actionText := toLowerTrim(m[1])
			parts := strings.Fields(actionText)
			if len(parts) > 0 && containsString(actions, parts[0]) {
				if !strings.HasPrefix(actionText, "(") {
					actionText = "(" + actionText + ")"
				}
				plan = append(plan, actionText)
			}
			break
		}
	}
	return plan
}

package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate 先做 struct tag 校验，再做 tag 表达不了的交叉校验
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("配置为空")
	}

	if err := validate.Struct(cfg); err != nil {
		validationErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return fmt.Errorf("配置校验失败: %w", err)
		}
		var msgs []string
		for _, e := range validationErrs {
			msgs = append(msgs, formatValidationError(e))
		}
		return fmt.Errorf("配置校验失败:\n  - %s", strings.Join(msgs, "\n  - "))
	}

	var msgs []string
	for _, pt := range cfg.Timeouts.Planners {
		if pt.Default < 0 {
			msgs = append(msgs, fmt.Sprintf("timeouts.planners.%s.default 必须为正数（当前 %d）", pt.Planner, pt.Default))
		}
		for _, r := range pt.Rules {
			if r.Seconds <= 0 {
				msgs = append(msgs, fmt.Sprintf("timeouts.planners.%s.%s 必须为正数（当前 %d）", pt.Planner, r.Pattern, r.Seconds))
			}
		}
	}
	for _, p := range cfg.Extraction.GenericPatterns {
		re, err := regexp.Compile(p.Regex)
		if err != nil {
			msgs = append(msgs, fmt.Sprintf("extraction.generic_patterns.%s 正则无效: %v", p.Name, err))
			continue
		}
		if re.NumSubexp() != 1 {
			msgs = append(msgs, fmt.Sprintf("extraction.generic_patterns.%s 必须恰好包含一个捕获组（当前 %d）", p.Name, re.NumSubexp()))
		}
	}
	seen := map[string]bool{}
	for _, d := range cfg.Domains {
		if seen[d.Name] {
			msgs = append(msgs, fmt.Sprintf("domains.%s 重复定义", d.Name))
		}
		seen[d.Name] = true
	}
	if cfg.Database.Enabled && cfg.Database.Driver == "sqlite" && cfg.Database.Path == "" && cfg.Database.DSN == "" {
		msgs = append(msgs, "database.driver=sqlite 时必须设置 database.path")
	}

	if len(msgs) > 0 {
		return fmt.Errorf("配置校验失败:\n  - %s", strings.Join(msgs, "\n  - "))
	}
	return nil
}

func formatValidationError(e validator.FieldError) string {
	field := e.Namespace()
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s 不能为空", field)
	case "min":
		return fmt.Sprintf("%s 不能小于 %s（当前 %v）", field, e.Param(), e.Value())
	case "max":
		return fmt.Sprintf("%s 不能大于 %s（当前 %v）", field, e.Param(), e.Value())
	case "gt":
		return fmt.Sprintf("%s 必须大于 %s（当前 %v）", field, e.Param(), e.Value())
	case "oneof":
		return fmt.Sprintf("%s 必须是 [%s] 之一（当前 %v）", field, e.Param(), e.Value())
	case "url":
		return fmt.Sprintf("%s 不是合法 URL（当前 %v）", field, e.Value())
	default:
		return fmt.Sprintf("%s 未通过 %s 校验", field, e.Tag())
	}
}

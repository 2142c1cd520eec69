package service

import "planbench/internal/config"

// Vocabulary 每个域合法的动作名，顺序与配置一致（抢救匹配时按此顺序尝试）
type Vocabulary map[string][]string

func NewVocabulary(domains []config.DomainConfig) Vocabulary {
	v := make(Vocabulary, len(domains))
	for _, d := range domains {
		actions := make([]string, 0, len(d.Actions))
		for _, a := range d.Actions {
			actions = append(actions, toLowerTrim(a))
		}
		v[d.Name] = actions
	}
	return v
}

func (v Vocabulary) Actions(domain string) []string {
	return v[domain]
}

func (v Vocabulary) Valid(domain, token string) bool {
	return containsString(v[domain], token)
}

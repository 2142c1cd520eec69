package service

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"planbench/internal/config"
)

// DomainSpec 已加载的域定义
type DomainSpec struct {
	Name    string
	Path    string
	Source  string
	Actions []string
}

// ProblemRef 某个域目录下的一个问题文件
type ProblemRef struct {
	Domain  string `json:"domain"`
	Problem string `json:"problem"`
	Dir     string `json:"-"`
}

// Catalog 启动时加载一次的域文本和问题清单
type Catalog struct {
	order    []string
	domains  map[string]DomainSpec
	problems []ProblemRef
}

// LoadCatalog 读取所有域文件并按 glob 发现问题。单个域缺失只记日志，不中断：
// 该域下的实验会以 "Domain not loaded" 失败落盘
func LoadCatalog(cfg *config.Config) *Catalog {
	c := &Catalog{domains: make(map[string]DomainSpec, len(cfg.Domains))}
	for _, d := range cfg.Domains {
		dir := filepath.Join(cfg.Paths.DataDir, d.Dir)
		c.order = append(c.order, d.Name)

		path := filepath.Join(dir, d.DomainFile)
		src, err := os.ReadFile(path)
		if err != nil {
			log.Printf("[CATALOG] ✗ 加载域 %s 失败: %v", d.Name, err)
		} else {
			c.domains[d.Name] = DomainSpec{Name: d.Name, Path: path, Source: string(src), Actions: d.Actions}
			log.Printf("[CATALOG] ✓ 已加载域 %s (%s)", d.Name, path)
		}

		matches, err := filepath.Glob(filepath.Join(dir, d.ProblemGlob))
		if err != nil {
			log.Printf("[CATALOG] 域 %s 的 problem_glob 无效: %v", d.Name, err)
			continue
		}
		sort.Strings(matches)
		for _, m := range matches {
			c.problems = append(c.problems, ProblemRef{Domain: d.Name, Problem: filepath.Base(m), Dir: dir})
		}
		log.Printf("[CATALOG] 域 %s 发现 %d 个问题", d.Name, len(matches))
	}
	return c
}

// DomainSource 返回域文本；未加载时 ok=false
func (c *Catalog) DomainSource(name string) (string, bool) {
	d, ok := c.domains[name]
	if !ok {
		return "", false
	}
	return d.Source, true
}

func (c *Catalog) ReadProblem(ref ProblemRef) (string, error) {
	b, err := os.ReadFile(filepath.Join(ref.Dir, ref.Problem))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProblemNotFound, err)
	}
	return string(b), nil
}

// Problems 按域配置顺序、域内按文件名排序
func (c *Catalog) Problems() []ProblemRef {
	out := make([]ProblemRef, len(c.problems))
	copy(out, c.problems)
	return out
}

// ProblemsOf 单个域的问题
func (c *Catalog) ProblemsOf(domain string) []ProblemRef {
	var out []ProblemRef
	for _, p := range c.problems {
		if p.Domain == domain {
			out = append(out, p)
		}
	}
	return out
}

func (c *Catalog) DomainNames() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Find 按 (domain, problem) 查找
func (c *Catalog) Find(domain, problem string) (ProblemRef, bool) {
	for _, p := range c.problems {
		if p.Domain == domain && p.Problem == problem {
			return p, true
		}
	}
	return ProblemRef{}, false
}

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig      `yaml:"server"`
	Database   DatabaseConfig    `yaml:"database"`
	Solver     SolverConfig      `yaml:"solver"`
	Runner     RunnerConfig      `yaml:"runner"`
	Paths      PathsConfig       `yaml:"paths"`
	Planners   []string          `yaml:"planners" validate:"required,min=1,dive,required"`
	Domains    []DomainConfig    `yaml:"domains" validate:"required,min=1,dive"`
	Dialects   map[string]string `yaml:"dialects" validate:"dive,oneof=generic fast-downward"`
	Timeouts   TimeoutConfig     `yaml:"timeouts"`
	Blacklist  []BlacklistEntry  `yaml:"blacklist" validate:"dive"`
	Extraction ExtractionConfig  `yaml:"extraction"`
}

type ServerConfig struct {
	Port int `yaml:"port" validate:"min=0,max=65535"`
}

// DatabaseConfig 实验台账（可选）。driver=mysql 时沿用 host/port/user 拼 DSN；driver=sqlite 时用 path
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Driver   string `yaml:"driver" validate:"omitempty,oneof=mysql sqlite"`
	DSN      string `yaml:"dsn"`
	Path     string `yaml:"path"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	Charset  string `yaml:"charset"`
}

type SolverConfig struct {
	BaseURL       string        `yaml:"base_url" validate:"required,url"`
	SubmitTimeout time.Duration `yaml:"submit_timeout" validate:"gt=0"`
	PollTimeout   time.Duration `yaml:"poll_timeout" validate:"gt=0"`
	PollInterval  time.Duration `yaml:"poll_interval" validate:"gt=0"`
	// 远端证书多为自签名，默认跳过校验
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
	// 连续瞬时错误上限；0 表示只受超时预算约束
	MaxPollErrors int `yaml:"max_poll_errors" validate:"min=0"`
}

type RunnerConfig struct {
	InterExperimentPause time.Duration `yaml:"inter_experiment_pause" validate:"min=0"`
	ProgressInterval     time.Duration `yaml:"progress_interval" validate:"gt=0"`
	MaxDebugSaves        int           `yaml:"max_debug_saves" validate:"min=0"`
	// 为空表示所有 planner 都允许写 DEBUG 快照
	DebugPlanners []string `yaml:"debug_planners"`
	PollHistory   int      `yaml:"poll_history" validate:"min=1"`
}

type PathsConfig struct {
	// 工作目录，domains[].dir 相对于它解析
	DataDir    string `yaml:"data_dir"`
	ResultsDir string `yaml:"results_dir" validate:"required"`
	DebugDir   string `yaml:"debug_dir" validate:"required"`
}

type DomainConfig struct {
	Name        string   `yaml:"name" validate:"required"`
	Dir         string   `yaml:"dir" validate:"required"`
	DomainFile  string   `yaml:"domain_file" validate:"required"`
	ProblemGlob string   `yaml:"problem_glob" validate:"required"`
	Actions     []string `yaml:"actions" validate:"required,min=1,dive,required"`
}

type BlacklistEntry struct {
	Planner string `yaml:"planner" json:"planner" validate:"required"`
	Domain  string `yaml:"domain" json:"domain" validate:"required"`
	Problem string `yaml:"problem" json:"problem" validate:"required"`
}

type TimeoutConfig struct {
	// 未知 planner 的全局兜底（秒）
	Default  int             `yaml:"default" validate:"gt=0"`
	Planners PlannerTimeouts `yaml:"planners"`
}

type ExtractionConfig struct {
	// 逐行通用匹配规则，按顺序尝试；每条正则必须恰好一个捕获组
	GenericPatterns []PatternConfig `yaml:"generic_patterns" validate:"dive"`
	// 关闭 Fast Downward 日志里“按动作名抢救”的启发式
	DisableSalvage bool `yaml:"disable_salvage"`
}

type PatternConfig struct {
	Name  string `yaml:"name" validate:"required"`
	Regex string `yaml:"regex" validate:"required"`
}

// Default 只给出标量默认值；planner、域、黑名单、超时表都来自配置文件
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Database: DatabaseConfig{
			Driver:  "mysql",
			Charset: "utf8mb4",
		},
		Solver: SolverConfig{
			BaseURL:            "https://solver.planning.domains:5001",
			SubmitTimeout:      60 * time.Second,
			PollTimeout:        10 * time.Second,
			PollInterval:       500 * time.Millisecond,
			InsecureSkipVerify: true,
		},
		Runner: RunnerConfig{
			InterExperimentPause: 2 * time.Second,
			ProgressInterval:     30 * time.Second,
			MaxDebugSaves:        5,
			PollHistory:          10,
		},
		Paths: PathsConfig{
			DataDir:    ".",
			ResultsDir: "data_collection_three_domains",
			DebugDir:   "rerun_results_extended_timeout",
		},
		Dialects: map[string]string{
			"delfi": "fast-downward",
		},
		Timeouts: TimeoutConfig{Default: 1800},
	}
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	applyEnvOverrides(config)

	if err := Validate(config); err != nil {
		return nil, err
	}
	return config, nil
}

// applyEnvOverrides 允许用环境变量（或 .env）覆盖部署相关的少数字段
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PLANBENCH_SOLVER_URL"); v != "" {
		cfg.Solver.BaseURL = v
	}
	if v := os.Getenv("PLANBENCH_RESULTS_DIR"); v != "" {
		cfg.Paths.ResultsDir = v
	}
	if v := os.Getenv("PLANBENCH_DEBUG_DIR"); v != "" {
		cfg.Paths.DebugDir = v
	}
	if v := os.Getenv("PLANBENCH_DB_DSN"); v != "" {
		cfg.Database.DSN = v
		cfg.Database.Enabled = true
	}
}

// Domain 按名字查找域配置
func (c *Config) Domain(name string) (DomainConfig, bool) {
	for _, d := range c.Domains {
		if d.Name == name {
			return d, true
		}
	}
	return DomainConfig{}, false
}

// DomainNames 按配置顺序返回域名
func (c *Config) DomainNames() []string {
	out := make([]string, 0, len(c.Domains))
	for _, d := range c.Domains {
		out = append(out, d.Name)
	}
	return out
}

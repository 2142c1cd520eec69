package service

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"planbench/internal/config"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// newTestConfig 临时目录下的最小矩阵：2 个 planner × (2 个 blocksworld + 1 个 logistics)
func newTestConfig(t *testing.T, solverURL string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "blocksworld_files", "blocksworld_domain.pddl"), "(define (domain blocksworld))")
	writeFile(t, filepath.Join(dir, "blocksworld_files", "problema_01_facil.pddl"), "(define (problem p01))")
	writeFile(t, filepath.Join(dir, "blocksworld_files", "problema_02_medio.pddl"), "(define (problem p02))")
	writeFile(t, filepath.Join(dir, "logistics_files", "probLOGISTICS_domain.pddl"), "(define (domain logistics))")
	writeFile(t, filepath.Join(dir, "logistics_files", "probLOGISTICS-4-0.pddl"), "(define (problem l4))")

	cfg := config.Default()
	cfg.Solver.BaseURL = solverURL
	cfg.Solver.SubmitTimeout = 2 * time.Second
	cfg.Solver.PollTimeout = 2 * time.Second
	cfg.Solver.PollInterval = 10 * time.Millisecond
	cfg.Runner.InterExperimentPause = 0
	cfg.Runner.ProgressInterval = 20 * time.Millisecond
	cfg.Paths = config.PathsConfig{
		DataDir:    dir,
		ResultsDir: filepath.Join(dir, "results"),
		DebugDir:   filepath.Join(dir, "debug"),
	}
	cfg.Planners = []string{"lama-first", "delfi"}
	cfg.Domains = []config.DomainConfig{
		{
			Name: "blocksworld", Dir: "blocksworld_files", DomainFile: "blocksworld_domain.pddl",
			ProblemGlob: "problema_*.pddl", Actions: []string{"pick-up", "put-down", "stack", "unstack"},
		},
		{
			Name: "logistics", Dir: "logistics_files", DomainFile: "probLOGISTICS_domain.pddl",
			ProblemGlob: "probLOGISTICS-*.pddl",
			Actions:     []string{"load-truck", "load-airplane", "unload-truck", "unload-airplane", "drive-truck", "fly-airplane"},
		},
	}
	cfg.Timeouts = config.TimeoutConfig{
		Default: 5,
		Planners: config.PlannerTimeouts{
			{Planner: "lama-first", Default: 5},
			{Planner: "delfi", Default: 5},
		},
	}
	return cfg
}

func newTestServices(t *testing.T, cfg *config.Config) *ServiceContext {
	t.Helper()
	svc, err := NewServiceContext(cfg, nil)
	require.NoError(t, err)
	return svc
}

// fakeSolver 模拟远端求解服务：POST /package/{planner}/solve 与 GET /check/{id}
type fakeSolver struct {
	mu      sync.Mutex
	submits int
	polls   int

	// 0 表示 200
	submitStatus int
	// nil 表示 {"result": "/check/1"}
	submitBody map[string]any
	// 第 n 次轮询（从 1 开始）的状态码与响应体；body 为 string 时原样写出
	poll func(n int) (int, any)
}

func (f *fakeSolver) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/solve"):
		f.submits++
		if f.submitStatus != 0 && f.submitStatus != http.StatusOK {
			w.WriteHeader(f.submitStatus)
			return
		}
		body := f.submitBody
		if body == nil {
			body = map[string]any{"result": "/check/1"}
		}
		_ = json.NewEncoder(w).Encode(body)
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/check/"):
		f.polls++
		code, body := http.StatusOK, any(map[string]any{"status": "PENDING"})
		if f.poll != nil {
			code, body = f.poll(f.polls)
		}
		w.WriteHeader(code)
		if s, ok := body.(string); ok {
			_, _ = w.Write([]byte(s))
			return
		}
		_ = json.NewEncoder(w).Encode(body)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeSolver) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submits, f.polls
}

func solvedBody(stdout string) map[string]any {
	return map[string]any{"status": "ok", "result": map[string]any{"stdout": stdout}}
}

func listDir(t *testing.T, dir, prefix string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	var out []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), prefix) {
			out = append(out, e.Name())
		}
	}
	return out
}

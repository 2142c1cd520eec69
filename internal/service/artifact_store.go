package service

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"planbench/internal/model"
)

const (
	summaryJSONName     = "run_summary.json"
	summaryMarkdownName = "run_summary.md"
)

// ArtifactStore 负责所有 JSON 产物的命名与落盘。
// 成功结果写 results 目录（也是结果缓存的来源），其余诊断产物写 debug 目录
type ArtifactStore struct {
	resultsDir string
	debugDir   string
	now        func() time.Time
}

func NewArtifactStore(resultsDir, debugDir string) *ArtifactStore {
	return &ArtifactStore{resultsDir: resultsDir, debugDir: debugDir, now: time.Now}
}

func (s *ArtifactStore) ResultsDir() string { return s.resultsDir }
func (s *ArtifactStore) DebugDir() string   { return s.debugDir }

// EnsureDirs 创建两个输出目录
func (s *ArtifactStore) EnsureDirs() error {
	for _, dir := range []string{s.resultsDir, s.debugDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建输出目录 %s 失败: %w", dir, err)
		}
	}
	return nil
}

// ProblemStem 去掉 .pddl 后缀
func ProblemStem(problem string) string {
	return strings.ReplaceAll(problem, ".pddl", "")
}

func (s *ArtifactStore) SuccessPath(domain, planner, problem string) string {
	return filepath.Join(s.resultsDir, fmt.Sprintf("%s_%s_%s.json", domain, planner, ProblemStem(problem)))
}

func (s *ArtifactStore) FailurePath(domain, planner, problem string) string {
	return filepath.Join(s.debugDir, fmt.Sprintf("%s_%s_%s_FAILED.json", domain, planner, ProblemStem(problem)))
}

func (s *ArtifactStore) SummaryPaths() (string, string) {
	return filepath.Join(s.debugDir, summaryJSONName), filepath.Join(s.debugDir, summaryMarkdownName)
}

func (s *ArtifactStore) SaveSuccess(r *model.ExperimentResult) (string, error) {
	path := s.SuccessPath(r.Domain, r.Planner, r.Problem)
	return path, s.writeJSON(path, r)
}

func (s *ArtifactStore) SaveFailure(r *model.ExperimentResult) (string, error) {
	path := s.FailurePath(r.Domain, r.Planner, r.Problem)
	return path, s.writeJSON(path, r)
}

func (s *ArtifactStore) SaveTimeout(rep *model.TimeoutReport) (string, error) {
	path := s.stampedPath(fmt.Sprintf("TIMEOUT_%s_%s_%s", rep.Domain, rep.Planner, ProblemStem(rep.Problem)))
	return path, s.writeJSON(path, rep)
}

func (s *ArtifactStore) SaveDebug(snap *model.DebugSnapshot) (string, error) {
	path := s.stampedPath(fmt.Sprintf("DEBUG_%s_%s_%s", snap.Domain, snap.Planner, ProblemStem(snap.Problem)))
	return path, s.writeJSON(path, snap)
}

// stampedPath debug 目录下的 {prefix}_{unix}.json；同一秒内已存在时追加 _1、_2 ...
func (s *ArtifactStore) stampedPath(prefix string) string {
	base := filepath.Join(s.debugDir, fmt.Sprintf("%s_%d", prefix, s.now().Unix()))
	path := base + ".json"
	for i := 1; fileExists(path); i++ {
		path = fmt.Sprintf("%s_%d.json", base, i)
	}
	return path
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// SaveSummary 写 run_summary.json 与 run_summary.md
func (s *ArtifactStore) SaveSummary(sum *model.RunSummary, markdown string) (string, string, error) {
	jsonPath, mdPath := s.SummaryPaths()
	if err := s.writeJSON(jsonPath, sum); err != nil {
		return "", "", err
	}
	if err := os.WriteFile(mdPath, []byte(markdown), 0o644); err != nil {
		slog.Error("写入汇总 markdown 失败", "path", mdPath, "err", err)
		return jsonPath, "", fmt.Errorf("写入 %s 失败: %w", mdPath, err)
	}
	return jsonPath, mdPath, nil
}

// LoadResult 读取成功产物；文件不存在返回 os.ErrNotExist
func (s *ArtifactStore) LoadResult(domain, planner, problem string) (*model.ExperimentResult, error) {
	b, err := os.ReadFile(s.SuccessPath(domain, planner, problem))
	if err != nil {
		return nil, err
	}
	var r model.ExperimentResult
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("解析结果文件失败: %w", err)
	}
	return &r, nil
}

// writeJSON 产物写入失败只记录，不影响实验本身的判定
func (s *ArtifactStore) writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		slog.Error("序列化产物失败", "path", path, "err", err)
		return fmt.Errorf("序列化 %s 失败: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		slog.Error("创建产物目录失败", "path", path, "err", err)
		return fmt.Errorf("创建目录失败: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		slog.Error("写入产物失败", "path", path, "err", err)
		return fmt.Errorf("写入 %s 失败: %w", path, err)
	}
	return nil
}

func (s *ArtifactStore) timestamp() string {
	return s.now().Format(time.RFC3339)
}

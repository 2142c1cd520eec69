package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"planbench/internal/model"

	"gorm.io/gorm"
)

// Ledger 实验台账。db 为 nil（未启用数据库）时所有方法都是空操作
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

func (l *Ledger) Enabled() bool {
	return l != nil && l.db != nil
}

// StartRun 创建批次记录，返回自增 ID
func (l *Ledger) StartRun(ctx context.Context, run *model.ExperimentRun, planners, domains []string) (uint, error) {
	if !l.Enabled() {
		return 0, nil
	}
	plannersJSON, _ := json.Marshal(planners)
	domainsJSON, _ := json.Marshal(domains)
	run.PlannersJSON = string(plannersJSON)
	run.DomainsJSON = string(domainsJSON)
	if err := l.db.WithContext(ctx).Create(run).Error; err != nil {
		return 0, fmt.Errorf("创建实验批次失败: %w", err)
	}
	return run.ID, nil
}

func (l *Ledger) RecordAttempt(ctx context.Context, runID uint, out ExperimentOutcome) error {
	if !l.Enabled() {
		return nil
	}
	a := &model.Attempt{
		RunID:        runID,
		Planner:      out.Key.Planner,
		Domain:       out.Key.Domain,
		Problem:      out.Key.Problem,
		Outcome:      string(out.Outcome),
		ArtifactPath: out.ArtifactPath,
	}
	if out.Result != nil {
		a.Solved = out.Result.Solved
		a.PlanLength = out.Result.PlanLength
		a.ElapsedSeconds = out.Result.Time
		a.TimeoutUsed = out.Result.TimeoutUsed
		a.Error = out.Result.Error
	}
	if err := l.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("记录实验结果失败: %w", err)
	}
	return nil
}

// FinishRun 回填统计与汇总路径
func (l *Ledger) FinishRun(ctx context.Context, runID uint, stats model.RunStats, summaryPath, markdownPath string) error {
	if !l.Enabled() || runID == 0 {
		return nil
	}
	now := time.Now()
	err := l.db.WithContext(ctx).
		Model(&model.ExperimentRun{}).
		Where("id = ?", runID).
		Updates(map[string]interface{}{
			"solved":          stats.Solved,
			"failed":          stats.Failed,
			"timed_out":       stats.Timeout,
			"finished_at":     &now,
			"summary_path":    summaryPath,
			"conclusion_path": markdownPath,
		}).Error
	if err != nil {
		return fmt.Errorf("更新实验批次失败: %w", err)
	}
	return nil
}

// RecentRuns 最近的批次，按创建时间倒序
func (l *Ledger) RecentRuns(ctx context.Context, limit int) ([]model.ExperimentRun, error) {
	if !l.Enabled() {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	var runs []model.ExperimentRun
	if err := l.db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("查询实验批次失败: %w", err)
	}
	return runs, nil
}

func (l *Ledger) Attempts(ctx context.Context, runID uint) ([]model.Attempt, error) {
	if !l.Enabled() {
		return nil, nil
	}
	var attempts []model.Attempt
	if err := l.db.WithContext(ctx).Where("run_id = ?", runID).Order("id ASC").Find(&attempts).Error; err != nil {
		return nil, fmt.Errorf("查询实验记录失败: %w", err)
	}
	return attempts, nil
}

package model

import (
	"time"

	"gorm.io/gorm"
)

// Attempt 单个 (planner, domain, problem) 的一次执行结果，用于跨批次追溯
type Attempt struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	RunID   uint   `gorm:"index" json:"run_id"`
	Planner string `gorm:"type:varchar(100);not null;index" json:"planner"`
	Domain  string `gorm:"type:varchar(100);not null;index" json:"domain"`
	Problem string `gorm:"type:varchar(200);not null" json:"problem"`

	// solved/failed/timeout/submit_error/local_error/cache_hit/skipped
	Outcome        string  `gorm:"type:varchar(20);index" json:"outcome"`
	Solved         bool    `json:"solved"`
	PlanLength     int     `json:"plan_length"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	TimeoutUsed    int     `json:"timeout_used"`
	Error          string  `gorm:"type:text" json:"error"`
	ArtifactPath   string  `gorm:"type:varchar(500)" json:"artifact_path"`
}

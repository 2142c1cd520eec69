package model

import (
	"time"

	"gorm.io/gorm"
)

// ExperimentRun 一次批量执行的元数据（planner × problem 矩阵跑一遍）
type ExperimentRun struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	RunUUID      string `gorm:"type:varchar(36);uniqueIndex" json:"run_uuid"`
	PlannersJSON string `gorm:"type:text" json:"planners_json"`
	DomainsJSON  string `gorm:"type:text" json:"domains_json"`

	TotalPossible int `json:"total_possible"`
	Blacklisted   int `json:"blacklisted"`
	Existing      int `json:"existing"`
	ToRun         int `json:"to_run"`
	Solved        int `json:"solved"`
	Failed        int `json:"failed"`
	TimedOut      int `json:"timed_out"`

	FinishedAt *time.Time `json:"finished_at"`
	// 汇总文件路径
	SummaryPath    string `gorm:"type:varchar(500)" json:"summary_path"`
	ConclusionPath string `gorm:"type:varchar(500)" json:"conclusion_path"`
}

package model

import "time"

// 评价周期状态
const (
	CycleStatusDraft     = "draft"
	CycleStatusActive    = "active"
	CycleStatusCompleted = "completed"
)

// EvaluationCycle 评价周期表 — 对应 evaluation_cycles
//
// AssignedAt 是"该周期已生成指派"的标记：生成流程在提交事务内以
// assigned_at IS NULL 为条件抢占它，并发触发只有一次能成功，其余
// 以 ErrCycleAlreadyAssigned 快速失败。一旦有评价提交，周期对本核心
// 而言只追加、不修改。
type EvaluationCycle struct {
	CycleID    string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"cycle_id"`
	Name       string     `gorm:"type:varchar(200);not null"                     json:"name"`
	StartDate  time.Time  `gorm:"type:date;not null"                             json:"start_date"`
	EndDate    time.Time  `gorm:"type:date;not null"                             json:"end_date"`
	Status     string     `gorm:"type:varchar(20);not null;default:'draft'"      json:"status"` // draft | active | completed
	IsActive   bool       `gorm:"not null;default:false"                         json:"is_active"`
	AssignedAt *time.Time `gorm:""                                               json:"assigned_at,omitempty"`
	BaseModel
}

// TableName 指定表名
func (EvaluationCycle) TableName() string { return "evaluation_cycles" }

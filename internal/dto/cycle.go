package dto

// ── 考评周期模块 DTO ──

// CreateCycleRequest 创建考评周期请求
type CreateCycleRequest struct {
	Name      string `json:"name"       binding:"required,min=2,max=100"`
	StartDate string `json:"start_date" binding:"required"` // "2026-01-01"
	EndDate   string `json:"end_date"   binding:"required"` // "2026-06-30"
}

// CycleResponse 考评周期响应
type CycleResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	Status     string  `json:"status"`
	IsActive   bool    `json:"is_active"`
	AssignedAt *string `json:"assigned_at,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

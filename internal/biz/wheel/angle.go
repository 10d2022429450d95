package wheel

import "math"

const (
	fullTurn = 360.0
	// AlignTolerance 对齐校验允许的角度误差（度）
	AlignTolerance = 1e-3
)

// Normalize 将任意角度归一化到 [0, 360)
func Normalize(deg float64) float64 {
	r := math.Mod(deg, fullTurn)
	if r < 0 {
		r += fullTurn
	}
	// -1e-15 + 360 会被舍入成 360
	if r >= fullTurn {
		r -= fullTurn
	}
	return r
}

// angleDistance 两个角度在圆周上的最短距离，范围 [0, 180]
func angleDistance(a, b float64) float64 {
	d := Normalize(a - b)
	if d > fullTurn/2 {
		d = fullTurn - d
	}
	return d
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

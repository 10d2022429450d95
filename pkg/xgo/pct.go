package xgo

import "math"

// Pct 百分比 num/denom*100，denom<=0 返回 0
func Pct(num, denom int64) float64 {
	if denom <= 0 {
		return 0
	}
	return float64(num) / float64(denom) * 100
}

// Round 保留 n 位小数
func Round(v float64, n int) float64 {
	p := math.Pow10(n)
	return math.Round(v*p) / p
}

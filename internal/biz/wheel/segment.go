package wheel

import (
	"sort"
	"strings"
)

// Segment 轮盘上的一个扇区，Index 为顺时针位置
type Segment struct {
	Index int    `json:"index"`
	Label string `json:"label"`
}

// Sector 扇区的几何描述，角度均在轮盘本地坐标系内
type Sector struct {
	Index  int     `json:"index"`
	Label  string  `json:"label"`
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
	Center float64 `json:"center"`
}

// Layout 不可变的轮盘布局
type Layout struct {
	segments []Segment
	byLabel  map[string][]int
}

// SegmentsFromLabels 按顺序把标签列表转成扇区
func SegmentsFromLabels(labels []string) []Segment {
	out := make([]Segment, len(labels))
	for i, l := range labels {
		out[i] = Segment{Index: i, Label: l}
	}
	return out
}

// NewLayout 校验并创建布局：索引必须恰好是 0..N-1，标签不能为空
func NewLayout(segments []Segment) (*Layout, error) {
	if len(segments) == 0 {
		return nil, invalidConfig("wheel must have at least one segment")
	}
	segs := make([]Segment, len(segments))
	copy(segs, segments)
	sort.SliceStable(segs, func(i, j int) bool { return segs[i].Index < segs[j].Index })

	byLabel := make(map[string][]int)
	for i, s := range segs {
		if s.Index != i {
			return nil, invalidConfig("segment indices must be unique and cover 0..%d, got %d at position %d", len(segs)-1, s.Index, i)
		}
		if strings.TrimSpace(s.Label) == "" {
			return nil, invalidConfig("segment %d has an empty label", s.Index)
		}
		byLabel[s.Label] = append(byLabel[s.Label], i)
	}
	return &Layout{segments: segs, byLabel: byLabel}, nil
}

// Len 扇区数量
func (l *Layout) Len() int { return len(l.segments) }

// Segment 返回索引对应扇区，调用方保证索引合法
func (l *Layout) Segment(i int) Segment { return l.segments[i] }

// Segments 返回副本
func (l *Layout) Segments() []Segment {
	out := make([]Segment, len(l.segments))
	copy(out, l.segments)
	return out
}

// Labels 去重后的标签，按首次出现的索引排序
func (l *Layout) Labels() []string {
	out := make([]string, 0, len(l.byLabel))
	for _, s := range l.segments {
		if l.byLabel[s.Label][0] == s.Index {
			out = append(out, s.Label)
		}
	}
	return out
}

// Has 布局中是否存在该标签
func (l *Layout) Has(label string) bool {
	return len(l.byLabel[label]) > 0
}

// IndicesOf 返回携带该标签的所有索引（升序）
func (l *Layout) IndicesOf(labels ...string) []int {
	var out []int
	for _, lb := range labels {
		out = append(out, l.byLabel[lb]...)
	}
	sort.Ints(out)
	return dedup(out)
}

// SectorAngle 每个扇区的角宽
func (l *Layout) SectorAngle() float64 {
	return fullTurn / float64(len(l.segments))
}

// Center 扇区中心角 i*360/N + 180/N
func (l *Layout) Center(i int) float64 {
	w := l.SectorAngle()
	return float64(i)*w + w/2
}

// Sector 返回扇区几何
func (l *Layout) Sector(i int) Sector {
	w := l.SectorAngle()
	return Sector{
		Index:  i,
		Label:  l.segments[i].Label,
		Start:  float64(i) * w,
		End:    float64(i+1) * w,
		Center: l.Center(i),
	}
}

// Sectors 全部扇区几何
func (l *Layout) Sectors() []Sector {
	out := make([]Sector, len(l.segments))
	for i := range l.segments {
		out[i] = l.Sector(i)
	}
	return out
}

func dedup(sorted []int) []int {
	if len(sorted) < 2 {
		return sorted
	}
	out := sorted[:1]
	for _, v := range sorted[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

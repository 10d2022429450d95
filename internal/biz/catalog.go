package biz

import (
	"context"
	"sort"
	"sync"

	"prizewheel/internal/biz/wheel"
	"prizewheel/internal/conf"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
)

// Catalog 已校验的轮盘目录，数据库定义覆盖同 ID 的配置定义
type Catalog struct {
	mu        sync.RWMutex
	wheels    map[string]*WheelDefinition
	manifests map[string]*Manifest
	def       string
}

// LoadCatalog 合并配置与数据库定义；任一定义非法即失败
func LoadCatalog(ctx context.Context, c *conf.Wheel, repo DataRepo, logger log.Logger) (*Catalog, error) {
	l := log.NewHelper(log.With(logger, "module", "biz/catalog"))
	var global = wheel.DefaultRevealDelay
	if c != nil && c.RevealDelay.AsDuration() > 0 {
		global = c.RevealDelay.AsDuration()
	}

	merged := make(map[string]*WheelDefinition)
	for _, wc := range c.GetWheels() {
		d, err := definitionFromConf(wc, global)
		if err != nil {
			return nil, err
		}
		if _, dup := merged[d.ID]; dup {
			return nil, errors.Newf(400, wheel.ReasonInvalidConfig, "duplicate wheel id %q in config", d.ID)
		}
		merged[d.ID] = d
	}
	if repo != nil {
		stored, err := repo.LoadWheels(ctx)
		if err != nil {
			return nil, err
		}
		for _, d := range stored {
			if d.RevealDelay == 0 {
				d.RevealDelay = global
			}
			if _, ok := merged[d.ID]; ok {
				l.Infof("wheel %q from %s overrides config", d.ID, d.Source)
			}
			merged[d.ID] = d
		}
	}
	if len(merged) == 0 {
		return nil, errors.BadRequest(wheel.ReasonInvalidConfig, "no wheel definitions")
	}

	cat := &Catalog{
		wheels:    merged,
		manifests: make(map[string]*Manifest, len(merged)),
		def:       c.GetDefaultWheel(),
	}
	for id, d := range merged {
		if err := d.Validate(); err != nil {
			l.Errorf("invalid wheel %q: %v", id, err)
			return nil, err
		}
		cat.manifests[id] = buildManifest(d)
	}
	if cat.def == "" {
		cat.def = cat.IDs()[0]
	}
	if _, ok := merged[cat.def]; !ok {
		return nil, errors.Newf(400, wheel.ReasonInvalidConfig, "default wheel %q not defined", cat.def)
	}
	l.Infof("wheel catalog loaded: %v (default %q)", cat.IDs(), cat.def)
	return cat, nil
}

func buildManifest(d *WheelDefinition) *Manifest {
	// 已校验，不会失败
	layout, _ := wheel.NewLayout(wheel.SegmentsFromLabels(d.Labels))
	return &Manifest{
		WheelID:      d.ID,
		Name:         d.Name,
		PointerAngle: wheel.Normalize(d.PointerAngle),
		SectorAngle:  layout.SectorAngle(),
		TieBreak:     string(d.TieBreak),
		RevealDelay:  d.RevealDelay.String(),
		Rules:        d.Rules,
		Prizes:       layout.Labels(),
		Sectors:      layout.Sectors(),
	}
}

// IDs 按 ID 升序
func (c *Catalog) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.wheels))
	for id := range c.wheels {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Default 默认轮盘 ID
func (c *Catalog) Default() string { return c.def }

// Get 按 ID 获取，空 ID 取默认
func (c *Catalog) Get(id string) (*WheelDefinition, error) {
	if id == "" {
		id = c.def
	}
	c.mu.RLock()
	d, ok := c.wheels[id]
	c.mu.RUnlock()
	if !ok {
		return nil, errors.NotFound(ReasonWheelNotFound, "wheel "+id+" not found")
	}
	return d, nil
}

// Manifest 轮盘清单副本
func (c *Catalog) Manifest(id string) (*Manifest, error) {
	d, err := c.Get(id)
	if err != nil {
		return nil, err
	}
	c.mu.RLock()
	m := *c.manifests[d.ID]
	c.mu.RUnlock()
	return &m, nil
}

func (c *Catalog) setManifestURL(id, url string) {
	c.mu.Lock()
	if m, ok := c.manifests[id]; ok {
		m.URL = url
	}
	c.mu.Unlock()
}

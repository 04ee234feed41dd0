package ntfp

import (
	"os"
	"time"

	"github.com/Observarun/geo-ntfp/log"

	"go.uber.org/zap"
)

// Stage is one node of the task tree: declared inputs, declared outputs
// and a run function. Inputs feed the cache fingerprint; outputs must
// all exist for a cache hit to count.
type Stage struct {
	Name    string
	Inputs  []string
	Outputs []string
	Run     func() error
}

// Pipeline wires the four NTFP stages over one immutable Config. Stages
// execute strictly sequentially in dependency order; a failing stage
// aborts the whole run with no partial-output recovery. Concurrent runs
// against the same work dir are not supported.
type Pipeline struct {
	cfg    Config
	tb     *Toolbox
	res    Results
	logTag string
}

func New(cfg Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.WorkDir, os.ModePerm); err != nil {
		return nil, err
	}
	p := &Pipeline{
		cfg:    cfg,
		tb:     NewToolbox(),
		logTag: "Pipeline:",
		res: Results{
			ForestMask:    cfg.artifact(ForestMaskTif),
			ForestProj:    cfg.artifact(ForestProjTif),
			RoadsProj:     cfg.artifact(RoadsProjGpkg),
			RiversProj:    cfg.artifact(RiversProjGpkg),
			CountriesProj: cfg.artifact(CountriesProjGpkg),
			RoadsBuffer:   cfg.artifact(RoadsBufferGpkg),
			RiversBuffer:  cfg.artifact(RiversBufferGpkg),
			UnionBuffers:  cfg.artifact(UnionBuffersGpkg),
			MaskedForest:  cfg.artifact(MaskedForestTif),
			ValueTable:    cfg.artifact(OutputValueCsv),
		},
	}
	return p, nil
}

func (p *Pipeline) Results() Results {
	return p.res
}

// stages builds the task tree in dependency order (leaf to root).
func (p *Pipeline) stages() []Stage {
	cfg, res := p.cfg, p.res
	return []Stage{
		{
			Name:    "forest_mask",
			Inputs:  []string{cfg.Lulc},
			Outputs: []string{res.ForestMask},
			Run: func() error {
				return p.tb.BuildForestMask(cfg.Lulc, res.ForestMask)
			},
		},
		{
			Name:    "reproject",
			Inputs:  []string{res.ForestMask, cfg.Roads, cfg.Rivers, cfg.Countries},
			Outputs: []string{res.ForestProj, res.RoadsProj, res.RiversProj, res.CountriesProj},
			Run: func() error {
				if err := p.tb.ReprojectVector(cfg.Roads, res.RoadsProj, cfg.TargetWkt); err != nil {
					return err
				}
				if err := p.tb.ReprojectVector(cfg.Rivers, res.RiversProj, cfg.TargetWkt); err != nil {
					return err
				}
				if err := p.tb.ReprojectVector(cfg.Countries, res.CountriesProj, cfg.TargetWkt); err != nil {
					return err
				}
				return p.tb.ReprojectRaster(res.ForestMask, res.ForestProj, cfg)
			},
		},
		{
			Name:    "buffer_union",
			Inputs:  []string{res.RoadsProj, res.RiversProj},
			Outputs: []string{res.RoadsBuffer, res.RiversBuffer, res.UnionBuffers},
			Run: func() error {
				if err := p.tb.BufferAndDissolve(res.RoadsProj, res.RoadsBuffer, cfg.BufferDistance, cfg.TargetWkt); err != nil {
					return err
				}
				if err := p.tb.BufferAndDissolve(res.RiversProj, res.RiversBuffer, cfg.BufferDistance, cfg.TargetWkt); err != nil {
					return err
				}
				return p.tb.UnionBuffers([]string{res.RoadsBuffer, res.RiversBuffer}, res.UnionBuffers, cfg.TargetWkt)
			},
		},
		{
			Name:    "mask_valuation",
			Inputs:  []string{res.ForestProj, res.UnionBuffers, res.CountriesProj, cfg.ValueTable},
			Outputs: []string{res.MaskedForest, res.ValueTable},
			Run:     p.maskAndValue,
		},
	}
}

func (p *Pipeline) maskAndValue() error {
	cfg, res := p.cfg, p.res
	if err := p.tb.MaskByCorridor(res.ForestProj, res.UnionBuffers, res.MaskedForest); err != nil {
		return err
	}
	counts, pixelAreaHa, err := p.tb.CountForestByCountry(
		res.MaskedForest, res.CountriesProj, cfg.Columns.CountryLabel, cfg.TargetWkt)
	if err != nil {
		return err
	}
	values, err := LoadValueTable(cfg.ValueTable, cfg.Columns)
	if err != nil {
		return err
	}
	rows := JoinValuation(counts, pixelAreaHa, values)
	if err = WriteValuation(res.ValueTable, rows); err != nil {
		return err
	}
	var totalArea, totalValue float64
	for _, r := range rows {
		totalArea += r.ForestAreaHa
		totalValue += r.NtfpValue
	}
	log.Info(p.logTag+"valuation written", zap.String("out", res.ValueTable),
		zap.Int("countries", len(rows)),
		zap.Float64("totalForestAreaHa", totalArea),
		zap.Float64("totalNtfpValue", totalValue))
	return nil
}

// Run executes the stages in order, consulting the stage cache before
// each one. Returns the artifact paths even on failure, for diagnosis.
func (p *Pipeline) Run() (Results, error) {
	cache := loadStageCache(p.cfg.WorkDir)
	for _, st := range p.stages() {
		fp, err := fingerprint(p.cfg, st.Inputs)
		if err != nil {
			log.Error(p.logTag+"stage input unavailable", zap.String("stage", st.Name), zap.Error(err))
			return p.res, err
		}
		if !p.cfg.Force && cache.fresh(st.Name, fp, st.Outputs) {
			log.Info(p.logTag+"stage up to date, skipping", zap.String("stage", st.Name))
			continue
		}
		log.Info(p.logTag+"stage start", zap.String("stage", st.Name))
		start := time.Now()
		if err = st.Run(); err != nil {
			log.Error(p.logTag+"stage failed", zap.String("stage", st.Name), zap.Error(err))
			return p.res, err
		}
		cache.record(st.Name, fp)
		if e := cache.save(); e != nil {
			log.Warn(p.logTag+"could not persist stage cache", zap.Error(e))
		}
		log.Info(p.logTag+"stage done", zap.String("stage", st.Name), zap.Duration("took", time.Since(start)))
	}
	return p.res, nil
}

package service

import (
	"fmt"

	"planbench/internal/config"

	"gorm.io/gorm"
)

type ServiceContext struct {
	Config    *config.Config
	Catalog   *Catalog
	Registry  *SkipRegistry
	Policy    *TimeoutPolicy
	Store     *ArtifactStore
	Cache     *ResultCache
	Extractor *PlanExtractor
	Solver    *SolverClient
	Ledger    *Ledger
	Runner    *ExperimentRunner
}

// NewServiceContext conn 可以为 nil（不记台账）
func NewServiceContext(cfg *config.Config, conn *gorm.DB) (*ServiceContext, error) {
	vocab := NewVocabulary(cfg.Domains)
	extractor, err := NewPlanExtractor(vocab, cfg.Dialects, cfg.Extraction)
	if err != nil {
		return nil, fmt.Errorf("初始化计划抽取器失败: %w", err)
	}

	store := NewArtifactStore(cfg.Paths.ResultsDir, cfg.Paths.DebugDir)
	svc := &ServiceContext{
		Config:    cfg,
		Catalog:   LoadCatalog(cfg),
		Registry:  NewSkipRegistry(cfg.Blacklist),
		Policy:    NewTimeoutPolicy(cfg.Timeouts),
		Store:     store,
		Cache:     NewResultCache(store),
		Extractor: extractor,
		Solver:    NewSolverClient(cfg.Solver),
		Ledger:    NewLedger(conn),
	}
	svc.Runner = NewExperimentRunner(RunnerDeps{
		Planners:  cfg.Planners,
		Catalog:   svc.Catalog,
		Registry:  svc.Registry,
		Policy:    svc.Policy,
		Cache:     svc.Cache,
		Store:     svc.Store,
		Extractor: svc.Extractor,
		Solver:    svc.Solver,
		Ledger:    svc.Ledger,
	}, RunnerOptionsFrom(cfg))
	return svc, nil
}

package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aide-analytics/aide-cli/internal/dataset"
	"github.com/aide-analytics/aide-cli/internal/fetcher"
	"github.com/aide-analytics/aide-cli/internal/matcher"
	"github.com/aide-analytics/aide-cli/internal/narrative"
	"github.com/aide-analytics/aide-cli/internal/promptbank"
	"github.com/aide-analytics/aide-cli/internal/report"
	"github.com/aide-analytics/aide-cli/internal/router"
	"github.com/aide-analytics/aide-cli/internal/rules"
	"github.com/aide-analytics/aide-cli/internal/store"
	"github.com/aide-analytics/aide-cli/pkg/anthropic"
	"github.com/aide-analytics/aide-cli/pkg/jina"
	"github.com/aide-analytics/aide-cli/pkg/notion"
)

// env bundles everything a command needs after startup.
type env struct {
	Bank     *promptbank.Bank
	Router   *router.Router
	Narrator *narrative.Narrator
	History  store.Store // nil when persistence is disabled
	PNL      *dataset.Frame
	UT       *dataset.Frame // nil when unavailable
	UTReason string
}

// initEnv loads datasets, builds the prompt bank, the matcher and the
// router. The UT dataset and the semantic matcher are both optional:
// without them the router still answers via overrides and fallback.
func initEnv(ctx context.Context) (*env, error) {
	e := &env{}

	xlsxOpts := fetcher.XLSXOptions{SheetName: cfg.Data.Sheet, SkipRows: cfg.Data.SkipRows}

	var (
		rawPNL *dataset.Frame
		optUT  fetcher.Optional
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		f, err := fetcher.Load(gctx, cfg.Data.PNL, xlsxOpts)
		if err != nil {
			return eris.Wrap(err, "load P&L dataset")
		}
		rawPNL = f
		return nil
	})
	g.Go(func() error {
		optUT = fetcher.LoadOptional(gctx, cfg.Data.UT, fetcher.XLSXOptions{SkipRows: cfg.Data.SkipRows})
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	pnl, err := dataset.PreprocessPNL(rawPNL)
	if err != nil {
		return nil, eris.Wrap(err, "preprocess P&L dataset")
	}
	e.PNL = pnl

	if optUT.Present() {
		e.UT = dataset.PreprocessUT(optUT.Frame)
	} else {
		e.UTReason = optUT.Reason
		zap.L().Info("UT dataset unavailable", zap.String("reason", optUT.Reason))
	}

	e.Bank, err = loadBank(ctx)
	if err != nil {
		return nil, err
	}

	var m router.Matcher
	if cfg.Jina.Key != "" {
		embedder := jina.NewClient(cfg.Jina.Key,
			jina.WithBaseURL(cfg.Jina.BaseURL),
			jina.WithModel(cfg.Jina.Model),
		)
		index, err := matcher.NewIndex(ctx, embedder, e.Bank, cfg.Router.Threshold)
		if err != nil {
			return nil, eris.Wrap(err, "build semantic index")
		}
		m = index
	} else {
		zap.L().Warn("jina key not configured; semantic matching disabled")
	}

	registry := report.DefaultRegistry()
	if missing := uncoveredReports(e.Bank, registry); len(missing) > 0 {
		zap.L().Warn("prompt bank has no phrasings for some registered reports; they are only reachable via overrides",
			zap.Strings("qids", missing))
	}
	e.Router = router.New(router.Config{
		Threshold:                 cfg.Router.Threshold,
		FreeformBypassesOverrides: cfg.Router.FreeformBypassesOverrides,
	}, m, rules.DefaultEngine(), registry)

	if cfg.Anthropic.Key != "" {
		e.Narrator = narrative.New(anthropic.NewClient(cfg.Anthropic.Key), cfg.Anthropic.Model)
	}

	e.History, err = openHistory(ctx)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// uncoveredReports returns registered report QIDs the bank has no
// phrasing for. Those answers stay reachable through rule overrides,
// but the semantic matcher can never route to them.
func uncoveredReports(bank *promptbank.Bank, reg *report.Registry) []string {
	var missing []string
	for _, qid := range reg.QIDs() {
		if !bank.Contains(qid) {
			missing = append(missing, qid)
		}
	}
	return missing
}

// loadBank reads the prompt bank from a local YAML file or Notion when
// configured, else the built-in bank.
func loadBank(ctx context.Context) (*promptbank.Bank, error) {
	if cfg.Data.Prompts != "" {
		bank, err := promptbank.FromYAML(cfg.Data.Prompts)
		if err != nil {
			return nil, eris.Wrap(err, "load prompt bank file")
		}
		return bank, nil
	}
	if cfg.Notion.Token == "" || cfg.Notion.PromptDB == "" {
		return promptbank.Default(), nil
	}
	client := notion.NewClient(cfg.Notion.Token)
	bank, err := promptbank.FromNotion(ctx, client, cfg.Notion.PromptDB)
	if err != nil {
		return nil, eris.Wrap(err, "load prompt bank from notion")
	}
	return bank, nil
}

// openHistory opens the configured history store, or none.
func openHistory(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "", "none":
		return nil, nil
	case "sqlite":
		s, err := store.NewSQLite(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	case "postgres":
		s, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// Close releases held resources.
func (e *env) Close() {
	if e.History != nil {
		if err := e.History.Close(); err != nil {
			zap.L().Warn("close history store", zap.Error(err))
		}
	}
}

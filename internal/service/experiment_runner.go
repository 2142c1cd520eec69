package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"planbench/internal/config"
	"planbench/internal/model"
)

// Outcome 单个实验的最终状态
type Outcome string

const (
	OutcomeSkipped     Outcome = "skipped"
	OutcomeCacheHit    Outcome = "cache_hit"
	OutcomeLocalError  Outcome = "local_error"
	OutcomeSubmitError Outcome = "submit_error"
	OutcomeSolved      Outcome = "solved"
	OutcomeFailed      Outcome = "failed"
	OutcomeTimeout     Outcome = "timeout"
	// 外部取消（Ctrl-C / 服务关闭），不落盘
	OutcomeCancelled Outcome = "cancelled"
)

// ExperimentOutcome RunExperiment 的返回
type ExperimentOutcome struct {
	Key          model.ExperimentKey
	Outcome      Outcome
	Result       *model.ExperimentResult
	ArtifactPath string
	Err          error
}

type RunnerOptions struct {
	PollInterval         time.Duration
	ProgressInterval     time.Duration
	InterExperimentPause time.Duration
	MaxDebugSaves        int
	PollHistory          int
	MaxPollErrors        int
	// 为空表示所有 planner
	DebugPlanners []string
}

func RunnerOptionsFrom(cfg *config.Config) RunnerOptions {
	return RunnerOptions{
		PollInterval:         cfg.Solver.PollInterval,
		ProgressInterval:     cfg.Runner.ProgressInterval,
		InterExperimentPause: cfg.Runner.InterExperimentPause,
		MaxDebugSaves:        cfg.Runner.MaxDebugSaves,
		PollHistory:          cfg.Runner.PollHistory,
		MaxPollErrors:        cfg.Solver.MaxPollErrors,
		DebugPlanners:        cfg.Runner.DebugPlanners,
	}
}

type RunnerDeps struct {
	Planners  []string
	Catalog   *Catalog
	Registry  *SkipRegistry
	Policy    *TimeoutPolicy
	Cache     *ResultCache
	Store     *ArtifactStore
	Extractor *PlanExtractor
	Solver    Solver
	Ledger    *Ledger
	// 可选
	Tracer trace.Tracer
	Emit   func(Event)
}

// ExperimentRunner 执行控制器：planner × problem 矩阵逐个串行执行，
// 每个实验经历 提交 -> 轮询 -> 求解/失败/超时 的状态机
type ExperimentRunner struct {
	planners  []string
	catalog   *Catalog
	registry  *SkipRegistry
	policy    *TimeoutPolicy
	cache     *ResultCache
	store     *ArtifactStore
	extractor *PlanExtractor
	solver    Solver
	ledger    *Ledger
	tracer    trace.Tracer
	emit      func(Event)
	debug     *DebugTracker
	opts      RunnerOptions

	// 同一时刻只允许一个批次
	mu sync.Mutex
}

func NewExperimentRunner(deps RunnerDeps, opts RunnerOptions) *ExperimentRunner {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 500 * time.Millisecond
	}
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = 30 * time.Second
	}
	if opts.PollHistory <= 0 {
		opts.PollHistory = 10
	}
	tracer := deps.Tracer
	if tracer == nil {
		tracer = otel.Tracer("planbench/service")
	}
	emit := deps.Emit
	if emit == nil {
		emit = func(Event) {}
	}
	return &ExperimentRunner{
		planners:  deps.Planners,
		catalog:   deps.Catalog,
		registry:  deps.Registry,
		policy:    deps.Policy,
		cache:     deps.Cache,
		store:     deps.Store,
		extractor: deps.Extractor,
		solver:    deps.Solver,
		ledger:    deps.Ledger,
		tracer:    tracer,
		emit:      emit,
		debug:     NewDebugTracker(),
		opts:      opts,
	}
}

// SetEmitter 服务模式下在 Hub 创建后接入
func (r *ExperimentRunner) SetEmitter(emit func(Event)) {
	if emit == nil {
		emit = func(Event) {}
	}
	r.emit = emit
}

func (r *ExperimentRunner) Planners() []string {
	out := make([]string, len(r.planners))
	copy(out, r.planners)
	return out
}

// RunExperiment 执行单个实验。调用方负责串行化（RunAll 内部已保证）
func (r *ExperimentRunner) RunExperiment(ctx context.Context, planner string, ref ProblemRef) ExperimentOutcome {
	key := model.ExperimentKey{Planner: planner, Domain: ref.Domain, Problem: ref.Problem}

	if r.registry.IsBlacklisted(planner, ref.Domain, ref.Problem) {
		log.Printf("[RUNNER] ⚠️  SKIPPED (blacklisted): %s/%s with %s", ref.Domain, ref.Problem, planner)
		return ExperimentOutcome{
			Key:     key,
			Outcome: OutcomeSkipped,
			Result: &model.ExperimentResult{
				Domain: ref.Domain, Planner: planner, Problem: ref.Problem,
				Plan: []string{}, Error: ErrBlacklisted.Error(), Skipped: true,
			},
			Err: ErrBlacklisted,
		}
	}

	if ok, existing := r.cache.CheckExisting(ref.Domain, planner, ref.Problem); ok {
		log.Printf("[RUNNER] ✓ Already solved: %s/%s with %s (length: %d)", ref.Domain, ref.Problem, planner, existing.PlanLength)
		return ExperimentOutcome{
			Key:          key,
			Outcome:      OutcomeCacheHit,
			Result:       existing,
			ArtifactPath: r.store.SuccessPath(ref.Domain, planner, ref.Problem),
		}
	}

	ctx, span := r.tracer.Start(ctx, "experiment", trace.WithAttributes(
		attribute.String("planner", planner),
		attribute.String("domain", ref.Domain),
		attribute.String("problem", ref.Problem),
	))
	defer span.End()

	out := r.runFresh(ctx, key, ref)

	span.SetAttributes(attribute.String("outcome", string(out.Outcome)))
	if out.Result != nil {
		span.SetAttributes(
			attribute.Int("timeout_seconds", out.Result.TimeoutUsed),
			attribute.Int("plan_length", out.Result.PlanLength),
			attribute.Float64("elapsed_seconds", out.Result.Time),
		)
	}
	if out.Outcome != OutcomeSolved {
		msg := string(out.Outcome)
		if out.Result != nil && out.Result.Error != "" {
			msg = out.Result.Error
		}
		span.SetStatus(codes.Error, msg)
	}

	ev := newEvent(EventExperimentFinished)
	ev.Key = &key
	ev.Outcome = out.Outcome
	if out.Result != nil {
		ev.Elapsed = out.Result.Time
		ev.Message = out.Result.Error
	}
	r.emit(ev)
	return out
}

func (r *ExperimentRunner) runFresh(ctx context.Context, key model.ExperimentKey, ref ProblemRef) ExperimentOutcome {
	timeout := r.policy.GetTimeout(key.Planner, key.Problem)
	result := &model.ExperimentResult{
		Domain:      key.Domain,
		Planner:     key.Planner,
		Problem:     key.Problem,
		Timestamp:   r.store.timestamp(),
		TimeoutUsed: timeout,
		Plan:        []string{},
	}

	// 本地前置条件在任何网络调用之前检查
	domainText, ok := r.catalog.DomainSource(key.Domain)
	if !ok {
		log.Printf("[RUNNER] ✗ Domain not loaded for %s", key.Domain)
		result.Error = ErrDomainNotLoaded.Error()
		return r.finish(key, result, OutcomeLocalError, ErrDomainNotLoaded)
	}
	problemText, err := r.catalog.ReadProblem(ref)
	if err != nil {
		log.Printf("[RUNNER] ✗ Problem file not found: %s/%s", ref.Dir, ref.Problem)
		result.Error = ErrProblemNotFound.Error()
		return r.finish(key, result, OutcomeLocalError, err)
	}

	log.Printf("[RUNNER] %s", strings.Repeat("=", 70))
	log.Printf("[RUNNER] Running: %s on %s/%s", key.Planner, key.Domain, key.Problem)
	log.Printf("[RUNNER] Timeout: %d seconds (%.1f minutes)", timeout, float64(timeout)/60)
	if r.extractor.DialectFor(key.Planner) == DialectFastDownward {
		log.Printf("[RUNNER] 提示: %s 含约 25s 预处理开销", key.Planner)
	}

	ev := newEvent(EventExperimentStarted)
	ev.Key = &key
	r.emit(ev)

	start := time.Now()
	log.Printf("[RUNNER] → Sending request to planner...")
	resultURL, err := r.solver.Submit(ctx, key.Planner, domainText, problemText)
	if err != nil {
		result.Time = time.Since(start).Seconds()
		if ctx.Err() != nil {
			return r.cancelled(key, result, ctx.Err())
		}
		result.Error = err.Error()
		log.Printf("[RUNNER] ✗ 提交失败: %s", result.Error)
		return r.finish(key, result, OutcomeSubmitError, err)
	}

	log.Printf("[RUNNER] → Polling for results (timeout: %ds)...", timeout)
	return r.poll(ctx, key, result, resultURL, start)
}

// poll 轮询直到终态或超出预算。瞬时错误吞掉继续；超时判定以提交时刻为起点
func (r *ExperimentRunner) poll(ctx context.Context, key model.ExperimentKey, result *model.ExperimentResult, resultURL string, start time.Time) ExperimentOutcome {
	budget := time.Duration(result.TimeoutUsed) * time.Second
	pollCtx, cancel := context.WithDeadline(ctx, start.Add(budget))
	defer cancel()

	limiter := rate.NewLimiter(rate.Every(r.opts.PollInterval), 1)
	var (
		history    []model.PollRecord
		progress   model.ProgressSnapshot
		lastReport = time.Now()
		debugSaves int
		pollErrs   int
	)

	for time.Since(start) < budget {
		// Wait 在调用方 deadline 来不及时提前返回，此时 ctx.Err() 可能仍为 nil
		if err := limiter.Wait(ctx); err != nil {
			result.Time = time.Since(start).Seconds()
			return r.cancelled(key, result, err)
		}

		resp, err := r.solver.Poll(pollCtx, resultURL)
		elapsed := time.Since(start).Seconds()
		if err != nil {
			if pollCtx.Err() != nil {
				break
			}
			if IsFatalPollError(err) {
				result.Time = elapsed
				result.Error = truncate(err.Error(), 100)
				log.Printf("[RUNNER] ✗ 轮询不可恢复错误: %s", result.Error)
				return r.finish(key, result, OutcomeFailed, err)
			}
			pollErrs++
			history = r.appendHistory(history, model.PollRecord{TimeElapsed: elapsed, Error: truncate(err.Error(), 100)})
			if r.opts.MaxPollErrors > 0 && pollErrs >= r.opts.MaxPollErrors {
				result.Time = elapsed
				result.Error = fmt.Sprintf("Polling abandoned after %d consecutive errors", pollErrs)
				log.Printf("[RUNNER] ✗ %s", result.Error)
				return r.finish(key, result, OutcomeFailed, err)
			}
			continue
		}
		pollErrs = 0
		history = r.appendHistory(history, model.PollRecord{TimeElapsed: elapsed, Status: resp.Status, HasResult: resp.HasResult})

		switch resp.Status {
		case "ok":
			result.Time = elapsed
			result.Raw = resp.Raw
			if stdout, ok := resp.Stdout(); ok {
				progress = MonitorProgress(stdout).MergeFrom(progress)
				result.ProgressInfo = progress
			}
			if resp.HasResult {
				if plan := r.extractor.ExtractPlan(resp.Result, key.Planner, key.Domain); len(plan) > 0 {
					result.Solved = true
					result.Plan = plan
					result.PlanLength = len(plan)
					log.Printf("[RUNNER] ✓ SOLVED! Found plan with %d actions in %.1fs", len(plan), elapsed)
					return r.finish(key, result, OutcomeSolved, nil)
				}
			}
			if time.Since(lastReport) > r.opts.ProgressInterval {
				lastReport = time.Now()
				r.reportProgress(key, progress, elapsed)
				if r.debugEnabled(key.Planner) && debugSaves < r.opts.MaxDebugSaves && r.debug.ShouldSaveDebug(key, progress) {
					_, _ = r.store.SaveDebug(&model.DebugSnapshot{
						Domain:      key.Domain,
						Planner:     key.Planner,
						Problem:     key.Problem,
						Timestamp:   r.store.timestamp(),
						ElapsedTime: elapsed,
						Progress:    progress,
					})
					debugSaves++
				}
			}
		case "error", "failed":
			result.Time = elapsed
			result.Error = ErrPlanningFailed.Error()
			log.Printf("[RUNNER] ✗ FAILED: Planning error after %.1fs", elapsed)
			return r.finish(key, result, OutcomeFailed, ErrPlanningFailed)
		}
	}

	result.Time = time.Since(start).Seconds()
	if ctx.Err() != nil {
		return r.cancelled(key, result, ctx.Err())
	}
	return r.timedOut(key, result, resultURL, history, progress)
}

func (r *ExperimentRunner) timedOut(key model.ExperimentKey, result *model.ExperimentResult, resultURL string, history []model.PollRecord, progress model.ProgressSnapshot) ExperimentOutcome {
	result.Error = ErrTimeout.Error()
	if history == nil {
		history = []model.PollRecord{}
	}
	path, _ := r.store.SaveTimeout(&model.TimeoutReport{
		Domain:            key.Domain,
		Planner:           key.Planner,
		Problem:           key.Problem,
		Timestamp:         r.store.timestamp(),
		TimeoutUsed:       result.TimeoutUsed,
		TotalTime:         result.Time,
		Error:             "TIMEOUT",
		LastPollResponses: history,
		ResultURL:         resultURL,
		FinalProgress:     progress,
		Notes:             fmt.Sprintf("Planner did not complete within %d seconds", result.TimeoutUsed),
	})

	log.Printf("[RUNNER] ✗ TIMEOUT: No solution found within %ds", result.TimeoutUsed)
	if progress.InitializationTime != nil {
		log.Printf("[RUNNER]    Initialization took: %.1fs", *progress.InitializationTime)
	}
	if progress.Evaluated != nil {
		log.Printf("[RUNNER]    States evaluated before timeout: %d", *progress.Evaluated)
	}
	log.Printf("[RUNNER]    Debug info saved to: %s/", r.store.DebugDir())

	return ExperimentOutcome{Key: key, Outcome: OutcomeTimeout, Result: result, ArtifactPath: path, Err: ErrTimeout}
}

func (r *ExperimentRunner) cancelled(key model.ExperimentKey, result *model.ExperimentResult, cause error) ExperimentOutcome {
	result.Error = "Cancelled"
	log.Printf("[RUNNER] 实验被取消: %s", key)
	return ExperimentOutcome{Key: key, Outcome: OutcomeCancelled, Result: result, Err: cause}
}

// finish 按结局落盘：成功写 results 目录，其余写 debug 目录的 _FAILED 产物
func (r *ExperimentRunner) finish(key model.ExperimentKey, result *model.ExperimentResult, outcome Outcome, cause error) ExperimentOutcome {
	var (
		path string
		err  error
	)
	if outcome == OutcomeSolved {
		path, err = r.store.SaveSuccess(result)
	} else {
		path, err = r.store.SaveFailure(result)
	}
	if err != nil {
		log.Printf("[RUNNER] 产物写入失败: %v", err)
	}
	return ExperimentOutcome{Key: key, Outcome: outcome, Result: result, ArtifactPath: path, Err: cause}
}

func (r *ExperimentRunner) reportProgress(key model.ExperimentKey, p model.ProgressSnapshot, elapsed float64) {
	msg := fmt.Sprintf("Still running... (%.0fs elapsed", elapsed)
	if p.Evaluated != nil {
		msg += fmt.Sprintf(", %d states evaluated", *p.Evaluated)
	}
	if p.CurrentF != nil {
		msg += fmt.Sprintf(", f=%d", *p.CurrentF)
	}
	log.Printf("[POLL] %s)", msg)

	ev := newEvent(EventProgress)
	ev.Key = &key
	ev.Elapsed = elapsed
	snap := p
	ev.Progress = &snap
	r.emit(ev)
}

func (r *ExperimentRunner) debugEnabled(planner string) bool {
	return len(r.opts.DebugPlanners) == 0 || containsString(r.opts.DebugPlanners, planner)
}

func (r *ExperimentRunner) appendHistory(h []model.PollRecord, rec model.PollRecord) []model.PollRecord {
	h = append(h, rec)
	if len(h) > r.opts.PollHistory {
		h = h[len(h)-r.opts.PollHistory:]
	}
	return h
}

type plannedExperiment struct {
	planner string
	ref     ProblemRef
}

// RunAll 跑完整个矩阵中缺失的实验并写运行汇总。已有批次在跑时返回 ErrRunInProgress
func (r *ExperimentRunner) RunAll(ctx context.Context) (*model.RunSummary, error) {
	if !r.mu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer r.mu.Unlock()
	return r.runAll(ctx)
}

// StartAll 在后台启动批次；已有批次在跑时返回 false
func (r *ExperimentRunner) StartAll(ctx context.Context, done func(*model.RunSummary, error)) bool {
	if !r.mu.TryLock() {
		return false
	}
	go func() {
		defer r.mu.Unlock()
		sum, err := r.runAll(ctx)
		if err != nil {
			log.Printf("[RUNNER] 后台批次失败: %v", err)
		}
		if done != nil {
			done(sum, err)
		}
	}()
	return true
}

// Busy 是否有批次正在执行
func (r *ExperimentRunner) Busy() bool {
	if r.mu.TryLock() {
		r.mu.Unlock()
		return false
	}
	return true
}

func (r *ExperimentRunner) runAll(ctx context.Context) (*model.RunSummary, error) {
	if err := r.store.EnsureDirs(); err != nil {
		return nil, err
	}

	problems := r.catalog.Problems()
	total := len(r.planners) * len(problems)
	log.Printf("[RUNNER] Total possible experiments: %d", total)
	log.Printf("[RUNNER] Planners: %s", strings.Join(r.planners, ", "))
	log.Printf("[RUNNER] Domains: %s", strings.Join(r.catalog.DomainNames(), ", "))
	log.Printf("[RUNNER] Successful results will be saved to: %s/", r.store.ResultsDir())
	log.Printf("[RUNNER] Debug/failed results will be saved to: %s/", r.store.DebugDir())

	var (
		blacklisted int
		existing    int
		toRun       []plannedExperiment
	)
	for _, planner := range r.planners {
		for _, ref := range problems {
			if r.registry.IsBlacklisted(planner, ref.Domain, ref.Problem) {
				blacklisted++
				continue
			}
			if ok, _ := r.cache.CheckExisting(ref.Domain, planner, ref.Problem); ok {
				existing++
				continue
			}
			toRun = append(toRun, plannedExperiment{planner: planner, ref: ref})
		}
	}
	log.Printf("[RUNNER] Blacklisted experiments: %d", blacklisted)
	log.Printf("[RUNNER] Existing successful results: %d", existing)
	log.Printf("[RUNNER] Experiments to run: %d", len(toRun))

	runUUID := uuid.NewString()
	run := &model.ExperimentRun{
		RunUUID:       runUUID,
		TotalPossible: total,
		Blacklisted:   blacklisted,
		Existing:      existing,
		ToRun:         len(toRun),
	}
	runID, err := r.ledger.StartRun(ctx, run, r.planners, r.catalog.DomainNames())
	if err != nil {
		log.Printf("[LEDGER] %v", err)
	}

	started := newEvent(EventRunStarted)
	started.RunUUID = runUUID
	started.Message = fmt.Sprintf("%d experiments to run", len(toRun))
	r.emit(started)

	stats := model.RunStats{Skipped: blacklisted}
	executed := 0
	var errs []string
	for i, item := range toRun {
		if ctx.Err() != nil {
			break
		}
		log.Printf("[RUNNER] [%d/%d] %s on %s/%s", i+1, len(toRun), item.planner, item.ref.Domain, item.ref.Problem)

		out := r.RunExperiment(ctx, item.planner, item.ref)
		if out.Outcome == OutcomeCancelled {
			break
		}
		executed++
		if err := r.ledger.RecordAttempt(ctx, runID, out); err != nil {
			log.Printf("[LEDGER] %v", err)
		}

		switch out.Outcome {
		case OutcomeSkipped, OutcomeCacheHit:
		case OutcomeSolved:
			stats.Solved++
			log.Printf("[RUNNER]    → Saved to: %s", out.ArtifactPath)
		case OutcomeTimeout:
			stats.Timeout++
			log.Printf("[RUNNER]    → Timeout info saved to: %s/", r.store.DebugDir())
		default:
			stats.Failed++
			if out.Err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", out.Key, out.Err))
			}
			log.Printf("[RUNNER]    → Failed info saved to: %s/", r.store.DebugDir())
		}

		if i < len(toRun)-1 && r.opts.InterExperimentPause > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(r.opts.InterExperimentPause):
			}
		}
	}

	summary := r.buildSummary(runUUID, total, blacklisted, existing, len(toRun), stats)
	markdown := RenderSummaryMarkdown(summary, errs)
	jsonPath, mdPath, err := r.store.SaveSummary(summary, markdown)
	if err != nil {
		log.Printf("[RUNNER] 运行汇总写入失败: %v", err)
	}
	// 用独立 context 回填，取消后也能留下记录
	if err := r.ledger.FinishRun(context.WithoutCancel(ctx), runID, stats, jsonPath, mdPath); err != nil {
		log.Printf("[LEDGER] %v", err)
	}

	log.Printf("[RUNNER] %s", strings.Repeat("=", 70))
	log.Printf("[RUNNER] SUMMARY")
	log.Printf("[RUNNER] Total experiments: %d", total)
	log.Printf("[RUNNER] Blacklisted: %d", blacklisted)
	log.Printf("[RUNNER] Already solved: %d", existing)
	log.Printf("[RUNNER] Experiments run: %d/%d", executed, len(toRun))
	log.Printf("[RUNNER] Newly solved: %d  Failed: %d  Timeout: %d", stats.Solved, stats.Failed, stats.Timeout)
	log.Printf("[RUNNER] Total solved: %d", summary.TotalSolved)
	log.Printf("[RUNNER] Success rate: %.1f%% (excluding blacklisted)", summary.SuccessRate)

	finished := newEvent(EventRunFinished)
	finished.RunUUID = runUUID
	finished.Summary = summary
	r.emit(finished)

	if ctx.Err() != nil {
		return summary, fmt.Errorf("批次被中断: %w", ctx.Err())
	}
	return summary, nil
}

func (r *ExperimentRunner) buildSummary(runUUID string, total, blacklisted, existing, toRun int, stats model.RunStats) *model.RunSummary {
	status := r.Status()
	rates, tests := ComputePlannerRates(status)

	totalSolved := existing + stats.Solved
	effective := total - blacklisted
	var successRate float64
	if effective > 0 {
		successRate = float64(totalSolved) / float64(effective) * 100
	}
	return &model.RunSummary{
		RunUUID:            runUUID,
		Timestamp:          r.store.timestamp(),
		TotalPossible:      total,
		Blacklisted:        blacklisted,
		ExistingSuccessful: existing,
		ExperimentsRun:     toRun,
		Stats:              stats,
		TotalSolved:        totalSolved,
		SuccessRate:        successRate,
		Planners:           r.Planners(),
		Domains:            r.catalog.DomainNames(),
		ResultsDirectory:   r.store.ResultsDir(),
		DebugDirectory:     r.store.DebugDir(),
		Blacklist:          r.registry.Entries(),
		PlannerStats:       rates,
		Tests:              tests,
	}
}

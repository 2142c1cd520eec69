package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"planbench/internal/config"
	"planbench/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// rebuildRunner 用自定义的 tracer / emit 重新组装执行控制器
func rebuildRunner(svc *ServiceContext, mutate func(*RunnerDeps)) {
	deps := RunnerDeps{
		Planners:  svc.Config.Planners,
		Catalog:   svc.Catalog,
		Registry:  svc.Registry,
		Policy:    svc.Policy,
		Cache:     svc.Cache,
		Store:     svc.Store,
		Extractor: svc.Extractor,
		Solver:    svc.Solver,
		Ledger:    svc.Ledger,
	}
	mutate(&deps)
	svc.Runner = NewExperimentRunner(deps, RunnerOptionsFrom(svc.Config))
}

func mustFind(t *testing.T, svc *ServiceContext, domain, problem string) ProblemRef {
	t.Helper()
	ref, ok := svc.Catalog.Find(domain, problem)
	require.True(t, ok, "%s/%s 未被发现", domain, problem)
	return ref
}

func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, v))
}

func setTimeout(cfg *config.Config, seconds int) {
	for i := range cfg.Timeouts.Planners {
		cfg.Timeouts.Planners[i].Default = seconds
	}
}

func TestRunExperiment_Solved(t *testing.T) {
	fs := &fakeSolver{poll: func(n int) (int, any) {
		if n < 3 {
			return http.StatusOK, map[string]any{"status": "PENDING"}
		}
		return http.StatusOK, solvedBody("(pick-up a)\n(stack a b)\n")
	}}
	srv := httptest.NewServer(fs)
	defer srv.Close()

	svc := newTestServices(t, newTestConfig(t, srv.URL))
	ref := mustFind(t, svc, "blocksworld", "problema_01_facil.pddl")

	out := svc.Runner.RunExperiment(context.Background(), "lama-first", ref)
	require.Equal(t, OutcomeSolved, out.Outcome, "error: %v", out.Err)
	assert.Equal(t, []string{"(pick-up a)", "(stack a b)"}, out.Result.Plan)
	assert.Equal(t, 2, out.Result.PlanLength)
	assert.Equal(t, svc.Store.SuccessPath("blocksworld", "lama-first", "problema_01_facil.pddl"), out.ArtifactPath)

	var saved model.ExperimentResult
	readJSON(t, out.ArtifactPath, &saved)
	assert.True(t, saved.Valid())
	assert.Equal(t, 5, saved.TimeoutUsed)
	assert.Equal(t, "ok", saved.Raw["status"])

	// 再跑一次命中缓存，不再提交
	again := svc.Runner.RunExperiment(context.Background(), "lama-first", ref)
	assert.Equal(t, OutcomeCacheHit, again.Outcome)
	submits, polls := fs.counts()
	assert.Equal(t, 1, submits)
	assert.Equal(t, 3, polls)
}

func TestRunExperiment_PlanningFailed(t *testing.T) {
	fs := &fakeSolver{poll: func(int) (int, any) {
		return http.StatusOK, map[string]any{"status": "error", "result": map[string]any{"stdout": "Search stopped without finding a solution."}}
	}}
	srv := httptest.NewServer(fs)
	defer srv.Close()

	svc := newTestServices(t, newTestConfig(t, srv.URL))
	out := svc.Runner.RunExperiment(context.Background(), "lama-first", mustFind(t, svc, "blocksworld", "problema_01_facil.pddl"))

	assert.Equal(t, OutcomeFailed, out.Outcome)
	assert.ErrorIs(t, out.Err, ErrPlanningFailed)
	assert.Equal(t, "Planning failed", out.Result.Error)
	assert.FileExists(t, svc.Store.FailurePath("blocksworld", "lama-first", "problema_01_facil.pddl"))
	assert.NoFileExists(t, svc.Store.SuccessPath("blocksworld", "lama-first", "problema_01_facil.pddl"))
}

func TestRunExperiment_SubmitErrors(t *testing.T) {
	cases := []struct {
		name    string
		solver  *fakeSolver
		wantErr string
	}{
		{"non-200", &fakeSolver{submitStatus: http.StatusInternalServerError}, "HTTP 500"},
		{"missing result", &fakeSolver{submitBody: map[string]any{"message": "queued"}}, "No result URL"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			srv := httptest.NewServer(c.solver)
			defer srv.Close()

			svc := newTestServices(t, newTestConfig(t, srv.URL))
			out := svc.Runner.RunExperiment(context.Background(), "delfi", mustFind(t, svc, "logistics", "probLOGISTICS-4-0.pddl"))

			assert.Equal(t, OutcomeSubmitError, out.Outcome)
			assert.Equal(t, c.wantErr, out.Result.Error)
			var se *SubmissionError
			assert.ErrorAs(t, out.Err, &se)

			var saved model.ExperimentResult
			readJSON(t, svc.Store.FailurePath("logistics", "delfi", "probLOGISTICS-4-0.pddl"), &saved)
			assert.False(t, saved.Solved)
			assert.Equal(t, c.wantErr, saved.Error)

			_, polls := c.solver.counts()
			assert.Zero(t, polls)
		})
	}
}

func TestRunExperiment_Timeout(t *testing.T) {
	fs := &fakeSolver{}
	srv := httptest.NewServer(fs)
	defer srv.Close()

	cfg := newTestConfig(t, srv.URL)
	setTimeout(cfg, 1)
	svc := newTestServices(t, cfg)

	start := time.Now()
	out := svc.Runner.RunExperiment(context.Background(), "lama-first", mustFind(t, svc, "blocksworld", "problema_02_medio.pddl"))
	elapsed := time.Since(start)

	assert.Equal(t, OutcomeTimeout, out.Outcome)
	assert.ErrorIs(t, out.Err, ErrTimeout)
	assert.GreaterOrEqual(t, elapsed, time.Second)
	assert.Less(t, elapsed, 3*time.Second)
	assert.GreaterOrEqual(t, out.Result.Time, 1.0)

	files := listDir(t, cfg.Paths.DebugDir, "TIMEOUT_blocksworld_lama-first_problema_02_medio_")
	require.Len(t, files, 1)
	var rep model.TimeoutReport
	readJSON(t, filepath.Join(cfg.Paths.DebugDir, files[0]), &rep)
	assert.Equal(t, "TIMEOUT", rep.Error)
	assert.Equal(t, 1, rep.TimeoutUsed)
	assert.Equal(t, srv.URL+"/check/1", rep.ResultURL)
	assert.Equal(t, "Planner did not complete within 1 seconds", rep.Notes)
	assert.NotEmpty(t, rep.LastPollResponses)
	assert.LessOrEqual(t, len(rep.LastPollResponses), 10)
	assert.Equal(t, "PENDING", rep.LastPollResponses[len(rep.LastPollResponses)-1].Status)

	assert.Empty(t, listDir(t, cfg.Paths.DebugDir, "blocksworld_lama-first_problema_02_medio_FAILED"))
}

func TestRunExperiment_ProgressAndDebugSnapshots(t *testing.T) {
	fs := &fakeSolver{poll: func(int) (int, any) {
		return http.StatusOK, solvedBody("Chose lmcut\n[g=1, 100 evaluated, 50 expanded, t=0.1s]\nf = 3\n")
	}}
	srv := httptest.NewServer(fs)
	defer srv.Close()

	cfg := newTestConfig(t, srv.URL)
	setTimeout(cfg, 1)
	svc := newTestServices(t, cfg)

	var events []Event
	rebuildRunner(svc, func(d *RunnerDeps) {
		d.Emit = func(ev Event) { events = append(events, ev) }
	})

	out := svc.Runner.RunExperiment(context.Background(), "delfi", mustFind(t, svc, "blocksworld", "problema_01_facil.pddl"))
	require.Equal(t, OutcomeTimeout, out.Outcome)
	require.NotNil(t, out.Result.ProgressInfo.Evaluated)
	assert.Equal(t, 100, *out.Result.ProgressInfo.Evaluated)

	// 进度没有变化，只保存首个快照
	debugFiles := listDir(t, cfg.Paths.DebugDir, "DEBUG_blocksworld_delfi_problema_01_facil_")
	require.Len(t, debugFiles, 1)
	var snap model.DebugSnapshot
	readJSON(t, filepath.Join(cfg.Paths.DebugDir, debugFiles[0]), &snap)
	assert.Equal(t, "lmcut", snap.Progress.SelectedConfig)

	timeoutFiles := listDir(t, cfg.Paths.DebugDir, "TIMEOUT_")
	require.Len(t, timeoutFiles, 1)
	var rep model.TimeoutReport
	readJSON(t, filepath.Join(cfg.Paths.DebugDir, timeoutFiles[0]), &rep)
	require.NotNil(t, rep.FinalProgress.CurrentF)
	assert.Equal(t, 3, *rep.FinalProgress.CurrentF)

	var progressEvents int
	for _, ev := range events {
		if ev.Type == EventProgress {
			progressEvents++
		}
	}
	assert.Positive(t, progressEvents)
	assert.Equal(t, EventExperimentStarted, events[0].Type)
	assert.Equal(t, EventExperimentFinished, events[len(events)-1].Type)
	assert.Equal(t, OutcomeTimeout, events[len(events)-1].Outcome)
}

// tickingClock 每次调用前进一秒，产物文件名互不相同
func tickingClock() func() time.Time {
	base := time.Unix(1700000000, 0)
	var n int64
	return func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

func TestRunExperiment_DebugSnapshotCap(t *testing.T) {
	for _, maxSaves := range []int{5, 2} {
		t.Run(fmt.Sprintf("max=%d", maxSaves), func(t *testing.T) {
			// 每次轮询 evaluated 增加 5000 且 f 变化，每次进度检查都值得保存
			fs := &fakeSolver{poll: func(n int) (int, any) {
				return http.StatusOK, solvedBody(fmt.Sprintf("[g=1, %d evaluated, 10 expanded, t=0.1s]\nf = %d\n", 5000*n, n))
			}}
			srv := httptest.NewServer(fs)
			defer srv.Close()

			cfg := newTestConfig(t, srv.URL)
			setTimeout(cfg, 1)
			cfg.Runner.MaxDebugSaves = maxSaves
			svc := newTestServices(t, cfg)
			svc.Store.now = tickingClock()

			out := svc.Runner.RunExperiment(context.Background(), "lama-first", mustFind(t, svc, "blocksworld", "problema_01_facil.pddl"))
			require.Equal(t, OutcomeTimeout, out.Outcome)

			_, polls := fs.counts()
			require.Greater(t, polls, 2*maxSaves, "轮询次数不足以触发上限")
			assert.Len(t, listDir(t, cfg.Paths.DebugDir, "DEBUG_blocksworld_lama-first_problema_01_facil_"), maxSaves)
		})
	}
}

func TestRunExperiment_DebugStateOutlivesExperiment(t *testing.T) {
	fs := &fakeSolver{poll: func(int) (int, any) {
		return http.StatusOK, solvedBody("[g=1, 100 evaluated, 50 expanded, t=0.1s]\nf = 3\n")
	}}
	srv := httptest.NewServer(fs)
	defer srv.Close()

	cfg := newTestConfig(t, srv.URL)
	setTimeout(cfg, 1)
	svc := newTestServices(t, cfg)
	svc.Store.now = tickingClock()
	ref := mustFind(t, svc, "blocksworld", "problema_02_medio.pddl")

	// 同一进程内重跑，进度未变化时不再写快照
	for i := 0; i < 2; i++ {
		out := svc.Runner.RunExperiment(context.Background(), "delfi", ref)
		require.Equal(t, OutcomeTimeout, out.Outcome)
	}
	assert.Len(t, listDir(t, cfg.Paths.DebugDir, "DEBUG_"), 1)
	assert.Len(t, listDir(t, cfg.Paths.DebugDir, "TIMEOUT_"), 2)
}

func TestRunExperiment_DebugPlannerFilter(t *testing.T) {
	fs := &fakeSolver{poll: func(int) (int, any) {
		return http.StatusOK, solvedBody("[g=1, 100 evaluated, 50 expanded, t=0.1s]")
	}}
	srv := httptest.NewServer(fs)
	defer srv.Close()

	cfg := newTestConfig(t, srv.URL)
	setTimeout(cfg, 1)
	cfg.Runner.DebugPlanners = []string{"delfi"}
	svc := newTestServices(t, cfg)

	out := svc.Runner.RunExperiment(context.Background(), "lama-first", mustFind(t, svc, "blocksworld", "problema_01_facil.pddl"))
	require.Equal(t, OutcomeTimeout, out.Outcome)
	assert.Empty(t, listDir(t, cfg.Paths.DebugDir, "DEBUG_"))
}

func TestRunExperiment_Blacklisted(t *testing.T) {
	fs := &fakeSolver{}
	srv := httptest.NewServer(fs)
	defer srv.Close()

	cfg := newTestConfig(t, srv.URL)
	cfg.Blacklist = []config.BlacklistEntry{{Planner: "lama-first", Domain: "blocksworld", Problem: "problema_01_facil.pddl"}}
	svc := newTestServices(t, cfg)

	out := svc.Runner.RunExperiment(context.Background(), "lama-first", mustFind(t, svc, "blocksworld", "problema_01_facil.pddl"))
	assert.Equal(t, OutcomeSkipped, out.Outcome)
	assert.True(t, out.Result.Skipped)
	assert.Equal(t, "Blacklisted", out.Result.Error)

	submits, _ := fs.counts()
	assert.Zero(t, submits)
	assert.Empty(t, listDir(t, cfg.Paths.DebugDir, ""))
}

func TestRunExperiment_TransientPollErrors(t *testing.T) {
	fs := &fakeSolver{poll: func(n int) (int, any) {
		switch n {
		case 1:
			return http.StatusBadGateway, ""
		case 2:
			return http.StatusOK, "{not json"
		default:
			return http.StatusOK, solvedBody("(unstack c a)\n(put-down c)")
		}
	}}
	srv := httptest.NewServer(fs)
	defer srv.Close()

	svc := newTestServices(t, newTestConfig(t, srv.URL))
	out := svc.Runner.RunExperiment(context.Background(), "lama-first", mustFind(t, svc, "blocksworld", "problema_01_facil.pddl"))

	require.Equal(t, OutcomeSolved, out.Outcome)
	assert.Equal(t, 2, out.Result.PlanLength)
	_, polls := fs.counts()
	assert.Equal(t, 3, polls)
}

func TestRunExperiment_MaxPollErrors(t *testing.T) {
	fs := &fakeSolver{poll: func(int) (int, any) { return http.StatusServiceUnavailable, "" }}
	srv := httptest.NewServer(fs)
	defer srv.Close()

	cfg := newTestConfig(t, srv.URL)
	cfg.Solver.MaxPollErrors = 3
	svc := newTestServices(t, cfg)

	out := svc.Runner.RunExperiment(context.Background(), "lama-first", mustFind(t, svc, "blocksworld", "problema_01_facil.pddl"))
	assert.Equal(t, OutcomeFailed, out.Outcome)
	assert.Equal(t, "Polling abandoned after 3 consecutive errors", out.Result.Error)
	_, polls := fs.counts()
	assert.Equal(t, 3, polls)
}

func TestRunExperiment_FatalResultURL(t *testing.T) {
	fs := &fakeSolver{submitBody: map[string]any{"result": "/check/\x7f"}}
	srv := httptest.NewServer(fs)
	defer srv.Close()

	svc := newTestServices(t, newTestConfig(t, srv.URL))
	start := time.Now()
	out := svc.Runner.RunExperiment(context.Background(), "lama-first", mustFind(t, svc, "blocksworld", "problema_01_facil.pddl"))

	assert.Equal(t, OutcomeFailed, out.Outcome)
	assert.True(t, IsFatalPollError(out.Err))
	assert.Less(t, time.Since(start), time.Second)
	assert.FileExists(t, svc.Store.FailurePath("blocksworld", "lama-first", "problema_01_facil.pddl"))
	_, polls := fs.counts()
	assert.Zero(t, polls)
}

func TestRunExperiment_LocalPreconditions(t *testing.T) {
	fs := &fakeSolver{}
	srv := httptest.NewServer(fs)
	defer srv.Close()

	t.Run("domain not loaded", func(t *testing.T) {
		cfg := newTestConfig(t, srv.URL)
		require.NoError(t, os.Remove(filepath.Join(cfg.Paths.DataDir, "blocksworld_files", "blocksworld_domain.pddl")))
		svc := newTestServices(t, cfg)

		out := svc.Runner.RunExperiment(context.Background(), "lama-first", mustFind(t, svc, "blocksworld", "problema_01_facil.pddl"))
		assert.Equal(t, OutcomeLocalError, out.Outcome)
		assert.ErrorIs(t, out.Err, ErrDomainNotLoaded)
		assert.Equal(t, "Domain not loaded", out.Result.Error)
		assert.FileExists(t, svc.Store.FailurePath("blocksworld", "lama-first", "problema_01_facil.pddl"))
	})

	t.Run("problem missing", func(t *testing.T) {
		cfg := newTestConfig(t, srv.URL)
		svc := newTestServices(t, cfg)
		require.NoError(t, os.Remove(filepath.Join(cfg.Paths.DataDir, "blocksworld_files", "problema_02_medio.pddl")))

		out := svc.Runner.RunExperiment(context.Background(), "lama-first", mustFind(t, svc, "blocksworld", "problema_02_medio.pddl"))
		assert.Equal(t, OutcomeLocalError, out.Outcome)
		assert.ErrorIs(t, out.Err, ErrProblemNotFound)
		assert.Equal(t, "Problem file not found", out.Result.Error)
	})

	submits, _ := fs.counts()
	assert.Zero(t, submits)
}

func TestRunExperiment_Cancelled(t *testing.T) {
	fs := &fakeSolver{}
	srv := httptest.NewServer(fs)
	defer srv.Close()

	cfg := newTestConfig(t, srv.URL)
	svc := newTestServices(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	start := time.Now()
	out := svc.Runner.RunExperiment(ctx, "lama-first", mustFind(t, svc, "blocksworld", "problema_01_facil.pddl"))

	assert.Equal(t, OutcomeCancelled, out.Outcome)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Empty(t, listDir(t, cfg.Paths.DebugDir, "TIMEOUT_"))
}

func TestRunExperiment_RecordsSpan(t *testing.T) {
	fs := &fakeSolver{poll: func(int) (int, any) { return http.StatusOK, solvedBody("(pick-up a)") }}
	srv := httptest.NewServer(fs)
	defer srv.Close()

	svc := newTestServices(t, newTestConfig(t, srv.URL))
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	rebuildRunner(svc, func(d *RunnerDeps) { d.Tracer = tp.Tracer("test") })

	out := svc.Runner.RunExperiment(context.Background(), "lama-first", mustFind(t, svc, "blocksworld", "problema_01_facil.pddl"))
	require.Equal(t, OutcomeSolved, out.Outcome)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "experiment", spans[0].Name())
	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "solved", attrs["outcome"])
	assert.Equal(t, "lama-first", attrs["planner"])
	assert.Equal(t, "1", attrs["plan_length"])
}

func TestRunAll(t *testing.T) {
	fs := &fakeSolver{poll: func(int) (int, any) {
		// 同一输出按域的动作表过滤后各自得到一步
		return http.StatusOK, solvedBody("(pick-up a)\n(drive-truck t1 l1 l2 c1)")
	}}
	srv := httptest.NewServer(fs)
	defer srv.Close()

	cfg := newTestConfig(t, srv.URL)
	cfg.Blacklist = []config.BlacklistEntry{{Planner: "delfi", Domain: "logistics", Problem: "probLOGISTICS-4-0.pddl"}}
	svc := newTestServices(t, cfg)

	_, err := svc.Store.SaveSuccess(&model.ExperimentResult{
		Domain: "blocksworld", Planner: "lama-first", Problem: "problema_02_medio.pddl",
		Solved: true, Plan: []string{"(pick-up a)"}, PlanLength: 1,
	})
	require.NoError(t, err)

	var events []Event
	rebuildRunner(svc, func(d *RunnerDeps) {
		d.Emit = func(ev Event) { events = append(events, ev) }
	})

	sum, err := svc.Runner.RunAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 6, sum.TotalPossible)
	assert.Equal(t, 1, sum.Blacklisted)
	assert.Equal(t, 1, sum.ExistingSuccessful)
	assert.Equal(t, 4, sum.ExperimentsRun)
	assert.Equal(t, model.RunStats{Solved: 4, Skipped: 1}, sum.Stats)
	assert.Equal(t, 5, sum.TotalSolved)
	assert.InDelta(t, 100.0, sum.SuccessRate, 1e-9)
	assert.Equal(t, []string{"blocksworld", "logistics"}, sum.Domains)
	assert.Len(t, sum.Blacklist, 1)
	lama := sum.PlannerStats["lama-first"]
	assert.Equal(t, 3, lama.N)
	assert.Equal(t, 3, lama.Solved)
	assert.InDelta(t, 1.0, lama.CI95High, 1e-9)
	assert.Equal(t, 2, sum.PlannerStats["delfi"].N)
	assert.Contains(t, sum.Tests, "delfi_vs_lama-first")
	assert.NotEmpty(t, sum.RunUUID)

	submits, _ := fs.counts()
	assert.Equal(t, 4, submits)

	jsonPath, mdPath := svc.Store.SummaryPaths()
	var saved model.RunSummary
	readJSON(t, jsonPath, &saved)
	assert.Equal(t, sum.RunUUID, saved.RunUUID)
	assert.FileExists(t, mdPath)

	var logistics model.ExperimentResult
	readJSON(t, svc.Store.SuccessPath("logistics", "lama-first", "probLOGISTICS-4-0.pddl"), &logistics)
	assert.Equal(t, []string{"(drive-truck t1 l1 l2 c1)"}, logistics.Plan)

	require.NotEmpty(t, events)
	assert.Equal(t, EventRunStarted, events[0].Type)
	assert.Equal(t, EventRunFinished, events[len(events)-1].Type)
	assert.Equal(t, sum.RunUUID, events[len(events)-1].RunUUID)

	// 第二次全部命中缓存
	sum2, err := svc.Runner.RunAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, sum2.ExistingSuccessful)
	assert.Zero(t, sum2.ExperimentsRun)
	submits, _ = fs.counts()
	assert.Equal(t, 4, submits)
}

func TestRunAll_SingleBatchAtATime(t *testing.T) {
	svc := newTestServices(t, newTestConfig(t, "http://127.0.0.1:1"))

	svc.Runner.mu.Lock()
	assert.True(t, svc.Runner.Busy())
	_, err := svc.Runner.RunAll(context.Background())
	assert.ErrorIs(t, err, ErrRunInProgress)
	assert.False(t, svc.Runner.StartAll(context.Background(), nil))
	svc.Runner.mu.Unlock()

	assert.False(t, svc.Runner.Busy())
}

func TestStartAll(t *testing.T) {
	fs := &fakeSolver{poll: func(int) (int, any) { return http.StatusOK, solvedBody("(pick-up a)\n(drive-truck t1 l1 l2 c1)") }}
	srv := httptest.NewServer(fs)
	defer srv.Close()

	svc := newTestServices(t, newTestConfig(t, srv.URL))
	done := make(chan *model.RunSummary, 1)
	require.True(t, svc.Runner.StartAll(context.Background(), func(s *model.RunSummary, err error) {
		assert.NoError(t, err)
		done <- s
	}))

	select {
	case s := <-done:
		assert.Equal(t, 6, s.Stats.Solved)
	case <-time.After(10 * time.Second):
		t.Fatal("后台批次未在预期时间内完成")
	}
}

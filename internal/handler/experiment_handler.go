package handler

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"strconv"

	"planbench/internal/service"

	"github.com/gin-gonic/gin"
)

type ExperimentHandler struct {
	svc *service.ServiceContext
	// 后台批次使用的 context，随服务关闭而取消
	baseCtx context.Context
}

func NewExperimentHandler(ctx context.Context, svc *service.ServiceContext) *ExperimentHandler {
	return &ExperimentHandler{svc: svc, baseCtx: ctx}
}

// GetStatus 整体与各 planner 的完成情况
func (h *ExperimentHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  h.svc.Runner.Status(),
		"running": h.svc.Runner.Busy(),
	})
}

// GetBlacklist 黑名单列表
func (h *ExperimentHandler) GetBlacklist(c *gin.Context) {
	entries := h.svc.Registry.Entries()
	c.JSON(http.StatusOK, gin.H{
		"total":   len(entries),
		"entries": entries,
	})
}

// GetTimeout 查询某个 (planner, problem) 的超时
func (h *ExperimentHandler) GetTimeout(c *gin.Context) {
	var req struct {
		Planner string `form:"planner" binding:"required"`
		Problem string `form:"problem" binding:"required"`
	}
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"planner":         req.Planner,
		"problem":         req.Problem,
		"timeout_seconds": h.svc.Policy.GetTimeout(req.Planner, req.Problem),
	})
}

// ListTimeouts 完整超时表（按书写顺序）
func (h *ExperimentHandler) ListTimeouts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"default":  h.svc.Config.Timeouts.Default,
		"planners": h.svc.Policy.Table(),
	})
}

// ListDomains 已配置的域及发现的问题
func (h *ExperimentHandler) ListDomains(c *gin.Context) {
	domains := make([]gin.H, 0)
	for _, name := range h.svc.Catalog.DomainNames() {
		_, loaded := h.svc.Catalog.DomainSource(name)
		problems := make([]string, 0)
		for _, ref := range h.svc.Catalog.ProblemsOf(name) {
			problems = append(problems, ref.Problem)
		}
		domains = append(domains, gin.H{
			"name":     name,
			"loaded":   loaded,
			"problems": problems,
		})
	}
	c.JSON(http.StatusOK, gin.H{"domains": domains})
}

// GetResult 读取某个实验的成功产物
func (h *ExperimentHandler) GetResult(c *gin.Context) {
	domain, planner, problem := c.Param("domain"), c.Param("planner"), c.Param("problem")
	ok, result := h.svc.Cache.CheckExisting(domain, planner, problem)
	if ok {
		c.JSON(http.StatusOK, result)
		return
	}
	if _, err := h.svc.Store.LoadResult(domain, planner, problem); err != nil && !errors.Is(err, fs.ErrNotExist) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "结果不存在"})
}

// ListRuns 最近的批次（需要启用台账）
func (h *ExperimentHandler) ListRuns(c *gin.Context) {
	if !h.svc.Ledger.Enabled() {
		c.JSON(http.StatusOK, gin.H{"ledger_enabled": false, "runs": []any{}})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	runs, err := h.svc.Ledger.RecentRuns(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ledger_enabled": true, "runs": runs})
}

// ListAttempts 某个批次内的逐个实验记录
func (h *ExperimentHandler) ListAttempts(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的批次ID"})
		return
	}
	attempts, err := h.svc.Ledger.Attempts(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"run_id": id, "attempts": attempts})
}

// RunExperiments 后台启动一次批量执行，进度通过 /api/ws 推送
func (h *ExperimentHandler) RunExperiments(c *gin.Context) {
	if !h.svc.Runner.StartAll(h.baseCtx, nil) {
		c.JSON(http.StatusConflict, gin.H{"error": service.ErrRunInProgress.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"run_started": true})
}

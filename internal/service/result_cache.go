package service

import (
	"errors"
	"io/fs"
	"log"

	"planbench/internal/model"
)

// ResultCache 以 results 目录中的成功产物作为缓存。
// 文件缺失、无法解析、未 solved 或 plan_length 与 plan 不一致都视为未命中
type ResultCache struct {
	store *ArtifactStore
}

func NewResultCache(store *ArtifactStore) *ResultCache {
	return &ResultCache{store: store}
}

func (c *ResultCache) CheckExisting(domain, planner, problem string) (bool, *model.ExperimentResult) {
	r, err := c.store.LoadResult(domain, planner, problem)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Printf("[CACHE] 忽略无法读取的结果 %s/%s/%s: %v", domain, planner, problem, err)
		}
		return false, nil
	}
	if !r.Valid() {
		return false, nil
	}
	return true, r
}

package service

import (
	"errors"
	"fmt"
)

// 以下错误文本会写进产物的 error 字段，保持与历史产物一致
var (
	ErrBlacklisted     = errors.New("Blacklisted")
	ErrDomainNotLoaded = errors.New("Domain not loaded")
	ErrProblemNotFound = errors.New("Problem file not found")
	ErrPlanningFailed  = errors.New("Planning failed")
	ErrTimeout         = errors.New("Extended timeout reached")
	ErrRunInProgress   = errors.New("已有批量实验在执行")
)

// SubmissionError 提交阶段失败：非 200、缺少 result 字段，或请求本身失败
type SubmissionError struct {
	StatusCode int
	Reason     string
	Err        error
}

func (e *SubmissionError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	case e.Reason != "":
		return e.Reason
	case e.Err != nil:
		return truncate(e.Err.Error(), 100)
	default:
		return "submission failed"
	}
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// PollError 轮询阶段错误。Fatal=false 的错误被吞掉并继续轮询；
// Fatal=true 表示配置类问题（URL 非法、证书不可信），重试没有意义
type PollError struct {
	Fatal      bool
	StatusCode int
	Err        error
}

func (e *PollError) Error() string {
	kind := "transient"
	if e.Fatal {
		kind = "fatal"
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("poll %s: HTTP %d", kind, e.StatusCode)
	}
	return fmt.Sprintf("poll %s: %v", kind, e.Err)
}

func (e *PollError) Unwrap() error { return e.Err }

// IsFatalPollError 判断轮询错误是否不可重试
func IsFatalPollError(err error) bool {
	var pe *PollError
	return errors.As(err, &pe) && pe.Fatal
}

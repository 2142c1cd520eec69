package service

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"planbench/internal/config"
)

// Solver 远端求解服务的最小接口，便于在测试中替换
type Solver interface {
	Submit(ctx context.Context, planner, domain, problem string) (string, error)
	Poll(ctx context.Context, resultURL string) (*PollResponse, error)
}

// SolverClient planning.domains 风格的 HTTP 求解服务客户端
type SolverClient struct {
	BaseURL      string
	SubmitClient *http.Client
	PollClient   *http.Client
}

func NewSolverClient(cfg config.SolverConfig) *SolverClient {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}
	return &SolverClient{
		BaseURL: strings.TrimRight(cfg.BaseURL, "/"),
		SubmitClient: &http.Client{
			Timeout:   cfg.SubmitTimeout,
			Transport: transport,
		},
		PollClient: &http.Client{
			Timeout:   cfg.PollTimeout,
			Transport: transport,
		},
	}
}

type SolveRequest struct {
	Domain  string `json:"domain"`
	Problem string `json:"problem"`
}

// PollResponse 轮询响应。Raw 为完整响应体，Result 为其中的 result 对象
type PollResponse struct {
	Status    string
	Result    map[string]any
	HasResult bool
	Raw       map[string]any
}

// Stdout 结果中的 stdout 文本
func (p *PollResponse) Stdout() (string, bool) {
	if p == nil || p.Result == nil {
		return "", false
	}
	v, ok := p.Result["stdout"]
	if !ok {
		return "", false
	}
	return toText(v), true
}

// Submit 提交求解请求，返回用于轮询的完整 URL
func (c *SolverClient) Submit(ctx context.Context, planner, domain, problem string) (string, error) {
	endpoint := fmt.Sprintf("%s/package/%s/solve", c.BaseURL, planner)

	jsonData, err := json.Marshal(SolveRequest{Domain: domain, Problem: problem})
	if err != nil {
		return "", &SubmissionError{Err: fmt.Errorf("序列化请求失败: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", &SubmissionError{Err: fmt.Errorf("创建请求失败: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.SubmitClient.Do(req)
	if err != nil {
		return "", &SubmissionError{Err: fmt.Errorf("请求失败: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", &SubmissionError{StatusCode: resp.StatusCode}
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", &SubmissionError{Reason: "No result URL", Err: fmt.Errorf("解析响应失败: %w", err)}
	}
	path, ok := body["result"].(string)
	if !ok || path == "" {
		return "", &SubmissionError{Reason: "No result URL"}
	}
	return c.BaseURL + path, nil
}

// Poll 查询一次结果。返回的错误总是 *PollError：
// URL 非法或证书不可信为 Fatal，网络错误、非 200、响应无法解析为瞬时错误
func (c *SolverClient) Poll(ctx context.Context, resultURL string) (*PollResponse, error) {
	if err := validatePollURL(resultURL); err != nil {
		return nil, &PollError{Fatal: true, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resultURL, nil)
	if err != nil {
		return nil, &PollError{Fatal: true, Err: fmt.Errorf("创建请求失败: %w", err)}
	}

	resp, err := c.PollClient.Do(req)
	if err != nil {
		var certErr *tls.CertificateVerificationError
		return nil, &PollError{Fatal: errors.As(err, &certErr), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &PollError{StatusCode: resp.StatusCode}
	}

	var raw map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, &PollError{Err: fmt.Errorf("解析响应失败: %w", err)}
	}

	out := &PollResponse{Raw: raw}
	out.Status, _ = raw["status"].(string)
	if r, ok := raw["result"]; ok && r != nil {
		out.HasResult = true
		out.Result, _ = r.(map[string]any)
	}
	return out, nil
}

func validatePollURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("结果 URL 非法: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("结果 URL 协议不受支持: %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("结果 URL 缺少主机: %q", raw)
	}
	return nil
}

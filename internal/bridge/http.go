package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"go-user-admin/internal/domain"
	"go-user-admin/internal/transport/http/handler"
	mdw "go-user-admin/internal/transport/http/middleware"
	resp "go-user-admin/internal/transport/http/response"
)

const apiPrefix = "/admin/v1"

// HTTPClient 调用后台 HTTP API，解包 {code,msg,data}
type HTTPClient struct {
	BaseURL string
	HC      *http.Client

	mu    sync.RWMutex
	token string
}

func NewHTTPClient(baseURL, token string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HC:      &http.Client{Timeout: timeout},
		token:   token,
	}
}

func (c *HTTPClient) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *HTTPClient) SetToken(tok string) {
	c.mu.Lock()
	c.token = tok
	c.mu.Unlock()
}

// Login 换取令牌并保存到客户端
func (c *HTTPClient) Login(ctx context.Context, userID, password string) (handler.LoginOut, error) {
	var out handler.LoginOut
	raw, err := c.call(ctx, http.MethodPost, "/auth/login", handler.LoginIn{UserID: userID, Password: password})
	if err != nil {
		return out, err
	}
	if !raw.OK() {
		return out, &RemoteError{Code: raw.Code, Message: raw.Msg}
	}
	if err := json.Unmarshal(raw.Data, &out); err != nil {
		return out, fmt.Errorf("decode login: %w", err)
	}
	c.SetToken(out.Token)
	return out, nil
}

func (c *HTTPClient) Query(ctx context.Context, _ ListUsers) (QueryResult, error) {
	raw, err := c.call(ctx, http.MethodGet, "/users", nil)
	if err != nil {
		return QueryResult{}, err
	}
	if !raw.OK() {
		return QueryResult{Code: raw.Code, Message: raw.Msg}, nil
	}
	var list handler.ListOut
	if err := json.Unmarshal(raw.Data, &list); err != nil {
		return QueryResult{}, fmt.Errorf("decode users: %w", err)
	}
	return QueryResult{Code: StatusOK, Data: list.Items}, nil
}

// Execute 业务失败（含 403 拒绝）通过 Result.Message 返回，error 只表示传输失败
func (c *HTTPClient) Execute(ctx context.Context, cmd DeleteUser) (Result, error) {
	raw, err := c.call(ctx, http.MethodDelete, "/users/"+url.PathEscape(cmd.ID), nil)
	if err != nil {
		return Result{}, err
	}
	if !raw.OK() {
		return Result{Message: raw.Msg}, nil
	}
	return Result{OK: true}, nil
}

func (c *HTTPClient) Mutate(ctx context.Context, m Mutation) (bool, error) {
	var (
		raw resp.Raw
		err error
	)
	switch v := m.(type) {
	case EditUser:
		raw, err = c.call(ctx, http.MethodPut, "/users/"+url.PathEscape(v.ID),
			handler.EditIn{Name: v.Name, Role: v.Role, PrevRole: v.PrevRole, Password: v.Password})
	case AddUser:
		raw, err = c.call(ctx, http.MethodPost, "/users",
			handler.AddIn{ID: v.ID, Name: v.Name, Role: v.Role, Password: v.Password})
	default:
		return false, fmt.Errorf("unsupported mutation %T", m)
	}
	if err != nil {
		return false, err
	}
	if !raw.OK() {
		return false, &RemoteError{Code: raw.Code, Message: raw.Msg}
	}
	var out handler.MutateOut
	if err := json.Unmarshal(raw.Data, &out); err != nil {
		return false, fmt.Errorf("decode result: %w", err)
	}
	return out.OK, nil
}

func (c *HTTPClient) Roles(ctx context.Context) ([]domain.Role, error) {
	raw, err := c.call(ctx, http.MethodGet, "/roles", nil)
	if err != nil {
		return nil, err
	}
	if !raw.OK() {
		return nil, &RemoteError{Code: raw.Code, Message: raw.Msg}
	}
	var roles []domain.Role
	if err := json.Unmarshal(raw.Data, &roles); err != nil {
		return nil, fmt.Errorf("decode roles: %w", err)
	}
	return roles, nil
}

func (c *HTTPClient) call(ctx context.Context, method, path string, body any) (resp.Raw, error) {
	var raw resp.Raw
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return raw, err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+apiPrefix+path, rd)
	if err != nil {
		return raw, err
	}
	rid := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(mdw.KeyRequestID, rid)
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	res, err := c.HC.Do(req)
	if err != nil {
		return raw, err
	}
	defer res.Body.Close()

	b, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return raw, err
	}
	if res.StatusCode != http.StatusOK {
		return raw, fmt.Errorf("%s %s: http %d (request %s)", method, path, res.StatusCode, rid)
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return raw, fmt.Errorf("%s %s: bad envelope: %w", method, path, err)
	}
	return raw, nil
}

// Package oauth implements the WeChat web OAuth2 flow: authorization URL
// construction, code/token exchange, refresh, and user info retrieval.
// It is glue around the platform's HTTP API and never touches the codec
// core.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/artpar/wxgate/ports"
)

const (
	authorizeURL = "https://open.weixin.qq.com/connect/oauth2/authorize"
	qrConnectURL = "https://open.weixin.qq.com/connect/qrconnect"

	defaultAPIBase = "https://api.weixin.qq.com"
)

// Scopes accepted by the authorize endpoint.
const (
	ScopeBase     = "snsapi_base"
	ScopeUserInfo = "snsapi_userinfo"
	ScopeLogin    = "snsapi_login" // QR connect only
)

// APIError is a non-zero errcode/errmsg pair returned by the platform.
type APIError struct {
	Code    int    `json:"errcode"`
	Message string `json:"errmsg"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("oauth: errcode %d: %s", e.Code, e.Message)
}

// Token is the result of a code exchange or refresh.
type Token struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	OpenID       string `json:"openid"`
	Scope        string `json:"scope"`
}

// UserInfo is the sns/userinfo payload.
type UserInfo struct {
	OpenID     string   `json:"openid"`
	Nickname   string   `json:"nickname"`
	Sex        int      `json:"sex"`
	Province   string   `json:"province"`
	City       string   `json:"city"`
	Country    string   `json:"country"`
	HeadImgURL string   `json:"headimgurl"`
	Privilege  []string `json:"privilege"`
	UnionID    string   `json:"unionid"`
}

// Config holds client credentials.
type Config struct {
	AppID       string
	AppSecret   string
	RedirectURI string

	// APIBase overrides the platform API base URL, for tests.
	APIBase string
}

// Client performs the OAuth flow.
type Client struct {
	appID       string
	appSecret   string
	redirectURI string
	apiBase     string
	httpClient  *http.Client
	random      ports.Random
}

// NewClient creates an OAuth client. random feeds state generation.
func NewClient(cfg Config, random ports.Random) *Client {
	base := cfg.APIBase
	if base == "" {
		base = defaultAPIBase
	}
	return &Client{
		appID:       cfg.AppID,
		appSecret:   cfg.AppSecret,
		redirectURI: cfg.RedirectURI,
		apiBase:     base,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		random:      random,
	}
}

// State generates a random state parameter for the authorize redirect.
func (c *Client) State() (string, error) {
	return c.random.String(32)
}

// AuthorizeURL builds the in-app authorization URL.
func (c *Client) AuthorizeURL(scope, state string) string {
	if scope == "" {
		scope = ScopeBase
	}
	params := url.Values{
		"appid":         {c.appID},
		"redirect_uri":  {c.redirectURI},
		"response_type": {"code"},
		"scope":         {scope},
	}
	if state != "" {
		params.Set("state", state)
	}
	return authorizeURL + "?" + params.Encode() + "#wechat_redirect"
}

// QRConnectURL builds the desktop QR-login authorization URL.
func (c *Client) QRConnectURL(state string) string {
	params := url.Values{
		"appid":         {c.appID},
		"redirect_uri":  {c.redirectURI},
		"response_type": {"code"},
		"scope":         {ScopeLogin},
	}
	if state != "" {
		params.Set("state", state)
	}
	return qrConnectURL + "?" + params.Encode() + "#wechat_redirect"
}

// ExchangeCode exchanges an authorization code for an access token.
func (c *Client) ExchangeCode(ctx context.Context, code string) (Token, error) {
	params := url.Values{
		"appid":      {c.appID},
		"secret":     {c.appSecret},
		"code":       {code},
		"grant_type": {"authorization_code"},
	}
	var tok Token
	if err := c.get(ctx, "/sns/oauth2/access_token", params, &tok); err != nil {
		return Token{}, err
	}
	return tok, nil
}

// RefreshToken refreshes an access token.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (Token, error) {
	params := url.Values{
		"appid":         {c.appID},
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	var tok Token
	if err := c.get(ctx, "/sns/oauth2/refresh_token", params, &tok); err != nil {
		return Token{}, err
	}
	return tok, nil
}

// UserInfo fetches the user profile for an access token.
func (c *Client) UserInfo(ctx context.Context, accessToken, openID string) (UserInfo, error) {
	params := url.Values{
		"access_token": {accessToken},
		"openid":       {openID},
		"lang":         {"zh_CN"},
	}
	var info UserInfo
	if err := c.get(ctx, "/sns/userinfo", params, &info); err != nil {
		return UserInfo{}, err
	}
	return info, nil
}

// CheckAccessToken reports whether an access token is still valid for the
// user.
func (c *Client) CheckAccessToken(ctx context.Context, accessToken, openID string) (bool, error) {
	params := url.Values{
		"access_token": {accessToken},
		"openid":       {openID},
	}
	err := c.get(ctx, "/sns/auth", params, &struct{}{})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// get performs a GET request and decodes the JSON response, converting a
// non-zero errcode into *APIError.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("oauth request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != 0 {
		return &apiErr
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

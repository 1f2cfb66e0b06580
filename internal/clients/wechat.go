package clients

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/fieldops/attendance-service/internal/config"
	apperrors "github.com/fieldops/attendance-service/pkg/util"
)

const code2SessionPath = "/sns/jscode2session"

// WeChatClient exchanges mini-program login codes for openids.
type WeChatClient struct {
	baseURL string
	appID   string
	secret  string
	timeout time.Duration
}

// NewWeChatClient creates the client from configuration.
func NewWeChatClient(cfg config.WeChatConfig) *WeChatClient {
	return &WeChatClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		appID:   cfg.AppID,
		secret:  cfg.Secret,
		timeout: cfg.Timeout(),
	}
}

type code2SessionResponse struct {
	OpenID     string `json:"openid"`
	SessionKey string `json:"session_key"`
	UnionID    string `json:"unionid"`
	ErrCode    int    `json:"errcode"`
	ErrMsg     string `json:"errmsg"`
}

// ExchangeCode resolves a wx.login code to the caller's openid.
// A code WeChat refuses is a validation error; transport failures are upstream errors.
func (c *WeChatClient) ExchangeCode(ctx context.Context, code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", apperrors.NewValidationError("wechat code is required", map[string]any{"field": "code"})
	}

	params := url.Values{}
	params.Set("appid", c.appID)
	params.Set("secret", c.secret)
	params.Set("js_code", code)
	params.Set("grant_type", "authorization_code")

	var resp code2SessionResponse
	status, err := getJSON(ctx, c.baseURL+code2SessionPath, params, c.timeout, &resp)
	if err != nil {
		return "", apperrors.NewUpstreamUnavailable("wechat", err)
	}
	if status >= 500 {
		return "", apperrors.NewUpstreamUnavailable("wechat", errors.New("unexpected status"))
	}
	if resp.ErrCode != 0 || resp.OpenID == "" {
		msg := resp.ErrMsg
		if msg == "" {
			msg = "openid missing from response"
		}
		return "", apperrors.NewValidationError("wechat login failed", map[string]any{
			"errcode": resp.ErrCode,
			"errmsg":  msg,
		})
	}
	return resp.OpenID, nil
}

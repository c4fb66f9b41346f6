package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"lumina/internal/api/config"
)

// Client 社媒数据抓取客户端
type Client interface {
	GetProfile(ctx context.Context, handle string) (*RawProfile, error)
	GetMedia(ctx context.Context, handle string, limit int) ([]RawPost, error)
	GetFollowers(ctx context.Context, handle string, limit int) ([]RawFollower, error)
	GetAudienceInsights(ctx context.Context, handle string) (*RawInsights, error)
}

type clientImpl struct {
	httpClient *resty.Client
}

// NewClient 根据配置构建抓取客户端
func NewClient() Client {
	cfg := config.Cfg.Scraper
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(cfg.Timeout)*time.Second).
		SetRetryCount(cfg.RetryCount).
		SetHeader("X-Api-Key", cfg.APIKey)
	return &clientImpl{httpClient: client}
}

func (c *clientImpl) GetProfile(ctx context.Context, handle string) (*RawProfile, error) {
	var profile RawProfile
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&profile).
		Get(fmt.Sprintf("/v1/users/%s", handle))
	if err != nil {
		return nil, errors.Wrap(err, "获取账号主页信息失败")
	}
	if resp.IsError() {
		return nil, errors.Errorf("获取账号主页信息失败: %s", resp.Status())
	}
	return &profile, nil
}

func (c *clientImpl) GetMedia(ctx context.Context, handle string, limit int) ([]RawPost, error) {
	var posts []RawPost
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("limit", fmt.Sprintf("%d", limit)).
		SetResult(&posts).
		Get(fmt.Sprintf("/v1/users/%s/media", handle))
	if err != nil {
		return nil, errors.Wrap(err, "获取账号帖子失败")
	}
	if resp.IsError() {
		return nil, errors.Errorf("获取账号帖子失败: %s", resp.Status())
	}
	return posts, nil
}

func (c *clientImpl) GetFollowers(ctx context.Context, handle string, limit int) ([]RawFollower, error) {
	var followers []RawFollower
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("limit", fmt.Sprintf("%d", limit)).
		SetResult(&followers).
		Get(fmt.Sprintf("/v1/users/%s/followers", handle))
	if err != nil {
		return nil, errors.Wrap(err, "获取粉丝画像失败")
	}
	if resp.IsError() {
		return nil, errors.Errorf("获取粉丝画像失败: %s", resp.Status())
	}
	return followers, nil
}

func (c *clientImpl) GetAudienceInsights(ctx context.Context, handle string) (*RawInsights, error) {
	var insights RawInsights
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&insights).
		Get(fmt.Sprintf("/v1/users/%s/insights", handle))
	if err != nil {
		return nil, errors.Wrap(err, "获取受众洞察失败")
	}
	if resp.IsError() {
		return nil, errors.Errorf("获取受众洞察失败: %s", resp.Status())
	}
	return &insights, nil
}

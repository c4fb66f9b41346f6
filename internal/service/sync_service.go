package service

import (
	"context"
	"fmt"
	log "log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"lumina/internal/api/config"
	"lumina/internal/model"
	"lumina/internal/pkg/batch"
	"lumina/internal/pkg/consts"
	"lumina/internal/pkg/mongo"
	"lumina/internal/pkg/redis"
	"lumina/internal/pkg/scraper"
	"lumina/internal/pkg/util"
	"lumina/internal/repository"
)

const (
	mediaFetchLimit          = 100
	followerWindowHour       = time.Hour
	benchmarkRefreshInterval = 24 * time.Hour
)

// syncLocker 同步互斥锁的获取与释放
type syncLocker interface {
	Acquire(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key, value string)
}

type redisSyncLocker struct{}

func (redisSyncLocker) Acquire(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return redis.TryLock(ctx, key, value, ttl, 1)
}

func (redisSyncLocker) Release(ctx context.Context, key, value string) {
	redis.UnLock(ctx, key, value)
}

// syncReport 汇总一次同步产生的字段级变更，子任务并发写入
type syncReport struct {
	mu      sync.Mutex
	started time.Time
	changes []mongo.FieldChange
	counts  map[string]int
}

func newSyncReport() *syncReport {
	return &syncReport{started: time.Now(), counts: make(map[string]int)}
}

func (r *syncReport) add(change mongo.FieldChange) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, change)
	r.counts[change.EntityType+"_"+change.ChangeType]++
}

type SyncService interface {
	RegisterAccount(ctx context.Context, handle string) (*model.Account, error)
	GetAccount(ctx context.Context, accountID uint64) (*model.Account, error)
	SyncAccount(ctx context.Context, accountID uint64) error
	EnqueueSync(ctx context.Context, accountID uint64) error
	GetChangeRecords(ctx context.Context, accountID uint64, limit, offset int64) ([]*mongo.ChangeRecordModel, error)
}

type syncServiceImpl struct {
	accountRepo         repository.AccountRepo
	postSampleRepo      repository.PostSampleRepo
	followerSampleRepo  repository.FollowerSampleRepo
	audienceInsightRepo repository.AudienceInsightRepo
	changeRecordRepo    mongo.ChangeRecordRepo
	scraperClient       scraper.Client
	audienceService     AudienceService
	growthService       GrowthService
	benchmarkService    BenchmarkService
	trendService        TrendService
	locker              syncLocker
}

func NewSyncService(
	accountRepo repository.AccountRepo,
	postSampleRepo repository.PostSampleRepo,
	followerSampleRepo repository.FollowerSampleRepo,
	audienceInsightRepo repository.AudienceInsightRepo,
	changeRecordRepo mongo.ChangeRecordRepo,
	scraperClient scraper.Client,
	audienceService AudienceService,
	growthService GrowthService,
	benchmarkService BenchmarkService,
	trendService TrendService,
) SyncService {
	return &syncServiceImpl{
		accountRepo:         accountRepo,
		postSampleRepo:      postSampleRepo,
		followerSampleRepo:  followerSampleRepo,
		audienceInsightRepo: audienceInsightRepo,
		changeRecordRepo:    changeRecordRepo,
		scraperClient:       scraperClient,
		audienceService:     audienceService,
		growthService:       growthService,
		benchmarkService:    benchmarkService,
		trendService:        trendService,
		locker:              redisSyncLocker{},
	}
}

// RegisterAccount 登记新账号并拉取一次主页信息
func (s *syncServiceImpl) RegisterAccount(ctx context.Context, handle string) (*model.Account, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return nil, ErrHandleMissing
	}

	existing, err := s.accountRepo.GetAccountByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAccountExist
	}

	profile, err := s.scraperClient.GetProfile(ctx, handle)
	if err != nil {
		return nil, err
	}

	account := &model.Account{
		Handle:   handle,
		Platform: consts.PlatformInstagram,
	}
	applyProfile(account, profile)
	if err := s.accountRepo.CreateAccount(ctx, account); err != nil {
		return nil, err
	}

	if err := s.EnqueueSync(ctx, account.ID); err != nil {
		log.WarnContext(ctx, "新账号加入同步队列失败", "accountId", account.ID, "error", err)
	}
	return account, nil
}

func (s *syncServiceImpl) GetAccount(ctx context.Context, accountID uint64) (*model.Account, error) {
	account, err := s.accountRepo.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// GetChangeRecords 按版本倒序返回同步审计记录
func (s *syncServiceImpl) GetChangeRecords(ctx context.Context, accountID uint64, limit, offset int64) ([]*mongo.ChangeRecordModel, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.changeRecordRepo.GetRecordList(ctx, accountID, limit, offset)
}

// EnqueueSync 将账号标记进待同步脏集合，由定时任务统一消费
func (s *syncServiceImpl) EnqueueSync(ctx context.Context, accountID uint64) error {
	return redis.SAdd(ctx, consts.AccountSyncDirtyKey, strconv.FormatUint(accountID, 10))
}

// SyncAccount 并发执行全部同步子任务，只有全部失败才视为致命
func (s *syncServiceImpl) SyncAccount(ctx context.Context, accountID uint64) error {
	account, err := s.accountRepo.GetAccountByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account == nil {
		return ErrAccountNotFound
	}
	if strings.TrimSpace(account.Handle) == "" {
		return ErrHandleMissing
	}
	if account.FollowerCount < 0 {
		return ErrParamInvalid
	}

	lockKey := consts.AccountSyncLock + strconv.FormatUint(accountID, 10)
	lockValue := uuid.NewString()
	locked, err := s.locker.Acquire(ctx, lockKey, lockValue, time.Minute*10)
	if err != nil {
		return err
	}
	if !locked {
		return ErrSyncInProgress
	}
	defer s.locker.Release(ctx, lockKey, lockValue)

	report := newSyncReport()
	if err := s.syncProfile(ctx, account, report); err != nil {
		return err
	}

	tasks := []batch.Task{
		{Name: "posts", Fn: func(ctx context.Context) error { return s.syncPosts(ctx, account, report) }},
		{Name: "followers", Fn: func(ctx context.Context) error { return s.syncFollowerHistory(ctx, account, report) }},
		{Name: "activityHours", Fn: func(ctx context.Context) error { return s.syncActivityHours(ctx, account) }},
		{Name: "demographics", Fn: func(ctx context.Context) error { return s.syncDemographics(ctx, account) }},
		{Name: "audienceQuality", Fn: func(ctx context.Context) error {
			_, err := s.audienceService.AnalyzeAudience(ctx, account.ID)
			return err
		}},
		{Name: "growthPrediction", Fn: func(ctx context.Context) error {
			_, err := s.growthService.PredictGrowth(ctx, account.ID)
			return err
		}},
		{Name: "benchmarks", Fn: func(ctx context.Context) error { return s.syncBenchmarks(ctx, account) }},
	}

	failed := batch.SettleAll(ctx, tasks)
	s.appendChangeRecord(ctx, accountID, report, failed)

	if len(failed) == len(tasks) {
		return ErrAllSyncTasksFailed
	}

	if err := s.trendService.InvalidateCache(ctx, accountID); err != nil {
		log.WarnContext(ctx, "趋势缓存失效失败", "accountId", accountID, "error", err)
	}
	return s.accountRepo.MarkSynced(ctx, accountID, time.Now())
}

func (s *syncServiceImpl) syncProfile(ctx context.Context, account *model.Account, report *syncReport) error {
	profile, err := s.scraperClient.GetProfile(ctx, account.Handle)
	if err != nil {
		return err
	}
	before := account.FollowerCount
	applyProfile(account, profile)
	if err := s.accountRepo.UpdateAccount(ctx, account); err != nil {
		return err
	}
	if account.FollowerCount != before {
		report.add(mongo.FieldChange{
			EntityType: "account",
			EntityID:   account.Handle,
			ChangeType: mongo.ChangeTypeUpdate,
			Fields:     []string{"followerCount"},
			Before:     map[string]any{"followerCount": before},
			After:      map[string]any{"followerCount": account.FollowerCount},
		})
	}
	return nil
}

func applyProfile(account *model.Account, profile *scraper.RawProfile) {
	account.DisplayName = &profile.FullName
	account.Biography = &profile.Biography
	account.FollowerCount = int64(util.ClampMetric(float64(profile.FollowerCount), "followers"))
	account.FollowingCount = profile.FollowingCount
	account.MediaCount = profile.MediaCount
	account.IsVerified = profile.IsVerified
	account.IsPrivate = profile.IsPrivate
	if !profile.CreatedAt.IsZero() {
		createdAt := profile.CreatedAt
		account.RegisteredAt = &createdAt
	}
}

// syncPosts 分批抓取帖子，清洗后按外部ID幂等入库，入库前留存旧值用于变更审计
func (s *syncServiceImpl) syncPosts(ctx context.Context, account *model.Account, report *syncReport) error {
	raw, err := s.scraperClient.GetMedia(ctx, account.Handle, mediaFetchLimit)
	if err != nil {
		return err
	}

	cfg := config.Cfg.Sync
	opts := batch.Options{
		BatchSize:     cfg.BatchSize,
		Concurrency:   cfg.Concurrency,
		RetryAttempts: cfg.RetryAttempts,
		RetryDelay:    time.Duration(cfg.RetryDelayMs) * time.Millisecond,
	}

	samples := batch.Process(ctx, raw, opts, func(ctx context.Context, post scraper.RawPost) (*model.PostSample, error) {
		return buildPostSample(account, post)
	})
	if len(samples) == 0 {
		return nil
	}

	externalIDs := make([]string, 0, len(samples))
	for _, sample := range samples {
		externalIDs = append(externalIDs, sample.ExternalID)
	}
	existing, err := s.postSampleRepo.GetByExternalIDs(ctx, account.ID, externalIDs)
	if err != nil {
		return err
	}
	previous := make(map[string]*model.PostSample, len(existing))
	for _, sample := range existing {
		previous[sample.ExternalID] = sample
	}

	if err := s.postSampleRepo.UpsertSamples(ctx, samples); err != nil {
		return err
	}
	for _, sample := range samples {
		if change := diffPostSample(previous[sample.ExternalID], sample); change != nil {
			report.add(*change)
		}
	}
	return s.syncHashtagPerformance(ctx, account, samples)
}

// diffPostSample 对比入库前后的互动计数，无变化返回 nil
func diffPostSample(before, after *model.PostSample) *mongo.FieldChange {
	change := &mongo.FieldChange{
		EntityType: "post",
		EntityID:   after.ExternalID,
	}
	if before == nil {
		change.ChangeType = mongo.ChangeTypeCreate
		change.Fields = []string{"likes", "comments", "shares", "saves", "reach"}
		change.After = map[string]any{
			"likes":    after.Likes,
			"comments": after.Comments,
			"shares":   after.Shares,
			"saves":    after.Saves,
			"reach":    after.Reach,
		}
		return change
	}

	change.ChangeType = mongo.ChangeTypeUpdate
	pairs := []struct {
		field    string
		previous int
		current  int
	}{
		{"likes", before.Likes, after.Likes},
		{"comments", before.Comments, after.Comments},
		{"shares", before.Shares, after.Shares},
		{"saves", before.Saves, after.Saves},
		{"reach", before.Reach, after.Reach},
	}
	beforeValues := make(map[string]any)
	afterValues := make(map[string]any)
	for _, pair := range pairs {
		if pair.previous == pair.current {
			continue
		}
		change.Fields = append(change.Fields, pair.field)
		beforeValues[pair.field] = pair.previous
		afterValues[pair.field] = pair.current
	}
	if len(change.Fields) == 0 {
		return nil
	}
	change.Before = beforeValues
	change.After = afterValues
	return change
}

func buildPostSample(account *model.Account, post scraper.RawPost) (*model.PostSample, error) {
	if post.ExternalID == "" {
		return nil, fmt.Errorf("帖子缺少外部ID")
	}

	caption := util.SanitizeText(post.Caption)
	likes := util.ClampMetric(post.LikeCount, "likes")
	comments := util.ClampMetric(post.CommentCount, "comments")
	shares := util.ClampMetric(post.ShareCount, "shares")
	saves := util.ClampMetric(post.SaveCount, "saves")

	sample := &model.PostSample{
		AccountID:       account.ID,
		ExternalID:      post.ExternalID,
		Caption:         caption,
		MediaType:       post.MediaType,
		MediaURL:        post.MediaURL,
		Likes:           int(likes),
		Comments:        int(comments),
		Shares:          int(shares),
		Saves:           int(saves),
		Reach:           int(post.Reach),
		HashtagCount:    len(util.ExtractTags(caption)),
		EmojiCount:      util.CountEmojis(post.Caption),
		MentionCount:    len(util.ExtractMentions(caption)),
		CaptionLength:   utf8.RuneCountInString(caption),
		SentimentLabel:  util.SentimentLabel(post.Caption),
		HasCallToAction: util.HasCallToAction(post.Caption),
		PostedAt:        post.PostedAt,
	}
	if post.ThumbnailURL != "" {
		sample.ThumbnailURL = &post.ThumbnailURL
	}
	if post.Location != nil {
		name := post.Location.Name
		lat := util.ClampMetric(post.Location.Latitude, "latitude")
		lng := util.ClampMetric(post.Location.Longitude, "longitude")
		sample.LocationName = &name
		sample.Latitude = &lat
		sample.Longitude = &lng
	}
	if account.FollowerCount > 0 {
		engagement := (likes + comments) / float64(account.FollowerCount) * 100
		sample.EngagementRate = util.ClampMetric(engagement, "engagementRate")
	}
	if post.Reach > 0 {
		reachRate := (likes + comments + shares + saves) / post.Reach * 100
		sample.ReachRate = util.ClampMetric(reachRate, "reachRate")
	}
	return sample, nil
}

// syncHashtagPerformance 按标签累计互动均值与出现频率
func (s *syncServiceImpl) syncHashtagPerformance(ctx context.Context, account *model.Account, samples []*model.PostSample) error {
	totalPosts, err := s.postSampleRepo.CountByAccount(ctx, account.ID)
	if err != nil {
		return err
	}
	if totalPosts == 0 {
		return nil
	}

	type tagStat struct {
		engagementSum float64
		postCount     int
	}
	tagStats := make(map[string]*tagStat)
	for _, sample := range samples {
		for _, tag := range util.ExtractTags(sample.Caption) {
			tag = strings.ToLower(tag)
			if tagStats[tag] == nil {
				tagStats[tag] = &tagStat{}
			}
			tagStats[tag].engagementSum += float64(sample.Likes + sample.Comments)
			tagStats[tag].postCount++
		}
	}
	if len(tagStats) == 0 {
		return nil
	}

	now := time.Now()
	tags := make([]*model.Hashtag, 0, len(tagStats))
	for tag, stat := range tagStats {
		frequency := float64(stat.postCount) / float64(totalPosts) * 100
		engagementAverage := stat.engagementSum / float64(stat.postCount)
		tags = append(tags, &model.Hashtag{
			AccountID:         account.ID,
			Tag:               tag,
			Frequency:         frequency,
			EngagementAverage: engagementAverage,
			PerformanceScore:  engagementAverage * frequency / 100,
			PostCount:         stat.postCount,
			UpdatedAt:         now,
		})
	}
	return s.audienceInsightRepo.UpsertHashtags(ctx, tags)
}

// syncFollowerHistory 每小时最多记录一条，按与上一条的差值推导增减
func (s *syncServiceImpl) syncFollowerHistory(ctx context.Context, account *model.Account, report *syncReport) error {
	latest, err := s.followerSampleRepo.GetLatestSample(ctx, account.ID)
	if err != nil {
		return err
	}
	now := time.Now()
	if latest != nil && now.Sub(latest.RecordedAt) < followerWindowHour {
		return nil
	}

	sample := &model.FollowerSample{
		AccountID:  account.ID,
		Count:      account.FollowerCount,
		RecordedAt: now,
	}
	if latest != nil {
		delta := account.FollowerCount - latest.Count
		if delta > 0 {
			sample.GainedCount = int(delta)
		} else {
			sample.LostCount = int(-delta)
		}
		if latest.Count > 0 {
			sample.GrowthRate = float64(delta) / float64(latest.Count) * 100
		}
	}
	if err := s.followerSampleRepo.CreateSample(ctx, sample); err != nil {
		return err
	}
	report.add(mongo.FieldChange{
		EntityType: "follower_sample",
		EntityID:   now.Format(time.RFC3339),
		ChangeType: mongo.ChangeTypeCreate,
		Fields:     []string{"count", "gained", "lost"},
		After: map[string]any{
			"count":  sample.Count,
			"gained": sample.GainedCount,
			"lost":   sample.LostCount,
		},
	})
	return nil
}

// syncActivityHours 按发帖小时分布计算活跃度快照
func (s *syncServiceImpl) syncActivityHours(ctx context.Context, account *model.Account) error {
	posts, err := s.postSampleRepo.GetRecentByAccount(ctx, account.ID, mediaFetchLimit)
	if err != nil {
		return err
	}

	hours := make(model.HourMap, 24)
	for i := 0; i < 24; i++ {
		hours[fmt.Sprintf("%02d", i)] = 0
	}
	var maxCount float64
	for _, post := range posts {
		hour := fmt.Sprintf("%02d", post.PostedAt.Hour())
		hours[hour]++
		if hours[hour] > maxCount {
			maxCount = hours[hour]
		}
	}

	var peakScore float64
	if maxCount > 0 {
		var sum float64
		for _, count := range hours {
			sum += count / maxCount
		}
		peakScore = sum / 24
	}

	return s.audienceInsightRepo.CreateActivityHours(ctx, &model.ActivityHours{
		AccountID:         account.ID,
		Hours:             hours,
		PeakActivityScore: peakScore,
		CreatedAt:         time.Now(),
	})
}

// syncDemographics 从受众洞察接口落一条人口画像快照
func (s *syncServiceImpl) syncDemographics(ctx context.Context, account *model.Account) error {
	insights, err := s.scraperClient.GetAudienceInsights(ctx, account.Handle)
	if err != nil {
		return err
	}

	locations := make(model.LocationShareList, 0, len(insights.TopLocations))
	for _, location := range insights.TopLocations {
		locations = append(locations, model.LocationShare{Name: location.Name, Share: location.Share})
	}

	demographic := &model.Demographic{
		AccountID:          account.ID,
		AgeDistribution:    model.ShareMap(insights.AgeRanges),
		GenderDistribution: model.ShareMap(insights.Genders),
		TopLocations:       locations,
		TotalFollowers:     account.FollowerCount,
		RecordedAt:         time.Now(),
	}
	return s.audienceInsightRepo.CreateDemographic(ctx, demographic)
}

// syncBenchmarks 距上次生成不足 24 小时则跳过
func (s *syncServiceImpl) syncBenchmarks(ctx context.Context, account *model.Account) error {
	existing, err := s.benchmarkService.GetLatestBenchmark(ctx, account.ID, model.BenchmarkCategoryEngagement)
	if err == nil && existing != nil && time.Since(existing.CreatedAt) < benchmarkRefreshInterval {
		return nil
	}
	_, err = s.benchmarkService.GenerateBenchmark(ctx, account.ID)
	return err
}

func (s *syncServiceImpl) appendChangeRecord(ctx context.Context, accountID uint64, report *syncReport, failed map[string]error) {
	failures := make(map[string]string, len(failed))
	for name, err := range failed {
		failures[name] = err.Error()
	}

	record := &mongo.ChangeRecordModel{
		AccountID: accountID,
		Source:    "sync",
		Changes:   report.changes,
		Metadata: mongo.SyncMetadata{
			DurationMs:   time.Since(report.started).Milliseconds(),
			EntityCounts: report.counts,
			Errors:       failures,
		},
		CreatedAt: time.Now(),
	}
	if err := s.changeRecordRepo.AppendRecord(ctx, record); err != nil {
		log.WarnContext(ctx, "同步审计记录写入失败", "accountId", accountID, "error", err)
	}
}

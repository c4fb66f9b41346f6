package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumina/internal/api/config"
	"lumina/internal/model"
	"lumina/internal/pkg/mongo"
	"lumina/internal/pkg/scraper"
)

func setSyncConfig(t *testing.T) {
	t.Helper()
	previous := config.Cfg
	config.Cfg = &config.Config{Sync: config.SyncConfig{BatchSize: 10, Concurrency: 2, RetryAttempts: 1, RetryDelayMs: 1}}
	t.Cleanup(func() { config.Cfg = previous })
}

func TestBuildPostSample(t *testing.T) {
	account := &model.Account{ID: 1, FollowerCount: 1000}
	sample, err := buildPostSample(account, scraper.RawPost{
		ExternalID:   "m1",
		Caption:      "<b>Great day!</b> #Sun @bob 🌞",
		MediaType:    "image",
		LikeCount:    50,
		CommentCount: 10,
		ShareCount:   5,
		SaveCount:    5,
		Reach:        200,
		Location:     &scraper.RawLocation{Name: "Paris", Latitude: 48.85, Longitude: 2.35},
		PostedAt:     time.Now(),
	})
	require.NoError(t, err)

	assert.Equal(t, "Great day #Sun @bob", sample.Caption)
	assert.Equal(t, 50, sample.Likes)
	assert.Equal(t, 1, sample.HashtagCount)
	assert.Equal(t, 1, sample.MentionCount)
	assert.Equal(t, 1, sample.EmojiCount)
	assert.False(t, sample.HasCallToAction)
	assert.Equal(t, 19, sample.CaptionLength)
	assert.Equal(t, "positive", sample.SentimentLabel)
	// (50+10)/1000*100
	assert.InDelta(t, 6.0, sample.EngagementRate, 1e-9)
	// (50+10+5+5)/200*100
	assert.InDelta(t, 35.0, sample.ReachRate, 1e-9)
	require.NotNil(t, sample.LocationName)
	assert.Equal(t, "Paris", *sample.LocationName)
}

func TestBuildPostSampleMissingExternalID(t *testing.T) {
	_, err := buildPostSample(&model.Account{ID: 1}, scraper.RawPost{Caption: "hello"})
	assert.Error(t, err)
}

func TestBuildPostSampleClampsMetrics(t *testing.T) {
	sample, err := buildPostSample(&model.Account{ID: 1, FollowerCount: 10}, scraper.RawPost{
		ExternalID: "m2",
		LikeCount:  5_000_000,
	})
	require.NoError(t, err)
	// 点赞超出合法区间被钳到上限
	assert.Equal(t, 1_000_000, sample.Likes)
	// 互动率同样被钳到 100
	assert.InDelta(t, 100.0, sample.EngagementRate, 1e-9)
}

func TestSyncFollowerHistory(t *testing.T) {
	ctx := context.Background()
	account := &model.Account{ID: 1, FollowerCount: 1000}
	followerRepo := newFakeFollowerSampleRepo()
	followerRepo.samples[1] = []*model.FollowerSample{
		{AccountID: 1, Count: 900, RecordedAt: time.Now().Add(-2 * time.Hour)},
	}
	svc := &syncServiceImpl{followerSampleRepo: followerRepo}

	report := newSyncReport()
	require.NoError(t, svc.syncFollowerHistory(ctx, account, report))
	require.Len(t, followerRepo.created, 1)

	sample := followerRepo.created[0]
	assert.Equal(t, int64(1000), sample.Count)
	assert.Equal(t, 100, sample.GainedCount)
	assert.Zero(t, sample.LostCount)
	assert.InDelta(t, 100.0/900*100, sample.GrowthRate, 1e-9)
	assert.Equal(t, 1, report.counts["follower_sample_create"])
}

func TestSyncFollowerHistorySkipsWithinHour(t *testing.T) {
	ctx := context.Background()
	followerRepo := newFakeFollowerSampleRepo()
	followerRepo.samples[1] = []*model.FollowerSample{
		{AccountID: 1, Count: 900, RecordedAt: time.Now().Add(-30 * time.Minute)},
	}
	svc := &syncServiceImpl{followerSampleRepo: followerRepo}

	require.NoError(t, svc.syncFollowerHistory(ctx, &model.Account{ID: 1, FollowerCount: 1000}, newSyncReport()))
	assert.Empty(t, followerRepo.created)
}

func TestSyncFollowerHistoryRecordsLoss(t *testing.T) {
	ctx := context.Background()
	followerRepo := newFakeFollowerSampleRepo()
	followerRepo.samples[1] = []*model.FollowerSample{
		{AccountID: 1, Count: 1000, RecordedAt: time.Now().Add(-2 * time.Hour)},
	}
	svc := &syncServiceImpl{followerSampleRepo: followerRepo}

	require.NoError(t, svc.syncFollowerHistory(ctx, &model.Account{ID: 1, FollowerCount: 950}, newSyncReport()))
	require.Len(t, followerRepo.created, 1)
	assert.Equal(t, 50, followerRepo.created[0].LostCount)
	assert.InDelta(t, -5.0, followerRepo.created[0].GrowthRate, 1e-9)
}

func TestSyncHashtagPerformance(t *testing.T) {
	ctx := context.Background()
	account := &model.Account{ID: 1}
	postRepo := newFakePostSampleRepo()
	samples := []*model.PostSample{
		{AccountID: 1, Caption: "#go #dev", Likes: 50, Comments: 10},
		{AccountID: 1, Caption: "#go", Likes: 30, Comments: 10},
	}
	postRepo.recent[1] = samples
	insightRepo := &fakeAudienceInsightRepo{}
	svc := &syncServiceImpl{postSampleRepo: postRepo, audienceInsightRepo: insightRepo}

	require.NoError(t, svc.syncHashtagPerformance(ctx, account, samples))
	require.Len(t, insightRepo.upsertedTags, 2)

	byTag := make(map[string]*model.Hashtag)
	for _, tag := range insightRepo.upsertedTags {
		byTag[tag.Tag] = tag
	}

	require.Contains(t, byTag, "go")
	assert.Equal(t, 2, byTag["go"].PostCount)
	assert.InDelta(t, 100.0, byTag["go"].Frequency, 1e-9)
	assert.InDelta(t, 50.0, byTag["go"].EngagementAverage, 1e-9)
	assert.InDelta(t, 50.0, byTag["go"].PerformanceScore, 1e-9)

	require.Contains(t, byTag, "dev")
	assert.InDelta(t, 50.0, byTag["dev"].Frequency, 1e-9)
	assert.InDelta(t, 30.0, byTag["dev"].PerformanceScore, 1e-9)
}

func TestSyncActivityHours(t *testing.T) {
	ctx := context.Background()
	postRepo := newFakePostSampleRepo()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	postRepo.recent[1] = []*model.PostSample{
		{PostedAt: base.Add(9 * time.Hour)},
		{PostedAt: base.Add(9 * time.Hour)},
		{PostedAt: base.Add(18 * time.Hour)},
	}
	insightRepo := &fakeAudienceInsightRepo{}
	svc := &syncServiceImpl{postSampleRepo: postRepo, audienceInsightRepo: insightRepo}

	require.NoError(t, svc.syncActivityHours(ctx, &model.Account{ID: 1}))
	require.Len(t, insightRepo.activityHours, 1)

	snapshot := insightRepo.activityHours[0]
	assert.InDelta(t, 2.0, snapshot.Hours["09"], 1e-9)
	assert.InDelta(t, 1.0, snapshot.Hours["18"], 1e-9)
	assert.Zero(t, snapshot.Hours["00"])
	// (2/2 + 1/2) / 24
	assert.InDelta(t, 1.5/24, snapshot.PeakActivityScore, 1e-9)
}

func TestSyncDemographics(t *testing.T) {
	ctx := context.Background()
	insightRepo := &fakeAudienceInsightRepo{}
	client := &fakeScraperClient{insights: &scraper.RawInsights{
		AgeRanges:    map[string]float64{"18-24": 40, "25-34": 60},
		Genders:      map[string]float64{"female": 55, "male": 45},
		TopLocations: []scraper.LocationShare{{Name: "Paris", Share: 30}},
	}}
	svc := &syncServiceImpl{audienceInsightRepo: insightRepo, scraperClient: client}

	require.NoError(t, svc.syncDemographics(ctx, &model.Account{ID: 1, FollowerCount: 1000}))
	require.Len(t, insightRepo.demographics, 1)

	demographic := insightRepo.demographics[0]
	assert.InDelta(t, 40.0, demographic.AgeDistribution["18-24"], 1e-9)
	require.Len(t, demographic.TopLocations, 1)
	assert.Equal(t, "Paris", demographic.TopLocations[0].Name)
	assert.Equal(t, int64(1000), demographic.TotalFollowers)
}

func TestAppendChangeRecord(t *testing.T) {
	ctx := context.Background()
	recordRepo := &fakeChangeRecordRepo{}
	svc := &syncServiceImpl{changeRecordRepo: recordRepo}

	report := newSyncReport()
	report.add(mongo.FieldChange{
		EntityType: "post",
		EntityID:   "m1",
		ChangeType: mongo.ChangeTypeUpdate,
		Fields:     []string{"likes"},
		Before:     map[string]any{"likes": 40},
		After:      map[string]any{"likes": 50},
	})
	failed := map[string]error{"followers": errors.New("boom")}
	svc.appendChangeRecord(ctx, 1, report, failed)

	require.Len(t, recordRepo.records, 1)
	record := recordRepo.records[0]
	assert.Equal(t, uint64(1), record.AccountID)
	assert.Equal(t, "sync", record.Source)
	require.Len(t, record.Changes, 1)
	assert.Equal(t, "post", record.Changes[0].EntityType)
	assert.Equal(t, []string{"likes"}, record.Changes[0].Fields)
	assert.Equal(t, 1, record.Metadata.EntityCounts["post_update"])
	assert.Equal(t, "boom", record.Metadata.Errors["followers"])
	assert.GreaterOrEqual(t, record.Metadata.DurationMs, int64(0))
}

func TestSyncPostsTracksChanges(t *testing.T) {
	setSyncConfig(t)
	ctx := context.Background()
	account := &model.Account{ID: 1, Handle: "creator", FollowerCount: 1000}

	postRepo := newFakePostSampleRepo()
	postRepo.recent[1] = []*model.PostSample{
		{AccountID: 1, ExternalID: "m1", Likes: 40, Comments: 10},
	}
	client := &fakeScraperClient{media: []scraper.RawPost{
		{ExternalID: "m1", LikeCount: 50, CommentCount: 10, PostedAt: time.Now()},
		{ExternalID: "m2", LikeCount: 20, PostedAt: time.Now()},
	}}
	insightRepo := &fakeAudienceInsightRepo{}
	svc := &syncServiceImpl{postSampleRepo: postRepo, audienceInsightRepo: insightRepo, scraperClient: client}

	report := newSyncReport()
	require.NoError(t, svc.syncPosts(ctx, account, report))
	assert.Len(t, postRepo.upserted, 2)
	require.Len(t, report.changes, 2)

	byID := make(map[string]mongo.FieldChange)
	for _, change := range report.changes {
		byID[change.EntityID] = change
	}

	updated := byID["m1"]
	assert.Equal(t, mongo.ChangeTypeUpdate, updated.ChangeType)
	assert.Equal(t, []string{"likes"}, updated.Fields)
	assert.Equal(t, 40, updated.Before["likes"])
	assert.Equal(t, 50, updated.After["likes"])

	created := byID["m2"]
	assert.Equal(t, mongo.ChangeTypeCreate, created.ChangeType)
	assert.Equal(t, 20, created.After["likes"])

	assert.Equal(t, 1, report.counts["post_update"])
	assert.Equal(t, 1, report.counts["post_create"])
}

func TestDiffPostSampleUnchanged(t *testing.T) {
	before := &model.PostSample{ExternalID: "m1", Likes: 10, Comments: 2}
	after := &model.PostSample{ExternalID: "m1", Likes: 10, Comments: 2}
	assert.Nil(t, diffPostSample(before, after))
}

type syncTestEnv struct {
	svc          *syncServiceImpl
	accountRepo  *fakeAccountRepo
	postRepo     *fakePostSampleRepo
	followerRepo *fakeFollowerSampleRepo
	insightRepo  *fakeAudienceInsightRepo
	recordRepo   *fakeChangeRecordRepo
	client       *fakeScraperClient
	audienceSvc  *fakeAudienceService
	growthSvc    *fakeGrowthService
	benchmarkSvc *fakeBenchmarkService
	trendSvc     *fakeTrendService
	locker       *fakeSyncLocker
}

func newSyncTestEnv(account *model.Account) *syncTestEnv {
	env := &syncTestEnv{
		accountRepo:  newFakeAccountRepo(account),
		postRepo:     newFakePostSampleRepo(),
		followerRepo: newFakeFollowerSampleRepo(),
		insightRepo:  &fakeAudienceInsightRepo{},
		recordRepo:   &fakeChangeRecordRepo{},
		client: &fakeScraperClient{
			profile:  &scraper.RawProfile{FullName: "Creator", FollowerCount: account.FollowerCount},
			insights: &scraper.RawInsights{},
		},
		audienceSvc:  &fakeAudienceService{},
		growthSvc:    &fakeGrowthService{},
		benchmarkSvc: &fakeBenchmarkService{},
		trendSvc:     &fakeTrendService{},
		locker:       &fakeSyncLocker{},
	}
	env.svc = &syncServiceImpl{
		accountRepo:         env.accountRepo,
		postSampleRepo:      env.postRepo,
		followerSampleRepo:  env.followerRepo,
		audienceInsightRepo: env.insightRepo,
		changeRecordRepo:    env.recordRepo,
		scraperClient:       env.client,
		audienceService:     env.audienceSvc,
		growthService:       env.growthSvc,
		benchmarkService:    env.benchmarkSvc,
		trendService:        env.trendSvc,
		locker:              env.locker,
	}
	return env
}

func TestSyncAccountRejectsNegativeFollowers(t *testing.T) {
	ctx := context.Background()
	env := newSyncTestEnv(&model.Account{ID: 1, Handle: "creator", FollowerCount: -5})

	err := env.svc.SyncAccount(ctx, 1)
	assert.ErrorIs(t, err, ErrParamInvalid)
	// 参数校验失败时不加锁也不落审计
	assert.Empty(t, env.locker.acquired)
	assert.Empty(t, env.recordRepo.records)
}

func TestSyncAccountLockHeld(t *testing.T) {
	ctx := context.Background()
	env := newSyncTestEnv(&model.Account{ID: 1, Handle: "creator", FollowerCount: 1000})
	env.locker.held = true

	err := env.svc.SyncAccount(ctx, 1)
	assert.ErrorIs(t, err, ErrSyncInProgress)
	assert.Empty(t, env.accountRepo.synced)
}

func TestSyncAccountPartialFailure(t *testing.T) {
	setSyncConfig(t)
	ctx := context.Background()
	env := newSyncTestEnv(&model.Account{ID: 1, Handle: "creator", FollowerCount: 1000})
	env.audienceSvc.err = errors.New("scrape quota exceeded")

	require.NoError(t, env.svc.SyncAccount(ctx, 1))

	// 单个子任务失败不阻断整体同步
	assert.Contains(t, env.accountRepo.synced, uint64(1))
	assert.Equal(t, []uint64{1}, env.trendSvc.invalidated)
	require.Len(t, env.recordRepo.records, 1)
	record := env.recordRepo.records[0]
	require.Len(t, record.Metadata.Errors, 1)
	assert.Equal(t, "scrape quota exceeded", record.Metadata.Errors["audienceQuality"])
	assert.Equal(t, 1, record.Metadata.EntityCounts["follower_sample_create"])
	assert.Len(t, env.locker.released, 1)
}

func TestSyncAccountAllTasksFail(t *testing.T) {
	setSyncConfig(t)
	ctx := context.Background()
	env := newSyncTestEnv(&model.Account{ID: 1, Handle: "creator", FollowerCount: 1000})
	env.client.mediaErr = errors.New("media fetch failed")
	env.client.insightsErr = errors.New("insights fetch failed")
	env.postRepo.recentErr = errors.New("db down")
	env.followerRepo.latestErr = errors.New("db down")
	env.audienceSvc.err = errors.New("analysis failed")
	env.growthSvc.err = errors.New("prediction failed")
	env.benchmarkSvc.err = errors.New("benchmark failed")

	err := env.svc.SyncAccount(ctx, 1)
	assert.ErrorIs(t, err, ErrAllSyncTasksFailed)
	assert.Empty(t, env.accountRepo.synced)
	assert.Empty(t, env.trendSvc.invalidated)
	require.Len(t, env.recordRepo.records, 1)
	assert.Len(t, env.recordRepo.records[0].Metadata.Errors, 7)
	assert.Len(t, env.locker.released, 1)
}

func TestSyncBenchmarksSkipsRecentRun(t *testing.T) {
	ctx := context.Background()
	// 昨天深夜生成，虽已跨自然日但不足 24 小时
	benchmarkSvc := &fakeBenchmarkService{latest: &model.Benchmark{CreatedAt: time.Now().Add(-23 * time.Hour)}}
	svc := &syncServiceImpl{benchmarkService: benchmarkSvc}

	require.NoError(t, svc.syncBenchmarks(ctx, &model.Account{ID: 1}))
	assert.Zero(t, benchmarkSvc.generated)
}

func TestSyncBenchmarksRegeneratesAfterWindow(t *testing.T) {
	ctx := context.Background()
	benchmarkSvc := &fakeBenchmarkService{latest: &model.Benchmark{CreatedAt: time.Now().Add(-25 * time.Hour)}}
	svc := &syncServiceImpl{benchmarkService: benchmarkSvc}

	require.NoError(t, svc.syncBenchmarks(ctx, &model.Account{ID: 1}))
	assert.Equal(t, 1, benchmarkSvc.generated)
}

package service

import (
	"context"
	"time"

	"lumina/internal/model"
	"lumina/internal/pkg/cache"
	"lumina/internal/pkg/mongo"
	"lumina/internal/pkg/scraper"
	"lumina/internal/repository"
)

// 测试用桩实现，未覆写的方法调用会 panic，便于发现意料之外的依赖

type fakeAccountRepo struct {
	repository.AccountRepo
	accounts map[uint64]*model.Account
	synced   map[uint64]time.Time
	updated  []*model.Account
	created  []*model.Account
}

func newFakeAccountRepo(accounts ...*model.Account) *fakeAccountRepo {
	m := make(map[uint64]*model.Account, len(accounts))
	for _, account := range accounts {
		m[account.ID] = account
	}
	return &fakeAccountRepo{accounts: m, synced: make(map[uint64]time.Time)}
}

func (f *fakeAccountRepo) GetAccountByID(_ context.Context, id uint64) (*model.Account, error) {
	return f.accounts[id], nil
}

func (f *fakeAccountRepo) GetAccountByHandle(_ context.Context, handle string) (*model.Account, error) {
	for _, account := range f.accounts {
		if account.Handle == handle {
			return account, nil
		}
	}
	return nil, nil
}

func (f *fakeAccountRepo) CreateAccount(_ context.Context, account *model.Account) error {
	account.ID = uint64(len(f.accounts) + 1)
	f.accounts[account.ID] = account
	f.created = append(f.created, account)
	return nil
}

func (f *fakeAccountRepo) UpdateAccount(_ context.Context, account *model.Account) error {
	f.updated = append(f.updated, account)
	return nil
}

func (f *fakeAccountRepo) MarkSynced(_ context.Context, id uint64, syncedAt time.Time) error {
	f.synced[id] = syncedAt
	return nil
}

func (f *fakeAccountRepo) ListAccounts(_ context.Context) ([]*model.Account, error) {
	accounts := make([]*model.Account, 0, len(f.accounts))
	for id := uint64(1); id <= uint64(len(f.accounts)); id++ {
		if account, ok := f.accounts[id]; ok {
			accounts = append(accounts, account)
		}
	}
	return accounts, nil
}

type fakeAudienceQualityRepo struct {
	repository.AudienceQualityRepo
	latest  map[uint64]*model.AudienceQuality
	history map[uint64][]*model.AudienceQuality // 最新在前
	created []*model.AudienceQuality
}

func newFakeAudienceQualityRepo() *fakeAudienceQualityRepo {
	return &fakeAudienceQualityRepo{
		latest:  make(map[uint64]*model.AudienceQuality),
		history: make(map[uint64][]*model.AudienceQuality),
	}
}

func (f *fakeAudienceQualityRepo) CreateAnalysis(_ context.Context, analysis *model.AudienceQuality) error {
	f.created = append(f.created, analysis)
	f.latest[analysis.AccountID] = analysis
	f.history[analysis.AccountID] = append([]*model.AudienceQuality{analysis}, f.history[analysis.AccountID]...)
	return nil
}

func (f *fakeAudienceQualityRepo) GetLatestAnalysis(_ context.Context, accountID uint64) (*model.AudienceQuality, error) {
	return f.latest[accountID], nil
}

func (f *fakeAudienceQualityRepo) GetRecentAnalyses(_ context.Context, accountID uint64, limit int) ([]*model.AudienceQuality, error) {
	analyses := f.history[accountID]
	if len(analyses) == 0 && f.latest[accountID] != nil {
		analyses = []*model.AudienceQuality{f.latest[accountID]}
	}
	if len(analyses) > limit {
		analyses = analyses[:limit]
	}
	return analyses, nil
}

func (f *fakeAudienceQualityRepo) GetAnalysesBetween(_ context.Context, accountID uint64, from, to time.Time) ([]*model.AudienceQuality, error) {
	history := f.history[accountID]
	var inWindow []*model.AudienceQuality
	for i := len(history) - 1; i >= 0; i-- {
		analysis := history[i]
		if !analysis.AnalyzedAt.Before(from) && analysis.AnalyzedAt.Before(to) {
			inWindow = append(inWindow, analysis)
		}
	}
	return inWindow, nil
}

type fakePostSampleRepo struct {
	repository.PostSampleRepo
	recent    map[uint64][]*model.PostSample
	upserted  []*model.PostSample
	recentErr error
}

func newFakePostSampleRepo() *fakePostSampleRepo {
	return &fakePostSampleRepo{recent: make(map[uint64][]*model.PostSample)}
}

func (f *fakePostSampleRepo) UpsertSamples(_ context.Context, samples []*model.PostSample) error {
	f.upserted = append(f.upserted, samples...)
	return nil
}

func (f *fakePostSampleRepo) GetRecentByAccount(_ context.Context, accountID uint64, limit int) ([]*model.PostSample, error) {
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	posts := f.recent[accountID]
	if len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

func (f *fakePostSampleRepo) GetByExternalIDs(_ context.Context, accountID uint64, externalIDs []string) ([]*model.PostSample, error) {
	wanted := make(map[string]bool, len(externalIDs))
	for _, id := range externalIDs {
		wanted[id] = true
	}
	var matched []*model.PostSample
	for _, post := range f.recent[accountID] {
		if wanted[post.ExternalID] {
			matched = append(matched, post)
		}
	}
	return matched, nil
}

func (f *fakePostSampleRepo) GetByAccountBetween(_ context.Context, accountID uint64, from, to time.Time) ([]*model.PostSample, error) {
	var inWindow []*model.PostSample
	for _, post := range f.recent[accountID] {
		if !post.PostedAt.Before(from) && post.PostedAt.Before(to) {
			inWindow = append(inWindow, post)
		}
	}
	return inWindow, nil
}

func (f *fakePostSampleRepo) CountByAccount(_ context.Context, accountID uint64) (int64, error) {
	return int64(len(f.recent[accountID])), nil
}

type fakeFollowerSampleRepo struct {
	repository.FollowerSampleRepo
	samples   map[uint64][]*model.FollowerSample
	created   []*model.FollowerSample
	latestErr error
}

func newFakeFollowerSampleRepo() *fakeFollowerSampleRepo {
	return &fakeFollowerSampleRepo{samples: make(map[uint64][]*model.FollowerSample)}
}

func (f *fakeFollowerSampleRepo) CreateSample(_ context.Context, sample *model.FollowerSample) error {
	f.created = append(f.created, sample)
	f.samples[sample.AccountID] = append(f.samples[sample.AccountID], sample)
	return nil
}

func (f *fakeFollowerSampleRepo) GetLatestSample(_ context.Context, accountID uint64) (*model.FollowerSample, error) {
	if f.latestErr != nil {
		return nil, f.latestErr
	}
	samples := f.samples[accountID]
	if len(samples) == 0 {
		return nil, nil
	}
	return samples[len(samples)-1], nil
}

func (f *fakeFollowerSampleRepo) GetRecentSamples(_ context.Context, accountID uint64, limit int) ([]*model.FollowerSample, error) {
	samples := f.samples[accountID]
	if len(samples) > limit {
		samples = samples[len(samples)-limit:]
	}
	return samples, nil
}

func (f *fakeFollowerSampleRepo) GetSamplesSince(_ context.Context, accountID uint64, since time.Time) ([]*model.FollowerSample, error) {
	var result []*model.FollowerSample
	for _, sample := range f.samples[accountID] {
		if !sample.RecordedAt.Before(since) {
			result = append(result, sample)
		}
	}
	return result, nil
}

func (f *fakeFollowerSampleRepo) CountSamples(_ context.Context, accountID uint64) (int64, error) {
	return int64(len(f.samples[accountID])), nil
}

type fakeGrowthPredictionRepo struct {
	repository.GrowthPredictionRepo
	latest  map[uint64]*model.GrowthPrediction
	created []*model.GrowthPrediction
}

func newFakeGrowthPredictionRepo() *fakeGrowthPredictionRepo {
	return &fakeGrowthPredictionRepo{latest: make(map[uint64]*model.GrowthPrediction)}
}

func (f *fakeGrowthPredictionRepo) CreatePrediction(_ context.Context, prediction *model.GrowthPrediction) error {
	f.created = append(f.created, prediction)
	f.latest[prediction.AccountID] = prediction
	return nil
}

func (f *fakeGrowthPredictionRepo) GetLatestPrediction(_ context.Context, accountID uint64) (*model.GrowthPrediction, error) {
	return f.latest[accountID], nil
}

type fakeBenchmarkRepo struct {
	repository.BenchmarkRepo
	latest map[uint64]*model.Benchmark
	before map[uint64]*model.Benchmark
	rows   []*model.Benchmark
	saved  []*model.Benchmark
	count  int64
}

func newFakeBenchmarkRepo() *fakeBenchmarkRepo {
	return &fakeBenchmarkRepo{
		latest: make(map[uint64]*model.Benchmark),
		before: make(map[uint64]*model.Benchmark),
	}
}

func (f *fakeBenchmarkRepo) SaveOrUpdateBenchmark(_ context.Context, benchmark *model.Benchmark) error {
	f.saved = append(f.saved, benchmark)
	f.latest[benchmark.AccountID] = benchmark
	return nil
}

func (f *fakeBenchmarkRepo) GetLatestBenchmark(_ context.Context, accountID uint64, _ string) (*model.Benchmark, error) {
	return f.latest[accountID], nil
}

func (f *fakeBenchmarkRepo) GetLatestBefore(_ context.Context, accountID uint64, _ string, _ time.Time) (*model.Benchmark, error) {
	return f.before[accountID], nil
}

func (f *fakeBenchmarkRepo) GetByAccountBetween(_ context.Context, accountID uint64, _ string, from, to time.Time) ([]*model.Benchmark, error) {
	var inWindow []*model.Benchmark
	for _, benchmark := range f.rows {
		if benchmark.AccountID != accountID {
			continue
		}
		if !benchmark.CreatedAt.Before(from) && benchmark.CreatedAt.Before(to) {
			inWindow = append(inWindow, benchmark)
		}
	}
	return inWindow, nil
}

func (f *fakeBenchmarkRepo) CountBenchmarks(_ context.Context, _ uint64) (int64, error) {
	return f.count, nil
}

type fakeAudienceInsightRepo struct {
	repository.AudienceInsightRepo
	topHashtags   []*model.Hashtag
	upsertedTags  []*model.Hashtag
	activityHours []*model.ActivityHours
	demographics  []*model.Demographic
}

func (f *fakeAudienceInsightRepo) GetTopHashtags(_ context.Context, _ uint64, limit int) ([]*model.Hashtag, error) {
	tags := f.topHashtags
	if len(tags) > limit {
		tags = tags[:limit]
	}
	return tags, nil
}

func (f *fakeAudienceInsightRepo) UpsertHashtags(_ context.Context, tags []*model.Hashtag) error {
	f.upsertedTags = append(f.upsertedTags, tags...)
	return nil
}

func (f *fakeAudienceInsightRepo) CreateActivityHours(_ context.Context, hours *model.ActivityHours) error {
	f.activityHours = append(f.activityHours, hours)
	return nil
}

func (f *fakeAudienceInsightRepo) GetLatestActivityHours(_ context.Context, _ uint64) (*model.ActivityHours, error) {
	if len(f.activityHours) == 0 {
		return nil, nil
	}
	return f.activityHours[len(f.activityHours)-1], nil
}

func (f *fakeAudienceInsightRepo) GetLatestDemographic(_ context.Context, _ uint64) (*model.Demographic, error) {
	if len(f.demographics) == 0 {
		return nil, nil
	}
	return f.demographics[len(f.demographics)-1], nil
}

func (f *fakeAudienceInsightRepo) CreateDemographic(_ context.Context, demographic *model.Demographic) error {
	f.demographics = append(f.demographics, demographic)
	return nil
}

type fakeRecommendationRepo struct {
	repository.RecommendationRepo
	replaced []*model.Recommendation
}

func (f *fakeRecommendationRepo) ReplaceRecommendations(_ context.Context, _ uint64, recommendations []*model.Recommendation) error {
	f.replaced = recommendations
	return nil
}

func (f *fakeRecommendationRepo) ListRecommendations(_ context.Context, _ uint64, priority string) ([]*model.Recommendation, error) {
	if priority == "" {
		return f.replaced, nil
	}
	var filtered []*model.Recommendation
	for _, recommendation := range f.replaced {
		if recommendation.Payload.Priority == priority {
			filtered = append(filtered, recommendation)
		}
	}
	return filtered, nil
}

type fakeChangeRecordRepo struct {
	mongo.ChangeRecordRepo
	records []*mongo.ChangeRecordModel
}

func (f *fakeChangeRecordRepo) AppendRecord(_ context.Context, record *mongo.ChangeRecordModel) error {
	f.records = append(f.records, record)
	return nil
}

type fakeScraperClient struct {
	scraper.Client
	profile     *scraper.RawProfile
	media       []scraper.RawPost
	followers   []scraper.RawFollower
	insights    *scraper.RawInsights
	err         error
	mediaErr    error
	insightsErr error
}

func (f *fakeScraperClient) GetProfile(_ context.Context, _ string) (*scraper.RawProfile, error) {
	return f.profile, f.err
}

func (f *fakeScraperClient) GetMedia(_ context.Context, _ string, _ int) ([]scraper.RawPost, error) {
	if f.mediaErr != nil {
		return nil, f.mediaErr
	}
	return f.media, f.err
}

func (f *fakeScraperClient) GetFollowers(_ context.Context, _ string, _ int) ([]scraper.RawFollower, error) {
	return f.followers, f.err
}

func (f *fakeScraperClient) GetAudienceInsights(_ context.Context, _ string) (*scraper.RawInsights, error) {
	if f.insightsErr != nil {
		return nil, f.insightsErr
	}
	return f.insights, f.err
}

type fakeCache struct {
	store       map[string][]byte
	invalidated []string
}

var _ cache.Cache = (*fakeCache)(nil)

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string][]byte)}
}

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	return f.store[key], nil
}

func (f *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	f.store[key] = value
	return nil
}

func (f *fakeCache) Invalidate(_ context.Context, key string) error {
	delete(f.store, key)
	f.invalidated = append(f.invalidated, key)
	return nil
}

type fakeAudienceService struct {
	AudienceService
	analysis *model.AudienceQuality
	err      error
}

func (f *fakeAudienceService) AnalyzeAudience(_ context.Context, _ uint64) (*model.AudienceQuality, error) {
	return f.analysis, f.err
}

type fakeGrowthService struct {
	GrowthService
	prediction *model.GrowthPrediction
	err        error
}

func (f *fakeGrowthService) PredictGrowth(_ context.Context, _ uint64) (*model.GrowthPrediction, error) {
	return f.prediction, f.err
}

type fakeBenchmarkService struct {
	BenchmarkService
	latest    *model.Benchmark
	generated int
	err       error
}

func (f *fakeBenchmarkService) GetLatestBenchmark(_ context.Context, _ uint64, _ string) (*model.Benchmark, error) {
	return f.latest, nil
}

func (f *fakeBenchmarkService) GenerateBenchmark(_ context.Context, _ uint64) (*model.Benchmark, error) {
	f.generated++
	if f.err != nil {
		return nil, f.err
	}
	return &model.Benchmark{}, nil
}

type fakeTrendService struct {
	TrendService
	invalidated []uint64
}

func (f *fakeTrendService) InvalidateCache(_ context.Context, accountID uint64) error {
	f.invalidated = append(f.invalidated, accountID)
	return nil
}

type fakeSyncLocker struct {
	held     bool
	acquired []string
	released []string
}

func (f *fakeSyncLocker) Acquire(_ context.Context, key, _ string, _ time.Duration) (bool, error) {
	if f.held {
		return false, nil
	}
	f.acquired = append(f.acquired, key)
	return true, nil
}

func (f *fakeSyncLocker) Release(_ context.Context, key, _ string) {
	f.released = append(f.released, key)
}

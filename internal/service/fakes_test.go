package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"imagegate/config"
	"imagegate/internal/core"
	blobRepository "imagegate/internal/database/blob/repository"
	fluentdModel "imagegate/internal/database/fluentd/model"
	"imagegate/internal/database/mongodb/model"
	"imagegate/internal/service/provider"
	"imagegate/internal/telemetry"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// 記憶體版 store，行為對齊 mongodb repository：查無資料回傳 mongo.ErrNoDocuments

type memCredentialStore struct {
	mutex       sync.Mutex
	credentials map[string]*model.Credential
}

func newMemCredentialStore() *memCredentialStore {
	return &memCredentialStore{credentials: map[string]*model.Credential{}}
}

func (m *memCredentialStore) Upsert(_ context.Context, credential *model.Credential) (*model.Credential, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	c := *credential
	m.credentials[c.Code] = &c
	out := c
	return &out, nil
}

func (m *memCredentialStore) GetByCode(_ context.Context, code string) (*model.Credential, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	c, ok := m.credentials[code]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	out := *c
	return &out, nil
}

func (m *memCredentialStore) GetActiveByCode(ctx context.Context, code string, now time.Time) (*model.Credential, error) {
	c, err := m.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !c.ExpiresAt.After(now) {
		return nil, mongo.ErrNoDocuments
	}
	return c, nil
}

func (m *memCredentialStore) List(_ context.Context) ([]*model.Credential, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	out := make([]*model.Credential, 0, len(m.credentials))
	for _, c := range m.credentials {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *memCredentialStore) UpdateByCode(_ context.Context, code string, setFields bson.M) (*model.Credential, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	c, ok := m.credentials[code]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	for k, v := range setFields {
		switch k {
		case "validDays":
			c.ValidDays = v.(int)
		case "expiresAt":
			c.ExpiresAt = v.(time.Time)
		case "imageQuota":
			c.ImageQuota = v.(int)
		case "suggestionQuota":
			c.SuggestionQuota = v.(int)
		case "bypassModeration":
			c.BypassModeration = v.(bool)
		case "imageBackend":
			c.ImageBackend = v.(core.ImageBackend)
		}
	}
	out := *c
	return &out, nil
}

func (m *memCredentialStore) DeleteByCode(_ context.Context, code string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if _, ok := m.credentials[code]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(m.credentials, code)
	return nil
}

type memUsageStore struct {
	mutex     sync.Mutex
	usages    map[string]*model.CredentialUsage
	deleteErr error
}

func newMemUsageStore() *memUsageStore {
	return &memUsageStore{usages: map[string]*model.CredentialUsage{}}
}

func usageKey(userID, code string) string { return code + "|" + userID }

func (m *memUsageStore) GetOrCreate(_ context.Context, userID string, credentialCode string) (*model.CredentialUsage, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	u, ok := m.usages[usageKey(userID, credentialCode)]
	if !ok {
		u = &model.CredentialUsage{ID: primitive.NewObjectID(), UserID: userID, CredentialCode: credentialCode, CreatedAt: time.Now()}
		m.usages[usageKey(userID, credentialCode)] = u
	}
	out := *u
	return &out, nil
}

func (m *memUsageStore) Increment(_ context.Context, userID string, credentialCode string, category core.UsageCategory) (int64, int64, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	var upserted int64
	u, ok := m.usages[usageKey(userID, credentialCode)]
	if !ok {
		u = &model.CredentialUsage{ID: primitive.NewObjectID(), UserID: userID, CredentialCode: credentialCode, CreatedAt: time.Now()}
		m.usages[usageKey(userID, credentialCode)] = u
		upserted = 1
	}
	if category == core.UsageCategorySuggestion {
		u.SuggestionCount++
	} else {
		u.ImageCount++
	}
	return 1 - upserted, upserted, nil
}

func (m *memUsageStore) ListByCode(_ context.Context, credentialCode string) ([]*model.CredentialUsage, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	out := []*model.CredentialUsage{}
	for _, u := range m.usages {
		if u.CredentialCode == credentialCode {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (m *memUsageStore) DeleteByCode(_ context.Context, credentialCode string) (int64, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	var n int64
	for k, u := range m.usages {
		if u.CredentialCode == credentialCode {
			delete(m.usages, k)
			n++
		}
	}
	return n, nil
}

func (m *memUsageStore) count(userID, code string, category core.UsageCategory) int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	u, ok := m.usages[usageKey(userID, code)]
	if !ok {
		return 0
	}
	return u.CountFor(category)
}

type memFailureStore struct {
	mutex    sync.Mutex
	failures []*model.ModerationFailure
}

func (m *memFailureStore) Create(_ context.Context, failure *model.ModerationFailure) (*model.ModerationFailure, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	f := *failure
	f.ID = primitive.NewObjectID()
	m.failures = append(m.failures, &f)
	return &f, nil
}

func (m *memFailureStore) ListRecent(_ context.Context, limit int64) ([]*model.ModerationFailure, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	out := []*model.ModerationFailure{}
	for i := len(m.failures) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		out = append(out, m.failures[i])
	}
	return out, nil
}

type memTokenStore struct {
	mutex  sync.Mutex
	usages []*model.TokenUsage
	err    error
}

func (m *memTokenStore) Create(_ context.Context, usage *model.TokenUsage) (*model.TokenUsage, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u := *usage
	u.ID = primitive.NewObjectID()
	m.usages = append(m.usages, &u)
	return &u, nil
}

func (m *memTokenStore) Aggregate(_ context.Context, groupField string) ([]*model.TokenUsageAggregate, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	groups := map[string]*model.TokenUsageAggregate{}
	order := []string{}
	for _, u := range m.usages {
		key := ""
		switch groupField {
		case "operationType":
			key = string(u.OperationType)
		case "credentialCode":
			if u.CredentialCode == "" {
				continue
			}
			key = u.CredentialCode
		case "modelName":
			key = u.ModelName
		}
		g, ok := groups[key]
		if !ok {
			g = &model.TokenUsageAggregate{Group: key}
			groups[key] = g
			order = append(order, key)
		}
		g.PromptTokens += int64(u.PromptTokens)
		g.CompletionTokens += int64(u.CompletionTokens)
		g.ThinkingTokens += int64(u.ThinkingTokens)
		g.TotalTokens += int64(u.TotalTokens)
		g.ImagesGenerated += int64(u.ImagesGenerated)
		g.Cost += u.Cost
		g.RequestCount++
	}
	var out []*model.TokenUsageAggregate
	for _, k := range order {
		out = append(out, groups[k])
	}
	// 與 pipeline 的 $sort 一致：成本由高到低
	sort.SliceStable(out, func(i, j int) bool { return out[i].Cost > out[j].Cost })
	return out, nil
}

func (m *memTokenStore) all() []*model.TokenUsage {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return append([]*model.TokenUsage(nil), m.usages...)
}

type memSettingStore struct {
	mutex    sync.Mutex
	settings map[string]*model.Setting
}

func newMemSettingStore() *memSettingStore {
	return &memSettingStore{settings: map[string]*model.Setting{}}
}

func (m *memSettingStore) Get(_ context.Context, key string) (*model.Setting, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	s, ok := m.settings[key]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	out := *s
	return &out, nil
}

func (m *memSettingStore) Set(_ context.Context, key string, value string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.settings[key] = &model.Setting{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return nil
}

func (m *memSettingStore) Delete(_ context.Context, key string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.settings, key)
	return nil
}

type memImageStore struct {
	mutex  sync.Mutex
	images map[string]*model.Image
	order  []string
}

func newMemImageStore() *memImageStore {
	return &memImageStore{images: map[string]*model.Image{}}
}

func (m *memImageStore) Create(_ context.Context, image *model.Image) (*model.Image, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	i := *image
	if i.CreatedAt.IsZero() {
		i.CreatedAt = time.Now().UTC()
		i.UpdatedAt = i.CreatedAt
	}
	m.images[i.ID] = &i
	m.order = append(m.order, i.ID)
	out := i
	return &out, nil
}

func (m *memImageStore) GetByID(_ context.Context, imageID string) (*model.Image, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	i, ok := m.images[imageID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	out := *i
	return &out, nil
}

func (m *memImageStore) GetByIDAndUser(ctx context.Context, imageID string, userGUID string) (*model.Image, error) {
	i, err := m.GetByID(ctx, imageID)
	if err != nil {
		return nil, err
	}
	if i.UserGUID != userGUID {
		return nil, mongo.ErrNoDocuments
	}
	return i, nil
}

func (m *memImageStore) ListByUser(_ context.Context, userGUID string) ([]*model.Image, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	out := []*model.Image{}
	for idx := len(m.order) - 1; idx >= 0; idx-- {
		i, ok := m.images[m.order[idx]]
		if ok && i.UserGUID == userGUID {
			cp := *i
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memImageStore) ListAll(_ context.Context) ([]*model.Image, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	out := []*model.Image{}
	for idx := len(m.order) - 1; idx >= 0; idx-- {
		if i, ok := m.images[m.order[idx]]; ok {
			cp := *i
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memImageStore) UpdateDescription(_ context.Context, imageID string, description string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	i, ok := m.images[imageID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	i.Description = description
	return nil
}

func (m *memImageStore) DeleteByID(_ context.Context, imageID string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if _, ok := m.images[imageID]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(m.images, imageID)
	return nil
}

func (m *memImageStore) Count(_ context.Context, since time.Time) (int64, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	var n int64
	for _, i := range m.images {
		if since.IsZero() || !i.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

type memUserStore struct {
	mutex sync.Mutex
	users map[string]*model.User
}

func newMemUserStore(guids ...string) *memUserStore {
	m := &memUserStore{users: map[string]*model.User{}}
	for _, g := range guids {
		m.users[g] = &model.User{ID: primitive.NewObjectID(), GUID: g, CreatedAt: time.Now().UTC()}
	}
	return m
}

func (m *memUserStore) Create(_ context.Context, user *model.User) (*model.User, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	u := *user
	u.ID = primitive.NewObjectID()
	m.users[u.GUID] = &u
	out := u
	return &out, nil
}

func (m *memUserStore) GetByGUID(_ context.Context, guid string) (*model.User, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	u, ok := m.users[guid]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	out := *u
	return &out, nil
}

func (m *memUserStore) Count(_ context.Context, since time.Time) (int64, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	var n int64
	for _, u := range m.users {
		if since.IsZero() || !u.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

type memBlobStore struct {
	mutex sync.Mutex
	blobs map[string][]byte
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{blobs: map[string][]byte{}}
}

func (m *memBlobStore) Save(_ context.Context, imageID string, data []byte) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.blobs[imageID] = append([]byte(nil), data...)
	return nil
}

func (m *memBlobStore) Load(_ context.Context, imageID string) ([]byte, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	b, ok := m.blobs[imageID]
	if !ok {
		return nil, blobRepository.ErrBlobNotFound
	}
	return b, nil
}

func (m *memBlobStore) Delete(_ context.Context, imageID string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.blobs, imageID)
	return nil
}

type memUsageLogger struct {
	mutex sync.Mutex
	logs  []fluentdModel.ProviderUsageLog
}

func (m *memUsageLogger) LogUsage(_ context.Context, usage fluentdModel.ProviderUsageLog) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.logs = append(m.logs, usage)
	return nil
}

// fixedLimiter 固定放行或拒絕
type fixedLimiter struct{ admit bool }

func (l fixedLimiter) Admit(context.Context) bool { return l.admit }

// fakeProvider 可設定每種能力的回應
type fakeProvider struct {
	mutex sync.Mutex

	moderation    *provider.ModerationResult
	moderationErr error
	imageErr      error
	// 錯誤時仍回傳帶 usage 的結果（供應商已回應但內容不可用）
	billedUsage  *provider.TokenCounts
	describeText string
	describeErr  error
	suggestions  []string
	suggestErr   error

	calls          map[string]int
	lastGuidelines string
	lastBackend    core.ImageBackend
	lastSuggest    provider.SuggestParams
	lastEditInput  []byte
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		moderation:   &provider.ModerationResult{IsAppropriate: true, Model: "gemini-2.5-flash-lite", Usage: provider.TokenCounts{Prompt: 100, Completion: 10, Total: 110}},
		describeText: "A red fox in snow",
		suggestions:  []string{"one", "two", "three"},
		calls:        map[string]int{},
	}
}

func (p *fakeProvider) record(name string) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.calls[name]++
}

func (p *fakeProvider) count(name string) int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.calls[name]
}

func (p *fakeProvider) Moderate(_ context.Context, _ string, guidelines string) (*provider.ModerationResult, error) {
	p.record("moderate")
	p.lastGuidelines = guidelines
	if p.moderationErr != nil {
		if p.billedUsage != nil {
			return &provider.ModerationResult{Model: "gemini-2.5-flash-lite", Usage: *p.billedUsage}, p.moderationErr
		}
		return nil, p.moderationErr
	}
	return p.moderation, nil
}

func (p *fakeProvider) GenerateImage(_ context.Context, _ string, backend core.ImageBackend) (*provider.ImageResult, error) {
	p.record("generate")
	p.lastBackend = backend
	modelName := "gemini-2.5-flash-image-preview"
	if backend == core.ImageBackendAlternate {
		modelName = "gpt-image-1"
	}
	if p.imageErr != nil {
		if p.billedUsage != nil {
			return &provider.ImageResult{Model: modelName, Usage: *p.billedUsage}, p.imageErr
		}
		return nil, p.imageErr
	}
	return &provider.ImageResult{Data: []byte("png-bytes"), Model: modelName, Images: 1}, nil
}

func (p *fakeProvider) EditImage(_ context.Context, image []byte, _ string) (*provider.ImageResult, error) {
	p.record("edit")
	p.lastEditInput = image
	if p.imageErr != nil {
		if p.billedUsage != nil {
			return &provider.ImageResult{Model: "gemini-2.5-flash-image-preview", Usage: *p.billedUsage}, p.imageErr
		}
		return nil, p.imageErr
	}
	return &provider.ImageResult{Data: []byte("edited-bytes"), Model: "gemini-2.5-flash-image-preview", Images: 1}, nil
}

func (p *fakeProvider) Describe(_ context.Context, _ []byte) (*provider.TextResult, error) {
	p.record("describe")
	if p.describeErr != nil {
		return nil, p.describeErr
	}
	return &provider.TextResult{Text: p.describeText, Model: "gemini-2.5-flash-lite"}, nil
}

func (p *fakeProvider) Suggest(_ context.Context, params provider.SuggestParams) (*provider.SuggestionResult, error) {
	p.record("suggest")
	p.lastSuggest = params
	if p.suggestErr != nil {
		if p.billedUsage != nil {
			return &provider.SuggestionResult{Model: "gemini-2.5-flash-lite", Usage: *p.billedUsage}, p.suggestErr
		}
		return nil, p.suggestErr
	}
	return &provider.SuggestionResult{Suggestions: p.suggestions, Model: "gemini-2.5-flash-lite"}, nil
}

var errProviderDown = errors.New("provider down")

const testAdminSecret = "S3cret-Admin"

// fixture 組好整組 service，所有依賴都是記憶體版本
type fixture struct {
	now time.Time

	credentialStore *memCredentialStore
	usageStore      *memUsageStore
	failureStore    *memFailureStore
	tokenStore      *memTokenStore
	settingStore    *memSettingStore
	imageStore      *memImageStore
	userStore       *memUserStore
	blobStore       *memBlobStore
	usageLogger     *memUsageLogger
	provider        *fakeProvider

	credentials *CredentialService
	usage       *UsageService
	cost        *CostService
	moderation  *ModerationService
	images      *ImageService
	suggestions *SuggestionService
	users       *UserService
	admin       *AdminService
}

func newFixture(limiter RateLimiter, users ...string) *fixture {
	trace := &telemetry.Trace{}
	metric := &telemetry.Metric{}
	logger := zap.NewNop()
	conf := &config.Configuration{App: config.App{AdminSecret: testAdminSecret}}

	f := &fixture{
		now:             time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		credentialStore: newMemCredentialStore(),
		usageStore:      newMemUsageStore(),
		failureStore:    &memFailureStore{},
		tokenStore:      &memTokenStore{},
		settingStore:    newMemSettingStore(),
		imageStore:      newMemImageStore(),
		userStore:       newMemUserStore(users...),
		blobStore:       newMemBlobStore(),
		usageLogger:     &memUsageLogger{},
		provider:        newFakeProvider(),
	}
	clock := func() time.Time { return f.now }

	f.credentials = NewCredentialService(trace, metric, logger, conf, f.credentialStore, f.usageStore)
	f.credentials.now = clock
	f.usage = NewUsageService(trace, f.credentials, f.usageStore)
	f.cost = NewCostService(trace, metric, logger, f.credentials, f.tokenStore, f.usageLogger)
	f.cost.now = clock
	f.moderation = NewModerationService(trace, metric, logger, limiter, f.provider, f.cost, f.settingStore, f.failureStore)
	f.moderation.now = clock
	f.images = NewImageService(trace, metric, logger, limiter, f.provider, f.credentials, f.usage, f.moderation, f.cost, f.imageStore, f.userStore, f.blobStore)
	f.suggestions = NewSuggestionService(trace, metric, logger, limiter, f.provider, f.credentials, f.usage, f.cost, f.images, f.imageStore, f.blobStore)
	f.users = NewUserService(trace, f.userStore)
	f.users.now = clock
	f.admin = NewAdminService(trace, conf, f.imageStore, f.userStore)
	f.admin.now = clock
	return f
}

// seedCredential 直接寫入一筆通行碼
func (f *fixture) seedCredential(code string, validDays, imageQuota, suggestionQuota int, bypass bool, backend core.ImageBackend) {
	created := f.now
	f.credentialStore.credentials[code] = &model.Credential{
		ID:               primitive.NewObjectID(),
		Code:             code,
		ValidDays:        validDays,
		ImageQuota:       imageQuota,
		SuggestionQuota:  suggestionQuota,
		BypassModeration: bypass,
		ImageBackend:     backend,
		CreatedAt:        created,
		ExpiresAt:        expiresAfter(created, validDays),
	}
}

package core

const ContextTraceKey = "telemetry_trace_ctx"

// ==== 型別安全 span name ====
type TraceSpanName string

const (
	SpanLoggerMiddleware   TraceSpanName = "logger_middleware"
	SpanRecoveryMiddleware TraceSpanName = "recovery_middleware"
	SpanCorsMiddleware     TraceSpanName = "cors_middleware"
	SpanResponseMiddleware TraceSpanName = "response_middleware"
	SpanAdminMiddleware    TraceSpanName = "admin_auth_middleware"
	SpanRateLimiterAdmit   TraceSpanName = "rate_limiter_admit"
)

// 指標名稱常數
type MetricName string

const (
	MetricHttpRequestsTotal     MetricName = "requests_total"
	MetricHttpRequestDuration   MetricName = "request_duration_seconds"
	MetricRequestSuccessTotal   MetricName = "request_success_total"
	MetricRequestFailTotal      MetricName = "request_fail_total"
	MetricRateLimitTotal        MetricName = "rate_limited_total"
	MetricModerationRejectTotal MetricName = "moderation_rejected_total"
	MetricProviderCallsTotal    MetricName = "provider_calls_total"
	MetricProviderCostTotal     MetricName = "provider_cost_total"
	MetricCostSnapshot          MetricName = "cost_snapshot"
	MetricQuotaDeniedTotal      MetricName = "quota_denied_total"
)

// label name 常數
type MetricLabelName string

const (
	MetricLabelEndpoint  MetricLabelName = "endpoint"
	MetricLabelStatus    MetricLabelName = "status"
	MetricLabelReason    MetricLabelName = "reason"
	MetricLabelKind      MetricLabelName = "kind"
	MetricLabelModel     MetricLabelName = "model"
	MetricLabelOperation MetricLabelName = "operation"
)

type LoggerRequestMeta struct {
	Method     string            `trace:"request.method"`
	Path       string            `trace:"request.path"`
	FullPath   string            `trace:"request.full_path"`
	Query      string            `trace:"request.query"`
	Body       string            `trace:"request.body"`
	Scheme     string            `trace:"http.scheme"`
	Host       string            `trace:"http.host"`
	UserAgent  string            `trace:"http.user_agent"`
	ContentLen int64             `trace:"http.request_content_length"`
	Proto      string            `trace:"http.flavor"`
	ClientIP   string            `trace:"net.peer.ip"`
	Headers    map[string]string `trace:"http.request.header"`
	Params     map[string]string `trace:"http.request.param"`
}

// 全域限流 Admit
type TraceRateLimitMeta struct {
	Backend   string `trace:"rl.backend"`
	Ceiling   int    `trace:"rl.ceiling"`
	WindowSec int64  `trace:"rl.window_sec"`
	InWindow  int    `trace:"rl.in_window"`
	Admitted  bool   `trace:"rl.admitted"`
}

// 通行碼驗證
type TraceCredentialMeta struct {
	Op       string `trace:"op"`
	Code     string `trace:"credential.code,omitempty"`
	UserID   string `trace:"user.id,omitempty"`
	Category string `trace:"usage.category,omitempty"`
	IsAdmin  bool   `trace:"credential.is_admin"`
	Allowed  bool   `trace:"credential.allowed"`
	Reason   string `trace:"credential.reason,omitempty"`
	Used     int    `trace:"usage.used,omitempty"`
	Quota    int    `trace:"usage.quota,omitempty"`
}

// 用量寫入
type TraceUsageWriteMeta struct {
	Code          string `trace:"usage.credential_code"`
	UserID        string `trace:"usage.user_id"`
	Category      string `trace:"usage.category"`
	Skipped       bool   `trace:"usage.skipped"`
	MatchedCount  int64  `trace:"usage.matched_count,omitempty"`
	UpsertedCount int64  `trace:"usage.upserted_count,omitempty"`
}

type TraceModerationMeta struct {
	Kind          string `trace:"moderation.kind"`
	ContentLength int    `trace:"moderation.content_length"`
	DefaultRules  bool   `trace:"moderation.default_guidelines"`
	Appropriate   bool   `trace:"moderation.is_appropriate"`
	Reason        string `trace:"moderation.reason,omitempty"`
	Status        string `trace:"moderation.status"`
}

type TraceCostMeta struct {
	Operation        string  `trace:"cost.operation"`
	Model            string  `trace:"cost.model"`
	Credential       string  `trace:"cost.credential,omitempty"`
	TokensPrompt     int     `trace:"ai.tokens.prompt"`
	TokensCompletion int     `trace:"ai.tokens.completion"`
	TokensThinking   int     `trace:"ai.tokens.thinking"`
	TokensTotal      int     `trace:"ai.tokens.total"`
	Images           int     `trace:"ai.images"`
	Cost             float64 `trace:"cost.usd"`
}

type TraceImageOpMeta struct {
	Op          string `trace:"image.op"`
	UserID      string `trace:"user.id"`
	ImageID     string `trace:"image.id,omitempty"`
	SourceID    string `trace:"image.source_id,omitempty"`
	Backend     string `trace:"image.backend,omitempty"`
	Bypass      bool   `trace:"moderation.bypass"`
	Description string `trace:"image.description,omitempty"`
	Status      string `trace:"image.status,omitempty"`
}

type TraceAdminAuthMeta struct {
	Where    string `trace:"auth.where"`
	ClientIP string `trace:"net.peer.ip,omitempty"`
	Status   string `trace:"auth.status"`
}

type TracePanicMeta struct {
	Path       string  `trace:"http.path"`
	Method     string  `trace:"http.method"`
	ClientIP   string  `trace:"net.peer.ip"`
	UserAgent  string  `trace:"http.user_agent"`
	DurationMs float64 `trace:"response.latency_ms"`
	Status     int     `trace:"http.status_code"`
	Message    string  `trace:"error.message"`
	Stack      string  `trace:"error.stack"`
}

type TraceErrorMeta struct {
	Code       int     `trace:"error.code"`
	Message    string  `trace:"error.message"`
	Detail     string  `trace:"error.detail"`
	Status     int     `trace:"http.status_code"`
	DurationMs float64 `trace:"response.latency_ms"`
}

type TraceResponseMeta struct {
	Path       string  `trace:"http.path"`
	Method     string  `trace:"http.method"`
	Status     int     `trace:"http.status_code"`
	Message    string  `trace:"response.message"`
	Code       int     `trace:"response.code"`
	DurationMs float64 `trace:"response.latency_ms"`
	Data       string  `trace:"response.data_preview"`
}

type TraceHttpServerMeta struct {
	// request side
	ClientAddr        string `trace:"client.address"`
	HttpRequestMethod string `trace:"http.request.method"`
	HttpRoute         string `trace:"http.route"`
	UrlPath           string `trace:"http.request.path"`
	UrlScheme         string `trace:"http.request.url.scheme"`
	UserAgent         string `trace:"user_agent.original"`
	ServerAddress     string `trace:"server.address"`
	NetworkPeerAddr   string `trace:"network.peer.address"`
	NetworkPeerPort   int    `trace:"network.peer.port"`
	NetworkProtoVer   string `trace:"network.protocol.version"`
	SpanKind          string `trace:"span.kind"`
	SpanTraceID       string `trace:"span.trace_id"`
	HttpStatusCode    int    `trace:"http.response.status_code"`
}

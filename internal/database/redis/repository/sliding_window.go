package repository

import (
	"context"
	"fmt"
	"time"

	"imagegate/internal/core"
	client "imagegate/internal/database/client"
	"imagegate/internal/telemetry"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// 以 sorted set 實作多副本共用的滑動視窗：score 為毫秒時間戳，member 為 uuid。
// 清除過期、計數、新增在同一個 script 內完成。
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local ceiling = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', key, '-inf', '(' .. (now - window))
local count = redis.call('ZCARD', key)
if count >= ceiling then
	return {0, count}
end
redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return {1, count + 1}
`)

type SlidingWindowRepository struct {
	trace  *telemetry.Trace
	client *redis.Client
	key    string
}

func NewSlidingWindowRepository(trace *telemetry.Trace, client *client.RedisClient) *SlidingWindowRepository {
	return &SlidingWindowRepository{
		trace:  trace,
		client: client.Client(),
		key:    client.Key(string(core.RedisKeyProviderWindow)),
	}
}

// Admit 嘗試在視窗內登記一次呼叫。
// 回傳：admitted（是否放行）、inWindow（登記後視窗內筆數；拒絕時為目前筆數）
func (repository *SlidingWindowRepository) Admit(
	contextValue context.Context,
	now time.Time,
	window time.Duration,
	ceiling int,
) (admitted bool, inWindow int, returnedError error) {

	contextValue, span, endSpan := repository.trace.WithSpan(contextValue)
	defer func() {
		endSpan(returnedError)
	}()

	traceMetadata := core.TraceRateLimitMeta{
		Backend:   "redis",
		Ceiling:   ceiling,
		WindowSec: int64(window / time.Second),
	}

	result, runError := slidingWindowScript.Run(
		contextValue,
		repository.client,
		[]string{repository.key},
		now.UnixMilli(),
		window.Milliseconds(),
		ceiling,
		uuid.NewString(),
	).Int64Slice()
	if runError != nil {
		returnedError = runError
		return false, 0, returnedError
	}
	if len(result) != 2 {
		returnedError = fmt.Errorf("unexpected sliding window reply: %v", result)
		return false, 0, returnedError
	}

	admitted, inWindow = result[0] == 1, int(result[1])
	traceMetadata.Admitted, traceMetadata.InWindow = admitted, inWindow
	repository.trace.ApplyTraceAttributes(span, traceMetadata)
	return admitted, inWindow, nil
}

package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"imagegate/internal/database/client"
)

const healthProbeTimeout = 2 * time.Second

// HealthProbe readiness 依賴的外部服務
type HealthProbe interface {
	Ping(ctx context.Context) error
}

// HealthService liveness 只看程序本身；readiness 另外要求 mongo 與 redis 可達
type HealthService struct {
	live    atomic.Bool
	started atomic.Bool
	probes  map[string]HealthProbe
	timeout time.Duration
}

func NewHealthService(mongoClient *client.MongoClient, redisClient *client.RedisClient) *HealthService {
	return newHealthService(map[string]HealthProbe{
		"mongodb": mongoClient,
		"redis":   redisClient,
	})
}

func newHealthService(probes map[string]HealthProbe) *HealthService {
	s := &HealthService{probes: probes, timeout: healthProbeTimeout}
	s.live.Store(true)
	return s
}

// SetReady 啟動完成後打開，關機開始時關閉
func (s *HealthService) SetReady(v bool) {
	s.started.Store(v)
}

func (s *HealthService) IsLive() bool {
	return s.live.Load()
}

// Readiness 並行 ping 各依賴，回傳整體結果與各依賴狀態（"ok" 或錯誤訊息）
func (s *HealthService) Readiness(ctx context.Context) (bool, map[string]string) {
	if !s.started.Load() {
		return false, map[string]string{"app": "starting"}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		ready  = true
		status = make(map[string]string, len(s.probes))
	)
	for name, probe := range s.probes {
		wg.Add(1)
		go func(name string, probe HealthProbe) {
			defer wg.Done()
			result := "ok"
			if err := probe.Ping(ctx); err != nil {
				result = err.Error()
			}
			mu.Lock()
			defer mu.Unlock()
			status[name] = result
			if result != "ok" {
				ready = false
			}
		}(name, probe)
	}
	wg.Wait()
	return ready, status
}

package middleware

import (
	"time"

	"imagegate/config"
	"imagegate/internal/core"
	"imagegate/internal/telemetry"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Cors struct {
	trace *telemetry.Trace
	cfg   cors.Config
}

type corsMeta struct {
	AllowOrigins []string `trace:"http.cors.allow_origins"`
	AllowMethods []string `trace:"http.cors.allow_methods"`
	AllowCreds   bool     `trace:"http.cors.allow_credentials"`
	Preflight    bool     `trace:"http.cors.preflight"`
}

func NewCors(trace *telemetry.Trace, conf *config.Configuration) *Cors {
	return &Cors{trace: trace, cfg: corsConfig(conf.App.CorsOrigins)}
}

// 萬用來源不可搭配 credentials；指定來源時才允許帶 cookie
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Admin-Token", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

// CorsHandler 探針與指標路徑不開 span，但仍套用 CORS
func (m *Cors) CorsHandler() gin.HandlerFunc {
	corsHandler := cors.New(m.cfg)

	return func(c *gin.Context) {
		if isInfraPath(c.FullPath()) {
			corsHandler(c)
			return
		}

		_, span, end := m.trace.WithSpan(c.Request.Context(), string(core.SpanCorsMiddleware))
		defer end(nil)

		origins := m.cfg.AllowOrigins
		if m.cfg.AllowAllOrigins {
			origins = []string{"*"}
		}
		m.trace.ApplyTraceAttributes(span, corsMeta{
			AllowOrigins: origins,
			AllowMethods: m.cfg.AllowMethods,
			AllowCreds:   m.cfg.AllowCredentials,
			Preflight:    c.Request.Method == "OPTIONS" && c.GetHeader("Access-Control-Request-Method") != "",
		})

		corsHandler(c)
	}
}

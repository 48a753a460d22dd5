package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tcfw/starchain/pkg/admission"
	"github.com/tcfw/starchain/pkg/ledger"
)

// API serves the star registry REST surface.
type API struct {
	ledger *ledger.Ledger
	pool   *admission.Pool
	log    *logrus.Entry

	engine *gin.Engine
	srv    *http.Server
}

func NewAPI(l *ledger.Ledger, p *admission.Pool, log *logrus.Entry) *API {
	a := &API{
		ledger: l,
		pool:   p,
		log:    log,
	}

	r := gin.New()
	r.Use(gin.Recovery(), a.requestLogger())
	a.register(r)

	a.engine = r

	return a
}

func (a *API) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		a.log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
		}).Info("request")
	}
}

func (a *API) register(r *gin.Engine) {
	r.POST("/requestValidation", a.requestValidation)
	r.POST("/message-signature/validate", a.validateSignature)
	r.POST("/block", a.addBlock)
	r.GET("/block/:height", a.blockByHeight)
	r.GET("/stars/:selector", a.stars)
}

// Handler exposes the underlying router, for tests.
func (a *API) Handler() http.Handler {
	return a.engine
}

func (a *API) ListenAndServe(addr string) error {
	a.srv = &http.Server{Addr: addr, Handler: a.engine}

	err := a.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}

	return err
}

func (a *API) Shutdown(ctx context.Context) error {
	if a.srv == nil {
		return nil
	}

	return a.srv.Shutdown(ctx)
}

package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"

	"transfer/internal/logger"
)

// ErrorReporter logs errors attached by handlers and notices them on the
// request's New Relic transaction, when nrgin started one.
func ErrorReporter(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		txn := nrgin.Transaction(c)
		for _, e := range c.Errors {
			log.WithError(e.Err).
				WithField("method", c.Request.Method).
				WithField("route", c.FullPath()).
				Error("request failed")
			if txn != nil {
				txn.NoticeError(e.Err)
			}
		}
	}
}

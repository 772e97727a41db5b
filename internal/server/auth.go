package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const uidKey = "uid"

// requireAuth resolves the bearer token to an admin uid and stores it in
// the context under uidKey.
func (api *HouseholdAPI) requireAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := bearerToken(ctx.GetHeader("Authorization"))
		uid, err := api.svc.Authenticate(ctx.Request.Context(), token)
		if err != nil {
			api.respondError(ctx, err)
			ctx.Abort()
			return
		}
		api.logger.Debug("authenticated", zap.String("uid", uid))
		ctx.Set(uidKey, uid)
		ctx.Next()
	}
}

func bearerToken(header string) string {
	fields := strings.Fields(header)
	switch {
	case len(fields) == 0:
		return ""
	case strings.EqualFold(fields[0], "bearer"):
		if len(fields) < 2 {
			return ""
		}
		return fields[1]
	default:
		return strings.TrimSpace(header)
	}
}

func currentUID(ctx *gin.Context) string {
	return ctx.GetString(uidKey)
}

package server

import (
	"net/http"

	"household/internal/domain/errors"
	"household/internal/domain/models"
	"household/internal/metrics"

	"github.com/gin-gonic/gin"
	goerrors "github.com/go-faster/errors"
	"go.uber.org/zap"
)

func (api *HouseholdAPI) purchase(ctx *gin.Context) {
	var req models.PurchaseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		api.metrics.Purchase(metrics.OutcomeRejected, 0)
		api.respondError(ctx, goerrors.Wrap(errors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := api.svc.Purchase(ctx.Request.Context(), currentUID(ctx), req.MemberID, req.Item)
	if err != nil {
		outcome := metrics.OutcomeRejected
		if goerrors.Is(err, errors.ErrInsufficientFunds) {
			outcome = metrics.OutcomeInsufficientFunds
		}
		api.metrics.Purchase(outcome, 0)
		api.respondError(ctx, err)
		return
	}
	price := req.Item.Price.Float64()
	api.metrics.Purchase(metrics.OutcomeOK, price)
	api.logger.Info("purchase completed",
		zap.String("member_id", req.MemberID),
		zap.String("item_id", req.Item.ID),
		zap.Float64("new_money", result.Money),
	)

	ctx.JSON(http.StatusOK, gin.H{
		"message":       "Purchase successful",
		"new_money":     result.Money,
		"new_cosmetics": result.Cosmetics,
	})
}

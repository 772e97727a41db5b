package server

import (
	"net/http"

	"household/internal/domain/models"

	"github.com/gin-gonic/gin"
)

func (api *HouseholdAPI) register(ctx *gin.Context) {
	var req models.RegisterRequest
	if err := api.bind(ctx, &req); err != nil {
		api.respondError(ctx, err)
		return
	}

	uid, err := api.svc.Register(ctx.Request.Context(), req)
	if err != nil {
		api.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"uid":     uid,
	})
}

func (api *HouseholdAPI) login(ctx *gin.Context) {
	var req models.LoginRequest
	if err := api.bind(ctx, &req); err != nil {
		api.respondError(ctx, err)
		return
	}

	admin, err := api.svc.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		api.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":  "Login successful",
		"uid":      admin.UID,
		"username": admin.Username,
		"email":    admin.Email,
	})
}

func (api *HouseholdAPI) issueToken(ctx *gin.Context) {
	var req models.LoginRequest
	if err := api.bind(ctx, &req); err != nil {
		api.respondError(ctx, err)
		return
	}

	token, err := api.svc.IssueToken(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		api.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"token": token})
}

func (api *HouseholdAPI) logout(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

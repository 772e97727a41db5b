package server

import (
	"encoding/json"
	"net/http"

	"household/internal/domain/errors"
	"household/internal/domain/models"

	"github.com/gin-gonic/gin"
)

func (api *HouseholdAPI) verifyPin(ctx *gin.Context) {
	var req models.VerifyPinRequest
	if err := api.bind(ctx, &req); err != nil {
		api.respondError(ctx, err)
		return
	}

	if err := api.svc.VerifyPin(ctx.Request.Context(), currentUID(ctx), string(req.Pin)); err != nil {
		api.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "PIN verified"})
}

func (api *HouseholdAPI) createMember(ctx *gin.Context) {
	var req models.CreateMemberRequest
	if err := api.bind(ctx, &req); err != nil {
		api.respondError(ctx, err)
		return
	}

	id, err := api.svc.CreateMember(ctx.Request.Context(), currentUID(ctx), req)
	if err != nil {
		api.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message":   "Member created successfully",
		"member_id": id,
	})
}

func (api *HouseholdAPI) listMembers(ctx *gin.Context) {
	members, err := api.svc.ListMembers(ctx.Request.Context(), currentUID(ctx))
	if err != nil {
		api.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, members)
}

func (api *HouseholdAPI) getMember(ctx *gin.Context) {
	member, err := api.svc.GetMember(ctx.Request.Context(), currentUID(ctx), ctx.Param("id"))
	if err != nil {
		api.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, member)
}

func (api *HouseholdAPI) updateMember(ctx *gin.Context) {
	var raw map[string]json.RawMessage
	if err := ctx.ShouldBindJSON(&raw); err != nil {
		api.respondError(ctx, errors.ErrInvalidInput)
		return
	}
	update, err := models.ParseMemberUpdate(raw)
	if err != nil {
		api.respondError(ctx, err)
		return
	}

	if err := api.svc.UpdateMember(ctx.Request.Context(), currentUID(ctx), ctx.Param("id"), update); err != nil {
		api.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Member updated successfully"})
}

func (api *HouseholdAPI) deleteMember(ctx *gin.Context) {
	if err := api.svc.DeleteMember(ctx.Request.Context(), currentUID(ctx), ctx.Param("id")); err != nil {
		api.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Member deleted successfully"})
}

func (api *HouseholdAPI) addTask(ctx *gin.Context) {
	var req models.AddTaskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		api.respondError(ctx, errors.ErrInvalidInput)
		return
	}

	task, err := api.svc.AddTask(ctx.Request.Context(), currentUID(ctx), ctx.Param("id"), req.Title, req.Price)
	if err != nil {
		api.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Task added successfully",
		"task":    task,
	})
}

func (api *HouseholdAPI) completeTask(ctx *gin.Context) {
	result, err := api.svc.CompleteTask(ctx.Request.Context(), currentUID(ctx), ctx.Param("id"), ctx.Param("taskId"))
	if err != nil {
		api.respondError(ctx, err)
		return
	}
	api.metrics.TaskCompleted(result.Credit)

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Task completed",
		"tasks":   result.Tasks,
		"money":   result.Money,
	})
}

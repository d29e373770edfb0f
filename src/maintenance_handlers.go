package main

import (
	"net/http"
	"vrs/src/common"
	"vrs/src/middlewares"
	"vrs/src/types"

	"github.com/gin-gonic/gin"
)

func maintenanceHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/maintenance", func(ctx *gin.Context) {
			var filters types.MaintenanceQueryFilters
			var page types.PaginationQuery
			if err := ctx.ShouldBindQuery(&filters); err != nil {
				respondBindError(ctx, err)
				return
			}
			if err := ctx.ShouldBindQuery(&page); err != nil {
				respondBindError(ctx, err)
				return
			}
			requests, err := common.ListMaintenance(ctx.Request.Context(), filters, page)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, requests)
		}).
		GET("/maintenance/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			request, err := common.GetMaintenance(ctx.Request.Context(), params.ID)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, request)
		}).
		POST("/maintenance", func(ctx *gin.Context) {
			var body types.CreateMaintenanceRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				respondBindError(ctx, err)
				return
			}
			request, err := common.CreateMaintenance(ctx.Request.Context(), middlewares.Actor(ctx), body)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, request)
		}).
		PUT("/maintenance/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.UpdateMaintenanceRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				respondBindError(ctx, err)
				return
			}
			request, err := common.UpdateMaintenance(ctx.Request.Context(), middlewares.Actor(ctx), params.ID, body)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, request)
		}).
		PATCH("/maintenance/:id/completed", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body struct {
				IsCompleted *bool `json:"is_completed" binding:"required"`
			}
			if err := ctx.ShouldBindJSON(&body); err != nil {
				respondBindError(ctx, err)
				return
			}
			request, err := common.SetMaintenanceCompleted(ctx.Request.Context(), middlewares.Actor(ctx), params.ID, *body.IsCompleted)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, request)
		}).
		DELETE("/maintenance/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			if err := common.DeleteMaintenance(ctx.Request.Context(), middlewares.Actor(ctx), params.ID); err != nil {
				respondError(ctx, err)
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}

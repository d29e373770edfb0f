package main

import (
	"net/http"
	"vrs/src/common"
	"vrs/src/middlewares"
	"vrs/src/types"

	"github.com/gin-gonic/gin"
)

func reportHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/reports/revenue", func(ctx *gin.Context) {
			var filters types.ReportQueryFilters
			if err := ctx.ShouldBindQuery(&filters); err != nil {
				respondBindError(ctx, err)
				return
			}
			report, err := common.BuildRevenueReport(ctx.Request.Context(), middlewares.Actor(ctx), filters)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, report)
		}).
		GET("/reports/rentals", func(ctx *gin.Context) {
			var filters types.ReportQueryFilters
			if err := ctx.ShouldBindQuery(&filters); err != nil {
				respondBindError(ctx, err)
				return
			}
			report, err := common.BuildRentalAnalytics(ctx.Request.Context(), middlewares.Actor(ctx), filters)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, report)
		}).
		GET("/reports/vehicles", func(ctx *gin.Context) {
			var filters types.ReportQueryFilters
			if err := ctx.ShouldBindQuery(&filters); err != nil {
				respondBindError(ctx, err)
				return
			}
			report, err := common.BuildVehicleReport(ctx.Request.Context(), middlewares.Actor(ctx), filters)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, report)
		})
	return g
}

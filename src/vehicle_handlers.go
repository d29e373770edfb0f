package main

import (
	"net/http"
	"vrs/src/common"
	"vrs/src/middlewares"
	"vrs/src/types"

	"github.com/gin-gonic/gin"
)

// publicVehicleHandlers is the catalogue anyone can browse.
func publicVehicleHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/vehicles", listVehicles).
		GET("/vehicles/:id", showVehicle)
	return g
}

func listVehicles(ctx *gin.Context) {
	var filters types.VehicleQueryFilters
	var page types.PaginationQuery
	if err := ctx.ShouldBindQuery(&filters); err != nil {
		respondBindError(ctx, err)
		return
	}
	if err := ctx.ShouldBindQuery(&page); err != nil {
		respondBindError(ctx, err)
		return
	}
	vehicles, err := common.ListVehicles(ctx.Request.Context(), filters, page)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, vehicles)
}

func showVehicle(ctx *gin.Context) {
	var params types.SimpleRequestParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.Status(http.StatusBadRequest)
		return
	}
	vehicle, err := common.GetVehicle(ctx.Request.Context(), params.ID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, vehicle)
}

func vehicleHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/vehicles", listVehicles).
		GET("/vehicles/:id", showVehicle).
		POST("/vehicles", func(ctx *gin.Context) {
			var body types.CreateVehicleRequestBody
			if err := ctx.ShouldBind(&body); err != nil {
				respondBindError(ctx, err)
				return
			}
			vehicle, err := common.CreateVehicle(ctx.Request.Context(), middlewares.Actor(ctx), body)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, vehicle)
		}).
		PUT("/vehicles/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.CreateVehicleRequestBody
			if err := ctx.ShouldBind(&body); err != nil {
				respondBindError(ctx, err)
				return
			}
			vehicle, err := common.UpdateVehicle(ctx.Request.Context(), middlewares.Actor(ctx), params.ID, body)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, vehicle)
		}).
		DELETE("/vehicles/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			if err := common.DeleteVehicle(ctx.Request.Context(), middlewares.Actor(ctx), params.ID); err != nil {
				respondError(ctx, err)
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		POST("/vehicles/:id/image", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.UploadRequestBody
			if err := ctx.ShouldBind(&body); err != nil {
				respondBindError(ctx, err)
				return
			}
			vehicle, err := common.UploadVehicleImage(ctx.Request.Context(), middlewares.Actor(ctx), params.ID, body.File)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, vehicle)
		}).
		DELETE("/vehicles/:id/image", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			if err := common.RemoveVehicleImage(ctx.Request.Context(), middlewares.Actor(ctx), params.ID); err != nil {
				respondError(ctx, err)
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}

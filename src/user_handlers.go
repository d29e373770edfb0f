package main

import (
	"net/http"
	"vrs/src/common"
	"vrs/src/middlewares"
	"vrs/src/types"

	"github.com/gin-gonic/gin"
)

func userHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/users", func(ctx *gin.Context) {
			var filters types.UserQueryFilters
			var page types.PaginationQuery
			if err := ctx.ShouldBindQuery(&filters); err != nil {
				respondBindError(ctx, err)
				return
			}
			if err := ctx.ShouldBindQuery(&page); err != nil {
				respondBindError(ctx, err)
				return
			}
			users, err := common.ListUsers(ctx.Request.Context(), middlewares.Actor(ctx), filters, page)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, users)
		}).
		GET("/users/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			user, err := common.GetUser(ctx.Request.Context(), middlewares.Actor(ctx), params.ID)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, user)
		}).
		POST("/users", func(ctx *gin.Context) {
			var body types.CreateUserRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				respondBindError(ctx, err)
				return
			}
			user, err := common.CreateUser(ctx.Request.Context(), middlewares.Actor(ctx), body)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, user)
		}).
		PUT("/users/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.CreateUserRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				respondBindError(ctx, err)
				return
			}
			user, err := common.UpdateUser(ctx.Request.Context(), middlewares.Actor(ctx), params.ID, body)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, user)
		}).
		DELETE("/users/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			if err := common.DeleteUser(ctx.Request.Context(), middlewares.Actor(ctx), params.ID); err != nil {
				respondError(ctx, err)
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}

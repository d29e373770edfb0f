package main

import (
	"net/http"
	"vrs/src/common"
	"vrs/src/config"
	"vrs/src/middlewares"
	"vrs/src/types"

	"github.com/gin-gonic/gin"
)

// kioskHandlers serve the rental counter kiosk. Starting a session is authorized by
// the employee PIN in the body.
func kioskHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	kiosk := g.Group("/kiosk")
	kiosk.
		GET("/orders", func(ctx *gin.Context) {
			orders, err := common.KioskOrders(ctx.Request.Context())
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": orders})
		}).
		POST("/sessions", func(ctx *gin.Context) {
			var body types.StartSessionRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				respondBindError(ctx, err)
				return
			}
			session, err := common.StartSession(ctx.Request.Context(), body)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, session)
		})
	return g
}

// sessionHandlers are reached with the session token alone, as handed to the vehicle
// tracker when the session starts.
func sessionHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	rps, burst := config.GetKioskRateLimit()
	limiter := middlewares.NewRateLimiter(rps, burst, func(ctx *gin.Context) string {
		return ctx.Param("token")
	})
	sessions := g.Group("/sessions/:token")
	sessions.
		GET("", func(ctx *gin.Context) {
			var params types.SessionTokenParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			view, err := common.GetKioskSession(ctx.Request.Context(), params.Token)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, view)
		}).
		GET("/location", func(ctx *gin.Context) {
			var params types.SessionTokenParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			location, err := common.LatestLocation(ctx.Request.Context(), params.Token)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, location)
		}).
		POST("/locations", limiter.Handler, func(ctx *gin.Context) {
			var params types.SessionTokenParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.RecordLocationRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				respondBindError(ctx, err)
				return
			}
			location, err := common.RecordLocation(ctx.Request.Context(), params.Token, body)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, location)
		}).
		POST("/close", func(ctx *gin.Context) {
			var params types.SessionTokenParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			session, err := common.CloseSession(ctx.Request.Context(), params.Token)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, session)
		})
	return g
}

package main

import (
	"log"
	"net/http"
	"vrs/src/common"
	"vrs/src/controllers"
	"vrs/src/middlewares"

	"github.com/gin-gonic/gin"
)

func authHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	auth := g.Group("/auth")
	auth.
		POST("/login", func(ctx *gin.Context) {
			token, status, err := controllers.AuthLogin(ctx)
			if err != nil {
				log.Printf("[AuthLogin] error: %s\n", err.Error())
				respondStatus(ctx, status, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"token": token})
		}).
		POST("/register", func(ctx *gin.Context) {
			token, status, err := controllers.AuthRegister(ctx)
			if err != nil {
				log.Printf("[AuthRegister] error: %s\n", err.Error())
				respondStatus(ctx, status, err)
				return
			}
			ctx.JSON(status, gin.H{"token": token})
		})
	return g
}

func profileHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.GET("/me", func(ctx *gin.Context) {
		actor := middlewares.Actor(ctx)
		user, err := common.GetUser(ctx.Request.Context(), actor, actor.ID)
		if err != nil {
			respondError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, user)
	})
	return g
}

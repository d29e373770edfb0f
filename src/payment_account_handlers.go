package main

import (
	"net/http"
	"vrs/src/common"
	"vrs/src/middlewares"
	"vrs/src/types"

	"github.com/gin-gonic/gin"
)

func paymentAccountHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/payment-accounts", func(ctx *gin.Context) {
			accounts, err := common.ListPaymentAccounts(ctx.Request.Context(), ctx.Query("active") == "true")
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": accounts})
		}).
		GET("/payment-accounts/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			account, err := common.GetPaymentAccount(ctx.Request.Context(), params.ID)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, account)
		}).
		POST("/payment-accounts", func(ctx *gin.Context) {
			var body types.CreatePaymentAccountRequestBody
			if err := ctx.ShouldBind(&body); err != nil {
				respondBindError(ctx, err)
				return
			}
			account, err := common.CreatePaymentAccount(ctx.Request.Context(), middlewares.Actor(ctx), body)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, account)
		}).
		PUT("/payment-accounts/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.CreatePaymentAccountRequestBody
			if err := ctx.ShouldBind(&body); err != nil {
				respondBindError(ctx, err)
				return
			}
			account, err := common.UpdatePaymentAccount(ctx.Request.Context(), middlewares.Actor(ctx), params.ID, body)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, account)
		}).
		DELETE("/payment-accounts/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			if err := common.DeletePaymentAccount(ctx.Request.Context(), middlewares.Actor(ctx), params.ID); err != nil {
				respondError(ctx, err)
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		POST("/payment-accounts/:id/qrcode", func(ctx *gin.Context) {
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
			account, err := common.UploadPaymentAccountQRCode(ctx.Request.Context(), middlewares.Actor(ctx), params.ID, body.File)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, account)
		}).
		POST("/payment-accounts/:id/qrcode/generate", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			account, err := common.GeneratePaymentAccountQRCode(ctx.Request.Context(), middlewares.Actor(ctx), params.ID)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, account)
		}).
		DELETE("/payment-accounts/:id/qrcode", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			if err := common.RemovePaymentAccountQRCode(ctx.Request.Context(), middlewares.Actor(ctx), params.ID); err != nil {
				respondError(ctx, err)
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}

package main

import (
	"mime/multipart"
	"net/http"
	"vrs/src/common"
	"vrs/src/middlewares"
	"vrs/src/types"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func listPayments(ctx *gin.Context) {
	var filters types.PaymentQueryFilters
	var page types.PaginationQuery
	if err := ctx.ShouldBindQuery(&filters); err != nil {
		respondBindError(ctx, err)
		return
	}
	if err := ctx.ShouldBindQuery(&page); err != nil {
		respondBindError(ctx, err)
		return
	}
	payments, err := common.ListPayments(ctx.Request.Context(), middlewares.Actor(ctx), filters, page)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, payments)
}

func showPayment(ctx *gin.Context) {
	var params types.SimpleRequestParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.Status(http.StatusBadRequest)
		return
	}
	payment, err := common.GetPayment(ctx.Request.Context(), middlewares.Actor(ctx), params.ID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, payment)
}

func updatePayment(ctx *gin.Context) {
	var params types.SimpleRequestParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.Status(http.StatusBadRequest)
		return
	}
	var body types.UpdatePaymentRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondBindError(ctx, err)
		return
	}
	payment, err := common.UpdatePayment(ctx.Request.Context(), middlewares.Actor(ctx), params.ID, body)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, payment)
}

func uploadProof(ctx *gin.Context) {
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
	payment, err := common.AttachProof(ctx.Request.Context(), middlewares.Actor(ctx), params.ID, body.File)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, payment)
}

// paymentHandlers are the customer side of payments.
func paymentHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/payments", listPayments).
		GET("/payments/payables", func(ctx *gin.Context) {
			items, err := common.PayableItems(ctx.Request.Context(), middlewares.Actor(ctx))
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": items})
		}).
		GET("/payments/:id", showPayment).
		POST("/payments", func(ctx *gin.Context) {
			var body types.RecordPaymentRequestBody
			if err := ctx.ShouldBind(&body); err != nil {
				respondBindError(ctx, err)
				return
			}
			var proof *multipart.FileHeader
			if ctx.ContentType() == binding.MIMEMultipartPOSTForm {
				fh, err := ctx.FormFile("proof")
				if err != nil && err != http.ErrMissingFile {
					respondBindError(ctx, err)
					return
				}
				proof = fh
			}
			payment, err := common.SubmitPayment(ctx.Request.Context(), middlewares.Actor(ctx), body, proof)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, payment)
		}).
		PUT("/payments/:id", updatePayment).
		POST("/payments/:id/proof", uploadProof).
		GET("/payment-accounts", func(ctx *gin.Context) {
			accounts, err := common.ListPaymentAccounts(ctx.Request.Context(), true)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": accounts})
		})
	return g
}

// internalPaymentHandlers are the staff side of payments.
func internalPaymentHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/payments", listPayments).
		GET("/payments/:id", showPayment).
		POST("/payments", func(ctx *gin.Context) {
			var body types.RecordPaymentRequestBody
			if err := ctx.ShouldBind(&body); err != nil {
				respondBindError(ctx, err)
				return
			}
			payment, err := common.RecordPayment(ctx.Request.Context(), middlewares.Actor(ctx), body)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, payment)
		}).
		PATCH("/payments/:id/status", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.UpdatePaymentStatusRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				respondBindError(ctx, err)
				return
			}
			payment, err := common.UpdatePaymentStatus(ctx.Request.Context(), middlewares.Actor(ctx), params.ID, body.Status)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, payment)
		}).
		PUT("/payments/:id", updatePayment).
		DELETE("/payments/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			if err := common.DeletePayment(ctx.Request.Context(), middlewares.Actor(ctx), params.ID); err != nil {
				respondError(ctx, err)
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		POST("/payments/:id/proof", uploadProof)
	return g
}

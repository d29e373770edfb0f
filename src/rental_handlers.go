package main

import (
	"log"
	"net/http"
	"os"
	"vrs/src/common"
	"vrs/src/middlewares"
	"vrs/src/types"

	"github.com/gin-gonic/gin"
)

func listOrders(ctx *gin.Context) {
	var filters types.RentalOrderQueryFilters
	var page types.PaginationQuery
	if err := ctx.ShouldBindQuery(&filters); err != nil {
		respondBindError(ctx, err)
		return
	}
	if err := ctx.ShouldBindQuery(&page); err != nil {
		respondBindError(ctx, err)
		return
	}
	orders, err := common.ListOrders(ctx.Request.Context(), middlewares.Actor(ctx), filters, page)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, orders)
}

func showOrder(ctx *gin.Context) {
	var params types.SimpleRequestParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.Status(http.StatusBadRequest)
		return
	}
	order, err := common.GetOrder(ctx.Request.Context(), middlewares.Actor(ctx), params.ID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, order)
}

func createOrder(ctx *gin.Context) {
	var body types.CreateRentalOrderRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondBindError(ctx, err)
		return
	}
	order, err := common.CreateOrder(ctx.Request.Context(), middlewares.Actor(ctx), body)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, order)
}

// rentalHandlers are the customer side of rental orders.
func rentalHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/rentals", listOrders).
		GET("/rentals/:id", showOrder).
		POST("/rentals", createOrder).
		POST("/rentals/:id/cancel", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			order, err := common.CancelOrder(ctx.Request.Context(), middlewares.Actor(ctx), params.ID)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, order)
		}).
		GET("/rentals/:id/qrcode", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			filePath, err := common.OrderQRCode(ctx.Request.Context(), middlewares.Actor(ctx), params.ID)
			if err != nil {
				respondError(ctx, err)
				return
			}
			defer func() {
				if err := os.Remove(filePath); err != nil {
					log.Printf("Error removing %s: %s\n", filePath, err.Error())
				}
			}()
			ctx.File(filePath)
		})
	return g
}

// rentalOrderHandlers are the staff side of rental orders.
func rentalOrderHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/rental-orders", listOrders).
		GET("/rental-orders/:id", showOrder).
		POST("/rental-orders", createOrder).
		PUT("/rental-orders/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.UpdateRentalOrderRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				respondBindError(ctx, err)
				return
			}
			order, err := common.UpdateOrder(ctx.Request.Context(), middlewares.Actor(ctx), params.ID, body)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, order)
		}).
		PATCH("/rental-orders/:id/status", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body struct {
				Status string `json:"status" binding:"required"`
			}
			if err := ctx.ShouldBindJSON(&body); err != nil {
				respondBindError(ctx, err)
				return
			}
			order, err := common.ChangeOrderStatus(ctx.Request.Context(), middlewares.Actor(ctx), params.ID, body.Status)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, order)
		}).
		DELETE("/rental-orders/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			if err := common.DeleteOrder(ctx.Request.Context(), middlewares.Actor(ctx), params.ID); err != nil {
				respondError(ctx, err)
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}

package controllers

import (
	"log"
	"net/http"
	"vrs/src/common"
	"vrs/src/types"
	"vrs/src/utils"

	"github.com/gin-gonic/gin"
)

func AuthLogin(ctx *gin.Context) (token *string, status int, err error) {
	var body types.LoginRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, err
	}
	user, err := common.AuthenticateUser(ctx.Request.Context(), body.Email, body.Password)
	if err != nil {
		return nil, types.HTTPStatus(err), err
	}
	tok, err := utils.GenerateJWT(user.ID, user.Name, user.Email, user.Role)
	if err != nil {
		log.Printf("Could not sign token for user [%d]: %s\n", user.ID, err.Error())
		return nil, http.StatusInternalServerError, err
	}
	return &tok, http.StatusOK, nil
}

func AuthRegister(ctx *gin.Context) (token *string, status int, err error) {
	var body types.RegisterUserRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, err
	}
	user, err := common.RegisterCustomer(ctx.Request.Context(), body)
	if err != nil {
		return nil, types.HTTPStatus(err), err
	}
	log.Printf("Registered customer [%d]\n", user.ID)
	tok, err := utils.GenerateJWT(user.ID, user.Name, user.Email, user.Role)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	return &tok, http.StatusCreated, nil
}

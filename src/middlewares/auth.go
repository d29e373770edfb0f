package middlewares

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"vrs/src/config"
	"vrs/src/db"
	"vrs/src/models"
	"vrs/src/types"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

func AuthMiddleware(ctx *gin.Context) {
	bearerToken := ctx.Request.Header.Get("Authorization")
	reqToken, ok := strings.CutPrefix(bearerToken, "Bearer ")
	if !ok || reqToken == "" {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}
	claims := &types.Claims{}
	tkn, err := jwt.ParseWithClaims(reqToken, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return config.GetJWTSecret(), nil
	})
	if err != nil || !tkn.Valid {
		if err != nil {
			log.Printf("token error: %s\n", err.Error())
		}
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	uid, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		log.Println("error parsing claims:", err.Error())
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	var user models.User
	if err := db.WithContext(ctx.Request.Context()).
		Select("id", "name", "email", "role").
		First(&user, uint(uid)).
		Error; err != nil {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	ctx.Set("id", user.ID)
	ctx.Set("name", user.Name)
	ctx.Set("email", user.Email)
	ctx.Set("role", user.Role)
}

// RequireRoles rejects users whose role is not listed. It must run after AuthMiddleware.
func RequireRoles(roles ...types.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		role := Actor(ctx).Role
		for _, r := range roles {
			if r == role {
				return
			}
		}
		ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	}
}

// Actor returns the authenticated user set by AuthMiddleware.
func Actor(ctx *gin.Context) types.Actor {
	role, _ := ctx.Get("role")
	r, _ := role.(types.Role)
	return types.Actor{
		ID:   ctx.GetUint("id"),
		Name: ctx.GetString("name"),
		Role: r,
	}
}

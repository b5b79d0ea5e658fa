package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims はJWTトークンのクレーム（ペイロード）を表す。
type JWTClaims struct {
	jwt.RegisteredClaims
	// EmpID は認証済み従業員のID。
	EmpID int64 `json:"emp_id"`
	// Email は従業員のメールアドレス。
	Email string `json:"email"`
}

const (
	// contextKeyEmpID はGinコンテキストに従業員IDを格納するキー。
	contextKeyEmpID = "emp_id"
	// tokenIssuer はトークンの発行者。
	tokenIssuer = "hrm-portal"
)

// GenerateJWT は従業員情報からJWTトークンを生成する。
func GenerateJWT(secret string, empID int64, email string) (string, error) {
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatInt(empID, 10),
		},
		EmpID: empID,
		Email: email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("JWTトークンの署名に失敗: %w", err)
	}
	return signed, nil
}

// JWTAuth はJWTトークンを検証するGinミドルウェアを返す。
// 検証に成功した場合、コンテキストに "emp_id" と "email" を設定する。
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorizationヘッダーが必要です",
			})
			return
		}

		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Bearer トークン形式が不正です",
			})
			return
		}

		claims := &JWTClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "トークンが無効です",
			})
			return
		}

		if claims.EmpID <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "トークンに従業員IDが含まれていません",
			})
			return
		}

		c.Set(contextKeyEmpID, claims.EmpID)
		c.Set("email", claims.Email)
		c.Next()
	}
}

// SetEmpID はGinコンテキストに従業員IDを設定する。
// JWTAuth以外で閲覧者を確定させる場合（内部APIやテスト）に使用する。
func SetEmpID(c *gin.Context, empID int64) {
	c.Set(contextKeyEmpID, empID)
}

// GetEmpID はGinコンテキストから従業員IDを取得する。
// JWTAuthミドルウェアが事前に適用されている必要がある。
func GetEmpID(c *gin.Context) (int64, bool) {
	v, _ := c.Get(contextKeyEmpID)
	empID, ok := v.(int64)
	if !ok || empID <= 0 {
		return 0, false
	}
	return empID, true
}

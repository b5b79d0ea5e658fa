package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testSecret はテスト用のJWTシークレット。
const testSecret = "test-secret-key-for-unit-tests"

// parseClaims はテスト用にトークンを検証してクレームを返すヘルパー関数。
func parseClaims(t *testing.T, tokenStr string) *JWTClaims {
	t.Helper()
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(_ *jwt.Token) (any, error) {
		return []byte(testSecret), nil
	})
	if err != nil {
		t.Fatalf("トークンのパースに失敗: %v", err)
	}
	if !token.Valid {
		t.Fatal("トークンが無効")
	}
	return claims
}

// serveWithAuth はJWTAuthを適用したルーターにAuthorizationヘッダー付きのリクエストを送る。
func serveWithAuth(authHeader string) (*httptest.ResponseRecorder, int64) {
	var gotEmpID int64
	router := gin.New()
	router.Use(JWTAuth(testSecret))
	router.GET("/test", func(c *gin.Context) {
		gotEmpID, _ = GetEmpID(c)
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w, gotEmpID
}

// TestGenerateJWT はGenerateJWT関数を検証する。
func TestGenerateJWT(t *testing.T) {
	t.Parallel()

	t.Run("正常にJWTトークンを生成できること", func(t *testing.T) {
		t.Parallel()

		tokenStr, err := GenerateJWT(testSecret, 123, "test@example.com")
		if err != nil {
			t.Fatalf("GenerateJWT()でエラーが発生: %v", err)
		}

		claims := parseClaims(t, tokenStr)
		if claims.EmpID != 123 {
			t.Errorf("EmpID = %d, want %d", claims.EmpID, 123)
		}
		if claims.Email != "test@example.com" {
			t.Errorf("Email = %q, want %q", claims.Email, "test@example.com")
		}
		if claims.Issuer != "hrm-portal" {
			t.Errorf("Issuer = %q, want %q", claims.Issuer, "hrm-portal")
		}
		if claims.Subject != "123" {
			t.Errorf("Subject = %q, want %q", claims.Subject, "123")
		}
	})

	t.Run("トークンの有効期限が24時間後であること", func(t *testing.T) {
		t.Parallel()

		before := time.Now()
		tokenStr, err := GenerateJWT(testSecret, 1, "exp@example.com")
		if err != nil {
			t.Fatalf("GenerateJWT()でエラーが発生: %v", err)
		}

		claims := parseClaims(t, tokenStr)
		expectedExpiry := before.Add(24 * time.Hour)
		// 有効期限が24時間後の前後1分以内であること
		if claims.ExpiresAt.Time.Before(expectedExpiry.Add(-1*time.Minute)) ||
			claims.ExpiresAt.Time.After(expectedExpiry.Add(1*time.Minute)) {
			t.Errorf("ExpiresAt = %v, want おおよそ %v", claims.ExpiresAt.Time, expectedExpiry)
		}
	})
}

// TestJWTAuth はJWTAuthミドルウェアを検証する。
func TestJWTAuth(t *testing.T) {
	t.Parallel()

	t.Run("有効なトークンで従業員IDがコンテキストに設定されること", func(t *testing.T) {
		t.Parallel()

		tokenStr, err := GenerateJWT(testSecret, 42, "valid@example.com")
		if err != nil {
			t.Fatalf("GenerateJWT()でエラーが発生: %v", err)
		}

		w, empID := serveWithAuth("Bearer " + tokenStr)
		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
		if empID != 42 {
			t.Errorf("GetEmpID() = %d, want %d", empID, 42)
		}
		if got := w.Header().Get("X-Emp-ID"); got != "" {
			t.Errorf("レスポンスにX-Emp-IDが設定されている: %q", got)
		}
	})

	valid, err := GenerateJWT(testSecret, 1, "a@example.com")
	if err != nil {
		t.Fatalf("GenerateJWT()でエラーが発生: %v", err)
	}
	otherSecret, err := GenerateJWT("different-secret", 1, "a@example.com")
	if err != nil {
		t.Fatalf("GenerateJWT()でエラーが発生: %v", err)
	}
	noEmp, err := GenerateJWT(testSecret, 0, "noemp@example.com")
	if err != nil {
		t.Fatalf("GenerateJWT()でエラーが発生: %v", err)
	}

	expiredClaims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-1 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-25 * time.Hour)),
			Issuer:    "hrm-portal",
		},
		EmpID: 1,
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, expiredClaims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("トークンの署名に失敗: %v", err)
	}

	unauthorized := []struct {
		name      string
		header    string
		wantError string
	}{
		{name: "Authorizationヘッダーが無い場合401が返ること", header: "", wantError: "Authorizationヘッダーが必要です"},
		{name: "Bearer接頭辞が無い場合401が返ること", header: valid, wantError: "Bearer トークン形式が不正です"},
		{name: "無効なトークンで401が返ること", header: "Bearer invalid-token-string", wantError: "トークンが無効です"},
		{name: "異なるシークレットのトークンで401が返ること", header: "Bearer " + otherSecret, wantError: "トークンが無効です"},
		{name: "期限切れトークンで401が返ること", header: "Bearer " + expired, wantError: "トークンが無効です"},
		{name: "従業員IDの無いトークンで401が返ること", header: "Bearer " + noEmp, wantError: "トークンに従業員IDが含まれていません"},
	}

	for _, tt := range unauthorized {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w, _ := serveWithAuth(tt.header)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusUnauthorized)
			}

			var body map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("レスポンスボディのパースに失敗: %v", err)
			}
			if body["error"] != tt.wantError {
				t.Errorf("error = %q, want %q", body["error"], tt.wantError)
			}
		})
	}
}

// TestGetEmpID はGetEmpID関数を検証する。
func TestGetEmpID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		set    func(c *gin.Context)
		want   int64
		wantOK bool
	}{
		{name: "SetEmpIDで設定した値を取得できること", set: func(c *gin.Context) { SetEmpID(c, 5) }, want: 5, wantOK: true},
		{name: "未設定の場合は取得できないこと", set: func(*gin.Context) {}, want: 0, wantOK: false},
		{name: "int64以外の型は取得できないこと", set: func(c *gin.Context) { c.Set("emp_id", "5") }, want: 0, wantOK: false},
		{name: "0以下の値は取得できないこと", set: func(c *gin.Context) { SetEmpID(c, 0) }, want: 0, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			tt.set(c)

			got, ok := GetEmpID(c)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("GetEmpID() = %d, %v, want %d, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

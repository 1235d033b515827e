package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mosewear/mose-webshop-sub004/internal/database"
)

const (
	LoginMaxAttempts = 5
	LoginCooldown    = 15 * time.Minute
)

// LoginRateLimit begrenst inlogpogingen per e-mailadres via Redis.
func LoginRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		bodyBytes, _ := io.ReadAll(c.Request.Body)

		var input struct {
			Email string `json:"email"`
		}
		if err := json.Unmarshal(bodyBytes, &input); err != nil || input.Email == "" {
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			c.Next()
			return
		}

		// Body terugzetten voor de eigenlijke handler.
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		ctx := context.Background()
		key := "login_attempts:" + input.Email

		attempts, err := database.Redis.Incr(ctx, key).Result()
		if err != nil {
			c.Next() // Redis plat: liever doorgang dan lockout
			return
		}
		if attempts == 1 {
			database.Redis.Expire(ctx, key, LoginCooldown)
		}

		if attempts > LoginMaxAttempts {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": fmt.Sprintf("Te veel inlogpogingen, probeer het over %d minuten opnieuw", int(LoginCooldown.Minutes())),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

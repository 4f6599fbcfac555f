// Package flash carries one-shot user messages across a redirect in a cookie.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	CookieName = "flash"
	pendingKey = "flash.pending"
)

// Add queues message for the next rendered page.
func Add(c *gin.Context, message string) {
	pending := append(c.GetStringSlice(pendingKey), message)
	c.Set(pendingKey, pending)
	write(c, pending, 0)
}

// Pop returns queued messages and clears them.
func Pop(c *gin.Context) []string {
	var messages []string
	if raw, err := c.Cookie(CookieName); err == nil && raw != "" {
		messages = decode(raw)
		write(c, nil, -1)
	}

	if pending := c.GetStringSlice(pendingKey); len(pending) > 0 {
		messages = append(messages, pending...)
		c.Set(pendingKey, []string(nil))
		write(c, nil, -1)
	}

	return messages
}

func write(c *gin.Context, messages []string, maxAge int) {
	value := ""
	if len(messages) > 0 {
		payload, err := json.Marshal(messages)
		if err != nil {
			return
		}
		value = base64.RawURLEncoding.EncodeToString(payload)
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, value, maxAge, "/", "", false, true)
}

func decode(raw string) []string {
	payload, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}

	var messages []string
	if err := json.Unmarshal(payload, &messages); err != nil {
		return nil
	}
	return messages
}

package handler

import (
	"encoding/gob"
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/songbird/internal/db"
)

// Flash categories understood by the templates.
const (
	flashSuccess = "success"
	flashError   = "error"
	flashInfo    = "info"
)

// FlashMessage is a one-shot notice carried across a redirect in the session.
type FlashMessage struct {
	Category string
	Message  string
}

func init() {
	gob.Register(FlashMessage{})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

func addFlash(c *gin.Context, category, message string) {
	session := sessions.Default(c)
	session.AddFlash(FlashMessage{Category: category, Message: message})
	_ = session.Save()
}

func popFlashes(c *gin.Context) []FlashMessage {
	session := sessions.Default(c)
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	_ = session.Save()

	messages := make([]FlashMessage, 0, len(raw))
	for _, item := range raw {
		if msg, ok := item.(FlashMessage); ok {
			messages = append(messages, msg)
		}
	}
	return messages
}

// redirectWithFlash stores a flash and answers 303 so browsers follow with GET.
func redirectWithFlash(c *gin.Context, location, category, message string) {
	addFlash(c, category, message)
	c.Redirect(http.StatusSeeOther, location)
}

func articlePath(slug string) string {
	return "/article/" + slug
}

// imageURL resolves a stored cover or photo filename. The bundled placeholder
// lives under /static/graphics, uploads under the upload URL.
func imageURL(uploadURL, name string) string {
	name = strings.TrimSpace(name)
	switch {
	case name == "", name == db.DefaultCoverImage:
		return "/static/graphics/" + db.DefaultCoverImage
	case strings.HasPrefix(name, "http://"), strings.HasPrefix(name, "https://"), strings.HasPrefix(name, "/"):
		return name
	default:
		return path.Join("/", uploadURL, name)
	}
}

func formatDuration(seconds float64) string {
	total := int(seconds)
	if total < 60 {
		return fmt.Sprintf("%ds", total)
	}
	minutes, secs := total/60, total%60
	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, secs)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

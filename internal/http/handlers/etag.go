package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RespondJSONWithETag marshals payload once, tags it with a strong ETag and
// answers 304 when the client already holds that representation.
func RespondJSONWithETag(ctx *gin.Context, status int, payload any) {
	b, err := json.Marshal(payload)
	if err != nil {
		fail(ctx, err)
		return
	}

	sum := sha256.Sum256(b)
	etag := `"` + hex.EncodeToString(sum[:16]) + `"`

	ctx.Header("ETag", etag)
	ctx.Header("Cache-Control", "no-cache")

	if matchesETag(ctx.GetHeader("If-None-Match"), etag) {
		ctx.Status(http.StatusNotModified)
		return
	}

	ctx.Data(status, "application/json; charset=utf-8", b)
}

// matchesETag uses the weak comparison If-None-Match calls for.
func matchesETag(header, etag string) bool {
	header = strings.TrimSpace(header)
	if header == "" {
		return false
	}
	if header == "*" {
		return true
	}

	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == etag {
			return true
		}
	}

	return false
}

package app

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"golang.org/x/crypto/blake2b"

	apperrors "github.com/kbukum/depdep/errors"
	"github.com/kbukum/depdep/logger"
	"github.com/kbukum/depdep/server"
)

// Routes maps URL paths to their handlers.
type Routes map[string]gin.HandlerFunc

// RouteFactory builds handlers that serve single files from a file system.
type RouteFactory struct {
	fs  afero.Fs
	log *logger.Logger
}

// NewRouteFactory creates a RouteFactory reading from fsys.
func NewRouteFactory(fsys afero.Fs, log *logger.Logger) *RouteFactory {
	if log == nil {
		log = logger.NewNop()
	}
	return &RouteFactory{fs: fsys, log: log.WithComponent("routes")}
}

// Get returns a handler serving the file at name. The file is read on every
// request; a missing file answers 404 with a NOT_FOUND error body. Responses
// carry a content hash ETag and a matching If-None-Match answers 304.
func (rf *RouteFactory) Get(name string) gin.HandlerFunc {
	contentType := mime.TypeByExtension(path.Ext(name))
	return func(c *gin.Context) {
		data, err := afero.ReadFile(rf.fs, name)
		if err != nil {
			server.RespondWithError(c, rf.classify(name, err))
			return
		}
		tag := etag(data)
		c.Header("ETag", tag)
		if etagMatches(c.GetHeader("If-None-Match"), tag) {
			c.Status(http.StatusNotModified)
			return
		}

		ct := contentType
		if ct == "" {
			ct = http.DetectContentType(data)
		}
		c.Data(http.StatusOK, ct, data)
	}
}

func (rf *RouteFactory) classify(name string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return apperrors.NotFound("file", name).WithCause(err)
	}
	rf.log.Error("Failed to read file", logger.ErrorFields("read", err), logger.Fields(logger.FieldPath, name))
	return apperrors.Internal(fmt.Errorf("read %s: %w", name, err))
}

func etag(data []byte) string {
	sum := blake2b.Sum256(data)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

// etagMatches applies the weak comparison If-None-Match uses: header is a
// comma-separated list of tags, W/ prefixes are ignored and "*" matches any.
func etagMatches(header, tag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == tag {
			return true
		}
	}
	return false
}

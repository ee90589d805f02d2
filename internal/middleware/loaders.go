package middleware

import (
	"updoot/internal/loader"
	"updoot/internal/repositories"

	"github.com/gin-gonic/gin"
)

const loadersKey = "loaders"

// RequestLoaders bundles the batch loaders built for one request. They hold
// per-request memoization buffers, so they must never outlive or be shared
// across requests.
type RequestLoaders struct {
	Users   *loader.UserLoader
	Updoots *loader.UpdootLoader
}

// WithLoaders constructs a fresh pair of loaders for every incoming request
// and stores them in the gin context for handlers to pick up.
func WithLoaders(users repositories.UserRepository, updoots repositories.UpdootRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(loadersKey, &RequestLoaders{
			Users:   loader.NewUserLoader(users),
			Updoots: loader.NewUpdootLoader(updoots),
		})
		c.Next()
	}
}

// Loaders returns the request's loaders.
func Loaders(c *gin.Context) *RequestLoaders {
	return c.MustGet(loadersKey).(*RequestLoaders)
}

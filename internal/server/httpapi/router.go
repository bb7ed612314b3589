// Package httpapi exposes the lifedash backend over HTTP/JSON: the
// credential service, the owner-scoped resource collections, the suggestion
// flow and the gallery presign endpoints.
package httpapi

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// collections are the resource endpoints the server serves. Each one behaves
// identically; only the payload shape differs, and that is the client's
// business.
var collections = []string{"todos", "plans"}

// NewRouter assembles the gin engine. Resource and suggestion endpoints are
// addressed by ownerId, matching the client contract; gallery endpoints
// require a bearer token because they mint presigned storage URLs.
func NewRouter(h *Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/ping", h.Ping)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)

	for _, collection := range collections {
		g := r.Group("/" + collection)
		g.GET("", h.listDocuments(collection))
		g.POST("", h.createDocument(collection))
		g.PUT("/:id", h.updateDocument(collection))
		g.DELETE("/:id", h.deleteDocument(collection))
	}

	r.POST("/suggest", h.Suggest)

	authed := r.Group("/gallery", h.authRequired())
	authed.POST("/uploads", h.RequestUpload)
	authed.GET("/uploads/:key", h.ResolveUpload)

	return r
}

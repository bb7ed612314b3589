package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/lifedash/internal/common"
	"github.com/dmitrijs2005/lifedash/internal/logging"
	"github.com/dmitrijs2005/lifedash/internal/server/documents"
	"github.com/dmitrijs2005/lifedash/internal/server/gallery"
	"github.com/dmitrijs2005/lifedash/internal/server/metrics"
	"github.com/dmitrijs2005/lifedash/internal/server/suggest"
	"github.com/dmitrijs2005/lifedash/internal/server/users"
)

type Handlers struct {
	users     *users.Service
	documents *documents.Service
	gallery   *gallery.Service
	suggest   *suggest.Service
	logger    logging.Logger
	jwtSecret []byte
}

func NewHandlers(us *users.Service, ds *documents.Service, gs *gallery.Service, ss *suggest.Service, logger logging.Logger, jwtSecret []byte) *Handlers {
	return &Handlers{
		users:     us,
		documents: ds,
		gallery:   gs,
		suggest:   ss,
		logger:    logger,
		jwtSecret: jwtSecret,
	}
}

func (h *Handlers) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// writeError maps the service error taxonomy onto HTTP statuses. Unknown
// errors are logged and masked as a generic 500 so internals never leak.
func (h *Handlers) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, common.ErrorUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
	case errors.Is(err, common.ErrorNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	case errors.Is(err, common.ErrorAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"message": "User with this email already exists"})
	default:
		h.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func userBody(u *users.User) gin.H {
	return gin.H{
		"id":        u.ID,
		"email":     u.Email,
		"createdAt": u.CreatedAt.Format(time.RFC3339Nano),
	}
}

func (h *Handlers) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.AuthFailures.WithLabelValues("register", "bad_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required"})
		return
	}

	user, token, err := h.users.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorValidation):
			metrics.AuthFailures.WithLabelValues("register", "validation").Inc()
		case errors.Is(err, common.ErrorAlreadyExists):
			metrics.AuthFailures.WithLabelValues("register", "email_taken").Inc()
		default:
			metrics.AuthFailures.WithLabelValues("register", "internal").Inc()
		}
		h.writeError(c, err)
		return
	}

	metrics.AuthSuccess.WithLabelValues("register").Inc()
	c.JSON(http.StatusCreated, gin.H{"user": userBody(user), "token": token})
}

func (h *Handlers) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.AuthFailures.WithLabelValues("login", "bad_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required"})
		return
	}

	user, token, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			metrics.AuthFailures.WithLabelValues("login", "invalid_credentials").Inc()
		} else {
			metrics.AuthFailures.WithLabelValues("login", "internal").Inc()
		}
		h.writeError(c, err)
		return
	}

	metrics.AuthSuccess.WithLabelValues("login").Inc()
	c.JSON(http.StatusOK, gin.H{"user": userBody(user), "token": token})
}

// documentBody renders a stored document in the flat wire shape: the payload
// fields at the top level next to the server-managed attributes.
func documentBody(d *documents.Document) (map[string]any, error) {
	flat := map[string]any{}
	if err := json.Unmarshal(d.Payload, &flat); err != nil {
		return nil, err
	}
	flat["id"] = d.ID
	flat["ownerId"] = d.OwnerID
	flat["createdAt"] = d.CreatedAt.Format(time.RFC3339Nano)
	return flat, nil
}

// documentPayload splits a flat request body into the owner id and the
// client-owned payload. Server-managed attributes never round-trip into the
// stored payload.
func documentPayload(raw map[string]any) (string, json.RawMessage, error) {
	ownerID, _ := raw["ownerId"].(string)
	delete(raw, "id")
	delete(raw, "ownerId")
	delete(raw, "createdAt")
	payload, err := json.Marshal(raw)
	if err != nil {
		return "", nil, err
	}
	return ownerID, payload, nil
}

func (h *Handlers) listDocuments(collection string) gin.HandlerFunc {
	return func(c *gin.Context) {
		docs, err := h.documents.List(c.Request.Context(), collection, c.Query("ownerId"))
		if err != nil {
			h.writeError(c, err)
			return
		}

		metrics.DocumentOps.WithLabelValues(collection, "list").Inc()
		out := make([]map[string]any, 0, len(docs))
		for _, d := range docs {
			flat, err := documentBody(d)
			if err != nil {
				h.writeError(c, err)
				return
			}
			out = append(out, flat)
		}
		c.JSON(http.StatusOK, out)
	}
}

func (h *Handlers) createDocument(collection string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var raw map[string]any
		if err := c.ShouldBindJSON(&raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
			return
		}
		ownerID, payload, err := documentPayload(raw)
		if err != nil {
			h.writeError(c, err)
			return
		}

		doc, err := h.documents.Create(c.Request.Context(), collection, ownerID, payload)
		if err != nil {
			h.writeError(c, err)
			return
		}

		metrics.DocumentOps.WithLabelValues(collection, "create").Inc()
		flat, err := documentBody(doc)
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, flat)
	}
}

func (h *Handlers) updateDocument(collection string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var raw map[string]any
		if err := c.ShouldBindJSON(&raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
			return
		}
		ownerID, payload, err := documentPayload(raw)
		if err != nil {
			h.writeError(c, err)
			return
		}

		doc, err := h.documents.Update(c.Request.Context(), collection, c.Param("id"), ownerID, payload)
		if err != nil {
			h.writeError(c, err)
			return
		}

		metrics.DocumentOps.WithLabelValues(collection, "update").Inc()
		flat, err := documentBody(doc)
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, flat)
	}
}

func (h *Handlers) deleteDocument(collection string) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := h.documents.Delete(c.Request.Context(), collection, c.Param("id"), c.Query("ownerId"))
		if err != nil {
			h.writeError(c, err)
			return
		}

		metrics.DocumentOps.WithLabelValues(collection, "delete").Inc()
		c.JSON(http.StatusOK, gin.H{"message": "Deleted successfully"})
	}
}

type suggestRequest struct {
	ExistingEntries string `json:"existingEntries"`
	Type            string `json:"type"`
}

func (h *Handlers) Suggest(c *gin.Context) {
	var req suggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	suggestions, err := h.suggest.Suggest(c.Request.Context(), req.ExistingEntries, suggest.Kind(req.Type))
	if err != nil {
		h.writeError(c, err)
		return
	}

	metrics.SuggestRequests.WithLabelValues(req.Type).Inc()
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

func (h *Handlers) RequestUpload(c *gin.Context) {
	ownerID := c.GetString(contextUserID)

	key, uploadURL, err := h.gallery.GetPresignedPutURL(c.Request.Context(), ownerID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"key": key, "url": uploadURL})
}

func (h *Handlers) ResolveUpload(c *gin.Context) {
	viewURL, err := h.gallery.GetPresignedGetURL(c.Request.Context(), c.Param("key"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"key": c.Param("key"), "url": viewURL})
}

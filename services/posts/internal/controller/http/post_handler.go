package http

import (
	"errors"
	"net/http"

	"blog-admin/pkg/logger"
	"blog-admin/services/posts/internal/entity"
	"blog-admin/services/posts/internal/repo/persistent"
	"blog-admin/services/posts/internal/usecase"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	postUseCase usecase.PostUseCase
	logger      *logger.Logger
}

func NewPostHandler(postUseCase usecase.PostUseCase, logger *logger.Logger) *PostHandler {
	registerJSONFieldNames()
	return &PostHandler{
		postUseCase: postUseCase,
		logger:      logger,
	}
}

// PostRequest is the body of create and update requests.
type PostRequest struct {
	Title         string `json:"title" binding:"required,max=255"`
	Description   string `json:"description" binding:"required"`
	FeaturedImage string `json:"featuredImage" binding:"required,max=500"`
	PublishDate   string `json:"publishDate" binding:"required"`
	Published     bool   `json:"published"`
}

func (r PostRequest) input() entity.PostInput {
	return entity.PostInput{
		Title:         r.Title,
		Description:   r.Description,
		FeaturedImage: r.FeaturedImage,
		PublishDate:   r.PublishDate,
		Published:     r.Published,
	}
}

// ListPosts godoc
// @Summary      List posts
// @Description  List every post in creation order
// @Tags         posts
// @Produce      json
// @Success      200  {array}   entity.Post
// @Failure      500  {object}  map[string]string
// @Router       /posts [get]
func (h *PostHandler) ListPosts(c *gin.Context) {
	posts, err := h.postUseCase.ListPosts(c.Request.Context())
	if err != nil {
		h.respondError(c, "list posts", err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// GetPost godoc
// @Summary      Get post by ID
// @Tags         posts
// @Produce      json
// @Param        id   path      string  true  "Post ID"
// @Success      200  {object}  entity.Post
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id} [get]
func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.postUseCase.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, "get post", err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// CreatePost godoc
// @Summary      Create a post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        post  body      PostRequest  true  "Post"
// @Success      201   {object}  entity.Post
// @Failure      400   {object}  map[string]string
// @Failure      422   {object}  map[string]interface{}
// @Router       /posts [post]
func (h *PostHandler) CreatePost(c *gin.Context) {
	var req PostRequest
	if !h.bind(c, &req) {
		return
	}

	post, err := h.postUseCase.CreatePost(c.Request.Context(), req.input())
	if err != nil {
		h.respondError(c, "create post", err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// UpdatePost godoc
// @Summary      Replace a post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string       true  "Post ID"
// @Param        post  body      PostRequest  true  "Post"
// @Success      200   {object}  entity.Post
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]interface{}
// @Router       /posts/{id} [put]
func (h *PostHandler) UpdatePost(c *gin.Context) {
	var req PostRequest
	if !h.bind(c, &req) {
		return
	}

	post, err := h.postUseCase.UpdatePost(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		h.respondError(c, "update post", err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// DeletePost godoc
// @Summary      Delete a post
// @Description  Delete a post and return it
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Post ID"
// @Success      200  {object}  entity.Post
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id} [delete]
func (h *PostHandler) DeletePost(c *gin.Context) {
	post, err := h.postUseCase.DeletePost(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, "delete post", err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) bind(c *gin.Context, req *PostRequest) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	if fields, ok := fieldErrors(err); ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": fields})
		return false
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
	return false
}

func (h *PostHandler) respondError(c *gin.Context, op string, err error) {
	var verr *usecase.ValidationError
	switch {
	case errors.Is(err, persistent.ErrPostNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": verr.Fields})
	case errors.Is(err, usecase.ErrImagesDisabled):
		c.JSON(http.StatusNotImplemented, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Failed to %s: %v", op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + op})
	}
}

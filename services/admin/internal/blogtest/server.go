// Package blogtest runs an in-process blog API for client tests.
package blogtest

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"blog-admin/services/admin/internal/entity"

	"github.com/gin-gonic/gin"
)

type Server struct {
	URL string

	mu     sync.Mutex
	posts  []entity.Post
	nextID int
	calls  map[string]int
	// gate, when set, holds list requests until closed
	gate chan struct{}
}

func NewServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{calls: make(map[string]int)}
	router := gin.New()
	router.Use(s.count)
	router.GET("/posts", s.list)
	router.GET("/posts/:id", s.get)
	router.POST("/posts", s.create)
	router.PUT("/posts/:id", s.update)
	router.DELETE("/posts/:id", s.delete)
	router.POST("/images", s.image)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	s.URL = srv.URL + "/"
	return s
}

// Seed adds posts as if they had been created through the API.
func (s *Server) Seed(drafts ...entity.PostDraft) []entity.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Post, 0, len(drafts))
	for _, d := range drafts {
		out = append(out, s.insert(d))
	}
	return out
}

// Calls counts requests by "METHOD /route", for example "GET /posts/:id".
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

func (s *Server) HoldList() func() {
	gate := make(chan struct{})
	s.mu.Lock()
	s.gate = gate
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.gate = nil
			s.mu.Unlock()
			close(gate)
		})
	}
}

func (s *Server) Posts() []entity.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.Post(nil), s.posts...)
}

func (s *Server) count(c *gin.Context) {
	s.mu.Lock()
	s.calls[c.Request.Method+" "+c.FullPath()]++
	s.mu.Unlock()
	c.Next()
}

func (s *Server) insert(d entity.PostDraft) entity.Post {
	s.nextID++
	p := d.WithID(strconv.Itoa(s.nextID))
	s.posts = append(s.posts, p)
	return p
}

func (s *Server) list(c *gin.Context) {
	s.mu.Lock()
	gate := s.gate
	s.mu.Unlock()
	if gate != nil {
		<-gate
	}
	c.JSON(http.StatusOK, s.Posts())
}

func (s *Server) get(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(c.Param("id")); i >= 0 {
		c.JSON(http.StatusOK, s.posts[i])
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
}

func (s *Server) create(c *gin.Context) {
	var d entity.PostDraft
	if !bind(c, &d) {
		return
	}
	s.mu.Lock()
	p := s.insert(d)
	s.mu.Unlock()
	c.JSON(http.StatusCreated, p)
}

func (s *Server) update(c *gin.Context) {
	var d entity.PostDraft
	if !bind(c, &d) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(c.Param("id"))
	if i < 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}
	s.posts[i] = d.WithID(s.posts[i].ID)
	c.JSON(http.StatusOK, s.posts[i])
}

func (s *Server) delete(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(c.Param("id"))
	if i < 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}
	p := s.posts[i]
	s.posts = append(s.posts[:i], s.posts[i+1:]...)
	c.JSON(http.StatusOK, p)
}

func (s *Server) image(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": "https://images.test/" + file.Filename})
}

func (s *Server) index(id string) int {
	for i, p := range s.posts {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// bind answers 422 with a per-field map when required fields are missing,
// the way the blog API validates posts.
func bind(c *gin.Context, d *entity.PostDraft) bool {
	if err := c.ShouldBindJSON(d); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	fields := gin.H{}
	if strings.TrimSpace(d.Title) == "" {
		fields["title"] = "title is required"
	}
	if strings.TrimSpace(d.PublishDate) == "" {
		fields["publishDate"] = "publishDate is required"
	}
	if len(fields) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": fields})
		return false
	}
	return true
}

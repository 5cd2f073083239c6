package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// UploadImage godoc
// @Summary      Upload a featured image
// @Description  Store an image and return its public URL
// @Tags         images
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file  formData  file  true  "Image file"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      422   {object}  map[string]interface{}
// @Failure      501   {object}  map[string]string
// @Router       /images [post]
func (h *PostHandler) UploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("Failed to open uploaded file: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read image file"})
		return
	}
	defer file.Close()

	url, err := h.postUseCase.UploadImage(fileHeader.Filename, fileHeader.Header.Get("Content-Type"), file)
	if err != nil {
		h.respondError(c, "upload image", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}

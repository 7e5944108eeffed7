package server

import (
	"io"
	"net/http"

	logodomain "github.com/billforge/billforge/internal/logo/domain"
	"github.com/gin-gonic/gin"
)

// maxLogoSize bounds uploads to 5 MiB.
const maxLogoSize = 5 << 20

func (s *Server) UploadLogo(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		AbortWithError(c, newValidationError("file", "invalid_file", "file is required"))
		return
	}
	if fileHeader.Size > maxLogoSize {
		AbortWithError(c, newValidationError("file", "invalid_file", "file too large"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		AbortWithError(c, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxLogoSize))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.logoSvc.Upload(c.Request.Context(), logodomain.UploadLogoRequest{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetLogo(c *gin.Context) {
	resp, err := s.logoSvc.Latest(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ServeLogoFile(c *gin.Context) {
	resp, err := s.logoSvc.Latest(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if resp.ContentType != "" {
		c.Header("Content-Type", resp.ContentType)
	}
	c.File(resp.StoredPath)
}

func isLogoValidationError(err error) bool {
	return err == logodomain.ErrInvalidFile
}

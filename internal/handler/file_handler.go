package handler

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BailinYe/resume-modifier/internal/middleware"
	filesvc "github.com/BailinYe/resume-modifier/internal/service/file"
)

// FileHandler 文件处理器
type FileHandler struct {
	fileSvc *filesvc.Service
}

// NewFileHandler 创建文件处理器
func NewFileHandler(fileSvc *filesvc.Service) *FileHandler {
	return &FileHandler{
		fileSvc: fileSvc,
	}
}

// UploadFile 上传文件
// POST /api/v1/files/upload
//
// 成功时返回记录和降级警告列表；摄取中的致命错误按类型映射状态码
func (h *FileHandler) UploadFile(c *gin.Context) {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		Unauthorized(c, "missing user identity")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "file is required: "+err.Error())
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		Error(c, err)
		return
	}
	defer f.Close()

	result, err := h.fileSvc.Ingest(c.Request.Context(), &filesvc.IngestRequest{
		OwnerID:     ownerID,
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Reader:      f,
	})
	if err != nil {
		h.ingestError(c, err)
		return
	}

	Created(c, result)
}

// ingestError 摄取错误到状态码的映射
func (h *FileHandler) ingestError(c *gin.Context, err error) {
	var ve *filesvc.ValidationError
	if errors.As(err, &ve) {
		BadRequest(c, ve.Error())
		return
	}
	var se *filesvc.StorageError
	if errors.As(err, &se) {
		ServiceUnavailable(c, se.Error())
		return
	}
	var pe *filesvc.PersistenceError
	if errors.As(err, &pe) {
		InternalServerError(c, pe.Error())
		return
	}
	Error(c, err)
}

// ListFiles 列出当前用户的文件
// GET /api/v1/files
func (h *FileHandler) ListFiles(c *gin.Context) {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		Unauthorized(c, "missing user identity")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	records, total, err := h.fileSvc.List(c.Request.Context(), ownerID, (page-1)*pageSize, pageSize)
	if err != nil {
		Error(c, err)
		return
	}

	SuccessWithPagination(c, records, total, page, pageSize)
}

// GetFile 获取文件记录
// GET /api/v1/files/:id
func (h *FileHandler) GetFile(c *gin.Context) {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		Unauthorized(c, "missing user identity")
		return
	}

	record, err := h.fileSvc.Get(c.Request.Context(), ownerID, c.Param("id"))
	if err != nil {
		h.notFoundOr500(c, err)
		return
	}

	Success(c, record)
}

// DownloadFile 下载文件内容
// GET /api/v1/files/:id/download
func (h *FileHandler) DownloadFile(c *gin.Context) {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		Unauthorized(c, "missing user identity")
		return
	}

	record, reader, err := h.fileSvc.Download(c.Request.Context(), ownerID, c.Param("id"))
	if err != nil {
		h.notFoundOr500(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Type", record.ContentType)
	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(record.DisplayName))
	c.Header("Content-Length", strconv.FormatInt(record.FileSize, 10))

	if _, err := io.Copy(c.Writer, reader); err != nil {
		Error(c, err)
		return
	}
}

// GetFileURL 获取文件访问URL
// GET /api/v1/files/:id/url
func (h *FileHandler) GetFileURL(c *gin.Context) {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		Unauthorized(c, "missing user identity")
		return
	}

	url, err := h.fileSvc.URL(c.Request.Context(), ownerID, c.Param("id"))
	if err != nil {
		h.notFoundOr500(c, err)
		return
	}

	Success(c, gin.H{"url": url})
}

// UpdateCategoryRequest 更新分类请求
type UpdateCategoryRequest struct {
	Category string `json:"category" binding:"required,max=100"`
}

// UpdateFileCategory 更新文件分类标签
// PUT /api/v1/files/:id/category
func (h *FileHandler) UpdateFileCategory(c *gin.Context) {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		Unauthorized(c, "missing user identity")
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	if err := h.fileSvc.UpdateCategory(c.Request.Context(), ownerID, c.Param("id"), req.Category); err != nil {
		h.notFoundOr500(c, err)
		return
	}

	Success(c, gin.H{"message": "Category updated"})
}

// DeleteFile 软删除文件，保留字节与记录
// DELETE /api/v1/files/:id
func (h *FileHandler) DeleteFile(c *gin.Context) {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		Unauthorized(c, "missing user identity")
		return
	}

	if err := h.fileSvc.SoftDelete(c.Request.Context(), ownerID, c.Param("id")); err != nil {
		h.notFoundOr500(c, err)
		return
	}

	Success(c, gin.H{"message": "File deleted"})
}

// PurgeFile 物理删除文件（字节、缩略图、记录）
// DELETE /api/v1/files/:id/permanent
func (h *FileHandler) PurgeFile(c *gin.Context) {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		Unauthorized(c, "missing user identity")
		return
	}

	if err := h.fileSvc.PermanentDelete(c.Request.Context(), ownerID, c.Param("id")); err != nil {
		h.notFoundOr500(c, err)
		return
	}

	NoContent(c)
}

// notFoundOr500 归属校验和查询错误统一按 404 返回，避免泄露他人文件的存在性
func (h *FileHandler) notFoundOr500(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) || strings.HasPrefix(err.Error(), "file not found") {
		NotFound(c, "file not found")
		return
	}
	Error(c, err)
}

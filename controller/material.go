package controller

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/Vansh983/ai-ta/dao"
	"github.com/Vansh983/ai-ta/model"
	"github.com/Vansh983/ai-ta/request"
	"github.com/Vansh983/ai-ta/response"
	"github.com/Vansh983/ai-ta/service/ingestion"
	"github.com/Vansh983/ai-ta/service/mq"
	"github.com/Vansh983/ai-ta/service/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MaterialController struct {
	courses   *dao.CourseDAO
	users     *dao.UserDAO
	materials *dao.MaterialDAO
	store     *storage.Client
	queue     *mq.Service
	pipeline  *ingestion.Pipeline
}

func NewMaterialController(courses *dao.CourseDAO, users *dao.UserDAO, materials *dao.MaterialDAO, store *storage.Client, queue *mq.Service, pipeline *ingestion.Pipeline) *MaterialController {
	return &MaterialController{
		courses:   courses,
		users:     users,
		materials: materials,
		store:     store,
		queue:     queue,
		pipeline:  pipeline,
	}
}

// Upload stores a course material and queues it for ingestion. The upload
// succeeds once the blob and its record exist; ingestion runs asynchronously
// and its failures never fail the upload.
func (mc *MaterialController) Upload(c *gin.Context) {
	courseID, ok := parseUUID(c, c.PostForm("courseId"), "course ID")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		slog.Error(ErrParseRequest.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Msg: ErrParseRequest.Error(),
		})
		return
	}

	course, err := mc.courses.ByID(c.Request.Context(), courseID)
	if err != nil {
		slog.Error(ErrUploadFile.Error(), "course_id", courseID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrUploadFile.Error(),
		})
		return
	}
	if course == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, response.Response{
			Msg: msgCourseNotFound,
		})
		return
	}

	uploader, err := mc.users.Resolve(c.Request.Context(), c.DefaultPostForm("userId", "anonymous"))
	if err != nil {
		slog.Error(ErrUploadFile.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrUploadFile.Error(),
		})
		return
	}
	var uploadedBy *uuid.UUID
	if uploader != nil {
		uploadedBy = &uploader.ID
	}

	file, err := fileHeader.Open()
	if err != nil {
		slog.Error(ErrUploadFile.Error(), "file", fileHeader.Filename, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrUploadFile.Error(),
		})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		slog.Error(ErrUploadFile.Error(), "file", fileHeader.Filename, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrUploadFile.Error(),
		})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	material := &model.CourseMaterial{
		CourseID:         courseID,
		UploadedBy:       uploadedBy,
		FileName:         fileHeader.Filename,
		FileType:         model.FileType(strings.ToLower(filepath.Ext(fileHeader.Filename))),
		FileSize:         fileHeader.Size,
		MimeType:         contentType,
		ProcessingStatus: model.StatusPending,
	}
	if err := mc.materials.Create(c.Request.Context(), material); err != nil {
		slog.Error(ErrUploadFile.Error(), "file", fileHeader.Filename, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrUploadFile.Error(),
		})
		return
	}

	key, err := mc.store.UploadMaterial(c.Request.Context(), courseID, material.ID, fileHeader.Filename, contentType, data)
	if err != nil {
		slog.Error(ErrStoreFile.Error(), "material_id", material.ID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrStoreFile.Error(),
		})
		return
	}

	if err := mc.materials.SetObjectKey(c.Request.Context(), material.ID, key); err != nil {
		slog.Error(ErrUploadFile.Error(), "material_id", material.ID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrUploadFile.Error(),
		})
		return
	}

	// A lost publish is retried by the unprocessed-materials sweep.
	if err := mc.queue.SendMessage(c.Request.Context(), &mq.Message{
		Topic: mq.TopicIngestion,
		Tag:   mq.TagMaterial,
		Payload: mq.IngestMessage{
			MaterialID: material.ID,
			CourseID:   courseID,
		},
	}); err != nil {
		slog.Error("failed to publish ingest message", "material_id", material.ID, "err", err)
	}

	c.JSON(http.StatusOK, response.UploadResponse{
		Message:    "File uploaded successfully",
		MaterialID: material.ID.String(),
		Filename:   fileHeader.Filename,
		ObjectKey:  key,
	})
}

// DownloadLink returns a presigned URL for a stored material.
func (mc *MaterialController) DownloadLink(c *gin.Context) {
	materialID, ok := parseUUID(c, c.Query("materialId"), "material ID")
	if !ok {
		return
	}

	material, err := mc.materials.ByID(c.Request.Context(), materialID)
	if err != nil {
		slog.Error(ErrDownloadLink.Error(), "material_id", materialID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrDownloadLink.Error(),
		})
		return
	}
	if material == nil || material.ObjectKey == "" {
		c.AbortWithStatusJSON(http.StatusNotFound, response.Response{
			Msg: msgMaterialNotFound,
		})
		return
	}

	url, err := mc.store.PresignGetURL(c.Request.Context(), material.ObjectKey)
	if err != nil {
		slog.Error(ErrDownloadLink.Error(), "material_id", materialID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrDownloadLink.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.DownloadLinkResponse{URL: url})
}

// RefreshCourse wipes and rebuilds the embeddings of every material in a
// course. Materials that fail are left in failed state for the sweep to retry.
func (mc *MaterialController) RefreshCourse(c *gin.Context) {
	var req request.RefreshCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error(ErrParseRequest.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Msg: ErrParseRequest.Error(),
		})
		return
	}

	courseID, ok := parseUUID(c, req.CourseID, "course ID")
	if !ok {
		return
	}

	course, err := mc.courses.ByID(c.Request.Context(), courseID)
	if err != nil {
		slog.Error(ErrRefreshCourse.Error(), "course_id", courseID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrRefreshCourse.Error(),
		})
		return
	}
	if course == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, response.Response{
			Msg: msgCourseNotFound,
		})
		return
	}

	summary, err := mc.pipeline.ProcessCourseMaterials(c.Request.Context(), courseID, true)
	if err != nil {
		slog.Error(ErrRefreshCourse.Error(), "course_id", courseID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrRefreshCourse.Error(),
		})
		return
	}
	if summary.Status == "no_materials" {
		c.AbortWithStatusJSON(http.StatusNotFound, response.Response{
			Msg: msgNoMaterials,
		})
		return
	}

	c.JSON(http.StatusOK, response.RefreshCourseResponse{
		Status:             "success",
		Message:            fmt.Sprintf("Course %s content refreshed successfully", req.CourseID),
		TotalMaterials:     summary.TotalMaterials,
		ProcessedMaterials: summary.Processed,
	})
}

// ProcessMaterials sweeps pending and failed materials across all courses.
func (mc *MaterialController) ProcessMaterials(c *gin.Context) {
	count := mc.pipeline.ProcessUnprocessedMaterials(c.Request.Context())
	c.JSON(http.StatusOK, response.ProcessMaterialsResponse{
		Message:        fmt.Sprintf("Processed %d materials", count),
		ProcessedCount: count,
	})
}

// ProcessingStatus reports per-course ingestion progress.
func (mc *MaterialController) ProcessingStatus(c *gin.Context) {
	status, err := mc.pipeline.Status(c.Request.Context())
	if err != nil {
		slog.Error(ErrProcessingStatus.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrProcessingStatus.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, status)
}

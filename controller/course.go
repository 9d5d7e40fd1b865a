package controller

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Vansh983/ai-ta/dao"
	"github.com/Vansh983/ai-ta/model"
	"github.com/Vansh983/ai-ta/request"
	"github.com/Vansh983/ai-ta/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultCourseLimit = 100
)

type CourseController struct {
	courses    *dao.CourseDAO
	users      *dao.UserDAO
	materials  *dao.MaterialDAO
	embeddings *dao.EmbeddingDAO
}

func NewCourseController(courses *dao.CourseDAO, users *dao.UserDAO, materials *dao.MaterialDAO, embeddings *dao.EmbeddingDAO) *CourseController {
	return &CourseController{
		courses:    courses,
		users:      users,
		materials:  materials,
		embeddings: embeddings,
	}
}

func (cc *CourseController) CreateCourse(c *gin.Context) {
	var req request.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error(ErrParseRequest.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Msg: ErrParseRequest.Error(),
		})
		return
	}

	if req.CourseCode == "" || req.Name == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Msg: "course_code and name are required",
		})
		return
	}

	var instructorID *uuid.UUID
	if req.InstructorEmail != "" {
		instructor, err := cc.users.ByEmail(c.Request.Context(), req.InstructorEmail)
		if err != nil {
			slog.Error(ErrCreateCourse.Error(), "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
				Msg: ErrCreateCourse.Error(),
			})
			return
		}
		if instructor == nil {
			c.AbortWithStatusJSON(http.StatusNotFound, response.Response{
				Msg: fmt.Sprintf("Instructor with email %s not found", req.InstructorEmail),
			})
			return
		}
		instructorID = &instructor.ID
	}

	existing, err := cc.courses.ByCode(c.Request.Context(), req.CourseCode)
	if err != nil {
		slog.Error(ErrCreateCourse.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrCreateCourse.Error(),
		})
		return
	}
	if existing != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Msg: fmt.Sprintf("Course with code %s already exists", req.CourseCode),
		})
		return
	}

	course := &model.Course{
		CourseCode:   req.CourseCode,
		Name:         req.Name,
		Description:  req.Description,
		InstructorID: instructorID,
		Semester:     req.Semester,
		Year:         req.Year,
		IsActive:     true,
	}
	if err := cc.courses.Create(c.Request.Context(), course); err != nil {
		slog.Error(ErrCreateCourse.Error(), "course_code", req.CourseCode, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrCreateCourse.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.CreateCourseResponse{
		ID:          course.ID.String(),
		CourseCode:  course.CourseCode,
		Name:        course.Name,
		Description: course.Description,
		CreatedAt:   course.CreatedAt,
	})
}

func (cc *CourseController) ListCourses(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultCourseLimit)))

	courses, err := cc.courses.Active(c.Request.Context(), skip, limit)
	if err != nil {
		slog.Error(ErrListCourses.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrListCourses.Error(),
		})
		return
	}

	resp := response.ListCoursesResponse{
		Courses: make([]response.CourseResponse, 0, len(courses)),
	}
	for _, course := range courses {
		resp.Courses = append(resp.Courses, courseResponse(&course, nil))
	}
	c.JSON(http.StatusOK, resp)
}

// GetCourse returns course details with embedding statistics. A statistics
// failure degrades to zero counts rather than failing the lookup.
func (cc *CourseController) GetCourse(c *gin.Context) {
	courseID, ok := parseUUID(c, c.Param("id"), "course ID")
	if !ok {
		return
	}

	course, err := cc.courses.ByID(c.Request.Context(), courseID)
	if err != nil {
		slog.Error(ErrGetCourse.Error(), "course_id", courseID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrGetCourse.Error(),
		})
		return
	}
	if course == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, response.Response{
			Msg: msgCourseNotFound,
		})
		return
	}

	stats, err := cc.embeddings.Statistics(c.Request.Context(), courseID)
	if err != nil {
		slog.Warn("failed to get embedding stats", "course_id", courseID, "err", err)
		stats = &model.EmbeddingStats{}
	}

	c.JSON(http.StatusOK, courseResponse(course, &response.CourseStatsResponse{
		TotalEmbeddings: stats.TotalEmbeddings,
		TotalMaterials:  stats.TotalMaterials,
	}))
}

func (cc *CourseController) ListMaterials(c *gin.Context) {
	courseID, ok := parseUUID(c, c.Param("id"), "course ID")
	if !ok {
		return
	}

	materials, err := cc.materials.ByCourse(c.Request.Context(), courseID, false)
	if err != nil {
		slog.Error(ErrListMaterials.Error(), "course_id", courseID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrListMaterials.Error(),
		})
		return
	}

	resp := response.ListMaterialsResponse{
		Materials: make([]response.MaterialResponse, 0, len(materials)),
	}
	for _, material := range materials {
		item := response.MaterialResponse{
			ID:               material.ID.String(),
			FileName:         material.FileName,
			FileType:         string(material.FileType),
			FileSize:         material.FileSize,
			UploadedAt:       material.UploadedAt,
			IsProcessed:      material.IsProcessed,
			ProcessingStatus: string(material.ProcessingStatus),
		}
		if material.Uploader != nil {
			item.Uploader = &response.UserInfoResponse{
				Name:  material.Uploader.Name,
				Email: material.Uploader.Email,
			}
		}
		resp.Materials = append(resp.Materials, item)
	}
	c.JSON(http.StatusOK, resp)
}

func courseResponse(course *model.Course, stats *response.CourseStatsResponse) response.CourseResponse {
	resp := response.CourseResponse{
		ID:          course.ID.String(),
		CourseCode:  course.CourseCode,
		Name:        course.Name,
		Description: course.Description,
		Semester:    course.Semester,
		Year:        course.Year,
		Stats:       stats,
	}
	if course.Instructor != nil {
		resp.Instructor = &response.UserInfoResponse{
			Name:  course.Instructor.Name,
			Email: course.Instructor.Email,
		}
	}
	return resp
}

package response

import "time"

// UserInfoResponse is the embedded instructor/uploader object; the key is
// present and null when nobody is attached.
type UserInfoResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type CourseStatsResponse struct {
	TotalEmbeddings int64 `json:"total_embeddings"`
	TotalMaterials  int64 `json:"total_materials"`
}

type CreateCourseResponse struct {
	ID          string    `json:"id"`
	CourseCode  string    `json:"course_code"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type CourseResponse struct {
	ID          string               `json:"id"`
	CourseCode  string               `json:"course_code"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Instructor  *UserInfoResponse    `json:"instructor"`
	Semester    string               `json:"semester"`
	Year        int                  `json:"year"`
	Stats       *CourseStatsResponse `json:"stats,omitempty"`
}

type ListCoursesResponse struct {
	Courses []CourseResponse `json:"courses"`
}

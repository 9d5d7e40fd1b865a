package request

type UserRegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type UserLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// The web client sends camelCase keys on the chat-facing endpoints and
// snake_case on course management.

type ChatRequest struct {
	Content  string `json:"content"`
	CourseID string `json:"courseId"`
	UserID   string `json:"userId"`
	Sender   string `json:"sender"`
	Fallback bool   `json:"fallback"`
}

type QueryRequest struct {
	CourseID string `json:"courseId"`
	Query    string `json:"query"`
	UserID   string `json:"userId"`
}

type RefreshCourseRequest struct {
	CourseID string `json:"courseId"`
	UserID   string `json:"userId"`
}

type CreateCourseRequest struct {
	CourseCode      string `json:"course_code"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	InstructorEmail string `json:"instructor_email"`
	Semester        string `json:"semester"`
	Year            int    `json:"year"`
}

package controller

import "errors"

var (
	ErrParseRequest = errors.New("failed to parse request")

	ErrUserRegister   = errors.New("failed to register user")
	ErrGenerateToken  = errors.New("failed to generate token")
	ErrUserLogin      = errors.New("failed to login")
	ErrEmailInUse     = errors.New("email already registered")
	ErrBadCredentials = errors.New("invalid email or password")

	ErrCreateCourse  = errors.New("failed to create course")
	ErrListCourses   = errors.New("failed to list courses")
	ErrGetCourse     = errors.New("failed to get course")
	ErrListMaterials = errors.New("failed to list materials")

	ErrUploadFile       = errors.New("failed to upload file")
	ErrStoreFile        = errors.New("failed to upload file to storage")
	ErrRefreshCourse    = errors.New("failed to refresh course")
	ErrProcessMaterials = errors.New("failed to process materials")
	ErrProcessingStatus = errors.New("failed to get processing status")
	ErrDownloadLink     = errors.New("failed to get download link")

	ErrProcessQuery = errors.New("failed to process query")
	ErrProcessChat  = errors.New("failed to process chat message")
	ErrChatHistory  = errors.New("failed to retrieve chat history")
)

// Lookup messages rendered verbatim by the web client.
const (
	msgCourseNotFound       = "Course not found"
	msgMaterialNotFound     = "Material not found"
	msgNoMaterials          = "No materials found for this course"
	msgNoProcessedMaterials = "No processed materials found for this course"
	msgInvalidUserID        = "Invalid user ID format"
)

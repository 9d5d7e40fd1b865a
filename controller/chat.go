package controller

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Vansh983/ai-ta/dao"
	"github.com/Vansh983/ai-ta/request"
	"github.com/Vansh983/ai-ta/response"
	"github.com/Vansh983/ai-ta/service/chat"
	"github.com/Vansh983/ai-ta/service/retrieval"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const defaultHistoryLimit = 10

type ChatController struct {
	courses   *dao.CourseDAO
	retriever *retrieval.Retriever
	chats     *dao.ChatDAO
	generator *chat.Generator
}

func NewChatController(courses *dao.CourseDAO, retriever *retrieval.Retriever, chats *dao.ChatDAO, generator *chat.Generator) *ChatController {
	return &ChatController{
		courses:   courses,
		retriever: retriever,
		chats:     chats,
		generator: generator,
	}
}

// Chat answers a student message. Courses without any embeddings get a fixed
// onboarding reply instead of a generated answer.
func (cc *ChatController) Chat(c *gin.Context) {
	var req request.ChatRequest
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

	course, err := cc.courses.ByID(c.Request.Context(), courseID)
	if err != nil {
		slog.Error(ErrProcessChat.Error(), "course_id", courseID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrProcessChat.Error(),
		})
		return
	}
	if course == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, response.Response{
			Msg: msgCourseNotFound,
		})
		return
	}

	if cc.embeddingCount(c, courseID) == 0 {
		c.JSON(http.StatusOK, response.AnswerResponse{Answer: chat.MsgNoMaterials})
		return
	}

	mode := retrieval.ModeVector
	if req.Fallback {
		mode = retrieval.ModeFallback
	}

	answer := cc.generator.GenerateAnswer(c.Request.Context(), chat.GenerateRequest{
		Query:    req.Content,
		UserID:   req.UserID,
		CourseID: req.CourseID,
		Mode:     mode,
	})
	c.JSON(http.StatusOK, response.AnswerResponse{Answer: answer})
}

// Query answers a one-shot question. Unlike Chat it refuses courses that have
// nothing processed instead of replying with onboarding text.
func (cc *ChatController) Query(c *gin.Context) {
	var req request.QueryRequest
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

	course, err := cc.courses.ByID(c.Request.Context(), courseID)
	if err != nil {
		slog.Error(ErrProcessQuery.Error(), "course_id", courseID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrProcessQuery.Error(),
		})
		return
	}
	if course == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, response.Response{
			Msg: msgCourseNotFound,
		})
		return
	}

	if cc.embeddingCount(c, courseID) == 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, response.Response{
			Msg: msgNoProcessedMaterials,
		})
		return
	}

	answer := cc.generator.GenerateAnswer(c.Request.Context(), chat.GenerateRequest{
		Query:    req.Query,
		UserID:   req.UserID,
		CourseID: req.CourseID,
	})
	c.JSON(http.StatusOK, response.AnswerResponse{Answer: answer})
}

// History returns a user's recent messages in a course, oldest first.
// Anonymous callers always get an empty history.
func (cc *ChatController) History(c *gin.Context) {
	courseID, ok := parseUUID(c, c.Query("courseId"), "course ID")
	if !ok {
		return
	}

	userID := c.DefaultQuery("userId", "anonymous")
	if userID == "" || userID == "anonymous" {
		c.JSON(http.StatusOK, response.ChatHistoryResponse{
			History: []response.ChatMessageResponse{},
		})
		return
	}

	uid, err := uuid.Parse(userID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Msg: msgInvalidUserID,
		})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultHistoryLimit)))

	messages, err := cc.chats.History(c.Request.Context(), uid, courseID, limit)
	if err != nil {
		slog.Error(ErrChatHistory.Error(), "user_id", uid, "course_id", courseID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrChatHistory.Error(),
		})
		return
	}

	resp := response.ChatHistoryResponse{
		History: make([]response.ChatMessageResponse, 0, len(messages)),
	}
	for _, msg := range messages {
		resp.History = append(resp.History, response.ChatMessageResponse{
			ID:        msg.ID.String(),
			Content:   msg.Content,
			Sender:    string(msg.Sender),
			Timestamp: msg.Timestamp,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// embeddingCount treats a statistics failure as an empty course so the
// student still gets a reply.
func (cc *ChatController) embeddingCount(c *gin.Context, courseID uuid.UUID) int64 {
	stats, err := cc.retriever.Stats(c.Request.Context(), courseID)
	if err != nil {
		slog.Warn("failed to get embedding stats", "course_id", courseID, "err", err)
		return 0
	}
	return stats.TotalEmbeddings
}

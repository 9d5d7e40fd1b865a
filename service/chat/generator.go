package chat

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Vansh983/ai-ta/model"
	"github.com/Vansh983/ai-ta/service/retrieval"
	"github.com/Vansh983/ai-ta/service/storage"
	"github.com/google/uuid"
)

const (
	historyPairs          = 3
	fallbackMaterialLimit = 3
	fallbackContextRunes  = 2000
	archiveSampleSize     = 3
)

// Canned replies for the failure modes a student may hit. Degraded answers
// beat hard errors on the query path.
const (
	msgInvalidCourse       = "I'm sorry, there was an error processing your request. Please check the course ID."
	msgNoRelevant          = "I'm sorry, I couldn't find relevant information in the course materials to answer your question. Please try rephrasing your question or consult your course instructor."
	msgFallbackNoContent   = "I found course materials but couldn't access their content. Please contact your instructor for assistance."
	msgFallbackUnavailable = "I'm currently unable to access the course materials. Please contact your instructor for assistance."
	msgProcessingError     = "I'm sorry, there was an error processing your request. Please try again later."

	fallbackModeNote = " (Note: The system is currently using a basic content retrieval mode.)"
)

// MsgNoMaterials is the reply for courses with no processed materials at all.
// The HTTP layer short-circuits with it before invoking the generator.
const MsgNoMaterials = "I don't have any course materials to reference yet. Please ask your instructor to upload course materials first."

var (
	//go:embed prompts/system_instruction.txt
	systemInstruction string

	//go:embed prompts/user_prompt.txt
	userPromptTemplate string
)

// ContextRetriever provides ranked course context for a query.
type ContextRetriever interface {
	Retrieve(ctx context.Context, query string, courseID uuid.UUID, k int) (*retrieval.Result, error)
}

// ConversationStore persists and recalls a user's exchanges.
type ConversationStore interface {
	RecentPairs(ctx context.Context, userID, courseID uuid.UUID, n int) ([]model.ConversationPair, error)
	SaveExchange(ctx context.Context, userID, courseID uuid.UUID, query, answer string, contextChunks []string) (uuid.UUID, error)
}

// Archiver ships an exchange to long-term blob storage.
type Archiver interface {
	ArchiveChat(ctx context.Context, sessionID uuid.UUID, record storage.ChatRecord) error
}

// MaterialSource lists a course's materials for fallback retrieval.
type MaterialSource interface {
	ByCourse(ctx context.Context, courseID uuid.UUID, processedOnly bool) ([]model.CourseMaterial, error)
}

// DocumentSource re-extracts raw material text for fallback retrieval.
type DocumentSource interface {
	Text(ctx context.Context, objectKey string) (string, error)
}

// GenerateRequest carries one student question. UserID is the raw caller
// identifier: empty, "anonymous" or unparseable identifiers skip history
// and persistence. Mode is resolved by the caller before any I/O happens.
type GenerateRequest struct {
	Query    string
	UserID   string
	CourseID string
	History  []model.ConversationPair
	Mode     retrieval.Mode
}

// Generator answers student questions over retrieved course context. It is
// stateless per call; all collaborators are injected.
type Generator struct {
	retriever     ContextRetriever
	conversations ConversationStore
	archiver      Archiver
	materials     MaterialSource
	docs          DocumentSource
	completer     Completer
}

func NewGenerator(retriever ContextRetriever, conversations ConversationStore, archiver Archiver, materials MaterialSource, docs DocumentSource, completer Completer) *Generator {
	return &Generator{
		retriever:     retriever,
		conversations: conversations,
		archiver:      archiver,
		materials:     materials,
		docs:          docs,
		completer:     completer,
	}
}

// GenerateAnswer runs the full answer flow: resolve history, gather context,
// complete, persist, archive. Every failure past identifier validation
// degrades into a canned reply; the student never sees a hard error.
func (g *Generator) GenerateAnswer(ctx context.Context, req GenerateRequest) string {
	courseID, err := uuid.Parse(req.CourseID)
	if err != nil {
		slog.Error("invalid course id", "course_id", req.CourseID, "err", err)
		return msgInvalidCourse
	}

	userID, anonymous := resolveUser(req.UserID)

	history := req.History
	if history == nil && !anonymous {
		history, err = g.conversations.RecentPairs(ctx, userID, courseID, historyPairs)
		if err != nil {
			slog.Error("failed to load conversation history", "user_id", userID, "err", err)
			history = nil
		}
	}

	var contextChunks []string
	var materialsUsed []string

	switch req.Mode {
	case retrieval.ModeFallback:
		chunks, used, err := g.fallbackContext(ctx, courseID)
		if err != nil {
			slog.Error("fallback retrieval failed", "course_id", courseID, "err", err)
			return msgFallbackUnavailable
		}
		if len(chunks) == 0 {
			return msgFallbackNoContent
		}
		contextChunks, materialsUsed = chunks, used

	default:
		result, err := g.retriever.Retrieve(ctx, req.Query, courseID, retrieval.DefaultK)
		if err != nil {
			slog.Error("retrieval failed", "course_id", courseID, "err", err)
		} else {
			contextChunks = result.Chunks
			for _, group := range result.Materials {
				materialsUsed = append(materialsUsed, group.FileName)
			}
		}
		if len(contextChunks) == 0 {
			return msgNoRelevant
		}
	}

	systemPrompt := fmt.Sprintf(systemInstruction, modeNote(req.Mode))
	userPrompt := fmt.Sprintf(userPromptTemplate,
		strings.Join(contextChunks, "\n\n"),
		formatHistory(history),
		req.Query,
	)

	answer, err := g.completer.Complete(ctx, systemPrompt, userPrompt, generationTemperature, generationMaxTokens)
	if err != nil {
		slog.Error("failed to generate answer", "course_id", courseID, "err", err)
		return msgProcessingError
	}
	answer = strings.TrimSpace(answer)

	if !anonymous {
		g.persistExchange(ctx, userID, courseID, req.Query, answer, contextChunks, materialsUsed)
	}
	return answer
}

// fallbackContext reads the leading text of the newest processed materials
// straight from blob storage, skipping anything unreadable.
func (g *Generator) fallbackContext(ctx context.Context, courseID uuid.UUID) ([]string, []string, error) {
	slog.Info("using fallback retrieval", "course_id", courseID)

	materials, err := g.materials.ByCourse(ctx, courseID, true)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list processed materials: %v", err)
	}
	if len(materials) > fallbackMaterialLimit {
		materials = materials[:fallbackMaterialLimit]
	}

	var chunks, used []string
	for _, material := range materials {
		if material.ObjectKey == "" {
			continue
		}
		text, err := g.docs.Text(ctx, material.ObjectKey)
		if err != nil || text == "" {
			slog.Warn("could not retrieve material content", "file", material.FileName, "err", err)
			continue
		}
		chunks = append(chunks, leadingRunes(text, fallbackContextRunes)+"...")
		used = append(used, material.FileName)
	}
	return chunks, used, nil
}

// persistExchange is best effort: a response is never failed because its
// bookkeeping failed.
func (g *Generator) persistExchange(ctx context.Context, userID, courseID uuid.UUID, query, answer string, contextChunks, materialsUsed []string) {
	sessionID, err := g.conversations.SaveExchange(ctx, userID, courseID, query, answer, contextChunks)
	if err != nil {
		slog.Error("failed to store conversation", "user_id", userID, "err", err)
		return
	}

	record := storage.ChatRecord{
		SessionID:     sessionID.String(),
		UserID:        userID.String(),
		CourseID:      courseID.String(),
		Query:         query,
		Answer:        answer,
		Timestamp:     time.Now().UTC(),
		ContextChunks: firstN(contextChunks, archiveSampleSize),
		MaterialsUsed: firstN(materialsUsed, archiveSampleSize),
	}
	if err := g.archiver.ArchiveChat(ctx, sessionID, record); err != nil {
		slog.Warn("failed to archive chat exchange", "session_id", sessionID, "err", err)
	}
}

// resolveUser parses the caller identifier; anything that is not a UUID is
// treated as anonymous.
func resolveUser(identifier string) (uuid.UUID, bool) {
	if identifier == "" || identifier == "anonymous" {
		return uuid.Nil, true
	}
	id, err := uuid.Parse(identifier)
	if err != nil {
		return uuid.Nil, true
	}
	return id, false
}

func formatHistory(pairs []model.ConversationPair) string {
	if len(pairs) == 0 {
		return ""
	}
	lines := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		lines = append(lines, fmt.Sprintf("Student: %s\nAssistant: %s", pair.User, pair.Assistant))
	}
	return strings.Join(lines, "\n")
}

func modeNote(mode retrieval.Mode) string {
	if mode == retrieval.ModeFallback {
		return fallbackModeNote
	}
	return ""
}

func leadingRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func firstN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

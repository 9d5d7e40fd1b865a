package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Vansh983/ai-ta/model"
	"github.com/Vansh983/ai-ta/service/retrieval"
	"github.com/Vansh983/ai-ta/service/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRetriever struct {
	result *retrieval.Result
	err    error
}

func (f *fakeRetriever) Retrieve(_ context.Context, query string, _ uuid.UUID, _ int) (*retrieval.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		f.result.Query = query
		return f.result, nil
	}
	return &retrieval.Result{Query: query}, nil
}

type savedExchange struct {
	userID   uuid.UUID
	courseID uuid.UUID
	query    string
	answer   string
	chunks   []string
}

type fakeConversations struct {
	pairs       []model.ConversationPair
	pairsErr    error
	recentCalls int
	saved       []savedExchange
	saveErr     error
	sessionID   uuid.UUID
}

func (f *fakeConversations) RecentPairs(_ context.Context, _, _ uuid.UUID, _ int) ([]model.ConversationPair, error) {
	f.recentCalls++
	return f.pairs, f.pairsErr
}

func (f *fakeConversations) SaveExchange(_ context.Context, userID, courseID uuid.UUID, query, answer string, contextChunks []string) (uuid.UUID, error) {
	if f.saveErr != nil {
		return uuid.Nil, f.saveErr
	}
	f.saved = append(f.saved, savedExchange{userID: userID, courseID: courseID, query: query, answer: answer, chunks: contextChunks})
	return f.sessionID, nil
}

type fakeArchiver struct {
	records []storage.ChatRecord
	err     error
}

func (f *fakeArchiver) ArchiveChat(_ context.Context, _ uuid.UUID, record storage.ChatRecord) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, record)
	return nil
}

type fakeMaterialSource struct {
	materials []model.CourseMaterial
	err       error
}

func (f *fakeMaterialSource) ByCourse(_ context.Context, _ uuid.UUID, _ bool) ([]model.CourseMaterial, error) {
	return f.materials, f.err
}

type fakeDocSource struct {
	texts map[string]string
}

func (f *fakeDocSource) Text(_ context.Context, key string) (string, error) {
	text, ok := f.texts[key]
	if !ok {
		return "", errors.New("object missing")
	}
	return text, nil
}

type fakeCompleter struct {
	answer     string
	err        error
	calls      int
	lastSystem string
	lastUser   string
}

func (f *fakeCompleter) Complete(_ context.Context, system, user string, _ float64, _ int) (string, error) {
	f.calls++
	f.lastSystem = system
	f.lastUser = user
	return f.answer, f.err
}

type generatorFixture struct {
	retriever     *fakeRetriever
	conversations *fakeConversations
	archiver      *fakeArchiver
	materials     *fakeMaterialSource
	docs          *fakeDocSource
	completer     *fakeCompleter
	generator     *Generator
}

func newGeneratorFixture() *generatorFixture {
	f := &generatorFixture{
		retriever:     &fakeRetriever{},
		conversations: &fakeConversations{sessionID: uuid.New()},
		archiver:      &fakeArchiver{},
		materials:     &fakeMaterialSource{},
		docs:          &fakeDocSource{texts: make(map[string]string)},
		completer:     &fakeCompleter{answer: "the generated answer"},
	}
	f.generator = NewGenerator(f.retriever, f.conversations, f.archiver, f.materials, f.docs, f.completer)
	return f
}

func resultWithChunks(chunks ...string) *retrieval.Result {
	r := &retrieval.Result{Chunks: chunks, TotalChunks: len(chunks)}
	for i, chunk := range chunks {
		r.Materials = append(r.Materials, retrieval.MaterialGroup{
			MaterialID: uuid.New(),
			FileName:   "material-" + string(rune('a'+i)) + ".txt",
			Chunks:     []retrieval.GroupChunk{{Text: chunk, Index: 0}},
		})
	}
	return r
}

func TestGenerateAnswerInvalidCourse(t *testing.T) {
	f := newGeneratorFixture()

	answer := f.generator.GenerateAnswer(context.Background(), GenerateRequest{
		Query:    "what is a monad?",
		CourseID: "not-a-uuid",
	})

	assert.Equal(t, msgInvalidCourse, answer)
	assert.Zero(t, f.completer.calls)
}

func TestGenerateAnswerVectorMode(t *testing.T) {
	f := newGeneratorFixture()
	f.retriever.result = resultWithChunks("recursion is a function calling itself")
	f.completer.answer = "  Recursion means self-reference. \n"

	userID := uuid.New()
	courseID := uuid.New()
	answer := f.generator.GenerateAnswer(context.Background(), GenerateRequest{
		Query:    "explain recursion",
		UserID:   userID.String(),
		CourseID: courseID.String(),
	})

	assert.Equal(t, "Recursion means self-reference.", answer)
	assert.Equal(t, 1, f.completer.calls)
	assert.Contains(t, f.completer.lastUser, "recursion is a function calling itself")
	assert.Contains(t, f.completer.lastUser, "explain recursion")
	assert.NotContains(t, f.completer.lastSystem, "basic content retrieval mode")

	require.Len(t, f.conversations.saved, 1)
	saved := f.conversations.saved[0]
	assert.Equal(t, userID, saved.userID)
	assert.Equal(t, courseID, saved.courseID)
	assert.Equal(t, "Recursion means self-reference.", saved.answer)

	require.Len(t, f.archiver.records, 1)
	record := f.archiver.records[0]
	assert.Equal(t, f.conversations.sessionID.String(), record.SessionID)
	assert.Equal(t, []string{"material-a.txt"}, record.MaterialsUsed)
}

func TestGenerateAnswerNoRelevantContext(t *testing.T) {
	f := newGeneratorFixture()

	answer := f.generator.GenerateAnswer(context.Background(), GenerateRequest{
		Query:    "anything",
		UserID:   uuid.New().String(),
		CourseID: uuid.New().String(),
	})

	assert.Equal(t, msgNoRelevant, answer)
	assert.Zero(t, f.completer.calls)
	assert.Empty(t, f.conversations.saved)
}

func TestGenerateAnswerRetrievalFailure(t *testing.T) {
	f := newGeneratorFixture()
	f.retriever.err = errors.New("vector store down")

	answer := f.generator.GenerateAnswer(context.Background(), GenerateRequest{
		Query:    "anything",
		CourseID: uuid.New().String(),
	})

	assert.Equal(t, msgNoRelevant, answer)
	assert.Zero(t, f.completer.calls)
}

func TestGenerateAnswerAnonymousSkipsPersistence(t *testing.T) {
	for _, identifier := range []string{"", "anonymous", "student42"} {
		f := newGeneratorFixture()
		f.retriever.result = resultWithChunks("chunk")

		answer := f.generator.GenerateAnswer(context.Background(), GenerateRequest{
			Query:    "q",
			UserID:   identifier,
			CourseID: uuid.New().String(),
		})

		assert.Equal(t, "the generated answer", answer, "identifier %q", identifier)
		assert.Zero(t, f.conversations.recentCalls, "identifier %q", identifier)
		assert.Empty(t, f.conversations.saved, "identifier %q", identifier)
		assert.Empty(t, f.archiver.records, "identifier %q", identifier)
	}
}

func TestGenerateAnswerHistoryInPrompt(t *testing.T) {
	f := newGeneratorFixture()
	f.retriever.result = resultWithChunks("chunk")
	f.conversations.pairs = []model.ConversationPair{
		{User: "what is a stack?", Assistant: "A LIFO structure."},
	}

	f.generator.GenerateAnswer(context.Background(), GenerateRequest{
		Query:    "and a queue?",
		UserID:   uuid.New().String(),
		CourseID: uuid.New().String(),
	})

	assert.Equal(t, 1, f.conversations.recentCalls)
	assert.Contains(t, f.completer.lastUser, "Student: what is a stack?")
	assert.Contains(t, f.completer.lastUser, "Assistant: A LIFO structure.")
}

func TestGenerateAnswerProvidedHistorySkipsLookup(t *testing.T) {
	f := newGeneratorFixture()
	f.retriever.result = resultWithChunks("chunk")

	f.generator.GenerateAnswer(context.Background(), GenerateRequest{
		Query:    "q",
		UserID:   uuid.New().String(),
		CourseID: uuid.New().String(),
		History:  []model.ConversationPair{{User: "earlier", Assistant: "reply"}},
	})

	assert.Zero(t, f.conversations.recentCalls)
	assert.Contains(t, f.completer.lastUser, "Student: earlier")
}

func TestGenerateAnswerHistoryLookupFailureDegrades(t *testing.T) {
	f := newGeneratorFixture()
	f.retriever.result = resultWithChunks("chunk")
	f.conversations.pairsErr = errors.New("db flake")

	answer := f.generator.GenerateAnswer(context.Background(), GenerateRequest{
		Query:    "q",
		UserID:   uuid.New().String(),
		CourseID: uuid.New().String(),
	})

	assert.Equal(t, "the generated answer", answer)
}

func TestGenerateAnswerCompleterFailure(t *testing.T) {
	f := newGeneratorFixture()
	f.retriever.result = resultWithChunks("chunk")
	f.completer.err = errors.New("model overloaded")

	answer := f.generator.GenerateAnswer(context.Background(), GenerateRequest{
		Query:    "q",
		UserID:   uuid.New().String(),
		CourseID: uuid.New().String(),
	})

	assert.Equal(t, msgProcessingError, answer)
	assert.Empty(t, f.conversations.saved)
}

func TestGenerateAnswerFallbackMode(t *testing.T) {
	f := newGeneratorFixture()
	f.materials.materials = []model.CourseMaterial{
		{FileName: "short.txt", ObjectKey: "k1"},
		{FileName: "long.txt", ObjectKey: "k2"},
	}
	f.docs.texts["k1"] = "short document"
	f.docs.texts["k2"] = strings.Repeat("a", fallbackContextRunes+500)

	f.generator.GenerateAnswer(context.Background(), GenerateRequest{
		Query:    "q",
		UserID:   uuid.New().String(),
		CourseID: uuid.New().String(),
		Mode:     retrieval.ModeFallback,
	})

	assert.Equal(t, 1, f.completer.calls)
	assert.Contains(t, f.completer.lastSystem, "basic content retrieval mode")
	assert.Contains(t, f.completer.lastUser, "short document...")
	assert.Contains(t, f.completer.lastUser, strings.Repeat("a", fallbackContextRunes)+"...")
	assert.NotContains(t, f.completer.lastUser, strings.Repeat("a", fallbackContextRunes+1))
}

func TestGenerateAnswerFallbackLimitsMaterials(t *testing.T) {
	f := newGeneratorFixture()
	for i := 0; i < fallbackMaterialLimit+2; i++ {
		key := "key-" + string(rune('a'+i))
		f.materials.materials = append(f.materials.materials, model.CourseMaterial{
			FileName:  key + ".txt",
			ObjectKey: key,
		})
		f.docs.texts[key] = "content " + key
	}

	userID := uuid.New()
	f.generator.GenerateAnswer(context.Background(), GenerateRequest{
		Query:    "q",
		UserID:   userID.String(),
		CourseID: uuid.New().String(),
		Mode:     retrieval.ModeFallback,
	})

	require.Len(t, f.conversations.saved, 1)
	assert.Len(t, f.conversations.saved[0].chunks, fallbackMaterialLimit)
}

func TestGenerateAnswerFallbackSkipsUnreadable(t *testing.T) {
	f := newGeneratorFixture()
	f.materials.materials = []model.CourseMaterial{
		{FileName: "no-key.txt"},
		{FileName: "missing.txt", ObjectKey: "gone"},
		{FileName: "good.txt", ObjectKey: "ok"},
	}
	f.docs.texts["ok"] = "readable content"

	answer := f.generator.GenerateAnswer(context.Background(), GenerateRequest{
		Query:    "q",
		CourseID: uuid.New().String(),
		Mode:     retrieval.ModeFallback,
	})

	assert.Equal(t, "the generated answer", answer)
	assert.Contains(t, f.completer.lastUser, "readable content...")
}

func TestGenerateAnswerFallbackNoContent(t *testing.T) {
	f := newGeneratorFixture()
	f.materials.materials = []model.CourseMaterial{
		{FileName: "missing.txt", ObjectKey: "gone"},
	}

	answer := f.generator.GenerateAnswer(context.Background(), GenerateRequest{
		Query:    "q",
		CourseID: uuid.New().String(),
		Mode:     retrieval.ModeFallback,
	})

	assert.Equal(t, msgFallbackNoContent, answer)
	assert.Zero(t, f.completer.calls)
}

func TestGenerateAnswerFallbackUnavailable(t *testing.T) {
	f := newGeneratorFixture()
	f.materials.err = errors.New("db down")

	answer := f.generator.GenerateAnswer(context.Background(), GenerateRequest{
		Query:    "q",
		CourseID: uuid.New().String(),
		Mode:     retrieval.ModeFallback,
	})

	assert.Equal(t, msgFallbackUnavailable, answer)
	assert.Zero(t, f.completer.calls)
}

func TestGenerateAnswerSaveFailureStillAnswers(t *testing.T) {
	f := newGeneratorFixture()
	f.retriever.result = resultWithChunks("chunk")
	f.conversations.saveErr = errors.New("insert failed")

	answer := f.generator.GenerateAnswer(context.Background(), GenerateRequest{
		Query:    "q",
		UserID:   uuid.New().String(),
		CourseID: uuid.New().String(),
	})

	assert.Equal(t, "the generated answer", answer)
	assert.Empty(t, f.archiver.records)
}

func TestGenerateAnswerArchiveFailureStillAnswers(t *testing.T) {
	f := newGeneratorFixture()
	f.retriever.result = resultWithChunks("chunk")
	f.archiver.err = errors.New("bucket down")

	answer := f.generator.GenerateAnswer(context.Background(), GenerateRequest{
		Query:    "q",
		UserID:   uuid.New().String(),
		CourseID: uuid.New().String(),
	})

	assert.Equal(t, "the generated answer", answer)
	require.Len(t, f.conversations.saved, 1)
}

func TestGenerateAnswerArchiveSamplesCapped(t *testing.T) {
	f := newGeneratorFixture()
	f.retriever.result = resultWithChunks("c1", "c2", "c3", "c4", "c5")

	f.generator.GenerateAnswer(context.Background(), GenerateRequest{
		Query:    "q",
		UserID:   uuid.New().String(),
		CourseID: uuid.New().String(),
	})

	// The conversation row keeps the full context; the archive keeps a sample.
	require.Len(t, f.conversations.saved, 1)
	assert.Len(t, f.conversations.saved[0].chunks, 5)
	require.Len(t, f.archiver.records, 1)
	assert.Len(t, f.archiver.records[0].ContextChunks, archiveSampleSize)
	assert.Len(t, f.archiver.records[0].MaterialsUsed, archiveSampleSize)
}

func TestResolveUser(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		identifier string
		wantID     uuid.UUID
		anonymous  bool
	}{
		{"", uuid.Nil, true},
		{"anonymous", uuid.Nil, true},
		{"not-a-uuid", uuid.Nil, true},
		{id.String(), id, false},
	}
	for _, tt := range tests {
		gotID, anonymous := resolveUser(tt.identifier)
		assert.Equal(t, tt.wantID, gotID, "identifier %q", tt.identifier)
		assert.Equal(t, tt.anonymous, anonymous, "identifier %q", tt.identifier)
	}
}

func TestFormatHistory(t *testing.T) {
	assert.Empty(t, formatHistory(nil))

	out := formatHistory([]model.ConversationPair{
		{User: "q1", Assistant: "a1"},
		{User: "q2", Assistant: "a2"},
	})
	assert.Equal(t, "Student: q1\nAssistant: a1\nStudent: q2\nAssistant: a2", out)
}

func TestLeadingRunes(t *testing.T) {
	assert.Equal(t, "héllo", leadingRunes("héllo", 10))
	assert.Equal(t, "hé", leadingRunes("héllo", 2))
	assert.Equal(t, "", leadingRunes("anything", 0))
}

package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Vansh983/ai-ta/model"
	"github.com/google/uuid"
)

const statusScanLimit = 1000

type CourseStore interface {
	ByID(ctx context.Context, id uuid.UUID) (*model.Course, error)
	Active(ctx context.Context, offset, limit int) ([]model.Course, error)
}

type MaterialStore interface {
	ByID(ctx context.Context, id uuid.UUID) (*model.CourseMaterial, error)
	ByCourse(ctx context.Context, courseID uuid.UUID, processedOnly bool) ([]model.CourseMaterial, error)
	Unprocessed(ctx context.Context, limit int) ([]model.CourseMaterial, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.ProcessingStatus, processed *bool, meta *model.MaterialMeta) error
}

type EmbeddingStore interface {
	CompleteIngestion(ctx context.Context, materialID, courseID uuid.UUID, chunks []model.EmbeddedChunk, meta model.MaterialMeta) error
	ResetMaterial(ctx context.Context, materialID uuid.UUID) error
	Statistics(ctx context.Context, courseID uuid.UUID) (*model.EmbeddingStats, error)
}

// DocumentSource resolves an object key to the document's plain text.
type DocumentSource interface {
	Text(ctx context.Context, objectKey string) (string, error)
}

// Pipeline drives materials through extract, chunk, embed and persist.
type Pipeline struct {
	courses    CourseStore
	materials  MaterialStore
	embeddings EmbeddingStore
	docs       DocumentSource
	embedder   Embedder
}

func NewPipeline(courses CourseStore, materials MaterialStore, embeddings EmbeddingStore, docs DocumentSource, embedder Embedder) *Pipeline {
	return &Pipeline{
		courses:    courses,
		materials:  materials,
		embeddings: embeddings,
		docs:       docs,
		embedder:   embedder,
	}
}

// IngestMaterial runs the full pipeline for one material and reports success
// as a boolean. An already-processed material is a no-op success; every
// failure lands the material in failed with the cause recorded in its meta.
func (p *Pipeline) IngestMaterial(ctx context.Context, materialID, courseID uuid.UUID) bool {
	slog.Info("starting material ingestion", "material_id", materialID, "course_id", courseID)

	material, err := p.materials.ByID(ctx, materialID)
	if err != nil {
		slog.Error("failed to fetch material", "material_id", materialID, "err", err)
		return false
	}
	if material == nil {
		slog.Error("material not found", "material_id", materialID)
		return false
	}

	if material.IsProcessed {
		slog.Info("material already processed", "material_id", materialID)
		return true
	}

	if err := p.materials.UpdateStatus(ctx, materialID, model.StatusProcessing, nil, nil); err != nil {
		slog.Error("failed to mark material processing", "material_id", materialID, "err", err)
		return false
	}

	text, err := p.docs.Text(ctx, material.ObjectKey)
	if err != nil {
		p.fail(ctx, materialID, err)
		return false
	}

	if err := p.processContent(ctx, text, materialID, courseID); err != nil {
		p.fail(ctx, materialID, err)
		return false
	}

	slog.Info("material ingestion completed", "material_id", materialID)
	return true
}

// processContent chunks the text, embeds each chunk and persists the result.
// A chunk whose embedding call fails is skipped; surviving chunks keep their
// relative order and are re-indexed contiguously from zero.
func (p *Pipeline) processContent(ctx context.Context, text string, materialID, courseID uuid.UUID) error {
	chunks := Chunk(text)
	if len(chunks) == 0 {
		return newFailure(FailureChunking, "document produced no text chunks")
	}
	slog.Info("split document into chunks", "material_id", materialID, "chunks", len(chunks))

	embedded := make([]model.EmbeddedChunk, 0, len(chunks))
	for i, chunk := range chunks {
		vector, err := p.embedder.EmbedText(ctx, chunk)
		if err != nil {
			slog.Warn("failed to embed chunk, skipping", "material_id", materialID, "chunk", i, "err", err)
			continue
		}
		embedded = append(embedded, model.EmbeddedChunk{
			Text:   chunk,
			Vector: vector,
			Meta: model.ChunkMeta{
				ChunkLength: len(chunk),
				WordCount:   len(strings.Fields(chunk)),
			},
		})
	}
	if len(embedded) == 0 {
		return newFailure(FailureEmbedding, "could not generate embeddings for any chunks")
	}

	totalLength := 0
	for _, chunk := range embedded {
		totalLength += len(chunk.Text)
	}
	meta := model.MaterialMeta{
		TotalChunks:    model.Ptr(len(embedded)),
		AvgChunkLength: model.Ptr(float64(totalLength) / float64(len(embedded))),
	}

	if err := p.embeddings.CompleteIngestion(ctx, materialID, courseID, embedded, meta); err != nil {
		return newFailure(FailureStorage, "failed to persist embeddings: %v", err)
	}

	slog.Info("stored chunk embeddings", "material_id", materialID, "chunks", len(embedded))
	return nil
}

// fail records the failure on the material. Best effort: a material whose
// failure cannot even be recorded is only logged.
func (p *Pipeline) fail(ctx context.Context, materialID uuid.UUID, cause error) {
	slog.Error("material ingestion failed", "material_id", materialID, "err", cause)

	meta := model.MaterialMeta{Error: model.Ptr(cause.Error())}
	if err := p.materials.UpdateStatus(ctx, materialID, model.StatusFailed, model.Ptr(false), &meta); err != nil {
		slog.Error("failed to record ingestion failure", "material_id", materialID, "err", err)
	}
}

// CourseSummary reports the outcome of one course-wide processing run.
type CourseSummary struct {
	CourseID       string `json:"course_id"`
	CourseName     string `json:"course_name"`
	Status         string `json:"status"`
	TotalMaterials int    `json:"total_materials"`
	Processed      int    `json:"processed"`
	Failed         int    `json:"failed"`
	Skipped        int    `json:"skipped"`
}

// ProcessCourseMaterials ingests every material of a course. Processed
// materials are skipped unless force is set, in which case their embeddings
// are deleted and they run again from pending.
func (p *Pipeline) ProcessCourseMaterials(ctx context.Context, courseID uuid.UUID, force bool) (*CourseSummary, error) {
	course, err := p.courses.ByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch course %s: %v", courseID, err)
	}
	if course == nil {
		return nil, fmt.Errorf("course %s not found", courseID)
	}

	materials, err := p.materials.ByCourse(ctx, courseID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list materials for course %s: %v", courseID, err)
	}

	summary := &CourseSummary{
		CourseID:   courseID.String(),
		CourseName: course.Name,
		Status:     "completed",
	}
	if len(materials) == 0 {
		summary.Status = "no_materials"
		return summary, nil
	}
	summary.TotalMaterials = len(materials)

	for _, material := range materials {
		if material.IsProcessed && !force {
			slog.Info("material already processed, skipping", "material_id", material.ID, "file", material.FileName)
			summary.Skipped++
			continue
		}

		if force && material.IsProcessed {
			if err := p.embeddings.ResetMaterial(ctx, material.ID); err != nil {
				slog.Error("failed to reset material", "material_id", material.ID, "err", err)
				summary.Failed++
				continue
			}
		}

		if p.IngestMaterial(ctx, material.ID, courseID) {
			summary.Processed++
		} else {
			summary.Failed++
		}
	}
	return summary, nil
}

// ProcessUnprocessedMaterials sweeps pending and failed materials across all
// courses and returns how many ingested successfully.
func (p *Pipeline) ProcessUnprocessedMaterials(ctx context.Context) int {
	materials, err := p.materials.Unprocessed(ctx, 0)
	if err != nil {
		slog.Error("failed to list unprocessed materials", "err", err)
		return 0
	}

	processed := 0
	for _, material := range materials {
		slog.Info("processing material", "material_id", material.ID, "file", material.FileName)
		if p.IngestMaterial(ctx, material.ID, material.CourseID) {
			processed++
		} else {
			slog.Error("failed to process material", "material_id", material.ID)
		}
	}
	return processed
}

type CourseStatus struct {
	CourseID             string `json:"course_id"`
	CourseName           string `json:"course_name"`
	TotalMaterials       int    `json:"total_materials"`
	ProcessedMaterials   int    `json:"processed_materials"`
	UnprocessedMaterials int    `json:"unprocessed_materials"`
	Embeddings           int64  `json:"embeddings"`
	ProcessingReady      bool   `json:"processing_ready"`
}

type StatusSummary struct {
	TotalCourses         int   `json:"total_courses"`
	TotalMaterials       int   `json:"total_materials"`
	ProcessedMaterials   int   `json:"processed_materials"`
	UnprocessedMaterials int   `json:"unprocessed_materials"`
	TotalEmbeddings      int64 `json:"total_embeddings"`
	CoursesReady         int   `json:"courses_ready"`
}

// ProcessingStatus is the admin rollup of ingestion progress per course.
type ProcessingStatus struct {
	Timestamp time.Time      `json:"timestamp"`
	Summary   StatusSummary  `json:"summary"`
	Courses   []CourseStatus `json:"courses"`
}

func (p *Pipeline) Status(ctx context.Context) (*ProcessingStatus, error) {
	courses, err := p.courses.Active(ctx, 0, statusScanLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %v", err)
	}
	unprocessed, err := p.materials.Unprocessed(ctx, statusScanLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list unprocessed materials: %v", err)
	}

	status := &ProcessingStatus{
		Timestamp: time.Now().UTC(),
		Courses:   make([]CourseStatus, 0, len(courses)),
	}
	status.Summary.TotalCourses = len(courses)
	status.Summary.UnprocessedMaterials = len(unprocessed)

	for _, course := range courses {
		materials, err := p.materials.ByCourse(ctx, course.ID, false)
		if err != nil {
			return nil, fmt.Errorf("failed to list materials for course %s: %v", course.ID, err)
		}
		stats, err := p.embeddings.Statistics(ctx, course.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get embedding stats for course %s: %v", course.ID, err)
		}

		processed := 0
		for _, material := range materials {
			if material.IsProcessed {
				processed++
			}
		}

		status.Courses = append(status.Courses, CourseStatus{
			CourseID:             course.ID.String(),
			CourseName:           course.Name,
			TotalMaterials:       len(materials),
			ProcessedMaterials:   processed,
			UnprocessedMaterials: len(materials) - processed,
			Embeddings:           stats.TotalEmbeddings,
			ProcessingReady:      stats.TotalEmbeddings > 0,
		})

		status.Summary.TotalMaterials += len(materials)
		status.Summary.ProcessedMaterials += processed
		status.Summary.TotalEmbeddings += stats.TotalEmbeddings
		if stats.TotalEmbeddings > 0 {
			status.Summary.CoursesReady++
		}
	}
	return status, nil
}

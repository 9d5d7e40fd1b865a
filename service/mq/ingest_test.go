package mq

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/apache/rocketmq-client-go/v2/primitive"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIngestor struct {
	ok            bool
	gotMaterialID uuid.UUID
	gotCourseID   uuid.UUID
	calls         int
}

func (f *fakeIngestor) IngestMaterial(_ context.Context, materialID, courseID uuid.UUID) bool {
	f.calls++
	f.gotMaterialID = materialID
	f.gotCourseID = courseID
	return f.ok
}

func ingestMsg(t *testing.T, m IngestMessage) *primitive.MessageExt {
	t.Helper()
	body, err := json.Marshal(m)
	require.NoError(t, err)
	return &primitive.MessageExt{Message: primitive.Message{Topic: TopicIngestion, Body: body}}
}

func TestIngestHandlerSuccess(t *testing.T) {
	pipeline := &fakeIngestor{ok: true}
	handler := IngestHandler(pipeline)

	materialID, courseID := uuid.New(), uuid.New()
	err := handler(context.Background(), ingestMsg(t, IngestMessage{MaterialID: materialID, CourseID: courseID}))

	require.NoError(t, err)
	assert.Equal(t, 1, pipeline.calls)
	assert.Equal(t, materialID, pipeline.gotMaterialID)
	assert.Equal(t, courseID, pipeline.gotCourseID)
}

func TestIngestHandlerIngestionFailure(t *testing.T) {
	pipeline := &fakeIngestor{ok: false}
	handler := IngestHandler(pipeline)

	materialID := uuid.New()
	err := handler(context.Background(), ingestMsg(t, IngestMessage{MaterialID: materialID, CourseID: uuid.New()}))

	require.Error(t, err)
	assert.Contains(t, err.Error(), materialID.String())
}

func TestIngestHandlerBadPayload(t *testing.T) {
	pipeline := &fakeIngestor{ok: true}
	handler := IngestHandler(pipeline)

	msg := &primitive.MessageExt{Message: primitive.Message{Topic: TopicIngestion, Body: []byte("not json")}}
	err := handler(context.Background(), msg)

	require.Error(t, err)
	assert.Zero(t, pipeline.calls)
}

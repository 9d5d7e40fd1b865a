package mq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/apache/rocketmq-client-go/v2/primitive"
	"github.com/google/uuid"
)

// IngestMessage is published after a material upload and consumed by the
// ingestion pipeline.
type IngestMessage struct {
	MaterialID uuid.UUID `json:"material_id"`
	CourseID   uuid.UUID `json:"course_id"`
}

type Ingestor interface {
	IngestMaterial(ctx context.Context, materialID, courseID uuid.UUID) bool
}

// IngestHandler adapts the pipeline to the push consumer. A handler error
// makes the broker redeliver the message up to maxReconsumeTimes.
func IngestHandler(pipeline Ingestor) MessageHandler {
	return func(ctx context.Context, msg *primitive.MessageExt) error {
		var m IngestMessage
		if err := json.Unmarshal(msg.Body, &m); err != nil {
			return fmt.Errorf("failed to unmarshal message body: %v", err)
		}

		if ok := pipeline.IngestMaterial(ctx, m.MaterialID, m.CourseID); !ok {
			return fmt.Errorf("ingestion did not complete for material %s", m.MaterialID)
		}
		return nil
	}
}

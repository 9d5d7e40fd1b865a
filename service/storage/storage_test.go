package storage

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestMaterialKey(t *testing.T) {
	courseID := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	materialID := uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")

	key := MaterialKey(courseID, materialID, "lecture 1.pdf")

	want := fmt.Sprintf("courses/%s/materials/%s/lecture 1.pdf", courseID, materialID)
	assert.Equal(t, want, key)
}

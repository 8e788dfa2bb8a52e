package s3infra

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectURL(t *testing.T) {
	assert.Equal(t, "s3://images/schools/1/a.png", ObjectURL("", "images", "schools/1/a.png"))
	assert.Equal(t, "https://cdn.example.com/schools/1/a.png", ObjectURL("https://cdn.example.com", "images", "schools/1/a.png"))
}

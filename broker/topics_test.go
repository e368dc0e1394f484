package broker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopics(t *testing.T) {
	collection := CollectionTopic("print_job")
	entity := EntityTopic("print_job", 42)

	assert.Equal(t, Topic{"print_job"}, collection)
	assert.Equal(t, Topic{"print_job", "42"}, entity)
	assert.Equal(t, "print_job", entity.Resource())
	assert.Equal(t, "", Topic{}.Resource())

	assert.Equal(t, "spoolman.print_job.42", entity.Subject("spoolman"))
	assert.Equal(t, "print_job", collection.Subject(""))
	assert.Equal(t, "(print_job, 42)", entity.String())

	assert.NotEqual(t, NewTopic("print_job.42").key(), entity.key())
}

package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestEventLookupQuery(t *testing.T) {
	// uuids resolve by primary key
	assert.Equal(t, "id = ?", eventLookupQuery(uuid.NewString()))
	assert.Equal(t, "id = ?", eventLookupQuery("a61ad4c0-88d2-44dc-a1e8-113a18713b27"))

	// everything else is a slug lookup; it must never be bound against the uuid column
	assert.Equal(t, "slug = ?", eventLookupQuery("ufc-300"))
	assert.Equal(t, "slug = ?", eventLookupQuery("year-end-show-417"))
	assert.Equal(t, "slug = ?", eventLookupQuery("a61ad4c0-88d2-44dc-a1e8"))
	assert.Equal(t, "slug = ?", eventLookupQuery(""))
}

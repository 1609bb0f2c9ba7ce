package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/booklend/rental-service/internal/store"
)

func Test_PageRequest_Offset(t *testing.T) {
	assert.Zero(t, store.PageRequest(0, 20).Offset())
	assert.Equal(t, 40, store.PageRequest(2, 20).Offset())
}

func Test_OrderHelpers(t *testing.T) {
	asc := store.Asc("id")
	assert.Equal(t, "id", asc.Property)
	assert.False(t, asc.Descending)

	desc := store.Desc("late_fee")
	assert.Equal(t, "late_fee", desc.Property)
	assert.True(t, desc.Descending)
}

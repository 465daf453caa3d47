package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseJob(t *testing.T) {
	j, err := parseJob("11a")
	assert.NoError(t, err)
	assert.Equal(t, "11a", j.shape.Name)
	assert.Equal(t, uint64(0), j.start)
	assert.Equal(t, j.shape.NumTuples(), j.end)

	j, err = parseJob("10b:100-2000")
	assert.NoError(t, err)
	assert.Equal(t, "10b", j.shape.Name)
	assert.Equal(t, uint64(100), j.start)
	assert.Equal(t, uint64(2000), j.end)

	j, err = parseJob("10a:5000-")
	assert.NoError(t, err)
	assert.Equal(t, uint64(5000), j.start)
	assert.Equal(t, j.shape.NumTuples(), j.end)

	_, err = parseJob("12z")
	assert.Error(t, err)
	_, err = parseJob("11a:100")
	assert.Error(t, err)
	_, err = parseJob("11a:200-100")
	assert.Error(t, err)
	_, err = parseJob("11a:x-100")
	assert.Error(t, err)
}

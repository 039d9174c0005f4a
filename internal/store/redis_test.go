package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisHealthy(t *testing.T) {
	mr := miniredis.RunT(t)
	r, err := NewRedis(mr.Addr())
	require.NoError(t, err)
	defer r.Close()

	assert.True(t, r.Healthy(context.Background()))

	mr.Close()
	assert.False(t, r.Healthy(context.Background()))
}

func TestNewRedisFromURL(t *testing.T) {
	mr := miniredis.RunT(t)
	r, err := NewRedis("redis://" + mr.Addr() + "/2")
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, 2, r.Client.Options().DB)
	assert.True(t, r.Healthy(context.Background()))

	_, err = NewRedis("redis://host:notaport/x")
	assert.Error(t, err)
}

func TestNilWrappers(t *testing.T) {
	var r *Redis
	assert.False(t, r.Healthy(context.Background()))
	assert.NoError(t, r.Close())

	var db *DB
	assert.False(t, db.Healthy(context.Background()))
	assert.NoError(t, db.Close())
}

package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewsKey(t *testing.T) {
	assert.Equal(t, "views:dnipro:abc123:full:today:GPV1.1",
		ViewsKey("dnipro", "abc123", "full", "today", "GPV1.1"))
	assert.Equal(t, "views:dnipro:abc123:groups:tomorrow:",
		ViewsKey("dnipro", "abc123", "groups", "tomorrow", ""))
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New("not-a-redis-url")
	assert.ErrorContains(t, err, "parse redis url")
}

func TestDeleteKeysReportsFailures(t *testing.T) {
	var deleted []string
	del := func(_ context.Context, key string) error {
		if key == "views:dnipro:b" {
			return errors.New("READONLY")
		}
		deleted = append(deleted, key)
		return nil
	}

	n, err := deleteKeys(context.Background(), []string{"views:dnipro:a", "views:dnipro:b", "views:dnipro:c"}, del)
	assert.Equal(t, 2, n)
	require.Error(t, err)
	assert.ErrorContains(t, err, "del views:dnipro:b: READONLY")
	assert.Equal(t, []string{"views:dnipro:a", "views:dnipro:c"}, deleted)

	n, err = deleteKeys(context.Background(), nil, del)
	assert.Zero(t, n)
	assert.NoError(t, err)
}

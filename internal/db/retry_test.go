package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func duplicateKeyError(id string) error {
	return mongo.WriteException{WriteErrors: []mongo.WriteError{{
		Code:    11000,
		Message: fmt.Sprintf("E11000 duplicate key error collection: emlak.contact_messages index: _id_ dup key: { _id: %q }", id),
	}}}
}

func TestWithRetries_FirstAttemptSucceeds(t *testing.T) {
	calls := 0
	err := WithRetries(func() error { calls++; return nil }, 3, IsDuplicateKey)
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestTry_RetriesDuplicateKeyWithNewID(t *testing.T) {
	ids := []string{"a", "a", "b"}
	taken := map[string]bool{"a": true}
	calls := 0
	var used string

	err := Try(func() error {
		used = ids[calls]
		calls++
		if taken[used] {
			return duplicateKeyError(used)
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, "b", used)
}

func TestWithRetries_GivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	err := WithRetries(func() error { calls++; return duplicateKeyError("x") }, 2, IsDuplicateKey)
	assert.True(t, IsDuplicateKey(err))
	assert.Equal(t, 3, calls)
}

func TestWithRetries_OtherErrorsAreNotRetried(t *testing.T) {
	boom := errors.New("connection reset")
	calls := 0
	err := WithRetries(func() error { calls++; return boom }, 3, IsDuplicateKey)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestIsDuplicateKey(t *testing.T) {
	assert.False(t, IsDuplicateKey(nil))
	assert.False(t, IsDuplicateKey(errors.New("E11000 in text only")))
	assert.True(t, IsDuplicateKey(fmt.Errorf("insert: %w", duplicateKeyError("k"))))
	assert.True(t, IsDuplicateKey(mongo.BulkWriteException{WriteErrors: []mongo.BulkWriteError{
		{WriteError: mongo.WriteError{Code: 11000}},
	}}))
	assert.False(t, IsDuplicateKey(mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 121}}}))
}

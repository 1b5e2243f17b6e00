package db

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// DefaultMaxRetries is how often Try repeats an insert that hit a duplicate key.
const DefaultMaxRetries = 3

// Try runs op, retrying on duplicate key errors. op is expected to pick a new
// identifier before it is called again.
func Try(op func() error) error {
	return WithRetries(op, DefaultMaxRetries, IsDuplicateKey)
}

// WithRetries runs op once plus up to maxRetries more times while retryable
// reports true for the returned error. Other errors are returned immediately.
func WithRetries(op func() error, maxRetries int, retryable func(error) bool) error {
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if attempt == maxRetries || !retryable(err) {
			break
		}
		time.Sleep(time.Duration(50*(attempt+1)) * time.Millisecond)
	}
	return err
}

// IsDuplicateKey reports whether err carries MongoDB error code 11000.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) {
		for _, e := range bwe.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	return false
}

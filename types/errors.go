package types

import (
	"errors"

	"github.com/botirk38/podcastsim/similarity"
)

// Common pipeline errors
var (
	// ErrDocumentNotFound indicates a query id is not part of the snapshot
	ErrDocumentNotFound = errors.New("document not found")

	// ErrNoSnapshot indicates no snapshot has been built or loaded yet
	ErrNoSnapshot = errors.New("no snapshot available")

	// ErrNoStore indicates an operation needs a snapshot store that was not configured
	ErrNoStore = errors.New("no snapshot store configured")

	// ErrVocabularyMismatch indicates a document references a token the vocabulary does not hold
	ErrVocabularyMismatch = errors.New("token missing from vocabulary")

	// ErrDuplicateDocument indicates the same id appears twice in one corpus
	ErrDuplicateDocument = errors.New("duplicate document id")

	// ErrMalformedSnapshot indicates matrix shapes disagree with the id list
	ErrMalformedSnapshot = errors.New("malformed snapshot")

	// ErrNegativeCount indicates a token count below zero
	ErrNegativeCount = similarity.ErrNegativeCount
)

package domain

import "errors"

var (
	// ErrMissingSignature is returned when initData has no hash field.
	ErrMissingSignature = errors.New("init data is missing the hash parameter")
	// ErrSignatureMismatch is returned when the computed HMAC does not match.
	ErrSignatureMismatch = errors.New("init data signature mismatch")
	// ErrMissingUser indicates the verified payload has no usable user field.
	ErrMissingUser = errors.New("init data is missing user information")
	// ErrTokenMint indicates the credential issuer rejected the subject.
	ErrTokenMint = errors.New("failed to mint credential")
	// ErrMissingToken is returned when a protected endpoint gets no bearer token.
	ErrMissingToken = errors.New("missing or invalid bearer token")
	// ErrWrongSubject is returned when an admin endpoint is called by a non-admin.
	ErrWrongSubject = errors.New("subject is not the designated admin")
	// ErrQuizNotFound indicates the quiz does not exist in the secure store.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrInvalidQuiz indicates a quiz definition that cannot be scored.
	ErrInvalidQuiz = errors.New("quiz has no questions")
	// ErrAlreadyCompleted marks a duplicate submission for the same quiz.
	ErrAlreadyCompleted = errors.New("quiz already completed by this user")
	// ErrTransactionTimeout marks a profile update that kept losing the
	// optimistic-concurrency race past the retry bound.
	ErrTransactionTimeout = errors.New("profile transaction retries exhausted")
)

package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidMode is returned for an unknown application mode.
	ErrInvalidMode = errors.New("invalid mode")

	// ErrInvalidLanguage is returned for an unsupported language code.
	ErrInvalidLanguage = errors.New("invalid language")

	// ErrInvalidOrgan is returned when an organ is not part of the body model.
	ErrInvalidOrgan = errors.New("invalid organ")

	// ErrLabNotFound is returned when a lab order ID is unknown.
	ErrLabNotFound = errors.New("lab order not found")

	// ErrEmptyContent is returned when required content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidExamConfig is returned when exam settings are out of range.
	ErrInvalidExamConfig = errors.New("invalid exam configuration")

	// ErrInvalidQuestion is returned when a generated exam question is unusable.
	ErrInvalidQuestion = errors.New("invalid exam question")

	// ErrQuestionIndex is returned for an answer to a question that does not exist.
	ErrQuestionIndex = errors.New("question index out of range")

	// ErrInvalidAnswer is returned when an answer does not fit its question.
	ErrInvalidAnswer = errors.New("invalid answer")

	// ErrExamFinished is returned when answering a finished exam.
	ErrExamFinished = errors.New("exam already finished")

	// ErrNoExam is returned when an exam operation runs before an exam was started.
	ErrNoExam = errors.New("no active exam")
)

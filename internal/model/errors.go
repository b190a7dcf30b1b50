package model

import "errors"

var (
	// ErrModelRequired is returned when a session creation request is missing the model name.
	ErrModelRequired = errors.New("model is required")

	// ErrSessionNotFound is returned when a session is not found.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExists is returned when creating a session whose id is already registered.
	ErrSessionExists = errors.New("session already exists")

	// ErrContentRequired is returned when a message submission has empty content.
	ErrContentRequired = errors.New("content is required")

	// ErrSubscriberClosed is returned when sending to a subscriber that is gone.
	ErrSubscriberClosed = errors.New("subscriber closed")

	// ErrSubscriberFull is returned when a subscriber's delivery queue is full.
	ErrSubscriberFull = errors.New("subscriber queue full")
)

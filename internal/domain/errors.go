package domain

import "errors"

var (
	// ErrNoSession is returned when an action needs a running quiz session.
	ErrNoSession = errors.New("quiz session not started")
	// ErrSessionCompleted indicates the session already reached the score board.
	ErrSessionCompleted = errors.New("quiz session already completed")
	// ErrRequestPending indicates a quiz API call is still in flight.
	ErrRequestPending = errors.New("quiz request already in flight")
	// ErrNoNextURL is returned when an answer has nowhere to be sent.
	ErrNoNextURL = errors.New("question has no next url")
)

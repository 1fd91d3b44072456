package chat

import "github.com/pkg/errors"

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrEmptyMessage     = errors.New("message text is empty")
	ErrNotAnImage       = errors.New("only image files can be uploaded")
	ErrImageTooLarge    = errors.New("image exceeds the 5 MB limit")
	ErrAlreadyRecording = errors.New("a recording is already in progress")
	ErrNotRecording     = errors.New("no recording in progress")
	ErrLocationRequired = errors.New("location access has not been granted")
	ErrUnknownView      = errors.New("unknown view")
	ErrUnknownCategory  = errors.New("unknown symptom category")
	ErrFileNotFound     = errors.New("file not found")
)

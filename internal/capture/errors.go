package capture

import "errors"

var (
	ErrPermissionDenied  = errors.New("microphone permission denied")
	ErrDeviceUnavailable = errors.New("microphone device unavailable")
	ErrSpeaking          = errors.New("cannot capture while speech playback is active")
	ErrReviewOpen        = errors.New("a draft is already under review")
)

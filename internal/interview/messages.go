package interview

import (
	"errors"
	"strings"

	"github.com/MikeMehr/patient-intake/internal/capture"
	"github.com/MikeMehr/patient-intake/internal/protocol"
	"github.com/MikeMehr/patient-intake/internal/transcript"
)

const (
	messageClosing             = "Thank you. Your answers have been recorded and will be reviewed by your physician."
	messageFinalCommentsPrompt = "Before we finish, is there anything else you would like your physician to know?"

	userMessagePermissionDenied  = "Microphone access was denied. Please allow microphone access and try again."
	userMessageDeviceUnavailable = "No working microphone was found. Please check your audio device and try again."
	userMessageNoSpeech          = "No speech was detected. Please try again."
	userMessageQuota             = "The interview service has reached its usage limit. Please wait a moment and try again."
	userMessageAudioProcessing   = "We were unable to process your audio. Please try again."
	userMessageGeneric           = "Something went wrong. Please try again."
)

// UserMessage maps a classified error to the fixed message shown to the
// patient. Unclassified errors degrade to a generic retry prompt.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, capture.ErrPermissionDenied):
		return userMessagePermissionDenied
	case errors.Is(err, capture.ErrDeviceUnavailable):
		return userMessageDeviceUnavailable
	case errors.Is(err, transcript.ErrNoSpeech):
		return userMessageNoSpeech
	case errors.Is(err, protocol.ErrQuotaExceeded):
		return userMessageQuota
	default:
		return userMessageGeneric
	}
}

// summaryText renders the structured summary as one transcript message.
func summaryText(s *protocol.Summary) string {
	sections := []struct{ label, value string }{
		{"Summary", s.Summary},
		{"Positive findings", s.Positives},
		{"Negative findings", s.Negatives},
		{"Physical findings", s.PhysicalFindings},
		{"Suggested investigations", s.Investigations},
		{"Assessment", s.Assessment},
		{"Plan", s.Plan},
	}
	var lines []string
	for _, sec := range sections {
		if strings.TrimSpace(sec.value) == "" {
			continue
		}
		lines = append(lines, sec.label+": "+sec.value)
	}
	return strings.Join(lines, "\n")
}

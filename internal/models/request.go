// Package models - API request types and input validation.
// This file defines all incoming API request structures with validation.
//
// Validation Philosophy:
// - Fail fast with clear error messages for invalid input
// - Normalize input data for consistent processing (trimmed strings)
// - The gateway validates shape only; content moderation and pedagogy checks
//   belong to the AI backend
package models

import (
	"errors"
	"fmt"
	"strings"
)

// Input size caps. The gateway forwards payloads to a metered AI backend, so
// oversized input is rejected before it costs anything.
const (
	MaxChatMessageLen = 4000
	MaxLessonTopicLen = 200
	MaxTTSTextLen     = 2000
)

// ChatRequest represents a tutoring chat turn forwarded to the AI backend.
type ChatRequest struct {
	Message   string            `json:"message" validate:"required"`
	StudentID string            `json:"student_id,omitempty"`
	SessionID string            `json:"session_id,omitempty"`
	Context   map[string]string `json:"context,omitempty"`
}

func (r *ChatRequest) Validate() error {
	r.Message = strings.TrimSpace(r.Message)
	if r.Message == "" {
		return errors.New("message is required")
	}
	if len(r.Message) > MaxChatMessageLen {
		return fmt.Errorf("message exceeds maximum length of %d characters", MaxChatMessageLen)
	}
	return nil
}

// LessonRequest represents a lesson generation request.
type LessonRequest struct {
	Subject   string `json:"subject" validate:"required"`
	Topic     string `json:"topic" validate:"required"`
	Level     string `json:"level,omitempty"`
	StudentID string `json:"student_id,omitempty"`
}

func (r *LessonRequest) Validate() error {
	r.Subject = strings.TrimSpace(r.Subject)
	r.Topic = strings.TrimSpace(r.Topic)
	if r.Subject == "" {
		return errors.New("subject is required")
	}
	if r.Topic == "" {
		return errors.New("topic is required")
	}
	if len(r.Topic) > MaxLessonTopicLen {
		return fmt.Errorf("topic exceeds maximum length of %d characters", MaxLessonTopicLen)
	}
	return nil
}

// TTSRequest represents a text-to-speech synthesis request.
type TTSRequest struct {
	Text  string `json:"text" validate:"required"`
	Voice string `json:"voice,omitempty"`
}

func (r *TTSRequest) Validate() error {
	r.Text = strings.TrimSpace(r.Text)
	if r.Text == "" {
		return errors.New("text is required")
	}
	if len(r.Text) > MaxTTSTextLen {
		return fmt.Errorf("text exceeds maximum length of %d characters", MaxTTSTextLen)
	}
	return nil
}

// RegisterRequest represents an account registration forwarded to the backend.
// The gateway only checks shape; the backend owns uniqueness and verification.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name,omitempty"`
}

func (r *RegisterRequest) Validate() error {
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	if r.Email == "" {
		return errors.New("email is required")
	}
	if !strings.Contains(r.Email, "@") {
		return errors.New("email is not valid")
	}
	if len(r.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}

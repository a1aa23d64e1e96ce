package models

// ConfirmationRequest is a question waiting for a yes/no answer.
type ConfirmationRequest struct {
	ID     string
	Prompt string
}

// AppModel represents the UI state - only local UI concerns
type AppModel struct {
	Banner              []string             // Welcome lines above the transcript
	Messages            []Message            // Transcript as last pushed by core
	Status              string               // Status bar text
	Loading             bool                 // A send is in flight
	Typing              bool                 // In flight and nothing received yet
	Width               int                  // Terminal width
	Height              int                  // Terminal height
	ChatServiceReady    bool                 // Whether the backend profile is usable
	Notification        *Notification        // Current notification, nil when hidden
	PendingConfirmation *ConfirmationRequest // Current confirmation request
}

package domain

import "time"

// PromptRequest asks the backend to generate images from a prompt.
type PromptRequest struct {
	Prompt string `json:"prompt"`
}

// ImageResponse lists the generated images.
type ImageResponse struct {
	Created   time.Time `json:"created"`
	ImageURLs []string  `json:"imageUrls"`
}

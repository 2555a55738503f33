package api

import "github.com/Promptonauts/embate/pkg/models"

// APIResponse is the envelope every endpoint returns.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

type CreateEmbateRequest struct {
	ID      string         `json:"id"`
	Context map[string]any `json:"context" binding:"required"`
}

type UpdateStatusRequest struct {
	Status models.EmbateStatus `json:"status" binding:"required"`
}

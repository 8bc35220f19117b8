package handler

import (
	"fmt"
	"net/http"

	"stayfinder/internal/llm"
	"stayfinder/internal/model"
	"stayfinder/internal/service"

	"github.com/gin-gonic/gin"
)

// EmbeddingHandler handles embedding-related HTTP requests
type EmbeddingHandler struct {
	chatService *service.ChatService
	embedder    *llm.Client
	dimensions  int
}

// NewEmbeddingHandler creates a new embedding handler
func NewEmbeddingHandler(chatService *service.ChatService, embedder *llm.Client, dimensions int) *EmbeddingHandler {
	if dimensions <= 0 {
		dimensions = 1536
	}
	return &EmbeddingHandler{
		chatService: chatService,
		embedder:    embedder,
		dimensions:  dimensions,
	}
}

// BatchUpdate handles POST /api/v1/embeddings/batch. Items may carry a
// precomputed vector or raw text to embed server-side.
func (h *EmbeddingHandler) BatchUpdate(c *gin.Context) {
	var req model.EmbeddingBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if len(req.Embeddings) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No embeddings provided"})
		return
	}

	for i, item := range req.Embeddings {
		if err := validate.Struct(&item); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Invalid item at index %d: %v", i, err),
			})
			return
		}
		if len(item.Embedding) > 0 && len(item.Embedding) != h.dimensions {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Invalid embedding dimension at index %d, expected %d", i, h.dimensions),
			})
			return
		}
	}

	success, errors := h.chatService.UpdateEmbeddings(c.Request.Context(), req.Embeddings, h.embedder)

	response := model.EmbeddingBatchResponse{
		Success: success,
		Failed:  len(req.Embeddings) - success,
		Errors:  errors,
	}

	if len(errors) > 0 {
		c.JSON(http.StatusPartialContent, response)
	} else {
		c.JSON(http.StatusOK, response)
	}
}

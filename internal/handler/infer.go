package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rishee01/smartfix/internal/classifier"
)

type InferHandler struct {
	classifier classifier.Classifier
}

func NewInferHandler(clf classifier.Classifier) *InferHandler {
	return &InferHandler{classifier: clf}
}

// Infer classifies an uploaded photo through the oracle and returns
// {label, confidence}.
func (h *InferHandler) Infer(c *gin.Context) {
	var filename string
	var photo io.Reader

	if file, err := c.FormFile("photo"); err == nil {
		filename = file.Filename
		opened, err := file.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer opened.Close()
		photo = opened
	}

	prediction, err := h.classifier.Classify(c.Request.Context(), filename, photo)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, prediction)
}

package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"coastalstay/internal/app/commands"
	"coastalstay/internal/app/dto"
	inquiryapp "coastalstay/internal/app/handlers/inquiries"
)

const idempotencyHeader = "Idempotency-Key"

// InquiryHandler accepts the contact, booking and partner forms.
type InquiryHandler struct {
	Commands commands.Bus
	Logger   *slog.Logger
}

func (h InquiryHandler) Submit(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "inquiry handler unavailable"})
		return
	}
	var cmd inquiryapp.SubmitInquiryCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		respondBadRequest(c, err)
		return
	}
	cmd.IdempotencyKeyV = strings.TrimSpace(c.GetHeader(idempotencyHeader))
	receipt, err := commands.Dispatch[inquiryapp.SubmitInquiryCommand, *dto.InquiryReceipt](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, receipt)
}

var _ InquiriesHTTP = InquiryHandler{}

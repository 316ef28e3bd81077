package ginserver

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"

	"coastalstay/internal/app/commands"
	"coastalstay/internal/app/dto"
	inquiryapp "coastalstay/internal/app/handlers/inquiries"
	propertyapp "coastalstay/internal/app/handlers/properties"
	"coastalstay/internal/app/queries"
	"coastalstay/internal/domain/pricing"
	"coastalstay/internal/domain/shared/daterange"
)

const photoFormField = "photo"

// AdminHandler serves the staff panel. Role checks run on the buses, so a
// missing or weak session surfaces as 401 or 403 from respondError.
type AdminHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type createPropertyRequest struct {
	propertyapp.PropertyPayload
	Pricing *pricing.PropertyPricing `json:"pricing"`
}

type updatePropertyRequest struct {
	propertyapp.PropertyPayload
	Version int64 `json:"version"`
}

type pricingRequest struct {
	pricing.PropertyPricing
	Version int64 `json:"version"`
}

type replaceBookingsRequest struct {
	Bookings []propertyapp.BookingPayload `json:"bookings"`
	Version  int64                        `json:"version"`
}

func (h AdminHandler) ListProperties(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	query := propertyapp.AdminCatalogQuery{Params: listParamsFromQuery(c)}
	result, err := queries.Ask[propertyapp.AdminCatalogQuery, dto.PropertyCatalog](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AdminHandler) GetProperty(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	query := propertyapp.AdminDetailQuery{Ref: c.Param("id")}
	result, err := queries.Ask[propertyapp.AdminDetailQuery, dto.AdminPropertyDetail](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AdminHandler) CreateProperty(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	var req createPropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	cmd := propertyapp.CreatePropertyCommand{
		Payload:         req.PropertyPayload,
		Pricing:         req.Pricing,
		IdempotencyKeyV: strings.TrimSpace(c.GetHeader(idempotencyHeader)),
	}
	h.dispatchDetail(c, http.StatusCreated, cmd)
}

func (h AdminHandler) UpdateProperty(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	var req updatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	h.dispatchDetail(c, http.StatusOK, propertyapp.UpdatePropertyCommand{
		Ref:             c.Param("id"),
		ExpectedVersion: req.Version,
		Payload:         req.PropertyPayload,
	})
}

func (h AdminHandler) SetPricing(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	var req pricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	h.dispatchDetail(c, http.StatusOK, propertyapp.SetPricingCommand{
		Ref:             c.Param("id"),
		ExpectedVersion: req.Version,
		Pricing:         req.PropertyPricing,
	})
}

func (h AdminHandler) AddBooking(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	var req propertyapp.BookingPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	h.dispatchDetail(c, http.StatusCreated, propertyapp.AddBookingCommand{
		Ref:             c.Param("id"),
		Booking:         req,
		IdempotencyKeyV: strings.TrimSpace(c.GetHeader(idempotencyHeader)),
	})
}

// ReplaceBookings swaps the whole booking list, the way the admin panel saves.
func (h AdminHandler) ReplaceBookings(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	var req replaceBookingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if req.Bookings == nil {
		respondBadRequest(c, errors.New("bookings array is required"))
		return
	}
	h.dispatchDetail(c, http.StatusOK, propertyapp.ReplaceBookingsCommand{
		Ref:             c.Param("id"),
		ExpectedVersion: req.Version,
		Bookings:        req.Bookings,
	})
}

func (h AdminHandler) RemoveBooking(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	h.dispatchDetail(c, http.StatusOK, propertyapp.RemoveBookingCommand{
		Ref:       c.Param("id"),
		BookingID: c.Param("bookingId"),
	})
}

func (h AdminHandler) ExportBookings(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	query := propertyapp.BookingsExportQuery{Ref: c.Param("id")}
	file, err := queries.Ask[propertyapp.BookingsExportQuery, propertyapp.FileExport](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

func (h AdminHandler) Publish(c *gin.Context) {
	h.setPublished(c, true)
}

func (h AdminHandler) Unpublish(c *gin.Context) {
	h.setPublished(c, false)
}

func (h AdminHandler) setPublished(c *gin.Context, publish bool) {
	if !h.ready(c) {
		return
	}
	h.dispatchDetail(c, http.StatusOK, propertyapp.PublishPropertyCommand{
		Ref:     c.Param("id"),
		Publish: publish,
	})
}

// UploadPhoto takes a multipart "photo" file and appends it to the gallery.
func (h AdminHandler) UploadPhoto(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	header, err := c.FormFile(photoFormField)
	if err != nil {
		respondBadRequest(c, fmt.Errorf("multipart field %q is required", photoFormField))
		return
	}
	file, err := header.Open()
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	contentType := strings.TrimSpace(header.Header.Get("Content-Type"))
	if contentType == "" || contentType == "application/octet-stream" {
		sniff, _ := reader.Peek(512)
		contentType = http.DetectContentType(sniff)
	}
	h.dispatchDetail(c, http.StatusCreated, propertyapp.UploadPhotoCommand{
		Ref:         c.Param("id"),
		ContentType: contentType,
		Size:        header.Size,
		Reader:      reader,
	})
}

func (h AdminHandler) ListInquiries(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	since, err := parseSince(c.Query("since"))
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	query := inquiryapp.ListInquiriesQuery{
		Kind:       c.Query("kind"),
		PropertyID: c.Query("property_id"),
		Since:      since,
		Limit:      parseInt(c.Query("limit")),
	}
	result, err := queries.Ask[inquiryapp.ListInquiriesQuery, []dto.Inquiry](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": result})
}

func (h AdminHandler) ready(c *gin.Context) bool {
	if h.Commands == nil || h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin handler unavailable"})
		return false
	}
	return true
}

func (h AdminHandler) dispatchDetail(c *gin.Context, status int, cmd commands.Command) {
	detail, err := commands.Dispatch[commands.Command, *dto.AdminPropertyDetail](c.Request.Context(), h.Commands, cmd)
	if err == nil && detail == nil {
		err = commands.ErrResultType
	}
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	if status == http.StatusCreated {
		c.Header("Location", "/api/v1/admin/properties/"+detail.ID)
	}
	c.JSON(status, detail)
}

// parseSince accepts RFC 3339 timestamps or plain dates.
func parseSince(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	d, err := daterange.ParseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("since: %w", err)
	}
	return d.Time(), nil
}

var _ AdminHTTP = (*AdminHandler)(nil)

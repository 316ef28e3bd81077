package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	"coastalstay/internal/app/dto"
	propertyapp "coastalstay/internal/app/handlers/properties"
	"coastalstay/internal/app/queries"
	domainproperties "coastalstay/internal/domain/properties"
)

// PropertyHandler wires the public property queries to HTTP.
type PropertyHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

// Catalog responds with the published properties matching the filters.
func (h PropertyHandler) Catalog(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "property handler unavailable"})
		return
	}
	query := propertyapp.CatalogQuery{Params: listParamsFromQuery(c)}
	result, err := queries.Ask[propertyapp.CatalogQuery, dto.PropertyCatalog](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PropertyHandler) Detail(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "property handler unavailable"})
		return
	}
	query := propertyapp.DetailQuery{Ref: c.Param("id")}
	result, err := queries.Ask[propertyapp.DetailQuery, dto.PropertyDetail](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Quote prices check_in..check_out and reports availability.
func (h PropertyHandler) Quote(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "property handler unavailable"})
		return
	}
	query := propertyapp.QuoteQuery{
		Ref:      c.Param("id"),
		CheckIn:  strings.TrimSpace(c.Query("check_in")),
		CheckOut: strings.TrimSpace(c.Query("check_out")),
	}
	result, err := queries.Ask[propertyapp.QuoteQuery, propertyapp.QuoteResult](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PropertyHandler) Calendar(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "property handler unavailable"})
		return
	}
	query := propertyapp.CalendarQuery{
		Ref:   c.Param("id"),
		Month: c.Query("month"),
		Role:  c.Query("role"),
		Other: c.Query("other"),
		Min:   c.Query("min"),
	}
	result, err := queries.Ask[propertyapp.CalendarQuery, dto.CalendarMonth](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ PropertiesHTTP = PropertyHandler{}

func listParamsFromQuery(c *gin.Context) domainproperties.ListParams {
	return domainproperties.ListParams{
		City:         c.Query("city"),
		Country:      c.Query("country"),
		Query:        c.Query("q"),
		Amenities:    splitCSV(c.Query("amenities")),
		MinGuests:    parseInt(c.Query("min_guests")),
		MinBedrooms:  parseInt(c.Query("min_bedrooms")),
		OnlyFeatured: parseBool(c.Query("featured")),
		Sort:         domainproperties.ListSort(strings.ToLower(strings.TrimSpace(c.Query("sort")))),
		Limit:        parseInt(c.Query("limit")),
		Offset:       parseInt(c.Query("offset")),
	}
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func parseInt(raw string) int {
	value, _ := strconv.Atoi(strings.TrimSpace(raw))
	if value < 0 {
		return 0
	}
	return value
}

func parseInt64(raw string) int64 {
	value, _ := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if value < 0 {
		return 0
	}
	return value
}

func parseBool(raw string) bool {
	value, _ := strconv.ParseBool(strings.TrimSpace(raw))
	return value
}

package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/sthpulse/internal/domain/dto"
	"github.com/guttosm/sthpulse/internal/domain/models"
	"github.com/guttosm/sthpulse/internal/service"
)

// Handler provides HTTP handlers for the STH realized price endpoints.
//
// Responsibilities:
//   - Validate incoming HTTP query parameters
//   - Interact with the service layer for data access
//   - Translate service results into response DTOs
//   - Return structured JSON responses with appropriate HTTP status codes
type Handler struct {
	svc service.SeriesService
}

// NewHandler constructs a new Handler instance.
//
// Parameters:
//   - svc (service.SeriesService): Service dependency used for querying the series.
//
// Returns:
//   - *Handler: A handler ready to be registered with the router.
func NewHandler(svc service.SeriesService) *Handler {
	return &Handler{svc: svc}
}

// GetSeries handles GET /api/v1/sth-realized-price requests.
//
// Query Parameters:
//   - from (string, optional): Minimum date in YYYY-MM-DD format (inclusive).
//   - to (string, optional): Maximum date in YYYY-MM-DD format (inclusive).
//
// Responses:
//   - 200 OK: Returns SeriesResponse with the ordered series.
//   - 400 Bad Request: Malformed date parameters.
//   - 404 Not Found: No data in the requested range.
//   - 500 Internal Server Error: Failure in repository or database layer.
//
// GetSeries godoc
// @Summary      Get the STH realized price series
// @Description  Returns the stored series ascending by date, optionally bounded by from/to
// @Tags         series
// @Accept       json
// @Produce      json
// @Param        from  query     string  false  "Start date in YYYY-MM-DD" example(2024-01-01)
// @Param        to    query     string  false  "End date in YYYY-MM-DD" example(2024-12-31)
// @Success      200   {object}  dto.SeriesResponse  "Success"
// @Failure      400   {object}  dto.ErrorResponse   "Bad Request"
// @Failure      404   {object}  dto.ErrorResponse   "Not Found"
// @Failure      500   {object}  dto.ErrorResponse   "Internal Error"
// @Router       /api/v1/sth-realized-price [get]
func (h *Handler) GetSeries(c *gin.Context) {
	start, err := parseDateParam(c, "from")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid from format, expected YYYY-MM-DD", err))
		return
	}
	end, err := parseDateParam(c, "to")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid to format, expected YYYY-MM-DD", err))
		return
	}

	points, err := h.svc.GetSeries(c.Request.Context(), start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("failed to fetch series", err))
		return
	}
	if len(points) == 0 {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse("no data found", nil))
		return
	}

	resp := dto.SeriesResponse{
		Count:  len(points),
		Points: make([]dto.PointResponse, 0, len(points)),
	}
	for _, p := range points {
		resp.Points = append(resp.Points, toPointResponse(p))
	}

	c.JSON(http.StatusOK, resp)
}

// GetLatest handles GET /api/v1/sth-realized-price/latest requests.
//
// GetLatest godoc
// @Summary      Get the newest series point
// @Description  Returns the most recent observation of the metric
// @Tags         series
// @Produce      json
// @Success      200  {object}  dto.PointResponse  "Success"
// @Failure      404  {object}  dto.ErrorResponse  "Not Found"
// @Failure      500  {object}  dto.ErrorResponse  "Internal Error"
// @Router       /api/v1/sth-realized-price/latest [get]
func (h *Handler) GetLatest(c *gin.Context) {
	p, err := h.svc.GetLatest(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("failed to fetch latest point", err))
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse("no data found", nil))
		return
	}

	c.JSON(http.StatusOK, toPointResponse(*p))
}

// parseDateParam reads an optional YYYY-MM-DD query parameter.
func parseDateParam(c *gin.Context, name string) (*time.Time, error) {
	s := c.Query(name)
	if s == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func toPointResponse(p models.MetricPoint) dto.PointResponse {
	return dto.PointResponse{
		Date:        p.DateString(),
		Price:       p.Price,
		MA200:       p.MA200,
		STHRealized: p.STHRealized,
	}
}

package booking

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/orsched/orsched/internal/platform/auth"
	"github.com/orsched/orsched/internal/platform/db"
	"github.com/orsched/orsched/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Read endpoints – any clinical or scheduling role
	readGroup := api.Group("", auth.RequireRole("admin", "scheduler", "surgeon", "nurse"))
	readGroup.GET("/bookings", h.ListBookings)
	readGroup.GET("/bookings/queue", h.GetPriorityQueue)
	readGroup.GET("/bookings/upcoming", h.ListUpcoming)
	readGroup.GET("/bookings/today", h.ListToday)
	readGroup.GET("/bookings/emergency", h.ListEmergencies)
	readGroup.GET("/bookings/:id", h.GetBooking)
	readGroup.GET("/bookings/:id/assessment", h.GetAssessment)
	readGroup.GET("/bookings/:id/report", h.GetReport)
	readGroup.GET("/bookings/:id/readings", h.ListReadings)
	readGroup.GET("/bookings/:id/consents/verify", h.VerifyConsent)

	// Scheduling writes – admin and scheduler only
	schedGroup := api.Group("", auth.RequireRole("admin", "scheduler"))
	schedGroup.POST("/bookings", h.SubmitBooking)
	schedGroup.POST("/bookings/:id/transition", h.TransitionState)
	schedGroup.POST("/bookings/:id/consents", h.AddConsent)

	// Clinical writes – surgeons and nurses
	clinGroup := api.Group("", auth.RequireRole("admin", "surgeon", "nurse"))
	clinGroup.POST("/bookings/:id/assessment", h.SubmitAssessment)
	clinGroup.PUT("/bookings/:id/assessment/clearance", h.UpdateClearance)
	clinGroup.POST("/bookings/:id/report", h.FileReport)
	clinGroup.POST("/bookings/:id/readings", h.AppendReading)
	clinGroup.POST("/bookings/:id/team/:staff_id/confirm", h.ConfirmTeamMember)
}

type rejectionPayload struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// respondError maps domain failures onto the response taxonomy: conflicts and
// lock timeouts are 409, collaborator faults 503, other rejections 422,
// unknown references 404, anything else 400.
func respondError(c echo.Context, err error) error {
	if list, ok := AsRejectionList(err); ok {
		status := http.StatusUnprocessableEntity
		payloads := make([]rejectionPayload, len(list.Rejections))
		for i, r := range list.Rejections {
			payloads[i] = rejectionPayload{Code: r.Code(), Message: r.Error(), Details: r.Details()}
			if IsConflictCode(r.Code()) {
				status = http.StatusConflict
			}
			if r.Code() == CodeCollaboratorUnavailable {
				status = http.StatusServiceUnavailable
			}
		}
		return c.JSON(status, echo.Map{"error": echo.Map{
			"code":       payloads[0].Code,
			"message":    list.Error(),
			"rejections": payloads,
		}})
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}

// userUUID extracts the authenticated user id when it parses as a UUID.
// Development-mode principals fall back to the nil UUID.
func userUUID(c echo.Context) uuid.UUID {
	if s, ok := c.Get("user_id").(string); ok {
		if id, err := uuid.Parse(s); err == nil {
			return id
		}
	}
	return uuid.Nil
}

func bookingID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// -- Admission and lifecycle --

func (h *Handler) SubmitBooking(c echo.Context) error {
	var req BookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	b, err := h.svc.SubmitBooking(c.Request().Context(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

type transitionRequest struct {
	TargetStatus string  `json:"target_status"`
	Reason       *string `json:"reason,omitempty"`
}

func (h *Handler) TransitionState(c echo.Context) error {
	id, err := bookingID(c)
	if err != nil {
		return err
	}
	var req transitionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	b, err := h.svc.TransitionState(c.Request().Context(), id, req.TargetStatus, req.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// -- Queries --

func (h *Handler) GetBooking(c echo.Context) error {
	id, err := bookingID(c)
	if err != nil {
		return err
	}
	detail, err := h.svc.GetBooking(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

func (h *Handler) ListBookings(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := db.ExtractSearchParams(c)
	items, total, err := h.svc.SearchBookings(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetPriorityQueue(c echo.Context) error {
	var statuses []string
	if raw := c.QueryParam("status"); raw != "" {
		statuses = strings.Split(raw, ",")
	}
	items, err := h.svc.GetPriorityQueue(c.Request().Context(), statuses, c.QueryParam("priority"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListUpcoming(c echo.Context) error {
	days := 7
	if raw := c.QueryParam("days"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			days = n
		}
	}
	items, err := h.svc.ListUpcoming(c.Request().Context(), days)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListToday(c echo.Context) error {
	items, err := h.svc.ListToday(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListEmergencies(c echo.Context) error {
	items, err := h.svc.ListEmergencies(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// -- Clinical safety --

func (h *Handler) SubmitAssessment(c echo.Context) error {
	id, err := bookingID(c)
	if err != nil {
		return err
	}
	var req AssessmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.SubmitPreOpAssessment(c.Request().Context(), id, userUUID(c), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) GetAssessment(c echo.Context) error {
	id, err := bookingID(c)
	if err != nil {
		return err
	}
	a, err := h.svc.GetAssessment(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

type clearanceRequest struct {
	ClearanceStatus string `json:"clearance_status"`
}

func (h *Handler) UpdateClearance(c echo.Context) error {
	id, err := bookingID(c)
	if err != nil {
		return err
	}
	var req clearanceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.UpdateClearance(c.Request().Context(), id, req.ClearanceStatus); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"booking_id": id, "clearance_status": req.ClearanceStatus})
}

func (h *Handler) FileReport(c echo.Context) error {
	id, err := bookingID(c)
	if err != nil {
		return err
	}
	var req ReportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rep, err := h.svc.FileSurgeryReport(c.Request().Context(), id, userUUID(c), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, rep)
}

func (h *Handler) GetReport(c echo.Context) error {
	id, err := bookingID(c)
	if err != nil {
		return err
	}
	rep, err := h.svc.GetReport(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, rep)
}

func (h *Handler) AppendReading(c echo.Context) error {
	id, err := bookingID(c)
	if err != nil {
		return err
	}
	var req ReadingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	reading, err := h.svc.AppendPostOpReading(c.Request().Context(), id, userUUID(c), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, reading)
}

func (h *Handler) ListReadings(c echo.Context) error {
	id, err := bookingID(c)
	if err != nil {
		return err
	}
	readings, err := h.svc.ListReadings(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, readings)
}

// -- Team --

func (h *Handler) ConfirmTeamMember(c echo.Context) error {
	id, err := bookingID(c)
	if err != nil {
		return err
	}
	staffID, err := uuid.Parse(c.Param("staff_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid staff_id")
	}
	if err := h.svc.ConfirmTeamMember(c.Request().Context(), id, staffID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"booking_id": id, "staff_id": staffID, "is_confirmed": true})
}

// -- Consents --

func (h *Handler) AddConsent(c echo.Context) error {
	id, err := bookingID(c)
	if err != nil {
		return err
	}
	var req ConsentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	consent, err := h.svc.AddConsent(c.Request().Context(), id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, consent)
}

func (h *Handler) VerifyConsent(c echo.Context) error {
	id, err := bookingID(c)
	if err != nil {
		return err
	}
	valid, consents, err := h.svc.VerifyConsent(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"booking_id": id, "valid": valid, "consents": consents})
}

package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/grievance-service/internal/api/dto"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/service"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

// GrievancesHandler manages grievance endpoints.
type GrievancesHandler struct {
	service *service.GrievanceService
}

// NewGrievancesHandler constructs handler.
func NewGrievancesHandler(grievanceService *service.GrievanceService) *GrievancesHandler {
	return &GrievancesHandler{service: grievanceService}
}

// List GET /api/grievances.
func (h *GrievancesHandler) List(c *fiber.Ctx) error {
	grievances, err := h.service.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(grievanceList(grievances))
}

// ListByUser GET /api/grievances/user/:userId.
func (h *GrievancesHandler) ListByUser(c *fiber.Ctx) error {
	userID, err := strconv.ParseInt(c.Params("userId"), 10, 64)
	if err != nil {
		return apperrors.NewValidationError("invalid user id", map[string]any{"userId": c.Params("userId")})
	}
	grievances, err := h.service.ListByOwner(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(grievanceList(grievances))
}

// Add POST /api/grievances/add.
func (h *GrievancesHandler) Add(c *fiber.Ctx) error {
	var req dto.CreateGrievanceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.GrievanceInput{
		Category:        req.Category,
		Description:     req.Description,
		Status:          domain.GrievanceStatus(req.Status),
		ReadByAuthority: req.ReadByAuthority,
		RejectionReason: req.RejectionReason,
		ResolutionNote:  req.ResolutionNote,
		UserImages:      req.UserImages,
		AdminImages:     req.AdminImages,
	}
	if req.User != nil {
		input.OwnerID = req.User.ID
	}
	if req.DateRaised != nil && !req.DateRaised.IsZero() {
		raised := req.DateRaised.Time
		input.DateRaised = &raised
	}

	grievance, err := h.service.AddGrievance(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.JSON(grievanceResponse(grievance))
}

// Update PUT /api/grievances/update/:id.
func (h *GrievancesHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return apperrors.NewValidationError("invalid grievance id", map[string]any{"id": c.Params("id")})
	}
	var req dto.UpdateGrievanceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	patch := service.GrievancePatch{
		Category:        req.Category,
		Description:     req.Description,
		RejectionReason: req.RejectionReason,
		ResolutionNote:  req.ResolutionNote,
		AdminImages:     req.AdminImages,
		UserImages:      req.UserImages,
	}
	if req.Status != nil {
		status := domain.GrievanceStatus(*req.Status)
		patch.Status = &status
	}

	grievance, err := h.service.ApplyUpdate(c.UserContext(), id, patch)
	if err != nil {
		return err
	}
	return c.JSON(grievanceResponse(grievance))
}

func grievanceList(grievances []domain.Grievance) []dto.GrievanceResponse {
	items := make([]dto.GrievanceResponse, 0, len(grievances))
	for i := range grievances {
		items = append(items, grievanceResponse(&grievances[i]))
	}
	return items
}

func grievanceResponse(g *domain.Grievance) dto.GrievanceResponse {
	resp := dto.GrievanceResponse{
		ID:              g.ID,
		Category:        g.Category,
		Description:     g.Description,
		Status:          string(g.Status),
		ReadByAuthority: g.ReadByAuthority,
		DateRaised:      dto.Date{Time: g.DateRaised},
		RejectionReason: g.RejectionReason,
		ResolutionNote:  g.ResolutionNote,
		UserImages:      nonNil(g.UserImages),
		AdminImages:     nonNil(g.AdminImages),
	}
	if g.Owner != nil {
		resp.User = userResponse(g.Owner)
	}
	return resp
}

func userResponse(u *domain.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Role:         u.Role,
		FullName:     u.FullName,
		MobileNumber: u.MobileNumber,
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

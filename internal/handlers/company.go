package handlers

import (
	"errors"
	"net/http"

	"github.com/emploai/emploai-server/internal/apierrors"
	"github.com/emploai/emploai-server/internal/middleware"
	"github.com/emploai/emploai-server/internal/models"
	"github.com/emploai/emploai-server/internal/services"
	"github.com/gin-gonic/gin"
)

// CompanyHandler coordinates the company profile and document handlers.
type CompanyHandler struct {
	companyService *services.CompanyService
}

// NewCompanyHandler creates a new CompanyHandler.
func NewCompanyHandler(companyService *services.CompanyService) *CompanyHandler {
	return &CompanyHandler{
		companyService: companyService,
	}
}

type companyResponse struct {
	Company   *models.CompanyInfo      `json:"company"`
	Documents []models.CompanyDocument `json:"documents"`
}

// GetCompany returns the user's company profile; an empty profile when
// nothing has been saved yet.
func (h *CompanyHandler) GetCompany(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	info, err := h.companyService.Get(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch company info")
		return
	}
	docs, err := h.companyService.Documents(info)
	if err != nil {
		apierrors.InternalError(c, "Failed to decode documents")
		return
	}

	c.JSON(http.StatusOK, companyResponse{Company: info, Documents: docs})
}

// UpdateCompany writes the strategic fields.
func (h *CompanyHandler) UpdateCompany(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type UpdateRequest struct {
		CompanyName      string `json:"company_name"`
		Industry         string `json:"industry"`
		Mission          string `json:"mission"`
		Vision           string `json:"vision"`
		Values           string `json:"values"`
		Culture          string `json:"culture"`
		Benefits         string `json:"benefits"`
		ProductsServices string `json:"products_services"`
		Policies         string `json:"policies"`
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	info, err := h.companyService.Upsert(userID, models.CompanyInfo{
		CompanyName:      req.CompanyName,
		Industry:         req.Industry,
		Mission:          req.Mission,
		Vision:           req.Vision,
		Values:           req.Values,
		Culture:          req.Culture,
		Benefits:         req.Benefits,
		ProductsServices: req.ProductsServices,
		Policies:         req.Policies,
	})
	if err != nil {
		apierrors.InternalError(c, "Failed to save company info")
		return
	}

	c.JSON(http.StatusOK, info)
}

// UploadDocument stores one company document.
func (h *CompanyHandler) UploadDocument(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		apierrors.BadRequest(c, "Missing file")
		return
	}

	src, err := file.Open()
	if err != nil {
		apierrors.InternalError(c, "Failed to read upload")
		return
	}
	defer src.Close()

	doc, err := h.companyService.AttachDocument(userID, file.Filename, file.Header.Get("Content-Type"), src)
	if err != nil {
		apierrors.InternalError(c, "Failed to store document")
		return
	}

	c.JSON(http.StatusCreated, doc)
}

// GetDocumentURL issues a signed download link for one stored document.
func (h *CompanyHandler) GetDocumentURL(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type URLRequest struct {
		Path string `json:"path" binding:"required"`
	}

	var req URLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	url, err := h.companyService.DocumentURL(userID, req.Path)
	if err != nil {
		if errors.Is(err, services.ErrDocumentNotFound) {
			apierrors.NotFound(c, err.Error())
			return
		}
		apierrors.InternalError(c, "Failed to sign document link")
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

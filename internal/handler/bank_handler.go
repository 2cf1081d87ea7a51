package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/exstem-prep/internal/model"
	"github.com/stemsi/exstem-prep/internal/response"
	"github.com/stemsi/exstem-prep/internal/service"
	"github.com/stemsi/exstem-prep/internal/validator"
)

type BankHandler struct {
	bankService *service.BankService
}

func NewBankHandler(bankService *service.BankService) *BankHandler {
	return &BankHandler{bankService: bankService}
}

// GetSummary godoc
// GET /api/v1/bank/summary
func (h *BankHandler) GetSummary(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"summary": h.bankService.Summary()})
}

// GetAllocation godoc
// GET /api/v1/bank/allocation?size=N
// Previews how a practice set of size N is spread across domains.
func (h *BankHandler) GetAllocation(c *gin.Context) {
	var q model.AllocationQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	allocation := h.bankService.Allocation(q.Size)
	if allocation == nil {
		allocation = []model.DomainAllocation{}
	}
	response.Success(c, http.StatusOK, gin.H{"size": q.Size, "allocation": allocation})
}

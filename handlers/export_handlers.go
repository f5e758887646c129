package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fadhlanhapp/tripplanner-backend/utils"
)

func attachment(c *gin.Context, contentType, filename string) {
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Header("Content-Transfer-Encoding", "binary")
}

// ExportTripWorkbook exports a trip's data to Excel format
func (h *Handler) ExportTripWorkbook(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	excelFile, filename, err := h.svc.Exports.ExportTripWorkbook(ctx, c.Param("tripId"), userID(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	defer excelFile.Close()

	buf, err := excelFile.WriteToBuffer()
	if err != nil {
		utils.HandleError(c, utils.NewInternalError("Failed to write Excel file", err))
		return
	}
	attachment(c, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// ExportTripSummaryPDF renders the trip summary as a PDF
func (h *Handler) ExportTripSummaryPDF(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	data, filename, err := h.svc.Exports.ExportTripSummaryPDF(ctx, c.Param("tripId"), userID(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	attachment(c, "application/pdf", filename)
	c.Data(http.StatusOK, "application/pdf", data)
}

package exports

import (
	"crypto/sha256"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"crm_backend/platform/httpkit"
	"crm_backend/platform/logger"
	"crm_backend/platform/phone"

	"github.com/gin-gonic/gin"
)

const (
	phoneFormatDisplay = "display"
	phoneFormatStored  = "stored"

	defaultExportLimit = 5000
	maxExportLimit     = 50000
)

// Handler handles export requests.
type Handler struct {
	source    ContactSource
	formatter *phone.Formatter
	log       *logger.Logger
}

// NewHandler creates a new export handler.
func NewHandler(source ContactSource, formatter *phone.Formatter, log *logger.Logger) *Handler {
	return &Handler{source: source, formatter: formatter, log: log}
}

// ExportContactsCSV streams contacts as CSV. Phones are written in display
// form unless phoneFormat=stored. With hashed=true, SHA-256 digests of the
// stored phone and the normalized email are appended for ad-platform audience
// uploads.
// GET /api/v1/exports/contacts.csv
func (h *Handler) ExportContactsCSV(c *gin.Context) {
	phoneFormat := strings.ToLower(strings.TrimSpace(c.DefaultQuery("phoneFormat", phoneFormatDisplay)))
	if phoneFormat != phoneFormatDisplay && phoneFormat != phoneFormatStored {
		httpkit.Error(c, http.StatusBadRequest, "invalid phoneFormat", "expected display or stored")
		return
	}
	limit := parseLimit(c, defaultExportLimit, maxExportLimit)
	useHashed := parseBool(c.Query("hashed"))

	contacts, err := h.source.ListContacts(c.Request.Context(), limit)
	if httpkit.HandleError(c, err) {
		return
	}

	writer, ok := startCsvResponse(c, useHashed)
	if !ok {
		return
	}
	for _, row := range contacts {
		if err := writer.Write(h.csvRow(row, phoneFormat, useHashed)); err != nil {
			h.log.Error("contact export write failed", "error", err)
			return
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		h.log.Error("contact export flush failed", "error", err)
		return
	}
	h.log.Info("contacts exported", "rows", len(contacts), "phoneFormat", phoneFormat, "hashed", useHashed)
}

// ---- Helpers ----

func (h *Handler) csvRow(row ContactRow, phoneFormat string, useHashed bool) []string {
	renderPhone := h.formatter.FormatNullableForDisplay
	if phoneFormat == phoneFormatStored {
		renderPhone = derefString
	}

	fields := []string{
		row.ID.String(),
		row.FirstName,
		row.LastName,
		derefString(row.Email),
		derefString(row.Company),
		derefString(row.JobTitle),
		renderPhone(row.Phone),
		renderPhone(row.WhatsApp),
		row.CreatedAt.UTC().Format(time.RFC3339),
	}
	if useHashed {
		fields = append(fields, hashEmail(derefString(row.Email)), hashPhone(derefString(row.Phone)))
	}
	return fields
}

func csvHeaders(useHashed bool) []string {
	headers := []string{
		"ID",
		"First Name",
		"Last Name",
		"Email",
		"Company",
		"Job Title",
		"Phone",
		"WhatsApp",
		"Created At",
	}
	if useHashed {
		headers = append(headers, "Hashed Email", "Hashed Phone")
	}
	return headers
}

func startCsvResponse(c *gin.Context, useHashed bool) (*csv.Writer, bool) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=contacts.csv")

	writer := csv.NewWriter(c.Writer)
	if err := writer.Write(csvHeaders(useHashed)); err != nil {
		return nil, false
	}
	return writer, true
}

func parseLimit(c *gin.Context, fallback int, max int) int {
	raw := strings.TrimSpace(c.Query("limit"))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	if value > max {
		return max
	}
	return value
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "y":
		return true
	default:
		return false
	}
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func hashEmail(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return ""
	}

	parts := strings.Split(value, "@")
	if len(parts) == 2 {
		domain := parts[1]
		user := parts[0]
		if domain == "gmail.com" || domain == "googlemail.com" {
			user = strings.ReplaceAll(user, ".", "")
			if plusIndex := strings.Index(user, "+"); plusIndex >= 0 {
				user = user[:plusIndex]
			}
			value = user + "@" + domain
		}
	}

	return sha256Sum(value)
}

// hashPhone hashes the E.164 form of a phone. Legacy values without a calling
// code are read in the default region; ones that do not parse hash to "".
func hashPhone(value string) string {
	value = strings.TrimSpace(value)
	if !strings.HasPrefix(value, "+") {
		value = phone.NormalizeE164(value, phone.DefaultRegion)
		if !strings.HasPrefix(value, "+") {
			return ""
		}
	}
	digits := phone.StripToDigits(value)
	if digits == "" {
		return ""
	}
	return sha256Sum("+" + digits)
}

func sha256Sum(value string) string {
	hash := sha256.Sum256([]byte(value))
	return fmt.Sprintf("%x", hash)
}

package service

import (
	"crm_backend/internal/phonefmt/transport"
	"crm_backend/platform/apperr"
	"crm_backend/platform/logger"
	"crm_backend/platform/phone"
)

// Service exposes the phone format engine to HTTP callers.
type Service struct {
	formatter *phone.Formatter
	log       *logger.Logger
}

// New creates a phone format service on top of the given formatter.
func New(formatter *phone.Formatter, log *logger.Logger) *Service {
	return &Service{formatter: formatter, log: log}
}

// ListFormats returns every configured country format, sorted by calling code.
func (s *Service) ListFormats() transport.FormatListResponse {
	formats := s.formatter.Table().Formats()
	items := make([]transport.FormatResponse, 0, len(formats))
	for _, cf := range formats {
		items = append(items, toFormatResponse(cf, true))
	}
	return transport.FormatListResponse{Items: items, Total: len(items)}
}

// Lookup returns the format for a calling code, or the generic fallback.
func (s *Service) Lookup(code string) transport.FormatResponse {
	_, known := s.formatter.Table().Get(code)
	return toFormatResponse(s.formatter.LookupFormat(code), known)
}

// FormatInput masks a partially typed national number.
func (s *Service) FormatInput(req transport.FormatInputRequest) transport.FormatInputResponse {
	return transport.FormatInputResponse{Value: s.formatter.FormatForInput(req.Value, req.CallingCode)}
}

// FormatDisplay renders a stored phone for display.
func (s *Service) FormatDisplay(req transport.FormatDisplayRequest) transport.FormatDisplayResponse {
	return transport.FormatDisplayResponse{Display: s.formatter.FormatForDisplay(req.Phone)}
}

// Compose builds the stored form from a calling code and a national number.
func (s *Service) Compose(req transport.ComposeRequest) (transport.ComposeResponse, error) {
	stored := s.formatter.ComposeStored(req.CallingCode, req.Number)
	if stored == "" {
		return transport.ComposeResponse{}, apperr.Validation("number must contain at least one digit").
			WithOp("phonefmt.service.compose")
	}
	return transport.ComposeResponse{
		Stored:  stored,
		Display: s.formatter.FormatForDisplay(stored),
	}, nil
}

// Validate checks a phone against libphonenumber metadata.
func (s *Service) Validate(req transport.ValidateRequest) transport.ValidateResponse {
	v := phone.Inspect(req.Phone)
	if !v.Valid {
		s.log.Debug("phone failed validation", "callingCode", v.CallingCode, "region", v.Region)
	}
	return transport.ValidateResponse{
		Valid:       v.Valid,
		E164:        v.E164,
		Region:      v.Region,
		CallingCode: v.CallingCode,
	}
}

func toFormatResponse(cf phone.CountryFormat, known bool) transport.FormatResponse {
	return transport.FormatResponse{
		Code:        cf.Code,
		Region:      phone.RegionForCallingCode(cf.Code),
		Pattern:     cf.Pattern,
		Placeholder: cf.Placeholder,
		MaxDigits:   cf.MaxDigits,
		Known:       known,
	}
}

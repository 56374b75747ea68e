package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"crm_backend/internal/contacts/repository"
	"crm_backend/internal/contacts/transport"
	"crm_backend/internal/events"
	"crm_backend/platform/apperr"
	"crm_backend/platform/logger"
	"crm_backend/platform/phone"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	opCreate = "contacts.service.create"
	opUpdate = "contacts.service.update"
)

// Service provides business logic for contacts. Phones are persisted in
// stored form and returned in display form.
type Service struct {
	repo      repository.Repository
	formatter *phone.Formatter
	eventBus  events.Bus
	log       *logger.Logger
}

// New creates a new contacts service.
func New(repo repository.Repository, formatter *phone.Formatter, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, formatter: formatter, eventBus: eventBus, log: log}
}

// GetByID retrieves a contact by ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.ContactResponse, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ContactResponse{}, err
	}
	return s.toResponse(c), nil
}

// List retrieves a page of contacts. Searches containing digits also match
// stored phone numbers, so "636-555" finds "+16365551234".
func (s *Service) List(ctx context.Context, req transport.ListContactsRequest) (transport.ContactListResponse, error) {
	page := req.Page
	pageSize := req.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	search := strings.TrimSpace(req.Search)
	params := repository.ListParams{
		Search:      search,
		PhoneDigits: phone.StripToDigits(search),
		Offset:      (page - 1) * pageSize,
		Limit:       pageSize,
	}

	items, total, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.ContactListResponse{}, err
	}

	resp := transport.ContactListResponse{
		Items:      make([]transport.ContactResponse, 0, len(items)),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}
	for _, c := range items {
		resp.Items = append(resp.Items, s.toResponse(c))
	}
	return resp, nil
}

// Create stores a new contact and publishes ContactCreated.
func (s *Service) Create(ctx context.Context, req transport.CreateContactRequest) (transport.ContactResponse, error) {
	if strings.TrimSpace(req.FirstName) == "" {
		return transport.ContactResponse{}, errFirstNameBlank().WithOp(opCreate)
	}
	phoneStored, err := s.composePhone("phone", req.PhoneCallingCode, req.Phone)
	if err != nil {
		return transport.ContactResponse{}, err.WithOp(opCreate)
	}
	whatsappStored, err := s.composePhone("whatsapp", req.WhatsAppCallingCode, req.WhatsApp)
	if err != nil {
		return transport.ContactResponse{}, err.WithOp(opCreate)
	}

	c, createErr := s.repo.Create(ctx, repository.CreateParams{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     trimOptional(req.Email),
		Company:   trimOptional(req.Company),
		JobTitle:  trimOptional(req.JobTitle),
		Phone:     phoneStored,
		WhatsApp:  whatsappStored,
		Notes:     trimOptional(req.Notes),
	})
	if createErr != nil {
		return transport.ContactResponse{}, createErr
	}

	resp := s.toResponse(c)
	s.eventBus.Publish(ctx, events.ContactCreated{
		BaseEvent:    events.NewBaseEvent(),
		ContactID:    c.ID,
		DisplayName:  resp.DisplayName,
		PhoneDisplay: displayOf(resp.Phone),
	})

	s.log.Info("contact created", "id", c.ID, "hasPhone", c.Phone != nil, "hasWhatsApp", c.WhatsApp != nil)
	return resp, nil
}

// Update applies a partial update and publishes ContactUpdated when anything changed.
// A calling code sent without a number re-homes the existing national number.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateContactRequest) (transport.ContactResponse, error) {
	if req.FirstName != nil && strings.TrimSpace(*req.FirstName) == "" {
		return transport.ContactResponse{}, errFirstNameBlank().WithOp(opUpdate)
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ContactResponse{}, err
	}

	phoneStored, perr := s.recomposePhone("phone", existing.Phone, req.PhoneCallingCode, req.Phone)
	if perr != nil {
		return transport.ContactResponse{}, perr.WithOp(opUpdate)
	}
	whatsappStored, perr := s.recomposePhone("whatsapp", existing.WhatsApp, req.WhatsAppCallingCode, req.WhatsApp)
	if perr != nil {
		return transport.ContactResponse{}, perr.WithOp(opUpdate)
	}

	updated, err := s.repo.Update(ctx, repository.UpdateParams{
		ID:        id,
		FirstName: trimOptional(req.FirstName),
		LastName:  trimOptional(req.LastName),
		Email:     trimOptional(req.Email),
		Company:   trimOptional(req.Company),
		JobTitle:  trimOptional(req.JobTitle),
		Phone:     phoneStored,
		WhatsApp:  whatsappStored,
		Notes:     trimOptional(req.Notes),
	})
	if err != nil {
		return transport.ContactResponse{}, err
	}

	resp := s.toResponse(updated)
	changed := changedFields(existing, updated)
	if len(changed) > 0 {
		s.eventBus.Publish(ctx, events.ContactUpdated{
			BaseEvent:     events.NewBaseEvent(),
			ContactID:     updated.ID,
			DisplayName:   resp.DisplayName,
			PhoneDisplay:  displayOf(resp.Phone),
			ChangedFields: changed,
		})
	}

	s.log.Info("contact updated", "id", id, "changedFields", changed)
	return resp, nil
}

// Delete removes a contact and publishes ContactDeleted.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.eventBus.Publish(ctx, events.ContactDeleted{
		BaseEvent:   events.NewBaseEvent(),
		ContactID:   id,
		DisplayName: displayName(existing.FirstName, existing.LastName),
	})

	s.log.Info("contact deleted", "id", id)
	return nil
}

// composePhone turns a calling code and a typed national number into stored
// form. A blank number means no phone.
func (s *Service) composePhone(field, callingCode, number string) (*string, *apperr.Error) {
	if strings.TrimSpace(number) == "" {
		return nil, nil
	}
	if callingCode == "" {
		return nil, apperr.Validation(field + " calling code is required").
			WithDetails(map[string]string{field + "CallingCode": "required"})
	}
	stored := s.formatter.ComposeStored(callingCode, number)
	if stored == "" {
		return nil, apperr.Validation(field + " must contain at least one digit").
			WithDetails(map[string]string{field: "digits"})
	}
	return &stored, nil
}

// recomposePhone resolves a partial phone update against the current stored
// value. It returns nil when the column should be kept and "" to clear it.
func (s *Service) recomposePhone(field string, current, callingCode, number *string) (*string, *apperr.Error) {
	currentCode, currentNational := "", ""
	if current != nil && *current != "" {
		if code, rest, ok := s.formatter.SplitCallingCode(*current); ok {
			currentCode, currentNational = code, rest
		}
	}

	switch {
	case number != nil:
		if strings.TrimSpace(*number) == "" {
			cleared := ""
			return &cleared, nil
		}
		code := currentCode
		if callingCode != nil {
			code = *callingCode
		}
		return s.composePhone(field, code, *number)
	case callingCode != nil && currentNational != "":
		return s.composePhone(field, *callingCode, currentNational)
	default:
		return nil, nil
	}
}

func (s *Service) toResponse(c repository.Contact) transport.ContactResponse {
	return transport.ContactResponse{
		ID:          c.ID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		DisplayName: displayName(c.FirstName, c.LastName),
		Email:       c.Email,
		Company:     c.Company,
		JobTitle:    c.JobTitle,
		Phone:       s.phoneResponse(c.Phone),
		WhatsApp:    s.phoneResponse(c.WhatsApp),
		Notes:       c.Notes,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func (s *Service) phoneResponse(stored *string) *transport.PhoneResponse {
	display := s.formatter.FormatNullableForDisplay(stored)
	if display == "" {
		return nil
	}
	resp := &transport.PhoneResponse{Stored: *stored, Display: display}
	if code, rest, ok := s.formatter.SplitCallingCode(*stored); ok {
		resp.CallingCode = code
		resp.National = s.formatter.FormatForInput(rest, code)
	}
	return resp
}

func errFirstNameBlank() *apperr.Error {
	return apperr.Validation("first name is required").WithDetails(map[string]string{"firstName": "required"})
}

func displayOf(p *transport.PhoneResponse) string {
	if p == nil {
		return ""
	}
	return p.Display
}

func displayName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	return &trimmed
}

func changedFields(before, after repository.Contact) []string {
	var changed []string
	check := func(name string, a, b *string) {
		if deref(a) != deref(b) {
			changed = append(changed, name)
		}
	}
	if before.FirstName != after.FirstName {
		changed = append(changed, "firstName")
	}
	if before.LastName != after.LastName {
		changed = append(changed, "lastName")
	}
	check("email", before.Email, after.Email)
	check("company", before.Company, after.Company)
	check("jobTitle", before.JobTitle, after.JobTitle)
	check("phone", before.Phone, after.Phone)
	check("whatsapp", before.WhatsApp, after.WhatsApp)
	check("notes", before.Notes, after.Notes)
	return changed
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

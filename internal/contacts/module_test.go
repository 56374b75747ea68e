package contacts

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"crm_backend/internal/contacts/repository"
	"crm_backend/internal/contacts/transport"
	"crm_backend/internal/events"
	apphttp "crm_backend/internal/http"
	"crm_backend/platform/apperr"
	"crm_backend/platform/logger"
	"crm_backend/platform/phone"
	"crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type memRepo struct {
	mu       sync.Mutex
	contacts map[uuid.UUID]repository.Contact
	lastList repository.ListParams
}

func newMemRepo() *memRepo {
	return &memRepo{contacts: map[uuid.UUID]repository.Contact{}}
}

func (r *memRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contacts[id]
	if !ok {
		return repository.Contact{}, apperr.NotFound("contact not found")
	}
	return c, nil
}

func (r *memRepo) List(_ context.Context, params repository.ListParams) ([]repository.Contact, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastList = params
	var out []repository.Contact
	for _, c := range r.contacts {
		if params.Search == "" || strings.Contains(strings.ToLower(c.FirstName+" "+c.LastName), strings.ToLower(params.Search)) ||
			(params.PhoneDigits != "" && c.Phone != nil && strings.Contains(*c.Phone, params.PhoneDigits)) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FirstName < out[j].FirstName })
	total := len(out)
	if params.Offset >= len(out) {
		return []repository.Contact{}, total, nil
	}
	end := params.Offset + params.Limit
	if end > len(out) {
		end = len(out)
	}
	return out[params.Offset:end], total, nil
}

func (r *memRepo) Create(_ context.Context, p repository.CreateParams) (repository.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	c := repository.Contact{
		ID: uuid.New(), FirstName: p.FirstName, LastName: p.LastName, Email: p.Email,
		Company: p.Company, JobTitle: p.JobTitle, Phone: p.Phone, WhatsApp: p.WhatsApp,
		Notes: p.Notes, CreatedAt: now, UpdatedAt: now,
	}
	r.contacts[c.ID] = c
	return c, nil
}

func (r *memRepo) Update(_ context.Context, p repository.UpdateParams) (repository.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contacts[p.ID]
	if !ok {
		return repository.Contact{}, apperr.NotFound("contact not found")
	}
	if p.FirstName != nil {
		c.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		c.LastName = *p.LastName
	}
	c.Email = mergeNullable(c.Email, p.Email)
	c.Company = mergeNullable(c.Company, p.Company)
	c.JobTitle = mergeNullable(c.JobTitle, p.JobTitle)
	c.Phone = mergeNullable(c.Phone, p.Phone)
	c.WhatsApp = mergeNullable(c.WhatsApp, p.WhatsApp)
	c.Notes = mergeNullable(c.Notes, p.Notes)
	c.UpdatedAt = time.Now()
	r.contacts[p.ID] = c
	return c, nil
}

func (r *memRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.contacts[id]; !ok {
		return apperr.NotFound("contact not found")
	}
	delete(r.contacts, id)
	return nil
}

// mergeNullable keeps old when update is nil and clears on an empty update.
func mergeNullable(old, update *string) *string {
	if update == nil {
		return old
	}
	if *update == "" {
		return nil
	}
	v := *update
	return &v
}

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, e events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *recordingBus) PublishSync(ctx context.Context, e events.Event) error {
	b.Publish(ctx, e)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) last() events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.events) == 0 {
		return nil
	}
	return b.events[len(b.events)-1]
}

type fixture struct {
	engine *gin.Engine
	repo   *memRepo
	bus    *recordingBus
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := newMemRepo()
	bus := &recordingBus{}
	m := newModule(repo, phone.Default(), bus, validator.New(), logger.Discard())
	engine := gin.New()
	m.RegisterRoutes(&apphttp.RouterContext{Engine: engine, V1: engine.Group("/api/v1"), Logger: logger.Discard()})
	return fixture{engine: engine, repo: repo, bus: bus}
}

func (f fixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func decodeContact(t *testing.T, w *httptest.ResponseRecorder) transport.ContactResponse {
	t.Helper()
	var resp transport.ContactResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return resp
}

func (f fixture) create(t *testing.T, body map[string]interface{}) transport.ContactResponse {
	t.Helper()
	w := f.do(t, http.MethodPost, "/api/v1/contacts", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	return decodeContact(t, w)
}

func TestCreateStoresCanonicalPhoneAndReturnsDisplay(t *testing.T) {
	f := newFixture(t)

	resp := f.create(t, map[string]interface{}{
		"firstName":           "Ada",
		"lastName":            "Lovelace",
		"phoneCallingCode":    "+1",
		"phone":               "(636) 555-1234",
		"whatsappCallingCode": "+55",
		"whatsapp":            "11 98765 4321",
	})

	if resp.DisplayName != "Ada Lovelace" {
		t.Fatalf("unexpected display name %q", resp.DisplayName)
	}
	if resp.Phone == nil || resp.Phone.Stored != "+16365551234" || resp.Phone.Display != "+1 636-555-1234" {
		t.Fatalf("unexpected phone %+v", resp.Phone)
	}
	if resp.Phone.CallingCode != "+1" || resp.Phone.National != "636-555-1234" {
		t.Fatalf("unexpected phone edit form %+v", resp.Phone)
	}
	if resp.WhatsApp == nil || resp.WhatsApp.Display != "+55 (11) 98765-4321" {
		t.Fatalf("unexpected whatsapp %+v", resp.WhatsApp)
	}

	stored := f.repo.contacts[resp.ID]
	if stored.Phone == nil || *stored.Phone != "+16365551234" {
		t.Fatalf("repository holds %v", stored.Phone)
	}

	created, ok := f.bus.last().(events.ContactCreated)
	if !ok {
		t.Fatalf("expected ContactCreated, got %T", f.bus.last())
	}
	if created.ContactID != resp.ID || created.PhoneDisplay != "+1 636-555-1234" {
		t.Fatalf("unexpected event %+v", created)
	}
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing first name", map[string]interface{}{"lastName": "x"}},
		{"blank first name", map[string]interface{}{"firstName": "  "}},
		{"phone without calling code", map[string]interface{}{"firstName": "A", "phone": "6365551234"}},
		{"malformed calling code", map[string]interface{}{"firstName": "A", "phoneCallingCode": "44", "phone": "7911123456"}},
		{"phone without digits", map[string]interface{}{"firstName": "A", "phoneCallingCode": "+44", "phone": "n/a"}},
		{"bad email", map[string]interface{}{"firstName": "A", "email": "nope"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := f.do(t, http.MethodPost, "/api/v1/contacts", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
	if len(f.repo.contacts) != 0 {
		t.Fatalf("expected no contacts to be stored")
	}
}

func TestCreateWithoutPhone(t *testing.T) {
	f := newFixture(t)

	resp := f.create(t, map[string]interface{}{"firstName": "Grace", "phoneCallingCode": "+1"})
	if resp.Phone != nil || resp.WhatsApp != nil {
		t.Fatalf("expected no phones, got %+v %+v", resp.Phone, resp.WhatsApp)
	}
}

func TestGetByID(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, map[string]interface{}{"firstName": "Alan", "phoneCallingCode": "+44", "phone": "7911123456"})

	w := f.do(t, http.MethodGet, "/api/v1/contacts/"+created.ID.String(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := decodeContact(t, w); got.Phone == nil || got.Phone.Display != "+44 7911 123456" {
		t.Fatalf("unexpected phone %+v", got.Phone)
	}

	if w := f.do(t, http.MethodGet, "/api/v1/contacts/"+uuid.NewString(), nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if w := f.do(t, http.MethodGet, "/api/v1/contacts/not-a-uuid", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestUpdatePhone(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, map[string]interface{}{"firstName": "Alan", "phoneCallingCode": "+1", "phone": "6365551234"})
	path := "/api/v1/contacts/" + created.ID.String()

	// A new number keeps the current calling code.
	w := f.do(t, http.MethodPut, path, map[string]interface{}{"phone": "212 555 0000"})
	resp := decodeContact(t, w)
	if w.Code != http.StatusOK || resp.Phone == nil || resp.Phone.Stored != "+12125550000" {
		t.Fatalf("update number: %d %+v", w.Code, resp.Phone)
	}
	updated, ok := f.bus.last().(events.ContactUpdated)
	if !ok || len(updated.ChangedFields) != 1 || updated.ChangedFields[0] != "phone" {
		t.Fatalf("unexpected event %+v", f.bus.last())
	}

	// A calling code alone re-homes the national number.
	w = f.do(t, http.MethodPut, path, map[string]interface{}{"phoneCallingCode": "+44"})
	resp = decodeContact(t, w)
	if resp.Phone == nil || resp.Phone.Stored != "+442125550000" || resp.Phone.Display != "+44 2125 550000" {
		t.Fatalf("update code: %+v", resp.Phone)
	}

	// An empty number clears the phone.
	w = f.do(t, http.MethodPut, path, map[string]interface{}{"phone": ""})
	resp = decodeContact(t, w)
	if resp.Phone != nil {
		t.Fatalf("expected phone to be cleared, got %+v", resp.Phone)
	}
	if resp.FirstName != "Alan" {
		t.Fatalf("untouched field changed: %q", resp.FirstName)
	}
}

func TestUpdateWithoutChangesPublishesNothing(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, map[string]interface{}{"firstName": "Alan"})
	before := len(f.bus.events)

	w := f.do(t, http.MethodPut, "/api/v1/contacts/"+created.ID.String(), map[string]interface{}{"firstName": "Alan"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(f.bus.events) != before {
		t.Fatalf("expected no new events")
	}
}

func TestUpdateNewPhoneRequiresCallingCode(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, map[string]interface{}{"firstName": "Alan"})

	w := f.do(t, http.MethodPut, "/api/v1/contacts/"+created.ID.String(), map[string]interface{}{"phone": "6365551234"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, map[string]interface{}{"firstName": "Alan", "lastName": "Turing"})
	path := "/api/v1/contacts/" + created.ID.String()

	if w := f.do(t, http.MethodDelete, path, nil); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	deleted, ok := f.bus.last().(events.ContactDeleted)
	if !ok || deleted.DisplayName != "Alan Turing" {
		t.Fatalf("unexpected event %+v", f.bus.last())
	}
	if w := f.do(t, http.MethodDelete, path, nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestListPaginatesAndSearchesPhones(t *testing.T) {
	f := newFixture(t)
	f.create(t, map[string]interface{}{"firstName": "Ada", "phoneCallingCode": "+1", "phone": "6365551234"})
	f.create(t, map[string]interface{}{"firstName": "Bob", "phoneCallingCode": "+44", "phone": "7911123456"})
	f.create(t, map[string]interface{}{"firstName": "Cy"})

	w := f.do(t, http.MethodGet, "/api/v1/contacts?page=2&pageSize=2", nil)
	var page transport.ContactListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Total != 3 || page.TotalPages != 2 || len(page.Items) != 1 || page.Items[0].FirstName != "Cy" {
		t.Fatalf("unexpected page %+v", page)
	}

	w = f.do(t, http.MethodGet, "/api/v1/contacts?search=636-555", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if f.repo.lastList.PhoneDigits != "636555" {
		t.Fatalf("expected digit search, got %q", f.repo.lastList.PhoneDigits)
	}
	if page.Total != 1 || page.Items[0].FirstName != "Ada" || page.Items[0].Phone.Display != "+1 636-555-1234" {
		t.Fatalf("unexpected search result %+v", page)
	}

	if w := f.do(t, http.MethodGet, "/api/v1/contacts?pageSize=500", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for oversized page, got %d", w.Code)
	}
}

package usecase

import (
	"time"

	"github.com/xavierca1/ligue-funnel/internal/entity"
)

type CreateLeadInput struct {
	Name            string        `json:"name" validate:"required,max=200"`
	Email           string        `json:"email" validate:"omitempty,email,max=254"`
	PhoneNumber     string        `json:"phone_number" validate:"omitempty,max=30"`
	Brand           string        `json:"brand" validate:"max=200"`
	Description     string        `json:"description" validate:"max=2000"`
	CompanySize     string        `json:"company_size" validate:"max=100"`
	CompanySegment  string        `json:"company_segment" validate:"max=100"`
	CompanyOnMarket string        `json:"company_on_market" validate:"max=100"`
	Website         string        `json:"website" validate:"max=500"`
	Origin          entity.Origin `json:"origin" validate:"required"`
	OriginFont      string        `json:"origin_font" validate:"max=100"`

	// Preenchidos pelo handler a partir da requisição, nunca pelo formulário.
	IP        string `json:"-"`
	Country   string `json:"-"`
	City      string `json:"-"`
	UserAgent string `json:"-"`
	Route     string `json:"-"`
}

// toLead aplica "" como default: nenhum campo opcional vira NULL no banco.
func (in CreateLeadInput) toLead(now time.Time) *entity.Lead {
	return &entity.Lead{
		Name:            in.Name,
		Email:           entity.NormalizeEmail(in.Email),
		PhoneNumber:     in.PhoneNumber,
		Brand:           in.Brand,
		Description:     in.Description,
		CompanySize:     in.CompanySize,
		CompanySegment:  in.CompanySegment,
		CompanyOnMarket: in.CompanyOnMarket,
		Website:         in.Website,
		Origin:          in.Origin,
		OriginFont:      in.OriginFont,
		IP:              in.IP,
		Country:         in.Country,
		City:            in.City,
		UserAgent:       in.UserAgent,
		Route:           in.Route,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

type CreateLeadOutput struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	// Created é false quando o lead já existia para o email.
	Created bool `json:"-"`
}

func leadOutput(l *entity.Lead, created bool) *CreateLeadOutput {
	return &CreateLeadOutput{
		ID:          l.ID,
		Name:        l.Name,
		Email:       l.Email,
		PhoneNumber: l.PhoneNumber,
		Created:     created,
	}
}

type CreateSubmissionInput struct {
	LeadID   int64                 `json:"lead_id" validate:"required,gt=0"`
	Type     entity.SubmissionType `json:"type" validate:"required,oneof=ebook contact enrollment waitlist"`
	Metadata map[string]any        `json:"metadata"`
}

type CreateWaitlistEntryInput struct {
	LeadID                  int64           `json:"lead_id"`
	NotificationPreferences map[string]bool `json:"notification_preferences,omitempty"`
}

type CreateWaitlistEntryOutput struct {
	Success         bool   `json:"success"`
	WaitlistEntryID int64  `json:"waitlist_entry_id,omitempty"`
	Error           string `json:"error,omitempty"`
	Code            string `json:"code,omitempty"`
}

type CreateUserInput struct {
	Name        string `json:"name" validate:"required,min=3,max=200"`
	Email       string `json:"email" validate:"required,email,max=254"`
	PhoneNumber string `json:"phone_number" validate:"required,br_phone"`
	Password    string `json:"password" validate:"required,password"`
}

type UpdateUserInput struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=3,max=200"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	PhoneNumber *string `json:"phone_number,omitempty" validate:"omitempty,br_phone"`
	Password    *string `json:"password,omitempty" validate:"omitempty,password"`
}

// ErrorDetail é a forma serializável de uma falha: nunca carrega texto do banco.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  []ValidationError `json:"fields,omitempty"`
}

type CreateUserResult struct {
	Success bool         `json:"success"`
	User    *entity.User `json:"user,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

type UpdateUserResult struct {
	Success bool         `json:"success"`
	User    *entity.User `json:"user,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

type IdentificationInput struct {
	Name        string        `json:"name" validate:"required,min=3,max=200"`
	Email       string        `json:"email" validate:"required,email,max=254"`
	PhoneNumber string        `json:"phone_number" validate:"required,br_phone"`
	Password    string        `json:"password" validate:"required,password"`
	Brand       string        `json:"brand" validate:"max=200"`
	Description string        `json:"description" validate:"max=2000"`
	Origin      entity.Origin `json:"origin"`

	IP        string `json:"-"`
	Country   string `json:"-"`
	City      string `json:"-"`
	UserAgent string `json:"-"`
	Route     string `json:"-"`
}

type IdentificationOutput struct {
	LeadID int64                      `json:"lead_id"`
	UserID int64                      `json:"user_id"`
	State  entity.EnrollmentStepState `json:"state"`
}

type PaymentInput struct {
	LeadID        int64  `json:"lead_id" validate:"required,gt=0"`
	PaymentMethod string `json:"payment_method" validate:"required,oneof=PIX CREDIT_CARD BOLETO"`
	// Referência do gateway (id da cobrança); a integração fica fora deste serviço.
	Reference string `json:"reference" validate:"max=200"`
}

type PaymentOutput struct {
	LeadID            int64                      `json:"lead_id"`
	State             entity.EnrollmentStepState `json:"state"`
	WaitlistConverted bool                       `json:"waitlist_converted"`
}

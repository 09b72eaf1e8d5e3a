package entity

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	// IMPORTANTE: NÃO adicione imports de usecase ou infra aqui!
)

// Origin identifica o canal que trouxe o lead.
type Origin int

const (
	OriginSEOTool Origin = iota + 1
	OriginSEOArchive
	OriginEmail
	OriginFacebookAds
	OriginGoogleAds
	OriginPage
)

var originNames = map[Origin]string{
	OriginSEOTool:     "seo_tool",
	OriginSEOArchive:  "seo_archive",
	OriginEmail:       "email",
	OriginFacebookAds: "facebook_ads",
	OriginGoogleAds:   "google_ads",
	OriginPage:        "page",
}

func (o Origin) String() string {
	if name, ok := originNames[o]; ok {
		return name
	}
	return "unknown"
}

func (o Origin) Valid() bool {
	_, ok := originNames[o]
	return ok
}

// ParseOrigin aceita tanto o nome ("google_ads") quanto o número ("5").
func ParseOrigin(s string) (Origin, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for o, name := range originNames {
		if name == s {
			return o, nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && Origin(n).Valid() {
		return Origin(n), nil
	}
	return 0, fmt.Errorf("origin inválida: %q", s)
}

func (o Origin) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

func (o *Origin) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		if !Origin(n).Valid() {
			return fmt.Errorf("origin inválida: %d", n)
		}
		*o = Origin(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("origin deve ser número ou texto: %w", err)
	}
	parsed, err := ParseOrigin(s)
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// Entidade: Lead (raiz do agregado). Não conhece submissions nem waitlist.
type Lead struct {
	ID              int64     `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	Email           string    `json:"email" db:"email"`
	PhoneNumber     string    `json:"phone_number" db:"phone_number"`
	Brand           string    `json:"brand" db:"brand"`
	Description     string    `json:"description" db:"description"`
	CompanySize     string    `json:"company_size" db:"company_size"`
	CompanySegment  string    `json:"company_segment" db:"company_segment"`
	CompanyOnMarket string    `json:"company_on_market" db:"company_on_market"`
	Website         string    `json:"website" db:"website"`
	Origin          Origin    `json:"origin" db:"origin"`
	OriginFont      string    `json:"origin_font" db:"origin_font"`
	IP              string    `json:"ip" db:"ip"`
	Country         string    `json:"country" db:"country"`
	City            string    `json:"city" db:"city"`
	UserAgent       string    `json:"user_agent" db:"user_agent"`
	Route           string    `json:"route" db:"route"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// NormalizeEmail é a chave de deduplicação: sem espaços e em minúsculas.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HasEmail indica se o lead participa da deduplicação por email.
func (l *Lead) HasEmail() bool {
	return NormalizeEmail(l.Email) != ""
}

type LeadRepositoryInterface interface {
	FindByEmail(ctx context.Context, email string) (*Lead, error)
	FindByID(ctx context.Context, id int64) (*Lead, error)
	Create(ctx context.Context, lead *Lead) error
}

package entity

import (
	"errors"
	"regexp"
	"unicode"
)

type EnrollmentStep string

const (
	StepIdentification EnrollmentStep = "identification"
	StepPayment        EnrollmentStep = "payment"
)

// OriginFontEnrollment marca leads capturados pelo funil de matrícula.
const OriginFontEnrollment = "enrollment"

// Ordem fixa do funil.
var EnrollmentSteps = []EnrollmentStep{StepIdentification, StepPayment}

var ErrStepOutOfOrder = errors.New("etapa da matrícula fora de ordem")

func (s EnrollmentStep) Valid() bool {
	for _, step := range EnrollmentSteps {
		if s == step {
			return true
		}
	}
	return false
}

type EnrollmentStepState struct {
	LeadID         int64            `json:"lead_id"`
	CompletedSteps []EnrollmentStep `json:"completed_steps"`
	CurrentStep    EnrollmentStep   `json:"current_step"`
}

func NewEnrollmentStepState(leadID int64) EnrollmentStepState {
	return EnrollmentStepState{
		LeadID:         leadID,
		CompletedSteps: []EnrollmentStep{},
		CurrentStep:    StepIdentification,
	}
}

func (s EnrollmentStepState) Has(step EnrollmentStep) bool {
	for _, done := range s.CompletedSteps {
		if done == step {
			return true
		}
	}
	return false
}

// Finished indica que todas as etapas foram concluídas.
func (s EnrollmentStepState) Finished() bool {
	for _, step := range EnrollmentSteps {
		if !s.Has(step) {
			return false
		}
	}
	return true
}

// Complete marca a etapa como concluída. Repetir uma etapa já concluída é no-op;
// pular uma etapa anterior retorna ErrStepOutOfOrder.
func (s *EnrollmentStepState) Complete(step EnrollmentStep) error {
	if !step.Valid() {
		return ErrStepOutOfOrder
	}
	if s.Has(step) {
		return nil
	}
	for _, prev := range EnrollmentSteps {
		if prev == step {
			break
		}
		if !s.Has(prev) {
			return ErrStepOutOfOrder
		}
	}

	s.CompletedSteps = append(s.CompletedSteps, step)
	s.CurrentStep = s.nextStep()
	return nil
}

func (s EnrollmentStepState) nextStep() EnrollmentStep {
	for _, step := range EnrollmentSteps {
		if !s.Has(step) {
			return step
		}
	}
	return EnrollmentSteps[len(EnrollmentSteps)-1]
}

// DeriveEnrollmentState reconstrói o estado a partir das submissions de matrícula,
// na ordem em que foram gravadas. Registros fora de ordem são ignorados.
func DeriveEnrollmentState(leadID int64, submissions []*LeadSubmission) EnrollmentStepState {
	state := NewEnrollmentStepState(leadID)
	for _, sub := range submissions {
		if sub == nil || sub.Type != SubmissionEnrollment {
			continue
		}
		raw, _ := sub.Metadata["step"].(string)
		_ = state.Complete(EnrollmentStep(raw))
	}
	return state
}

func CanAccessPaymentStep(state EnrollmentStepState) bool {
	return state.Has(StepIdentification)
}

func IsWaitlisted(entry *WaitlistEntry) bool {
	return entry != nil && entry.Status == WaitlistActive
}

// IsEnrollmentLead vale para o lead criado pela matrícula e também para o que veio de
// outro funil e depois registrou alguma etapa da matrícula.
func IsEnrollmentLead(lead *Lead, submissions []*LeadSubmission) bool {
	if lead == nil {
		return false
	}
	if lead.OriginFont == OriginFontEnrollment {
		return true
	}
	for _, sub := range submissions {
		if sub != nil && sub.LeadID == lead.ID && sub.Type == SubmissionEnrollment {
			return true
		}
	}
	return false
}

var nonDigits = regexp.MustCompile(`\D`)

// IsValidBrazilianPhone aceita fixo (10 dígitos) ou celular (11 dígitos, começando com 9),
// com ou sem o código do país 55 e com qualquer máscara.
func IsValidBrazilianPhone(phone string) bool {
	cleaned := nonDigits.ReplaceAllString(phone, "")
	if (len(cleaned) == 12 || len(cleaned) == 13) && cleaned[:2] == "55" {
		cleaned = cleaned[2:]
	}
	if len(cleaned) != 10 && len(cleaned) != 11 {
		return false
	}

	// DDD nunca tem zero
	if cleaned[0] == '0' || cleaned[1] == '0' {
		return false
	}

	allEqual := true
	for i := 1; i < len(cleaned); i++ {
		if cleaned[i] != cleaned[0] {
			allEqual = false
			break
		}
	}
	if allEqual {
		return false
	}

	first := cleaned[2]
	if len(cleaned) == 11 {
		return first == '9'
	}
	return first >= '2' && first <= '5'
}

const (
	PasswordMinLength = 8
	// bcrypt ignora o que passar de 72 bytes
	PasswordMaxLength = 72
)

// IsValidPassword exige 8 a 72 bytes com ao menos uma minúscula, uma maiúscula e um dígito.
func IsValidPassword(password string) bool {
	if len(password) < PasswordMinLength || len(password) > PasswordMaxLength {
		return false
	}
	var lower, upper, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return lower && upper && digit
}

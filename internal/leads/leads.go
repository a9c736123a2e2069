// Package leads models prospective customers and their pipeline stage.
package leads

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"reftrack/internal/referrers"
	"reftrack/internal/timeframe"
)

// Stage is the pipeline stage of a lead. The enum is closed but the
// transition graph is not: any stage is reachable from any stage. That
// permissiveness matches observed operator behavior (leads get re-opened,
// purchases get reverted) and stays until business rules say otherwise.
type Stage string

const (
	StageNaBase    Stage = "NA_BASE"
	StageEmContato Stage = "EM_CONTATO"
	StageComprado  Stage = "COMPRADO"
	StageRejeitado Stage = "REJEITADO"
)

// StageOrder is the fixed display order for stage distributions.
var StageOrder = []Stage{StageNaBase, StageEmContato, StageComprado, StageRejeitado}

// StageLabels maps stages to their display labels.
var StageLabels = map[Stage]string{
	StageNaBase:    "Na Base",
	StageEmContato: "Em Contato",
	StageComprado:  "Comprado",
	StageRejeitado: "Rejeitado",
}

// Valid reports whether s is one of the four pipeline stages.
func (s Stage) Valid() bool {
	_, ok := StageLabels[s]
	return ok
}

// Label returns the display label, falling back to the raw value.
func (s Stage) Label() string {
	if label, ok := StageLabels[s]; ok {
		return label
	}
	return string(s)
}

// Lead is a prospective customer captured via a referral or direct
// channel. Stage is the only field mutated after creation.
type Lead struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Nome         string    `gorm:"not null" json:"nome"`
	Whatsapp     string    `gorm:"not null" json:"whatsapp"`
	ReferralCode *string   `gorm:"index;size:50" json:"referralCode"`
	Stage        Stage     `gorm:"not null;default:NA_BASE" json:"stage"`
	CreatedAt    time.Time `gorm:"index;not null" json:"createdAt"`
	IP           *string   `json:"ip"`
	UserAgent    *string   `json:"userAgent"`
}

// Enriched is a lead decorated with its stage label and resolved
// referrer, the shape every lead endpoint returns.
type Enriched struct {
	Lead
	StageLabel string              `json:"stageLabel"`
	Referrer   *referrers.Referrer `json:"referrer"`
}

// Enrich resolves display fields against a referrer map. A dangling
// referral code yields a nil referrer, never an error.
func Enrich(lead Lead, refs referrers.Map) Enriched {
	return Enriched{
		Lead:       lead,
		StageLabel: lead.Stage.Label(),
		Referrer:   refs.Lookup(lead.ReferralCode),
	}
}

// ErrLeadNotFound is returned when a lead lookup by id fails.
var ErrLeadNotFound = errors.New("lead not found")

// ValidationError reports field-level validation failures for lead input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "invalid lead input: " + strings.Join(parts, "; ")
}

var validate = validator.New()

// CreateInput is the payload for creating a lead.
type CreateInput struct {
	Nome         string `json:"nome" validate:"required,min=2"`
	Whatsapp     string `json:"whatsapp" validate:"required,min=8"`
	ReferralCode string `json:"referralCode" validate:"omitempty,min=2,max=50"`
	Stage        Stage  `json:"stage" validate:"omitempty,oneof=NA_BASE EM_CONTATO COMPRADO REJEITADO"`
}

// Validate normalizes and checks the input, returning field-level
// messages on failure. Values are never silently coerced.
func (in *CreateInput) Validate() error {
	in.Nome = strings.TrimSpace(in.Nome)
	in.Whatsapp = strings.TrimSpace(in.Whatsapp)
	in.ReferralCode = strings.TrimSpace(in.ReferralCode)

	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fieldName(fe.Field())] = fieldMessage(fe)
			}
			return &ValidationError{Fields: fields}
		}
		return err
	}
	return nil
}

func fieldName(structField string) string {
	switch structField {
	case "Nome":
		return "nome"
	case "Whatsapp":
		return "whatsapp"
	case "ReferralCode":
		return "referralCode"
	case "Stage":
		return "stage"
	}
	return structField
}

func fieldMessage(fe validator.FieldError) string {
	switch fieldName(fe.Field()) {
	case "nome":
		return "Informe o nome do lead."
	case "whatsapp":
		return "Informe um WhatsApp válido."
	case "referralCode":
		return "Código de indicação inválido."
	case "stage":
		return "Etapa inválida."
	}
	return "Valor inválido."
}

// Create validates the input and persists a new lead. The referral code
// is stored without checking the referrers table (weak reference).
func Create(db *gorm.DB, in CreateInput, ip, userAgent string) (*Lead, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	stage := in.Stage
	if stage == "" {
		stage = StageNaBase
	}

	lead := Lead{
		ID:        uuid.NewString(),
		Nome:      in.Nome,
		Whatsapp:  in.Whatsapp,
		Stage:     stage,
		CreatedAt: time.Now().UTC(),
	}
	if in.ReferralCode != "" {
		lead.ReferralCode = &in.ReferralCode
	}
	if ip != "" {
		lead.IP = &ip
	}
	if userAgent != "" {
		lead.UserAgent = &userAgent
	}

	if err := db.Create(&lead).Error; err != nil {
		return nil, fmt.Errorf("error creating lead: %w", err)
	}
	return &lead, nil
}

// UpdateStage moves a lead to the given stage. The stage is validated
// against the closed enum before any write; the transition itself is
// unconstrained. Returns ErrLeadNotFound for an unknown id.
func UpdateStage(db *gorm.DB, id string, stage Stage) (*Lead, error) {
	if !stage.Valid() {
		return nil, &ValidationError{Fields: map[string]string{"stage": "Etapa inválida."}}
	}

	var lead Lead
	if err := db.Where("id = ?", id).First(&lead).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("error loading lead %s: %w", id, err)
	}

	if err := db.Model(&lead).Update("stage", stage).Error; err != nil {
		return nil, fmt.Errorf("error updating lead stage: %w", err)
	}
	lead.Stage = stage
	return &lead, nil
}

// ListAll returns every lead, newest first.
func ListAll(db *gorm.DB) ([]Lead, error) {
	var results []Lead
	if err := db.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, fmt.Errorf("error listing leads: %w", err)
	}
	return results, nil
}

// InWindow returns the leads created inside the window, optionally
// restricted to one referral code.
func InWindow(db *gorm.DB, w timeframe.Window, referralCode string) ([]Lead, error) {
	query := db.Where("created_at BETWEEN ? AND ?", w.Start, w.End)
	if referralCode != "" {
		query = query.Where("referral_code = ?", referralCode)
	}

	var results []Lead
	if err := query.Order("created_at ASC").Find(&results).Error; err != nil {
		return nil, fmt.Errorf("error fetching leads in window: %w", err)
	}
	return results, nil
}

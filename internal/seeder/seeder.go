// Package seeder populates a database with realistic referral traffic
// for local development and dashboard demos.
package seeder

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"reftrack/internal/hits"
	"reftrack/internal/leads"
	"reftrack/internal/referrers"
)

var (
	devices   = []string{"mobile", "desktop", "tablet"}
	oses      = []string{"Windows", "macOS", "Android", "iOS", "Linux"}
	browsers  = []string{"Chrome", "Firefox", "Safari", "Edge", "Opera"}
	countries = []string{"BR", "US", "PT", "AR", "MX", "CO", "CL", "PE"}
	cities    = map[string][]string{
		"BR": {"São Paulo", "Rio de Janeiro", "Belo Horizonte", "Salvador", "Curitiba"},
		"US": {"New York", "Los Angeles", "Chicago", "Houston", "Phoenix"},
		"PT": {"Lisboa", "Porto", "Coimbra", "Braga"},
		"AR": {"Buenos Aires", "Córdoba", "Rosario"},
		"MX": {"Ciudad de México", "Guadalajara", "Monterrey"},
		"CO": {"Bogotá", "Medellín", "Cali"},
		"CL": {"Santiago", "Valparaíso"},
		"PE": {"Lima", "Arequipa"},
	}
	referrerURLs = []string{"google.com", "facebook.com", "instagram.com", "twitter.com", "linkedin.com", "youtube.com", ""}
	utmSources   = []string{"google", "facebook", "instagram", "email", "organic", ""}
	utmMediums   = []string{"cpc", "social", "email", "referral", ""}
	utmCampaigns = []string{"black_friday", "lancamento_2025", "remarketing", "influencer_joao", ""}
	screenSizes  = [][2]int{{1920, 1080}, {1366, 768}, {1440, 900}, {375, 812}, {414, 896}, {768, 1024}}

	stages       = []leads.Stage{leads.StageNaBase, leads.StageEmContato, leads.StageComprado, leads.StageRejeitado}
	stageWeights = []float64{0.4, 0.3, 0.2, 0.1}
)

// Seeder writes demo referrers, hits and leads.
type Seeder struct {
	DB        *gorm.DB
	Logger    *slog.Logger
	HitCount  int
	LeadCount int
}

// NewSeeder creates a seeder. Zero counts fall back to the defaults of
// 500 hits and 50 leads.
func NewSeeder(db *gorm.DB, logger *slog.Logger, hitCount, leadCount int) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	if hitCount <= 0 {
		hitCount = 500
	}
	if leadCount <= 0 {
		leadCount = 50
	}
	return &Seeder{DB: db, Logger: logger, HitCount: hitCount, LeadCount: leadCount}
}

// Run seeds the database. Existing referrers are reused; when none
// exist, a small test roster is created first.
func (s *Seeder) Run() error {
	start := time.Now()

	codes, err := s.ensureReferrers()
	if err != nil {
		return err
	}

	s.Logger.Info("Seeding hits...", slog.Int("count", s.HitCount))
	if err := s.seedHits(codes); err != nil {
		return err
	}

	s.Logger.Info("Seeding leads...", slog.Int("count", s.LeadCount))
	if err := s.seedLeads(codes); err != nil {
		return err
	}

	s.Logger.Info("Seeding completed", slog.Duration("elapsed", time.Since(start)))
	return nil
}

func (s *Seeder) ensureReferrers() ([]string, error) {
	existing, err := referrers.All(s.DB)
	if err != nil {
		return nil, err
	}
	if len(existing) == 0 {
		s.Logger.Info("No referrers found, creating test roster")
		existing = []referrers.Referrer{
			{ReferralCode: "joao-silva", Nome: "João Silva", Whatsapp: "11999999999"},
			{ReferralCode: "maria-santos", Nome: "Maria Santos", Whatsapp: "11888888888"},
			{ReferralCode: "pedro-costa", Nome: "Pedro Costa", Whatsapp: "11777777777"},
			{ReferralCode: "ana-oliveira", Nome: "Ana Oliveira", Whatsapp: "11666666666"},
			{ReferralCode: "carlos-ferreira", Nome: "Carlos Ferreira", Whatsapp: "11555555555"},
		}
		for i := range existing {
			existing[i].CreatedAt = time.Now().UTC()
			if err := s.DB.Create(&existing[i]).Error; err != nil {
				return nil, fmt.Errorf("error creating test referrer: %w", err)
			}
		}
	}

	codes := make([]string, 0, len(existing))
	for _, ref := range existing {
		codes = append(codes, ref.ReferralCode)
	}
	return codes, nil
}

func (s *Seeder) seedHits(codes []string) error {
	rows := make([]hits.Hit, 0, s.HitCount)
	for i := 0; i < s.HitCount; i++ {
		country := pick(countries)
		cityList := cities[country]
		size := screenSizes[rand.IntN(len(screenSizes))]

		rows = append(rows, hits.Hit{
			ID:           uuid.NewString(),
			CreatedAt:    randomPastTime(90),
			IP:           str(randomIP()),
			UserAgent:    str(fmt.Sprintf("Mozilla/5.0 (%s) AppleWebKit/537.36", pick(oses))),
			ReferralCode: str(pick(codes)),
			ReferrerURL:  strOrNil(pick(referrerURLs)),
			UTMSource:    strOrNil(pick(utmSources)),
			UTMMedium:    strOrNil(pick(utmMediums)),
			UTMCampaign:  strOrNil(pick(utmCampaigns)),
			DeviceType:   str(pick(devices)),
			OS:           str(pick(oses)),
			Browser:      str(pick(browsers)),
			ScreenWidth:  intPtr(size[0]),
			ScreenHeight: intPtr(size[1]),
			Country:      str(country),
			City:         str(pick(cityList)),
			Region:       str(country),
			Language:     str(languageFor(country)),
			Timezone:     str(timezoneFor(country)),
		})
	}

	if err := s.DB.CreateInBatches(rows, 100).Error; err != nil {
		return fmt.Errorf("error seeding hits: %w", err)
	}
	return nil
}

func (s *Seeder) seedLeads(codes []string) error {
	rows := make([]leads.Lead, 0, s.LeadCount)
	for i := 0; i < s.LeadCount; i++ {
		lead := leads.Lead{
			ID:        uuid.NewString(),
			Nome:      fmt.Sprintf("Lead Teste %d", i+1),
			Whatsapp:  fmt.Sprintf("119%08d", rand.IntN(100000000)),
			Stage:     weightedStage(),
			CreatedAt: randomPastTime(60),
			IP:        str(randomIP()),
			UserAgent: str(fmt.Sprintf("Mozilla/5.0 (%s) AppleWebKit/537.36", pick(oses))),
		}
		// Roughly one in six leads arrives without attribution.
		if rand.IntN(len(codes)+1) < len(codes) {
			code := pick(codes)
			lead.ReferralCode = &code
		}
		rows = append(rows, lead)
	}

	if err := s.DB.CreateInBatches(rows, 100).Error; err != nil {
		return fmt.Errorf("error seeding leads: %w", err)
	}
	return nil
}

func weightedStage() leads.Stage {
	r := rand.Float64()
	cumulative := 0.0
	for i, w := range stageWeights {
		cumulative += w
		if r <= cumulative {
			return stages[i]
		}
	}
	return leads.StageNaBase
}

func randomPastTime(daysAgo int) time.Time {
	now := time.Now().UTC()
	back := time.Duration(rand.IntN(daysAgo)) * 24 * time.Hour
	jitter := time.Duration(rand.IntN(24*60)) * time.Minute
	return now.Add(-back - jitter)
}

func randomIP() string {
	return fmt.Sprintf("%d.%d.%d.%d", rand.IntN(255)+1, rand.IntN(256), rand.IntN(256), rand.IntN(256))
}

func languageFor(country string) string {
	switch country {
	case "BR":
		return "pt-BR"
	case "US":
		return "en-US"
	}
	return "es"
}

func timezoneFor(country string) string {
	switch country {
	case "BR":
		return "America/Sao_Paulo"
	case "US":
		return "America/New_York"
	}
	return "Europe/Lisbon"
}

func pick(values []string) string {
	return values[rand.IntN(len(values))]
}

func str(s string) *string {
	return &s
}

func strOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func intPtr(n int) *int {
	return &n
}

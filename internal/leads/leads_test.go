package leads_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reftrack/internal/leads"
	"reftrack/internal/referrers"
	"reftrack/internal/testsupport"
	"reftrack/internal/timeframe"
)

func TestCreate(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	t.Run("persists with the default stage", func(t *testing.T) {
		lead, err := leads.Create(db, leads.CreateInput{
			Nome:         "Maria Santos",
			Whatsapp:     "11988887777",
			ReferralCode: "joao-silva",
		}, "203.0.113.42", "Mozilla/5.0")
		require.NoError(t, err)

		assert.NotEmpty(t, lead.ID)
		assert.Equal(t, leads.StageNaBase, lead.Stage)
		require.NotNil(t, lead.ReferralCode)
		assert.Equal(t, "joao-silva", *lead.ReferralCode)
		require.NotNil(t, lead.IP)
		assert.Equal(t, "203.0.113.42", *lead.IP)
		assert.False(t, lead.CreatedAt.IsZero())
	})

	t.Run("accepts an explicit stage", func(t *testing.T) {
		lead, err := leads.Create(db, leads.CreateInput{
			Nome:     "Pedro Costa",
			Whatsapp: "11977776666",
			Stage:    leads.StageEmContato,
		}, "", "")
		require.NoError(t, err)
		assert.Equal(t, leads.StageEmContato, lead.Stage)
		assert.Nil(t, lead.ReferralCode)
		assert.Nil(t, lead.IP)
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		lead, err := leads.Create(db, leads.CreateInput{
			Nome:     "  Ana Oliveira  ",
			Whatsapp: " 11966665555 ",
		}, "", "")
		require.NoError(t, err)
		assert.Equal(t, "Ana Oliveira", lead.Nome)
		assert.Equal(t, "11966665555", lead.Whatsapp)
	})

	t.Run("rejects missing fields with per-field messages", func(t *testing.T) {
		_, err := leads.Create(db, leads.CreateInput{Nome: "   "}, "", "")
		require.Error(t, err)

		var verr *leads.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "Informe o nome do lead.", verr.Fields["nome"])
		assert.Equal(t, "Informe um WhatsApp válido.", verr.Fields["whatsapp"])
	})

	t.Run("rejects a short whatsapp", func(t *testing.T) {
		_, err := leads.Create(db, leads.CreateInput{Nome: "Maria", Whatsapp: "123"}, "", "")
		var verr *leads.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "Informe um WhatsApp válido.", verr.Fields["whatsapp"])
		assert.NotContains(t, verr.Fields, "nome")
	})

	t.Run("rejects an unknown stage", func(t *testing.T) {
		_, err := leads.Create(db, leads.CreateInput{
			Nome:     "Maria",
			Whatsapp: "11988887777",
			Stage:    "GANHO",
		}, "", "")
		var verr *leads.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "Etapa inválida.", verr.Fields["stage"])
	})
}

func TestUpdateStage(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	t.Run("moves between arbitrary stages", func(t *testing.T) {
		lead := testsupport.CreateTestLead(t, db, "Maria", "", testsupport.WithLeadStage(leads.StageComprado))

		// Backwards transition is allowed; the pipeline has no ordering.
		updated, err := leads.UpdateStage(db, lead.ID, leads.StageNaBase)
		require.NoError(t, err)
		assert.Equal(t, leads.StageNaBase, updated.Stage)

		var reloaded leads.Lead
		require.NoError(t, db.First(&reloaded, "id = ?", lead.ID).Error)
		assert.Equal(t, leads.StageNaBase, reloaded.Stage)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := leads.UpdateStage(db, "missing-id", leads.StageComprado)
		assert.ErrorIs(t, err, leads.ErrLeadNotFound)
	})

	t.Run("invalid stage is rejected before any lookup", func(t *testing.T) {
		_, err := leads.UpdateStage(db, "whatever", "INVALIDO")
		var verr *leads.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.NotErrorIs(t, err, leads.ErrLeadNotFound)
	})
}

func TestStage(t *testing.T) {
	assert.Equal(t, []leads.Stage{
		leads.StageNaBase, leads.StageEmContato, leads.StageComprado, leads.StageRejeitado,
	}, leads.StageOrder)

	assert.Equal(t, "Na Base", leads.StageNaBase.Label())
	assert.Equal(t, "Em Contato", leads.StageEmContato.Label())
	assert.Equal(t, "Comprado", leads.StageComprado.Label())
	assert.Equal(t, "Rejeitado", leads.StageRejeitado.Label())

	assert.True(t, leads.StageComprado.Valid())
	assert.False(t, leads.Stage("GANHO").Valid())
}

func TestEnrich(t *testing.T) {
	refs := referrers.BuildMap([]referrers.Referrer{
		{ReferralCode: "joao", Nome: "João Silva", Whatsapp: "11999999999"},
	})

	t.Run("joins the owning referrer", func(t *testing.T) {
		code := "joao"
		enriched := leads.Enrich(leads.Lead{ID: "l1", Stage: leads.StageEmContato, ReferralCode: &code}, refs)
		assert.Equal(t, "Em Contato", enriched.StageLabel)
		require.NotNil(t, enriched.Referrer)
		assert.Equal(t, "João Silva", enriched.Referrer.Nome)
	})

	t.Run("dangling code leaves the referrer nil", func(t *testing.T) {
		code := "ghost"
		enriched := leads.Enrich(leads.Lead{ID: "l2", Stage: leads.StageNaBase, ReferralCode: &code}, refs)
		assert.Nil(t, enriched.Referrer)
	})
}

func TestListAllAndInWindow(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	base := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	older := testsupport.CreateTestLead(t, db, "Older", "joao", testsupport.WithLeadTime(base.AddDate(0, 0, -10)))
	newer := testsupport.CreateTestLead(t, db, "Newer", "maria", testsupport.WithLeadTime(base))

	t.Run("list all newest first", func(t *testing.T) {
		all, err := leads.ListAll(db)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, newer.ID, all[0].ID)
		assert.Equal(t, older.ID, all[1].ID)
	})

	t.Run("window and code restrict", func(t *testing.T) {
		w := timeframe.Window{Start: base.AddDate(0, 0, -1), End: base.AddDate(0, 0, 1)}

		inWindow, err := leads.InWindow(db, w, "")
		require.NoError(t, err)
		require.Len(t, inWindow, 1)
		assert.Equal(t, newer.ID, inWindow[0].ID)

		none, err := leads.InWindow(db, w, "joao")
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

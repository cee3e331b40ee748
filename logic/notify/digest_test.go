package notify

import (
	"context"
	"testing"
	"time"

	"procurement-radar/types"
	"procurement-radar/vars"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRenderDigest(t *testing.T) {
	customer := "АО <Полюс>"
	lots := []types.Lot{
		{
			LotNumber: "32514",
			Title:     "Кабель ВВГнг",
			Budget:    decimal.RequireFromString("1250000.40"),
			Deadline:  time.Date(2026, 3, 20, 18, 0, 0, 0, time.UTC),
			Customer:  &customer,
			URL:       "https://b2b.example/32514",
		},
		{LotNumber: "77", Title: "Болты", Budget: decimal.NewFromInt(900)},
	}

	body, err := RenderDigest(lots)
	require.NoError(t, err)

	assert.Contains(t, body, "<b>Кабель ВВГнг</b>")
	assert.Contains(t, body, "1 250 000 ₽")
	assert.Contains(t, body, "дедлайн 20.03.2026")
	assert.Contains(t, body, "заказчик АО &lt;Полюс&gt;")
	assert.Contains(t, body, "№ 32514")
	assert.Contains(t, body, `href="https://b2b.example/32514"`)
	assert.Contains(t, body, "заказчик -, № 77")
	assert.Contains(t, body, vars.AppName)
}

func TestFormatRub(t *testing.T) {
	assert.Equal(t, "0 ₽", FormatRub(decimal.Zero))
	assert.Equal(t, "999 ₽", FormatRub(decimal.NewFromInt(999)))
	assert.Equal(t, "1 000 ₽", FormatRub(decimal.NewFromInt(1000)))
	assert.Equal(t, "12 345 679 ₽", FormatRub(decimal.RequireFromString("12345678.5")))
	assert.Equal(t, "-1 500 ₽", FormatRub(decimal.NewFromInt(-1500)))
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "Новые закупки (1)", Subject(1))
}

func TestSMTPSenderRequiresConfig(t *testing.T) {
	s := NewSMTPSender(vars.SMTPConfig{Host: "smtp.example"}, time.Second, zap.NewNop())

	err := s.Send(context.Background(), "s", "<p>b</p>", []string{"a@corp.ru"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	err = s.Send(context.Background(), "s", "<p>b</p>", []string{" "})
	assert.Error(t, err)
}

package alert

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/valshi/whaletracker/internal/model"
)

func testRecord() model.TradeRecord {
	return model.TradeRecord{
		ID:       uuid.New(),
		Ticker:   "FED-24DEC",
		Side:     model.SideYes,
		Price:    decimal.RequireFromString("0.8"),
		Count:    1000,
		Notional: decimal.NewFromInt(800),
		TSMillis: 1705329000000, // 2024-01-15 14:30:00 UTC
	}
}

func TestRender_YesSide(t *testing.T) {
	got := Render(testRecord(), "Fed decision in December?", "UTC", true)

	want := "🟢 Fed decision in December?\n💰 $800 • 1000 @ $0.80 • Jan 15 14:30\n⚡ Real-time via WebSocket"
	if got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}

func TestRender_NoSide(t *testing.T) {
	rec := testRecord()
	rec.Side = model.SideNo

	got := Render(rec, "Fed decision in December?", "UTC", true)
	if !strings.HasPrefix(got, "🔴 ") {
		t.Errorf("no-side alert should start with red flag, got %q", got)
	}
}

func TestRender_TitleFallback(t *testing.T) {
	got := Render(testRecord(), "", "UTC", true)
	if !strings.Contains(got, "FED-24DEC") {
		t.Errorf("empty title should fall back to ticker, got %q", got)
	}
}

func TestRender_Timezone(t *testing.T) {
	got := Render(testRecord(), "Fed decision?", "America/New_York", true)
	if !strings.Contains(got, "Jan 15 09:30") {
		t.Errorf("expected time in New York zone, got %q", got)
	}
}

func TestRender_UnknownTimezoneFallsBackToUTC(t *testing.T) {
	got := Render(testRecord(), "Fed decision?", "Mars/Olympus_Mons", true)
	if !strings.Contains(got, "Jan 15 14:30") {
		t.Errorf("unknown zone should render UTC, got %q", got)
	}
}

func TestRender_PolledFooter(t *testing.T) {
	got := Render(testRecord(), "Fed decision?", "UTC", false)
	if !strings.Contains(got, "REST poll") {
		t.Errorf("polled alert should carry poll footer, got %q", got)
	}
	if strings.Contains(got, "WebSocket") {
		t.Errorf("polled alert should not claim real-time delivery, got %q", got)
	}
}

func TestRender_NotionalRounded(t *testing.T) {
	rec := testRecord()
	rec.Notional = decimal.RequireFromString("1234567.80")

	got := Render(rec, "Big market", "UTC", true)
	if !strings.Contains(got, "$1,234,568 •") {
		t.Errorf("notional should be grouped and rounded, got %q", got)
	}
}

func TestGroupThousands(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0"},
		{"500", "500"},
		{"5000", "5,000"},
		{"1234567", "1,234,567"},
		{"999.49", "999"},
		{"999.5", "1,000"},
		{"-12345", "-12,345"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := groupThousands(decimal.RequireFromString(tt.in))
			if got != tt.want {
				t.Errorf("groupThousands(%s) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

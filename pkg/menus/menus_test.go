package menus

import (
	"testing"

	"openf1dashboard/pkg/settings"
)

func TestFlagForButton_roundTrip(t *testing.T) {
	enabled := settings.AllEnabled()
	disabled := settings.AllDisabled()
	for _, flag := range orderedFlags {
		for _, a := range []settings.Alerts{enabled, disabled} {
			label := toggleButtonLabel(flag, a[flag])
			got, ok := FlagForButton(label)
			if !ok || got != flag {
				t.Errorf("%q: mapped to %q/%v, want %q", label, got, ok, flag)
			}
		}
	}
}

func TestFlagForButton_rejectsOtherText(t *testing.T) {
	for _, text := range []string{"", "Red", "Toggle Purple 🔔", "/alerts", "toggle Red 🔔"} {
		if flag, ok := FlagForButton(text); ok {
			t.Errorf("%q: unexpectedly mapped to %q", text, flag)
		}
	}
}

func TestAlertsKeyboard(t *testing.T) {
	kb := AlertsKeyboard(settings.AllDisabled())
	if len(kb.Keyboard) != len(orderedFlags) {
		t.Fatalf("expected %d rows, found %d", len(orderedFlags), len(kb.Keyboard))
	}
	for _, row := range kb.Keyboard {
		if len(row) != 1 {
			t.Fatalf("expected one button per row, found %d", len(row))
		}
		if _, ok := FlagForButton(row[0].Text); !ok {
			t.Errorf("button %q does not map back to a flag", row[0].Text)
		}
	}
}

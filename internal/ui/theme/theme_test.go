package theme

import (
	"testing"

	"github.com/dori/quadro/internal/model"
)

func TestApply(t *testing.T) {
	defer SetTheme(Dark)

	Apply(model.ThemeLight)
	if Current.Theme.Name != "light" {
		t.Errorf("theme = %q, want light", Current.Theme.Name)
	}
	Apply(model.ThemeDark)
	if Current.Theme.Name != "dark" {
		t.Errorf("theme = %q, want dark", Current.Theme.Name)
	}
	if ForMode("") != Dark {
		t.Error("unset preference should map to dark")
	}
}

func TestPriorityColor(t *testing.T) {
	if Dark.PriorityColor(model.PriorityHigh) != Dark.PriorityHigh {
		t.Error("high priority color mismatch")
	}
	if Light.PriorityColor("") != Light.PriorityMedium {
		t.Error("unknown priority should use medium color")
	}
}

package service

import (
	"strings"
	"testing"
	"text/template"
)

func TestUnitName(t *testing.T) {
	if got := UnitName("notes"); got != "vigil-notes.service" {
		t.Errorf("UnitName = %q, want vigil-notes.service", got)
	}
}

func TestUnitTemplateRenders(t *testing.T) {
	tmpl, err := template.New("unit").Parse(unitTemplate)
	if err != nil {
		t.Fatalf("template does not parse: %v", err)
	}

	var out strings.Builder
	data := struct {
		Name       string
		Executable string
	}{Name: "notes", Executable: "/usr/local/bin/vigil"}
	if err := tmpl.Execute(&out, data); err != nil {
		t.Fatalf("template does not render: %v", err)
	}

	unit := out.String()
	if !strings.Contains(unit, "ExecStart=/usr/local/bin/vigil daemon notes") {
		t.Errorf("unexpected ExecStart in unit:\n%s", unit)
	}
	if !strings.Contains(unit, "Restart=on-failure") {
		t.Error("unit must restart on failure")
	}
}

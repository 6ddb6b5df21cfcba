package harmonize

import (
	"strings"

	"github.com/forPelevin/gomoji"
)

// Substitution replaces every occurrence of From in a rewritten label.
type Substitution struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Override assigns Label to every transaction whose original label contains Contains,
// without asking the label service.
type Override struct {
	Contains string `yaml:"contains"`
	Label    string `yaml:"label"`
}

// DefaultSubstitutions are the banking-term replacements applied to service output when
// none are configured.
func DefaultSubstitutions() []Substitution {
	return []Substitution{
		{From: "PRLV SEPA", To: "Prélèvement "},
		{From: "VIR SEPA", To: "Virement "},
		{From: "CARTE ", To: "Paiement carte "},
		{From: "CB ", To: "Carte bancaire "},
	}
}

// cleanLabel normalizes a label returned by the service. An empty result means the
// service gave nothing usable.
func cleanLabel(label string, substitutions []Substitution) string {
	label = gomoji.RemoveEmojis(label)
	for _, s := range substitutions {
		if s.From == "" {
			continue
		}
		label = strings.ReplaceAll(label, s.From, s.To)
	}
	return strings.Join(strings.Fields(label), " ")
}

func matchOverride(label string, overrides []Override) (string, bool) {
	for _, o := range overrides {
		if o.Contains != "" && o.Label != "" && strings.Contains(label, o.Contains) {
			return o.Label, true
		}
	}
	return "", false
}

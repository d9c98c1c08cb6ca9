package view

import (
	"fmt"
	"io"
	"strings"
)

// Section is a titled block of the dashboard.
type Section struct {
	Title string
	Lines []string
}

// Sections lays the model out in display order. The loading model has none.
func Sections(m Model) []Section {
	if m.Loading {
		return nil
	}

	var out []Section
	if m.Stale {
		out = append(out, Section{Lines: []string{"Mostrando datos guardados del " + m.FetchedAt + "."}})
	}

	top := Section{Title: "Top Negocios"}
	for _, tm := range m.TopMerchants {
		top.Lines = append(top.Lines, fmt.Sprintf("%d. %s", tm.Rank, tm.Name))
	}
	out = append(out,
		top,
		Section{Title: "Canal Favorito", Lines: []string{
			"Digital: " + m.DigitalPct + "%",
			"Físico: " + m.PhysicalPct + "%",
			"Prefieres la eficiencia de las plataformas digitales.",
		}},
		Section{Title: "¿Qué tan predecible eres?", Lines: []string{
			"Tu gasto es " + m.Predictability + "% constante, con algunos picos de consumo marcados por eventos.",
		}},
		Section{Title: "Tus prioridades", Lines: append([]string{"Tu dinero habla:"}, m.Priorities...)},
		Section{Title: "Gasto más icónico", Lines: []string{m.IconicMessage}},
	)

	if m.Predictions != nil {
		lines := []string{"Total estimado: $" + m.Predictions.Total, "Suscripciones esperadas:"}
		if len(m.Predictions.Subscriptions) == 0 {
			lines = append(lines, NoSubscriptionsText)
		}
		for _, s := range m.Predictions.Subscriptions {
			lines = append(lines, "• "+s)
		}
		out = append(out, Section{Title: "Predicciones del siguiente mes", Lines: lines})
	}
	return out
}

// WriteText renders the model as plain text.
func WriteText(w io.Writer, m Model) error {
	if m.Loading {
		_, err := io.WriteString(w, LoadingText+"\n")
		return err
	}

	var b strings.Builder
	b.WriteString("hey, Wrap\n")
	for _, s := range Sections(m) {
		b.WriteString("\n")
		if s.Title != "" {
			b.WriteString(s.Title + "\n")
		}
		for _, l := range s.Lines {
			b.WriteString(l + "\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

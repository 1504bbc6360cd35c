package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/hotspot-trainer/pkg/grading"
	"github.com/jwebster45206/hotspot-trainer/pkg/state"
)

const tipWidth = 72

var (
	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")) // pink

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

func gradeStyle(g grading.Grade) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(g.Color))
}

// renderResult prints the outcome of a finished session.
func renderResult(w io.Writer, gs state.GameSession) {
	grade := grading.CalculateGrade(gs.Score)

	fmt.Fprintln(w, headingStyle.Render("Result: "+gs.ScenarioID))
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Grade:    "), gradeStyle(grade).Render(grade.Grade+" "+grade.Label))
	fmt.Fprintf(w, "%s %d\n", labelStyle.Render("Safety:   "), gs.Score.SafetyPoints)
	fmt.Fprintf(w, "%s %d\n", labelStyle.Render("Risk:     "), gs.Score.RiskPoints)
	fmt.Fprintf(w, "%s %d/%d\n", labelStyle.Render("Correct:  "), gs.Score.CorrectDecisions, gs.Score.DecisionsCount)
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Ended on: "), gs.CurrentSceneID)

	if len(gs.Badges) > 0 {
		names := make([]string, 0, len(gs.Badges))
		for _, b := range gs.Badges {
			name := b.Name
			if name == "" {
				name = b.ID
			}
			names = append(names, name)
		}
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Badges:   "), strings.Join(names, ", "))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, headingStyle.Render("Tips"))
	for _, t := range grading.SecurityTips(gs) {
		wrapped := wordwrap.String(t.Text(), tipWidth-2)
		fmt.Fprintf(w, "- %s\n", strings.ReplaceAll(wrapped, "\n", "\n  "))
	}
}

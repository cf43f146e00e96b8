package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/crushbase/redeploy/internal/deploy"
	"github.com/crushbase/redeploy/internal/session"
)

// RenderReport formats a deployment report for the terminal
func RenderReport(report *deploy.Report) string {
	var sb strings.Builder

	header := fmt.Sprintf("%s  %s", report.ID, report.App)
	if report.DryRun {
		header += SubtleStyle.Render("  (dry run)")
	}

	sb.WriteString(TitleStyle.Render(header) + "\n")

	if report.Success {
		sb.WriteString(SuccessStyle.Render("succeeded"))
	} else {
		sb.WriteString(ErrorStyle.Render("failed"))
	}

	sb.WriteString(SubtleStyle.Render(fmt.Sprintf("  %s  took %s\n",
		report.StartedAt.Format(time.RFC3339),
		report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))))
	sb.WriteString("\n")

	for _, step := range report.Steps {
		var line string

		switch step.Status {
		case deploy.StepOK:
			line = SuccessStyle.Render("✓ " + step.Name)
		case deploy.StepWarned:
			line = WarningStyle.Render("! "+step.Name) + SubtleStyle.Render("  "+step.Error)
		case deploy.StepFailed:
			line = ErrorStyle.Render("✗ "+step.Name) + SubtleStyle.Render("  "+step.Error)
		case deploy.StepSkipped:
			line = SubtleStyle.Render("- " + step.Name + "  skipped")
		}

		if step.Duration > 0 {
			line += SubtleStyle.Render(fmt.Sprintf("  (%s)", step.Duration.Round(time.Millisecond)))
		}

		sb.WriteString(line + "\n")
	}

	if report.Commit != "" {
		sb.WriteString("\n" + SubtleStyle.Render("commit "+report.Commit) + "\n")
	}

	return sb.String()
}

// RenderSessionStatus formats a session's deployment metadata
func RenderSessionStatus(metadata *session.Metadata, status session.Status) string {
	var statusText string

	switch status {
	case session.StatusRunning:
		statusText = SuccessStyle.Render(string(status))
	case session.StatusFailed:
		statusText = ErrorStyle.Render(string(status))
	default:
		statusText = SubtleStyle.Render(string(status))
	}

	rows := []string{
		TitleStyle.Render(metadata.AppName),
		fmt.Sprintf("session     %s  %s", metadata.SessionName, statusText),
		fmt.Sprintf("checkout    %s", metadata.CheckoutPath),
		fmt.Sprintf("entrypoint  %s", metadata.Entrypoint),
	}

	if metadata.Commit != "" {
		rows = append(rows, fmt.Sprintf("commit      %s", metadata.Commit))
	}

	if metadata.DeploymentID != "" {
		rows = append(rows, fmt.Sprintf("last run    %s", metadata.DeploymentID))
	}

	if !metadata.LastDeployedAt.IsZero() {
		rows = append(rows, SubtleStyle.Render("deployed    "+metadata.LastDeployedAt.Format(time.RFC3339)))
	}

	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

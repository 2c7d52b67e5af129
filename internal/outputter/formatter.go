package outputter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rodaine/table"

	"adriskmap/internal/domain"
)

var (
	headerFormatter = color.New(color.FgGreen, color.Underline).SprintfFunc()
	firstColumn     = color.New(color.FgYellow).SprintfFunc()
	criticalColor   = color.New(color.FgRed, color.Bold).SprintFunc()
	highColor       = color.New(color.FgHiRed).SprintFunc()
	mediumColor     = color.New(color.FgHiYellow).SprintFunc()
	lowColor        = color.New(color.FgGreen).SprintFunc()
)

// Console renders analysis results for a terminal
type Console struct {
	w io.Writer
}

// NewConsole returns a console writing to w, or stdout when w is nil.
func NewConsole(w io.Writer) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{w: w}
}

// DisplayHeader prints a titled rule. An empty title prints the rule alone.
func (c *Console) DisplayHeader(title string) {
	if title != "" {
		fmt.Fprintln(c.w, "\n"+strings.Repeat("═", ruleWidth))
		fmt.Fprintln(c.w, title)
	}
	fmt.Fprintln(c.w, strings.Repeat("═", ruleWidth))
}

// Render prints every stage of result. Stage durations are looked up in timings
// by domain.Step.OperationName and omitted when absent.
func (c *Console) Render(result *domain.AnalysisResult, timings map[string]time.Duration) {
	c.DisplayHeader(fmt.Sprintf("📊 ACTIVE DIRECTORY RISK ANALYSIS: %s", result.Summary.Domain))
	fmt.Fprint(c.w, FormatSummary(result.Summary))

	stages := []struct {
		step domain.Step
		body string
	}{
		{domain.Step2RiskScores, c.scoresTable(result.Scores)},
		{domain.Step3RelationshipGraph, FormatGraphStats(result.Graph)},
		{domain.Step4AttackPaths, c.attackPathsTable(result.AttackPaths)},
		{domain.Step5Recommendations, c.recommendationsTable(result.Recommendations)},
	}
	for _, s := range stages {
		fmt.Fprint(c.w, FormatStepOutput(s.step, s.body, timings[s.step.OperationName()]))
	}

	c.DisplayHeader("")
	fmt.Fprintf(c.w, "Overall risk: %s\n", ColorizeClassification(result.Scores))
}

func (c *Console) scoresTable(scores domain.RiskScoreSet) string {
	var sb strings.Builder
	tbl := c.newTable(&sb, "Category", "Score")
	for _, cat := range scores.Categories() {
		tbl.AddRow(cat.Name, cat.Score)
	}
	tbl.AddRow("overall", fmt.Sprintf("%d/100", scores.Overall))
	tbl.Print()
	sb.WriteString(fmt.Sprintf("\nClassification: %s\n", ColorizeClassification(scores)))
	return sb.String()
}

func (c *Console) attackPathsTable(paths []domain.AttackPath) string {
	if len(paths) == 0 {
		return "✅ No attack paths detected\n"
	}
	var sb strings.Builder
	tbl := c.newTable(&sb, "Severity", "Type", "Path", "Description")
	for _, p := range paths {
		tbl.AddRow(
			fmt.Sprintf("%s %s", GetSeverityIcon(p.Severity), ColorizeSeverity(p.Severity)),
			p.Type,
			FormatPathFlow(p),
			p.Description,
		)
	}
	tbl.Print()
	return sb.String()
}

func (c *Console) recommendationsTable(recs []domain.Recommendation) string {
	var sb strings.Builder
	tbl := c.newTable(&sb, "Category", "Count", "Recommendation")
	for _, r := range recs {
		count := "-"
		if r.Count > 0 {
			count = fmt.Sprintf("%d", r.Count)
		}
		tbl.AddRow(r.Category, count, r.Message)
	}
	tbl.Print()
	return sb.String()
}

func (c *Console) newTable(w io.Writer, columns ...interface{}) table.Table {
	tbl := table.New(columns...)
	tbl.WithWriter(w)
	tbl.WithHeaderFormatter(headerFormatter).WithFirstColumnFormatter(firstColumn)
	return tbl
}

// FormatSummary renders the aggregate counts.
func FormatSummary(s domain.Summary) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("\n👤 Users: %d   🖥️  Computers: %d (%d DCs)   ⚙️  Service accounts: %d\n",
		s.TotalUsers, s.TotalComputers, s.DomainControllers, s.ServiceAccounts))
	sb.WriteString(fmt.Sprintf("   • Users with SPNs:            %d\n", s.UsersWithSPNs))
	sb.WriteString(fmt.Sprintf("   • Users with delegation:      %d\n", s.UsersWithDelegation))
	sb.WriteString(fmt.Sprintf("   • Computers with delegation:  %d\n", s.ComputersWithDelegation))
	sb.WriteString(fmt.Sprintf("   • Weak encryption:            %d\n", s.WeakEncryption))
	sb.WriteString(fmt.Sprintf("   • Domain Admins:              %d (%d unprotected)\n", s.DomainAdmins, s.UnprotectedAdmins))
	sb.WriteString(fmt.Sprintf("   • Inactive users:             %d\n", s.InactiveUsers))
	sb.WriteString(fmt.Sprintf("   • Stale passwords:            %d\n", s.StalePasswords))
	sb.WriteString(fmt.Sprintf("   • NTLM events:                %d\n", s.NTLMEvents))
	if s.KrbtgtPasswordAgeDays != nil {
		status := "ok"
		if s.KrbtgtRotationOverdue {
			status = "rotation overdue"
		}
		sb.WriteString(fmt.Sprintf("   • krbtgt password age:        %d days (%s)\n", *s.KrbtgtPasswordAgeDays, status))
	}
	sb.WriteString(fmt.Sprintf("\n🔗 Attack paths: %d critical, %d high, %d medium\n",
		s.AttackPathsBySeverity[domain.SeverityCritical],
		s.AttackPathsBySeverity[domain.SeverityHigh],
		s.AttackPathsBySeverity[domain.SeverityMedium]))
	return sb.String()
}

// FormatGraphStats renders node and edge counts by kind.
func FormatGraphStats(g *domain.Graph) string {
	if g == nil {
		return "No graph built\n"
	}
	kinds := map[domain.NodeKind]int{}
	for _, n := range g.Nodes {
		kinds[n.Kind]++
	}
	flagged := 0
	for _, e := range g.Edges {
		if e.AttackPath {
			flagged++
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Nodes: %d (users %d, groups %d, computers %d)\n",
		len(g.Nodes), kinds[domain.NodeKindUser], kinds[domain.NodeKindGroup], kinds[domain.NodeKindComputer]))
	sb.WriteString(fmt.Sprintf("Edges: %d (%d on attack paths)\n", len(g.Edges), flagged))
	return sb.String()
}

// ColorizeSeverity colors a severity label.
func ColorizeSeverity(severity domain.Severity) string {
	switch severity {
	case domain.SeverityCritical:
		return criticalColor(strings.ToUpper(string(severity)))
	case domain.SeverityHigh:
		return highColor(strings.ToUpper(string(severity)))
	default:
		return mediumColor(strings.ToUpper(string(severity)))
	}
}

// ColorizeClassification colors the overall score and its label.
func ColorizeClassification(scores domain.RiskScoreSet) string {
	label := fmt.Sprintf("%d/100 %s", scores.Overall, scores.Classification)
	switch scores.Classification {
	case domain.ClassificationHigh:
		return criticalColor(label)
	case domain.ClassificationMedium:
		return mediumColor(label)
	default:
		return lowColor(label)
	}
}

package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/blue-thumb/triangulate/internal/model"
)

// FormatSummary renders the regression summary as the summary_statistics.txt
// body.
func FormatSummary(s model.RegressionSummary) string {
	var b strings.Builder

	b.WriteString("Blue Thumb Virtual Triangulation - Summary Statistics\n")
	b.WriteString(strings.Repeat("=", 55) + "\n\n")
	fmt.Fprintf(&b, "Sample Size (N):     %d\n", s.N)
	fmt.Fprintf(&b, "R-squared:           %.6f\n", s.RSquared)
	fmt.Fprintf(&b, "Slope:               %.6f\n", s.Slope)
	fmt.Fprintf(&b, "Intercept:           %.6f\n", s.Intercept)
	fmt.Fprintf(&b, "P-value:             %.2e\n", s.PValue)
	fmt.Fprintf(&b, "Standard Error:      %.6f\n", s.StdErr)

	return b.String()
}

// WriteSummary writes the summary statistics file to path.
func WriteSummary(path string, s model.RegressionSummary) error {
	if err := os.WriteFile(path, []byte(FormatSummary(s)), 0o644); err != nil {
		return eris.Wrap(err, "report: write summary")
	}
	return nil
}

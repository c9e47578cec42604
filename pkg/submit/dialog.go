package submit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sohail300/pipeline/pkg/domain"
)

// Variant selects the dialog layout.
type Variant string

const (
	VariantSuccess Variant = "success"
	VariantError   Variant = "error"
)

const (
	SuccessTitle   = "Pipeline Analysis"
	ErrorTitle     = "Error"
	FailureMessage = "Failed to submit pipeline"
	DAGMessage     = "🚀 Your pipeline is a valid Directed Acyclic Graph!"
	CycleMessage   = "⚠️ Warning: Your pipeline contains cycles and is not a DAG."
)

// Dialog is the outcome of a submission as shown to the user.
type Dialog struct {
	Variant Variant             `json:"variant"`
	Title   string              `json:"title"`
	Result  *domain.ParseResult `json:"result,omitempty"`
	// Message is the DAG verdict on success and FailureMessage on error.
	Message string `json:"message"`
	// Error is the underlying failure, error variant only.
	Error string `json:"error,omitempty"`
	Hint  string `json:"hint,omitempty"`
	// Warnings lists field values outside their declared constraints.
	Warnings []string `json:"warnings,omitempty"`
}

// SuccessDialog reports the service's analysis.
func SuccessDialog(res domain.ParseResult, warnings []string) Dialog {
	msg := DAGMessage
	if !res.IsDAG {
		msg = CycleMessage
	}
	return Dialog{
		Variant:  VariantSuccess,
		Title:    SuccessTitle,
		Result:   &res,
		Message:  msg,
		Warnings: warnings,
	}
}

// ErrorDialog reports a failed submission to the service at baseURL.
func ErrorDialog(err error, baseURL string) Dialog {
	return Dialog{
		Variant: VariantError,
		Title:   ErrorTitle,
		Message: FailureMessage,
		Error:   err.Error(),
		Hint:    "Make sure the backend server is running on " + baseURL,
	}
}

// Row is one label/value line of the success layout.
type Row struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Rows returns the analysis table. It is empty for the error variant.
func (d Dialog) Rows() []Row {
	if d.Result == nil {
		return nil
	}
	dag := "No"
	if d.Result.IsDAG {
		dag = "Yes"
	}
	return []Row{
		{"Number of Nodes", strconv.Itoa(d.Result.NumNodes)},
		{"Number of Edges", strconv.Itoa(d.Result.NumEdges)},
		{"Is DAG", dag},
	}
}

// Markdown renders the dialog for terminal display.
func (d Dialog) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", d.Title)
	if d.Variant == VariantError {
		fmt.Fprintf(&b, "**%s**\n\n%s\n\n_%s_\n", d.Message, d.Error, d.Hint)
		return b.String()
	}
	b.WriteString("| | |\n|---|---|\n")
	for _, r := range d.Rows() {
		fmt.Fprintf(&b, "| %s | **%s** |\n", r.Label, r.Value)
	}
	fmt.Fprintf(&b, "\n> %s\n", d.Message)
	if len(d.Warnings) > 0 {
		b.WriteString("\n## Warnings\n\n")
		for _, w := range d.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	return b.String()
}

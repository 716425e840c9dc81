package predict

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/cozy-creator/dbi/internal/batch"
	"github.com/cozy-creator/dbi/pkg/dbi"

	"github.com/olekukonko/tablewriter"
)

type jsonResult struct {
	Input    string     `json:"input"`
	Envelope prediction `json:"envelope,omitempty"`
	Error    string     `json:"error,omitempty"`
}

// renderJSON writes the envelopes exactly as the service returned them.
func renderJSON(w io.Writer, results []batch.Result[prediction]) error {
	out := make([]jsonResult, 0, len(results))
	for _, r := range results {
		item := jsonResult{Input: r.Name, Envelope: r.Value}
		if r.Err != nil {
			item.Error = r.Err.Error()
		}
		out = append(out, item)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func renderTable(w io.Writer, results []batch.Result[prediction]) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Input", "Status", "Success", "Label", "Confidence"})
	table.SetAutoWrapText(false)

	for _, r := range results {
		table.Append(tableRow(r))
	}

	table.Render()
}

func tableRow(r batch.Result[prediction]) []string {
	if r.Err != nil {
		return []string{r.Name, "-", "false", "error: " + r.Err.Error(), "-"}
	}

	resp := r.Value
	return []string{
		r.Name,
		strconv.Itoa(resp.Status),
		strconv.FormatBool(resp.Success),
		dbi.CleanLabel(resp.Response.Label),
		dbi.FormatConfidence(resp.Response.Confidence),
	}
}

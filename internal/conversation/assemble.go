package conversation

import (
	"strings"

	"github.com/intakehq/intake/internal/provider"
	"github.com/intakehq/intake/internal/record"
)

// Assemble composes the ordered message list sent to the model:
// exactly one system turn first, then the historical turns oldest-first,
// then the new input turn. No truncation happens here; the history was
// already bounded by the store fetch.
func Assemble(system string, hist []provider.Message, input provider.Message) []provider.Message {
	msgs := make([]provider.Message, 0, len(hist)+2)
	msgs = append(msgs, provider.SystemMessage(system))
	msgs = append(msgs, hist...)
	return append(msgs, input)
}

// summaryInstruction is the fixed finalization turn. Its wording is a
// contract: the model must emit only a JSON object over the declared
// field set, with empty strings for unknowns and no surrounding
// explanation — that constraint is what makes brace-slice extraction
// tractable.
var summaryInstruction = buildSummaryInstruction()

func buildSummaryInstruction() string {
	var b strings.Builder
	b.WriteString("Based on our entire conversation, respond with ONLY a JSON object ")
	b.WriteString("containing exactly these fields: ")
	b.WriteString(strings.Join(record.FieldNames, ", "))
	b.WriteString(". Use an empty string for any field you cannot determine. ")
	b.WriteString("Do not include any explanation, markdown, or text outside the JSON object.")
	return b.String()
}

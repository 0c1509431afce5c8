package tabular

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// encodeSourceCeiling caps how much source CSV is transport-encoded into a
// code-execution prompt. Beyond this the payload is truncated at a row
// boundary and the truncation is flagged to the model.
const encodeSourceCeiling = 500000

// EncodeForCodeExecution transport-encodes the full tabular payload for
// embedding in a code-execution prompt, together with an explicit decode
// recipe so the downstream environment can reconstruct the table.
func EncodeForCodeExecution(name, raw string) string {
	truncated := false
	if len(raw) > encodeSourceCeiling {
		cut := strings.LastIndexByte(raw[:encodeSourceCeiling], '\n')
		if cut < 0 {
			cut = encodeSourceCeiling
		}
		raw = raw[:cut]
		truncated = true
	}

	encoded := base64.StdEncoding.EncodeToString([]byte(raw))

	var b strings.Builder
	fmt.Fprintf(&b, "The user's dataset %q is provided below, base64-encoded.\n", name)
	b.WriteString("Decode it before use, for example:\n")
	b.WriteString("    import base64, io, pandas as pd\n")
	b.WriteString("    df = pd.read_csv(io.StringIO(base64.b64decode(DATA_B64).decode()))\n")
	if truncated {
		b.WriteString("NOTE: the dataset was truncated to fit the prompt; results cover a prefix of the rows.\n")
	}
	b.WriteString("DATA_B64 = \"")
	b.WriteString(encoded)
	b.WriteString("\"\n")
	return b.String()
}

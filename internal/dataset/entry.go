// Package dataset turns source files into instruction-tuning records and
// persists them as newline-delimited JSON.
package dataset

// Entry is one dataset record in instruction/input/output form. Training
// records carry the model's answer in Output; inference records omit it.
type Entry struct {
	Instruction string `json:"instruction"`
	Input       string `json:"input"`
	Output      string `json:"output,omitempty"`
}

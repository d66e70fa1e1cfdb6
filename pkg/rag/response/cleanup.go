package response

import (
	"regexp"
	"strings"
)

// Turn delimiters used by common chat templates, matched anywhere.
// Only text after the last delimiter is kept.
var assistantMarkers = []string{
	"<|start_header_id|>assistant<|end_header_id|>",
	"<|im_start|>assistant",
	"<|assistant|>",
	"[/INST]",
	"<start_of_turn>model",
}

// Plain transcript style turns only count at the start of a line.
var assistantPrefix = regexp.MustCompile(`(?mi)^[ \t]*assistant:`)

var controlTokens = []string{
	"<|im_end|>",
	"<|eot_id|>",
	"<|endoftext|>",
	"<|end|>",
	"<end_of_turn>",
	"</s>",
	"<s>",
	"<pad>",
}

// Clean strips an echoed prompt, keeps only the text after the last assistant marker,
// removes control tokens and trims whitespace.
func Clean(raw, prompt string) string {
	out := stripEcho(raw, prompt)

	cut := -1
	for _, m := range assistantMarkers {
		if i := strings.LastIndex(out, m); i >= 0 && i+len(m) > cut {
			cut = i + len(m)
		}
	}
	if locs := assistantPrefix.FindAllStringIndex(out, -1); len(locs) > 0 {
		if end := locs[len(locs)-1][1]; end > cut {
			cut = end
		}
	}
	if cut >= 0 {
		out = out[cut:]
	}

	for _, tok := range controlTokens {
		out = strings.ReplaceAll(out, tok, "")
	}

	return strings.TrimSpace(out)
}

func stripEcho(raw, prompt string) string {
	for _, p := range []string{prompt, strings.TrimSpace(prompt)} {
		if p == "" {
			continue
		}
		if i := strings.Index(raw, p); i >= 0 {
			return raw[:i] + raw[i+len(p):]
		}
	}
	return raw
}

// Package normalize canonicalizes text before segmentation.
package normalize

import (
	"io"

	"golang.org/x/text/unicode/norm"
)

// Form wraps a Unicode normalization form.
type Form struct {
	form norm.Form
}

// NFC is canonical composition, the form vocabularies are trained on.
var NFC = Form{form: norm.NFC}

// NFKC additionally folds compatibility characters.
var NFKC = Form{form: norm.NFKC}

// String returns s in normal form.
func (f Form) String(s string) string {
	return f.form.String(s)
}

// Reader normalizes r incrementally. Composed sequences are never split
// across reads.
func (f Form) Reader(r io.Reader) io.Reader {
	return f.form.Reader(r)
}

// ByName resolves "nfc" or "nfkc"; ok is false for anything else.
func ByName(name string) (Form, bool) {
	switch name {
	case "nfc", "NFC":
		return NFC, true
	case "nfkc", "NFKC":
		return NFKC, true
	}
	return Form{}, false
}

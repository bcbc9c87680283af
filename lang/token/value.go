package token

// Value combines a token's kind-independent payload with its position. Raw
// is the token's exact source text (useful for error messages); the typed
// fields are filled in only for the token kinds that carry a decoded value.
type Value struct {
	Raw string
	Pos Pos

	Int    int64
	Float  float64
	String string // string literal contents, escape bytes kept verbatim (expanded by the print natives)
}

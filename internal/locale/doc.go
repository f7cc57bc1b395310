// Package locale loads message catalogs and resolves templated messages.
//
// A catalog file is YAML named after its language tag (locales/en-US.yaml):
//
//	locale: en-US
//	messages:
//	  Overhaul.Levelup: "&l{0} increased to &a{2}"
//
// Placeholders are positional ({0}, {1}, ...). "''" yields a literal quote.
// '&' formatting codes are rewritten to '§' at load time. Keys missing from
// the selected locale fall back to the base locale (en-US).
package locale

// Package markdown parses the markdown subset demomark understands into a
// flat sequence of blocks with inline span trees.
//
// Supported blocks: ATX headings, paragraphs, flat lists, fenced code,
// thematic breaks and raw HTML. Inline spans: escapes, code spans, links,
// emphasis and strong emphasis. Anything else degrades to literal text.
//
// The parse is all-or-nothing. The first structural error (an unterminated
// code fence or a malformed link) aborts it and is returned as *ParseError.
package markdown

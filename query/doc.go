/*
Package query compiles token queries: bracketed, per-position attribute
constraints evaluated against a fixed-length slice of tokens.

# Syntax

A query is a sequence of token expressions, one per required token:

	[lemma="this" & tag="Det"] [tag!="ADJ"]

Inside brackets:

  - attr="value" holds when the token has attr and it equals value exactly.
  - attr!="value" holds when attr is absent or differs from value.
  - '&' joins constraints that must all hold.
  - '|' joins alternatives; '&' binds tighter than '|'.
  - [] accepts any token.

String literals are double-quoted; '\' escapes the next byte.

The attribute names content, start and length refer to the token's
structural fields. Any other name is looked up in the token's Attrs.

# Assignments

The same syntax doubles as an assignment list. Assignments reads each
position as a flat attribute -> value mapping, which is how split overrides
are written:

	[tag="NOUN"] [tag="PART" & lemma="s"]

Values are compared verbatim. There is no regular-expression matching.
*/
package query

package mcpserver

// AuthoringContract describes the canonical guide document format that
// LLM consumers should follow when creating or updating guides.
const AuthoringContract = `# Guide Authoring Contract

Every Markdown guide stored in guidekit MUST follow this structure.

## Structure

` + "```" + `markdown
---
title: Frontend Style Guide         # OPTIONAL frontmatter; preserved verbatim
---

# Frontend Style Guide

Intro prose with a table of contents linking sections by anchor:
[Agreements](#agreements), [Naming](#naming).

## Agreements

| Decision | Detail |
| --- | --- |
| Linting | ESLint with the shared config |

## Naming

Prose, fenced code examples, and tables.

` + "```` ```" + `js good
const userName = fetchUser();
` + "``` ````" + `
` + "```" + `

## Rules

1. **Headings open sections.** Every ATX heading (# through ######) starts a
   new section; its anchor id is the slugified heading text. Duplicate
   headings get -2, -3 suffixes in order of appearance.
2. **Anchor links** use ` + "`" + `[label](#section-id)` + "`" + ` and must resolve to a
   section in the same document. Broken anchors are reported by validation.
3. **Agreements** live in a section titled "Agreements" as a table whose
   first column is the decision key. Keys are compared case-insensitively;
   duplicates are reported by validation.
4. **Fenced code blocks** must be terminated. The info string is the
   language, optionally followed by one of: bad, good, fine, better.
5. **Tables** must be rectangular: every row has the same number of cells
   as the header. The delimiter row is required.
6. **Cross references** to other guides use ` + "`" + `[label](other-guide.md)` + "`" + `
   relative paths; they feed the library graph.
7. **File paths** end with ` + "`" + `.md` + "`" + ` and use forward slashes.
8. **Encoding** is UTF-8 with a trailing newline.

## Example

` + "```" + `markdown
# Backend Style Guide

Contents: [Agreements](#agreements), [Errors](#errors).

## Agreements

| Decision | Detail |
| --- | --- |
| Logging | Structured JSON only |

## Errors

Wrap errors with context. See [frontend](frontend.md) for client handling.
` + "```" + `
`

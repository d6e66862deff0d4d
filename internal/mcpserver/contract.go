package mcpserver

// VocabularyURI identifies the vocabulary resource.
const VocabularyURI = "docxreader://vocabulary"

// Vocabulary describes the WordprocessingML subset the reader interprets.
// LLM consumers should read it before importing or interpreting documents.
const Vocabulary = `# docxreader Markup Vocabulary

A document is a ZIP package. Two members are read:
` + "`" + `word/styles.xml` + "`" + ` (style definitions) and ` + "`" + `word/document.xml` + "`" + ` (the body).
A package missing either is rejected. ` + "`" + `docProps/core.xml` + "`" + ` supplies the
catalog title when it carries ` + "`" + `dc:title` + "`" + `.

## Styles

- ` + "`" + `w:style` + "`" + ` with ` + "`" + `w:styleId` + "`" + ` defines a named style.
- ` + "`" + `w:basedOn w:val="Parent"` + "`" + ` inherits every attribute the style leaves unset.
  Cyclic chains are rejected; unknown parents are ignored.
- ` + "`" + `w:outlineLvl` + "`" + ` inside a style makes paragraphs using it headings.
- Every paragraph starts from ` + "`" + `Normal` + "`" + `, or from the default paragraph style.

## Formatting

| Element | Meaning | Off when |
|---|---|---|
| ` + "`" + `w:b` + "`" + ` | bold | ` + "`" + `w:val` + "`" + ` is 0, false or off |
| ` + "`" + `w:u` + "`" + ` | underline | ` + "`" + `w:val="none"` + "`" + ` |
| ` + "`" + `w:highlight` + "`" + ` | highlight | ` + "`" + `w:val="none"` + "`" + ` |
| ` + "`" + `w:sz` + "`" + ` | size in half-points | never; a non-numeric value is an error |

Direct formatting on a paragraph or run wins over ` + "`" + `w:pStyle` + "`" + ` and ` + "`" + `w:rStyle` + "`" + `.

## Body

- ` + "`" + `w:p` + "`" + ` is a paragraph, ` + "`" + `w:r` + "`" + ` a run and ` + "`" + `w:t` + "`" + ` its text.
- Text outside ` + "`" + `w:t` + "`" + ` is ignored, as is everything inside ` + "`" + `w:txbxContent` + "`" + `.
- Tabs, carriage returns and newlines are removed from run text. Empty runs are
  dropped and adjacent runs with equal formatting are merged.
- A paragraph with an outline level (direct ` + "`" + `w:outlineLvl` + "`" + ` or from its style)
  becomes an outline entry linking to the paragraph's position.

## Search

Search matches substrings of each paragraph's concatenated run text. Each
occurrence is a separate result. Matching is case-insensitive unless
` + "`" + `match_case` + "`" + ` is set; ` + "`" + `only_outline` + "`" + ` restricts matches to headings.
`

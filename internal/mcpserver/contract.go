package mcpserver

// FileFormatContract describes the vocabulary file format that LLM
// consumers should follow when importing or editing files.
const FileFormatContract = `# Vocabulary File Format Contract

A vocabulary file is plain UTF-8 text made of topics, each followed by its
words, one per line.

## Structure

` + "```" + `text
# Animals
Cat
Dog
# Colors
Red
blue
` + "```" + `

## Rules

1. **Topic lines start with ` + "`" + `#` + "`" + `.** The rest of the line, trimmed, is the
   topic name. It must not be empty.
2. **Every other non-blank line is a word** of the topic opened above it.
   Leading and trailing spaces are dropped.
3. **Words must come after a topic line.** A word before the first ` + "`" + `#` + "`" + `
   line makes the whole file invalid, and nothing is loaded.
4. **Blank lines are ignored** on load and never written on save.
5. **Only a ` + "`" + `#` + "`" + ` in the first column opens a topic.** An indented line
   such as ` + "`" + ` #tag` + "`" + ` is the word ` + "`" + `#tag` + "`" + `. The tools refuse to add such
   words; files that hold them keep them and save them indented.
6. **Duplicates:** adding a word that a topic already holds (ignoring case)
   is refused. Files may still contain duplicates; they are kept as written.
7. **File paths** are relative to the vault, use forward slashes and end
   with ` + "`" + `.txt` + "`" + `.
8. **Positions** used by the tools are 1-based, in file order.

## Example session

1. ` + "`" + `import_file` + "`" + ` or ` + "`" + `load_file` + "`" + ` to get a working list.
2. ` + "`" + `list_topics` + "`" + ` to see positions.
3. ` + "`" + `add_word` + "`" + ` with ` + "`" + `{"position": 1, "word": "Horse"}` + "`" + `.
4. ` + "`" + `save_file` + "`" + ` to write the list back.
`

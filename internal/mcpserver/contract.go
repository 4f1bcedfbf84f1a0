package mcpserver

// ClusterRules explains to MCP clients how notes end up in a topic cluster.
const ClusterRules = `# How topicscout clusters notes

## Inputs

- Every visible ` + "`" + `.md` + "`" + ` file in the vault (or the configured folders) is a note.
  Paths containing a component that starts with ` + "`" + `.` + "`" + ` are ignored.
- **Title** is the frontmatter ` + "`" + `title` + "`" + `, otherwise the file name without ` + "`" + `.md` + "`" + `.
- **Tags** come from frontmatter ` + "`" + `tags` + "`" + ` (a list or a comma-separated string)
  plus inline ` + "`" + `#tag` + "`" + ` tokens in the body. Tags are compared case-insensitively.
- **Links** are ` + "`" + `[[target]]` + "`" + ` or ` + "`" + `[[target|alias]]` + "`" + ` wikilinks. A link resolves to
  the note whose file name (without ` + "`" + `.md` + "`" + `, case-insensitive) equals the target.
  Unresolved links are ignored.
- **Words** are whitespace-separated tokens of the body after frontmatter.

## Algorithm

1. Group notes by tag. Visit tags from the most populated to the least;
   ties keep the order in which tags were first seen.
2. For each tag, take the notes not yet claimed by an earlier cluster.
   Fewer than two such notes means the tag produces no cluster.
3. Grow the cluster by one level: add every unclaimed note that a seed note
   links to. Links of added notes are not followed.
4. The cluster is named after the tag (lower case). All its notes become
   claimed, so every note belongs to at most one cluster.
5. A cluster shows recent activity when any member changed in the last
   30 days.

## Filter

A cluster is reported when it has at least ` + "`" + `min_notes` + "`" + ` notes (default 3)
and at least ` + "`" + `min_words` + "`" + ` combined words (default 500). ` + "`" + `get_cluster` + "`" + `
ignores the filter.
`

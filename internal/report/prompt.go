package report

import (
	"fmt"
	"strings"

	"github.com/starford/topicscout/internal/cluster"
)

const (
	promptClusters = 10
	promptExcerpts = 5
	excerptRunes   = 200
)

const rubric = `You are analyzing a personal knowledge base to identify topics mature enough for blog posts.

A topic is "mature" and blog-ready when:
- There are 3+ substantive notes on the topic
- Combined content exceeds 1000 words
- There's a clear perspective, argument, or narrative emerging
- The writing shows depth (examples, nuance, not just bullet points)
- Ideally has recent activity (but strong older clusters can qualify)

Here are the topic clusters found:
`

const instructions = `
For each TRULY blog-ready topic (be selective, only the best), provide:
1. Topic title (catchy, blog-appropriate)
2. Number of related notes and word count
3. Why it's ready (1 sentence)
4. Suggested angle or hook for the blog post
5. What's missing (if anything) to make it even stronger

If no topics are truly ready, say so honestly and suggest what would help.

Format your response as a clear, actionable summary the user can act on immediately.
`

// BuildPrompt renders the readiness prompt for the first ten clusters.
func BuildPrompt(clusters []cluster.TopicCluster) string {
	var b strings.Builder
	b.WriteString(rubric)
	for i, c := range cluster.Top(clusters, promptClusters) {
		members, titles := c.Notes, c.Titles()
		if len(members) > promptExcerpts {
			members, titles = members[:promptExcerpts], titles[:promptExcerpts]
		}
		recent := "No"
		if c.RecentActivity {
			recent = "Yes"
		}

		fmt.Fprintf(&b, "\nCluster %d: %q\n", i+1, c.Name)
		fmt.Fprintf(&b, "- Notes: %d (%s)\n", len(c.Notes), strings.Join(titles, ", "))
		fmt.Fprintf(&b, "- Total words: %d\n", c.TotalWords)
		fmt.Fprintf(&b, "- Tags: %s\n", strings.Join(c.Tags, ", "))
		fmt.Fprintf(&b, "- Recent activity: %s\n", recent)
		b.WriteString("- Excerpts:\n")
		for _, n := range members {
			fmt.Fprintf(&b, "  - %s: %s...\n", n.Title, excerpt(n.Body))
		}
	}
	b.WriteString(instructions)
	return b.String()
}

func excerpt(body string) string {
	r := []rune(strings.Join(strings.Fields(body), " "))
	if len(r) > excerptRunes {
		r = r[:excerptRunes]
	}
	return string(r)
}

// ABOUTME: Help page rendered from embedded markdown documents
// ABOUTME: Lists topics in a fixed order and converts the selected one with goldmark

package webadmin

import (
	"bytes"
	"html/template"
	"net/http"
	"path"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const defaultHelpTopic = "getting-started"

// helpTopic represents a help documentation topic
type helpTopic struct {
	Slug   string
	Title  string
	Active bool
}

var topicOrder = map[string]int{
	"getting-started": 1,
	"managing-texts":  2,
	"public-api":      3,
	"troubleshooting": 4,
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// handleHelp renders GET /help?topic=<slug>.
func (a *Admin) handleHelp(w http.ResponseWriter, r *http.Request) {
	selected := r.URL.Query().Get("topic")
	if selected == "" {
		selected = defaultHelpTopic
	}

	topics, err := listHelpTopics(selected)
	if err != nil {
		a.logger.Error("failed to read help docs", "error", err)
		http.Error(w, "Failed to load help", http.StatusInternalServerError)
		return
	}

	content, err := renderHelpTopic(selected)
	if err != nil {
		a.logger.Warn("help topic unavailable", "topic", selected, "error", err)
	}

	a.render(w, "help", helpData{
		Title:   "Help",
		Brand:   Brand,
		Topics:  topics,
		Content: content,
	})
}

func listHelpTopics(selected string) ([]helpTopic, error) {
	entries, err := helpDocsFS.ReadDir("docs/help")
	if err != nil {
		return nil, err
	}

	var topics []helpTopic
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		slug := strings.TrimSuffix(entry.Name(), ".md")
		topics = append(topics, helpTopic{
			Slug:   slug,
			Title:  formatHelpTitle(slug),
			Active: slug == selected,
		})
	}

	sort.Slice(topics, func(i, j int) bool {
		oi, ok := topicOrder[topics[i].Slug]
		if !ok {
			oi = 100
		}
		oj, ok := topicOrder[topics[j].Slug]
		if !ok {
			oj = 100
		}
		if oi != oj {
			return oi < oj
		}
		return topics[i].Slug < topics[j].Slug
	})
	return topics, nil
}

// renderHelpTopic converts one markdown document to HTML. Unknown topics
// render a not-found notice along with the error.
func renderHelpTopic(slug string) (template.HTML, error) {
	md, err := helpDocsFS.ReadFile(path.Join("docs/help", path.Base(slug)+".md"))
	if err != nil {
		md = []byte("# Not Found\n\nThis help topic could not be found.")
	}

	var buf bytes.Buffer
	if convErr := markdown.Convert(md, &buf); convErr != nil {
		return template.HTML("<p>Failed to render help content.</p>"), convErr
	}
	return template.HTML(buf.String()), err
}

// formatHelpTitle converts a slug to a display title
func formatHelpTitle(slug string) string {
	words := strings.Split(slug, "-")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	title := strings.Join(words, " ")
	return strings.Replace(title, "Api", "API", 1)
}

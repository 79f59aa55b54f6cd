package docs_test

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/etnz/crowdfund/cmd"
	"github.com/etnz/crowdfund/docs"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

func TestTopics(t *testing.T) {
	// Every topic listed in the index can be loaded, and every file is listed.
	file, err := os.Open(docs.Index + ".md")
	if err != nil {
		t.Fatalf("failed to open index: %v", err)
	}
	defer file.Close()

	var listed []string
	topicRegex := regexp.MustCompile(`^\*\s+([^:]+):.*$`)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if m := topicRegex.FindStringSubmatch(scanner.Text()); len(m) > 1 {
			listed = append(listed, strings.TrimSpace(m[1]))
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatal(err)
	}

	for _, topic := range listed {
		if _, err := docs.Topic(topic); err != nil {
			t.Errorf("failed to get topic %q: %v", topic, err)
		}
	}

	all, err := docs.AllTopics()
	if err != nil {
		t.Fatal(err)
	}
	for _, topic := range all {
		if !slices.Contains(listed, topic) {
			t.Errorf("topic %q is not listed in %s.md", topic, docs.Index)
		}
	}

	if _, err := docs.Topic("missing"); err == nil {
		t.Error("Topic(missing) succeeded")
	}
	everything, err := docs.Topic("*")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(everything, "# Pledges") || !strings.Contains(everything, "# Audit") {
		t.Errorf("Topic(*) misses topics")
	}
}

// TestConsoleBlocks checks that the documented commands exist.
func TestConsoleBlocks(t *testing.T) {
	known := map[string]bool{"topic": true}
	for _, c := range cmd.Commands() {
		known[c.Name()] = true
	}
	// The subcommand is the first word that is neither a flag nor a flag value.
	subcommand := regexp.MustCompile(`^\$ cfd((?:\s+-\S+\s+\S+)*)\s+([a-z][a-z-]*)`)

	files, err := filepath.Glob("*.md")
	if err != nil {
		t.Fatal(err)
	}
	for _, file := range files {
		t.Run(file, func(t *testing.T) {
			content, err := os.ReadFile(file)
			if err != nil {
				t.Fatal(err)
			}
			root := goldmark.DefaultParser().Parse(text.NewReader(content))

			headings := 0
			ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
				if !entering {
					return ast.WalkContinue, nil
				}
				if h, ok := n.(*ast.Heading); ok && h.Level == 1 {
					headings++
				}
				fcb, ok := n.(*ast.FencedCodeBlock)
				if !ok || fcb.Info == nil || string(fcb.Info.Segment.Value(content)) != "console" {
					return ast.WalkContinue, nil
				}
				for i := 0; i < fcb.Lines().Len(); i++ {
					line := fcb.Lines().At(i)
					cmdLine := strings.TrimSpace(string(line.Value(content)))
					m := subcommand.FindStringSubmatch(cmdLine)
					if m == nil {
						t.Errorf("%s: not a cfd command: %q", file, cmdLine)
						continue
					}
					if !known[m[2]] {
						t.Errorf("%s: unknown subcommand %q in %q", file, m[2], cmdLine)
					}
				}
				return ast.WalkContinue, nil
			})
			if headings != 1 {
				t.Errorf("%s has %d top level headings, want 1", file, headings)
			}
		})
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"strings"

	"github.com/pdiddy/requirements-engine/internal/normalize"
)

// DefaultProjectName is used when nothing in the description names the project.
const DefaultProjectName = "generated_api"

var (
	nameVerbs = map[string]bool{
		"build": true, "create": true, "make": true, "develop": true,
		"design": true, "generate": true, "need": true, "want": true,
	}
	nameFillers = map[string]bool{
		"a": true, "an": true, "the": true, "my": true, "our": true,
		"simple": true, "basic": true, "small": true, "new": true,
		"modern": true, "complete": true, "full-featured": true,
		"restful": true, "rest": true, "fast": true, "scalable": true,
		"secure": true, "lightweight": true, "me": true, "us": true,
	}
	nameStops = map[string]bool{
		",": true, "with": true, "for": true, "that": true, "which": true,
		"where": true, "to": true, "and": true, "or": true, "using": true,
		"who": true, "in": true, "on": true, "of": true, "having": true,
		"including": true, "containing": true, "is": true, "are": true,
		"can": true, "should": true, "will": true, "by": true, "from": true,
	}
	appSuffixes = map[string]bool{
		"api": true, "app": true, "application": true, "system": true,
		"platform": true, "service": true, "backend": true, "website": true,
		"site": true, "tool": true, "portal": true, "dashboard": true,
	}
)

// ProjectName derives a snake_case project name. An explicit "called X" or
// "named X" wins; then the object of the first build/create verb; then the
// first meaningful words of the description.
func ProjectName(doc normalize.Document) string {
	for _, s := range doc.Sentences {
		for i := 0; i+1 < s.Len(); i++ {
			if w := s.Word(i); w != "called" && w != "named" {
				continue
			}
			if next := s.Tokens[i+1]; next.Quoted {
				if next.Norm != "" {
					return next.Norm
				}
				continue
			}
			if words := phrase(s, i+1); len(words) > 0 {
				return strings.Join(words, "_")
			}
		}
	}

	for _, s := range doc.Sentences {
		for i := 0; i < s.Len(); i++ {
			if !nameVerbs[s.Word(i)] {
				continue
			}
			j := i + 1
			for j < s.Len() && nameFillers[s.Word(j)] {
				j++
			}
			words := phrase(s, j)
			if len(words) == 0 {
				continue
			}
			if !appSuffixes[words[len(words)-1]] {
				words = append(words, "api")
			}
			return strings.Join(words, "_")
		}
	}

	if len(doc.Sentences) > 0 {
		s := doc.Sentences[0]
		var words []string
		for i := 0; i < s.Len() && len(words) < 2; i++ {
			w := s.Word(i)
			if len(w) < 3 || nameStops[w] || nameFillers[w] || nameVerbs[w] || s.Tokens[i].Quoted {
				continue
			}
			words = append(words, normalize.Fold(w))
		}
		if len(words) > 0 {
			return strings.Join(append(words, "api"), "_")
		}
	}
	return DefaultProjectName
}

// phrase collects up to three name words starting at j.
func phrase(s normalize.Sentence, j int) []string {
	var words []string
	for k := j; k < s.Len() && len(words) < 3; k++ {
		t := s.Tokens[k]
		if t.Quoted || nameStops[t.Norm] {
			break
		}
		if w := normalize.Fold(t.Norm); w != "" {
			words = append(words, w)
		}
	}
	return words
}

package markdown

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	sqlKeywordRe = regexp.MustCompile(`(?i)\b(SELECT|INSERT|UPDATE|DELETE|CREATE|ALTER|DROP)\b`)
	yamlKeyRe    = regexp.MustCompile(`^\s*\w+:`)
)

// DetectLanguage guesses a fence language for un-annotated code blocks.
// The checks run in a fixed order and the first hit wins; snippets shorter
// than ten characters are left unlabeled.
func DetectLanguage(code string) string {
	text := strings.TrimSpace(code)
	if len(text) < 10 {
		return ""
	}
	firstLine, _, _ := strings.Cut(text, "\n")
	firstLine = strings.TrimSpace(firstLine)

	has := func(s string) bool { return strings.Contains(text, s) }

	switch {
	case has("function ") || has("const ") || has("let ") || has("var "):
		if has(": ") && (has("interface ") || has("type ")) {
			return "typescript"
		}
		return "javascript"
	case has("def ") || has("import ") || has("from ") || has("print("):
		return "python"
	case has("public class ") || has("private ") || has("public static void main"):
		return "java"
	case has("using System") || has("namespace "):
		return "csharp"
	case has("#include") || has("int main"):
		if has("std::") || has("cout") {
			return "cpp"
		}
		return "c"
	case has("package ") || has("func "):
		return "go"
	case has("fn ") || has("let mut"):
		return "rust"
	case has("<?php") || (has("$") && (has("echo ") || has("print "))):
		return "php"
	case has("def ") && has("end"):
		return "ruby"
	case strings.HasPrefix(firstLine, "#!") && (strings.Contains(firstLine, "bash") || strings.Contains(firstLine, "sh")):
		return "bash"
	case sqlKeywordRe.MatchString(text):
		return "sql"
	case has("{") && has("}") && has(":"):
		return "css"
	case has("<!DOCTYPE") || has("<html"):
		return "html"
	case has("<?xml") || (has("<") && has(">") && has("</")):
		return "xml"
	case looksLikeJSON(text):
		return "json"
	case anyLineMatches(text, yamlKeyRe):
		return "yaml"
	case has("# ") || has("## ") || has("```"):
		return "markdown"
	case has("FROM ") || has("RUN "):
		return "dockerfile"
	}
	return ""
}

func looksLikeJSON(text string) bool {
	wrapped := (strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}")) ||
		(strings.HasPrefix(text, "[") && strings.HasSuffix(text, "]"))
	return wrapped && json.Valid([]byte(text))
}

func anyLineMatches(text string, re *regexp.Regexp) bool {
	for _, line := range strings.Split(text, "\n") {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

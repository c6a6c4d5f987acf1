package checks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/harrison/docscheck/internal/fileutil"
	"github.com/harrison/docscheck/internal/registry"
)

const linkcheckReport = "output.txt"

var (
	directivePattern = regexp.MustCompile(`^\s*\.\.\s`)
	codeBlockPattern = regexp.MustCompile(`^\s*\.\.\s+(code-block|code|sourcecode)::\s*(\S*)`)
)

func contentChecks() []Check {
	return []Check{
		{
			ID:          "content.project_files",
			Category:    CategoryContent,
			Description: "README, LICENSE and CONTRIBUTING are present and non-empty",
			Run:         checkProjectFiles,
		},
		{
			ID:          "content.markdown",
			Category:    CategoryContent,
			Description: "Markdown project files open with a heading",
			Run:         checkMarkdown,
		},
		{
			ID:          "content.structure",
			Category:    CategoryContent,
			Description: "required reStructuredText pages are present and non-empty",
			Run:         checkStructure,
		},
		{
			ID:          "content.line_length",
			Category:    CategoryContent,
			Description: "source lines stay within the maximum length",
			Run:         checkLineLength,
		},
		{
			ID:          "content.literal_blocks",
			Category:    CategoryContent,
			Description: "literal block markers are surrounded by blank lines",
			Run:         checkLiteralBlocks,
		},
		{
			ID:          "content.code_languages",
			Category:    CategoryContent,
			Description: "code directives name a highlighting language",
			Run:         checkCodeLanguages,
		},
		{
			ID:          "content.links",
			Category:    CategoryContent,
			Description: "linkcheck builder reports no broken links",
			Live:        true,
			Run:         checkLinks,
		},
	}
}

func checkProjectFiles(_ context.Context, env *Env) error {
	root, err := env.path(registry.ProjectRoot)
	if err != nil {
		return err
	}
	return requireNonEmptyIn(root, env.Registry.RequiredFiles("project_files"))
}

func checkMarkdown(_ context.Context, env *Env) error {
	root, err := env.path(registry.ProjectRoot)
	if err != nil {
		return err
	}

	md := goldmark.New()
	var failure Failure
	var checked int
	for _, name := range env.Registry.RequiredFiles("project_files") {
		if !strings.EqualFold(filepath.Ext(name), ".md") {
			continue
		}
		checked++

		path := filepath.Join(root, filepath.FromSlash(name))
		content, err := readFile(path)
		if err != nil {
			failure.AddErr(path, err)
			continue
		}

		source := []byte(content)
		doc := md.Parser().Parse(text.NewReader(source))
		first := doc.FirstChild()
		if first == nil {
			failure.AddFile(path, "%s has no Markdown content", path)
			continue
		}
		if _, ok := first.(*ast.Heading); !ok {
			failure.AddFile(path, "%s does not start with a heading (found %s)", path, first.Kind())
		}
	}

	if checked == 0 {
		return Skip("no Markdown project files configured")
	}
	return failure.Err()
}

func checkStructure(_ context.Context, env *Env) error {
	docs, err := env.path(registry.Docs)
	if err != nil {
		return err
	}
	return requireNonEmptyIn(docs, env.Registry.RequiredFiles("rst_files"))
}

// eachRSTLine reads every .rst source and hands its lines to visit.
func eachRSTLine(env *Env, visit func(path string, lines []string, failure *Failure)) error {
	files, err := env.rstFiles()
	if err != nil {
		return err
	}

	var failure Failure
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			failure.AddErr(path, fmt.Errorf("failed to read %s: %w", path, err))
			continue
		}
		lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
		visit(path, lines, &failure)
	}
	return failure.Err()
}

func checkLineLength(_ context.Context, env *Env) error {
	maxValue, err := env.Registry.ExpectedValue("max_line_length")
	if err != nil {
		return err
	}
	limit, err := maxValue.Int()
	if err != nil {
		return fmt.Errorf("max_line_length: %w", err)
	}
	exemptList, err := env.strings("line_length_exempt")
	if err != nil {
		return err
	}
	exempt := make(map[string]bool, len(exemptList))
	for _, name := range exemptList {
		exempt[name] = true
	}

	return eachRSTLine(env, func(path string, lines []string, failure *Failure) {
		if exempt[filepath.Base(path)] {
			return
		}
		for i, line := range lines {
			if n := utf8.RuneCountInString(line); n > limit {
				failure.AddFile(path, "%s:%d: line is %d characters, maximum is %d", path, i+1, n, limit)
			}
		}
	})
}

func checkLiteralBlocks(_ context.Context, env *Env) error {
	return eachRSTLine(env, func(path string, lines []string, failure *Failure) {
		for i, line := range lines {
			trimmed := strings.TrimSpace(line)
			if !strings.HasSuffix(trimmed, "::") || directivePattern.MatchString(line) {
				continue
			}
			bare := trimmed == "::"
			if !bare && strings.Trim(trimmed, ":") == "" {
				// section underline
				continue
			}
			// text:: closes a paragraph, which may span several lines
			if bare && i > 0 && strings.TrimSpace(lines[i-1]) != "" {
				failure.AddFile(path, "%s:%d: missing blank line before literal block", path, i+1)
			}
			if i+1 < len(lines) && strings.TrimSpace(lines[i+1]) != "" {
				failure.AddFile(path, "%s:%d: missing blank line after literal block", path, i+1)
			}
		}
	})
}

func checkCodeLanguages(_ context.Context, env *Env) error {
	return eachRSTLine(env, func(path string, lines []string, failure *Failure) {
		for i, line := range lines {
			match := codeBlockPattern.FindStringSubmatch(line)
			if match != nil && match[2] == "" {
				failure.AddFile(path, "%s:%d: %s directive without a language", path, i+1, match[1])
			}
		}
	})
}

func checkLinks(ctx context.Context, env *Env) error {
	result, err := env.Builder.Build(ctx, "linkcheck")
	if err != nil {
		return fmt.Errorf("linkcheck could not run: %w", err)
	}

	var failure Failure
	report := filepath.Join(result.OutputDir, linkcheckReport)
	if err := fileutil.RequireFile(report); err == nil {
		content, err := readFile(report)
		if err != nil {
			return err
		}
		for _, line := range strings.Split(content, "\n") {
			if strings.Contains(line, "[broken]") {
				failure.AddFile(report, "%s", strings.TrimSpace(line))
			}
		}
	}
	if !result.Succeeded() && len(failure.Problems) == 0 {
		failure.Addf("linkcheck failed with exit status %d:\n%s", result.ExitCode, result.Summary(20))
	}
	return failure.Err()
}

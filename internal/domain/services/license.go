package services

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hivemq/sdkpub/internal/domain/entities"
	domainServices "github.com/hivemq/sdkpub/internal/domain/interfaces/services"
)

// SlashStarStyle is the only header style the checker understands
const SlashStarStyle = "SLASHSTAR_STYLE"

// ErrEmptyHeader is returned when no license header text is configured
var ErrEmptyHeader = errors.New("license header is empty")

// LicenseHeaderService enforces the HEADER text on every Java source file
type LicenseHeaderService struct{}

// NewLicenseHeaderService creates a new license header service
func NewLicenseHeaderService() *LicenseHeaderService {
	return &LicenseHeaderService{}
}

// RenderHeader renders header text as a block comment
//
//	/*
//	 * line
//	 */
func RenderHeader(text, style string) (string, error) {
	if style != "" && style != SlashStarStyle {
		return "", fmt.Errorf("unsupported header style: %s", style)
	}

	text = strings.TrimRight(strings.ReplaceAll(text, "\r\n", "\n"), "\n ")
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyHeader
	}

	var b strings.Builder
	b.WriteString("/*\n")
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			b.WriteString(" *\n")
			continue
		}
		b.WriteString(" * " + line + "\n")
	}
	b.WriteString(" */\n")
	return b.String(), nil
}

// HasHeader reports whether content starts with the rendered header.
// Leading blank lines and trailing whitespace are ignored.
func HasHeader(content []byte, rendered string) bool {
	want := strings.Split(strings.TrimSuffix(rendered, "\n"), "\n")

	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	i := 0
	started := false
	for scanner.Scan() && i < len(want) {
		line := strings.TrimRight(strings.TrimPrefix(scanner.Text(), "\ufeff"), " \t\r")
		if !started && line == "" {
			continue
		}
		started = true
		if line != want[i] {
			return false
		}
		i++
	}
	return i == len(want)
}

// Check verifies that every Java source of the project starts with the header.
// Without header text every source is reported as a mismatch.
func (s *LicenseHeaderService) Check(project *entities.Project) (*domainServices.LicenseReport, error) {
	rendered, err := RenderHeader(project.License.Text, project.License.Style)
	missing := errors.Is(err, ErrEmptyHeader)
	if err != nil && !missing {
		return nil, err
	}

	files, err := javaSources(project.SourceDirs)
	if err != nil {
		return nil, err
	}

	report := &domainServices.LicenseReport{MissingHeader: missing}
	if missing {
		report.Checked = len(files)
		for _, path := range files {
			report.Mismatches = append(report.Mismatches, domainServices.HeaderMismatch{
				Path:   path,
				Reason: "no license header configured",
			})
		}
		return report, nil
	}

	for _, path := range files {
		//nolint:gosec // G304: path comes from walking the configured source roots
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		report.Checked++
		if !HasHeader(content, rendered) {
			report.Mismatches = append(report.Mismatches, domainServices.HeaderMismatch{
				Path:   path,
				Reason: "missing or different license header",
			})
		}
	}

	return report, nil
}

// Format writes the header to every Java source that lacks it and returns the changed files.
// A different leading block comment is replaced rather than kept below the new header.
func (s *LicenseHeaderService) Format(project *entities.Project) ([]string, error) {
	rendered, err := RenderHeader(project.License.Text, project.License.Style)
	if err != nil {
		return nil, err
	}

	files, err := javaSources(project.SourceDirs)
	if err != nil {
		return nil, err
	}

	var changed []string
	for _, path := range files {
		//nolint:gosec // G304: path comes from walking the configured source roots
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if HasHeader(content, rendered) {
			continue
		}

		body := stripLeadingHeader(content)
		updated := append([]byte(rendered+"\n"), body...)
		if err := os.WriteFile(path, updated, 0600); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
		changed = append(changed, path)
	}

	return changed, nil
}

// stripLeadingHeader removes a leading /* */ block comment that precedes the package or import
// declarations. Javadoc comments and comments followed by other code are kept.
func stripLeadingHeader(content []byte) []byte {
	body := bytes.TrimLeft(bytes.TrimPrefix(content, []byte("\ufeff")), " \t\r\n")
	if !bytes.HasPrefix(body, []byte("/*")) || bytes.HasPrefix(body, []byte("/**")) {
		return body
	}

	end := bytes.Index(body[2:], []byte("*/"))
	if end < 0 {
		return body
	}
	rest := bytes.TrimLeft(body[2+end+2:], " \t\r\n")
	if !bytes.HasPrefix(rest, []byte("package ")) && !bytes.HasPrefix(rest, []byte("import ")) {
		return body
	}
	return rest
}

// javaSources lists every .java file below the given roots in a stable order
func javaSources(roots []string) ([]string, error) {
	var files []string
	for _, root := range roots {
		if _, err := os.Stat(root); os.IsNotExist(err) {
			continue
		}
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(d.Name(), ".java") {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", root, err)
		}
	}
	sort.Strings(files)
	return files, nil
}

package ocr

import (
	"regexp"
	"strings"
)

// Line is one recognized line of text.
type Line struct {
	Text string
}

// Page is the result of recognizing one image.
type Page struct {
	Text  string // full text as returned by the recognizer
	Lines []Line
}

// Extraction is the outcome of Extract. When Degraded is set, Text holds the
// raw OCR text for manual editing instead of delimited records.
type Extraction struct {
	Text     string
	Matched  int
	Degraded bool
}

var (
	extensionPattern = regexp.MustCompile(`(?i)\.(ttf|otf)`)
	// OCR 常把分隔符识别为连字符、下划线或破折号
	noisePattern = regexp.MustCompile(`^[-_\x{2014}\x{2013}\s]+`)
)

// SplitLine 在第一个 .ttf/.otf 处切分一行，返回文件名与其后的显示文本。
func SplitLine(text string) (filename, display string, ok bool) {
	loc := extensionPattern.FindStringIndex(text)
	if loc == nil {
		return "", "", false
	}
	filename = strings.TrimSpace(text[:loc[1]])
	display = StripNoise(strings.TrimSpace(text[loc[1]:]))
	return filename, display, true
}

// StripNoise removes a leading run of hyphens, underscores, dashes and
// whitespace.
func StripNoise(text string) string {
	return noisePattern.ReplaceAllString(text, "")
}

// Extract builds TAB separated records from lines. If no line yields a
// filename with display text the result is degraded and Text is the
// concatenated raw lines.
func Extract(lines []Line) Extraction {
	ex := extract(lines)
	if ex.Matched == 0 {
		return Extraction{Text: joinLines(lines), Degraded: true}
	}
	return ex
}

// ExtractPage is Extract over page.Lines, preferring page.Text as the raw
// text of a degraded result.
func ExtractPage(page Page) Extraction {
	ex := Extract(page.Lines)
	if ex.Degraded && page.Text != "" {
		ex.Text = page.Text
	}
	tracer().Infof("ocr extraction matched %d of %d lines (degraded=%v)", ex.Matched, len(page.Lines), ex.Degraded)
	return ex
}

func extract(lines []Line) Extraction {
	var builder strings.Builder
	var ex Extraction
	for _, line := range lines {
		text := strings.TrimSpace(line.Text)
		if text == "" {
			continue
		}
		filename, display, ok := SplitLine(text)
		if !ok {
			continue
		}
		if filename == "" || display == "" {
			tracer().Debugf("ocr line without usable text: %q", text)
			continue
		}
		builder.WriteString(filename)
		builder.WriteByte('\t')
		builder.WriteString(display)
		builder.WriteByte('\n')
		ex.Matched++
	}
	ex.Text = builder.String()
	return ex
}

func joinLines(lines []Line) string {
	var builder strings.Builder
	for i, line := range lines {
		builder.WriteString(line.Text)
		if i < len(lines)-1 && !strings.HasSuffix(line.Text, "\n") {
			builder.WriteByte('\n')
		}
	}
	return builder.String()
}

// AppendInput appends out to existing mapping input, separated by a newline.
func AppendInput(prior, out string) string {
	current := strings.TrimSpace(prior)
	if current == "" {
		return out
	}
	return current + "\n" + out
}

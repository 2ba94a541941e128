package parser

import (
	"github.com/fjglira/stepbinder/internal/domain"
)

// FeatureParser reads plain .feature files: the whole file is one block.
type FeatureParser struct{}

// NewFeatureParser creates a new FeatureParser.
func NewFeatureParser() *FeatureParser {
	return &FeatureParser{}
}

// SupportedExtensions returns the file extensions this parser handles.
func (p *FeatureParser) SupportedExtensions() []string {
	return []string{".feature"}
}

// Parse wraps the file content in a single block starting at line 1.
func (p *FeatureParser) Parse(filePath string, content []byte, _ []string) (*domain.ParsedDocument, error) {
	doc := &domain.ParsedDocument{
		FilePath: filePath,
		FileType: "feature",
		Metadata: make(map[string]string),
	}
	if len(content) == 0 {
		return doc, nil
	}
	doc.Blocks = []domain.CodeBlock{{
		Tag:        "feature",
		Content:    string(content),
		LineNumber: 1,
		Attributes: map[string]string{},
	}}
	return doc, nil
}

// Package extract 提供简历内容提取服务
// 直接使用 eino-ext 解析器组件，避免冗余封装；提取失败只降级为警告，从不阻塞摄取
package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/BailinYe/resume-modifier/internal/model"
	"github.com/cloudwego/eino-ext/components/document/parser/docx"
	"github.com/cloudwego/eino-ext/components/document/parser/html"
	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoparser "github.com/cloudwego/eino/components/document/parser"
	"github.com/cloudwego/eino/schema"
)

// Extraction 提取结果
type Extraction struct {
	Text      string
	PageCount int
	Language  string
	Keywords  model.StringList
}

// Service 内容提取服务
type Service struct {
	maxKeywords int
}

// NewService 创建提取服务
func NewService() *Service {
	return &Service{maxKeywords: 10}
}

// Extract 从文件内容提取文本、页数、语言和关键词
func (s *Service) Extract(ctx context.Context, fileName, contentType string, data []byte) (*Extraction, error) {
	fileParser, paged, err := s.newParser(ctx, fileName, contentType)
	if err != nil {
		return nil, err
	}

	docs, err := fileParser.Parse(ctx, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parser failed: %w", err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no content parsed from document")
	}

	var sb strings.Builder
	for i, d := range docs {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(d.Content)
	}
	text := sb.String()

	pageCount := 0
	if paged {
		pageCount = len(docs)
	}

	return &Extraction{
		Text:      text,
		PageCount: pageCount,
		Language:  detectLanguage(text),
		Keywords:  extractKeywords(text, s.maxKeywords),
	}, nil
}

// newParser 创建解析器
// pdf 按页解析以便统计页数
func (s *Service) newParser(ctx context.Context, fileName, contentType string) (einoparser.Parser, bool, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" {
		ext = extByContentType(contentType)
	}

	switch ext {
	case ".pdf":
		p, err := pdf.NewPDFParser(ctx, &pdf.Config{ToPages: true})
		return p, true, err
	case ".docx":
		p, err := docx.NewDocxParser(ctx, &docx.Config{
			ToSections:      false,
			IncludeComments: false,
			IncludeHeaders:  true,
			IncludeFooters:  false,
			IncludeTables:   true,
		})
		return p, false, err
	case ".html", ".htm":
		// 使用 body 选择器提取正文内容
		bodySelector := "body"
		p, err := html.NewParser(ctx, &html.Config{
			Selector: &bodySelector,
		})
		return p, false, err
	case ".txt", ".md":
		return &textParser{}, false, nil
	default:
		return nil, false, fmt.Errorf("unsupported file type: %s", ext)
	}
}

// textParser 纯文本解析器
type textParser struct{}

func (p *textParser) Parse(_ context.Context, reader io.Reader, opts ...einoparser.Option) ([]*schema.Document, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read: %w", err)
	}

	text := string(content)
	if text == "" {
		return []*schema.Document{}, nil
	}

	return []*schema.Document{
		{
			Content:  text,
			MetaData: make(map[string]any),
		},
	}, nil
}

func extByContentType(contentType string) string {
	switch contentType {
	case "application/pdf":
		return ".pdf"
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return ".docx"
	case "text/html":
		return ".html"
	case "text/plain":
		return ".txt"
	default:
		return ""
	}
}

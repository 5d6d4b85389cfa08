package utils

import (
	"bytes"
	"html/template"

	"github.com/PuerkitoBio/goquery"
)

// EnhanceHTMLContent 正文图片懒加载、不带 Referer，外链图片统一样式
func EnhanceHTMLContent(raw []byte) template.HTML {
	if len(raw) == 0 {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return template.HTML(raw)
	}

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		s.SetAttr("loading", "lazy")
		s.SetAttr("referrerpolicy", "no-referrer")
		s.AddClass("post-img")
	})
	doc.Find("table").AddClass("post-table")

	// 只要 body 内部
	body, err := doc.Find("body").Html()
	if err != nil {
		return template.HTML(raw)
	}
	return template.HTML(body)
}

// PlainText HTML 片段中的纯文本，块级元素之间以空格分隔
func PlainText(raw []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return string(raw)
	}
	var parts []string
	doc.Find("body").Children().Each(func(_ int, s *goquery.Selection) {
		parts = append(parts, s.Text())
	})
	return joinNonEmpty(parts)
}

func joinNonEmpty(parts []string) string {
	var buf bytes.Buffer
	for _, p := range parts {
		if p == "" {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(p)
	}
	return buf.String()
}

// Package view 基于 multitemplate 组装页面模板：每个页面 = 布局 + 公共片段 + 视图
package view

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/url"
	"path"
	"sort"
	"strings"
	"time"

	"blogicum/internal/models"
	"blogicum/internal/policy"
	"blogicum/internal/utils"

	"github.com/gin-contrib/multitemplate"
)

const (
	layoutsDir  = "layouts"
	includesDir = "includes"
	viewsDir    = "views"
	dateLayout  = "2006-01-02 15:04"
)

// Options 模板渲染配置
type Options struct {
	SiteName string
	Location *time.Location
}

type owner uint

func (o owner) OwnerID() uint { return uint(o) }

// FuncMap 模板函数
func FuncMap(opts Options) template.FuncMap {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	return template.FuncMap{
		"siteName": func() string {
			return opts.SiteName
		},
		"dict": func(values ...interface{}) (map[string]interface{}, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("invalid dict call")
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.In(loc).Format(dateLayout)
		},
		"markdown":        utils.RenderMarkdown,
		"commentMarkdown": utils.RenderComment,
		"excerpt":         utils.Excerpt,
		"urlquery":        url.QueryEscape,
		// canMutate 模板中决定是否展示编辑/删除入口
		"canMutate": func(user *models.User, authorID uint) bool {
			return policy.CanMutate(policy.ViewerFor(user), owner(authorID))
		},
		"pageURL": func(base string, number int) string {
			return base + "?page=" + fmt.Sprint(number)
		},
	}
}

// New 从 fsys 读取模板，页面名为 views 下的相对路径，如 blog/detail.html
func New(fsys fs.FS, opts Options) (multitemplate.Renderer, error) {
	layouts, err := fs.Glob(fsys, layoutsDir+"/*.html")
	if err != nil {
		return nil, err
	}
	if len(layouts) == 0 {
		return nil, fmt.Errorf("no layout templates found")
	}
	// base.html 作为根模板
	sort.SliceStable(layouts, func(i, j int) bool {
		return path.Base(layouts[i]) == "base.html" && path.Base(layouts[j]) != "base.html"
	})

	includes, err := fs.Glob(fsys, includesDir+"/*.html")
	if err != nil {
		return nil, err
	}

	var views []string
	err = fs.WalkDir(fsys, viewsDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(p, ".html") {
			views = append(views, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	funcs := FuncMap(opts)
	r := multitemplate.NewRenderer()
	for _, view := range views {
		files := make([]string, 0, len(layouts)+len(includes)+1)
		files = append(files, layouts...)
		files = append(files, includes...)
		files = append(files, view)

		tmpl, err := template.New(path.Base(files[0])).Funcs(funcs).ParseFS(fsys, files...)
		if err != nil {
			return nil, fmt.Errorf("parse %s failed: %w", view, err)
		}
		r.Add(strings.TrimPrefix(view, viewsDir+"/"), tmpl)
	}
	return r, nil
}

package mockgithub

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// contentObject mirrors the fields of a GitHub contents API object.
type contentObject struct {
	Type        string  `json:"type"`
	Name        string  `json:"name"`
	Path        string  `json:"path"`
	Size        int     `json:"size"`
	URL         string  `json:"url"`
	DownloadURL *string `json:"download_url"`
	Content     string  `json:"content,omitempty"`
	Encoding    string  `json:"encoding,omitempty"`
}

// NewRouter registers the API and raw routes on a fresh gin engine.
// middleware runs before every route, e.g. otelgin in apps/mock-github.
func NewRouter(s *Store, log *slog.Logger, middleware ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware...)
	r.Use(func(c *gin.Context) {
		s.record(c.Request.URL.RequestURI())
		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/repos/:owner/:repo", func(c *gin.Context) {
		owner, repo := c.Param("owner"), c.Param("repo")
		branch, ok := s.defaultBranch(owner, repo)
		if !ok {
			notFound(c)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"name":           repo,
			"full_name":      owner + "/" + repo,
			"owner":          gin.H{"login": owner},
			"default_branch": branch,
		})
	})

	r.GET("/repos/:owner/:repo/contents/*path", func(c *gin.Context) {
		owner, repo := c.Param("owner"), c.Param("repo")
		path := strings.Trim(c.Param("path"), "/")
		branch := c.Query("ref")
		if branch == "" {
			def, ok := s.defaultBranch(owner, repo)
			if !ok {
				notFound(c)
				return
			}
			branch = def
		}

		if status := s.failure(owner, repo, branch, path); status != 0 {
			log.Debug("injected failure", "repo", owner+"/"+repo, "branch", branch, "path", path, "status", status)
			c.JSON(status, gin.H{"message": http.StatusText(status)})
			return
		}

		if content, ok := s.getFile(owner, repo, branch, path); ok {
			obj := s.fileObject(c, owner, repo, branch, path, len(content))
			obj.Content = wrap76(base64.StdEncoding.EncodeToString(content))
			obj.Encoding = "base64"
			c.JSON(http.StatusOK, obj)
			return
		}

		entries, ok := s.listDir(owner, repo, branch, path)
		if !ok {
			notFound(c)
			return
		}
		objs := make([]contentObject, 0, len(entries))
		for _, e := range entries {
			if e.isDir {
				objs = append(objs, contentObject{
					Type: "dir",
					Name: e.name,
					Path: e.path,
					URL:  apiURL(c, owner, repo, branch, e.path),
				})
				continue
			}
			content, _ := s.getFile(owner, repo, branch, e.path)
			objs = append(objs, s.fileObject(c, owner, repo, branch, e.path, len(content)))
		}
		c.JSON(http.StatusOK, objs)
	})

	r.GET("/raw/:owner/:repo/*rest", func(c *gin.Context) {
		owner, repo := c.Param("owner"), c.Param("repo")
		branch, path, ok := s.splitBranch(owner, repo, strings.TrimPrefix(c.Param("rest"), "/"))
		if !ok {
			c.String(http.StatusNotFound, "404: Not Found")
			return
		}
		content, ok := s.getFile(owner, repo, branch, path)
		if !ok {
			c.String(http.StatusNotFound, "404: Not Found")
			return
		}
		c.Data(http.StatusOK, "text/plain; charset=utf-8", content)
	})

	return r
}

func (s *Store) fileObject(c *gin.Context, owner, repo, branch, path string, size int) contentObject {
	obj := contentObject{
		Type: "file",
		Name: path[strings.LastIndex(path, "/")+1:],
		Path: path,
		Size: size,
		URL:  apiURL(c, owner, repo, branch, path),
	}
	if !s.omitsDownloadURL() {
		dl := RawURL(baseURL(c), owner, repo, branch, path)
		obj.DownloadURL = &dl
	}
	return obj
}

// RawURL returns the raw download URL the mock serves for a file.
func RawURL(base, owner, repo, branch, path string) string {
	return fmt.Sprintf("%s/raw/%s/%s/%s/%s", strings.TrimSuffix(base, "/"), owner, repo, branch, path)
}

func apiURL(c *gin.Context, owner, repo, branch, path string) string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s", baseURL(c), owner, repo, path, url.QueryEscape(branch))
}

func baseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"message":           "Not Found",
		"documentation_url": "https://docs.github.com/rest",
	})
}

// wrap76 breaks base64 text into newline-terminated lines the way GitHub does.
func wrap76(s string) string {
	var sb strings.Builder
	for len(s) > 76 {
		sb.WriteString(s[:76])
		sb.WriteByte('\n')
		s = s[76:]
	}
	sb.WriteString(s)
	sb.WriteByte('\n')
	return sb.String()
}

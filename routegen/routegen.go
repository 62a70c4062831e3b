// Package routegen generates route registration code from a directory of
// page template files.  Each included file becomes a URL pattern/target
// pair which applications feed into a navkit.Router.
package routegen

import (
	"bytes"
	"crypto/md5"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
)

// New returns a new Generator instance.
func New() *Generator {
	return &Generator{}
}

// Generator performs route generation on a given directory (and optionally
// sub-directories).
type Generator struct {
	dir         string                           // starting directory
	recursive   bool                             // if true we will descend into directories
	packageName string                           // fully qualified package name corresponding to dir
	pathFunc    func(fileName string) string     // function to derive the URL pattern from a file name
	targetFunc  func(fileName string) string     // function to derive the target id from a file name
	includeFunc func(path, fileName string) bool // function to determine if a file should be included
}

// SetDir assigns the directory to start generating in.
func (g *Generator) SetDir(dir string) *Generator {
	g.dir = dir
	return g
}

// SetRecursive if passed true will enable the generator recursing
// into sub-directories.
func (g *Generator) SetRecursive(recursive bool) *Generator {
	g.recursive = recursive
	return g
}

// SetPackageName sets the fully qualified package name that corresponds
// with the directory set with SetDir.
func (g *Generator) SetPackageName(packageName string) *Generator {
	g.packageName = packageName
	return g
}

// SetPathFunc sets the function which derives a URL pattern from a file
// name.  If not set, DefaultPathFunc will be used.
func (g *Generator) SetPathFunc(f func(fileName string) string) *Generator {
	g.pathFunc = f
	return g
}

// SetTargetFunc sets the function which derives a target id from a file
// name.  If not set, DefaultTargetFunc will be used.
func (g *Generator) SetTargetFunc(f func(fileName string) string) *Generator {
	g.targetFunc = f
	return g
}

// SetIncludeFunc sets the function which determines which files are included in the route map.
// The include function will be passed the path relative to the dir set by SetDir (and will be empty
// for files in that directory) and fileName will contain the base file name.  E.g. given SetDir("/a")
// "/a/b.html" will result in a call with ("", "b.html"), and "/a/b/c.html" will result in a call
// with ("b", "c.html"), "/a/b/c/d.html" with ("b/c", "d.html") and so on.
func (g *Generator) SetIncludeFunc(f func(path, fileName string) bool) *Generator {
	g.includeFunc = f
	return g
}

// DefaultPathFunc will return the fileName with any suffix removed and a slash prepended.
// E.g. file name "signup.html" will return "/signup".  The special case of index.html
// will return "/".
func DefaultPathFunc(fileName string) string {
	if strings.TrimSuffix(fileName, path.Ext(fileName)) == "index" {
		return "/"
	}
	return "/" + strings.TrimSuffix(fileName, path.Ext(fileName))
}

// DefaultTargetFunc returns the fileName with any suffix removed,
// e.g. "signup.html" becomes target id "signup".
func DefaultTargetFunc(fileName string) string {
	return strings.TrimSuffix(fileName, path.Ext(fileName))
}

// DefaultIncludeFunc will return true for any file which ends with .html.
func DefaultIncludeFunc(path, fileName string) bool {
	return strings.HasSuffix(fileName, ".html")
}

// GeneratedFileName is the name of the file written into each processed
// directory.
const GeneratedFileName = "0_routes_navgen.go"

// Generate does the route generation.
func (g *Generator) Generate() error {

	// to keep our sanity we need to guarantee that g.dir is absolute
	dir, err := filepath.Abs(g.dir)
	if err != nil {
		return err
	}
	g.dir = dir

	// auto-detect g.packageName as needed
	if g.packageName == "" {
		g.packageName, err = guessImportPath(dir)
		if err != nil {
			return err
		}
	}

	df, err := g.readDirf(g.dir)
	if err != nil {
		return err
	}

	return g.writeRoutes(df)
}

func (g *Generator) readDirf(dirPath string) (*dirf, error) {

	includeFunc := g.includeFunc
	if includeFunc == nil {
		includeFunc = DefaultIncludeFunc
	}

	ents, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, err
	}

	rel, err := filepath.Rel(g.dir, dirPath)
	if err != nil {
		return nil, fmt.Errorf("relative path conversion failed: %w", err)
	}
	rel = strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(rel)), "/")

	ret := &dirf{
		path: rel,
	}

	for _, ent := range ents {

		if ent.IsDir() {
			if !g.recursive {
				continue
			}
			subdirf, err := g.readDirf(filepath.Join(dirPath, ent.Name()))
			if err != nil {
				return nil, err
			}
			if ret.subdirs == nil {
				ret.subdirs = make(map[string]*dirf)
			}
			ret.subdirs[ent.Name()] = subdirf
			continue
		}

		if includeFunc(rel, ent.Name()) {
			ret.fileNames = append(ret.fileNames, ent.Name())
		}
	}

	return ret, nil

}

type dirf struct {
	path      string           // path relative to g.dir
	fileNames []string         // list of included files
	subdirs   map[string]*dirf // children
}

func (df *dirf) Path() string { return df.path }

var genTemplate = `package {{.LocalPackage}}

// Code generated by navkit/routegen. DO NOT EDIT.

import "path"

{{if .Recursive}}{{range $k, $subdir := .Subdirs}}import {{HashIdent (printf "%s%s" $.PackageName $subdir.Path)}} "{{$.PackageName}}/{{$subdir.Path}}"
{{end}}{{end}}

// navRouteMap is the generated route mapping for this package.
// The key is the URL pattern and the value is the target id it
// dispatches to.
var navRouteMap = map[string]string{
{{range $k, $v := .FileNameList}}	"{{PathName $v}}": "{{TargetName $v}}",
{{end}}
}

type navroutes struct {
	prefix string
	recursive bool
	clean bool
}

func (r navroutes) WithRecursive(v bool) navroutes {
	r.recursive = v
	return r
}

func (r navroutes) WithPrefix(v string) navroutes {
	r.prefix = v
	return r
}

func (r navroutes) WithClean(v bool) navroutes {
	r.clean = v
	return r
}

func (r navroutes) Map() map[string]string {
	ret := make(map[string]string, len(navRouteMap))
	for k, v := range navRouteMap {
		key := r.prefix+k
		if r.clean {
			key = path.Clean(key)
		}
		ret[key] = v
	}

	{{if .Recursive}}
	if r.recursive {
		{{range $k, $subdir := .Subdirs}}
		for k, v := range {{HashIdent (printf "%s%s" $.PackageName $subdir.Path)}}.
				MakeRoutes().
				WithClean(r.clean).
				WithRecursive(true).
				WithPrefix(r.prefix+"/{{PathBase $subdir.Path}}").
				Map() {
			if r.clean {
				k = path.Clean(k)
			}
			ret[k] = v
		}
		{{end}}
	}
	{{end}}

	return ret
}

// MakeRoutes returns the routes for this package and any sub-packages as applicable.
func MakeRoutes() navroutes {
	return navroutes{}
}
`

func (g *Generator) writeRoutes(df *dirf) error {

	_, localPackage := path.Split(df.path)
	if localPackage == "" {
		_, localPackage = filepath.Split(g.dir)
	}

	cm := map[string]interface{}{
		"LocalPackage": localPackage,
		"PackageName":  g.packageName,
		"FileNameList": df.fileNames,
		"Subdirs":      df.subdirs,
		"Recursive":    g.recursive,
	}

	fm := template.FuncMap{
		"PathName": func(s string) string {
			pf := g.pathFunc
			if pf == nil {
				pf = DefaultPathFunc
			}
			return pf(s)
		},
		"TargetName": func(s string) string {
			tf := g.targetFunc
			if tf == nil {
				tf = DefaultTargetFunc
			}
			return tf(s)
		},
		"HashIdent": func(s string) string {
			return fmt.Sprintf("ident%x", md5.Sum([]byte(s)))
		},
		"PathBase": path.Base,
	}

	t := template.New(GeneratedFileName)
	t.Funcs(fm)
	t, err := t.Parse(genTemplate)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	err = t.Execute(&buf, cm)
	if err != nil {
		return err
	}

	fullRouteMapPath := filepath.Join(g.dir, df.path, GeneratedFileName)

	err = os.WriteFile(fullRouteMapPath, buf.Bytes(), 0644)
	if err != nil {
		return err
	}

	b, err := exec.Command("go", "fmt", fullRouteMapPath).CombinedOutput()
	if err != nil {
		return fmt.Errorf("error running go fmt on %q: %w; full output: %s", fullRouteMapPath, err, b)
	}

	if g.recursive {
		for _, subdf := range df.subdirs {
			err := g.writeRoutes(subdf)
			if err != nil {
				return fmt.Errorf("error in writeRoutes for %q: %w", subdf.path, err)
			}
		}
	}

	return nil
}

func guessImportPath(dir string) (string, error) {

	after := ""
	lastDir := dir

	for {
		f, err := os.Open(filepath.Join(dir, "go.mod"))
		if err == nil {
			defer f.Close()
			ret, err := readModuleEntry(f)
			return ret + after, err
		}

		after = "/" + filepath.Base(dir) + after

		dir, err = filepath.Abs(filepath.Join(dir, ".."))
		if err != nil {
			return "", err
		}

		if dir == lastDir { // we hit the root dir
			return "", fmt.Errorf("no go.mod file found, cannot guess import path")
		}
		lastDir = dir
	}

}

func readModuleEntry(r io.Reader) (string, error) {

	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	ret := modulePath(b)
	if ret == "" {
		return "", errors.New("unable to determine module path from go.mod")
	}

	return ret, nil
}

// modulePath returns the module path from the go.mod file text.
// If it cannot find a module path, it returns an empty string.
// It is tolerant of unrelated problems in the go.mod file.
func modulePath(mod []byte) string {
	for len(mod) > 0 {
		line := mod
		mod = nil
		if i := bytes.IndexByte(line, '\n'); i >= 0 {
			line, mod = line[:i], line[i+1:]
		}
		if i := bytes.Index(line, slashSlash); i >= 0 {
			line = line[:i]
		}
		line = bytes.TrimSpace(line)
		if !bytes.HasPrefix(line, moduleStr) {
			continue
		}
		line = line[len(moduleStr):]
		n := len(line)
		line = bytes.TrimSpace(line)
		if len(line) == n || len(line) == 0 {
			continue
		}

		if line[0] == '"' || line[0] == '`' {
			p, err := strconv.Unquote(string(line))
			if err != nil {
				return "" // malformed quoted string or multiline module path
			}
			return p
		}

		return string(line)
	}
	return "" // missing module path
}

var (
	slashSlash = []byte("//")
	moduleStr  = []byte("module")
)

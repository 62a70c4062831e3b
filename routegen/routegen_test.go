package routegen

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
)

func TestGenerate(t *testing.T) {

	tmpDir := filepath.Join(t.TempDir(), "navgentest")
	must(os.MkdirAll(filepath.Join(tmpDir, "account"), 0755))

	must(os.WriteFile(filepath.Join(tmpDir, "go.mod"), []byte("module navgentest\n"), 0644))
	must(os.WriteFile(filepath.Join(tmpDir, "index.html"), []byte("<div></div>"), 0644))
	must(os.WriteFile(filepath.Join(tmpDir, "signin.html"), []byte("<div></div>"), 0644))
	must(os.WriteFile(filepath.Join(tmpDir, "signup.html"), []byte("<div></div>"), 0644))
	must(os.WriteFile(filepath.Join(tmpDir, "notes.txt"), []byte("skip me"), 0644))
	must(os.WriteFile(filepath.Join(tmpDir, "account", "index.html"), []byte("<div></div>"), 0644))
	must(os.WriteFile(filepath.Join(tmpDir, "account", "settings.html"), []byte("<div></div>"), 0644))

	err := New().SetDir(tmpDir).SetRecursive(true).Generate()
	if err != nil {
		t.Fatal(err)
	}

	rootGen, err := os.ReadFile(filepath.Join(tmpDir, GeneratedFileName))
	if err != nil {
		t.Fatal(err)
	}

	for _, pat := range []string{
		`(?m)^package navgentest$`,
		`"/":\s*"index"`,
		`"/signin":\s*"signin"`,
		`"/signup":\s*"signup"`,
		`import ident[0-9a-f]+ "navgentest/account"`,
		`func MakeRoutes\(\) navroutes`,
	} {
		if !regexp.MustCompile(pat).Match(rootGen) {
			t.Errorf("generated root file does not match %q:\n%s", pat, rootGen)
		}
	}
	if regexp.MustCompile(`notes`).Match(rootGen) {
		t.Errorf("non-page file leaked into the route map:\n%s", rootGen)
	}

	subGen, err := os.ReadFile(filepath.Join(tmpDir, "account", GeneratedFileName))
	if err != nil {
		t.Fatal(err)
	}

	for _, pat := range []string{
		`(?m)^package account$`,
		`"/":\s*"index"`,
		`"/settings":\s*"settings"`,
	} {
		if !regexp.MustCompile(pat).Match(subGen) {
			t.Errorf("generated subdir file does not match %q:\n%s", pat, subGen)
		}
	}

}

func TestGenerateNonRecursive(t *testing.T) {

	tmpDir := filepath.Join(t.TempDir(), "navgentest")
	must(os.MkdirAll(filepath.Join(tmpDir, "account"), 0755))
	must(os.WriteFile(filepath.Join(tmpDir, "go.mod"), []byte("module navgentest\n"), 0644))
	must(os.WriteFile(filepath.Join(tmpDir, "index.html"), []byte("<div></div>"), 0644))
	must(os.WriteFile(filepath.Join(tmpDir, "account", "index.html"), []byte("<div></div>"), 0644))

	err := New().SetDir(tmpDir).Generate()
	if err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(tmpDir, "account", GeneratedFileName)); !os.IsNotExist(err) {
		t.Error("non-recursive run must not descend into subdirectories")
	}

}

func TestDefaultFuncs(t *testing.T) {

	tclist := []struct {
		fileName string
		path     string
		target   string
	}{
		{"index.html", "/", "index"},
		{"signup.html", "/signup", "signup"},
		{"page-a.html", "/page-a", "page-a"},
	}

	for _, tc := range tclist {
		t.Run(tc.fileName, func(t *testing.T) {
			if got := DefaultPathFunc(tc.fileName); got != tc.path {
				t.Errorf("DefaultPathFunc(%q) = %q, want %q", tc.fileName, got, tc.path)
			}
			if got := DefaultTargetFunc(tc.fileName); got != tc.target {
				t.Errorf("DefaultTargetFunc(%q) = %q, want %q", tc.fileName, got, tc.target)
			}
		})
	}

	if !DefaultIncludeFunc("", "index.html") || DefaultIncludeFunc("", "notes.txt") {
		t.Error("DefaultIncludeFunc must include only .html files")
	}

}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
